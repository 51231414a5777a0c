// Package transport defines the listeners that expose the assistant.
//
// Each transport (HTTP, gRPC) implements Transport. main starts them side by
// side; transports never call each other.
package transport

import (
	"context"

	"github.com/nadzzz/bizassist/internal/message"
)

// Pipeline answers queries. Implemented by dispatch.Dispatcher.
type Pipeline interface {
	HandleQuery(ctx context.Context, q *message.Query) (*message.Reply, error)
	HandleAudio(ctx context.Context, q *message.AudioQuery) (*message.AudioReply, error)
}

// Sessions is the conversation store as seen by transports.
type Sessions interface {
	Create() string
	History(id string) []message.Exchange
	Clear(id string) bool
	EvictExpired() int
}

// Transport is the interface that every listener must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "http", "grpc").
	Name() string

	// Listen serves until the context is cancelled.
	Listen(ctx context.Context) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
