// Package grpc exposes the standard gRPC health service for bizassist, so
// gRPC-native orchestrators and load balancers can probe the daemon.
//
// The overall status and the "bizassist" service report SERVING once the
// business data is loaded, and NOT_SERVING while shutting down.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/nadzzz/bizassist/internal/transport"
)

// ServiceName is the health-checked service name.
const ServiceName = "bizassist"

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port   int
	health *health.Server
	server *grpc.Server
}

// New creates a gRPC transport. ready sets the initial serving status.
func New(port int, ready bool) *Transport {
	server := grpc.NewServer(
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             15 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle: 5 * time.Minute,
			Time:              30 * time.Second,
			Timeout:           10 * time.Second,
		}),
	)

	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, hs)
	reflection.Register(server)

	t := &Transport{port: port, health: hs, server: server}
	t.SetReady(ready)
	return t
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// SetReady flips the reported serving status.
func (t *Transport) SetReady(ready bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if ready {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	t.health.SetServingStatus("", status)
	t.health.SetServingStatus(ServiceName, status)
}

// Listen binds the configured port and serves until ctx is cancelled.
func (t *Transport) Listen(ctx context.Context) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	slog.Info("grpc transport listening", "port", t.port)
	return t.Serve(ctx, lis)
}

// Serve serves on an existing listener until ctx is cancelled.
func (t *Transport) Serve(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		slog.Info("grpc transport shutting down")
		_ = t.Close()
	}()

	if err := t.server.Serve(lis); err != nil {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Close marks the server NOT_SERVING and stops it gracefully.
func (t *Transport) Close() error {
	t.health.Shutdown()
	t.server.GracefulStop()
	return nil
}

var _ transport.Transport = (*Transport)(nil)
