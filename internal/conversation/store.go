// Package conversation keeps short per-session histories in memory.
//
// Sessions hold at most MaxMessages exchanges (oldest dropped first) and are
// evicted after TTL without activity. Nothing is persisted.
package conversation

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nadzzz/bizassist/internal/message"
	"github.com/nadzzz/bizassist/internal/metrics"
)

// Defaults for NewStore options left at zero.
const (
	DefaultMaxMessages = 10
	DefaultTTL         = 24 * time.Hour
)

type session struct {
	messages     []message.Exchange
	createdAt    time.Time
	lastActivity time.Time
}

// Store is a concurrency-safe map of session id to history.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*session
	maxMessages int
	ttl         time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store.
func NewStore(maxMessages int, ttl time.Duration, opts ...Option) *Store {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		sessions:    make(map[string]*session),
		maxMessages: maxMessages,
		ttl:         ttl,
		now:         time.Now,
		logger:      slog.Default().With("component", "conversation"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create registers a new empty session and returns its id.
func (s *Store) Create() string {
	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreate(id)
	metrics.SetActiveSessions(len(s.sessions))
	return id
}

// Append adds an exchange to the session, creating it if needed. The
// session's last activity is refreshed and the oldest exchanges are dropped
// beyond the cap.
func (s *Store) Append(id string, ex message.Exchange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreate(id)
	if ex.Timestamp.IsZero() {
		ex.Timestamp = s.now()
	}
	sess.messages = append(sess.messages, ex)
	if over := len(sess.messages) - s.maxMessages; over > 0 {
		sess.messages = append([]message.Exchange(nil), sess.messages[over:]...)
	}
	sess.lastActivity = s.now()
	metrics.SetActiveSessions(len(s.sessions))
}

// History returns a copy of the session's exchanges, oldest first. Unknown
// sessions yield an empty, non-nil slice.
func (s *Store) History(id string) []message.Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return []message.Exchange{}
	}
	out := make([]message.Exchange, len(sess.messages))
	copy(out, sess.messages)
	return out
}

// Clear removes a session and reports whether it existed.
func (s *Store) Clear(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	metrics.SetActiveSessions(len(s.sessions))
	return true
}

// EvictExpired removes sessions idle for longer than the TTL and returns how
// many were removed.
func (s *Store) EvictExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, sess := range s.sessions {
		if sess.lastActivity.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	if n > 0 {
		s.logger.Info("evicted idle sessions", "count", n, "remaining", len(s.sessions))
		metrics.RecordEvictions(n)
		metrics.SetActiveSessions(len(s.sessions))
	}
	return n
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// getOrCreate must be called with mu held.
func (s *Store) getOrCreate(id string) *session {
	sess, ok := s.sessions[id]
	if !ok {
		now := s.now()
		sess = &session{createdAt: now, lastActivity: now}
		s.sessions[id] = sess
	}
	return sess
}
