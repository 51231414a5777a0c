package conversation_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/bizassist/internal/conversation"
	"github.com/nadzzz/bizassist/internal/message"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newStore() (*conversation.Store, *clock) {
	c := &clock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	return conversation.NewStore(10, 24*time.Hour, conversation.WithClock(c.Now)), c
}

func TestCreate(t *testing.T) {
	s, _ := newStore()
	id := s.Create()

	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
	assert.Empty(t, s.History(id))
	assert.NotEqual(t, id, s.Create())
}

func TestAppend_KeepsLastTen(t *testing.T) {
	s, _ := newStore()
	id := s.Create()

	for i := range 11 {
		s.Append(id, message.Exchange{User: fmt.Sprintf("q%d", i), Bot: "a", Language: "en"})
	}

	h := s.History(id)
	require.Len(t, h, 10)
	assert.Equal(t, "q1", h[0].User)
	assert.Equal(t, "q10", h[9].User)
	assert.False(t, h[0].Timestamp.IsZero())
}

func TestAppend_CreatesUnknownSession(t *testing.T) {
	s, _ := newStore()
	s.Append("client-chosen", message.Exchange{User: "hi", Bot: "hello"})
	assert.Equal(t, 1, s.Len())
	assert.Len(t, s.History("client-chosen"), 1)
}

func TestHistory_ReturnsCopy(t *testing.T) {
	s, _ := newStore()
	id := s.Create()
	s.Append(id, message.Exchange{User: "original"})

	h := s.History(id)
	h[0].User = "mutated"
	assert.Equal(t, "original", s.History(id)[0].User)

	unknown := s.History("nope")
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func TestClear(t *testing.T) {
	s, _ := newStore()
	id := s.Create()

	assert.True(t, s.Clear(id))
	assert.False(t, s.Clear(id))
	assert.Equal(t, 0, s.Len())
}

func TestEvictExpired(t *testing.T) {
	s, c := newStore()
	stale := s.Create()
	c.Advance(12 * time.Hour)
	fresh := s.Create()

	c.Advance(12*time.Hour + time.Second)
	assert.Equal(t, 1, s.EvictExpired())
	assert.Equal(t, 1, s.Len())
	assert.False(t, s.Clear(stale))

	// Activity refreshes the idle timer.
	c.Advance(11 * time.Hour)
	s.Append(fresh, message.Exchange{User: "still here"})
	c.Advance(23 * time.Hour)
	assert.Equal(t, 0, s.EvictExpired())
	assert.Len(t, s.History(fresh), 1)
}

func TestConcurrentAppend(t *testing.T) {
	s, _ := newStore()
	id := s.Create()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Append(id, message.Exchange{User: fmt.Sprint(i)})
			_ = s.History(id)
		}()
	}
	wg.Wait()
	assert.Len(t, s.History(id), 10)
}
