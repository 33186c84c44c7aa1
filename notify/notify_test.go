package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (c *capture) Publish(_ context.Context, e Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return c.err
}

func (c *capture) Close() error { return nil }

func (c *capture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(OrderSubmitted, "b1", "u1", "t1", map[string]any{"items": 2})
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, OrderSubmitted, e.Type)
	assert.Equal(t, "t1", e.Subject)
	assert.WithinDuration(t, time.Now(), e.Timestamp, time.Second)
}

func TestEmitSwallowsFailures(t *testing.T) {
	c := &capture{err: errors.New("broker down")}
	Emit(c, NewEvent(SaleCreated, "b1", "u1", "t1", nil))
	require.Eventually(t, func() bool { return c.count() == 1 }, time.Second, time.Millisecond)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	assert.NoError(t, p.Close())
}
