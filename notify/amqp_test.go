package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pendingConfirm resolves once the broker side calls settle.
type pendingConfirm struct {
	done chan struct{}
	ack  bool
}

func newPending() *pendingConfirm { return &pendingConfirm{done: make(chan struct{})} }

func (c *pendingConfirm) settle(ack bool) {
	c.ack = ack
	close(c.done)
}

func (c *pendingConfirm) WaitContext(ctx context.Context) (bool, error) {
	select {
	case <-c.done:
		return c.ack, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

type fakeChannel struct {
	mu       sync.Mutex
	sent     []amqp.Publishing
	confirms []*pendingConfirm
	err      error
	closed   bool
}

func (f *fakeChannel) publish(_ context.Context, msg amqp.Publishing) (confirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	c := newPending()
	f.sent = append(f.sent, msg)
	f.confirms = append(f.confirms, c)
	return c, nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func (f *fakeChannel) confirm(i int) *pendingConfirm {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.confirms[i]
}

func (f *fakeChannel) published() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func TestPublishWritesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{ch: ch}
	e := NewEvent(OrderSubmitted, "b1", "u1", "t1", map[string]any{"lines": 2})

	errc := make(chan error, 1)
	go func() { errc <- p.Publish(context.Background(), e) }()
	require.Eventually(t, func() bool { return ch.published() == 1 }, time.Second, time.Millisecond)
	ch.confirm(0).settle(true)
	require.NoError(t, <-errc)

	msg := ch.sent[0]
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, e.ID, msg.MessageId)
	assert.Equal(t, string(OrderSubmitted), msg.Type)
	assert.Equal(t, "b1", msg.Headers["x-business"])

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, e.ID, decoded.ID)
}

func TestLateConfirmDoesNotLeakIntoNextPublish(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{ch: ch}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := p.Publish(ctx, NewEvent(SaleCreated, "b1", "u1", "t1", nil))
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// the first message's ack arrives only now
	ch.confirm(0).settle(true)

	errc := make(chan error, 1)
	go func() { errc <- p.Publish(context.Background(), NewEvent(SaleCreated, "b1", "u1", "t2", nil)) }()
	require.Eventually(t, func() bool { return ch.published() == 2 }, time.Second, time.Millisecond)
	ch.confirm(1).settle(false)

	assert.ErrorIs(t, <-errc, ErrNack)
}

func TestPublishReportsChannelErrors(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := &AMQPPublisher{ch: ch}
	assert.EqualError(t, p.Publish(context.Background(), NewEvent(SaleCreated, "b1", "u1", "t1", nil)), "channel closed")

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
