package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturePublisher collects published notifications and can be made to
// block or fail.
type capturePublisher struct {
	mu        sync.Mutex
	published []Notification
	err       error
	block     chan struct{}
}

func (p *capturePublisher) Publish(ctx context.Context, n Notification) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, n)
	return nil
}

func (p *capturePublisher) snapshot() []Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Notification, len(p.published))
	copy(out, p.published)
	return out
}

func TestDispatcherDeliversNotifications(t *testing.T) {
	pub := &capturePublisher{}
	d := NewDispatcher(pub, DispatcherConfig{QueueSize: 8, WorkerCount: 1}, nil)

	require.NoError(t, d.Enqueue(Notification{Email: "a@x.com", Token: "t1"}))
	require.NoError(t, d.Enqueue(Notification{Email: "b@x.com", Token: "t2"}))

	d.Stop()

	got := pub.snapshot()
	assert.Len(t, got, 2)
	assert.Contains(t, got, Notification{Email: "a@x.com", Token: "t1"})
	assert.Contains(t, got, Notification{Email: "b@x.com", Token: "t2"})
}

func TestDispatcherEnqueueNeverBlocks(t *testing.T) {
	pub := &capturePublisher{block: make(chan struct{})}
	d := NewDispatcher(pub, DispatcherConfig{QueueSize: 1, WorkerCount: 1}, nil)

	// First enqueue is picked up by the blocked worker, second fills the
	// buffer, third must fail immediately instead of blocking.
	require.NoError(t, d.Enqueue(Notification{Email: "a@x.com", Token: "t1"}))

	deadline := time.After(time.Second)
	for {
		err := d.Enqueue(Notification{Email: "b@x.com", Token: "t2"})
		if err == nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("worker never picked up the first notification")
		case <-time.After(time.Millisecond):
		}
	}

	err := d.Enqueue(Notification{Email: "c@x.com", Token: "t3"})
	assert.ErrorIs(t, err, ErrQueueFull)

	close(pub.block)
	d.Stop()
}

func TestDispatcherStopDrainsQueue(t *testing.T) {
	pub := &capturePublisher{}
	d := NewDispatcher(pub, DispatcherConfig{QueueSize: 16, WorkerCount: 2}, nil)

	for i := 0; i < 10; i++ {
		require.NoError(t, d.Enqueue(Notification{Email: "a@x.com", Token: "t"}))
	}

	d.Stop()
	assert.Len(t, pub.snapshot(), 10, "Stop must drain pending notifications")
}

func TestDispatcherRejectsAfterStop(t *testing.T) {
	d := NewDispatcher(&capturePublisher{}, DispatcherConfig{}, nil)
	d.Stop()

	err := d.Enqueue(Notification{Email: "a@x.com", Token: "t"})
	assert.ErrorIs(t, err, ErrDispatcherClosed)

	// Stop is idempotent.
	d.Stop()
}

func TestDispatcherSurvivesPublishErrors(t *testing.T) {
	pub := &capturePublisher{err: errors.New("broker unavailable")}
	d := NewDispatcher(pub, DispatcherConfig{QueueSize: 4, WorkerCount: 1}, nil)

	require.NoError(t, d.Enqueue(Notification{Email: "a@x.com", Token: "t"}))
	d.Stop()

	// The failure is swallowed and logged; nothing was recorded.
	assert.Empty(t, pub.snapshot())
}

func TestDispatcherRejectsInvalidNotification(t *testing.T) {
	d := NewDispatcher(&capturePublisher{}, DispatcherConfig{}, nil)
	defer d.Stop()

	assert.Error(t, d.Enqueue(Notification{}))
}
