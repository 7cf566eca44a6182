package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Dispatcher errors
var (
	ErrDispatcherClosed = errors.New("notification dispatcher is closed")
	ErrQueueFull        = errors.New("notification queue is full")
)

// DispatcherConfig holds configuration for the notification dispatcher.
type DispatcherConfig struct {
	// QueueSize determines the buffer size of the in-memory queue.
	QueueSize int

	// WorkerCount determines how many goroutines drain the queue.
	WorkerCount int
}

// DefaultDispatcherConfig returns a DispatcherConfig with reasonable defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		QueueSize:   256,
		WorkerCount: 2,
	}
}

// Dispatcher decouples notification publishing from the request path.
// Enqueue never blocks: it accepts the notification into a bounded
// buffer or fails immediately with ErrQueueFull, and worker goroutines
// drain the buffer to the Publisher. A publish failure is logged, not
// retried; redelivery is the transport's concern.
type Dispatcher struct {
	publisher Publisher
	queue     chan Notification
	logger    *slog.Logger
	wg        sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewDispatcher creates a dispatcher draining to the given publisher.
// Zero config values fall back to defaults.
func NewDispatcher(publisher Publisher, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if publisher == nil {
		panic("publisher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultDispatcherConfig().QueueSize
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultDispatcherConfig().WorkerCount
	}

	d := &Dispatcher{
		publisher: publisher,
		queue:     make(chan Notification, cfg.QueueSize),
		logger:    logger.With(slog.String("component", "notification_dispatcher")),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	return d
}

// Enqueue hands a notification to the dispatcher without blocking.
// Returns ErrQueueFull when the buffer is saturated and
// ErrDispatcherClosed after Stop.
func (d *Dispatcher) Enqueue(n Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- n:
		d.logger.Debug("notification enqueued",
			slog.Int("queue_len", len(d.queue)),
			slog.Int("queue_cap", cap(d.queue)))
		return nil
	default:
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(d.queue))
	}
}

// Stop closes the queue and waits for the workers to drain it.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("notification dispatcher stopped")
}

// worker drains the queue to the publisher until the queue is closed.
func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	log := d.logger.With(slog.Int("worker_id", id))
	log.Debug("starting dispatcher worker")

	for n := range d.queue {
		if err := d.publisher.Publish(context.Background(), n); err != nil {
			// Best effort: the account was already created, so a failed
			// notification is logged for reconciliation, not retried here.
			log.Error("failed to publish notification",
				slog.String("error", err.Error()))
		}
	}

	log.Debug("dispatcher worker stopped")
}
