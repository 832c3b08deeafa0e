// Package notify delivers notifications off the request path. Callers hand a
// message to the Dispatcher and return; delivery happens on worker goroutines.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"gotrip/internal/metrics"
	"gotrip/internal/models"
)

const deliveryTimeout = 30 * time.Second

var ErrStopped = errors.New("dispatcher stopped")

type Config struct {
	QueueSize int
	Workers   int
}

// Sink delivers one notification.
type Sink interface {
	Deliver(ctx context.Context, n models.Notification) error
}

type SinkFunc func(ctx context.Context, n models.Notification) error

func (f SinkFunc) Deliver(ctx context.Context, n models.Notification) error {
	return f(ctx, n)
}

// Publisher is the subset of the NATS client used as a sink.
type Publisher interface {
	Publish(subject string, data any) error
}

// PublisherSink forwards notifications to the message broker under their subject.
func PublisherSink(p Publisher) Sink {
	return SinkFunc(func(_ context.Context, n models.Notification) error {
		return p.Publish(n.Subject, n)
	})
}

type Dispatcher struct {
	queue   chan models.Notification
	sink    Sink
	workers int

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Dispatcher{
		queue:   make(chan models.Notification, cfg.QueueSize),
		sink:    sink,
		workers: cfg.Workers,
	}
}

func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run(i)
	}
	slog.Info("Notification dispatcher started", "workers", d.workers, "queue_size", cap(d.queue))
}

// Notify enqueues the notification without blocking. It reports false when
// the message was dropped because the queue is full or the dispatcher stopped.
func (d *Dispatcher) Notify(n models.Notification) bool {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		metrics.Notification("dropped")
		slog.Warn("Notification dropped after shutdown", "subject", n.Subject)
		return false
	}

	select {
	case d.queue <- n:
		return true
	default:
		metrics.Notification("dropped")
		slog.Warn("Notification queue full, dropping message", "subject", n.Subject)
		return false
	}
}

func (d *Dispatcher) run(worker int) {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliver(worker, n)
	}
}

func (d *Dispatcher) deliver(worker int, n models.Notification) {
	defer func() {
		if r := recover(); r != nil {
			metrics.Notification("failed")
			slog.Error("Notification sink panicked", "subject", n.Subject, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	if err := d.sink.Deliver(ctx, n); err != nil {
		metrics.Notification("failed")
		slog.Error("Failed to deliver notification",
			"subject", n.Subject, "worker", worker, "error", err)
		return
	}
	metrics.Notification("sent")
	slog.Debug("Notification delivered", "subject", n.Subject, "worker", worker)
}

// Stop refuses new messages and waits until queued ones are delivered or ctx ends.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return ErrStopped
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Notification dispatcher drained")
		return nil
	case <-ctx.Done():
		slog.Warn("Notification dispatcher stopped before draining", "pending", len(d.queue))
		return ctx.Err()
	}
}
