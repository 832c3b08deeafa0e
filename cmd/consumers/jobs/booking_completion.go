package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const completionBatch = 200

// BookingCompleter is the booking service operation the job drives.
type BookingCompleter interface {
	CompleteDue(ctx context.Context, batch int) (int, error)
}

// BookingCompletionJob moves confirmed bookings whose stay has ended to completed.
type BookingCompletionJob struct {
	bookings BookingCompleter
	interval time.Duration
	ticker   *time.Ticker
	done     chan struct{}
	running  sync.Mutex
	stopOnce sync.Once
}

func NewBookingCompletionJob(bookings BookingCompleter, interval time.Duration) *BookingCompletionJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &BookingCompletionJob{
		bookings: bookings,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start runs one pass immediately and then one per interval until Stop.
func (j *BookingCompletionJob) Start(ctx context.Context) {
	slog.Info("Starting booking completion job", "check_interval", j.interval)

	j.ticker = time.NewTicker(j.interval)

	go j.completeDue(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.completeDue(ctx)
			case <-ctx.Done():
				return
			case <-j.done:
				slog.Info("Booking completion job stopped")
				return
			}
		}
	}()
}

func (j *BookingCompletionJob) Stop() {
	j.stopOnce.Do(func() {
		if j.ticker != nil {
			j.ticker.Stop()
		}
		close(j.done)
	})
}

// completeDue drains due bookings batch by batch. Overlapping ticks are skipped.
func (j *BookingCompletionJob) completeDue(ctx context.Context) {
	if !j.running.TryLock() {
		slog.Debug("Booking completion pass already running")
		return
	}
	defer j.running.Unlock()

	total := 0
	for {
		n, err := j.bookings.CompleteDue(ctx, completionBatch)
		total += n
		if err != nil {
			slog.Error("Failed to complete due bookings", "error", err, "completed", total)
			return
		}
		if n < completionBatch {
			break
		}
	}

	if total > 0 {
		slog.Info("Completed bookings", "count", total)
	} else {
		slog.Debug("No bookings due for completion")
	}
}
