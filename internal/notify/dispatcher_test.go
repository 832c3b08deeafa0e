package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gotrip/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu       sync.Mutex
	subjects []string
	release  chan struct{}
	err      error
}

func (s *recordingSink) Deliver(_ context.Context, n models.Notification) error {
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects = append(s.subjects, n.Subject)
	return s.err
}

func (s *recordingSink) delivered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.subjects...)
}

func TestDispatcherDeliversAndDrains(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(Config{QueueSize: 10, Workers: 2}, sink)
	d.Start()

	for i := 0; i < 5; i++ {
		require.True(t, d.Notify(models.Notification{Subject: models.EventBookingCreated}))
	}

	require.NoError(t, d.Stop(context.Background()))
	assert.Len(t, sink.delivered(), 5)
}

func TestNotifyNeverBlocksWhenFull(t *testing.T) {
	sink := &recordingSink{release: make(chan struct{})}
	d := NewDispatcher(Config{QueueSize: 1, Workers: 1}, sink)
	d.Start()

	// the worker takes the first message and blocks in the sink, the second fills the queue
	require.True(t, d.Notify(models.Notification{Subject: "a"}))
	require.Eventually(t, func() bool { return len(d.queue) == 0 }, time.Second, time.Millisecond)
	require.True(t, d.Notify(models.Notification{Subject: "b"}))

	start := time.Now()
	assert.False(t, d.Notify(models.Notification{Subject: "c"}))
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(sink.release)
	require.NoError(t, d.Stop(context.Background()))
	assert.ElementsMatch(t, []string{"a", "b"}, sink.delivered())
}

func TestSinkFailureDoesNotStopWorkers(t *testing.T) {
	sink := &recordingSink{err: errors.New("smtp down")}
	d := NewDispatcher(Config{QueueSize: 4, Workers: 1}, sink)
	d.Start()

	d.Notify(models.Notification{Subject: "a"})
	d.Notify(models.Notification{Subject: "b"})
	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, []string{"a", "b"}, sink.delivered())
}

func TestPanickingSinkIsContained(t *testing.T) {
	calls := 0
	var mu sync.Mutex
	d := NewDispatcher(Config{QueueSize: 4, Workers: 1}, SinkFunc(func(context.Context, models.Notification) error {
		mu.Lock()
		calls++
		mu.Unlock()
		panic("boom")
	}))
	d.Start()

	d.Notify(models.Notification{Subject: "a"})
	d.Notify(models.Notification{Subject: "b"})
	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestNotifyAfterStop(t *testing.T) {
	d := NewDispatcher(Config{QueueSize: 1, Workers: 1}, &recordingSink{})
	d.Start()
	require.NoError(t, d.Stop(context.Background()))

	assert.False(t, d.Notify(models.Notification{Subject: "late"}))
	assert.ErrorIs(t, d.Stop(context.Background()), ErrStopped)
}

func TestStopHonoursContext(t *testing.T) {
	sink := &recordingSink{release: make(chan struct{})}
	defer close(sink.release)
	d := NewDispatcher(Config{QueueSize: 2, Workers: 1}, sink)
	d.Start()
	d.Notify(models.Notification{Subject: "stuck"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Stop(ctx), context.DeadlineExceeded)
}

type fakePublisher struct {
	subject string
	data    any
}

func (p *fakePublisher) Publish(subject string, data any) error {
	p.subject, p.data = subject, data
	return nil
}

func TestPublisherSink(t *testing.T) {
	p := &fakePublisher{}
	n := models.Notification{Subject: models.EventContactReceived}
	require.NoError(t, PublisherSink(p).Deliver(context.Background(), n))
	assert.Equal(t, models.EventContactReceived, p.subject)
	assert.Equal(t, n, p.data)
}
