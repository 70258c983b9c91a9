package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Async queues events for a single background worker. When the queue is full
// the event is dropped with a warning rather than blocking the request.
type Async struct {
	pub     Publisher
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan Event
	done   chan struct{}
}

func NewAsync(pub Publisher, queueSize int, publishTimeout time.Duration, logger *slog.Logger) *Async {
	if queueSize <= 0 {
		queueSize = 256
	}
	if publishTimeout <= 0 {
		publishTimeout = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &Async{
		pub:     pub,
		logger:  logger,
		timeout: publishTimeout,
		queue:   make(chan Event, queueSize),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) Notify(ctx context.Context, ev Event) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.logger.WarnContext(ctx, "notifier closed, dropping event", "event_type", ev.Type)
		return
	}
	select {
	case a.queue <- ev:
	default:
		a.logger.WarnContext(ctx, "notification queue full, dropping event",
			"event_type", ev.Type,
			"interview_id", ev.InterviewID.String(),
		)
	}
}

// Close stops accepting events and waits for the queue to drain or ctx to end.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Async) run() {
	defer close(a.done)
	for ev := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.pub.Publish(ctx, ev); err != nil {
			a.logger.Warn("publish interview event failed",
				"event_type", ev.Type,
				"interview_id", ev.InterviewID.String(),
				"err", err,
			)
		}
		cancel()
	}
}
