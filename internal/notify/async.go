package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/Adda-Baaj/newsdesk/internal/domain"
	"github.com/Adda-Baaj/newsdesk/internal/logger"
)

// ErrClosed is returned by Async.Notify after Close.
var ErrClosed = errors.New("notify: sink closed")

// ErrQueueFull is returned by Async.Notify when the queue has no room.
var ErrQueueFull = errors.New("notify: queue full")

type queued struct {
	ctx context.Context
	n   domain.Notification
}

// Async delivers to a slow sink (network publishers) from a background
// goroutine so panel operations are not held up. Delivery errors are logged.
type Async struct {
	sink  Sink
	log   logger.Logger
	queue chan queued

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewAsync starts the worker. Close must be called to stop it.
func NewAsync(sink Sink, buffer int, l logger.Logger) *Async {
	if buffer < 1 {
		buffer = 1
	}
	if l == nil {
		l = logger.NopLogger{}
	}
	a := &Async{sink: sink, log: l, queue: make(chan queued, buffer)}
	a.wg.Add(1)
	go a.run()
	return a
}

// Notify queues n. The caller's context is detached from cancellation so a
// notification survives the operation that produced it.
func (a *Async) Notify(ctx context.Context, n domain.Notification) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- queued{ctx: context.WithoutCancel(ctx), n: n}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (a *Async) run() {
	defer a.wg.Done()
	for q := range a.queue {
		if err := a.sink.Notify(q.ctx, q.n); err != nil {
			a.log.WarnObj("async notification failed", "notify_async_failure", map[string]any{
				"operation": string(q.n.Operation),
				"error":     err.Error(),
			})
		}
	}
}

// Close stops accepting notifications and waits for the queue to drain.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	a.wg.Wait()
	return nil
}
