// Package notify delivers panel notifications to the operator and to audit
// sinks.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Adda-Baaj/newsdesk/internal/domain"
	"github.com/Adda-Baaj/newsdesk/internal/logger"
	"github.com/Adda-Baaj/newsdesk/pkg/publishers"
)

// Sink receives notifications.
type Sink interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, n domain.Notification) error

func (f SinkFunc) Notify(ctx context.Context, n domain.Notification) error { return f(ctx, n) }

type namedSink struct {
	name string
	sink Sink
}

// Fanout forwards every notification to each added sink in order. A failing
// sink does not stop the others.
type Fanout struct {
	mu    sync.RWMutex
	sinks []namedSink
}

func NewFanout() *Fanout { return &Fanout{} }

// Add registers s under name, which prefixes its delivery errors.
func (f *Fanout) Add(name string, s Sink) *Fanout {
	if s == nil {
		return f
	}
	f.mu.Lock()
	f.sinks = append(f.sinks, namedSink{name: name, sink: s})
	f.mu.Unlock()
	return f
}

// Len reports how many sinks are registered.
func (f *Fanout) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.sinks)
}

func (f *Fanout) Notify(ctx context.Context, n domain.Notification) error {
	f.mu.RLock()
	sinks := append([]namedSink(nil), f.sinks...)
	f.mu.RUnlock()

	var errs []error
	for _, s := range sinks {
		if err := s.sink.Notify(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

// Toasts buffers notifications for the interactive front end. When the
// buffer is full new notifications are dropped rather than blocking the
// caller.
type Toasts struct {
	ch      chan domain.Notification
	dropped atomic.Int64
}

// NewToasts returns a Toasts holding up to buffer pending notifications.
func NewToasts(buffer int) *Toasts {
	if buffer < 1 {
		buffer = 1
	}
	return &Toasts{ch: make(chan domain.Notification, buffer)}
}

func (t *Toasts) Notify(_ context.Context, n domain.Notification) error {
	select {
	case t.ch <- n:
	default:
		t.dropped.Add(1)
	}
	return nil
}

// C is the channel the front end reads toasts from.
func (t *Toasts) C() <-chan domain.Notification { return t.ch }

// Dropped reports how many notifications did not fit in the buffer.
func (t *Toasts) Dropped() int64 { return t.dropped.Load() }

// LogSink writes notifications to the structured log: successes at info,
// errors at warn.
type LogSink struct {
	log logger.Logger
}

func NewLogSink(l logger.Logger) *LogSink {
	if l == nil {
		l = logger.NopLogger{}
	}
	return &LogSink{log: l}
}

func (s *LogSink) Notify(_ context.Context, n domain.Notification) error {
	fields := map[string]any{
		"severity":  string(n.Severity),
		"operation": string(n.Operation),
		"message":   n.Message,
	}
	if n.Title != "" {
		fields["title"] = n.Title
	}
	if n.Severity == domain.SeverityError {
		s.log.WarnObj("operator notified", "notification", fields)
	} else {
		s.log.InfoObj("operator notified", "notification", fields)
	}
	return nil
}

// PublisherSink turns notifications into events for external publishers.
type PublisherSink struct {
	pubs []publishers.Publisher
}

func NewPublisherSink(pubs []publishers.Publisher) *PublisherSink {
	return &PublisherSink{pubs: pubs}
}

func (s *PublisherSink) Notify(ctx context.Context, n domain.Notification) error {
	if len(s.pubs) == 0 {
		return nil
	}
	evt := publishers.NewEvent(n)
	var errs []error
	for _, p := range s.pubs {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("publisher %q: %w", p.ID(), err))
		}
	}
	return errors.Join(errs...)
}

// Close releases publisher clients.
func (s *PublisherSink) Close() error { return publishers.CloseAll(s.pubs) }
