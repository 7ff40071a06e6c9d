package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Adda-Baaj/newsdesk/internal/domain"
	"github.com/Adda-Baaj/newsdesk/internal/logger"
	"github.com/Adda-Baaj/newsdesk/pkg/publishers"
)

func note(msg string) domain.Notification {
	return domain.Notification{
		Severity:  domain.SeveritySuccess,
		Message:   msg,
		Operation: domain.OpCreate,
		Title:     "Finals",
		At:        time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

type memorySink struct {
	mu  sync.Mutex
	got []domain.Notification
}

func (m *memorySink) Notify(_ context.Context, n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.got = append(m.got, n)
	return nil
}

func (m *memorySink) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.got)
}

func TestFanoutDeliversToAll(t *testing.T) {
	a, b := &memorySink{}, &memorySink{}
	failing := SinkFunc(func(context.Context, domain.Notification) error { return errors.New("down") })

	f := NewFanout().Add("a", a).Add("broken", failing).Add("b", b).Add("nil", nil)
	assert.Equal(t, 3, f.Len())

	err := f.Notify(context.Background(), note("News created successfully!"))
	require.Error(t, err)
	assert.EqualError(t, err, "broken: down")
	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())
}

func TestFanoutEmpty(t *testing.T) {
	assert.NoError(t, NewFanout().Notify(context.Background(), note("x")))
}

func TestToastsDropWhenFull(t *testing.T) {
	toasts := NewToasts(2)
	for i := 0; i < 3; i++ {
		require.NoError(t, toasts.Notify(context.Background(), note("n")))
	}
	assert.Equal(t, int64(1), toasts.Dropped())
	assert.Len(t, toasts.C(), 2)

	got := <-toasts.C()
	assert.Equal(t, "n", got.Message)
}

func TestLogSinkLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewLogSink(logger.FromZap(zap.New(core)))

	require.NoError(t, sink.Notify(context.Background(), note("News created successfully!")))
	failed := note("Error creating news.")
	failed.Severity = domain.SeverityError
	require.NoError(t, sink.Notify(context.Background(), failed))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	payload, ok := entries[1].ContextMap()["notification"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Error creating news.", payload["message"])
	assert.Equal(t, "Finals", payload["title"])
}

type recordingPublisher struct {
	id     string
	err    error
	events []publishers.Event
	closed bool
}

func (p *recordingPublisher) ID() string   { return p.id }
func (p *recordingPublisher) Type() string { return "test" }
func (p *recordingPublisher) Publish(_ context.Context, evt publishers.Event) error {
	p.events = append(p.events, evt)
	return p.err
}
func (p *recordingPublisher) Close() error { p.closed = true; return nil }

func TestPublisherSinkSharesEvent(t *testing.T) {
	ok := &recordingPublisher{id: "ok"}
	bad := &recordingPublisher{id: "bad", err: errors.New("503")}
	sink := NewPublisherSink([]publishers.Publisher{ok, bad})

	err := sink.Notify(context.Background(), note("News deleted successfully!"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `publisher "bad"`)

	require.Len(t, ok.events, 1)
	require.Len(t, bad.events, 1)
	assert.Equal(t, ok.events[0].ID, bad.events[0].ID, "one event per notification")
	assert.Equal(t, "create", ok.events[0].Operation)

	require.NoError(t, sink.Close())
	assert.True(t, ok.closed)
}

func TestPublisherSinkWithoutPublishers(t *testing.T) {
	assert.NoError(t, NewPublisherSink(nil).Notify(context.Background(), note("x")))
}

func TestAsyncDrainsOnClose(t *testing.T) {
	mem := &memorySink{}
	a := NewAsync(mem, 8, nil)

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 5; i++ {
		require.NoError(t, a.Notify(ctx, note("n")))
	}
	cancel()

	require.NoError(t, a.Close())
	assert.Equal(t, 5, mem.count())
	assert.ErrorIs(t, a.Notify(context.Background(), note("late")), ErrClosed)
	assert.NoError(t, a.Close())
}

func TestAsyncDetachesCancellation(t *testing.T) {
	var sawErr error
	done := make(chan struct{})
	sink := SinkFunc(func(ctx context.Context, _ domain.Notification) error {
		sawErr = ctx.Err()
		close(done)
		return nil
	})
	a := NewAsync(sink, 1, nil)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, a.Notify(ctx, note("n")))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification not delivered")
	}
	assert.NoError(t, sawErr)
}

func TestAsyncQueueFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	sink := SinkFunc(func(context.Context, domain.Notification) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return nil
	})
	a := NewAsync(sink, 1, nil)

	require.NoError(t, a.Notify(context.Background(), note("first")))
	<-started
	require.NoError(t, a.Notify(context.Background(), note("queued")))
	assert.ErrorIs(t, a.Notify(context.Background(), note("overflow")), ErrQueueFull)

	close(release)
	require.NoError(t, a.Close())
}

func TestAsyncLogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	sink := SinkFunc(func(context.Context, domain.Notification) error { return errors.New("nope") })
	a := NewAsync(sink, 4, logger.FromZap(zap.New(core)))

	require.NoError(t, a.Notify(context.Background(), note("n")))
	require.NoError(t, a.Close())
	assert.Equal(t, 1, logs.FilterMessage("async notification failed").Len())
}
