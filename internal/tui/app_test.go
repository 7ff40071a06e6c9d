package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/newsdesk/internal/admin"
	"github.com/Adda-Baaj/newsdesk/internal/clock"
	"github.com/Adda-Baaj/newsdesk/internal/domain"
	"github.com/Adda-Baaj/newsdesk/internal/notify"
	"github.com/Adda-Baaj/newsdesk/internal/render"
)

type update struct {
	originalTitle string
	item          domain.NewsItem
}

type fakeGateway struct {
	mu      sync.Mutex
	items   []domain.NewsItem
	listErr error
	created []domain.DraftCreate
	updates []update
	deleted []string
}

func (g *fakeGateway) ListAll(context.Context) ([]domain.NewsItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.NewsItem(nil), g.items...), g.listErr
}

func (g *fakeGateway) Create(_ context.Context, d domain.DraftCreate) (domain.NewsItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.created = append(g.created, d)
	return domain.NewsItem{ID: "new", Title: d.Title, Content: d.Content, ImageURL: d.ImageURL}, nil
}

func (g *fakeGateway) Update(_ context.Context, originalTitle string, item domain.NewsItem) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.updates = append(g.updates, update{originalTitle: originalTitle, item: item})
	return nil
}

func (g *fakeGateway) Delete(_ context.Context, title string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleted = append(g.deleted, title)
	return nil
}

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type harness struct {
	app    *App
	panel  *admin.Panel
	gw     *fakeGateway
	clock  *clock.FakeClock
	toasts *notify.Toasts
}

func newHarness(t *testing.T, items ...domain.NewsItem) *harness {
	t.Helper()
	gw := &fakeGateway{items: items}
	clk := clock.Fake(epoch)
	toasts := notify.NewToasts(16)
	panel := admin.New(gw, admin.WithClock(clk), admin.WithNotifier(toasts))
	app := NewApp(context.Background(), panel, toasts.C(), nil, Options{
		Images: render.Images{Default: render.DefaultImage, Placeholder: render.PlaceholderImage},
	})
	t.Cleanup(app.shutdown)
	return &harness{app: app, panel: panel, gw: gw, clock: clk, toasts: toasts}
}

func (h *harness) mount(t *testing.T) {
	t.Helper()
	h.app.Update(h.app.mountCmd()())
}

func (h *harness) key(s string) tea.Cmd {
	var msg tea.KeyMsg
	switch s {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		msg = tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	_, cmd := h.app.Update(msg)
	return cmd
}

// run executes cmd and feeds its message back, as the program loop would.
func (h *harness) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	h.app.Update(cmd())
}

func TestViewLoadingThenCards(t *testing.T) {
	h := newHarness(t,
		domain.NewsItem{Title: "Older", Content: "<p>first</p>", CreatedAt: epoch.Add(-time.Hour)},
		domain.NewsItem{Title: "Newer", Content: "second", CreatedAt: epoch},
	)
	assert.Contains(t, h.app.View(), "Loading news...")

	h.mount(t)
	view := h.app.View()
	assert.NotContains(t, view, "Loading news...")
	assert.Contains(t, view, "Older")
	assert.Contains(t, view, "first")
	assert.Contains(t, view, "image: "+render.DefaultImage)

	// Stored newest first, rendered reversed.
	require.Len(t, h.app.items, 2)
	assert.Equal(t, "Older", h.app.items[0].Title)
}

func TestViewEmpty(t *testing.T) {
	h := newHarness(t)
	h.mount(t)
	assert.Contains(t, h.app.View(), "No news available")
}

func TestMountFailureShowsEmptyState(t *testing.T) {
	h := newHarness(t)
	h.gw.listErr = errors.New("connection refused")
	h.mount(t)

	assert.Contains(t, h.app.View(), "No news available")
	n := <-h.toasts.C()
	assert.Equal(t, domain.SeverityError, n.Severity)
	assert.Equal(t, "Error fetching news.", n.Message)
}

func TestCreateThroughDialog(t *testing.T) {
	h := newHarness(t)
	h.mount(t)

	h.key("n")
	assert.Equal(t, modeCreate, h.app.mode)
	assert.True(t, h.panel.CreateOpen())
	assert.Contains(t, h.app.View(), "Add News")

	h.key("Finals")
	h.key("tab")
	h.key("Friday 5pm")
	assert.Equal(t, domain.DraftCreate{Title: "Finals", Content: "Friday 5pm"}, h.panel.CreateDraft())

	h.run(t, h.key("ctrl+s"))
	assert.Equal(t, modeList, h.app.mode)
	assert.False(t, h.panel.CreateOpen())
	require.Len(t, h.gw.created, 1)
	assert.Equal(t, "Finals", h.gw.created[0].Title)
	assert.Contains(t, h.app.View(), "Finals")
	assert.Equal(t, 1, h.panel.PendingReversals())
}

func TestCreateValidationKeepsDialogOpen(t *testing.T) {
	h := newHarness(t)
	h.mount(t)

	h.key("n")
	h.key("Only a title")
	h.run(t, h.key("ctrl+s"))

	assert.Equal(t, modeCreate, h.app.mode)
	assert.True(t, h.panel.CreateOpen())
	assert.Empty(t, h.gw.created)
}

func TestEscClosesDialog(t *testing.T) {
	h := newHarness(t)
	h.mount(t)

	h.key("n")
	h.key("draft")
	h.key("esc")
	assert.Equal(t, modeList, h.app.mode)
	assert.False(t, h.panel.CreateOpen())
	assert.Equal(t, domain.DraftCreate{}, h.panel.CreateDraft())
}

func TestEditAddressesOriginalTitle(t *testing.T) {
	h := newHarness(t, domain.NewsItem{ID: "1", Title: "Finals", Content: "Friday", CreatedAt: epoch})
	h.mount(t)

	h.key("e")
	require.Equal(t, modeEdit, h.app.mode)
	assert.Contains(t, h.app.View(), "Edit News")

	h.key(" 2026")
	h.key("tab")
	h.key(" 5pm")
	h.run(t, h.key("ctrl+s"))

	require.Len(t, h.gw.updates, 1)
	assert.Equal(t, "Finals", h.gw.updates[0].originalTitle)
	assert.Equal(t, "Finals 2026", h.gw.updates[0].item.Title)
	assert.Equal(t, "Friday 5pm", h.gw.updates[0].item.Content)
	assert.Equal(t, "1", h.gw.updates[0].item.ID)

	assert.Equal(t, modeList, h.app.mode)
	require.Len(t, h.app.items, 1)
	assert.Equal(t, "Finals 2026", h.app.items[0].Title)
}

func TestEditFormHasNoImageField(t *testing.T) {
	h := newHarness(t, domain.NewsItem{ID: "1", Title: "Finals", Content: "Friday", ImageURL: "http://old.png", CreatedAt: epoch})
	h.mount(t)

	h.key("e")
	require.Equal(t, modeEdit, h.app.mode)
	assert.NotContains(t, h.app.View(), "Image URL")

	h.key("tab")
	assert.Equal(t, fieldContent, h.app.form.focus)
	h.key("tab")
	assert.Equal(t, fieldTitle, h.app.form.focus, "focus wraps past content back to title")

	h.key("tab")
	h.key(" 5pm")
	h.run(t, h.key("ctrl+s"))

	require.Len(t, h.gw.updates, 1)
	assert.Equal(t, "http://old.png", h.gw.updates[0].item.ImageURL)
	require.Len(t, h.app.items, 1)
	assert.Equal(t, "http://old.png", h.app.items[0].ImageURL)
}

func TestCreateFormCyclesThroughImage(t *testing.T) {
	h := newHarness(t)
	h.mount(t)

	h.key("n")
	assert.Contains(t, h.app.View(), "Image URL")
	h.key("tab")
	h.key("tab")
	assert.Equal(t, fieldImage, h.app.form.focus)
	h.key("http://img/d.png")
	assert.Equal(t, "http://img/d.png", h.panel.CreateDraft().ImageURL)
}

func TestDeleteSelectedCard(t *testing.T) {
	h := newHarness(t,
		domain.NewsItem{Title: "A", Content: "a", CreatedAt: epoch.Add(2 * time.Hour)},
		domain.NewsItem{Title: "B", Content: "b", CreatedAt: epoch.Add(time.Hour)},
		domain.NewsItem{Title: "C", Content: "c", CreatedAt: epoch},
	)
	h.mount(t)

	// Rendered order is C, B, A.
	h.key("j")
	h.run(t, h.key("d"))

	assert.Equal(t, []string{"B"}, h.gw.deleted)
	require.Len(t, h.app.items, 2)
	assert.Equal(t, "C", h.app.items[0].Title)
	assert.Equal(t, "A", h.app.items[1].Title)
}

func TestCursorClampsAfterDelete(t *testing.T) {
	h := newHarness(t,
		domain.NewsItem{Title: "A", Content: "a", CreatedAt: epoch},
		domain.NewsItem{Title: "B", Content: "b", CreatedAt: epoch.Add(-time.Hour)},
	)
	h.mount(t)

	h.key("j")
	h.key("j")
	assert.Equal(t, 1, h.app.cursor)
	h.run(t, h.key("d"))
	assert.Equal(t, 0, h.app.cursor)
}

func TestToastsExpire(t *testing.T) {
	h := newHarness(t)
	h.mount(t)

	_, cmd := h.app.Update(toastMsg(domain.Notification{Severity: domain.SeveritySuccess, Message: "News created successfully!"}))
	assert.NotNil(t, cmd)
	assert.Contains(t, h.app.View(), "News created successfully!")

	h.app.Update(toastExpiredMsg{id: h.app.nextToast})
	assert.NotContains(t, h.app.View(), "News created successfully!")
}

func TestToastsAreCapped(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < maxToasts+2; i++ {
		h.app.Update(toastMsg(domain.Notification{Message: "n"}))
	}
	assert.Len(t, h.app.toasts, maxToasts)
}

func TestChangedMsgRefreshesAfterReversal(t *testing.T) {
	h := newHarness(t, domain.NewsItem{Title: "A", Content: "a", CreatedAt: epoch})
	h.mount(t)

	h.key("n")
	h.key("B")
	h.key("tab")
	h.key("b")
	h.run(t, h.key("ctrl+s"))
	assert.Equal(t, []string{"B", "A"}, titles(h.app.items))

	h.clock.Advance(admin.DefaultReverseDelay)
	h.app.Update(changedMsg{})
	assert.Equal(t, []string{"A", "B"}, titles(h.app.items))
}

func TestQuitCancelsReversals(t *testing.T) {
	h := newHarness(t)
	h.mount(t)

	h.key("n")
	h.key("A")
	h.key("tab")
	h.key("a")
	h.run(t, h.key("ctrl+s"))
	require.Equal(t, 1, h.panel.PendingReversals())

	cmd := h.key("q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, 0, h.panel.PendingReversals())
	assert.Error(t, h.app.ctx.Err())
	assert.Empty(t, h.app.View())
}

func TestChangeSignalCoalesces(t *testing.T) {
	ch, hook := ChangeSignal()
	hook()
	hook()
	hook()
	<-ch
	select {
	case <-ch:
		t.Fatal("expected a single pending signal")
	default:
	}
}

func titles(items []domain.NewsItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}
