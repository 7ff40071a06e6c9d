// Package admin owns the news list shown in the admin panel. It mirrors the
// remote collection, applies gateway outcomes to that mirror, and tracks the
// create and edit dialogs.
package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adda-Baaj/newsdesk/internal/clock"
	"github.com/Adda-Baaj/newsdesk/internal/domain"
	"github.com/Adda-Baaj/newsdesk/internal/logger"
)

// DefaultReverseDelay is how long after a successful create the stored order
// is flipped.
const DefaultReverseDelay = 2 * time.Second

const (
	msgFetchFailed   = "Failed to fetch news."
	msgFetchError    = "Error fetching news."
	msgRequired      = "Title and content are required!"
	msgCreateSuccess = "News created successfully!"
	msgCreateError   = "Error creating news."
	msgUpdateSuccess = "News updated successfully!"
	msgUpdateError   = "Error updating news."
	msgDeleteSuccess = "News deleted successfully!"
	msgDeleteError   = "Error deleting news."
)

var (
	// ErrValidation is returned when a draft is missing its title or content.
	ErrValidation = errors.New("title and content are required")
	// ErrNoEdit is returned by SubmitUpdate when no item is being edited.
	ErrNoEdit = errors.New("no news item is being edited")
)

// Gateway is the remote store the panel synchronises with.
type Gateway interface {
	ListAll(ctx context.Context) ([]domain.NewsItem, error)
	Create(ctx context.Context, draft domain.DraftCreate) (domain.NewsItem, error)
	Update(ctx context.Context, originalTitle string, item domain.NewsItem) error
	Delete(ctx context.Context, title string) error
}

// Notifier receives every operator-facing notification.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

type editSession struct {
	originalTitle string
	draft         domain.NewsItem
}

// Panel is the list cache plus the dialog state around it.
type Panel struct {
	gw           Gateway
	clock        clock.Clock
	notifier     Notifier
	log          logger.Logger
	reverseDelay time.Duration
	onChange     func()

	cache   newsCache
	mount   sync.Once
	loading atomic.Bool

	mu           sync.Mutex
	createOpen   bool
	createDraft  domain.DraftCreate
	edit         *editSession
	reversals    map[uint64]*clock.Timer
	nextReversal uint64
	closed       bool
}

// Option customises a Panel.
type Option func(*Panel)

// WithClock sets the clock driving the post-create reversal.
func WithClock(c clock.Clock) Option {
	return func(p *Panel) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithNotifier sets where notifications go. The default discards them.
func WithNotifier(n Notifier) Option {
	return func(p *Panel) {
		if n != nil {
			p.notifier = n
		}
	}
}

// WithLogger sets the panel logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Panel) {
		if l != nil {
			p.log = l
		}
	}
}

// WithReverseDelay overrides DefaultReverseDelay. Negative values are
// treated as zero.
func WithReverseDelay(d time.Duration) Option {
	return func(p *Panel) {
		if d < 0 {
			d = 0
		}
		p.reverseDelay = d
	}
}

// WithOnChange registers a hook run after every change to the list or the
// loading flag, including the deferred reversal. It must not block.
func WithOnChange(fn func()) Option {
	return func(p *Panel) { p.onChange = fn }
}

// New builds a Panel around gw. The panel reports loading until Mount
// finishes.
func New(gw Gateway, opts ...Option) *Panel {
	p := &Panel{
		gw:           gw,
		clock:        clock.Real(),
		notifier:     discard{},
		log:          logger.NopLogger{},
		reverseDelay: DefaultReverseDelay,
		reversals:    map[uint64]*clock.Timer{},
	}
	p.loading.Store(true)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Mount loads the collection, newest first. Only the first call reaches the
// gateway; later calls return nil.
func (p *Panel) Mount(ctx context.Context) error {
	var err error
	p.mount.Do(func() { err = p.load(ctx) })
	return err
}

func (p *Panel) load(ctx context.Context) error {
	defer func() {
		p.loading.Store(false)
		p.changed()
	}()

	items, err := p.gw.ListAll(ctx)
	if err != nil {
		msg := msgFetchError
		var rejected interface{ Rejected() bool }
		if errors.As(err, &rejected) && rejected.Rejected() {
			msg = msgFetchFailed
		}
		p.notify(ctx, domain.SeverityError, domain.OpFetch, "", msg)
		return fmt.Errorf("load news: %w", err)
	}

	sortNewestFirst(items)
	p.cache.replaceAll(items)
	p.log.InfoObj("news loaded", "news_load", map[string]any{"count": len(items)})
	return nil
}

// Loading reports whether the initial fetch is still outstanding.
func (p *Panel) Loading() bool { return p.loading.Load() }

// Rendered returns the list in display order: the stored order reversed.
func (p *Panel) Rendered() []domain.NewsItem { return p.cache.rendered() }

// Len reports how many items are cached.
func (p *Panel) Len() int { return p.cache.len() }

// OpenCreate shows the create dialog, keeping any draft already typed.
func (p *Panel) OpenCreate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.createOpen = true
}

// CreateOpen reports whether the create dialog is shown.
func (p *Panel) CreateOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.createOpen
}

// CreateDraft returns the create dialog draft.
func (p *Panel) CreateDraft() domain.DraftCreate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.createDraft
}

// SetCreateDraft replaces the create dialog draft.
func (p *Panel) SetCreateDraft(d domain.DraftCreate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.createDraft = d
}

// CloseCreate hides the create dialog and discards its draft.
func (p *Panel) CloseCreate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.createOpen = false
	p.createDraft = domain.DraftCreate{}
}

// SubmitCreate sends the create draft. On success the server's copy is
// appended, the dialog closes and a reversal of the stored order is
// scheduled. On failure the list and the draft stay as they were.
func (p *Panel) SubmitCreate(ctx context.Context) error {
	draft := p.CreateDraft()
	if draft.Title == "" || draft.Content == "" {
		p.notify(ctx, domain.SeverityError, domain.OpCreate, draft.Title, msgRequired)
		return ErrValidation
	}

	item, err := p.gw.Create(ctx, draft)
	if err != nil {
		p.notify(ctx, domain.SeverityError, domain.OpCreate, draft.Title, msgCreateError)
		return fmt.Errorf("create %q: %w", draft.Title, err)
	}

	p.notify(ctx, domain.SeveritySuccess, domain.OpCreate, item.Title, msgCreateSuccess)
	p.cache.append(item)
	p.CloseCreate()
	p.scheduleReversal()
	p.changed()
	return nil
}

// OpenEdit starts editing item. The update is later addressed by the title
// item carries now, whatever the draft's title becomes.
func (p *Panel) OpenEdit(item domain.NewsItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.edit = &editSession{originalTitle: item.Title, draft: item}
}

// EditOpen reports whether an item is being edited.
func (p *Panel) EditOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.edit != nil
}

// EditDraft returns the draft and the title it was opened under.
func (p *Panel) EditDraft() (draft domain.NewsItem, originalTitle string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.edit == nil {
		return domain.NewsItem{}, "", false
	}
	return p.edit.draft, p.edit.originalTitle, true
}

// SetEditDraft copies the title and content of item into the edit draft.
// The other fields keep the values the item was opened with. It does nothing
// when no edit is open.
func (p *Panel) SetEditDraft(item domain.NewsItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.edit != nil {
		p.edit.draft.Title = item.Title
		p.edit.draft.Content = item.Content
	}
}

// CloseEdit hides the edit dialog and discards its draft.
func (p *Panel) CloseEdit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.edit = nil
}

// SubmitUpdate sends the edit draft. On success every cached entry with the
// original title becomes the draft and the dialog closes.
func (p *Panel) SubmitUpdate(ctx context.Context) error {
	p.mu.Lock()
	sess := p.edit
	var snapshot editSession
	if sess != nil {
		snapshot = *sess
	}
	p.mu.Unlock()
	if sess == nil {
		return ErrNoEdit
	}

	draft := snapshot.draft
	if draft.Title == "" || draft.Content == "" {
		p.notify(ctx, domain.SeverityError, domain.OpUpdate, snapshot.originalTitle, msgRequired)
		return ErrValidation
	}

	if err := p.gw.Update(ctx, snapshot.originalTitle, draft); err != nil {
		p.notify(ctx, domain.SeverityError, domain.OpUpdate, snapshot.originalTitle, msgUpdateError)
		return fmt.Errorf("update %q: %w", snapshot.originalTitle, err)
	}

	replaced := p.cache.replaceMatching(snapshot.originalTitle, draft)
	p.log.DebugObj("news updated", "news_update", map[string]any{
		"original_title": snapshot.originalTitle,
		"title":          draft.Title,
		"replaced":       replaced,
	})
	p.notify(ctx, domain.SeveritySuccess, domain.OpUpdate, snapshot.originalTitle, msgUpdateSuccess)

	p.mu.Lock()
	if p.edit == sess {
		p.edit = nil
	}
	p.mu.Unlock()

	p.changed()
	return nil
}

// Delete removes the item stored under title, remotely and then locally.
func (p *Panel) Delete(ctx context.Context, title string) error {
	if err := p.gw.Delete(ctx, title); err != nil {
		p.notify(ctx, domain.SeverityError, domain.OpDelete, title, msgDeleteError)
		return fmt.Errorf("delete %q: %w", title, err)
	}

	p.notify(ctx, domain.SeveritySuccess, domain.OpDelete, title, msgDeleteSuccess)
	removed := p.cache.removeMatching(title)
	p.log.DebugObj("news deleted", "news_delete", map[string]any{"title": title, "removed": removed})
	p.changed()
	return nil
}

// PendingReversals reports how many post-create reversals have not fired.
func (p *Panel) PendingReversals() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.reversals)
}

// Close cancels every pending reversal. Once it returns no reversal will
// touch the list. Close is idempotent.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for id, t := range p.reversals {
		t.Stop()
		delete(p.reversals, id)
	}
}

func (p *Panel) scheduleReversal() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.nextReversal++
	id := p.nextReversal
	p.reversals[id] = nil
	p.mu.Unlock()

	// AfterFunc may run the callback before returning, so it is called
	// without holding mu.
	t := p.clock.AfterFunc(p.reverseDelay, func() { p.fireReversal(id) })

	p.mu.Lock()
	_, pending := p.reversals[id]
	if pending {
		p.reversals[id] = t
	}
	p.mu.Unlock()
	if !pending {
		t.Stop()
	}
}

func (p *Panel) fireReversal(id uint64) {
	p.mu.Lock()
	if _, pending := p.reversals[id]; !pending || p.closed {
		p.mu.Unlock()
		return
	}
	delete(p.reversals, id)
	p.cache.reverse()
	p.mu.Unlock()

	p.log.Debug("news order reversed")
	p.changed()
}

func (p *Panel) changed() {
	if p.onChange != nil {
		p.onChange()
	}
}

func (p *Panel) notify(ctx context.Context, sev domain.Severity, op domain.Operation, title, msg string) {
	n := domain.Notification{
		Severity:  sev,
		Message:   msg,
		Operation: op,
		Title:     title,
		At:        p.clock.Now(),
	}
	if err := p.notifier.Notify(ctx, n); err != nil {
		p.log.WarnObj("notification not delivered", "notify_failure", map[string]any{
			"operation": string(op),
			"message":   msg,
			"error":     err.Error(),
		})
	}
}

type discard struct{}

func (discard) Notify(context.Context, domain.Notification) error { return nil }
