// Package tui is the terminal front end of the admin panel: a list of news
// cards, the create and edit dialogs, and transient toasts.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Adda-Baaj/newsdesk/internal/admin"
	"github.com/Adda-Baaj/newsdesk/internal/domain"
	"github.com/Adda-Baaj/newsdesk/internal/logger"
	"github.com/Adda-Baaj/newsdesk/internal/render"
)

const (
	toastTTL     = 3 * time.Second
	maxToasts    = 4
	excerptRunes = 140
)

type mode int

const (
	modeList mode = iota
	modeCreate
	modeEdit
)

// Options carries the optional collaborators of an App.
type Options struct {
	Images render.Images
	// Prober checks image sources after every list change. Nil skips
	// probing and cards show the primary source.
	Prober *render.Prober
	Log    logger.Logger
}

type toast struct {
	id int
	n  domain.Notification
}

// App is the bubbletea model driving an admin.Panel.
type App struct {
	ctx     context.Context
	cancel  context.CancelFunc
	panel   *admin.Panel
	toastsC <-chan domain.Notification
	changes <-chan struct{}
	opts    Options
	log     logger.Logger

	items     []domain.NewsItem
	images    map[string]string
	cursor    int
	mode      mode
	form      form
	toasts    []toast
	nextToast int

	spinner  spinner.Model
	width    int
	height   int
	quitting bool
}

// NewApp builds the model. toasts and changes may be nil; changes should be
// fed by the panel's OnChange hook (see ChangeSignal).
func NewApp(ctx context.Context, panel *admin.Panel, toasts <-chan domain.Notification, changes <-chan struct{}, opts Options) *App {
	ctx, cancel := context.WithCancel(ctx)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	log := opts.Log
	if log == nil {
		log = logger.NopLogger{}
	}

	return &App{
		ctx:     ctx,
		cancel:  cancel,
		panel:   panel,
		toastsC: toasts,
		changes: changes,
		opts:    opts,
		log:     log,
		spinner: sp,
	}
}

// ChangeSignal returns a coalescing change channel and the hook that feeds
// it without blocking.
func ChangeSignal() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	return ch, func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Run starts the program in the alternate screen and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, app *App) error {
	defer app.shutdown()
	_, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.spinner.Tick,
		a.mountCmd(),
		waitForChange(a.changes),
		waitForToast(a.toastsC),
	)
}

func (a *App) mountCmd() tea.Cmd {
	ctx, panel := a.ctx, a.panel
	return func() tea.Msg {
		return mountedMsg{err: panel.Mount(ctx)}
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func waitForToast(ch <-chan domain.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return toastMsg(n)
	}
}

func (a *App) opCmd(op domain.Operation, fn func(context.Context) error) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (a *App) deleteCmd(title string) tea.Cmd {
	return a.opCmd(domain.OpDelete, func(ctx context.Context) error {
		return a.panel.Delete(ctx, title)
	})
}

// resolveImagesCmd probes the current cards' image sources.
func (a *App) resolveImagesCmd() tea.Cmd {
	if a.opts.Prober == nil || len(a.items) == 0 {
		return nil
	}
	ctx, prober, im := a.ctx, a.opts.Prober, a.opts.Images
	items := append([]domain.NewsItem(nil), a.items...)
	return func() tea.Msg {
		srcs := prober.ResolveAll(ctx, im, items)
		out := make(imagesMsg, len(items))
		for i, it := range items {
			out[im.Primary(it)] = srcs[i]
		}
		return out
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.form.setWidth(a.formWidth())
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case spinner.TickMsg:
		if !a.panel.Loading() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case mountedMsg:
		if msg.err != nil {
			a.log.DebugObj("mount failed", "tui", map[string]any{"error": msg.err.Error()})
		}
		a.refresh()
		return a, a.resolveImagesCmd()

	case changedMsg:
		a.refresh()
		a.syncMode()
		return a, tea.Batch(waitForChange(a.changes), a.resolveImagesCmd())

	case opDoneMsg:
		if msg.err != nil {
			a.log.DebugObj("operation failed", "tui", map[string]any{
				"operation": string(msg.op),
				"error":     msg.err.Error(),
			})
		}
		a.refresh()
		a.syncMode()
		return a, nil

	case imagesMsg:
		a.images = msg
		return a, nil

	case toastMsg:
		a.nextToast++
		id := a.nextToast
		a.toasts = append(a.toasts, toast{id: id, n: domain.Notification(msg)})
		if len(a.toasts) > maxToasts {
			a.toasts = a.toasts[len(a.toasts)-maxToasts:]
		}
		expire := tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
		return a, tea.Batch(waitForToast(a.toastsC), expire)

	case toastExpiredMsg:
		for i, t := range a.toasts {
			if t.id == msg.id {
				a.toasts = append(a.toasts[:i], a.toasts[i+1:]...)
				break
			}
		}
		return a, nil
	}
	return a, nil
}

func (a *App) refresh() {
	a.items = a.panel.Rendered()
	if a.cursor >= len(a.items) {
		a.cursor = max(0, len(a.items)-1)
	}
}

// syncMode closes the local view of a dialog the panel has closed.
func (a *App) syncMode() {
	switch {
	case a.mode == modeCreate && !a.panel.CreateOpen():
		a.mode = modeList
	case a.mode == modeEdit && !a.panel.EditOpen():
		a.mode = modeList
	}
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, a.quit()
	}
	if a.mode == modeList {
		return a.handleListKey(msg)
	}
	return a.handleFormKey(msg)
}

func (a *App) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, a.quit()
	case "j", "down":
		if a.cursor < len(a.items)-1 {
			a.cursor++
		}
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
	case "n":
		a.panel.OpenCreate()
		d := a.panel.CreateDraft()
		a.openForm(modeCreate, newCreateForm(d.Title, d.Content, d.ImageURL))
		return a, textinput.Blink
	case "e":
		item, ok := a.selected()
		if !ok {
			return a, nil
		}
		a.panel.OpenEdit(item)
		d, _, _ := a.panel.EditDraft()
		a.openForm(modeEdit, newEditForm(d.Title, d.Content))
		return a, textinput.Blink
	case "d":
		item, ok := a.selected()
		if !ok {
			return a, nil
		}
		return a, a.deleteCmd(item.Title)
	}
	return a, nil
}

func (a *App) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if a.mode == modeCreate {
			a.panel.CloseCreate()
		} else {
			a.panel.CloseEdit()
		}
		a.mode = modeList
		return a, nil
	case "tab":
		return a, a.form.cycle(1)
	case "shift+tab":
		return a, a.form.cycle(-1)
	case "ctrl+s":
		a.pushDraft()
		if a.mode == modeCreate {
			return a, a.opCmd(domain.OpCreate, a.panel.SubmitCreate)
		}
		return a, a.opCmd(domain.OpUpdate, a.panel.SubmitUpdate)
	}

	cmd := a.form.update(msg)
	a.pushDraft()
	return a, cmd
}

func (a *App) openForm(m mode, f form) {
	a.mode = m
	a.form = f
	a.form.setWidth(a.formWidth())
}

// pushDraft copies the form fields into the panel's draft for the open
// dialog.
func (a *App) pushDraft() {
	title, content, image := a.form.values()
	switch a.mode {
	case modeCreate:
		a.panel.SetCreateDraft(domain.DraftCreate{Title: title, Content: content, ImageURL: image})
	case modeEdit:
		d, _, ok := a.panel.EditDraft()
		if !ok {
			return
		}
		d.Title, d.Content = title, content
		a.panel.SetEditDraft(d)
	}
}

func (a *App) selected() (domain.NewsItem, bool) {
	if a.cursor < 0 || a.cursor >= len(a.items) {
		return domain.NewsItem{}, false
	}
	return a.items[a.cursor], true
}

func (a *App) quit() tea.Cmd {
	a.quitting = true
	a.shutdown()
	return tea.Quit
}

func (a *App) shutdown() {
	a.cancel()
	a.panel.Close()
}

func (a *App) formWidth() int {
	if a.width <= 0 {
		return 0
	}
	return max(20, min(a.width-8, 80))
}

func (a *App) View() string {
	if a.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("News Management (%d)", len(a.items))))
	b.WriteString("\n\n")

	switch {
	case a.mode == modeCreate:
		b.WriteString(a.renderModal("Add News", "Create"))
	case a.mode == modeEdit:
		b.WriteString(a.renderModal("Edit News", "Update"))
	case a.panel.Loading():
		b.WriteString(" " + a.spinner.View() + " Loading news...")
	case len(a.items) == 0:
		b.WriteString(emptyStyle.Render("No news available"))
	default:
		b.WriteString(a.renderCards())
	}
	b.WriteString("\n")

	for _, t := range a.toasts {
		style := toastSuccessStyle
		if t.n.Severity == domain.SeverityError {
			style = toastErrorStyle
		}
		b.WriteString("\n " + style.Render(t.n.Message))
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(a.help()))
	return b.String()
}

func (a *App) help() string {
	if a.mode != modeList {
		return "tab next field • ctrl+s save • esc cancel"
	}
	return "↑/↓ move • n new • e edit • d delete • q quit"
}

func (a *App) renderCards() string {
	cards := make([]string, 0, len(a.items))
	for i, it := range a.items {
		style := cardStyle
		if i == a.cursor {
			style = cardSelectedStyle
		}
		if a.width > 4 {
			style = style.Width(a.width - 4)
		}
		cards = append(cards, style.Render(a.renderCard(it)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (a *App) renderCard(it domain.NewsItem) string {
	lines := []string{cardTitleStyle.Render(it.Title)}
	if text := render.Excerpt(render.PlainText(it.Content), excerptRunes); text != "" {
		lines = append(lines, text)
	}
	lines = append(lines, cardImageStyle.Render("image: "+a.imageFor(it)))
	if !it.CreatedAt.IsZero() {
		lines = append(lines, cardImageStyle.Render(it.CreatedAt.Local().Format("02 Jan 2006 15:04")))
	}
	return strings.Join(lines, "\n")
}

func (a *App) imageFor(it domain.NewsItem) string {
	im := a.opts.Images
	if src, ok := a.images[im.Primary(it)]; ok {
		return src
	}
	return im.Resolve(it, nil)
}

func (a *App) renderModal(title, action string) string {
	parts := []string{modalTitleStyle.Render(title)}
	for i, view := range a.form.views() {
		style := labelStyle
		if i == a.form.focus {
			style = labelFocusedStyle
		}
		parts = append(parts, style.Render(fieldLabels[i]), view, "")
	}
	parts = append(parts, labelStyle.Render("ctrl+s "+action+" • esc Cancel"))
	return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
