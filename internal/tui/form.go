package tui

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldTitle = iota
	fieldContent
	fieldImage
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Content", "Image URL"}

// form backs both modal dialogs: a title line, a multi-line content area and,
// when creating, an image URL line.
type form struct {
	title   textinput.Model
	content textarea.Model
	image   textinput.Model
	focus   int
	fields  int
}

// newCreateForm has all three fields.
func newCreateForm(title, content, image string) form {
	return newForm(title, content, image, fieldCount)
}

// newEditForm has no image field; edits only reach title and content.
func newEditForm(title, content string) form {
	return newForm(title, content, "", fieldImage)
}

func newForm(title, content, image string, fields int) form {
	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.CharLimit = 200
	ti.SetValue(title)

	ta := textarea.New()
	ta.Placeholder = "Content"
	ta.ShowLineNumbers = false
	ta.SetHeight(6)
	ta.SetValue(content)

	im := textinput.New()
	im.Placeholder = "Image URL (optional)"
	im.SetValue(image)

	f := form{title: ti, content: ta, image: im, fields: fields}
	f.applyFocus()
	return f
}

func (f *form) setWidth(w int) {
	if w <= 0 {
		return
	}
	f.title.Width = w
	f.image.Width = w
	f.content.SetWidth(w)
}

// cycle moves focus by delta fields, wrapping around.
func (f *form) cycle(delta int) tea.Cmd {
	f.focus = ((f.focus+delta)%f.fields + f.fields) % f.fields
	return f.applyFocus()
}

func (f *form) applyFocus() tea.Cmd {
	f.title.Blur()
	f.content.Blur()
	f.image.Blur()
	switch f.focus {
	case fieldContent:
		return f.content.Focus()
	case fieldImage:
		return f.image.Focus()
	default:
		return f.title.Focus()
	}
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case fieldContent:
		f.content, cmd = f.content.Update(msg)
	case fieldImage:
		f.image, cmd = f.image.Update(msg)
	default:
		f.title, cmd = f.title.Update(msg)
	}
	return cmd
}

func (f form) values() (title, content, image string) {
	return f.title.Value(), f.content.Value(), f.image.Value()
}

// views renders the active fields in focus order.
func (f form) views() []string {
	all := [fieldCount]string{f.title.View(), f.content.View(), f.image.View()}
	return all[:f.fields]
}
