package domain

import "time"

// Domain contains core models shared by the panel, the gateway and the sinks.

// NewsItem is one announcement as held by the remote store.
type NewsItem struct {
	ID        string
	Title     string
	Content   string
	ImageURL  string
	CreatedAt time.Time
}

// DraftCreate is the not-yet-persisted buffer behind the create dialog.
type DraftCreate struct {
	Title    string
	Content  string
	ImageURL string
}

// Severity classifies a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Operation names the panel action a notification belongs to.
type Operation string

const (
	OpFetch  Operation = "fetch"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Notification is a fire-and-forget signal shown to the operator as a toast.
// Only Message is user-visible; Operation, Title and At feed the audit sinks.
type Notification struct {
	Severity  Severity
	Message   string
	Operation Operation
	Title     string
	At        time.Time
}
