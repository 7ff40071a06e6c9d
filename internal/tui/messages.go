package tui

import (
	"github.com/Adda-Baaj/newsdesk/internal/domain"
)

type mountedMsg struct{ err error }

type changedMsg struct{}

type toastMsg domain.Notification

type toastExpiredMsg struct{ id int }

type opDoneMsg struct {
	op  domain.Operation
	err error
}

// imagesMsg maps each card's primary image source to the one to show.
type imagesMsg map[string]string
