package newsapi

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Adda-Baaj/newsdesk/internal/domain"
)

var (
	ErrFetch  = errors.New("fetch news")
	ErrCreate = errors.New("create news")
	ErrUpdate = errors.New("update news")
	ErrDelete = errors.New("delete news")

	// ErrNotJSON is carried by a fetch refused with a body that is not JSON.
	ErrNotJSON = errors.New("error response is not json")
)

// RequestError describes a failed gateway call. StatusCode is zero when no
// response was received. Err is nil when the server answered with a non-2xx
// status and nothing else went wrong; a fetch refused with a non-JSON body
// carries ErrNotJSON.
type RequestError struct {
	Op         domain.Operation
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	b.WriteString(sentinelFor(e.Op).Error())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RequestError) Unwrap() error { return e.Err }

// Is matches the sentinel for the failed operation.
func (e *RequestError) Is(target error) bool {
	return target == sentinelFor(e.Op)
}

// Rejected reports whether the server answered with a non-2xx status, as
// opposed to a transport or decoding failure.
func (e *RequestError) Rejected() bool {
	return e.Err == nil && e.StatusCode != 0
}

func sentinelFor(op domain.Operation) error {
	switch op {
	case domain.OpFetch:
		return ErrFetch
	case domain.OpCreate:
		return ErrCreate
	case domain.OpUpdate:
		return ErrUpdate
	case domain.OpDelete:
		return ErrDelete
	default:
		return errors.New(string(op))
	}
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
