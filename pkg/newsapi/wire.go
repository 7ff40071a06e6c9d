package newsapi

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/Adda-Baaj/newsdesk/internal/domain"
)

type createRequest struct {
	Title        string `json:"title"`
	NewsContent  string `json:"news_content"`
	NewsImageURL string `json:"news_image_url"`
}

type wireItem struct {
	ID           json.RawMessage `json:"_id"`
	AltID        json.RawMessage `json:"id"`
	Title        string          `json:"title"`
	NewsContent  string          `json:"news_content"`
	NewsImage    string          `json:"news_image"`
	NewsImageURL string          `json:"news_image_url"`
	CreatedAt    json.RawMessage `json:"created_at"`
}

func (w wireItem) toDomain() domain.NewsItem {
	id := rawID(w.ID)
	if id == "" {
		id = rawID(w.AltID)
	}
	image := strings.TrimSpace(w.NewsImage)
	if image == "" {
		image = strings.TrimSpace(w.NewsImageURL)
	}
	return domain.NewsItem{
		ID:        id,
		Title:     w.Title,
		Content:   w.NewsContent,
		ImageURL:  image,
		CreatedAt: parseCreatedAt(w.CreatedAt),
	}
}

// rawID accepts a string, a number, or a {"$oid": "..."} document.
func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	var oid struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(raw, &oid); err == nil && oid.OID != "" {
		return oid.OID
	}

	return string(raw)
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// parseCreatedAt returns the zero time for anything it cannot read, so the
// item sorts last.
func parseCreatedAt(raw json.RawMessage) time.Time {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range createdAtLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
