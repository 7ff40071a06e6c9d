package admin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Adda-Baaj/newsdesk/internal/domain"
)

func titles(items []domain.NewsItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

func named(ts ...string) []domain.NewsItem {
	out := make([]domain.NewsItem, 0, len(ts))
	for _, t := range ts {
		out = append(out, domain.NewsItem{ID: "id-" + t, Title: t, Content: t + " body"})
	}
	return out
}

func TestCacheRenderedIsReversedCopy(t *testing.T) {
	var c newsCache
	c.replaceAll(named("A", "B", "C"))

	assert.Equal(t, []string{"C", "B", "A"}, titles(c.rendered()))
	assert.Equal(t, []string{"A", "B", "C"}, titles(c.stored()), "rendering leaves stored order alone")

	r := c.rendered()
	r[0].Title = "mutated"
	assert.Equal(t, []string{"A", "B", "C"}, titles(c.stored()))
}

func TestCacheReplaceAllCopiesInput(t *testing.T) {
	in := named("A", "B")
	var c newsCache
	c.replaceAll(in)
	in[0].Title = "Z"
	assert.Equal(t, []string{"A", "B"}, titles(c.stored()))
}

func TestCacheAppendDoesNotSort(t *testing.T) {
	var c newsCache
	c.replaceAll([]domain.NewsItem{
		{Title: "new", CreatedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
	})
	c.append(domain.NewsItem{Title: "newer", CreatedAt: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)})
	assert.Equal(t, []string{"new", "newer"}, titles(c.stored()))
}

func TestCacheReplaceMatchingAllEntries(t *testing.T) {
	var c newsCache
	items := named("A", "B", "A", "C")
	c.replaceAll(items)

	n := c.replaceMatching("A", domain.NewsItem{ID: "x", Title: "A2", Content: "edited"})
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"A2", "B", "A2", "C"}, titles(c.stored()))

	assert.Zero(t, c.replaceMatching("missing", domain.NewsItem{Title: "Q"}))
	assert.Equal(t, []string{"A2", "B", "A2", "C"}, titles(c.stored()))
}

func TestCacheRemoveMatchingKeepsOrder(t *testing.T) {
	var c newsCache
	c.replaceAll(named("A", "B", "C", "B", "D"))

	assert.Equal(t, 2, c.removeMatching("B"))
	assert.Equal(t, []string{"A", "C", "D"}, titles(c.stored()))

	assert.Zero(t, c.removeMatching("B"))
	assert.Equal(t, 3, c.len())
}

func TestCacheReverse(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "empty", in: nil, want: []string{}},
		{name: "single", in: []string{"A"}, want: []string{"A"}},
		{name: "even", in: []string{"A", "B", "C", "D"}, want: []string{"D", "C", "B", "A"}},
		{name: "odd", in: []string{"A", "B", "C"}, want: []string{"C", "B", "A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c newsCache
			c.replaceAll(named(tt.in...))
			c.reverse()
			assert.Equal(t, tt.want, titles(c.stored()))
		})
	}
}

func TestSortNewestFirst(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC) }
	items := []domain.NewsItem{
		{Title: "old", CreatedAt: day(1)},
		{Title: "undated"},
		{Title: "tie-first", CreatedAt: day(5)},
		{Title: "newest", CreatedAt: day(9)},
		{Title: "tie-second", CreatedAt: day(5)},
	}
	sortNewestFirst(items)
	assert.Equal(t, []string{"newest", "tie-first", "tie-second", "old", "undated"}, titles(items))
}
