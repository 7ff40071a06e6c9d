package admin

import (
	"sort"
	"sync"

	"github.com/Adda-Baaj/newsdesk/internal/domain"
)

// newsCache is the in-memory mirror of the remote collection. Only Panel
// holds one; every method is safe to call from any goroutine.
type newsCache struct {
	mu    sync.Mutex
	items []domain.NewsItem
}

func (c *newsCache) replaceAll(items []domain.NewsItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]domain.NewsItem(nil), items...)
}

func (c *newsCache) append(item domain.NewsItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
}

// replaceMatching overwrites every entry titled originalTitle with item and
// reports how many were replaced.
func (c *newsCache) replaceMatching(originalTitle string, item domain.NewsItem) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for i := range c.items {
		if c.items[i].Title == originalTitle {
			c.items[i] = item
			n++
		}
	}
	return n
}

// removeMatching drops every entry titled title, keeping the order of the
// rest, and reports how many were removed.
func (c *newsCache) removeMatching(title string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := make([]domain.NewsItem, 0, len(c.items))
	for _, it := range c.items {
		if it.Title != title {
			kept = append(kept, it)
		}
	}
	removed := len(c.items) - len(kept)
	c.items = kept
	return removed
}

func (c *newsCache) reverse() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, j := 0, len(c.items)-1; i < j; i, j = i+1, j-1 {
		c.items[i], c.items[j] = c.items[j], c.items[i]
	}
}

// stored returns a copy in stored order.
func (c *newsCache) stored() []domain.NewsItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.NewsItem(nil), c.items...)
}

// rendered returns a reversed copy; the stored order is left alone.
func (c *newsCache) rendered() []domain.NewsItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.NewsItem, len(c.items))
	for i, it := range c.items {
		out[len(c.items)-1-i] = it
	}
	return out
}

func (c *newsCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// sortNewestFirst orders items by CreatedAt descending. Equal timestamps keep
// their server order; zero timestamps end up last.
func sortNewestFirst(items []domain.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
