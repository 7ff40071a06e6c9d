package stubserver

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNewsExists   = errors.New("news already exists")
	ErrNewsNotFound = errors.New("news not found")
)

// Item is the wire shape the admin backend serves.
type Item struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	NewsContent string `json:"news_content"`
	NewsImage   string `json:"news_image,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// Store is an in-memory, title-keyed news collection.
type Store struct {
	mu    sync.RWMutex
	items []Item
	now   func() time.Time
}

// NewStore returns an empty Store. A nil now uses time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{now: now}
}

// Seed appends items as given, bypassing uniqueness checks.
func (s *Store) Seed(items ...Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, items...)
}

// List returns the collection in insertion order.
func (s *Store) List() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Item(nil), s.items...)
}

func (s *Store) Create(title, content, image string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(title) >= 0 {
		return Item{}, ErrNewsExists
	}
	item := Item{
		ID:          uuid.NewString(),
		Title:       title,
		NewsContent: content,
		NewsImage:   image,
		CreatedAt:   s.now().UTC().Format(time.RFC3339),
	}
	s.items = append(s.items, item)
	return item, nil
}

// Update replaces the content of the item titled title.
func (s *Store) Update(title, content string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(title)
	if i < 0 {
		return Item{}, ErrNewsNotFound
	}
	s.items[i].NewsContent = content
	return s.items[i], nil
}

func (s *Store) Delete(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(title)
	if i < 0 {
		return ErrNewsNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *Store) indexOf(title string) int {
	for i, it := range s.items {
		if it.Title == title {
			return i
		}
	}
	return -1
}
