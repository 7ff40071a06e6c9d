// Package journal keeps an on-disk audit trail of operator notifications in
// a bbolt database.
package journal

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Adda-Baaj/newsdesk/internal/domain"
)

var bucketNotifications = []byte("notifications")

// Entry is one stored notification.
type Entry struct {
	Seq       uint64           `json:"seq"`
	Severity  domain.Severity  `json:"severity"`
	Message   string           `json:"message"`
	Operation domain.Operation `json:"operation"`
	Title     string           `json:"title,omitempty"`
	At        time.Time        `json:"at"`
}

// Store appends notifications to a bbolt bucket keyed by a big-endian
// sequence number, so cursor order is insertion order.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the journal at path. The parent directory is created
// when missing.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("journal path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketNotifications)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init journal: %w", err)
	}
	return &Store{db: db}, nil
}

// Record stores n and returns the entry as written.
func (s *Store) Record(n domain.Notification) (Entry, error) {
	var entry Entry
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotifications)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		entry = Entry{
			Seq:       seq,
			Severity:  n.Severity,
			Message:   n.Message,
			Operation: n.Operation,
			Title:     n.Title,
			At:        n.At.UTC(),
		}
		raw, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return b.Put(seqKey(seq), raw)
	})
	if err != nil {
		return Entry{}, fmt.Errorf("record notification: %w", err)
	}
	return entry, nil
}

// Notify lets the store sit in a notification fan-out.
func (s *Store) Notify(_ context.Context, n domain.Notification) error {
	_, err := s.Record(n)
	return err
}

// Recent returns up to limit entries, newest first. A non-positive limit
// returns everything.
func (s *Store) Recent(limit int) ([]Entry, error) {
	var out []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketNotifications).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("decode entry %d: %w", binary.BigEndian.Uint64(k), err)
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return out, nil
}

// Count reports how many entries are stored.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketNotifications).Stats().KeyN
		return nil
	})
	return n, err
}

func (s *Store) Close() error { return s.db.Close() }

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
