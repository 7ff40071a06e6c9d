package journal

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/newsdesk/internal/domain"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "newsdesk.db")
	s, err := Open(path)
	require.NoError(t, err)
	return s, path
}

func TestRecordAndRecent(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	base := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		entry, err := s.Record(domain.Notification{
			Severity:  domain.SeveritySuccess,
			Message:   fmt.Sprintf("msg-%d", i),
			Operation: domain.OpCreate,
			At:        base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), entry.Seq)
	}

	recent, err := s.Recent(3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "msg-4", recent[0].Message)
	assert.Equal(t, "msg-2", recent[2].Message)
	assert.Equal(t, base.Add(4*time.Minute), recent[0].At)

	all, err := s.Recent(0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestNotifyPersistsAcrossReopen(t *testing.T) {
	s, path := openTemp(t)
	require.NoError(t, s.Notify(context.Background(), domain.Notification{
		Severity:  domain.SeverityError,
		Message:   "Error deleting news.",
		Operation: domain.OpDelete,
		Title:     "Finals",
		At:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, s.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	recent, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, domain.OpDelete, recent[0].Operation)
	assert.Equal(t, "Finals", recent[0].Title)

	entry, err := s.Record(domain.Notification{Message: "next"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), entry.Seq, "sequence continues after reopen")
}

func TestRecentEmpty(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	recent, err := s.Recent(5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
