package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	var count int
	err = store.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='audit_entries'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewStoreCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "portal.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening runs the migrations again without error.
	s, err = NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestAuditEntriesFlow(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	base := time.Now().Add(-time.Minute)

	require.NoError(t, s.AddAuditEntry(ctx, AuditEntry{
		CaseNumber: "21456",
		SessionID:  "sess-1",
		Action:     "login_succeeded",
		Actor:      "client",
		Timestamp:  base,
	}))
	require.NoError(t, s.AddAuditEntry(ctx, AuditEntry{
		CaseNumber: "21456",
		SessionID:  "sess-1",
		Action:     "dashboard_loaded",
		Actor:      "client",
		Details:    map[string]interface{}{"timeline_events": 7, "documents": 4},
		Timestamp:  base.Add(time.Second),
	}))
	require.NoError(t, s.LogSessionAction(ctx, "21457", "", "login_failed", "client",
		map[string]interface{}{"error": "Invalid credentials"}))

	entries, err := s.GetAuditEntries(ctx, "21456", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "dashboard_loaded", entries[0].Action, "newest first")
	assert.Equal(t, "sess-1", entries[0].SessionID)
	assert.EqualValues(t, 7, entries[0].Details["timeline_events"])
	assert.NotEmpty(t, entries[0].ID)

	limited, err := s.GetAuditEntries(ctx, "21456", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	recent, err := s.RecentActions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "login_failed", recent[0].Action)
	assert.Equal(t, "", recent[0].SessionID)
	assert.Equal(t, "Invalid credentials", recent[0].Details["error"])
}
