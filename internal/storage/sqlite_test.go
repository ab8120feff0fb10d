package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_EmptyLoad(t *testing.T) {
	s := newTestSQLite(t)
	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	orig := sampleSnapshot()

	require.NoError(t, s.Save(ctx, orig))
	loaded, err := s.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", loaded.Meta.Storage)
	assert.Equal(t, orig.Meta.Version, loaded.Meta.Version)
	assert.Equal(t, orig.Meta.Note, loaded.Meta.Note)
	assert.False(t, loaded.Meta.Timestamp.IsZero())
	assert.Equal(t, orig.NextID, loaded.NextID)

	require.Len(t, loaded.Accounts, len(orig.Accounts))
	for i, want := range orig.Accounts {
		got := loaded.Accounts[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Settings, got.Settings)
		require.Len(t, got.Transactions, len(want.Transactions))
		for j, wt := range want.Transactions {
			assert.Equal(t, wt.Type, got.Transactions[j].Type)
			assert.Equal(t, wt.Amount, got.Transactions[j].Amount)
			assert.True(t, wt.Date.Equal(got.Transactions[j].Date))
		}
	}
}

func TestSQLiteStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	require.NoError(t, s.Save(ctx, sampleSnapshot()))
	require.NoError(t, s.Save(ctx, Snapshot{
		Meta:     Meta{Version: SnapshotVersion},
		NextID:   1,
		Accounts: []PersistAccount{{ID: "1", Name: "only"}},
	}))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.NextID)
	require.Len(t, loaded.Accounts, 1)
	assert.Equal(t, "only", loaded.Accounts[0].Name)
	assert.Empty(t, loaded.Accounts[0].Transactions)
}

func TestSQLiteStore_MigrateIsIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	require.NoError(t, s.Migrate(context.Background()))

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestSQLiteStore_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "ledger.db")

	st, err := Open("sqlite", path)
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, sampleSnapshot()))
	require.NoError(t, st.Close())

	reopened, err := Open("sqlite", path)
	require.NoError(t, err)
	defer reopened.Close()
	loaded, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Accounts, 2)
}
