package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/THEREALVANHEL/coalbot/internal/clock"
	"github.com/THEREALVANHEL/coalbot/pkg/database"
	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, maxBackups int) (*Manager, *database.MemoryStore, *clock.Fake, string) {
	t.Helper()
	dir := t.TempDir()
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	store := database.NewMemoryStore(100)
	return NewManager(store, dir, maxBackups, clk), store, clk, dir
}

func TestRunWritesArchiveAndMetadata(t *testing.T) {
	mgr, store, _, dir := newTestManager(t, 10)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		_, err := store.GetUser(ctx, i)
		require.NoError(t, err)
	}

	meta, err := mgr.Run(ctx, "manual")
	require.NoError(t, err)
	assert.Equal(t, "manual", meta.BackupType)
	assert.Equal(t, 3, meta.TotalUsers)
	assert.Positive(t, meta.BackupSize)

	_, err = os.Stat(filepath.Join(dir, meta.BackupID+".json.gz"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, meta.BackupID+"_metadata.json"))
	assert.NoError(t, err)
}

func TestListNewestFirst(t *testing.T) {
	mgr, _, clk, _ := newTestManager(t, 10)
	ctx := context.Background()

	first, err := mgr.Run(ctx, "hourly")
	require.NoError(t, err)
	clk.Advance(time.Hour)
	second, err := mgr.Run(ctx, "hourly")
	require.NoError(t, err)

	metas, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, second.BackupID, metas[0].BackupID)
	assert.Equal(t, first.BackupID, metas[1].BackupID)
}

func TestListEmptyDirectory(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	mgr := NewManager(database.NewMemoryStore(100), filepath.Join(t.TempDir(), "missing"), 5, clk)

	metas, err := mgr.List()
	require.NoError(t, err)
	assert.Empty(t, metas)
}

func TestPruneKeepsNewest(t *testing.T) {
	mgr, _, clk, dir := newTestManager(t, 2)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 4; i++ {
		meta, err := mgr.Run(ctx, "hourly")
		require.NoError(t, err)
		ids = append(ids, meta.BackupID)
		clk.Advance(time.Hour)
	}

	metas, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, ids[3], metas[0].BackupID)
	assert.Equal(t, ids[2], metas[1].BackupID)

	// The oldest archive files are gone from disk.
	_, err = os.Stat(filepath.Join(dir, ids[0]+".json.gz"))
	assert.True(t, os.IsNotExist(err))
}

func TestRestoreRoundTrip(t *testing.T) {
	mgr, store, _, _ := newTestManager(t, 10)
	ctx := context.Background()

	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	u.Coins = 12_345
	require.NoError(t, store.SaveUser(ctx, u))

	meta, err := mgr.Run(ctx, "manual")
	require.NoError(t, err)

	// Wreck the live data, then restore.
	u, err = store.GetUser(ctx, 1)
	require.NoError(t, err)
	u.Coins = 0
	require.NoError(t, store.SaveUser(ctx, u))

	require.NoError(t, mgr.Restore(ctx, meta.BackupID))

	u, err = store.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(12_345), u.Coins)
}

func TestRestoreUnknownBackup(t *testing.T) {
	mgr, _, _, _ := newTestManager(t, 10)

	err := mgr.Restore(context.Background(), "daily_19990101_000000")
	require.Error(t, err)
	assert.Equal(t, coalerr.KindNotFound, coalerr.KindOf(err))
}
