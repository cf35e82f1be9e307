package database

import (
	"context"
	"testing"

	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/THEREALVANHEL/coalbot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserCreatesDefaults(t *testing.T) {
	store := NewMemoryStore(250)
	ctx := context.Background()

	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.UserID)
	assert.Equal(t, int64(250), u.Coins)
	assert.NotNil(t, u.Inventory)
	assert.NotNil(t, u.Portfolio)

	n, err := store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSaveUserCompareAndSet(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	a, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	b, err := store.GetUser(ctx, 1)
	require.NoError(t, err)

	a.Coins = 500
	require.NoError(t, store.SaveUser(ctx, a))

	// The second reader holds a stale version now.
	b.Coins = 999
	err = store.SaveUser(ctx, b)
	require.Error(t, err)
	assert.Equal(t, coalerr.KindConflict, coalerr.KindOf(err))

	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(500), u.Coins)
}

func TestSaveUserBumpsCallerVersion(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)

	// Consecutive saves from the same handle keep working because the
	// store echoes the new version back.
	u.Coins = 1
	require.NoError(t, store.SaveUser(ctx, u))
	u.Coins = 2
	require.NoError(t, store.SaveUser(ctx, u))
}

func TestReadsReturnCopies(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	u.Coins = 1_000_000

	fresh, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), fresh.Coins, "mutating a read copy never touches the store")
}

func TestTopUsersSorting(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	for id, coins := range map[int64]int64{1: 50, 2: 200, 3: 100} {
		u, err := store.GetUser(ctx, id)
		require.NoError(t, err)
		u.Coins = coins
		u.XP = coins * 2
		require.NoError(t, store.SaveUser(ctx, u))
	}

	top, err := store.TopUsers(ctx, "coins", 0, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(2), top[0].UserID)
	assert.Equal(t, int64(3), top[1].UserID)

	page, err := store.TopUsers(ctx, "xp", 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(1), page[0].UserID)

	empty, err := store.TopUsers(ctx, "coins", 10, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpdateTicketStatusPrecondition(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	tk := &models.Ticket{ChannelID: 5, GuildID: 1, CreatorID: 2, Status: models.TicketOpen}
	require.NoError(t, store.CreateTicket(ctx, tk))

	err := store.CreateTicket(ctx, tk)
	assert.Equal(t, coalerr.KindConflict, coalerr.KindOf(err))

	tk.Status = models.TicketClaimed
	require.NoError(t, store.UpdateTicket(ctx, tk, models.TicketOpen))

	// Replaying the same transition fails: the ticket moved on.
	err = store.UpdateTicket(ctx, tk, models.TicketOpen)
	require.Error(t, err)
	assert.Equal(t, coalerr.KindConflict, coalerr.KindOf(err))

	err = store.UpdateTicket(ctx, &models.Ticket{ChannelID: 404}, models.TicketOpen)
	assert.Equal(t, coalerr.KindNotFound, coalerr.KindOf(err))
}

func TestFindActiveTicket(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	found, err := store.FindActiveTicket(ctx, 1, 2)
	require.NoError(t, err)
	assert.Nil(t, found, "no error and no ticket when none is active")

	tk := &models.Ticket{ChannelID: 5, GuildID: 1, CreatorID: 2, Status: models.TicketOpen}
	require.NoError(t, store.CreateTicket(ctx, tk))

	found, err = store.FindActiveTicket(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(5), found.ChannelID)

	// Terminal tickets stop counting.
	tk.Status = models.TicketClosed
	require.NoError(t, store.UpdateTicket(ctx, tk, models.TicketOpen))
	found, err = store.FindActiveTicket(ctx, 1, 2)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestWarnings(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	require.NoError(t, store.AppendWarning(ctx, &models.Warning{GuildID: 1, UserID: 2, Reason: "spam", Timestamp: 10}))
	require.NoError(t, store.AppendWarning(ctx, &models.Warning{GuildID: 1, UserID: 2, Reason: "links", Timestamp: 20}))
	require.NoError(t, store.AppendWarning(ctx, &models.Warning{GuildID: 1, UserID: 9, Reason: "other user", Timestamp: 15}))

	warns, err := store.ListWarnings(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, warns, 2)
	assert.Equal(t, "spam", warns[0].Reason, "oldest first")

	removed, err := store.ClearWarnings(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	warns, err = store.ListWarnings(ctx, 1, 2)
	require.NoError(t, err)
	assert.Empty(t, warns)
}

func TestListTransactionsNewestFirst(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, store.AppendTransaction(ctx, &models.Transaction{UserID: 1, Amount: i, Type: models.TxCredit}))
	}

	txs, err := store.ListTransactions(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, int64(3), txs[0].Amount)
	assert.Equal(t, int64(2), txs[1].Amount)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	u.Coins = 777
	require.NoError(t, store.SaveUser(ctx, u))
	require.NoError(t, store.AppendTransaction(ctx, &models.Transaction{UserID: 1, Amount: 777, Type: models.TxCredit}))

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Users, 1)

	other := NewMemoryStore(0)
	require.NoError(t, other.Restore(ctx, snap))

	restored, err := other.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(777), restored.Coins)

	txs, err := other.ListTransactions(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}
