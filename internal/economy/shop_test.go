package economy

import (
	"context"
	"testing"
	"time"

	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/THEREALVANHEL/coalbot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuyDurableItem(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Buy(ctx, 1, "pet_food", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(25), u.Coins, "3 x 25 deducted from 100")
	assert.Equal(t, int64(3), u.Inventory["pet_food"])

	txs, err := store.ListTransactions(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.TxBuy, txs[0].Type)
	assert.Equal(t, int64(-75), txs[0].Amount)
}

func TestBuyRejections(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Buy(ctx, 1, "time_machine", 1)
	assert.Equal(t, coalerr.KindNotFound, coalerr.KindOf(err))

	_, err = svc.Buy(ctx, 1, "pet_food", 0)
	assert.Equal(t, coalerr.KindInvalidArgument, coalerr.KindOf(err))

	_, err = svc.Buy(ctx, 1, "xp_boost", 2)
	assert.Equal(t, coalerr.KindInvalidArgument, coalerr.KindOf(err), "timed items are single purchase")

	_, err = svc.Buy(ctx, 1, "vip_pass", 1)
	assert.Equal(t, coalerr.KindInsufficientFunds, coalerr.KindOf(err))
}

func TestBuyTimedItemConflictsWhileActive(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, 1, 2_000, "seed")
	require.NoError(t, err)

	u, err := svc.Buy(ctx, 1, "xp_boost", 1)
	require.NoError(t, err)
	require.Len(t, u.TemporaryPurchases, 1)
	assert.Equal(t, "xp_boost", u.TemporaryPurchases[0].ID)

	_, err = svc.Buy(ctx, 1, "xp_boost", 1)
	assert.Equal(t, coalerr.KindConflict, coalerr.KindOf(err))

	// After expiry a fresh purchase is allowed again.
	clk.Advance(25 * time.Hour)
	_, err = svc.Buy(ctx, 1, "xp_boost", 1)
	assert.NoError(t, err)
}

func TestSweepExpiredPurchases(t *testing.T) {
	svc, store, clk := newTestService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, 1, 2_000, "seed")
	require.NoError(t, err)
	_, err = svc.Buy(ctx, 1, "xp_boost", 1)
	require.NoError(t, err)

	// A temporary role expiring alongside the purchase.
	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	u.TemporaryRoles = append(u.TemporaryRoles, models.TemporaryItem{
		ID:      "color_role",
		EndTime: clk.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, store.SaveUser(ctx, u))

	// Nothing expired yet.
	expired, err := svc.SweepExpiredPurchases(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, expired)

	clk.Advance(25 * time.Hour)
	expired, err = svc.SweepExpiredPurchases(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"xp_boost", "color_role"}, expired)

	u, err = store.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, u.TemporaryPurchases)
	assert.Empty(t, u.TemporaryRoles)
}

func TestShopCatalogue(t *testing.T) {
	items := ShopItems()
	assert.NotEmpty(t, items)

	item, ok := FindShopItem("vip_pass")
	require.True(t, ok)
	assert.Equal(t, int64(5000), item.Price)
	assert.Equal(t, 30*24*time.Hour, item.Duration)
}
