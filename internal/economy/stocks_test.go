package economy

import (
	"context"
	"testing"
	"time"

	"github.com/THEREALVANHEL/coalbot/internal/clock"
	"github.com/THEREALVANHEL/coalbot/internal/ratelimit"
	"github.com/THEREALVANHEL/coalbot/pkg/database"
	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStockService(t *testing.T, startingCoins int64, prices FixedPricing) (*Service, *database.MemoryStore) {
	t.Helper()
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	store := database.NewMemoryStore(startingCoins)
	svc := NewService(store, ratelimit.NewLimiter(nil, clk), prices, clk, testConfig())
	return svc, store
}

func TestStockBuyAveragePrice(t *testing.T) {
	prices := FixedPricing{"COAL": 10}
	svc, _ := newStockService(t, 10_000, prices)
	ctx := context.Background()

	res, err := svc.StockBuy(ctx, 1, "COAL", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.Total)
	assert.Equal(t, int64(10), res.Holding.Shares)
	assert.InDelta(t, 10.0, res.Holding.AvgPrice, 1e-9)

	// Buy more at a higher price; the average blends.
	prices["COAL"] = 20
	res, err = svc.StockBuy(ctx, 1, "COAL", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(20), res.Holding.Shares)
	assert.InDelta(t, 15.0, res.Holding.AvgPrice, 1e-9)
}

func TestStockSellProfit(t *testing.T) {
	prices := FixedPricing{"COAL": 10}
	svc, _ := newStockService(t, 10_000, prices)
	ctx := context.Background()

	_, err := svc.StockBuy(ctx, 1, "COAL", 10)
	require.NoError(t, err)

	prices["COAL"] = 15
	res, err := svc.StockSell(ctx, 1, "COAL", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(60), res.Total)
	assert.Equal(t, int64(20), res.Profit, "4 shares bought at 10, sold at 15")
	assert.Equal(t, int64(6), res.Holding.Shares)

	u, _ := svc.GetUser(ctx, 1)
	assert.Equal(t, int64(10_000-100+60), u.Coins)
}

func TestStockSellRemovesEmptyHolding(t *testing.T) {
	prices := FixedPricing{"COAL": 10}
	svc, store := newStockService(t, 10_000, prices)
	ctx := context.Background()

	_, err := svc.StockBuy(ctx, 1, "COAL", 5)
	require.NoError(t, err)
	_, err = svc.StockSell(ctx, 1, "COAL", 5)
	require.NoError(t, err)

	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	_, held := u.Portfolio["COAL"]
	assert.False(t, held)
}

func TestStockSellInsufficientShares(t *testing.T) {
	prices := FixedPricing{"COAL": 10}
	svc, _ := newStockService(t, 10_000, prices)
	ctx := context.Background()

	_, err := svc.StockBuy(ctx, 1, "COAL", 3)
	require.NoError(t, err)

	_, err = svc.StockSell(ctx, 1, "COAL", 5)
	require.Error(t, err)
	assert.Equal(t, coalerr.KindInsufficientShares, coalerr.KindOf(err))

	_, err = svc.StockSell(ctx, 1, "GOLD", 1)
	require.Error(t, err)
	assert.Equal(t, coalerr.KindInsufficientShares, coalerr.KindOf(err))
}

func TestStockBuyInsufficientFunds(t *testing.T) {
	prices := FixedPricing{"GOLD": 500}
	svc, _ := newStockService(t, 100, prices)
	ctx := context.Background()

	_, err := svc.StockBuy(ctx, 1, "GOLD", 1)
	require.Error(t, err)
	assert.Equal(t, coalerr.KindInsufficientFunds, coalerr.KindOf(err))
}

func TestStockUnknownSymbol(t *testing.T) {
	svc, _ := newStockService(t, 100, FixedPricing{"COAL": 10})

	_, err := svc.StockBuy(context.Background(), 1, "DOGE", 1)
	assert.Equal(t, coalerr.KindNotFound, coalerr.KindOf(err))
	_, err = svc.Quote("DOGE")
	assert.Equal(t, coalerr.KindNotFound, coalerr.KindOf(err))
}

func TestPortfolioValue(t *testing.T) {
	prices := FixedPricing{"COAL": 10, "IRON": 20}
	svc, _ := newStockService(t, 10_000, prices)
	ctx := context.Background()

	_, err := svc.StockBuy(ctx, 1, "COAL", 10)
	require.NoError(t, err)
	_, err = svc.StockBuy(ctx, 1, "IRON", 5)
	require.NoError(t, err)

	value, err := svc.PortfolioValue(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(200), value)
}

func TestWalkPricingDeterministic(t *testing.T) {
	pricing := NewWalkPricing()
	day := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	a, err := pricing.Price("COAL", day)
	require.NoError(t, err)
	b, err := pricing.Price("COAL", day)
	require.NoError(t, err)
	assert.Equal(t, a, b, "same symbol and day quote identically")

	nextDay, err := pricing.Price("COAL", day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.NotEqual(t, a, nextDay)

	// Prices stay within drift bounds of the base.
	assert.Greater(t, a, 50*0.85)
	assert.Less(t, a, 50*1.15)
}
