package economy

import (
	"context"
	"fmt"
	"math"

	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/THEREALVANHEL/coalbot/pkg/models"
)

// StockTradeResult reports one buy or sell.
type StockTradeResult struct {
	Symbol   string
	Shares   int64
	Price    float64
	Total    int64
	Holding  models.Holding
	// Profit is realized gain on a sell, relative to average cost.
	Profit int64
}

// Quote returns the current price for a symbol.
func (s *Service) Quote(symbol string) (float64, error) {
	return s.pricing.Price(symbol, s.clock.Now())
}

// StockSymbols lists the tradable symbols.
func (s *Service) StockSymbols() []string {
	return s.pricing.Symbols()
}

// StockBuy purchases shares at the current quote. The holding's average
// price is recomputed across the old and new shares.
func (s *Service) StockBuy(ctx context.Context, userID int64, symbol string, shares int64) (*StockTradeResult, error) {
	if shares <= 0 {
		return nil, coalerr.InvalidArgument("share count must be positive, got %d", shares)
	}

	price, err := s.pricing.Price(symbol, s.clock.Now())
	if err != nil {
		return nil, err
	}
	total := int64(math.Ceil(price * float64(shares)))

	var result StockTradeResult
	_, err = s.mutate(ctx, userID, func(u *models.User) error {
		if u.Coins < total {
			return coalerr.InsufficientFunds(u.Coins, total)
		}
		u.Coins -= total
		u.Statistics.TotalSpent += total

		if u.Portfolio == nil {
			u.Portfolio = make(map[string]models.Holding)
		}
		h := u.Portfolio[symbol]
		newShares := h.Shares + shares
		h.AvgPrice = (h.AvgPrice*float64(h.Shares) + price*float64(shares)) / float64(newShares)
		h.Shares = newShares
		u.Portfolio[symbol] = h

		result = StockTradeResult{Symbol: symbol, Shares: shares, Price: price, Total: total, Holding: h}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logTx(ctx, userID, models.TxStockBuy, -total, fmt.Sprintf("%d %s @ %.2f", shares, symbol, price))
	return &result, nil
}

// StockSell sells shares at the current quote. Selling the last share
// removes the portfolio entry.
func (s *Service) StockSell(ctx context.Context, userID int64, symbol string, shares int64) (*StockTradeResult, error) {
	if shares <= 0 {
		return nil, coalerr.InvalidArgument("share count must be positive, got %d", shares)
	}

	price, err := s.pricing.Price(symbol, s.clock.Now())
	if err != nil {
		return nil, err
	}
	total := int64(math.Floor(price * float64(shares)))

	var result StockTradeResult
	_, err = s.mutate(ctx, userID, func(u *models.User) error {
		h, ok := u.Portfolio[symbol]
		if !ok || h.Shares < shares {
			return coalerr.InsufficientShares(h.Shares, shares)
		}

		u.Coins += total
		u.Statistics.TotalEarned += total

		profit := total - int64(math.Floor(h.AvgPrice*float64(shares)))

		h.Shares -= shares
		if h.Shares == 0 {
			delete(u.Portfolio, symbol)
			h = models.Holding{}
		} else {
			u.Portfolio[symbol] = h
		}

		result = StockTradeResult{Symbol: symbol, Shares: shares, Price: price, Total: total, Holding: h, Profit: profit}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logTx(ctx, userID, models.TxStockSell, total, fmt.Sprintf("%d %s @ %.2f", shares, symbol, price))
	return &result, nil
}

// PortfolioValue prices the whole portfolio at current quotes.
func (s *Service) PortfolioValue(ctx context.Context, userID int64) (int64, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	var total float64
	for symbol, h := range u.Portfolio {
		price, err := s.pricing.Price(symbol, now)
		if err != nil {
			continue
		}
		total += price * float64(h.Shares)
	}
	return int64(math.Floor(total)), nil
}
