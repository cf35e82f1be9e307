package economy

import (
	"hash/fnv"
	"math/rand"
	"time"

	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
)

// Pricing supplies stock quotes.
type Pricing interface {
	Price(symbol string, at time.Time) (float64, error)
	Symbols() []string
}

// WalkPricing derives a deterministic daily price per symbol: the base
// price scaled by a pseudo-random factor seeded from symbol and date.
// Every process quotes the same price for the same day.
type WalkPricing struct {
	base map[string]float64
}

// NewWalkPricing creates the pricing table with the default symbols.
func NewWalkPricing() *WalkPricing {
	return &WalkPricing{
		base: map[string]float64{
			"COAL": 50,
			"IRON": 75,
			"GOLD": 210,
			"TECH": 120,
			"MEME": 15,
		},
	}
}

// Price returns the quote for a symbol on the given day.
func (p *WalkPricing) Price(symbol string, at time.Time) (float64, error) {
	base, ok := p.base[symbol]
	if !ok {
		return 0, coalerr.NotFound("unknown stock symbol %q", symbol)
	}

	h := fnv.New64a()
	h.Write([]byte(symbol))
	h.Write([]byte(at.UTC().Format("20060102")))
	r := rand.New(rand.NewSource(int64(h.Sum64())))

	// Daily drift within ±10% of base, plus a small intraday wiggle.
	factor := 0.90 + r.Float64()*0.20
	wiggle := 1 + (r.Float64()-0.5)*0.01*float64(at.Hour())/24

	price := base * factor * wiggle
	if price < 1 {
		price = 1
	}
	return price, nil
}

// Symbols lists the known symbols.
func (p *WalkPricing) Symbols() []string {
	out := make([]string, 0, len(p.base))
	for sym := range p.base {
		out = append(out, sym)
	}
	return out
}

// FixedPricing quotes constant prices; test helper.
type FixedPricing map[string]float64

// Price returns the fixed quote.
func (p FixedPricing) Price(symbol string, _ time.Time) (float64, error) {
	if price, ok := p[symbol]; ok {
		return price, nil
	}
	return 0, coalerr.NotFound("unknown stock symbol %q", symbol)
}

// Symbols lists the known symbols.
func (p FixedPricing) Symbols() []string {
	out := make([]string, 0, len(p))
	for sym := range p {
		out = append(out, sym)
	}
	return out
}
