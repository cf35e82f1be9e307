package ratelimit

import (
	"time"

	"github.com/THEREALVANHEL/coalbot/internal/clock"
	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/THEREALVANHEL/coalbot/pkg/models"
)

// Gate checks persistent per-action cooldowns against the last-use
// timestamps stored on the user document. The caller writes the new
// timestamp in the same update that applies the action's effect.
type Gate struct {
	clock     clock.Clock
	cooldowns map[string]time.Duration
}

// NewGate creates a gate with per-action cooldown durations.
func NewGate(cooldowns map[string]time.Duration, clk clock.Clock) *Gate {
	if clk == nil {
		clk = clock.System{}
	}
	return &Gate{clock: clk, cooldowns: cooldowns}
}

// Cooldown returns the configured cooldown for an action (0 if none).
func (g *Gate) Cooldown(action string) time.Duration {
	return g.cooldowns[action]
}

// Check returns OnCooldown with the remaining time when the action was
// used too recently. A zero last-use timestamp always passes.
func (g *Gate) Check(u *models.User, action string) error {
	cooldown := g.cooldowns[action]
	if cooldown <= 0 {
		return nil
	}

	last := u.LastAction(action)
	if last == 0 {
		return nil
	}

	elapsed := g.clock.Now().Unix() - last
	if remaining := cooldown - time.Duration(elapsed)*time.Second; remaining > 0 {
		return coalerr.OnCooldown(remaining)
	}
	return nil
}

// Stamp records the action's use at the current time on the document.
// The caller persists the document afterwards.
func (g *Gate) Stamp(u *models.User, action string) {
	u.SetLastAction(action, g.clock.Now().Unix())
}
