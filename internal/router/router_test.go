package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/THEREALVANHEL/coalbot/internal/analytics"
	"github.com/THEREALVANHEL/coalbot/internal/clock"
	"github.com/THEREALVANHEL/coalbot/internal/ratelimit"
	"github.com/THEREALVANHEL/coalbot/internal/security"
	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, features map[string]bool) (*Router, *analytics.Collector, *security.Service, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	limiter := ratelimit.NewLimiter(ratelimit.DefaultLimits(), clk)
	sec := security.NewService(limiter, clk)
	collector := analytics.NewCollector(nil, clk)
	return New(sec, limiter, collector, features), collector, sec, clk
}

func TestBeforeAllowsNormalDispatch(t *testing.T) {
	r, _, _, _ := newTestRouter(t, nil)

	assert.NoError(t, r.Before(1, Meta{Name: "ping"}))
	assert.NoError(t, r.Before(1, Meta{Name: "work", Action: "work"}))
}

func TestBeforeFeatureFlag(t *testing.T) {
	r, _, _, _ := newTestRouter(t, map[string]bool{"economy": true, "stocks": false})

	assert.NoError(t, r.Before(1, Meta{Name: "work", Feature: "economy"}))

	err := r.Before(1, Meta{Name: "stockbuy", Feature: "stocks"})
	require.Error(t, err)
	assert.Equal(t, coalerr.KindNotFound, coalerr.KindOf(err))

	// Unknown flags read as off.
	err = r.Before(1, Meta{Name: "music", Feature: "music"})
	assert.Equal(t, coalerr.KindNotFound, coalerr.KindOf(err))
}

func TestSetEnabledTogglesCommands(t *testing.T) {
	r, _, _, _ := newTestRouter(t, nil)

	r.SetEnabled("slots", false)
	err := r.Before(1, Meta{Name: "slots"})
	assert.Equal(t, coalerr.KindNotFound, coalerr.KindOf(err))

	r.SetEnabled("slots", true)
	assert.NoError(t, r.Before(1, Meta{Name: "slots"}))
}

func TestBeforeBlockedUser(t *testing.T) {
	r, _, sec, _ := newTestRouter(t, nil)

	sec.Block(7, "manual")
	err := r.Before(7, Meta{Name: "ping"})
	require.Error(t, err)
	assert.Equal(t, coalerr.KindSuspiciousActivity, coalerr.KindOf(err))
}

func TestBeforeRateLimits(t *testing.T) {
	r, _, _, clk := newTestRouter(t, nil)

	meta := Meta{Name: "work", Action: "work"}
	require.NoError(t, r.Before(1, meta))

	err := r.Before(1, meta)
	require.Error(t, err)
	assert.Equal(t, coalerr.KindRateLimited, coalerr.KindOf(err))

	clk.Advance(time.Hour)
	assert.NoError(t, r.Before(1, meta))
}

func TestAfterRecordsOutcome(t *testing.T) {
	r, collector, _, _ := newTestRouter(t, nil)
	ctx := context.Background()

	r.After(ctx, 1, Meta{Name: "work"}, 5*time.Millisecond, nil)
	r.After(ctx, 1, Meta{Name: "work"}, 7*time.Millisecond, coalerr.InsufficientFunds(10, 60))

	assert.Equal(t, int64(2), collector.CommandCounts()["work"])
	assert.Len(t, collector.RecentErrors(10), 1)
	assert.Equal(t, 6*time.Millisecond, collector.AverageLatency("work"))
}

func TestTranslate(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"cooldown", coalerr.OnCooldown(90 * time.Second), "Slow down! Try again in 1m30s."},
		{"rate limited", coalerr.RateLimited(5 * time.Second), "Slow down! Try again in 5s."},
		{"funds", coalerr.InsufficientFunds(10, 60), "You don't have enough coins for that."},
		{"shares", coalerr.InsufficientShares(3, 5), "You don't own that many shares."},
		{"items", coalerr.InsufficientItems("no pet food"), "You're missing the item for that. Check the shop."},
		{"invalid", coalerr.InvalidArgument("that job does not exist"), "That job does not exist"},
		{"conflict", coalerr.Conflict("you already have an open ticket"), "You already have an open ticket"},
		{"suspicious", coalerr.Suspicious("blocked: wash trading"), "Something went wrong. Please try again later."},
		{"external", coalerr.External(errors.New("dial tcp refused"), "mongo down"), "A backend service is unavailable. Please try again shortly."},
		{"internal", errors.New("nil deref"), "An unexpected error occurred. The team has been notified."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Translate(tc.err))
		})
	}
}
