package ratelimit

import (
	"testing"
	"time"

	"github.com/THEREALVANHEL/coalbot/internal/clock"
	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterSlidingWindow(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	limiter := NewLimiter(DefaultLimits(), clk)

	// trivia allows 5 per minute
	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Allow(1, "trivia"))
		clk.Advance(time.Second)
	}

	err := limiter.Allow(1, "trivia")
	require.Error(t, err)
	assert.Equal(t, coalerr.KindRateLimited, coalerr.KindOf(err))

	// The first attempt was at t=0, so 55s remain of its window.
	remaining, ok := coalerr.RetryAfter(err)
	require.True(t, ok)
	assert.Equal(t, 55*time.Second, remaining)

	// Once the first stamp ages out a new attempt fits.
	clk.Advance(56 * time.Second)
	assert.NoError(t, limiter.Allow(1, "trivia"))
}

func TestLimiterWindowBoundary(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	limiter := NewLimiter(DefaultLimits(), clk)

	require.NoError(t, limiter.Allow(1, "work"))

	clk.Advance(time.Hour - time.Second)
	err := limiter.Allow(1, "work")
	assert.Error(t, err, "stamp inside the window still counts")

	clk.Advance(time.Second)
	assert.NoError(t, limiter.Allow(1, "work"))
}

func TestDailyWindowMatchesClaimCooldown(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	limiter := NewLimiter(DefaultLimits(), clk)

	require.NoError(t, limiter.Allow(1, "daily"))

	clk.Advance(21 * time.Hour)
	err := limiter.Allow(1, "daily")
	require.Error(t, err)
	assert.Equal(t, coalerr.KindRateLimited, coalerr.KindOf(err))

	// A claim at exactly 22h must pass so the limiter never outlasts
	// the persistent daily cooldown.
	clk.Advance(time.Hour)
	assert.NoError(t, limiter.Allow(1, "daily"))
}

func TestLimiterIsolatesUsersAndActions(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	limiter := NewLimiter(DefaultLimits(), clk)

	require.NoError(t, limiter.Allow(1, "work"))
	require.Error(t, limiter.Allow(1, "work"))

	assert.NoError(t, limiter.Allow(2, "work"), "other users are unaffected")
	assert.NoError(t, limiter.Allow(1, "daily"), "other actions are unaffected")
}

func TestLimiterTighten(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	limiter := NewLimiter(DefaultLimits(), clk)

	// slots allows 10 per minute; tightening halves it to 5.
	limiter.Tighten(7, "slots")
	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Allow(7, "slots"))
	}
	assert.Error(t, limiter.Allow(7, "slots"))

	// Repeated tightening floors at one request per window.
	for i := 0; i < 10; i++ {
		limiter.Tighten(7, "slots")
	}
	clk.Advance(2 * time.Minute)
	require.NoError(t, limiter.Allow(7, "slots"))
	assert.Error(t, limiter.Allow(7, "slots"))
}

func TestLimiterReset(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	limiter := NewLimiter(DefaultLimits(), clk)

	require.NoError(t, limiter.Allow(3, "work"))
	require.Error(t, limiter.Allow(3, "work"))
	limiter.TightenAll(3)

	limiter.Reset(3)
	assert.NoError(t, limiter.Allow(3, "work"))
}

func TestLimiterSweep(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	limiter := NewLimiter(DefaultLimits(), clk)

	require.NoError(t, limiter.Allow(1, "trivia"))
	require.NoError(t, limiter.Allow(2, "trivia"))

	assert.Equal(t, 0, limiter.Sweep(), "live buckets stay")

	clk.Advance(2 * time.Minute)
	assert.Equal(t, 2, limiter.Sweep())
}

func TestLimiterUnknownActionUsesDefault(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	limiter := NewLimiter(DefaultLimits(), clk)

	for i := 0; i < DefaultLimit.MaxRequests; i++ {
		require.NoError(t, limiter.Allow(1, "mystery"))
	}
	assert.Error(t, limiter.Allow(1, "mystery"))
}
