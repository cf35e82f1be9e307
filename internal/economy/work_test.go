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

func TestWorkUnknownJob(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Work(context.Background(), 1, "astronaut")
	assert.Equal(t, coalerr.KindInvalidArgument, coalerr.KindOf(err))
}

func TestWorkLockedTier(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Work(context.Background(), 1, "barista")
	require.Error(t, err)
	assert.Equal(t, coalerr.KindUnauthorized, coalerr.KindOf(err))
}

func TestWorkCooldownAppliesRegardlessOfOutcome(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	svc.SeedRand(1)
	_, err := svc.Work(ctx, 1, "dog walker")
	require.NoError(t, err)

	_, err = svc.Work(ctx, 1, "dog walker")
	require.Error(t, err)
	assert.Equal(t, coalerr.KindOnCooldown, coalerr.KindOf(err))

	clk.Advance(time.Hour)
	_, err = svc.Work(ctx, 1, "dog walker")
	assert.NoError(t, err)
}

func TestWorkAccounting(t *testing.T) {
	svc, store, clk := newTestService(t)
	ctx := context.Background()

	svc.SeedRand(42)
	var successes, failures int
	for i := 0; i < 30; i++ {
		res, err := svc.Work(ctx, 1, "newspaper delivery")
		require.NoError(t, err)
		if res.Success {
			successes++
			assert.GreaterOrEqual(t, res.Pay, int64(20))
			assert.LessOrEqual(t, res.Pay, int64(60))
		} else {
			failures++
			assert.Zero(t, res.Pay)
			assert.Zero(t, res.WorkStreak, "failure resets the streak")
		}
		clk.Advance(time.Hour)
	}

	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 30, u.TotalWorks)
	assert.Equal(t, successes, u.SuccessfulWorks)
	assert.Equal(t, failures, u.FailedWorks)
	assert.Greater(t, successes, 0, "entry tier succeeds most of the time")
}

func TestWorkStreakBonusCap(t *testing.T) {
	svc, store, clk := newTestService(t)
	ctx := context.Background()

	// Force a long streak; the bonus caps at 20% of the shift pay.
	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	u.WorkStreak = 50
	u.SuccessfulWorks = 5
	require.NoError(t, store.SaveUser(ctx, u))

	svc.SeedRand(7)
	for {
		res, err := svc.Work(ctx, 1, "dog walker")
		require.NoError(t, err)
		clk.Advance(time.Hour)
		if res.Success {
			assert.Equal(t, res.Pay*20/100, res.StreakBonus)
			break
		}
		// A failure reset the streak; restore it before retrying.
		u, err = store.GetUser(ctx, 1)
		require.NoError(t, err)
		u.WorkStreak = 50
		require.NoError(t, store.SaveUser(ctx, u))
	}
}

func TestWorkPromotionSignal(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	// One success away from the junior threshold.
	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	u.SuccessfulWorks = TierThreshold(models.TierJunior) - 1
	require.NoError(t, store.SaveUser(ctx, u))

	svc.SeedRand(3)
	res, err := svc.Work(ctx, 1, "newspaper delivery")
	require.NoError(t, err)
	if res.Success {
		assert.Equal(t, models.TierJunior, res.Promotion)
	} else {
		assert.Equal(t, models.JobTier(""), res.Promotion)
	}
}

func TestWorkUpgradesJobTier(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	u.SuccessfulWorks = TierThreshold(models.TierJunior)
	require.NoError(t, store.SaveUser(ctx, u))

	svc.SeedRand(5)
	res, err := svc.Work(ctx, 1, "barista")
	require.NoError(t, err)

	if res.Success {
		u, _ = store.GetUser(ctx, 1)
		assert.Equal(t, models.TierJunior, u.JobTier)
	}
}
