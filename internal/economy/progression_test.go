package economy

import (
	"testing"

	"github.com/THEREALVANHEL/coalbot/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestXPForLevelMonotonic(t *testing.T) {
	prev := int64(-1)
	for level := 0; level <= 120; level++ {
		xp := XPForLevel(level)
		assert.Greater(t, xp, prev, "level %d", level)
		prev = xp
	}
}

func TestLevelForXPInvertsCurve(t *testing.T) {
	for _, level := range []int{0, 1, 5, 10, 11, 49, 50, 51, 99, 100, 101} {
		needed := XPForLevel(level)
		assert.Equal(t, level, LevelForXP(needed), "exactly enough xp for level %d", level)
		if level > 0 {
			assert.Equal(t, level-1, LevelForXP(needed-1), "one xp short of level %d", level)
		}
	}
	assert.Equal(t, 0, LevelForXP(-5))
}

func TestTierThresholds(t *testing.T) {
	tests := []struct {
		tier models.JobTier
		want int
	}{
		{models.TierEntry, 0},
		{models.TierJunior, 15},
		{models.TierMid, 50},
		{models.TierSenior, 135},
		{models.TierExecutive, 335},
		{models.TierLegendary, 835},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierThreshold(tt.tier))
		assert.True(t, TierUnlocked(tt.tier, tt.want))
		if tt.want > 0 {
			assert.False(t, TierUnlocked(tt.tier, tt.want-1))
		}
	}
}

func TestTierNavigation(t *testing.T) {
	assert.Equal(t, models.TierJunior, NextTier(models.TierEntry))
	assert.Equal(t, models.JobTier(""), NextTier(models.TierLegendary))
	assert.Equal(t, models.TierEntry, PrevTier(models.TierEntry))
	assert.Equal(t, models.TierExecutive, PrevTier(models.TierLegendary))
}

func TestPromotionEligible(t *testing.T) {
	assert.Equal(t, models.TierJunior, PromotionEligible(models.TierEntry, 15))
	assert.Equal(t, models.JobTier(""), PromotionEligible(models.TierEntry, 14))
	assert.Equal(t, models.JobTier(""), PromotionEligible(models.TierLegendary, 10_000))
}

func TestSuccessRateClamps(t *testing.T) {
	// Base rates decrease with tier difficulty.
	assert.InDelta(t, 0.90, SuccessRate(models.TierEntry, 0, 0, 0), 1e-9)
	assert.InDelta(t, 0.40, SuccessRate(models.TierLegendary, 0, 0, 0), 1e-9)

	// Experience and streak bonuses cap out.
	maxed := SuccessRate(models.TierEntry, 1_000, 100, 0)
	assert.InDelta(t, 0.95, maxed, 1e-9)

	// Failures drag the rate down but never below the floor.
	floored := SuccessRate(models.TierLegendary, 0, 0, 100)
	assert.InDelta(t, 0.25, floored, 1e-9)
	assert.GreaterOrEqual(t, SuccessRate(models.TierLegendary, 0, 0, 1_000_000), 0.10)
}

func TestAvailableJobsGrowWithExperience(t *testing.T) {
	entry := AvailableJobs(0)
	for _, j := range entry {
		assert.Equal(t, models.TierEntry, j.Tier)
	}

	all := AvailableJobs(835)
	assert.Greater(t, len(all), len(entry))

	_, ok := FindJob("dragon tamer")
	assert.True(t, ok)
	_, ok = FindJob("astronaut")
	assert.False(t, ok)
}
