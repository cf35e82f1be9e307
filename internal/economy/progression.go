package economy

import (
	"math"

	"github.com/THEREALVANHEL/coalbot/pkg/models"
)

// XPForLevel returns the total XP required to reach a level. The curve
// steepens in bands so early levels come fast and late levels crawl.
func XPForLevel(level int) int64 {
	if level <= 0 {
		return 0
	}
	l := float64(level)
	switch {
	case level <= 10:
		return int64(75 * math.Pow(l, 1.6))
	case level <= 50:
		return int64(120 * math.Pow(l, 1.9))
	case level <= 100:
		return int64(150 * math.Pow(l, 2.1))
	default:
		return int64(200 * math.Pow(l, 2.3))
	}
}

// LevelForXP returns the largest level whose next step is still paid
// for by xp.
func LevelForXP(xp int64) int {
	if xp < 0 {
		return 0
	}
	level := 0
	for XPForLevel(level+1) <= xp {
		level++
	}
	return level
}

// tierOrder lists tiers from easiest to hardest.
var tierOrder = []models.JobTier{
	models.TierEntry,
	models.TierJunior,
	models.TierMid,
	models.TierSenior,
	models.TierExecutive,
	models.TierLegendary,
}

// tierThresholds maps each tier to the successful_works count that
// unlocks it. Promotion to a tier requires reaching its threshold.
var tierThresholds = map[models.JobTier]int{
	models.TierEntry:     0,
	models.TierJunior:    15,
	models.TierMid:       50,
	models.TierSenior:    135,
	models.TierExecutive: 335,
	models.TierLegendary: 835,
}

// tierBaseRate is the base work success probability per tier.
var tierBaseRate = map[models.JobTier]float64{
	models.TierEntry:     0.90,
	models.TierJunior:    0.80,
	models.TierMid:       0.70,
	models.TierSenior:    0.60,
	models.TierExecutive: 0.50,
	models.TierLegendary: 0.40,
}

// TierThreshold returns the successful_works needed to unlock a tier.
func TierThreshold(tier models.JobTier) int {
	return tierThresholds[tier]
}

// TierUnlocked reports whether the tier is available at the given
// successful-work count.
func TierUnlocked(tier models.JobTier, successfulWorks int) bool {
	threshold, ok := tierThresholds[tier]
	return ok && successfulWorks >= threshold
}

// NextTier returns the tier above the given one, or "" at the top.
func NextTier(tier models.JobTier) models.JobTier {
	for i, t := range tierOrder {
		if t == tier && i+1 < len(tierOrder) {
			return tierOrder[i+1]
		}
	}
	return ""
}

// PrevTier returns the tier below the given one, or the same tier at
// the bottom. The demotion sweep uses this.
func PrevTier(tier models.JobTier) models.JobTier {
	for i, t := range tierOrder {
		if t == tier {
			if i == 0 {
				return tier
			}
			return tierOrder[i-1]
		}
	}
	return models.TierEntry
}

// PromotionEligible returns the next tier when the work count has
// reached its unlock threshold, or "".
func PromotionEligible(tier models.JobTier, successfulWorks int) models.JobTier {
	next := NextTier(tier)
	if next == "" {
		return ""
	}
	if successfulWorks >= tierThresholds[next] {
		return next
	}
	return ""
}

// SuccessRate computes the work success probability, clamped to
// [0.10, 0.95].
func SuccessRate(tier models.JobTier, successfulWorks, workStreak, recentFailures int) float64 {
	base, ok := tierBaseRate[tier]
	if !ok {
		base = tierBaseRate[models.TierEntry]
	}

	experienceBonus := math.Min(0.10, float64(successfulWorks)*0.001)
	streakBonus := math.Min(0.05, float64(workStreak)*0.005)
	failurePenalty := math.Min(0.15, float64(recentFailures)*0.03)

	rate := base + experienceBonus + streakBonus - failurePenalty
	return math.Min(0.95, math.Max(0.10, rate))
}

// Job describes one job a user can take.
type Job struct {
	Name   string
	Tier   models.JobTier
	MinPay int64
	MaxPay int64
}

// jobTable lists the jobs per tier.
var jobTable = []Job{
	{Name: "newspaper delivery", Tier: models.TierEntry, MinPay: 20, MaxPay: 60},
	{Name: "dog walker", Tier: models.TierEntry, MinPay: 25, MaxPay: 70},
	{Name: "barista", Tier: models.TierJunior, MinPay: 50, MaxPay: 120},
	{Name: "courier", Tier: models.TierJunior, MinPay: 60, MaxPay: 140},
	{Name: "mechanic", Tier: models.TierMid, MinPay: 110, MaxPay: 240},
	{Name: "programmer", Tier: models.TierMid, MinPay: 130, MaxPay: 280},
	{Name: "engineer", Tier: models.TierSenior, MinPay: 240, MaxPay: 480},
	{Name: "architect", Tier: models.TierSenior, MinPay: 260, MaxPay: 520},
	{Name: "director", Tier: models.TierExecutive, MinPay: 500, MaxPay: 950},
	{Name: "mogul", Tier: models.TierExecutive, MinPay: 550, MaxPay: 1050},
	{Name: "dragon tamer", Tier: models.TierLegendary, MinPay: 1000, MaxPay: 2200},
}

// AvailableJobs returns every job whose tier is unlocked at the given
// successful-work count.
func AvailableJobs(successfulWorks int) []Job {
	var jobs []Job
	for _, j := range jobTable {
		if TierUnlocked(j.Tier, successfulWorks) {
			jobs = append(jobs, j)
		}
	}
	return jobs
}

// FindJob looks a job up by name.
func FindJob(name string) (Job, bool) {
	for _, j := range jobTable {
		if j.Name == name {
			return j, true
		}
	}
	return Job{}, false
}
