package economy

import (
	"context"
	"fmt"

	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/THEREALVANHEL/coalbot/pkg/models"
)

// WorkResult reports one work shift.
type WorkResult struct {
	Job         Job
	Success     bool
	Pay         int64
	StreakBonus int64
	WorkStreak  int
	SuccessRate float64
	// Promotion is the tier that just became available, or "".
	Promotion models.JobTier
}

// Work runs one shift at the named job. The persistent work cooldown
// applies regardless of outcome, and failure resets the work streak.
func (s *Service) Work(ctx context.Context, userID int64, jobName string) (*WorkResult, error) {
	job, ok := FindJob(jobName)
	if !ok {
		return nil, coalerr.InvalidArgument("unknown job %q", jobName)
	}

	roll := s.roll()
	var result WorkResult

	_, err := s.mutate(ctx, userID, func(u *models.User) error {
		if err := s.gate.Check(u, models.ActionWork); err != nil {
			return err
		}
		if !TierUnlocked(job.Tier, u.SuccessfulWorks) {
			return coalerr.Unauthorized("the %s tier unlocks at %d successful shifts, you have %d",
				job.Tier, TierThreshold(job.Tier), u.SuccessfulWorks)
		}
		if u.JobTier == "" {
			u.JobTier = models.TierEntry
		}

		rate := SuccessRate(job.Tier, u.SuccessfulWorks, u.WorkStreak, u.RecentFailures)
		success := roll < rate

		u.TotalWorks++
		s.gate.Stamp(u, models.ActionWork)

		result = WorkResult{Job: job, Success: success, SuccessRate: rate}

		if !success {
			u.FailedWorks++
			u.RecentFailures++
			u.WorkStreak = 0
			result.WorkStreak = 0
			return nil
		}

		u.SuccessfulWorks++
		u.WorkStreak++
		if u.RecentFailures > 0 {
			u.RecentFailures--
		}
		u.Statistics.SuccessfulJobs++

		pay := s.rollRange(job.MinPay, job.MaxPay)
		bonusPct := int64(u.WorkStreak) * 2
		if bonusPct > 20 {
			bonusPct = 20
		}
		bonus := pay * bonusPct / 100

		u.Coins += pay + bonus
		u.Statistics.TotalEarned += pay + bonus

		if job.Tier == u.JobTier || tierAbove(job.Tier, u.JobTier) {
			u.JobTier = job.Tier
		}

		result.Pay = pay
		result.StreakBonus = bonus
		result.WorkStreak = u.WorkStreak
		result.Promotion = PromotionEligible(u.JobTier, u.SuccessfulWorks)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Success {
		s.logTx(ctx, userID, models.TxWork, result.Pay+result.StreakBonus,
			fmt.Sprintf("%s shift, streak %d", job.Name, result.WorkStreak))
	} else {
		s.logTx(ctx, userID, models.TxWork, 0, fmt.Sprintf("%s shift failed", job.Name))
	}
	return &result, nil
}

// tierAbove reports whether a ranks above b.
func tierAbove(a, b models.JobTier) bool {
	ai, bi := -1, -1
	for i, t := range tierOrder {
		if t == a {
			ai = i
		}
		if t == b {
			bi = i
		}
	}
	return ai > bi
}
