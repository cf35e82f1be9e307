package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/THEREALVANHEL/coalbot/internal/clock"
	"github.com/THEREALVANHEL/coalbot/internal/economy"
	"github.com/THEREALVANHEL/coalbot/pkg/database"
	"github.com/THEREALVANHEL/coalbot/pkg/logger"
	"github.com/THEREALVANHEL/coalbot/pkg/models"
)

const (
	demotionAfter   = 24 * time.Hour
	warningDebounce = 6 * time.Hour
)

// warningLead maps each tier to how early before demotion its holders
// are warned. Higher tiers get more notice.
var warningLead = map[models.JobTier]time.Duration{
	models.TierEntry:     4 * time.Hour,
	models.TierJunior:    6 * time.Hour,
	models.TierMid:       8 * time.Hour,
	models.TierSenior:    10 * time.Hour,
	models.TierExecutive: 12 * time.Hour,
	models.TierLegendary: 12 * time.Hour,
}

// Notifier delivers a direct message to a user, best effort.
type Notifier interface {
	Notify(ctx context.Context, userID int64, message string) error
}

// JobSweep demotes users who stopped working and warns those getting
// close.
type JobSweep struct {
	store    database.Store
	clock    clock.Clock
	notifier Notifier
}

// NewJobSweep creates the sweep. The notifier may be nil.
func NewJobSweep(store database.Store, notifier Notifier, clk clock.Clock) *JobSweep {
	if clk == nil {
		clk = clock.System{}
	}
	return &JobSweep{store: store, clock: clk, notifier: notifier}
}

// Run checks every user with a job. A user idle for a full day drops
// one tier per sweep; a user inside the warning lead gets a direct
// message, at most once per debounce window.
func (j *JobSweep) Run(ctx context.Context) error {
	users, err := j.store.ListUsersWithJob(ctx)
	if err != nil {
		return err
	}

	now := j.clock.Now()
	demoted, warned := 0, 0

	for _, u := range users {
		if u.LastWork == 0 || u.JobTier == "" || u.JobTier == models.TierEntry {
			continue
		}
		idle := now.Sub(time.Unix(u.LastWork, 0))

		if idle >= demotionAfter {
			from := u.JobTier
			u.JobTier = economy.PrevTier(from)
			u.WorkStreak = 0
			u.LastWork = now.Unix()
			u.LastJobWarning = 0
			if err := j.store.SaveUser(ctx, u); err != nil {
				logger.Error(fmt.Sprintf("job demotion save failed for %d: %v", u.UserID, err), "Tasks")
				continue
			}
			demoted++
			reason := fmt.Sprintf("Inactive for %.1fh", idle.Hours())
			j.notify(ctx, u.UserID, fmt.Sprintf(
				"You were demoted from the %s tier to %s. %s.", from, u.JobTier, reason))
			continue
		}

		lead := warningLead[u.JobTier]
		if idle < demotionAfter-lead {
			continue
		}
		lastWarn := time.Unix(u.LastJobWarning, 0)
		if u.LastJobWarning > 0 && now.Sub(lastWarn) < warningDebounce {
			continue
		}

		u.LastJobWarning = now.Unix()
		if err := j.store.SaveUser(ctx, u); err != nil {
			logger.Error(fmt.Sprintf("job warning save failed for %d: %v", u.UserID, err), "Tasks")
			continue
		}
		warned++
		remaining := demotionAfter - idle
		j.notify(ctx, u.UserID, fmt.Sprintf(
			"Your %s tier job demotes in %s unless you work a shift.", u.JobTier, remaining.Round(time.Minute)))
	}

	if demoted > 0 || warned > 0 {
		logger.Info(fmt.Sprintf("job sweep: %d demoted, %d warned", demoted, warned), "Tasks")
	}
	return nil
}

func (j *JobSweep) notify(ctx context.Context, userID int64, message string) {
	if j.notifier == nil {
		return
	}
	if err := j.notifier.Notify(ctx, userID, message); err != nil {
		logger.Debug(fmt.Sprintf("job sweep notification to %d failed: %v", userID, err), "Tasks")
	}
}
