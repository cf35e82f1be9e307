package tasks

import (
	"context"
	"fmt"

	"github.com/THEREALVANHEL/coalbot/internal/economy"
	"github.com/THEREALVANHEL/coalbot/pkg/database"
	"github.com/THEREALVANHEL/coalbot/pkg/logger"
)

// InterestTask credits savings interest to every account with a
// balance.
type InterestTask struct {
	store   database.Store
	economy *economy.Service
}

// NewInterestTask creates the interest task.
func NewInterestTask(store database.Store, eco *economy.Service) *InterestTask {
	return &InterestTask{store: store, economy: eco}
}

// Run applies one interest period per saver.
func (t *InterestTask) Run(ctx context.Context) error {
	users, err := t.store.ListUsersWithSavings(ctx)
	if err != nil {
		return err
	}

	var credited int64
	count := 0
	for _, u := range users {
		amount, err := t.economy.ApplyInterest(ctx, u.UserID)
		if err != nil {
			logger.Error(fmt.Sprintf("interest failed for %d: %v", u.UserID, err), "Tasks")
			continue
		}
		if amount > 0 {
			credited += amount
			count++
		}
	}

	if count > 0 {
		logger.Info(fmt.Sprintf("interest run: %d coins across %d savers", credited, count), "Tasks")
	}
	return nil
}
