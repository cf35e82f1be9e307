// Package economy implements the authoritative mutations on user
// balances, XP, streaks, jobs, pets and portfolios. Every operation
// serializes per user, performs exactly one store write, and appends a
// transaction log entry — a cancelled handler can never leave a
// half-applied mutation.
package economy

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/THEREALVANHEL/coalbot/internal/clock"
	"github.com/THEREALVANHEL/coalbot/internal/lock"
	"github.com/THEREALVANHEL/coalbot/internal/ratelimit"
	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/THEREALVANHEL/coalbot/pkg/logger"
	"github.com/THEREALVANHEL/coalbot/pkg/models"
	"github.com/google/uuid"
)

// Config carries the tunables the service needs.
type Config struct {
	StartingCoins       int64
	MaxBankBalance      int64
	MaxSavingsBalance   int64
	SavingsInterestRate float64
	DailyWindow         time.Duration
	WorkCooldown        time.Duration
	XPCooldown          time.Duration
}

// Store is the slice of the document store the economy needs.
type Store interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	SaveUser(ctx context.Context, u *models.User) error
	AppendTransaction(ctx context.Context, tx *models.Transaction) error
}

// Service is the economy engine.
type Service struct {
	store   Store
	locks   *lock.UserLock
	limiter *ratelimit.Limiter
	gate    *ratelimit.Gate
	clock   clock.Clock
	pricing Pricing
	cfg     Config

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewService creates the economy service. The limiter must carry "xp"
// and "buy" action limits; the gate is built here from the config.
func NewService(store Store, limiter *ratelimit.Limiter, pricing Pricing, clk clock.Clock, cfg Config) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	if pricing == nil {
		pricing = NewWalkPricing()
	}

	gate := ratelimit.NewGate(map[string]time.Duration{
		models.ActionWork:  cfg.WorkCooldown,
		models.ActionDaily: cfg.DailyWindow,
	}, clk)

	return &Service{
		store:   store,
		locks:   lock.New(),
		limiter: limiter,
		gate:    gate,
		clock:   clk,
		pricing: pricing,
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SeedRand makes the RNG deterministic; test helper.
func (s *Service) SeedRand(seed int64) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng = rand.New(rand.NewSource(seed))
}

func (s *Service) roll() float64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Float64()
}

func (s *Service) rollRange(min, max int64) int64 {
	if max <= min {
		return min
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return min + s.rng.Int63n(max-min+1)
}

// mutate runs fn on the user document under the user's lock and
// persists it with a single compare-and-set write.
func (s *Service) mutate(ctx context.Context, userID int64, fn func(u *models.User) error) (*models.User, error) {
	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	if err := s.store.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// logTx appends one transaction entry. Log failures are reported but do
// not undo the already-applied mutation.
func (s *Service) logTx(ctx context.Context, userID int64, txType string, amount int64, details string) {
	tx := &models.Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      txType,
		Amount:    amount,
		Details:   details,
		Timestamp: s.clock.Now().Unix(),
	}
	if err := s.store.AppendTransaction(ctx, tx); err != nil {
		logger.Error(fmt.Sprintf("transaction log append failed for %d: %v", userID, err), "Economy")
	}
}

// GetUser exposes a read-only view of the user document.
func (s *Service) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.store.GetUser(ctx, userID)
}

// Credit adds coins to a user's wallet.
func (s *Service) Credit(ctx context.Context, userID, amount int64, reason string) (*models.User, error) {
	if amount <= 0 {
		return nil, coalerr.InvalidArgument("credit amount must be positive, got %d", amount)
	}

	u, err := s.mutate(ctx, userID, func(u *models.User) error {
		u.Coins += amount
		u.Statistics.TotalEarned += amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logTx(ctx, userID, models.TxCredit, amount, reason)
	return u, nil
}

// Debit removes coins from a user's wallet. The balance never goes
// negative; an overdraft fails without any mutation.
func (s *Service) Debit(ctx context.Context, userID, amount int64, reason string) (*models.User, error) {
	if amount <= 0 {
		return nil, coalerr.InvalidArgument("debit amount must be positive, got %d", amount)
	}

	u, err := s.mutate(ctx, userID, func(u *models.User) error {
		if u.Coins < amount {
			return coalerr.InsufficientFunds(u.Coins, amount)
		}
		u.Coins -= amount
		u.Statistics.TotalSpent += amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logTx(ctx, userID, models.TxDebit, -amount, reason)
	return u, nil
}

// Transfer moves coins between two users atomically from the caller's
// point of view. Bots cannot receive transfers.
func (s *Service) Transfer(ctx context.Context, srcID, dstID, amount int64, dstIsBot bool) error {
	if srcID == dstID {
		return coalerr.InvalidArgument("cannot transfer to yourself")
	}
	if dstIsBot {
		return coalerr.InvalidArgument("cannot transfer to a bot")
	}
	if amount <= 0 {
		return coalerr.InvalidArgument("transfer amount must be positive, got %d", amount)
	}

	s.locks.LockPair(srcID, dstID)
	defer s.locks.UnlockPair(srcID, dstID)

	src, err := s.store.GetUser(ctx, srcID)
	if err != nil {
		return err
	}
	if src.Coins < amount {
		return coalerr.InsufficientFunds(src.Coins, amount)
	}

	dst, err := s.store.GetUser(ctx, dstID)
	if err != nil {
		return err
	}

	src.Coins -= amount
	src.Statistics.TotalSpent += amount
	if err := s.store.SaveUser(ctx, src); err != nil {
		return err
	}

	dst.Coins += amount
	dst.Statistics.TotalEarned += amount
	if err := s.store.SaveUser(ctx, dst); err != nil {
		// Undo the debit so the pair stays consistent.
		src.Coins += amount
		src.Statistics.TotalSpent -= amount
		if rbErr := s.store.SaveUser(ctx, src); rbErr != nil {
			logger.Critical(fmt.Sprintf("transfer rollback failed for %d: %v", srcID, rbErr), "Economy")
		}
		return err
	}

	s.logTx(ctx, srcID, models.TxTransfer, -amount, fmt.Sprintf("to %d", dstID))
	s.logTx(ctx, dstID, models.TxTransfer, amount, fmt.Sprintf("from %d", srcID))
	return nil
}

// DailyResult reports a successful daily claim.
type DailyResult struct {
	Reward       int64
	Streak       int
	WeeklyBonus  bool
	TotalCookies int64
}

// ClaimDaily grants the daily cookie. The streak survives as long as
// claims come within twice the window; a longer gap resets it to 1.
func (s *Service) ClaimDaily(ctx context.Context, userID int64) (*DailyResult, error) {
	var result DailyResult
	now := s.clock.Now().Unix()
	window := int64(s.cfg.DailyWindow / time.Second)

	_, err := s.mutate(ctx, userID, func(u *models.User) error {
		if u.LastDaily > 0 {
			elapsed := now - u.LastDaily
			if elapsed < window {
				return coalerr.OnCooldown(time.Duration(window-elapsed) * time.Second)
			}
			if elapsed > 2*window {
				u.DailyStreak = 1
			} else {
				u.DailyStreak++
			}
		} else {
			u.DailyStreak = 1
		}

		reward := int64(1)
		weekly := u.DailyStreak > 0 && u.DailyStreak%7 == 0
		if weekly {
			reward++
		}

		u.Cookies += reward
		u.LastDaily = now

		result = DailyResult{
			Reward:       reward,
			Streak:       u.DailyStreak,
			WeeklyBonus:  weekly,
			TotalCookies: u.Cookies,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logTx(ctx, userID, models.TxDaily, result.Reward, fmt.Sprintf("streak %d", result.Streak))
	return &result, nil
}

// GambleResult reports a coin-flip outcome.
type GambleResult struct {
	Won        bool
	Amount     int64
	NewBalance int64
}

// Gamble is an unbiased coin flip for the staked amount.
func (s *Service) Gamble(ctx context.Context, userID, amount int64) (*GambleResult, error) {
	if amount <= 0 {
		return nil, coalerr.InvalidArgument("stake must be positive, got %d", amount)
	}

	won := s.roll() < 0.5
	var result GambleResult

	_, err := s.mutate(ctx, userID, func(u *models.User) error {
		if u.Coins < amount {
			return coalerr.InsufficientFunds(u.Coins, amount)
		}
		if won {
			u.Coins += amount
			u.Statistics.TotalEarned += amount
		} else {
			u.Coins -= amount
			u.Statistics.TotalSpent += amount
		}
		result = GambleResult{Won: won, Amount: amount, NewBalance: u.Coins}
		return nil
	})
	if err != nil {
		return nil, err
	}

	delta := amount
	if !won {
		delta = -amount
	}
	s.logTx(ctx, userID, models.TxGamble, delta, fmt.Sprintf("flip, stake %d", amount))
	return &result, nil
}

// Deposit moves coins from the wallet into the bank, respecting the
// bank cap.
func (s *Service) Deposit(ctx context.Context, userID, amount int64) (*models.User, error) {
	if amount <= 0 {
		return nil, coalerr.InvalidArgument("deposit amount must be positive, got %d", amount)
	}

	u, err := s.mutate(ctx, userID, func(u *models.User) error {
		if u.Coins < amount {
			return coalerr.InsufficientFunds(u.Coins, amount)
		}
		if u.BankBalance+amount > s.cfg.MaxBankBalance {
			return coalerr.InvalidArgument("bank limit is %d coins", s.cfg.MaxBankBalance)
		}
		u.Coins -= amount
		u.BankBalance += amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logTx(ctx, userID, models.TxDeposit, -amount, "wallet to bank")
	return u, nil
}

// Withdraw moves coins from the bank back to the wallet.
func (s *Service) Withdraw(ctx context.Context, userID, amount int64) (*models.User, error) {
	if amount <= 0 {
		return nil, coalerr.InvalidArgument("withdraw amount must be positive, got %d", amount)
	}

	u, err := s.mutate(ctx, userID, func(u *models.User) error {
		if u.BankBalance < amount {
			return coalerr.InsufficientFunds(u.BankBalance, amount)
		}
		u.BankBalance -= amount
		u.Coins += amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logTx(ctx, userID, models.TxWithdraw, amount, "bank to wallet")
	return u, nil
}

// SavingsDeposit moves coins into savings, where interest accrues.
func (s *Service) SavingsDeposit(ctx context.Context, userID, amount int64) (*models.User, error) {
	if amount <= 0 {
		return nil, coalerr.InvalidArgument("deposit amount must be positive, got %d", amount)
	}

	u, err := s.mutate(ctx, userID, func(u *models.User) error {
		if u.Coins < amount {
			return coalerr.InsufficientFunds(u.Coins, amount)
		}
		if u.SavingsBalance+amount > s.cfg.MaxSavingsBalance {
			return coalerr.InvalidArgument("savings limit is %d coins", s.cfg.MaxSavingsBalance)
		}
		u.Coins -= amount
		u.SavingsBalance += amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logTx(ctx, userID, models.TxSavingsDeposit, -amount, "wallet to savings")
	return u, nil
}

// SavingsWithdraw moves coins out of savings.
func (s *Service) SavingsWithdraw(ctx context.Context, userID, amount int64) (*models.User, error) {
	if amount <= 0 {
		return nil, coalerr.InvalidArgument("withdraw amount must be positive, got %d", amount)
	}

	u, err := s.mutate(ctx, userID, func(u *models.User) error {
		if u.SavingsBalance < amount {
			return coalerr.InsufficientFunds(u.SavingsBalance, amount)
		}
		u.SavingsBalance -= amount
		u.Coins += amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logTx(ctx, userID, models.TxSavingsWithdraw, amount, "savings to wallet")
	return u, nil
}

// interestPeriod is the minimum gap between interest credits for one
// account. The persisted timestamp enforces it even if the interest
// task runs more often than once a day.
const interestPeriod = 24 * time.Hour

// ApplyInterest credits one interest period on the user's savings and
// returns the amount credited. The interest task calls this per user;
// an account that accrued within the last period is skipped.
func (s *Service) ApplyInterest(ctx context.Context, userID int64) (int64, error) {
	var credited int64

	_, err := s.mutate(ctx, userID, func(u *models.User) error {
		if u.SavingsBalance <= 0 {
			return nil
		}
		now := s.clock.Now()
		if u.LastInterest > 0 && now.Sub(time.Unix(u.LastInterest, 0)) < interestPeriod {
			return nil
		}
		credited = int64(float64(u.SavingsBalance) * s.cfg.SavingsInterestRate)
		if u.SavingsBalance+credited > s.cfg.MaxSavingsBalance {
			credited = s.cfg.MaxSavingsBalance - u.SavingsBalance
		}
		if credited <= 0 {
			credited = 0
			return nil
		}
		u.SavingsBalance += credited
		u.Statistics.TotalEarned += credited
		u.LastInterest = now.Unix()
		return nil
	})
	if err != nil {
		return 0, err
	}

	if credited > 0 {
		s.logTx(ctx, userID, models.TxSavingsInterest, credited, fmt.Sprintf("rate %.2f%%", s.cfg.SavingsInterestRate*100))
	}
	return credited, nil
}

// XPResult reports an XP grant.
type XPResult struct {
	Granted   int64
	XP        int64
	Level     int
	LeveledUp bool
}

// GrantXP adds message XP, at most once per XP cooldown per user. The
// amount is clamped to [1,15]. A level increase is reported so the
// caller can update roles and announce it.
func (s *Service) GrantXP(ctx context.Context, userID, amount int64) (*XPResult, error) {
	if err := s.limiter.Allow(userID, "xp"); err != nil {
		return nil, err
	}

	if amount < 1 {
		amount = 1
	} else if amount > 15 {
		amount = 15
	}

	var result XPResult
	_, err := s.mutate(ctx, userID, func(u *models.User) error {
		u.XP += amount
		newLevel := LevelForXP(u.XP)
		result = XPResult{
			Granted:   amount,
			XP:        u.XP,
			Level:     newLevel,
			LeveledUp: newLevel > u.Level,
		}
		u.Level = newLevel
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
