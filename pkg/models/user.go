package models

// JobTier is a named band of job difficulty.
type JobTier string

const (
	TierEntry     JobTier = "entry"
	TierJunior    JobTier = "junior"
	TierMid       JobTier = "mid"
	TierSenior    JobTier = "senior"
	TierExecutive JobTier = "executive"
	TierLegendary JobTier = "legendary"
)

// Statistics holds aggregate per-user counters.
type Statistics struct {
	TotalEarned    int64 `bson:"total_earned" json:"total_earned"`
	TotalSpent     int64 `bson:"total_spent" json:"total_spent"`
	SuccessfulJobs int64 `bson:"successful_jobs" json:"successful_jobs"`
	CommandsUsed   int64 `bson:"commands_used" json:"commands_used"`
	LastActivity   int64 `bson:"last_activity" json:"last_activity"`
}

// Pet is the optional companion sub-document. Hunger, happiness and
// health stay in [0,100]; every mutation clamps them.
type Pet struct {
	Name       string  `bson:"name" json:"name"`
	HP         int     `bson:"hp" json:"hp"`
	MaxHP      int     `bson:"max_hp" json:"max_hp"`
	Attack     int     `bson:"attack" json:"attack"`
	Defense    int     `bson:"defense" json:"defense"`
	Hunger     int     `bson:"hunger" json:"hunger"`
	Happiness  int     `bson:"happiness" json:"happiness"`
	Health     int     `bson:"health" json:"health"`
	Level      int     `bson:"level" json:"level"`
	Exp        int64   `bson:"exp" json:"exp"`
	ExpNeeded  float64 `bson:"exp_needed" json:"exp_needed"`
	LastFed    int64   `bson:"last_fed" json:"last_fed"`
	LastPlayed int64   `bson:"last_played" json:"last_played"`
}

// Holding is one portfolio entry. Shares is always > 0; an entry whose
// share count would reach zero is removed from the portfolio instead.
type Holding struct {
	Shares   int64   `bson:"shares" json:"shares"`
	AvgPrice float64 `bson:"avg_price" json:"avg_price"`
}

// TemporaryItem is a role or purchase with an expiry. EndTime 0 means
// permanent.
type TemporaryItem struct {
	ID      string `bson:"id" json:"id"`
	EndTime int64  `bson:"end_time" json:"end_time"`
}

// User is the per-member document. All timestamps are wall-clock unix
// seconds; 0 means "never". Version backs the compare-and-set write
// path, see the database package.
type User struct {
	UserID  int64 `bson:"user_id" json:"user_id"`
	Version int64 `bson:"version" json:"version"`

	Coins          int64 `bson:"coins" json:"coins"`
	BankBalance    int64 `bson:"bank_balance" json:"bank_balance"`
	SavingsBalance int64 `bson:"savings_balance" json:"savings_balance"`

	XP      int64 `bson:"xp" json:"xp"`
	Level   int   `bson:"level" json:"level"`
	Cookies int64 `bson:"cookies" json:"cookies"`

	DailyStreak int `bson:"daily_streak" json:"daily_streak"`
	WorkStreak  int `bson:"work_streak" json:"work_streak"`

	JobTier         JobTier `bson:"job_tier" json:"job_tier"`
	SuccessfulWorks int     `bson:"successful_works" json:"successful_works"`
	TotalWorks      int     `bson:"total_works" json:"total_works"`
	FailedWorks     int     `bson:"failed_works" json:"failed_works"`
	RecentFailures  int     `bson:"recent_failures" json:"recent_failures"`

	LastDaily          int64 `bson:"last_daily" json:"last_daily"`
	LastWork           int64 `bson:"last_work" json:"last_work"`
	LastFortune        int64 `bson:"last_fortune" json:"last_fortune"`
	LastDailyChallenge int64 `bson:"last_daily_challenge" json:"last_daily_challenge"`
	LastJobWarning     int64 `bson:"last_job_warning" json:"last_job_warning"`
	LastInterest       int64 `bson:"last_interest" json:"last_interest"`

	TemporaryRoles     []TemporaryItem `bson:"temporary_roles" json:"temporary_roles"`
	TemporaryPurchases []TemporaryItem `bson:"temporary_purchases" json:"temporary_purchases"`

	Statistics Statistics         `bson:"statistics" json:"statistics"`
	Inventory  map[string]int64   `bson:"inventory" json:"inventory"`
	Pet        *Pet               `bson:"pet,omitempty" json:"pet,omitempty"`
	Portfolio  map[string]Holding `bson:"portfolio" json:"portfolio"`

	CreatedAt int64 `bson:"created_at" json:"created_at"`
}

// Cooldown action names used with LastAction / SetLastAction.
const (
	ActionDaily          = "daily"
	ActionWork           = "work"
	ActionFortune        = "fortune"
	ActionDailyChallenge = "daily_challenge"
)

// LastAction returns the persisted last-use timestamp for an action,
// or 0 if the action has never been used (or is not tracked).
func (u *User) LastAction(action string) int64 {
	switch action {
	case ActionDaily:
		return u.LastDaily
	case ActionWork:
		return u.LastWork
	case ActionFortune:
		return u.LastFortune
	case ActionDailyChallenge:
		return u.LastDailyChallenge
	}
	return 0
}

// SetLastAction records the last-use timestamp for an action. The
// caller persists it in the same write that applies the effect.
func (u *User) SetLastAction(action string, ts int64) {
	switch action {
	case ActionDaily:
		u.LastDaily = ts
	case ActionWork:
		u.LastWork = ts
	case ActionFortune:
		u.LastFortune = ts
	case ActionDailyChallenge:
		u.LastDailyChallenge = ts
	}
}

// Clone returns a deep copy of the user document.
func (u *User) Clone() *User {
	c := *u
	if u.Inventory != nil {
		c.Inventory = make(map[string]int64, len(u.Inventory))
		for k, v := range u.Inventory {
			c.Inventory[k] = v
		}
	}
	if u.Portfolio != nil {
		c.Portfolio = make(map[string]Holding, len(u.Portfolio))
		for k, v := range u.Portfolio {
			c.Portfolio[k] = v
		}
	}
	if u.Pet != nil {
		pet := *u.Pet
		c.Pet = &pet
	}
	c.TemporaryRoles = append([]TemporaryItem(nil), u.TemporaryRoles...)
	c.TemporaryPurchases = append([]TemporaryItem(nil), u.TemporaryPurchases...)
	return &c
}
