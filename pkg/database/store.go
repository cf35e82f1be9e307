package database

import (
	"context"

	"github.com/THEREALVANHEL/coalbot/pkg/models"
)

// Collection names.
const (
	CollUsers        = "users"
	CollGuilds       = "guild_settings"
	CollWarnings     = "warnings"
	CollTickets      = "tickets"
	CollTranscripts  = "transcripts"
	CollTransactions = "transactions"
	CollAnalytics    = "analytics"
)

// Store is the document store behind the bot services. User writes go
// through SaveUser, which performs a compare-and-set on the document's
// version field so lost updates surface as Conflict instead of being
// silently overwritten.
type Store interface {
	// GetUser returns the user document, creating it with defaults on
	// first read.
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	// SaveUser persists the document if its version still matches,
	// then bumps the in-memory version. Returns Conflict on mismatch.
	SaveUser(ctx context.Context, u *models.User) error
	// TopUsers returns a page of users sorted descending by the given
	// field ("coins", "xp", "cookies").
	TopUsers(ctx context.Context, sortField string, skip, limit int64) ([]*models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	ListUsersWithSavings(ctx context.Context) ([]*models.User, error)
	// ListUsersWithJob returns users that have worked at least once;
	// the job-activity sweep iterates these.
	ListUsersWithJob(ctx context.Context) ([]*models.User, error)

	GetGuildSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error)
	SaveGuildSettings(ctx context.Context, gs *models.GuildSettings) error

	AppendWarning(ctx context.Context, w *models.Warning) error
	ListWarnings(ctx context.Context, guildID, userID int64) ([]*models.Warning, error)
	ClearWarnings(ctx context.Context, guildID, userID int64) (int64, error)

	AppendTransaction(ctx context.Context, tx *models.Transaction) error
	ListTransactions(ctx context.Context, userID int64, limit int64) ([]*models.Transaction, error)

	CreateTicket(ctx context.Context, t *models.Ticket) error
	GetTicket(ctx context.Context, channelID int64) (*models.Ticket, error)
	// UpdateTicket persists the ticket only if its stored status still
	// equals from; Conflict otherwise. This guards every transition.
	UpdateTicket(ctx context.Context, t *models.Ticket, from models.TicketStatus) error
	AppendTicketMessage(ctx context.Context, channelID int64, msg models.TicketMessage) error
	// FindActiveTicket returns the creator's non-terminal ticket in the
	// guild, or nil when none exists.
	FindActiveTicket(ctx context.Context, guildID, creatorID int64) (*models.Ticket, error)

	SaveTranscript(ctx context.Context, tr *models.Transcript) error

	// RecordCommandUsage upserts the per-day usage counter.
	RecordCommandUsage(ctx context.Context, command, date string) error

	Snapshot(ctx context.Context) (*models.Snapshot, error)
	Restore(ctx context.Context, snap *models.Snapshot) error
}

// NewDefaultUser builds the document written on first read.
func NewDefaultUser(userID, startingCoins, now int64) *models.User {
	return &models.User{
		UserID:    userID,
		Coins:     startingCoins,
		JobTier:   models.TierEntry,
		Inventory: make(map[string]int64),
		Portfolio: make(map[string]models.Holding),
		CreatedAt: now,
	}
}
