package database

import (
	"context"
	"sort"
	"sync"
	"time"

	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/THEREALVANHEL/coalbot/pkg/models"
)

// MemoryStore is an in-process Store used by the test suites and as a
// scratch store when no database is configured. Semantics mirror
// MongoStore: deep copies on read, compare-and-set on user writes,
// status-preconditioned ticket updates.
type MemoryStore struct {
	mu            sync.RWMutex
	startingCoins int64

	users        map[int64]*models.User
	guilds       map[int64]*models.GuildSettings
	warnings     []*models.Warning
	tickets      map[int64]*models.Ticket
	transcripts  []*models.Transcript
	transactions []*models.Transaction
	usage        map[string]int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(startingCoins int64) *MemoryStore {
	return &MemoryStore{
		startingCoins: startingCoins,
		users:         make(map[int64]*models.User),
		guilds:        make(map[int64]*models.GuildSettings),
		tickets:       make(map[int64]*models.Ticket),
		usage:         make(map[string]int64),
	}
}

// GetUser returns a copy of the user, creating defaults on first read.
func (s *MemoryStore) GetUser(_ context.Context, userID int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		u = NewDefaultUser(userID, s.startingCoins, time.Now().Unix())
		s.users[userID] = u
	}
	return u.Clone(), nil
}

// SaveUser stores the document if the version still matches.
func (s *MemoryStore) SaveUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[u.UserID]
	if !ok || current.Version != u.Version {
		return coalerr.Conflict("user %d was modified concurrently", u.UserID)
	}
	next := u.Clone()
	next.Version++
	s.users[u.UserID] = next
	u.Version = next.Version
	return nil
}

// TopUsers returns a page of users sorted descending by field.
func (s *MemoryStore) TopUsers(_ context.Context, sortField string, skip, limit int64) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u.Clone())
	}
	sort.Slice(all, func(i, j int) bool {
		return sortValue(all[i], sortField) > sortValue(all[j], sortField)
	})

	if skip >= int64(len(all)) {
		return nil, nil
	}
	all = all[skip:]
	if limit > 0 && int64(len(all)) > limit {
		all = all[:limit]
	}
	return all, nil
}

func sortValue(u *models.User, field string) int64 {
	switch field {
	case "xp":
		return u.XP
	case "cookies":
		return u.Cookies
	case "bank_balance":
		return u.BankBalance
	default:
		return u.Coins
	}
}

// CountUsers returns the number of user documents.
func (s *MemoryStore) CountUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

// ListUsersWithSavings returns users with a positive savings balance.
func (s *MemoryStore) ListUsersWithSavings(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.User
	for _, u := range s.users {
		if u.SavingsBalance > 0 {
			out = append(out, u.Clone())
		}
	}
	return out, nil
}

// ListUsersWithJob returns users that have worked at least once.
func (s *MemoryStore) ListUsersWithJob(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.User
	for _, u := range s.users {
		if u.LastWork > 0 {
			out = append(out, u.Clone())
		}
	}
	return out, nil
}

// GetGuildSettings returns settings, defaults on first read.
func (s *MemoryStore) GetGuildSettings(_ context.Context, guildID int64) (*models.GuildSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if gs, ok := s.guilds[guildID]; ok {
		copy := *gs
		copy.TicketSupportRoles = append([]int64(nil), gs.TicketSupportRoles...)
		return &copy, nil
	}
	return &models.GuildSettings{GuildID: guildID, StarCount: 3}, nil
}

// SaveGuildSettings upserts settings.
func (s *MemoryStore) SaveGuildSettings(_ context.Context, gs *models.GuildSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *gs
	copy.TicketSupportRoles = append([]int64(nil), gs.TicketSupportRoles...)
	s.guilds[gs.GuildID] = &copy
	return nil
}

// AppendWarning records one warning.
func (s *MemoryStore) AppendWarning(_ context.Context, w *models.Warning) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *w
	s.warnings = append(s.warnings, &copy)
	return nil
}

// ListWarnings returns a user's warnings oldest first.
func (s *MemoryStore) ListWarnings(_ context.Context, guildID, userID int64) ([]*models.Warning, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Warning
	for _, w := range s.warnings {
		if w.GuildID == guildID && w.UserID == userID {
			copy := *w
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

// ClearWarnings removes all of a user's warnings.
func (s *MemoryStore) ClearWarnings(_ context.Context, guildID, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.warnings[:0]
	var removed int64
	for _, w := range s.warnings {
		if w.GuildID == guildID && w.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, w)
	}
	s.warnings = kept
	return removed, nil
}

// AppendTransaction records one log entry.
func (s *MemoryStore) AppendTransaction(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *tx
	s.transactions = append(s.transactions, &copy)
	return nil
}

// ListTransactions returns the most recent entries for a user.
func (s *MemoryStore) ListTransactions(_ context.Context, userID int64, limit int64) ([]*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Transaction
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if s.transactions[i].UserID == userID {
			copy := *s.transactions[i]
			out = append(out, &copy)
			if limit > 0 && int64(len(out)) >= limit {
				break
			}
		}
	}
	return out, nil
}

// CreateTicket inserts a ticket.
func (s *MemoryStore) CreateTicket(_ context.Context, t *models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tickets[t.ChannelID]; exists {
		return coalerr.Conflict("ticket %d already exists", t.ChannelID)
	}
	s.tickets[t.ChannelID] = cloneTicket(t)
	return nil
}

// GetTicket returns the ticket for a channel.
func (s *MemoryStore) GetTicket(_ context.Context, channelID int64) (*models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tickets[channelID]
	if !ok {
		return nil, coalerr.NotFound("no ticket for channel %d", channelID)
	}
	return cloneTicket(t), nil
}

// UpdateTicket replaces the ticket while its status matches from.
func (s *MemoryStore) UpdateTicket(_ context.Context, t *models.Ticket, from models.TicketStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tickets[t.ChannelID]
	if !ok {
		return coalerr.NotFound("no ticket for channel %d", t.ChannelID)
	}
	if current.Status != from {
		return coalerr.Conflict("ticket %d is no longer %s", t.ChannelID, from)
	}
	s.tickets[t.ChannelID] = cloneTicket(t)
	return nil
}

// AppendTicketMessage pushes a message onto the ticket buffer.
func (s *MemoryStore) AppendTicketMessage(_ context.Context, channelID int64, msg models.TicketMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[channelID]
	if !ok {
		return coalerr.NotFound("no ticket for channel %d", channelID)
	}
	t.Messages = append(t.Messages, msg)
	return nil
}

// FindActiveTicket returns the creator's non-terminal ticket, nil if none.
func (s *MemoryStore) FindActiveTicket(_ context.Context, guildID, creatorID int64) (*models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tickets {
		if t.GuildID == guildID && t.CreatorID == creatorID && !t.Status.Terminal() {
			return cloneTicket(t), nil
		}
	}
	return nil, nil
}

// SaveTranscript stores a close-time snapshot.
func (s *MemoryStore) SaveTranscript(_ context.Context, tr *models.Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *tr
	copy.Messages = append([]models.TicketMessage(nil), tr.Messages...)
	s.transcripts = append(s.transcripts, &copy)
	return nil
}

// Transcripts returns the stored transcripts; test helper.
func (s *MemoryStore) Transcripts() []*models.Transcript {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.Transcript(nil), s.transcripts...)
}

// RecordCommandUsage bumps the per-day usage counter.
func (s *MemoryStore) RecordCommandUsage(_ context.Context, command, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage[command+":"+date]++
	return nil
}

// Snapshot copies every collection into one bundle.
func (s *MemoryStore) Snapshot(_ context.Context) (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &models.Snapshot{CreatedAt: time.Now().Unix()}
	for _, u := range s.users {
		snap.Users = append(snap.Users, u.Clone())
	}
	for _, g := range s.guilds {
		copy := *g
		snap.Guilds = append(snap.Guilds, &copy)
	}
	for _, w := range s.warnings {
		copy := *w
		snap.Warnings = append(snap.Warnings, &copy)
	}
	for _, t := range s.tickets {
		snap.Tickets = append(snap.Tickets, cloneTicket(t))
	}
	for _, tr := range s.transcripts {
		copy := *tr
		snap.Transcripts = append(snap.Transcripts, &copy)
	}
	for _, tx := range s.transactions {
		copy := *tx
		snap.Transactions = append(snap.Transactions, &copy)
	}
	return snap, nil
}

// Restore replaces all collections with the snapshot contents.
func (s *MemoryStore) Restore(_ context.Context, snap *models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[int64]*models.User, len(snap.Users))
	for _, u := range snap.Users {
		s.users[u.UserID] = u.Clone()
	}
	s.guilds = make(map[int64]*models.GuildSettings, len(snap.Guilds))
	for _, g := range snap.Guilds {
		copy := *g
		s.guilds[g.GuildID] = &copy
	}
	s.warnings = nil
	for _, w := range snap.Warnings {
		copy := *w
		s.warnings = append(s.warnings, &copy)
	}
	s.tickets = make(map[int64]*models.Ticket, len(snap.Tickets))
	for _, t := range snap.Tickets {
		s.tickets[t.ChannelID] = cloneTicket(t)
	}
	s.transcripts = nil
	for _, tr := range snap.Transcripts {
		copy := *tr
		s.transcripts = append(s.transcripts, &copy)
	}
	s.transactions = nil
	for _, tx := range snap.Transactions {
		copy := *tx
		s.transactions = append(s.transactions, &copy)
	}
	return nil
}

func cloneTicket(t *models.Ticket) *models.Ticket {
	copy := *t
	copy.Messages = append([]models.TicketMessage(nil), t.Messages...)
	return &copy
}
