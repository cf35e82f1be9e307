// Package tickets drives the support ticket lifecycle. Every status
// transition is written with its expected prior status, so two staff
// members racing on the same button cannot double-apply a transition.
package tickets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/THEREALVANHEL/coalbot/internal/clock"
	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/THEREALVANHEL/coalbot/pkg/logger"
	"github.com/THEREALVANHEL/coalbot/pkg/models"
	"github.com/google/uuid"
)

const (
	// claimDebounce absorbs the double-click on the claim button.
	claimDebounce = 3 * time.Second
	// deleteGrace is how long a closed channel survives before the
	// background deletion fires.
	deleteGrace = 10 * time.Second
)

// Platform abstracts the chat platform operations the service needs.
type Platform interface {
	CreateTicketChannel(ctx context.Context, guildID, categoryID int64, name string, creatorID int64) (int64, error)
	RenameChannel(ctx context.Context, channelID int64, name string) error
	SetSendPermission(ctx context.Context, channelID, userID int64, allow bool) error
	SetViewPermission(ctx context.Context, channelID, userID int64, allow bool) error
	DeleteChannel(ctx context.Context, channelID int64) error
	SendMessage(ctx context.Context, channelID int64, content string) error
}

// Store is the slice of the document store the ticket service needs.
type Store interface {
	CreateTicket(ctx context.Context, t *models.Ticket) error
	GetTicket(ctx context.Context, channelID int64) (*models.Ticket, error)
	UpdateTicket(ctx context.Context, t *models.Ticket, from models.TicketStatus) error
	AppendTicketMessage(ctx context.Context, channelID int64, msg models.TicketMessage) error
	FindActiveTicket(ctx context.Context, guildID, creatorID int64) (*models.Ticket, error)
	SaveTranscript(ctx context.Context, tr *models.Transcript) error
	GetGuildSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error)
}

// Service is the ticket state machine.
type Service struct {
	store    Store
	platform Platform
	auth     *Authorizer
	clock    clock.Clock

	categoryID int64

	claimsMu sync.Mutex
	// claims debounces claim taps per channel.
	claims map[int64]time.Time
}

// NewService creates the ticket service.
func NewService(store Store, platform Platform, auth *Authorizer, categoryID int64, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{
		store:      store,
		platform:   platform,
		auth:       auth,
		clock:      clk,
		categoryID: categoryID,
		claims:     make(map[int64]time.Time),
	}
}

func channelSlug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '_', r == '-':
			return '-'
		}
		return -1
	}, name)
	if name == "" {
		name = "member"
	}
	return name
}

// Create opens a ticket channel for the creator. A user with a live
// ticket in the guild cannot open a second one.
func (s *Service) Create(ctx context.Context, guildID int64, creator Member, category string, priority models.TicketPriority) (*models.Ticket, error) {
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, coalerr.InvalidArgument("unknown priority %q", priority)
	}

	existing, err := s.store.FindActiveTicket(ctx, guildID, creator.UserID)
	if err != nil && coalerr.KindOf(err) != coalerr.KindNotFound {
		return nil, err
	}
	if existing != nil {
		return nil, coalerr.Conflict("you already have an open ticket in <#%d>", existing.ChannelID)
	}

	name := fmt.Sprintf("open-ticket-%s", channelSlug(creator.Username))
	channelID, err := s.platform.CreateTicketChannel(ctx, guildID, s.categoryID, name, creator.UserID)
	if err != nil {
		return nil, coalerr.External(err, "could not create the ticket channel")
	}

	t := &models.Ticket{
		ChannelID: channelID,
		GuildID:   guildID,
		CreatorID: creator.UserID,
		Category:  category,
		Priority:  priority,
		Status:    models.TicketOpen,
		CreatedAt: s.clock.Now().Unix(),
	}
	if err := s.store.CreateTicket(ctx, t); err != nil {
		if delErr := s.platform.DeleteChannel(ctx, channelID); delErr != nil {
			logger.Error(fmt.Sprintf("orphan ticket channel %d could not be removed: %v", channelID, delErr), "Tickets")
		}
		return nil, err
	}

	welcome := fmt.Sprintf("Ticket opened by <@%d> (%s priority). Support will be with you shortly.", creator.UserID, priority)
	if err := s.platform.SendMessage(ctx, channelID, welcome); err != nil {
		logger.Warn(fmt.Sprintf("ticket %d welcome message failed: %v", channelID, err), "Tickets")
	}

	logger.Info(fmt.Sprintf("ticket %d opened by %d in guild %d", channelID, creator.UserID, guildID), "Tickets")
	return t, nil
}

// staffOnly verifies the member is ticket staff for the guild.
func (s *Service) staffOnly(ctx context.Context, guildID int64, m Member) error {
	settings, err := s.store.GetGuildSettings(ctx, guildID)
	if err != nil && coalerr.KindOf(err) != coalerr.KindNotFound {
		return err
	}
	if !s.auth.IsStaff(m, settings) {
		return coalerr.Unauthorized("only ticket staff can do that")
	}
	return nil
}

// Claim assigns an open ticket to a staff member. Repeated taps within
// the debounce window are dropped; a ticket someone else already
// claimed reports a conflict.
func (s *Service) Claim(ctx context.Context, channelID int64, staff Member) (*models.Ticket, error) {
	now := s.clock.Now()
	s.claimsMu.Lock()
	if last, ok := s.claims[channelID]; ok && now.Sub(last) < claimDebounce {
		s.claimsMu.Unlock()
		return nil, coalerr.RateLimited(claimDebounce - now.Sub(last))
	}
	s.claims[channelID] = now
	s.claimsMu.Unlock()

	t, err := s.store.GetTicket(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := s.staffOnly(ctx, t.GuildID, staff); err != nil {
		return nil, err
	}

	from := t.Status
	switch from {
	case models.TicketOpen, models.TicketReopened:
	case models.TicketClaimed:
		return nil, coalerr.Conflict("already claimed by <@%d>", t.ClaimedBy)
	default:
		return nil, coalerr.Conflict("a %s ticket cannot be claimed", from)
	}

	t.Status = models.TicketClaimed
	t.ClaimedBy = staff.UserID
	if err := s.store.UpdateTicket(ctx, t, from); err != nil {
		return nil, err
	}

	name := fmt.Sprintf("claimed-by-%s", channelSlug(staff.Username))
	if err := s.platform.RenameChannel(ctx, channelID, name); err != nil {
		logger.Warn(fmt.Sprintf("ticket %d rename failed: %v", channelID, err), "Tickets")
	}
	return t, nil
}

// Unclaim releases a claimed ticket back to open.
func (s *Service) Unclaim(ctx context.Context, channelID int64, staff Member) (*models.Ticket, error) {
	t, err := s.store.GetTicket(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := s.staffOnly(ctx, t.GuildID, staff); err != nil {
		return nil, err
	}
	if t.Status != models.TicketClaimed {
		return nil, coalerr.Conflict("the ticket is not claimed")
	}
	if t.ClaimedBy != staff.UserID && !staff.IsAdmin {
		return nil, coalerr.Unauthorized("only <@%d> or an admin can unclaim this ticket", t.ClaimedBy)
	}

	t.Status = models.TicketOpen
	t.ClaimedBy = 0
	if err := s.store.UpdateTicket(ctx, t, models.TicketClaimed); err != nil {
		return nil, err
	}
	return t, nil
}

// Lock freezes the conversation: the creator loses send permission
// while staff keep talking. The claim survives for unlock.
func (s *Service) Lock(ctx context.Context, channelID int64, staff Member) (*models.Ticket, error) {
	t, err := s.store.GetTicket(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := s.staffOnly(ctx, t.GuildID, staff); err != nil {
		return nil, err
	}

	from := t.Status
	switch from {
	case models.TicketOpen, models.TicketClaimed, models.TicketReopened:
	case models.TicketLocked:
		return nil, coalerr.Conflict("the ticket is already locked")
	default:
		return nil, coalerr.Conflict("a %s ticket cannot be locked", from)
	}

	t.Status = models.TicketLocked
	if err := s.store.UpdateTicket(ctx, t, from); err != nil {
		return nil, err
	}
	if err := s.platform.SetSendPermission(ctx, channelID, t.CreatorID, false); err != nil {
		logger.Warn(fmt.Sprintf("ticket %d lock permission failed: %v", channelID, err), "Tickets")
	}
	return t, nil
}

// Unlock restores the creator's send permission. The ticket returns to
// claimed when it has a claimer, otherwise to open.
func (s *Service) Unlock(ctx context.Context, channelID int64, staff Member) (*models.Ticket, error) {
	t, err := s.store.GetTicket(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := s.staffOnly(ctx, t.GuildID, staff); err != nil {
		return nil, err
	}
	if t.Status != models.TicketLocked {
		return nil, coalerr.Conflict("the ticket is not locked")
	}

	if t.ClaimedBy != 0 {
		t.Status = models.TicketClaimed
	} else {
		t.Status = models.TicketOpen
	}
	if err := s.store.UpdateTicket(ctx, t, models.TicketLocked); err != nil {
		return nil, err
	}
	if err := s.platform.SetSendPermission(ctx, channelID, t.CreatorID, true); err != nil {
		logger.Warn(fmt.Sprintf("ticket %d unlock permission failed: %v", channelID, err), "Tickets")
	}
	return t, nil
}

// Close ends the ticket: the transcript is snapshotted, the creator
// loses view permission, and the channel deletes itself after a short
// grace period. Closing an already-closed ticket is a conflict.
func (s *Service) Close(ctx context.Context, channelID int64, staff Member) (*models.Ticket, error) {
	t, err := s.store.GetTicket(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := s.staffOnly(ctx, t.GuildID, staff); err != nil {
		return nil, err
	}

	from := t.Status
	if from.Terminal() {
		return nil, coalerr.Conflict("the ticket is already %s", from)
	}

	now := s.clock.Now().Unix()
	t.Status = models.TicketClosed
	t.ClosedAt = now
	t.ClosedBy = staff.UserID
	if err := s.store.UpdateTicket(ctx, t, from); err != nil {
		return nil, err
	}

	tr := &models.Transcript{
		ID:        uuid.NewString(),
		ChannelID: t.ChannelID,
		GuildID:   t.GuildID,
		CreatorID: t.CreatorID,
		ClosedBy:  staff.UserID,
		ClosedAt:  now,
		Messages:  t.Messages,
	}
	if err := s.store.SaveTranscript(ctx, tr); err != nil {
		logger.Error(fmt.Sprintf("ticket %d transcript save failed: %v", channelID, err), "Tickets")
	}

	if err := s.platform.SetViewPermission(ctx, channelID, t.CreatorID, false); err != nil {
		logger.Warn(fmt.Sprintf("ticket %d close permission failed: %v", channelID, err), "Tickets")
	}
	name := fmt.Sprintf("closed-ticket-%d", t.CreatorID)
	if err := s.platform.RenameChannel(ctx, channelID, name); err != nil {
		logger.Warn(fmt.Sprintf("ticket %d rename failed: %v", channelID, err), "Tickets")
	}

	time.AfterFunc(deleteGrace, func() {
		if err := s.finalizeDelete(context.Background(), channelID); err != nil {
			logger.Warn(fmt.Sprintf("ticket %d grace deletion skipped: %v", channelID, err), "Tickets")
		}
	})

	logger.Info(fmt.Sprintf("ticket %d closed by %d", channelID, staff.UserID), "Tickets")
	return t, nil
}

// finalizeDelete removes the channel of a closed ticket. A reopen that
// happened during the grace period makes this a no-op.
func (s *Service) finalizeDelete(ctx context.Context, channelID int64) error {
	t, err := s.store.GetTicket(ctx, channelID)
	if err != nil {
		return err
	}
	if t.Status != models.TicketClosed {
		return fmt.Errorf("ticket is %s, not closed", t.Status)
	}

	t.Status = models.TicketDeleted
	if err := s.store.UpdateTicket(ctx, t, models.TicketClosed); err != nil {
		return err
	}
	if err := s.platform.DeleteChannel(ctx, channelID); err != nil {
		return err
	}
	s.forgetClaim(channelID)
	return nil
}

func (s *Service) forgetClaim(channelID int64) {
	s.claimsMu.Lock()
	delete(s.claims, channelID)
	s.claimsMu.Unlock()
}

// Reopen brings a closed ticket back before its channel is deleted.
func (s *Service) Reopen(ctx context.Context, channelID int64, staff Member) (*models.Ticket, error) {
	t, err := s.store.GetTicket(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := s.staffOnly(ctx, t.GuildID, staff); err != nil {
		return nil, err
	}
	if t.Status != models.TicketClosed {
		return nil, coalerr.Conflict("only a closed ticket can be reopened")
	}

	t.Status = models.TicketReopened
	t.ClosedAt = 0
	t.ClosedBy = 0
	t.ClaimedBy = 0
	if err := s.store.UpdateTicket(ctx, t, models.TicketClosed); err != nil {
		return nil, err
	}

	if err := s.platform.SetViewPermission(ctx, channelID, t.CreatorID, true); err != nil {
		logger.Warn(fmt.Sprintf("ticket %d reopen permission failed: %v", channelID, err), "Tickets")
	}
	if err := s.platform.SetSendPermission(ctx, channelID, t.CreatorID, true); err != nil {
		logger.Warn(fmt.Sprintf("ticket %d reopen permission failed: %v", channelID, err), "Tickets")
	}
	return t, nil
}

// Delete removes the ticket channel immediately.
func (s *Service) Delete(ctx context.Context, channelID int64, staff Member) error {
	t, err := s.store.GetTicket(ctx, channelID)
	if err != nil {
		return err
	}
	if err := s.staffOnly(ctx, t.GuildID, staff); err != nil {
		return err
	}
	if t.Status == models.TicketDeleted {
		return coalerr.Conflict("the ticket is already deleted")
	}

	from := t.Status
	t.Status = models.TicketDeleted
	if t.ClosedAt == 0 {
		t.ClosedAt = s.clock.Now().Unix()
		t.ClosedBy = staff.UserID
	}
	if err := s.store.UpdateTicket(ctx, t, from); err != nil {
		return err
	}
	if err := s.platform.DeleteChannel(ctx, channelID); err != nil {
		return coalerr.External(err, "channel deletion failed")
	}
	s.forgetClaim(channelID)
	return nil
}

// RecordMessage appends a channel message to the ticket transcript
// buffer. Unknown channels are ignored.
func (s *Service) RecordMessage(ctx context.Context, channelID, authorID int64, content string) error {
	_, err := s.store.GetTicket(ctx, channelID)
	if err != nil {
		if coalerr.KindOf(err) == coalerr.KindNotFound {
			return nil
		}
		return err
	}
	return s.store.AppendTicketMessage(ctx, channelID, models.TicketMessage{
		AuthorID:  authorID,
		Content:   content,
		Timestamp: s.clock.Now().Unix(),
	})
}
