package models

// TicketStatus is the lifecycle state of a support ticket.
type TicketStatus string

const (
	TicketOpen     TicketStatus = "open"
	TicketClaimed  TicketStatus = "claimed"
	TicketLocked   TicketStatus = "locked"
	TicketClosed   TicketStatus = "closed"
	TicketReopened TicketStatus = "reopened"
	TicketDeleted  TicketStatus = "deleted"
)

// Terminal reports whether the status ends the ticket's lifecycle for
// the at-most-one-open-ticket-per-user rule.
func (s TicketStatus) Terminal() bool {
	return s == TicketClosed || s == TicketDeleted
}

// TicketPriority is the urgency of a ticket.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

// ValidPriority reports whether p is one of the known priorities.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// TicketMessage is a single message captured for the transcript.
type TicketMessage struct {
	AuthorID  int64  `bson:"author_id" json:"author_id"`
	Content   string `bson:"content" json:"content"`
	Timestamp int64  `bson:"timestamp" json:"timestamp"`
}

// Ticket is a support conversation channel, keyed by its channel id.
type Ticket struct {
	ChannelID int64 `bson:"channel_id" json:"channel_id"`
	GuildID   int64 `bson:"guild_id" json:"guild_id"`
	CreatorID int64 `bson:"creator_id" json:"creator_id"`

	Category string         `bson:"category" json:"category"`
	Priority TicketPriority `bson:"priority" json:"priority"`
	Status   TicketStatus   `bson:"status" json:"status"`

	// ClaimedBy is 0 while unclaimed. A locked ticket keeps its
	// claimer so unlock can return to the claimed state.
	ClaimedBy int64 `bson:"claimed_by" json:"claimed_by"`

	CreatedAt int64 `bson:"created_at" json:"created_at"`
	ClosedAt  int64 `bson:"closed_at" json:"closed_at"`
	ClosedBy  int64 `bson:"closed_by" json:"closed_by"`

	Messages []TicketMessage `bson:"messages" json:"messages"`
}

// Transcript is the ordered message snapshot taken when a ticket
// closes, retained after the channel is deleted.
type Transcript struct {
	ID        string          `bson:"_id" json:"id"`
	ChannelID int64           `bson:"channel_id" json:"channel_id"`
	GuildID   int64           `bson:"guild_id" json:"guild_id"`
	CreatorID int64           `bson:"creator_id" json:"creator_id"`
	ClosedBy  int64           `bson:"closed_by" json:"closed_by"`
	ClosedAt  int64           `bson:"closed_at" json:"closed_at"`
	Messages  []TicketMessage `bson:"messages" json:"messages"`
}
