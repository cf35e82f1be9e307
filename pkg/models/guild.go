package models

// GuildSettings holds per-guild channel routing and ticket staff roles.
type GuildSettings struct {
	GuildID int64 `bson:"guild_id" json:"guild_id"`

	WelcomeChannel    int64 `bson:"welcome_channel" json:"welcome_channel"`
	LeaveChannel      int64 `bson:"leave_channel" json:"leave_channel"`
	LogChannel        int64 `bson:"log_channel" json:"log_channel"`
	LevelingChannel   int64 `bson:"leveling_channel" json:"leveling_channel"`
	SuggestionChannel int64 `bson:"suggestion_channel" json:"suggestion_channel"`
	StarboardChannel  int64 `bson:"starboard_channel" json:"starboard_channel"`
	ModlogChannel     int64 `bson:"modlog_channel" json:"modlog_channel"`

	StarCount          int     `bson:"star_count" json:"star_count"`
	TicketSupportRoles []int64 `bson:"ticket_support_roles" json:"ticket_support_roles"`
}
