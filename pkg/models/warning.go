package models

// Warning is a single moderator warning. The collection is append-only;
// removal is a bulk clear per user.
type Warning struct {
	ID          string `bson:"_id" json:"id"`
	GuildID     int64  `bson:"guild_id" json:"guild_id"`
	UserID      int64  `bson:"user_id" json:"user_id"`
	ModeratorID int64  `bson:"moderator_id" json:"moderator_id"`
	Reason      string `bson:"reason" json:"reason"`
	Timestamp   int64  `bson:"timestamp" json:"timestamp"`
}
