package database

import (
	"context"
	"time"

	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/THEREALVANHEL/coalbot/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on top of the MongoDB connection.
type MongoStore struct {
	db            *Database
	startingCoins int64
	timeout       time.Duration
}

// NewMongoStore creates a MongoStore. startingCoins seeds new user
// documents.
func NewMongoStore(db *Database, startingCoins int64) *MongoStore {
	return &MongoStore{
		db:            db,
		startingCoins: startingCoins,
		timeout:       5 * time.Second,
	}
}

func (s *MongoStore) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.timeout)
}

func (s *MongoStore) coll(name string) (*mongo.Collection, error) {
	col := s.db.GetCollection(name)
	if col == nil {
		return nil, coalerr.External(nil, "database not connected")
	}
	return col, nil
}

// GetUser returns the user document, creating defaults on first read.
func (s *MongoStore) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	col, err := s.coll(CollUsers)
	if err != nil {
		return nil, err
	}

	cctx, cancel := s.ctx(ctx)
	defer cancel()

	var u models.User
	err = col.FindOne(cctx, bson.M{"user_id": userID}).Decode(&u)
	if err == nil {
		return &u, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, coalerr.External(err, "user read failed")
	}

	fresh := NewDefaultUser(userID, s.startingCoins, time.Now().Unix())
	if _, err := col.InsertOne(cctx, fresh); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Lost the creation race; the winner's document is the
			// authoritative one.
			if err := col.FindOne(cctx, bson.M{"user_id": userID}).Decode(&u); err == nil {
				return &u, nil
			}
		}
		return nil, coalerr.External(err, "user create failed")
	}
	return fresh, nil
}

// SaveUser persists the document if the stored version still matches.
func (s *MongoStore) SaveUser(ctx context.Context, u *models.User) error {
	col, err := s.coll(CollUsers)
	if err != nil {
		return err
	}

	cctx, cancel := s.ctx(ctx)
	defer cancel()

	next := u.Clone()
	next.Version = u.Version + 1

	res, err := col.ReplaceOne(cctx, bson.M{"user_id": u.UserID, "version": u.Version}, next)
	if err != nil {
		return coalerr.External(err, "user write failed")
	}
	if res.MatchedCount == 0 {
		return coalerr.Conflict("user %d was modified concurrently", u.UserID)
	}
	u.Version = next.Version
	return nil
}

// TopUsers returns a descending page for leaderboards.
func (s *MongoStore) TopUsers(ctx context.Context, sortField string, skip, limit int64) ([]*models.User, error) {
	col, err := s.coll(CollUsers)
	if err != nil {
		return nil, err
	}

	cctx, cancel := s.ctx(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := col.Find(cctx, bson.M{}, opts)
	if err != nil {
		return nil, coalerr.External(err, "leaderboard query failed")
	}
	return decodeUsers(cctx, cursor)
}

// CountUsers returns the total number of user documents.
func (s *MongoStore) CountUsers(ctx context.Context) (int64, error) {
	col, err := s.coll(CollUsers)
	if err != nil {
		return 0, err
	}

	cctx, cancel := s.ctx(ctx)
	defer cancel()

	n, err := col.CountDocuments(cctx, bson.M{})
	if err != nil {
		return 0, coalerr.External(err, "user count failed")
	}
	return n, nil
}

// ListUsersWithSavings returns users the interest task should credit.
func (s *MongoStore) ListUsersWithSavings(ctx context.Context) ([]*models.User, error) {
	return s.listUsers(ctx, bson.M{"savings_balance": bson.M{"$gt": 0}})
}

// ListUsersWithJob returns users the job-activity sweep should inspect.
func (s *MongoStore) ListUsersWithJob(ctx context.Context) ([]*models.User, error) {
	return s.listUsers(ctx, bson.M{"last_work": bson.M{"$gt": 0}})
}

func (s *MongoStore) listUsers(ctx context.Context, filter bson.M) ([]*models.User, error) {
	col, err := s.coll(CollUsers)
	if err != nil {
		return nil, err
	}

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := col.Find(cctx, filter)
	if err != nil {
		return nil, coalerr.External(err, "user list failed")
	}
	return decodeUsers(cctx, cursor)
}

func decodeUsers(ctx context.Context, cursor *mongo.Cursor) ([]*models.User, error) {
	defer func() { _ = cursor.Close(ctx) }()

	var users []*models.User
	for cursor.Next(ctx) {
		var u models.User
		if err := cursor.Decode(&u); err != nil {
			continue
		}
		users = append(users, &u)
	}
	return users, cursor.Err()
}

// GetGuildSettings returns guild settings, defaults on first read.
func (s *MongoStore) GetGuildSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	col, err := s.coll(CollGuilds)
	if err != nil {
		return nil, err
	}

	cctx, cancel := s.ctx(ctx)
	defer cancel()

	var gs models.GuildSettings
	err = col.FindOne(cctx, bson.M{"guild_id": guildID}).Decode(&gs)
	if err == mongo.ErrNoDocuments {
		return &models.GuildSettings{GuildID: guildID, StarCount: 3}, nil
	}
	if err != nil {
		return nil, coalerr.External(err, "guild settings read failed")
	}
	return &gs, nil
}

// SaveGuildSettings upserts guild settings.
func (s *MongoStore) SaveGuildSettings(ctx context.Context, gs *models.GuildSettings) error {
	col, err := s.coll(CollGuilds)
	if err != nil {
		return err
	}

	cctx, cancel := s.ctx(ctx)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := col.ReplaceOne(cctx, bson.M{"guild_id": gs.GuildID}, gs, opts); err != nil {
		return coalerr.External(err, "guild settings write failed")
	}
	return nil
}

// AppendWarning inserts a warning; the collection is append-only.
func (s *MongoStore) AppendWarning(ctx context.Context, w *models.Warning) error {
	col, err := s.coll(CollWarnings)
	if err != nil {
		return err
	}

	cctx, cancel := s.ctx(ctx)
	defer cancel()

	if _, err := col.InsertOne(cctx, w); err != nil {
		return coalerr.External(err, "warning write failed")
	}
	return nil
}

// ListWarnings returns a user's warnings ordered oldest first.
func (s *MongoStore) ListWarnings(ctx context.Context, guildID, userID int64) ([]*models.Warning, error) {
	col, err := s.coll(CollWarnings)
	if err != nil {
		return nil, err
	}

	cctx, cancel := s.ctx(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := col.Find(cctx, bson.M{"guild_id": guildID, "user_id": userID}, opts)
	if err != nil {
		return nil, coalerr.External(err, "warning list failed")
	}
	defer func() { _ = cursor.Close(cctx) }()

	var warnings []*models.Warning
	for cursor.Next(cctx) {
		var w models.Warning
		if err := cursor.Decode(&w); err != nil {
			continue
		}
		warnings = append(warnings, &w)
	}
	return warnings, cursor.Err()
}

// ClearWarnings removes all of a user's warnings.
func (s *MongoStore) ClearWarnings(ctx context.Context, guildID, userID int64) (int64, error) {
	col, err := s.coll(CollWarnings)
	if err != nil {
		return 0, err
	}

	cctx, cancel := s.ctx(ctx)
	defer cancel()

	res, err := col.DeleteMany(cctx, bson.M{"guild_id": guildID, "user_id": userID})
	if err != nil {
		return 0, coalerr.External(err, "warning clear failed")
	}
	return res.DeletedCount, nil
}

// AppendTransaction writes one log entry.
func (s *MongoStore) AppendTransaction(ctx context.Context, tx *models.Transaction) error {
	col, err := s.coll(CollTransactions)
	if err != nil {
		return err
	}

	cctx, cancel := s.ctx(ctx)
	defer cancel()

	if _, err := col.InsertOne(cctx, tx); err != nil {
		return coalerr.External(err, "transaction write failed")
	}
	return nil
}

// ListTransactions returns a user's most recent transactions.
func (s *MongoStore) ListTransactions(ctx context.Context, userID int64, limit int64) ([]*models.Transaction, error) {
	col, err := s.coll(CollTransactions)
	if err != nil {
		return nil, err
	}

	cctx, cancel := s.ctx(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	cursor, err := col.Find(cctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, coalerr.External(err, "transaction list failed")
	}
	defer func() { _ = cursor.Close(cctx) }()

	var txs []*models.Transaction
	for cursor.Next(cctx) {
		var tx models.Transaction
		if err := cursor.Decode(&tx); err != nil {
			continue
		}
		txs = append(txs, &tx)
	}
	return txs, cursor.Err()
}

// CreateTicket inserts a new ticket document.
func (s *MongoStore) CreateTicket(ctx context.Context, t *models.Ticket) error {
	col, err := s.coll(CollTickets)
	if err != nil {
		return err
	}

	cctx, cancel := s.ctx(ctx)
	defer cancel()

	if _, err := col.InsertOne(cctx, t); err != nil {
		return coalerr.External(err, "ticket write failed")
	}
	return nil
}

// GetTicket returns the ticket for a channel.
func (s *MongoStore) GetTicket(ctx context.Context, channelID int64) (*models.Ticket, error) {
	col, err := s.coll(CollTickets)
	if err != nil {
		return nil, err
	}

	cctx, cancel := s.ctx(ctx)
	defer cancel()

	var t models.Ticket
	err = col.FindOne(cctx, bson.M{"channel_id": channelID}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, coalerr.NotFound("no ticket for channel %d", channelID)
	}
	if err != nil {
		return nil, coalerr.External(err, "ticket read failed")
	}
	return &t, nil
}

// UpdateTicket replaces the ticket only while its status matches from.
func (s *MongoStore) UpdateTicket(ctx context.Context, t *models.Ticket, from models.TicketStatus) error {
	col, err := s.coll(CollTickets)
	if err != nil {
		return err
	}

	cctx, cancel := s.ctx(ctx)
	defer cancel()

	res, err := col.ReplaceOne(cctx, bson.M{"channel_id": t.ChannelID, "status": from}, t)
	if err != nil {
		return coalerr.External(err, "ticket write failed")
	}
	if res.MatchedCount == 0 {
		return coalerr.Conflict("ticket %d is no longer %s", t.ChannelID, from)
	}
	return nil
}

// AppendTicketMessage pushes one message onto the ticket's transcript
// buffer.
func (s *MongoStore) AppendTicketMessage(ctx context.Context, channelID int64, msg models.TicketMessage) error {
	col, err := s.coll(CollTickets)
	if err != nil {
		return err
	}

	cctx, cancel := s.ctx(ctx)
	defer cancel()

	_, err = col.UpdateOne(cctx, bson.M{"channel_id": channelID}, bson.M{"$push": bson.M{"messages": msg}})
	if err != nil {
		return coalerr.External(err, "ticket message write failed")
	}
	return nil
}

// FindActiveTicket returns the creator's non-terminal ticket, nil if none.
func (s *MongoStore) FindActiveTicket(ctx context.Context, guildID, creatorID int64) (*models.Ticket, error) {
	col, err := s.coll(CollTickets)
	if err != nil {
		return nil, err
	}

	cctx, cancel := s.ctx(ctx)
	defer cancel()

	filter := bson.M{
		"guild_id":   guildID,
		"creator_id": creatorID,
		"status":     bson.M{"$nin": bson.A{models.TicketClosed, models.TicketDeleted}},
	}

	var t models.Ticket
	err = col.FindOne(cctx, filter).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, coalerr.External(err, "ticket lookup failed")
	}
	return &t, nil
}

// SaveTranscript stores the close-time message snapshot.
func (s *MongoStore) SaveTranscript(ctx context.Context, tr *models.Transcript) error {
	col, err := s.coll(CollTranscripts)
	if err != nil {
		return err
	}

	cctx, cancel := s.ctx(ctx)
	defer cancel()

	if _, err := col.InsertOne(cctx, tr); err != nil {
		return coalerr.External(err, "transcript write failed")
	}
	return nil
}

// RecordCommandUsage upserts the per-day usage counter atomically.
func (s *MongoStore) RecordCommandUsage(ctx context.Context, command, date string) error {
	col, err := s.coll(CollAnalytics)
	if err != nil {
		return err
	}

	cctx, cancel := s.ctx(ctx)
	defer cancel()

	filter := bson.M{"type": "command_usage", "command": command, "date": date}
	update := bson.M{"$inc": bson.M{"count": 1}}
	opts := options.Update().SetUpsert(true)

	if _, err := col.UpdateOne(cctx, filter, update, opts); err != nil {
		return coalerr.External(err, "usage write failed")
	}
	return nil
}

// Snapshot reads every collection into one bundle.
func (s *MongoStore) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{CreatedAt: time.Now().Unix()}

	users, err := s.listUsers(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	snap.Users = users

	if err := s.collectAll(ctx, CollGuilds, &snap.Guilds); err != nil {
		return nil, err
	}
	if err := s.collectAll(ctx, CollWarnings, &snap.Warnings); err != nil {
		return nil, err
	}
	if err := s.collectAll(ctx, CollTickets, &snap.Tickets); err != nil {
		return nil, err
	}
	if err := s.collectAll(ctx, CollTranscripts, &snap.Transcripts); err != nil {
		return nil, err
	}
	if err := s.collectAll(ctx, CollTransactions, &snap.Transactions); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *MongoStore) collectAll(ctx context.Context, name string, out interface{}) error {
	col, err := s.coll(name)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := col.Find(cctx, bson.M{})
	if err != nil {
		return coalerr.External(err, "snapshot read failed")
	}
	defer func() { _ = cursor.Close(cctx) }()

	if err := cursor.All(cctx, out); err != nil {
		return coalerr.External(err, "snapshot decode failed")
	}
	return nil
}

// Restore replaces every collection with the snapshot contents.
func (s *MongoStore) Restore(ctx context.Context, snap *models.Snapshot) error {
	if err := restoreColl(ctx, s, CollUsers, snap.Users); err != nil {
		return err
	}
	if err := restoreColl(ctx, s, CollGuilds, snap.Guilds); err != nil {
		return err
	}
	if err := restoreColl(ctx, s, CollWarnings, snap.Warnings); err != nil {
		return err
	}
	if err := restoreColl(ctx, s, CollTickets, snap.Tickets); err != nil {
		return err
	}
	if err := restoreColl(ctx, s, CollTranscripts, snap.Transcripts); err != nil {
		return err
	}
	return restoreColl(ctx, s, CollTransactions, snap.Transactions)
}

func restoreColl[T any](ctx context.Context, s *MongoStore, name string, docs []T) error {
	col, err := s.coll(name)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := col.DeleteMany(cctx, bson.M{}); err != nil {
		return coalerr.External(err, "restore clear failed")
	}
	if len(docs) == 0 {
		return nil
	}

	batch := make([]interface{}, len(docs))
	for i, d := range docs {
		batch[i] = d
	}
	if _, err := col.InsertMany(cctx, batch); err != nil {
		return coalerr.External(err, "restore insert failed")
	}
	return nil
}

// EnsureIndexes creates the indexes the queries above depend on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		CollUsers: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollTransactions: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		CollWarnings: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		CollTickets: {
			{Keys: bson.D{{Key: "creator_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "channel_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollAnalytics: {
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "date", Value: 1}}},
		},
	}

	for name, models := range specs {
		col, err := s.coll(name)
		if err != nil {
			return err
		}
		if _, err := col.Indexes().CreateMany(cctx, models); err != nil {
			return coalerr.External(err, "index creation failed")
		}
	}
	return nil
}
