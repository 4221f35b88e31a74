package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/rentalshop/pkg/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxAuditEntries caps a single audit lookup.
const MaxAuditEntries int64 = 100

var errIncompleteAuditLog = errors.New("audit log needs service, action and entity id")

// AuditLog is one recorded change to an entity such as "order:12".
type AuditLog struct {
	ID        string    `bson:"_id" json:"id"`
	Service   string    `bson:"service" json:"service"`
	Action    string    `bson:"action" json:"action"`
	EntityID  string    `bson:"entity_id" json:"entity_id"`
	Actor     string    `bson:"actor" json:"actor"`
	Data      bson.M    `bson:"data,omitempty" json:"data,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// AuditRepository is the append-only audit trail kept in MongoDB.
type AuditRepository struct {
	client  *mongo.Client
	entries *mongo.Collection
	now     func() time.Time
}

// NewAuditRepository connects, checks the server answers and makes sure the
// entity lookup index exists.
func NewAuditRepository(ctx context.Context, cfg *config.MongoDBConfig) (*AuditRepository, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	r := &AuditRepository{
		client:  client,
		entries: client.Database(cfg.Database).Collection(cfg.Collection),
		now:     time.Now,
	}
	if _, err := r.entries.Indexes().CreateOne(ctx, entityIndex()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create audit index: %w", err)
	}
	return r, nil
}

func entityIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "entity_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("entity_created"),
	}
}

func (r *AuditRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func (r *AuditRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// prepare fills the id and timestamp of a new entry.
func prepare(log *AuditLog, now time.Time) error {
	if log.Service == "" || log.Action == "" || log.EntityID == "" {
		return errIncompleteAuditLog
	}
	if log.ID == "" {
		log.ID = primitive.NewObjectIDFromTimestamp(now).Hex()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = now
	}
	log.CreatedAt = log.CreatedAt.UTC().Truncate(time.Millisecond)
	return nil
}

func (r *AuditRepository) CreateAuditLog(ctx context.Context, log *AuditLog) error {
	if err := prepare(log, r.now()); err != nil {
		return err
	}
	if _, err := r.entries.InsertOne(ctx, log); err != nil {
		return fmt.Errorf("failed to insert audit log for %s: %w", log.EntityID, err)
	}
	return nil
}

// lookup builds the newest-first query for one entity. limit is clamped to
// [1, MaxAuditEntries].
func lookup(entityID string, limit int64) (bson.D, *options.FindOptions) {
	if limit < 1 || limit > MaxAuditEntries {
		limit = MaxAuditEntries
	}
	filter := bson.D{{Key: "entity_id", Value: entityID}}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	return filter, opts
}

// GetAuditLogs returns the entity's trail, newest first. An unknown entity
// yields an empty slice.
func (r *AuditRepository) GetAuditLogs(ctx context.Context, entityID string, limit int64) ([]*AuditLog, error) {
	filter, opts := lookup(entityID, limit)

	cursor, err := r.entries.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer cursor.Close(ctx)

	logs := make([]*AuditLog, 0)
	for cursor.Next(ctx) {
		var entry AuditLog
		if err := cursor.Decode(&entry); err != nil {
			return nil, fmt.Errorf("failed to decode audit log: %w", err)
		}
		logs = append(logs, &entry)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit logs: %w", err)
	}
	return logs, nil
}
