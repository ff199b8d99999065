package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/akinalp/chronora/database"
	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
)

type sessionDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	UserAgent string    `bson:"user_agent"`
	IP        string    `bson:"ip"`
	Valid     bool      `bson:"valid"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func (d *sessionDocument) toModel() *models.Session {
	return &models.Session{
		ID:        d.ID,
		UserID:    d.UserID,
		UserAgent: d.UserAgent,
		IP:        d.IP,
		Valid:     d.Valid,
		CreatedAt: d.CreatedAt,
		ExpiresAt: d.ExpiresAt,
	}
}

type mongoSessionRepo struct {
	coll *mongo.Collection
}

// NewMongoSessionRepo, SessionRepository'nin MongoDB implementasyonunu döner.
func NewMongoSessionRepo(db *mongo.Database) SessionRepository {
	return &mongoSessionRepo{coll: db.Collection(database.CollectionSessions)}
}

func (r *mongoSessionRepo) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	doc := sessionDocument{
		ID:        session.ID,
		UserID:    session.UserID,
		UserAgent: session.UserAgent,
		IP:        session.IP,
		Valid:     session.Valid,
		CreatedAt: session.CreatedAt.UTC(),
		ExpiresAt: session.ExpiresAt.UTC(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *mongoSessionRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoSessionRepo) GetActiveByID(ctx context.Context, id string, now time.Time) (*models.Session, error) {
	return r.findOne(ctx, bson.M{
		"_id":        id,
		"valid":      true,
		"expires_at": bson.M{"$gt": now.UTC()},
	})
}

func (r *mongoSessionRepo) findOne(ctx context.Context, filter bson.M) (*models.Session, error) {
	var doc sessionDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoSessionRepo) Invalidate(ctx context.Context, id string) error {
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"valid": false}}); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	return nil
}

func (r *mongoSessionRepo) InvalidateByUserID(ctx context.Context, userID, exceptID string) (int64, error) {
	filter := bson.M{"user_id": userID, "valid": true}
	if exceptID != "" {
		filter["_id"] = bson.M{"$ne": exceptID}
	}

	res, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"valid": false}})
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate user sessions: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *mongoSessionRepo) ListActiveByUserID(ctx context.Context, userID string, now time.Time) ([]models.Session, error) {
	filter := bson.M{
		"user_id":    userID,
		"valid":      true,
		"expires_at": bson.M{"$gt": now.UTC()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var docs []sessionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}

	sessions := make([]models.Session, 0, len(docs))
	for i := range docs {
		sessions = append(sessions, *docs[i].toModel())
	}
	return sessions, nil
}

func (r *mongoSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now.UTC()}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.DeletedCount, nil
}
