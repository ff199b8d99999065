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

type commentDocument struct {
	ID        string    `bson:"_id"`
	PostID    string    `bson:"post_id"`
	AuthorID  string    `bson:"author_id"`
	ParentID  *string   `bson:"parent_id,omitempty"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d *commentDocument) toModel() *models.Comment {
	return &models.Comment{
		ID:        d.ID,
		PostID:    d.PostID,
		AuthorID:  d.AuthorID,
		ParentID:  d.ParentID,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type mongoCommentRepo struct {
	db   *mongo.Database
	coll *mongo.Collection
}

// NewMongoCommentRepo, CommentRepository'nin MongoDB implementasyonunu döner.
func NewMongoCommentRepo(db *mongo.Database) CommentRepository {
	return &mongoCommentRepo{db: db, coll: db.Collection(database.CollectionComments)}
}

func (r *mongoCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	comment.UpdatedAt = comment.CreatedAt

	doc := commentDocument{
		ID:        comment.ID,
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		ParentID:  comment.ParentID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt.UTC(),
		UpdatedAt: comment.UpdatedAt.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *mongoCommentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var doc commentDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: comment not found", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	comments, err := r.withAuthors(ctx, []commentDocument{doc})
	if err != nil {
		return nil, err
	}
	return &comments[0], nil
}

func (r *mongoCommentRepo) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	var docs []commentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return r.withAuthors(ctx, docs)
}

// Delete, yorumun alt ağacını seviye seviye toplayıp tek DeleteMany ile siler.
func (r *mongoCommentRepo) Delete(ctx context.Context, id string) error {
	ids := []string{id}
	frontier := []string{id}

	for len(frontier) > 0 {
		cursor, err := r.coll.Find(ctx, bson.M{"parent_id": bson.M{"$in": frontier}},
			options.Find().SetProjection(bson.M{"_id": 1}))
		if err != nil {
			return fmt.Errorf("failed to collect replies: %w", err)
		}

		var children []struct {
			ID string `bson:"_id"`
		}
		if err := cursor.All(ctx, &children); err != nil {
			return fmt.Errorf("failed to decode replies: %w", err)
		}

		frontier = frontier[:0]
		for _, c := range children {
			ids = append(ids, c.ID)
			frontier = append(frontier, c.ID)
		}
	}

	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: comment not found", pkg.ErrNotFound)
	}
	return nil
}

func (r *mongoCommentRepo) withAuthors(ctx context.Context, docs []commentDocument) ([]models.Comment, error) {
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.AuthorID)
	}

	authors, err := loadAuthors(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}

	comments := make([]models.Comment, 0, len(docs))
	for i := range docs {
		c := docs[i].toModel()
		c.Author = authors[c.AuthorID]
		comments = append(comments, *c)
	}
	return comments, nil
}
