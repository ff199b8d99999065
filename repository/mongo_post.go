package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/akinalp/chronora/database"
	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
)

// postDocument, posts koleksiyonundaki belge. Beğeniler ayrı tablo yerine
// belge içinde kullanıcı ID dizisi olarak tutulur.
type postDocument struct {
	ID            string    `bson:"_id"`
	AuthorID      string    `bson:"author_id"`
	Title         string    `bson:"title"`
	Content       string    `bson:"content"`
	CoverImageURL string    `bson:"cover_image_url"`
	CoverImageKey string    `bson:"cover_image_key"`
	Status        string    `bson:"status"`
	Tags          []string  `bson:"tags"`
	Likes         []string  `bson:"likes"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func (d *postDocument) toModel(viewerID string) *models.Post {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return &models.Post{
		ID:            d.ID,
		AuthorID:      d.AuthorID,
		Title:         d.Title,
		Content:       d.Content,
		CoverImageURL: d.CoverImageURL,
		CoverImageKey: d.CoverImageKey,
		Status:        models.PostStatus(d.Status),
		Tags:          tags,
		LikesCount:    len(d.Likes),
		Liked:         viewerID != "" && slices.Contains(d.Likes, viewerID),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// maxToggleAttempts, ToggleLike'ın eşzamanlı değişikliklere karşı deneme sayısı.
const maxToggleAttempts = 10

type mongoPostRepo struct {
	db       *mongo.Database
	coll     *mongo.Collection
	comments *mongo.Collection
}

// NewMongoPostRepo, PostRepository'nin MongoDB implementasyonunu döner.
func NewMongoPostRepo(db *mongo.Database) PostRepository {
	return &mongoPostRepo{
		db:       db,
		coll:     db.Collection(database.CollectionPosts),
		comments: db.Collection(database.CollectionComments),
	}
}

func (r *mongoPostRepo) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	post.UpdatedAt = post.CreatedAt
	if post.Tags == nil {
		post.Tags = []string{}
	}

	doc := postDocument{
		ID:            post.ID,
		AuthorID:      post.AuthorID,
		Title:         post.Title,
		Content:       post.Content,
		CoverImageURL: post.CoverImageURL,
		CoverImageKey: post.CoverImageKey,
		Status:        string(post.Status),
		Tags:          post.Tags,
		Likes:         []string{},
		CreatedAt:     post.CreatedAt.UTC(),
		UpdatedAt:     post.UpdatedAt.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *mongoPostRepo) GetByID(ctx context.Context, id, viewerID string) (*models.Post, error) {
	var doc postDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: post not found", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	posts, err := r.withAuthors(ctx, []postDocument{doc}, viewerID)
	if err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (r *mongoPostRepo) List(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	filter.Normalize()

	query := bson.M{}
	if filter.AuthorID != "" {
		query["author_id"] = filter.AuthorID
	}
	if !filter.IncludeDrafts {
		query["status"] = string(models.PostStatusPublished)
	}
	if filter.Tag != "" {
		query["tags"] = filter.Tag
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}

	return r.withAuthors(ctx, docs, filter.ViewerID)
}

func (r *mongoPostRepo) Update(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now().UTC()
	if post.Tags == nil {
		post.Tags = []string{}
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": post.ID}, bson.M{"$set": bson.M{
		"title":           post.Title,
		"content":         post.Content,
		"cover_image_url": post.CoverImageURL,
		"cover_image_key": post.CoverImageKey,
		"status":          string(post.Status),
		"tags":            post.Tags,
		"updated_at":      post.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: post not found", pkg.ErrNotFound)
	}
	return nil
}

// Delete, önce yorumları sonra yazıyı siler. Standalone Mongo kurulumlarında
// transaction olmadığı için sıra önemlidir: yarım kalırsa geriye yorumsuz yazı kalır.
func (r *mongoPostRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.comments.DeleteMany(ctx, bson.M{"post_id": id}); err != nil {
		return fmt.Errorf("failed to delete post comments: %w", err)
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: post not found", pkg.ErrNotFound)
	}
	return nil
}

// ToggleLike, beğeniyi koşullu tek bir güncelleme ile çevirir.
// Filtre mevcut durumu içerdiği için eşzamanlı iki toggle aynı adımı uygulayamaz:
// biri eşleşmezse diğer yöne denenir. Her iki yön de eşleşmezse yazı yoktur
// ya da durum arada değişmiştir; ikincisinde tekrar denenir.
func (r *mongoPostRepo) ToggleLike(ctx context.Context, postID, userID string) (*models.LikeResult, error) {
	steps := []struct {
		filter bson.M
		update bson.M
	}{
		{bson.M{"_id": postID, "likes": userID}, bson.M{"$pull": bson.M{"likes": userID}}},
		{bson.M{"_id": postID, "likes": bson.M{"$ne": userID}}, bson.M{"$addToSet": bson.M{"likes": userID}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		for _, step := range steps {
			var doc postDocument
			err := r.coll.FindOneAndUpdate(ctx, step.filter, step.update, opts).Decode(&doc)
			if errors.Is(err, mongo.ErrNoDocuments) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to toggle like: %w", err)
			}
			return &models.LikeResult{
				Liked:      slices.Contains(doc.Likes, userID),
				LikesCount: len(doc.Likes),
			}, nil
		}

		exists, err := r.coll.CountDocuments(ctx, bson.M{"_id": postID})
		if err != nil {
			return nil, fmt.Errorf("failed to check post: %w", err)
		}
		if exists == 0 {
			return nil, fmt.Errorf("%w: post not found", pkg.ErrNotFound)
		}
	}

	return nil, fmt.Errorf("failed to toggle like: post %s kept changing", postID)
}

func (r *mongoPostRepo) withAuthors(ctx context.Context, docs []postDocument, viewerID string) ([]models.Post, error) {
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.AuthorID)
	}

	authors, err := loadAuthors(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0, len(docs))
	for i := range docs {
		p := docs[i].toModel(viewerID)
		p.Author = authors[p.AuthorID]
		posts = append(posts, *p)
	}
	return posts, nil
}
