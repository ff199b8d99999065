package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/akinalp/chronora/database"
	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
)

// userDocument, users koleksiyonundaki belge şekli.
// Domain modeli bson tag'leriyle kirletilmez; dönüşüm bu dosyada yapılır.
type userDocument struct {
	ID           string     `bson:"_id"`
	Username     string     `bson:"username"`
	Email        string     `bson:"email"`
	PasswordHash string     `bson:"password_hash"`
	DisplayName  string     `bson:"display_name"`
	AvatarURL    string     `bson:"avatar_url"`
	AvatarKey    string     `bson:"avatar_key"`
	Role         string     `bson:"role"`
	IsVerified   bool       `bson:"is_verified"`
	LastLogin    *time.Time `bson:"last_login,omitempty"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
}

func (d *userDocument) toModel() *models.User {
	return &models.User{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		DisplayName:  d.DisplayName,
		AvatarURL:    d.AvatarURL,
		AvatarKey:    d.AvatarKey,
		Role:         models.Role(d.Role),
		IsVerified:   d.IsVerified,
		LastLogin:    d.LastLogin,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type mongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo, UserRepository'nin MongoDB implementasyonunu döner.
func NewMongoUserRepo(db *mongo.Database) UserRepository {
	return &mongoUserRepo{coll: db.Collection(database.CollectionUsers)}
}

func (r *mongoUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.UpdatedAt = user.CreatedAt

	doc := userDocument{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		DisplayName:  user.DisplayName,
		AvatarURL:    user.AvatarURL,
		AvatarKey:    user.AvatarKey,
		Role:         string(user.Role),
		IsVerified:   user.IsVerified,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if dupErr := userDuplicateError(err); dupErr != nil {
			return dupErr
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// userDuplicateError, unique index ihlalini ErrAlreadyExists'e çevirir.
// Hangi alanın çakıştığı index adından okunur; "dup key" kısmı kullanıcı
// verisini içerdiği için ona bakılmaz (ör. "email_1" kullanıcı adı).
func userDuplicateError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if strings.Contains(err.Error(), "index: email_1 ") {
		return fmt.Errorf("%w: email already in use", pkg.ErrAlreadyExists)
	}
	return fmt.Errorf("%w: username already taken", pkg.ErrAlreadyExists)
}

func (r *mongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *mongoUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": strings.ToLower(username)})
}

func (r *mongoUserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoUserRepo) UpdateDisplayName(ctx context.Context, userID, displayName string) error {
	return r.set(ctx, userID, bson.M{"display_name": displayName})
}

func (r *mongoUserRepo) UpdateAvatar(ctx context.Context, userID, avatarURL, avatarKey string) error {
	return r.set(ctx, userID, bson.M{"avatar_url": avatarURL, "avatar_key": avatarKey})
}

func (r *mongoUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return r.set(ctx, userID, bson.M{"password_hash": passwordHash})
}

func (r *mongoUserRepo) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"last_login": at.UTC()}})
	if err != nil {
		return fmt.Errorf("failed to update user last login: %w", err)
	}
	if res.MatchedCount == 0 {
		return pkg.ErrNotFound
	}
	return nil
}

// set, verilen alanları ve updated_at'i günceller.
func (r *mongoUserRepo) set(ctx context.Context, userID string, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return pkg.ErrNotFound
	}
	return nil
}

// loadAuthors, verilen kullanıcı ID'leri için yazar özetlerini tek sorguda okur.
// Post ve comment Mongo repo'ları JOIN yerine bunu kullanır.
func loadAuthors(ctx context.Context, db *mongo.Database, ids []string) (map[string]*models.AuthorSummary, error) {
	authors := make(map[string]*models.AuthorSummary, len(ids))
	if len(ids) == 0 {
		return authors, nil
	}

	cursor, err := db.Collection(database.CollectionUsers).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode authors: %w", err)
	}

	for _, d := range docs {
		authors[d.ID] = &models.AuthorSummary{
			ID:          d.ID,
			Username:    d.Username,
			DisplayName: d.DisplayName,
			AvatarURL:   d.AvatarURL,
		}
	}
	return authors, nil
}
