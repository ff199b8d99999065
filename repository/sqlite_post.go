package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/chronora/database"
	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
)

type sqlitePostRepo struct {
	db database.TxQuerier
}

// NewSQLitePostRepo, constructor.
func NewSQLitePostRepo(db database.TxQuerier) PostRepository {
	return &sqlitePostRepo{db: db}
}

// postSelect, yazı + yazar özeti + beğeni sayısı + izleyicinin beğenisi.
// İlk parametre viewerID'dir; boş string hiçbir beğeniyle eşleşmez.
const postSelect = `
	SELECT p.id, p.author_id, u.username, u.display_name, u.avatar_url,
		p.title, p.content, p.cover_image_url, p.cover_image_key, p.status, p.tags,
		p.created_at, p.updated_at,
		(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id) AS likes_count,
		EXISTS(SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = ?) AS liked
	FROM posts p
	JOIN users u ON u.id = p.author_id`

func (r *sqlitePostRepo) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	post.UpdatedAt = post.CreatedAt

	tags, err := encodeTags(post.Tags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO posts (id, author_id, title, content, cover_image_url, cover_image_key, status, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		post.ID, post.AuthorID, post.Title, post.Content,
		post.CoverImageURL, post.CoverImageKey, post.Status, tags,
		post.CreatedAt.UTC(), post.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *sqlitePostRepo) GetByID(ctx context.Context, id, viewerID string) (*models.Post, error) {
	post, err := scanPost(r.db.QueryRowContext(ctx, postSelect+` WHERE p.id = ?`, viewerID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: post not found", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

func (r *sqlitePostRepo) List(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	filter.Normalize()

	var (
		where []string
		args  = []any{filter.ViewerID}
	)

	if filter.AuthorID != "" {
		where = append(where, "p.author_id = ?")
		args = append(args, filter.AuthorID)
	}
	if !filter.IncludeDrafts {
		where = append(where, "p.status = ?")
		args = append(args, models.PostStatusPublished)
	}
	if filter.Tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(p.tags) WHERE json_each.value = ?)")
		args = append(args, filter.Tag)
	}

	query := postSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.created_at DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

func (r *sqlitePostRepo) Update(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now().UTC()

	tags, err := encodeTags(post.Tags)
	if err != nil {
		return err
	}

	query := `
		UPDATE posts SET title = ?, content = ?, cover_image_url = ?, cover_image_key = ?,
			status = ?, tags = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		post.Title, post.Content, post.CoverImageURL, post.CoverImageKey,
		post.Status, tags, post.UpdatedAt, post.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: post not found", pkg.ErrNotFound)
	}
	return nil
}

// Delete, yorumları, beğenileri ve yazıyı tek transaction'da siler.
func (r *sqlitePostRepo) Delete(ctx context.Context, id string) error {
	return database.WithTx(ctx, r.db, func(tx database.TxQuerier) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete post comments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete post likes: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: post not found", pkg.ErrNotFound)
		}
		return nil
	})
}

// ToggleLike, beğeni varsa siler, yoksa ekler. Sayım aynı transaction içinde yapılır.
func (r *sqlitePostRepo) ToggleLike(ctx context.Context, postID, userID string) (*models.LikeResult, error) {
	res := &models.LikeResult{}

	err := database.WithTx(ctx, r.db, func(tx database.TxQuerier) error {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM post_likes WHERE post_id = ? AND user_id = ?`, postID, userID)
		if err != nil {
			return fmt.Errorf("failed to remove like: %w", err)
		}

		removed, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}

		if removed == 0 {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO post_likes (post_id, user_id, created_at) VALUES (?, ?, ?)`,
				postID, userID, time.Now().UTC()); err != nil {
				return fmt.Errorf("failed to add like: %w", err)
			}
			res.Liked = true
		}

		return tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM post_likes WHERE post_id = ?`, postID,
		).Scan(&res.LikesCount)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func scanPost(row interface{ Scan(dest ...any) error }) (*models.Post, error) {
	p := &models.Post{Author: &models.AuthorSummary{}}
	var tags string

	err := row.Scan(
		&p.ID, &p.AuthorID, &p.Author.Username, &p.Author.DisplayName, &p.Author.AvatarURL,
		&p.Title, &p.Content, &p.CoverImageURL, &p.CoverImageKey, &p.Status, &tags,
		&p.CreatedAt, &p.UpdatedAt, &p.LikesCount, &p.Liked,
	)
	if err != nil {
		return nil, err
	}

	p.Author.ID = p.AuthorID
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}
