package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// CommentMaxLen, yorum içeriğinin üst sınırı.
const CommentMaxLen = 2000

// Comment, bir yazıya yapılan yorum.
// ParentID dolu ise başka bir yoruma yanıttır (aynı yazıya ait olmalı).
type Comment struct {
	ID        string         `json:"id"`
	PostID    string         `json:"post_id"`
	AuthorID  string         `json:"author_id"`
	Author    *AuthorSummary `json:"author,omitempty"`
	ParentID  *string        `json:"parent_id"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CreateCommentRequest, yeni yorum isteği.
type CreateCommentRequest struct {
	PostID   string  `json:"post_id"`
	Content  string  `json:"content"`
	ParentID *string `json:"parent_id"`
}

// Validate, CreateCommentRequest'i kontrol eder.
func (r *CreateCommentRequest) Validate() error {
	r.PostID = strings.TrimSpace(r.PostID)
	if r.PostID == "" {
		return fmt.Errorf("post_id is required")
	}

	r.Content = strings.TrimSpace(r.Content)
	n := utf8.RuneCountInString(r.Content)
	if n == 0 {
		return fmt.Errorf("content is required")
	}
	if n > CommentMaxLen {
		return fmt.Errorf("content must be at most %d characters", CommentMaxLen)
	}

	if r.ParentID != nil && strings.TrimSpace(*r.ParentID) == "" {
		r.ParentID = nil
	}
	return nil
}
