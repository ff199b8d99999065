package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// PostStatus, yazının yayın durumu.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Post doğrulama sınırları.
const (
	PostTitleMinLen   = 3
	PostTitleMaxLen   = 150
	PostContentMinLen = 3
	PostMaxTags       = 10
	PostTagMaxLen     = 30
)

// AuthorSummary, yazı ve yorumlara gömülen yazar özeti.
type AuthorSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Post, bir blog yazısı.
//
// Content, frontend editörünün ürettiği rich-text (HTML) metnidir; server
// içeriği yorumlamaz, olduğu gibi saklar.
// LikesCount ve Liked sorgu anında hesaplanır (Liked = isteği yapanın beğenisi).
type Post struct {
	ID            string         `json:"id"`
	AuthorID      string         `json:"author_id"`
	Author        *AuthorSummary `json:"author,omitempty"`
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	CoverImageURL string         `json:"cover_image_url"`
	CoverImageKey string         `json:"-"`
	Status        PostStatus     `json:"status"`
	Tags          []string       `json:"tags"`
	LikesCount    int            `json:"likes_count"`
	Liked         bool           `json:"liked"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// VisibleTo, yazının verilen kullanıcıya görünür olup olmadığını döner.
// Taslaklar sadece yazarına görünür.
func (p *Post) VisibleTo(viewerID string) bool {
	return p.Status == PostStatusPublished || (viewerID != "" && p.AuthorID == viewerID)
}

// PostDetail, tek yazı endpoint'inin yanıtı: yazı + yorumları.
type PostDetail struct {
	*Post
	Comments []Comment `json:"comments"`
}

// PostFilter, yazı listeleme parametreleri.
// AuthorID boşsa tüm yazarlar; IncludeDrafts sadece yazarın kendi listesinde true olur.
type PostFilter struct {
	AuthorID      string
	Tag           string
	IncludeDrafts bool
	ViewerID      string
	Limit         int
	Offset        int
}

// Sayfalama sınırları.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Normalize, limit/offset'i geçerli aralığa çeker ve tag'i küçük harfe çevirir.
func (f *PostFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Tag = strings.ToLower(strings.TrimSpace(f.Tag))
}

// CreatePostRequest, yeni yazı isteği.
// Kapak resmi multipart isteklerde ayrı bir dosya alanı olarak gelir.
type CreatePostRequest struct {
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Status  PostStatus `json:"status"`
	Tags    []string   `json:"tags"`
}

// Validate, CreatePostRequest'i normalize eder ve kontrol eder.
func (r *CreatePostRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if err := validateTitle(r.Title); err != nil {
		return err
	}

	if err := validateContent(r.Content); err != nil {
		return err
	}

	if r.Status == "" {
		r.Status = PostStatusDraft
	}
	if err := validateStatus(r.Status); err != nil {
		return err
	}

	tags, err := NormalizeTags(r.Tags)
	if err != nil {
		return err
	}
	r.Tags = tags
	return nil
}

// UpdatePostRequest, kısmi yazı güncellemesi — nil alanlar değişmez.
type UpdatePostRequest struct {
	Title       *string     `json:"title"`
	Content     *string     `json:"content"`
	Status      *PostStatus `json:"status"`
	Tags        *[]string   `json:"tags"`
	RemoveCover bool        `json:"remove_cover"`
}

// Validate, UpdatePostRequest'teki dolu alanları kontrol eder.
func (r *UpdatePostRequest) Validate() error {
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		if err := validateTitle(t); err != nil {
			return err
		}
		r.Title = &t
	}
	if r.Content != nil {
		if err := validateContent(*r.Content); err != nil {
			return err
		}
	}
	if r.Status != nil {
		if err := validateStatus(*r.Status); err != nil {
			return err
		}
	}
	if r.Tags != nil {
		tags, err := NormalizeTags(*r.Tags)
		if err != nil {
			return err
		}
		r.Tags = &tags
	}
	return nil
}

// NormalizeTags, tag listesini trim + küçük harf + tekilleştirme ile temizler.
// Boş tag'ler atlanır, sıra korunur.
func NormalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))

	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > PostTagMaxLen {
			return nil, fmt.Errorf("tag %q must be at most %d characters", tag, PostTagMaxLen)
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	if len(out) > PostMaxTags {
		return nil, fmt.Errorf("a post can have at most %d tags", PostMaxTags)
	}
	return out, nil
}

// SplitTags, multipart formlardaki virgülle ayrılmış tag alanını böler.
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n < PostTitleMinLen || n > PostTitleMaxLen {
		return fmt.Errorf("title must be between %d and %d characters", PostTitleMinLen, PostTitleMaxLen)
	}
	return nil
}

func validateContent(content string) error {
	if utf8.RuneCountInString(strings.TrimSpace(content)) < PostContentMinLen {
		return fmt.Errorf("content must be at least %d characters", PostContentMinLen)
	}
	return nil
}

func validateStatus(status PostStatus) error {
	switch status {
	case PostStatusDraft, PostStatusPublished:
		return nil
	}
	return fmt.Errorf("status must be %q or %q", PostStatusDraft, PostStatusPublished)
}

// LikeResult, beğeni toggle sonucunu taşır.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}
