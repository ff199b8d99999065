package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// AI-assist istek sınırları.
const (
	AITopicMaxLen   = 300
	AIContentMaxLen = 20000
)

// GenerateBlogRequest, konudan taslak yazı üretme isteği.
type GenerateBlogRequest struct {
	Topic string `json:"topic"`
}

// Validate, konuyu kontrol eder.
func (r *GenerateBlogRequest) Validate() error {
	r.Topic = strings.TrimSpace(r.Topic)
	if r.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	if utf8.RuneCountInString(r.Topic) > AITopicMaxLen {
		return fmt.Errorf("topic must be at most %d characters", AITopicMaxLen)
	}
	return nil
}

// AIContentRequest, mevcut içerik üzerinde çalışan (başlık, gramer, iyileştirme) istekler.
type AIContentRequest struct {
	Content string `json:"content"`
}

// Validate, içeriği kontrol eder.
func (r *AIContentRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("content is required")
	}
	if utf8.RuneCountInString(r.Content) > AIContentMaxLen {
		return fmt.Errorf("content must be at most %d characters", AIContentMaxLen)
	}
	return nil
}

// GeneratedBlog, modelin ürettiği taslak.
type GeneratedBlog struct {
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
	Content string   `json:"content"`
}

// GeneratedTitles, başlık önerileri.
type GeneratedTitles struct {
	Titles []string `json:"titles"`
}

// GeneratedContent, düzeltilmiş/iyileştirilmiş içerik.
type GeneratedContent struct {
	Content string `json:"content"`
}
