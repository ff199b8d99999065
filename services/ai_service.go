package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
	"github.com/akinalp/chronora/pkg/llm"
	"github.com/akinalp/chronora/pkg/telemetry"
)

// Completer, AI servisinin dil modelinden beklediği tek işlem.
// *llm.Client bunu sağlar; testlerde sahte implementasyon kullanılır.
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, prompt string, temperature *float64) (string, error)
}

// AIService, yazı yazma asistanı.
type AIService interface {
	GenerateBlog(ctx context.Context, req *models.GenerateBlogRequest) (*models.GeneratedBlog, error)
	GenerateTitles(ctx context.Context, req *models.AIContentRequest) (*models.GeneratedTitles, error)
	FixGrammar(ctx context.Context, req *models.AIContentRequest) (*models.GeneratedContent, error)
	ImproveContent(ctx context.Context, req *models.AIContentRequest) (*models.GeneratedContent, error)
}

type aiService struct {
	llm     Completer
	metrics *telemetry.Metrics
}

// NewAIService, constructor.
func NewAIService(llm Completer, metrics *telemetry.Metrics) AIService {
	return &aiService{llm: llm, metrics: metrics}
}

const (
	generateBlogPrompt = `Write a detailed SEO-friendly blog post on: %q
Respond ONLY with a JSON object in this exact shape:
{"title": "", "tags": [], "content": ""}
The content field must be HTML.`

	generateTitlesPrompt = `Generate 5 engaging blog titles for this content:
%q
Respond ONLY with a JSON object in this exact shape: {"titles": []}`

	fixGrammarPrompt = `Fix grammar, clarity and fluency of the following text:
%q
Return only the improved text.`

	improveContentPrompt = `Improve this blog post: add depth and detail, and improve readability.
%q
Return only the improved content.`
)

func (s *aiService) GenerateBlog(ctx context.Context, req *models.GenerateBlogRequest) (*models.GeneratedBlog, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	temperature := 0.7
	text, err := s.complete(ctx, "generate_blog", fmt.Sprintf(generateBlogPrompt, req.Topic), &temperature)
	if err != nil {
		return nil, err
	}

	var out models.GeneratedBlog
	if err := decodeModelJSON(text, &out); err != nil {
		s.metrics.AIRequest("generate_blog", "bad_output")
		return nil, err
	}

	tags, err := models.NormalizeTags(out.Tags)
	if err != nil {
		// Model fazla tag üretirse ilk PostMaxTags tanesini al
		tags, _ = models.NormalizeTags(truncate(out.Tags, models.PostMaxTags))
	}
	out.Tags = tags
	return &out, nil
}

func (s *aiService) GenerateTitles(ctx context.Context, req *models.AIContentRequest) (*models.GeneratedTitles, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	text, err := s.complete(ctx, "generate_titles", fmt.Sprintf(generateTitlesPrompt, req.Content), nil)
	if err != nil {
		return nil, err
	}

	var out models.GeneratedTitles
	if err := decodeModelJSON(text, &out); err != nil {
		s.metrics.AIRequest("generate_titles", "bad_output")
		return nil, err
	}
	return &out, nil
}

func (s *aiService) FixGrammar(ctx context.Context, req *models.AIContentRequest) (*models.GeneratedContent, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	text, err := s.complete(ctx, "fix_grammar", fmt.Sprintf(fixGrammarPrompt, req.Content), nil)
	if err != nil {
		return nil, err
	}
	return &models.GeneratedContent{Content: strings.TrimSpace(text)}, nil
}

func (s *aiService) ImproveContent(ctx context.Context, req *models.AIContentRequest) (*models.GeneratedContent, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	text, err := s.complete(ctx, "improve_content", fmt.Sprintf(improveContentPrompt, req.Content), nil)
	if err != nil {
		return nil, err
	}
	return &models.GeneratedContent{Content: strings.TrimSpace(text)}, nil
}

// complete, modeli çağırır ve hatayı domain hatasına çevirir.
// Yapılandırılmamış client → ErrUnavailable (503), upstream hatası → 500.
func (s *aiService) complete(ctx context.Context, op, prompt string, temperature *float64) (string, error) {
	if s.llm == nil || !s.llm.Configured() {
		s.metrics.AIRequest(op, "unavailable")
		return "", fmt.Errorf("%w: AI assist is not configured", pkg.ErrUnavailable)
	}

	text, err := s.llm.Complete(ctx, prompt, temperature)
	if err != nil {
		s.metrics.AIRequest(op, "error")
		log.Ctx(ctx).Error().Err(err).Str("component", "ai").Str("operation", op).Msg("completion failed")
		if errors.Is(err, llm.ErrNotConfigured) {
			return "", fmt.Errorf("%w: AI assist is not configured", pkg.ErrUnavailable)
		}
		return "", fmt.Errorf("ai %s failed: %w", op, err)
	}

	s.metrics.AIRequest(op, "ok")
	return text, nil
}

// decodeModelJSON, model cevabındaki ilk JSON objesini çözer.
// Modeller JSON'u sıklıkla ```json bloğu veya açıklama metniyle sarar.
func decodeModelJSON(text string, v any) error {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return fmt.Errorf("model response does not contain a JSON object")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return fmt.Errorf("failed to parse model response: %w", err)
	}
	return nil
}

func truncate(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
