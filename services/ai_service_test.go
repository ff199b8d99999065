package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/chronora/models"
	"github.com/akinalp/chronora/pkg"
	"github.com/akinalp/chronora/pkg/telemetry"
)

// fakeCompleter, sabit cevap dönen Completer.
type fakeCompleter struct {
	configured  bool
	reply       string
	err         error
	prompt      string
	temperature *float64
}

func (f *fakeCompleter) Configured() bool { return f.configured }

func (f *fakeCompleter) Complete(_ context.Context, prompt string, temperature *float64) (string, error) {
	f.prompt = prompt
	f.temperature = temperature
	return f.reply, f.err
}

func TestAIService_NotConfigured(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)
	ai := NewAIService(&fakeCompleter{}, metrics)

	_, err := ai.FixGrammar(context.Background(), &models.AIContentRequest{Content: "helo wrld"})
	assert.ErrorIs(t, err, pkg.ErrUnavailable)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AIRequests.WithLabelValues("fix_grammar", "unavailable")))

	ai = NewAIService(nil, nil)
	_, err = ai.GenerateTitles(context.Background(), &models.AIContentRequest{Content: "text"})
	assert.ErrorIs(t, err, pkg.ErrUnavailable)
}

func TestAIService_Validation(t *testing.T) {
	llm := &fakeCompleter{configured: true}
	ai := NewAIService(llm, nil)
	ctx := context.Background()

	_, err := ai.GenerateBlog(ctx, &models.GenerateBlogRequest{Topic: "   "})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	_, err = ai.GenerateBlog(ctx, &models.GenerateBlogRequest{Topic: strings.Repeat("x", models.AITopicMaxLen+1)})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	_, err = ai.ImproveContent(ctx, &models.AIContentRequest{Content: ""})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	assert.Empty(t, llm.prompt, "invalid requests never reach the model")
}

func TestAIService_GenerateBlog(t *testing.T) {
	llm := &fakeCompleter{
		configured: true,
		reply: "Sure! Here you go:\n```json\n" +
			`{"title": "Go Concurrency", "tags": ["Go", "concurrency", "go"], "content": "<p>Channels</p>"}` +
			"\n```",
	}
	ai := NewAIService(llm, nil)

	out, err := ai.GenerateBlog(context.Background(), &models.GenerateBlogRequest{Topic: " goroutines "})
	require.NoError(t, err)
	assert.Equal(t, "Go Concurrency", out.Title)
	assert.Equal(t, []string{"go", "concurrency"}, out.Tags)
	assert.Equal(t, "<p>Channels</p>", out.Content)

	assert.Contains(t, llm.prompt, `"goroutines"`)
	require.NotNil(t, llm.temperature)
	assert.InDelta(t, 0.7, *llm.temperature, 1e-9)
}

func TestAIService_GenerateBlogTruncatesTags(t *testing.T) {
	tags := make([]string, 0, 15)
	for i := range 15 {
		tags = append(tags, fmt.Sprintf("%q", fmt.Sprintf("tag%d", i)))
	}
	llm := &fakeCompleter{
		configured: true,
		reply:      `{"title": "t", "tags": [` + strings.Join(tags, ",") + `], "content": "c"}`,
	}

	out, err := NewAIService(llm, nil).GenerateBlog(context.Background(), &models.GenerateBlogRequest{Topic: "many tags"})
	require.NoError(t, err)
	assert.Len(t, out.Tags, models.PostMaxTags)
	assert.Equal(t, "tag0", out.Tags[0])
}

func TestAIService_BadModelOutput(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)
	llm := &fakeCompleter{configured: true, reply: "I cannot do that."}

	_, err := NewAIService(llm, metrics).GenerateTitles(context.Background(), &models.AIContentRequest{Content: "post body"})
	assert.ErrorContains(t, err, "JSON object")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AIRequests.WithLabelValues("generate_titles", "bad_output")))
}

func TestAIService_TextOperations(t *testing.T) {
	llm := &fakeCompleter{configured: true, reply: "\n  Hello world.  \n"}
	ai := NewAIService(llm, nil)

	fixed, err := ai.FixGrammar(context.Background(), &models.AIContentRequest{Content: "helo wrld"})
	require.NoError(t, err)
	assert.Equal(t, "Hello world.", fixed.Content)
	assert.Nil(t, llm.temperature)

	improved, err := ai.ImproveContent(context.Background(), &models.AIContentRequest{Content: "short"})
	require.NoError(t, err)
	assert.Equal(t, "Hello world.", improved.Content)

	titles := &fakeCompleter{configured: true, reply: `{"titles": ["A", "B"]}`}
	out, err := NewAIService(titles, nil).GenerateTitles(context.Background(), &models.AIContentRequest{Content: "body"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, out.Titles)
}

func TestAIService_UpstreamError(t *testing.T) {
	llm := &fakeCompleter{configured: true, err: errors.New("rate limited")}

	_, err := NewAIService(llm, nil).ImproveContent(context.Background(), &models.AIContentRequest{Content: "x"})
	assert.ErrorContains(t, err, "rate limited")
	assert.NotErrorIs(t, err, pkg.ErrUnavailable)
}
