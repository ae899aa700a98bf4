package gemini

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/newslens/newslens/internal/metrics"
	"github.com/newslens/newslens/internal/ratelimit"
)

const (
	generativeModel = "gemini-1.5-flash"
	embeddingModel  = "text-embedding-004"

	// Prompts longer than this get cut at a sentence boundary.
	maxPromptRunes = 6000
)

var labelRe = regexp.MustCompile(`(?i)^(summary|tl;?dr)\s*:\s*`)

// Client wraps the Gemini API for summary generation and text embeddings.
type Client struct {
	client  *genai.Client
	limiter *ratelimit.Limiter
}

func NewClient(apiKey string, limiter *ratelimit.Limiter) (*Client, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{client: client, limiter: limiter}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Available reports whether the client is configured and within budget.
func (c *Client) Available() bool {
	if c == nil || c.client == nil {
		return false
	}
	if c.limiter != nil && !c.limiter.Allow(ratelimit.Gemini) {
		return false
	}
	return true
}

// Summarize produces an abstractive summary of text within the word bounds.
func (c *Client) Summarize(ctx context.Context, text string, maxWords, minWords int) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("gemini client not configured")
	}
	if c.limiter != nil {
		if err := c.limiter.Use(ratelimit.Gemini); err != nil {
			return "", err
		}
	}

	model := c.client.GenerativeModel(generativeModel)

	prompt := fmt.Sprintf(`Summarize the following news text in one paragraph of %d to %d words.
Write plain prose. Do not add labels, bullet points or introductions.

TEXT:
%s`, minWords, maxWords, sanitize(text))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		metrics.Global.IncrementProviderErrors()
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	out := cleanResponse(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
	if out == "" {
		return "", fmt.Errorf("empty summary from Gemini")
	}
	return out, nil
}

// EmbedTexts returns one embedding vector per input text.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("gemini client not configured")
	}
	if len(texts) == 0 {
		return nil, nil
	}
	if c.limiter != nil {
		if err := c.limiter.Use(ratelimit.Gemini); err != nil {
			return nil, err
		}
	}

	em := c.client.EmbeddingModel(embeddingModel)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(sanitize(t)))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		metrics.Global.IncrementProviderErrors()
		return nil, fmt.Errorf("failed to embed texts: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d texts", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float64, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, fmt.Errorf("empty embedding for text %d", i)
		}
		vec := make([]float64, len(e.Values))
		for j, v := range e.Values {
			vec[j] = float64(v)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// cleanResponse strips labels and quoting the model sometimes adds around
// its answer.
func cleanResponse(s string) string {
	s = strings.TrimSpace(s)
	s = labelRe.ReplaceAllString(s, "")
	s = strings.Trim(s, `"`)
	return strings.TrimSpace(s)
}

// sanitize collapses whitespace and cuts over-long input at a sentence
// boundary.
func sanitize(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= maxPromptRunes {
		return text
	}

	runes := []rune(text)
	trimmed := string(runes[:maxPromptRunes])
	if idx := strings.LastIndex(trimmed, ". "); idx > 1200 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed
}
