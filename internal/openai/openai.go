package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/newslens/newslens/internal/metrics"
	"github.com/newslens/newslens/internal/ratelimit"
)

// Client wraps the OpenAI chat API as the fallback summary provider.
type Client struct {
	client  *goopenai.Client
	limiter *ratelimit.Limiter
}

// NewClient returns a client, or an unconfigured one when the key is empty.
func NewClient(apiKey string, limiter *ratelimit.Limiter) *Client {
	c := &Client{limiter: limiter}
	if apiKey != "" {
		c.client = goopenai.NewClient(apiKey)
	}
	return c
}

// Available reports whether the client is configured and within budget.
func (c *Client) Available() bool {
	if c == nil || c.client == nil {
		return false
	}
	if c.limiter != nil && !c.limiter.Allow(ratelimit.OpenAI) {
		return false
	}
	return true
}

// Summarize produces an abstractive summary of text within the word bounds.
func (c *Client) Summarize(ctx context.Context, text string, maxWords, minWords int) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("openai client not configured")
	}
	if c.limiter != nil {
		if err := c.limiter.Use(ratelimit.OpenAI); err != nil {
			return "", err
		}
	}

	if len(text) > 6000 {
		text = text[:6000] + "..."
	}

	prompt := fmt.Sprintf(`Summarize the following news text in one paragraph of %d to %d words.
Write plain prose. Do not add labels, bullet points or introductions.

Text:
%s`, minWords, maxWords, text)

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: goopenai.GPT3Dot5Turbo,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role:    goopenai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxCompletionTokens: 512,
	})
	if err != nil {
		metrics.Global.IncrementProviderErrors()
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", errors.New("empty summary from OpenAI")
	}
	return summary, nil
}
