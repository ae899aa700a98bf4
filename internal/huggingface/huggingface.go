package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/newslens/newslens/internal/logger"
	"github.com/newslens/newslens/internal/metrics"
	"github.com/newslens/newslens/internal/ratelimit"
	"github.com/newslens/newslens/internal/retry"
)

const defaultBaseURL = "https://api-inference.huggingface.co/models/"

// Client calls the HuggingFace inference API for text classification.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	limiter    *ratelimit.Limiter
	retryCfg   retry.Config
}

type classifyRequest struct {
	Inputs string `json:"inputs"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type apiError struct {
	Error string `json:"error"`
}

// NewClient returns a client for the given classification model, or an
// unconfigured one when the key is empty.
func NewClient(apiKey, model string, limiter *ratelimit.Limiter) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		limiter:    limiter,
		retryCfg:   retry.Config{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true},
	}
}

// Available reports whether the client is configured and within budget.
func (c *Client) Available() bool {
	if c == nil || c.apiKey == "" || c.model == "" {
		return false
	}
	if c.limiter != nil && !c.limiter.Allow(ratelimit.HuggingFace) {
		return false
	}
	return true
}

// Classify runs the model on text and returns the top label with its score.
// Transient failures are retried with backoff, since the hosted model may
// still be loading on the first request.
func (c *Client) Classify(ctx context.Context, text string) (string, float64, error) {
	if c == nil || c.apiKey == "" || c.model == "" {
		return "", 0, errors.New("huggingface client not configured")
	}
	if c.limiter != nil {
		if err := c.limiter.Use(ratelimit.HuggingFace); err != nil {
			return "", 0, err
		}
	}

	var label string
	var score float64

	err := retry.WithRetry(ctx, c.retryCfg, func() error {
		var err error
		label, score, err = c.classifyOnce(ctx, text)
		return err
	})
	if err != nil {
		metrics.Global.IncrementProviderErrors()
		return "", 0, err
	}
	return label, score, nil
}

func (c *Client) classifyOnce(ctx context.Context, text string) (string, float64, error) {
	body, err := json.Marshal(classifyRequest{Inputs: text})
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.model, bytes.NewBuffer(body))
	if err != nil {
		return "", 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("inference request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Warn("failed to close response body", "error", closeErr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return "", 0, fmt.Errorf("inference API status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return "", 0, fmt.Errorf("inference API status %d", resp.StatusCode)
	}

	rows, err := parseScores(raw)
	if err != nil {
		return "", 0, err
	}

	top := rows[0]
	for _, r := range rows[1:] {
		if r.Score > top.Score {
			top = r
		}
	}
	return top.Label, top.Score, nil
}

// parseScores accepts both response shapes the API produces: a nested array
// for a single input and a flat array of label scores.
func parseScores(raw []byte) ([]labelScore, error) {
	var nested [][]labelScore
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0], nil
	}

	var flat []labelScore
	if err := json.Unmarshal(raw, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}

	return nil, fmt.Errorf("unexpected inference response: %s", truncateForLog(raw))
}

func truncateForLog(raw []byte) string {
	const max = 200
	if len(raw) <= max {
		return string(raw)
	}
	return string(raw[:max]) + "..."
}
