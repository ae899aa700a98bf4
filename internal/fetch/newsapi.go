// Package fetch retrieves news articles from the configured sources.
// The NewsAPI client is the primary source; a Composite pairs it with an
// RSS fallback so the pipeline keeps working without an API key.
package fetch

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/newslens/newslens/internal/logger"
	"github.com/newslens/newslens/internal/metrics"
	"github.com/newslens/newslens/internal/model"
	"github.com/newslens/newslens/internal/retry"
)

const (
	defaultBaseURL = "https://newsapi.org/v2"
	maxPageSize    = 100
	maxPages       = 5
)

// NewsAPI truncates content with a "[+1234 chars]" suffix.
var truncationRe = regexp.MustCompile(`\s*\[\+\d+ chars\]$`)

type headlinesResponse struct {
	Status       string         `json:"status"`
	TotalResults int            `json:"totalResults"`
	Code         string         `json:"code"`
	Message      string         `json:"message"`
	Articles     []headlineItem `json:"articles"`
}

type headlineItem struct {
	Source      headlineSource `json:"source"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	URL         string         `json:"url"`
	Content     string         `json:"content"`
}

type headlineSource struct {
	Name string `json:"name"`
}

// Client fetches top headlines from NewsAPI.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	country    string
	retryCfg   retry.Config
}

// Options tunes the NewsAPI client. Zero values keep the defaults.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Retry   retry.Config
}

// NewClient returns a NewsAPI client. An empty apiKey leaves the client
// unavailable.
func NewClient(apiKey string, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Retry.MaxAttempts < 1 {
		opts.Retry = retry.Config{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true}
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		country:    "us",
		retryCfg:   opts.Retry,
	}
}

func (c *Client) Name() string { return "newsapi" }

// Available reports whether an API key is configured.
func (c *Client) Available() bool {
	return c != nil && c.apiKey != ""
}

// Fetch collects up to target deduplicated headlines for a category.
// Categories "" and "all" mean no category filter; other values pass
// through to the API unchanged. Pages after the first that fail keep
// what was already collected.
func (c *Client) Fetch(ctx context.Context, category string, target int) ([]model.Article, error) {
	if !c.Available() {
		return nil, errors.New("newsapi key not configured")
	}
	if target < 1 {
		target = maxPageSize
	}

	size := maxPageSize
	if target < size {
		size = target
	}

	var articles []model.Article
	seen := make(map[string]struct{})
	dropped := 0

	for page := 1; len(articles) < target && page <= maxPages; page++ {
		batch, err := c.fetchPage(ctx, category, page, size)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			logger.Warn("Headline page fetch failed, keeping earlier pages", "page", page, "error", err)
			break
		}
		if len(batch) == 0 {
			break
		}

		for _, a := range batch {
			key := dedupKey(a)
			if _, dup := seen[key]; dup {
				dropped++
				continue
			}
			seen[key] = struct{}{}
			articles = append(articles, a)
			if len(articles) >= target {
				break
			}
		}

		if len(batch) < size {
			break
		}
	}

	if dropped > 0 {
		metrics.Global.AddDuplicatesFiltered(dropped)
		logger.Debug("Duplicate headlines dropped", "category", category, "count", dropped)
	}
	metrics.Global.AddArticlesFetched(len(articles))
	return articles, nil
}

func (c *Client) fetchPage(ctx context.Context, category string, page, size int) ([]model.Article, error) {
	q := url.Values{}
	q.Set("country", c.country)
	q.Set("pageSize", strconv.Itoa(size))
	q.Set("page", strconv.Itoa(page))
	if category != "" && category != "all" {
		q.Set("category", category)
	}
	endpoint := c.baseURL + "/top-headlines?" + q.Encode()

	var out []model.Article
	err := retry.WithRetry(ctx, c.retryCfg, func() error {
		batch, err := c.doRequest(ctx, endpoint)
		if err != nil {
			return err
		}
		out = batch
		return nil
	})
	return out, err
}

func (c *Client) doRequest(ctx context.Context, endpoint string) ([]model.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build newsapi request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call newsapi: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn("Failed to close newsapi response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read newsapi response: %w", err)
	}

	var parsed headlinesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode newsapi response: %w", err)
	}
	if parsed.Status != "ok" {
		if parsed.Message != "" {
			return nil, fmt.Errorf("newsapi error: %s (%s)", parsed.Message, parsed.Code)
		}
		return nil, fmt.Errorf("newsapi returned status %d", resp.StatusCode)
	}

	articles := make([]model.Article, 0, len(parsed.Articles))
	for _, item := range parsed.Articles {
		articles = append(articles, model.Article{
			Title:   item.Title,
			URL:     item.URL,
			Source:  item.Source.Name,
			Content: articleContent(item),
		})
	}
	return articles, nil
}

// articleContent prefers full content over the description and strips
// the truncation suffix.
func articleContent(item headlineItem) string {
	content := strings.TrimSpace(item.Content)
	if content == "" {
		content = strings.TrimSpace(item.Description)
	}
	return truncationRe.ReplaceAllString(content, "")
}

// dedupKey collapses case so the same headline from one outlet counts
// once regardless of feed casing.
func dedupKey(a model.Article) string {
	h := sha1.New()
	h.Write([]byte(strings.ToLower(a.Title + "|" + a.Source)))
	return hex.EncodeToString(h.Sum(nil))
}
