// Package rest exposes the news pipeline over an echo JSON API. All
// handlers answer 200 with an error field on failure, the contract the
// existing front-end expects.
package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/newslens/newslens/internal/bias"
	"github.com/newslens/newslens/internal/cache"
	"github.com/newslens/newslens/internal/fetch"
	"github.com/newslens/newslens/internal/logger"
	"github.com/newslens/newslens/internal/metrics"
	"github.com/newslens/newslens/internal/model"
)

const (
	serviceName    = "newslens-api"
	serviceVersion = "1.0.0"

	defaultListTarget       = 50
	defaultSummarySentences = 3
	defaultTrendingMinSize  = 3
)

// Pipeline is the TL;DR surface the handlers call.
type Pipeline interface {
	CategoryTLDR(ctx context.Context, category string, forceRefresh bool) model.TLDRResult
	AllCategories(ctx context.Context, categories []string, forceRefresh bool) model.AllCategoriesResult
	TrendingTopics(ctx context.Context, category string, minClusterSize int) []model.TrendingTopic
	ClearCache()
	CacheStats() cache.Stats
}

// Summarizer produces the short per-article summaries on the list
// endpoints.
type Summarizer interface {
	SummarizeText(text string, sentences int) string
}

// Analyzer scores article bias.
type Analyzer interface {
	Analyze(ctx context.Context, title, content string) bias.Result
}

type Options struct {
	ListTarget       int
	SummarySentences int
	TrendingMinSize  int
}

type Handler struct {
	pipeline   Pipeline
	source     fetch.Source
	summarizer Summarizer
	analyzer   Analyzer
	opts       Options
}

func NewHandler(pipeline Pipeline, source fetch.Source, summarizer Summarizer, analyzer Analyzer, opts Options) *Handler {
	if opts.ListTarget <= 0 {
		opts.ListTarget = defaultListTarget
	}
	if opts.SummarySentences <= 0 {
		opts.SummarySentences = defaultSummarySentences
	}
	if opts.TrendingMinSize <= 0 {
		opts.TrendingMinSize = defaultTrendingMinSize
	}
	return &Handler{
		pipeline:   pipeline,
		source:     source,
		summarizer: summarizer,
		analyzer:   analyzer,
		opts:       opts,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type articleView struct {
	Title   string       `json:"title"`
	Source  string       `json:"source"`
	Summary string       `json:"summary"`
	URL     string       `json:"url"`
	Bias    *bias.Result `json:"bias_analysis,omitempty"`
}

type balancedRequest struct {
	Category      string       `json:"category"`
	TargetBalance bias.Balance `json:"target_balance"`
}

type balanceInfo struct {
	TotalAnalyzed int          `json:"total_analyzed"`
	Selected      int          `json:"selected"`
	TargetBalance bias.Balance `json:"target_balance"`
}

type balancedResponse struct {
	Articles    []articleView `json:"articles"`
	BalanceInfo balanceInfo   `json:"balance_info"`
}

type biasStatsResponse struct {
	Category         string         `json:"category"`
	BiasDistribution map[string]int `json:"bias_distribution"`
	TotalAnalyzed    int            `json:"total_analyzed"`
}

type trendingResponse struct {
	Category       string                `json:"category"`
	TrendingTopics []model.TrendingTopic `json:"trending_topics"`
	Count          int                   `json:"count"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
}

// Articles lists recent articles for a category with a short extractive
// summary each, plus a bias block unless include_bias=false. Unknown
// categories pass through to the news API unchanged.
func (h *Handler) Articles(c echo.Context) error {
	ctx := c.Request().Context()
	category := queryOr(c, "category", "all")
	includeBias := boolParam(c.QueryParam("include_bias"), true)

	articles, err := h.source.Fetch(ctx, category, h.opts.ListTarget)
	if err != nil {
		logger.Error("Article list fetch failed", "category", category, "error", err)
		return c.JSON(http.StatusOK, errorResponse{Error: err.Error()})
	}

	views := make([]articleView, 0, len(articles))
	for _, a := range articles {
		view := articleView{
			Title:   a.Title,
			Source:  a.Source,
			Summary: h.summarizer.SummarizeText(a.Content, h.opts.SummarySentences),
			URL:     a.URL,
		}
		if includeBias {
			result := h.analyzer.Analyze(ctx, a.Title, a.Content)
			view.Bias = &result
		}
		views = append(views, view)
	}
	return c.JSON(http.StatusOK, views)
}

// BalancedArticles analyzes a category and returns a mix of leanings
// per the requested target balance.
func (h *Handler) BalancedArticles(c echo.Context) error {
	ctx := c.Request().Context()

	var req balancedRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, errorResponse{Error: "invalid request body"})
	}
	category := req.Category
	if category == "" {
		category = "all"
	}

	articles, err := h.source.Fetch(ctx, category, h.opts.ListTarget)
	if err != nil {
		logger.Error("Balanced fetch failed", "category", category, "error", err)
		return c.JSON(http.StatusOK, errorResponse{Error: err.Error()})
	}

	scored := make([]bias.ScoredArticle, 0, len(articles))
	for _, a := range articles {
		scored = append(scored, bias.ScoredArticle{
			Article: a,
			Bias:    h.analyzer.Analyze(ctx, a.Title, a.Content),
		})
	}

	targets := req.TargetBalance
	if targets == (bias.Balance{}) {
		targets = bias.DefaultBalance
	}
	selected := bias.BalancedArticles(scored, targets)

	views := make([]articleView, 0, len(selected))
	for _, s := range selected {
		result := s.Bias
		views = append(views, articleView{
			Title:   s.Article.Title,
			Source:  s.Article.Source,
			Summary: h.summarizer.SummarizeText(s.Article.Content, h.opts.SummarySentences),
			URL:     s.Article.URL,
			Bias:    &result,
		})
	}

	return c.JSON(http.StatusOK, balancedResponse{
		Articles: views,
		BalanceInfo: balanceInfo{
			TotalAnalyzed: len(scored),
			Selected:      len(views),
			TargetBalance: targets,
		},
	})
}

// BiasStats reports how a category's articles split across leanings.
func (h *Handler) BiasStats(c echo.Context) error {
	ctx := c.Request().Context()
	category := queryOr(c, "category", "all")

	articles, err := h.source.Fetch(ctx, category, h.opts.ListTarget)
	if err != nil {
		logger.Error("Bias stats fetch failed", "category", category, "error", err)
		return c.JSON(http.StatusOK, errorResponse{Error: err.Error()})
	}

	distribution := map[string]int{"left-leaning": 0, "neutral": 0, "right-leaning": 0}
	for _, a := range articles {
		result := h.analyzer.Analyze(ctx, a.Title, a.Content)
		if _, ok := distribution[result.BiasCategory]; ok {
			distribution[result.BiasCategory]++
		}
	}

	total := 0
	for _, n := range distribution {
		total += n
	}
	return c.JSON(http.StatusOK, biasStatsResponse{
		Category:         category,
		BiasDistribution: distribution,
		TotalAnalyzed:    total,
	})
}

// CategoryTLDR serves the digest for one category.
func (h *Handler) CategoryTLDR(c echo.Context) error {
	category := c.Param("category")
	force := boolParam(c.QueryParam("force_refresh"), false)
	return c.JSON(http.StatusOK, h.pipeline.CategoryTLDR(c.Request().Context(), category, force))
}

// AllCategories serves digests for the default category list.
func (h *Handler) AllCategories(c echo.Context) error {
	force := boolParam(c.QueryParam("force_refresh"), false)
	return c.JSON(http.StatusOK, h.pipeline.AllCategories(c.Request().Context(), nil, force))
}

// TrendingTopics serves the category's biggest story clusters.
func (h *Handler) TrendingTopics(c echo.Context) error {
	category := c.Param("category")
	minSize := intParam(c.QueryParam("min_cluster_size"), h.opts.TrendingMinSize)

	topics := h.pipeline.TrendingTopics(c.Request().Context(), category, minSize)
	return c.JSON(http.StatusOK, trendingResponse{
		Category:       category,
		TrendingTopics: topics,
		Count:          len(topics),
	})
}

func (h *Handler) ClearCache(c echo.Context) error {
	h.pipeline.ClearCache()
	return c.JSON(http.StatusOK, messageResponse{Message: "TLDR cache cleared"})
}

func (h *Handler) CacheStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.pipeline.CacheStats())
}

func (h *Handler) Health(c echo.Context) error {
	status := "healthy"
	if stats := metrics.Global.GetStats(); stats["is_healthy"] == false {
		status = "degraded"
	}
	return c.JSON(http.StatusOK, healthResponse{
		Status:    status,
		Timestamp: time.Now().Format(time.RFC3339),
		Service:   serviceName,
		Version:   serviceVersion,
	})
}

func (h *Handler) Metrics(c echo.Context) error {
	return c.JSON(http.StatusOK, metrics.Global.GetStats())
}

func queryOr(c echo.Context, name, fallback string) string {
	if value := c.QueryParam(name); value != "" {
		return value
	}
	return fallback
}

func boolParam(value string, fallback bool) bool {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func intParam(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
