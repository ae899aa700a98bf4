package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/newslens/newslens/internal/bias"
	"github.com/newslens/newslens/internal/cache"
	"github.com/newslens/newslens/internal/cluster"
	"github.com/newslens/newslens/internal/config"
	"github.com/newslens/newslens/internal/fetch"
	"github.com/newslens/newslens/internal/gemini"
	"github.com/newslens/newslens/internal/huggingface"
	"github.com/newslens/newslens/internal/logger"
	"github.com/newslens/newslens/internal/openai"
	"github.com/newslens/newslens/internal/ratelimit"
	"github.com/newslens/newslens/internal/rest"
	"github.com/newslens/newslens/internal/retry"
	"github.com/newslens/newslens/internal/rss"
	"github.com/newslens/newslens/internal/scraper"
	"github.com/newslens/newslens/internal/summarize"
	"github.com/newslens/newslens/internal/tldr"
)

func main() {
	// .env is optional; deployments set the environment directly.
	_ = godotenv.Load()

	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.Info("Configuration loaded",
		"port", cfg.Port,
		"cache_ttl", cfg.CacheTTL,
		"fetch_target", cfg.FetchTarget)

	limiter := ratelimit.New(map[string]int{
		ratelimit.Gemini:      cfg.MaxGeminiRequests,
		ratelimit.OpenAI:      cfg.MaxOpenAIRequests,
		ratelimit.HuggingFace: cfg.MaxHFRequests,
	}, cfg.MaxAIRequests)

	var (
		embedder cluster.Embedder
		provider summarize.Provider
	)
	if cfg.GeminiAPIKey != "" {
		gc, err := gemini.NewClient(cfg.GeminiAPIKey, limiter)
		if err != nil {
			logger.Error("Gemini client failed to initialize, continuing without it", "error", err)
		} else {
			defer gc.Close()
			embedder = gc
			provider = gc
			logger.Info("Gemini client initialized")
		}
	}
	if provider == nil && cfg.OpenAIAPIKey != "" {
		provider = openai.NewClient(cfg.OpenAIAPIKey, limiter)
		logger.Info("OpenAI summarizer initialized")
	}
	if provider == nil {
		logger.Warn("No abstractive provider configured, summaries will be extractive")
	}

	var classifier bias.Classifier
	if cfg.HuggingFaceAPIKey != "" {
		classifier = huggingface.NewClient(cfg.HuggingFaceAPIKey, cfg.HFModel, limiter)
		logger.Info("HuggingFace classifier initialized", "model", cfg.HFModel)
	}

	newsapi := fetch.NewClient(cfg.NewsAPIKey, fetch.Options{
		BaseURL: cfg.NewsAPIBaseURL,
		Timeout: cfg.RequestTimeout,
		Retry:   retry.Config{MaxAttempts: cfg.RetryAttempts, Delay: cfg.RetryDelay, Backoff: true},
	})

	var feeds *rss.Source
	if cfg.FeedsConfigPath != "" {
		feeds, err = rss.Load(cfg.FeedsConfigPath)
		if err != nil {
			logger.Warn("Feeds config not loaded, RSS fallback disabled",
				"path", cfg.FeedsConfigPath, "error", err)
		}
	}

	source := fetch.NewComposite(newsapi, feeds)
	if !source.Available() {
		logger.Error("No article source configured: set NEWSAPI_KEY or provide a feeds file")
		os.Exit(1)
	}

	clusterer := cluster.New(embedder)
	composer := summarize.NewComposer(provider, cfg.SummarySentences)
	scorer := bias.NewScorer(classifier)
	enricher := scraper.New(cfg.RequestTimeout)

	pipeline := tldr.New(source, clusterer, composer, enricher, cache.New(cfg.CacheTTL), tldr.Options{
		FetchTarget:    cfg.FetchTarget,
		MinClusterSize: cfg.MinClusterSize,
		MaxClusters:    cfg.MaxClusters,
		MaxSummaries:   cfg.MaxSummaries,
		EnrichMax:      cfg.EnrichMaxArticles,
	})

	handler := rest.NewHandler(pipeline, source, composer, scorer, rest.Options{
		ListTarget:       cfg.ArticleListTarget,
		SummarySentences: cfg.ArticleSummarySentences,
		TrendingMinSize:  cfg.TrendingMinClusterSize,
	})
	e := rest.NewServer(handler, cfg.AllowedOrigins)

	go func() {
		logger.Info("Starting newslens server", "address", ":"+cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("Server exited")
}
