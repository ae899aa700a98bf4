// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server settings
	Port           string
	AllowedOrigins []string

	// News source settings
	NewsAPIKey        string
	NewsAPIBaseURL    string
	FeedsConfigPath   string
	FetchTarget       int // articles per TL;DR generation
	ArticleListTarget int // articles per /articles listing

	// AI provider settings
	GeminiAPIKey      string
	OpenAIAPIKey      string
	HuggingFaceAPIKey string
	HFModel           string
	MaxGeminiRequests int // daily budget, 0 = unlimited
	MaxOpenAIRequests int
	MaxHFRequests     int
	MaxAIRequests     int // budget across all providers

	// Pipeline settings
	MinClusterSize          int
	MaxClusters             int
	MaxSummaries            int
	SummarySentences        int // extractive sentences per cluster summary
	ArticleSummarySentences int // extractive sentences per listed article
	TrendingMinClusterSize  int
	EnrichMaxArticles       int // thin articles scraped per generation

	// Cache settings
	CacheTTL time.Duration

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		Port:                    "8000",
		NewsAPIBaseURL:          "https://newsapi.org/v2",
		FeedsConfigPath:         "config/feeds.yaml",
		FetchTarget:             100,
		ArticleListTarget:       50,
		HFModel:                 "cardiffnlp/twitter-roberta-base-sentiment-latest",
		MinClusterSize:          2,
		MaxClusters:             8,
		MaxSummaries:            5,
		SummarySentences:        2,
		ArticleSummarySentences: 3,
		TrendingMinClusterSize:  3,
		EnrichMaxArticles:       5,
		CacheTTL:                time.Hour,
		RequestTimeout:          30 * time.Second,
		RetryAttempts:           3,
		RetryDelay:              2 * time.Second,
	}

	// Load from environment
	cfg.NewsAPIKey = os.Getenv("NEWSAPI_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.HuggingFaceAPIKey = os.Getenv("HUGGINGFACE_API_KEY")

	cfg.Port = getEnvOrDefault("PORT", cfg.Port)
	cfg.NewsAPIBaseURL = getEnvOrDefault("NEWSAPI_BASE_URL", cfg.NewsAPIBaseURL)
	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.HFModel = getEnvOrDefault("HF_MODEL", cfg.HFModel)

	origins := getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:5173")
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	cfg.FetchTarget = getEnvIntOrDefault("FETCH_TARGET", cfg.FetchTarget)
	cfg.ArticleListTarget = getEnvIntOrDefault("ARTICLE_LIST_TARGET", cfg.ArticleListTarget)
	cfg.MinClusterSize = getEnvIntOrDefault("MIN_CLUSTER_SIZE", cfg.MinClusterSize)
	cfg.MaxClusters = getEnvIntOrDefault("MAX_CLUSTERS", cfg.MaxClusters)
	cfg.MaxSummaries = getEnvIntOrDefault("MAX_SUMMARIES", cfg.MaxSummaries)
	cfg.SummarySentences = getEnvIntOrDefault("SUMMARY_SENTENCES", cfg.SummarySentences)
	cfg.ArticleSummarySentences = getEnvIntOrDefault("ARTICLE_SUMMARY_SENTENCES", cfg.ArticleSummarySentences)
	cfg.TrendingMinClusterSize = getEnvIntOrDefault("TRENDING_MIN_CLUSTER_SIZE", cfg.TrendingMinClusterSize)
	cfg.EnrichMaxArticles = getEnvIntOrDefault("ENRICH_MAX_ARTICLES", cfg.EnrichMaxArticles)

	cfg.MaxGeminiRequests = getEnvIntOrDefault("MAX_GEMINI_REQUESTS", 0)
	cfg.MaxOpenAIRequests = getEnvIntOrDefault("MAX_OPENAI_REQUESTS", 0)
	cfg.MaxHFRequests = getEnvIntOrDefault("MAX_HF_REQUESTS", 0)
	cfg.MaxAIRequests = getEnvIntOrDefault("MAX_AI_REQUESTS", 0)

	cfg.CacheTTL = time.Duration(getEnvIntOrDefault("CACHE_TTL_MINUTES", 60)) * time.Minute
	cfg.RequestTimeout = time.Duration(getEnvIntOrDefault("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)
	cfg.RetryDelay = time.Duration(getEnvIntOrDefault("RETRY_DELAY_SECONDS", 2)) * time.Second

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.NewsAPIKey == "" && c.FeedsConfigPath == "" {
		return fmt.Errorf("no article source configured: set NEWSAPI_KEY or FEEDS_CONFIG_PATH")
	}
	if c.MinClusterSize < 1 {
		return fmt.Errorf("MIN_CLUSTER_SIZE must be at least 1")
	}
	if c.MaxClusters < 1 {
		return fmt.Errorf("MAX_CLUSTERS must be at least 1")
	}
	if c.MaxSummaries < 1 {
		return fmt.Errorf("MAX_SUMMARIES must be at least 1")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL_MINUTES must be positive")
	}
	return nil
}
