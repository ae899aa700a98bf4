// Package tldr orchestrates the category digest pipeline: fetch,
// optional enrichment, clustering, and summary composition behind a
// time-boxed cache.
package tldr

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/newslens/newslens/internal/cache"
	"github.com/newslens/newslens/internal/fetch"
	"github.com/newslens/newslens/internal/logger"
	"github.com/newslens/newslens/internal/metrics"
	"github.com/newslens/newslens/internal/model"
)

// DefaultCategories is the category list AllCategories walks when the
// caller does not name its own.
var DefaultCategories = []string{"all", "business", "technology", "health", "science", "sports", "entertainment"}

const (
	cacheKeyPrefix         = "tldr_"
	dateLayout             = "2006-01-02"
	defaultTrendingMinSize = 3
)

// Clusterer groups fetched articles by topic.
type Clusterer interface {
	Cluster(ctx context.Context, articles []model.Article, minClusterSize, maxClusters int) []model.Cluster
}

// Composer turns clusters into a ranked category digest.
type Composer interface {
	ComposeCategoryTLDR(ctx context.Context, clusters []model.Cluster, category string, maxSummaries int) model.TLDRResult
}

// Enricher fills in thin article content before clustering. A nil
// Enricher skips the step.
type Enricher interface {
	EnrichArticles(ctx context.Context, articles []model.Article, max int) int
}

type Options struct {
	FetchTarget    int
	MinClusterSize int
	MaxClusters    int
	MaxSummaries   int
	EnrichMax      int
}

type Pipeline struct {
	source    fetch.Source
	clusterer Clusterer
	composer  Composer
	enricher  Enricher
	cache     *cache.Cache
	opts      Options
	group     singleflight.Group
	now       func() time.Time
}

func New(source fetch.Source, clusterer Clusterer, composer Composer, enricher Enricher, c *cache.Cache, opts Options) *Pipeline {
	if opts.FetchTarget <= 0 {
		opts.FetchTarget = 100
	}
	if opts.MinClusterSize <= 0 {
		opts.MinClusterSize = 2
	}
	if opts.MaxClusters <= 0 {
		opts.MaxClusters = 8
	}
	if opts.MaxSummaries <= 0 {
		opts.MaxSummaries = 5
	}
	return &Pipeline{
		source:    source,
		clusterer: clusterer,
		composer:  composer,
		enricher:  enricher,
		cache:     c,
		opts:      opts,
		now:       time.Now,
	}
}

// CategoryTLDR returns the digest for one category. A fresh cached
// value is returned unchanged; otherwise the digest is regenerated.
// Cache keys are case-sensitive, so "all" and "All" live apart.
// Failures come back as zero-valued results with the Error note set.
func (p *Pipeline) CategoryTLDR(ctx context.Context, category string, forceRefresh bool) model.TLDRResult {
	key := cacheKeyPrefix + category

	if forceRefresh {
		metrics.Global.IncrementCacheMisses()
		return p.generate(ctx, category)
	}

	if cached, ok := p.cache.Get(key); ok {
		if result, ok := cached.(model.TLDRResult); ok {
			metrics.Global.IncrementCacheHits()
			logger.Debug("TLDR cache hit", "category", category)
			return result
		}
	}
	metrics.Global.IncrementCacheMisses()

	// Concurrent misses for the same category share one generation.
	v, _, _ := p.group.Do(key, func() (interface{}, error) {
		if cached, ok := p.cache.Get(key); ok {
			return cached, nil
		}
		return p.generate(ctx, category), nil
	})
	result, _ := v.(model.TLDRResult)
	return result
}

// AllCategories builds digests for every category in the list, keeping
// per-category failures isolated as error entries. A nil or empty list
// means DefaultCategories.
func (p *Pipeline) AllCategories(ctx context.Context, categories []string, forceRefresh bool) model.AllCategoriesResult {
	if len(categories) == 0 {
		categories = DefaultCategories
	}

	now := p.now()
	result := model.AllCategoriesResult{
		Date:        now.Format(dateLayout),
		GeneratedAt: now.Format(time.RFC3339),
		Categories:  make(map[string]model.TLDRResult, len(categories)),
	}

	for _, category := range categories {
		digest := p.CategoryTLDR(ctx, category, forceRefresh)
		result.Categories[category] = digest
		result.TotalArticles += digest.TotalArticles
		result.TotalClusters += digest.TotalClusters
	}
	result.TotalCategories = len(result.Categories)
	return result
}

// TrendingTopics regenerates the category digest and returns its big
// clusters as ranked topics. minClusterSize <= 0 means 3. Any failure
// yields an empty list.
func (p *Pipeline) TrendingTopics(ctx context.Context, category string, minClusterSize int) []model.TrendingTopic {
	if minClusterSize <= 0 {
		minClusterSize = defaultTrendingMinSize
	}

	digest := p.CategoryTLDR(ctx, category, true)
	topics := make([]model.TrendingTopic, 0, len(digest.Summaries))
	if digest.Error != "" {
		logger.Warn("Trending topics unavailable", "category", category, "error", digest.Error)
		return topics
	}

	for _, s := range digest.Summaries {
		if s.ArticleCount < minClusterSize {
			continue
		}
		topics = append(topics, model.TrendingTopic{
			Topic:        s.Summary,
			ArticleCount: s.ArticleCount,
			KeyEntities:  s.KeyEntities,
		})
	}

	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].ArticleCount > topics[j].ArticleCount
	})
	for i := range topics {
		topics[i].Rank = i + 1
	}
	return topics
}

// ClearCache drops every cached digest, fresh or stale.
func (p *Pipeline) ClearCache() {
	p.cache.Clear()
	logger.Info("TLDR cache cleared")
}

// CacheStats reports entry counts partitioned by freshness.
func (p *Pipeline) CacheStats() cache.Stats {
	return p.cache.Stats()
}

func (p *Pipeline) generate(ctx context.Context, category string) model.TLDRResult {
	start := time.Now()
	logger.Info("Generating TLDR", "category", category)

	articles, err := p.source.Fetch(ctx, category, p.opts.FetchTarget)
	if err != nil {
		logger.Error("Article fetch failed", "category", category, "error", err)
		metrics.Global.SetError(err.Error())
		return model.TLDRResult{Category: category, Error: err.Error()}
	}
	if len(articles) == 0 {
		// Not cached, so the next request gets another chance.
		logger.Warn("No articles found", "category", category)
		return model.TLDRResult{Category: category, Error: "No articles found"}
	}

	if p.enricher != nil && p.opts.EnrichMax > 0 {
		p.enricher.EnrichArticles(ctx, articles, p.opts.EnrichMax)
	}

	clusters := p.clusterer.Cluster(ctx, articles, p.opts.MinClusterSize, p.opts.MaxClusters)
	metrics.Global.AddClustersFormed(len(clusters))

	result := p.composer.ComposeCategoryTLDR(ctx, clusters, category, p.opts.MaxSummaries)
	metrics.Global.AddSummariesProduced(len(result.Summaries))

	now := p.now()
	result.Date = now.Format(dateLayout)
	result.GeneratedAt = now.Format(time.RFC3339)

	p.cache.Set(cacheKeyPrefix+category, result)

	metrics.Global.IncrementTLDRsGenerated()
	metrics.Global.RecordPipelineTime(time.Since(start))
	metrics.Global.SetLastRun()
	logger.Info("TLDR generated", "category", category,
		"articles", result.TotalArticles, "clusters", result.TotalClusters,
		"summaries", len(result.Summaries), "took", time.Since(start))
	return result
}
