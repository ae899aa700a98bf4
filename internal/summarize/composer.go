// Package summarize turns article clusters into short TL;DR digests.
// An abstractive provider is used when one is configured and has budget
// left; everything else falls back to extractive summarization, so the
// package always produces output without network access.
package summarize

import (
	"context"
	"sort"
	"strings"

	"github.com/newslens/newslens/internal/logger"
	"github.com/newslens/newslens/internal/model"
	"github.com/newslens/newslens/internal/textutil"
)

// Method selects how a cluster is condensed into a summary.
type Method string

const (
	// Extractive picks representative sentences from the source text.
	Extractive Method = "extractive"
	// Abstractive asks the configured provider to write a new summary.
	Abstractive Method = "abstractive"
	// Hybrid prefers abstractive and degrades to extractive.
	Hybrid Method = "hybrid"
)

// Word bounds passed to the abstractive provider.
const (
	clusterMaxWords = 80
	clusterMinWords = 20
	singleMaxWords  = 50
	singleMinWords  = 10
)

// Input to the abstractive provider is capped at this many words.
const providerInputWords = 500

// Provider generates abstractive summaries, typically backed by an LLM.
type Provider interface {
	Available() bool
	Summarize(ctx context.Context, text string, maxWords, minWords int) (string, error)
}

// Composer produces cluster and category summaries.
type Composer struct {
	provider  Provider
	sentences int
}

// NewComposer returns a Composer that keeps at most sentences sentences
// per extractive summary. A nil provider disables abstractive output.
func NewComposer(provider Provider, sentences int) *Composer {
	if sentences < 1 {
		sentences = 2
	}
	return &Composer{provider: provider, sentences: sentences}
}

// SummarizeCluster condenses one cluster into a short digest. It never
// fails outright: an empty cluster yields a fixed message, a single
// article degrades to its title, and provider errors fall back to the
// extractive path.
func (c *Composer) SummarizeCluster(ctx context.Context, cluster model.Cluster, method Method) string {
	articles := cluster.Articles
	if len(articles) == 0 {
		return "No articles to summarize"
	}
	if len(articles) == 1 {
		return c.summarizeSingleArticle(ctx, articles[0])
	}

	combined := combineClusterText(articles)

	switch {
	case method == Extractive:
		return extractiveSummary(combined, c.sentences)
	case method == Abstractive && c.providerAvailable():
		return c.abstractiveSummary(ctx, combined)
	default:
		return c.hybridSummary(ctx, combined)
	}
}

// SummarizeText produces a standalone extractive summary of free text,
// used for per-article summaries outside the cluster pipeline.
func (c *Composer) SummarizeText(text string, sentences int) string {
	if sentences < 1 {
		sentences = c.sentences
	}
	return extractiveSummary(text, sentences)
}

// ComposeCategoryTLDR summarizes the largest clusters of a category.
// Clusters are taken in descending size order, at most maxSummaries of
// them; a cluster whose summary comes back empty is skipped, and ranks
// are assigned densely over the summaries actually produced. Totals
// count every cluster, including the ones not summarized.
func (c *Composer) ComposeCategoryTLDR(ctx context.Context, clusters []model.Cluster, category string, maxSummaries int) model.TLDRResult {
	sorted := make([]model.Cluster, len(clusters))
	copy(sorted, clusters)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Size > sorted[j].Size })

	top := sorted
	if maxSummaries > 0 && len(top) > maxSummaries {
		top = top[:maxSummaries]
	}

	var summaries []model.ClusterSummary
	for _, cl := range top {
		text := c.SummarizeCluster(ctx, cl, Hybrid)
		if text == "" {
			logger.Warn("Skipping cluster with empty summary", "category", category, "cluster_id", cl.ClusterID)
			continue
		}
		entities := cl.KeyEntities
		if len(entities) > 3 {
			entities = entities[:3]
		}
		summaries = append(summaries, model.ClusterSummary{
			Rank:         len(summaries) + 1,
			Summary:      text,
			ArticleCount: cl.Size,
			KeyEntities:  entities,
		})
	}

	totalArticles := 0
	for _, cl := range clusters {
		totalArticles += cl.Size
	}

	return model.TLDRResult{
		Category:      category,
		TotalClusters: len(clusters),
		TotalArticles: totalArticles,
		Summaries:     summaries,
	}
}

func (c *Composer) providerAvailable() bool {
	return c.provider != nil && c.provider.Available()
}

func (c *Composer) summarizeSingleArticle(ctx context.Context, article model.Article) string {
	if article.Content == "" {
		return article.Title
	}
	if textutil.WordCount(article.Content) < 20 {
		return article.Title
	}

	if c.providerAvailable() {
		summary, err := c.provider.Summarize(ctx, article.Content, singleMaxWords, singleMinWords)
		if err != nil {
			logger.Error("Single-article summary failed", "error", err)
			return article.Title
		}
		return cleanSummaryText(summary)
	}
	return cleanSummaryText(extractiveSummary(article.Content, 1))
}

// combineClusterText concatenates the cluster's titles and substantial
// content snippets into one text. Content under 10 words is dropped as
// too thin to summarize; longer content is cut at 100 words.
func combineClusterText(articles []model.Article) string {
	var parts []string
	for _, a := range articles {
		if a.Title != "" {
			parts = append(parts, a.Title)
		}
		if a.Content != "" && textutil.WordCount(a.Content) > 10 {
			content, cut := textutil.TruncateWords(a.Content, 100)
			if cut {
				content += "..."
			}
			parts = append(parts, content)
		}
	}
	return strings.Join(parts, " ")
}

func (c *Composer) abstractiveSummary(ctx context.Context, text string) string {
	if !c.providerAvailable() {
		return extractiveSummary(text, c.sentences)
	}

	cleaned := cleanText(text)
	cleaned, _ = textutil.TruncateWords(cleaned, providerInputWords)

	summary, err := c.provider.Summarize(ctx, cleaned, clusterMaxWords, clusterMinWords)
	if err != nil {
		logger.Error("Abstractive summary failed, using extractive", "error", err)
		return extractiveSummary(cleaned, c.sentences)
	}
	return cleanSummaryText(summary)
}

func (c *Composer) hybridSummary(ctx context.Context, text string) string {
	if c.providerAvailable() {
		return c.abstractiveSummary(ctx, text)
	}
	return extractiveSummary(text, c.sentences)
}
