// Package model holds the shared data types passed between the fetch,
// clustering, summarization and HTTP layers.
package model

// Article is a single news item as returned by a source.
// Immutable once fetched; lives only for the duration of a request.
type Article struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Source  string `json:"source"`
	Content string `json:"content,omitempty"`
}

// Cluster groups topically similar articles.
// Size always equals len(Articles); clusters are read-only after creation.
type Cluster struct {
	ClusterID   int       `json:"cluster_id"`
	Articles    []Article `json:"articles"`
	Summary     string    `json:"summary"`
	KeyEntities []string  `json:"key_entities"`
	Size        int       `json:"size"`
}

// ClusterSummary is one ranked entry in a category TL;DR.
type ClusterSummary struct {
	Rank         int      `json:"rank"`
	Summary      string   `json:"summary"`
	ArticleCount int      `json:"article_count"`
	KeyEntities  []string `json:"key_entities"`
}

// TLDRResult is the per-category digest served to clients.
// Summaries are sorted by ArticleCount descending and ranks are dense,
// starting at 1. Error is set only on degraded results.
type TLDRResult struct {
	Category      string           `json:"category"`
	Date          string           `json:"date"`
	TotalClusters int              `json:"total_clusters"`
	TotalArticles int              `json:"total_articles"`
	Summaries     []ClusterSummary `json:"summaries"`
	GeneratedAt   string           `json:"generated_at,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// AllCategoriesResult aggregates TL;DRs over a category list.
type AllCategoriesResult struct {
	Date            string                `json:"date"`
	GeneratedAt     string                `json:"generated_at"`
	TotalCategories int                   `json:"total_categories"`
	TotalArticles   int                   `json:"total_articles"`
	TotalClusters   int                   `json:"total_clusters"`
	Categories      map[string]TLDRResult `json:"categories"`
}

// TrendingTopic is one entry of the trending-topics view.
type TrendingTopic struct {
	Topic        string   `json:"topic"`
	ArticleCount int      `json:"article_count"`
	KeyEntities  []string `json:"key_entities"`
	Rank         int      `json:"rank"`
}
