package cluster

import (
	"context"
	"sort"
	"strings"

	"github.com/newslens/newslens/internal/entity"
	"github.com/newslens/newslens/internal/logger"
	"github.com/newslens/newslens/internal/model"
	"github.com/newslens/newslens/internal/textutil"
)

// dbscanEps is the cosine-distance threshold for two articles to count as
// neighbors.
const dbscanEps = 0.3

// Embedder turns article texts into vectors for density clustering.
type Embedder interface {
	Available() bool
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
}

// Clusterer groups articles covering the same story. With a working embedder
// it runs density clustering over embeddings; without one it falls back to
// keyword grouping. It never fails: any internal error degrades the call to
// a single cluster holding every article.
type Clusterer struct {
	embedder Embedder
}

func New(embedder Embedder) *Clusterer {
	return &Clusterer{embedder: embedder}
}

// Cluster groups articles by topic similarity. Clusters come back sorted by
// size, largest first, with contiguous IDs starting at zero.
func (c *Clusterer) Cluster(ctx context.Context, articles []model.Article, minClusterSize, maxClusters int) []model.Cluster {
	if len(articles) < minClusterSize {
		return []model.Cluster{newCluster(0, articles)}
	}

	if c.embedder == nil || !c.embedder.Available() {
		logger.Info("embedder unavailable, using keyword clustering", "articles", len(articles))
		return fallbackClustering(articles, minClusterSize, maxClusters)
	}

	texts := make([]string, len(articles))
	for i, a := range articles {
		texts[i] = a.Title + " " + a.Content
	}

	vectors, err := c.embedder.EmbedTexts(ctx, texts)
	if err != nil || len(vectors) != len(articles) {
		logger.Error("embedding failed, degrading to a single cluster", "error", err)
		return []model.Cluster{newCluster(0, articles)}
	}

	labels := dbscan(vectors, dbscanEps, minClusterSize)
	reassignNoise(vectors, labels)

	clusters := collectClusters(articles, labels, minClusterSize)
	sortAndNumber(clusters)
	if len(clusters) > maxClusters {
		clusters = clusters[:maxClusters]
	}

	logger.Info("clustered articles", "articles", len(articles), "clusters", len(clusters))
	return clusters
}

// collectClusters groups articles by label and drops clusters that stayed
// below the minimum size. Unassigned noise is excluded.
func collectClusters(articles []model.Article, labels []int, minClusterSize int) []model.Cluster {
	clusterCount := 0
	for _, l := range labels {
		if l+1 > clusterCount {
			clusterCount = l + 1
		}
	}

	groups := make([][]model.Article, clusterCount)
	for i, l := range labels {
		if l == noiseLabel {
			continue
		}
		groups[l] = append(groups[l], articles[i])
	}

	var clusters []model.Cluster
	for _, group := range groups {
		if len(group) < minClusterSize {
			continue
		}
		clusters = append(clusters, newCluster(0, group))
	}
	return clusters
}

// fallbackClustering groups articles by their dominant keywords. An article
// joins the first existing group keyed by one of its top three keywords,
// otherwise it opens a new group under its top keyword.
func fallbackClustering(articles []model.Article, minClusterSize, maxClusters int) []model.Cluster {
	groups := make(map[string][]model.Article)
	var keys []string

	for _, a := range articles {
		keywords := topKeywords(a.Title+" "+a.Content, 5)

		assigned := false
		for _, kw := range keywords[:min(3, len(keywords))] {
			if _, ok := groups[kw]; ok {
				groups[kw] = append(groups[kw], a)
				assigned = true
				break
			}
		}
		if !assigned && len(keywords) > 0 {
			groups[keywords[0]] = []model.Article{a}
			keys = append(keys, keywords[0])
		}
	}

	var clusters []model.Cluster
	for _, key := range keys {
		group := groups[key]
		if len(group) < minClusterSize {
			continue
		}
		clusters = append(clusters, newCluster(0, group))
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Size > clusters[j].Size
	})
	if len(clusters) > maxClusters {
		clusters = clusters[:maxClusters]
	}
	for i := range clusters {
		clusters[i].ClusterID = i
	}
	return clusters
}

func sortAndNumber(clusters []model.Cluster) {
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Size > clusters[j].Size
	})
	for i := range clusters {
		clusters[i].ClusterID = i
	}
}

func newCluster(id int, articles []model.Article) model.Cluster {
	return model.Cluster{
		ClusterID:   id,
		Articles:    articles,
		Summary:     clusterSummary(articles),
		KeyEntities: entity.ClusterEntities(articles),
		Size:        len(articles),
	}
}

// clusterSummary builds the short label for a cluster from its most
// descriptive title plus the words the titles share.
func clusterSummary(articles []model.Article) string {
	if len(articles) == 0 {
		return "No articles in cluster"
	}

	if len(articles) == 1 {
		if articles[0].Title == "" {
			return "No title available"
		}
		return articles[0].Title
	}

	var titles []string
	for _, a := range articles {
		if a.Title != "" {
			titles = append(titles, a.Title)
		}
	}
	if len(titles) == 0 {
		return "Multiple related articles"
	}

	mainTitle := titles[0]
	for _, t := range titles[1:] {
		if len(t) > len(mainTitle) {
			mainTitle = t
		}
	}

	common := commonThemeWords(titles)
	if len(common) > 0 {
		return mainTitle + " (Related to: " + strings.Join(common[:min(3, len(common))], ", ") + ")"
	}
	return mainTitle
}

// commonThemeWords finds words repeated across titles, keeping the ten most
// frequent before the stop-word filter.
func commonThemeWords(titles []string) []string {
	if len(titles) < 2 {
		return nil
	}

	counts := make(map[string]int)
	var order []string
	for _, title := range titles {
		for _, w := range textutil.Words(title, 3) {
			if counts[w] == 0 {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > 10 {
		order = order[:10]
	}

	var common []string
	for _, w := range order {
		if !themeStopWords[w] && counts[w] > 1 {
			common = append(common, w)
		}
	}
	return common
}

// topKeywords returns the most frequent candidate words of an article, with
// stop words removed after the frequency cut.
func topKeywords(text string, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, w := range textutil.Words(text, 4) {
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}

	var keywords []string
	for _, w := range order {
		if !fallbackStopWords[w] {
			keywords = append(keywords, w)
		}
	}
	return keywords
}

var themeStopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"day": true, "get": true, "has": true, "him": true, "his": true,
	"how": true, "its": true, "may": true, "new": true, "now": true,
	"old": true, "see": true, "two": true, "who": true, "boy": true,
	"did": true, "man": true, "oil": true, "sit": true, "try": true,
	"use": true, "way": true, "with": true, "this": true, "that": true,
	"from": true, "they": true, "know": true, "want": true, "been": true,
	"good": true, "much": true, "some": true, "time": true, "very": true,
	"when": true, "come": true, "here": true, "just": true, "like": true,
	"long": true, "make": true, "many": true, "over": true, "such": true,
	"take": true, "than": true, "them": true, "well": true, "were": true,
}

var fallbackStopWords = map[string]bool{
	"this": true, "that": true, "with": true, "from": true, "they": true,
	"have": true, "been": true, "will": true, "said": true, "more": true,
	"than": true, "also": true, "each": true, "which": true, "their": true,
	"time": true, "very": true, "when": true, "much": true, "some": true,
	"these": true, "other": true, "after": true, "first": true, "well": true,
	"year": true, "work": true, "such": true, "make": true, "over": true,
	"think": true, "back": true, "where": true, "before": true, "move": true,
	"right": true, "same": true, "there": true, "word": true, "about": true,
	"many": true, "then": true, "them": true, "only": true, "what": true,
	"through": true, "good": true, "want": true, "because": true,
	"give": true, "most": true,
}
