package cluster

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/newslens/newslens/internal/model"
)

type fakeEmbedder struct {
	vectors   [][]float64
	err       error
	available bool
	calls     int
}

func (f *fakeEmbedder) Available() bool { return f.available }

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors, nil
}

func articleBatch(titles ...string) []model.Article {
	articles := make([]model.Article, len(titles))
	for i, title := range titles {
		articles[i] = model.Article{Title: title, URL: "https://example.com", Source: "wire"}
	}
	return articles
}

func TestCluster_FewArticlesSingleCluster(t *testing.T) {
	c := New(&fakeEmbedder{available: true})
	articles := articleBatch("Budget vote delayed")

	clusters := c.Cluster(context.Background(), articles, 2, 8)

	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}
	if clusters[0].ClusterID != 0 {
		t.Errorf("cluster ID = %d, want 0", clusters[0].ClusterID)
	}
	if clusters[0].Size != 1 || len(clusters[0].Articles) != 1 {
		t.Errorf("size invariant broken: size=%d articles=%d", clusters[0].Size, len(clusters[0].Articles))
	}
	if clusters[0].Articles[0].Title != "Budget vote delayed" {
		t.Errorf("unexpected article order: %v", clusters[0].Articles)
	}
}

func TestCluster_EmbeddingErrorDegradesToSingleCluster(t *testing.T) {
	c := New(&fakeEmbedder{available: true, err: errors.New("quota exceeded")})
	articles := articleBatch("A", "B", "C", "D")

	clusters := c.Cluster(context.Background(), articles, 2, 8)

	if len(clusters) != 1 {
		t.Fatalf("expected degradation to 1 cluster, got %d", len(clusters))
	}
	if clusters[0].Size != 4 {
		t.Errorf("expected all 4 articles in the cluster, got %d", clusters[0].Size)
	}
}

func TestCluster_EmbeddingPathSortsBySize(t *testing.T) {
	emb := &fakeEmbedder{
		available: true,
		vectors: [][]float64{
			{1, 0},
			{0.95, 0.31},
			{0.9, 0.43},
			{0, 1},
			{0.2, 0.98},
		},
	}
	c := New(emb)
	articles := articleBatch(
		"Central bank raises rates",
		"Central bank tightens policy",
		"Rate hike rattles markets",
		"Cup final goes to extra time",
		"Cup final decided on penalties",
	)

	clusters := c.Cluster(context.Background(), articles, 2, 8)

	if emb.calls != 1 {
		t.Errorf("expected one embedding call, got %d", emb.calls)
	}
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}
	if clusters[0].Size != 3 || clusters[1].Size != 2 {
		t.Errorf("expected sizes [3 2], got [%d %d]", clusters[0].Size, clusters[1].Size)
	}
	if clusters[0].ClusterID != 0 || clusters[1].ClusterID != 1 {
		t.Errorf("expected contiguous IDs [0 1], got [%d %d]", clusters[0].ClusterID, clusters[1].ClusterID)
	}
	if clusters[0].Articles[0].Title != "Central bank raises rates" {
		t.Errorf("largest cluster holds the wrong articles: %+v", clusters[0].Articles)
	}
	for _, cl := range clusters {
		if cl.Size != len(cl.Articles) {
			t.Errorf("cluster %d: size %d != %d articles", cl.ClusterID, cl.Size, len(cl.Articles))
		}
	}
}

func TestCluster_AllNoiseDropsArticles(t *testing.T) {
	emb := &fakeEmbedder{
		available: true,
		vectors: [][]float64{
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
		},
	}
	c := New(emb)

	clusters := c.Cluster(context.Background(), articleBatch("A", "B", "C"), 2, 8)

	if len(clusters) != 0 {
		t.Errorf("expected no clusters when every point is noise, got %d", len(clusters))
	}
}

func TestCluster_FallbackGroupsByKeyword(t *testing.T) {
	c := New(&fakeEmbedder{available: false})
	articles := articleBatch(
		"Bitcoin price surges as bitcoin adoption grows",
		"Bitcoin miners expand operations",
		"Chelsea wins football match tonight",
		"Chelsea celebrate football victory",
		"Quantum computing breakthrough announced",
	)

	clusters := c.Cluster(context.Background(), articles, 2, 8)

	if len(clusters) != 2 {
		t.Fatalf("expected 2 keyword groups, got %d", len(clusters))
	}
	if clusters[0].Size != 2 || clusters[1].Size != 2 {
		t.Errorf("expected two groups of 2, got sizes [%d %d]", clusters[0].Size, clusters[1].Size)
	}
	if clusters[0].Articles[0].Title != "Bitcoin price surges as bitcoin adoption grows" {
		t.Errorf("expected the bitcoin group first on size ties, got %q", clusters[0].Articles[0].Title)
	}
}

func TestCluster_FallbackTruncatesToMaxClusters(t *testing.T) {
	c := New(nil)
	articles := articleBatch(
		"Bitcoin price surges as bitcoin adoption grows",
		"Bitcoin miners expand operations",
		"Chelsea wins football match tonight",
		"Chelsea celebrate football victory",
	)

	clusters := c.Cluster(context.Background(), articles, 2, 1)

	if len(clusters) != 1 {
		t.Fatalf("expected truncation to 1 cluster, got %d", len(clusters))
	}
	if clusters[0].ClusterID != 0 {
		t.Errorf("cluster ID = %d, want 0", clusters[0].ClusterID)
	}
}

func TestClusterSummary(t *testing.T) {
	if got := clusterSummary(nil); got != "No articles in cluster" {
		t.Errorf("empty cluster summary = %q", got)
	}

	single := []model.Article{{Title: "Parliament passes budget"}}
	if got := clusterSummary(single); got != "Parliament passes budget" {
		t.Errorf("single-article summary = %q", got)
	}

	untitled := []model.Article{{Content: "body only"}}
	if got := clusterSummary(untitled); got != "No title available" {
		t.Errorf("untitled single summary = %q", got)
	}

	multi := []model.Article{
		{Title: "Wildfire spreads north"},
		{Title: "Crews battle the wildfire near the coast"},
		{Title: "Wildfire smoke reaches the city"},
	}
	got := clusterSummary(multi)
	want := "Crews battle the wildfire near the coast (Related to: wildfire)"
	if got != want {
		t.Errorf("multi summary = %q, want %q", got, want)
	}

	blank := []model.Article{{Content: "a"}, {Content: "b"}}
	if got := clusterSummary(blank); got != "Multiple related articles" {
		t.Errorf("titleless multi summary = %q", got)
	}
}

func TestTopKeywords(t *testing.T) {
	got := topKeywords("Inflation report shows inflation easing while inflation fears linger", 5)
	if len(got) == 0 || got[0] != "inflation" {
		t.Fatalf("expected inflation as the top keyword, got %v", got)
	}

	// Stop words are removed after the frequency cut, shrinking the result.
	got = topKeywords("this this this market rally", 5)
	want := []string{"market", "rally"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("topKeywords = %v, want %v", got, want)
	}
}
