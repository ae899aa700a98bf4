package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newslens/newslens/internal/bias"
	"github.com/newslens/newslens/internal/cache"
	"github.com/newslens/newslens/internal/model"
)

type fakePipeline struct {
	tldrResult   model.TLDRResult
	allResult    model.AllCategoriesResult
	topics       []model.TrendingTopic
	stats        cache.Stats
	cleared      bool
	lastCategory string
	lastForce    bool
	lastMinSize  int
}

func (f *fakePipeline) CategoryTLDR(ctx context.Context, category string, forceRefresh bool) model.TLDRResult {
	f.lastCategory = category
	f.lastForce = forceRefresh
	r := f.tldrResult
	r.Category = category
	return r
}

func (f *fakePipeline) AllCategories(ctx context.Context, categories []string, forceRefresh bool) model.AllCategoriesResult {
	f.lastForce = forceRefresh
	return f.allResult
}

func (f *fakePipeline) TrendingTopics(ctx context.Context, category string, minClusterSize int) []model.TrendingTopic {
	f.lastCategory = category
	f.lastMinSize = minClusterSize
	return f.topics
}

func (f *fakePipeline) ClearCache()             { f.cleared = true }
func (f *fakePipeline) CacheStats() cache.Stats { return f.stats }

type fakeSource struct {
	articles     []model.Article
	err          error
	lastCategory string
	lastTarget   int
}

func (f *fakeSource) Name() string    { return "fake" }
func (f *fakeSource) Available() bool { return true }

func (f *fakeSource) Fetch(ctx context.Context, category string, target int) ([]model.Article, error) {
	f.lastCategory = category
	f.lastTarget = target
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

type fakeSummarizer struct {
	lastSentences int
}

func (f *fakeSummarizer) SummarizeText(text string, sentences int) string {
	f.lastSentences = sentences
	return "condensed: " + text
}

type fakeAnalyzer struct {
	categories map[string]string
	calls      int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, title, content string) bias.Result {
	f.calls++
	category := f.categories[title]
	if category == "" {
		category = "neutral"
	}
	score := 0.0
	switch category {
	case "left-leaning":
		score = -0.5
	case "right-leaning":
		score = 0.5
	}
	return bias.Result{BiasScore: score, BiasCategory: category, Confidence: 0.8}
}

func testContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestArticles_SummariesAndBias(t *testing.T) {
	source := &fakeSource{articles: []model.Article{
		{Title: "Tax cuts announced", URL: "http://e.com/1", Source: "Wire", Content: "Budget details."},
		{Title: "Rain expected", URL: "http://e.com/2", Source: "Daily", Content: "Weather details."},
	}}
	summarizer := &fakeSummarizer{}
	analyzer := &fakeAnalyzer{categories: map[string]string{"Tax cuts announced": "right-leaning"}}
	h := NewHandler(&fakePipeline{}, source, summarizer, analyzer, Options{})

	c, rec := testContext(http.MethodGet, "/articles", "")
	require.NoError(t, h.Articles(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "all", source.lastCategory)
	assert.Equal(t, 50, source.lastTarget)
	assert.Equal(t, 3, summarizer.lastSentences)

	var views []articleView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "Tax cuts announced", views[0].Title)
	assert.Equal(t, "Wire", views[0].Source)
	assert.Equal(t, "condensed: Budget details.", views[0].Summary)
	assert.Equal(t, "http://e.com/1", views[0].URL)
	require.NotNil(t, views[0].Bias)
	assert.Equal(t, "right-leaning", views[0].Bias.BiasCategory)
	require.NotNil(t, views[1].Bias)
	assert.Equal(t, "neutral", views[1].Bias.BiasCategory)
}

func TestArticles_WithoutBias(t *testing.T) {
	source := &fakeSource{articles: []model.Article{
		{Title: "Rain expected", URL: "http://e.com/2", Source: "Daily", Content: "Weather."},
	}}
	analyzer := &fakeAnalyzer{}
	h := NewHandler(&fakePipeline{}, source, &fakeSummarizer{}, analyzer, Options{})

	c, rec := testContext(http.MethodGet, "/articles?include_bias=false", "")
	require.NoError(t, h.Articles(c))

	assert.Equal(t, 0, analyzer.calls)
	assert.NotContains(t, rec.Body.String(), "bias_analysis")
}

func TestArticles_UnknownCategoryPassesThrough(t *testing.T) {
	source := &fakeSource{}
	h := NewHandler(&fakePipeline{}, source, &fakeSummarizer{}, &fakeAnalyzer{}, Options{})

	c, _ := testContext(http.MethodGet, "/articles?category=gardening", "")
	require.NoError(t, h.Articles(c))

	assert.Equal(t, "gardening", source.lastCategory)
}

func TestArticles_FetchErrorStays200(t *testing.T) {
	source := &fakeSource{err: errors.New("api down")}
	h := NewHandler(&fakePipeline{}, source, &fakeSummarizer{}, &fakeAnalyzer{}, Options{})

	c, rec := testContext(http.MethodGet, "/articles", "")
	require.NoError(t, h.Articles(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "api down", resp.Error)
}

func balancedFixture() (*fakeSource, *fakeAnalyzer) {
	leanings := map[string]string{}
	var articles []model.Article
	add := func(title, category string) {
		articles = append(articles, model.Article{
			Title: title, URL: "http://e.com/" + title, Source: "Wire", Content: title + " body",
		})
		leanings[title] = category
	}
	add("L1", "left-leaning")
	add("N1", "neutral")
	add("R1", "right-leaning")
	add("L2", "left-leaning")
	add("N2", "neutral")
	add("R2", "right-leaning")
	add("L3", "left-leaning")
	add("N3", "neutral")
	add("R3", "right-leaning")
	add("L4", "left-leaning")
	add("N4", "neutral")
	add("N5", "neutral")
	return &fakeSource{articles: articles}, &fakeAnalyzer{categories: leanings}
}

func TestBalancedArticles_DefaultTargets(t *testing.T) {
	source, analyzer := balancedFixture()
	h := NewHandler(&fakePipeline{}, source, &fakeSummarizer{}, analyzer, Options{})

	c, rec := testContext(http.MethodPost, "/articles/balanced", `{"category":"all"}`)
	require.NoError(t, h.BalancedArticles(c))

	var resp balancedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 12, resp.BalanceInfo.TotalAnalyzed)
	assert.Equal(t, 10, resp.BalanceInfo.Selected)
	assert.Equal(t, bias.DefaultBalance, resp.BalanceInfo.TargetBalance)
	require.Len(t, resp.Articles, 10)
	assert.Equal(t, "L1", resp.Articles[0].Title)
	assert.Equal(t, "N1", resp.Articles[3].Title)
	assert.Equal(t, "R1", resp.Articles[7].Title)
	require.NotNil(t, resp.Articles[0].Bias)
	assert.Equal(t, "left-leaning", resp.Articles[0].Bias.BiasCategory)
}

func TestBalancedArticles_CustomTargets(t *testing.T) {
	source, analyzer := balancedFixture()
	h := NewHandler(&fakePipeline{}, source, &fakeSummarizer{}, analyzer, Options{})

	body := `{"category":"business","target_balance":{"left-leaning":1,"neutral":1,"right-leaning":0}}`
	c, rec := testContext(http.MethodPost, "/articles/balanced", body)
	require.NoError(t, h.BalancedArticles(c))

	assert.Equal(t, "business", source.lastCategory)

	var resp balancedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Articles, 2)
	assert.Equal(t, "L1", resp.Articles[0].Title)
	assert.Equal(t, "N1", resp.Articles[1].Title)
	assert.Equal(t, bias.Balance{Left: 1, Neutral: 1, Right: 0}, resp.BalanceInfo.TargetBalance)
}

func TestBalancedArticles_FetchErrorStays200(t *testing.T) {
	source := &fakeSource{err: errors.New("quota hit")}
	h := NewHandler(&fakePipeline{}, source, &fakeSummarizer{}, &fakeAnalyzer{}, Options{})

	c, rec := testContext(http.MethodPost, "/articles/balanced", `{"category":"all"}`)
	require.NoError(t, h.BalancedArticles(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "quota hit")
}

func TestBiasStats_Distribution(t *testing.T) {
	source := &fakeSource{articles: []model.Article{
		{Title: "A", Content: "x"},
		{Title: "B", Content: "x"},
		{Title: "C", Content: "x"},
	}}
	analyzer := &fakeAnalyzer{categories: map[string]string{
		"A": "left-leaning",
		"B": "left-leaning",
	}}
	h := NewHandler(&fakePipeline{}, source, &fakeSummarizer{}, analyzer, Options{})

	c, rec := testContext(http.MethodGet, "/bias-stats?category=technology", "")
	require.NoError(t, h.BiasStats(c))

	var resp biasStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "technology", resp.Category)
	assert.Equal(t, 2, resp.BiasDistribution["left-leaning"])
	assert.Equal(t, 1, resp.BiasDistribution["neutral"])
	assert.Equal(t, 0, resp.BiasDistribution["right-leaning"])
	assert.Equal(t, 3, resp.TotalAnalyzed)
	assert.Contains(t, rec.Body.String(), "right-leaning")
}

func TestCategoryTLDR_ParamAndForce(t *testing.T) {
	pipeline := &fakePipeline{tldrResult: model.TLDRResult{TotalArticles: 9}}
	h := NewHandler(pipeline, &fakeSource{}, &fakeSummarizer{}, &fakeAnalyzer{}, Options{})

	c, rec := testContext(http.MethodGet, "/tldr/technology?force_refresh=true", "")
	c.SetPath("/tldr/:category")
	c.SetParamNames("category")
	c.SetParamValues("technology")
	require.NoError(t, h.CategoryTLDR(c))

	assert.Equal(t, "technology", pipeline.lastCategory)
	assert.True(t, pipeline.lastForce)

	var resp model.TLDRResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "technology", resp.Category)
	assert.Equal(t, 9, resp.TotalArticles)
}

func TestAllCategories_DefaultForceFalse(t *testing.T) {
	pipeline := &fakePipeline{allResult: model.AllCategoriesResult{TotalCategories: 7}}
	h := NewHandler(pipeline, &fakeSource{}, &fakeSummarizer{}, &fakeAnalyzer{}, Options{})

	c, rec := testContext(http.MethodGet, "/tldr", "")
	require.NoError(t, h.AllCategories(c))

	assert.False(t, pipeline.lastForce)

	var resp model.AllCategoriesResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.TotalCategories)
}

func TestTrendingTopics_MinSizeParam(t *testing.T) {
	pipeline := &fakePipeline{topics: []model.TrendingTopic{
		{Topic: "big story", ArticleCount: 5, Rank: 1},
		{Topic: "mid story", ArticleCount: 3, Rank: 2},
	}}
	h := NewHandler(pipeline, &fakeSource{}, &fakeSummarizer{}, &fakeAnalyzer{}, Options{})

	c, rec := testContext(http.MethodGet, "/trending/sports?min_cluster_size=5", "")
	c.SetPath("/trending/:category")
	c.SetParamNames("category")
	c.SetParamValues("sports")
	require.NoError(t, h.TrendingTopics(c))

	assert.Equal(t, "sports", pipeline.lastCategory)
	assert.Equal(t, 5, pipeline.lastMinSize)

	var resp trendingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sports", resp.Category)
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.TrendingTopics, 2)
	assert.Equal(t, "big story", resp.TrendingTopics[0].Topic)
}

func TestTrendingTopics_InvalidMinSizeUsesDefault(t *testing.T) {
	pipeline := &fakePipeline{}
	h := NewHandler(pipeline, &fakeSource{}, &fakeSummarizer{}, &fakeAnalyzer{}, Options{})

	c, _ := testContext(http.MethodGet, "/trending/all?min_cluster_size=abc", "")
	c.SetPath("/trending/:category")
	c.SetParamNames("category")
	c.SetParamValues("all")
	require.NoError(t, h.TrendingTopics(c))

	assert.Equal(t, 3, pipeline.lastMinSize)
}

func TestClearCache(t *testing.T) {
	pipeline := &fakePipeline{}
	h := NewHandler(pipeline, &fakeSource{}, &fakeSummarizer{}, &fakeAnalyzer{}, Options{})

	c, rec := testContext(http.MethodPost, "/tldr/clear-cache", "")
	require.NoError(t, h.ClearCache(c))

	assert.True(t, pipeline.cleared)

	var resp messageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "TLDR cache cleared", resp.Message)
}

func TestCacheStats(t *testing.T) {
	pipeline := &fakePipeline{stats: cache.Stats{
		TotalEntries:   3,
		ActiveEntries:  2,
		ExpiredEntries: 1,
		TTLHours:       1,
	}}
	h := NewHandler(pipeline, &fakeSource{}, &fakeSummarizer{}, &fakeAnalyzer{}, Options{})

	c, rec := testContext(http.MethodGet, "/tldr/cache-stats", "")
	require.NoError(t, h.CacheStats(c))

	var resp map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(3), resp["total_entries"])
	assert.Equal(t, float64(2), resp["active_entries"])
	assert.Equal(t, float64(1), resp["expired_entries"])
	assert.Equal(t, float64(1), resp["cache_duration_hours"])
}

func TestHealth(t *testing.T) {
	h := NewHandler(&fakePipeline{}, &fakeSource{}, &fakeSummarizer{}, &fakeAnalyzer{}, Options{})

	c, rec := testContext(http.MethodGet, "/health", "")
	require.NoError(t, h.Health(c))

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "newslens-api", resp.Service)
	assert.Equal(t, "1.0.0", resp.Version)
	assert.NotEmpty(t, resp.Status)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewHandler(&fakePipeline{}, &fakeSource{}, &fakeSummarizer{}, &fakeAnalyzer{}, Options{})

	c, rec := testContext(http.MethodGet, "/metrics", "")
	require.NoError(t, h.Metrics(c))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, "articles_fetched")
	assert.Contains(t, resp, "cache_hits")
	assert.Contains(t, resp, "is_healthy")
}

func TestServer_StaticRoutesBeatCategoryParam(t *testing.T) {
	pipeline := &fakePipeline{stats: cache.Stats{TotalEntries: 4, TTLHours: 1}}
	h := NewHandler(pipeline, &fakeSource{}, &fakeSummarizer{}, &fakeAnalyzer{}, Options{})
	e := NewServer(h, []string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodGet, "/tldr/cache-stats", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "total_entries")
	assert.NotEqual(t, "cache-stats", pipeline.lastCategory)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
