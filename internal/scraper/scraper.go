// Package scraper fetches full article text for articles whose feed or
// API content is too thin to summarize well.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/newslens/newslens/internal/logger"
	"github.com/newslens/newslens/internal/model"
	"github.com/newslens/newslens/internal/textutil"
)

const (
	defaultTimeout    = 15 * time.Second
	fetchDelay        = 500 * time.Millisecond
	minParagraphChars = 20
	minArticleChars   = 100
	maxContentChars   = 1800
	thinWordCount     = 50
	userAgent         = "Mozilla/5.0 (compatible; newslens/1.0)"
)

// Ordered from specific article containers down to a bare paragraph
// sweep. The first selector that yields paragraphs wins.
var contentSelectors = []string{
	"article p",
	".article-body p",
	".article-content p",
	".post-content p",
	".entry-content p",
	".content p",
	"main p",
	"#content p",
	"p",
}

var titleSelectors = []string{
	"h1",
	".article-title",
	".headline",
	".entry-title",
	"title",
}

var junkIndicators = []string{
	"cookie", "subscribe", "sign up", "newsletter", "advertisement",
	"read more", "click here", "follow us", "share this",
	"all rights reserved", "privacy policy", "terms of service", "log in",
}

// PageContent is the readable text extracted from an article page.
type PageContent struct {
	Title   string
	Content string
	URL     string
}

type Scraper struct {
	client *http.Client
	delay  time.Duration
}

func New(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Scraper{
		client: &http.Client{Timeout: timeout},
		delay:  fetchDelay,
	}
}

// ExtractArticle downloads the page and pulls out its readable text.
func (s *Scraper) ExtractArticle(ctx context.Context, url string) (*PageContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	content := extractParagraphs(doc)
	if content == "" {
		return nil, fmt.Errorf("no readable content at %s", url)
	}

	return &PageContent{
		Title:   extractTitle(doc),
		Content: content,
		URL:     url,
	}, nil
}

// EnrichArticles replaces thin article content with scraped full text,
// in place. At most max pages are fetched, with a pause between requests
// so sites are not hammered. Returns the number of articles enriched.
func (s *Scraper) EnrichArticles(ctx context.Context, articles []model.Article, max int) int {
	if max <= 0 {
		return 0
	}

	fetched := 0
	enriched := 0
	for i := range articles {
		if fetched >= max {
			break
		}
		if articles[i].URL == "" || textutil.WordCount(articles[i].Content) >= thinWordCount {
			continue
		}

		if fetched > 0 {
			select {
			case <-ctx.Done():
				return enriched
			case <-time.After(s.delay):
			}
		}
		fetched++

		page, err := s.ExtractArticle(ctx, articles[i].URL)
		if err != nil {
			logger.Debug("Skipping article enrichment", "url", articles[i].URL, "error", err)
			continue
		}
		if len(page.Content) < minArticleChars || len(page.Content) <= len(articles[i].Content) {
			continue
		}

		articles[i].Content = page.Content
		enriched++
	}

	if fetched > 0 {
		logger.Info("Enriched thin articles", "enriched", enriched, "fetched", fetched)
	}
	return enriched
}

func extractParagraphs(doc *goquery.Document) string {
	for _, selector := range contentSelectors {
		var paragraphs []string
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			text := strings.Join(strings.Fields(sel.Text()), " ")
			if len(text) < minParagraphChars || isJunkLine(text) {
				return
			}
			paragraphs = append(paragraphs, text)
		})
		if len(paragraphs) > 0 {
			return capParagraphs(paragraphs)
		}
	}
	return ""
}

func extractTitle(doc *goquery.Document) string {
	for _, selector := range titleSelectors {
		title := strings.TrimSpace(doc.Find(selector).First().Text())
		if title != "" {
			return title
		}
	}
	return ""
}

func isJunkLine(line string) bool {
	lower := strings.ToLower(line)
	for _, indicator := range junkIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// capParagraphs joins paragraphs up to the content limit, never cutting
// a paragraph in half. A single oversized paragraph is kept whole.
func capParagraphs(paragraphs []string) string {
	total := 0
	kept := 0
	for _, p := range paragraphs {
		if kept > 0 && total+len(p) > maxContentChars {
			break
		}
		total += len(p) + 2
		kept++
	}
	return strings.Join(paragraphs[:kept], "\n\n")
}
