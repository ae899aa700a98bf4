// Package rss serves articles from category-keyed RSS feeds. It is the
// fallback article source used when NewsAPI is not configured.
package rss

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/newslens/newslens/internal/logger"
	"github.com/newslens/newslens/internal/model"
)

var tagRe = regexp.MustCompile(`<[^>]*>`)

// FeedsConfig is the YAML config structure:
//
//	categories:
//	  all:
//	    - https://example.com/rss.xml
//	  technology:
//	    - https://example.com/tech/rss.xml
type FeedsConfig struct {
	Categories map[string][]string `yaml:"categories"`
}

// Source fetches articles from RSS feeds grouped by category.
type Source struct {
	parser *gofeed.Parser
	feeds  map[string][]string
}

// Load reads the category-keyed feed list from a YAML file.
func Load(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feeds config: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("Failed to close feeds config", "error", err)
		}
	}()

	var cfg FeedsConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse feeds config: %w", err)
	}
	return New(cfg.Categories), nil
}

// New returns a Source over the given category-to-URLs mapping.
func New(feeds map[string][]string) *Source {
	return &Source{parser: gofeed.NewParser(), feeds: feeds}
}

func (s *Source) Name() string { return "rss" }

// Available reports whether any feeds are configured.
func (s *Source) Available() bool {
	return s != nil && len(s.feeds) > 0
}

// Fetch parses the category's feeds and returns up to target articles.
// Categories without their own feeds use the "all" feeds. A failing feed
// is logged and skipped; the rest still count.
func (s *Source) Fetch(ctx context.Context, category string, target int) ([]model.Article, error) {
	if category == "" {
		category = "all"
	}
	urls := s.feeds[category]
	if len(urls) == 0 {
		urls = s.feeds["all"]
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("no feeds configured for category %q", category)
	}

	var articles []model.Article
	seenLinks := make(map[string]struct{})
	okCount := 0

	for _, feedURL := range urls {
		if target > 0 && len(articles) >= target {
			break
		}

		feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			logger.Warn("Failed to parse RSS feed", "url", feedURL, "error", err)
			continue
		}
		okCount++

		for _, item := range feed.Items {
			if target > 0 && len(articles) >= target {
				break
			}
			if item.Link != "" {
				if _, dup := seenLinks[item.Link]; dup {
					continue
				}
				seenLinks[item.Link] = struct{}{}
			}
			articles = append(articles, model.Article{
				Title:   strings.TrimSpace(item.Title),
				URL:     item.Link,
				Source:  strings.TrimSpace(feed.Title),
				Content: itemContent(item),
			})
		}
	}

	logger.Info("Fetched RSS feeds", "category", category, "ok", okCount, "total", len(urls), "articles", len(articles))
	return articles, nil
}

// itemContent prefers the full content block over the description and
// strips embedded HTML.
func itemContent(item *gofeed.Item) string {
	content := item.Content
	if strings.TrimSpace(content) == "" {
		content = item.Description
	}
	content = tagRe.ReplaceAllString(content, " ")
	return strings.Join(strings.Fields(content), " ")
}
