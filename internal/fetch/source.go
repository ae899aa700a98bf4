package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/newslens/newslens/internal/logger"
	"github.com/newslens/newslens/internal/model"
)

// Source provides news articles for a category.
type Source interface {
	Name() string
	Available() bool
	Fetch(ctx context.Context, category string, target int) ([]model.Article, error)
}

// Composite tries the primary source first and uses the fallback when
// the primary is unconfigured, fails, or returns nothing.
type Composite struct {
	primary  Source
	fallback Source
}

// NewComposite returns a Composite over the given sources. Either may
// be nil.
func NewComposite(primary, fallback Source) *Composite {
	return &Composite{primary: primary, fallback: fallback}
}

func (s *Composite) Name() string { return "composite" }

// Available reports whether any underlying source is configured.
func (s *Composite) Available() bool {
	if s.primary != nil && s.primary.Available() {
		return true
	}
	return s.fallback != nil && s.fallback.Available()
}

// Fetch returns articles from the first source that produces any.
func (s *Composite) Fetch(ctx context.Context, category string, target int) ([]model.Article, error) {
	var primaryErr error
	primaryTried := false

	if s.primary != nil && s.primary.Available() {
		primaryTried = true
		articles, err := s.primary.Fetch(ctx, category, target)
		if err == nil && len(articles) > 0 {
			return articles, nil
		}
		primaryErr = err
		if err != nil {
			logger.Warn("Primary source failed, trying fallback", "source", s.primary.Name(), "error", err)
		} else {
			logger.Info("Primary source returned no articles, trying fallback",
				"source", s.primary.Name(), "category", category)
		}
	}

	if s.fallback != nil && s.fallback.Available() {
		articles, err := s.fallback.Fetch(ctx, category, target)
		if err != nil {
			if primaryErr != nil {
				return nil, fmt.Errorf("all sources failed: %w", err)
			}
			return nil, err
		}
		return articles, nil
	}

	if primaryErr != nil {
		return nil, primaryErr
	}
	if primaryTried {
		return nil, nil
	}
	return nil, errors.New("no article source configured")
}
