// Package entity extracts candidate named entities from article text
// using pattern matching. No model, no state: capitalized spans plus a
// small set of organization suffix patterns.
package entity

import (
	"regexp"
	"sort"

	"github.com/newslens/newslens/internal/model"
)

var capitalizedRe = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)

// Suffix patterns catch names the capitalized matcher misses,
// all-caps legal forms like "Acme LLC" in particular.
var orgRes = []*regexp.Regexp{
	regexp.MustCompile(`\b[A-Z][a-z]+\s+(?:Inc|Corp|LLC|Ltd|Company|Corporation)\b`),
	regexp.MustCompile(`\b[A-Z][a-z]+\s+(?:University|College|Institute)\b`),
	regexp.MustCompile(`\b[A-Z][a-z]+\s+(?:Bank|Financial|Group)\b`),
}

// Extract returns raw entity matches in order found. Duplicates are
// retained; downstream callers deduplicate via frequency counting.
// Empty or garbage input yields an empty result.
func Extract(text string) []string {
	var entities []string

	entities = append(entities, capitalizedRe.FindAllString(text, -1)...)

	for _, re := range orgRes {
		entities = append(entities, re.FindAllString(text, -1)...)
	}

	return entities
}

// ClusterEntities aggregates entities over a cluster of articles and
// returns at most five, frequency-ranked. Entities shorter than three
// characters or seen only once are dropped; ties keep first-encountered
// order.
func ClusterEntities(articles []model.Article) []string {
	counts := make(map[string]int)
	var firstSeen []string

	for _, article := range articles {
		text := article.Title + " " + article.Content
		for _, e := range Extract(text) {
			if _, ok := counts[e]; !ok {
				firstSeen = append(firstSeen, e)
			}
			counts[e]++
		}
	}

	ranked := make([]string, len(firstSeen))
	copy(ranked, firstSeen)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})

	// Consider only the ten most frequent before filtering, then keep
	// the top five that survive.
	if len(ranked) > 10 {
		ranked = ranked[:10]
	}

	top := make([]string, 0, 5)
	for _, e := range ranked {
		if len(e) > 2 && counts[e] > 1 {
			top = append(top, e)
		}
		if len(top) == 5 {
			break
		}
	}
	return top
}
