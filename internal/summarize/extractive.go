package summarize

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	textrank "github.com/DavidBelicza/TextRank/v2"

	"github.com/newslens/newslens/internal/textutil"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	urlRe        = regexp.MustCompile(`http[s]?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*(),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)
	emailRe      = regexp.MustCompile(`\S+@\S+`)
	// keeps letters, digits, underscores, whitespace and .,!?- so sentence
	// boundaries survive cleaning
	specialRe = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?\-]`)

	rankingNoRe = regexp.MustCompile(`No\.\s*\d+\s*`)
	leadColonRe = regexp.MustCompile(`^(The|A|An):\s*`)
)

// cleanText normalizes raw article text before summarization: collapses
// whitespace, strips URLs, email addresses and special characters.
func cleanText(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = urlRe.ReplaceAllString(text, "")
	text = emailRe.ReplaceAllString(text, "")
	text = specialRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// cleanSummaryText strips ranking artifacts ("No. 3") and stray leading
// article prefixes from a produced summary, normalizes whitespace and
// capitalizes the first letter. Idempotent: running it on its own output
// changes nothing.
func cleanSummaryText(text string) string {
	text = rankingNoRe.ReplaceAllString(text, "")
	text = leadColonRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}

	runes := []rune(text)
	if unicode.IsLower(runes[0]) {
		runes[0] = unicode.ToUpper(runes[0])
	}
	return string(runes)
}

// extractiveSummary condenses text to at most maxSentences sentences.
// Short text passes through untouched; longer text goes through TextRank,
// then a frequency-scored ranker, then plain lead sentences, whichever
// first yields output.
func extractiveSummary(text string, maxSentences int) string {
	text = cleanText(text)

	if textutil.WordCount(text) < 50 {
		return text
	}

	if summary := textRankSummary(text, maxSentences); summary != "" {
		return cleanSummaryText(summary)
	}
	if summary := frequencySummary(text, maxSentences); summary != "" {
		return cleanSummaryText(summary)
	}
	if summary := leadSentences(text, maxSentences); summary != "" {
		return cleanSummaryText(summary)
	}

	truncated, cut := textutil.TruncateWords(text, 30)
	if cut {
		truncated += "..."
	}
	return cleanSummaryText(truncated)
}

// textRankSummary picks the highest-weight sentences and returns them in
// document order. Empty result means the ranker could not parse the text.
func textRankSummary(text string, maxSentences int) string {
	tr := textrank.NewTextRank()
	rule := textrank.NewDefaultRule()
	language := textrank.NewDefaultLanguage()
	algorithm := textrank.NewDefaultAlgorithm()

	tr.Populate(text, language, rule)
	tr.Ranking(algorithm)

	ranked := textrank.FindSentencesByRelationWeight(tr, maxSentences)
	if len(ranked) == 0 {
		return ""
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].ID < ranked[j].ID })

	parts := make([]string, 0, len(ranked))
	for _, s := range ranked {
		if v := strings.TrimSpace(s.Value); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// frequencySummary scores each sentence by the average corpus frequency of
// its words and keeps the top maxSentences in document order.
func frequencySummary(text string, maxSentences int) string {
	sentences := textutil.Sentences(text)
	if len(sentences) == 0 {
		return ""
	}
	if len(sentences) <= maxSentences {
		return strings.Join(sentences, " ")
	}

	freq := make(map[string]int)
	for _, w := range textutil.Words(text, 3) {
		freq[w]++
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(sentences))
	for i, s := range sentences {
		words := textutil.Words(s, 3)
		total := 0
		for _, w := range words {
			total += freq[w]
		}
		var avg float64
		if len(words) > 0 {
			avg = float64(total) / float64(len(words))
		}
		scores[i] = scored{idx: i, score: avg}
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	top := scores[:maxSentences]
	sort.Slice(top, func(i, j int) bool { return top[i].idx < top[j].idx })

	parts := make([]string, len(top))
	for i, s := range top {
		parts[i] = sentences[s.idx]
	}
	return strings.Join(parts, " ")
}

// leadSentences returns the first maxSentences sentences verbatim.
func leadSentences(text string, maxSentences int) string {
	sentences := textutil.Sentences(text)
	if len(sentences) == 0 {
		return ""
	}
	if len(sentences) > maxSentences {
		sentences = sentences[:maxSentences]
	}
	return strings.Join(sentences, " ")
}
