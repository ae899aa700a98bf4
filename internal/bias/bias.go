// Package bias estimates the political leaning of news articles. Three
// signals are blended: political keyword counts, VADER sentiment and an
// optional transformer classifier. The scorer always produces a result;
// missing signals simply contribute zero.
package bias

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"

	"github.com/newslens/newslens/internal/logger"
	"github.com/newslens/newslens/internal/metrics"
	"github.com/newslens/newslens/internal/model"
)

// Bias categories as served to clients.
const (
	CategoryLeft    = "left-leaning"
	CategoryNeutral = "neutral"
	CategoryRight   = "right-leaning"
)

// Weights of the three signals in the combined score.
const (
	keywordWeight   = 0.4
	sentimentWeight = 0.3
	modelWeight     = 0.3
)

// Classifier input is capped at this many characters.
const modelInputRunes = 512

var leftKeywords = []string{
	"progressive", "liberal", "democrat", "social justice", "equality",
	"climate change", "renewable energy", "healthcare reform", "minimum wage",
	"gun control", "immigration reform", "diversity", "inclusion",
	"environmental protection", "green energy", "social welfare",
}

var rightKeywords = []string{
	"conservative", "republican", "traditional values", "free market",
	"small government", "tax cuts", "deregulation", "law and order",
	"national security", "border security", "family values", "religious freedom",
	"fiscal responsibility", "entrepreneurship", "individual liberty",
}

var (
	biasURLRe    = regexp.MustCompile(`http\S+|www\S+|https\S+`)
	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	biasSpacesRe = regexp.MustCompile(`\s+`)
)

// Classifier labels text with a sentiment class, typically backed by a
// hosted transformer model.
type Classifier interface {
	Available() bool
	Classify(ctx context.Context, text string) (label string, score float64, err error)
}

// KeywordScores is the keyword signal. Left and right scores are shares
// of the matched keywords; with no matches the neutral score is 1.
type KeywordScores struct {
	LeftScore    float64 `json:"left_score"`
	RightScore   float64 `json:"right_score"`
	NeutralScore float64 `json:"neutral_score"`
}

// SentimentScores is the VADER signal.
type SentimentScores struct {
	Positive float64 `json:"vader_positive"`
	Negative float64 `json:"vader_negative"`
	Neutral  float64 `json:"vader_neutral"`
	Compound float64 `json:"vader_compound"`
}

// ModelScores is the transformer signal. Zero when no classifier is
// configured or the call failed.
type ModelScores struct {
	Score      float64 `json:"model_score"`
	Confidence float64 `json:"model_confidence"`
}

// Details exposes the per-signal breakdown of a result. Error carries
// the reason a signal degraded to zero, when one did.
type Details struct {
	Keyword   KeywordScores   `json:"keyword_analysis"`
	Sentiment SentimentScores `json:"sentiment_analysis"`
	Model     ModelScores     `json:"model_analysis"`
	Error     string          `json:"error,omitempty"`
}

// Result is the bias analysis of one article. BiasScore runs from -1
// (left) to 1 (right).
type Result struct {
	BiasScore    float64 `json:"bias_score"`
	BiasCategory string  `json:"bias_category"`
	Confidence   float64 `json:"confidence"`
	Details      Details `json:"details"`
}

// ScoredArticle pairs an article with its bias result.
type ScoredArticle struct {
	Article model.Article `json:"article"`
	Bias    Result        `json:"bias"`
}

// Balance sets how many articles of each leaning a balanced feed keeps.
// The JSON keys mirror the category labels the front-end sends.
type Balance struct {
	Left    int `json:"left-leaning"`
	Neutral int `json:"neutral"`
	Right   int `json:"right-leaning"`
}

// DefaultBalance keeps ten articles with a slight neutral majority.
var DefaultBalance = Balance{Left: 3, Neutral: 4, Right: 3}

// Scorer analyzes article bias. Safe for concurrent use.
type Scorer struct {
	vader      *govader.SentimentIntensityAnalyzer
	classifier Classifier
}

// NewScorer returns a Scorer. A nil classifier disables the transformer
// signal.
func NewScorer(classifier Classifier) *Scorer {
	return &Scorer{
		vader:      govader.NewSentimentIntensityAnalyzer(),
		classifier: classifier,
	}
}

// Analyze scores one article from its title and content.
func (s *Scorer) Analyze(ctx context.Context, title, content string) Result {
	metrics.Global.IncrementBiasAnalyses()

	text := cleanBiasText(title + ". " + content)

	keyword := s.keywordScores(text)
	sentiment := s.sentimentScores(text)
	modelScores, modelErr := s.modelScores(ctx, text)

	score := combineScores(keyword, sentiment, modelScores)

	details := Details{
		Keyword:   keyword,
		Sentiment: sentiment,
		Model:     modelScores,
	}
	if modelErr != nil {
		details.Error = modelErr.Error()
	}

	return Result{
		BiasScore:    score,
		BiasCategory: categorize(score),
		Confidence:   confidence(keyword, sentiment, modelScores),
		Details:      details,
	}
}

// BalancedArticles selects articles per leaning according to targets,
// keeping input order inside each group. Selection runs left, then
// neutral, then right. A zero targets value falls back to
// DefaultBalance; articles with unknown categories are dropped.
func BalancedArticles(articles []ScoredArticle, targets Balance) []ScoredArticle {
	if targets == (Balance{}) {
		targets = DefaultBalance
	}

	groups := map[string][]ScoredArticle{
		CategoryLeft:    nil,
		CategoryNeutral: nil,
		CategoryRight:   nil,
	}
	for _, a := range articles {
		category := a.Bias.BiasCategory
		if category == "" {
			category = CategoryNeutral
		}
		if _, ok := groups[category]; ok {
			groups[category] = append(groups[category], a)
		}
	}

	var out []ScoredArticle
	picks := []struct {
		category string
		count    int
	}{
		{CategoryLeft, targets.Left},
		{CategoryNeutral, targets.Neutral},
		{CategoryRight, targets.Right},
	}
	for _, pick := range picks {
		if pick.count <= 0 {
			continue
		}
		group := groups[pick.category]
		if len(group) > pick.count {
			group = group[:pick.count]
		}
		out = append(out, group...)
	}
	return out
}

// cleanBiasText strips URLs, replaces punctuation with spaces, collapses
// whitespace and lowercases. Multi-word keywords stay matchable because
// punctuation turns into spaces instead of vanishing.
func cleanBiasText(text string) string {
	text = biasURLRe.ReplaceAllString(text, "")
	text = nonWordRe.ReplaceAllString(text, " ")
	text = biasSpacesRe.ReplaceAllString(text, " ")
	return strings.ToLower(strings.TrimSpace(text))
}

func (s *Scorer) keywordScores(text string) KeywordScores {
	left := 0
	for _, kw := range leftKeywords {
		if strings.Contains(text, kw) {
			left++
		}
	}
	right := 0
	for _, kw := range rightKeywords {
		if strings.Contains(text, kw) {
			right++
		}
	}

	total := left + right
	if total == 0 {
		return KeywordScores{NeutralScore: 1.0}
	}

	leftScore := float64(left) / float64(total)
	rightScore := float64(right) / float64(total)
	return KeywordScores{
		LeftScore:    leftScore,
		RightScore:   rightScore,
		NeutralScore: 1.0 - (leftScore + rightScore),
	}
}

func (s *Scorer) sentimentScores(text string) SentimentScores {
	scores := s.vader.PolarityScores(text)
	return SentimentScores{
		Positive: scores.Positive,
		Negative: scores.Negative,
		Neutral:  scores.Neutral,
		Compound: scores.Compound,
	}
}

func (s *Scorer) modelScores(ctx context.Context, text string) (ModelScores, error) {
	if s.classifier == nil || !s.classifier.Available() {
		return ModelScores{}, nil
	}

	if runes := []rune(text); len(runes) > modelInputRunes {
		text = string(runes[:modelInputRunes])
	}

	label, score, err := s.classifier.Classify(ctx, text)
	if err != nil {
		logger.Error("Bias model classification failed", "error", err)
		return ModelScores{}, err
	}
	return ModelScores{Score: labelToScore(label), Confidence: score}, nil
}

// labelToScore maps a sentiment label onto the bias axis. Unknown labels
// count as positive, matching the three-class models this runs against.
func labelToScore(label string) float64 {
	switch strings.ToLower(label) {
	case "label_0", "negative":
		return -0.5
	case "label_1", "neutral":
		return 0.0
	default:
		return 0.5
	}
}

func combineScores(keyword KeywordScores, sentiment SentimentScores, modelScores ModelScores) float64 {
	keywordScore := keyword.RightScore - keyword.LeftScore
	sentimentScore := sentiment.Compound * 0.5

	combined := keywordWeight*keywordScore + sentimentWeight*sentimentScore + modelWeight*modelScores.Score
	return math.Max(-1.0, math.Min(1.0, combined))
}

func categorize(score float64) string {
	switch {
	case score < -0.2:
		return CategoryLeft
	case score > 0.2:
		return CategoryRight
	default:
		return CategoryNeutral
	}
}

// confidence averages how strongly the three signals committed, capped
// at 1.
func confidence(keyword KeywordScores, sentiment SentimentScores, modelScores ModelScores) float64 {
	keywordStrength := math.Abs(keyword.LeftScore - keyword.RightScore)
	sentimentStrength := math.Abs(sentiment.Compound)

	avg := (keywordStrength + sentimentStrength + modelScores.Confidence) / 3
	return math.Min(1.0, avg)
}
