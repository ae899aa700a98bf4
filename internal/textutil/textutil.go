// Package textutil provides the small text helpers shared by the
// clustering and summarization packages.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var wordRe = regexp.MustCompile(`[a-zA-Z]+`)

// Sentences splits text into sentences on ./!/? boundaries followed by
// whitespace or end of input. Naive on abbreviations, which is acceptable
// for headline-grade text.
func Sentences(text string) []string {
	var out []string
	var b strings.Builder

	runes := []rune(strings.TrimSpace(text))
	for i, r := range runes {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				if s := strings.TrimSpace(b.String()); s != "" {
					out = append(out, s)
				}
				b.Reset()
			}
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}
	return out
}

// Words returns lowercase alphabetic tokens with at least minLen letters,
// in order of appearance.
func Words(text string, minLen int) []string {
	matches := wordRe.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) >= minLen {
			out = append(out, strings.ToLower(m))
		}
	}
	return out
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// TruncateWords keeps at most n leading words. The second return value
// reports whether anything was cut.
func TruncateWords(text string, n int) (string, bool) {
	words := strings.Fields(text)
	if len(words) <= n {
		return text, false
	}
	return strings.Join(words[:n], " "), true
}
