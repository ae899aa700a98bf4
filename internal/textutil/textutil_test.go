package textutil

import (
	"reflect"
	"testing"
)

func TestSentences(t *testing.T) {
	got := Sentences("Markets rallied today. Investors cheered! Will it last?")
	want := []string{"Markets rallied today.", "Investors cheered!", "Will it last?"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sentences() = %v, want %v", got, want)
	}
}

func TestSentences_TrailingFragment(t *testing.T) {
	got := Sentences("First sentence. And a trailing fragment without a period")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(got), got)
	}
	if got[1] != "And a trailing fragment without a period" {
		t.Errorf("unexpected trailing fragment: %q", got[1])
	}
}

func TestSentences_Empty(t *testing.T) {
	if got := Sentences("   "); len(got) != 0 {
		t.Errorf("expected no sentences for blank input, got %v", got)
	}
}

func TestWords_MinLength(t *testing.T) {
	got := Words("The Fed raised interest rates on Wednesday", 4)
	want := []string{"raised", "interest", "rates", "wednesday"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Words() = %v, want %v", got, want)
	}
}

func TestTruncateWords(t *testing.T) {
	text := "one two three four five"

	kept, cut := TruncateWords(text, 3)
	if !cut || kept != "one two three" {
		t.Errorf("TruncateWords(3) = %q, cut=%v", kept, cut)
	}

	kept, cut = TruncateWords(text, 10)
	if cut || kept != text {
		t.Errorf("TruncateWords(10) should keep everything, got %q, cut=%v", kept, cut)
	}
}

func TestWordCount(t *testing.T) {
	if n := WordCount("  a  b   c "); n != 3 {
		t.Errorf("WordCount = %d, want 3", n)
	}
}
