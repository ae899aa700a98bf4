package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinBudget(t *testing.T) {
	l := New(map[string]int{Gemini: 2}, 0)

	if !l.Allow(Gemini) {
		t.Fatal("expected first request to be allowed")
	}
}

func TestUseExhaustsProviderBudget(t *testing.T) {
	l := New(map[string]int{Gemini: 2}, 0)

	if err := l.Use(Gemini); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Use(Gemini); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if l.Allow(Gemini) {
		t.Error("expected provider budget to be exhausted")
	}
	if err := l.Use(Gemini); err == nil {
		t.Error("expected an error once the provider budget is spent")
	}
}

func TestProviderBudgetsAreIndependent(t *testing.T) {
	l := New(map[string]int{Gemini: 1, OpenAI: 1}, 0)

	if err := l.Use(Gemini); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !l.Allow(OpenAI) {
		t.Error("spending the gemini budget should not block openai")
	}
}

func TestTotalBudgetCapsAllProviders(t *testing.T) {
	l := New(map[string]int{Gemini: 10, OpenAI: 10}, 1)

	if err := l.Use(Gemini); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if l.Allow(OpenAI) {
		t.Error("total budget should cap every provider")
	}
}

func TestZeroLimitMeansUnlimited(t *testing.T) {
	l := New(map[string]int{Gemini: 0}, 0)

	for i := 0; i < 50; i++ {
		if err := l.Use(Gemini); err != nil {
			t.Fatalf("unexpected error on request %d: %v", i, err)
		}
	}
}

func TestDailyReset(t *testing.T) {
	l := New(map[string]int{Gemini: 1}, 0)
	base := time.Now()
	l.now = func() time.Time { return base }
	l.resetTime = base.Add(24 * time.Hour)

	if err := l.Use(Gemini); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Allow(Gemini) {
		t.Fatal("budget should be spent before the reset")
	}

	l.now = func() time.Time { return base.Add(25 * time.Hour) }

	if !l.Allow(Gemini) {
		t.Error("expected counters to reset after the daily window")
	}
}

func TestGetStats(t *testing.T) {
	l := New(map[string]int{Gemini: 5, HuggingFace: 3}, 10)

	if err := l.Use(Gemini); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats := l.GetStats()
	if stats["gemini_used"] != 1 {
		t.Errorf("gemini_used = %v, want 1", stats["gemini_used"])
	}
	if stats["gemini_limit"] != 5 {
		t.Errorf("gemini_limit = %v, want 5", stats["gemini_limit"])
	}
	if stats["huggingface_used"] != 0 {
		t.Errorf("huggingface_used = %v, want 0", stats["huggingface_used"])
	}
	if stats["total_used"] != 1 {
		t.Errorf("total_used = %v, want 1", stats["total_used"])
	}
	if stats["total_limit"] != 10 {
		t.Errorf("total_limit = %v, want 10", stats["total_limit"])
	}
}
