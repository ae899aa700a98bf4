package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/newslens/newslens/internal/logger"
)

// Provider names understood by the limiter.
const (
	Gemini      = "gemini"
	OpenAI      = "openai"
	HuggingFace = "huggingface"
)

// ErrBudgetExhausted marks a request rejected by a spent daily budget, as
// opposed to a provider failure.
var ErrBudgetExhausted = errors.New("daily AI budget exhausted")

// Limiter enforces daily request budgets for the AI providers. A limit of
// zero means unlimited. Counters reset 24 hours after the limiter is created
// and every 24 hours after that.
type Limiter struct {
	mu        sync.Mutex
	used      map[string]int
	limits    map[string]int
	totalUsed int
	maxTotal  int
	resetTime time.Time
	now       func() time.Time
}

// New creates a limiter with per-provider budgets and an overall budget.
func New(limits map[string]int, maxTotal int) *Limiter {
	l := &Limiter{
		used:     make(map[string]int),
		limits:   make(map[string]int, len(limits)),
		maxTotal: maxTotal,
		now:      time.Now,
	}
	for provider, limit := range limits {
		l.limits[provider] = limit
	}
	l.resetTime = l.now().Add(24 * time.Hour)
	return l
}

// Allow reports whether a request to the provider would stay within budget.
func (l *Limiter) Allow(provider string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()

	if limit := l.limits[provider]; limit > 0 && l.used[provider] >= limit {
		logger.Warn("provider rate limit reached",
			"provider", provider, "used", l.used[provider], "limit", limit)
		return false
	}

	if l.maxTotal > 0 && l.totalUsed >= l.maxTotal {
		logger.Warn("total AI rate limit reached",
			"used", l.totalUsed, "limit", l.maxTotal)
		return false
	}

	return true
}

// Use records one request against the provider's budget.
func (l *Limiter) Use(provider string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()

	if limit := l.limits[provider]; limit > 0 && l.used[provider] >= limit {
		return fmt.Errorf("%s: %w", provider, ErrBudgetExhausted)
	}

	if l.maxTotal > 0 && l.totalUsed >= l.maxTotal {
		return fmt.Errorf("total: %w", ErrBudgetExhausted)
	}

	l.used[provider]++
	l.totalUsed++

	logger.Debug("AI usage recorded",
		"provider", provider, "used", l.used[provider], "total", l.totalUsed)

	return nil
}

// GetStats returns current usage and limits per provider.
func (l *Limiter) GetStats() map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := map[string]interface{}{
		"total_used":  l.totalUsed,
		"total_limit": l.maxTotal,
		"reset_time":  l.resetTime.Format(time.RFC3339),
	}
	for provider, limit := range l.limits {
		stats[provider+"_used"] = l.used[provider]
		stats[provider+"_limit"] = limit
	}
	return stats
}

// checkReset clears the counters once the daily window has passed. Callers
// must hold the mutex.
func (l *Limiter) checkReset() {
	if l.now().After(l.resetTime) {
		logger.Info("resetting AI rate limiter counters", "total_used", l.totalUsed)
		l.used = make(map[string]int)
		l.totalUsed = 0
		l.resetTime = l.now().Add(24 * time.Hour)
	}
}
