package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesFetched    int64
	DuplicatesFiltered int64
	TLDRsGenerated     int64
	CacheHits          int64
	CacheMisses        int64
	ClustersFormed     int64
	SummariesProduced  int64
	BiasAnalyses       int64
	ProviderErrors     int64

	// Timings
	LastPipelineTime    time.Duration
	AveragePipelineTime time.Duration
	TotalPipelineTime   time.Duration
	PipelineCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddArticlesFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesFetched += int64(n)
}

func (m *Metrics) AddDuplicatesFiltered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered += int64(n)
}

func (m *Metrics) IncrementTLDRsGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TLDRsGenerated++
}

func (m *Metrics) IncrementCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *Metrics) IncrementCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *Metrics) AddClustersFormed(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClustersFormed += int64(n)
}

func (m *Metrics) AddSummariesProduced(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesProduced += int64(n)
}

func (m *Metrics) IncrementBiasAnalyses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BiasAnalyses++
}

func (m *Metrics) IncrementProviderErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProviderErrors++
}

func (m *Metrics) RecordPipelineTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastPipelineTime = duration
	m.TotalPipelineTime += duration
	m.PipelineCount++

	if m.PipelineCount > 0 {
		m.AveragePipelineTime = m.TotalPipelineTime / time.Duration(m.PipelineCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_fetched":         m.ArticlesFetched,
		"duplicates_filtered":      m.DuplicatesFiltered,
		"tldrs_generated":          m.TLDRsGenerated,
		"cache_hits":               m.CacheHits,
		"cache_misses":             m.CacheMisses,
		"clusters_formed":          m.ClustersFormed,
		"summaries_produced":       m.SummariesProduced,
		"bias_analyses":            m.BiasAnalyses,
		"provider_errors":          m.ProviderErrors,
		"last_pipeline_time_ms":    m.LastPipelineTime.Milliseconds(),
		"average_pipeline_time_ms": m.AveragePipelineTime.Milliseconds(),
		"last_run_time":            m.LastRunTime.Format(time.RFC3339),
		"last_error_time":          m.LastErrorTime.Format(time.RFC3339),
		"last_error":               m.LastError,
		"is_healthy":               m.IsHealthy,
	}
}
