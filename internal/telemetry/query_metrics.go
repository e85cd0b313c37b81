// Package telemetry collects local query metrics for the retrieval engine.
// All data stays on the local machine - there is no external reporting.
package telemetry

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Engine labels for recorded queries.
const (
	EngineEmbeddings = "embeddings"
	EngineBM25       = "bm25"
	EngineNone       = "none"
)

// LatencyBucket represents a latency histogram bucket.
type LatencyBucket string

const (
	BucketP10   LatencyBucket = "p10"   // <10ms
	BucketP50   LatencyBucket = "p50"   // 10-50ms
	BucketP100  LatencyBucket = "p100"  // 50-100ms
	BucketP500  LatencyBucket = "p500"  // 100-500ms
	BucketP1000 LatencyBucket = "p1000" // >=500ms
)

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	ms := d.Milliseconds()
	switch {
	case ms < 10:
		return BucketP10
	case ms < 50:
		return BucketP50
	case ms < 100:
		return BucketP100
	case ms < 500:
		return BucketP500
	default:
		return BucketP1000
	}
}

// QueryEvent represents a single query for telemetry recording.
type QueryEvent struct {
	Query       string
	Engine      string
	ResultCount int
	Latency     time.Duration
	Timestamp   time.Time
}

// IsZeroResult reports whether this query returned no results.
func (e QueryEvent) IsZeroResult() bool {
	return e.ResultCount == 0
}

// maxZeroResultQueries caps the zero-result ring buffer.
const maxZeroResultQueries = 100

// termCacheSize caps the distinct query terms tracked.
const termCacheSize = 2048

// QueryMetrics aggregates query telemetry in memory.
type QueryMetrics struct {
	mu sync.Mutex

	engineCounts  map[string]int
	latencyCounts map[LatencyBucket]int
	zeroResults   []string // ring buffer, newest last
	terms         *lru.Cache[string, int]
}

// NewQueryMetrics creates an empty metrics aggregator.
func NewQueryMetrics() *QueryMetrics {
	terms, _ := lru.New[string, int](termCacheSize)
	return &QueryMetrics{
		engineCounts:  make(map[string]int),
		latencyCounts: make(map[LatencyBucket]int),
		terms:         terms,
	}
}

// Record adds one query event to the aggregates.
func (m *QueryMetrics) Record(e QueryEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	engine := e.Engine
	if engine == "" {
		engine = EngineNone
	}
	m.engineCounts[engine]++
	m.latencyCounts[LatencyToBucket(e.Latency)]++

	if e.IsZeroResult() {
		m.zeroResults = append(m.zeroResults, e.Query)
		if len(m.zeroResults) > maxZeroResultQueries {
			m.zeroResults = m.zeroResults[len(m.zeroResults)-maxZeroResultQueries:]
		}
	}
}

// RecordTerms counts stemmed query terms for top-terms reporting.
func (m *QueryMetrics) RecordTerms(terms []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range terms {
		count, _ := m.terms.Get(t)
		m.terms.Add(t, count+1)
	}
}

// Summary is a point-in-time view of the aggregates.
type Summary struct {
	EngineCounts  map[string]int        `json:"engine_counts"`
	LatencyCounts map[LatencyBucket]int `json:"latency_counts"`
	ZeroResults   []string              `json:"zero_results"`
}

// Snapshot returns a copy of the current aggregates.
func (m *QueryMetrics) Snapshot() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summaryLocked()
}

// Drain returns the current aggregates and resets them. Persisting code must
// use Drain, not Snapshot: the SQLite store adds flushed counts to what it
// already holds, so flushing a cumulative snapshot twice would double-count.
func (m *QueryMetrics) Drain() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.summaryLocked()
	m.engineCounts = make(map[string]int)
	m.latencyCounts = make(map[LatencyBucket]int)
	m.zeroResults = nil
	return s
}

func (m *QueryMetrics) summaryLocked() Summary {
	s := Summary{
		EngineCounts:  make(map[string]int, len(m.engineCounts)),
		LatencyCounts: make(map[LatencyBucket]int, len(m.latencyCounts)),
		ZeroResults:   append([]string(nil), m.zeroResults...),
	}
	for k, v := range m.engineCounts {
		s.EngineCounts[k] = v
	}
	for k, v := range m.latencyCounts {
		s.LatencyCounts[k] = v
	}
	return s
}
