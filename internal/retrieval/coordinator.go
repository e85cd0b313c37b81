// Package retrieval composes the document indexer, BM25 scorer, embedding
// provider and embedding cache into the tiered search policy.
//
// Tier 1 is semantic: cosine similarity of the query embedding against every
// cached section vector. Tier 2 is the BM25 lexical fallback, used whenever
// the semantic tier is unavailable or produced nothing. Both tiers feed the
// same context-assembly step.
//
// All mutable state (the section snapshot and the embedding cache) is
// replaced wholesale behind atomic pointers, never mutated in place, so
// concurrent reads stay safe without locking.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/docground/docground/internal/config"
	"github.com/docground/docground/internal/embed"
	"github.com/docground/docground/internal/index"
	"github.com/docground/docground/internal/rank"
	"github.com/docground/docground/internal/telemetry"
)

// contextHeader announces the grounding block to the LLM prompt.
const contextHeader = "Relevant documentation for this request:\n\n"

// truncationMarker is appended when a section body is cut to fit the budget.
const truncationMarker = " [...]"

// Coordinator is the single entry point other subsystems talk to.
type Coordinator struct {
	cfg      config.RetrievalConfig
	embedder embed.Embedder // nil when the semantic tier is disabled
	cache    *embed.Cache   // nil when the semantic tier is disabled
	scorer   *rank.Scorer
	metrics  *telemetry.QueryMetrics // optional

	snap      atomic.Pointer[snapshot]
	rebuildMu sync.Mutex // serializes BuildEmbeddings/ReindexEmbeddings
	reloads   singleflight.Group
}

// New creates a coordinator. The embedder may be nil, which disables the
// semantic tier; everything else keeps working through BM25.
//
// The corpus is not indexed here; call Reload to load it.
func New(cfg *config.Config, embedder embed.Embedder) *Coordinator {
	c := &Coordinator{
		cfg:      cfg.Retrieval,
		embedder: embedder,
		scorer:   rank.NewScorer(rank.DefaultK1, rank.DefaultB, cfg.Retrieval.MinScore),
	}

	if embedder != nil {
		c.cache = embed.Load(cfg.Embeddings.CachePath,
			embedder.ProviderName(), embedder.ModelName())
	}

	empty := &snapshot{
		byID:    make(map[string]*index.Section),
		docFreq: make(map[string]int),
		avgLen:  1.0,
	}
	c.snap.Store(empty)
	return c
}

// SetMetrics attaches a query-metrics aggregator. Optional; nil disables
// recording.
func (c *Coordinator) SetMetrics(m *telemetry.QueryMetrics) {
	c.metrics = m
}

// Reload fully re-runs the indexer over corpusDir and atomically replaces
// the section snapshot. When an embedding provider is configured, the cache
// is then built incrementally so it catches up to the new corpus.
//
// Concurrent Reload calls for the same directory collapse into one run.
func (c *Coordinator) Reload(ctx context.Context, corpusDir string) (*ReloadStats, error) {
	v, err, _ := c.reloads.Do(corpusDir, func() (any, error) {
		return c.reload(ctx, corpusDir)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ReloadStats), nil
}

func (c *Coordinator) reload(ctx context.Context, corpusDir string) (*ReloadStats, error) {
	res, err := index.Index(corpusDir)
	if err != nil {
		return nil, err
	}

	next := &snapshot{
		sections: res.Sections,
		byID:     make(map[string]*index.Section, len(res.Sections)),
		docFreq:  res.DocFreq,
		avgLen:   res.AvgSectionLength,
		files:    res.FilesIndexed,
	}
	for _, sec := range res.Sections {
		next.byID[sec.ID] = sec
	}
	c.snap.Store(next)

	stats := &ReloadStats{
		SectionsIndexed:  len(res.Sections),
		FilesIndexed:     res.FilesIndexed,
		UniqueTokens:     len(res.DocFreq),
		AvgSectionLength: res.AvgSectionLength,
	}

	if c.embedder != nil {
		buildStats, err := c.BuildEmbeddings(ctx)
		if err != nil {
			// Embedding failures degrade the semantic tier; the fresh
			// lexical index is still fully usable.
			slog.Warn("embed_cache_build_failed_after_reload",
				slog.String("error", err.Error()))
		} else {
			stats.Embeddings = &buildStats
		}
	}

	return stats, nil
}

// BuildEmbeddings incrementally aligns the embedding cache with the current
// snapshot. Serialized: concurrent calls queue behind the rebuild mutex
// rather than interleaving cache writes.
func (c *Coordinator) BuildEmbeddings(ctx context.Context) (embed.BuildStats, error) {
	if c.embedder == nil {
		return embed.BuildStats{}, fmt.Errorf("no embedding provider configured")
	}

	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()

	return c.cache.Build(ctx, c.snap.Load().sections, c.embedder)
}

// ReindexEmbeddings discards all cached vectors and rebuilds from scratch.
func (c *Coordinator) ReindexEmbeddings(ctx context.Context) (embed.BuildStats, error) {
	if c.embedder == nil {
		return embed.BuildStats{}, fmt.Errorf("no embedding provider configured")
	}

	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()

	return c.cache.Reindex(ctx, c.snap.Load().sections, c.embedder)
}

// Retrieve returns a character-bounded context string for prompt injection,
// or "" when nothing relevant was found. Callers must treat "" as "no
// context", never as an error.
func (c *Coordinator) Retrieve(ctx context.Context, query string, topK, maxChars int) string {
	if topK <= 0 {
		topK = c.cfg.TopK
	}
	if maxChars <= 0 {
		maxChars = c.cfg.MaxContextChars
	}

	start := time.Now()
	selected, engine := c.selectSections(ctx, query, topK)
	c.record(query, engine, len(selected), time.Since(start))

	if len(selected) == 0 {
		return ""
	}
	return assembleContext(selected, maxChars)
}

// Search returns structured, excerpt-truncated results tagged with the
// engine that produced them.
func (c *Coordinator) Search(ctx context.Context, query string, topK int) []Result {
	if topK <= 0 {
		topK = c.cfg.TopK
	}

	start := time.Now()
	selected, engine := c.selectSections(ctx, query, topK)
	c.record(query, engine, len(selected), time.Since(start))

	results := make([]Result, 0, len(selected))
	for _, m := range selected {
		results = append(results, Result{
			Title:      m.section.Title,
			Excerpt:    truncateRunes(m.section.Body, excerptMaxRunes),
			SourceFile: m.section.SourceFile,
			Score:      m.score,
			Engine:     engine,
		})
	}
	return results
}

// Stats returns the observability snapshot.
func (c *Coordinator) Stats() Stats {
	snap := c.snap.Load()

	s := Stats{
		Engine:          string(EngineBM25),
		EmbeddingEngine: "none",
		SectionsIndexed: len(snap.sections),
		FilesIndexed:    snap.files,
		UniqueTokens:    len(snap.docFreq),
		AvgDocLength:    snap.avgLen,
		Available:       len(snap.sections) > 0,
	}

	if c.embedder != nil {
		s.EmbeddingEngine = c.embedder.ProviderName() + "/" + c.embedder.ModelName()
		s.EmbeddingSections = c.cache.Len()
		if s.EmbeddingSections > 0 {
			s.Engine = string(EngineEmbeddings)
		}
	}
	return s
}

// selectSections runs the tiered policy and returns the chosen sections in
// rank order together with the engine that produced them.
func (c *Coordinator) selectSections(ctx context.Context, query string, topK int) ([]scored, Engine) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, EngineNone
	}

	snap := c.snap.Load()
	if len(snap.sections) == 0 {
		return nil, EngineNone
	}

	// Tier 1: semantic, when a provider is configured and the cache holds
	// vectors. Any failure here degrades to Tier 2, never to an error.
	if c.embedder != nil && c.cache.Len() > 0 {
		if hits := c.semanticSearch(ctx, snap, query, topK); len(hits) > 0 {
			return hits, EngineEmbeddings
		}
	}

	// Tier 2: BM25 lexical fallback.
	tokens := index.Tokenize(query)
	if len(tokens) == 0 {
		return nil, EngineNone
	}
	if c.metrics != nil {
		c.metrics.RecordTerms(tokens)
	}

	matches := c.scorer.Rank(tokens, snap.sections, snap.docFreq, snap.avgLen, topK)
	if len(matches) == 0 {
		return nil, EngineNone
	}

	hits := make([]scored, len(matches))
	for i, m := range matches {
		hits[i] = scored{section: m.Section, score: m.Score}
	}
	return hits, EngineBM25
}

// semanticSearch embeds the query and ranks cached vectors by cosine
// similarity, keeping only similarities strictly above the threshold.
func (c *Coordinator) semanticSearch(ctx context.Context, snap *snapshot, query string, topK int) []scored {
	qvec, err := c.embedder.EmbedQuery(ctx, query)
	if err != nil {
		slog.Warn("semantic_tier_degraded",
			slog.String("error", err.Error()))
		return nil
	}

	var hits []scored
	for id, vec := range c.cache.Snapshot() {
		sec, ok := snap.byID[id]
		if !ok {
			// Cache entry for a section no longer in the snapshot;
			// the next build will prune it.
			continue
		}
		sim := Cosine(qvec, vec)
		if sim > c.cfg.SimilarityThreshold {
			hits = append(hits, scored{section: sec, score: sim})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// record feeds the optional telemetry aggregator.
func (c *Coordinator) record(query string, engine Engine, results int, latency time.Duration) {
	if c.metrics == nil {
		return
	}
	e := string(engine)
	if e == "" {
		e = telemetry.EngineNone
	}
	c.metrics.Record(telemetry.QueryEvent{
		Query:       query,
		Engine:      e,
		ResultCount: results,
		Latency:     latency,
		Timestamp:   time.Now(),
	})
}

// assembleContext renders selected sections into the bounded context string.
//
// Sections are appended in rank order. When the next block would exceed the
// budget its body is truncated to the remaining characters and assembly
// stops; later, possibly shorter sections are not considered. If not even a
// truncated first block fits, the result is "" rather than a bare header.
func assembleContext(selected []scored, maxChars int) string {
	var b strings.Builder
	b.WriteString(contextHeader)
	used := utf8.RuneCountInString(contextHeader)

	wrote := 0
	for _, m := range selected {
		sep := ""
		if wrote > 0 {
			sep = "\n\n"
		}
		blockHead := fmt.Sprintf("%s## %s (%s)\n", sep, m.section.Title, m.section.SourceFile)
		headLen := utf8.RuneCountInString(blockHead)
		bodyLen := utf8.RuneCountInString(m.section.Body)

		if used+headLen+bodyLen <= maxChars {
			b.WriteString(blockHead)
			b.WriteString(m.section.Body)
			used += headLen + bodyLen
			wrote++
			continue
		}

		// Truncate this section to the remaining budget, then stop.
		bodyBudget := maxChars - used - headLen
		if bodyBudget > 0 {
			b.WriteString(blockHead)
			b.WriteString(truncateRunes(m.section.Body, bodyBudget))
			b.WriteString(truncationMarker)
			wrote++
		}
		break
	}

	if wrote == 0 {
		return ""
	}
	return b.String()
}

// truncateRunes cuts s to at most n runes without splitting a codepoint.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
