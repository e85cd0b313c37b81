package retrieval

import (
	"github.com/docground/docground/internal/embed"
	"github.com/docground/docground/internal/index"
)

// Engine identifies which search tier produced a result.
type Engine string

const (
	// EngineEmbeddings is the semantic tier (cosine over cached vectors).
	EngineEmbeddings Engine = "embeddings"
	// EngineBM25 is the lexical fallback tier.
	EngineBM25 Engine = "bm25"
	// EngineNone means no tier produced results.
	EngineNone Engine = ""
)

// excerptMaxRunes bounds the body excerpt in structured search results.
const excerptMaxRunes = 500

// Result is one structured search hit, for UI and observability rather than
// prompt injection.
type Result struct {
	Title      string  `json:"title"`
	Excerpt    string  `json:"excerpt"`
	SourceFile string  `json:"source_file"`
	Score      float64 `json:"score"`
	Engine     Engine  `json:"engine"`
}

// ReloadStats reports the outcome of a corpus reload.
type ReloadStats struct {
	SectionsIndexed  int               `json:"sections_indexed"`
	FilesIndexed     int               `json:"files_indexed"`
	UniqueTokens     int               `json:"unique_tokens"`
	AvgSectionLength float64           `json:"avg_section_length"`
	Embeddings       *embed.BuildStats `json:"embeddings,omitempty"`
}

// Stats is the observability snapshot of the engine.
type Stats struct {
	Engine            string  `json:"engine"`
	EmbeddingEngine   string  `json:"embedding_engine"`
	EmbeddingSections int     `json:"embedding_sections"`
	SectionsIndexed   int     `json:"sections_indexed"`
	FilesIndexed      int     `json:"files_indexed"`
	UniqueTokens      int     `json:"unique_tokens"`
	AvgDocLength      float64 `json:"avg_doc_length"`
	Available         bool    `json:"available"`
}

// snapshot is the immutable view of one full index build. The coordinator
// publishes a new snapshot per reload via atomic pointer swap; readers never
// see partial state.
type snapshot struct {
	sections []*index.Section
	byID     map[string]*index.Section
	docFreq  map[string]int
	avgLen   float64
	files    int
}

// scored pairs a section with the score its tier assigned.
type scored struct {
	section *index.Section
	score   float64
}
