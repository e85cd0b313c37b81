// Package mcp exposes the retrieval engine to MCP clients over stdio.
package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docground/docground/internal/config"
	"github.com/docground/docground/internal/retrieval"
	"github.com/docground/docground/pkg/version"
)

const serverName = "docground"

// maxLimit caps the per-call result count requested by clients.
const maxLimit = 25

// Server bridges MCP clients with the retrieval coordinator.
type Server struct {
	mcp    *mcp.Server
	coord  *retrieval.Coordinator
	cfg    *config.Config
	logger *slog.Logger
}

// SearchInput is the input schema for the kb_search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query, English or Russian"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 3"`
}

// SearchResultOutput is one ranked hit.
type SearchResultOutput struct {
	Title      string  `json:"title" jsonschema:"section title"`
	Excerpt    string  `json:"excerpt" jsonschema:"section body excerpt"`
	SourceFile string  `json:"source_file" jsonschema:"markdown file the section came from"`
	Score      float64 `json:"score" jsonschema:"relevance score"`
	Engine     string  `json:"engine" jsonschema:"engine that produced the hit: embeddings or bm25"`
}

// SearchOutput is the output schema for the kb_search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results" jsonschema:"ranked results, may be empty"`
}

// RetrieveInput is the input schema for the kb_retrieve tool.
type RetrieveInput struct {
	Query    string `json:"query" jsonschema:"the question to ground"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of sections, default 3"`
	MaxChars int    `json:"max_chars,omitempty" jsonschema:"character budget for the context block, default 2500"`
}

// RetrieveOutput is the output schema for the kb_retrieve tool.
type RetrieveOutput struct {
	Context string `json:"context" jsonschema:"assembled documentation context, empty when nothing relevant"`
}

// StatsInput is the (empty) input schema for the kb_stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the kb_stats tool.
type StatsOutput struct {
	Engine            string  `json:"engine" jsonschema:"active retrieval engine"`
	EmbeddingEngine   string  `json:"embedding_engine" jsonschema:"configured embedding provider/model, or none"`
	SectionsIndexed   int     `json:"sections_indexed"`
	FilesIndexed      int     `json:"files_indexed"`
	UniqueTokens      int     `json:"unique_tokens"`
	AvgSectionLength  float64 `json:"avg_section_length"`
	EmbeddingSections int     `json:"embedding_sections"`
	Available         bool    `json:"available"`
}

// ReloadInput is the (empty) input schema for the kb_reload tool.
type ReloadInput struct{}

// ReloadOutput is the output schema for the kb_reload tool.
type ReloadOutput struct {
	SectionsIndexed int `json:"sections_indexed"`
	FilesIndexed    int `json:"files_indexed"`
	UniqueTokens    int `json:"unique_tokens"`
	EmbeddingsNew   int `json:"embeddings_new,omitempty"`
	EmbeddingsTotal int `json:"embeddings_total,omitempty"`
}

// BuildEmbeddingsInput is the input schema for the kb_build_embeddings tool.
type BuildEmbeddingsInput struct {
	Reindex bool `json:"reindex,omitempty" jsonschema:"discard cached vectors and rebuild from scratch"`
}

// BuildEmbeddingsOutput is the output schema for the kb_build_embeddings tool.
type BuildEmbeddingsOutput struct {
	Cached       int `json:"cached"`
	New          int `json:"new"`
	StaleRemoved int `json:"stale_removed"`
	Total        int `json:"total"`
}

// NewServer creates the MCP server and registers its tools.
func NewServer(coord *retrieval.Coordinator, cfg *config.Config) (*Server, error) {
	if coord == nil {
		return nil, errors.New("retrieval coordinator is required")
	}
	if cfg == nil {
		cfg = config.New()
	}

	s := &Server{
		coord:  coord,
		cfg:    cfg,
		logger: slog.Default(),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		nil,
	)
	s.registerTools()

	return s, nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "kb_search",
		Description: "Search the documentation knowledge base. Returns ranked section hits with excerpts. Queries may be English or Russian.",
	}, s.handleSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "kb_retrieve",
		Description: "Retrieve a character-bounded documentation context block for grounding an answer. Returns an empty context when nothing relevant is found.",
	}, s.handleRetrieve)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "kb_stats",
		Description: "Report index and embedding statistics: active engine, section counts, cache state.",
	}, s.handleStats)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "kb_reload",
		Description: "Re-index the corpus directory and refresh embeddings. Use after documentation files change.",
	}, s.handleReload)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "kb_build_embeddings",
		Description: "Build or rebuild the embedding cache for the current index. Requires a configured embedding provider.",
	}, s.handleBuildEmbeddings)

	s.logger.Info("mcp_tools_registered", slog.Int("count", 5))
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult,
	SearchOutput,
	error,
) {
	// Empty and degenerate queries are a defined no-result case, not an
	// error; the coordinator applies the same rule to stop-word-only input.
	if input.Query == "" {
		return nil, SearchOutput{Results: []SearchResultOutput{}}, nil
	}
	limit := clampLimit(input.Limit, s.cfg.Retrieval.TopK)

	start := time.Now()
	requestID := generateRequestID()
	results := s.coord.Search(ctx, input.Query, limit)

	s.logger.Info("kb_search_completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", time.Since(start)),
		slog.Int("result_count", len(results)))

	out := SearchOutput{Results: make([]SearchResultOutput, 0, len(results))}
	for _, r := range results {
		out.Results = append(out.Results, SearchResultOutput{
			Title:      r.Title,
			Excerpt:    r.Excerpt,
			SourceFile: r.SourceFile,
			Score:      r.Score,
			Engine:     string(r.Engine),
		})
	}
	return nil, out, nil
}

func (s *Server) handleRetrieve(ctx context.Context, _ *mcp.CallToolRequest, input RetrieveInput) (
	*mcp.CallToolResult,
	RetrieveOutput,
	error,
) {
	if input.Query == "" {
		return nil, RetrieveOutput{}, nil
	}
	limit := clampLimit(input.Limit, s.cfg.Retrieval.TopK)
	maxChars := input.MaxChars
	if maxChars <= 0 {
		maxChars = s.cfg.Retrieval.MaxContextChars
	}

	start := time.Now()
	requestID := generateRequestID()
	block := s.coord.Retrieve(ctx, input.Query, limit, maxChars)

	s.logger.Info("kb_retrieve_completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", time.Since(start)),
		slog.Int("context_chars", len(block)))

	return nil, RetrieveOutput{Context: block}, nil
}

func (s *Server) handleStats(_ context.Context, _ *mcp.CallToolRequest, _ StatsInput) (
	*mcp.CallToolResult,
	StatsOutput,
	error,
) {
	st := s.coord.Stats()
	return nil, StatsOutput{
		Engine:            st.Engine,
		EmbeddingEngine:   st.EmbeddingEngine,
		SectionsIndexed:   st.SectionsIndexed,
		FilesIndexed:      st.FilesIndexed,
		UniqueTokens:      st.UniqueTokens,
		AvgSectionLength:  st.AvgDocLength,
		EmbeddingSections: st.EmbeddingSections,
		Available:         st.Available,
	}, nil
}

func (s *Server) handleReload(ctx context.Context, _ *mcp.CallToolRequest, _ ReloadInput) (
	*mcp.CallToolResult,
	ReloadOutput,
	error,
) {
	start := time.Now()
	stats, err := s.coord.Reload(ctx, s.cfg.Corpus.Dir)
	if err != nil {
		s.logger.Error("kb_reload_failed",
			slog.String("error", err.Error()))
		return nil, ReloadOutput{}, err
	}

	s.logger.Info("kb_reload_completed",
		slog.Duration("duration", time.Since(start)),
		slog.Int("sections", stats.SectionsIndexed))

	out := ReloadOutput{
		SectionsIndexed: stats.SectionsIndexed,
		FilesIndexed:    stats.FilesIndexed,
		UniqueTokens:    stats.UniqueTokens,
	}
	if stats.Embeddings != nil {
		out.EmbeddingsNew = stats.Embeddings.New
		out.EmbeddingsTotal = stats.Embeddings.Total
	}
	return nil, out, nil
}

func (s *Server) handleBuildEmbeddings(ctx context.Context, _ *mcp.CallToolRequest, input BuildEmbeddingsInput) (
	*mcp.CallToolResult,
	BuildEmbeddingsOutput,
	error,
) {
	build := s.coord.BuildEmbeddings
	if input.Reindex {
		build = s.coord.ReindexEmbeddings
	}

	bs, err := build(ctx)
	if err != nil {
		s.logger.Error("kb_build_embeddings_failed",
			slog.String("error", err.Error()))
		return nil, BuildEmbeddingsOutput{}, err
	}

	return nil, BuildEmbeddingsOutput{
		Cached:       bs.Cached,
		New:          bs.New,
		StaleRemoved: bs.StaleRemoved,
		Total:        bs.Total,
	}, nil
}

// Serve runs the server over the given transport until ctx is cancelled.
// Only stdio is supported.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("mcp_server_starting",
		slog.String("transport", transport),
		slog.String("version", version.Version))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("mcp_server_stopped",
				slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("mcp_server_stopped")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

func clampLimit(n, def int) int {
	if n <= 0 {
		return def
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
