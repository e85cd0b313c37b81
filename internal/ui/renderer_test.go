package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docground/docground/internal/embed"
	"github.com/docground/docground/internal/retrieval"
)

func newBufferRenderer() (*Renderer, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(&buf, true), &buf
}

func TestRenderer_Results(t *testing.T) {
	r, buf := newBufferRenderer()

	r.Results("billing", []retrieval.Result{
		{Title: "Billing and Invoices", SourceFile: "billing", Score: 2.431, Engine: "bm25", Excerpt: "Invoices are issued monthly.\nRefunds take five days."},
		{Title: "Тарифы", SourceFile: "tariffs", Score: 1.072, Engine: "bm25"},
	})

	out := buf.String()
	assert.Contains(t, out, `Results for "billing" (2)`)
	assert.Contains(t, out, "1. Billing and Invoices")
	assert.Contains(t, out, "[2.431 bm25]")
	assert.Contains(t, out, "billing")
	assert.Contains(t, out, "   Invoices are issued monthly.")
	assert.Contains(t, out, "   Refunds take five days.")
	assert.Contains(t, out, "2. Тарифы")
}

func TestRenderer_ResultsEmpty(t *testing.T) {
	r, buf := newBufferRenderer()

	r.Results("quantum", nil)

	assert.Contains(t, buf.String(), "No results for: quantum")
}

func TestRenderer_Context(t *testing.T) {
	r, buf := newBufferRenderer()

	r.Context("Relevant documentation for this request:\n\n## Billing (billing)\nBody.")

	assert.Contains(t, buf.String(), "## Billing (billing)")
}

func TestRenderer_ContextEmpty(t *testing.T) {
	r, buf := newBufferRenderer()

	r.Context("")

	assert.Contains(t, buf.String(), "No relevant documentation found.")
}

func TestRenderer_Stats(t *testing.T) {
	r, buf := newBufferRenderer()

	r.Stats(retrieval.Stats{
		Engine:            "embeddings",
		EmbeddingEngine:   "gemini",
		Available:         true,
		SectionsIndexed:   42,
		FilesIndexed:      7,
		UniqueTokens:      913,
		AvgDocLength:      38.5,
		EmbeddingSections: 42,
	})

	out := buf.String()
	assert.Contains(t, out, "Engine")
	assert.Contains(t, out, "embeddings")
	assert.Contains(t, out, "gemini")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "38.5 terms")
}

func TestRenderer_Reload(t *testing.T) {
	r, buf := newBufferRenderer()

	r.Reload(&retrieval.ReloadStats{
		SectionsIndexed: 12,
		FilesIndexed:    3,
		UniqueTokens:    240,
		Embeddings:      &embed.BuildStats{Cached: 10, New: 2, StaleRemoved: 1, Total: 12},
	})

	out := buf.String()
	assert.Contains(t, out, "12 sections from 3 files (240 unique tokens)")
	assert.Contains(t, out, "10 cached, 2 new, 1 stale removed (12 total)")
}

func TestRenderer_ReloadWithoutEmbeddings(t *testing.T) {
	r, buf := newBufferRenderer()

	r.Reload(&retrieval.ReloadStats{SectionsIndexed: 5, FilesIndexed: 2, UniqueTokens: 80})

	assert.NotContains(t, buf.String(), "Embeddings")
}

func TestRenderer_NoColorForNonTerminal(t *testing.T) {
	// A plain buffer is not a terminal, so even with noColor=false the
	// output must carry no ANSI escapes.
	var buf bytes.Buffer
	r := New(&buf, false)

	r.Successf("done in %dms", 12)

	assert.Equal(t, "done in 12ms\n", buf.String())
}
