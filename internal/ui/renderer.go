// Package ui renders search results and engine statistics for the CLI.
// Color is applied only when writing to a terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/docground/docground/internal/retrieval"
)

// Renderer writes human-readable output for CLI commands.
type Renderer struct {
	out    io.Writer
	styles Styles
}

// New creates a renderer for out. Color is enabled only when out is a
// terminal and noColor is false.
func New(out io.Writer, noColor bool) *Renderer {
	if !noColor {
		noColor = !isTerminal(out)
	}
	return &Renderer{out: out, styles: GetStyles(noColor)}
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Results renders a ranked result list.
func (r *Renderer) Results(query string, results []retrieval.Result) {
	if len(results) == 0 {
		fmt.Fprintf(r.out, "%s\n", r.styles.Warning.Render("No results for: "+query))
		return
	}

	fmt.Fprintf(r.out, "%s\n\n",
		r.styles.Header.Render(fmt.Sprintf("Results for %q (%d)", query, len(results))))

	for i, res := range results {
		fmt.Fprintf(r.out, "%s %s  %s\n",
			r.styles.Title.Render(fmt.Sprintf("%d. %s", i+1, res.Title)),
			r.styles.Score.Render(fmt.Sprintf("[%.3f %s]", res.Score, res.Engine)),
			r.styles.Source.Render(res.SourceFile))

		excerpt := strings.TrimSpace(res.Excerpt)
		if excerpt != "" {
			for _, line := range strings.Split(excerpt, "\n") {
				fmt.Fprintf(r.out, "   %s\n", line)
			}
		}
		fmt.Fprintln(r.out)
	}
}

// Context renders an assembled context block, or a notice when empty.
func (r *Renderer) Context(context string) {
	if context == "" {
		fmt.Fprintf(r.out, "%s\n", r.styles.Warning.Render("No relevant documentation found."))
		return
	}
	fmt.Fprintln(r.out, context)
}

// Stats renders the engine statistics block.
func (r *Renderer) Stats(s retrieval.Stats) {
	sep := r.styles.Separator.Render(strings.Repeat("─", 40))

	fmt.Fprintf(r.out, "%s\n%s\n", r.styles.Header.Render("Engine"), sep)
	r.row("Active engine", s.Engine)
	r.row("Embedding engine", s.EmbeddingEngine)
	r.row("Available", fmt.Sprintf("%t", s.Available))

	fmt.Fprintf(r.out, "\n%s\n%s\n", r.styles.Header.Render("Index"), sep)
	r.row("Sections", fmt.Sprintf("%d", s.SectionsIndexed))
	r.row("Files", fmt.Sprintf("%d", s.FilesIndexed))
	r.row("Unique tokens", fmt.Sprintf("%d", s.UniqueTokens))
	r.row("Avg section length", fmt.Sprintf("%.1f terms", s.AvgDocLength))
	r.row("Embedded sections", fmt.Sprintf("%d", s.EmbeddingSections))
}

// Reload renders a reload/index summary.
func (r *Renderer) Reload(stats *retrieval.ReloadStats) {
	fmt.Fprintf(r.out, "%s %s\n",
		r.styles.Header.Render("Indexed"),
		r.styles.Value.Render(fmt.Sprintf("%d sections from %d files (%d unique tokens)",
			stats.SectionsIndexed, stats.FilesIndexed, stats.UniqueTokens)))

	if stats.Embeddings != nil {
		e := stats.Embeddings
		fmt.Fprintf(r.out, "%s %s\n",
			r.styles.Header.Render("Embeddings"),
			r.styles.Value.Render(fmt.Sprintf("%d cached, %d new, %d stale removed (%d total)",
				e.Cached, e.New, e.StaleRemoved, e.Total)))
	}
}

// Successf prints a formatted success line.
func (r *Renderer) Successf(format string, args ...any) {
	fmt.Fprintf(r.out, "%s\n", r.styles.Value.Render(fmt.Sprintf(format, args...)))
}

// Warningf prints a formatted warning line.
func (r *Renderer) Warningf(format string, args ...any) {
	fmt.Fprintf(r.out, "%s\n", r.styles.Warning.Render(fmt.Sprintf(format, args...)))
}

// Errorf prints a formatted error line.
func (r *Renderer) Errorf(format string, args ...any) {
	fmt.Fprintf(r.out, "%s\n", r.styles.Error.Render(fmt.Sprintf(format, args...)))
}

func (r *Renderer) row(label, value string) {
	fmt.Fprintf(r.out, "  %s %s\n",
		r.styles.Label.Render(fmt.Sprintf("%-20s", label+":")),
		r.styles.Value.Render(value))
}
