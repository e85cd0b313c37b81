// Package index parses a directory of markdown files into scored sections.
//
// Files are split on ##/### headers; each (header, body) pair becomes a
// Section with a stemmed term-frequency map. The package also produces the
// corpus-wide document-frequency table and average section length that BM25
// scoring needs.
package index

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	dgerrors "github.com/docground/docground/internal/errors"
)

// minBodyChars is the minimum trimmed body length for a section to be
// indexed. Shorter sections are stub headers with no real content.
const minBodyChars = 50

// headerRegex matches ## and ### markdown headers at the start of a line.
var headerRegex = regexp.MustCompile(`^(##|###)\s+(.+)$`)

// Result holds the output of a full corpus index build.
type Result struct {
	// Sections in corpus scan order (sorted file name, top to bottom).
	Sections []*Section

	// DocFreq counts, per stemmed term, the sections containing it.
	DocFreq map[string]int

	// AvgSectionLength is the mean per-section term count, 1.0 when the
	// corpus is empty so downstream division stays valid.
	AvgSectionLength float64

	// FilesIndexed is the number of files read and parsed: every readable
	// non-underscore *.md file, whether or not its sections survived the
	// minimum-body filter.
	FilesIndexed int
}

// Index parses every *.md file under corpusDir into sections.
//
// Files are visited in sorted order; files whose name starts with "_" are
// skipped (drafts and includes). Unreadable files are logged and skipped
// without aborting the build. Only a missing or unreadable corpus directory
// is an error.
func Index(corpusDir string) (*Result, error) {
	pattern := filepath.Join(corpusDir, "*.md")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, dgerrors.Wrap(err, dgerrors.ErrCodeCorpusDirNotFound,
			dgerrors.CategoryIO, fmt.Sprintf("cannot list corpus %s", corpusDir))
	}
	if _, err := os.Stat(corpusDir); err != nil {
		return nil, dgerrors.Wrap(err, dgerrors.ErrCodeCorpusDirNotFound,
			dgerrors.CategoryIO, fmt.Sprintf("corpus directory %s", corpusDir)).
			WithSuggestion("create the corpus directory or set DOCGROUND_CORPUS_DIR")
	}
	sort.Strings(matches)

	res := &Result{DocFreq: make(map[string]int)}

	for _, path := range matches {
		name := filepath.Base(path)
		if strings.HasPrefix(name, "_") {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("corpus_file_skipped",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		res.FilesIndexed++
		res.Sections = append(res.Sections, parseFile(stem, string(data))...)
	}

	var totalTerms int
	for _, sec := range res.Sections {
		totalTerms += sec.TermCount
		for term := range sec.Terms {
			res.DocFreq[term]++
		}
	}

	if len(res.Sections) > 0 {
		res.AvgSectionLength = float64(totalTerms) / float64(len(res.Sections))
	} else {
		res.AvgSectionLength = 1.0
	}

	slog.Info("corpus_indexed",
		slog.String("dir", corpusDir),
		slog.Int("files", res.FilesIndexed),
		slog.Int("sections", len(res.Sections)),
		slog.Int("unique_terms", len(res.DocFreq)),
		slog.Float64("avg_section_length", res.AvgSectionLength))

	return res, nil
}

// parseFile splits markdown content into sections on ##/### headers.
// Text before the first header carries no title and is not indexed; each
// body runs until the next header or end of file.
func parseFile(sourceFile, content string) []*Section {
	lines := strings.Split(content, "\n")

	var sections []*Section
	var title string
	var body strings.Builder
	seenHeader := false

	flush := func() {
		if !seenHeader {
			return
		}
		if sec := buildSection(sourceFile, title, body.String()); sec != nil {
			sections = append(sections, sec)
		}
	}

	for _, line := range lines {
		if m := headerRegex.FindStringSubmatch(line); m != nil {
			flush()
			title = strings.TrimSpace(m[2])
			body.Reset()
			seenHeader = true
			continue
		}
		if seenHeader {
			body.WriteString(line)
			body.WriteString("\n")
		}
	}
	flush()

	return sections
}

// buildSection creates a Section, or nil when the trimmed body is too short.
func buildSection(sourceFile, title, rawBody string) *Section {
	bodyText := strings.TrimSpace(rawBody)
	if utf8.RuneCountInString(bodyText) < minBodyChars {
		return nil
	}

	// Title repeated titleWeight times so header terms get 4x the
	// term frequency of identical body terms.
	weighted := strings.Repeat(title+" ", titleWeight) + bodyText
	terms := TermFrequencies(weighted)

	var count int
	for _, tf := range terms {
		count += tf
	}

	return &Section{
		ID:         SectionID(sourceFile, title),
		Title:      title,
		Body:       bodyText,
		SourceFile: sourceFile,
		Terms:      terms,
		TermCount:  count,
	}
}
