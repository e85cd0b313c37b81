package index

import (
	"fmt"
	"hash/fnv"
)

// titleWeight is how many times the section title is repeated ahead of the
// body before tokenization, so header terms outweigh identical body terms.
const titleWeight = 4

// Section is one indexed unit of the knowledge corpus: a markdown header plus
// its body text. Sections are created in bulk during indexing and are
// immutable afterward; the whole set is replaced on reload, never patched.
type Section struct {
	// ID is a stable hash of SourceFile and Title, used as the embedding
	// cache key. It survives body edits, which is what makes incremental
	// cache builds possible.
	ID string

	// Title is the header text (## or ### level).
	Title string

	// Body is the trimmed section text.
	Body string

	// SourceFile is the originating file stem, for provenance display.
	SourceFile string

	// Terms maps stemmed tokens to their frequency within this section,
	// with title tokens counted titleWeight times.
	Terms map[string]int

	// TermCount is the sum of all term frequencies (the BM25 document
	// length), cached so scoring does not re-sum the map.
	TermCount int
}

// SectionID derives the stable cache key for a (sourceFile, title) pair.
func SectionID(sourceFile, title string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(sourceFile))
	_, _ = h.Write([]byte("::"))
	_, _ = h.Write([]byte(title))
	return fmt.Sprintf("%016x", h.Sum64())
}

// EmbeddingText returns the text embedded for this section.
func (s *Section) EmbeddingText() string {
	return s.Title + "\n\n" + s.Body
}
