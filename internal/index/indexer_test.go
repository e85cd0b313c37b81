package index

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpusFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// longBody pads a sentence past the minimum section length.
func longBody(sentence string) string {
	return sentence + " " + strings.Repeat("padding content for the section body. ", 3)
}

func TestIndex_SplitsOnHeaders(t *testing.T) {
	// Given: one file with ## and ### sections
	dir := t.TempDir()
	writeCorpusFile(t, dir, "guide.md", `# Guide

Intro text before the first section header is not indexed at all.

## Installation

`+longBody("Run the installer and follow the prompts.")+`

### Configuration

`+longBody("Edit the config file and restart the service.")+`
`)

	// When: I index the corpus
	res, err := Index(dir)

	// Then: two sections, preamble discarded
	require.NoError(t, err)
	require.Len(t, res.Sections, 2)
	assert.Equal(t, "Installation", res.Sections[0].Title)
	assert.Equal(t, "Configuration", res.Sections[1].Title)
	assert.Equal(t, 1, res.FilesIndexed)
	assert.Equal(t, "guide", res.Sections[0].SourceFile)
}

func TestIndex_SkipsShortSections(t *testing.T) {
	// Given: a section whose body is under the minimum length
	dir := t.TempDir()
	writeCorpusFile(t, dir, "stub.md", `## Stub

Too short.

## Real Section

`+longBody("This body is long enough to be indexed as a section.")+`
`)

	res, err := Index(dir)

	require.NoError(t, err)
	require.Len(t, res.Sections, 1)
	assert.Equal(t, "Real Section", res.Sections[0].Title)
}

func TestIndex_CountsFilesWithoutSurvivingSections(t *testing.T) {
	// Given: a readable file whose only section is below the length floor
	dir := t.TempDir()
	writeCorpusFile(t, dir, "stubs.md", "## Stub\n\nToo short.\n")
	writeCorpusFile(t, dir, "real.md",
		"## Real Section\n\n"+longBody("This body is long enough to index.")+"\n")

	res, err := Index(dir)

	// Then: both files count as processed even though one yields nothing
	require.NoError(t, err)
	assert.Equal(t, 2, res.FilesIndexed)
	assert.Len(t, res.Sections, 1)
}

func TestIndex_SkipsUnderscoreFiles(t *testing.T) {
	// Given: a draft file next to a normal one
	dir := t.TempDir()
	body := "## Section\n\n" + longBody("Content of the section body goes here.")
	writeCorpusFile(t, dir, "_draft.md", body)
	writeCorpusFile(t, dir, "published.md", body)

	res, err := Index(dir)

	require.NoError(t, err)
	require.Len(t, res.Sections, 1)
	assert.Equal(t, "published", res.Sections[0].SourceFile)
	assert.Equal(t, 1, res.FilesIndexed, "skipped drafts are not processed files")
}

func TestIndex_MissingDirectory(t *testing.T) {
	_, err := Index(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestIndex_EmptyCorpus(t *testing.T) {
	// Given: an existing but empty directory
	res, err := Index(t.TempDir())

	// Then: a valid empty result with a safe average length
	require.NoError(t, err)
	assert.Empty(t, res.Sections)
	assert.Equal(t, 1.0, res.AvgSectionLength)
}

func TestIndex_TitleTermsWeighted(t *testing.T) {
	// Given: a title word that never appears in the body
	dir := t.TempDir()
	writeCorpusFile(t, dir, "pricing.md", `## Billing

`+longBody("Payment happens monthly via invoice and bank transfer.")+`
`)

	res, err := Index(dir)
	require.NoError(t, err)
	require.Len(t, res.Sections, 1)

	// Then: the title term carries the weight multiplier
	sec := res.Sections[0]
	assert.Equal(t, titleWeight, sec.Terms[Stem("billing")])
}

func TestIndex_Deterministic(t *testing.T) {
	// Given: the same corpus indexed twice
	dir := t.TempDir()
	writeCorpusFile(t, dir, "a.md", "## First\n\n"+longBody("Alpha section body content here."))
	writeCorpusFile(t, dir, "b.md", "## Second\n\n"+longBody("Beta section body content here."))

	res1, err1 := Index(dir)
	res2, err2 := Index(dir)

	require.NoError(t, err1)
	require.NoError(t, err2)

	// Then: identical section IDs in identical order
	require.Equal(t, len(res1.Sections), len(res2.Sections))
	for i := range res1.Sections {
		assert.Equal(t, res1.Sections[i].ID, res2.Sections[i].ID)
	}
	assert.Equal(t, res1.AvgSectionLength, res2.AvgSectionLength)
}

func TestSectionID_StableAndDistinct(t *testing.T) {
	assert.Equal(t, SectionID("file", "Title"), SectionID("file", "Title"))
	assert.NotEqual(t, SectionID("file", "Title"), SectionID("other", "Title"))
	assert.NotEqual(t, SectionID("file", "Title"), SectionID("file", "Other"))
	assert.Len(t, SectionID("file", "Title"), 16)
}

func TestSection_EmbeddingText(t *testing.T) {
	sec := &Section{Title: "Install", Body: "Run the installer."}
	assert.Equal(t, "Install\n\nRun the installer.", sec.EmbeddingText())
}
