package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, "docs", cfg.Corpus.Dir)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, 2500, cfg.Retrieval.MaxContextChars)
	assert.Equal(t, 0.3, cfg.Retrieval.SimilarityThreshold)
	assert.Equal(t, 0.5, cfg.Retrieval.MinScore)
	assert.Empty(t, cfg.Embeddings.Provider, "semantic tier is opt-in")
	assert.Equal(t, 60*time.Second, cfg.Embeddings.Timeout)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	// Given: a config file overriding a few fields
	path := filepath.Join(t.TempDir(), "docground.yaml")
	yaml := `
corpus:
  dir: ./handbook
retrieval:
  top_k: 5
  max_context_chars: 1800
embeddings:
  provider: ollama
  model: nomic-embed-text
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	// When: I load it
	cfg, err := Load(path)

	// Then: overridden fields change, others keep defaults
	require.NoError(t, err)
	assert.Equal(t, "./handbook", cfg.Corpus.Dir)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 1800, cfg.Retrieval.MaxContextChars)
	assert.Equal(t, "ollama", cfg.Embeddings.Provider)
	assert.Equal(t, 0.5, cfg.Retrieval.MinScore, "untouched fields keep defaults")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	// Given: a file and an env var for the same field
	path := filepath.Join(t.TempDir(), "docground.yaml")
	require.NoError(t, os.WriteFile(path, []byte("corpus:\n  dir: from-file\n"), 0o644))
	t.Setenv("DOCGROUND_CORPUS_DIR", "from-env")
	t.Setenv("DOCGROUND_TOP_K", "7")

	cfg, err := Load(path)

	// Then: the environment wins
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Corpus.Dir)
	assert.Equal(t, 7, cfg.Retrieval.TopK)
}

func TestLoad_InvalidYAMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docground.yaml")
	require.NoError(t, os.WriteFile(path, []byte("corpus: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero top_k", func(c *Config) { c.Retrieval.TopK = 0 }},
		{"negative max_context_chars", func(c *Config) { c.Retrieval.MaxContextChars = -1 }},
		{"similarity above 1", func(c *Config) { c.Retrieval.SimilarityThreshold = 1.5 }},
		{"negative min_score", func(c *Config) { c.Retrieval.MinScore = -0.1 }},
		{"unknown provider", func(c *Config) { c.Embeddings.Provider = "openai" }},
		{"zero batch size", func(c *Config) { c.Embeddings.BatchSize = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := New()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	// Given: a customized config saved to disk
	path := filepath.Join(t.TempDir(), "nested", "docground.yaml")
	cfg := New()
	cfg.Corpus.Dir = "./kb"
	cfg.Embeddings.Provider = "static"
	require.NoError(t, cfg.Save(path))

	// When: it is loaded back
	loaded, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "./kb", loaded.Corpus.Dir)
	assert.Equal(t, "static", loaded.Embeddings.Provider)
}
