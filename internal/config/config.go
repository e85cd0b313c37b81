// Package config loads and validates docground configuration.
//
// Configuration is resolved in three layers, later layers winning:
//  1. Built-in defaults
//  2. YAML config file (.docground.yaml)
//  3. DOCGROUND_* environment variables
//
// The resulting Config struct is passed explicitly to the retrieval
// coordinator at construction; nothing reads ambient global state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	dgerrors "github.com/docground/docground/internal/errors"
)

// DefaultConfigName is the config file looked up in the working directory.
const DefaultConfigName = ".docground.yaml"

// Config is the complete docground configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Corpus     CorpusConfig     `yaml:"corpus" json:"corpus"`
	Retrieval  RetrievalConfig  `yaml:"retrieval" json:"retrieval"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" json:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// CorpusConfig configures the markdown knowledge base location.
type CorpusConfig struct {
	// Dir is the directory of UTF-8 .md files. Files prefixed "_" are skipped.
	Dir string `yaml:"dir" json:"dir"`
	// WatchDebounce is the settle time before a file change triggers reload.
	WatchDebounce time.Duration `yaml:"watch_debounce" json:"watch_debounce"`
}

// RetrievalConfig configures the tiered search policy.
//
// SimilarityThreshold and MinScore default to the values the engine was tuned
// with (0.3 and 0.5). They are configuration, not load-bearing constants.
type RetrievalConfig struct {
	// TopK is the default number of sections to select.
	TopK int `yaml:"top_k" json:"top_k"`
	// MaxContextChars bounds the assembled context string.
	MaxContextChars int `yaml:"max_context_chars" json:"max_context_chars"`
	// SimilarityThreshold is the strict lower bound for cosine similarity
	// in the semantic tier.
	SimilarityThreshold float64 `yaml:"similarity_threshold" json:"similarity_threshold"`
	// MinScore is the BM25 score floor; lower-scoring sections are discarded.
	MinScore float64 `yaml:"min_score" json:"min_score"`
}

// EmbeddingsConfig configures the embedding provider and its cache.
type EmbeddingsConfig struct {
	// Provider selects the embedding backend: "gemini", "ollama", "static",
	// or "" to disable the semantic tier entirely.
	Provider string `yaml:"provider" json:"provider"`
	// Model is the embedding model identifier.
	Model string `yaml:"model" json:"model"`
	// APIKey authorizes remote providers. Usually set via
	// DOCGROUND_GEMINI_API_KEY rather than the config file.
	APIKey string `yaml:"api_key" json:"-"`
	// GeminiHost overrides the Gemini API base URL (tests, proxies).
	GeminiHost string `yaml:"gemini_host" json:"gemini_host"`
	// OllamaHost is the Ollama API endpoint (default: http://localhost:11434).
	OllamaHost string `yaml:"ollama_host" json:"ollama_host"`
	// BatchSize is the number of texts per provider call.
	BatchSize int `yaml:"batch_size" json:"batch_size"`
	// Timeout bounds a single provider network call.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	// CachePath is the JSON embedding cache location.
	CachePath string `yaml:"cache_path" json:"cache_path"`
}

// TelemetryConfig configures local query telemetry.
// All telemetry stays on the local machine.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	DBPath  string `yaml:"db_path" json:"db_path"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Version: 1,
		Corpus: CorpusConfig{
			Dir:           "docs",
			WatchDebounce: 500 * time.Millisecond,
		},
		Retrieval: RetrievalConfig{
			TopK:                3,
			MaxContextChars:     2500,
			SimilarityThreshold: 0.3,
			MinScore:            0.5,
		},
		Embeddings: EmbeddingsConfig{
			Provider:   "",
			Model:      "text-embedding-004",
			OllamaHost: "http://localhost:11434",
			BatchSize:  100,
			Timeout:    60 * time.Second,
			CachePath:  filepath.Join(".docground", "embeddings.json"),
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
			DBPath:  filepath.Join(".docground", "telemetry.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from path, falling back to defaults when the file
// does not exist. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := New()

	if path == "" {
		path = DefaultConfigName
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults + env only
	case err != nil:
		return nil, dgerrors.Wrap(err, dgerrors.ErrCodeConfigNotFound,
			dgerrors.CategoryConfig, fmt.Sprintf("cannot read config %s", path))
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, dgerrors.Wrap(err, dgerrors.ErrCodeConfigInvalid,
				dgerrors.CategoryConfig, fmt.Sprintf("invalid config %s", path))
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies DOCGROUND_* environment overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("DOCGROUND_CORPUS_DIR"); v != "" {
		c.Corpus.Dir = v
	}
	if v := os.Getenv("DOCGROUND_EMBEDDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("DOCGROUND_EMBED_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("DOCGROUND_GEMINI_API_KEY"); v != "" {
		c.Embeddings.APIKey = v
	}
	if v := os.Getenv("DOCGROUND_OLLAMA_HOST"); v != "" {
		c.Embeddings.OllamaHost = v
	}
	if v := os.Getenv("DOCGROUND_CACHE_PATH"); v != "" {
		c.Embeddings.CachePath = v
	}
	if v := os.Getenv("DOCGROUND_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DOCGROUND_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Retrieval.TopK = n
		}
	}
	if v := os.Getenv("DOCGROUND_MAX_CONTEXT_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Retrieval.MaxContextChars = n
		}
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Retrieval.TopK <= 0 {
		return dgerrors.Newf(dgerrors.ErrCodeConfigInvalid, dgerrors.CategoryConfig,
			dgerrors.SeverityFatal, "retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.MaxContextChars <= 0 {
		return dgerrors.Newf(dgerrors.ErrCodeConfigInvalid, dgerrors.CategoryConfig,
			dgerrors.SeverityFatal, "retrieval.max_context_chars must be positive, got %d", c.Retrieval.MaxContextChars)
	}
	if c.Retrieval.SimilarityThreshold < -1 || c.Retrieval.SimilarityThreshold > 1 {
		return dgerrors.Newf(dgerrors.ErrCodeConfigInvalid, dgerrors.CategoryConfig,
			dgerrors.SeverityFatal, "retrieval.similarity_threshold must be in [-1, 1], got %g", c.Retrieval.SimilarityThreshold)
	}
	if c.Retrieval.MinScore < 0 {
		return dgerrors.Newf(dgerrors.ErrCodeConfigInvalid, dgerrors.CategoryConfig,
			dgerrors.SeverityFatal, "retrieval.min_score must be non-negative, got %g", c.Retrieval.MinScore)
	}
	switch c.Embeddings.Provider {
	case "", "gemini", "ollama", "static":
	default:
		return dgerrors.Newf(dgerrors.ErrCodeConfigInvalid, dgerrors.CategoryConfig,
			dgerrors.SeverityFatal, "unknown embeddings.provider %q", c.Embeddings.Provider)
	}
	if c.Embeddings.BatchSize <= 0 {
		return dgerrors.Newf(dgerrors.ErrCodeConfigInvalid, dgerrors.CategoryConfig,
			dgerrors.SeverityFatal, "embeddings.batch_size must be positive, got %d", c.Embeddings.BatchSize)
	}
	return nil
}

// Save writes the configuration as YAML to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
