package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Gemini task types for asymmetric embedding. Corpus sections and search
// queries are embedded with different intents so the model places them in
// compatible but not identical spaces.
const (
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
	taskTypeQuery    = "RETRIEVAL_QUERY"
)

// DefaultGeminiHost is the Gemini API base URL.
const DefaultGeminiHost = "https://generativelanguage.googleapis.com"

// GeminiConfig configures the Gemini embedder.
type GeminiConfig struct {
	APIKey    string
	Model     string
	Host      string
	BatchSize int
	Timeout   time.Duration
}

// GeminiEmbedder generates embeddings via the Gemini batch embedding API.
//
// It owns a dedicated http.Transport. Embedding traffic must stay independent
// of any proxy or pooling configuration a text-generation client may have
// installed on the shared default transport.
type GeminiEmbedder struct {
	client    *http.Client
	transport *http.Transport
	config    GeminiConfig

	mu     sync.RWMutex
	closed bool
	dims   int // 0 until the first response reveals it
}

// Verify interface implementation at compile time
var _ Embedder = (*GeminiEmbedder)(nil)

// NewGeminiEmbedder creates a new Gemini embedder.
func NewGeminiEmbedder(cfg GeminiConfig) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-004"
	}
	if cfg.Host == "" {
		cfg.Host = DefaultGeminiHost
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	transport := &http.Transport{
		MaxIdleConns:        4,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,
	}

	return &GeminiEmbedder{
		client:    &http.Client{Transport: transport},
		transport: transport,
		config:    cfg,
	}, nil
}

// geminiContent is the text payload of one embedding request.
type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiEmbedRequest is one entry of a batchEmbedContents call.
type geminiEmbedRequest struct {
	Model    string        `json:"model"`
	Content  geminiContent `json:"content"`
	TaskType string        `json:"taskType"`
}

type geminiBatchRequest struct {
	Requests []geminiEmbedRequest `json:"requests"`
}

type geminiEmbedding struct {
	Values []float32 `json:"values"`
}

type geminiBatchResponse struct {
	Embeddings []geminiEmbedding `json:"embeddings"`
}

type geminiSingleResponse struct {
	Embedding geminiEmbedding `json:"embedding"`
}

// EmbedDocuments embeds corpus sections in batches, preserving input order.
func (e *GeminiEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.config.BatchSize {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		end := start + e.config.BatchSize
		if end > len(texts) {
			end = len(texts)
		}

		vectors, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		results = append(results, vectors...)
	}
	return results, nil
}

// EmbedQuery embeds a single query, tagged with the query task type.
func (e *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return make([]float32, e.Dimensions()), nil
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:embedContent?key=%s",
		e.config.Host, e.config.Model, e.config.APIKey)

	reqBody := geminiEmbedRequest{
		Model:    "models/" + e.config.Model,
		Content:  geminiContent{Parts: []geminiPart{{Text: text}}},
		TaskType: taskTypeQuery,
	}

	var resp geminiSingleResponse
	if err := e.post(ctx, url, reqBody, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding returned")
	}

	e.recordDimensions(len(resp.Embedding.Values))
	return resp.Embedding.Values, nil
}

// embedBatch performs one batchEmbedContents call.
func (e *GeminiEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:batchEmbedContents?key=%s",
		e.config.Host, e.config.Model, e.config.APIKey)

	batch := geminiBatchRequest{Requests: make([]geminiEmbedRequest, len(texts))}
	for i, t := range texts {
		batch.Requests[i] = geminiEmbedRequest{
			Model:    "models/" + e.config.Model,
			Content:  geminiContent{Parts: []geminiPart{{Text: t}}},
			TaskType: taskTypeDocument,
		}
	}

	var resp geminiBatchResponse
	if err := e.post(ctx, url, batch, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if len(emb.Values) == 0 {
			return nil, fmt.Errorf("empty embedding at position %d", i)
		}
		vectors[i] = emb.Values
	}

	e.recordDimensions(len(vectors[0]))
	return vectors, nil
}

// post sends a JSON request with the per-call timeout and decodes the response.
func (e *GeminiEmbedder) post(ctx context.Context, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("embedding failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// recordDimensions captures the dimension learned from the first response.
func (e *GeminiEmbedder) recordDimensions(d int) {
	e.mu.Lock()
	if e.dims == 0 {
		e.dims = d
	}
	e.mu.Unlock()
}

func (e *GeminiEmbedder) checkOpen() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return fmt.Errorf("embedder is closed")
	}
	return nil
}

// ProviderName returns "gemini".
func (e *GeminiEmbedder) ProviderName() string {
	return "gemini"
}

// ModelName returns the model identifier.
func (e *GeminiEmbedder) ModelName() string {
	return e.config.Model
}

// Dimensions returns the embedding dimension, 0 before the first response.
func (e *GeminiEmbedder) Dimensions() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dims
}

// Available reports whether the embedder is configured and open. No network
// probe: a dead endpoint surfaces as a per-call failure, which the caller
// already degrades gracefully.
func (e *GeminiEmbedder) Available(ctx context.Context) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.closed && e.config.APIKey != ""
}

// Close releases HTTP resources.
func (e *GeminiEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	if e.transport != nil {
		e.transport.CloseIdleConnections()
	}
	return nil
}
