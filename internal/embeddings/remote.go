package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// defaultTimeout bounds a single embedding request when none is configured.
const defaultTimeout = 10 * time.Second

// RemoteProvider calls a remote embedding endpoint.
//
// Requests are sent one batch item at a time, paced by a rate limiter, so a
// local inference server is not overwhelmed during bulk indexing.
type RemoteProvider struct {
	baseURL string
	model   string
	timeout time.Duration
	client  *http.Client
	limiter *rate.Limiter
}

// NewRemoteProvider creates a remote embedding provider.
func NewRemoteProvider(cfg Config) (*RemoteProvider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	interval := cfg.RequestInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	return &RemoteProvider{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		timeout: timeout,
		client:  &http.Client{},
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}, nil
}

// embedRequest is the request body for the embed endpoint.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embedResponse is the response body from the embed endpoint. Embeddings are
// in one-to-one positional correspondence with the request input.
type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// EmbedDocuments generates embeddings for multiple texts.
//
// Each text is sent as its own request with a per-item timeout; the limiter
// inserts a small delay between requests. The first failure aborts the batch.
func (p *RemoteProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}

	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
		vec, err := p.embedOne(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding item %d: %w", i, err)
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

// EmbedQuery generates an embedding for a single query.
func (p *RemoteProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return p.embedOne(ctx, text)
}

// embedOne sends a single-input embed request.
func (p *RemoteProvider) embedOne(ctx context.Context, text string) ([]float32, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	body, err := json.Marshal(embedRequest{
		Model: p.model,
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, p.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrEmbeddingFailed, resp.StatusCode, string(respBody))
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(parsed.Embeddings) != 1 {
		return nil, fmt.Errorf("%w: expected 1 embedding, got %d", ErrEmbeddingFailed, len(parsed.Embeddings))
	}

	return parsed.Embeddings[0], nil
}
