// Package embeddings provides text-to-vector generation for indexing and search.
//
// Two providers are available: a remote HTTP provider that calls an embedding
// endpoint, and a local fallback vectorizer that hashes term frequencies into a
// fixed-width vector. An index generation must be "pure": every chunk embedded
// by the same provider, since vectors from different providers are not
// comparable under cosine similarity.
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyInput indicates empty or nil input texts.
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// Provider generates vector embeddings from text.
type Provider interface {
	// EmbedDocuments generates embeddings for multiple texts, one vector per
	// input in positional correspondence.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Config holds configuration for creating an embedding provider.
type Config struct {
	// Provider is "remote", "fallback", or "none".
	Provider string

	// BaseURL is the remote embedding endpoint base URL.
	BaseURL string

	// Model is the model name sent with each remote request.
	Model string

	// Timeout bounds a single remote request.
	Timeout time.Duration

	// RequestInterval paces successive remote requests.
	RequestInterval time.Duration

	// Dimension is the fallback vector width.
	Dimension int
}

// NewProvider creates an embedding provider based on the configuration.
//
// Provider "none" returns (nil, nil): embeddings disabled, keyword-only search.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "remote":
		return NewRemoteProvider(cfg)
	case "fallback":
		return NewFallbackProvider(cfg.Dimension), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}
