package embeddings

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

// DefaultDimension is the fallback vector width when none is configured.
const DefaultDimension = 256

// FallbackProvider is a local vectorizer used when no remote embedding service
// is reachable. It hashes term frequencies into a fixed-width vector, trading
// semantic accuracy for availability. Vectors from this provider are never
// comparable with remote-generated ones.
type FallbackProvider struct {
	dimension int
}

// NewFallbackProvider creates a fallback vectorizer with the given width.
func NewFallbackProvider(dimension int) *FallbackProvider {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &FallbackProvider{dimension: dimension}
}

// Dimension returns the vector width.
func (p *FallbackProvider) Dimension() int {
	return p.dimension
}

// EmbedDocuments vectorizes multiple texts. It never fails.
func (p *FallbackProvider) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = p.vectorize(text)
	}
	return vectors, nil
}

// EmbedQuery vectorizes a single query. It never fails.
func (p *FallbackProvider) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return p.vectorize(text), nil
}

// vectorize hashes each lowercased term into a bucket and accumulates
// term frequency.
func (p *FallbackProvider) vectorize(text string) []float32 {
	vec := make([]float32, p.dimension)
	terms := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, term := range terms {
		h := fnv.New32a()
		h.Write([]byte(term))
		vec[int(h.Sum32())%p.dimension]++
	}
	return vec
}
