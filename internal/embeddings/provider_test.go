package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantType any
		wantNil  bool
		wantErr  bool
	}{
		{name: "remote", cfg: Config{Provider: "remote", BaseURL: "http://localhost:11434"}},
		{name: "fallback", cfg: Config{Provider: "fallback"}},
		{name: "none", cfg: Config{Provider: "none"}, wantNil: true},
		{name: "empty", cfg: Config{}, wantNil: true},
		{name: "remote without url", cfg: Config{Provider: "remote"}, wantErr: true},
		{name: "unknown", cfg: Config{Provider: "quantum"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, p)
			} else {
				assert.NotNil(t, p)
			}
		})
	}
}

func TestRemoteProviderEmbedDocuments(t *testing.T) {
	var requests []embedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embed", r.URL.Path)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)

		vectors := make([][]float32, len(req.Input))
		for i := range req.Input {
			vectors[i] = []float32{float32(len(req.Input[i])), 1, 2}
		}
		json.NewEncoder(w).Encode(embedResponse{Embeddings: vectors})
	}))
	defer srv.Close()

	p, err := NewRemoteProvider(Config{
		Provider:        "remote",
		BaseURL:         srv.URL,
		Model:           "test-model",
		RequestInterval: time.Millisecond,
	})
	require.NoError(t, err)

	vectors, err := p.EmbedDocuments(context.Background(), []string{"ab", "cdef"})
	require.NoError(t, err)

	require.Len(t, vectors, 2)
	assert.Equal(t, float32(2), vectors[0][0])
	assert.Equal(t, float32(4), vectors[1][0])

	// One request per item, model carried on each.
	require.Len(t, requests, 2)
	assert.Equal(t, "test-model", requests[0].Model)
	assert.Equal(t, []string{"ab"}, requests[0].Input)
}

func TestRemoteProviderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := NewRemoteProvider(Config{
		Provider:        "remote",
		BaseURL:         srv.URL,
		RequestInterval: time.Millisecond,
	})
	require.NoError(t, err)

	_, err = p.EmbedDocuments(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbeddingFailed)

	_, err = p.EmbedQuery(context.Background(), "text")
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}

func TestRemoteProviderEmptyInput(t *testing.T) {
	p, err := NewRemoteProvider(Config{Provider: "remote", BaseURL: "http://localhost:1"})
	require.NoError(t, err)

	_, err = p.EmbedDocuments(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = p.EmbedQuery(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestFallbackProvider(t *testing.T) {
	p := NewFallbackProvider(0)
	assert.Equal(t, DefaultDimension, p.Dimension())

	ctx := context.Background()
	vectors, err := p.EmbedDocuments(ctx, []string{"auth token handling", "auth token handling", "something else"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	for _, v := range vectors {
		assert.Len(t, v, DefaultDimension)
	}

	// Deterministic: identical text yields identical vectors.
	assert.Equal(t, vectors[0], vectors[1])
	assert.NotEqual(t, vectors[0], vectors[2])

	query, err := p.EmbedQuery(ctx, "auth token handling")
	require.NoError(t, err)
	assert.Equal(t, vectors[0], query)
}

func TestFallbackProviderTermFrequency(t *testing.T) {
	p := NewFallbackProvider(64)

	once, err := p.EmbedQuery(context.Background(), "token")
	require.NoError(t, err)
	twice, err := p.EmbedQuery(context.Background(), "token token")
	require.NoError(t, err)

	var sumOnce, sumTwice float32
	for i := range once {
		sumOnce += once[i]
		sumTwice += twice[i]
	}
	assert.Equal(t, float32(1), sumOnce)
	assert.Equal(t, float32(2), sumTwice)
}
