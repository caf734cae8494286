package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/codechat/internal/index"
)

func makeChunks(contents ...string) []index.Chunk {
	chunks := make([]index.Chunk, len(contents))
	for i, c := range contents {
		chunks[i] = index.Chunk{
			ID:      i,
			Content: c,
			Metadata: index.ChunkMetadata{
				Source:      "file.go",
				ChunkIndex:  i,
				TotalChunks: len(contents),
			},
		}
	}
	return chunks
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "lowercase and stopwords",
			in:   "The authentication flow is in the handler",
			want: []string{"authentication", "flow", "handler"},
		},
		{
			name: "camelCase split",
			in:   "parseAuthToken",
			want: []string{"parse", "auth", "token"},
		},
		{
			name: "uppercase run before capitalized word",
			in:   "HTTPServer",
			want: []string{"http", "server"},
		},
		{
			name: "short tokens dropped",
			in:   "go is ok but database matters",
			want: []string{"database", "matters"},
		},
		{
			name: "punctuation boundaries",
			in:   "user_id, ticket-status; create()",
			want: []string{"user", "ticket", "status", "create"},
		},
		{
			name: "empty",
			in:   "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestKeywordScoreExactMatch(t *testing.T) {
	entry := newChunkIndexEntry("Authentication flow uses JWT")
	score := keywordScore(Tokenize("authentication"), entry)
	assert.Greater(t, score, 0.5)
}

func TestKeywordScoreNoOverlapGetsTieBreak(t *testing.T) {
	matching := newChunkIndexEntry("Authentication flow uses JWT tokens for sessions")
	unrelated := newChunkIndexEntry("Completely different topic about kitchen recipes")

	query := Tokenize("authentication")
	matchScore := keywordScore(query, matching)
	tieScore := keywordScore(query, unrelated)

	assert.Greater(t, matchScore, tieScore)
	assert.Greater(t, tieScore, 0.0)
	assert.LessOrEqual(t, tieScore, tieBreakCeiling)
}

func TestKeywordScoreTieBreakProportionalToLength(t *testing.T) {
	short := newChunkIndexEntry("kitchen recipes")
	long := newChunkIndexEntry("kitchen recipes pasta sauce garlic onion tomato basil pepper salt")

	query := Tokenize("authentication")
	assert.Greater(t, keywordScore(query, long), keywordScore(query, short))
}

func TestKeywordScoreMonotonicity(t *testing.T) {
	before := newChunkIndexEntry("token validation logic handles expiry")
	after := newChunkIndexEntry("token validation logic handles expiry token")

	query := Tokenize("token refresh")
	assert.GreaterOrEqual(t, keywordScore(query, after), keywordScore(query, before))
}

func TestKeywordScorePrefixMatch(t *testing.T) {
	entry := newChunkIndexEntry("authorization middleware checks headers")

	// "authoriz" shares an 8-char prefix with "authorization".
	withPrefix := keywordScore([]string{"authorize"}, entry)
	assert.Greater(t, withPrefix, tieBreakCeiling)

	// Shared prefix below 4 chars earns nothing beyond the tie-break.
	noPrefix := keywordScore([]string{"autobahn"}, entry)
	assert.LessOrEqual(t, noPrefix, tieBreakCeiling)
}

func TestKeywordScoreCappedAtOne(t *testing.T) {
	entry := newChunkIndexEntry("token token token token token token token token")
	score := keywordScore([]string{"token"}, entry)
	assert.LessOrEqual(t, score, 1.0)
}

func TestSearchKeywordOnly(t *testing.T) {
	chunks := makeChunks(
		"Authentication flow uses JWT tokens",
		"Database connection pooling setup",
		"JWT token refresh and authentication retry",
	)
	r := NewRetriever(chunks, nil, nil)

	assert.False(t, r.SemanticAvailable())

	results := r.Search(context.Background(), "authentication JWT", 2)
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Metadata.ChunkIndex)
	assert.Equal(t, 2, results[1].Metadata.ChunkIndex)
	assert.Greater(t, results[0].Similarity, 0.0)
}

func TestSearchEmptyChunkSet(t *testing.T) {
	r := NewRetriever(nil, nil, nil)
	assert.Empty(t, r.Search(context.Background(), "anything", 5))
}

func TestSearchNoLexicalOverlapStillReturns(t *testing.T) {
	chunks := makeChunks(
		"short text",
		"a considerably longer chunk with many more words about databases pooling drivers connections retries timeouts",
	)
	r := NewRetriever(chunks, nil, nil)

	results := r.Search(context.Background(), "zzyzx", 2)
	require.Len(t, results, 2)
	// The most substantial chunk ranks first on the tie-break floor.
	assert.Equal(t, 1, results[0].Metadata.ChunkIndex)
}

func TestSearchStableOrderOnTies(t *testing.T) {
	chunks := makeChunks(
		"identical content words here",
		"identical content words here",
		"identical content words here",
	)
	r := NewRetriever(chunks, nil, nil)

	results := r.Search(context.Background(), "identical content", 3)
	require.Len(t, results, 3)
	for i, res := range results {
		assert.Equal(t, i, res.Metadata.ChunkIndex)
	}
}

// fixedEmbedder returns canned vectors keyed by text.
type fixedEmbedder struct {
	queryVec []float32
	err      error
}

func (f fixedEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (f fixedEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.queryVec, nil
}

func embeddedChunks() []index.Chunk {
	chunks := makeChunks(
		"Authentication flow uses JWT tokens",   // keyword hit for "authentication"
		"Database connection pooling setup",     // semantic hit via embedding
		"Unrelated build script notes",          //
		"JWT authentication retry with backoff", // keyword hit
	)
	chunks[0].Embedding = []float32{0, 1}
	chunks[1].Embedding = []float32{1, 0}
	chunks[2].Embedding = []float32{0.1, 0.9}
	chunks[3].Embedding = []float32{0.2, 0.8}
	return chunks
}

func TestSearchHybridFusion(t *testing.T) {
	chunks := embeddedChunks()
	r := NewRetriever(chunks, fixedEmbedder{queryVec: []float32{1, 0}}, nil)

	require.True(t, r.SemanticAvailable())

	results := r.Search(context.Background(), "authentication", 2)
	require.Len(t, results, 2)

	// Chunk 1 tops the semantic list and chunk 3 places high in both, so
	// fusion surfaces them ahead of the pure keyword winner.
	got := map[int]bool{}
	for _, res := range results {
		got[res.Metadata.ChunkIndex] = true
	}
	assert.True(t, got[1])
	assert.True(t, got[3])
}

func TestSearchFusionSupersetProperty(t *testing.T) {
	chunks := embeddedChunks()
	r := NewRetriever(chunks, fixedEmbedder{queryVec: []float32{1, 0}}, nil)

	maxResults := 1
	shortlist := 2 * maxResults

	keyword := r.keywordRanking("authentication", shortlist)
	semantic, ok := r.semanticRanking(context.Background(), "authentication", shortlist)
	require.True(t, ok)

	allowed := map[int]bool{}
	for _, item := range keyword {
		allowed[item.pos] = true
	}
	for _, item := range semantic {
		allowed[item.pos] = true
	}

	results := r.Search(context.Background(), "authentication", maxResults)
	for _, res := range results {
		assert.True(t, allowed[res.Metadata.ChunkIndex],
			"fused result outside both shortlists: chunk %d", res.Metadata.ChunkIndex)
	}
}

func TestSearchEmbeddingErrorDegradesToKeyword(t *testing.T) {
	chunks := embeddedChunks()
	r := NewRetriever(chunks, fixedEmbedder{err: errors.New("connection refused")}, nil)

	results := r.Search(context.Background(), "authentication", 2)
	require.Len(t, results, 2)
	// Pure keyword ranking: both JWT chunks first.
	assert.Equal(t, 0, results[0].Metadata.ChunkIndex)
	assert.Equal(t, 3, results[1].Metadata.ChunkIndex)
}

func TestSearchDefaultMaxResults(t *testing.T) {
	contents := make([]string, 10)
	for i := range contents {
		contents[i] = "shared repeated words for ranking"
	}
	r := NewRetriever(makeChunks(contents...), nil, nil)

	results := r.Search(context.Background(), "shared", 0)
	assert.Len(t, results, DefaultMaxResults)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
		{name: "dimension mismatch", a: []float32{1}, b: []float32{1, 0}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestFuseRankingsNormalization(t *testing.T) {
	keyword := []ranked{{pos: 0, score: 0.9}, {pos: 1, score: 0.5}}
	semantic := []ranked{{pos: 0, score: 0.8}, {pos: 2, score: 0.4}}

	fused := fuseRankings(keyword, semantic)
	require.Len(t, fused, 3)

	// Chunk 0 leads both lists: 2/60 normalized by 62.
	assert.Equal(t, 0, fused[0].pos)
	assert.InDelta(t, (1.0/60+1.0/60)/62, fused[0].score, 1e-9)

	for _, item := range fused {
		assert.Greater(t, item.score, 0.0)
		assert.Less(t, item.score, 1.0)
	}
}
