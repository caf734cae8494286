// Package retrieval implements hybrid search over the indexed chunk set:
// keyword scoring always, semantic scoring when embeddings exist, fused via
// reciprocal rank fusion.
package retrieval

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codechat/internal/embeddings"
	"github.com/fyrsmithlabs/codechat/internal/index"
)

// DefaultMaxResults applies when a caller passes a non-positive limit.
const DefaultMaxResults = 5

// rrfK is the reciprocal rank fusion constant.
const rrfK = 60

// SearchResult is one ranked retrieval hit. Similarity is loosely within
// [0,1]; fused scores may slightly exceed it due to normalization choices.
type SearchResult struct {
	Content    string              `json:"content"`
	Source     string              `json:"source"`
	Similarity float64             `json:"similarity"`
	Metadata   index.ChunkMetadata `json:"metadata"`
}

// Retriever ranks chunks against queries. It is immutable after construction;
// a new indexing run requires a new Retriever.
type Retriever struct {
	chunks   []index.Chunk
	entries  []chunkIndexEntry
	embedder embeddings.Provider
	embedded bool
	logger   *zap.Logger
}

// NewRetriever builds a retriever over a fixed chunk set. The embedder may be
// nil, in which case search is keyword-only.
func NewRetriever(chunks []index.Chunk, embedder embeddings.Provider, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries := make([]chunkIndexEntry, len(chunks))
	embedded := false
	for i, chunk := range chunks {
		entries[i] = newChunkIndexEntry(chunk.Content)
		if len(chunk.Embedding) > 0 {
			embedded = true
		}
	}

	return &Retriever{
		chunks:   chunks,
		entries:  entries,
		embedder: embedder,
		embedded: embedded,
		logger:   logger,
	}
}

// SemanticAvailable reports whether semantic ranking can run: an embedder is
// configured and at least one chunk carries an embedding.
func (r *Retriever) SemanticAvailable() bool {
	return r.embedder != nil && r.embedded
}

// ranked pairs a chunk position with a score.
type ranked struct {
	pos   int
	score float64
}

// Search returns up to maxResults chunks ordered best-first. It never fails:
// an empty chunk set yields an empty list, and embedding provider errors
// degrade to keyword-only ranking.
func (r *Retriever) Search(ctx context.Context, query string, maxResults int) []SearchResult {
	start := time.Now()
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if len(r.chunks) == 0 {
		return nil
	}

	shortlist := 2 * maxResults
	keyword := r.keywordRanking(query, shortlist)

	mode := "keyword"
	var results []SearchResult
	if semantic, ok := r.semanticRanking(ctx, query, shortlist); ok {
		mode = "hybrid"
		results = r.materialize(fuseRankings(keyword, semantic), maxResults)
	} else {
		results = r.materialize(keyword, maxResults)
	}

	searchesTotal.WithLabelValues(mode).Inc()
	searchDuration.Observe(time.Since(start).Seconds())
	return results
}

// keywordRanking scores every chunk and returns the top limit candidates,
// ties broken by original chunk order.
func (r *Retriever) keywordRanking(query string, limit int) []ranked {
	queryTokens := Tokenize(query)

	scored := make([]ranked, len(r.chunks))
	for i := range r.chunks {
		scored[i] = ranked{pos: i, score: keywordScore(queryTokens, r.entries[i])}
	}
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].score > scored[b].score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// semanticRanking ranks chunks by cosine similarity to the query embedding.
// Returns ok=false when semantic search is unavailable or the query embedding
// fails; failures are logged, never surfaced.
func (r *Retriever) semanticRanking(ctx context.Context, query string, limit int) ([]ranked, bool) {
	if !r.SemanticAvailable() {
		return nil, false
	}

	queryVec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		r.logger.Warn("query embedding failed, falling back to keyword search", zap.Error(err))
		return nil, false
	}

	var scored []ranked
	for i, chunk := range r.chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		scored = append(scored, ranked{pos: i, score: cosineSimilarity(queryVec, chunk.Embedding)})
	}
	if len(scored) == 0 {
		return nil, false
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].score > scored[b].score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, true
}

// fuseRankings combines two rankings with reciprocal rank fusion: each chunk
// accumulates 1/(rrfK+rank) per list it appears in, and the fused score is
// normalized by rrfK+2 to keep it loosely within [0,1] for display.
func fuseRankings(keyword, semantic []ranked) []ranked {
	fused := make(map[int]float64, len(keyword)+len(semantic))
	order := make(map[int]int, len(keyword)+len(semantic)) // first-seen order, stable ties

	accumulate := func(list []ranked) {
		for rank, item := range list {
			if _, seen := fused[item.pos]; !seen {
				order[item.pos] = len(order)
			}
			fused[item.pos] += 1.0 / float64(rrfK+rank)
		}
	}
	accumulate(keyword)
	accumulate(semantic)

	combined := make([]ranked, 0, len(fused))
	for pos, score := range fused {
		combined = append(combined, ranked{pos: pos, score: score / float64(rrfK+2)})
	}
	sort.Slice(combined, func(a, b int) bool {
		if combined[a].score != combined[b].score {
			return combined[a].score > combined[b].score
		}
		return order[combined[a].pos] < order[combined[b].pos]
	})
	return combined
}

// materialize converts ranked positions into results.
func (r *Retriever) materialize(list []ranked, maxResults int) []SearchResult {
	if len(list) > maxResults {
		list = list[:maxResults]
	}
	results := make([]SearchResult, len(list))
	for i, item := range list {
		chunk := r.chunks[item.pos]
		results[i] = SearchResult{
			Content:    chunk.Content,
			Source:     chunk.Metadata.Source,
			Similarity: item.score,
			Metadata:   chunk.Metadata,
		}
	}
	return results
}

// cosineSimilarity returns dot(a,b)/(|a||b|), or 0 when either norm is 0 or
// dimensions differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
