package index

import "time"

// Chunk is a bounded, overlapping slice of a source file's text, the unit of
// retrieval. Chunks are immutable once written; a new indexing run fully
// replaces the chunk set.
type Chunk struct {
	// ID is assigned monotonically at indexing time, unique within one
	// index generation.
	ID int `json:"id"`

	// Content is the chunk text.
	Content string `json:"content"`

	// Embedding, if present, has the same dimensionality as every other
	// embedded chunk in the index.
	Embedding []float32 `json:"embedding,omitempty"`

	// Metadata locates the chunk within its source file.
	Metadata ChunkMetadata `json:"metadata"`
}

// ChunkMetadata locates a chunk within its source file.
type ChunkMetadata struct {
	// Source is the file path relative to its index folder.
	Source string `json:"source"`

	// ChunkIndex is the 0-based position within the source file.
	ChunkIndex int `json:"chunk_index"`

	// TotalChunks is the source file's chunk count.
	TotalChunks int `json:"total_chunks"`
}

// Stats aggregates one indexing run.
type Stats struct {
	FileCount   int            `json:"file_count"`
	ChunkCount  int            `json:"chunk_count"`
	TotalBytes  int64          `json:"total_bytes"`
	ByExtension map[string]int `json:"by_extension"`
	IndexedAt   time.Time      `json:"indexed_at"`
}

// Result is the outcome of one indexing run.
type Result struct {
	Chunks []Chunk
	Stats  *Stats
}
