// Package index walks configured folders, splits admitted files into
// overlapping word-count chunks, and persists the chunk set with aggregate
// stats as the sole index artifact.
package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codechat/internal/config"
	"github.com/fyrsmithlabs/codechat/internal/embeddings"
)

// ErrNoFilesIndexed is returned when zero files match the include/exclude
// rules. It signals misconfiguration immediately rather than silently
// producing an empty index.
var ErrNoFilesIndexed = errors.New("no files matched the indexing rules")

// Options configures one Indexer.
type Options struct {
	// Folders are the root directories to index.
	Folders []string

	// IncludeTypes are admitted file extensions (e.g. ".go").
	IncludeTypes []string

	// ExcludeFolders are directory names skipped anywhere in the tree.
	ExcludeFolders []string

	// ExcludePatterns are glob patterns matched against relative paths.
	ExcludePatterns []string

	// MaxFileSize is a human-readable byte ceiling (e.g. "1MB").
	MaxFileSize string

	// ChunkSize is the window length in words.
	ChunkSize int

	// ChunkOverlap is the word overlap between adjacent windows.
	ChunkOverlap int
}

// Indexer walks configured folders and produces the chunk set.
type Indexer struct {
	opts         Options
	maxFileBytes int64
	includeTypes map[string]bool
	excludeDirs  map[string]bool
	excludeGlobs []*globPattern
	embedder     embeddings.Provider
	logger       *zap.Logger

	// nextID is monotonic across runs within one process.
	nextID int
}

// NewIndexer creates an indexer, failing fast on configuration errors.
//
// An overlap >= chunk size would produce a non-advancing window and is
// rejected outright rather than clamped.
func NewIndexer(opts Options, embedder embeddings.Provider, logger *zap.Logger) (*Indexer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.Folders) == 0 {
		return nil, errors.New("at least one folder is required")
	}
	if opts.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", opts.ChunkSize)
	}
	if opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		return nil, fmt.Errorf("chunk overlap (%d) must be in [0, chunk size %d)",
			opts.ChunkOverlap, opts.ChunkSize)
	}

	maxFileBytes, err := config.ParseSize(opts.MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("invalid max file size: %w", err)
	}

	excludeGlobs, err := compileGlobs(opts.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude pattern: %w", err)
	}

	includeTypes := make(map[string]bool, len(opts.IncludeTypes))
	for _, ext := range opts.IncludeTypes {
		includeTypes[strings.ToLower(ext)] = true
	}
	excludeDirs := make(map[string]bool, len(opts.ExcludeFolders))
	for _, dir := range opts.ExcludeFolders {
		excludeDirs[dir] = true
	}

	return &Indexer{
		opts:         opts,
		maxFileBytes: maxFileBytes,
		includeTypes: includeTypes,
		excludeDirs:  excludeDirs,
		excludeGlobs: excludeGlobs,
		embedder:     embedder,
		logger:       logger,
	}, nil
}

// Index runs one full indexing pass.
//
// Embedding failures downgrade the whole run to embedding-free with a warning;
// they never abort indexing. Returns ErrNoFilesIndexed when nothing matched.
func (ix *Indexer) Index(ctx context.Context) (*Result, error) {
	stats := &Stats{ByExtension: make(map[string]int)}
	var chunks []Chunk

	for _, folder := range ix.opts.Folders {
		root := filepath.Clean(folder)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && ix.excludeDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			relPath, err := filepath.Rel(root, path)
			if err != nil {
				return fmt.Errorf("computing relative path: %w", err)
			}
			relPath = filepath.ToSlash(relPath)

			info, err := d.Info()
			if err != nil {
				return fmt.Errorf("stat %s: %w", path, err)
			}

			if !ix.admit(relPath, info.Size()) {
				return nil
			}

			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading file %s: %w", path, err)
			}
			// Skip binary files.
			if !utf8.Valid(content) {
				return nil
			}

			fileChunks := ix.chunkFile(relPath, string(content))
			chunks = append(chunks, fileChunks...)

			stats.FileCount++
			stats.ChunkCount += len(fileChunks)
			stats.TotalBytes += info.Size()
			stats.ByExtension[strings.ToLower(filepath.Ext(relPath))]++
			return nil
		})
		if err != nil {
			runsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("walking %s: %w", folder, err)
		}
	}

	if stats.FileCount == 0 {
		runsTotal.WithLabelValues("empty").Inc()
		return nil, fmt.Errorf("%w: folders %v", ErrNoFilesIndexed, ix.opts.Folders)
	}

	ix.embedChunks(ctx, chunks)

	runsTotal.WithLabelValues("ok").Inc()
	chunksIndexed.Set(float64(stats.ChunkCount))

	stats.IndexedAt = time.Now()
	ix.logger.Info("indexing complete",
		zap.Int("files", stats.FileCount),
		zap.Int("chunks", stats.ChunkCount),
		zap.Int64("bytes", stats.TotalBytes))

	return &Result{Chunks: chunks, Stats: stats}, nil
}

// admit reports whether a file passes the include/exclude rules. Oversized and
// type-mismatched files are skipped with a warning, not an error.
func (ix *Indexer) admit(relPath string, size int64) bool {
	for _, g := range ix.excludeGlobs {
		if g.matches(relPath) {
			return false
		}
	}

	ext := strings.ToLower(filepath.Ext(relPath))
	if !ix.includeTypes[ext] {
		ix.logger.Warn("skipping file with excluded type",
			zap.String("file", relPath), zap.String("extension", ext))
		return false
	}
	if size > ix.maxFileBytes {
		ix.logger.Warn("skipping oversized file",
			zap.String("file", relPath),
			zap.Int64("size", size),
			zap.Int64("limit", ix.maxFileBytes))
		return false
	}
	return true
}

// chunkFile splits whitespace-tokenized content into overlapping windows of
// ChunkSize words advancing by ChunkSize-ChunkOverlap words per step.
func (ix *Indexer) chunkFile(source, content string) []Chunk {
	words := strings.Fields(content)
	if len(words) == 0 {
		return nil
	}

	step := ix.opts.ChunkSize - ix.opts.ChunkOverlap

	var windows []string
	for start := 0; ; start += step {
		end := start + ix.opts.ChunkSize
		if end > len(words) {
			end = len(words)
		}
		windows = append(windows, strings.Join(words[start:end], " "))
		if start+ix.opts.ChunkSize >= len(words) {
			break
		}
	}

	chunks := make([]Chunk, len(windows))
	for i, w := range windows {
		chunks[i] = Chunk{
			ID:      ix.nextID,
			Content: w,
			Metadata: ChunkMetadata{
				Source:      source,
				ChunkIndex:  i,
				TotalChunks: len(windows),
			},
		}
		ix.nextID++
	}
	return chunks
}

// embedChunks requests embeddings for every chunk. On any provider failure the
// index stays embedding-free so one generation is never a mix of embedded and
// bare chunks.
func (ix *Indexer) embedChunks(ctx context.Context, chunks []Chunk) {
	if ix.embedder == nil || len(chunks) == 0 {
		return
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	vectors, err := ix.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		ix.logger.Warn("embedding generation failed, indexing continues without embeddings",
			zap.Error(err))
		return
	}
	if len(vectors) != len(chunks) {
		ix.logger.Warn("embedding count mismatch, indexing continues without embeddings",
			zap.Int("expected", len(chunks)), zap.Int("got", len(vectors)))
		return
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}
}
