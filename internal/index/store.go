package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	chunksFile = "chunks.json"
	statsFile  = "stats.json"
)

// Store persists index artifacts as flat JSON files, fully replaced on each
// indexing run.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes chunks.json and stats.json, replacing any previous generation.
func (s *Store) Save(result *Result) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	if err := writeJSON(filepath.Join(s.dir, chunksFile), result.Chunks); err != nil {
		return fmt.Errorf("writing chunks: %w", err)
	}
	if err := writeJSON(filepath.Join(s.dir, statsFile), result.Stats); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// Load reads the persisted chunk set and stats.
func (s *Store) Load() (*Result, error) {
	var chunks []Chunk
	if err := readJSON(filepath.Join(s.dir, chunksFile), &chunks); err != nil {
		return nil, fmt.Errorf("reading chunks: %w", err)
	}
	var stats Stats
	if err := readJSON(filepath.Join(s.dir, statsFile), &stats); err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	return &Result{Chunks: chunks, Stats: &stats}, nil
}

// Exists reports whether a persisted index is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(filepath.Join(s.dir, chunksFile))
	return err == nil
}

// writeJSON writes v atomically via a temp file rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
