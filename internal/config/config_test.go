package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 400, cfg.Index.ChunkSize)
	assert.Equal(t, 100, cfg.Index.ChunkOverlap)
	assert.Equal(t, "1MB", cfg.Index.MaxFileSize)
	assert.Equal(t, "none", cfg.Embedding.Provider)
	assert.Equal(t, 50, cfg.Conversation.MaxHistory)
	assert.Equal(t, 8087, cfg.Server.Port)
	assert.NotEmpty(t, cfg.Index.IncludeTypes)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
index:
  folders: ["src", "docs"]
  chunk_size: 200
  chunk_overlap: 50
embedding:
  provider: fallback
llm:
  model: mistral
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"src", "docs"}, cfg.Index.Folders)
	assert.Equal(t, 200, cfg.Index.ChunkSize)
	assert.Equal(t, 50, cfg.Index.ChunkOverlap)
	assert.Equal(t, "fallback", cfg.Embedding.Provider)
	assert.Equal(t, "mistral", cfg.LLM.Model)
	// Defaults still fill the gaps.
	assert.Equal(t, "1MB", cfg.Index.MaxFileSize)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CODECHAT_INDEX_CHUNK_SIZE", "300")
	t.Setenv("CODECHAT_LLM_MODEL", "phi3")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 300, cfg.Index.ChunkSize)
	assert.Equal(t, "phi3", cfg.LLM.Model)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Index.ChunkSize)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		var cfg Config
		applyDefaults(&cfg)
		return &cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "overlap equals chunk size",
			mutate:  func(c *Config) { c.Index.ChunkOverlap = c.Index.ChunkSize },
			wantErr: "chunk_overlap",
		},
		{
			name:    "overlap exceeds chunk size",
			mutate:  func(c *Config) { c.Index.ChunkSize = 100; c.Index.ChunkOverlap = 150 },
			wantErr: "chunk_overlap",
		},
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.Index.ChunkSize = 0 },
			wantErr: "chunk_size",
		},
		{
			name:    "malformed size string",
			mutate:  func(c *Config) { c.Index.MaxFileSize = "ten megabytes" },
			wantErr: "max_file_size",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "port",
		},
		{
			name:    "unknown embedding provider",
			mutate:  func(c *Config) { c.Embedding.Provider = "quantum" },
			wantErr: "embedding provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "1MB", want: 1024 * 1024},
		{in: "512KB", want: 512 * 1024},
		{in: "2GB", want: 2 * 1024 * 1024 * 1024},
		{in: "100B", want: 100},
		{in: "100", want: 100},
		{in: "1.5MB", want: int64(1.5 * 1024 * 1024)},
		{in: " 1 MB ", want: 1024 * 1024},
		{in: "", wantErr: true},
		{in: "MB", wantErr: true},
		{in: "-1MB", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnvOverrideDuration(t *testing.T) {
	t.Setenv("CODECHAT_EMBEDDING_TIMEOUT", "5s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Embedding.Timeout)
}
