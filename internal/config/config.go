// Package config provides configuration loading for codechat.
//
// Configuration is loaded from a YAML file, then overridden by environment
// variables, with hardcoded defaults filling any gaps.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete codechat configuration.
type Config struct {
	Index        IndexConfig        `koanf:"index"`
	Embedding    EmbeddingConfig    `koanf:"embedding"`
	LLM          LLMConfig          `koanf:"llm"`
	Server       ServerConfig       `koanf:"server"`
	Stores       StoresConfig       `koanf:"stores"`
	Conversation ConversationConfig `koanf:"conversation"`
	Logging      LoggingConfig      `koanf:"logging"`
}

// IndexConfig holds chunk indexing configuration.
type IndexConfig struct {
	// Folders are the root directories to index.
	Folders []string `koanf:"folders"`

	// IncludeTypes are the admitted file extensions (e.g. ".go", ".md").
	IncludeTypes []string `koanf:"include_types"`

	// ExcludeFolders are directory names skipped anywhere in the tree.
	ExcludeFolders []string `koanf:"exclude_folders"`

	// ExcludePatterns are glob patterns ('*' any run, '?' single char)
	// matched against relative paths and their path suffixes.
	ExcludePatterns []string `koanf:"exclude_patterns"`

	// MaxFileSize is a human-readable byte ceiling (e.g. "1MB").
	MaxFileSize string `koanf:"max_file_size"`

	// ChunkSize is the window length in words.
	ChunkSize int `koanf:"chunk_size"`

	// ChunkOverlap is the number of words shared between adjacent windows.
	// Must be strictly less than ChunkSize.
	ChunkOverlap int `koanf:"chunk_overlap"`

	// DataDir is where chunks.json and stats.json are persisted.
	DataDir string `koanf:"data_dir"`
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	// Provider is "remote", "fallback", or "none".
	Provider string `koanf:"provider"`

	// BaseURL is the remote embedding endpoint base URL.
	BaseURL string `koanf:"base_url"`

	// Model is the embedding model name sent to the remote endpoint.
	Model string `koanf:"model"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `koanf:"timeout"`

	// RequestInterval paces successive embedding requests.
	RequestInterval time.Duration `koanf:"request_interval"`

	// Dimension is the fallback vectorizer width.
	Dimension int `koanf:"dimension"`
}

// LLMConfig holds text-completion client configuration.
type LLMConfig struct {
	// BaseURL is an OpenAI-compatible completion endpoint.
	BaseURL string `koanf:"base_url"`

	// Model is the completion model name.
	Model string `koanf:"model"`

	// APIKey is optional for local servers.
	APIKey string `koanf:"api_key"`

	// Timeout bounds a single completion call.
	Timeout time.Duration `koanf:"timeout"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// StoresConfig holds paths for the JSON-backed collaborator stores.
type StoresConfig struct {
	CRMPath   string `koanf:"crm_path"`
	TasksPath string `koanf:"tasks_path"`
}

// ConversationConfig holds conversation history configuration.
type ConversationConfig struct {
	// MaxHistory bounds the retained message count.
	MaxHistory int `koanf:"max_history"`
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is "json" or "console".
	Format string `koanf:"format"`
}

// applyDefaults fills unset fields with defaults.
func applyDefaults(cfg *Config) {
	if len(cfg.Index.Folders) == 0 {
		cfg.Index.Folders = []string{"."}
	}
	if len(cfg.Index.IncludeTypes) == 0 {
		cfg.Index.IncludeTypes = []string{".go", ".md", ".txt", ".js", ".ts", ".py", ".yaml", ".yml", ".json"}
	}
	if len(cfg.Index.ExcludeFolders) == 0 {
		cfg.Index.ExcludeFolders = []string{".git", "node_modules", "vendor", "dist", "build"}
	}
	if cfg.Index.MaxFileSize == "" {
		cfg.Index.MaxFileSize = "1MB"
	}
	if cfg.Index.ChunkSize == 0 {
		cfg.Index.ChunkSize = 400
	}
	if cfg.Index.ChunkOverlap == 0 {
		cfg.Index.ChunkOverlap = 100
	}
	if cfg.Index.DataDir == "" {
		cfg.Index.DataDir = ".codechat"
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "none"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:11434"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "nomic-embed-text"
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = 10 * time.Second
	}
	if cfg.Embedding.RequestInterval == 0 {
		cfg.Embedding.RequestInterval = 100 * time.Millisecond
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = 256
	}

	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "http://localhost:11434/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama3.1"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60 * time.Second
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8087
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Stores.CRMPath == "" {
		cfg.Stores.CRMPath = ".codechat/crm.json"
	}
	if cfg.Stores.TasksPath == "" {
		cfg.Stores.TasksPath = ".codechat/tasks.json"
	}

	if cfg.Conversation.MaxHistory == 0 {
		cfg.Conversation.MaxHistory = 50
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// Validate validates the configuration.
//
// Returns an error if:
//   - ChunkSize is not positive
//   - ChunkOverlap is negative or not strictly less than ChunkSize
//   - MaxFileSize does not parse
//   - Server port is out of range
//   - Embedding provider is unknown
func (c *Config) Validate() error {
	if c.Index.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.Index.ChunkSize)
	}
	if c.Index.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap cannot be negative, got %d", c.Index.ChunkOverlap)
	}
	if c.Index.ChunkOverlap >= c.Index.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be less than chunk_size (%d)",
			c.Index.ChunkOverlap, c.Index.ChunkSize)
	}
	if _, err := ParseSize(c.Index.MaxFileSize); err != nil {
		return fmt.Errorf("invalid max_file_size: %w", err)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	switch c.Embedding.Provider {
	case "remote", "fallback", "none":
	default:
		return fmt.Errorf("unknown embedding provider: %q", c.Embedding.Provider)
	}

	if c.Conversation.MaxHistory <= 0 {
		return errors.New("conversation max_history must be positive")
	}

	return nil
}
