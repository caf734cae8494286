package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces codechat environment variables.
const envPrefix = "CODECHAT_"

// Load loads configuration from an optional YAML file, then overrides with
// environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (CODECHAT_INDEX_CHUNK_SIZE, CODECHAT_LLM_MODEL, ...)
//  2. YAML config file
//  3. Hardcoded defaults
//
// Environment variables map to config keys by stripping the prefix, lowercasing,
// and splitting on the first underscore:
//
//	CODECHAT_SERVER_PORT          -> server.port
//	CODECHAT_INDEX_CHUNK_SIZE     -> index.chunk_size
//	CODECHAT_EMBEDDING_BASE_URL   -> embedding.base_url
//
// A missing config file is not an error; defaults apply.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else {
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("loading config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		// CODECHAT_INDEX_CHUNK_SIZE -> index.chunk_size
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
