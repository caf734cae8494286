// Package llm wraps the text-completion oracle behind a single-method
// interface. No native function-calling API is assumed; tool invocation rides
// on a markup directive parsed by the orchestrator.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrCompletionFailed indicates a completion call failure.
	ErrCompletionFailed = errors.New("completion failed")
)

// Completer is the minimal interface the orchestrator needs from a language
// model: single-turn prompt in, text out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds completion client configuration.
type Config struct {
	// BaseURL is an OpenAI-compatible endpoint (works for local servers
	// like Ollama and vLLM as well as the OpenAI API).
	BaseURL string

	// Model is the completion model name.
	Model string

	// APIKey is optional for local servers.
	APIKey string

	// Timeout bounds a single completion call.
	Timeout time.Duration
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	return nil
}

// Client is a Completer backed by langchaingo's OpenAI-compatible client.
type Client struct {
	llm     *openai.LLM
	timeout time.Duration
}

// NewClient creates a completion client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		// langchaingo requires a token; local servers ignore it.
		apiKey = "placeholder"
	}

	model, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("creating completion client: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{llm: model, timeout: timeout}, nil
}

// Complete runs one prompt through the model and returns its text response.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	out, err := llms.GenerateFromSinglePrompt(callCtx, c.llm, prompt)
	completionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		completionsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}
	completionsTotal.WithLabelValues("ok").Inc()
	return out, nil
}
