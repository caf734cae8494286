package main

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codechat/internal/config"
	"github.com/fyrsmithlabs/codechat/internal/conversation"
	"github.com/fyrsmithlabs/codechat/internal/crm"
	"github.com/fyrsmithlabs/codechat/internal/embeddings"
	"github.com/fyrsmithlabs/codechat/internal/gitinfo"
	"github.com/fyrsmithlabs/codechat/internal/index"
	"github.com/fyrsmithlabs/codechat/internal/llm"
	"github.com/fyrsmithlabs/codechat/internal/logging"
	"github.com/fyrsmithlabs/codechat/internal/orchestrator"
	"github.com/fyrsmithlabs/codechat/internal/retrieval"
	"github.com/fyrsmithlabs/codechat/internal/tasks"
	"github.com/fyrsmithlabs/codechat/internal/tools"
)

// app wires the configured components together. It is the Backend the HTTP
// server and the CLI commands both delegate to.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	embedder  embeddings.Provider
	store     *index.Store
	crmStore  *crm.Store
	taskStore *tasks.Store
	history   *conversation.History

	mu        sync.RWMutex
	assistant *orchestrator.Assistant
	retriever *retrieval.Retriever
}

// newApp loads configuration and constructs every component except the
// retriever, which requires a persisted index.
func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	embedder, err := embeddings.NewProvider(embeddings.Config{
		Provider:        cfg.Embedding.Provider,
		BaseURL:         cfg.Embedding.BaseURL,
		Model:           cfg.Embedding.Model,
		Timeout:         cfg.Embedding.Timeout,
		RequestInterval: cfg.Embedding.RequestInterval,
		Dimension:       cfg.Embedding.Dimension,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding provider: %w", err)
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		embedder:  embedder,
		store:     index.NewStore(cfg.Index.DataDir),
		crmStore:  crm.NewStore(cfg.Stores.CRMPath),
		taskStore: tasks.NewStore(cfg.Stores.TasksPath),
		history:   conversation.NewHistory(cfg.Conversation.MaxHistory),
	}
	a.buildAssistant()
	return a, nil
}

// buildAssistant assembles the tool registry and the orchestrator around the
// current retriever.
func (a *app) buildAssistant() {
	registry := tools.NewRegistry()
	tools.RegisterGitTools(registry, gitinfo.NewService("."))
	tools.RegisterCRMTools(registry, a.crmStore)
	tools.RegisterTaskTools(registry, a.taskStore)
	executor := tools.NewExecutor(registry, a.logger)

	completer, err := llm.NewClient(llm.Config{
		BaseURL: a.cfg.LLM.BaseURL,
		Model:   a.cfg.LLM.Model,
		APIKey:  a.cfg.LLM.APIKey,
		Timeout: a.cfg.LLM.Timeout,
	})
	if err != nil {
		a.logger.Warn("completion client unavailable, answers degrade to retrieval templates", zap.Error(err))
	}

	var searcher orchestrator.Searcher
	if a.retriever != nil {
		searcher = a.retriever
	}
	var c llm.Completer
	if completer != nil {
		c = completer
	}
	a.assistant = orchestrator.NewAssistant(searcher, executor, c, retrieval.DefaultMaxResults, a.logger)
}

// loadIndex loads the persisted index and swaps in a retriever over it.
func (a *app) loadIndex() error {
	result, err := a.store.Load()
	if err != nil {
		return fmt.Errorf("loading index: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.retriever = retrieval.NewRetriever(result.Chunks, a.embedder, a.logger)
	a.buildAssistant()
	return nil
}

// Reindex runs a full indexing pass, persists the result, and swaps in a
// fresh retriever.
func (a *app) Reindex(ctx context.Context) (*index.Stats, error) {
	indexer, err := index.NewIndexer(index.Options{
		Folders:         a.cfg.Index.Folders,
		IncludeTypes:    a.cfg.Index.IncludeTypes,
		ExcludeFolders:  a.cfg.Index.ExcludeFolders,
		ExcludePatterns: a.cfg.Index.ExcludePatterns,
		MaxFileSize:     a.cfg.Index.MaxFileSize,
		ChunkSize:       a.cfg.Index.ChunkSize,
		ChunkOverlap:    a.cfg.Index.ChunkOverlap,
	}, a.embedder, a.logger)
	if err != nil {
		return nil, err
	}

	result, err := indexer.Index(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.store.Save(result); err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.retriever = retrieval.NewRetriever(result.Chunks, a.embedder, a.logger)
	a.buildAssistant()
	a.mu.Unlock()

	a.logger.Info("index rebuilt",
		zap.Int("files", result.Stats.FileCount),
		zap.Int("chunks", result.Stats.ChunkCount))
	return result.Stats, nil
}

// Ask answers a question and records the exchange in the session history.
func (a *app) Ask(ctx context.Context, question string) *orchestrator.Answer {
	a.mu.RLock()
	assistant := a.assistant
	a.mu.RUnlock()

	a.history.Add(conversation.RoleUser, question, nil)
	answer := assistant.Ask(ctx, question)
	a.history.Add(conversation.RoleAssistant, answer.Text, answer.Sources)
	return answer
}

// Search runs a retrieval query without the LLM loop.
func (a *app) Search(ctx context.Context, query string, maxResults int) []retrieval.SearchResult {
	a.mu.RLock()
	retriever := a.retriever
	a.mu.RUnlock()

	if retriever == nil {
		return nil
	}
	return retriever.Search(ctx, query, maxResults)
}
