// Package orchestrator drives the ask pipeline: classify the question,
// retrieve context when it helps, and run the bounded tool-calling loop
// against the completion model.
package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codechat/internal/llm"
	"github.com/fyrsmithlabs/codechat/internal/retrieval"
	"github.com/fyrsmithlabs/codechat/internal/tools"
)

// maxToolIterations caps the tool loop. The cap is the loop's only
// termination guarantee against a model that always requests a tool.
const maxToolIterations = 5

// Searcher is the retrieval dependency.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) []retrieval.SearchResult
}

// ToolRunner is the tool execution dependency.
type ToolRunner interface {
	Execute(ctx context.Context, name string, in tools.Input) string
	Describe() string
}

// Answer is the result of one ask call.
type Answer struct {
	Text       string   `json:"text"`
	Sources    []string `json:"sources,omitempty"`
	ToolsUsed  []string `json:"tools_used,omitempty"`
	Confidence float64  `json:"confidence"`
	Category   string   `json:"category"`
}

// Assistant answers questions. One Assistant processes one question at a
// time; callers serialize.
type Assistant struct {
	retriever  Searcher
	runner     ToolRunner
	llm        llm.Completer
	classifier *Classifier
	parser     DirectiveParser
	maxResults int
	logger     *zap.Logger
}

// NewAssistant wires the pipeline. retriever may be nil when no index is
// loaded; runner may be nil to disable tools.
func NewAssistant(retriever Searcher, runner ToolRunner, completer llm.Completer, maxResults int, logger *zap.Logger) *Assistant {
	if maxResults <= 0 {
		maxResults = retrieval.DefaultMaxResults
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{
		retriever:  retriever,
		runner:     runner,
		llm:        completer,
		classifier: NewClassifier(completer),
		maxResults: maxResults,
		logger:     logger,
	}
}

// Ask answers one question. It never returns an error: every failure mode
// degrades to a best-effort answer with whatever sources were gathered.
func (a *Assistant) Ask(ctx context.Context, question string) *Answer {
	category := a.classifier.Classify(ctx, question)
	a.logger.Debug("question classified",
		zap.String("category", string(category)),
		zap.String("question", question))

	var results []retrieval.SearchResult
	if a.retriever != nil {
		if category == CategoryRAG || a.classifier.IsAnalytical(ctx, question) {
			results = a.retriever.Search(ctx, question, a.maxResults)
		}
	}

	sources := sourcePaths(results)
	answer := &Answer{
		Sources:  sources,
		Category: string(category),
	}

	text, toolsUsed := a.generate(ctx, question, category, results)
	if text == "" {
		text = a.fallbackAnswer(question, results)
	}
	answer.Text = text
	answer.ToolsUsed = toolsUsed
	answer.Confidence = confidence(len(sources))
	return answer
}

// generate runs the tool loop and returns the accumulated answer text. An
// empty return means generation failed outright and the caller should fall
// back to the template answer.
func (a *Assistant) generate(ctx context.Context, question string, category Category, results []retrieval.SearchResult) (string, []string) {
	if a.llm == nil {
		return "", nil
	}

	toolCatalog := ""
	if a.runner != nil && category != CategoryRAG {
		toolCatalog = a.runner.Describe()
	}

	prompt := generationPrompt(question, results, toolCatalog)

	var partial strings.Builder
	var toolsUsed []string
	seen := make(map[string]bool)

	for i := 0; i < maxToolIterations; i++ {
		resp, err := a.llm.Complete(ctx, prompt)
		if err != nil {
			a.logger.Warn("completion failed", zap.Int("iteration", i), zap.Error(err))
			return strings.TrimSpace(partial.String()), toolsUsed
		}

		directive, ok := a.parser.Parse(resp)
		if !ok || a.runner == nil {
			if partial.Len() > 0 {
				partial.WriteString("\n")
			}
			partial.WriteString(strings.TrimSpace(resp))
			return strings.TrimSpace(partial.String()), toolsUsed
		}

		if directive.Prefix != "" {
			if partial.Len() > 0 {
				partial.WriteString("\n")
			}
			partial.WriteString(directive.Prefix)
		}
		if !seen[directive.Tool] {
			seen[directive.Tool] = true
			toolsUsed = append(toolsUsed, directive.Tool)
		}

		result := a.runner.Execute(ctx, directive.Tool, directive.Input)
		a.logger.Debug("tool executed",
			zap.String("tool", directive.Tool),
			zap.Int("iteration", i))

		prompt = followUpPrompt(question, directive.Tool, result, toolCatalog)
	}

	return strings.TrimSpace(partial.String()), toolsUsed
}

// fallbackAnswer synthesizes a deterministic answer from retrieval alone.
func (a *Assistant) fallbackAnswer(question string, results []retrieval.SearchResult) string {
	if len(results) == 0 {
		return "I could not find relevant information in the codebase for that question."
	}

	topics := topKeywords(question, 3)
	files := sourcePaths(results)
	return fmt.Sprintf("Based on the codebase, found information about: %s. Most relevant files are %s.",
		strings.Join(topics, ", "), strings.Join(files, ", "))
}

// confidence maps source count to a coarse trust score.
func confidence(sources int) float64 {
	switch {
	case sources == 0:
		return 0.0
	case sources >= 3:
		return 0.9
	case sources >= 1:
		return 0.7
	default:
		return 0.5
	}
}

// sourcePaths returns the distinct source files of a result list, in rank
// order.
func sourcePaths(results []retrieval.SearchResult) []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range results {
		if seen[r.Source] {
			continue
		}
		seen[r.Source] = true
		out = append(out, r.Source)
	}
	return out
}

// topKeywords extracts up to n salient terms from the question for the
// fallback template.
func topKeywords(question string, n int) []string {
	terms := retrieval.Tokenize(question)
	if len(terms) > n {
		terms = terms[:n]
	}
	if len(terms) == 0 {
		terms = []string{"the codebase"}
	}
	return terms
}
