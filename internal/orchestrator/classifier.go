package orchestrator

import (
	"context"
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/codechat/internal/llm"
)

// Category is a question's routed intent.
type Category string

const (
	CategoryGit   Category = "git"
	CategoryCRM   Category = "crm"
	CategoryTasks Category = "tasks"
	CategoryRAG   Category = "rag"
)

var (
	gitHints = regexp.MustCompile(`(?i)\b(git|branch|commit|repo|repository|status|diff|merge)\b`)
	crmHints = regexp.MustCompile(`(?i)\b(user|customer|ticket|tickets|support|crm|complaint)\b`)
	// task hints avoid bare "do" and "work" to keep rag questions out.
	taskHints       = regexp.MustCompile(`(?i)\b(task|tasks|todo|assignee|assigned|backlog|sprint|priorit)\w*`)
	analyticalHints = regexp.MustCompile(`(?i)\b(why|should|recommend|first|best|prioritize|approach|strategy|decide)\b`)
)

// Classifier routes a question to a category using regex heuristics, falling
// back to a one-word LLM call for phrasing the heuristics miss.
type Classifier struct {
	llm llm.Completer
}

// NewClassifier creates a classifier. The completer may be nil, in which case
// ambiguous questions default to rag.
func NewClassifier(completer llm.Completer) *Classifier {
	return &Classifier{llm: completer}
}

// Classify determines the question's intent category.
func (c *Classifier) Classify(ctx context.Context, question string) Category {
	switch {
	case gitHints.MatchString(question):
		return CategoryGit
	case crmHints.MatchString(question):
		return CategoryCRM
	case taskHints.MatchString(question):
		return CategoryTasks
	}

	if c.llm != nil {
		resp, err := c.llm.Complete(ctx, classifyPrompt(question))
		if err == nil {
			switch parseCategoryWord(resp) {
			case CategoryGit, CategoryCRM, CategoryTasks, CategoryRAG:
				return parseCategoryWord(resp)
			}
		}
	}
	return CategoryRAG
}

// IsAnalytical reports whether the question needs retrieved context on top of
// tool data. Heuristics first, then a one-word yes/no LLM call.
func (c *Classifier) IsAnalytical(ctx context.Context, question string) bool {
	if analyticalHints.MatchString(question) {
		return true
	}
	if c.llm == nil {
		return false
	}
	resp, err := c.llm.Complete(ctx, analyticalPrompt(question))
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(resp)), "yes")
}

// parseCategoryWord extracts the first category word from an LLM response.
func parseCategoryWord(resp string) Category {
	word := strings.ToLower(strings.TrimSpace(resp))
	if i := strings.IndexFunc(word, func(r rune) bool {
		return r < 'a' || r > 'z'
	}); i > 0 {
		word = word[:i]
	}
	return Category(word)
}
