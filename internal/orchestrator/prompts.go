package orchestrator

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/codechat/internal/retrieval"
)

const systemPersona = `You are a codebase assistant. Answer developer questions using the provided context and tools. Be concise and cite file paths when they are relevant.`

const toolContract = `To use a tool, respond with a directive of this exact form, optionally preceded by explanatory text:
<tool>tool_name</tool>
<input>{"key": "value"}</input>
The <input> block is optional for tools that take no arguments. If no tool is needed, answer directly.`

// classifyPrompt asks for a single category word.
func classifyPrompt(question string) string {
	return fmt.Sprintf(`Classify the question into exactly one category: git, crm, tasks, or rag.
Answer with the single category word only.

Question: %s
Category:`, question)
}

// analyticalPrompt asks whether the question needs reasoning over codebase
// context in addition to raw tool data.
func analyticalPrompt(question string) string {
	return fmt.Sprintf(`Does answering this question require analysis or recommendations beyond listing raw data? Answer yes or no only.

Question: %s
Answer:`, question)
}

// generationPrompt builds the first tool-loop prompt.
func generationPrompt(question string, context []retrieval.SearchResult, toolCatalog string) string {
	var b strings.Builder
	b.WriteString(systemPersona)
	b.WriteString("\n\n")

	if len(context) > 0 {
		b.WriteString("Relevant codebase context:\n")
		for _, r := range context {
			fmt.Fprintf(&b, "--- %s ---\n%s\n", r.Source, r.Content)
		}
		b.WriteString("\n")
	}

	if toolCatalog != "" {
		b.WriteString("Available tools:\n")
		b.WriteString(toolCatalog)
		b.WriteString("\n")
		b.WriteString(toolContract)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Question: %s\n", question)
	return b.String()
}

// followUpPrompt restates the question with a tool result and confines the
// model to that result.
func followUpPrompt(question, toolName, toolResult, toolCatalog string) string {
	var b strings.Builder
	b.WriteString(systemPersona)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Original question: %s\n\n", question)
	fmt.Fprintf(&b, "Result of %s:\n%s\n\n", toolName, toolResult)
	b.WriteString("Answer the original question using only the tool result above.")
	if toolCatalog != "" {
		b.WriteString(" If another tool call is required, use the directive format:\n")
		b.WriteString(toolContract)
	}
	b.WriteString("\n")
	return b.String()
}
