package orchestrator

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/codechat/internal/tools"
)

// Directive is one tool invocation request extracted from a model response.
type Directive struct {
	Tool  string
	Input tools.Input

	// Prefix is any answer text the model produced before the directive.
	Prefix string
}

var (
	toolPattern  = regexp.MustCompile(`<tool>\s*([a-zA-Z0-9_]+)\s*</tool>`)
	inputPattern = regexp.MustCompile(`(?s)<input>\s*(.*?)\s*</input>`)
)

// DirectiveParser extracts tool directives from free-form model output. The
// markup protocol lives entirely here so a structured function-calling API
// can replace it without touching the loop.
type DirectiveParser struct{}

// Parse scans a model response for a tool directive. The second return is
// false when the response contains none, meaning the response is a final
// answer. Malformed input JSON reads as an empty input.
func (DirectiveParser) Parse(response string) (*Directive, bool) {
	toolMatch := toolPattern.FindStringSubmatchIndex(response)
	if toolMatch == nil {
		return nil, false
	}

	d := &Directive{
		Tool:   response[toolMatch[2]:toolMatch[3]],
		Prefix: strings.TrimSpace(response[:toolMatch[0]]),
	}

	if inputMatch := inputPattern.FindStringSubmatch(response); inputMatch != nil {
		var in tools.Input
		if err := json.Unmarshal([]byte(inputMatch[1]), &in); err == nil {
			d.Input = in
		}
	}
	return d, true
}
