// Package tools defines the fixed catalog of operations the assistant can
// invoke against its collaborators, plus the executor that runs them behind a
// never-throws boundary.
package tools

import (
	"context"
	"fmt"
	"strings"
)

// Input carries a tool invocation's decoded JSON arguments.
type Input map[string]any

// Str returns the string value for key, or "" when absent or not a string.
func (in Input) Str(key string) string {
	v, ok := in[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Strs returns the string-slice value for key. JSON arrays decode as []any,
// so each element is converted individually.
func (in Input) Strs(key string) []string {
	v, ok := in[key]
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// InputError reports a missing required field on a tool invocation.
type InputError struct {
	Tool  string
	Field string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s is required for %s", e.Field, e.Tool)
}

// Tool is one registered operation.
type Tool struct {
	Name        string
	Description string
	Required    []string
	Optional    []string

	// Validate replaces the default required-field presence check when set.
	Validate func(in Input) error

	Run func(ctx context.Context, in Input) (string, error)
}

// validateInput applies the tool's presence rules to an invocation.
func (t *Tool) validateInput(in Input) error {
	if t.Validate != nil {
		return t.Validate(in)
	}
	for _, field := range t.Required {
		if strings.TrimSpace(in.Str(field)) == "" {
			return &InputError{Tool: t.Name, Field: field}
		}
	}
	return nil
}
