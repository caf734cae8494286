package tools

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry holds the tool catalog. Registration happens at startup; lookups
// happen on every orchestrator iteration.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool. Re-registering a name replaces the previous entry.
func (r *Registry) Register(tool *Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name] = tool
}

// Get returns the named tool.
func (r *Registry) Get(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe renders the catalog for inclusion in an LLM prompt, one line per
// tool with its input contract.
func (r *Registry) Describe() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		tool := r.tools[name]
		fmt.Fprintf(&b, "- %s: %s", tool.Name, tool.Description)
		if len(tool.Required) > 0 {
			fmt.Fprintf(&b, " (required: %s)", strings.Join(tool.Required, ", "))
		}
		if len(tool.Optional) > 0 {
			fmt.Fprintf(&b, " (optional: %s)", strings.Join(tool.Optional, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
