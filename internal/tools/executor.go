package tools

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var executionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "codechat",
		Subsystem: "tools",
		Name:      "executions_total",
		Help:      "Tool executions by tool name and outcome.",
	},
	[]string{"tool", "result"},
)

// Executor runs registered tools. Execute never returns an error: every
// failure mode is folded into the result string so the orchestrator loop can
// hand it back to the model as regular tool output.
type Executor struct {
	registry *Registry
	logger   *zap.Logger
}

// NewExecutor creates an executor over a registry.
func NewExecutor(registry *Registry, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{registry: registry, logger: logger}
}

// Execute runs the named tool with the given input and returns its textual
// result. Unknown tools, missing required fields, tool errors, and panics all
// come back as "Error: ..." strings.
func (e *Executor) Execute(ctx context.Context, name string, in Input) (result string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tool panicked", zap.String("tool", name), zap.Any("panic", r))
			executionsTotal.WithLabelValues(name, "panic").Inc()
			result = fmt.Sprintf("Error: %s failed unexpectedly", name)
		}
	}()

	tool, ok := e.registry.Get(name)
	if !ok {
		executionsTotal.WithLabelValues(name, "unknown").Inc()
		return fmt.Sprintf("Error: unknown tool %q", name)
	}

	if in == nil {
		in = Input{}
	}
	if err := tool.validateInput(in); err != nil {
		executionsTotal.WithLabelValues(name, "invalid_input").Inc()
		return fmt.Sprintf("Error: %s", err)
	}

	out, err := tool.Run(ctx, in)
	if err != nil {
		e.logger.Warn("tool failed", zap.String("tool", name), zap.Error(err))
		executionsTotal.WithLabelValues(name, "error").Inc()
		return fmt.Sprintf("Error: %s", err)
	}
	executionsTotal.WithLabelValues(name, "ok").Inc()
	return out
}

// Describe exposes the registry's prompt-ready catalog.
func (e *Executor) Describe() string {
	return e.registry.Describe()
}
