package tools

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codechat/internal/crm"
	"github.com/fyrsmithlabs/codechat/internal/tasks"
)

func TestExecuteUnknownTool(t *testing.T) {
	exec := NewExecutor(NewRegistry(), zap.NewNop())

	got := exec.Execute(context.Background(), "no_such_tool", nil)
	assert.Equal(t, `Error: unknown tool "no_such_tool"`, got)
}

func TestExecuteMissingRequiredField(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&Tool{
		Name:     "get_user",
		Required: []string{"user_id"},
		Run: func(ctx context.Context, in Input) (string, error) {
			t.Fatal("run must not be reached without required input")
			return "", nil
		},
	})
	exec := NewExecutor(registry, zap.NewNop())

	got := exec.Execute(context.Background(), "get_user", nil)
	assert.Equal(t, "Error: user_id is required for get_user", got)
}

func TestExecuteToolError(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&Tool{
		Name: "failing",
		Run: func(ctx context.Context, in Input) (string, error) {
			return "", errors.New("backend unavailable")
		},
	})
	exec := NewExecutor(registry, zap.NewNop())

	got := exec.Execute(context.Background(), "failing", Input{})
	assert.Equal(t, "Error: backend unavailable", got)
}

func TestExecuteRecoversPanic(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&Tool{
		Name: "panicking",
		Run: func(ctx context.Context, in Input) (string, error) {
			panic("boom")
		},
	})
	exec := NewExecutor(registry, zap.NewNop())

	got := exec.Execute(context.Background(), "panicking", Input{})
	assert.Equal(t, "Error: panicking failed unexpectedly", got)
}

func TestDescribeListsCatalog(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&Tool{
		Name:        "get_user",
		Description: "Look up a customer record by id",
		Required:    []string{"user_id"},
		Run:         func(ctx context.Context, in Input) (string, error) { return "", nil },
	})
	registry.Register(&Tool{
		Name:        "git_branch",
		Description: "Get the current git branch name",
		Run:         func(ctx context.Context, in Input) (string, error) { return "", nil },
	})

	desc := registry.Describe()
	assert.Contains(t, desc, "- get_user: Look up a customer record by id (required: user_id)")
	assert.Contains(t, desc, "- git_branch: Get the current git branch name")
}

func TestCRMToolsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := crm.NewStore(filepath.Join(dir, "crm.json"))
	_, err := store.AddUser(crm.User{ID: "user_1", Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	registry := NewRegistry()
	RegisterCRMTools(registry, store)
	exec := NewExecutor(registry, zap.NewNop())
	ctx := context.Background()

	out := exec.Execute(ctx, "get_user", Input{"user_id": "user_1"})
	var getResp struct {
		Success bool     `json:"success"`
		User    crm.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &getResp))
	assert.True(t, getResp.Success)
	assert.Equal(t, "Ada", getResp.User.Name)

	out = exec.Execute(ctx, "create_ticket", Input{
		"user_id":     "user_1",
		"title":       "Login broken",
		"description": "cannot sign in",
		"priority":    "high",
	})
	var createResp struct {
		Success  bool   `json:"success"`
		TicketID string `json:"ticket_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &createResp))
	assert.True(t, createResp.Success)
	assert.NotEmpty(t, createResp.TicketID)

	out = exec.Execute(ctx, "list_tickets", Input{"user_id": "user_1"})
	var listResp struct {
		Count   int          `json:"count"`
		Tickets []crm.Ticket `json:"tickets"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listResp))
	assert.Equal(t, 1, listResp.Count)

	out = exec.Execute(ctx, "get_user", Input{"user_id": "user_missing"})
	assert.Contains(t, out, "Error: user not found")
}

func TestSearchTicketsRequiresQueryOrUser(t *testing.T) {
	store := crm.NewStore(filepath.Join(t.TempDir(), "crm.json"))
	registry := NewRegistry()
	RegisterCRMTools(registry, store)
	exec := NewExecutor(registry, zap.NewNop())
	ctx := context.Background()

	got := exec.Execute(ctx, "search_tickets", Input{})
	assert.Equal(t, "Error: query or user_id is required for search_tickets", got)

	got = exec.Execute(ctx, "search_tickets", Input{"query": "login"})
	assert.Contains(t, got, `"count":0`)

	got = exec.Execute(ctx, "search_tickets", Input{"user_id": "user_1"})
	assert.Contains(t, got, `"count":0`)
}

func TestTaskToolsRoundTrip(t *testing.T) {
	store := tasks.NewStore(filepath.Join(t.TempDir(), "tasks.json"))
	registry := NewRegistry()
	RegisterTaskTools(registry, store)
	exec := NewExecutor(registry, zap.NewNop())
	ctx := context.Background()

	out := exec.Execute(ctx, "create_task", Input{
		"title":       "Fix search ranking",
		"description": "ties are unstable",
		"assignee":    "sam",
		"depends_on":  []any{"task_1"},
	})
	var createResp struct {
		Success bool   `json:"success"`
		TaskID  string `json:"task_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &createResp))
	assert.True(t, createResp.Success)

	out = exec.Execute(ctx, "update_task", Input{"task_id": createResp.TaskID, "status": "done"})
	var updateResp struct {
		Task tasks.Task `json:"task"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &updateResp))
	assert.Equal(t, "done", updateResp.Task.Status)
	assert.Equal(t, []string{"task_1"}, updateResp.Task.DependsOn)

	out = exec.Execute(ctx, "list_tasks", Input{"assignee": "sam"})
	assert.Contains(t, out, `"count":1`)

	out = exec.Execute(ctx, "list_tasks", Input{"assignee": "lee"})
	assert.Contains(t, out, `"count":0`)
}
