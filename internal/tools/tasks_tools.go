package tools

import (
	"context"

	"github.com/fyrsmithlabs/codechat/internal/tasks"
)

// RegisterTaskTools adds the project task tools.
func RegisterTaskTools(r *Registry, store *tasks.Store) {
	r.Register(&Tool{
		Name:        "list_tasks",
		Description: "List project tasks",
		Optional:    []string{"priority", "status", "assignee"},
		Run: func(ctx context.Context, in Input) (string, error) {
			list, err := store.List(tasks.Filter{
				Priority: in.Str("priority"),
				Status:   in.Str("status"),
				Assignee: in.Str("assignee"),
			})
			if err != nil {
				return "", err
			}
			return asJSON(map[string]any{"count": len(list), "tasks": list})
		},
	})

	r.Register(&Tool{
		Name:        "get_task",
		Description: "Look up a task by id",
		Required:    []string{"task_id"},
		Run: func(ctx context.Context, in Input) (string, error) {
			task, err := store.Get(in.Str("task_id"))
			if err != nil {
				return "", err
			}
			return asJSON(map[string]any{"success": true, "task": task})
		},
	})

	r.Register(&Tool{
		Name:        "create_task",
		Description: "Create a new project task",
		Required:    []string{"title", "description", "assignee"},
		Optional:    []string{"priority", "depends_on"},
		Run: func(ctx context.Context, in Input) (string, error) {
			task, err := store.Create(tasks.Task{
				Title:       in.Str("title"),
				Description: in.Str("description"),
				Assignee:    in.Str("assignee"),
				Priority:    in.Str("priority"),
				DependsOn:   in.Strs("depends_on"),
			})
			if err != nil {
				return "", err
			}
			return asJSON(map[string]any{"success": true, "task_id": task.ID})
		},
	})

	r.Register(&Tool{
		Name:        "update_task",
		Description: "Update a task's status, priority, or assignee",
		Required:    []string{"task_id"},
		Optional:    []string{"status", "priority", "assignee"},
		Run: func(ctx context.Context, in Input) (string, error) {
			task, err := store.Update(in.Str("task_id"), in.Str("status"), in.Str("priority"), in.Str("assignee"))
			if err != nil {
				return "", err
			}
			return asJSON(map[string]any{"success": true, "task": task})
		},
	})
}
