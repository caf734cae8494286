package tasks

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "tasks.json"))
}

func TestCreateDefaults(t *testing.T) {
	store := newTestStore(t)

	task, err := store.Create(Task{Title: "Fix flaky indexer test"})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "medium", task.Priority)
	assert.Equal(t, "todo", task.Status)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestGet(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create(Task{Title: "Write release notes", Assignee: "sam"})
	require.NoError(t, err)

	got, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write release notes", got.Title)
	assert.Equal(t, "sam", got.Assignee)

	_, err = store.Get("task_missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestListFilters(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create(Task{Title: "A", Priority: "high", Status: "in_progress", Assignee: "sam"})
	require.NoError(t, err)
	_, err = store.Create(Task{Title: "B", Priority: "high", Assignee: "lee"})
	require.NoError(t, err)
	_, err = store.Create(Task{Title: "C", Priority: "low", Assignee: "sam"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "no filter", filter: Filter{}, want: []string{"A", "B", "C"}},
		{name: "by priority", filter: Filter{Priority: "high"}, want: []string{"A", "B"}},
		{name: "by status", filter: Filter{Status: "todo"}, want: []string{"B", "C"}},
		{name: "by assignee", filter: Filter{Assignee: "sam"}, want: []string{"A", "C"}},
		{name: "combined", filter: Filter{Priority: "high", Assignee: "sam"}, want: []string{"A"}},
		{name: "no match", filter: Filter{Status: "done"}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(tt.filter)
			require.NoError(t, err)
			var titles []string
			for _, task := range got {
				titles = append(titles, task.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestUpdate(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create(Task{Title: "Ship v2 search", Assignee: "sam"})
	require.NoError(t, err)

	updated, err := store.Update(created.ID, "in_progress", "", "")
	require.NoError(t, err)
	assert.Equal(t, "in_progress", updated.Status)
	assert.Equal(t, "sam", updated.Assignee, "assignee unchanged when empty")

	updated, err = store.Update(created.ID, "", "high", "lee")
	require.NoError(t, err)
	assert.Equal(t, "in_progress", updated.Status)
	assert.Equal(t, "high", updated.Priority)
	assert.Equal(t, "lee", updated.Assignee)

	_, err = store.Update("task_missing", "done", "", "")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestPersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	first := NewStore(path)
	created, err := first.Create(Task{Title: "Persisted", DependsOn: []string{"task_1"}})
	require.NoError(t, err)

	second := NewStore(path)
	got, err := second.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Persisted", got.Title)
	assert.Equal(t, []string{"task_1"}, got.DependsOn)
}
