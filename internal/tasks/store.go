// Package tasks is the JSON-backed project task store the task tools execute
// against.
package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrTaskNotFound indicates the referenced task does not exist.
var ErrTaskNotFound = errors.New("task not found")

// Task is one project work item.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Assignee    string    `json:"assignee,omitempty"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	DependsOn   []string  `json:"depends_on,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Filter narrows List results. Empty fields match everything.
type Filter struct {
	Status   string
	Priority string
	Assignee string
}

type database struct {
	Tasks []Task `json:"tasks"`
}

// Store provides task reads and writes against one JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store backed by the JSON file at path. A missing file
// reads as an empty task list.
func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) load() (*database, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &database{}, nil
		}
		return nil, fmt.Errorf("reading task store: %w", err)
	}
	var db database
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("parsing task store: %w", err)
	}
	return &db, nil
}

func (s *Store) save(db *database) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling task store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing task store: %w", err)
	}
	return nil
}

// List returns tasks matching the filter, in stored order.
func (s *Store) List(filter Filter) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return nil, err
	}
	var out []Task
	for _, task := range db.Tasks {
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && task.Priority != filter.Priority {
			continue
		}
		if filter.Assignee != "" && task.Assignee != filter.Assignee {
			continue
		}
		out = append(out, task)
	}
	return out, nil
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range db.Tasks {
		if db.Tasks[i].ID == id {
			return &db.Tasks[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}

// Create inserts a new task. Priority defaults to medium, status to todo.
func (s *Store) Create(task Task) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return nil, err
	}

	if task.ID == "" {
		task.ID = "task_" + uuid.NewString()[:8]
	}
	if task.Priority == "" {
		task.Priority = "medium"
	}
	if task.Status == "" {
		task.Status = "todo"
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	db.Tasks = append(db.Tasks, task)
	if err := s.save(db); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update sets a task's status, priority, and/or assignee. Empty fields are
// left unchanged.
func (s *Store) Update(id, status, priority, assignee string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range db.Tasks {
		if db.Tasks[i].ID != id {
			continue
		}
		if status != "" {
			db.Tasks[i].Status = status
		}
		if priority != "" {
			db.Tasks[i].Priority = priority
		}
		if assignee != "" {
			db.Tasks[i].Assignee = assignee
		}
		db.Tasks[i].UpdatedAt = time.Now()
		if err := s.save(db); err != nil {
			return nil, err
		}
		return &db.Tasks[i], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}
