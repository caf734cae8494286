// Package crm is the JSON-backed customer store the CRM tools execute
// against. Every call is a read-modify-write of one flat file; this is safe
// only under the single-writer-process assumption.
package crm

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrTicketNotFound indicates the referenced ticket does not exist.
	ErrTicketNotFound = errors.New("ticket not found")
)

// User is a CRM customer record.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Message is one entry in a ticket's conversation.
type Message struct {
	Sender string    `json:"sender"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// Ticket is a CRM support ticket.
type Ticket struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	Messages    []Message `json:"messages,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// database is the on-disk shape.
type database struct {
	Users   []User   `json:"users"`
	Tickets []Ticket `json:"tickets"`
}

// Store provides CRM reads and writes against one JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store backed by the JSON file at path. A missing file
// reads as an empty database.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// load reads the database file.
func (s *Store) load() (*database, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &database{}, nil
		}
		return nil, fmt.Errorf("reading CRM store: %w", err)
	}
	var db database
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("parsing CRM store: %w", err)
	}
	return &db, nil
}

// save writes the database file.
func (s *Store) save(db *database) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling CRM store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing CRM store: %w", err)
	}
	return nil
}

// GetUser returns the user with the given id.
func (s *Store) GetUser(id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range db.Users {
		if db.Users[i].ID == id {
			return &db.Users[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
}

// AddUser inserts a user record. An empty ID gets a generated one.
func (s *Store) AddUser(user User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return nil, err
	}
	if user.ID == "" {
		user.ID = "user_" + uuid.NewString()[:8]
	}
	db.Users = append(db.Users, user)
	if err := s.save(db); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListTickets returns a user's tickets, optionally filtered by status.
func (s *Store) ListTickets(userID, status string) ([]Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return nil, err
	}
	var out []Ticket
	for _, t := range db.Tickets {
		if t.UserID != userID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// CreateTicket opens a new ticket for a user.
func (s *Store) CreateTicket(userID, title, description, category, priority string) (*Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return nil, err
	}

	if priority == "" {
		priority = "medium"
	}
	now := time.Now()
	ticket := Ticket{
		ID:          "ticket_" + uuid.NewString()[:8],
		UserID:      userID,
		Title:       title,
		Description: description,
		Category:    category,
		Priority:    priority,
		Status:      "open",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	db.Tickets = append(db.Tickets, ticket)
	if err := s.save(db); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// UpdateTicket sets a ticket's status and/or priority. Empty fields are left
// unchanged.
func (s *Store) UpdateTicket(ticketID, status, priority string) (*Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range db.Tickets {
		if db.Tickets[i].ID != ticketID {
			continue
		}
		if status != "" {
			db.Tickets[i].Status = status
		}
		if priority != "" {
			db.Tickets[i].Priority = priority
		}
		db.Tickets[i].UpdatedAt = time.Now()
		if err := s.save(db); err != nil {
			return nil, err
		}
		return &db.Tickets[i], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
}

// AddMessage appends a message to a ticket's conversation.
func (s *Store) AddMessage(ticketID, sender, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return err
	}
	if sender == "" {
		sender = "agent"
	}
	for i := range db.Tickets {
		if db.Tickets[i].ID != ticketID {
			continue
		}
		db.Tickets[i].Messages = append(db.Tickets[i].Messages, Message{
			Sender: sender,
			Text:   text,
			SentAt: time.Now(),
		})
		db.Tickets[i].UpdatedAt = time.Now()
		return s.save(db)
	}
	return fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
}

// SearchTickets returns tickets matching a case-insensitive substring of
// title or description, a user id, or both.
func (s *Store) SearchTickets(query, userID string) ([]Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(query)
	var out []Ticket
	for _, t := range db.Tickets {
		if userID != "" && t.UserID != userID {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(t.Title), query) &&
			!strings.Contains(strings.ToLower(t.Description), query) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
