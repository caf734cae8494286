package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/codechat/internal/crm"
)

// asJSON renders a tool result payload. Marshal failures are programming
// errors on our own types, surfaced as tool errors rather than panics.
func asJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	return string(data), nil
}

// RegisterCRMTools adds the customer and ticket tools.
func RegisterCRMTools(r *Registry, store *crm.Store) {
	r.Register(&Tool{
		Name:        "get_user",
		Description: "Look up a customer record by id",
		Required:    []string{"user_id"},
		Run: func(ctx context.Context, in Input) (string, error) {
			user, err := store.GetUser(in.Str("user_id"))
			if err != nil {
				return "", err
			}
			return asJSON(map[string]any{"success": true, "user": user})
		},
	})

	r.Register(&Tool{
		Name:        "list_tickets",
		Description: "List a customer's support tickets",
		Required:    []string{"user_id"},
		Optional:    []string{"status"},
		Run: func(ctx context.Context, in Input) (string, error) {
			tickets, err := store.ListTickets(in.Str("user_id"), in.Str("status"))
			if err != nil {
				return "", err
			}
			return asJSON(map[string]any{"count": len(tickets), "tickets": tickets})
		},
	})

	r.Register(&Tool{
		Name:        "create_ticket",
		Description: "Open a new support ticket for a customer",
		Required:    []string{"user_id", "title", "description"},
		Optional:    []string{"category", "priority"},
		Run: func(ctx context.Context, in Input) (string, error) {
			ticket, err := store.CreateTicket(
				in.Str("user_id"), in.Str("title"), in.Str("description"),
				in.Str("category"), in.Str("priority"),
			)
			if err != nil {
				return "", err
			}
			return asJSON(map[string]any{"success": true, "ticket_id": ticket.ID})
		},
	})

	r.Register(&Tool{
		Name:        "update_ticket",
		Description: "Update a ticket's status or priority",
		Required:    []string{"ticket_id"},
		Optional:    []string{"status", "priority"},
		Run: func(ctx context.Context, in Input) (string, error) {
			ticket, err := store.UpdateTicket(in.Str("ticket_id"), in.Str("status"), in.Str("priority"))
			if err != nil {
				return "", err
			}
			return asJSON(map[string]any{"success": true, "ticket": ticket})
		},
	})

	r.Register(&Tool{
		Name:        "add_message",
		Description: "Add a message to a ticket's conversation",
		Required:    []string{"ticket_id", "text"},
		Optional:    []string{"sender"},
		Run: func(ctx context.Context, in Input) (string, error) {
			if err := store.AddMessage(in.Str("ticket_id"), in.Str("sender"), in.Str("text")); err != nil {
				return "", err
			}
			return asJSON(map[string]any{"success": true})
		},
	})

	r.Register(&Tool{
		Name:        "search_tickets",
		Description: "Search tickets by text query or customer id",
		Optional:    []string{"query", "user_id"},
		Validate: func(in Input) error {
			if strings.TrimSpace(in.Str("query")) == "" && strings.TrimSpace(in.Str("user_id")) == "" {
				return &InputError{Tool: "search_tickets", Field: "query or user_id"}
			}
			return nil
		},
		Run: func(ctx context.Context, in Input) (string, error) {
			tickets, err := store.SearchTickets(in.Str("query"), in.Str("user_id"))
			if err != nil {
				return "", err
			}
			return asJSON(map[string]any{"count": len(tickets), "tickets": tickets})
		},
	})
}
