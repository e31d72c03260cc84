package domain

import (
	"context"
	"time"
)

// SelectedItem is a menu item chosen by a guest, tagged with the category it was chosen from.
// The category name is copied at selection time and never re-derived from the menu.
// swagger:model SelectedItem
type SelectedItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// GuestSubmission is one guest's RSVP for an event.
// swagger:model GuestSubmission
type GuestSubmission struct {
	ID          string         `json:"id"`
	EventID     string         `json:"event_id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone"`
	OptIn       bool           `json:"opt_in"`
	Selections  []SelectedItem `json:"selections"`
	GuestUserID string         `json:"guest_user_id"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// GuestForm holds the contact fields a guest types in.
type GuestForm struct {
	Name  string
	Email string
	Phone string
	OptIn bool
}

// ItemTally counts how many guests chose an item.
type ItemTally struct {
	ItemID string `json:"item_id"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

// CategoryTally groups item tallies under the category name recorded on the selections.
type CategoryTally struct {
	Category string      `json:"category"`
	Items    []ItemTally `json:"items"`
}

// SelectionSummary is the organizer report of guest choices for an event.
// swagger:model SelectionSummary
type SelectionSummary struct {
	EventID     string          `json:"event_id"`
	TotalGuests int             `json:"total_guests"`
	Categories  []CategoryTally `json:"categories"`
}

// GuestRepository defines storage for guest submissions.
type GuestRepository interface {
	// Create stores the submission. Returns ErrAlreadySubmitted when the guest identity already submitted.
	Create(ctx context.Context, g *GuestSubmission) error
	ListByEventID(ctx context.Context, eventID string) ([]*GuestSubmission, error)
	Delete(ctx context.Context, eventID, guestID string) error
}

// GuestService defines guest submission and organizer-side guest management.
type GuestService interface {
	Submit(ctx context.Context, eventID string, guest Identity, form GuestForm, itemIDs []string) (*GuestSubmission, error)
	ListGuests(ctx context.Context, eventID, organizerID string) ([]*GuestSubmission, error)
	DeleteGuest(ctx context.Context, eventID, guestID, organizerID string) error
	Summary(ctx context.Context, eventID, organizerID string) (*SelectionSummary, error)
}
