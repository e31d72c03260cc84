package domain

import (
	"context"
	"time"
)

// Default branding applied to newly created events.
const (
	DefaultLogoURL = "https://static.wixstatic.com/media/ff471f_f72ef81e410c459aa9a790f65a035129~mv2.png/v1/fill/w_691,h_665,al_c,lg_1,q_90,enc_auto/LV_Branding-Texan-Kolache-Logo.png"
)

// DefaultColors is the theme every new event starts with.
var DefaultColors = ColorTheme{
	Primary:        "#faa31b",
	Background:     "#f4ecbf",
	Text:           "#571c0f",
	CardBackground: "#FFFFFF",
}

// ColorTheme holds the four named color slots of an event page.
// swagger:model ColorTheme
type ColorTheme struct {
	Primary        string `json:"primary"`
	Background     string `json:"background"`
	Text           string `json:"text"`
	CardBackground string `json:"card_bg"`
}

// Event is an organizer-owned RSVP event with its branding and menu.
// swagger:model Event
type Event struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	OrganizerID string     `json:"organizer_id"`
	LogoURL     string     `json:"logo_url"`
	Colors      ColorTheme `json:"colors"`
	Menu        Menu       `json:"menu"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewEvent returns a new Event with default branding and an empty menu.
// ID is set by the repository on create.
func NewEvent(name, organizerID string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Name:        name,
		OrganizerID: organizerID,
		LogoURL:     DefaultLogoURL,
		Colors:      DefaultColors,
		Menu:        Menu{Categories: []Category{}},
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// Settings returns the editable branding fields of the event.
func (e *Event) Settings() EventSettings {
	return EventSettings{Name: e.Name, LogoURL: e.LogoURL, Colors: e.Colors}
}

// EventSettings is the branding substructure edited by the settings editor.
// swagger:model EventSettings
type EventSettings struct {
	Name    string     `json:"name"`
	LogoURL string     `json:"logo_url"`
	Colors  ColorTheme `json:"colors"`
}

// Equal reports whether both settings carry the same values.
func (s EventSettings) Equal(o EventSettings) bool {
	return s == o
}

// EventPatch is a merge update: nil fields are left untouched.
type EventPatch struct {
	Name    *string
	LogoURL *string
	Colors  *ColorTheme
	Menu    *Menu
}

// IsEmpty reports whether the patch writes nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Name == nil && p.LogoURL == nil && p.Colors == nil && p.Menu == nil
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Event, error)
	// Update applies patch with merge semantics and returns the stored event.
	Update(ctx context.Context, id string, patch EventPatch) (*Event, error)
	// Delete removes the event together with its guest submissions.
	Delete(ctx context.Context, id string) error
}

// EventService defines organizer-facing event management and the public guest view.
type EventService interface {
	CreateEvent(ctx context.Context, organizerID, name string) (*Event, error)
	// GetEvent returns the event without an ownership check; used by the guest page.
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	GetOwnedEvent(ctx context.Context, eventID, organizerID string) (*Event, error)
	ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*Event, error)
	UpdateSettings(ctx context.Context, eventID, organizerID string, settings EventSettings) (*Event, error)
	SaveMenu(ctx context.Context, eventID, organizerID string, menu Menu) (*Event, error)
	DuplicateEvent(ctx context.Context, eventID, organizerID string) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, organizerID string) error
	GuestLink(eventID string) string
}
