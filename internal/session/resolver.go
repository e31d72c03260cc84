// Package session decides which top-level view a browser should render from the URL,
// the stored "last viewed admin event" pointer and the signed-in identity.
package session

import (
	"net/url"
	"strings"

	"eventmenu/internal/domain"
)

// EventQueryParam is the URL query parameter that selects the guest view.
const EventQueryParam = "event"

// View is one of the four render states.
type View string

const (
	ViewLogin              View = "login"
	ViewOrganizerHome      View = "organizerHome"
	ViewOrganizerDashboard View = "organizerDashboard"
	ViewGuest              View = "guest"
)

// State is a render target. EventID is set for the dashboard and guest views only.
// swagger:model SessionState
type State struct {
	View    View   `json:"view"`
	EventID string `json:"event_id,omitempty"`
}

// Login is the sign-in view.
func Login() State { return State{View: ViewLogin} }

// OrganizerHome lists the organizer's events.
func OrganizerHome() State { return State{View: ViewOrganizerHome} }

// OrganizerDashboard manages one event.
func OrganizerDashboard(eventID string) State {
	return State{View: ViewOrganizerDashboard, EventID: eventID}
}

// Guest is the public RSVP page of an event.
func Guest(eventID string) State { return State{View: ViewGuest, EventID: eventID} }

// Valid reports whether the state is well formed.
func (s State) Valid() bool {
	switch s.View {
	case ViewLogin, ViewOrganizerHome:
		return s.EventID == ""
	case ViewOrganizerDashboard, ViewGuest:
		return s.EventID != ""
	}
	return false
}

// Input is everything resolution depends on.
type Input struct {
	URLEventID         string
	StoredAdminEventID string
	// Identity is nil when nobody is signed in.
	Identity *domain.Identity
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	State State
	// NeedsAnonymousSignIn asks the caller to start an anonymous session. It never blocks
	// the guest state from rendering.
	NeedsAnonymousSignIn bool
}

// Resolve maps the inputs onto a render state. It is pure: the same input always yields
// the same resolution.
//
// Order: a URL event id wins and selects the guest view; otherwise an organizer goes to the
// stored dashboard or to home; everyone else gets the login view.
func Resolve(in Input) Resolution {
	if in.URLEventID != "" {
		return Resolution{
			State:                Guest(in.URLEventID),
			NeedsAnonymousSignIn: in.Identity == nil || in.Identity.UserID == "",
		}
	}
	if in.Identity.IsOrganizer() {
		if in.StoredAdminEventID != "" {
			return Resolution{State: OrganizerDashboard(in.StoredAdminEventID)}
		}
		return Resolution{State: OrganizerHome()}
	}
	return Resolution{State: Login()}
}

// EventIDFromQuery extracts the guest event id from a raw URL query string.
func EventIDFromQuery(rawQuery string) string {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(values.Get(EventQueryParam))
}

// Location is the address-bar value for a state: the guest view carries its event id as a
// query parameter, every other view uses the bare path.
func Location(basePath string, s State) string {
	if basePath == "" {
		basePath = "/"
	}
	if s.View == ViewGuest {
		return basePath + "?" + url.Values{EventQueryParam: {s.EventID}}.Encode()
	}
	return basePath
}
