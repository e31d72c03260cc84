package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"eventmenu/internal/delivery/http/helpers"
	"eventmenu/internal/delivery/http/middleware"
	"eventmenu/internal/domain"
	"eventmenu/internal/session"
)

// SessionNavigator resolves and applies top-level navigation for a browser.
type SessionNavigator interface {
	Resolve(ctx context.Context, browserID, rawQuery string, identity *domain.Identity) session.Outcome
	Navigate(ctx context.Context, browserID string, target session.State) (string, error)
}

// NavigateRequest is the request body for POST /session/navigate.
type NavigateRequest struct {
	View    session.View `json:"view"`
	EventID string       `json:"event_id"`
}

// Validate implements Validator.
func (n NavigateRequest) Validate() []string {
	if !(session.State{View: n.View, EventID: n.EventID}).Valid() {
		return []string{"view must be login, organizerHome, organizerDashboard (with event_id) or guest (with event_id)"}
	}
	return nil
}

// NavigateResponse is the response body for POST /session/navigate.
type NavigateResponse struct {
	State    session.State `json:"state"`
	Location string        `json:"location"`
}

type SessionController struct {
	Logger    *slog.Logger
	Navigator SessionNavigator
	Events    domain.EventService
}

func NewSessionController(logger *slog.Logger, navigator SessionNavigator, events domain.EventService) *SessionController {
	return &SessionController{
		Logger:    logger,
		Navigator: navigator,
		Events:    events,
	}
}

func browserID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(middleware.BrowserIDHeader))
}

// Resolve godoc
// @Summary Resolve the view to render
// @Description Decides between login, organizer home, organizer dashboard and guest page from the page query (event=<id>), the browser's stored dashboard pointer (X-Browser-ID) and the bearer token. Visiting a guest link without a token starts an anonymous session and returns its token; a failed sign-in yields a banner, never an error.
// @Tags session
// @Produce json
// @Param event query string false "Event ID from the page URL"
// @Param X-Browser-ID header string false "Per-browser id"
// @Success 200 {object} helpers.APIResponse "data contains state, location, identity, guest_token and banner"
// @Router /session/resolve [get]
func (c *SessionController) Resolve(w http.ResponseWriter, r *http.Request) {
	var identity *domain.Identity
	if id, ok := middleware.IdentityFromContext(r.Context()); ok {
		identity = &id
	}
	out := c.Navigator.Resolve(r.Context(), browserID(r), r.URL.RawQuery, identity)
	helpers.WriteJSONSuccess(w, http.StatusOK, out)
}

// Navigate godoc
// @Summary Navigate to a view
// @Description Opening a dashboard remembers the event for this browser; going home or to login forgets it. Opening a dashboard requires an organizer token for the event's owner.
// @Tags session
// @Accept json
// @Produce json
// @Param X-Browser-ID header string false "Per-browser id (required for the dashboard)"
// @Param body body NavigateRequest true "Target view"
// @Success 200 {object} helpers.APIResponse "data contains state and location"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /session/navigate [post]
func (c *SessionController) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	target := session.State{View: req.View, EventID: req.EventID}
	if target.View == session.ViewOrganizerDashboard {
		organizerID, ok := middleware.OrganizerIDFromContext(r.Context())
		if !ok {
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
			return
		}
		if _, err := c.Events.GetOwnedEvent(r.Context(), target.EventID, organizerID); err != nil {
			helpers.WriteServiceError(w, r, c.Logger, err)
			return
		}
	}
	location, err := c.Navigator.Navigate(r.Context(), browserID(r), target)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, NavigateResponse{State: target, Location: location})
}
