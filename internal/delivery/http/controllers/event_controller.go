package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventmenu/internal/delivery/http/helpers"
	"eventmenu/internal/delivery/http/middleware"
	"eventmenu/internal/domain"
)

// CreateEventRequest is the request body for POST /events. Only name is accepted.
type CreateEventRequest struct {
	Name string `json:"name"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	if strings.TrimSpace(c.Name) == "" {
		return []string{"name is required"}
	}
	return nil
}

// UpdateSettingsRequest is the request body for PUT /events/{eventID}/settings.
// The whole branding substructure is written at once.
type UpdateSettingsRequest struct {
	Name    string            `json:"name"`
	LogoURL string            `json:"logo_url"`
	Colors  domain.ColorTheme `json:"colors"`
}

// SaveMenuRequest is the request body for PUT /events/{eventID}/menu.
type SaveMenuRequest struct {
	Menu domain.Menu `json:"menu"`
}

// GuestLinkResponse is the response body for GET /events/{eventID}/link.
type GuestLinkResponse struct {
	URL string `json:"url"`
}

// PublicEvent is the guest-facing view of an event: branding and menu without the owner.
// swagger:model PublicEvent
type PublicEvent struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	LogoURL string            `json:"logo_url"`
	Colors  domain.ColorTheme `json:"colors"`
	Menu    domain.Menu       `json:"menu"`
}

// NewPublicEvent strips the organizer fields from e.
func NewPublicEvent(e *domain.Event) PublicEvent {
	return PublicEvent{ID: e.ID, Name: e.Name, LogoURL: e.LogoURL, Colors: e.Colors, Menu: e.Menu}
}

// EventSuccessResponse is the success response envelope for endpoints returning one event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListSuccessResponse is the success response envelope for GET /events (200).
type EventListSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// organizerAndEvent pulls the organizer id from the context and the event id from the path,
// writing the error response when either is missing.
func organizerAndEvent(w http.ResponseWriter, r *http.Request) (organizerID, eventID string, ok bool) {
	eventID = r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return "", "", false
	}
	organizerID, ok = middleware.OrganizerIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", "", false
	}
	return organizerID, eventID, true
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Create an event owned by the authenticated organizer. It starts with the default logo, the default color theme and an empty menu.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data (name only)"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (anonymous session)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	organizerID, ok := middleware.OrganizerIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), organizerID, req.Name)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEvents godoc
// @Summary List my events
// @Description Returns the events owned by the authenticated organizer, newest first.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.EventListSuccessResponse "data contains the events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := middleware.OrganizerIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListEventsByOrganizer(r.Context(), organizerID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get one of my events
// @Description Returns the full event document. Only the owner may read it here; guests use the public endpoint.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	organizerID, eventID, ok := organizerAndEvent(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetOwnedEvent(r.Context(), eventID, organizerID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// GetPublicEvent godoc
// @Summary Get the guest view of an event
// @Description Returns branding and menu of an event for its RSVP page. Any signed-in identity, including anonymous guests, may read it.
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the public event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /public/events/{eventID} [get]
func (c *EventController) GetPublicEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, NewPublicEvent(event))
}

// UpdateSettings godoc
// @Summary Save event branding
// @Description Writes name, logo URL and color theme of the event in one merge update. The menu is left untouched.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body UpdateSettingsRequest true "Branding settings"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/settings [put]
func (c *EventController) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	organizerID, eventID, ok := organizerAndEvent(w, r)
	if !ok {
		return
	}
	var req UpdateSettingsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	settings := domain.EventSettings{Name: req.Name, LogoURL: req.LogoURL, Colors: req.Colors}
	event, err := c.Service.UpdateSettings(r.Context(), eventID, organizerID, settings)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// SaveMenu godoc
// @Summary Save the event menu
// @Description Replaces the whole menu of the event. Category and item ids must be present and unique.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body SaveMenuRequest true "Menu"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/menu [put]
func (c *EventController) SaveMenu(w http.ResponseWriter, r *http.Request) {
	organizerID, eventID, ok := organizerAndEvent(w, r)
	if !ok {
		return
	}
	var req SaveMenuRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.SaveMenu(r.Context(), eventID, organizerID, req.Menu)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DuplicateEvent godoc
// @Summary Duplicate an event
// @Description Creates a copy of the event with the same branding and menu and no guests.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the new event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/duplicate [post]
func (c *EventController) DuplicateEvent(w http.ResponseWriter, r *http.Request) {
	organizerID, eventID, ok := organizerAndEvent(w, r)
	if !ok {
		return
	}
	event, err := c.Service.DuplicateEvent(r.Context(), eventID, organizerID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event together with all guest submissions. Only the owner can delete.
// @Tags events
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	organizerID, eventID, ok := organizerAndEvent(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID, organizerID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGuestLink godoc
// @Summary Get the shareable guest link
// @Description Returns the public RSVP URL of the event for the organizer to copy.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains url"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/link [get]
func (c *EventController) GetGuestLink(w http.ResponseWriter, r *http.Request) {
	organizerID, eventID, ok := organizerAndEvent(w, r)
	if !ok {
		return
	}
	if _, err := c.Service.GetOwnedEvent(r.Context(), eventID, organizerID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, GuestLinkResponse{URL: c.Service.GuestLink(eventID)})
}
