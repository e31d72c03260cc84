package controllers

import (
	"log/slog"
	"net/http"

	"eventmenu/internal/delivery/http/helpers"
	"eventmenu/internal/delivery/http/middleware"
	"eventmenu/internal/domain"
)

// SubmitRSVPRequest is the request body for POST /events/{eventID}/guests.
// ItemIDs are replayed in order as selection toggles.
type SubmitRSVPRequest struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone"`
	OptIn   bool     `json:"opt_in"`
	ItemIDs []string `json:"item_ids"`
}

// GuestListSuccessResponse is the success response envelope for GET /events/{eventID}/guests (200).
type GuestListSuccessResponse struct {
	Data  []*domain.GuestSubmission `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

type GuestController struct {
	Logger  *slog.Logger
	Service domain.GuestService
}

func NewGuestController(logger *slog.Logger, svc domain.GuestService) *GuestController {
	return &GuestController{
		Logger:  logger,
		Service: svc,
	}
}

// SubmitRSVP godoc
// @Summary Submit a guest RSVP
// @Description Stores the guest's contact details and menu choices. Requires a guest (anonymous) or organizer token; each identity may submit once per event. Form errors come back as validation_failed naming the field.
// @Tags guests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body SubmitRSVPRequest true "RSVP"
// @Success 201 {object} helpers.APIResponse "data contains the stored submission"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already submitted)"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/guests [post]
func (c *GuestController) SubmitRSVP(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req SubmitRSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	form := domain.GuestForm{Name: req.Name, Email: req.Email, Phone: req.Phone, OptIn: req.OptIn}
	guest, err := c.Service.Submit(r.Context(), eventID, identity, form, req.ItemIDs)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, guest)
}

// ListGuests godoc
// @Summary List guest submissions
// @Description Returns every RSVP of the event in submission order. Owner only.
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.GuestListSuccessResponse "data contains the submissions"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/guests [get]
func (c *GuestController) ListGuests(w http.ResponseWriter, r *http.Request) {
	organizerID, eventID, ok := organizerAndEvent(w, r)
	if !ok {
		return
	}
	guests, err := c.Service.ListGuests(r.Context(), eventID, organizerID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, guests)
}

// DeleteGuest godoc
// @Summary Delete a guest submission
// @Description Removes one RSVP from the event. Owner only.
// @Tags guests
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param guestID path string true "Guest submission ID"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/guests/{guestID} [delete]
func (c *GuestController) DeleteGuest(w http.ResponseWriter, r *http.Request) {
	organizerID, eventID, ok := organizerAndEvent(w, r)
	if !ok {
		return
	}
	guestID := r.PathValue("guestID")
	if guestID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing guestID")
		return
	}
	if err := c.Service.DeleteGuest(r.Context(), eventID, guestID, organizerID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary godoc
// @Summary Summarize guest selections
// @Description Counts how many guests chose each item, grouped by the category recorded at submission time. Owner only.
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the selection summary"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/summary [get]
func (c *GuestController) Summary(w http.ResponseWriter, r *http.Request) {
	organizerID, eventID, ok := organizerAndEvent(w, r)
	if !ok {
		return
	}
	summary, err := c.Service.Summary(r.Context(), eventID, organizerID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, summary)
}
