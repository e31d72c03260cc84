package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"eventmenu/internal/delivery/http/helpers"
	"eventmenu/internal/delivery/http/middleware"
	"eventmenu/internal/editor"
)

// EditorManager keeps organizer drafts of an event's menu or branding.
type EditorManager interface {
	Open(ctx context.Context, eventID, organizerID string, kind editor.Kind) (editor.View, error)
	Get(sessionID, organizerID string) (editor.View, error)
	Apply(sessionID, organizerID string, op editor.Op) (editor.View, error)
	Save(ctx context.Context, sessionID, organizerID string) (editor.View, error)
	Reload(sessionID, organizerID string) (editor.View, error)
	Close(sessionID, organizerID string) error
}

// OpenEditorRequest is the request body for POST /events/{eventID}/editors.
type OpenEditorRequest struct {
	Kind editor.Kind `json:"kind"`
}

// Validate implements Validator.
func (o OpenEditorRequest) Validate() []string {
	if o.Kind != editor.KindMenu && o.Kind != editor.KindSettings {
		return []string{`kind must be "menu" or "settings"`}
	}
	return nil
}

// EditorSuccessResponse is the success response envelope for editor endpoints.
type EditorSuccessResponse struct {
	Data  editor.View       `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type EditorController struct {
	Logger  *slog.Logger
	Manager EditorManager
}

func NewEditorController(logger *slog.Logger, manager EditorManager) *EditorController {
	return &EditorController{
		Logger:  logger,
		Manager: manager,
	}
}

func organizerAndSession(w http.ResponseWriter, r *http.Request) (organizerID, sessionID string, ok bool) {
	sessionID = r.PathValue("sessionID")
	if sessionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing sessionID")
		return "", "", false
	}
	organizerID, ok = middleware.OrganizerIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", "", false
	}
	return organizerID, sessionID, true
}

// OpenEditor godoc
// @Summary Open an editing session
// @Description Starts a draft of the event's menu or branding, seeded from the stored event. The draft keeps following the live event: later changes elsewhere show up as server_changed without touching the draft.
// @Tags editors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body OpenEditorRequest true "Editor kind"
// @Success 201 {object} controllers.EditorSuccessResponse "data contains the session view"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/editors [post]
func (c *EditorController) OpenEditor(w http.ResponseWriter, r *http.Request) {
	organizerID, eventID, ok := organizerAndEvent(w, r)
	if !ok {
		return
	}
	var req OpenEditorRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	view, err := c.Manager.Open(r.Context(), eventID, organizerID, req.Kind)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, view)
}

// GetEditor godoc
// @Summary Get an editing session
// @Tags editors
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Editor session ID"
// @Success 200 {object} controllers.EditorSuccessResponse "data contains the session view"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /editors/{sessionID} [get]
func (c *EditorController) GetEditor(w http.ResponseWriter, r *http.Request) {
	organizerID, sessionID, ok := organizerAndSession(w, r)
	if !ok {
		return
	}
	view, err := c.Manager.Get(sessionID, organizerID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// ApplyOp godoc
// @Summary Edit the draft
// @Description Applies one mutation (add_category, rename_category, delete_category, add_item, update_item, delete_item, set_name, set_logo_url, set_colors). Deleting a category drops its items. created_id carries the id of an added entry. A failed mutation leaves the draft unchanged.
// @Tags editors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Editor session ID"
// @Param body body editor.Op true "Mutation"
// @Success 200 {object} controllers.EditorSuccessResponse "data contains the session view"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (still loading)"
// @Router /editors/{sessionID}/ops [post]
func (c *EditorController) ApplyOp(w http.ResponseWriter, r *http.Request) {
	organizerID, sessionID, ok := organizerAndSession(w, r)
	if !ok {
		return
	}
	var op editor.Op
	if !helpers.DecodeAndValidate(w, r, &op) {
		return
	}
	view, err := c.Manager.Apply(sessionID, organizerID, op)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// SaveEditor godoc
// @Summary Save the draft
// @Description Writes the whole draft to the event. On failure the draft is kept for a retry. After a successful save the draft follows the stored event again.
// @Tags editors
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Editor session ID"
// @Success 200 {object} controllers.EditorSuccessResponse "data contains the session view"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (save in progress)"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /editors/{sessionID}/save [post]
func (c *EditorController) SaveEditor(w http.ResponseWriter, r *http.Request) {
	organizerID, sessionID, ok := organizerAndSession(w, r)
	if !ok {
		return
	}
	view, err := c.Manager.Save(r.Context(), sessionID, organizerID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// ReloadEditor godoc
// @Summary Discard the draft
// @Description Replaces the draft with the latest stored version of the event.
// @Tags editors
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Editor session ID"
// @Success 200 {object} controllers.EditorSuccessResponse "data contains the session view"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /editors/{sessionID}/reload [post]
func (c *EditorController) ReloadEditor(w http.ResponseWriter, r *http.Request) {
	organizerID, sessionID, ok := organizerAndSession(w, r)
	if !ok {
		return
	}
	view, err := c.Manager.Reload(sessionID, organizerID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// CloseEditor godoc
// @Summary Close an editing session
// @Description Ends the session and its live subscription. Unsaved edits are lost.
// @Tags editors
// @Security BearerAuth
// @Param sessionID path string true "Editor session ID"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /editors/{sessionID} [delete]
func (c *EditorController) CloseEditor(w http.ResponseWriter, r *http.Request) {
	organizerID, sessionID, ok := organizerAndSession(w, r)
	if !ok {
		return
	}
	if err := c.Manager.Close(sessionID, organizerID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
