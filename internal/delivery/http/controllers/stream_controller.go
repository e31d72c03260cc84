package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"eventmenu/internal/delivery/http/helpers"
	"eventmenu/internal/delivery/http/middleware"
	"eventmenu/internal/domain"
	"eventmenu/internal/livestore"
)

// Server-Sent Events frame names.
const (
	FrameSnapshot = "snapshot"
	FrameError    = "error"
)

const defaultHeartbeat = 25 * time.Second

type frame struct {
	name string
	data any
}

type StreamController struct {
	Logger    *slog.Logger
	Hub       *livestore.Hub
	Events    domain.EventService
	Guests    domain.GuestService
	Heartbeat time.Duration
}

func NewStreamController(logger *slog.Logger, hub *livestore.Hub, events domain.EventService, guests domain.GuestService) *StreamController {
	return &StreamController{
		Logger:    logger,
		Hub:       hub,
		Events:    events,
		Guests:    guests,
		Heartbeat: defaultHeartbeat,
	}
}

// streamError turns a load failure into the payload of an error frame.
func (c *StreamController) streamError(ctx context.Context, topic string, err error) helpers.APIError {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return helpers.APIError{Code: helpers.ErrCodeNotFound, Message: "This event has been deleted."}
	case errors.Is(err, domain.ErrForbidden):
		return helpers.APIError{Code: helpers.ErrCodeForbidden, Message: "You no longer have access to this event."}
	default:
		c.Logger.WarnContext(ctx, "live stream load failed", "topic", topic, "err", err)
		return helpers.APIError{Code: helpers.ErrCodeInternalError, Message: "Live updates are temporarily unavailable."}
	}
}

// serve subscribes to topic and writes every snapshot and load failure as an SSE frame until
// the client goes away. The subscription is released before serve returns.
func serve[T any](c *StreamController, w http.ResponseWriter, r *http.Request, topic string, load livestore.Loader[T]) {
	rc := http.NewResponseController(w)
	ctx, cancel := context.WithCancel(r.Context())

	frames := make(chan frame, 8)
	push := func(f frame) {
		select {
		case frames <- f:
		case <-ctx.Done():
		}
	}
	unsubscribe := livestore.Subscribe(c.Hub, topic, load,
		func(v T) { push(frame{name: FrameSnapshot, data: v}) },
		func(err error) { push(frame{name: FrameError, data: c.streamError(ctx, topic, err)}) },
	)
	// cancel runs first so a callback blocked in push lets unsubscribe return.
	defer unsubscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		c.Logger.ErrorContext(ctx, "streaming unsupported", "path", r.URL.Path, "err", err)
		return
	}

	heartbeat := c.Heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case f := <-frames:
			if err := writeFrame(w, f); err != nil {
				c.Logger.DebugContext(ctx, "live stream closed", "topic", topic, "err", err)
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeFrame(w http.ResponseWriter, f frame) error {
	b, err := json.Marshal(f.data)
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", f.name, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", f.name, b)
	return err
}

// EventStream godoc
// @Summary Follow an event live
// @Description Server-Sent Events stream of the event document. Every change produces a "snapshot" frame with the full state: the owner receives the whole event, everyone else the public view. Load failures produce an "error" frame and the stream stays open.
// @Tags streams
// @Produce text/event-stream
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param access_token query string false "Bearer token for clients that cannot set headers"
// @Success 200 {string} string "event stream"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events/{eventID}/stream [get]
func (c *StreamController) EventStream(w http.ResponseWriter, r *http.Request) {
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
	serve(c, w, r, domain.EventTopic(eventID), func(ctx context.Context) (any, error) {
		event, err := c.Events.GetEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if identity.IsOrganizer() && event.OrganizerID == identity.UserID {
			return event, nil
		}
		return NewPublicEvent(event), nil
	})
}

// GuestsStream godoc
// @Summary Follow the guest list live
// @Description Server-Sent Events stream of the event's guest submissions. Owner only.
// @Tags streams
// @Produce text/event-stream
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param access_token query string false "Bearer token for clients that cannot set headers"
// @Success 200 {string} string "event stream"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/guests/stream [get]
func (c *StreamController) GuestsStream(w http.ResponseWriter, r *http.Request) {
	organizerID, eventID, ok := organizerAndEvent(w, r)
	if !ok {
		return
	}
	if _, err := c.Events.GetOwnedEvent(r.Context(), eventID, organizerID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	serve(c, w, r, domain.GuestsTopic(eventID), func(ctx context.Context) ([]*domain.GuestSubmission, error) {
		return c.Guests.ListGuests(ctx, eventID, organizerID)
	})
}

// OrganizerEventsStream godoc
// @Summary Follow my events live
// @Description Server-Sent Events stream of the events owned by the authenticated organizer.
// @Tags streams
// @Produce text/event-stream
// @Security BearerAuth
// @Param access_token query string false "Bearer token for clients that cannot set headers"
// @Success 200 {string} string "event stream"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events/stream [get]
func (c *StreamController) OrganizerEventsStream(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := middleware.OrganizerIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	serve(c, w, r, domain.OrganizerEventsTopic(organizerID), func(ctx context.Context) ([]*domain.Event, error) {
		return c.Events.ListEventsByOrganizer(ctx, organizerID)
	})
}
