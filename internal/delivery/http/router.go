package http

import (
	"log/slog"
	"net/http"

	"eventmenu/internal/delivery/http/controllers"
	"eventmenu/internal/delivery/http/helpers"
	"eventmenu/internal/delivery/http/middleware"
	"eventmenu/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth    *controllers.AuthController
	Events  *controllers.EventController
	Guests  *controllers.GuestController
	Session *controllers.SessionController
	Editors *controllers.EditorController
	Streams *controllers.StreamController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	authed := middleware.RequireAuth(verifier, logger)
	organizer := middleware.RequireOrganizer(verifier, logger)
	optional := middleware.OptionalAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("POST /auth/anonymous", c.Auth.Anonymous)

	// Session
	mux.HandleFunc("GET /session/resolve", optional(c.Session.Resolve))
	mux.HandleFunc("POST /session/navigate", optional(c.Session.Navigate))

	// Events
	mux.HandleFunc("POST /events", organizer(c.Events.CreateEvent))
	mux.HandleFunc("GET /events", organizer(c.Events.ListEvents))
	mux.HandleFunc("GET /events/{eventID}", organizer(c.Events.GetEvent))
	mux.HandleFunc("DELETE /events/{eventID}", organizer(c.Events.DeleteEvent))
	mux.HandleFunc("PUT /events/{eventID}/settings", organizer(c.Events.UpdateSettings))
	mux.HandleFunc("PUT /events/{eventID}/menu", organizer(c.Events.SaveMenu))
	mux.HandleFunc("POST /events/{eventID}/duplicate", organizer(c.Events.DuplicateEvent))
	mux.HandleFunc("GET /events/{eventID}/link", organizer(c.Events.GetGuestLink))
	mux.HandleFunc("GET /public/events/{eventID}", authed(c.Events.GetPublicEvent))

	// Guests
	mux.HandleFunc("POST /events/{eventID}/guests", authed(c.Guests.SubmitRSVP))
	mux.HandleFunc("GET /events/{eventID}/guests", organizer(c.Guests.ListGuests))
	mux.HandleFunc("DELETE /events/{eventID}/guests/{guestID}", organizer(c.Guests.DeleteGuest))
	mux.HandleFunc("GET /events/{eventID}/summary", organizer(c.Guests.Summary))

	// Editors
	mux.HandleFunc("POST /events/{eventID}/editors", organizer(c.Editors.OpenEditor))
	mux.HandleFunc("GET /editors/{sessionID}", organizer(c.Editors.GetEditor))
	mux.HandleFunc("POST /editors/{sessionID}/ops", organizer(c.Editors.ApplyOp))
	mux.HandleFunc("POST /editors/{sessionID}/save", organizer(c.Editors.SaveEditor))
	mux.HandleFunc("POST /editors/{sessionID}/reload", organizer(c.Editors.ReloadEditor))
	mux.HandleFunc("DELETE /editors/{sessionID}", organizer(c.Editors.CloseEditor))

	// Live streams
	mux.HandleFunc("GET /events/stream", organizer(c.Streams.OrganizerEventsStream))
	mux.HandleFunc("GET /events/{eventID}/stream", authed(c.Streams.EventStream))
	mux.HandleFunc("GET /events/{eventID}/guests/stream", organizer(c.Streams.GuestsStream))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewConfigErrorHandler serves the startup diagnostic when required configuration is missing.
// Every route answers 503 with the error envelope; nothing else runs.
func NewConfigErrorHandler(message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeConfigError, message)
	})
}
