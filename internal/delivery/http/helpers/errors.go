package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventmenu/internal/domain"
	"eventmenu/internal/draft"
)

// WriteServiceError maps a service error onto the API envelope. Unknown errors are logged
// and reported as 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteValidationError(w, verr.Field, verr.Message)
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrSessionNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "editor session not found")
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrUnauthorized):
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrDuplicateEmail):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "email already registered")
	case errors.Is(err, domain.ErrAlreadySubmitted):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "you have already submitted your selections for this event")
	case errors.Is(err, domain.ErrSaveInProgress):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "a save is already in progress")
	case errors.Is(err, draft.ErrNotSeeded):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "the event is still loading")
	case errors.Is(err, domain.ErrSelectionLimit):
		WriteValidationError(w, "selection", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
