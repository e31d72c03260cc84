package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventmenu/internal/delivery/http/helpers"
	"eventmenu/internal/domain"
	"eventmenu/internal/selection"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuestController_SubmitRSVP(t *testing.T) {
	const body = `{"name":"Ann","email":"ann@example.com","phone":"","opt_in":true,"item_ids":["i1","i2"]}`
	tests := []struct {
		name       string
		body       string
		identity   *domain.Identity
		svcErr     error
		wantStatus int
		wantCode   string
		wantField  string
		wantMsg    string
	}{
		{name: "stored", body: body, identity: &guestIdentity, wantStatus: http.StatusCreated},
		{name: "no session", body: body, wantStatus: http.StatusUnauthorized, wantCode: helpers.ErrCodeUnauthorized},
		{
			name: "missing name", body: body, identity: &guestIdentity,
			svcErr:     domain.NewValidationError("name", "Please enter your name."),
			wantStatus: http.StatusUnprocessableEntity, wantCode: helpers.ErrCodeValidationFailed, wantField: "name", wantMsg: "Please enter your name.",
		},
		{
			name: "over the limit", body: body, identity: &guestIdentity,
			svcErr:     &selection.LimitError{Limit: 2},
			wantStatus: http.StatusUnprocessableEntity, wantCode: helpers.ErrCodeValidationFailed, wantField: "selection", wantMsg: "You can only select up to two items.",
		},
		{
			name: "second submission", body: body, identity: &guestIdentity,
			svcErr:     domain.ErrAlreadySubmitted,
			wantStatus: http.StatusConflict, wantCode: helpers.ErrCodeConflict,
		},
		{
			name: "event gone", body: body, identity: &guestIdentity,
			svcErr:     domain.ErrNotFound,
			wantStatus: http.StatusNotFound, wantCode: helpers.ErrCodeNotFound,
		},
		{
			name: "store failure", body: body, identity: &guestIdentity,
			svcErr:     errors.New("db down"),
			wantStatus: http.StatusInternalServerError, wantCode: helpers.ErrCodeInternalError,
		},
		{name: "malformed body", body: `{"name":`, identity: &guestIdentity, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeGuestService{err: tt.svcErr}
			c := NewGuestController(testLogger, svc)
			req := httptest.NewRequest(http.MethodPost, "/events/ev-1/guests", strings.NewReader(tt.body))
			req.SetPathValue("eventID", "ev-1")
			if tt.identity != nil {
				req = withIdentity(req, *tt.identity)
			}
			rr := httptest.NewRecorder()

			c.SubmitRSVP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var guest domain.GuestSubmission
			apiErr := decodeEnvelope(t, rr, &guest)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				assert.Equal(t, tt.wantField, apiErr.Field)
				if tt.wantMsg != "" {
					assert.Equal(t, tt.wantMsg, apiErr.Message)
				}
				return
			}
			assert.Equal(t, "g-1", guest.ID)
			assert.Equal(t, "anon-1", svc.lastIdentity.UserID)
			assert.Equal(t, []string{"i1", "i2"}, svc.lastItemIDs)
			assert.True(t, svc.lastForm.OptIn)
		})
	}
}

func TestGuestController_OrganizerEndpoints(t *testing.T) {
	svc := &fakeGuestService{guests: []*domain.GuestSubmission{{ID: "g-1", Name: "Ann"}}}
	c := NewGuestController(testLogger, svc)

	t.Run("list", func(t *testing.T) {
		req := withIdentity(httptest.NewRequest(http.MethodGet, "/events/ev-1/guests", nil), organizerIdentity)
		req.SetPathValue("eventID", "ev-1")
		rr := httptest.NewRecorder()
		c.ListGuests(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		var guests []*domain.GuestSubmission
		require.Nil(t, decodeEnvelope(t, rr, &guests))
		assert.Len(t, guests, 1)
		assert.Equal(t, "org-1", svc.lastOwner)
	})

	t.Run("delete", func(t *testing.T) {
		req := withIdentity(httptest.NewRequest(http.MethodDelete, "/events/ev-1/guests/g-1", nil), organizerIdentity)
		req.SetPathValue("eventID", "ev-1")
		req.SetPathValue("guestID", "g-1")
		rr := httptest.NewRecorder()
		c.DeleteGuest(rr, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "g-1", svc.lastGuestID)
	})

	t.Run("summary", func(t *testing.T) {
		req := withIdentity(httptest.NewRequest(http.MethodGet, "/events/ev-1/summary", nil), organizerIdentity)
		req.SetPathValue("eventID", "ev-1")
		rr := httptest.NewRecorder()
		c.Summary(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		var summary domain.SelectionSummary
		require.Nil(t, decodeEnvelope(t, rr, &summary))
		assert.Equal(t, 1, summary.TotalGuests)
		assert.Equal(t, "Kolaches", summary.Categories[0].Category)
	})

	t.Run("anonymous guest cannot list", func(t *testing.T) {
		req := withIdentity(httptest.NewRequest(http.MethodGet, "/events/ev-1/guests", nil), guestIdentity)
		req.SetPathValue("eventID", "ev-1")
		rr := httptest.NewRecorder()
		c.ListGuests(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("not owner", func(t *testing.T) {
		forbidden := NewGuestController(testLogger, &fakeGuestService{err: domain.ErrForbidden})
		req := withIdentity(httptest.NewRequest(http.MethodDelete, "/events/ev-1/guests/g-1", nil), organizerIdentity)
		req.SetPathValue("eventID", "ev-1")
		req.SetPathValue("guestID", "g-1")
		rr := httptest.NewRecorder()
		forbidden.DeleteGuest(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
