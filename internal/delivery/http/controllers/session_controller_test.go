package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventmenu/internal/delivery/http/helpers"
	"eventmenu/internal/delivery/http/middleware"
	"eventmenu/internal/domain"
	"eventmenu/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionController_Resolve(t *testing.T) {
	nav := &fakeNavigator{outcome: session.Outcome{
		State:      session.Guest("ev-1"),
		GuestToken: "jwt-anon",
		Identity:   &guestIdentity,
		Location:   "/?event=ev-1",
	}}
	c := NewSessionController(testLogger, nav, &fakeEventService{})

	t.Run("signed out guest link", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/session/resolve?event=ev-1", nil)
		req.Header.Set(middleware.BrowserIDHeader, " browser-1 ")
		rr := httptest.NewRecorder()

		c.Resolve(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var out session.Outcome
		require.Nil(t, decodeEnvelope(t, rr, &out))
		assert.Equal(t, session.ViewGuest, out.State.View)
		assert.Equal(t, "jwt-anon", out.GuestToken)
		assert.Equal(t, "event=ev-1", nav.lastRawQuery)
		assert.Equal(t, "browser-1", nav.lastBrowserID)
		assert.Nil(t, nav.lastIdentity)
	})

	t.Run("identity forwarded", func(t *testing.T) {
		req := withIdentity(httptest.NewRequest(http.MethodGet, "/session/resolve", nil), organizerIdentity)
		c.Resolve(httptest.NewRecorder(), req)
		require.NotNil(t, nav.lastIdentity)
		assert.Equal(t, "org-1", nav.lastIdentity.UserID)
	})
}

func TestSessionController_Navigate(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		identity     *domain.Identity
		wantStatus   int
		wantCode     string
		wantNavigate bool
		wantLocation string
	}{
		{"dashboard for owner", `{"view":"organizerDashboard","event_id":"ev-1"}`, &organizerIdentity, http.StatusOK, "", true, "/"},
		{"dashboard for other organizer", `{"view":"organizerDashboard","event_id":"ev-1"}`, &domain.Identity{UserID: "org-2"}, http.StatusForbidden, helpers.ErrCodeForbidden, false, ""},
		{"dashboard signed out", `{"view":"organizerDashboard","event_id":"ev-1"}`, nil, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, false, ""},
		{"home", `{"view":"organizerHome"}`, &organizerIdentity, http.StatusOK, "", true, "/"},
		{"guest link", `{"view":"guest","event_id":"ev 1"}`, nil, http.StatusOK, "", true, "/?event=ev+1"},
		{"dashboard without event", `{"view":"organizerDashboard"}`, &organizerIdentity, http.StatusBadRequest, helpers.ErrCodeBadRequest, false, ""},
		{"unknown view", `{"view":"settings"}`, &organizerIdentity, http.StatusBadRequest, helpers.ErrCodeBadRequest, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := &fakeNavigator{}
			c := NewSessionController(testLogger, nav, &fakeEventService{event: sampleEvent()})
			req := httptest.NewRequest(http.MethodPost, "/session/navigate", strings.NewReader(tt.body))
			req.Header.Set(middleware.BrowserIDHeader, "browser-1")
			if tt.identity != nil {
				req = withIdentity(req, *tt.identity)
			}
			rr := httptest.NewRecorder()

			c.Navigate(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantNavigate, nav.navigated)
			var resp NavigateResponse
			apiErr := decodeEnvelope(t, rr, &resp)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				return
			}
			assert.Equal(t, tt.wantLocation, resp.Location)
			assert.Equal(t, "browser-1", nav.lastBrowserID)
		})
	}
}
