package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventmenu/internal/delivery/http/helpers"
	"eventmenu/internal/domain"
	"eventmenu/internal/editor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditorController_OpenEditor(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mgrErr     error
		wantStatus int
		wantCode   string
	}{
		{"menu", `{"kind":"menu"}`, nil, http.StatusCreated, ""},
		{"settings", `{"kind":"settings"}`, nil, http.StatusCreated, ""},
		{"unknown kind", `{"kind":"logo"}`, nil, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"not owner", `{"kind":"menu"}`, domain.ErrForbidden, http.StatusForbidden, helpers.ErrCodeForbidden},
		{"event gone", `{"kind":"menu"}`, domain.ErrNotFound, http.StatusNotFound, helpers.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := &fakeEditorManager{err: tt.mgrErr, view: editor.View{SessionID: "s1", EventID: "ev-1", Seeded: true}}
			c := NewEditorController(testLogger, mgr)
			req := withIdentity(httptest.NewRequest(http.MethodPost, "/events/ev-1/editors", strings.NewReader(tt.body)), organizerIdentity)
			req.SetPathValue("eventID", "ev-1")
			rr := httptest.NewRecorder()

			c.OpenEditor(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var view editor.View
			apiErr := decodeEnvelope(t, rr, &view)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				return
			}
			assert.Equal(t, "s1", view.SessionID)
			assert.Equal(t, "ev-1", mgr.lastEventID)
			assert.Equal(t, "org-1", mgr.lastOwner)
		})
	}
}

func TestEditorController_SessionEndpoints(t *testing.T) {
	type call struct {
		name    string
		method  string
		body    string
		handler func(c *EditorController) http.HandlerFunc
		status  int
		want    string
	}
	calls := []call{
		{"get", http.MethodGet, "", func(c *EditorController) http.HandlerFunc { return c.GetEditor }, http.StatusOK, "get"},
		{"apply", http.MethodPost, `{"type":"add_item","category_id":"c1","name":"Poppyseed"}`, func(c *EditorController) http.HandlerFunc { return c.ApplyOp }, http.StatusOK, "apply"},
		{"save", http.MethodPost, "", func(c *EditorController) http.HandlerFunc { return c.SaveEditor }, http.StatusOK, "save"},
		{"reload", http.MethodPost, "", func(c *EditorController) http.HandlerFunc { return c.ReloadEditor }, http.StatusOK, "reload"},
		{"close", http.MethodDelete, "", func(c *EditorController) http.HandlerFunc { return c.CloseEditor }, http.StatusNoContent, "close"},
	}
	for _, tt := range calls {
		t.Run(tt.name, func(t *testing.T) {
			mgr := &fakeEditorManager{view: editor.View{SessionID: "s1", Dirty: true}}
			c := NewEditorController(testLogger, mgr)
			req := withIdentity(httptest.NewRequest(tt.method, "/editors/s1", strings.NewReader(tt.body)), organizerIdentity)
			req.SetPathValue("sessionID", "s1")
			rr := httptest.NewRecorder()

			tt.handler(c)(rr, req)

			require.Equal(t, tt.status, rr.Code)
			assert.Equal(t, []string{tt.want}, mgr.calls)
			assert.Equal(t, "s1", mgr.lastSession)
			assert.Equal(t, "org-1", mgr.lastOwner)
		})
	}
}

func TestEditorController_ApplyOpDecodesOp(t *testing.T) {
	mgr := &fakeEditorManager{view: editor.View{SessionID: "s1", CreatedID: "new-id"}}
	c := NewEditorController(testLogger, mgr)
	body := `{"type":"update_item","category_id":"c1","item_id":"i1","description":"Apricot"}`
	req := withIdentity(httptest.NewRequest(http.MethodPost, "/editors/s1/ops", strings.NewReader(body)), organizerIdentity)
	req.SetPathValue("sessionID", "s1")
	rr := httptest.NewRecorder()

	c.ApplyOp(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, editor.OpUpdateItem, mgr.lastOp.Type)
	assert.Nil(t, mgr.lastOp.Name)
	require.NotNil(t, mgr.lastOp.Description)
	assert.Equal(t, "Apricot", *mgr.lastOp.Description)
	var view editor.View
	require.Nil(t, decodeEnvelope(t, rr, &view))
	assert.Equal(t, "new-id", view.CreatedID)
}

func TestEditorController_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unknown session", domain.ErrSessionNotFound, http.StatusNotFound, helpers.ErrCodeNotFound},
		{"save in progress", domain.ErrSaveInProgress, http.StatusConflict, helpers.ErrCodeConflict},
		{"invalid menu", domain.ErrInvalidInput, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"write failed", errors.New("network down"), http.StatusInternalServerError, helpers.ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewEditorController(testLogger, &fakeEditorManager{err: tt.err})
			req := withIdentity(httptest.NewRequest(http.MethodPost, "/editors/s1/save", nil), organizerIdentity)
			req.SetPathValue("sessionID", "s1")
			rr := httptest.NewRecorder()

			c.SaveEditor(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			apiErr := decodeEnvelope(t, rr, nil)
			require.NotNil(t, apiErr)
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}

	t.Run("guest token", func(t *testing.T) {
		mgr := &fakeEditorManager{}
		c := NewEditorController(testLogger, mgr)
		req := withIdentity(httptest.NewRequest(http.MethodGet, "/editors/s1", nil), guestIdentity)
		req.SetPathValue("sessionID", "s1")
		rr := httptest.NewRecorder()
		c.GetEditor(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Empty(t, mgr.calls)
	})
}
