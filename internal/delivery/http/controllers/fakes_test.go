package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"eventmenu/internal/delivery/http/helpers"
	"eventmenu/internal/delivery/http/middleware"
	"eventmenu/internal/domain"
	"eventmenu/internal/editor"
	"eventmenu/internal/session"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var (
	organizerIdentity = domain.Identity{UserID: "org-1"}
	guestIdentity     = domain.Identity{UserID: "anon-1", Anonymous: true}
)

func withIdentity(r *http.Request, id domain.Identity) *http.Request {
	return r.WithContext(middleware.SetIdentity(r.Context(), id))
}

// decodeEnvelope decodes the response body into an envelope whose data lands in data (if non-nil).
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data any) *helpers.APIError {
	t.Helper()
	var raw struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&raw))
	if data != nil && raw.Error == nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.Error
}

func sampleEvent() *domain.Event {
	return &domain.Event{
		ID:          "ev-1",
		Name:        "Brunch",
		OrganizerID: "org-1",
		LogoURL:     domain.DefaultLogoURL,
		Colors:      domain.DefaultColors,
		Menu: domain.Menu{Categories: []domain.Category{
			{ID: "c1", Name: "Kolaches", Items: []domain.MenuItem{{ID: "i1", Name: "Fruit"}}},
		}},
	}
}

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	signUpErr    error
	signInErr    error
	anonErr      error
	lastEmail    string
	lastPassword string
	lastName     string
}

func (f *fakeAuthService) SignUp(ctx context.Context, email, password, name string) (*domain.User, error) {
	f.lastEmail, f.lastPassword, f.lastName = email, password, name
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &domain.User{ID: "org-1", Email: email, Name: name}, nil
}

func (f *fakeAuthService) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	f.lastEmail, f.lastPassword = email, password
	if f.signInErr != nil {
		return "", nil, f.signInErr
	}
	return "jwt-org", &domain.User{ID: "org-1", Email: email}, nil
}

func (f *fakeAuthService) SignInAnonymously(ctx context.Context) (string, domain.Identity, error) {
	if f.anonErr != nil {
		return "", domain.Identity{}, f.anonErr
	}
	return "jwt-anon", guestIdentity, nil
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	mu sync.Mutex

	event        *domain.Event
	events       []*domain.Event
	err          error
	getEventErr  error
	lastOwner    string
	lastEventID  string
	lastName     string
	lastSettings domain.EventSettings
	lastMenu     domain.Menu
	deleted      bool
}

func (f *fakeEventService) record(eventID, organizerID string) {
	f.mu.Lock()
	f.lastEventID, f.lastOwner = eventID, organizerID
	f.mu.Unlock()
}

func (f *fakeEventService) CreateEvent(ctx context.Context, organizerID, name string) (*domain.Event, error) {
	f.lastOwner, f.lastName = organizerID, name
	if f.err != nil {
		return nil, f.err
	}
	e := sampleEvent()
	e.Name = name
	return e, nil
}

func (f *fakeEventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	f.record(eventID, "")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getEventErr != nil {
		return nil, f.getEventErr
	}
	e := *f.event
	return &e, nil
}

func (f *fakeEventService) GetOwnedEvent(ctx context.Context, eventID, organizerID string) (*domain.Event, error) {
	f.record(eventID, organizerID)
	if f.err != nil {
		return nil, f.err
	}
	if organizerID != f.event.OrganizerID {
		return nil, domain.ErrForbidden
	}
	return f.event, nil
}

func (f *fakeEventService) ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	f.record("", organizerID)
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func (f *fakeEventService) UpdateSettings(ctx context.Context, eventID, organizerID string, settings domain.EventSettings) (*domain.Event, error) {
	f.record(eventID, organizerID)
	f.lastSettings = settings
	if f.err != nil {
		return nil, f.err
	}
	e := *f.event
	e.Name, e.LogoURL, e.Colors = settings.Name, settings.LogoURL, settings.Colors
	return &e, nil
}

func (f *fakeEventService) SaveMenu(ctx context.Context, eventID, organizerID string, menu domain.Menu) (*domain.Event, error) {
	f.record(eventID, organizerID)
	f.lastMenu = menu
	if f.err != nil {
		return nil, f.err
	}
	e := *f.event
	e.Menu = menu
	return &e, nil
}

func (f *fakeEventService) DuplicateEvent(ctx context.Context, eventID, organizerID string) (*domain.Event, error) {
	f.record(eventID, organizerID)
	if f.err != nil {
		return nil, f.err
	}
	e := *f.event
	e.ID, e.Name = "ev-2", e.Name+" (Copy)"
	return &e, nil
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, eventID, organizerID string) error {
	f.record(eventID, organizerID)
	if f.err != nil {
		return f.err
	}
	f.deleted = true
	return nil
}

func (f *fakeEventService) GuestLink(eventID string) string {
	return "http://localhost:3000/?event=" + eventID
}

// fakeGuestService implements domain.GuestService for handler tests.
type fakeGuestService struct {
	err          error
	guests       []*domain.GuestSubmission
	lastIdentity domain.Identity
	lastForm     domain.GuestForm
	lastItemIDs  []string
	lastEventID  string
	lastGuestID  string
	lastOwner    string
}

func (f *fakeGuestService) Submit(ctx context.Context, eventID string, guest domain.Identity, form domain.GuestForm, itemIDs []string) (*domain.GuestSubmission, error) {
	f.lastEventID, f.lastIdentity, f.lastForm, f.lastItemIDs = eventID, guest, form, itemIDs
	if f.err != nil {
		return nil, f.err
	}
	return &domain.GuestSubmission{ID: "g-1", EventID: eventID, Name: form.Name, Email: form.Email, GuestUserID: guest.UserID}, nil
}

func (f *fakeGuestService) ListGuests(ctx context.Context, eventID, organizerID string) ([]*domain.GuestSubmission, error) {
	f.lastEventID, f.lastOwner = eventID, organizerID
	if f.err != nil {
		return nil, f.err
	}
	return f.guests, nil
}

func (f *fakeGuestService) DeleteGuest(ctx context.Context, eventID, guestID, organizerID string) error {
	f.lastEventID, f.lastGuestID, f.lastOwner = eventID, guestID, organizerID
	return f.err
}

func (f *fakeGuestService) Summary(ctx context.Context, eventID, organizerID string) (*domain.SelectionSummary, error) {
	f.lastEventID, f.lastOwner = eventID, organizerID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SelectionSummary{EventID: eventID, TotalGuests: 1, Categories: []domain.CategoryTally{
		{Category: "Kolaches", Items: []domain.ItemTally{{ItemID: "i1", Name: "Fruit", Count: 1}}},
	}}, nil
}

// fakeNavigator implements SessionNavigator for handler tests.
type fakeNavigator struct {
	outcome       session.Outcome
	navigateErr   error
	lastBrowserID string
	lastRawQuery  string
	lastIdentity  *domain.Identity
	lastTarget    session.State
	navigated     bool
}

func (f *fakeNavigator) Resolve(ctx context.Context, browserID, rawQuery string, identity *domain.Identity) session.Outcome {
	f.lastBrowserID, f.lastRawQuery, f.lastIdentity = browserID, rawQuery, identity
	return f.outcome
}

func (f *fakeNavigator) Navigate(ctx context.Context, browserID string, target session.State) (string, error) {
	f.navigated = true
	f.lastBrowserID, f.lastTarget = browserID, target
	if f.navigateErr != nil {
		return "", f.navigateErr
	}
	return session.Location("/", target), nil
}

// fakeEditorManager implements EditorManager for handler tests.
type fakeEditorManager struct {
	view        editor.View
	err         error
	lastEventID string
	lastOwner   string
	lastSession string
	lastKind    editor.Kind
	lastOp      editor.Op
	calls       []string
}

func (f *fakeEditorManager) result(call, sessionID, organizerID string) (editor.View, error) {
	f.calls = append(f.calls, call)
	f.lastSession, f.lastOwner = sessionID, organizerID
	if f.err != nil {
		return editor.View{}, f.err
	}
	return f.view, nil
}

func (f *fakeEditorManager) Open(ctx context.Context, eventID, organizerID string, kind editor.Kind) (editor.View, error) {
	f.lastEventID, f.lastKind = eventID, kind
	return f.result("open", "", organizerID)
}

func (f *fakeEditorManager) Get(sessionID, organizerID string) (editor.View, error) {
	return f.result("get", sessionID, organizerID)
}

func (f *fakeEditorManager) Apply(sessionID, organizerID string, op editor.Op) (editor.View, error) {
	f.lastOp = op
	return f.result("apply", sessionID, organizerID)
}

func (f *fakeEditorManager) Save(ctx context.Context, sessionID, organizerID string) (editor.View, error) {
	return f.result("save", sessionID, organizerID)
}

func (f *fakeEditorManager) Reload(sessionID, organizerID string) (editor.View, error) {
	return f.result("reload", sessionID, organizerID)
}

func (f *fakeEditorManager) Close(sessionID, organizerID string) error {
	_, err := f.result("close", sessionID, organizerID)
	return err
}
