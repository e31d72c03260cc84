package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"eventmenu/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakePointers implements domain.AdminPointerRepository for tests.
type fakePointers struct {
	byBrowser map[string]string
	getErr    error
	setErr    error
	gets      int
}

func newFakePointers() *fakePointers {
	return &fakePointers{byBrowser: make(map[string]string)}
}

func (f *fakePointers) Get(ctx context.Context, browserID string) (string, error) {
	f.gets++
	if f.getErr != nil {
		return "", f.getErr
	}
	id, ok := f.byBrowser[browserID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return id, nil
}

func (f *fakePointers) Set(ctx context.Context, browserID, eventID string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.byBrowser[browserID] = eventID
	return nil
}

func (f *fakePointers) Clear(ctx context.Context, browserID string) error {
	delete(f.byBrowser, browserID)
	return nil
}

// fakeAuth implements the anonymous part of domain.AuthService.
type fakeAuth struct {
	domain.AuthService
	err   error
	calls int
}

func (f *fakeAuth) SignInAnonymously(ctx context.Context) (string, domain.Identity, error) {
	f.calls++
	if f.err != nil {
		return "", domain.Identity{}, f.err
	}
	return "anon-token", domain.Identity{UserID: "anon-new", Anonymous: true}, nil
}

func TestNavigator_ResolveScenarioA(t *testing.T) {
	auth := &fakeAuth{}
	n := NewNavigator(newFakePointers(), auth, "/", testLogger)

	out := n.Resolve(context.Background(), "browser-1", "event=E1", nil)
	assert.Equal(t, Guest("E1"), out.State)
	assert.Equal(t, 1, auth.calls)
	assert.Equal(t, "anon-token", out.GuestToken)
	require.NotNil(t, out.Identity)
	assert.True(t, out.Identity.Anonymous)
	assert.Empty(t, out.Banner)
	assert.Equal(t, "/?event=E1", out.Location)

	// Once the identity is present the same URL resolves without another sign-in.
	again := n.Resolve(context.Background(), "browser-1", "event=E1", out.Identity)
	assert.Equal(t, Guest("E1"), again.State)
	assert.Equal(t, 1, auth.calls)
	assert.Empty(t, again.GuestToken)
}

func TestNavigator_ResolveSignInFailureShowsBanner(t *testing.T) {
	n := NewNavigator(newFakePointers(), &fakeAuth{err: errors.New("quota exceeded")}, "/", testLogger)

	out := n.Resolve(context.Background(), "browser-1", "event=E1", nil)
	assert.Equal(t, Guest("E1"), out.State)
	assert.Equal(t, AnonymousSignInBanner, out.Banner)
	assert.Empty(t, out.GuestToken)
	assert.Nil(t, out.Identity)
}

func TestNavigator_ResolveOrganizer(t *testing.T) {
	pointers := newFakePointers()
	n := NewNavigator(pointers, &fakeAuth{}, "/", testLogger)

	// Scenario B.
	out := n.Resolve(context.Background(), "browser-1", "", organizer)
	assert.Equal(t, OrganizerHome(), out.State)

	pointers.byBrowser["browser-1"] = "E7"
	out = n.Resolve(context.Background(), "browser-1", "", organizer)
	assert.Equal(t, OrganizerDashboard("E7"), out.State)
	assert.Equal(t, "/", out.Location)

	// Pointers are per browser.
	out = n.Resolve(context.Background(), "browser-2", "", organizer)
	assert.Equal(t, OrganizerHome(), out.State)

	pointers.getErr = errors.New("connection reset")
	out = n.Resolve(context.Background(), "browser-1", "", organizer)
	assert.Equal(t, OrganizerHome(), out.State)
}

func TestNavigator_ResolveSkipsPointerWhenNotNeeded(t *testing.T) {
	pointers := newFakePointers()
	n := NewNavigator(pointers, &fakeAuth{}, "/", testLogger)

	n.Resolve(context.Background(), "browser-1", "event=E1", organizer)
	n.Resolve(context.Background(), "browser-1", "", anonymous)
	n.Resolve(context.Background(), "browser-1", "", nil)
	assert.Equal(t, 0, pointers.gets)
}

func TestNavigator_Navigate(t *testing.T) {
	pointers := newFakePointers()
	n := NewNavigator(pointers, &fakeAuth{}, "/", testLogger)
	ctx := context.Background()

	loc, err := n.Navigate(ctx, "browser-1", OrganizerDashboard("E5"))
	require.NoError(t, err)
	assert.Equal(t, "/", loc)
	assert.Equal(t, "E5", pointers.byBrowser["browser-1"])

	loc, err = n.Navigate(ctx, "browser-1", Guest("E5"))
	require.NoError(t, err)
	assert.Equal(t, "/?event=E5", loc)
	assert.Equal(t, "E5", pointers.byBrowser["browser-1"], "guest navigation keeps the pointer")

	_, err = n.Navigate(ctx, "browser-1", OrganizerHome())
	require.NoError(t, err)
	assert.NotContains(t, pointers.byBrowser, "browser-1")

	pointers.byBrowser["browser-1"] = "E5"
	_, err = n.Navigate(ctx, "browser-1", Login())
	require.NoError(t, err)
	assert.NotContains(t, pointers.byBrowser, "browser-1")
}

func TestNavigator_NavigateErrors(t *testing.T) {
	pointers := newFakePointers()
	n := NewNavigator(pointers, &fakeAuth{}, "/", testLogger)
	ctx := context.Background()

	_, err := n.Navigate(ctx, "browser-1", State{View: ViewGuest})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = n.Navigate(ctx, "", OrganizerDashboard("E1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	pointers.setErr = errors.New("write failed")
	_, err = n.Navigate(ctx, "browser-1", OrganizerDashboard("E1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store admin pointer")
}
