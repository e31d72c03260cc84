package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"eventmenu/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const testTimeout = 5 * time.Second

// fakeEventRepo implements domain.EventRepository for tests.
type fakeEventRepo struct {
	byID      map[string]*domain.Event
	nextID    int
	createErr error
	getErr    error
	updateErr error
	deleteErr error
	patches   []domain.EventPatch
	deleted   []string
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	f := &fakeEventRepo{byID: make(map[string]*domain.Event)}
	for _, e := range events {
		f.byID[e.ID] = e
	}
	return f
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	e.ID = fmt.Sprintf("ev-new-%d", f.nextID)
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	cp.Menu = e.Menu.Clone()
	return &cp, nil
}

func (f *fakeEventRepo) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.OrganizerID == organizerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	f.patches = append(f.patches, patch)
	if patch.Name != nil {
		e.Name = *patch.Name
	}
	if patch.LogoURL != nil {
		e.LogoURL = *patch.LogoURL
	}
	if patch.Colors != nil {
		e.Colors = *patch.Colors
	}
	if patch.Menu != nil {
		e.Menu = patch.Menu.Clone()
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeGuestRepo implements domain.GuestRepository for tests.
type fakeGuestRepo struct {
	guests    []*domain.GuestSubmission
	createErr error
	listErr   error
}

func (f *fakeGuestRepo) Create(ctx context.Context, g *domain.GuestSubmission) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.guests {
		if existing.EventID == g.EventID && existing.GuestUserID == g.GuestUserID {
			return domain.ErrAlreadySubmitted
		}
	}
	g.ID = "g-" + g.GuestUserID
	g.SubmittedAt = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	f.guests = append(f.guests, g)
	return nil
}

func (f *fakeGuestRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.GuestSubmission, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.GuestSubmission
	for _, g := range f.guests {
		if g.EventID == eventID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGuestRepo) Delete(ctx context.Context, eventID, guestID string) error {
	for i, g := range f.guests {
		if g.EventID == eventID && g.ID == guestID {
			f.guests = append(f.guests[:i], f.guests[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeNotifier records notified topics.
type fakeNotifier struct {
	mu     sync.Mutex
	topics []string
}

func (f *fakeNotifier) Notify(ctx context.Context, topics ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topics...)
}

// fakePublisher records published messages.
type fakePublisher struct {
	keys     []string
	payloads []any
	err      error
}

func (f *fakePublisher) Publish(routingKey string, payload any) error {
	f.keys = append(f.keys, routingKey)
	f.payloads = append(f.payloads, payload)
	return f.err
}

// fakeEmailService records confirmation emails.
type fakeEmailService struct {
	sent []*domain.RSVPConfirmationEmailData
	err  error
}

func (f *fakeEmailService) SendRSVPConfirmation(ctx context.Context, data *domain.RSVPConfirmationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct {
	salt string
}

func (f *fakePasswordHasher) GenerateSalt() (string, error) { return f.salt, nil }
func (f *fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash-" + salt + "-" + password, nil
}
func (f *fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash-"+salt+"-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err        error
	lastExpiry time.Duration
	lastID     domain.Identity
}

func (f *fakeTokenIssuer) Issue(identity domain.Identity, email string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastExpiry = expiry
	f.lastID = identity
	return "token-" + identity.UserID, nil
}

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byEmail   map[string]*domain.User
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	u.ID = "user-created"
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

// fakeMailer and fakeRenderer back the email service tests.
type fakeMailer struct {
	to, subject string
	err         error
}

func (f *fakeMailer) Send(to, subject, html, text string) error {
	f.to, f.subject = to, subject
	return f.err
}

type fakeRenderer struct {
	name string
	err  error
}

func (f *fakeRenderer) Render(name string, data any) (string, string, string, error) {
	f.name = name
	if f.err != nil {
		return "", "", "", f.err
	}
	return "subject", "<p>html</p>", "text", nil
}

func brunchEvent() *domain.Event {
	return &domain.Event{
		ID:          "ev-1",
		Name:        "Brunch",
		OrganizerID: "org-1",
		LogoURL:     domain.DefaultLogoURL,
		Colors:      domain.DefaultColors,
		Menu: domain.Menu{Categories: []domain.Category{
			{ID: "c1", Name: "Kolaches", Items: []domain.MenuItem{{ID: "x", Name: "Fruit"}, {ID: "y", Name: "Cream Cheese"}, {ID: "z", Name: "Poppyseed"}}},
			{ID: "c2", Name: "Savory", Items: []domain.MenuItem{{ID: "s1", Name: "Sausage"}}},
			{ID: "c3", Name: "Empty", Items: []domain.MenuItem{}},
		}},
	}
}
