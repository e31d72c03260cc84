// Package editor keeps organizer editing sessions: a draft of an event's menu or branding
// settings that follows the live event document until it is saved.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"eventmenu/internal/domain"
	"eventmenu/internal/draft"
	"eventmenu/internal/livestore"

	"github.com/google/uuid"
)

// Kind selects which part of the event a session edits.
type Kind string

const (
	KindMenu     Kind = "menu"
	KindSettings Kind = "settings"
)

// View is the client-facing state of a session.
// swagger:model EditorView
type View struct {
	SessionID      string                `json:"session_id"`
	EventID        string                `json:"event_id"`
	Kind           Kind                  `json:"kind"`
	Seeded         bool                  `json:"seeded"`
	Dirty          bool                  `json:"dirty"`
	ServerChanged  bool                  `json:"server_changed"`
	Saving         bool                  `json:"saving"`
	Menu           *domain.Menu          `json:"menu,omitempty"`
	ServerMenu     *domain.Menu          `json:"server_menu,omitempty"`
	Settings       *domain.EventSettings `json:"settings,omitempty"`
	ServerSettings *domain.EventSettings `json:"server_settings,omitempty"`
	// CreatedID is the id assigned by an add_category or add_item operation.
	CreatedID string `json:"created_id,omitempty"`
	// Error is the latest live-update failure, cleared by the next successful snapshot.
	Error string `json:"error,omitempty"`
}

type session struct {
	id          string
	eventID     string
	organizerID string
	kind        Kind
	menu        *draft.Synchronizer[domain.Menu]
	settings    *draft.Synchronizer[domain.EventSettings]
	unsubscribe livestore.Unsubscribe

	mu       sync.Mutex
	lastUsed time.Time
	liveErr  string
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *session) setLiveErr(msg string) {
	s.mu.Lock()
	s.liveErr = msg
	s.mu.Unlock()
}

// revision orders snapshots of one event: every write moves updated_at forward.
func revision(e *domain.Event) int64 {
	return e.UpdatedAt.UnixNano()
}

func (s *session) applyEvent(e *domain.Event) {
	if s.kind == KindMenu {
		s.menu.ApplySnapshot(e.Menu, revision(e))
		return
	}
	s.settings.ApplySnapshot(e.Settings(), revision(e))
}

func (s *session) view() View {
	v := View{SessionID: s.id, EventID: s.eventID, Kind: s.kind}
	if s.kind == KindMenu {
		st := s.menu.State()
		v.Seeded, v.Dirty, v.ServerChanged, v.Saving = st.Seeded, st.Dirty, st.ServerChanged, st.Saving
		v.Menu, v.ServerMenu = &st.Draft, &st.Server
	} else {
		st := s.settings.State()
		v.Seeded, v.Dirty, v.ServerChanged, v.Saving = st.Seeded, st.Dirty, st.ServerChanged, st.Saving
		v.Settings, v.ServerSettings = &st.Draft, &st.Server
	}
	s.mu.Lock()
	v.Error = s.liveErr
	s.mu.Unlock()
	return v
}

// Manager owns all open editing sessions. Safe for concurrent use.
type Manager struct {
	hub         *livestore.Hub
	events      domain.EventService
	idleTimeout time.Duration
	logger      *slog.Logger
	newID       func() string
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewManager returns a Manager. Sessions unused for idleTimeout are closed by Sweep.
func NewManager(hub *livestore.Hub, events domain.EventService, idleTimeout time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		hub:         hub,
		events:      events,
		idleTimeout: idleTimeout,
		logger:      logger,
		newID:       uuid.NewString,
		now:         time.Now,
		sessions:    make(map[string]*session),
	}
}

// Open starts a session seeded from the current event and subscribes it to the event topic.
func (m *Manager) Open(ctx context.Context, eventID, organizerID string, kind Kind) (View, error) {
	if kind != KindMenu && kind != KindSettings {
		return View{}, fmt.Errorf("editor kind %q: %w", kind, domain.ErrInvalidInput)
	}
	event, err := m.events.GetOwnedEvent(ctx, eventID, organizerID)
	if err != nil {
		return View{}, err
	}

	s := &session{
		id:          m.newID(),
		eventID:     eventID,
		organizerID: organizerID,
		kind:        kind,
		lastUsed:    m.now(),
	}
	if kind == KindMenu {
		s.menu = draft.New(domain.Menu.Clone, domain.Menu.Equal)
	} else {
		s.settings = draft.New(func(v domain.EventSettings) domain.EventSettings { return v }, domain.EventSettings.Equal)
	}
	s.applyEvent(event)

	load := func(ctx context.Context) (*domain.Event, error) {
		return m.events.GetOwnedEvent(ctx, eventID, organizerID)
	}
	onSnapshot := func(e *domain.Event) {
		s.setLiveErr("")
		s.applyEvent(e)
	}
	onError := func(err error) {
		if errors.Is(err, domain.ErrNotFound) {
			s.setLiveErr("This event has been deleted.")
			return
		}
		m.logger.Warn("editor live update failed", "session_id", s.id, "event_id", eventID, "err", err)
		s.setLiveErr("Live updates are unavailable. Your changes are kept.")
	}
	s.unsubscribe = livestore.Subscribe(m.hub, domain.EventTopic(eventID), load, onSnapshot, onError)

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.logger.Debug("editor session opened", "session_id", s.id, "event_id", eventID, "kind", kind)
	return s.view(), nil
}

func (m *Manager) lookup(sessionID, organizerID string) (*session, error) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok || s.organizerID != organizerID {
		return nil, domain.ErrSessionNotFound
	}
	s.touch(m.now())
	return s, nil
}

// Get returns the current state of a session.
func (m *Manager) Get(sessionID, organizerID string) (View, error) {
	s, err := m.lookup(sessionID, organizerID)
	if err != nil {
		return View{}, err
	}
	return s.view(), nil
}

// Apply runs one mutation against the draft. A failed mutation leaves the draft unchanged.
func (m *Manager) Apply(sessionID, organizerID string, op Op) (View, error) {
	s, err := m.lookup(sessionID, organizerID)
	if err != nil {
		return View{}, err
	}
	var created string
	if s.kind == KindMenu {
		err = s.menu.Mutate(func(menu *domain.Menu) error {
			id, err := applyMenuOp(menu, op, m.newID)
			created = id
			return err
		})
	} else {
		err = s.settings.Mutate(func(v *domain.EventSettings) error {
			return applySettingsOp(v, op)
		})
	}
	if err != nil {
		return View{}, err
	}
	v := s.view()
	v.CreatedID = created
	return v, nil
}

// Save writes the whole draft. On failure the draft is kept so the organizer can retry.
// On success a clean draft is re-seeded from the stored event returned by the write.
func (m *Manager) Save(ctx context.Context, sessionID, organizerID string) (View, error) {
	s, err := m.lookup(sessionID, organizerID)
	if err != nil {
		return View{}, err
	}
	if s.kind == KindMenu {
		err = s.menu.Save(ctx, func(ctx context.Context, menu domain.Menu) (domain.Menu, int64, error) {
			e, err := m.events.SaveMenu(ctx, s.eventID, organizerID, menu)
			if err != nil {
				return domain.Menu{}, 0, err
			}
			return e.Menu, revision(e), nil
		})
	} else {
		err = s.settings.Save(ctx, func(ctx context.Context, v domain.EventSettings) (domain.EventSettings, int64, error) {
			e, err := m.events.UpdateSettings(ctx, s.eventID, organizerID, v)
			if err != nil {
				return domain.EventSettings{}, 0, err
			}
			return e.Settings(), revision(e), nil
		})
	}
	if err != nil {
		return s.view(), err
	}
	return s.view(), nil
}

// Reload discards the draft in favour of the latest server copy.
func (m *Manager) Reload(sessionID, organizerID string) (View, error) {
	s, err := m.lookup(sessionID, organizerID)
	if err != nil {
		return View{}, err
	}
	if s.kind == KindMenu {
		err = s.menu.Reload()
	} else {
		err = s.settings.Reload()
	}
	if err != nil {
		return View{}, err
	}
	return s.view(), nil
}

// Close ends a session and releases its subscription.
func (m *Manager) Close(sessionID, organizerID string) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if !ok || s.organizerID != organizerID {
		m.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	s.unsubscribe()
	return nil
}

// CloseAll ends every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*session)
	m.mu.Unlock()

	for _, s := range all {
		s.unsubscribe()
	}
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the idle timeout and returns how many it closed.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.idleTimeout)
	var stale []*session

	m.mu.Lock()
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastUsed.Before(cutoff)
		s.mu.Unlock()
		if idle {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.unsubscribe()
		m.logger.Debug("editor session expired", "session_id", s.id, "event_id", s.eventID)
	}
	return len(stale)
}

// Run sweeps idle sessions every interval until ctx is done, then closes all sessions.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.CloseAll()
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
