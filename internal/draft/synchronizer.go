// Package draft reconciles a locally edited copy of a stored structure with the live
// snapshots of that structure.
//
// Policy: the draft is seeded from the first snapshot. Later snapshots only update the
// tracked server copy and never touch the draft. A successful Save re-seeds the draft from
// the stored result of the write, unless edits were made while it was in flight; Reload
// re-seeds from the latest server copy. Every snapshot carries the store revision it was
// read at, and a snapshot older than the tracked server copy is dropped.
package draft

import (
	"context"
	"errors"
	"sync"

	"eventmenu/internal/domain"
)

// ErrNotSeeded is returned when the draft is used before the first snapshot arrived.
var ErrNotSeeded = errors.New("draft not loaded yet")

// State is a point-in-time copy of a Synchronizer.
type State[T any] struct {
	Draft  T
	Server T
	Seeded bool
	// Dirty reports unsaved local edits relative to the value the draft was seeded from.
	Dirty bool
	// ServerChanged reports that the server copy moved on since the draft was seeded.
	ServerChanged bool
	Saving        bool
}

// WriteFunc stores value and returns what the store now holds with its revision.
type WriteFunc[T any] func(ctx context.Context, value T) (stored T, rev int64, err error)

// Synchronizer holds the draft, the latest server snapshot and the seed baseline.
// Safe for concurrent use.
type Synchronizer[T any] struct {
	clone func(T) T
	equal func(a, b T) bool

	mu        sync.Mutex
	draft     T
	baseline  T
	server    T
	serverRev int64
	seeded    bool
	hasServer bool
	saving    bool
	version   uint64
}

// New returns an unseeded Synchronizer. clone must deep-copy a value; equal compares two values.
func New[T any](clone func(T) T, equal func(a, b T) bool) *Synchronizer[T] {
	return &Synchronizer[T]{clone: clone, equal: equal}
}

// ApplySnapshot records a server snapshot read at revision rev. It returns true when the
// draft was seeded. Reapplying an identical snapshot is a no-op.
func (s *Synchronizer[T]) ApplySnapshot(snap T, rev int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasServer {
		if rev < s.serverRev {
			return false
		}
		s.serverRev = rev
		if !s.equal(s.server, snap) {
			s.server = s.clone(snap)
		}
		return false
	}
	s.server = s.clone(snap)
	s.serverRev = rev
	s.hasServer = true
	s.draft = s.clone(snap)
	s.baseline = s.clone(snap)
	s.seeded = true
	return true
}

// Mutate applies fn to a copy of the draft and keeps the result only when fn succeeds,
// so a failed edit never leaves a half-applied draft.
func (s *Synchronizer[T]) Mutate(fn func(*T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seeded {
		return ErrNotSeeded
	}
	work := s.clone(s.draft)
	if err := fn(&work); err != nil {
		return err
	}
	s.draft = work
	s.version++
	return nil
}

// Save writes the whole draft with write. Only one Save runs at a time; a concurrent call
// returns domain.ErrSaveInProgress. On failure the draft is kept for a retry.
func (s *Synchronizer[T]) Save(ctx context.Context, write WriteFunc[T]) error {
	s.mu.Lock()
	if !s.seeded {
		s.mu.Unlock()
		return ErrNotSeeded
	}
	if s.saving {
		s.mu.Unlock()
		return domain.ErrSaveInProgress
	}
	s.saving = true
	payload := s.clone(s.draft)
	version := s.version
	s.mu.Unlock()

	stored, rev, err := write(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if err != nil {
		return err
	}
	if rev >= s.serverRev {
		s.server = s.clone(stored)
		s.serverRev = rev
	}
	s.baseline = s.clone(stored)
	// Edits made while the write was in flight stay in the draft.
	if s.version == version {
		s.draft = s.clone(stored)
	}
	return nil
}

// Reload discards local edits and re-seeds the draft from the latest server snapshot.
func (s *Synchronizer[T]) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasServer {
		return ErrNotSeeded
	}
	s.draft = s.clone(s.server)
	s.baseline = s.clone(s.server)
	s.seeded = true
	s.version++
	return nil
}

// Draft returns a copy of the current draft.
func (s *Synchronizer[T]) Draft() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.seeded {
		var zero T
		return zero, false
	}
	return s.clone(s.draft), true
}

// State returns a copy of the synchronizer state.
func (s *Synchronizer[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State[T]{Seeded: s.seeded, Saving: s.saving}
	if s.seeded {
		st.Draft = s.clone(s.draft)
		st.Dirty = !s.equal(s.draft, s.baseline)
	}
	if s.hasServer {
		st.Server = s.clone(s.server)
		st.ServerChanged = s.seeded && !s.equal(s.server, s.baseline)
	}
	return st
}
