// Package selection implements the guest-side menu selection state machine and the
// submission preconditions checked before a guest RSVP reaches the store.
package selection

import (
	"fmt"
	"strconv"
	"strings"

	"eventmenu/internal/domain"
)

// Mode selects how many items a guest may pick.
type Mode string

const (
	// ModeMulti allows up to Policy.Limit items from any categories.
	ModeMulti Mode = "multi"
	// ModePerCategory requires exactly one item from every category that has items.
	ModePerCategory Mode = "per_category"
)

// DefaultLimit is the bounded multi-select capacity.
const DefaultLimit = 2

// Policy configures a Selection.
type Policy struct {
	Mode          Mode
	Limit         int
	PhoneRequired bool
}

// DefaultPolicy is multi-select up to two items with an optional phone number.
func DefaultPolicy() Policy {
	return Policy{Mode: ModeMulti, Limit: DefaultLimit}
}

// LimitError is returned when a guest tries to add an item while at capacity.
// It matches domain.ErrSelectionLimit with errors.Is.
type LimitError struct {
	Limit int
}

func (e *LimitError) Error() string {
	return LimitNotice(e.Limit)
}

func (e *LimitError) Is(target error) bool {
	return target == domain.ErrSelectionLimit
}

// LimitNotice is the user-facing message shown when the selection is full.
func LimitNotice(limit int) string {
	words := []string{"zero", "one", "two", "three", "four", "five"}
	n := strconv.Itoa(limit)
	if limit >= 0 && limit < len(words) {
		n = words[limit]
	}
	noun := "items"
	if limit == 1 {
		noun = "item"
	}
	return fmt.Sprintf("You can only select up to %s %s.", n, noun)
}

// Change describes what a successful Toggle did.
type Change int

const (
	Added Change = iota + 1
	Removed
	// Replaced means the category's previous choice was swapped out (per-category mode).
	Replaced
)

type entry struct {
	item       domain.SelectedItem
	categoryID string
}

// Selection is one guest's set of chosen items, identified by item id.
// It is not safe for concurrent use; each guest form owns its own Selection.
type Selection struct {
	policy  Policy
	entries []entry
	frozen  bool
}

// New returns an empty Selection governed by p.
func New(p Policy) *Selection {
	if p.Mode == "" {
		p.Mode = ModeMulti
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	return &Selection{policy: p}
}

// Policy returns the policy the selection was created with.
func (s *Selection) Policy() Policy {
	return s.policy
}

// Toggle removes item when it is selected and adds it otherwise, tagging it with category.
// Removal is never limited. Adding at capacity fails with *LimitError and leaves the set unchanged.
func (s *Selection) Toggle(item domain.MenuItem, category domain.Category) (Change, error) {
	if s.frozen {
		return 0, domain.ErrSubmissionClosed
	}
	if i := s.index(item.ID); i >= 0 {
		s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
		return Removed, nil
	}

	e := entry{
		item: domain.SelectedItem{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Category:    category.Name,
		},
		categoryID: category.ID,
	}

	if s.policy.Mode == ModePerCategory {
		for i := range s.entries {
			if s.entries[i].categoryID == category.ID {
				s.entries[i] = e
				return Replaced, nil
			}
		}
		s.entries = append(s.entries, e)
		return Added, nil
	}

	if len(s.entries) >= s.policy.Limit {
		return 0, &LimitError{Limit: s.policy.Limit}
	}
	s.entries = append(s.entries, e)
	return Added, nil
}

func (s *Selection) index(itemID string) int {
	for i := range s.entries {
		if s.entries[i].item.ID == itemID {
			return i
		}
	}
	return -1
}

// Contains reports whether the item is currently selected.
func (s *Selection) Contains(itemID string) bool {
	return s.index(itemID) >= 0
}

// Len returns the number of selected items.
func (s *Selection) Len() int {
	return len(s.entries)
}

// Items returns a copy of the selected items in selection order.
func (s *Selection) Items() []domain.SelectedItem {
	out := make([]domain.SelectedItem, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.item
	}
	return out
}

// Freeze makes the selection read-only after a successful submission.
func (s *Selection) Freeze() {
	s.frozen = true
}

// Frozen reports whether Freeze was called.
func (s *Selection) Frozen() bool {
	return s.frozen
}

// Validate checks the submission preconditions in order: name, email, phone, selection.
// The first failure is returned as *domain.ValidationError (or *LimitError).
func (s *Selection) Validate(form domain.GuestForm, menu domain.Menu) error {
	if err := ValidateContact(form, s.policy); err != nil {
		return err
	}
	return s.ValidateSelection(menu)
}

// ValidateContact checks the identity fields of the form.
func ValidateContact(form domain.GuestForm, p Policy) error {
	if strings.TrimSpace(form.Name) == "" {
		return domain.NewValidationError("name", "Please enter your name.")
	}
	email := strings.TrimSpace(form.Email)
	if email == "" {
		return domain.NewValidationError("email", "Please enter your email.")
	}
	if !domain.ValidEmail(email) {
		return domain.NewValidationError("email", "Please enter a valid email address.")
	}
	if p.PhoneRequired && strings.TrimSpace(form.Phone) == "" {
		return domain.NewValidationError("phone", "Please enter your phone number.")
	}
	return nil
}

// ValidateSelection checks the selection against the menu the guest chose from.
func (s *Selection) ValidateSelection(menu domain.Menu) error {
	if s.policy.Mode == ModePerCategory {
		for _, c := range menu.Categories {
			if len(c.Items) == 0 {
				continue
			}
			n := 0
			for _, e := range s.entries {
				if e.categoryID == c.ID {
					n++
				}
			}
			if n != 1 {
				return domain.NewValidationError("selection", fmt.Sprintf("Please choose one item from %s.", c.Name))
			}
		}
		if len(s.entries) == 0 {
			return domain.NewValidationError("selection", "Please make a food selection.")
		}
		return nil
	}
	if len(s.entries) == 0 {
		return domain.NewValidationError("selection", "Please make a food selection.")
	}
	if len(s.entries) > s.policy.Limit {
		return &LimitError{Limit: s.policy.Limit}
	}
	return nil
}
