package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventmenu/internal/domain"
	"eventmenu/internal/selection"
)

type guestService struct {
	eventRepo      domain.EventRepository
	guestRepo      domain.GuestRepository
	emailService   domain.EmailService
	publisher      domain.MessagePublisher
	notifier       domain.ChangeNotifier
	policy         selection.Policy
	contextTimeout time.Duration
	logger         *slog.Logger
}

func NewGuestService(eventRepo domain.EventRepository,
	guestRepo domain.GuestRepository,
	emailService domain.EmailService,
	publisher domain.MessagePublisher,
	notifier domain.ChangeNotifier,
	policy selection.Policy,
	timeout time.Duration,
	logger *slog.Logger,
) domain.GuestService {
	return &guestService{
		eventRepo:      eventRepo,
		guestRepo:      guestRepo,
		emailService:   emailService,
		publisher:      publisher,
		notifier:       notifier,
		policy:         policy,
		contextTimeout: timeout,
		logger:         logger,
	}
}

// GuestSubmittedMessage is published with routing key guest.submitted.
type GuestSubmittedMessage struct {
	EventID     string                `json:"event_id"`
	GuestID     string                `json:"guest_id"`
	Name        string                `json:"name"`
	Email       string                `json:"email"`
	OptIn       bool                  `json:"opt_in"`
	Selections  []domain.SelectedItem `json:"selections"`
	SubmittedAt time.Time             `json:"submitted_at"`
}

// Submit validates the form and the requested items against the current menu and stores
// the RSVP. Item ids are replayed through a selection.Selection in request order, so the
// stored categories are the ones the items belonged to at submission time.
func (s *guestService) Submit(ctx context.Context, eventID string, guest domain.Identity, form domain.GuestForm, itemIDs []string) (*domain.GuestSubmission, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if guest.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if err := selection.ValidateContact(form, s.policy); err != nil {
		return nil, err
	}
	sel := selection.New(s.policy)
	seen := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		item, category, ok := event.Menu.FindItem(id)
		if !ok {
			return nil, domain.NewValidationError("selection", "One of the selected items is no longer on the menu.")
		}
		change, err := sel.Toggle(item, category)
		if err != nil {
			return nil, err
		}
		if change == selection.Replaced {
			return nil, domain.NewValidationError("selection", fmt.Sprintf("Please choose only one item from %s.", category.Name))
		}
	}
	if err := sel.ValidateSelection(event.Menu); err != nil {
		return nil, err
	}

	submission := &domain.GuestSubmission{
		EventID:     eventID,
		Name:        strings.TrimSpace(form.Name),
		Email:       strings.TrimSpace(form.Email),
		Phone:       strings.TrimSpace(form.Phone),
		OptIn:       form.OptIn,
		Selections:  sel.Items(),
		GuestUserID: guest.UserID,
	}
	if err := s.guestRepo.Create(ctx, submission); err != nil {
		if errors.Is(err, domain.ErrAlreadySubmitted) {
			return nil, domain.ErrAlreadySubmitted
		}
		return nil, fmt.Errorf("create guest: %w", err)
	}
	s.notifier.Notify(ctx, domain.GuestsTopic(eventID))

	// The RSVP is stored at this point; confirmation and fan-out are best effort.
	if err := s.emailService.SendRSVPConfirmation(ctx, &domain.RSVPConfirmationEmailData{
		Email:      submission.Email,
		GuestName:  submission.Name,
		EventName:  event.Name,
		Selections: submission.Selections,
	}); err != nil {
		s.logger.WarnContext(ctx, "rsvp confirmation email failed", "event_id", eventID, "guest_id", submission.ID, "err", err)
	}
	if err := s.publisher.Publish(domain.RoutingKeyGuestSubmitted, GuestSubmittedMessage{
		EventID:     eventID,
		GuestID:     submission.ID,
		Name:        submission.Name,
		Email:       submission.Email,
		OptIn:       submission.OptIn,
		Selections:  submission.Selections,
		SubmittedAt: submission.SubmittedAt,
	}); err != nil {
		s.logger.WarnContext(ctx, "publish guest submitted failed", "event_id", eventID, "err", err)
	}
	return submission, nil
}

func (s *guestService) checkOwner(ctx context.Context, eventID, organizerID string) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != organizerID {
		return domain.ErrForbidden
	}
	return nil
}

func (s *guestService) ListGuests(ctx context.Context, eventID, organizerID string) ([]*domain.GuestSubmission, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.checkOwner(ctx, eventID, organizerID); err != nil {
		return nil, err
	}
	guests, err := s.guestRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	if guests == nil {
		guests = []*domain.GuestSubmission{}
	}
	return guests, nil
}

func (s *guestService) DeleteGuest(ctx context.Context, eventID, guestID, organizerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.checkOwner(ctx, eventID, organizerID); err != nil {
		return err
	}
	if err := s.guestRepo.Delete(ctx, eventID, guestID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete guest: %w", err)
	}
	s.notifier.Notify(ctx, domain.GuestsTopic(eventID))
	return nil
}

// Summary counts selections per category and item. Categories and items are grouped by the
// names recorded on the submissions, in first-seen order.
func (s *guestService) Summary(ctx context.Context, eventID, organizerID string) (*domain.SelectionSummary, error) {
	guests, err := s.ListGuests(ctx, eventID, organizerID)
	if err != nil {
		return nil, err
	}
	return Summarize(eventID, guests), nil
}

// Summarize builds a SelectionSummary from stored submissions.
func Summarize(eventID string, guests []*domain.GuestSubmission) *domain.SelectionSummary {
	summary := &domain.SelectionSummary{EventID: eventID, TotalGuests: len(guests), Categories: []domain.CategoryTally{}}
	catIndex := make(map[string]int)
	itemIndex := make(map[string]map[string]int)
	for _, g := range guests {
		for _, sel := range g.Selections {
			ci, ok := catIndex[sel.Category]
			if !ok {
				ci = len(summary.Categories)
				catIndex[sel.Category] = ci
				itemIndex[sel.Category] = make(map[string]int)
				summary.Categories = append(summary.Categories, domain.CategoryTally{Category: sel.Category, Items: []domain.ItemTally{}})
			}
			items := itemIndex[sel.Category]
			ii, ok := items[sel.ID]
			if !ok {
				ii = len(summary.Categories[ci].Items)
				items[sel.ID] = ii
				summary.Categories[ci].Items = append(summary.Categories[ci].Items, domain.ItemTally{ItemID: sel.ID, Name: sel.Name})
			}
			summary.Categories[ci].Items[ii].Count++
		}
	}
	return summary
}
