package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"eventmenu/internal/domain"
)

const duplicateSuffix = " (Copy)"

var hexColorRegexp = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

type eventService struct {
	eventRepo      domain.EventRepository
	notifier       domain.ChangeNotifier
	publisher      domain.MessagePublisher
	publicBaseURL  string
	contextTimeout time.Duration
	logger         *slog.Logger
}

func NewEventService(eventRepo domain.EventRepository,
	notifier domain.ChangeNotifier,
	publisher domain.MessagePublisher,
	publicBaseURL string,
	timeout time.Duration,
	logger *slog.Logger,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		notifier:       notifier,
		publisher:      publisher,
		publicBaseURL:  strings.TrimSuffix(publicBaseURL, "/"),
		contextTimeout: timeout,
		logger:         logger,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, organizerID, name string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if organizerID == "" {
		return nil, domain.ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "Please enter an event name.")
	}
	now := time.Now()
	event := domain.NewEvent(name, organizerID, now, now)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.notifier.Notify(ctx, domain.OrganizerEventsTopic(organizerID))
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetOwnedEvent(ctx context.Context, eventID, organizerID string) (*domain.Event, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != organizerID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (s *eventService) ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByOrganizerID(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

// ValidateSettings returns a *domain.ValidationError for the first invalid field.
func ValidateSettings(settings domain.EventSettings) error {
	if strings.TrimSpace(settings.Name) == "" {
		return domain.NewValidationError("name", "Please enter an event name.")
	}
	if settings.LogoURL != "" {
		u, err := url.Parse(settings.LogoURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return domain.NewValidationError("logo_url", "Logo URL must be an http(s) address.")
		}
	}
	colors := []struct{ field, value string }{
		{"colors.primary", settings.Colors.Primary},
		{"colors.background", settings.Colors.Background},
		{"colors.text", settings.Colors.Text},
		{"colors.card_bg", settings.Colors.CardBackground},
	}
	for _, c := range colors {
		if !hexColorRegexp.MatchString(c.value) {
			return domain.NewValidationError(c.field, "Colors must be hex values like #faa31b.")
		}
	}
	return nil
}

func (s *eventService) UpdateSettings(ctx context.Context, eventID, organizerID string, settings domain.EventSettings) (*domain.Event, error) {
	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}
	if _, err := s.GetOwnedEvent(ctx, eventID, organizerID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name := strings.TrimSpace(settings.Name)
	colors := settings.Colors
	updated, err := s.eventRepo.Update(ctx, eventID, domain.EventPatch{
		Name:    &name,
		LogoURL: &settings.LogoURL,
		Colors:  &colors,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update settings: %w", err)
	}
	s.notifier.Notify(ctx, domain.EventTopic(eventID), domain.OrganizerEventsTopic(organizerID))
	return updated, nil
}

func (s *eventService) SaveMenu(ctx context.Context, eventID, organizerID string, menu domain.Menu) (*domain.Event, error) {
	if err := menu.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.GetOwnedEvent(ctx, eventID, organizerID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	stored := menu.Clone()
	updated, err := s.eventRepo.Update(ctx, eventID, domain.EventPatch{Menu: &stored})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("save menu: %w", err)
	}
	s.notifier.Notify(ctx, domain.EventTopic(eventID), domain.OrganizerEventsTopic(organizerID))
	return updated, nil
}

// DuplicateEvent copies branding and menu into a new event owned by the same organizer.
// Guest submissions are not copied.
func (s *eventService) DuplicateEvent(ctx context.Context, eventID, organizerID string) (*domain.Event, error) {
	src, err := s.GetOwnedEvent(ctx, eventID, organizerID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := time.Now()
	dup := domain.NewEvent(src.Name+duplicateSuffix, organizerID, now, now)
	dup.LogoURL = src.LogoURL
	dup.Colors = src.Colors
	dup.Menu = src.Menu.Clone()
	if err := s.eventRepo.Create(ctx, dup); err != nil {
		return nil, fmt.Errorf("duplicate event: %w", err)
	}
	s.notifier.Notify(ctx, domain.OrganizerEventsTopic(organizerID))
	return dup, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, organizerID string) error {
	if _, err := s.GetOwnedEvent(ctx, eventID, organizerID); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	s.notifier.Notify(ctx, domain.EventTopic(eventID), domain.GuestsTopic(eventID), domain.OrganizerEventsTopic(organizerID))
	if err := s.publisher.Publish(domain.RoutingKeyEventDeleted, EventDeletedMessage{EventID: eventID, OrganizerID: organizerID}); err != nil {
		s.logger.WarnContext(ctx, "publish event deleted failed", "event_id", eventID, "err", err)
	}
	return nil
}

// GuestLink is the shareable URL that opens the guest view of an event.
func (s *eventService) GuestLink(eventID string) string {
	return s.publicBaseURL + "/?event=" + url.QueryEscape(eventID)
}

// EventDeletedMessage is published with routing key event.deleted.
type EventDeletedMessage struct {
	EventID     string `json:"event_id"`
	OrganizerID string `json:"organizer_id"`
}
