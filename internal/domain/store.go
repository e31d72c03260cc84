package domain

import "context"

// ChangeNotifier announces that the documents behind the given topics changed.
// Live subscribers of those topics reload and receive a fresh full-state snapshot.
type ChangeNotifier interface {
	Notify(ctx context.Context, topics ...string)
}

// EventTopic is the live topic of a single event document.
func EventTopic(eventID string) string {
	return "event/" + eventID
}

// GuestsTopic is the live topic of the guest submissions of an event.
func GuestsTopic(eventID string) string {
	return "event/" + eventID + "/guests"
}

// OrganizerEventsTopic is the live topic of the "events owned by organizer" query.
func OrganizerEventsTopic(organizerID string) string {
	return "organizer/" + organizerID + "/events"
}
