// Package resolver derives everything the display layer needs from fetched
// events and users: which events are upcoming, each event's roster state, its
// marker variant and its organizer's contact details.
//
// All functions are pure. The current time is always passed in explicitly.
package resolver

import (
	"time"

	"github.com/mmynk/volunteermap/internal/models"
)

// EventState is the per-user view of an event's roster.
type EventState struct {
	IsFull         bool
	HasVolunteered bool
}

// MarkerVariant classifies an event for map display.
type MarkerVariant int

const (
	VariantOpen MarkerVariant = iota
	VariantFull
	VariantVolunteered
)

func (v MarkerVariant) String() string {
	switch v {
	case VariantVolunteered:
		return "Volunteered"
	case VariantFull:
		return "Full"
	default:
		return "Open"
	}
}

// Organizer holds the contact details rendered for an event's organizer.
type Organizer struct {
	Name  string
	Phone string
	// Known is false when the organizer could not be found among the fetched users.
	Known bool
}

// UnknownOrganizer is returned when no fetched user matches an organizer ID.
var UnknownOrganizer = Organizer{
	Name:  "Unknown Organizer",
	Phone: "Unknown Phone",
}

// FilterFutureEvents returns the events whose DateTime is at or after now,
// preserving input order.
func FilterFutureEvents(events []models.Event, now time.Time) []models.Event {
	future := make([]models.Event, 0, len(events))
	for _, e := range events {
		if !e.DateTime.Before(now) {
			future = append(future, e)
		}
	}
	return future
}

// ResolveEventState computes the roster state of an event for the given user.
// An empty currentUserID never counts as having volunteered.
func ResolveEventState(event *models.Event, currentUserID string) EventState {
	return EventState{
		IsFull:         event.IsFull(),
		HasVolunteered: event.HasVolunteer(currentUserID),
	}
}

// ResolveMarkerVariant picks the marker for a state.
// Having volunteered wins over a full roster, which wins over open.
func ResolveMarkerVariant(state EventState) MarkerVariant {
	if state.HasVolunteered {
		return VariantVolunteered
	}
	if state.IsFull {
		return VariantFull
	}
	return VariantOpen
}

// ResolveOrganizer looks up the organizer by ID.
// It returns UnknownOrganizer rather than failing when there is no match.
func ResolveOrganizer(users []models.User, organizerID string) Organizer {
	for _, u := range users {
		if u.ID == organizerID {
			return Organizer{
				Name:  u.Name.Full(),
				Phone: u.Mobile,
				Known: true,
			}
		}
	}
	return UnknownOrganizer
}
