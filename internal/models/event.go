package models

import (
	"slices"
	"time"
)

// Position is a point on the map in IEEE-754 degrees.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Event represents a scheduled volunteer activity.
type Event struct {
	// ID is the unique identifier for the event (UUID format, generated by the client).
	ID string `json:"id"`

	// Name is the display title of the event.
	Name string `json:"name"`

	// Description is the free-text "about" section.
	Description string `json:"description"`

	// DateTime is the scheduled start, always in UTC.
	DateTime time.Time `json:"dateTime"`

	// Position is where the event takes place.
	Position Position `json:"position"`

	// VolunteersNeeded is the roster capacity.
	VolunteersNeeded int `json:"volunteersNeeded"`

	// VolunteersIDs lists the user IDs signed up, in signup order.
	// Each user ID appears at most once.
	VolunteersIDs []string `json:"volunteersIds"`

	// OrganizerID is the ID of the user who created the event.
	OrganizerID string `json:"organizerId"`

	// ImageURL optionally references a hosted image.
	ImageURL string `json:"imageUrl,omitempty"`
}

// HasVolunteer reports whether userID is on the roster.
func (e *Event) HasVolunteer(userID string) bool {
	if userID == "" {
		return false
	}
	return slices.Contains(e.VolunteersIDs, userID)
}

// IsFull reports whether the roster has reached capacity.
func (e *Event) IsFull() bool {
	return len(e.VolunteersIDs) >= e.VolunteersNeeded
}

// Clone returns a deep copy so callers can modify the roster without
// touching shared snapshots.
func (e *Event) Clone() *Event {
	c := *e
	c.VolunteersIDs = slices.Clone(e.VolunteersIDs)
	return &c
}

// WithVolunteer returns a copy of the event with userID appended to the roster.
// The roster is returned unchanged if userID is already present.
func (e *Event) WithVolunteer(userID string) *Event {
	c := e.Clone()
	if !c.HasVolunteer(userID) {
		c.VolunteersIDs = append(c.VolunteersIDs, userID)
	}
	return c
}
