package resolver

import (
	"fmt"
	"time"

	"github.com/mmynk/volunteermap/internal/models"
)

// Marker is everything the map needs to draw one event.
type Marker struct {
	Event     models.Event
	State     EventState
	Variant   MarkerVariant
	Organizer Organizer
}

// EventDetails extends a Marker with the labels shown on the detail view.
type EventDetails struct {
	Marker
	Schedule DateTimeLabels
	Roster   string
}

// BuildMarkers resolves a marker for every event at or after now.
func BuildMarkers(events []models.Event, users []models.User, currentUserID string, now time.Time) []Marker {
	future := FilterFutureEvents(events, now)
	markers := make([]Marker, len(future))
	for i := range future {
		markers[i] = resolveMarker(&future[i], users, currentUserID)
	}
	return markers
}

// DescribeEvent resolves the detail view of a single event.
func DescribeEvent(event *models.Event, users []models.User, currentUserID string) EventDetails {
	return EventDetails{
		Marker:   resolveMarker(event, users, currentUserID),
		Schedule: FormatEventDateTime(event.DateTime),
		Roster:   fmt.Sprintf("%d of %d volunteers", len(event.VolunteersIDs), event.VolunteersNeeded),
	}
}

// MarkerPositions collects the positions of the given markers, for FitRegion.
func MarkerPositions(markers []Marker) []models.Position {
	positions := make([]models.Position, len(markers))
	for i, m := range markers {
		positions[i] = m.Event.Position
	}
	return positions
}

// EventsFoundLabel is the footer text under the map.
func EventsFoundLabel(n int) string {
	switch n {
	case 0:
		return "No events found"
	case 1:
		return "1 event found"
	default:
		return fmt.Sprintf("%d events found", n)
	}
}

func resolveMarker(event *models.Event, users []models.User, currentUserID string) Marker {
	state := ResolveEventState(event, currentUserID)
	return Marker{
		Event:     *event,
		State:     state,
		Variant:   ResolveMarkerVariant(state),
		Organizer: ResolveOrganizer(users, event.OrganizerID),
	}
}
