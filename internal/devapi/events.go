package devapi

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mmynk/volunteermap/internal/middleware"
	"github.com/mmynk/volunteermap/internal/models"
	"github.com/mmynk/volunteermap/internal/storage"
)

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.ListEvents(r.Context())
	if err != nil {
		s.internalError(w, "Failed to list events", err)
		return
	}
	s.writeJSON(w, http.StatusOK, events)
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	event, err := s.store.GetEvent(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, CodeNotFound, "Event not found")
		return
	}
	if err != nil {
		s.internalError(w, "Failed to get event", err)
		return
	}
	s.writeJSON(w, http.StatusOK, event)
}

// createEvent stores a client-built event. The organizer is the caller.
func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var event models.Event
	if err := decodeBody(w, r, &event); err != nil {
		s.writeError(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid event: "+err.Error())
		return
	}
	if msg := validateEvent(&event); msg != "" {
		s.writeError(w, http.StatusBadRequest, CodeInvalidRequest, msg)
		return
	}
	if event.OrganizerID == "" {
		event.OrganizerID = userID
	}
	if event.OrganizerID != userID {
		s.writeError(w, http.StatusForbidden, CodeForbidden, "Events can only be created for yourself")
		return
	}
	if hasDuplicates(event.VolunteersIDs) {
		s.writeError(w, http.StatusConflict, CodeAlreadyVolunteered, "Duplicate volunteer")
		return
	}
	if len(event.VolunteersIDs) > event.VolunteersNeeded {
		s.writeError(w, http.StatusConflict, CodeTeamFull, "The team is already full.")
		return
	}
	if event.VolunteersIDs == nil {
		event.VolunteersIDs = []string{}
	}
	event.DateTime = event.DateTime.UTC()

	s.writeMu.Lock()
	err := s.store.CreateEvent(r.Context(), &event)
	s.writeMu.Unlock()
	if errors.Is(err, storage.ErrAlreadyExists) {
		s.writeError(w, http.StatusConflict, CodeEventExists, "An event with this ID already exists")
		return
	}
	if err != nil {
		s.internalError(w, "Failed to create event", err)
		return
	}

	s.logger.Info("Event created", "event_id", event.ID, "organizer_id", userID)
	s.writeJSON(w, http.StatusCreated, event)
}

// updateEvent replaces an event record.
//
// Roster rules are enforced against the stored record: a caller may only add
// themselves, an ID may appear once, and additions may not take the roster
// past capacity. Adds are merged onto the stored roster, so a concurrent
// signup that landed first is never lost. Only the organizer may change the
// other fields.
func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r.Context())

	var req models.Event
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid event: "+err.Error())
		return
	}
	if req.ID != "" && req.ID != id {
		s.writeError(w, http.StatusBadRequest, CodeInvalidRequest, "Event ID does not match the URL")
		return
	}
	req.ID = id
	if msg := validateEvent(&req); msg != "" {
		s.writeError(w, http.StatusBadRequest, CodeInvalidRequest, msg)
		return
	}
	if hasDuplicates(req.VolunteersIDs) {
		s.writeError(w, http.StatusConflict, CodeAlreadyVolunteered, "You've already volunteered for this event.")
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.store.GetEvent(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, CodeNotFound, "Event not found")
		return
	}
	if err != nil {
		s.internalError(w, "Failed to load event for update", err)
		return
	}

	if detailsChanged(current, &req) && current.OrganizerID != userID {
		s.writeError(w, http.StatusForbidden, CodeForbidden, "Only the organizer can edit this event")
		return
	}

	var added []string
	for _, v := range req.VolunteersIDs {
		if !current.HasVolunteer(v) {
			added = append(added, v)
		}
	}
	for _, v := range added {
		if v != userID {
			s.writeError(w, http.StatusForbidden, CodeForbidden, "You can only volunteer yourself")
			return
		}
	}

	updated := req
	updated.OrganizerID = current.OrganizerID
	updated.VolunteersIDs = append(slices.Clone(current.VolunteersIDs), added...)
	if len(added) > 0 && len(updated.VolunteersIDs) > updated.VolunteersNeeded {
		s.logger.Info("Signup rejected, team full", "event_id", id, "user_id", userID)
		s.writeError(w, http.StatusConflict, CodeTeamFull, "The team is already full.")
		return
	}
	updated.DateTime = updated.DateTime.UTC()

	if err := s.store.UpdateEvent(r.Context(), &updated); err != nil {
		s.internalError(w, "Failed to update event", err)
		return
	}

	if len(added) > 0 {
		s.logger.Info("Volunteer added", "event_id", id, "user_id", userID, "roster", len(updated.VolunteersIDs))
	}
	s.writeJSON(w, http.StatusOK, updated)
}

// validateEvent returns a message describing the first invalid field, or "".
func validateEvent(e *models.Event) string {
	switch {
	case e.ID == "":
		return "Event ID is required"
	case strings.TrimSpace(e.Name) == "":
		return "Event name is required"
	case e.VolunteersNeeded < 1:
		return "At least one volunteer is needed"
	case e.DateTime.IsZero():
		return "Event date and time are required"
	}
	return ""
}

// detailsChanged reports whether anything other than the roster differs.
func detailsChanged(current, req *models.Event) bool {
	return current.Name != req.Name ||
		current.Description != req.Description ||
		!current.DateTime.Equal(req.DateTime) ||
		current.Position != req.Position ||
		current.VolunteersNeeded != req.VolunteersNeeded ||
		current.ImageURL != req.ImageURL ||
		(req.OrganizerID != "" && req.OrganizerID != current.OrganizerID)
}

func hasDuplicates(ids []string) bool {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
