package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mmynk/volunteermap/internal/api"
	"github.com/mmynk/volunteermap/internal/eventstore"
	"github.com/mmynk/volunteermap/internal/media"
	"github.com/mmynk/volunteermap/internal/models"
	"github.com/mmynk/volunteermap/internal/resolver"
	"github.com/mmynk/volunteermap/internal/session"
)

// MaxDescriptionLength bounds the "about" text of an event.
const MaxDescriptionLength = 300

var (
	ErrLocationRequired   = errors.New("Please select a location.")
	ErrNameRequired       = errors.New("Please enter an event name.")
	ErrDescriptionTooLong = fmt.Errorf("Description must be at most %d characters.", MaxDescriptionLength)
	ErrVolunteersNeeded   = errors.New("At least one volunteer is needed.")
	ErrUploadUnavailable  = errors.New("Image upload is not configured.")
)

// EventDraft is the create-event form.
type EventDraft struct {
	Name             string
	Description      string
	VolunteersNeeded int
	Date             string // YYYY-MM-DD
	Time             string // HH:MM or 3:04 PM
	Position         *models.Position
	ImagePath        string // optional local file
}

// EventService creates events on behalf of the session user.
type EventService struct {
	api      EventAPI
	store    *eventstore.Store
	uploader media.Uploader
	newID    func() string
	logger   *slog.Logger
}

// NewEventService creates an EventService. uploader may be nil, in which case
// drafts with an image are rejected.
func NewEventService(client EventAPI, store *eventstore.Store, uploader media.Uploader, logger *slog.Logger) *EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{
		api:      client,
		store:    store,
		uploader: uploader,
		newID:    uuid.NewString,
		logger:   logger,
	}
}

// CreateEvent validates the draft, uploads its image, and sends the new event.
// On success the event is added to the Event Store.
func (s *EventService) CreateEvent(ctx context.Context, sess *session.Session, draft EventDraft) (*models.Event, error) {
	userID := sess.UserID()
	if userID == "" {
		return nil, api.NewError(api.KindAuthentication, api.ErrNotLoggedIn).
			WithMessage("Please log in to create an event.")
	}

	event, err := s.buildEvent(draft, userID)
	if err != nil {
		return nil, api.NewError(api.KindValidation, err)
	}

	if draft.ImagePath != "" {
		url, err := s.uploader.Upload(ctx, draft.ImagePath)
		if err != nil {
			s.logger.Error("Failed to upload event image", "path", draft.ImagePath, "error", err)
			return nil, api.NewError(api.KindCreateFailed, err)
		}
		event.ImageURL = url
	}

	if err := s.api.CreateEvent(ctx, event); err != nil {
		s.logger.Error("Failed to create event", "event_id", event.ID, "status", api.StatusOf(err), "error", err)
		s.discardImage(ctx, event.ImageURL)
		return nil, api.NewError(api.KindCreateFailed, err)
	}

	s.store.PutEvent(event)
	s.logger.Info("Event created", "event_id", event.ID, "organizer_id", userID)
	return event.Clone(), nil
}

func (s *EventService) buildEvent(draft EventDraft, organizerID string) (*models.Event, error) {
	if draft.Position == nil {
		return nil, ErrLocationRequired
	}
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	description := strings.TrimSpace(draft.Description)
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}
	if draft.VolunteersNeeded < 1 {
		return nil, ErrVolunteersNeeded
	}
	if draft.ImagePath != "" && s.uploader == nil {
		return nil, ErrUploadUnavailable
	}

	start, err := resolver.ParseEventDateTime(draft.Date, draft.Time)
	if err != nil {
		return nil, err
	}

	return &models.Event{
		ID:               s.newID(),
		Name:             name,
		Description:      description,
		DateTime:         start,
		Position:         *draft.Position,
		VolunteersNeeded: draft.VolunteersNeeded,
		VolunteersIDs:    []string{},
		OrganizerID:      organizerID,
	}, nil
}

// discardImage removes an uploaded image whose event was never created.
func (s *EventService) discardImage(ctx context.Context, imageURL string) {
	if imageURL == "" {
		return
	}
	if err := s.uploader.Delete(ctx, imageURL); err != nil {
		s.logger.Warn("Failed to delete orphaned image", "url", imageURL, "error", err)
	}
}
