package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mmynk/volunteermap/internal/api"
	"github.com/mmynk/volunteermap/internal/eventstore"
	"github.com/mmynk/volunteermap/internal/metrics"
	"github.com/mmynk/volunteermap/internal/models"
	"github.com/mmynk/volunteermap/internal/session"
)

// Conflict codes sent by the API with a 409 on PUT /events/{id}.
const (
	CodeAlreadyVolunteered = "already_volunteered"
	CodeTeamFull           = "team_full"
)

// EventAPI is the subset of the events API the workflows call. *api.Client implements it.
type EventAPI interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	CreateEvent(ctx context.Context, event *models.Event) error
	UpdateEvent(ctx context.Context, event *models.Event) error
}

// SignupService adds the current user to event rosters.
type SignupService struct {
	api     EventAPI
	store   *eventstore.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewSignupService creates a SignupService. logger and m may be nil.
func NewSignupService(client EventAPI, store *eventstore.Store, m *metrics.Metrics, logger *slog.Logger) *SignupService {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.Discard()
	}
	return &SignupService{api: client, store: store, metrics: m, logger: logger}
}

// VolunteerForEvent adds the session's user to the event's roster and returns
// the canonical record re-read from the server.
//
// The local roster check only saves a round trip; the server decides. No retry
// is attempted. Failures leave the Event Store untouched unless the server
// returned a fresher record.
func (s *SignupService) VolunteerForEvent(ctx context.Context, sess *session.Session, eventID string) (*models.Event, error) {
	event, err := s.volunteer(ctx, sess, eventID)
	s.metrics.Signups.WithLabelValues(outcome(err)).Inc()
	return event, err
}

func (s *SignupService) volunteer(ctx context.Context, sess *session.Session, eventID string) (*models.Event, error) {
	userID := sess.UserID()
	if userID == "" {
		return nil, api.NewError(api.KindAuthentication, api.ErrNotLoggedIn).
			WithMessage("Please log in to volunteer.")
	}

	event, ok := s.store.Event(eventID)
	if !ok {
		fetched, err := s.api.GetEvent(ctx, eventID)
		if err != nil {
			s.logger.Error("Failed to load event for signup", "event_id", eventID, "error", err)
			return nil, signupError(err)
		}
		event = fetched
	}

	if err := checkRoster(event, userID); err != nil {
		s.logger.Info("Volunteer signup rejected locally", "event_id", eventID, "user_id", userID, "reason", api.KindOf(err))
		return nil, err
	}

	// The API replaces the whole record, so every other field is carried forward.
	if err := s.api.UpdateEvent(ctx, event.WithVolunteer(userID)); err != nil {
		s.logger.Warn("Volunteer signup rejected", "event_id", eventID, "user_id", userID, "status", api.StatusOf(err), "error", err)
		return nil, signupError(err)
	}

	canonical, err := s.api.GetEvent(ctx, eventID)
	if err != nil {
		s.logger.Error("Failed to re-fetch event after signup", "event_id", eventID, "error", err)
		return nil, signupError(err)
	}

	s.store.PutEvent(canonical)

	// The server may have serialized a concurrent signup ahead of ours and
	// dropped our add.
	if !canonical.HasVolunteer(userID) {
		s.logger.Warn("Signup not reflected in canonical record", "event_id", eventID, "user_id", userID)
		if canonical.IsFull() {
			return nil, api.NewError(api.KindTeamFull, api.ErrTeamFull)
		}
		return nil, api.NewError(api.KindSignupFailed, fmt.Errorf("user %s missing from roster of event %s", userID, eventID))
	}

	s.logger.Info("Volunteer signup successful", "event_id", eventID, "user_id", userID)
	return canonical, nil
}

// checkRoster applies the business rules against a known event state.
func checkRoster(event *models.Event, userID string) error {
	if event.HasVolunteer(userID) {
		return api.NewError(api.KindAlreadyVolunteered, api.ErrAlreadyVolunteered)
	}
	if event.IsFull() {
		return api.NewError(api.KindTeamFull, api.ErrTeamFull)
	}
	return nil
}

// signupError classifies a failed signup request.
func signupError(err error) error {
	switch status := api.StatusOf(err); {
	case status == http.StatusConflict && api.CodeOf(err) == CodeAlreadyVolunteered:
		return api.NewError(api.KindAlreadyVolunteered, fmt.Errorf("%w: %w", api.ErrAlreadyVolunteered, err))
	case status == http.StatusConflict && api.CodeOf(err) == CodeTeamFull:
		return api.NewError(api.KindTeamFull, fmt.Errorf("%w: %w", api.ErrTeamFull, err))
	case status == http.StatusUnauthorized:
		return api.NewError(api.KindAuthentication, err).
			WithMessage("Your session has expired. Please log in again.")
	case status == http.StatusNotFound:
		return api.NewError(api.KindSignupFailed, fmt.Errorf("%w: %w", api.ErrEventNotFound, err))
	default:
		return api.NewError(api.KindSignupFailed, err)
	}
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return api.KindOf(err).String()
}
