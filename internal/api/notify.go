package api

import "errors"

// Notification is the single user-facing message shown for a failure.
type Notification struct {
	Title   string
	Message string
	Action  string
}

// Notify maps any workflow error to its notification. Every kind has exactly one.
func Notify(err error) Notification {
	n := Notification{Action: "Ok"}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		n.Title = "Error"
		n.Message = "An error occurred. Please try again."
		return n
	}

	switch apiErr.kind {
	case KindFetch:
		n.Title = "Connection Error"
		n.Message = "Could not load events. Please try again."
	case KindSignupFailed:
		n.Title = "Volunteer Error"
		n.Message = "Failed to volunteer. Please try again."
	case KindAlreadyVolunteered:
		n.Title = "Cannot Volunteer"
		n.Message = "You've already volunteered for this event."
	case KindTeamFull:
		n.Title = "Cannot Volunteer"
		n.Message = "The team is already full."
	case KindAuthentication:
		n.Title = "Authentication Error"
		n.Message = "Something went wrong."
	case KindValidation:
		n.Title = "Invalid Input"
		if apiErr.err != nil {
			n.Message = apiErr.err.Error()
		}
	case KindCreateFailed:
		n.Title = "Create Event Error"
		n.Message = "Failed to create event. Please try again."
	default:
		n.Title = "Error"
		n.Message = "An error occurred. Please try again."
	}

	if apiErr.message != "" {
		n.Message = apiErr.message
	}
	return n
}
