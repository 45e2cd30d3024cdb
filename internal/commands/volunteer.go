package commands

import (
	"context"
	"fmt"

	"github.com/mmynk/volunteermap/internal/resolver"
)

func (a *App) volunteer(ctx context.Context, args []string) error {
	id, err := a.oneArg("volunteer", args)
	if err != nil {
		return err
	}

	// Best effort: a failed refresh only means the roster check happens server-side.
	if err := a.Store.Refresh(ctx); err != nil {
		a.Logger.Debug("Refresh before signup failed", "error", err)
	}

	sess := a.Sessions.Session()
	event, err := a.Signups.VolunteerForEvent(ctx, sess, id)
	if err != nil {
		return err
	}

	_, users := a.Store.Get()
	details := resolver.DescribeEvent(event, users, sess.UserID())
	fmt.Fprintf(a.Out, "You're volunteering for %s on %s at %s (%s)\n",
		event.Name, details.Schedule.Date, details.Schedule.Time, details.Roster)
	return nil
}
