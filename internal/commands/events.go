package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mmynk/volunteermap/internal/api"
	"github.com/mmynk/volunteermap/internal/resolver"
)

// regionPadding is the margin kept around the fitted map region.
const regionPadding = 0.1

func (a *App) listEvents(ctx context.Context, args []string) error {
	fs := a.flagSet("events", "")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.refresh(ctx); err != nil {
		return err
	}
	events, users := a.Store.Get()
	markers := resolver.BuildMarkers(events, users, a.Sessions.Session().UserID(), a.Now())

	for _, m := range markers {
		when := resolver.FormatEventDateTime(m.Event.DateTime)
		fmt.Fprintf(a.Out, "%-13s %s  %s %s  %s  (%s)\n",
			"["+m.Variant.String()+"]", m.Event.Name, when.Date, when.Time, m.Organizer.Name, m.Event.ID)
	}

	region := resolver.FitRegion(resolver.MarkerPositions(markers), regionPadding)
	fmt.Fprintln(a.Out, resolver.EventsFoundLabel(len(markers)))
	fmt.Fprintf(a.Out, "Region: %.5f, %.5f (±%.4f, ±%.4f)\n",
		region.Latitude, region.Longitude, region.LatitudeDelta, region.LongitudeDelta)
	return nil
}

func (a *App) showEvent(ctx context.Context, args []string) error {
	id, err := a.oneArg("show", args)
	if err != nil {
		return err
	}
	if err := a.refresh(ctx); err != nil {
		return err
	}

	event, ok := a.Store.Event(id)
	if !ok {
		return api.NewError(api.KindFetch, fmt.Errorf("%w: %s", api.ErrEventNotFound, id)).
			WithMessage("Event not found.")
	}
	_, users := a.Store.Get()
	printDetails(a.Out, resolver.DescribeEvent(event, users, a.Sessions.Session().UserID()))
	return nil
}

func printDetails(w io.Writer, d resolver.EventDetails) {
	fmt.Fprintf(w, "%s [%s]\n", d.Event.Name, d.Variant)
	fmt.Fprintf(w, "  Date:      %s\n", d.Schedule.Date)
	fmt.Fprintf(w, "  Time:      %s\n", d.Schedule.Time)
	fmt.Fprintf(w, "  Location:  %.5f, %.5f\n", d.Event.Position.Latitude, d.Event.Position.Longitude)
	fmt.Fprintf(w, "  Organizer: %s (%s)\n", d.Organizer.Name, d.Organizer.Phone)
	fmt.Fprintf(w, "  Roster:    %s\n", d.Roster)
	if d.Event.ImageURL != "" {
		fmt.Fprintf(w, "  Image:     %s\n", d.Event.ImageURL)
	}
	if about := strings.TrimSpace(d.Event.Description); about != "" {
		fmt.Fprintf(w, "\n%s\n", about)
	}
}

// refresh reloads the store. A partial failure is reported but does not stop
// the command when some data is available to show.
func (a *App) refresh(ctx context.Context) error {
	err := a.Store.Refresh(ctx)
	if err == nil {
		return nil
	}
	events, users := a.Store.Get()
	if len(events) == 0 && len(users) == 0 {
		return err
	}
	if !errors.Is(err, context.Canceled) {
		a.notify(err)
	}
	return nil
}
