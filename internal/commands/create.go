package commands

import (
	"context"
	"fmt"
	"math"

	"github.com/mmynk/volunteermap/internal/models"
	"github.com/mmynk/volunteermap/internal/resolver"
	"github.com/mmynk/volunteermap/internal/service"
)

func (a *App) createEvent(ctx context.Context, args []string) error {
	fs := a.flagSet("create", "-name NAME -date YYYY-MM-DD -time HH:MM -lat LAT -lng LNG [OPTIONS]")
	name := fs.String("name", "", "Event name")
	about := fs.String("about", "", "Description (at most 300 characters)")
	volunteers := fs.Int("volunteers", 1, "Volunteers needed")
	date := fs.String("date", "", "Date, YYYY-MM-DD (UTC)")
	clock := fs.String("time", "", "Start time, HH:MM or 3:04 PM (UTC)")
	lat := fs.Float64("lat", math.NaN(), "Latitude")
	lng := fs.Float64("lng", math.NaN(), "Longitude")
	image := fs.String("image", "", "Optional image file to upload")
	if err := fs.Parse(args); err != nil {
		return err
	}

	draft := service.EventDraft{
		Name:             *name,
		Description:      *about,
		VolunteersNeeded: *volunteers,
		Date:             *date,
		Time:             *clock,
		ImagePath:        *image,
	}
	if !math.IsNaN(*lat) && !math.IsNaN(*lng) {
		draft.Position = &models.Position{Latitude: *lat, Longitude: *lng}
	}

	event, err := a.Events.CreateEvent(ctx, a.Sessions.Session(), draft)
	if err != nil {
		return err
	}

	when := resolver.FormatEventDateTime(event.DateTime)
	fmt.Fprintf(a.Out, "Created %s on %s at %s (%s)\n", event.Name, when.Date, when.Time, event.ID)
	return nil
}
