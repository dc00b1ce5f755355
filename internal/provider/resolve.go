package provider

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Resolution is a fetched time table together with a label for the position
// it was fetched for.
type Resolution struct {
	Timetable Timetable
	Label     string
}

// Resolve fetches the time table and, when names is non-nil, a reverse
// geocoded label concurrently. Only the time table is required: a label
// failure leaves Label empty.
func Resolve(ctx context.Context, tables TimetableSource, names PlaceResolver, lat, lng float64) (Resolution, error) {
	var res Resolution
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tt, err := tables.Timetable(gctx, lat, lng)
		if err != nil {
			return err
		}
		res.Timetable = tt
		return nil
	})

	if names != nil {
		g.Go(func() error {
			label, err := names.Reverse(gctx, lat, lng)
			if err != nil {
				slog.Debug("reverse geocode failed", "lat", lat, "lng", lng, "error", err)
				return nil
			}
			res.Label = label
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Resolution{}, err
	}
	return res, nil
}
