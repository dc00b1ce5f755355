package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/imsak/internal/export"
	"github.com/sadopc/imsak/internal/ledger"
	"github.com/sadopc/imsak/internal/location"
	"github.com/sadopc/imsak/internal/provider"
	"github.com/sadopc/imsak/internal/schedule"
	"github.com/sadopc/imsak/internal/store"
	"github.com/sadopc/imsak/internal/tui"
)

// lookupTimeout bounds one network round trip from a command.
const lookupTimeout = 30 * time.Second

// RunCmd opens the dashboard.
type RunCmd struct{}

func (cmd *RunCmd) Run(c *CLI) error {
	e, err := c.open()
	if err != nil {
		return err
	}
	defer e.Close()

	// The dashboard owns the terminal, so logs go to a file.
	logPath, err := e.cfg.ResolvedLogPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level})))

	app := tui.NewApp(tui.Deps{
		Store:      e.store,
		Ledger:     e.ledger,
		Places:     e.places,
		Timetables: e.tables,
		Names:      e.names,
		Sensor:     e.sensor,
		Zone:       e.zone,
		Now:        c.now,
	})
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}

// StatusCmd prints the day's boundaries and the countdown once.
type StatusCmd struct{}

func (cmd *StatusCmd) Run(c *CLI) error {
	e, err := c.open()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	loc, res, err := e.resolve(ctx)
	if err != nil {
		return err
	}

	tt := res.Timetable
	zone := e.zone
	if zone == nil {
		zone = tt.Location()
	}
	if zone == nil {
		zone = time.Local
	}
	now := c.clock()

	interval, err := schedule.Classify(tt.Table, now, zone)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}
	target, err := schedule.NextTarget(tt.Table, now, zone)
	if err != nil {
		return fmt.Errorf("next target: %w", err)
	}

	fmt.Fprintln(c.out, loc.Name)
	var dates []string
	for _, d := range []string{tt.Gregorian, tt.Hijri} {
		if d != "" {
			dates = append(dates, d)
		}
	}
	if len(dates) > 0 {
		fmt.Fprintln(c.out, strings.Join(dates, " · "))
	}
	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "  %-9s %s\n", "Imsak", tt.Table.PreDawn)
	for _, entry := range tt.Table.Entries() {
		marker := " "
		if entry.Interval == interval {
			marker = ">"
		}
		fmt.Fprintf(c.out, "%s %-9s %s\n", marker, boundaryName(entry.Interval), entry.Clock)
	}
	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "%s %s (%s)\n", target.Kind.Label(), schedule.Remaining(target.At, now), target.Label())
	return nil
}

// resolve returns the saved location and its time table, detecting and
// saving the position first when nothing is saved.
func (e *env) resolve(ctx context.Context) (location.Location, provider.Resolution, error) {
	if loc, ok := e.places.Load(); ok {
		res, err := provider.Resolve(ctx, e.tables, nil, loc.Latitude, loc.Longitude)
		return loc, res, err
	}

	lat, lng, err := e.sensor.Locate(ctx)
	if err != nil {
		var se *provider.SensorError
		if errors.As(err, &se) {
			return location.Location{}, provider.Resolution{}, fmt.Errorf("%s (%w)", se.Hint(), err)
		}
		return location.Location{}, provider.Resolution{}, err
	}
	res, err := provider.Resolve(ctx, e.tables, e.names, lat, lng)
	if err != nil {
		return location.Location{}, provider.Resolution{}, err
	}
	return e.places.SaveSensor(lat, lng, res.Label), res, nil
}

func boundaryName(i schedule.Interval) string {
	switch i {
	case schedule.Dawn:
		return "Fajr"
	case schedule.Daybreak:
		return "Sunrise"
	case schedule.Midday:
		return "Dhuhr"
	case schedule.Afternoon:
		return "Asr"
	case schedule.Sunset:
		return "Maghrib"
	case schedule.Night:
		return "Isha"
	}
	return i.String()
}

// LedgerCmd groups the counter commands.
type LedgerCmd struct {
	Show   LedgerShowCmd   `cmd:"" default:"1" help:"Print every counter and the total"`
	Add    LedgerAddCmd    `cmd:"" help:"Record made-up prayers"`
	Remove LedgerRemoveCmd `cmd:"" help:"Undo recorded prayers, never going below zero"`
	Reset  LedgerResetCmd  `cmd:"" help:"Zero every counter"`
}

type LedgerShowCmd struct{}

func (cmd *LedgerShowCmd) Run(c *CLI) error {
	e, err := c.open()
	if err != nil {
		return err
	}
	defer e.Close()
	printCounts(c, e.ledger)
	return nil
}

type LedgerAddCmd struct {
	Category string `arg:"" help:"One of fajr, dhuhr, asr, maghrib, isha, witr"`
	Count    int    `short:"n" default:"1" help:"How many to add"`
}

func (cmd *LedgerAddCmd) Run(c *CLI) error {
	return c.mutate(cmd.Category, cmd.Count, (*ledger.Ledger).Increment)
}

type LedgerRemoveCmd struct {
	Category string `arg:"" help:"One of fajr, dhuhr, asr, maghrib, isha, witr"`
	Count    int    `short:"n" default:"1" help:"How many to remove"`
}

func (cmd *LedgerRemoveCmd) Run(c *CLI) error {
	return c.mutate(cmd.Category, cmd.Count, (*ledger.Ledger).Decrement)
}

func (c *CLI) mutate(name string, n int, step func(*ledger.Ledger, ledger.Category) error) error {
	if n < 1 {
		return fmt.Errorf("count must be at least 1, got %d", n)
	}
	cat, err := ledger.ParseCategory(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return err
	}
	e, err := c.open()
	if err != nil {
		return err
	}
	defer e.Close()

	for range n {
		if err := step(e.ledger, cat); err != nil {
			return err
		}
	}
	fmt.Fprintf(c.out, "%s: %d\n", cat, e.ledger.Count(cat))
	return nil
}

type LedgerResetCmd struct {
	Yes bool `short:"y" help:"Confirm the reset"`
}

func (cmd *LedgerResetCmd) Run(c *CLI) error {
	if !cmd.Yes {
		return errors.New("refusing to reset every counter without --yes")
	}
	e, err := c.open()
	if err != nil {
		return err
	}
	defer e.Close()
	e.ledger.ResetAll()
	printCounts(c, e.ledger)
	return nil
}

func printCounts(c *CLI, l *ledger.Ledger) {
	for _, cat := range ledger.Categories() {
		fmt.Fprintf(c.out, "%-8s %d\n", cat, l.Count(cat))
	}
	fmt.Fprintf(c.out, "%-8s %d\n", "total", l.Total())
}

// LocationCmd groups the saved-location commands.
type LocationCmd struct {
	Show   LocationShowCmd   `cmd:"" default:"1" help:"Print the saved location"`
	Coords LocationCoordsCmd `cmd:"" help:"Save a position given in decimal degrees"`
	City   LocationCityCmd   `cmd:"" help:"Look up a city and save its position"`
	Forget LocationForgetCmd `cmd:"" help:"Forget the saved location"`
}

type LocationShowCmd struct{}

func (cmd *LocationShowCmd) Run(c *CLI) error {
	e, err := c.open()
	if err != nil {
		return err
	}
	defer e.Close()

	loc, ok := e.places.Load()
	if !ok {
		fmt.Fprintln(c.out, "No location saved.")
		return nil
	}
	printLocation(c, loc)
	return nil
}

type LocationCoordsCmd struct {
	Latitude  string `arg:"" help:"Latitude between -90 and 90"`
	Longitude string `arg:"" help:"Longitude between -180 and 180"`
	Name      string `help:"Display name (defaults to the coordinates)"`
}

func (cmd *LocationCoordsCmd) Run(c *CLI) error {
	e, err := c.open()
	if err != nil {
		return err
	}
	defer e.Close()

	loc, err := e.places.SaveManual(cmd.Latitude, cmd.Longitude, cmd.Name)
	if err != nil {
		return err
	}
	printLocation(c, loc)
	return nil
}

type LocationCityCmd struct {
	City    string `arg:"" help:"City name"`
	Country string `arg:"" optional:"" help:"Country or region to narrow the search"`
}

func (cmd *LocationCityCmd) Run(c *CLI) error {
	e, err := c.open()
	if err != nil {
		return err
	}
	defer e.Close()

	city := strings.TrimSpace(cmd.City)
	if city == "" {
		return location.ErrPlaceRequired
	}
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	found, err := e.names.Search(ctx, city, cmd.Country)
	if err != nil {
		return fmt.Errorf("look up %q: %w", city, err)
	}
	loc, err := e.places.SaveGeocoded(city, cmd.Country, found.Latitude, found.Longitude)
	if err != nil {
		return err
	}
	printLocation(c, loc)
	return nil
}

type LocationForgetCmd struct{}

func (cmd *LocationForgetCmd) Run(c *CLI) error {
	e, err := c.open()
	if err != nil {
		return err
	}
	defer e.Close()
	e.places.Clear()
	fmt.Fprintln(c.out, "Location forgotten.")
	return nil
}

func printLocation(c *CLI, loc location.Location) {
	fmt.Fprintf(c.out, "%s (%.4f, %.4f)\n", loc.Name, loc.Latitude, loc.Longitude)
}

// ExportCmd writes the counters and the event history to a file.
type ExportCmd struct {
	Format string `short:"f" default:"csv" enum:"csv,json" help:"Output format: csv or json"`
	Out    string `short:"o" type:"path" help:"Output file (default ./imsak-export-DATE.FORMAT)"`
}

func (cmd *ExportCmd) Run(c *CLI) error {
	e, err := c.open()
	if err != nil {
		return err
	}
	defer e.Close()

	events, err := e.store.ListEvents(store.EventFilter{})
	if err != nil {
		return err
	}
	path := cmd.Out
	if path == "" {
		path = fmt.Sprintf("imsak-export-%s.%s", c.clock().Format("2006-01-02"), cmd.Format)
	}
	if err := export.Write(cmd.Format, e.ledger.Counts(), events, path); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Exported %d events to %s\n", len(events), path)
	return nil
}
