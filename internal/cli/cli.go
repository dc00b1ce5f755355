// Package cli defines imsak's command line: the interactive dashboard plus
// scriptable status, ledger, location and export commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/sadopc/imsak/internal/config"
	"github.com/sadopc/imsak/internal/ledger"
	"github.com/sadopc/imsak/internal/location"
	"github.com/sadopc/imsak/internal/provider"
	"github.com/sadopc/imsak/internal/store"
)

// CLI holds the global flags and the command tree.
type CLI struct {
	Config  string `short:"c" help:"Configuration file path (default ~/.config/imsak/config.yaml)" type:"path"`
	DB      string `help:"Database path, overrides the config file" type:"path"`
	TZ      string `name:"tz" help:"IANA time zone boundaries are read in, e.g. Europe/Istanbul"`
	Theme   string `help:"Color theme (dark or light)"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Run      RunCmd      `cmd:"" default:"1" help:"Open the interactive dashboard"`
	Status   StatusCmd   `cmd:"" help:"Print today's times and the current countdown"`
	Ledger   LedgerCmd   `cmd:"" help:"Show or change the make-up counters"`
	Location LocationCmd `cmd:"" help:"Show, set or forget the saved location"`
	Export   ExportCmd   `cmd:"" help:"Export counters and history to CSV or JSON"`

	out io.Writer

	// Overrides used instead of the configured services when set.
	tables provider.TimetableSource
	names  provider.PlaceResolver
	sensor provider.Sensor
	now    func() time.Time
}

// AfterApply sets up stderr logging once flags are parsed.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// Execute parses args and runs the selected command.
func Execute(args []string, out io.Writer) error {
	return (&CLI{out: out}).execute(args)
}

func (c *CLI) execute(args []string) error {
	parser, err := kong.New(c,
		kong.Name("imsak"),
		kong.Description("Daily prayer countdown and qada tracker."),
		kong.UsageOnError(),
		kong.Writers(c.out, os.Stderr),
	)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return ctx.Run(c)
}

func (c *CLI) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

// env is the opened application state shared by commands.
type env struct {
	cfg    *config.Config
	store  *store.Store
	ledger *ledger.Ledger
	places *location.Cache
	zone   *time.Location // nil follows the time table's zone
	tables provider.TimetableSource
	names  provider.PlaceResolver
	sensor provider.Sensor
}

// open loads the configuration, applies flag overrides and opens storage.
func (c *CLI) open() (*env, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	cfg.Override(c.DB, c.TZ, c.Theme)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var zone *time.Location
	if cfg.Timezone != "" {
		if zone, err = cfg.Location(); err != nil {
			return nil, err
		}
	}

	dbPath, err := cfg.ResolvedDBPath()
	if err != nil {
		return nil, err
	}
	s, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.Theme != "" {
		if err := s.SetSetting(store.SettingTheme, cfg.Theme); err != nil {
			s.Close()
			return nil, err
		}
	}

	e := &env{
		cfg:    cfg,
		store:  s,
		ledger: ledger.Open(s, ledger.WithJournal(s), ledger.WithClock(c.clock)),
		places: location.New(s, location.WithClock(c.clock)),
		zone:   zone,
		tables: c.tables,
		names:  c.names,
		sensor: c.sensor,
	}
	if e.tables == nil {
		e.tables = provider.NewTimetableClient(cfg.Timetable.BaseURL, cfg.Timetable.Method, cfg.Timetable.Tune, cfg.Timetable.Timeout)
	}
	if e.names == nil {
		e.names = provider.NewGeocoder(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout)
	}
	if e.sensor == nil {
		sensor, err := provider.NewSensor(cfg.Sensor.Kind, cfg.Sensor.BaseURL, cfg.Sensor.Timeout)
		if err != nil {
			s.Close()
			return nil, err
		}
		e.sensor = sensor
	}
	slog.Debug("opened", "db", dbPath, "timezone", cfg.Timezone, "sensor", cfg.Sensor.Kind)
	return e, nil
}

func (e *env) Close() error { return e.store.Close() }
