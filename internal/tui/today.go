package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/imsak/internal/location"
	"github.com/sadopc/imsak/internal/provider"
	"github.com/sadopc/imsak/internal/quotes"
	"github.com/sadopc/imsak/internal/schedule"
)

// requestTimeout bounds one locate/geocode/fetch round trip.
const requestTimeout = 30 * time.Second

type todayModel struct {
	places *location.Cache
	tables provider.TimetableSource
	names  provider.PlaceResolver
	sensor provider.Sensor
	fence  *provider.Fence
	zone   *time.Location // fixed zone from config, nil to follow the time table
	now    func() time.Time
	width  int
	height int

	locating    bool
	loading     bool
	sensorErr   *provider.SensorError
	fetchErr    error
	timetable   *provider.Timetable
	fetchedDay  string // local date the time table is for
	triedDay    string // local date of the last automatic refetch
	clockFormat string
	showVerse   bool

	form locationFormModel

	// Derived every tick
	current     time.Time
	interval    schedule.Interval
	target      schedule.Target
	countdown   schedule.Countdown
	scheduleErr error
}

func newTodayModel(d Deps) todayModel {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	sensor := d.Sensor
	if sensor == nil {
		sensor = provider.NoSensor{}
	}
	return todayModel{
		places:      d.Places,
		tables:      d.Timetables,
		names:       d.Names,
		sensor:      sensor,
		fence:       &provider.Fence{},
		zone:        d.Zone,
		now:         now,
		clockFormat: "24h",
		showVerse:   true,
		form:        newLocationFormModel(),
		current:     now(),
	}
}

func (t *todayModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

// Init loads the cached location and either fetches its time table or asks
// the sensor for a position.
func (t todayModel) Init() (todayModel, tea.Cmd) {
	if loc, ok := t.places.Load(); ok {
		return t.fetch(loc.Latitude, loc.Longitude, false)
	}
	return t.locate()
}

// location returns the zone boundaries are interpreted in.
func (t todayModel) location() *time.Location {
	if t.zone != nil {
		return t.zone
	}
	if t.timetable != nil {
		if loc := t.timetable.Location(); loc != nil {
			return loc
		}
	}
	return time.Local
}

func (t todayModel) locate() (todayModel, tea.Cmd) {
	t.locating = true
	t.sensorErr = nil
	ticket := t.fence.Issue()
	sensor := t.sensor
	return t, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		lat, lng, err := sensor.Locate(ctx)
		return locatedMsg{ticket: ticket, lat: lat, lng: lng, err: err}
	}
}

func (t todayModel) fetch(lat, lng float64, fromSensor bool) (todayModel, tea.Cmd) {
	t.loading = true
	t.fetchErr = nil
	ticket := t.fence.Issue()
	tables := t.tables
	var names provider.PlaceResolver
	if fromSensor {
		names = t.names
	}
	return t, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := provider.Resolve(ctx, tables, names, lat, lng)
		return resolvedMsg{ticket: ticket, lat: lat, lng: lng, fromSensor: fromSensor, res: res, err: err}
	}
}

func (t todayModel) geocode(place, region string) (todayModel, tea.Cmd) {
	if t.names == nil {
		return t, statusCmd("City lookup is not configured, enter coordinates instead", true)
	}
	t.loading = true
	t.fetchErr = nil
	ticket := t.fence.Issue()
	names := t.names
	return t, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		found, err := names.Search(ctx, place, region)
		return geocodedMsg{ticket: ticket, place: place, region: region, found: found, err: err}
	}
}

func (t todayModel) formActive() bool { return t.form.active }

func (t todayModel) update(msg tea.Msg) (todayModel, tea.Cmd) {
	switch msg.(type) {
	case tickMsg, locatedMsg, resolvedMsg, geocodedMsg, settingsChangedMsg:
	default:
		if t.form.active {
			return t.updateForm(msg)
		}
	}

	switch msg := msg.(type) {
	case tickMsg:
		t.recompute(time.Time(msg))
		// A new local day needs a new table. One automatic attempt per day;
		// after a failure only r fetches again.
		day := t.current.In(t.location()).Format("2006-01-02")
		if t.timetable != nil && !t.loading && day != t.fetchedDay && day != t.triedDay {
			if loc, ok := t.places.Current(); ok {
				t.triedDay = day
				return t.fetch(loc.Latitude, loc.Longitude, false)
			}
		}
		return t, nil

	case locatedMsg:
		if !t.fence.Current(msg.ticket) {
			return t, nil
		}
		t.locating = false
		if msg.err != nil {
			var se *provider.SensorError
			if !errors.As(msg.err, &se) {
				se = &provider.SensorError{Kind: provider.PositionUnavailable, Err: msg.err}
			}
			t.sensorErr = se
			t.places.EnterManualMode()
			slog.Info("location sensor failed", "kind", se.Kind.String(), "error", msg.err)
			return t, nil
		}
		return t.fetch(msg.lat, msg.lng, true)

	case resolvedMsg:
		if !t.fence.Current(msg.ticket) {
			slog.Debug("dropping stale time table", "ticket", msg.ticket)
			return t, nil
		}
		t.loading = false
		if msg.err != nil {
			t.fetchErr = msg.err
			slog.Warn("time table fetch failed", "error", msg.err)
			if t.timetable != nil {
				return t, statusCmd("Could not refresh prayer times: "+msg.err.Error(), true)
			}
			return t, nil
		}
		if msg.fromSensor {
			t.places.SaveSensor(msg.lat, msg.lng, msg.res.Label)
		}
		tt := msg.res.Timetable
		t.timetable = &tt
		t.sensorErr = nil
		t.recompute(t.now())
		t.fetchedDay = t.current.In(t.location()).Format("2006-01-02")
		return t, nil

	case geocodedMsg:
		if !t.fence.Current(msg.ticket) {
			return t, nil
		}
		t.loading = false
		if msg.err != nil {
			text := fmt.Sprintf("Could not look up %q: %v", msg.place, msg.err)
			if errors.Is(msg.err, provider.ErrNotFound) {
				text = fmt.Sprintf("Location %q not found. Check the spelling or use coordinates.", msg.place)
			}
			return t, statusCmd(text, true)
		}
		loc, err := t.places.SaveGeocoded(msg.place, msg.region, msg.found.Latitude, msg.found.Longitude)
		if err != nil {
			return t, statusCmd(err.Error(), true)
		}
		t.sensorErr = nil
		var cmd tea.Cmd
		t, cmd = t.fetch(loc.Latitude, loc.Longitude, false)
		return t, tea.Batch(cmd, statusCmd("Location set to "+loc.Name, false))

	case settingsChangedMsg:
		t.clockFormat = msg.clockFormat
		t.showVerse = msg.showVerse
		return t, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Manual):
			var cmd tea.Cmd
			t.form, cmd = t.form.open()
			return t, cmd
		case key.Matches(msg, keys.Retry):
			if loc, ok := t.places.Current(); ok {
				return t.fetch(loc.Latitude, loc.Longitude, false)
			}
			return t.locate()
		case key.Matches(msg, keys.Forget):
			t.places.Clear()
			t.timetable = nil
			t.fetchErr = nil
			t.loading = false
			t.locating = false
			t.fence.Issue() // anything in flight is now stale
			return t, statusCmd("Location forgotten", false)
		}
	}
	return t, nil
}

func (t todayModel) updateForm(msg tea.Msg) (todayModel, tea.Cmd) {
	form, cmd, done := t.form.update(msg)
	t.form = form
	if !done {
		return t, cmd
	}

	e := t.form.entry()
	if e.mode == entryCity {
		if e.city == "" {
			return t, statusCmd(location.ErrPlaceRequired.Error(), true)
		}
		return t.geocode(e.city, e.country)
	}

	loc, err := t.places.SaveManual(e.lat, e.lng, e.name)
	if err != nil {
		return t, statusCmd(err.Error(), true)
	}
	t.sensorErr = nil
	t, cmd = t.fetch(loc.Latitude, loc.Longitude, false)
	return t, tea.Batch(cmd, statusCmd("Location set to "+loc.Name, false))
}

// recompute derives the interval and countdown for now.
func (t *todayModel) recompute(now time.Time) {
	t.current = now
	if t.timetable == nil {
		return
	}
	zone := t.location()
	table := t.timetable.Table

	interval, err := schedule.Classify(table, now, zone)
	if err != nil {
		t.interval = schedule.Unknown
		t.target = schedule.Target{}
		t.countdown = schedule.Countdown{}
		t.scheduleErr = err
		return
	}
	target, err := schedule.NextTarget(table, now, zone)
	if err != nil {
		t.interval = schedule.Unknown
		t.target = schedule.Target{}
		t.countdown = schedule.Countdown{}
		t.scheduleErr = err
		return
	}
	t.interval = interval
	t.target = target
	t.countdown = schedule.Remaining(target.At, now)
	t.scheduleErr = nil
}

func (t todayModel) view() string {
	if t.width < 20 {
		return "Terminal too small"
	}
	w := t.width - 4

	if t.form.active {
		return t.form.view(w)
	}

	switch {
	case t.locating:
		return panelStyle.Width(w).Render(mutedStyle.Render("Locating…"))
	case t.timetable == nil && t.loading:
		return panelStyle.Width(w).Render(mutedStyle.Render("Fetching prayer times…"))
	case t.timetable == nil && t.fetchErr != nil:
		return t.renderError(w, "Failed to fetch prayer times.", t.fetchErr.Error())
	case t.sensorErr != nil:
		return t.renderError(w, t.sensorErr.Hint(), t.sensorErr.Error())
	case t.timetable == nil:
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("No location set"),
			"",
			mutedStyle.Render("Press m to enter your city or coordinates, or r to detect it."),
		))
	}

	panels := []string{
		t.renderHeader(w),
		t.renderCountdown(w),
		t.renderBoundaries(w),
	}
	if t.showVerse {
		panels = append(panels, t.renderVerse(w))
	}
	return lipgloss.JoinVertical(lipgloss.Left, panels...)
}

func (t todayModel) renderError(w int, headline, detail string) string {
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		errorStyle.Render(headline),
		mutedStyle.Render(detail),
		"",
		mutedStyle.Render("r: retry  m: enter location manually"),
	))
}

func (t todayModel) renderHeader(w int) string {
	name := "Unknown location"
	if loc, ok := t.places.Current(); ok {
		name = loc.Name
	}
	parts := []string{highlightStyle.Render(name)}
	if t.timetable.Gregorian != "" {
		parts = append(parts, mutedStyle.Render(t.timetable.Gregorian))
	}
	if t.timetable.Hijri != "" {
		parts = append(parts, accentStyle.Render(t.timetable.Hijri))
	}
	if t.loading {
		parts = append(parts, mutedStyle.Render("refreshing…"))
	} else if t.fetchErr != nil {
		parts = append(parts, errorStyle.Render("times from "+t.fetchedDay+", refresh failed (r to retry)"))
	}
	return headerStyle.Width(w).Render(strings.Join(parts, mutedStyle.Render("  ·  ")))
}

func (t todayModel) renderCountdown(w int) string {
	if t.scheduleErr != nil {
		content := lipgloss.JoinVertical(lipgloss.Center,
			countdownStyle.Width(w-6).Render("--:--:--"),
			errorStyle.Render(t.scheduleErr.Error()),
		)
		return panelStyle.Width(w).Render(content)
	}

	heading := mutedStyle.Render(t.target.Kind.Label())
	clock := countdownStyle.Width(w - 6).Render(t.countdown.String())
	label := highlightStyle.Render(t.targetLabel())

	content := lipgloss.JoinVertical(lipgloss.Center, heading, clock, label)
	return activePanelStyle.Width(w).Render(content)
}

func (t todayModel) targetLabel() string {
	at := formatClock(t.target.Clock, t.clockFormat)
	if t.target.Kind == schedule.SunsetApproach {
		return "Iftar at " + at
	}
	return "Sahur ends at " + at
}

func (t todayModel) renderBoundaries(w int) string {
	table := t.timetable.Table
	var rows []string
	rows = append(rows, titleStyle.Render("Prayer Times"))
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-10s %s", "Imsak", formatClock(table.PreDawn, t.clockFormat))))
	for _, e := range table.Entries() {
		line := fmt.Sprintf("  %-10s %s", boundaryNames[e.Interval], formatClock(e.Clock, t.clockFormat))
		if e.Interval == t.interval {
			rows = append(rows, activeRowStyle.Render("▸"+line[1:]))
			continue
		}
		rows = append(rows, normalItemStyle.Render(line))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (t todayModel) renderVerse(w int) string {
	q := quotes.ForDay(t.current.In(t.location()))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		subtitleStyle.Italic(true).Render("“"+q.Text+"”"),
		mutedStyle.Render(q.Source),
	))
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}
