package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrBadClock is returned when a boundary string is not a 24-hour HH:MM time.
var ErrBadClock = errors.New("invalid clock time")

// Table holds one day's boundary clock-times as returned by the time-table
// provider, in 24-hour "HH:MM" form. PreDawn is informational and never a
// countdown target.
type Table struct {
	PreDawn   string
	Dawn      string
	Daybreak  string
	Midday    string
	Afternoon string
	Sunset    string
	Night     string
}

// Boundaries is a Table resolved against a calendar date.
type Boundaries struct {
	Dawn      time.Time
	Daybreak  time.Time
	Midday    time.Time
	Afternoon time.Time
	Sunset    time.Time
	Night     time.Time
}

// ParseClock parses "HH:MM" (or "H:MM"). Anything after the first space is
// ignored, since providers append zone abbreviations like "04:12 (EEST)".
func ParseClock(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 || !digits(hh) || !digits(mm) {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	hour, err = strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	minute, err = strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	return hour, minute, nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// At combines a clock string with the calendar date of day as seen in loc.
func At(clock string, day time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	h, m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	y, mo, d := day.In(loc).Date()
	return time.Date(y, mo, d, h, m, 0, 0, loc), nil
}

// On resolves every boundary of the table against the date of day in loc.
func (t Table) On(day time.Time, loc *time.Location) (Boundaries, error) {
	var b Boundaries
	fields := []struct {
		name  string
		clock string
		dst   *time.Time
	}{
		{"dawn", t.Dawn, &b.Dawn},
		{"daybreak", t.Daybreak, &b.Daybreak},
		{"midday", t.Midday, &b.Midday},
		{"afternoon", t.Afternoon, &b.Afternoon},
		{"sunset", t.Sunset, &b.Sunset},
		{"night", t.Night, &b.Night},
	}
	for _, f := range fields {
		at, err := At(f.clock, day, loc)
		if err != nil {
			return Boundaries{}, fmt.Errorf("%s boundary: %w", f.name, err)
		}
		*f.dst = at
	}
	return b, nil
}

// Entries lists the six boundaries in day order, for display.
func (t Table) Entries() []Entry {
	return []Entry{
		{Interval: Dawn, Clock: t.Dawn},
		{Interval: Daybreak, Clock: t.Daybreak},
		{Interval: Midday, Clock: t.Midday},
		{Interval: Afternoon, Clock: t.Afternoon},
		{Interval: Sunset, Clock: t.Sunset},
		{Interval: Night, Clock: t.Night},
	}
}

// Entry pairs a boundary clock-time with the interval it starts.
type Entry struct {
	Interval Interval
	Clock    string
}
