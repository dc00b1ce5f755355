// Package schedule classifies an instant against a day's boundary table and
// picks the next countdown target. Everything here is a pure function of
// (table, instant, location); nothing is cached between calls.
package schedule

import (
	"fmt"
	"time"
)

// Interval is the active part of the day.
type Interval int

const (
	Unknown Interval = iota
	Dawn
	Daybreak
	Midday
	Afternoon
	Sunset
	Night
)

var intervalNames = map[Interval]string{
	Unknown:   "unknown",
	Dawn:      "dawn",
	Daybreak:  "daybreak",
	Midday:    "midday",
	Afternoon: "afternoon",
	Sunset:    "sunset",
	Night:     "night",
}

func (i Interval) String() string {
	if name, ok := intervalNames[i]; ok {
		return name
	}
	return fmt.Sprintf("interval(%d)", int(i))
}

// Kind names the boundary being counted down to.
type Kind int

const (
	DawnApproach Kind = iota
	SunsetApproach
)

func (k Kind) String() string {
	switch k {
	case DawnApproach:
		return "dawn-approach"
	case SunsetApproach:
		return "sunset-approach"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Label is the countdown heading shown above the clock.
func (k Kind) Label() string {
	if k == SunsetApproach {
		return "Iftar in"
	}
	return "Sahur ends in"
}

// Target is the next boundary to count down to.
type Target struct {
	At    time.Time
	Kind  Kind
	Clock string // boundary string the target was built from
}

// Label describes the target, e.g. "Iftar at 18:20".
func (t Target) Label() string {
	if t.Kind == SunsetApproach {
		return "Iftar at " + t.Clock
	}
	return "Sahur ends at " + t.Clock
}

// Classify reports which interval contains now. Lower bounds are inclusive
// and upper bounds exclusive, so an instant equal to a boundary belongs to
// the interval that boundary starts. Anything at or after night, or before
// dawn, is Night.
func Classify(t Table, now time.Time, loc *time.Location) (Interval, error) {
	b, err := t.On(now, loc)
	if err != nil {
		return Unknown, err
	}
	in := func(from, to time.Time) bool {
		return !now.Before(from) && now.Before(to)
	}
	switch {
	case in(b.Dawn, b.Daybreak):
		return Dawn, nil
	case in(b.Daybreak, b.Midday):
		return Daybreak, nil
	case in(b.Midday, b.Afternoon):
		return Midday, nil
	case in(b.Afternoon, b.Sunset):
		return Afternoon, nil
	case in(b.Sunset, b.Night):
		return Sunset, nil
	default:
		// now >= night or now < dawn. Any table walks from dawn to night,
		// so an instant in between always hits one of the cases above.
		return Night, nil
	}
}

// NextTarget picks the boundary to count down to: today's dawn before it,
// today's sunset between dawn and sunset, and tomorrow's dawn after sunset.
func NextTarget(t Table, now time.Time, loc *time.Location) (Target, error) {
	dawn, err := At(t.Dawn, now, loc)
	if err != nil {
		return Target{}, fmt.Errorf("dawn boundary: %w", err)
	}
	sunset, err := At(t.Sunset, now, loc)
	if err != nil {
		return Target{}, fmt.Errorf("sunset boundary: %w", err)
	}

	switch {
	case now.Before(dawn):
		return Target{At: dawn, Kind: DawnApproach, Clock: clockText(t.Dawn)}, nil
	case now.Before(sunset):
		return Target{At: sunset, Kind: SunsetApproach, Clock: clockText(t.Sunset)}, nil
	}

	if loc == nil {
		loc = time.Local
	}
	// Advance the calendar date rather than adding 24h so DST days stay correct.
	y, m, d := now.In(loc).Date()
	tomorrow := time.Date(y, m, d+1, 12, 0, 0, 0, loc)
	next, err := At(t.Dawn, tomorrow, loc)
	if err != nil {
		return Target{}, fmt.Errorf("dawn boundary: %w", err)
	}
	return Target{At: next, Kind: DawnApproach, Clock: clockText(t.Dawn)}, nil
}

func clockText(s string) string {
	h, m, err := ParseClock(s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}
