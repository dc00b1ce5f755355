package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/imsak/internal/ledger"
	"github.com/sadopc/imsak/internal/provider"
	"github.com/sadopc/imsak/internal/schedule"
)

// viewState represents the currently active view.
type viewState int

const (
	viewToday viewState = iota
	viewTracker
	viewReports
	viewSettings
)

var viewNames = []string{"Today", "Tracker", "Reports", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// locatedMsg carries a sensor reading.
type locatedMsg struct {
	ticket provider.Ticket
	lat    float64
	lng    float64
	err    error
}

// resolvedMsg carries a fetched time table for a position. fromSensor marks
// positions that still have to be saved to the location cache.
type resolvedMsg struct {
	ticket     provider.Ticket
	lat        float64
	lng        float64
	fromSensor bool
	res        provider.Resolution
	err        error
}

// geocodedMsg carries the coordinates found for a typed place name.
type geocodedMsg struct {
	ticket provider.Ticket
	place  string
	region string
	found  provider.Place
	err    error
}

type ledgerChangedMsg struct{}

type settingsChangedMsg struct {
	theme       string
	clockFormat string
	showVerse   bool
}

// --- Helpers ---

// boundaryNames are the prayer names shown for each interval.
var boundaryNames = map[schedule.Interval]string{
	schedule.Dawn:      "Fajr",
	schedule.Daybreak:  "Sunrise",
	schedule.Midday:    "Dhuhr",
	schedule.Afternoon: "Asr",
	schedule.Sunset:    "Maghrib",
	schedule.Night:     "Isha",
}

var categoryNames = map[ledger.Category]string{
	ledger.Fajr:    "Fajr",
	ledger.Dhuhr:   "Dhuhr",
	ledger.Asr:     "Asr",
	ledger.Maghrib: "Maghrib",
	ledger.Isha:    "Isha",
	ledger.Witr:    "Witr",
}

func categoryName(c string) string {
	if n, ok := categoryNames[ledger.Category(c)]; ok {
		return n
	}
	if c == "" {
		return "All"
	}
	return c
}

// formatClock renders an "HH:MM" boundary in the chosen clock format.
// Unparseable input is shown as is.
func formatClock(clock, format string) string {
	h, m, err := schedule.ParseClock(clock)
	if err != nil {
		return clock
	}
	if format != "12h" {
		return fmt.Sprintf("%02d:%02d", h, m)
	}
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, suffix)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
