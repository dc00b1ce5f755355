package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/imsak/internal/ledger"
	"github.com/sadopc/imsak/internal/store"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportWeekly
)

// recentLimit is how many journal events the reports view lists.
const recentLimit = 8

type reportsModel struct {
	store  *store.Store
	zone   *time.Location
	now    func() time.Time
	width  int
	height int

	mode   reportMode
	totals []store.DailyTotal
	recent []store.LedgerEvent
	offset int // weeks or 7-day blocks back from today (0 = current)

	chart barchart.Model
}

func newReportsModel(s *store.Store, zone *time.Location, now func() time.Time) reportsModel {
	return reportsModel{
		store: s,
		zone:  zone,
		now:   now,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	totals []store.DailyTotal
	recent []store.LedgerEvent
}

func (r reportsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		from, to := r.dateRange()
		totals, _ := r.store.GetDailyTotals(from, to, r.zone)
		recent, _ := r.store.ListEvents(store.EventFilter{Limit: recentLimit})
		return reportsDataMsg{totals: totals, recent: recent}
	}
}

// dateRange returns [from, to) as local midnights in the display zone.
func (r reportsModel) dateRange() (time.Time, time.Time) {
	zone := r.zone
	if zone == nil {
		zone = time.Local
	}
	now := r.now().In(zone)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, zone)

	switch r.mode {
	case reportWeekly:
		// Weeks start on Monday
		weekday := today.Weekday()
		if weekday == time.Sunday {
			weekday = 7
		}
		start := today.AddDate(0, 0, -int(weekday-time.Monday)-7*r.offset)
		return start, start.AddDate(0, 0, 7)
	default:
		end := today.AddDate(0, 0, 1-7*r.offset)
		return end.AddDate(0, 0, -7), end
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.totals = msg.totals
		r.recent = msg.recent
		r.buildChart()
		return r, nil

	case ledgerChangedMsg:
		return r, r.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		case key.Matches(msg, keys.Mode):
			if r.mode == reportDaily {
				r.mode = reportWeekly
			} else {
				r.mode = reportDaily
			}
			r.offset = 0
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := max(r.width-8, 20)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}
	r.chart = barchart.New(chartWidth, chartHeight)

	from, to := r.dateRange()
	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		date := d.Format("2006-01-02")

		var values []barchart.BarValue
		for i, c := range ledger.Categories() {
			n := r.countOn(date, c)
			if n <= 0 {
				continue
			}
			values = append(values, barchart.BarValue{
				Name:  categoryNames[c],
				Value: float64(n),
				Style: lipgloss.NewStyle().Foreground(categoryColors[i]),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}
		bars = append(bars, barchart.BarData{Label: d.Format("Mon 02"), Values: values})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) countOn(date string, c ledger.Category) int {
	for _, t := range r.totals {
		if t.Date == date && t.Category == string(c) {
			return t.Count
		}
	}
	return 0
}

// periodTotal is the net amount made up in the displayed range.
func (r reportsModel) periodTotal() int {
	n := 0
	for _, t := range r.totals {
		n += t.Count
	}
	return n
}

func (r reportsModel) view() string {
	w := r.width - 4

	dailyTab := inactiveTabStyle.Render("Daily")
	weeklyTab := inactiveTabStyle.Render("Weekly")
	if r.mode == reportDaily {
		dailyTab = activeTabStyle.Render("Daily")
	} else {
		weeklyTab = activeTabStyle.Render("Weekly")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, weeklyTab)

	from, to := r.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s to %s", from.Format("Jan 02"), to.AddDate(0, 0, -1).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", dateLabel,
	)
	summary := accentStyle.Render(fmt.Sprintf("  %s made up this period", plural(r.periodTotal(), "prayer")))

	nav := mutedStyle.Render("  ←/→: navigate  w: daily/weekly")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", r.renderLegend(), summary, "", r.renderRecent(w), "", nav,
		),
	)
}

func (r reportsModel) renderLegend() string {
	items := make([]string, 0, len(ledger.Categories()))
	for i, c := range ledger.Categories() {
		dot := lipgloss.NewStyle().Foreground(categoryColors[i]).Render("●")
		items = append(items, dot+" "+categoryNames[c])
	}
	return "  " + strings.Join(items, "  ")
}

func (r reportsModel) renderRecent(w int) string {
	if len(r.recent) == 0 {
		return mutedStyle.Render("  No activity yet")
	}

	rows := []string{
		mutedStyle.Render(fmt.Sprintf("  %-17s %-8s %-7s %5s", "When", "Prayer", "Action", "Delta")),
		mutedStyle.Render("  " + strings.Repeat("─", min(w-6, 42))),
	}
	zone := r.zone
	if zone == nil {
		zone = time.Local
	}
	for _, e := range r.recent {
		rows = append(rows, fmt.Sprintf("  %-17s %-8s %-7s %+5d",
			e.At.In(zone).Format("Jan 02 15:04"), categoryName(e.Category), e.Action, e.Delta,
		))
	}
	return strings.Join(rows, "\n")
}
