package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/imsak/internal/export"
	"github.com/sadopc/imsak/internal/ledger"
	"github.com/sadopc/imsak/internal/location"
	"github.com/sadopc/imsak/internal/provider"
	"github.com/sadopc/imsak/internal/store"
)

// Deps is everything the TUI talks to.
type Deps struct {
	Store      *store.Store
	Ledger     *ledger.Ledger
	Places     *location.Cache
	Timetables provider.TimetableSource
	Names      provider.PlaceResolver
	Sensor     provider.Sensor

	// Zone pins boundary interpretation to one time zone. When nil the
	// time table's own zone is used, then the local one.
	Zone *time.Location
	Now  func() time.Time

	// ExportDir is where exports are written. Defaults to the home directory.
	ExportDir string
}

var exportFormats = []string{"csv", "json"}

// App is the root Bubble Tea model.
type App struct {
	store     *store.Store
	ledger    *ledger.Ledger
	exportDir string
	now       func() time.Time
	width     int
	height    int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	today    todayModel
	tracker  trackerModel
	reports  reportsModel
	settings settingsModel

	help        help.Model
	status      string
	statusError bool

	startup tea.Cmd
}

func NewApp(d Deps) App {
	h := help.New()
	h.ShowAll = false

	if d.Now == nil {
		d.Now = time.Now
	}
	a := App{
		store:      d.Store,
		ledger:     d.Ledger,
		exportDir:  d.ExportDir,
		now:        d.Now,
		activeView: viewToday,
		today:      newTodayModel(d),
		tracker:    newTrackerModel(d.Ledger),
		settings:   newSettingsModel(d.Store),
		help:       h,
	}
	prefs := a.settings.current()
	applyTheme(prefs.theme)
	a.today.clockFormat = prefs.clockFormat
	a.today.showVerse = prefs.showVerse

	a.today, a.startup = a.today.Init()
	a.reports = newReportsModel(d.Store, a.today.location(), d.Now)
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.startup, tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	a.reports.zone = a.today.location()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.today.setSize(a.width, contentHeight)
		a.tracker.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewToday
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewTracker
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// The countdown runs whatever view is showing.
		var cmd tea.Cmd
		a.today, cmd = a.today.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case locatedMsg, resolvedMsg, geocodedMsg:
		var cmd tea.Cmd
		a.today, cmd = a.today.update(msg)
		return a, cmd

	case ledgerChangedMsg:
		if a.activeView == viewReports {
			var cmd tea.Cmd
			a.reports, cmd = a.reports.update(msg)
			return a, cmd
		}
		return a, nil

	case settingsChangedMsg:
		applyTheme(msg.theme)
		a.today, _ = a.today.update(msg)
		a.status = "Settings saved"
		a.statusError = false
		return a, nil

	case statusMsg:
		a.status = msg.text
		a.statusError = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusError = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewToday:
		a.today, cmd = a.today.update(msg)
	case viewTracker:
		a.tracker, cmd = a.tracker.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewToday:
		return a.today.formActive()
	case viewTracker:
		return a.tracker.confirming
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewReports:
		return a.reports.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewToday:
		content = a.today.view()
	case viewTracker:
		content = a.tracker.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("imsak")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Countdown stays visible from every view
	countdown := ""
	if a.activeView != viewToday && a.today.timetable != nil && a.today.scheduleErr == nil {
		countdown = successStyle.Render(" ● " + a.today.target.Kind.Label() + " " + a.today.countdown.String())
	}

	left := footerStyle.Render(helpView)
	right := countdown + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export Format"))
	rows = append(rows, "")
	for i, f := range []string{"CSV", "JSON"} {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format string) tea.Cmd {
	dir := a.exportDir
	date := a.now().Format("2006-01-02")
	counts := a.ledger.Counts()
	st := a.store
	return func() tea.Msg {
		events, err := st.ListEvents(store.EventFilter{})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		if dir == "" {
			dir, _ = os.UserHomeDir()
		}
		path := filepath.Join(dir, fmt.Sprintf("imsak-export-%s.%s", date, format))
		if err := export.Write(format, counts, events, path); err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
