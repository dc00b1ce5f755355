package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/imsak/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	theme       *string
	clockFormat *string
	showVerse   *bool
}

func newSettingsModel(s *store.Store) settingsModel {
	theme, clock, verse := "", "", true
	return settingsModel{
		store:       s,
		theme:       &theme,
		clockFormat: &clock,
		showVerse:   &verse,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

// current reads the stored preferences, falling back to defaults.
func (s settingsModel) current() settingsChangedMsg {
	return settingsChangedMsg{
		theme:       s.store.SettingOr(store.SettingTheme, "dark"),
		clockFormat: s.store.SettingOr(store.SettingClockFormat, "24h"),
		showVerse:   s.store.SettingOr(store.SettingShowVerse, "on") != "off",
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) {
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	cur := s.current()
	*s.theme = cur.theme
	*s.clockFormat = cur.clockFormat
	*s.showVerse = cur.showVerse

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Theme").
				Options(
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
				).Value(s.theme),
			huh.NewSelect[string]().Title("Clock").
				Options(
					huh.NewOption("24-hour", "24h"),
					huh.NewOption("12-hour", "12h"),
				).Value(s.clockFormat),
			huh.NewConfirm().Title("Show daily verse").
				Affirmative("Show").
				Negative("Hide").
				Value(s.showVerse),
		).Title("Display"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		s.formActive = false
		s.form = nil
		return s, nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, statusCmd(err.Error(), true)
		}
		changed := settingsChangedMsg{theme: *s.theme, clockFormat: *s.clockFormat, showVerse: *s.showVerse}
		return s, tea.Batch(s.refresh(), func() tea.Msg { return changed })
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	verse := "off"
	if *s.showVerse {
		verse = "on"
	}
	for k, v := range map[string]string{
		store.SettingTheme:       *s.theme,
		store.SettingClockFormat: *s.clockFormat,
		store.SettingShowVerse:   verse,
	} {
		if err := s.store.SetSetting(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(settingLabel(setting.Key))
		value := highlightStyle.Render(setting.Value)
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingLabel(k string) string {
	switch k {
	case store.SettingTheme:
		return "Theme"
	case store.SettingClockFormat:
		return "Clock format"
	case store.SettingShowVerse:
		return "Daily verse"
	}
	return k
}
