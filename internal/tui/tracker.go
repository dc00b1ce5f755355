package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/imsak/internal/ledger"
)

type trackerModel struct {
	ledger *ledger.Ledger
	width  int
	height int
	cursor int

	confirming bool
	form       *huh.Form
	confirmed  *bool // survives value copies
}

func newTrackerModel(l *ledger.Ledger) trackerModel {
	confirmed := false
	return trackerModel{ledger: l, confirmed: &confirmed}
}

func (t *trackerModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t trackerModel) selected() ledger.Category {
	return ledger.Categories()[t.cursor]
}

func (t trackerModel) update(msg tea.Msg) (trackerModel, tea.Cmd) {
	if t.confirming && t.form != nil {
		return t.updateConfirm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return t, nil
	}
	switch {
	case key.Matches(km, keys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
	case key.Matches(km, keys.Down):
		if t.cursor < len(ledger.Categories())-1 {
			t.cursor++
		}
	case key.Matches(km, keys.Add):
		if err := t.ledger.Increment(t.selected()); err != nil {
			return t, statusCmd(err.Error(), true)
		}
		return t, ledgerChanged
	case key.Matches(km, keys.Remove):
		if err := t.ledger.Decrement(t.selected()); err != nil {
			return t, statusCmd(err.Error(), true)
		}
		return t, ledgerChanged
	case key.Matches(km, keys.Reset):
		return t.showConfirm()
	}
	return t, nil
}

func (t trackerModel) showConfirm() (trackerModel, tea.Cmd) {
	*t.confirmed = false
	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Reset all counters?").
				Description(fmt.Sprintf("This clears %s across every prayer.", plural(t.ledger.Total(), "entry"))).
				Affirmative("Reset").
				Negative("Cancel").
				Value(t.confirmed),
		),
	).WithShowHelp(true)
	t.confirming = true
	return t, t.form.Init()
}

func (t trackerModel) updateConfirm(msg tea.Msg) (trackerModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		t.confirming = false
		t.form = nil
		return t, nil
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}
	if t.form.State != huh.StateCompleted {
		return t, cmd
	}

	t.confirming = false
	t.form = nil
	if !*t.confirmed {
		return t, nil
	}
	t.ledger.ResetAll()
	return t, tea.Batch(ledgerChanged, statusCmd("All counters reset", false))
}

func ledgerChanged() tea.Msg { return ledgerChangedMsg{} }

func (t trackerModel) view() string {
	w := t.width - 4

	if t.confirming && t.form != nil {
		return activePanelStyle.Width(w).Render(t.form.View())
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Qada Tracker"))
	rows = append(rows, "")

	counts := t.ledger.Counts()
	peak := 0
	for _, n := range counts {
		peak = max(peak, n)
	}
	barMax := max(w-36, 4)

	for i, c := range ledger.Categories() {
		n := counts[c]
		cursor := "  "
		style := normalItemStyle
		if i == t.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		dot := lipgloss.NewStyle().Foreground(categoryColors[i]).Render("●")
		bar := ""
		if peak > 0 && n > 0 {
			bar = lipgloss.NewStyle().Foreground(categoryColors[i]).
				Render(strings.Repeat("█", max(1, n*barMax/peak)))
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-8s %5d ", cursor, dot, categoryNames[c], n))+bar)
	}

	rows = append(rows, "")
	rows = append(rows, accentStyle.Render(fmt.Sprintf("  Total made up: %d", t.ledger.Total())))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  +: add  -: remove  R: reset all  ↑/↓: select"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
