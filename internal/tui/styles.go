package tui

import "github.com/charmbracelet/lipgloss"

// palette is one color theme.
type palette struct {
	primary   lipgloss.Color
	secondary lipgloss.Color
	accent    lipgloss.Color
	muted     lipgloss.Color
	success   lipgloss.Color
	warning   lipgloss.Color
	err       lipgloss.Color
	fg        lipgloss.Color
	subtle    lipgloss.Color
	highlight lipgloss.Color
}

var palettes = map[string]palette{
	"dark": {
		primary:   lipgloss.Color("#E0B04C"),
		secondary: lipgloss.Color("#2EC4B6"),
		accent:    lipgloss.Color("#FF6B6B"),
		muted:     lipgloss.Color("#666666"),
		success:   lipgloss.Color("#2ECC71"),
		warning:   lipgloss.Color("#F39C12"),
		err:       lipgloss.Color("#E74C3C"),
		fg:        lipgloss.Color("#C0CAF5"),
		subtle:    lipgloss.Color("#414868"),
		highlight: lipgloss.Color("#7AA2F7"),
	},
	"light": {
		primary:   lipgloss.Color("#9A6B00"),
		secondary: lipgloss.Color("#11776E"),
		accent:    lipgloss.Color("#C0392B"),
		muted:     lipgloss.Color("#8A8A8A"),
		success:   lipgloss.Color("#1E8449"),
		warning:   lipgloss.Color("#B9770E"),
		err:       lipgloss.Color("#C0392B"),
		fg:        lipgloss.Color("#1A1B26"),
		subtle:    lipgloss.Color("#C8C8D0"),
		highlight: lipgloss.Color("#2E59C7"),
	},
}

// Category colors for the tracker and reports, in ledger order.
var categoryColors = []lipgloss.Color{
	lipgloss.Color("#7AA2F7"),
	lipgloss.Color("#E0B04C"),
	lipgloss.Color("#2EC4B6"),
	lipgloss.Color("#FF6B6B"),
	lipgloss.Color("#9B59B6"),
	lipgloss.Color("#2ECC71"),
}

// Color palette
var (
	colorPrimary lipgloss.Color
	colorSubtle  lipgloss.Color
)

// Styles
var (
	activeTabStyle    lipgloss.Style
	inactiveTabStyle  lipgloss.Style
	panelStyle        lipgloss.Style
	activePanelStyle  lipgloss.Style
	countdownStyle    lipgloss.Style
	titleStyle        lipgloss.Style
	subtitleStyle     lipgloss.Style
	accentStyle       lipgloss.Style
	successStyle      lipgloss.Style
	warningStyle      lipgloss.Style
	errorStyle        lipgloss.Style
	mutedStyle        lipgloss.Style
	highlightStyle    lipgloss.Style
	headerStyle       lipgloss.Style
	footerStyle       lipgloss.Style
	selectedItemStyle lipgloss.Style
	normalItemStyle   lipgloss.Style
	activeRowStyle    lipgloss.Style
)

// currentTheme is the name of the palette the styles were last built from.
var currentTheme string

func init() {
	applyTheme("dark")
}

// applyTheme rebuilds every style from the named palette. Unknown names fall
// back to dark. It returns the theme actually applied.
func applyTheme(name string) string {
	p, ok := palettes[name]
	if !ok {
		name = "dark"
		p = palettes[name]
	}
	currentTheme = name

	colorPrimary = p.primary
	colorSubtle = p.subtle

	// Tabs
	activeTabStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.primary).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(p.primary).
		Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
		Foreground(p.muted).
		Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.subtle).
		Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.primary).
		Padding(1, 2)

	countdownStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.primary).
		Align(lipgloss.Center)

	// Text
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.fg)
	subtitleStyle = lipgloss.NewStyle().Foreground(p.muted)
	accentStyle = lipgloss.NewStyle().Foreground(p.accent)
	successStyle = lipgloss.NewStyle().Foreground(p.success)
	warningStyle = lipgloss.NewStyle().Foreground(p.warning)
	errorStyle = lipgloss.NewStyle().Foreground(p.err)
	mutedStyle = lipgloss.NewStyle().Foreground(p.muted)
	highlightStyle = lipgloss.NewStyle().Foreground(p.highlight)

	// Header/footer
	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(p.muted).Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().Foreground(p.primary).Bold(true)
	normalItemStyle = lipgloss.NewStyle().Foreground(p.fg)
	activeRowStyle = lipgloss.NewStyle().Foreground(p.secondary).Bold(true)

	return name
}
