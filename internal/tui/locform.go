package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/imsak/internal/location"
)

const (
	entryCity   = "city"
	entryCoords = "coords"
)

// locationEntry is what the user typed into the location form.
type locationEntry struct {
	mode    string
	city    string
	country string
	lat     string
	lng     string
	name    string
}

// locationFormModel asks for a city (and optional country) or raw
// coordinates.
type locationFormModel struct {
	form   *huh.Form
	active bool

	// Form values as pointers (survive value copies)
	mode    *string
	city    *string
	country *string
	lat     *string
	lng     *string
	name    *string
}

func newLocationFormModel() locationFormModel {
	mode, city, country, lat, lng, name := entryCity, "", "", "", "", ""
	return locationFormModel{
		mode:    &mode,
		city:    &city,
		country: &country,
		lat:     &lat,
		lng:     &lng,
		name:    &name,
	}
}

func (l locationFormModel) open() (locationFormModel, tea.Cmd) {
	*l.mode = entryCity
	*l.city, *l.country = "", ""
	*l.lat, *l.lng, *l.name = "", "", ""

	mode := l.mode
	l.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Enter location by").
				Options(
					huh.NewOption("City name", entryCity),
					huh.NewOption("Coordinates", entryCoords),
				).Value(l.mode),
		),
		huh.NewGroup(
			huh.NewInput().Title("City").Placeholder("Istanbul").
				Validate(required("city")).Value(l.city),
			huh.NewInput().Title("Country (optional)").Placeholder("Türkiye").Value(l.country),
		).WithHideFunc(func() bool { return *mode != entryCity }),
		huh.NewGroup(
			huh.NewInput().Title("Latitude").Placeholder("41.0082").
				Validate(validLatitude).Value(l.lat),
			huh.NewInput().Title("Longitude").Placeholder("28.9784").
				Validate(validLongitude).Value(l.lng),
			huh.NewInput().Title("Name (optional)").Value(l.name),
		).WithHideFunc(func() bool { return *mode != entryCoords }),
	).WithShowHelp(true).WithShowErrors(true)

	l.active = true
	return l, l.form.Init()
}

func (l locationFormModel) close() locationFormModel {
	l.active = false
	l.form = nil
	return l
}

// update feeds msg to the form. done is true once the form was submitted;
// the caller then reads entry().
func (l locationFormModel) update(msg tea.Msg) (locationFormModel, tea.Cmd, bool) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		return l.close(), nil, false
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}

	if l.form.State == huh.StateCompleted {
		return l.close(), nil, true
	}
	return l, cmd, false
}

func (l locationFormModel) entry() locationEntry {
	return locationEntry{
		mode:    *l.mode,
		city:    strings.TrimSpace(*l.city),
		country: strings.TrimSpace(*l.country),
		lat:     *l.lat,
		lng:     *l.lng,
		name:    strings.TrimSpace(*l.name),
	}
}

func (l locationFormModel) view(w int) string {
	if !l.active || l.form == nil {
		return ""
	}
	title := titleStyle.Render("Set Location")
	return activePanelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", l.form.View()),
	)
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

func validLatitude(s string) error {
	_, _, err := location.ParseCoordinates(s, "0")
	return err
}

func validLongitude(s string) error {
	_, _, err := location.ParseCoordinates("0", s)
	return err
}
