package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sadopc/imsak/internal/config"
	"github.com/sadopc/imsak/internal/ledger"
	"github.com/sadopc/imsak/internal/location"
	"github.com/sadopc/imsak/internal/provider"
	"github.com/sadopc/imsak/internal/schedule"
	"github.com/sadopc/imsak/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

type stubTables struct{ calls int }

func (s *stubTables) Timetable(context.Context, float64, float64) (provider.Timetable, error) {
	s.calls++
	return provider.Timetable{
		Table: schedule.Table{
			PreDawn: "04:50", Dawn: "05:00", Daybreak: "06:30", Midday: "12:30",
			Afternoon: "15:45", Sunset: "18:20", Night: "19:45",
		},
		Hijri:     "11 Ramadan 1447 AH",
		Gregorian: "01 Mar 2026",
		Timezone:  "UTC",
	}, nil
}

type stubNames struct {
	found provider.Place
	label string
	err   error
}

func (s stubNames) Search(context.Context, string, string) (provider.Place, error) {
	return s.found, s.err
}

func (s stubNames) Reverse(context.Context, float64, float64) (string, error) {
	return s.label, s.err
}

type stubSensor struct {
	lat, lng float64
	err      error
}

func (s stubSensor) Locate(context.Context) (float64, float64, error) {
	return s.lat, s.lng, s.err
}

// harness runs commands against one temporary database.
type harness struct {
	t      *testing.T
	db     string
	tables *stubTables
	names  stubNames
	sensor stubSensor
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	for _, k := range []string{config.EnvTimezone, config.EnvTheme, config.EnvDBPath, config.EnvSensor} {
		t.Setenv(k, "")
	}
	return &harness{
		t:      t,
		db:     filepath.Join(t.TempDir(), "imsak.db"),
		tables: &stubTables{},
		names:  stubNames{found: provider.Place{Latitude: 37.8746, Longitude: 32.4932}, label: "Konya, Türkiye"},
		sensor: stubSensor{lat: 37.8746, lng: 32.4932},
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	c := &CLI{
		out:    &out,
		tables: h.tables,
		names:  h.names,
		sensor: h.sensor,
		now:    func() time.Time { return fixedNow },
	}
	err := c.execute(append([]string{"--db", h.db}, args...))
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err)
	return out
}

func (h *harness) store() *store.Store {
	h.t.Helper()
	s, err := store.New(h.db)
	require.NoError(h.t, err)
	h.t.Cleanup(func() { s.Close() })
	return s
}

func TestLedgerAddRemoveShow(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "fajr: 3\n", h.mustRun("ledger", "add", "fajr", "-n", "3"))
	assert.Equal(t, "fajr: 2\n", h.mustRun("ledger", "remove", "FAJR"))
	h.mustRun("ledger", "add", "witr")

	out := h.mustRun("ledger")
	assert.Contains(t, out, "fajr     2\n")
	assert.Contains(t, out, "witr     1\n")
	assert.Contains(t, out, "total    3\n")

	events, err := h.store().ListEvents(store.EventFilter{})
	require.NoError(t, err)
	assert.Len(t, events, 5)
}

func TestLedgerRemoveClampsAtZero(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "isha: 0\n", h.mustRun("ledger", "remove", "isha", "-n", "2"))
}

func TestLedgerRejectsBadInput(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("ledger", "add", "tahajjud")
	assert.ErrorIs(t, err, ledger.ErrUnknownCategory)

	_, err = h.run("ledger", "add", "fajr", "-n", "0")
	assert.ErrorContains(t, err, "at least 1")
}

func TestLedgerReset(t *testing.T) {
	h := newHarness(t)
	h.mustRun("ledger", "add", "asr", "-n", "4")

	_, err := h.run("ledger", "reset")
	assert.ErrorContains(t, err, "--yes")
	assert.Contains(t, h.mustRun("ledger"), "total    4")

	out := h.mustRun("ledger", "reset", "--yes")
	assert.Contains(t, out, "total    0")
}

func TestLocationCoords(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "No location saved.\n", h.mustRun("location"))

	out := h.mustRun("location", "coords", "41.0082", "28.9784", "--name", "Istanbul")
	assert.Equal(t, "Istanbul (41.0082, 28.9784)\n", out)
	assert.Equal(t, out, h.mustRun("location", "show"))
}

func TestLocationCoordsRejected(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("location", "coords", "95", "10")
	var verr *location.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "latitude", verr.Field)
	assert.Equal(t, "No location saved.\n", h.mustRun("location"))
}

func TestLocationCity(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("location", "city", "Konya", "Türkiye")
	assert.Equal(t, "Konya, Türkiye (37.8746, 32.4932)\n", out)

	h.names = stubNames{err: provider.ErrNotFound}
	_, err := h.run("location", "city", "Atlantis")
	assert.ErrorIs(t, err, provider.ErrNotFound)
}

func TestLocationForget(t *testing.T) {
	h := newHarness(t)
	h.mustRun("location", "coords", "21.4225", "39.8262")

	assert.Equal(t, "Location forgotten.\n", h.mustRun("location", "forget"))
	assert.Equal(t, "No location saved.\n", h.mustRun("location"))
}

func TestStatusWithSavedLocation(t *testing.T) {
	h := newHarness(t)
	h.mustRun("location", "coords", "41.0082", "28.9784", "--name", "Istanbul")
	h.sensor = stubSensor{err: errors.New("should not be used")}

	out := h.mustRun("--tz", "UTC", "status")
	assert.Contains(t, out, "Istanbul\n")
	assert.Contains(t, out, "01 Mar 2026 · 11 Ramadan 1447 AH")
	assert.Contains(t, out, "  Imsak     04:50")
	assert.Contains(t, out, "> Sunrise   06:30")
	assert.Contains(t, out, "Iftar in 08:20:00 (Iftar at 18:20)")
	assert.Equal(t, 1, h.tables.calls)
}

func TestStatusDetectsAndSavesLocation(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("status")
	assert.Contains(t, out, "Konya, Türkiye\n")
	assert.Equal(t, "Konya, Türkiye (37.8746, 32.4932)\n", h.mustRun("location"))
}

func TestStatusSensorFailure(t *testing.T) {
	h := newHarness(t)
	h.sensor = stubSensor{err: &provider.SensorError{Kind: provider.PermissionDenied}}

	_, err := h.run("status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Location access was denied")
	var se *provider.SensorError
	assert.ErrorAs(t, err, &se)
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	h.mustRun("ledger", "add", "maghrib")
	path := filepath.Join(t.TempDir(), "out.json")

	out := h.mustRun("export", "-f", "json", "-o", path)
	assert.Equal(t, "Exported 1 events to "+path+"\n", out)
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestExportDefaultPath(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("export")
	assert.Contains(t, out, "imsak-export-2026-03-01.csv")
	_, err := os.Stat("imsak-export-2026-03-01.csv")
	assert.NoError(t, err)
}

func TestThemeFlagPersists(t *testing.T) {
	h := newHarness(t)
	h.mustRun("--theme", "light", "ledger")
	assert.Equal(t, "light", h.store().SettingOr(store.SettingTheme, ""))

	h.mustRun("--theme", " Dark ", "ledger")
	assert.Equal(t, "dark", h.store().SettingOr(store.SettingTheme, ""))

	_, err := h.run("--theme", "neon", "ledger")
	assert.ErrorContains(t, err, "invalid config")
}

func TestBadTimezone(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("--tz", "Mars/Olympus", "ledger")
	assert.ErrorContains(t, err, "timezone")
}
