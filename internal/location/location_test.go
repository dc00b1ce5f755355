package location

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStorage struct {
	data map[string]string
}

func newMemStorage() *memStorage { return &memStorage{data: map[string]string{}} }

func (m *memStorage) Get(key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func (m *memStorage) Set(key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memStorage) Delete(key string) error {
	delete(m.data, key)
	return nil
}

type brokenStorage struct{}

func (brokenStorage) Get(string) (string, error) { return "", errors.New("io error") }
func (brokenStorage) Set(string, string) error   { return errors.New("quota exceeded") }
func (brokenStorage) Delete(string) error        { return errors.New("read-only") }

var (
	fixedNow = time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC)
	quiet    = WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	clock    = WithClock(func() time.Time { return fixedNow })
)

func newCache(s Storage) *Cache { return New(s, quiet, clock) }

func TestLoadEmptyEntersManualMode(t *testing.T) {
	c := newCache(newMemStorage())

	_, ok := c.Load()
	assert.False(t, ok)
	assert.True(t, c.ManualMode())
	_, ok = c.Current()
	assert.False(t, ok)
}

func TestLoadValidRecord(t *testing.T) {
	m := newMemStorage()
	m.data[StorageKey] = `{"name":"Istanbul, Türkiye","latitude":41.0082,"longitude":28.9784,"timestamp":1772355000000}`
	c := newCache(m)

	loc, ok := c.Load()
	require.True(t, ok)
	assert.False(t, c.ManualMode())
	assert.Equal(t, "Istanbul, Türkiye", loc.Name)
	assert.InDelta(t, 41.0082, loc.Latitude, 1e-9)
	assert.InDelta(t, 28.9784, loc.Longitude, 1e-9)
	assert.Equal(t, int64(1772355000000), loc.SavedAt.UnixMilli())
}

func TestLoadReadsExistingKey(t *testing.T) {
	m := newMemStorage()
	m.data["rayyan_user_location"] = `{"name":"Konya","latitude":37.8746,"longitude":32.4932,"timestamp":1}`

	loc, ok := newCache(m).Load()
	require.True(t, ok, "records saved by earlier versions must load")
	assert.Equal(t, "Konya", loc.Name)
}

func TestLoadKeepsZeroCoordinates(t *testing.T) {
	m := newMemStorage()
	m.data[StorageKey] = `{"name":"Null Island","latitude":0,"longitude":0,"timestamp":1}`
	c := newCache(m)

	loc, ok := c.Load()
	require.True(t, ok, "zero is a valid coordinate")
	assert.Zero(t, loc.Latitude)
}

func TestLoadIncompleteRecordIsAbsent(t *testing.T) {
	for name, raw := range map[string]string{
		"no name":      `{"latitude":1,"longitude":2}`,
		"empty name":   `{"name":"","latitude":1,"longitude":2}`,
		"no latitude":  `{"name":"x","longitude":2}`,
		"no longitude": `{"name":"x","latitude":1}`,
		"empty object": `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			m := newMemStorage()
			m.data[StorageKey] = raw
			c := newCache(m)

			_, ok := c.Load()
			assert.False(t, ok)
			assert.True(t, c.ManualMode())
			_, kept := m.data[StorageKey]
			assert.True(t, kept, "incomplete records are ignored, not deleted")
		})
	}
}

func TestLoadCorruptRecordIsDeleted(t *testing.T) {
	m := newMemStorage()
	m.data[StorageKey] = `{"name": "Ank`
	c := newCache(m)

	_, ok := c.Load()
	assert.False(t, ok)
	assert.True(t, c.ManualMode())
	_, kept := m.data[StorageKey]
	assert.False(t, kept)
}

func TestSaveSensor(t *testing.T) {
	m := newMemStorage()
	c := newCache(m)
	c.EnterManualMode()

	loc := c.SaveSensor(39.9334, 32.8597, "Ankara, Türkiye")
	assert.Equal(t, "Ankara, Türkiye", loc.Name)
	assert.Equal(t, fixedNow, loc.SavedAt)
	assert.False(t, c.ManualMode())

	var r map[string]any
	require.NoError(t, json.Unmarshal([]byte(m.data[StorageKey]), &r))
	assert.Equal(t, "Ankara, Türkiye", r["name"])
	assert.EqualValues(t, fixedNow.UnixMilli(), r["timestamp"])
}

func TestSaveSensorWithoutLabel(t *testing.T) {
	c := newCache(newMemStorage())
	loc := c.SaveSensor(39.93336, 32.85974, "  ")
	assert.Equal(t, "Lat: 39.9334, Lng: 32.8597", loc.Name)
}

func TestSaveManualAccepts(t *testing.T) {
	tests := []struct {
		lat, lng string
	}{
		{"90", "180"},
		{"-90", "-180"},
		{"0", "0"},
		{" 41.0082 ", "28.9784"},
	}
	for _, tt := range tests {
		t.Run(tt.lat+","+tt.lng, func(t *testing.T) {
			m := newMemStorage()
			c := newCache(m)
			_, err := c.SaveManual(tt.lat, tt.lng, "")
			require.NoError(t, err)
			assert.Contains(t, m.data, StorageKey)
		})
	}
}

func TestSaveManualRejects(t *testing.T) {
	tests := []struct {
		lat, lng string
		field    string
	}{
		{"91", "0", "latitude"},
		{"-91", "0", "latitude"},
		{"0", "181", "longitude"},
		{"0", "-181", "longitude"},
		{"abc", "0", "latitude"},
		{"0", "", "longitude"},
		{"NaN", "0", "latitude"},
		{"0", "Inf", "longitude"},
	}
	for _, tt := range tests {
		t.Run(tt.lat+","+tt.lng, func(t *testing.T) {
			m := newMemStorage()
			c := newCache(m)
			_, err := c.SaveManual(tt.lat, tt.lng, "Somewhere")

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.NotContains(t, m.data, StorageKey)
		})
	}
}

func TestSaveManualRejectKeepsPrevious(t *testing.T) {
	c := newCache(newMemStorage())
	c.SaveSensor(1, 2, "Before")

	_, err := c.SaveManual("100", "0", "")
	require.Error(t, err)

	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "Before", cur.Name)
}

func TestSaveManualName(t *testing.T) {
	c := newCache(newMemStorage())

	loc, err := c.SaveManual("21.4225", "39.8262", "Makkah")
	require.NoError(t, err)
	assert.Equal(t, "Makkah", loc.Name)

	loc, err = c.SaveManual("21.4225", "39.8262", "")
	require.NoError(t, err)
	assert.Equal(t, "Lat: 21.4225, Lng: 39.8262", loc.Name)
}

func TestSaveGeocoded(t *testing.T) {
	c := newCache(newMemStorage())

	loc, err := c.SaveGeocoded("Konya", "Türkiye", 37.87, 32.48)
	require.NoError(t, err)
	assert.Equal(t, "Konya, Türkiye", loc.Name)

	loc, err = c.SaveGeocoded("Konya", " ", 37.87, 32.48)
	require.NoError(t, err)
	assert.Equal(t, "Konya", loc.Name)

	_, err = c.SaveGeocoded("  ", "Türkiye", 0, 0)
	assert.ErrorIs(t, err, ErrPlaceRequired)
}

func TestClear(t *testing.T) {
	m := newMemStorage()
	c := newCache(m)
	c.SaveSensor(1, 2, "Here")

	c.Clear()

	assert.True(t, c.ManualMode())
	_, ok := c.Current()
	assert.False(t, ok)
	assert.NotContains(t, m.data, StorageKey)
}

func TestRoundTrip(t *testing.T) {
	m := newMemStorage()
	saved := newCache(m).SaveSensor(-33.8688, 151.2093, "Sydney, Australia")

	loaded, ok := newCache(m).Load()
	require.True(t, ok)
	assert.Equal(t, saved.Name, loaded.Name)
	assert.Equal(t, saved.Latitude, loaded.Latitude)
	assert.Equal(t, saved.Longitude, loaded.Longitude)
	assert.True(t, saved.SavedAt.Equal(loaded.SavedAt))
}

func TestBrokenStorageIsAbsorbed(t *testing.T) {
	c := newCache(brokenStorage{})

	_, ok := c.Load()
	assert.False(t, ok)

	loc := c.SaveSensor(1, 2, "Here")
	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, loc, cur)

	c.Clear()
	assert.True(t, c.ManualMode())
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Field: "latitude", Input: "91"}
	assert.Contains(t, err.Error(), "-90 and 90")
	err = &ValidationError{Field: "longitude", Input: "181"}
	assert.Contains(t, err.Error(), "-180 and 180")
}

func TestParseCoordinates(t *testing.T) {
	lat, lng, err := ParseCoordinates(" -33.8688", "151.2093 ")
	require.NoError(t, err)
	assert.Equal(t, -33.8688, lat)
	assert.Equal(t, 151.2093, lng)

	_, _, err = ParseCoordinates("45", "200")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "longitude", verr.Field)
	assert.Equal(t, "200", verr.Input)
}
