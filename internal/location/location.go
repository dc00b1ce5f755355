// Package location caches the user's chosen place and its coordinates.
package location

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// StorageKey is the key the cached location is persisted under.
const StorageKey = "rayyan_user_location"

// ErrPlaceRequired is returned by SaveGeocoded when no place name is given.
var ErrPlaceRequired = errors.New("place name is required")

// Storage is the key-value adapter the cache persists through.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Location is a named pair of coordinates.
type Location struct {
	Name      string
	Latitude  float64
	Longitude float64
	SavedAt   time.Time
}

// record is the persisted shape. Pointer fields distinguish a missing
// coordinate from a zero one.
type record struct {
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timestamp int64    `json:"timestamp"`
}

// coordinates is what manual input is validated against.
type coordinates struct {
	Latitude  float64 `validate:"latitude,min=-90,max=90"`
	Longitude float64 `validate:"longitude,min=-180,max=180"`
}

var validate = validator.New()

// ValidationError reports rejected manual input. Field is "latitude" or
// "longitude".
type ValidationError struct {
	Field string
	Input string
	Err   error
}

func (e *ValidationError) Error() string {
	switch e.Field {
	case "latitude":
		return fmt.Sprintf("invalid latitude %q: must be a number between -90 and 90", e.Input)
	case "longitude":
		return fmt.Sprintf("invalid longitude %q: must be a number between -180 and 180", e.Input)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Input)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for absorbed storage failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// WithClock overrides time.Now for save timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// Cache holds the current location, if any, and mirrors it to storage.
type Cache struct {
	storage Storage
	log     *slog.Logger
	now     func() time.Time

	current *Location
	manual  bool
}

func New(storage Storage, opts ...Option) *Cache {
	c := &Cache{
		storage: storage,
		log:     slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads the persisted location. A corrupt entry is deleted. A record
// missing its name or either coordinate is treated as absent. When nothing
// usable is stored the cache switches to manual mode.
func (c *Cache) Load() (Location, bool) {
	c.current = nil

	raw, err := c.storage.Get(StorageKey)
	if err != nil {
		c.log.Debug("no cached location", "error", err)
		c.manual = true
		return Location{}, false
	}

	var r record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		c.log.Debug("cached location corrupt, discarding", "error", err)
		if err := c.storage.Delete(StorageKey); err != nil {
			c.log.Debug("discard cached location failed", "error", err)
		}
		c.manual = true
		return Location{}, false
	}
	if r.Name == "" || r.Latitude == nil || r.Longitude == nil {
		c.log.Debug("cached location incomplete, ignoring")
		c.manual = true
		return Location{}, false
	}

	loc := Location{
		Name:      r.Name,
		Latitude:  *r.Latitude,
		Longitude: *r.Longitude,
	}
	if r.Timestamp > 0 {
		loc.SavedAt = time.UnixMilli(r.Timestamp)
	}
	c.current = &loc
	c.manual = false
	return loc, true
}

// Current returns the cached location, if one is set.
func (c *Cache) Current() (Location, bool) {
	if c.current == nil {
		return Location{}, false
	}
	return *c.current, true
}

// ManualMode reports whether the user has to enter a location by hand.
func (c *Cache) ManualMode() bool { return c.manual }

// EnterManualMode switches to manual entry without touching the cache.
func (c *Cache) EnterManualMode() { c.manual = true }

// SaveSensor stores a position read from a location sensor. An empty label
// is replaced by the formatted coordinates.
func (c *Cache) SaveSensor(lat, lng float64, label string) Location {
	if strings.TrimSpace(label) == "" {
		label = CoordinateLabel(lat, lng)
	}
	return c.save(Location{Name: label, Latitude: lat, Longitude: lng})
}

// SaveManual parses and validates user-typed coordinates. On error nothing is
// stored and the previous location stays current.
func (c *Cache) SaveManual(latText, lngText, name string) (Location, error) {
	lat, lng, err := ParseCoordinates(latText, lngText)
	if err != nil {
		return Location{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = CoordinateLabel(lat, lng)
	}
	return c.save(Location{Name: name, Latitude: lat, Longitude: lng}), nil
}

// ParseCoordinates parses decimal degrees and checks latitude is within
// [-90, 90] and longitude within [-180, 180]. Failures are *ValidationError.
func ParseCoordinates(latText, lngText string) (lat, lng float64, err error) {
	latText = strings.TrimSpace(latText)
	lngText = strings.TrimSpace(lngText)

	lat, err = strconv.ParseFloat(latText, 64)
	if err != nil {
		return 0, 0, &ValidationError{Field: "latitude", Input: latText, Err: err}
	}
	lng, err = strconv.ParseFloat(lngText, 64)
	if err != nil {
		return 0, 0, &ValidationError{Field: "longitude", Input: lngText, Err: err}
	}

	if err := validate.Struct(coordinates{Latitude: lat, Longitude: lng}); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := strings.ToLower(verrs[0].Field())
			input := latText
			if field == "longitude" {
				input = lngText
			}
			return 0, 0, &ValidationError{Field: field, Input: input, Err: err}
		}
		return 0, 0, fmt.Errorf("validate coordinates: %w", err)
	}
	return lat, lng, nil
}

// SaveGeocoded stores coordinates resolved from a place name. The display
// name is "place, region", or just the place when region is empty.
func (c *Cache) SaveGeocoded(place, region string, lat, lng float64) (Location, error) {
	place = strings.TrimSpace(place)
	region = strings.TrimSpace(region)
	if place == "" {
		return Location{}, ErrPlaceRequired
	}
	name := place
	if region != "" {
		name = place + ", " + region
	}
	return c.save(Location{Name: name, Latitude: lat, Longitude: lng}), nil
}

// Clear forgets the location and switches to manual mode.
func (c *Cache) Clear() {
	if err := c.storage.Delete(StorageKey); err != nil {
		c.log.Debug("clear cached location failed", "error", err)
	}
	c.current = nil
	c.manual = true
}

func (c *Cache) save(loc Location) Location {
	loc.SavedAt = c.now()
	data, err := json.Marshal(record{
		Name:      loc.Name,
		Latitude:  &loc.Latitude,
		Longitude: &loc.Longitude,
		Timestamp: loc.SavedAt.UnixMilli(),
	})
	if err == nil {
		err = c.storage.Set(StorageKey, string(data))
	}
	if err != nil {
		c.log.Debug("persist location failed", "error", err)
	}
	c.current = &loc
	c.manual = false
	return loc
}

// CoordinateLabel is the fallback display name for a bare position.
func CoordinateLabel(lat, lng float64) string {
	return fmt.Sprintf("Lat: %.4f, Lng: %.4f", lat, lng)
}
