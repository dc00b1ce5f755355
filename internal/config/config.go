// Package config loads imsak's settings from an optional YAML file, a .env
// file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration. Theme, when set, overrides
// the preference stored in the database at startup.
type Config struct {
	Timezone  string          `yaml:"timezone"`
	Theme     string          `yaml:"theme" validate:"omitempty,oneof=dark light"`
	DBPath    string          `yaml:"db_path"`
	LogPath   string          `yaml:"log_path"`
	Timetable TimetableConfig `yaml:"timetable"`
	Geocoder  GeocoderConfig  `yaml:"geocoder"`
	Sensor    SensorConfig    `yaml:"sensor"`
}

// TimetableConfig points at the daily time-table service.
type TimetableConfig struct {
	BaseURL string        `yaml:"base_url" validate:"required,url"`
	Method  int           `yaml:"method" validate:"gte=0,lte=99"`
	Tune    string        `yaml:"tune"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

// GeocoderConfig points at the place-name service.
type GeocoderConfig struct {
	BaseURL   string        `yaml:"base_url" validate:"required,url"`
	UserAgent string        `yaml:"user_agent" validate:"required"`
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
}

// SensorConfig selects how the position is detected automatically.
type SensorConfig struct {
	Kind    string        `yaml:"kind" validate:"oneof=ip none"`
	BaseURL string        `yaml:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Timetable: TimetableConfig{
			BaseURL: "https://api.aladhan.com",
			Method:  13,
			Tune:    "2,2,0,0,0,0,0,0,0",
			Timeout: 10 * time.Second,
		},
		Geocoder: GeocoderConfig{
			BaseURL:   "https://nominatim.openstreetmap.org",
			UserAgent: "imsak/1.0 (+https://github.com/sadopc/imsak)",
			Timeout:   10 * time.Second,
		},
		Sensor: SensorConfig{
			Kind:    "ip",
			BaseURL: "http://ip-api.com/json/?fields=status,message,lat,lon",
			Timeout: 5 * time.Second,
		},
	}
}

// Environment overrides, applied after the file.
const (
	EnvTimezone = "IMSAK_TIMEZONE"
	EnvTheme    = "IMSAK_THEME"
	EnvDBPath   = "IMSAK_DB"
	EnvSensor   = "IMSAK_SENSOR"
)

var validate = validator.New()

// Load builds the configuration. path may be empty; a missing file at the
// default location is not an error, a missing explicit path is.
func Load(path string) (*Config, error) {
	// .env is optional and never overrides variables already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv(EnvTheme); v != "" {
		c.Theme = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvSensor); v != "" {
		c.Sensor.Kind = v
	}
}

// Override applies command line values over the loaded configuration.
// Empty values leave the current setting alone.
func (c *Config) Override(dbPath, timezone, theme string) {
	if dbPath != "" {
		c.DBPath = dbPath
	}
	if timezone != "" {
		c.Timezone = timezone
	}
	if theme != "" {
		c.Theme = theme
	}
	c.normalize()
}

func (c *Config) normalize() {
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	c.Sensor.Kind = strings.ToLower(strings.TrimSpace(c.Sensor.Kind))
	c.Timezone = strings.TrimSpace(c.Timezone)
}

// Validate checks field constraints and that the timezone, if set, exists.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("invalid config: timezone %q: %w", c.Timezone, err)
		}
	}
	return nil
}

// Location resolves the configured timezone. Empty means the system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Dir is the directory holding imsak's config, database and log.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "imsak"), nil
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ResolvedDBPath returns DBPath or the default database location.
func (c *Config) ResolvedDBPath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "imsak.db"), nil
}

// ResolvedLogPath returns LogPath or the default log file location.
func (c *Config) ResolvedLogPath() (string, error) {
	if c.LogPath != "" {
		return c.LogPath, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "imsak.log"), nil
}
