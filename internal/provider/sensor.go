package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// SensorErrorKind classifies why a position could not be read.
type SensorErrorKind int

const (
	PermissionDenied SensorErrorKind = iota + 1
	PositionUnavailable
	Timeout
	Unsupported
)

func (k SensorErrorKind) String() string {
	switch k {
	case PermissionDenied:
		return "permission denied"
	case PositionUnavailable:
		return "position unavailable"
	case Timeout:
		return "timeout"
	case Unsupported:
		return "unsupported"
	}
	return "unknown"
}

// SensorError is the only error a Sensor returns.
type SensorError struct {
	Kind SensorErrorKind
	Err  error
}

func (e *SensorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("locate: %s: %v", e.Kind, e.Err)
	}
	return "locate: " + e.Kind.String()
}

func (e *SensorError) Unwrap() error { return e.Err }

// Hint is the user-facing recovery text for the error kind.
func (e *SensorError) Hint() string {
	switch e.Kind {
	case PermissionDenied:
		return "Location access was denied. Enter your city or coordinates instead."
	case Timeout:
		return "Locating took too long. Press r to retry or m to enter a location."
	case Unsupported:
		return "Automatic location is not available. Enter your city or coordinates."
	}
	return "Your position could not be determined. Press r to retry or m to enter a location."
}

// Sensor reads the device's approximate position.
type Sensor interface {
	Locate(ctx context.Context) (lat, lng float64, err error)
}

// NoSensor is used when automatic location is disabled.
type NoSensor struct{}

func (NoSensor) Locate(context.Context) (float64, float64, error) {
	return 0, 0, &SensorError{Kind: Unsupported}
}

// DefaultSensorURL is an IP geolocation endpoint returning lat/lon JSON.
const DefaultSensorURL = "http://ip-api.com/json/?fields=status,message,lat,lon"

// IPSensor approximates the position from the public IP address.
type IPSensor struct {
	url        string
	httpClient *http.Client
}

func NewIPSensor(url string, timeout time.Duration) *IPSensor {
	if url == "" {
		url = DefaultSensorURL
	}
	return &IPSensor{url: url, httpClient: newHTTPClient(timeout)}
}

type ipResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

func (s *IPSensor) Locate(ctx context.Context) (float64, float64, error) {
	var res ipResponse
	if err := getJSON(ctx, s.httpClient, s.url, "", &res); err != nil {
		return 0, 0, classifySensorError(err)
	}
	if res.Status != "" && res.Status != "success" {
		return 0, 0, &SensorError{Kind: PositionUnavailable, Err: errors.New(res.Message)}
	}
	if res.Lat == nil || res.Lon == nil {
		return 0, 0, &SensorError{Kind: PositionUnavailable, Err: errors.New("no coordinates in response")}
	}
	return *res.Lat, *res.Lon, nil
}

func classifySensorError(err error) *SensorError {
	var se *statusError
	if errors.As(err, &se) && (se.Code == http.StatusForbidden || se.Code == http.StatusUnauthorized) {
		return &SensorError{Kind: PermissionDenied, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &SensorError{Kind: Timeout, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &SensorError{Kind: Timeout, Err: err}
	}
	return &SensorError{Kind: PositionUnavailable, Err: err}
}

// NewSensor builds the sensor named by kind: "ip" or "none".
func NewSensor(kind, url string, timeout time.Duration) (Sensor, error) {
	switch strings.ToLower(kind) {
	case "", "ip":
		return NewIPSensor(url, timeout), nil
	case "none":
		return NoSensor{}, nil
	}
	return nil, fmt.Errorf("unknown sensor kind %q", kind)
}
