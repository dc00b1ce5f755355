package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Defaults for the Nominatim geocoder.
const (
	DefaultGeocoderURL = "https://nominatim.openstreetmap.org"
	DefaultUserAgent   = "imsak/1.0 (+https://github.com/sadopc/imsak)"
)

// Place is a geocoded position.
type Place struct {
	Latitude  float64
	Longitude float64
}

// PlaceResolver turns a place name into coordinates and back.
type PlaceResolver interface {
	Search(ctx context.Context, place, region string) (Place, error)
	Reverse(ctx context.Context, lat, lng float64) (string, error)
}

// Geocoder queries a Nominatim-compatible service. Requests are limited to
// one per second, the public instance's usage policy.
type Geocoder struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewGeocoder(baseURL, userAgent string, timeout time.Duration) *Geocoder {
	if baseURL == "" {
		baseURL = DefaultGeocoderURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Geocoder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: newHTTPClient(timeout),
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// WithLimit replaces the request rate limit.
func (g *Geocoder) WithLimit(l *rate.Limiter) *Geocoder {
	g.limiter = l
	return g
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Search resolves "place[, region]" to the first match.
func (g *Geocoder) Search(ctx context.Context, place, region string) (Place, error) {
	place = strings.TrimSpace(place)
	region = strings.TrimSpace(region)
	if place == "" {
		return Place{}, fmt.Errorf("%w: empty query", ErrNotFound)
	}
	query := place
	if region != "" {
		query = place + "," + region
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return Place{}, fmt.Errorf("geocode %q: %w", query, err)
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", query)
	q.Set("limit", "1")

	var results []searchResult
	if err := getJSON(ctx, g.httpClient, g.baseURL+"/search?"+q.Encode(), g.userAgent, &results); err != nil {
		return Place{}, fmt.Errorf("geocode %q: %w", query, err)
	}
	if len(results) == 0 {
		return Place{}, fmt.Errorf("geocode %q: %w", query, ErrNotFound)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Place{}, fmt.Errorf("geocode %q: bad latitude: %w", query, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Place{}, fmt.Errorf("geocode %q: bad longitude: %w", query, err)
	}
	return Place{Latitude: lat, Longitude: lng}, nil
}

type reverseResult struct {
	DisplayName string `json:"display_name"`
}

// Reverse returns a short label for a position: the first two
// comma-separated parts of the service's display name. An empty label with
// a nil error means the service knows nothing about the spot.
func (g *Geocoder) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("zoom", "10")

	var res reverseResult
	if err := getJSON(ctx, g.httpClient, g.baseURL+"/reverse?"+q.Encode(), g.userAgent, &res); err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	return ShortLabel(res.DisplayName), nil
}

// ShortLabel keeps the first two comma-separated parts of a display name.
func ShortLabel(displayName string) string {
	parts := strings.Split(displayName, ",")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.TrimSpace(strings.Trim(strings.Join(parts, ", "), ", "))
}
