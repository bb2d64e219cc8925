package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"recytoken-up-go/internal/models"

	"go.uber.org/zap"
)

const defaultUserAgent = "recytoken-up/1.0"

// Nominatim queries an OpenStreetMap Nominatim compatible search endpoint.
type Nominatim struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NewNominatim builds a client for baseURL. A nil client gets a plain
// client bounded by timeout.
func NewNominatim(baseURL, userAgent string, client *http.Client, timeout time.Duration) *Nominatim {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Nominatim{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    client,
	}
}

func (n *Nominatim) Geocode(ctx context.Context, address, city, country string) (models.GeoPoint, error) {
	query := joinNonEmpty(address, city, country)
	if query == "" {
		return models.GeoPoint{}, ErrUnknownLocation
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("failed to build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.GeoPoint{}, fmt.Errorf("geocode request returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return models.GeoPoint{}, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(places) == 0 || places[0].Lat == "" || places[0].Lon == "" {
		return models.GeoPoint{}, ErrUnknownLocation
	}

	zap.L().Debug("Geocoded address",
		zap.String("query", query),
		zap.String("match", places[0].DisplayName))
	return models.GeoPoint{Latitude: places[0].Lat, Longitude: places[0].Lon}, nil
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
