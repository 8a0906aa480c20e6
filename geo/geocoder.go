package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Nominatim resolves coordinates to a human-readable address through an
// OpenStreetMap Nominatim compatible endpoint.
type Nominatim struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    *zap.Logger
}

// NewNominatim creates a reverse geocoder. A nil client gets a 10 second timeout.
func NewNominatim(baseURL, userAgent string, client *http.Client, logger *zap.Logger) *Nominatim {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Nominatim{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    client,
		logger:    logger,
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// ReverseGeocode returns the display name for c.
func (n *Nominatim) ReverseGeocode(ctx context.Context, c Coordinate) (string, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", fmt.Sprintf("%f", c.Latitude))
	q.Set("lon", fmt.Sprintf("%f", c.Longitude))
	q.Set("zoom", "18")
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build reverse request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode: unexpected status %d", resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode reverse response: %w", err)
	}
	return body.DisplayName, nil
}

// Address resolves c to an address, falling back to the formatted coordinate
// when the lookup fails or yields nothing.
func (n *Nominatim) Address(ctx context.Context, c Coordinate) string {
	name, err := n.ReverseGeocode(ctx, c)
	if err != nil {
		n.logger.Warn("reverse geocode failed", zap.Stringer("coordinate", c), zap.Error(err))
		return c.String()
	}
	if strings.TrimSpace(name) == "" {
		return c.String()
	}
	return name
}
