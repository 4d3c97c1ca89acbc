// Package geocode resolves an activity's start location (city/town/country)
// and IANA timezone from its first GPS fix. Reverse geocoding goes to an
// external collaborator over HTTP and is best-effort; timezone lookup is an
// offline point-in-polygon index.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/openpace/activity-backend-go/internal/models"
)

// Place is the reverse-geocoding result for one coordinate.
type Place struct {
	City    string
	Town    string
	Country string
}

// Client calls a Nominatim-compatible reverse geocoding endpoint.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a reverse-geocoding client. The timeout bounds the
// whole call; a timeout is treated like any other geocoding failure.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ReverseGeocode resolves one coordinate to a Place.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (*Place, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", fmt.Sprintf("%.6f", lat))
	q.Set("lon", fmt.Sprintf("%.6f", lon))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return nil, &models.GeocodeError{Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &models.GeocodeError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &models.GeocodeError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &models.GeocodeError{Err: err}
	}

	var payload struct {
		Address struct {
			City    string `json:"city"`
			Town    string `json:"town"`
			Village string `json:"village"`
			Country string `json:"country"`
		} `json:"address"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &models.GeocodeError{Err: fmt.Errorf("malformed response: %w", err)}
	}

	town := payload.Address.Town
	if town == "" {
		town = payload.Address.Village
	}
	return &Place{
		City:    payload.Address.City,
		Town:    town,
		Country: payload.Address.Country,
	}, nil
}
