// Package geocode resolves decimal coordinates to place names through a
// Nominatim-compatible reverse geocoding endpoint. Place names are
// optional enrichment: any failure yields an empty result, never an
// error the caller has to handle.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gdefombelle/pytune-helpers-images/internal/logger"
	"github.com/gdefombelle/pytune-helpers-images/pkg/gps"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "pytune-helpers-images/1.0"
)

// Config holds the reverse geocoding endpoint settings. The endpoint is
// injected here rather than read from ambient global state.
type Config struct {
	// ReverseURL is the reverse geocoding endpoint,
	// e.g. "https://nominatim.openstreetmap.org/reverse".
	ReverseURL string
	UserAgent  string
	Timeout    time.Duration
}

// Place is a resolved city/country pair. Either field may be empty.
type Place struct {
	City    string
	Country string
}

// Client is a reverse geocoding client.
type Client struct {
	config     Config
	httpClient *http.Client
}

// New creates a reverse geocoding client from cfg, filling in defaults
// for the user agent and timeout.
func New(cfg Config) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// nominatimResponse is the subset of the jsonv2 response we care about.
type nominatimResponse struct {
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		Country string `json:"country"`
	} `json:"address"`
}

// Reverse resolves (lat, lon) to a place. The second return value is
// false when nothing could be resolved, for any reason: unconfigured
// endpoint, network failure, non-200 response or unusable payload.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (Place, bool) {
	if c.config.ReverseURL == "" {
		return Place{}, false
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "jsonv2")

	reqURL := fmt.Sprintf("%s?%s", c.config.ReverseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		logger.Warn("Reverse geocode request for (%f, %f) failed: %v", lat, lon, err)
		return Place{}, false
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("Reverse geocode for (%f, %f) failed: %v", lat, lon, err)
		return Place{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("Reverse geocode for (%f, %f) returned status %d", lat, lon, resp.StatusCode)
		return Place{}, false
	}

	var data nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		logger.Warn("Reverse geocode for (%f, %f) returned unusable payload: %v", lat, lon, err)
		return Place{}, false
	}

	place := Place{Country: data.Address.Country}
	switch {
	case data.Address.City != "":
		place.City = data.Address.City
	case data.Address.Town != "":
		place.City = data.Address.Town
	case data.Address.Village != "":
		place.City = data.Address.Village
	}

	if place.City == "" && place.Country == "" {
		return Place{}, false
	}
	return place, true
}

// ReverseCoordinate resolves an extracted coordinate to a place. A nil
// coordinate resolves to nothing.
func (c *Client) ReverseCoordinate(ctx context.Context, coord *gps.Coordinate) (Place, bool) {
	if coord == nil {
		return Place{}, false
	}
	return c.Reverse(ctx, coord.Latitude, coord.Longitude)
}
