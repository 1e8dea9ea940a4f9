// Package geocode resolves street addresses to coordinates through Nominatim.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"coliver/internal/models"
	"coliver/internal/observability"
)

const serviceName = "geocoder"

// Client queries a Nominatim-compatible search endpoint.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// New returns a Client for baseURL. Nominatim's usage policy requires an
// identifying userAgent on every request.
func New(baseURL, userAgent string) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode returns the first match for "city, street", or nil when nothing matches.
// Transport and HTTP failures are returned as upstream errors.
func (c *Client) Geocode(ctx context.Context, city, street string) (coords *models.Coordinates, err error) {
	ctx, span := observability.StartClientSpan(ctx, serviceName, "search")
	start := time.Now()
	defer func() {
		observability.UpstreamLatency.WithLabelValues(serviceName).Observe(time.Since(start).Seconds())
		if err != nil {
			observability.UpstreamFailures.WithLabelValues(serviceName).Inc()
		}
		observability.EndSpan(span, err)
	}()

	places, err := c.search(ctx, city+", "+street)
	if err != nil {
		return nil, models.NewUpstreamError(serviceName, err)
	}
	if len(places) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, models.NewUpstreamError(serviceName, fmt.Errorf("parse lat %q: %w", places[0].Lat, err))
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, models.NewUpstreamError(serviceName, fmt.Errorf("parse lon %q: %w", places[0].Lon, err))
	}
	return &models.Coordinates{Lat: lat, Lng: lng}, nil
}

func (c *Client) search(ctx context.Context, q string) ([]place, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("q", q)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("nominatim http error (%d): %s", resp.StatusCode, string(body))
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode nominatim response: %w", err)
	}
	return places, nil
}
