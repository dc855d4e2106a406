package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultEndpoint is the public wttr.in service.
const DefaultEndpoint = "https://wttr.in"

const maxBodySize = 1 << 20

// HTTPClient is the subset of *http.Client used by WttrSource.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WttrSource reads live conditions from a wttr.in compatible JSON endpoint.
type WttrSource struct {
	endpoint string
	client   HTTPClient
}

// NewWttrSource creates a source for endpoint. A nil client gets one with the given timeout.
func NewWttrSource(endpoint string, client HTTPClient, timeout time.Duration) *WttrSource {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &WttrSource{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   client,
	}
}

// Lookup implements Source.
func (s *WttrSource) Lookup(ctx context.Context, location string) (Report, error) {
	u := fmt.Sprintf("%s/%s?format=j1", s.endpoint, url.PathEscape(location))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Report{}, fmt.Errorf("failed to build weather request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Report{}, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Report{}, fmt.Errorf("failed to read weather response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return Report{}, fmt.Errorf("%w: %s", ErrNotFound, location)
	}
	if resp.StatusCode != http.StatusOK {
		return Report{}, fmt.Errorf("weather service returned status %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return Report{}, fmt.Errorf("weather service returned invalid JSON")
	}

	current := gjson.GetBytes(body, "current_condition.0")
	if !current.Exists() {
		return Report{}, fmt.Errorf("%w: %s", ErrNotFound, location)
	}

	name := location
	if area := gjson.GetBytes(body, "nearest_area.0.areaName.0.value"); area.Exists() && area.String() != "" {
		name = area.String()
		if country := gjson.GetBytes(body, "nearest_area.0.country.0.value").String(); country != "" {
			name += ", " + country
		}
	}

	return Report{
		Location:    name,
		Temperature: current.Get("temp_C").String() + "°C",
		Condition:   current.Get("weatherDesc.0.value").String(),
		Humidity:    current.Get("humidity").String() + "%",
		Wind:        fmt.Sprintf("%s km/h %s", current.Get("windspeedKmph").String(), current.Get("winddir16Point").String()),
	}, nil
}
