// Package geocode proxies reverse-geocoding requests to the Naver Maps API so
// the API keys stay on the server.
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

	"github.com/bomin1134/gb-ud-portal/internal/common"
)

const path = "/map-reversegeocode/v2/gc"

// UpstreamError is a non-2xx answer from the geocoder.
type UpstreamError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Naver API error: %s", e.Status)
}

type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *http.Client
}

func NewClient(baseURL, clientID, clientSecret string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// Reverse fetches the raw geocoder payload for the coordinates. lat and lng
// are passed through as the caller gave them.
func (c *Client) Reverse(ctx context.Context, lat, lng string) ([]byte, error) {
	if !c.Configured() {
		return nil, common.ErrGeocoderNotConfigured
	}

	q := url.Values{}
	q.Set("coords", lng+","+lat)
	q.Set("orders", "addr,roadaddr")
	q.Set("output", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-ncp-apigw-api-key-id", c.clientID)
	req.Header.Set("x-ncp-apigw-api-key", c.clientSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode), Body: string(body)}
	}
	return body, nil
}

type reverseResponse struct {
	Results []struct {
		Region map[string]struct {
			Name string `json:"name"`
		} `json:"region"`
	} `json:"results"`
}

// Lookup returns "area1 area2 area3" of the first result, or "" when the
// geocoder knows no region for the point.
func (c *Client) Lookup(ctx context.Context, lat, lng float64) (string, error) {
	body, err := c.Reverse(ctx, formatCoord(lat), formatCoord(lng))
	if err != nil {
		return "", err
	}

	var r reverseResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("decode geocoder response: %w", err)
	}
	if len(r.Results) == 0 {
		return "", nil
	}

	var parts []string
	for _, k := range []string{"area1", "area2", "area3"} {
		if n := strings.TrimSpace(r.Results[0].Region[k].Name); n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, " "), nil
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%.7f", v)
}
