// Package tracking is the HTTP gateway to the driver-location tracking
// service. The base client does one request; retry and caching live in
// separate decorators so they can be stacked per environment.
package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"service-dispatch/internal/domain"
)

// Client calls the tracking service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new tracking Client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type locationDTO struct {
	DriverID   int64     `json:"driver_id"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Latest returns the driver's most recent reported location, or (nil, nil)
// when the tracking service has never seen the driver.
func (c *Client) Latest(ctx context.Context, driverID int64) (*domain.DriverLocation, error) {
	url := fmt.Sprintf("%s/drivers/%d/location/latest", c.baseURL, driverID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build tracking request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tracking request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	default:
		return nil, &statusError{code: resp.StatusCode}
	}

	var dto locationDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("decode tracking response: %w", err)
	}

	return &domain.DriverLocation{
		DriverID:   dto.DriverID,
		Position:   domain.Point{Lat: dto.Lat, Lon: dto.Lon},
		RecordedAt: dto.RecordedAt,
	}, nil
}

// statusError preserves the HTTP status so the retry decorator can classify
// the failure.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("tracking: unexpected status %d", e.code)
}
