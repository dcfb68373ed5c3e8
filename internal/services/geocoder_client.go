package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/civic-action/platform/internal/config"
	"github.com/civic-action/platform/internal/models"
	"go.uber.org/zap"
)

var ErrAddressNotFound = errors.New("address not found")

// GeocoderClient resolves one-line addresses through the Census geocoder.
type GeocoderClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	log        *zap.Logger
}

func NewGeocoderClient(cfg *config.Config, log *zap.Logger) *GeocoderClient {
	return &GeocoderClient{
		baseURL: cfg.GeocoderURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.GeocoderTimeoutMS) * time.Millisecond,
		},
		maxRetries: 2,
		log:        log,
	}
}

type geocoderResponse struct {
	Result struct {
		AddressMatches []struct {
			MatchedAddress string `json:"matchedAddress"`
			Coordinates    struct {
				X float64 `json:"x"`
				Y float64 `json:"y"`
			} `json:"coordinates"`
		} `json:"addressMatches"`
	} `json:"result"`
}

// Geocode returns the location of the best match for the address.
func (c *GeocoderClient) Geocode(ctx context.Context, address string) (*models.Point, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrAddressNotFound
	}

	q := url.Values{}
	q.Set("address", address)
	q.Set("benchmark", "Public_AR_Current")
	q.Set("format", "json")
	target := c.baseURL + "?" + q.Encode()

	var body geocoderResponse
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}
		lastErr = c.fetch(ctx, target, &body)
		if lastErr == nil {
			break
		}
		c.log.Debug("geocoder attempt failed", zap.Int("attempt", attempt), zap.Error(lastErr))
	}
	if lastErr != nil {
		return nil, lastErr
	}

	matches := body.Result.AddressMatches
	if len(matches) == 0 {
		return nil, ErrAddressNotFound
	}
	return &models.Point{Lng: matches[0].Coordinates.X, Lat: matches[0].Coordinates.Y}, nil
}

func (c *GeocoderClient) fetch(ctx context.Context, target string, out *geocoderResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("geocoder unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocoder returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
