package tdx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/domain"
)

// TokenSource supplies a bearer token for one fetch.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client fetches station metadata and availability from TDX and joins them.
// It implements pipeline.Source.
type Client struct {
	baseURL    string
	cities     []string
	tokens     TokenSource
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a TDX client for the given cities ("Taipei", "NewTaipei").
func NewClient(baseURL string, cities []string, tokens TokenSource, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		cities:     cities,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Name returns the source label.
func (c *Client) Name() string { return "tdx" }

// Fetch obtains a token, then fetches both resources for every city. The join
// needs both halves, so any failure aborts the whole fetch with no records.
func (c *Client) Fetch(ctx context.Context) ([]domain.SourceRecord, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("tdx auth: %w", err)
	}

	var records []domain.SourceRecord
	for _, city := range c.cities {
		var stations []bikeStation
		if err := c.getJSON(ctx, token, "Station", city, &stations); err != nil {
			return nil, err
		}
		var availability []bikeAvailability
		if err := c.getJSON(ctx, token, "Availability", city, &availability); err != nil {
			return nil, err
		}

		joined := join(city, stations, availability)
		c.logger.Debug("tdx city fetched",
			"city", city,
			"stations", len(stations),
			"availability", len(availability),
			"joined", len(joined),
		)
		records = append(records, joined...)
	}
	return records, nil
}

func (c *Client) getJSON(ctx context.Context, token, resource, city string, v any) error {
	u := fmt.Sprintf("%s/v2/Bike/%s/City/%s?$format=JSON", c.baseURL, resource, url.PathEscape(city))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tdx %s request for %s: %w", strings.ToLower(resource), city, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("tdx %s error for %s: status %d: %s", strings.ToLower(resource), city, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode tdx %s for %s: %w", strings.ToLower(resource), city, err)
	}
	return nil
}

// join pairs metadata with availability by station UID (or ID when the UID is
// missing). Stations present on only one side are dropped. Output follows the
// metadata order.
func join(city string, stations []bikeStation, availability []bikeAvailability) []domain.SourceRecord {
	byKey := make(map[string]bikeAvailability, len(availability))
	for _, a := range availability {
		key := joinKey(a.StationUID, a.StationID)
		if key == "" {
			continue
		}
		if _, dup := byKey[key]; !dup {
			byKey[key] = a
		}
	}

	out := make([]domain.SourceRecord, 0, len(stations))
	for _, s := range stations {
		a, ok := byKey[joinKey(s.StationUID, s.StationID)]
		if !ok {
			continue
		}
		out = append(out, joinedRecord(city, s, a))
	}
	return out
}

func joinKey(uid, id text) string {
	if k := strings.TrimSpace(string(uid)); k != "" {
		return k
	}
	return strings.TrimSpace(string(id))
}

// joinedRecord maps one metadata/availability pair into a SourceRecord. TDX
// has no district field, so the normalizer derives it from the address.
func joinedRecord(city string, s bikeStation, a bikeAvailability) domain.SourceRecord {
	return domain.SourceRecord{
		ID:      string(s.StationID),
		Name:    string(s.StationName.ZhTw),
		Address: string(s.StationAddress.ZhTw),
		Lat:     string(s.StationPosition.PositionLat),
		Lng:     string(s.StationPosition.PositionLon),
		Rent:    string(a.AvailableRentBikes),
		Return:  string(a.AvailableReturnBikes),
		Active:  strings.TrimSpace(string(a.ServiceStatus)) == "1",
		City:    cityFor(string(s.AuthorityID), city),
	}
}

// cityFor prefers the station's authority code over the requested city.
func cityFor(authorityID, requested string) domain.City {
	switch strings.ToUpper(strings.TrimSpace(authorityID)) {
	case "TPE":
		return domain.CityTaipei
	case "NWT":
		return domain.CityNewTaipei
	}
	if requested == "NewTaipei" {
		return domain.CityNewTaipei
	}
	return domain.CityTaipei
}
