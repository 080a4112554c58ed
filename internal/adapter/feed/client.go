package feed

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/domain"
)

// maxBodyBytes bounds a feed response; the real feeds are a few MB.
const maxBodyBytes = 64 << 20

// Config describes one direct city feed.
type Config struct {
	Name               string // metric and log label, e.g. "taipei"
	URL                string
	City               domain.City
	Adapter            domain.Adapter
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Client fetches a direct city feed. It implements pipeline.Source.
type Client struct {
	name       string
	url        string
	city       domain.City
	adapter    domain.Adapter
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a feed client. InsecureSkipVerify applies to this client
// only.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // per-feed opt-in, the New Taipei portal serves an incomplete chain
	}

	return &Client{
		name:    cfg.Name,
		url:     cfg.URL,
		city:    cfg.City,
		adapter: cfg.Adapter,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		logger: logger,
	}
}

// Name returns the source label.
func (c *Client) Name() string { return c.name }

// Fetch retrieves the feed and maps every element through the adapter,
// tagging each record with the feed's city.
func (c *Client) Fetch(ctx context.Context) ([]domain.SourceRecord, error) {
	raws, err := c.fetchRaw(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]domain.SourceRecord, 0, len(raws))
	for _, raw := range raws {
		rec := c.adapter(raw)
		rec.City = c.city
		records = append(records, rec)
	}
	c.logger.Debug("feed fetched", "source", c.name, "count", len(records))
	return records, nil
}

func (c *Client) fetchRaw(ctx context.Context) ([]domain.RawStationRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s feed request: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s feed error: status %d: %s", c.name, resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s feed read: %w", c.name, err)
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("%s feed decode: %w", c.name, err)
	}
	return records, nil
}

// decodeRecords accepts a bare JSON array, or an object wrapping the stations
// under "retVal" either as an array or as a map keyed by sno.
func decodeRecords(body []byte) ([]domain.RawStationRecord, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}

	if body[0] == '[' {
		var records []domain.RawStationRecord
		if err := unmarshalNumbers(body, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var wrapper struct {
		RetVal json.RawMessage `json:"retVal"`
	}
	if err := unmarshalNumbers(body, &wrapper); err != nil {
		return nil, err
	}
	retVal := bytes.TrimSpace(wrapper.RetVal)
	if len(retVal) == 0 {
		return nil, errors.New("object body without retVal")
	}
	if retVal[0] == '[' {
		var records []domain.RawStationRecord
		if err := unmarshalNumbers(retVal, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var keyed map[string]domain.RawStationRecord
	if err := unmarshalNumbers(retVal, &keyed); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	records := make([]domain.RawStationRecord, 0, len(keys))
	for _, k := range keys {
		records = append(records, keyed[k])
	}
	return records, nil
}

func unmarshalNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
