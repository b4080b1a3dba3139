package epss

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.first.org/data/v1/epss"
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 1 << 20
)

type epssResponse struct {
	Data any `json:"data"`
}

// Client fetches EPSS scores from the FIRST API, one CVE per request.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	Logger     *zap.Logger
}

// NewClient returns a client. Empty baseURL, zero timeout and nil logger
// fall back to the defaults.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		BaseURL:    baseURL,
		Logger:     logger,
	}
}

// Fetch queries the score of cveID on date (YYYY-MM-DD). It never returns an
// error: every failure is reported as a Result variant.
func (c *Client) Fetch(cveID, date string) Result {
	log := c.logger().With(zap.String("cve", cveID), zap.String("date", date))

	body, err := c.get(cveID, date, log)
	if err != nil {
		log.Warn("epss fetch failed", zap.Error(err))
		return TransportError{Message: err.Error()}
	}

	res := parseRecord(body.Data)
	if m, ok := res.(MalformedResponse); ok {
		log.Warn("epss response malformed", zap.String("reason", m.Message))
	}
	return res
}

func (c *Client) get(cveID, date string, log *zap.Logger) (*epssResponse, error) {
	params := url.Values{}
	params.Set("cve", cveID)
	params.Set("date", date)
	params.Set("envelope", "true")
	params.Set("pretty", "true")

	req, err := http.NewRequest(http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("epss request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("epss request: %w", err)
	}
	defer resp.Body.Close()
	log.Debug("epss response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("epss api: status %s", resp.Status)
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))
	dec.UseNumber()
	var body epssResponse
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("epss decode: %w", err)
	}
	return &body, nil
}

// parseRecord reads score and percentile from the first element of data.
func parseRecord(data any) Result {
	if isEmpty(data) {
		return NoData{}
	}
	records, ok := data.([]any)
	if !ok {
		return MalformedResponse{Message: fmt.Sprintf("epss data: expected array, got %T", data)}
	}
	record, ok := records[0].(map[string]any)
	if !ok {
		return MalformedResponse{Message: fmt.Sprintf("epss record: expected object, got %T", records[0])}
	}

	score, err := numberField(record, "epss")
	if err != nil {
		return MalformedResponse{Message: err.Error()}
	}
	percentile, err := numberField(record, "percentile")
	if err != nil {
		return MalformedResponse{Message: err.Error()}
	}
	date, _ := record["date"].(string)
	return Success{Score: score, Percentile: percentile, Date: date}
}

func numberField(record map[string]any, key string) (float64, error) {
	raw, ok := record[key]
	if !ok {
		return 0, fmt.Errorf("epss record: missing field %q", key)
	}
	var (
		v   float64
		err error
	)
	switch n := raw.(type) {
	case string:
		v, err = strconv.ParseFloat(strings.TrimSpace(n), 64)
	case json.Number:
		v, err = n.Float64()
	default:
		return 0, fmt.Errorf("epss record: field %q has type %T", key, raw)
	}
	if err != nil {
		return 0, fmt.Errorf("epss record: field %q is not numeric: %v", key, raw)
	}
	if math.IsNaN(v) || v < 0 || v > 1 {
		return 0, fmt.Errorf("epss record: field %q out of range: %v", key, raw)
	}
	return v, nil
}

// isEmpty treats a missing, null, zero or zero-length data value as no data.
func isEmpty(data any) bool {
	switch d := data.(type) {
	case nil:
		return true
	case []any:
		return len(d) == 0
	case map[string]any:
		return len(d) == 0
	case string:
		return d == ""
	case bool:
		return !d
	case json.Number:
		f, err := d.Float64()
		return err == nil && f == 0
	}
	return false
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return &http.Client{Timeout: DefaultTimeout}
	}
	return c.HTTPClient
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
