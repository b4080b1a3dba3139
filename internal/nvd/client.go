package nvd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://services.nvd.nist.gov/rest/json/cves/2.0"
	DefaultTimeout = 15 * time.Second
)

type cvssMetric struct {
	Type     string `json:"type"`
	CVSSData struct {
		VectorString string `json:"vectorString"`
	} `json:"cvssData"`
}

type nvdResponse struct {
	Vulnerabilities []struct {
		CVE struct {
			Metrics struct {
				CVSSMetricV31 []cvssMetric `json:"cvssMetricV31"`
				CVSSMetricV30 []cvssMetric `json:"cvssMetricV30"`
			} `json:"metrics"`
		} `json:"cve"`
	} `json:"vulnerabilities"`
}

// Client fetches CVE data from NVD. Optional APIKey enables higher rate limits.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Logger     *zap.Logger
}

// NewClient returns a client. apiKey is optional; empty baseURL, zero timeout
// and nil logger use the defaults.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
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
		APIKey:     apiKey,
		Logger:     logger,
	}
}

// FetchCVSSV3Vector returns the CVSS v3.1 or v3.0 vector string for the given
// CVE ID, or "" when NVD has none.
func (c *Client) FetchCVSSV3Vector(cveID string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, c.BaseURL+"?cveId="+url.QueryEscape(cveID), nil)
	if err != nil {
		return "", fmt.Errorf("nvd request: %w", err)
	}
	if c.APIKey != "" {
		req.Header.Set("apiKey", c.APIKey)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("nvd request: %w", err)
	}
	defer resp.Body.Close()
	c.Logger.Debug("nvd response", zap.String("cve", cveID), zap.Int("status", resp.StatusCode))

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("nvd rate limit (429)")
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("nvd api: status %s", resp.Status)
	}
	var body nvdResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("nvd decode: %w", err)
	}
	if len(body.Vulnerabilities) == 0 {
		return "", nil
	}
	metrics := body.Vulnerabilities[0].CVE.Metrics
	if v := pickVector(metrics.CVSSMetricV31); v != "" {
		return strings.ReplaceAll(v, `\/`, "/"), nil
	}
	return strings.ReplaceAll(pickVector(metrics.CVSSMetricV30), `\/`, "/"), nil
}

// pickVector prefers the Primary source and falls back to the first vector.
func pickVector(entries []cvssMetric) string {
	var first string
	for _, e := range entries {
		if e.CVSSData.VectorString == "" {
			continue
		}
		if strings.EqualFold(e.Type, "Primary") {
			return e.CVSSData.VectorString
		}
		if first == "" {
			first = e.CVSSData.VectorString
		}
	}
	return first
}
