package extract

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/keroloshany47/retail-etl/config"
	"github.com/keroloshany47/retail-etl/table"
	"github.com/rotisserie/eris"
)

// RatesClient fetches the latest exchange rates.
type RatesClient struct {
	HTTPClient *retryablehttp.Client
	Logger     *slog.Logger
	BaseURL    string
	apiKey     string
}

// LatestRates is the body of the latest-rates endpoint.
type LatestRates struct {
	Base      string             `json:"base"`
	Timestamp int64              `json:"timestamp"`
	Rates     map[string]float64 `json:"rates"`
}

func NewRatesClient(cfg *config.Config, logger *slog.Logger) *RatesClient {
	client := &RatesClient{
		HTTPClient: retryablehttp.NewClient(),
		Logger:     logger,
		BaseURL:    cfg.API.BaseURL,
		apiKey:     cfg.API.Key,
	}

	client.HTTPClient.RetryWaitMin = cfg.Extract.Backoff.RetryWaitMin
	client.HTTPClient.RetryWaitMax = cfg.Extract.Backoff.RetryWaitMax
	client.HTTPClient.RetryMax = cfg.Extract.Backoff.RetryMax
	client.HTTPClient.HTTPClient.Timeout = cfg.API.Timeout
	client.HTTPClient.Logger = logger

	return client
}

// GetLatest fetches and decodes the latest rates.
func (c *RatesClient) GetLatest(ctx context.Context) (*LatestRates, error) {
	if c.apiKey == "" {
		return nil, eris.New("API_KEY env variable is not set")
	}

	rawURL, err := c.latestURL()
	if err != nil {
		return nil, err
	}

	body, err := c.FetchData(ctx, rawURL, "latest exchange rates")
	if err != nil {
		return nil, err
	}

	var latest LatestRates
	if err := json.Unmarshal(body, &latest); err != nil {
		return nil, eris.Wrap(err, "failed to decode exchange rates")
	}
	return &latest, nil
}

// FetchData handles the common logic of making the HTTP request and checking the response status
func (c *RatesClient) FetchData(ctx context.Context, url, description string) ([]byte, error) {
	body, resp, err := c.get(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to fetch %s", description)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("failed to fetch %s, status: %s, body: %s", description, resp.Status, string(body))
	}

	return body, nil
}

func (c *RatesClient) latestURL() (string, error) {
	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", eris.Wrap(err, "failed to parse URL")
	}

	query := parsedURL.Query()
	query.Set("app_id", c.apiKey)
	parsedURL.RawQuery = query.Encode()

	return parsedURL.String(), nil
}

// get fetches the URL and returns the body and response
func (c *RatesClient) get(ctx context.Context, url string) (body []byte, resp *http.Response, err error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, err
	}

	resp, err = c.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	return body, resp, nil
}

// Table turns the response into the single-row exchange_rates layout. The
// rate map is kept whole as a JSON string.
func (r *LatestRates) Table() (*table.Table, error) {
	rates := r.Rates
	if rates == nil {
		rates = map[string]float64{}
	}
	encoded, err := json.Marshal(rates)
	if err != nil {
		return nil, eris.Wrap(err, "failed to encode rates")
	}

	t := table.New("base", "timestamp", "rates")
	if err := t.AppendRow(r.Base, strconv.FormatInt(r.Timestamp, 10), string(encoded)); err != nil {
		return nil, err
	}
	return t, nil
}
