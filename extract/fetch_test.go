package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/keroloshany47/retail-etl/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("app_id") {
		case "":
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": true, "message": "missing_app_id"}`))
		case "garbage":
			w.Write([]byte("<html>not json</html>"))
		case "slow":
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`{"base":"USD","timestamp":1,"rates":{}}`))
		default:
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"base":"USD","timestamp":1704067200,"rates":{"USD":1,"EGP":49.5,"EUR":0.91}}`))
		}
	}))
}

func getTestConfig(baseURL, key string) *config.Config {
	return &config.Config{
		API: config.APIConfig{
			BaseURL: baseURL,
			Key:     key,
			Timeout: 5 * time.Second,
		},
		Extract: config.ExtractConfig{
			Backoff: config.BackoffConfig{
				RetryWaitMin: time.Millisecond,
				RetryWaitMax: 2 * time.Millisecond,
				RetryMax:     0,
			},
		},
	}
}

func getTestLogger(buffer *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buffer, nil))
}

func TestNewRatesClient(t *testing.T) {
	cfg := getTestConfig("http://example.invalid/latest.json", "key")
	client := NewRatesClient(cfg, getTestLogger(&bytes.Buffer{}))

	assert.Equal(t, "key", client.apiKey)
	assert.Equal(t, 0, client.HTTPClient.RetryMax)
	assert.Equal(t, 5*time.Second, client.HTTPClient.HTTPClient.Timeout)
}

func TestRatesClient_GetLatest(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	tests := []struct {
		name    string
		key     string
		timeout time.Duration
		want    *LatestRates
		wantErr string
	}{
		{
			name: "success",
			key:  "valid",
			want: &LatestRates{Base: "USD", Timestamp: 1704067200, Rates: map[string]float64{"USD": 1, "EGP": 49.5, "EUR": 0.91}},
		},
		{
			name:    "missing key",
			key:     "",
			wantErr: "API_KEY",
		},
		{
			name:    "malformed body",
			key:     "garbage",
			wantErr: "decode",
		},
		{
			name:    "timeout",
			key:     "slow",
			timeout: 20 * time.Millisecond,
			wantErr: "failed to fetch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := getTestConfig(server.URL+"/api/latest.json", tt.key)
			if tt.timeout > 0 {
				cfg.API.Timeout = tt.timeout
			}
			client := NewRatesClient(cfg, getTestLogger(&bytes.Buffer{}))

			got, err := client.GetLatest(context.Background())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRatesClient_FetchData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Not found"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("test content"))
	}))
	defer server.Close()

	client := NewRatesClient(getTestConfig(server.URL, "key"), getTestLogger(&bytes.Buffer{}))
	client.HTTPClient = retryablehttp.NewClient()
	client.HTTPClient.HTTPClient = server.Client()

	body, err := client.FetchData(context.Background(), server.URL, "test description")
	assert.NoError(t, err)
	assert.Equal(t, []byte("test content"), body)

	_, err = client.FetchData(context.Background(), server.URL+"/missing", "missing file")
	assert.ErrorContains(t, err, "404")
}

func TestLatestRates_Table(t *testing.T) {
	latest := &LatestRates{Base: "USD", Timestamp: 42, Rates: map[string]float64{"EGP": 49.5, "AED": 3.67}}

	tbl, err := latest.Table()
	require.NoError(t, err)

	assert.Equal(t, []string{"base", "timestamp", "rates"}, tbl.Columns)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "USD", tbl.Value(0, "base"))
	assert.Equal(t, "42", tbl.Value(0, "timestamp"))

	var rates map[string]float64
	require.NoError(t, json.Unmarshal([]byte(tbl.Value(0, "rates")), &rates))
	assert.Equal(t, latest.Rates, rates)

	empty, err := (&LatestRates{}).Table()
	require.NoError(t, err)
	assert.Equal(t, "{}", empty.Value(0, "rates"))
}
