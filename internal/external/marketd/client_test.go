package marketd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equitylens/equitylens/pkg/config"
	"github.com/equitylens/equitylens/pkg/logger"
)

func testClient(baseURL string) *Client {
	return NewClient(config.ProviderConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	}, logger.Nop())
}

func TestGetQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/quote/AAPL", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ticker":"AAPL","last_close":189.5,"trailing_pe":29.1,"fcf_yield":3.4}`))
	}))
	defer srv.Close()

	quote, err := testClient(srv.URL).GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", quote.Ticker)
	require.NotNil(t, quote.LastClose)
	assert.Equal(t, 189.5, *quote.LastClose)
	require.NotNil(t, quote.TrailingPE)
	assert.Equal(t, 29.1, *quote.TrailingPE)
	assert.Nil(t, quote.MarketCap)
	assert.Nil(t, quote.EVToEBITDA)
}

func TestGetQuoteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.http.DisableRetry()
	_, err := c.GetQuote(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestGetChart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chart/MSFT", r.URL.Path)
		assert.Equal(t, "400", r.URL.Query().Get("days"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ticker":"MSFT","timestamps":[1700000000,1700086400],"closes":[370.1,372.5]}`))
	}))
	defer srv.Close()

	chart, err := testClient(srv.URL).GetChart(context.Background(), "MSFT", 400)
	require.NoError(t, err)

	assert.Equal(t, "MSFT", chart.Ticker)
	assert.Equal(t, []float64{370.1, 372.5}, chart.Closes)
	assert.Equal(t, []int64{1700000000, 1700086400}, chart.Timestamps)
}

func TestGetChartLengthMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ticker":"MSFT","timestamps":[1700000000],"closes":[370.1,372.5]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GetChart(context.Background(), "MSFT", 10)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "closes vs")
}
