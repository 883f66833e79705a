package fundament

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

func TestGetStatements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/statements/AAPL", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"ticker": "AAPL",
			"operating_margin": 30.2,
			"net_income": 96995000000,
			"total_equity": 62146000000,
			"share_repurchase": -77550000000
		}`))
	}))
	defer srv.Close()

	stmts, err := testClient(srv.URL).GetStatements(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", stmts.Ticker)
	require.NotNil(t, stmts.OperatingMargin)
	assert.Equal(t, 30.2, *stmts.OperatingMargin)
	require.NotNil(t, stmts.ShareRepurchase)
	assert.Equal(t, -77550000000.0, *stmts.ShareRepurchase)
	assert.Nil(t, stmts.ProfitMargin)
	assert.Nil(t, stmts.EBITDA)
}

const keyStatsFixture = `
<html><body>
<table class="stats">
  <tr><td>ESG Score</td><td>71</td></tr>
  <tr><td>Controversy Level</td><td>2</td></tr>
  <tr><td>Insider Ownership</td><td>0.07%</td></tr>
  <tr><td>Forward Revenue Growth</td><td>6.3%</td></tr>
  <tr><td>Net Debt / EBITDA</td><td>0.54</td></tr>
  <tr><td>Interest Coverage</td><td>—</td></tr>
  <tr><td>Some Unknown Row</td><td>123</td></tr>
  <tr><td>Margin Stability</td><td>n/a</td></tr>
</table>
</body></html>`

func TestGetKeyStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats/AAPL", r.URL.Path)
		w.Write([]byte(keyStatsFixture))
	}))
	defer srv.Close()

	stats, err := testClient(srv.URL).GetKeyStats(context.Background(), "AAPL")
	require.NoError(t, err)

	require.NotNil(t, stats.ESGScore)
	assert.Equal(t, 71.0, *stats.ESGScore)
	require.NotNil(t, stats.ControversyLevel)
	assert.Equal(t, 2.0, *stats.ControversyLevel)
	require.NotNil(t, stats.InsiderOwnership)
	assert.Equal(t, 0.07, *stats.InsiderOwnership)
	require.NotNil(t, stats.ForwardRevenueGrowth)
	assert.Equal(t, 6.3, *stats.ForwardRevenueGrowth)
	require.NotNil(t, stats.NetDebtToEBITDA)
	assert.Equal(t, 0.54, *stats.NetDebtToEBITDA)

	// dashed-out and n/a rows are skipped
	assert.Nil(t, stats.InterestCover)
	assert.Nil(t, stats.MarginStability)
}

func TestParseKeyStatsHTMLGarbage(t *testing.T) {
	stats, parsed := parseKeyStatsHTML("<html><body>not a table</body></html>", "X")
	assert.Equal(t, 0, parsed)
	assert.Nil(t, stats.ESGScore)
}

func TestParseStatValue(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"71", 71, true},
		{"15.4%", 15.4, true},
		{"1,234.5", 1234.5, true},
		{" 0.54 ", 0.54, true},
		{"-3.2%", -3.2, true},
		{"-", 0, false},
		{"—", 0, false},
		{"N/A", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		v, ok := parseStatValue(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, v, "input %q", tc.in)
		}
	}
}
