package fundament

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// KeyStats holds ratios scraped from the provider's key-statistics page.
// These backfill fields the statement feed does not report.
type KeyStats struct {
	Ticker string

	ESGScore             *float64
	ControversyLevel     *float64
	InsiderOwnership     *float64
	ForwardRevenueGrowth *float64
	MarginStability      *float64
	ROICPersistence      *float64
	MarketShareTrend     *float64
	NetDebtToEBITDA      *float64
	InterestCover        *float64
}

// Row labels on the key-statistics page, matched case-insensitively.
var keyStatFields = map[string]func(*KeyStats, float64){
	"esg score":              func(k *KeyStats, v float64) { k.ESGScore = &v },
	"controversy level":      func(k *KeyStats, v float64) { k.ControversyLevel = &v },
	"insider ownership":      func(k *KeyStats, v float64) { k.InsiderOwnership = &v },
	"forward revenue growth": func(k *KeyStats, v float64) { k.ForwardRevenueGrowth = &v },
	"margin stability":       func(k *KeyStats, v float64) { k.MarginStability = &v },
	"roic persistence":       func(k *KeyStats, v float64) { k.ROICPersistence = &v },
	"market share trend":     func(k *KeyStats, v float64) { k.MarketShareTrend = &v },
	"net debt / ebitda":      func(k *KeyStats, v float64) { k.NetDebtToEBITDA = &v },
	"interest coverage":      func(k *KeyStats, v float64) { k.InterestCover = &v },
}

// GetKeyStats scrapes the key-statistics page for a ticker. Rows with
// unparseable or dashed-out values are skipped, not errors.
func (c *Client) GetKeyStats(ctx context.Context, ticker string) (*KeyStats, error) {
	endpoint := fmt.Sprintf("%s/stats/%s", c.baseURL, url.PathEscape(ticker))

	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fundament key stats for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fundament key stats for %s: read body: %w", ticker, err)
	}

	stats, parsed := parseKeyStatsHTML(string(body), ticker)

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"fields": parsed,
	}).Debug("Scraped key stats")
	return stats, nil
}

// parseKeyStatsHTML extracts label/value rows from the statistics tables.
func parseKeyStatsHTML(html, ticker string) (*KeyStats, int) {
	stats := &KeyStats{Ticker: ticker}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return stats, 0
	}

	parsed := 0
	doc.Find("table.stats tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		label := strings.ToLower(strings.TrimSpace(cells.Eq(0).Text()))
		set, known := keyStatFields[label]
		if !known {
			return
		}

		v, ok := parseStatValue(cells.Eq(1).Text())
		if !ok {
			return
		}
		set(stats, v)
		parsed++
	})

	return stats, parsed
}

// parseStatValue handles the page's number formats: thousands separators,
// a trailing percent sign and dash placeholders for missing data.
func parseStatValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "—" || strings.EqualFold(s, "n/a") {
		return 0, false
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
