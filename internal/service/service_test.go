package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equitylens/equitylens/internal/contracts"
	"github.com/equitylens/equitylens/internal/external/fundament"
	"github.com/equitylens/equitylens/internal/external/marketd"
	"github.com/equitylens/equitylens/internal/snapshot"
	"github.com/equitylens/equitylens/pkg/config"
	"github.com/equitylens/equitylens/pkg/logger"
	"github.com/equitylens/equitylens/pkg/redis"
)

func f(v float64) *float64 { return &v }

type fakeMarket struct {
	quote    *marketd.Quote
	chart    *marketd.Chart
	quoteErr error
	chartErr error
}

func (m *fakeMarket) GetQuote(ctx context.Context, ticker string) (*marketd.Quote, error) {
	if m.quoteErr != nil {
		return nil, m.quoteErr
	}
	return m.quote, nil
}

func (m *fakeMarket) GetChart(ctx context.Context, ticker string, days int) (*marketd.Chart, error) {
	if m.chartErr != nil {
		return nil, m.chartErr
	}
	return m.chart, nil
}

type fakeFunda struct {
	stmts    *fundament.Statements
	stats    *fundament.KeyStats
	stmtsErr error
	statsErr error
}

func (f *fakeFunda) GetStatements(ctx context.Context, ticker string) (*fundament.Statements, error) {
	if f.stmtsErr != nil {
		return nil, f.stmtsErr
	}
	return f.stmts, nil
}

func (f *fakeFunda) GetKeyStats(ctx context.Context, ticker string) (*fundament.KeyStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.stats, nil
}

type fakeStore struct {
	saved   []contracts.ScorePayload
	saveErr error
}

func (s *fakeStore) Save(ctx context.Context, payload contracts.ScorePayload, sources []string, scoredAt time.Time) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, payload)
	return nil
}

func (s *fakeStore) Latest(ctx context.Context, ticker string) (*snapshot.Record, error) {
	return nil, snapshot.ErrNotFound
}

func (s *fakeStore) History(ctx context.Context, ticker string, limit int) ([]snapshot.Record, error) {
	return nil, nil
}

func (s *fakeStore) LatestAll(ctx context.Context, limit int) ([]snapshot.Record, error) {
	return nil, nil
}

func noopCache(t *testing.T) *redis.Cache {
	t.Helper()
	client, err := redis.New(&config.Config{})
	require.NoError(t, err)
	return redis.NewCache(client, "test")
}

func newService(t *testing.T, market MarketData, funda Fundamentals, store Store, cfg config.ScoringConfig) *Service {
	t.Helper()
	return New(market, funda, noopCache(t), store, cfg, logger.Nop())
}

func healthyMarket() *fakeMarket {
	closes := make([]float64, 300)
	stamps := make([]int64, 300)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.2
		stamps[i] = int64(1600000000 + i*86400)
	}
	return &fakeMarket{
		quote: &marketd.Quote{
			Ticker:     "AAPL",
			LastClose:  f(160),
			MarketCap:  f(2.5e12),
			TrailingPE: f(27),
			FCFYield:   f(3.5), // percent form
		},
		chart: &marketd.Chart{Ticker: "AAPL", Closes: closes, Timestamps: stamps},
	}
}

func healthyFunda() *fakeFunda {
	return &fakeFunda{
		stmts: &fundament.Statements{
			Ticker:          "AAPL",
			OperatingMargin: f(30.2),
			ReturnOnEquity:  f(26.0),
			CurrentRatio:    f(1.1),
			NetIncome:       f(97e9),
			TotalEquity:     f(62e9),
		},
		stats: &fundament.KeyStats{
			Ticker:   "AAPL",
			ESGScore: f(71),
		},
	}
}

func TestScoreHappyPath(t *testing.T) {
	store := &fakeStore{}
	svc := newService(t, healthyMarket(), healthyFunda(), store, config.ScoringConfig{})

	payload, err := svc.Score(context.Background(), "aapl", false)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", payload.Ticker)
	assert.Greater(t, payload.Score, 0)
	assert.Greater(t, payload.Coverage, 0)
	assert.NotEmpty(t, payload.Verdict)
	assert.Nil(t, payload.OpportunitySeries)

	require.Len(t, store.saved, 1)
	assert.Equal(t, "AAPL", store.saved[0].Ticker)
}

func TestScoreEmptyTicker(t *testing.T) {
	svc := newService(t, healthyMarket(), healthyFunda(), nil, config.ScoringConfig{})
	_, err := svc.Score(context.Background(), "  ", false)
	assert.Error(t, err)
}

func TestScoreAllProvidersDown(t *testing.T) {
	down := errors.New("connection refused")
	market := &fakeMarket{quoteErr: down, chartErr: down}
	funda := &fakeFunda{stmtsErr: down, statsErr: down}
	svc := newService(t, market, funda, nil, config.ScoringConfig{})

	_, err := svc.Score(context.Background(), "AAPL", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all providers failed")
}

func TestScoreDegradesOnPartialProviderFailure(t *testing.T) {
	down := errors.New("timeout")
	market := healthyMarket()
	market.chartErr = down
	funda := healthyFunda()
	funda.statsErr = down

	svc := newService(t, market, funda, nil, config.ScoringConfig{})
	payload, err := svc.Score(context.Background(), "AAPL", false)
	require.NoError(t, err)

	// No chart means no momentum fields at all.
	assert.Equal(t, 0.0, payload.Subscores.Momentum)
	assert.Greater(t, payload.Score, 0)
}

func TestScorePersistFailureIsNotFatal(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("db down")}
	svc := newService(t, healthyMarket(), healthyFunda(), store, config.ScoringConfig{})

	_, err := svc.Score(context.Background(), "AAPL", false)
	assert.NoError(t, err)
}

func TestOpportunity(t *testing.T) {
	svc := newService(t, healthyMarket(), healthyFunda(), nil, config.ScoringConfig{})

	series, err := svc.Opportunity(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Len(t, series, 300)
	for _, pt := range series {
		assert.GreaterOrEqual(t, pt.Opportunity, 0)
		assert.LessOrEqual(t, pt.Opportunity, 100)
	}
}

func TestDiagnostics(t *testing.T) {
	svc := newService(t, healthyMarket(), healthyFunda(), nil, config.ScoringConfig{})

	diag, err := svc.Diagnostics(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", diag.Ticker)
	assert.True(t, diag.Fundamentals.ROE.Present)
	assert.Equal(t, "direct:return_on_equity", diag.Fundamentals.ROE.Source)
	assert.Contains(t, diag.SourcesUsed, "marketd:quote")
	assert.Contains(t, diag.SourcesUsed, "fundament:statements")
}

func TestRefreshWatchlist(t *testing.T) {
	store := &fakeStore{}
	cfg := config.ScoringConfig{Watchlist: []string{"AAPL", "MSFT"}}
	svc := newService(t, healthyMarket(), healthyFunda(), store, cfg)

	require.NoError(t, svc.RefreshWatchlist(context.Background()))
	assert.Len(t, store.saved, 2)
}

func TestRefreshWatchlistAllFailing(t *testing.T) {
	down := errors.New("connection refused")
	market := &fakeMarket{quoteErr: down, chartErr: down}
	funda := &fakeFunda{stmtsErr: down, statsErr: down}
	cfg := config.ScoringConfig{Watchlist: []string{"AAPL", "MSFT"}}
	svc := newService(t, market, funda, nil, cfg)

	err := svc.RefreshWatchlist(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 tickers")
}

func TestRefreshWatchlistEmpty(t *testing.T) {
	svc := newService(t, healthyMarket(), healthyFunda(), nil, config.ScoringConfig{})
	assert.NoError(t, svc.RefreshWatchlist(context.Background()))
}
