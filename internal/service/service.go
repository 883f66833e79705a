// Package service wires the data providers, the normalization layer and
// the scoring engine together. Everything impure lives here: HTTP
// fetches, the cache, persistence and logging. The engine itself stays
// a pure function.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/equitylens/equitylens/internal/contracts"
	"github.com/equitylens/equitylens/internal/engine"
	"github.com/equitylens/equitylens/internal/external/fundament"
	"github.com/equitylens/equitylens/internal/external/marketd"
	"github.com/equitylens/equitylens/internal/normalize"
	"github.com/equitylens/equitylens/internal/snapshot"
	"github.com/equitylens/equitylens/pkg/config"
	"github.com/equitylens/equitylens/pkg/logger"
	"github.com/equitylens/equitylens/pkg/redis"
)

// chartDays covers the 252-day range window plus the 200-day average
// warmup.
const chartDays = 500

// MarketData is the market-data provider contract.
type MarketData interface {
	GetQuote(ctx context.Context, ticker string) (*marketd.Quote, error)
	GetChart(ctx context.Context, ticker string, days int) (*marketd.Chart, error)
}

// Fundamentals is the fundamentals provider contract.
type Fundamentals interface {
	GetStatements(ctx context.Context, ticker string) (*fundament.Statements, error)
	GetKeyStats(ctx context.Context, ticker string) (*fundament.KeyStats, error)
}

// Store is the persistence contract for score snapshots.
type Store interface {
	Save(ctx context.Context, payload contracts.ScorePayload, sources []string, scoredAt time.Time) error
	Latest(ctx context.Context, ticker string) (*snapshot.Record, error)
	History(ctx context.Context, ticker string, limit int) ([]snapshot.Record, error)
	LatestAll(ctx context.Context, limit int) ([]snapshot.Record, error)
}

// Service runs the scoring pipeline for tickers.
type Service struct {
	market MarketData
	funda  Fundamentals
	cache  *redis.Cache
	store  Store
	logger *logger.Logger
	cfg    config.ScoringConfig
}

// New creates the scoring service. store may be nil when persistence is
// disabled; cache may be backed by a disabled client.
func New(market MarketData, funda Fundamentals, cache *redis.Cache, store Store, cfg config.ScoringConfig, log *logger.Logger) *Service {
	return &Service{
		market: market,
		funda:  funda,
		cache:  cache,
		store:  store,
		logger: log,
		cfg:    cfg,
	}
}

// Score fetches, normalizes and scores one ticker. Payloads without the
// opportunity series are memoized in the cache.
func (s *Service) Score(ctx context.Context, ticker string, includeOpportunity bool) (contracts.ScorePayload, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return contracts.ScorePayload{}, errors.New("ticker is required")
	}

	if !includeOpportunity {
		var cached contracts.ScorePayload
		if hit, err := s.cache.Get(ctx, redis.ScoreKey(ticker), &cached); err != nil {
			s.logger.WithError(err).WithField("ticker", ticker).Warn("Score cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	bundle, err := s.fetchBundle(ctx, ticker)
	if err != nil {
		return contracts.ScorePayload{}, err
	}

	payload := engine.Score(bundle, engine.Options{IncludeOpportunity: includeOpportunity})

	if !includeOpportunity {
		if err := s.cache.Set(ctx, redis.ScoreKey(ticker), payload, s.cfg.ScoreTTL); err != nil {
			s.logger.WithError(err).WithField("ticker", ticker).Warn("Score cache write failed")
		}
	}

	s.persist(ctx, payload, bundle.SourcesUsed)

	s.logger.WithFields(map[string]interface{}{
		"ticker":   ticker,
		"score":    payload.Score,
		"coverage": payload.Coverage,
		"verdict":  payload.Verdict,
	}).Info("Ticker scored")

	return payload, nil
}

// Opportunity returns only the opportunity series for a ticker.
func (s *Service) Opportunity(ctx context.Context, ticker string) ([]contracts.OpportunityPoint, error) {
	payload, err := s.Score(ctx, ticker, true)
	if err != nil {
		return nil, err
	}
	return payload.OpportunitySeries, nil
}

// Diagnostics exposes the normalized bundle with provenance tags.
func (s *Service) Diagnostics(ctx context.Context, ticker string) (contracts.BundleDiagnostic, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return contracts.BundleDiagnostic{}, errors.New("ticker is required")
	}

	bundle, err := s.fetchBundle(ctx, ticker)
	if err != nil {
		return contracts.BundleDiagnostic{}, err
	}
	return engine.Diagnose(bundle), nil
}

// Latest reads the newest persisted snapshot for a ticker.
func (s *Service) Latest(ctx context.Context, ticker string) (*snapshot.Record, error) {
	if s.store == nil {
		return nil, errors.New("persistence is disabled")
	}
	return s.store.Latest(ctx, strings.ToUpper(strings.TrimSpace(ticker)))
}

// History reads persisted snapshots for a ticker, newest first.
func (s *Service) History(ctx context.Context, ticker string, limit int) ([]snapshot.Record, error) {
	if s.store == nil {
		return nil, errors.New("persistence is disabled")
	}
	return s.store.History(ctx, strings.ToUpper(strings.TrimSpace(ticker)), limit)
}

// Scores reads the newest persisted snapshot per ticker.
func (s *Service) Scores(ctx context.Context, limit int) ([]snapshot.Record, error) {
	if s.store == nil {
		return nil, errors.New("persistence is disabled")
	}
	return s.store.LatestAll(ctx, limit)
}

// RefreshWatchlist rescores every configured ticker. Individual
// failures are logged and skipped; the error reports only a total loss.
func (s *Service) RefreshWatchlist(ctx context.Context) error {
	if len(s.cfg.Watchlist) == 0 {
		s.logger.Warn("Watchlist is empty, nothing to refresh")
		return nil
	}

	var failed int
	for _, ticker := range s.cfg.Watchlist {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := s.cache.Delete(ctx, redis.ScoreKey(ticker)); err != nil {
			s.logger.WithError(err).WithField("ticker", ticker).Warn("Score cache invalidation failed")
		}

		if _, err := s.Score(ctx, ticker, s.cfg.IncludeOpportunity); err != nil {
			failed++
			s.logger.WithError(err).WithField("ticker", ticker).Error("Watchlist refresh failed for ticker")
		}
	}

	if failed == len(s.cfg.Watchlist) {
		return fmt.Errorf("watchlist refresh failed for all %d tickers", failed)
	}

	s.logger.WithFields(map[string]interface{}{
		"total":  len(s.cfg.Watchlist),
		"failed": failed,
	}).Info("Watchlist refreshed")
	return nil
}

// fetchBundle assembles the raw snapshot from the providers and runs it
// through the normalization layer. The raw snapshot is cached so diag
// and opportunity requests do not refetch.
func (s *Service) fetchBundle(ctx context.Context, ticker string) (contracts.DataBundle, error) {
	var raw normalize.Snapshot
	err := s.cache.GetOrSet(ctx, redis.SnapshotKey(ticker), &raw, s.cfg.SnapshotTTL, func() (interface{}, error) {
		return s.assembleSnapshot(ctx, ticker)
	})
	if err != nil {
		return contracts.DataBundle{}, err
	}

	return normalize.Bundle(&raw)
}

// assembleSnapshot merges the provider payloads. A failing provider
// degrades the snapshot; only all providers failing is an error.
func (s *Service) assembleSnapshot(ctx context.Context, ticker string) (*normalize.Snapshot, error) {
	raw := &normalize.Snapshot{Ticker: ticker}

	quote, err := s.market.GetQuote(ctx, ticker)
	if err != nil {
		s.logger.WithError(err).WithField("ticker", ticker).Warn("Quote fetch failed")
	} else {
		mergeQuote(raw, quote)
		raw.Sources = append(raw.Sources, "marketd:quote")
	}

	chart, err := s.market.GetChart(ctx, ticker, chartDays)
	if err != nil {
		s.logger.WithError(err).WithField("ticker", ticker).Warn("Chart fetch failed")
	} else {
		raw.Closes = chart.Closes
		raw.Timestamps = chart.Timestamps
		raw.Sources = append(raw.Sources, "marketd:chart")
	}

	stmts, err := s.funda.GetStatements(ctx, ticker)
	if err != nil {
		s.logger.WithError(err).WithField("ticker", ticker).Warn("Statements fetch failed")
	} else {
		mergeStatements(raw, stmts)
		raw.Sources = append(raw.Sources, "fundament:statements")
	}

	stats, err := s.funda.GetKeyStats(ctx, ticker)
	if err != nil {
		s.logger.WithError(err).WithField("ticker", ticker).Warn("Key stats fetch failed")
	} else {
		mergeKeyStats(raw, stats)
		raw.Sources = append(raw.Sources, "fundament:keystats")
	}

	if len(raw.Sources) == 0 {
		return nil, fmt.Errorf("all providers failed for %s", ticker)
	}

	return raw, nil
}

// persist writes the payload to the snapshot store, best effort.
func (s *Service) persist(ctx context.Context, payload contracts.ScorePayload, sources []string) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, payload, sources, time.Now()); err != nil {
		s.logger.WithError(err).WithField("ticker", payload.Ticker).Warn("Snapshot persist failed")
	}
}

func mergeQuote(raw *normalize.Snapshot, q *marketd.Quote) {
	raw.LastClose = q.LastClose
	raw.MarketCap = q.MarketCap
	raw.TrailingPE = q.TrailingPE
	raw.EVToEBITDA = q.EVToEBITDA
	raw.FCFYield = q.FCFYield
	raw.EarningsYield = q.EarningsYield
	raw.BuybackYield = q.BuybackYield
}

func mergeStatements(raw *normalize.Snapshot, st *fundament.Statements) {
	raw.OperatingMargin = st.OperatingMargin
	raw.ProfitMargin = st.ProfitMargin
	raw.GrossMargin = st.GrossMargin
	raw.ReturnOnEquity = st.ReturnOnEquity
	raw.ReturnOnAssets = st.ReturnOnAssets
	raw.CurrentRatio = st.CurrentRatio
	raw.DebtToEquity = st.DebtToEquity
	raw.PayoutRatio = st.PayoutRatio
	raw.RevenueGrowth3Y = st.RevenueGrowth3Y
	raw.EPSGrowth3Y = st.EPSGrowth3Y
	raw.DividendCAGR3Y = st.DividendCAGR3Y
	raw.FCFOverNetIncome = st.FCFOverNetIncome

	raw.NetIncome = st.NetIncome
	raw.FreeCashflow = st.FreeCashflow
	raw.OperatingIncome = st.OperatingIncome
	raw.EBITDA = st.EBITDA
	raw.TotalDebt = st.TotalDebt
	raw.TotalLiabilities = st.TotalLiabilities
	raw.TotalCash = st.TotalCash
	raw.TotalAssets = st.TotalAssets
	raw.TotalEquity = st.TotalEquity
	raw.PriorEquity = st.PriorEquity
	raw.TaxExpense = st.TaxExpense
	raw.PretaxIncome = st.PretaxIncome
	raw.InterestExpense = st.InterestExpense
	raw.ShareRepurchase = st.ShareRepurchase
}

func mergeKeyStats(raw *normalize.Snapshot, ks *fundament.KeyStats) {
	raw.ESGScore = ks.ESGScore
	raw.ControversyLevel = ks.ControversyLevel
	raw.InsiderOwnership = ks.InsiderOwnership
	raw.ForwardRevenueGrowth = ks.ForwardRevenueGrowth
	raw.MarginStability = ks.MarginStability
	raw.ROICPersistence = ks.ROICPersistence
	raw.MarketShareTrend = ks.MarketShareTrend
	raw.NetDebtToEBITDA = ks.NetDebtToEBITDA
	raw.InterestCover = ks.InterestCover
}
