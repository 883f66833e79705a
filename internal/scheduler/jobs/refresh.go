// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"

	"github.com/equitylens/equitylens/internal/service"
	"github.com/equitylens/equitylens/pkg/logger"
)

// WatchlistRefreshJob rescores the configured watchlist so cached
// payloads and persisted snapshots stay fresh.
type WatchlistRefreshJob struct {
	service  *service.Service
	logger   *logger.Logger
	schedule string
}

// NewWatchlistRefreshJob creates the watchlist refresh job.
func NewWatchlistRefreshJob(svc *service.Service, schedule string, log *logger.Logger) *WatchlistRefreshJob {
	return &WatchlistRefreshJob{
		service:  svc,
		logger:   log,
		schedule: schedule,
	}
}

// Name returns the job name.
func (j *WatchlistRefreshJob) Name() string {
	return "watchlist_refresh"
}

// Schedule returns the configured cron expression.
func (j *WatchlistRefreshJob) Schedule() string {
	return j.schedule
}

// Run rescores every watchlist ticker.
func (j *WatchlistRefreshJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled watchlist refresh")
	return j.service.RefreshWatchlist(ctx)
}
