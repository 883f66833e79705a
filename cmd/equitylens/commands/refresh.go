package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/equitylens/equitylens/internal/external/fundament"
	"github.com/equitylens/equitylens/internal/external/marketd"
	"github.com/equitylens/equitylens/internal/scheduler"
	"github.com/equitylens/equitylens/internal/scheduler/jobs"
	"github.com/equitylens/equitylens/internal/service"
	"github.com/equitylens/equitylens/internal/snapshot"
	"github.com/equitylens/equitylens/pkg/config"
	"github.com/equitylens/equitylens/pkg/database"
	"github.com/equitylens/equitylens/pkg/logger"
	"github.com/equitylens/equitylens/pkg/redis"
)

// refreshCmd represents the refresh command
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the configured watchlist",
	Long: `Rescores every ticker in SCORING_WATCHLIST, replacing cached
payloads and persisting fresh snapshots when Postgres is configured.

Run once and exit, or run as a daemon on the configured cron schedule
(SCORING_REFRESH_CRON).

Example:
  go run ./cmd/equitylens refresh
  go run ./cmd/equitylens refresh --daemon`,
	RunE: runRefresh,
}

var (
	refreshDaemon bool
)

func init() {
	rootCmd.AddCommand(refreshCmd)

	// Flags
	refreshCmd.Flags().BoolVar(&refreshDaemon, "daemon", false, "Keep running on the configured cron schedule")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	fmt.Println("=== EquityLens Watchlist Refresh ===")

	ctx := cmd.Context()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(cfg.Scoring.Watchlist) == 0 {
		return fmt.Errorf("SCORING_WATCHLIST is empty, nothing to refresh")
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to Redis
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	cache := redis.NewCache(redisClient, "equitylens")

	// 4. Connect to database (optional)
	var store service.Store
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		store = snapshot.NewRepository(db.Pool)
		log.Info("Connected to database")
	} else {
		log.Warn("DATABASE_URL not set, snapshots will not be persisted")
	}

	// 5. Create the scoring service
	marketClient := marketd.NewClient(cfg.MarketData, log)
	fundaClient := fundament.NewClient(cfg.Fundamentals, log)
	svc := service.New(marketClient, fundaClient, cache, store, cfg.Scoring, log)

	fmt.Printf("📋 Watchlist: %d tickers\n", len(cfg.Scoring.Watchlist))

	if !refreshDaemon {
		if err := svc.RefreshWatchlist(ctx); err != nil {
			return fmt.Errorf("refresh watchlist: %w", err)
		}
		fmt.Println("\n✅ Watchlist refreshed")
		return nil
	}

	// 6. Daemon mode: schedule the refresh job
	sched := scheduler.New(log)
	job := jobs.NewWatchlistRefreshJob(svc, cfg.Scoring.RefreshCron, log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("add refresh job: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started")
	fmt.Println("\nRegistered jobs:")
	for _, name := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Printf("\nSchedule: %s\n", cfg.Scoring.RefreshCron)
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}
