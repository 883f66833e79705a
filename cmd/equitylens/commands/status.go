package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/equitylens/equitylens/internal/snapshot"
	"github.com/equitylens/equitylens/pkg/config"
	"github.com/equitylens/equitylens/pkg/database"
	"github.com/equitylens/equitylens/pkg/redis"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service configuration and connectivity",
	Long: `Checks the configured backing services and prints a summary.

Displayed:
- Environment and provider endpoints
- Redis connectivity
- Postgres connectivity and latest persisted scores
- Watchlist and refresh schedule

Example:
  go run ./cmd/equitylens status
  go run ./cmd/equitylens status --env production`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== EquityLens Status ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	fmt.Println("\n⚙️  Configuration")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("%-15s %s\n", "Environment:", cfg.Env)
	fmt.Printf("%-15s %s\n", "Port:", cfg.Port)
	fmt.Printf("%-15s %s\n", "Market data:", cfg.MarketData.BaseURL)
	fmt.Printf("%-15s %s\n", "Fundamentals:", cfg.Fundamentals.BaseURL)

	fmt.Println("\n📅 Scheduler")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("%-15s %d tickers\n", "Watchlist:", len(cfg.Scoring.Watchlist))
	if len(cfg.Scoring.Watchlist) > 0 {
		fmt.Printf("%-15s %s\n", "", strings.Join(cfg.Scoring.Watchlist, ", "))
	}
	fmt.Printf("%-15s %s\n", "Refresh cron:", cfg.Scoring.RefreshCron)
	fmt.Printf("%-15s %v\n", "Score TTL:", cfg.Scoring.ScoreTTL)
	fmt.Printf("%-15s %v\n", "Snapshot TTL:", cfg.Scoring.SnapshotTTL)

	fmt.Println("\n🔌 Redis")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	if !cfg.Redis.Enabled {
		fmt.Println("disabled (caching is a no-op)")
	} else if redisClient, err := redis.New(cfg); err != nil {
		fmt.Printf("❌ %v\n", err)
	} else {
		defer redisClient.Close()
		fmt.Printf("✅ connected (%s:%s)\n", cfg.Redis.Host, cfg.Redis.Port)
	}

	fmt.Println("\n🗄️  Postgres")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	if cfg.Database.URL == "" {
		fmt.Println("DATABASE_URL not set (persistence disabled)")
		return nil
	}
	db, err := database.New(cfg)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return nil
	}
	defer db.Close()
	fmt.Println("✅ connected")

	repo := snapshot.NewRepository(db.Pool)
	records, err := repo.LatestAll(ctx, 10)
	if err != nil {
		fmt.Printf("❌ latest scores: %v\n", err)
		return nil
	}

	fmt.Println("\n📊 Latest Scores")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	if len(records) == 0 {
		fmt.Println("no persisted scores yet")
		return nil
	}
	for _, r := range records {
		fmt.Printf("%-8s score %3d (adj %3d)  %-8s %s\n",
			r.Ticker, r.Payload.Score, r.Payload.ScoreAdjusted,
			r.Payload.Verdict, r.ScoredAt.Format("2006-01-02"))
	}

	return nil
}
