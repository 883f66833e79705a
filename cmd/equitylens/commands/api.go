package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/equitylens/equitylens/internal/api"
	"github.com/equitylens/equitylens/internal/api/handlers"
	"github.com/equitylens/equitylens/internal/external/fundament"
	"github.com/equitylens/equitylens/internal/external/marketd"
	"github.com/equitylens/equitylens/internal/service"
	"github.com/equitylens/equitylens/internal/snapshot"
	"github.com/equitylens/equitylens/pkg/config"
	"github.com/equitylens/equitylens/pkg/database"
	"github.com/equitylens/equitylens/pkg/logger"
	"github.com/equitylens/equitylens/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the scoring API server",
	Long: `Starts the REST API server.

This command:
- Starts the HTTP API server
- Serves score, opportunity and diagnostics endpoints
- Serves persisted score history when Postgres is configured

Endpoints:
  GET /health                          - Health check
  GET /api/score/{ticker}              - Score one ticker
  GET /api/score/{ticker}/opportunity  - Opportunity series
  GET /api/score/{ticker}/diag         - Bundle diagnostics
  GET /api/score/{ticker}/history      - Persisted score history
  GET /api/scores                      - Latest score per ticker

Example:
  go run ./cmd/equitylens api
  go run ./cmd/equitylens api --port 8090`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== EquityLens API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to Redis (degrades to a pass-through cache when disabled)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	cache := redis.NewCache(redisClient, "equitylens")
	limiter := redis.NewRateLimiter(redisClient, "equitylens")

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
		log.Warn("DATABASE_URL not set, score history disabled")
	}

	// 5. Create provider clients
	marketClient := marketd.NewClient(cfg.MarketData, log)
	fundaClient := fundament.NewClient(cfg.Fundamentals, log)

	// 6. Create scoring service
	svc := service.New(marketClient, fundaClient, cache, store, cfg.Scoring, log)

	// 7. Create handler
	scoreHandler := handlers.NewScoreHandler(svc, log)

	// 8. Create router
	router := api.NewRouter(scoreHandler, limiter, log)

	// 9. Create server
	server := api.New(cfg, log, router)

	// 10. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET /health")
	fmt.Println("  GET /api/score/{ticker}")
	fmt.Println("  GET /api/score/{ticker}/opportunity")
	fmt.Println("  GET /api/score/{ticker}/diag")
	fmt.Println("  GET /api/score/{ticker}/history")
	fmt.Println("  GET /api/scores")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
