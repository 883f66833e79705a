package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/equitylens/equitylens/internal/contracts"
	"github.com/equitylens/equitylens/internal/external/fundament"
	"github.com/equitylens/equitylens/internal/external/marketd"
	"github.com/equitylens/equitylens/internal/service"
	"github.com/equitylens/equitylens/pkg/config"
	"github.com/equitylens/equitylens/pkg/logger"
	"github.com/equitylens/equitylens/pkg/redis"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score [ticker...]",
	Short: "Score one or more tickers from the command line",
	Long: `Fetches, normalizes and scores the given tickers and prints the
pillar breakdown.

Example:
  go run ./cmd/equitylens score AAPL
  go run ./cmd/equitylens score AAPL MSFT --opportunity
  go run ./cmd/equitylens score AAPL --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScore,
}

var (
	scoreOpportunity bool
	scoreJSON        bool
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	// Flags
	scoreCmd.Flags().BoolVar(&scoreOpportunity, "opportunity", false, "Include the opportunity series summary")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Print the raw payload as JSON")
}

func runScore(cmd *cobra.Command, args []string) error {
	if !scoreJSON {
		fmt.Println("=== EquityLens Score ===")
	}

	ctx := cmd.Context()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
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

	// 4. Create the scoring service (no persistence from the CLI)
	marketClient := marketd.NewClient(cfg.MarketData, log)
	fundaClient := fundament.NewClient(cfg.Fundamentals, log)
	svc := service.New(marketClient, fundaClient, cache, nil, cfg.Scoring, log)

	// 5. Score each ticker
	failed := 0
	for _, ticker := range args {
		payload, err := svc.Score(ctx, ticker, scoreOpportunity)
		if err != nil {
			fmt.Printf("\n❌ %s: %v\n", strings.ToUpper(ticker), err)
			failed++
			continue
		}
		if scoreJSON {
			out, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal payload: %w", err)
			}
			fmt.Println(string(out))
			continue
		}
		printPayload(payload)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tickers failed", failed, len(args))
	}
	return nil
}

func printPayload(p contracts.ScorePayload) {
	fmt.Printf("\n📊 %s\n", p.Ticker)
	fmt.Printf("  Score:     %d (adjusted %d, %s)\n", p.Score, p.ScoreAdjusted, p.Color)
	verdict := p.Verdict
	if p.VerdictReason != "" {
		verdict += " " + p.VerdictReason
	}
	fmt.Printf("  Verdict:   %s\n", verdict)
	fmt.Printf("  Coverage:  %d%%\n", p.Coverage)
	fmt.Println("  Pillars:")
	fmt.Printf("    Quality    %5.1f / %.0f\n", p.Subscores.Quality, contracts.MaxQuality)
	fmt.Printf("    Safety     %5.1f / %.0f\n", p.Subscores.Safety, contracts.MaxSafety)
	fmt.Printf("    Valuation  %5.1f / %.0f\n", p.Subscores.Valuation, contracts.MaxValuation)
	fmt.Printf("    Growth     %5.1f / %.0f\n", p.Subscores.Growth, contracts.MaxGrowth)
	fmt.Printf("    Momentum   %5.1f / %.0f\n", p.Subscores.Momentum, contracts.MaxMomentum)
	fmt.Printf("    Moat       %5.1f / %.0f\n", p.Subscores.Moat, contracts.MaxMoat)
	fmt.Printf("    ESG        %5.1f / %.0f\n", p.Subscores.ESG, contracts.MaxESG)
	fmt.Printf("    Governance %5.1f / %.0f\n", p.Subscores.Governance, contracts.MaxGovernance)

	if len(p.ReasonsPositive) > 0 {
		fmt.Printf("  Positives: %s\n", strings.Join(p.ReasonsPositive, ", "))
	}
	if len(p.RedFlags) > 0 {
		fmt.Printf("  Red flags: %s\n", strings.Join(p.RedFlags, ", "))
	}
	if n := len(p.OpportunitySeries); n > 0 {
		last := p.OpportunitySeries[n-1]
		fmt.Printf("  Opportunity: %d points, latest %d at close %.2f\n", n, last.Opportunity, last.Close)
	}
}
