package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/equitylens/equitylens/pkg/config"
	"github.com/equitylens/equitylens/pkg/logger"
)

// testLoggerCmd represents the test-logger command
var testLoggerCmd = &cobra.Command{
	Use:   "test-logger",
	Short: "Test the structured logger",
	Long: `Tests the structured logging setup.

This command:
- Tests JSON and console output formats
- Tests log levels
- Tests structured field logging
- Tests error context logging

Example:
  go run ./cmd/equitylens test-logger
  go run ./cmd/equitylens test-logger --env production`,
	RunE: runTestLogger,
}

func init() {
	rootCmd.AddCommand(testLoggerCmd)
}

func runTestLogger(cmd *cobra.Command, args []string) error {
	fmt.Println("=== EquityLens Logger Test ===")

	// Test 1: JSON Format (Production)
	fmt.Println("1. JSON Format (Production)")
	fmt.Println("--------------------------------")
	testJSONFormat()
	fmt.Println()

	// Test 2: Console Format (Development)
	fmt.Println("2. Console Format (Development)")
	fmt.Println("--------------------------------")
	testConsoleFormat()
	fmt.Println()

	// Test 3: Structured Logging
	fmt.Println("3. Structured Logging with Fields")
	fmt.Println("--------------------------------")
	testStructuredLogging()
	fmt.Println()

	// Test 4: Error Logging
	fmt.Println("4. Error Logging")
	fmt.Println("--------------------------------")
	testErrorLogging()
	fmt.Println()

	fmt.Println("✅ All logger tests completed!")
	return nil
}

func testJSONFormat() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)
	log.Info("Service started")
	log.Warn("High memory usage detected")
	log.Error("Failed to reach market data provider")
}

func testConsoleFormat() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "debug",
		LogFormat: "console",
	}

	log := logger.New(cfg)
	log.Debug("Debugging scoring flow")
	log.Info("Request received from client")
	log.Warn("Cache miss, fetching from providers")
}

func testStructuredLogging() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	// Single field
	tickerLog := log.WithField("ticker", "AAPL")
	tickerLog.Info("Ticker scored")

	// Multiple fields
	scoreLog := log.WithFields(map[string]interface{}{
		"ticker":   "MSFT",
		"score":    67,
		"coverage": 82,
		"verdict":  "watch",
	})
	scoreLog.Info("Score persisted")

	// Chained fields
	log.WithField("module", "normalize").
		WithField("source", "fundament").
		Info("Snapshot normalized")
}

func testErrorLogging() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "error",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	// Simple error
	err := errors.New("connection timeout")
	log.WithError(err).Error("Failed to fetch statements")

	// Error with context
	log.WithError(err).
		WithFields(map[string]interface{}{
			"retry_count": 3,
			"timeout_ms":  5000,
			"endpoint":    "/v1/quote/AAPL",
		}).
		Error("Provider call failed after retries")
}
