package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/petalworks/bloomcast/backend/pkg/config"
	"github.com/petalworks/bloomcast/backend/pkg/database"
	"github.com/petalworks/bloomcast/backend/pkg/redis"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check configuration and connectivity",
	Long: `Check that configuration loads and that the configured
backing services respond.

Example:
  go run ./cmd/bloomcast status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Bloomcast Status ===")

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("config: FAIL (%v)\n", err)
		return err
	}
	fmt.Printf("config: OK (env=%s, port=%s)\n", cfg.Env, cfg.Port)

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	// History source
	if cfg.Dataset.CSVPath != "" {
		fmt.Printf("history: CSV (%s)\n", cfg.Dataset.CSVPath)
	} else {
		db, err := database.New(cfg)
		if err != nil {
			fmt.Printf("history: Postgres FAIL (%v)\n", err)
		} else {
			defer db.Close()
			if err := db.Ping(ctx); err != nil {
				fmt.Printf("history: Postgres FAIL (%v)\n", err)
			} else {
				fmt.Println("history: Postgres OK")
			}
		}
	}

	// Redis cache
	if cfg.Redis.Enabled {
		rc, err := redis.New(cfg)
		if err != nil {
			fmt.Printf("redis: FAIL (%v)\n", err)
		} else {
			defer rc.Close()
			fmt.Println("redis: OK")
		}
	} else {
		fmt.Println("redis: disabled")
	}

	// Models
	if cfg.Models.ServerURL != "" {
		fmt.Printf("models: inference server (%s)\n", cfg.Models.ServerURL)
	} else if cfg.Models.RevenueWeights != "" && cfg.Models.ProfitWeights != "" {
		fmt.Println("models: exported linear weights")
	} else {
		fmt.Println("models: NOT CONFIGURED")
	}

	// Narration
	if cfg.Gemini.APIKey != "" {
		fmt.Printf("narration: configured (%s)\n", cfg.Gemini.Model)
	} else {
		fmt.Println("narration: disabled")
	}

	// Mandi board
	if cfg.Mandi.Enabled && cfg.Mandi.BaseURL != "" {
		fmt.Printf("mandi: enabled (%s)\n", cfg.Mandi.BaseURL)
	} else {
		fmt.Println("mandi: disabled")
	}

	return nil
}
