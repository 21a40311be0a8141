package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/allspots/spots-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "spots-cli",
	Short: "POI collection maintenance pipeline",
	Long:  "Imports points of interest from OpenStreetMap and other sources into the spots collection, and reconciles duplicates so each real-world place has exactly one record.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
