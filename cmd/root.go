package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/netfuse/capsule-sync/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "capsule-sync",
	Short: "Synthesis to Capsule CRM call sync",
	Long:  "Fetches call detail records from the Synthesis telephony platform, matches each call leg to a Capsule CRM party by phone number, and writes deduplicated history notes.",
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
