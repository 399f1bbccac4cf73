package cmd

import (
	"context"
	"fmt"
	"time"

	"project-manager/core/agol"
	"project-manager/core/config"
	"project-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// tokenCmd verifies the configured credentials by forcing one token acquisition.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Verify portal credentials by acquiring a token",
	Long: `Acquires a token from the configured portal with the configured
credentials and reports the result. Useful to validate an .env file before
starting the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		l, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		client := agol.NewClient(cfg.ArcGIS)

		start := time.Now()
		token, err := client.EnsureToken(context.Background())
		if err != nil {
			return fmt.Errorf("token acquisition failed: %w", err)
		}

		l.Info("Token acquired",
			zap.String("portal", cfg.ArcGIS.Portal),
			zap.String("username", cfg.ArcGIS.Username),
			zap.Int("token_length", len(token)),
			zap.Duration("took", time.Since(start)),
		)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(tokenCmd)
}
