// Package cli implements certifyctl, the operator tool for the credit ledger.
package cli

import (
	"context"
	"os"

	"certifyrpg/internal/app"
	"certifyrpg/internal/config"
	"certifyrpg/internal/logger"
	"certifyrpg/internal/services"
	"certifyrpg/internal/store"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "certifyctl",
	Short: "Operate the CertifyRPG credit ledger",
	Long: `certifyctl inspects and maintains credit accounts directly against the
configured ledger store (STORE_DRIVER and DB_URL, read from the environment
or a .env file).`,
	SilenceUsage: true,
}

// openLedger is swapped in tests to point the commands at a prepared store.
var openLedger = func(ctx context.Context) (store.LedgerStore, zerolog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.InitLogger(cfg.LogLevel)
	s, err := app.OpenStore(ctx, cfg, log)
	return s, log, err
}

func withBalance(cmd *cobra.Command, fn func(ctx context.Context, balance *services.BalanceService) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, log, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(ctx, services.NewBalanceService(s, log))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
