package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"finance-ledger/internal/config"
	"finance-ledger/internal/database"
	"finance-ledger/internal/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var cfgFile string

// Execute runs the finance-ledger CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree with the serve and migrate subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "finance-ledger",
		Short:         "Personal finance ledger server",
		Long:          `finance-ledger serves the accounts, categories, transactions and wallets API and its web UI.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ./config.yaml)")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewMigrateCmd())
	return rootCmd
}

// app holds what every subcommand opens: configuration, logger and database.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	db      *gorm.DB
	closers []io.Closer
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, logCloser, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)

	db, err := database.Init(cfg.Database, log)
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}

	return &app{cfg: cfg, log: log, db: db, closers: []io.Closer{logCloser}}, nil
}

func (a *app) Close() {
	if err := database.Close(a.db); err != nil {
		a.log.Warn("close database", "err", err)
	}
	for _, c := range a.closers {
		_ = c.Close()
	}
}
