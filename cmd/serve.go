package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finance-ledger/internal/database"
	"finance-ledger/internal/router"

	"github.com/spf13/cobra"
)

// NewServeCmd starts the HTTP server.
func NewServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if migrate || a.cfg.Database.AutoMigrate {
				if err := database.AutoMigrate(a.db); err != nil {
					return err
				}
				a.log.Info("migrations completed")
			}

			if a.cfg.Security.EncryptionKey == "" {
				a.log.Warn("security.encryption_key is empty: audit logs are stored in clear text and backups are disabled")
			}
			if err := os.MkdirAll(a.cfg.Backup.Dir, 0o755); err != nil {
				return fmt.Errorf("create backup dir: %w", err)
			}

			engine, err := router.SetupRouter(a.cfg, a.db, a.log)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              a.cfg.Addr(),
				Handler:           engine,
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      60 * time.Second,
				IdleTimeout:       60 * time.Second,
				MaxHeaderBytes:    1 << 16,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.log.Info("server listening", "addr", srv.Addr, "base_path", a.cfg.Server.BasePath)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("run server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			a.log.Info("shutdown signal received")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			a.log.Info("server stopped gracefully")
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "run schema migrations before serving")
	return cmd
}
