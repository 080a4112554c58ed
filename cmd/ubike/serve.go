package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/adapter/file"
	httpadapter "github.com/wanpwang1981-ux/ubike-easy-checker/internal/adapter/http"
	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/config"
	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/observability"
)

func newServeCommand() *cobra.Command {
	var addr, dir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the front end for local preview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.HTTPAddr = addr
			}
			if cmd.Flags().Changed("dir") {
				cfg.ServeDir = dir
			}
			return runServe(cmd.Context(), cfg, observability.NewLogger(cfg))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	cmd.Flags().StringVar(&dir, "dir", "", "directory to serve (overrides SERVE_DIR)")
	return cmd
}

// runServe blocks until ctx is cancelled or the listener fails.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store := file.NewStore(cfg.OutputPath, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, cfg.ServeDir, store, observability.NewMetrics(), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	logger.Info("preview available", "url", httpadapter.PreviewURL(cfg.HTTPAddr), "dir", cfg.ServeDir)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
