// Command ubike fetches YouBike 2.0 station availability for Taipei and New
// Taipei, merges it into a single stations file for the front end, and serves
// the front end for local preview.
//
// Usage:
//
//	ubike fetch [--source direct|tdx] [--output src/stations.json]
//	ubike serve [--addr :8000] [--dir .]
//	ubike validate [file]
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/adapter/tdx"
	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/config"
)

// Exit codes.
const (
	exitOK     = 0
	exitFatal  = 1
	exitConfig = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()

	if code := exitCode(err); code != exitOK {
		slog.Error("ubike failed", "error", err)
		os.Exit(code)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ubike",
		Short: "YouBike 2.0 station snapshot builder",
		Long: `ubike fetches live YouBike 2.0 station data for Taipei and New Taipei,
either from the two city open-data feeds or from the TDX platform, and writes
one merged stations file that the map front end loads.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", config.ErrInvalid, err)
	})

	root.AddCommand(newFetchCommand())
	root.AddCommand(newServeCommand())
	root.AddCommand(newValidateCommand())
	return root
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, config.ErrInvalid), errors.Is(err, tdx.ErrMissingCredentials):
		return exitConfig
	default:
		return exitFatal
	}
}
