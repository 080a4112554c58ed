package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/adapter/feed"
	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/adapter/file"
	kafkaadapter "github.com/wanpwang1981-ux/ubike-easy-checker/internal/adapter/kafka"
	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/adapter/tdx"
	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/config"
	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/domain"
	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/observability"
	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/pipeline"
)

func newFetchCommand() *cobra.Command {
	var source, output string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch all sources and write the merged stations file",
		Args:  cobra.NoArgs,
		Example: `  ubike fetch                          # Taipei and New Taipei city feeds
  ubike fetch --source tdx             # TDX platform (needs TDX_CLIENT_ID/SECRET)
  ubike fetch --output /tmp/stations.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("source") {
				cfg.Source = config.Source(strings.ToLower(strings.TrimSpace(source)))
			}
			if cmd.Flags().Changed("output") {
				cfg.OutputPath = output
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runFetch(cmd.Context(), cfg, observability.NewLogger(cfg))
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "data source: direct or tdx (overrides DATA_SOURCE)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "stations file path (overrides OUTPUT_PATH)")
	return cmd
}

// runFetch performs one fetch run. Source failures are not errors; only a
// failed write is.
func runFetch(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	loaders := []pipeline.Loader{file.NewStore(cfg.OutputPath, logger)}
	if len(cfg.KafkaBrokers) > 0 {
		w := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		loaders = append(loaders, w)
	}

	logger.Info("fetch started", "source", cfg.Source, "output", cfg.OutputPath)
	p := pipeline.New(buildSources(cfg, logger), loaders, logger, metrics)
	res, runErr := p.Run(ctx)

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Warn("write metrics textfile failed", "path", cfg.MetricsTextfile, "error", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("fetch run: %w", runErr)
	}
	if !res.Written {
		logger.Warn("no stations written", "output", cfg.OutputPath)
	}
	return nil
}

// buildSources returns the sources for the configured data source, in merge
// priority order.
func buildSources(cfg *config.Config, logger *slog.Logger) []pipeline.Source {
	if cfg.Source == config.SourceTDX {
		auth := tdx.NewAuthenticator(cfg.TDXAuthURL, cfg.TDXClientID, cfg.TDXClientSecret, cfg.RequestTimeout, logger)
		return []pipeline.Source{
			tdx.NewClient(cfg.TDXBaseURL, cfg.TDXCities, auth, cfg.RequestTimeout, logger),
		}
	}

	return []pipeline.Source{
		feed.NewClient(feed.Config{
			Name:               "taipei",
			URL:                cfg.TaipeiURL,
			City:               domain.CityTaipei,
			Adapter:            domain.TaipeiRecord,
			Timeout:            cfg.RequestTimeout,
			InsecureSkipVerify: cfg.TaipeiInsecureTLS,
		}, logger),
		feed.NewClient(feed.Config{
			Name:               "new_taipei",
			URL:                cfg.NewTaipeiURL,
			City:               domain.CityNewTaipei,
			Adapter:            domain.NewTaipeiRecord,
			Timeout:            cfg.RequestTimeout,
			InsecureSkipVerify: cfg.NewTaipeiInsecureTLS,
		}, logger),
	}
}
