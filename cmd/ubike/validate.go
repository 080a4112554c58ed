package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/adapter/file"
	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/config"
	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/domain"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a stations file and print a per-city summary",
		Long: `Check a persisted stations file: every sno non-empty and unique, every
city known, counts non-negative, and coordinates in range. Defaults to
OUTPUT_PATH when no file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := config.FromEnv()
				if err != nil {
					return err
				}
				path = cfg.OutputPath
			}

			stations, err := file.ReadFile(path)
			if err != nil {
				return err
			}
			sum := domain.CheckSnapshot(stations)
			printSummary(cmd.OutOrStdout(), path, sum)

			if len(sum.Problems) > 0 {
				return fmt.Errorf("%s: %d problem(s)", path, len(sum.Problems))
			}
			return nil
		},
	}
}

func printSummary(w io.Writer, path string, sum domain.SnapshotSummary) {
	fmt.Fprintf(w, "%s: %d stations\n", path, sum.Total)

	cities := make([]string, 0, len(sum.ByCity))
	for c := range sum.ByCity {
		cities = append(cities, string(c))
	}
	sort.Strings(cities)
	for _, c := range cities {
		fmt.Fprintf(w, "  %-10s %d\n", c, sum.ByCity[domain.City(c)])
	}

	for _, p := range sum.Problems {
		fmt.Fprintf(w, "  FAIL %s\n", p)
	}
	if len(sum.Problems) == 0 {
		fmt.Fprintln(w, "  PASS")
	}
}
