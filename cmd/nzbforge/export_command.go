package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"nzbforge/internal/export"
	"nzbforge/internal/library"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var push bool
	var limit int

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every release in the catalog as NZB files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			opts, err := ctx.exportOptions()
			if err != nil {
				return err
			}
			names, err := ctx.names()
			if err != nil {
				return err
			}

			store, err := library.Open(cfg.Paths.DatabasePath, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			exporter := export.New(store, names, opts, logger)
			summary, err := exporter.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderSummaryTable(summary))

			if push {
				if limit <= 0 {
					limit = cfg.Export.Limit
				}
				return pushNames(cmd, ctx, pushTargetAll, limit, summary.SeriesEpisodes)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&push, "push", false, "Push exported titles to Radarr/Sonarr after the run")
	cmd.Flags().IntVar(&limit, "limit", 0, "Cap the number of titles pushed per service (0 uses export.limit)")
	return cmd
}

func renderSummaryTable(summary *export.Summary) string {
	rows := [][]string{
		{"Run ID", summary.RunID},
		{"Releases", strconv.Itoa(summary.Releases)},
		{"Exported", strconv.Itoa(summary.Exported)},
		{"Skipped", strconv.Itoa(summary.Skipped)},
		{"Segments", strconv.Itoa(summary.Segments)},
		{"Bytes", strconv.FormatInt(summary.Bytes, 10)},
		{"Movie titles", strconv.Itoa(summary.MovieTitles)},
		{"Series titles", strconv.Itoa(summary.SeriesTitles)},
		{"Duration", summary.Duration.Round(summaryDurationPrecision).String()},
	}
	return renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}
