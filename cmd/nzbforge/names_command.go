package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"nzbforge/internal/namestore"
	"nzbforge/internal/release"
	"nzbforge/internal/services/radarr"
	"nzbforge/internal/services/sonarr"
)

const summaryDurationPrecision = 10 * time.Millisecond

type pushTarget string

const (
	pushTargetMovies pushTarget = "movies"
	pushTargetSeries pushTarget = "series"
	pushTargetAll    pushTarget = "all"
)

var titleCaser = cases.Title(language.English)

func newNamesCommand(ctx *commandContext) *cobra.Command {
	namesCmd := &cobra.Command{
		Use:   "names",
		Short: "Inspect and push the collected title lists",
	}
	namesCmd.AddCommand(newNamesListCommand(ctx))
	namesCmd.AddCommand(newNamesPushCommand(ctx))
	return namesCmd
}

func newNamesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "list [movies|series]",
		Short:     "Print a collected title list",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"movies", "series"},
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := ctx.names()
			if err != nil {
				return err
			}

			kind := args[0]
			file, _, err := namesFilesFor(kind)
			if err != nil {
				return err
			}
			titles, err := names.Load(file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(titles) == 0 {
				fmt.Fprintf(out, "No %s titles collected yet; run `nzbforge export` first.\n", kind)
				return nil
			}
			rows := make([][]string, 0, len(titles))
			for _, title := range titles {
				rows = append(rows, []string{title})
			}
			fmt.Fprintln(out, renderTable([]string{titleCaser.String(kind)}, rows, []columnAlignment{alignLeft}))
			return nil
		},
	}
}

func newNamesPushCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:       "push [movies|series|all]",
		Short:     "Queue collected titles in Radarr and Sonarr",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"movies", "series", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = cfg.Export.Limit
			}
			return pushNames(cmd, ctx, pushTarget(args[0]), limit, nil)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Cap the number of titles pushed per service (0 uses export.limit)")
	return cmd
}

func namesFilesFor(kind string) (listFile, ledgerFile string, err error) {
	switch kind {
	case "movies":
		return namestore.MovieNamesFile, namestore.MovieProcessedFile, nil
	case "series":
		return namestore.SeriesNamesFile, namestore.SeriesProcessedFile, nil
	default:
		return "", "", fmt.Errorf("unknown name list %q", kind)
	}
}

// pushNames sends pending titles to the enabled services and records the
// successful ones in the processed ledgers. episodeSpecs may be nil; it only
// exists right after an export run.
func pushNames(cmd *cobra.Command, ctx *commandContext, target pushTarget, limit int, episodeSpecs map[string][]release.EpisodeSpec) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	names, err := ctx.names()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if (target == pushTargetMovies || target == pushTargetAll) && cfg.Radarr.Enabled {
		remaining, err := names.Remaining(namestore.MovieNamesFile, namestore.MovieProcessedFile)
		if err != nil {
			return err
		}
		batch := namestore.Sample(remaining, limit)
		if len(batch) == 0 {
			fmt.Fprintln(out, "Radarr: every movie title is already processed.")
		} else {
			client, err := radarr.New(cfg.Radarr.URL, cfg.Radarr.APIKey,
				radarr.WithTimeout(time.Duration(cfg.Radarr.TimeoutSeconds)*time.Second))
			if err != nil {
				return err
			}
			service := radarr.NewService(client, cfg.RadarrDelay(), logger)
			successful := service.TriggerSearches(cmd.Context(), batch)
			if err := names.AppendProcessed(namestore.MovieProcessedFile, successful); err != nil {
				return err
			}
			fmt.Fprintf(out, "Radarr: queued %d of %d movie title(s) (%d remaining overall).\n",
				len(successful), len(batch), len(remaining)-len(successful))
		}
	}

	if (target == pushTargetSeries || target == pushTargetAll) && cfg.Sonarr.Enabled {
		remaining, err := names.Remaining(namestore.SeriesNamesFile, namestore.SeriesProcessedFile)
		if err != nil {
			return err
		}
		batch := namestore.Sample(remaining, limit)
		if len(batch) == 0 {
			fmt.Fprintln(out, "Sonarr: every series title is already processed.")
		} else {
			client, err := sonarr.New(cfg.Sonarr.URL, cfg.Sonarr.APIKey,
				sonarr.WithTimeout(time.Duration(cfg.Sonarr.TimeoutSeconds)*time.Second))
			if err != nil {
				return err
			}
			service := sonarr.NewService(client, cfg.SonarrDelay(), sonarr.DeleteScope(cfg.Sonarr.DeleteScope), logger)
			successful := service.TriggerSearches(cmd.Context(), batch, episodeSpecs)
			if err := names.AppendProcessed(namestore.SeriesProcessedFile, successful); err != nil {
				return err
			}
			fmt.Fprintf(out, "Sonarr: queued %d of %d series title(s) (%d remaining overall).\n",
				len(successful), len(batch), len(remaining)-len(successful))
		}
	}

	if !cfg.Radarr.Enabled && !cfg.Sonarr.Enabled {
		fmt.Fprintln(out, "Neither Radarr nor Sonarr is enabled in the configuration; nothing to push.")
	}
	return nil
}
