package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"nzbforge/internal/export"
	"nzbforge/internal/library"
	"nzbforge/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web API until interrupted",
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

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(cfg.Paths.APIBind, cfg.Paths.APIToken, exporter, names, logger)
			if err := srv.Start(runCtx); err != nil {
				return err
			}
			defer srv.Stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving API on %s (Ctrl-C to stop)\n", srv.Addr())
			<-runCtx.Done()
			return nil
		},
	}
}
