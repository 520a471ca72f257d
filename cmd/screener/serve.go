package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/komsit37/screener/pkg/screener/cache"
	"github.com/komsit37/screener/pkg/screener/logging"
	"github.com/komsit37/screener/pkg/screener/provider"
	"github.com/komsit37/screener/pkg/screener/scheduler"
	"github.com/komsit37/screener/pkg/screener/server"
)

func newServeCmd() *cobra.Command {
	var (
		addr     string
		seedOnly bool
		noWarm   bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP backend for the screener dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := server.Options{Config: cfg.Server, Seed: seedRows(ctx)}
			if cfg.Server.AccessLogPath != "" {
				access := logging.NewAccessLogger(cfg.Server.AccessLogPath, cfg.Logging.RotationSize, cfg.Logging.RetentionDays)
				opts.AccessLogger = &access
			}

			if !seedOnly {
				symbols, err := universeSymbols("")
				if err != nil {
					return err
				}
				store, closeStore, err := openStore()
				if err != nil {
					return err
				}
				defer closeStore()

				cached := provider.NewCached(newService(), cache.New(store), func() []string { return symbols },
					cfg.Cache.BatchTTL, cfg.Cache.TickerTTL)
				opts.Backend = cached

				if cfg.Scheduler.Enabled && !noWarm {
					w := scheduler.NewWarmer(cached, 0)
					if err := w.Start(cfg.Scheduler.Spec); err != nil {
						return err
					}
					defer w.Stop()
					w.RunNow()
				}
				log.Info().Int("symbols", len(symbols)).Str("cache", cfg.Cache.Driver).Msg("provider backend ready")
			}

			log.Info().Int("seed_rows", len(opts.Seed)).Msg("starting screener backend")
			return server.New(opts).ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&seedOnly, "seed-only", false, "serve only the seed rows; no provider calls")
	cmd.Flags().BoolVar(&noWarm, "no-warm", false, "disable the cache warmer")
	return cmd
}
