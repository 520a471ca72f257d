package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/komsit37/screener/pkg/screener/universe"
)

func newUniverseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "universe",
		Short: "Manage the symbol universe file",
	}

	var (
		url string
		out string
	)
	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Scrape the S&P 500 constituents into the universe file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				url = cfg.Universe.SourceURL
			}
			if out == "" {
				out = cfg.Universe.Path
			}
			u, err := universe.Scrape(cmd.Context(), nil, url)
			if err != nil {
				return err
			}
			if err := universe.Save(out, u); err != nil {
				return fmt.Errorf("save universe: %w", err)
			}
			log.Info().Int("count", len(u.Symbols)).Str("file", out).Msg("universe refreshed")
			return nil
		},
	}
	refresh.Flags().StringVar(&url, "url", "", "constituents page (default universe.source_url)")
	refresh.Flags().StringVarP(&out, "output", "o", "", "universe file to write (default universe.path)")

	var symbols string
	list := &cobra.Command{
		Use:   "list",
		Short: "Print the symbols the backend would fetch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			syms, err := universeSymbols(symbols)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(syms, ","))
			return nil
		},
	}
	list.Flags().StringVarP(&symbols, "symbols", "s", "", "symbol filter (default universe.symbols)")

	cmd.AddCommand(refresh, list)
	return cmd
}
