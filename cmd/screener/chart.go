package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/komsit37/screener/pkg/screener/render"
)

func newChartCmd() *cobra.Command {
	var (
		rf  rowFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "chart SYMBOL",
		Short: "Render a ticker's price and EPS history to PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := rf.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = row.Symbol + ".png"
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := render.RenderChart(f, row); err != nil {
				f.Close()
				os.Remove(out)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			log.Info().Str("symbol", row.Symbol).Str("file", out).Int("periods", len(row.Snapshots)).Msg("chart written")
			return nil
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default SYMBOL.png)")
	return cmd
}
