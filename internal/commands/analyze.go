package commands

import (
	"encoding/json"
	"fmt"

	"github.com/Alias1177/ForecastBot/internal/config"
	"github.com/Alias1177/ForecastBot/internal/format"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	var (
		interval string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [pair]",
		Short: "Print a one-off forecast for a pair",
		Example: `  forecastbot analyze BTCUSDT
  forecastbot analyze eth-usdt --interval 4h --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pair := cfg.DefaultPair
			if len(args) == 1 {
				pair = args[0]
			}
			if interval == "" {
				interval = cfg.Interval
			}

			a := newApp(cfg)
			result, err := a.service.ForecastSymbolInterval(cmd.Context(), pair, interval)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			_, err = fmt.Fprintln(out, format.ForecastText(result))
			return err
		},
	}

	cmd.Flags().StringVarP(&interval, "interval", "i", "", "candle interval (default from INTERVAL)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the forecast as JSON")
	return cmd
}
