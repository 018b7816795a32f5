package cli

import (
	"fmt"

	"RSIWatch/internal/config"
	"RSIWatch/internal/logger"
	"RSIWatch/internal/model"
	"RSIWatch/internal/render"

	"github.com/spf13/cobra"
)

func newReportCmd(ro *RootOptions) *cobra.Command {
	var (
		period string
		window int
		source string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a one-shot terminal RSI report",
		Example: "  rsiwatch report --period 6mo --window 14\n" +
			"  rsiwatch report --source mock",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ro.loadConfig()
			if err != nil {
				return err
			}

			p := cfg.DefaultPeriod()
			if cmd.Flags().Changed("period") {
				if p, err = model.ParsePeriod(period); err != nil {
					return err
				}
			}
			w := cfg.Dashboard.Window
			if cmd.Flags().Changed("window") {
				w = window
			}
			if err := config.ValidateWindow(w); err != nil {
				return err
			}

			log, err := logger.New(cfg.Env, serviceName)
			if err != nil {
				return err
			}
			defer log.Sync()

			a, err := newApp(cmd.Context(), cfg, log, appOptions{source: source})
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.collector.Collect(cmd.Context(), p, w)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), render.FormatReport(snap))
			return err
		},
	}

	cmd.Flags().StringVar(&period, "period", string(model.DefaultPeriod), "lookback: 1mo, 3mo, 6mo, 1y, 2y or 5y")
	cmd.Flags().IntVar(&window, "window", config.DefaultWindow, fmt.Sprintf("RSI window (%d-%d)", config.MinWindow, config.MaxWindow))
	cmd.Flags().StringVar(&source, "source", "", "data source override: yahoo, rest or mock")
	return cmd
}
