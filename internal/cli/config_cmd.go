package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newConfigCmd(ro *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ro.loadConfig()
			if err != nil {
				return err
			}
			cache := "memory"
			if cfg.Cache.RedisURL != "" {
				cache = "redis"
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "symbol\t%s\n", cfg.DataSource.Symbol)
			fmt.Fprintf(tw, "provider\t%s\n", cfg.DataSource.Provider)
			fmt.Fprintf(tw, "period\t%s\n", cfg.DefaultPeriod())
			fmt.Fprintf(tw, "window\t%d\n", cfg.Dashboard.Window)
			fmt.Fprintf(tw, "listen\t%s\n", cfg.Dashboard.Listen)
			fmt.Fprintf(tw, "cache\t%s (ttl %s)\n", cache, cfg.Cache.TTL)
			fmt.Fprintf(tw, "refresh\t%s\n", cfg.Schedule.RefreshCron)
			fmt.Fprintf(tw, "telemetry\t%t\n", cfg.Telemetry.Enabled)
			if err := tw.Flush(); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "config OK")
			return err
		},
	})
	return cmd
}
