package cli

import (
	"os"
	"os/signal"
	"syscall"

	"RSIWatch/internal/logger"
	"RSIWatch/internal/scheduler"
	"RSIWatch/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(ro *RootOptions) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard with scheduled refreshes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ro.loadConfig()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Env, serviceName)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, log, appOptions{source: source, cache: true})
			if err != nil {
				return err
			}
			defer a.Close()

			period := cfg.DefaultPeriod()
			hub := server.NewHub(log)
			srv := server.New(server.Options{
				Addr:          cfg.Dashboard.Listen,
				Symbol:        cfg.DataSource.Symbol,
				DefaultPeriod: period,
				DefaultWindow: cfg.Dashboard.Window,
			}, a.collector, a.cached, hub, log, a.telemetry)

			sched := scheduler.NewScheduler(ctx, scheduler.Options{
				Symbol:        cfg.DataSource.Symbol,
				DefaultPeriod: period,
				DefaultWindow: cfg.Dashboard.Window,
			}, a.collector, a.cached, hub, log)
			if err := sched.Register(cfg.Schedule.RefreshCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if os.Getenv("RUN_ON_START") == "true" {
				log.Info("RUN_ON_START enabled, refreshing now")
				go sched.RunNow()
			}

			log.Info("rsiwatch is running, press Ctrl+C to stop",
				zap.String("symbol", cfg.DataSource.Symbol),
				zap.String("listen", cfg.Dashboard.Listen))
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "data source override: yahoo, rest or mock")
	return cmd
}
