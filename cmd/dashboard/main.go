package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ProStatistics/internal/collector"
	"ProStatistics/internal/config"
	"ProStatistics/internal/dashboard"
	"ProStatistics/internal/recorder"
	"ProStatistics/internal/scheduler"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath     string
		debug       bool
		templateDir string
	)
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Pro-Statistics: Portugal GDP and inflation dashboard",
		Long: `Fetches Portugal's GDP and annual inflation from Eurostat at startup,
joins them by year and serves two interactive charts.

Startup fails if either series cannot be fetched.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfgPath == "" {
				cfgPath = "configs/config.yaml"
				if v := os.Getenv("CONFIG_PATH"); v != "" {
					cfgPath = v
				}
			}
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}
			if cmd.Flags().Changed("debug") {
				cfg.Debug = debug
			}

			logger, err := newLogger(cfg.Debug)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, templateDir, logger.Sugar())
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default configs/config.yaml or $CONFIG_PATH)")
	cmd.Flags().BoolVar(&debug, "debug", false, "debug logging, request logs and page template reload")
	cmd.Flags().StringVar(&templateDir, "template-dir", "", "directory to reload the page template from in debug mode")
	return cmd
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		config := zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		return config.Build()
	}
	return zap.NewProductionConfig().Build()
}

func run(ctx context.Context, cfg *config.Config, templateDir string, log *zap.SugaredLogger) error {
	log.Info("Pro-Statistics starting...")

	// Init recorder
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	var history dashboard.HistorySource
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warnw("init sqlite recorder failed, using noop", "error", err)
		} else {
			rec, history = sr, sr
			defer sr.Close()
		}
	}

	// Init fetcher and collector
	fetcher := collector.NewEurostatFetcher(cfg.Proxy, cfg.DataSource.Timeout, cfg.DataSource.Attempts, log)
	log.Infow("data source", "name", fetcher.Name())
	col := collector.NewCollector(fetcher, cfg.DataSource.GDPURL, cfg.DataSource.InflationURL, rec, log)

	// Startup collection is blocking and fatal on failure
	table, err := col.Collect(ctx)
	if err != nil {
		return fmt.Errorf("initial collection: %w", err)
	}
	store := dashboard.NewStore(table)

	sched := scheduler.NewScheduler(ctx, col, store, log)
	if err := sched.RegisterRefresh(cfg.Schedule.RefreshCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	srv, err := dashboard.NewServer(store, dashboard.Options{
		Title:       cfg.Server.Title,
		Log:         log,
		Debug:       cfg.Debug,
		TemplateDir: templateDir,
		History:     history,
	})
	if err != nil {
		return err
	}

	log.Info("Pro-Statistics is running. Press Ctrl+C to stop.")
	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	log.Info("Pro-Statistics stopped")
	return nil
}
