package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"remind-candles/pkg/config"
	"remind-candles/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "remind-candles",
		Short:        "Birthday reminders and wishes",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCommand(), newCheckCommand(), newMigrateCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the daily birthday check and the event receiver",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApp(ctx, func(a *app) error {
				return a.serve(ctx)
			})
		},
	}
}

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one birthday check and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				summary, err := a.notifications.CheckForBirthdays(cmd.Context(), time.Now())
				if err != nil {
					return err
				}
				a.log.Info("check finished",
					zap.String("date", summary.Date),
					zap.Int("users", summary.UsersChecked),
					zap.Int("reminders", summary.RemindersDue),
					zap.Int("wishes", summary.WishesDue),
					zap.Int("failed", summary.EventsFailed))
				return nil
			})
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			log.Info("database migrated", zap.String("driver", cfg.DBDriver))
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", zap.Error(err))
		return nil, nil, err
	}
	return cfg, log, nil
}

func withApp(ctx context.Context, run func(a *app) error) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		return err
	}
	defer a.close()

	return run(a)
}
