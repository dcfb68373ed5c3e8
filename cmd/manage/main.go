package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/civic-action/platform/internal/config"
	"github.com/civic-action/platform/internal/db"
	"github.com/civic-action/platform/internal/services"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()

	root := &cobra.Command{
		Use:           "manage",
		Short:         "Administrative commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(migrateCmd(cfg, log), migrateCampaignsCmd(cfg, log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		log.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

func connect(ctx context.Context, cfg *config.Config, log *zap.Logger) (*pgxpool.Pool, error) {
	return db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
}

func migrateCmd(cfg *config.Config, log *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := connect(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer pool.Close()
			return db.RunMigrations(cmd.Context(), pool, cfg.MigrationsDir, log)
		},
	}
}

func migrateCampaignsCmd(cfg *config.Config, log *zap.Logger) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "migrate-campaigns",
		Short: "Copy legacy campaigns into campaign pages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := connect(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := services.NewMigrationService(services.PostgresMigrationTx(pool), log)
			report, err := svc.MigrateCampaigns(cmd.Context(), dryRun)
			if err != nil {
				return err
			}

			for _, slug := range report.Migrated {
				cmd.Println("migrated", slug)
			}
			for _, slug := range report.Skipped {
				cmd.Println("skipped", slug, "(already migrated)")
			}
			for _, w := range report.Warnings {
				cmd.PrintErrln("warning:", w)
			}
			log.Info("campaign migration finished",
				zap.Bool("dry_run", report.DryRun),
				zap.Bool("index_created", report.IndexCreated),
				zap.Int("found", report.Found),
				zap.Int("migrated", len(report.Migrated)),
				zap.Int("skipped", len(report.Skipped)),
				zap.Int("redirects", report.Redirects),
			)
			if report.DryRun {
				cmd.Println("dry run: no changes were committed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "run the migration and roll it back")
	return cmd
}
