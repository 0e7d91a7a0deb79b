package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/utafrali/socialgraph/internal/config"
	"github.com/utafrali/socialgraph/migrations"
	"github.com/utafrali/socialgraph/pkg/database"
	"github.com/utafrali/socialgraph/pkg/logger"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending database migrations to the configured PostgreSQL database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(cfg.ServiceName, cfg.LogLevel)

			pool, err := database.NewPostgresPool(cmd.Context(), cfg.Postgres(), log)
			if err != nil {
				return fmt.Errorf("connect to postgres: %w", err)
			}
			defer pool.Close()

			return runMigrate(cmd.Context(), pool, migrations.FS, cmd.OutOrStdout(), dryRun, log)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list pending migrations without applying them")
	return cmd
}

func runMigrate(ctx context.Context, db database.DBTX, files fs.FS, out io.Writer, dryRun bool, log *slog.Logger) error {
	pending, err := database.PendingMigrations(ctx, db, files)
	if err != nil {
		return fmt.Errorf("list pending migrations: %w", err)
	}
	if len(pending) == 0 {
		fmt.Fprintln(out, "Schema is up to date")
		return nil
	}

	for _, name := range pending {
		fmt.Fprintf(out, "pending: %s\n", name)
	}
	if dryRun {
		return nil
	}

	if err := database.RunMigrations(ctx, db, files, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	fmt.Fprintf(out, "Applied %d migration(s)\n", len(pending))
	return nil
}
