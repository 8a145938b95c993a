package server

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/JadonKrys/file-catalog/pkg/db/migrations"
	"github.com/JadonKrys/file-catalog/pkg/db/store"
	"github.com/spf13/cobra"

	config "github.com/JadonKrys/file-catalog/internal/config/server"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage metadata store schema migrations",
		Long: `Inspect and apply schema migrations of the SQLite metadata store.

Badger and in-memory stores are schemaless and have no migrations.`,
	}

	cmd.PersistentFlags().String("db-type", "", "metadata store type (sqlite, badger, memory)")
	cmd.PersistentFlags().String("db-host", "", "metadata store location (database file or badger directory)")

	cmd.AddCommand(newMigrateStatusCommand())
	cmd.AddCommand(newMigrateUpCommand())
	cmd.AddCommand(newMigrateRollbackCommand())

	return cmd
}

func newMigrateStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *migrations.Migrator) error {
				status, err := m.Status(ctx)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "VERSION\tDESCRIPTION\tAPPLIED")
				for _, s := range status {
					fmt.Fprintf(w, "%d\t%s\t%t\n", s.Version, s.Description, s.Applied)
				}
				return w.Flush()
			})
		},
	}
}

func newMigrateUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *migrations.Migrator) error {
				if err := m.Migrate(ctx); err != nil {
					return err
				}

				fmt.Println("Migrations applied")
				return nil
			})
		},
	}
}

func newMigrateRollbackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Revert the most recently applied migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *migrations.Migrator) error {
				if err := m.Rollback(ctx); err != nil {
					return err
				}

				fmt.Println("Rolled back last migration")
				return nil
			})
		},
	}
}

func withMigrator(cmd *cobra.Command, fn func(context.Context, *migrations.Migrator) error) error {
	applyStoreFlags(cmd)

	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load server configuration: %w", err)
	}

	if cfg.Metadata.Type != "sqlite" {
		fmt.Printf("Metadata store %q has no migrations\n", cfg.Metadata.Type)
		return nil
	}

	s, err := store.NewSQLiteStore(store.SQLiteConfig{Path: cfg.Metadata.SQLite.Path})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect metadata store: %w", err)
	}

	return fn(ctx, migrations.NewMigrator(s.DB()))
}
