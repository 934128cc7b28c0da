package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/persistence"
	"github.com/jsamuelsen/offermaster-service/internal/platform/config"
)

func newMigrateCmd(profile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the postgres schema",
		Long: `Apply or roll back the SQL migrations embedded in the binary.
SQLite databases are created from the models at startup and have no migrations.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				cfg, err := loadConfig(*profile)
				if err != nil {
					return err
				}
				return migrateUp(&cfg.Database, newLogger(cfg))
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n < 1 {
						return fmt.Errorf("steps must be a positive integer, got %q", args[0])
					}
					steps = n
				}

				cfg, err := loadConfig(*profile)
				if err != nil {
					return err
				}
				return withMigrator(&cfg.Database, func(m *persistence.Migrator) error {
					if err := m.Down(steps); err != nil {
						return err
					}
					newLogger(cfg).Info("migrations rolled back", slog.Int("steps", steps))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(*profile)
				if err != nil {
					return err
				}
				return withMigrator(&cfg.Database, func(m *persistence.Migrator) error {
					version, dirty, err := m.Version()
					if err != nil {
						return fmt.Errorf("reading schema version: %w", err)
					}
					cmd.Printf("version %d (dirty: %t)\n", version, dirty)
					return nil
				})
			},
		},
	)

	return cmd
}

func migrateUp(cfg *config.DatabaseConfig, logger *slog.Logger) error {
	return withMigrator(cfg, func(m *persistence.Migrator) error {
		if err := m.Up(); err != nil {
			return err
		}
		version, dirty, err := m.Version()
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
		logger.Info("migrations applied", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
		return nil
	})
}

// withMigrator opens a migrator for the postgres database, runs fn and closes it.
func withMigrator(cfg *config.DatabaseConfig, fn func(*persistence.Migrator) error) error {
	if cfg.Driver != persistence.DriverPostgres {
		return fmt.Errorf("migrations require the %s driver, configured driver is %s",
			persistence.DriverPostgres, cfg.Driver)
	}

	m, err := persistence.NewMigrator(cfg.DSN)
	if err != nil {
		return err
	}

	err = fn(m)
	if closeErr := m.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("closing migrator: %w", closeErr)
	}
	return err
}
