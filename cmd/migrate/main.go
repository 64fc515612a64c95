// Command migrate applies the embedded schema for the configured driver.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/config"
	"github.com/cmlabs-hris/hris-leave-go/internal/fixtures"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := migrate(ctx, cfg); err != nil {
		slog.Error("migration failed", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	slog.Info("migration complete", "driver", cfg.Database.Driver)
}

func migrate(ctx context.Context, cfg *config.Config) error {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfigFrom(cfg.Database))
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgresql.Migrate(ctx, db); err != nil {
			return err
		}
		_, err = fixtures.SeedLeaveTypes(ctx, postgresql.NewLeaveTypeRepository(db))
		return err

	default:
		// Open applies the schema.
		db, err := sqlite.Open(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()
		_, err = fixtures.SeedLeaveTypes(ctx, sqlite.NewLeaveTypeRepository(db))
		return err
	}
}
