package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"locallibrary/pkg/config"
	"locallibrary/pkg/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const memoryPath = ":memory:"

// Open connects to the configured database, retrying while it comes up,
// tunes the pool and migrates the catalog schema.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	dialector, target := dialectorFor(cfg)
	log.Info("connecting to database", "driver", cfg.Driver, "target", target)

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < cfg.ConnectRetries; i++ {
		db, err = gorm.Open(dialector, gormConfig(log, cfg.SlowQuery))
		if err == nil {
			break
		}
		log.Warn("database connection attempt failed",
			"attempt", i+1, "max_attempts", cfg.ConnectRetries, "error", err)
		if i < cfg.ConnectRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.RetryDelay):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	if cfg.Driver == "sqlite" && cfg.Path == memoryPath {
		// Every connection to :memory: is a separate database.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("database connection established")
	return db, nil
}

// OpenMemory opens a migrated in-memory SQLite catalog for tests and local
// experiments.
func OpenMemory(log *slog.Logger) (*gorm.DB, error) {
	return Open(context.Background(), config.DatabaseConfig{
		Driver:         "sqlite",
		Path:           memoryPath,
		ConnectRetries: 1,
		SlowQuery:      time.Second,
	}, log)
}

// Migrate creates or updates the catalog tables.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Book{}, "Genres", &models.BookGenre{}); err != nil {
		return fmt.Errorf("setup book genres join table: %w", err)
	}
	err := db.AutoMigrate(
		&models.Author{},
		&models.Genre{},
		&models.Book{},
		&models.BookGenre{},
		&models.BookInstance{},
	)
	if err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	return nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, string) {
	if cfg.Driver == "sqlite" {
		return sqlite.Open(cfg.Path), cfg.Path
	}
	target := fmt.Sprintf("%s@%s:%s/%s", cfg.User, cfg.Host, cfg.Port, cfg.Name)
	return postgres.Open(cfg.DSN()), target
}

func gormConfig(log *slog.Logger, slowQuery time.Duration) *gorm.Config {
	return &gorm.Config{
		Logger:         NewLogger(log, slowQuery),
		TranslateError: true,
		// References between catalog entities are checked by the guarded
		// delete flow, not by the database.
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}
