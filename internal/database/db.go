package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// Models lists every table the portal owns, parents first.
func Models() []interface{} {
	return []interface{}{
		&model.Client{},
		&model.User{},
		&model.Project{},
		&model.Deliverable{},
		&model.Invoice{},
		&model.Notification{},
	}
}

// Migrate creates or extends the portal tables. It only adds; columns and
// values missing on older deployments stay missing until this runs.
func Migrate(ctx context.Context, db *gorm.DB, log *slog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	log.InfoContext(ctx, "database schema migrated", "tables", len(Models()))
	return nil
}

// Ping checks that the database answers within ctx.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
