package db

import (
	"errors"
	"os"
	"time"

	"fakeframe/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to Postgres using DATABASE_URL.
func Open() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// Configure applies connection pool settings from config.
func Configure(conn *gorm.DB, cfg config.Config) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeSeconds) * time.Second)
	return nil
}

// Migrate runs GORM auto-migrations for the core tables. Production schemas
// are managed by the SQL migrations under db/migrations; this covers dev setups.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("db connection is nil")
	}
	return conn.AutoMigrate(
		&Room{},
		&Player{},
		&Round{},
		&Caption{},
		&Vote{},
		&Image{},
		&Event{},
	)
}
