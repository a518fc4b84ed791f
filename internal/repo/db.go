// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver) and the versioned schema migrations.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/rajeev-kl/finkraft-t13/internal/domain"
)

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// schemaMigration is one step of the versioned migration list. Versions are
// applied in ascending order, each at most once, recorded in
// schema_migrations. Migrations never drop or recreate tables: a schema
// mismatch is an error to fix, not history to discard.
type schemaMigration struct {
	Version int
	Name    string
	Run     func(*gorm.DB) error
}

// appliedMigration is the bookkeeping row for one applied migration version.
type appliedMigration struct {
	Version   int       `gorm:"primaryKey"`
	Name      string    `gorm:"type:varchar(128);not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName implements the GORM tabler interface.
func (appliedMigration) TableName() string { return "schema_migrations" }

var migrations = []schemaMigration{
	{
		Version: 1,
		Name:    "base schema",
		Run: func(db *gorm.DB) error {
			return db.AutoMigrate(
				&domain.Thread{},
				&domain.Message{},
				&domain.Suggestion{},
				&domain.Decision{},
				&domain.Draft{},
			)
		},
	},
	{
		Version: 2,
		Name:    "action rule overrides",
		Run: func(db *gorm.DB) error {
			return db.AutoMigrate(&domain.ActionRule{})
		},
	},
}

// Migrate applies all pending schema migrations in order. Safe to call on
// every startup.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&appliedMigration{}); err != nil {
		return err
	}
	for _, m := range migrations {
		var n int64
		if err := db.Model(&appliedMigration{}).Where("version = ?", m.Version).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		if err := m.Run(db); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		rec := appliedMigration{Version: m.Version, Name: m.Name, AppliedAt: time.Now().UTC()}
		if err := db.Create(&rec).Error; err != nil {
			return err
		}
	}
	return nil
}
