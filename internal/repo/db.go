// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver) and Postgres, tracing instrumentation, and schema
// migrations.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-video-backend/internal/domain"
)

// sqlitePragmas are applied by the driver to every pooled connection.
// busy_timeout makes concurrent writers wait for the database lock instead of
// failing with SQLITE_BUSY.
var sqlitePragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
}

// SQLiteDSN appends the connection pragmas to a file path or DSN.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	var b strings.Builder
	b.WriteString(path)
	for _, p := range sqlitePragmas {
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	return b.String()
}

// OpenSQLite opens (or creates) a SQLite database with per-connection PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(SQLiteDSN(path)), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// OpenPostgres connects to Postgres using a URL or keyword/value DSN.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

// Open selects the driver by name ("sqlite" or "postgres").
func Open(driver, sqlitePath, databaseURL string) (*gorm.DB, error) {
	switch driver {
	case "sqlite", "":
		return OpenSQLite(sqlitePath)
	case "postgres":
		return OpenPostgres(databaseURL)
	default:
		return nil, fmt.Errorf("repo: unsupported driver %q", driver)
	}
}

// UseTracing registers the OpenTelemetry GORM plugin so every statement
// becomes a child span of the request span carried by the context.
func UseTracing(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin(tracing.WithoutMetrics()))
}

// AutoMigrate creates or updates all tables. Order matters for foreign keys.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Video{},
		&domain.Comment{},
		&domain.Reaction{},
		&domain.WatchHistory{},
		&domain.Idempotency{},
	)
}
