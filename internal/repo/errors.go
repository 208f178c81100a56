package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates a unique constraint rejected an insert.
var ErrDuplicate = errors.New("duplicate")

// IsUniqueViolation matches unique-constraint failures from both drivers.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key value") // postgres 23505
}

// IsBusy reports whether err means the store could not take a lock in time
// (SQLite busy/locked, Postgres lock or serialization timeouts).
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "database is locked") ||
		strings.Contains(low, "sqlite_busy") ||
		strings.Contains(low, "database table is locked") ||
		strings.Contains(low, "lock timeout") ||
		strings.Contains(low, "could not serialize access")
}
