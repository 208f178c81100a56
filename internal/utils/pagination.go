// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
//
// Example:
//
//	n := utils.AtoiDefault("42", 0) // returns 42
//	n = utils.AtoiDefault("", 10)   // returns 10
//	n = utils.AtoiDefault("x", 5)   // returns 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ParseID parses a positive base-10 int64 identifier such as a path
// parameter. It reports false for empty, malformed, zero or negative input.
func ParseID(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Page normalizes 1-based page/pageSize values and returns the SQL offset.
// page < 1 becomes 1; pageSize <= 0 becomes def; pageSize > max becomes max.
func Page(page, pageSize, def, max int) (p, size, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = def
	}
	if max > 0 && pageSize > max {
		pageSize = max
	}
	return page, pageSize, (page - 1) * pageSize
}
