package db

import "strings"

// IsUniqueViolation reports whether the provided error references a unique
// constraint violation. It matches the Postgres and SQLite duplicate-key
// phrasings so the same check works in production and in tests.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
