package db

import (
	"context"
	"database/sql"
)

// QueryRower is satisfied by *sql.DB, *sql.Tx and *sqlx.DB.
type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SchemaTables are the tables the back office reads or writes.
var SchemaTables = []string{
	"users",
	"courses",
	"course_versions",
	"course_modules",
	"academic_groups",
	"enrollments",
	"finance_entries",
	"leads",
	"survey_responses",
	"survey_answers",
}

// HasTable reports whether table exists in the current schema.
// Connection errors count as "missing" so callers can degrade gracefully.
func HasTable(ctx context.Context, q QueryRower, table string) bool {
	var name sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1
	`, table).Scan(&name)
	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

// MissingTables returns the SchemaTables not present in the database.
func MissingTables(ctx context.Context, q QueryRower) []string {
	missing := []string{}
	for _, t := range SchemaTables {
		if !HasTable(ctx, q, t) {
			missing = append(missing, t)
		}
	}
	return missing
}
