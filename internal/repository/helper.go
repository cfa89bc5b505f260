package repository

import (
	"database/sql"
	"fmt"
	"time"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repositories are constructed over it so the execution engine can run the
// whole order sequence inside a single transaction.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// timeFormats are the layouts timestamps come back in, depending on whether
// the value was written by Go or by a SQLite DEFAULT CURRENT_TIMESTAMP.
var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses a timestamp string in any of the formats used in the database.
func ParseTime(str string) (time.Time, error) {
	for _, layout := range timeFormats {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse time %q", str)
}

// FormatTime renders a timestamp for storage. RFC3339Nano keeps full
// precision so the replay's timestamp ordering within a symbol is stable.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
