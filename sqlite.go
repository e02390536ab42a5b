package schema

import (
	"context"
	"fmt"
	"strings"
)

// SQLite is the dialect for SQLite databases. Schema names are ignored.
var SQLite = sqliteDialect{}

type sqliteDialect struct{}

// LookupTable implements the Dialect interface by consulting sqlite_master
func (s sqliteDialect) LookupTable(ctx context.Context, tx Queryer, _, tableName string) (string, error) {
	return queryTableName(ctx, tx, tableName,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND LOWER(name) = LOWER(?)`,
		tableName)
}

// CreateVersionTable takes the name of the version table and
// creates it unless it already exists
func (s sqliteDialect) CreateVersionTable(ctx context.Context, tx Queryer, tableName string) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name TEXT NOT NULL PRIMARY KEY,
			value TEXT NOT NULL
		)`, tableName)
	_, err := tx.ExecContext(ctx, query)
	return err
}

// Bind implements the Dialect interface with ? placeholders
func (s sqliteDialect) Bind(int) string {
	return "?"
}

// QuotedTableName returns the string value of the name of the version
// table after it has been quoted for SQLite
func (s sqliteDialect) QuotedTableName(_, tableName string) string {
	return `"` + strings.ReplaceAll(tableName, `"`, `""`) + `"`
}
