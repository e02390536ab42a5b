package schema

import "context"

// Dialect defines the minimal interface for a database dialect. All dialects
// must implement functions to quote the name of the version table, check
// whether it exists, create it and produce bind parameter placeholders
type Dialect interface {
	QuotedTableName(schemaName, tableName string) string

	// LookupTable returns the name under which tableName is stored in
	// schemaName (or the current schema when schemaName is empty), or ""
	// when there is no such table. Names are compared case-insensitively;
	// an exact match wins over one differing only in case.
	LookupTable(ctx context.Context, tx Queryer, schemaName, tableName string) (string, error)

	// CreateVersionTable creates the name/value table holding the version
	// row, unless it already exists.
	CreateVersionTable(ctx context.Context, tx Queryer, tableName string) error

	// Bind returns the placeholder for the n-th (1-based) query parameter.
	Bind(n int) string
}

// queryTableName runs a query listing table names and picks the one stored
// as tableName, falling back to the first one listed
func queryTableName(ctx context.Context, tx Queryer, tableName, query string, args ...interface{}) (string, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	found := ""
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", err
		}
		if name == tableName {
			return name, nil
		}
		if found == "" {
			found = name
		}
	}
	return found, rows.Err()
}

// queryCount runs a query returning a single integer, such as a COUNT(*)
func queryCount(ctx context.Context, tx Queryer, query string, args ...interface{}) (count int64, err error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	if rows.Next() {
		err = rows.Scan(&count)
		if err != nil {
			return 0, err
		}
	}
	return count, rows.Err()
}
