package schema

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// Postgres is the dialect for Postgres-compatible
// databases
var Postgres = postgresDialect{}

type postgresDialect struct{}

// LookupTable implements the Dialect interface by consulting
// information_schema
func (p postgresDialect) LookupTable(ctx context.Context, tx Queryer, schemaName, tableName string) (string, error) {
	return queryTableName(ctx, tx, tableName, `
		SELECT table_name FROM information_schema.tables
		WHERE LOWER(table_name) = LOWER($1)
		AND table_schema = COALESCE(NULLIF($2::text, ''), current_schema())
	`, tableName, schemaName)
}

// CreateVersionTable implements the Dialect interface to create the
// table which holds the version row. It only creates the table if it
// does not already exist
func (p postgresDialect) CreateVersionTable(ctx context.Context, tx Queryer, tableName string) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name VARCHAR(255) NOT NULL PRIMARY KEY,
			value VARCHAR(255) NOT NULL
		)
	`, tableName)
	_, err := tx.ExecContext(ctx, query)
	return err
}

// Bind implements the Dialect interface with $n placeholders
func (p postgresDialect) Bind(n int) string {
	return fmt.Sprintf("$%d", n)
}

// QuotedTableName returns the string value of the name of the version
// table after it has been quoted for Postgres
func (p postgresDialect) QuotedTableName(schemaName, tableName string) string {
	if schemaName == "" {
		return p.QuotedIdent(tableName)
	}
	return p.QuotedIdent(schemaName) + "." + p.QuotedIdent(tableName)
}

// QuotedIdent wraps the supplied string in the Postgres identifier
// quote character
func (p postgresDialect) QuotedIdent(ident string) string {
	if ident == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteRune('"')
	for _, r := range ident {
		switch {
		case unicode.IsSpace(r):
			// Skip spaces
			continue
		case r == '"':
			// Escape double-quotes with repeated double-quotes
			sb.WriteString(`""`)
		case r == ';':
			// Ignore the command termination character
			continue
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteRune('"')
	return sb.String()
}
