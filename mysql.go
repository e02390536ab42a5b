package schema

import (
	"context"
	"fmt"
	"strings"
)

// MySQL is the dialect which should be used for MySQL/MariaDB databases.
// MySQL commits implicitly around DDL statements, so a failing script which
// contains DDL may leave its earlier statements applied even though the
// version is not advanced. The version table itself is only created when
// it is missing, so scripts without DDL stay atomic.
var MySQL = mysqlDialect{}

type mysqlDialect struct{}

// LookupTable implements the Dialect interface by consulting
// information_schema. Table names are case-sensitive on most Linux
// installations, so the stored name may differ from tableName in case.
func (m mysqlDialect) LookupTable(ctx context.Context, tx Queryer, schemaName, tableName string) (string, error) {
	return queryTableName(ctx, tx, tableName, `
		SELECT table_name FROM information_schema.tables
		WHERE LOWER(table_name) = LOWER(?)
		AND table_schema = COALESCE(NULLIF(?, ''), DATABASE())`,
		tableName, schemaName)
}

// CreateVersionTable implements the Dialect interface to create the
// table which holds the version row. It only creates the table if it
// does not already exist
func (m mysqlDialect) CreateVersionTable(ctx context.Context, tx Queryer, tableName string) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name VARCHAR(255) NOT NULL PRIMARY KEY,
			value VARCHAR(255) NOT NULL
		)`, tableName)
	_, err := tx.ExecContext(ctx, query)
	return err
}

// Bind implements the Dialect interface with ? placeholders
func (m mysqlDialect) Bind(int) string {
	return "?"
}

// QuotedTableName returns the string value of the name of the version
// table after it has been quoted for MySQL
func (m mysqlDialect) QuotedTableName(schemaName, tableName string) string {
	if schemaName == "" {
		return m.quotedIdent(tableName)
	}
	return m.quotedIdent(schemaName) + "." + m.quotedIdent(tableName)
}

// quotedIdent wraps the supplied string in the MySQL identifier
// quote character
func (m mysqlDialect) quotedIdent(ident string) string {
	if ident == "" {
		return ""
	}
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}
