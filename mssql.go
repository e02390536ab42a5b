package schema

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// MSSQL is the dialect for MS SQL-compatible databases
var MSSQL = mssqlDialect{}

type mssqlDialect struct{}

func (s mssqlDialect) QuotedTableName(schemaName, tableName string) string {
	if schemaName == "" {
		return s.QuotedIdent(tableName)
	}
	return fmt.Sprintf("%s.%s", s.QuotedIdent(schemaName), s.QuotedIdent(tableName))
}

func (s mssqlDialect) QuotedIdent(ident string) string {
	if ident == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteRune('[')
	for _, r := range ident {
		switch {
		case unicode.IsSpace(r):
			continue
		case r == ';':
			continue
		case r == ']':
			sb.WriteRune(r)
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteRune(']')

	return sb.String()
}

func (s mssqlDialect) LookupTable(ctx context.Context, tx Queryer, schemaName, tableName string) (string, error) {
	return queryTableName(ctx, tx, tableName, `
		SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
		WHERE LOWER(TABLE_NAME) = LOWER(@p1)
		AND TABLE_SCHEMA = COALESCE(NULLIF(@p2, ''), SCHEMA_NAME())
	`, tableName, schemaName)
}

func (s mssqlDialect) CreateVersionTable(ctx context.Context, tx Queryer, tableName string) error {
	query := fmt.Sprintf(`
		IF OBJECT_ID(N'%s', N'U') IS NULL
			CREATE TABLE %s (
				name VARCHAR(255) NOT NULL PRIMARY KEY,
				value VARCHAR(255) NOT NULL
			)
	`, strings.ReplaceAll(tableName, "'", "''"), tableName)
	_, err := tx.ExecContext(ctx, query)
	return err
}

func (s mssqlDialect) Bind(n int) string {
	return fmt.Sprintf("@p%d", n)
}
