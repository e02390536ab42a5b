package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	errNegativeVersion = errors.New("version must not be negative")
	errDuplicateRows   = errors.New("more than one version row")
	errNullVersion     = errors.New("version is NULL")
)

// readVersion returns the version recorded in the version table. A database
// without the table or without the version row is at version 0.
func (m *Migrator) readVersion(ctx context.Context, db Queryer) (int, error) {
	tableName, err := m.versionTable(ctx, db)
	if err != nil {
		return 0, err
	}
	if tableName == "" {
		m.log("No ", m.TableName, " table exists, returning version 0")
		return 0, nil
	}

	query := fmt.Sprintf("SELECT value FROM %s WHERE name = %s", tableName, m.Dialect.Bind(1))
	rows, err := db.QueryContext(ctx, query, VersionKey)
	if err != nil {
		return 0, &TransportError{Op: "read version", Err: err}
	}
	defer rows.Close()

	values := make([]sql.NullString, 0, 1)
	for rows.Next() {
		var value sql.NullString
		if err := rows.Scan(&value); err != nil {
			return 0, &VersionConsistencyError{
				Err: fmt.Errorf("did somebody change the structure of the %s table?: %w", m.TableName, err),
			}
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return 0, &TransportError{Op: "read version", Err: err}
	}

	switch {
	case len(values) == 0:
		return 0, nil
	case len(values) > 1:
		return 0, &VersionConsistencyError{RowsAffected: int64(len(values)), Err: errDuplicateRows}
	case !values[0].Valid:
		return 0, &VersionConsistencyError{Err: errNullVersion}
	}
	return parseVersion(values[0].String)
}

// versionTable returns the quoted name of the version table as it is stored
// in the database, or "" when the table does not exist.
func (m *Migrator) versionTable(ctx context.Context, q Queryer) (string, error) {
	name, err := m.Dialect.LookupTable(ctx, q, m.SchemaName, m.TableName)
	if err != nil {
		return "", &TransportError{Op: "look up version table " + m.QuotedTableName(), Err: err}
	}
	if name == "" {
		return "", nil
	}
	return m.Dialect.QuotedTableName(m.SchemaName, name), nil
}

func parseVersion(value string) (int, error) {
	version, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, &VersionConsistencyError{Value: value, Err: err}
	}
	if version < 0 {
		return 0, &VersionConsistencyError{Value: value, Err: errNegativeVersion}
	}
	return version, nil
}

// writeVersion records version in the version table, creating the table and
// the row when they are missing. Exactly one version row must exist
// afterwards.
func (m *Migrator) writeVersion(ctx context.Context, tx Queryer, version int) error {
	if version < 0 {
		return &VersionConsistencyError{Version: version, Err: errNegativeVersion}
	}

	// CREATE TABLE commits implicitly on MySQL, so it only runs when the
	// table is really missing
	tableName, err := m.versionTable(ctx, tx)
	if err != nil {
		return err
	}
	if tableName == "" {
		tableName = m.QuotedTableName()
		if err := m.Dialect.CreateVersionTable(ctx, tx, tableName); err != nil {
			return &TransportError{Op: "create version table " + tableName, Err: err}
		}
	}

	value := strconv.Itoa(version)
	update := fmt.Sprintf("UPDATE %s SET value = %s WHERE name = %s", tableName, m.Dialect.Bind(1), m.Dialect.Bind(2))
	n, err := execRowsAffected(ctx, tx, update, value, VersionKey)
	if err != nil {
		return &TransportError{Op: "update version", Err: err}
	}
	switch {
	case n == 1:
		return nil
	case n > 1:
		return &VersionConsistencyError{Version: version, RowsAffected: n}
	}

	// Nothing was updated. Either the row is missing, or the database
	// reports changed rows only (MySQL) and the value was already current.
	count, err := queryCount(ctx, tx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE name = %s", tableName, m.Dialect.Bind(1)),
		VersionKey)
	if err != nil {
		return &TransportError{Op: "count version rows", Err: err}
	}
	switch {
	case count == 1:
		return nil
	case count > 1:
		return &VersionConsistencyError{Version: version, RowsAffected: count}
	}

	insert := fmt.Sprintf("INSERT INTO %s (name, value) VALUES (%s, %s)", tableName, m.Dialect.Bind(1), m.Dialect.Bind(2))
	n, err = execRowsAffected(ctx, tx, insert, VersionKey, value)
	if err != nil {
		return &TransportError{Op: "insert version", Err: err}
	}
	if n != 1 {
		return &VersionConsistencyError{Version: version, RowsAffected: n}
	}
	return nil
}

func execRowsAffected(ctx context.Context, tx Queryer, query string, args ...interface{}) (int64, error) {
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
