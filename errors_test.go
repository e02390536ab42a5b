package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
)

var (
	// ErrBeginFailed indicates that the BeginTx() method failed (couldn't start Tx)
	ErrBeginFailed = fmt.Errorf("Begin Failed")
)

// BadQueryer implements the Connection interface, but fails on every call to
// Exec or Query. The error message will include the SQL statement to help
// verify the "right" failure occurred.
type BadQueryer struct{}

func (bq BadQueryer) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return nil, ErrBeginFailed
}

func (bq BadQueryer) ExecContext(ctx context.Context, sql string, args ...interface{}) (sql.Result, error) {
	return nil, fmt.Errorf("FAIL: %s", strings.TrimSpace(sql))
}

func (bq BadQueryer) QueryContext(ctx context.Context, sql string, args ...interface{}) (*sql.Rows, error) {
	return nil, fmt.Errorf("FAIL: %s", strings.TrimSpace(sql))
}

func TestUpdateQueryFailure(t *testing.T) {
	m := makeSQLiteMigrator()
	version, err := m.Update(BadQueryer{}, FSSource(scriptFS(nil)), "sql")
	expectErrorContains(t, err, "FAIL: SELECT name FROM sqlite_master")

	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Errorf("Expected a TransportError, got %T", err)
	}
	if version != 0 {
		t.Errorf("Expected version 0, got %d", version)
	}
}

func TestForceVersionBeginFailure(t *testing.T) {
	m := makeSQLiteMigrator()
	err := m.ForceVersion(BadQueryer{}, 1)
	if !errors.Is(err, ErrBeginFailed) {
		t.Errorf("Expected error '%s'. Got '%v'.", ErrBeginFailed, err)
	}
}

func TestErrorMessages(t *testing.T) {
	cause := errors.New("no such table: nope")
	type messageTest struct {
		err      error
		expected string
	}
	tests := []messageTest{
		{&IncompleteStatementError{Line: 9, Statement: "CREATE TABLE t (a int)"}, "unexpected end of script at line 9, last statement was: CREATE TABLE t (a int)"},
		{&StatementExecutionError{Line: 4, Statement: "INSERT INTO nope VALUES (1)", Err: cause}, "statement at line 4 failed: INSERT INTO nope VALUES (1): no such table: nope"},
		{&VersionConsistencyError{Version: 3, RowsAffected: 0}, "unable to update version information to 3 (0 rows affected)"},
		{&VersionConsistencyError{Value: "x"}, `inconsistent version information "x"`},
		{&VersionConsistencyError{Value: "-1", Err: errNegativeVersion}, `inconsistent version information "-1": version must not be negative`},
		{&VersionConsistencyError{RowsAffected: 2, Err: errDuplicateRows}, "inconsistent version information: more than one version row"},
		{&TransportError{Op: "commit", Err: cause}, "commit: no such table: nope"},
		{&ScriptError{Version: 2, Name: "db-v0002.sql", Err: cause}, "exception while executing update script db-v0002.sql (version 2): no such table: nope"},
	}
	for _, test := range tests {
		if test.err.Error() != test.expected {
			t.Errorf("Expected '%s', got '%s'", test.expected, test.err.Error())
		}
	}
}
