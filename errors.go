package schema

import (
	"errors"
	"fmt"
)

// ErrScriptAbsent is returned by a ScriptSource when no script exists under
// the requested name. The Migrator treats it as the end of the update
// sequence, never as a failure.
var ErrScriptAbsent = errors.New("update script not found")

// IncompleteStatementError reports a script which ended before its last
// statement was terminated with a semicolon.
type IncompleteStatementError struct {
	// Line is the last line of the script.
	Line      int
	Statement string
}

func (e *IncompleteStatementError) Error() string {
	return fmt.Sprintf("unexpected end of script at line %d, last statement was: %s", e.Line, e.Statement)
}

// StatementExecutionError reports a statement which the database rejected.
// Statement holds the text after translation, as it was sent to the database.
type StatementExecutionError struct {
	Version   int
	Line      int
	Statement string
	Err       error
}

func (e *StatementExecutionError) Error() string {
	return fmt.Sprintf("statement at line %d failed: %s: %v", e.Line, e.Statement, e.Err)
}

func (e *StatementExecutionError) Unwrap() error {
	return e.Err
}

// VersionConsistencyError indicates a corrupt or improperly initialized
// version marker: an unparseable stored value, duplicate marker rows, or a
// write which did not result in exactly one row.
type VersionConsistencyError struct {
	Version      int
	Value        string
	RowsAffected int64
	Err          error
}

func (e *VersionConsistencyError) Error() string {
	switch {
	case e.Err != nil && e.Value != "":
		return fmt.Sprintf("inconsistent version information %q: %v", e.Value, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("inconsistent version information: %v", e.Err)
	case e.Value != "":
		return fmt.Sprintf("inconsistent version information %q", e.Value)
	default:
		return fmt.Sprintf("unable to update version information to %d (%d rows affected)", e.Version, e.RowsAffected)
	}
}

func (e *VersionConsistencyError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failure of the underlying connection or of reading
// a script.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ScriptError is returned by Migrator.Update when an update script could not
// be applied. The database remains at Version-1.
type ScriptError struct {
	Version int
	Name    string
	Err     error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("exception while executing update script %s (version %d): %v", e.Name, e.Version, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
