package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// ErrNilSource is returned when no ScriptSource is supplied
var ErrNilSource = errors.New("script source is nil")

// Migrator is an instance customized to bring a particular database up to
// date against a particular version table and with a particular dialect
// defined.
type Migrator struct {
	SchemaName string
	TableName  string
	Dialect    Dialect
	Logger     Logger
	Translator Translator

	parseOptions []ParseOption
	ctx          context.Context
}

// NewMigrator creates a new Migrator with the supplied
// options
func NewMigrator(options ...Option) Migrator {
	m := Migrator{
		TableName:  DefaultTableName,
		Dialect:    Postgres,
		Translator: Identity,
		ctx:        context.Background(),
	}
	for _, opt := range options {
		m = opt(m)
	}
	return m
}

// Update applies update scripts to db until the script for the next
// version cannot be found in source. Scripts are looked up as
// ScriptName(resourcePath, version), starting with the version after the
// one recorded in the database.
//
// Update returns the version the database is at when it stops. On error
// that is the last version whose script was committed; the failing script
// has been rolled back completely.
func (m *Migrator) Update(db Connection, source ScriptSource, resourcePath string) (version int, err error) {
	if db == nil {
		return 0, ErrNilDB
	}
	if source == nil {
		return 0, ErrNilSource
	}

	version, err = m.readVersion(m.baseContext(), db)
	if err != nil {
		return 0, err
	}

	for {
		if err = m.baseContext().Err(); err != nil {
			return version, err
		}

		next := version + 1
		m.log("Checking for newer database version update script at: ", ScriptName(resourcePath, next))

		var script *Script
		script, err = ReadScript(source, resourcePath, next)
		if errors.Is(err, ErrScriptAbsent) {
			m.log("Database up to date at version ", version)
			return version, nil
		}
		if err != nil {
			return version, &ScriptError{Version: next, Name: ScriptName(resourcePath, next), Err: err}
		}

		m.log("Updating database to version ", next)
		if err = m.applyScript(db, script); err != nil {
			return version, &ScriptError{Version: next, Name: script.Name, Err: err}
		}
		version = next
	}
}

// Plan returns the scripts Update would apply, in order, without touching
// the database beyond reading its version. Every script is parsed, so a
// script with an incomplete statement is reported here as well.
func (m *Migrator) Plan(db Connection, source ScriptSource, resourcePath string) (plan []*Script, err error) {
	plan = make([]*Script, 0)
	if db == nil {
		return plan, ErrNilDB
	}
	if source == nil {
		return plan, ErrNilSource
	}

	version, err := m.readVersion(m.baseContext(), db)
	if err != nil {
		return plan, err
	}
	for {
		version++
		script, err := ReadScript(source, resourcePath, version)
		if errors.Is(err, ErrScriptAbsent) {
			return plan, nil
		}
		if err == nil {
			var statements []Statement
			statements, err = script.Statements(m.parseOptions...)
			script.StatementCount = len(statements)
		}
		if err != nil {
			return plan, &ScriptError{Version: version, Name: ScriptName(resourcePath, version), Err: err}
		}
		plan = append(plan, script)
	}
}

// Version returns the version currently recorded in db, 0 for a database
// which was never updated.
func (m *Migrator) Version(db Queryer) (int, error) {
	if db == nil {
		return 0, ErrNilDB
	}
	return m.readVersion(m.baseContext(), db)
}

// ForceVersion records version in db without running any script. It is
// meant for recovering a database by hand, not for normal operation.
func (m *Migrator) ForceVersion(db Connection, version int) error {
	if db == nil {
		return ErrNilDB
	}
	ctx := context.WithoutCancel(m.baseContext())
	return transaction(ctx, db, func(tx *sql.Tx) error {
		current, err := m.readVersion(ctx, tx)
		var vce *VersionConsistencyError
		if errors.As(err, &vce) {
			// The marker is what we are here to repair
			m.log("Ignoring unreadable version information: ", err)
		} else if err != nil {
			return err
		}

		if err := m.writeVersion(ctx, tx, version); err != nil {
			return err
		}
		m.log(fmt.Sprintf("Forcing database from version %d to version %d", current, version))
		return nil
	})
}

// QuotedTableName returns the dialect-quoted fully-qualified name for the
// version table
func (m *Migrator) QuotedTableName() string {
	return m.Dialect.QuotedTableName(m.SchemaName, m.TableName)
}

// applyScript runs every statement of script and records its version in a
// single transaction. The transaction is not bound to the Migrator's
// context: once started, a script either commits or is rolled back.
func (m *Migrator) applyScript(db Transactor, script *Script) error {
	ctx := context.WithoutCancel(m.baseContext())
	startedAt := time.Now()
	count := 0

	err := transaction(ctx, db, func(tx *sql.Tx) error {
		reader := NewStatementReader(strings.NewReader(script.Content), m.parseOptions...)
		for {
			stmt, err := reader.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}

			query := m.translate(stmt.SQL)
			if _, err := tx.ExecContext(ctx, query); err != nil {
				return &StatementExecutionError{
					Version:   script.Version,
					Line:      stmt.Line,
					Statement: query,
					Err:       err,
				}
			}
			count++
		}
		return m.writeVersion(ctx, tx, script.Version)
	})
	if err != nil {
		return err
	}
	script.StatementCount = count

	m.log(fmt.Sprintf("Script '%s' (md5 %s, %d statements) applied in %s", script.Name, script.MD5(), count, time.Since(startedAt)))
	return nil
}

func (m *Migrator) baseContext() context.Context {
	if m.ctx == nil {
		return context.Background()
	}
	return m.ctx
}

func (m *Migrator) translate(statement string) string {
	if m.Translator == nil {
		return statement
	}
	return m.Translator.Translate(statement)
}

func (m *Migrator) log(msgs ...interface{}) {
	if m.Logger != nil {
		m.Logger.Print(msgs...)
	}
}
