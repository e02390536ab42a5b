package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DefaultTableName defines the name of the database table which holds the
// version marker row
const DefaultTableName = "dbinfo"

// VersionKey is the value of the name column of the row which records the
// current schema version
const VersionKey = "version"

// ErrNilDB is thrown when the database pointer is nil
var ErrNilDB = errors.New("DB pointer is nil")

// Connection defines the interface for a *sql.DB, which can both start a new
// transaction and run queries.
//
type Connection interface {
	Transactor
	Queryer
}

// Queryer is something which can execute a Query (either a sql.DB
// or a sql.Tx)
type Queryer interface {
	ExecContext(ctx context.Context, sql string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, sql string, args ...interface{}) (*sql.Rows, error)
}

// Transactor defines the interface for the BeginTx method from the *sql.DB
//
type Transactor interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// transaction wraps the supplied function in a transaction with the supplied
// database connecion. The transaction is rolled back unless f returns nil
// and the commit succeeds, including when f panics.
//
func transaction(ctx context.Context, db Transactor, f func(*sql.Tx) error) (err error) {
	if db == nil {
		return ErrNilDB
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &TransportError{Op: "begin transaction", Err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			switch p := p.(type) {
			case error:
				err = p
			default:
				err = fmt.Errorf("%s", p)
			}
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = &TransportError{Op: "commit", Err: cerr}
		}
	}()

	return f(tx)
}
