package schema

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	// Pure Go SQLite driver, registered as "sqlite"
	_ "modernc.org/sqlite"
)

// connectSQLite opens a fresh SQLite database in the test's temporary
// directory. It is closed when the test ends.
func connectSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite database: %s", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// makeSQLiteMigrator returns a Migrator for databases from connectSQLite
func makeSQLiteMigrator(options ...Option) *Migrator {
	options = append([]Option{WithDialect(SQLite)}, options...)
	m := NewMigrator(options...)
	return &m
}

// scriptFS builds an in-memory script directory "sql" from scripts keyed
// by version
func scriptFS(scripts map[int]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for version, content := range scripts {
		fsys[ScriptName("sql", version)] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

func sqliteTableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to look up table %s: %s", name, err)
	}
	return count > 0
}

func expectErrorContains(t *testing.T, err error, contains string) {
	t.Helper()
	if err == nil {
		t.Errorf("Expected an error containing '%s', got nil", contains)
	} else if !strings.Contains(err.Error(), contains) {
		t.Errorf("Expected an error containing '%s', got '%s'", contains, err.Error())
	}
}

// countingTranslator records every statement it is asked to translate
type countingTranslator struct {
	mu         sync.Mutex
	statements []string
}

func (c *countingTranslator) Translate(statement string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statements = append(c.statements, statement)
	return statement
}

func (c *countingTranslator) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.statements)
}

// StrLog is a Logger keeping every printed line
type StrLog []string

func (l *StrLog) Print(msgs ...interface{}) {
	*l = append(*l, fmt.Sprint(msgs...))
}

func (l StrLog) Contains(s string) bool {
	for _, line := range l {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}
