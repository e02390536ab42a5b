package schema

import (
	"crypto/md5"
	"fmt"
	"path"
	"strings"
)

// ScriptNameFormat is the file name of the update script which brings the
// database to a given version
const ScriptNameFormat = "db-v%04d.sql"

// Script is the update script which brings the database to Version
type Script struct {
	Version int
	Name    string
	Content string

	// StatementCount is the number of statements in Content. It is set
	// once the script has been parsed by Migrator.Plan or applied.
	StatementCount int
}

// MD5 computes the MD5 hash of the Content for informational purposes.
func (s *Script) MD5() string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s.Content)))
}

// Statements parses the Content into its statements
func (s *Script) Statements(opts ...ParseOption) ([]Statement, error) {
	return ParseStatements(s.Content, opts...)
}

// ScriptName returns the name under which the script for version is looked
// up in resourcePath, e.g. ScriptName("sql", 7) is "sql/db-v0007.sql".
func ScriptName(resourcePath string, version int) string {
	name := fmt.Sprintf(ScriptNameFormat, version)
	resourcePath = strings.TrimPrefix(resourcePath, "/")
	if resourcePath == "" {
		return name
	}
	return path.Join(resourcePath, name)
}
