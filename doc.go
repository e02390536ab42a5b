// Package schema brings a database schema up to date by applying numbered
// SQL update scripts ("db-v0001.sql", "db-v0002.sql", ...) from inside the
// application which is using a database/sql.
//
// The current version is kept as a single name/value row in a table
// (dbinfo by default). Each script is applied in its own transaction
// together with the version update, so a database is never left between
// versions. Scripts are applied in order until the next one is not found.
//
// Basic usage instructions involve creating a schema.Migrator via the
// schema.NewMigrator() function, and then passing your *sql.DB and a
// ScriptSource to its .Update() method.
package schema
