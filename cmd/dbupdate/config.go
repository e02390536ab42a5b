package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hsdatabase/schema"
	"github.com/spf13/cobra"
)

// Config holds the dbupdate settings. Environment variables provide the
// defaults and command line flags override them.
type Config struct {
	Driver       string        `env:"DBUPDATE_DRIVER" envDefault:"sqlite"`
	DSN          string        `env:"DBUPDATE_DSN"`
	Dialect      string        `env:"DBUPDATE_DIALECT"`
	ScriptsDir   string        `env:"DBUPDATE_SCRIPTS_DIR" envDefault:"."`
	ResourcePath string        `env:"DBUPDATE_RESOURCE_PATH" envDefault:"."`
	Table        string        `env:"DBUPDATE_TABLE" envDefault:"dbinfo"`
	Schema       string        `env:"DBUPDATE_SCHEMA"`
	Timeout      time.Duration `env:"DBUPDATE_TIMEOUT" envDefault:"5m"`
	Dev          bool          `env:"DBUPDATE_DEV"`

	Replace            []string
	QuoteAwareComments bool
}

// LoadConfig reads the environment into a Config.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c *Config) bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&c.Driver, "driver", c.Driver, "database/sql driver: postgres, mysql, sqlite, sqlite3 or sqlserver (env DBUPDATE_DRIVER)")
	flags.StringVar(&c.DSN, "dsn", c.DSN, "data source name passed to the driver (env DBUPDATE_DSN)")
	flags.StringVar(&c.Dialect, "dialect", c.Dialect, "SQL dialect, derived from the driver when empty (env DBUPDATE_DIALECT)")
	flags.StringVar(&c.ScriptsDir, "scripts", c.ScriptsDir, "directory holding the update scripts (env DBUPDATE_SCRIPTS_DIR)")
	flags.StringVar(&c.ResourcePath, "path", c.ResourcePath, "path of the scripts inside the scripts directory (env DBUPDATE_RESOURCE_PATH)")
	flags.StringVar(&c.Table, "table", c.Table, "name of the version table (env DBUPDATE_TABLE)")
	flags.StringVar(&c.Schema, "schema", c.Schema, "schema holding the version table (env DBUPDATE_SCHEMA)")
	flags.DurationVar(&c.Timeout, "timeout", c.Timeout, "stop starting new scripts after this long (env DBUPDATE_TIMEOUT)")
	flags.BoolVar(&c.Dev, "dev", c.Dev, "human readable debug logging (env DBUPDATE_DEV)")
	flags.StringArrayVar(&c.Replace, "replace", c.Replace, "rewrite old=new in every statement, may be repeated")
	flags.BoolVar(&c.QuoteAwareComments, "quote-aware-comments", c.QuoteAwareComments, "do not treat '#' inside quotes as a comment")
}

// dialectFor picks the dialect named by dialect, or the one matching
// driver when dialect is empty.
func dialectFor(driver, dialect string) (schema.Dialect, error) {
	name := dialect
	if name == "" {
		name = driver
	}
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pgx":
		return schema.Postgres, nil
	case "mysql", "mariadb":
		return schema.MySQL, nil
	case "sqlite", "sqlite3":
		return schema.SQLite, nil
	case "sqlserver", "mssql":
		return schema.MSSQL, nil
	}
	if dialect != "" {
		return nil, fmt.Errorf("unknown dialect %q", dialect)
	}
	return nil, fmt.Errorf("no dialect known for driver %q, set --dialect", driver)
}

// translatorFor builds a replacing Translator from old=new pairs. It
// returns nil when there is nothing to replace.
func translatorFor(pairs []string) (schema.Translator, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	oldnew := make([]string, 0, 2*len(pairs))
	for _, pair := range pairs {
		old, replacement, found := strings.Cut(pair, "=")
		if !found || old == "" {
			return nil, fmt.Errorf("invalid replacement %q, expected old=new", pair)
		}
		oldnew = append(oldnew, old, replacement)
	}
	return schema.ReplaceTranslator(oldnew...), nil
}

func (c Config) migratorOptions() ([]schema.Option, error) {
	dialect, err := dialectFor(c.Driver, c.Dialect)
	if err != nil {
		return nil, err
	}
	translator, err := translatorFor(c.Replace)
	if err != nil {
		return nil, err
	}

	options := []schema.Option{schema.WithDialect(dialect)}
	if c.Schema != "" {
		options = append(options, schema.WithTableName(c.Schema, c.Table))
	} else {
		options = append(options, schema.WithTableName(c.Table))
	}
	if translator != nil {
		options = append(options, schema.WithTranslator(translator))
	}
	if c.QuoteAwareComments {
		options = append(options, schema.WithQuoteAwareComments())
	}
	return options, nil
}
