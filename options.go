package schema

import "context"

// Option supports option chaining when creating a Migrator.
// An Option is a function which takes a Migrator and
// returns a Migrator with an Option modified.
type Option func(m Migrator) Migrator

// WithDialect builds an Option which will set the supplied
// dialect on a Migrator. Usage: NewMigrator(WithDialect(MySQL))
func WithDialect(dialect Dialect) Option {
	return func(m Migrator) Migrator {
		m.Dialect = dialect
		return m
	}
}

// WithTableName is an option which customizes the name of the dbinfo
// version table. It can be called with either 1 or 2 string arguments. If
// called with 2 arguments, the first argument is assumed to be a schema
// qualifier (for example, WithTableName("public", "dbinfo") would
// assign the table named "dbinfo" in the the default "public"
// schema for Postgres)
func WithTableName(names ...string) Option {
	return func(m Migrator) Migrator {
		switch len(names) {
		case 0:
			// No-op if no customization was provided
		case 1:
			m.TableName = names[0]
		default:
			m.SchemaName = names[0]
			m.TableName = names[1]
		}
		return m
	}
}

// WithContext is an Option which sets the Migrator to run within the provided
// Context. Cancelling it stops Update before the next script is started; a
// script which is already running is never interrupted.
func WithContext(ctx context.Context) Option {
	return func(m Migrator) Migrator {
		m.ctx = ctx
		return m
	}
}

// WithTranslator builds an Option which rewrites every statement through
// translator before it is executed.
func WithTranslator(translator Translator) Option {
	return func(m Migrator) Migrator {
		m.Translator = translator
		return m
	}
}

// WithQuoteAwareComments is an Option which keeps '#' characters inside
// quoted text from starting a comment. See QuoteAwareComments.
func WithQuoteAwareComments() Option {
	return func(m Migrator) Migrator {
		m.parseOptions = append(append([]ParseOption(nil), m.parseOptions...), QuoteAwareComments())
		return m
	}
}

// Logger is the interface for logging operations of the logger.
// By default the migrator operates silently. Providing a Logger
// enables output of the migrator's operations.
type Logger interface {
	Print(...interface{})
}

// WithLogger builds an Option which will set the supplied Logger
// on a Migrator. Usage: NewMigrator(WithLogger(log.Default()))
func WithLogger(logger Logger) Option {
	return func(m Migrator) Migrator {
		m.Logger = logger
		return m
	}
}
