package schema

import "strings"

// Translator rewrites a parsed statement before it is executed, typically to
// adapt it to the SQL dialect of the target database.
type Translator interface {
	Translate(statement string) string
}

// TranslatorFunc adapts an ordinary function into a Translator.
type TranslatorFunc func(statement string) string

// Translate calls f(statement).
func (f TranslatorFunc) Translate(statement string) string {
	return f(statement)
}

// Identity is the Translator which returns every statement unchanged. It is
// the default for a new Migrator.
var Identity Translator = TranslatorFunc(func(statement string) string {
	return statement
})

// ReplaceTranslator builds a Translator which replaces each old string with
// its new counterpart, in argument order and without overlapping matches
// (see strings.NewReplacer). It panics if given an odd number of arguments.
func ReplaceTranslator(oldnew ...string) Translator {
	r := strings.NewReplacer(oldnew...)
	return TranslatorFunc(r.Replace)
}

// ChainTranslators applies translators from left to right.
func ChainTranslators(translators ...Translator) Translator {
	return TranslatorFunc(func(statement string) string {
		for _, t := range translators {
			statement = t.Translate(statement)
		}
		return statement
	})
}
