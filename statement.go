package schema

import (
	"bufio"
	"io"
	"strings"
)

// Statement is a single SQL statement read from an update script, with the
// terminating semicolon and all comments removed.
type Statement struct {
	// Line is the line of the script on which the statement was terminated.
	Line int
	SQL  string
}

// ParseOption customizes a StatementReader.
type ParseOption func(s *StatementReader)

// QuoteAwareComments makes a StatementReader ignore '#' characters which
// appear inside single-quoted, double-quoted or backtick-quoted text on the
// same line. By default everything from the first '#' on a line is a
// comment, wherever it appears.
func QuoteAwareComments() ParseOption {
	return func(s *StatementReader) {
		s.quoteAware = true
	}
}

// StatementReader splits an update script into statements. Statements end
// with a semicolon at the end of a line and may span several lines; each
// line is trimmed and the lines of one statement are joined without a
// separator.
type StatementReader struct {
	r          *bufio.Reader
	line       int
	done       bool
	quoteAware bool
}

// NewStatementReader returns a StatementReader consuming r.
func NewStatementReader(r io.Reader, opts ...ParseOption) *StatementReader {
	s := &StatementReader{r: bufio.NewReader(r)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next returns the next statement of the script. It returns io.EOF once the
// script is exhausted, an *IncompleteStatementError if the script ends
// inside a statement, or a *TransportError if reading fails. After any error
// every further call returns io.EOF.
func (s *StatementReader) Next() (Statement, error) {
	if s.done {
		return Statement{}, io.EOF
	}

	var acc strings.Builder
	for {
		line, err := s.r.ReadString('\n')
		if err != nil && err != io.EOF {
			s.done = true
			return Statement{}, &TransportError{Op: "read script", Err: err}
		}
		if line == "" && err == io.EOF {
			s.done = true
			if strings.TrimSpace(acc.String()) != "" {
				return Statement{}, &IncompleteStatementError{Line: s.line, Statement: acc.String()}
			}
			return Statement{}, io.EOF
		}

		s.line++
		acc.WriteString(strings.TrimSpace(s.stripComment(line)))

		text := acc.String()
		if !strings.HasSuffix(text, ";") {
			continue
		}
		acc.Reset()

		text = strings.TrimSpace(strings.TrimSuffix(text, ";"))
		if text == "" {
			// A lone semicolon
			continue
		}
		return Statement{Line: s.line, SQL: text}, nil
	}
}

// Line returns the number of lines consumed so far.
func (s *StatementReader) Line() int {
	return s.line
}

func (s *StatementReader) stripComment(line string) string {
	if !s.quoteAware {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			return line[:i]
		}
		return line
	}

	// Doubled quotes ('it''s') toggle twice and so need no special casing
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '#':
			return line[:i]
		}
	}
	return line
}

// ParseStatements parses a complete script held in memory.
func ParseStatements(script string, opts ...ParseOption) (statements []Statement, err error) {
	statements = make([]Statement, 0)
	reader := NewStatementReader(strings.NewReader(script), opts...)
	for {
		stmt, err := reader.Next()
		if err == io.EOF {
			return statements, nil
		}
		if err != nil {
			return statements, err
		}
		statements = append(statements, stmt)
	}
}
