package database

import (
	"fmt"
	"unicode/utf8"
)

const maxLoggedStatement = 100

// QueryError carries the underlying driver error of a failed statement.
// It is not classified further; callers decide what the failure means.
type QueryError struct {
	Statement string
	Err       error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q: %v", truncateStatement(e.Statement), e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// truncateStatement shortens s to at most maxLoggedStatement bytes without splitting a rune.
func truncateStatement(s string) string {
	if len(s) <= maxLoggedStatement {
		return s
	}
	cut := maxLoggedStatement
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
