package models

import (
	"fmt"
	"strings"
)

// SchemaError reports a source file whose header does not match the
// expected 23-column schema. It is fatal: nothing is loaded from a file
// that fails schema validation.
type SchemaError struct {
	Missing    []string
	Unexpected []string
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing columns: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected columns: "+strings.Join(e.Unexpected, ", "))
	}
	if len(parts) == 0 {
		return "schema mismatch"
	}
	return "schema mismatch: " + strings.Join(parts, "; ")
}

// MalformedValueError reports a single cell that failed normalisation.
// It fails the row it belongs to, not the whole load.
type MalformedValueError struct {
	Line   int
	Column string
	Value  string
	Reason string
}

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("line %d, column %q: malformed value %q (%s)",
		e.Line, e.Column, e.Value, e.Reason)
}
