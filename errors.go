package colcsv

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateColumn is returned when a column name is declared twice on the same Reader or Writer.
	ErrDuplicateColumn = errors.New("colcsv: duplicate column declaration")
	// ErrUnknownColumn is returned when a Writer is asked for a column that was never declared.
	ErrUnknownColumn = errors.New("colcsv: unknown column")
	// ErrMissingColumns is returned when declared columns are absent from the header line.
	ErrMissingColumns = errors.New("colcsv: missing columns")
	// ErrDuplicateHeader is returned when the header line names the same column more than once.
	ErrDuplicateHeader = errors.New("colcsv: duplicated header names")
	// ErrExtraField is returned when a data line holds more fields than the header.
	ErrExtraField = errors.New("colcsv: too many fields in line")
	// ErrFieldCount is returned when WriteLine receives a value count different from the column count.
	ErrFieldCount = errors.New("colcsv: wrong number of fields")
	// ErrIndexRange is returned when a Writer column index is outside the declared columns.
	ErrIndexRange = errors.New("colcsv: column index out of range")
	// ErrNoTarget is returned when a Writer is used before SetTarget or Create, or after Close.
	ErrNoTarget = errors.New("colcsv: writer has no target")
	// ErrNotWritable is returned when a freshly installed target rejects writes.
	ErrNotWritable = errors.New("colcsv: target is not writable")
)

// ColumnError reports a column declaration or lookup failure.
type ColumnError struct {
	// Name identifies the source or sink, it is empty before a target is set.
	Name   string
	Column string
	// Index is the position the column holds or would hold, -1 when unknown.
	Index int
	Err   error
}

// Error formats the column error with the column name, index and owner name.
func (e *ColumnError) Error() string {
	if e == nil {
		return ""
	}
	if e.Index < 0 {
		return fmt.Sprintf("colcsv: column %q (name=%q): %v", e.Column, e.Name, e.Err)
	}
	return fmt.Sprintf("colcsv: column %q index %d (name=%q): %v", e.Column, e.Index, e.Name, e.Err)
}

// Unwrap returns the underlying Err.
func (e *ColumnError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HeaderError reports a header line that does not satisfy the declared columns.
// Missing, Found and Duplicated are always complete, whichever condition Err names.
type HeaderError struct {
	Name string
	// Missing lists declared columns absent from the header, sorted.
	Missing []string
	// Found lists the distinct header names in header order.
	Found []string
	// Duplicated lists header names seen more than once, sorted.
	Duplicated []string
	// Err is ErrMissingColumns or ErrDuplicateHeader.
	Err error
}

// Error formats the header error, naming every offending column.
func (e *HeaderError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "colcsv: header of %q: ", e.Name)
	if errors.Is(e.Err, ErrMissingColumns) {
		fmt.Fprintf(&b, "%d columns are missing. missing=%s, found %d columns=%s",
			len(e.Missing), strings.Join(e.Missing, ", "),
			len(e.Found), strings.Join(e.Found, ", "))
		return b.String()
	}
	if errors.Is(e.Err, ErrDuplicateHeader) {
		fmt.Fprintf(&b, "duplicated column names. duplicated=%s", strings.Join(e.Duplicated, ", "))
		return b.String()
	}
	fmt.Fprintf(&b, "%v", e.Err)
	return b.String()
}

// Unwrap returns the underlying Err.
func (e *HeaderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// LineError carries the location of a failure while dispatching a data line.
type LineError struct {
	Name string
	// Line is the 1-based data line number.
	Line int
	// Column is the 0-based field index.
	Column int
	// Token is the field text as read, before OnToken.
	Token string
	Err   error
}

// Error formats the line error with the source name, line, column and raw token.
func (e *LineError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("colcsv: %q line %d, column %d, token %q: %v", e.Name, e.Line, e.Column, e.Token, e.Err)
}

// Unwrap returns the underlying Err so LineError participates in errors.Is and errors.As.
func (e *LineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
