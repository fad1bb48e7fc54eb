package tape

import (
	"errors"
	"fmt"
	"strings"
)

// Row-level error codes surfaced in import results
const (
	ErrCodeParse           = "ERR_TAPE_PARSE"
	ErrCodeValidation      = "ERR_TAPE_VALIDATION"
	ErrCodeRequired        = "ERR_TAPE_REQUIRED_FIELD"
	ErrCodeBadType         = "ERR_TAPE_BAD_TYPE"
	ErrCodeBadLength       = "ERR_TAPE_BAD_LENGTH"
	ErrCodeBadRange        = "ERR_TAPE_BAD_RANGE"
	ErrCodeBadState        = "ERR_TAPE_BAD_STATE"
	ErrCodeBadZip          = "ERR_TAPE_BAD_ZIP"
	ErrCodeDuplicateInFile = "ERR_TAPE_DUPLICATE_IN_FILE"
)

// File-level errors that abort the import before any row lands
var (
	ErrEmptyFile     = errors.New("tape file is empty")
	ErrNotUTF8       = errors.New("tape file is not valid UTF-8")
	ErrMissingHeader = errors.New("tape file has no header row")
)

// RowError pins a failure to a file line and column
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column %q: %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError creates a RowError without the offending value
func NewRowError(row int, column, code, message string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message}
}

// NewRowErrorWithValue creates a RowError carrying the offending value
func NewRowErrorWithValue(row int, column, code, message, value string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message, Value: value}
}

// ErrorList collects row errors up to a cap. The cap bounds what an
// import run persists as error detail; the total keeps counting past
// it so callers can report how many failures the cap hid.
type ErrorList struct {
	kept  []RowError
	cap   int
	total int
}

// NewErrorList creates a list keeping at most maxErrors entries
func NewErrorList(maxErrors int) *ErrorList {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorList{
		kept: make([]RowError, 0, maxErrors),
		cap:  maxErrors,
	}
}

// Add records an error, dropping detail past the cap
func (l *ErrorList) Add(err RowError) {
	l.total++
	if len(l.kept) < l.cap {
		l.kept = append(l.kept, err)
	}
}

// AddRequired records a missing required column
func (l *ErrorList) AddRequired(row int, column string) {
	l.Add(NewRowError(row, column, ErrCodeRequired, "required value is blank"))
}

// AddBadType records a value that failed type parsing
func (l *ErrorList) AddBadType(row int, column, wantType, value string) {
	l.Add(NewRowErrorWithValue(row, column, ErrCodeBadType,
		"expected "+wantType, value))
}

// AddBadLength records a value outside its length bounds
func (l *ErrorList) AddBadLength(row int, column string, min, max int) {
	var msg string
	switch {
	case min > 0 && max > 0:
		msg = fmt.Sprintf("length must be between %d and %d", min, max)
	case max > 0:
		msg = fmt.Sprintf("length must be at most %d", max)
	default:
		msg = fmt.Sprintf("length must be at least %d", min)
	}
	l.Add(NewRowError(row, column, ErrCodeBadLength, msg))
}

// Errors returns the kept errors
func (l *ErrorList) Errors() []RowError {
	return l.kept
}

// Count returns the number of kept errors
func (l *ErrorList) Count() int {
	return len(l.kept)
}

// TotalCount returns all errors seen, kept or not
func (l *ErrorList) TotalCount() int {
	return l.total
}

// HasErrors reports whether anything failed
func (l *ErrorList) HasErrors() bool {
	return l.total > 0
}

// Truncated reports whether the cap dropped error detail
func (l *ErrorList) Truncated() bool {
	return l.total > l.cap
}

// String renders the list for logs
func (l *ErrorList) String() string {
	if !l.HasErrors() {
		return "no errors"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error(s)", l.total)
	if l.Truncated() {
		fmt.Fprintf(&sb, " (first %d shown)", l.cap)
	}
	sb.WriteString(":\n")
	for _, err := range l.kept {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}
