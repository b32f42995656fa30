/*
Package parsing is a general-purpose parsing expression grammar (PEG) library
with packrat memoization.

Consists of subpackages:
  - grammar: grammar arena, parser elements (tokens, enhancements, expressions),
    engine contexts, parse runtime, and helpers like OneOf and InfixNotation;
  - results: tree of parse results with positional and named access;
  - cache: packrat cache implementations;
  - regex: converts a constrained regular expression dialect to grammar elements;
  - source: input text with line and column mapping.

Typical usage is:

1. Create a grammar arena and compose elements (literals, words, sequences,
alternatives, repetitions) into an expression. Grammars are plain Go values,
the same expression can be used for different inputs.

2. Attach semantic actions and results names to the parts of interest.

3. Call ParseString, ScanString, SearchString, or TransformString on the
top-level expression and inspect the returned results.
*/
package parsing

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error classes used by subpackages, each class contains up to 99 error codes:
const (
	GrammarErrors = 1   // used by grammar for construction and validation errors
	ParseErrors   = 101 // used by grammar for parse failures
	RegexErrors   = 201 // used by regex
	ConfigErrors  = 301 // used by grammar configuration
	ExampleErrors = 401 // used by example programs
)

// Error is the error type used for grammar construction, validation, and configuration errors.
// Parse failures use grammar.ParseError, which reports the same codes via ErrorCode.
type Error struct {
	// Code contains non-zero error code.
	Code int

	// Message contains non-empty error message including source name and position information if provided.
	Message string

	// SourceName contains source name that caused this error or empty string.
	SourceName string

	// Line contains line number in source text or 0.
	Line int

	// Col contains column number in source text or 0.
	Col int
}

// SourcePos is used to retrieve source name and position information when constructing an error;
// source.Pos implements this interface.
type SourcePos interface {
	// SourceName returns source name or empty string.
	SourceName() string
	// Line returns line number or 0.
	Line() int
	// Col returns column number or 0.
	Col() int
}

// Coded is implemented by all error types of this module.
type Coded interface {
	error
	ErrorCode() int
}

// NewError creates new Error structure.
// name, line, and col will be added to error message if provided (non-zero).
func NewError(code int, msg, name string, line, col int) *Error {
	if line != 0 && col != 0 {
		if name == "" {
			msg += fmt.Sprintf(" at line %d col %d", line, col)
		} else {
			msg += fmt.Sprintf(" in %s at line %d col %d", name, line, col)
		}
	}
	return &Error{code, msg, name, line, col}
}

// Error simply returns Error.Message.
func (e *Error) Error() string {
	return e.Message
}

// ErrorCode returns Error.Code.
func (e *Error) ErrorCode() int {
	return e.Code
}

// FormatError creates Error structure with no source and position information.
// params will be added to error message using fmt.Sprintf function.
func FormatError(code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, "", 0, 0)
}

// FormatErrorPos creates Error structure with source and position information.
// pos must not be nil.
// params will be added to error message using fmt.Sprintf function.
func FormatErrorPos(pos SourcePos, code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, pos.SourceName(), pos.Line(), pos.Col())
}

// ErrorCode returns the code of the first Coded error in the chain of e, 0 if there is none.
func ErrorCode(e error) int {
	var c Coded
	if !errors.As(e, &c) {
		return 0
	}

	return c.ErrorCode()
}
