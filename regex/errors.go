package regex

import (
	"fmt"

	parsing "github.com/klahnakoski/mo-parsing-sub000"
	"github.com/klahnakoski/mo-parsing-sub000/source"
)

const (
	SyntaxError = iota + parsing.RegexErrors
	WrongRangeError
	WrongRepetitionError
)

// patternError is returned by syntax actions, its position is known only to the caller.
type patternError struct {
	code int
	msg  string
}

func (e *patternError) Error() string {
	return e.msg
}

func (e *patternError) at(pos source.Pos) *parsing.Error {
	return parsing.FormatErrorPos(pos, e.code, "%s", e.msg)
}

func syntaxError(pos source.Pos, found string) *parsing.Error {
	return parsing.FormatErrorPos(pos, SyntaxError, "unexpected %s in pattern", found)
}

func rangeError(msg string, params ...any) *patternError {
	return &patternError{WrongRangeError, "wrong character class: " + fmt.Sprintf(msg, params...)}
}

func repetitionError(msg string, params ...any) *patternError {
	return &patternError{WrongRepetitionError, "wrong repetition: " + fmt.Sprintf(msg, params...)}
}
