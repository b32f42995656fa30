package grammar

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	parsing "github.com/klahnakoski/mo-parsing-sub000"
	"github.com/klahnakoski/mo-parsing-sub000/source"
)

// Grammar construction errors, reported as *parsing.Error.
const (
	RecursionError = iota + parsing.GrammarErrors
	UnboundError
	WrongRegexpError
	WrongArgError
)

// Parse failures, reported as *ParseError.
const (
	ExpectedError = iota + parsing.ParseErrors
	FatalError
	SyntaxError
	ConditionError
	MissingError
	UnboundForwardError
	ActionError
)

const DefaultMarker = ">!<"

// lazySource builds line index on first use, most parse failures are never formatted.
type lazySource struct {
	once sync.Once
	text string
	src  *source.Source
}

func newLazySource(text string) *lazySource {
	return &lazySource{text: text}
}

func (ls *lazySource) get() *source.Source {
	ls.once.Do(func() {
		ls.src = source.New("", ls.text)
	})
	return ls.src
}

// ParseError describes a parse failure.
// Ordinary failures are recovered by alternatives and repetitions, fatal ones abort the whole parse.
// The message is composed only when Error is called.
type ParseError struct {
	// Code is one of ExpectedError .. ActionError.
	Code int
	// Loc is the byte offset of the failure.
	Loc int
	// Msg overrides the default "Expecting <expr>" message if not empty.
	Msg string
	// Expr is the failed expression, zero Expr if unknown.
	Expr Expr
	// Causes contains failures of alternatives when several were tried.
	Causes []*ParseError

	fatal bool
	src   *lazySource
	cause error
}

// Fail creates an ordinary parse failure, may be returned by actions to reject a match.
func Fail(msg string, params ...any) *ParseError {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return &ParseError{Code: ExpectedError, Loc: -1, Msg: msg}
}

// Fatal creates a failure that stops backtracking, may be returned by actions.
func Fatal(msg string, params ...any) *ParseError {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return &ParseError{Code: FatalError, Loc: -1, Msg: msg, fatal: true}
}

func (st *state) newError(code int, loc int, id int, msg string) *ParseError {
	return &ParseError{
		Code:  code,
		Loc:   loc,
		Msg:   msg,
		Expr:  Expr{st.g, id},
		fatal: code == FatalError || code == SyntaxError || code == UnboundForwardError || code == ActionError,
		src:   st.src,
	}
}

func (st *state) expected(loc int, id int) *ParseError {
	return st.newError(ExpectedError, loc, id, "")
}

// complete fills fields left empty by Fail and Fatal.
func (st *state) complete(e *ParseError, loc int, id int) *ParseError {
	if e.Loc < 0 {
		e.Loc = loc
	}
	if e.Expr.g == nil {
		e.Expr = Expr{st.g, id}
	}
	if e.src == nil {
		e.src = st.src
	}
	return e
}

func (st *state) actionError(e error, loc int, id int) *ParseError {
	result := st.newError(ActionError, loc, id, "")
	result.cause = errors.Wrapf(e, "action of %s failed at char %d", result.Expr.String(), loc)
	return result
}

func (e *ParseError) copy() *ParseError {
	result := *e
	if e.Causes != nil {
		result.Causes = append([]*ParseError(nil), e.Causes...)
	}
	return &result
}

// Fatal reports whether the failure must not be recovered by alternatives.
func (e *ParseError) Fatal() bool {
	return e.fatal
}

func (e *ParseError) ErrorCode() int {
	return e.Code
}

// Unwrap returns the error returned by a semantic action or nil.
func (e *ParseError) Unwrap() error {
	return e.cause
}

// Cause is the github.com/pkg/errors counterpart of Unwrap.
func (e *ParseError) Cause() error {
	return e.cause
}

func (e *ParseError) text() string {
	if e.src == nil {
		return ""
	}
	return e.src.text
}

func (e *ParseError) message() string {
	if e.cause != nil {
		return e.cause.Error()
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Expr.g == nil {
		return "parse failed"
	}
	return "Expecting " + e.Expr.String()
}

func (e *ParseError) found() string {
	text := e.text()
	if e.Loc >= len(text) {
		return "end of text"
	}

	r, size := utf8.DecodeRuneInString(text[e.Loc:])
	if !isWordRune(r) {
		return strconv.Quote(text[e.Loc : e.Loc+size])
	}
	end := e.Loc + size
	for end < len(text) {
		r, size = utf8.DecodeRuneInString(text[end:])
		if !isWordRune(r) {
			break
		}
		end += size
	}
	return strconv.Quote(text[e.Loc:end])
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (e *ParseError) Error() string {
	if e.src == nil {
		return e.message()
	}
	return fmt.Sprintf("%s, found %s (at char %d), (line:%d, col:%d)", e.message(), e.found(), e.Loc, e.LineNo(), e.Col())
}

// LineNo returns 1-based line number of the failure.
func (e *ParseError) LineNo() int {
	if e.src == nil {
		return 0
	}
	return e.src.get().LineNo(e.Loc)
}

// Col returns 1-based column (in runes) of the failure.
func (e *ParseError) Col() int {
	if e.src == nil {
		return 0
	}
	return e.src.get().Col(e.Loc)
}

// Line returns the text of the line containing the failure.
func (e *ParseError) Line() string {
	if e.src == nil {
		return ""
	}
	return e.src.get().Line(e.Loc)
}

// MarkInputLine returns the failed line with marker inserted at the failure column.
// DefaultMarker is used if marker is empty.
func (e *ParseError) MarkInputLine(marker string) string {
	if marker == "" {
		marker = DefaultMarker
	}
	line := e.Line()
	col := e.Col() - 1
	if col < 0 {
		col = 0
	}
	i := 0
	for ; col > 0 && i < len(line); col-- {
		_, size := utf8.DecodeRuneInString(line[i:])
		i += size
	}
	return strings.TrimSpace(line[:i] + marker + line[i:])
}

// Explain returns the failure message followed by messages of nested causes,
// the deepest causes go first at each level.
func (e *ParseError) Explain() string {
	sb := &strings.Builder{}
	e.explain(sb, "")
	return sb.String()
}

func (e *ParseError) explain(sb *strings.Builder, indent string) {
	if indent != "" {
		sb.WriteString("\n")
	}
	sb.WriteString(indent + e.Error())
	causes := append([]*ParseError(nil), e.Causes...)
	slices.SortStableFunc(causes, func(a, b *ParseError) int {
		return b.Loc - a.Loc
	})
	for _, c := range causes {
		c.explain(sb, indent+"  ")
	}
}

// canRecover reports whether e is an ordinary parse failure.
func canRecover(e error) bool {
	pe, isParseError := e.(*ParseError)
	return isParseError && !pe.fatal
}

func constructionError(code int, msg string, params ...any) *parsing.Error {
	return parsing.FormatError(code, msg, params...)
}

func recursionError(names []string) *parsing.Error {
	return constructionError(RecursionError, "found left-recursive expressions: %s", strings.Join(names, ", "))
}

func unboundError(names []string) *parsing.Error {
	return constructionError(UnboundError, "unbound forward expressions: %s", strings.Join(names, ", "))
}

func regexpError(pattern string, e error) *parsing.Error {
	return constructionError(WrongRegexpError, "incorrect regexp %q (%s)", pattern, e.Error())
}

func wrongArgError(msg string, params ...any) *parsing.Error {
	return constructionError(WrongArgError, msg, params...)
}
