package grammar

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/klahnakoski/mo-parsing-sub000/results"
)

// Action is called with tokens of a successful match, its start offset, and the whole input.
// It returns nil to keep tokens, *results.Results or []any to replace them,
// or any other value to replace them with a single token.
// Returning *ParseError (see Fail and Fatal) rejects the match, any other error aborts the parse.
type Action func(toks *results.Results, loc int, src string) (any, error)

// Condition accepts or rejects a match.
type Condition func(toks *results.Results, loc int, src string) bool

// FailAction is called when e fails to match at loc.
type FailAction func(src string, loc int, e Expr, err error)

// TokensAction adapts a function needing tokens only.
func TokensAction(fn func(toks *results.Results) any) Action {
	return func(toks *results.Results, loc int, src string) (any, error) {
		return fn(toks), nil
	}
}

// ReplaceWith returns an action replacing tokens with v.
func ReplaceWith(v any) Action {
	return func(toks *results.Results, loc int, src string) (any, error) {
		return []any{v}, nil
	}
}

// RemoveQuotes strips the first and the last character of the first token.
func RemoveQuotes(toks *results.Results, loc int, src string) (any, error) {
	s, isString := toks.At(0).(string)
	if !isString || len(s) < 2 {
		return nil, nil
	}
	return s[1 : len(s)-1], nil
}

func mapStrings(toks *results.Results, fn func(s string) (any, error)) (any, error) {
	values := toks.Values()
	for i, v := range values {
		s, isString := v.(string)
		if !isString {
			continue
		}
		converted, e := fn(s)
		if e != nil {
			return nil, e
		}
		values[i] = converted
	}
	return values, nil
}

// ConvertToInteger converts all string tokens to int.
func ConvertToInteger(toks *results.Results, loc int, src string) (any, error) {
	return mapStrings(toks, func(s string) (any, error) {
		v, e := strconv.Atoi(s)
		return v, errors.WithStack(e)
	})
}

// ConvertToFloat converts all string tokens to float64.
func ConvertToFloat(toks *results.Results, loc int, src string) (any, error) {
	return mapStrings(toks, func(s string) (any, error) {
		v, e := strconv.ParseFloat(s, 64)
		return v, errors.WithStack(e)
	})
}

func UpcaseTokens(toks *results.Results, loc int, src string) (any, error) {
	return mapStrings(toks, func(s string) (any, error) {
		return strings.ToUpper(s), nil
	})
}

func DowncaseTokens(toks *results.Results, loc int, src string) (any, error) {
	return mapStrings(toks, func(s string) (any, error) {
		return strings.ToLower(s), nil
	})
}

// Action replaces all actions of e, actions are called in order.
func (e Expr) Action(actions ...Action) Expr {
	e.node().actions = append([]Action(nil), actions...)
	e.g.touch()
	return e
}

// AddAction appends actions to e.
func (e Expr) AddAction(actions ...Action) Expr {
	n := e.node()
	n.actions = append(n.actions, actions...)
	e.g.touch()
	return e
}

// AddCondition appends a check rejecting the match with msg if cond returns false.
// A fatal condition stops backtracking.
func (e Expr) AddCondition(cond Condition, msg string, fatal bool) Expr {
	if msg == "" {
		msg = "failed user-defined condition"
	}
	return e.AddAction(func(toks *results.Results, loc int, src string) (any, error) {
		if cond(toks, loc, src) {
			return nil, nil
		}
		return nil, &ParseError{Code: ConditionError, Loc: loc, Msg: msg, fatal: fatal}
	})
}

// FailAction sets a function called on each failure of e.
func (e Expr) FailAction(fn FailAction) Expr {
	e.node().failAction = fn
	return e
}
