package grammar

import (
	"github.com/sirupsen/logrus"

	"github.com/klahnakoski/mo-parsing-sub000/cache"
	"github.com/klahnakoski/mo-parsing-sub000/results"
)

type memoKey struct {
	id        int
	loc       int
	preParse  bool
	doActions bool
}

type memoEntry struct {
	end int
	res *results.Results
	err error
}

type skipKey struct {
	engine int
	skipWS bool
	loc    int
}

// state holds everything a single top-level parse call owns.
type state struct {
	g     *Grammar
	text  string
	src   *lazySource
	memo  cache.Cache[memoKey, memoEntry]
	skips map[skipKey]int
}

func (g *Grammar) newState(text string) *state {
	st := &state{
		g:     g,
		text:  text,
		src:   newLazySource(text),
		skips: make(map[skipKey]int),
	}
	if g.packrat {
		if g.cacheSize > 0 {
			st.memo = cache.NewFIFO[memoKey, memoEntry](g.cacheSize)
		} else {
			st.memo = cache.NewUnbounded[memoKey, memoEntry]()
		}
	}
	return st
}

// logStats reports packrat cache counters for the finished parse.
func (st *state) logStats() {
	if st.memo == nil {
		return
	}
	stats := st.memo.Stats()
	st.g.logger.WithFields(logrus.Fields{
		"hits":      stats.Hits,
		"misses":    stats.Misses,
		"evictions": stats.Evictions,
		"entries":   st.memo.Len(),
	}).Debug("packrat cache")
}

// sub creates a state over a prefix of the text, used for lookbehind.
func (st *state) sub(end int) *state {
	result := st.g.newState(st.text[:end])
	result.src = st.src
	return result
}

// skip advances past whitespace and ignored expressions until nothing more can be skipped.
func (st *state) skip(e *Engine, skipWS bool, loc int) int {
	key := skipKey{e.id, skipWS, loc}
	if end, found := st.skips[key]; found {
		return end
	}

	// ignored expressions may skip using the same engine
	st.skips[key] = loc
	end := loc
	for {
		prev := end
		for _, ig := range e.ignores {
			for {
				l, _, err := st.parse(ig.id, end, false, false)
				if err != nil || l <= end {
					break
				}
				end = l
			}
		}
		if skipWS {
			for end < len(st.text) {
				r, size := runeAt(st.text, end)
				if !e.whitespace.has(r) {
					break
				}
				end += size
			}
		}
		if end == prev {
			break
		}
	}
	st.skips[key] = end
	return end
}

// parse matches expression id at loc.
// doActions is false for trial parses (lookahead, longest match selection),
// preParse is false when the caller has already skipped whitespace.
func (st *state) parse(id, loc int, doActions, preParse bool) (int, *results.Results, error) {
	key := memoKey{id, loc, preParse, doActions}
	if st.memo != nil {
		if entry, found := st.memo.Get(key); found {
			if entry.err != nil {
				if pe, isParseError := entry.err.(*ParseError); isParseError {
					return 0, nil, pe.copy()
				}
				return 0, nil, entry.err
			}
			return entry.end, entry.res.Copy(), nil
		}
	}

	end, res, err := st.parseNoCache(id, loc, doActions, preParse)
	if st.memo != nil {
		entry := memoEntry{end: end, res: res, err: err}
		if pe, isParseError := err.(*ParseError); isParseError {
			entry.err = pe.copy()
		}
		if res != nil {
			entry.res = res.Copy()
		}
		st.memo.Set(key, entry)
	}
	return end, res, err
}

func (st *state) parseNoCache(id, loc int, doActions, preParse bool) (int, *results.Results, error) {
	n := st.g.nodes[id]
	debug := n.debug || st.g.debug
	preLoc := loc
	if preParse && n.callPreParse {
		preLoc = st.skip(n.engine, n.skipWS, loc)
	}
	if debug {
		st.trace(n, preLoc).Debug("match attempt")
	}

	end, res, err := n.impl.parseImpl(st, n, preLoc, doActions, preParse && !n.callPreParse)
	if err == nil && res == nil {
		res = results.Empty(preLoc)
	}
	if err == nil && len(n.actions) > 0 && doActions {
		res, err = st.runActions(n, preLoc, end, res)
	}
	if err != nil {
		if pe, isParseError := err.(*ParseError); isParseError {
			err = st.complete(pe, preLoc, id)
		}
		if n.failAction != nil {
			n.failAction(st.text, preLoc, Expr{st.g, id}, err)
		}
		if debug {
			st.trace(n, preLoc).WithField("error", err.Error()).Debug("match failed")
		}
		return 0, nil, err
	}

	if n.resultsName != "" {
		res = results.Named(n.resultsName, n.modal, res)
	}
	if debug {
		st.trace(n, preLoc).WithFields(logrus.Fields{"end": end, "tokens": res.String()}).Debug("matched")
	}
	return end, res, nil
}

func (st *state) runActions(n *node, loc, end int, res *results.Results) (*results.Results, error) {
	for _, action := range n.actions {
		v, e := action(res, loc, st.text)
		if e != nil {
			if pe, isParseError := e.(*ParseError); isParseError {
				return nil, st.complete(pe, loc, n.id)
			}
			return nil, st.actionError(e, loc, n.id)
		}

		res = actionResults(v, loc, end, res)
	}
	return res, nil
}

// actionResults converts a value returned by an action, nil keeps the original tokens.
func actionResults(v any, loc, end int, res *results.Results) *results.Results {
	switch x := v.(type) {
	case nil:
		return res
	case *results.Results:
		return x
	case []any:
		return results.FromValues(loc, end, x)
	default:
		return results.FromValues(loc, end, []any{x})
	}
}

func (st *state) trace(n *node, loc int) logrus.FieldLogger {
	src := st.src.get()
	line, col := src.LineCol(loc)
	return st.g.logger.WithFields(logrus.Fields{
		"expr": Expr{st.g, n.id}.String(),
		"loc":  loc,
		"line": line,
		"col":  col,
	})
}
