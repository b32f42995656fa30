/*
Package results contains the tree of parse results.

A Results node is one of four kinds:
  - Leaf holds a single token value (matched text or a value produced by an action);
  - List is a transparent sequence, its atoms are spliced into the parent;
  - Group is an opaque sequence, its parent sees it as a single atom;
  - Named binds a results name to exactly one child and is otherwise transparent.

Positional access (Len, At, Values) works on the flattened list of atoms of the receiver:
Leaf nodes and nested Group nodes. A Group receiver exposes its own contents.
Named access (Get, Has, Names) searches the same structure without descending
into nested groups.
*/
package results

import (
	"fmt"
	"sync/atomic"
)

type Kind int

const (
	LeafKind Kind = iota
	ListKind
	GroupKind
	NamedKind
)

func (k Kind) String() string {
	switch k {
	case LeafKind:
		return "leaf"
	case ListKind:
		return "list"
	case GroupKind:
		return "group"
	case NamedKind:
		return "named"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Results is a node of parse results tree.
// Nodes produced by a parser are shared between results of different expressions, mutators
// never change children, they only modify the overlay and dynamic bindings of the receiver.
// Results is not safe for concurrent mutation.
type Results struct {
	kind       Kind
	value      any
	name       string
	modal      bool
	children   []*Results
	start, end int

	overlay  []*Results
	bindings *nameIndex
	indexed  atomic.Pointer[cachedIndex]
}

// Leaf creates a node holding a single token value.
func Leaf(value any, start, end int) *Results {
	return &Results{kind: LeafKind, value: value, start: start, end: end}
}

// List creates a transparent sequence node.
func List(start, end int, children ...*Results) *Results {
	return &Results{kind: ListKind, children: compact(children), start: start, end: end}
}

// Group creates an opaque sequence node.
func Group(start, end int, children ...*Results) *Results {
	return &Results{kind: GroupKind, children: compact(children), start: start, end: end}
}

// Empty creates a list node with no tokens at loc.
func Empty(loc int) *Results {
	return &Results{kind: ListKind, start: loc, end: loc}
}

// Named binds name to child. A modal name keeps only its last bound value,
// a non-modal (cumulative) one collects all values in order.
func Named(name string, modal bool, child *Results) *Results {
	if child == nil {
		child = Empty(0)
	}
	return &Results{kind: NamedKind, name: name, modal: modal, children: []*Results{child}, start: child.start, end: child.end}
}

// FromValues converts action output to a list node.
// *Results values are kept as is, []any values become groups, anything else becomes a leaf.
func FromValues(start, end int, values []any) *Results {
	children := make([]*Results, 0, len(values))
	for _, v := range values {
		children = append(children, fromValue(v, start, end))
	}
	return &Results{kind: ListKind, children: children, start: start, end: end}
}

func fromValue(v any, start, end int) *Results {
	switch x := v.(type) {
	case *Results:
		return x
	case []any:
		g := FromValues(start, end, x)
		g.kind = GroupKind
		return g
	default:
		return Leaf(v, start, end)
	}
}

// Hollow returns a node without tokens keeping all names bound in r.
func Hollow(r *Results) *Results {
	result := Empty(r.start)
	result.end = r.end
	idx := r.names()
	if len(idx.order) > 0 {
		result.bindings = idx.copy()
	}
	return result
}

func compact(children []*Results) []*Results {
	result := children[:0:0]
	for _, c := range children {
		if c != nil {
			result = append(result, c)
		}
	}
	return result
}

func (r *Results) Kind() Kind {
	return r.kind
}

// Name returns results name of a Named node or empty string.
func (r *Results) Name() string {
	return r.name
}

// Modal reports whether the name of a Named node keeps only the last value.
func (r *Results) Modal() bool {
	return r.modal
}

// Value returns the token value of a Leaf node or nil.
func (r *Results) Value() any {
	return r.value
}

// Children returns direct child nodes, the slice must not be modified.
func (r *Results) Children() []*Results {
	return r.children
}

func (r *Results) Start() int {
	return r.start
}

func (r *Results) End() int {
	return r.end
}

// Copy returns a shallow copy sharing children with r.
func (r *Results) Copy() *Results {
	result := Results{
		kind:     r.kind,
		value:    r.value,
		name:     r.name,
		modal:    r.modal,
		children: r.children,
		start:    r.start,
		end:      r.end,
	}
	if r.overlay != nil {
		result.overlay = append([]*Results(nil), r.overlay...)
	}
	if r.bindings != nil {
		result.bindings = r.bindings.copy()
	}
	return &result
}

func (r *Results) appendAtoms(dst []*Results) []*Results {
	switch r.kind {
	case LeafKind, GroupKind:
		return append(dst, r)
	default:
		if r.overlay != nil {
			return append(dst, r.overlay...)
		}
		for _, c := range r.children {
			dst = c.appendAtoms(dst)
		}
		return dst
	}
}

func (r *Results) atoms() []*Results {
	if r.overlay != nil {
		return r.overlay
	}
	if r.kind == GroupKind {
		var result []*Results
		for _, c := range r.children {
			result = c.appendAtoms(result)
		}
		return result
	}
	return r.appendAtoms(nil)
}

func atomValue(a *Results) any {
	if a.kind == LeafKind {
		return a.value
	}
	return a
}

// Len returns the number of tokens.
func (r *Results) Len() int {
	return len(r.atoms())
}

// Node returns i-th token node, negative i counts from the end.
func (r *Results) Node(i int) (*Results, bool) {
	atoms := r.atoms()
	if i < 0 {
		i += len(atoms)
	}
	if i < 0 || i >= len(atoms) {
		return nil, false
	}
	return atoms[i], true
}

// At returns i-th token value, negative i counts from the end.
// Nested groups are returned as *Results, nil is returned when i is out of range.
func (r *Results) At(i int) any {
	a, found := r.Node(i)
	if !found {
		return nil
	}
	return atomValue(a)
}

// Values returns token values, nested groups are returned as *Results.
func (r *Results) Values() []any {
	atoms := r.atoms()
	result := make([]any, len(atoms))
	for i, a := range atoms {
		result[i] = atomValue(a)
	}
	return result
}

// Strings returns all leaf values formatted with fmt.Sprint, nested groups included.
func (r *Results) Strings() []string {
	var result []string
	for _, a := range r.atoms() {
		if a.kind == LeafKind {
			result = append(result, fmt.Sprint(a.value))
		} else {
			result = append(result, a.Strings()...)
		}
	}
	return result
}

// AsList returns token values with nested groups converted to []any.
func (r *Results) AsList() []any {
	atoms := r.atoms()
	result := make([]any, len(atoms))
	for i, a := range atoms {
		if a.kind == LeafKind {
			result[i] = a.value
		} else {
			result[i] = a.AsList()
		}
	}
	return result
}

// AsDict returns bound names and their values.
// Nested results with names are converted to maps, other nested results to lists.
func (r *Results) AsDict() map[string]any {
	idx := r.names()
	result := make(map[string]any, len(idx.order))
	for _, name := range idx.order {
		result[name] = dictValue(idx.get(name))
	}
	return result
}

func dictValue(v any) any {
	switch x := v.(type) {
	case *Results:
		if len(x.names().order) > 0 {
			return x.AsDict()
		}
		return x.AsList()
	case []any:
		result := make([]any, len(x))
		for i, item := range x {
			result[i] = dictValue(item)
		}
		return result
	default:
		return v
	}
}
