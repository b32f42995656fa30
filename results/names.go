package results

import (
	"sort"
	"sync/atomic"
)

type binding struct {
	modal  bool
	values []any
}

type nameIndex struct {
	order []string
	items map[string]*binding
}

func newNameIndex() *nameIndex {
	return &nameIndex{items: make(map[string]*binding)}
}

func (idx *nameIndex) bind(name string, modal bool, v any) {
	b := idx.items[name]
	if b == nil {
		b = &binding{}
		idx.items[name] = b
		idx.order = append(idx.order, name)
	}
	b.modal = modal
	if modal {
		b.values = []any{v}
	} else {
		b.values = append(b.values, v)
	}
}

func (idx *nameIndex) merge(other *nameIndex) {
	for _, name := range other.order {
		b := other.items[name]
		if b.modal {
			idx.bind(name, true, b.values[len(b.values)-1])
			continue
		}
		for _, v := range b.values {
			idx.bind(name, false, v)
		}
	}
}

func (idx *nameIndex) get(name string) any {
	b := idx.items[name]
	if b == nil {
		return nil
	}
	if b.modal {
		return b.values[len(b.values)-1]
	}
	return append([]any(nil), b.values...)
}

func (idx *nameIndex) copy() *nameIndex {
	result := newNameIndex()
	result.merge(idx)
	return result
}

func namedValue(n *Results) (any, bool) {
	child := n.children[0]
	atoms := child.appendAtoms(nil)
	switch len(atoms) {
	case 0:
		return nil, false
	case 1:
		return atomValue(atoms[0]), true
	default:
		return child, true
	}
}

// generation changes on every mutation, any mutation may change names seen by ancestors.
var generation atomic.Uint64

type cachedIndex struct {
	generation uint64
	idx        *nameIndex
}

func changed() {
	generation.Add(1)
}

// names returns the index of names bound in the subtree, callers must not modify it.
func (r *Results) names() *nameIndex {
	gen := generation.Load()
	if c := r.indexed.Load(); c != nil && c.generation == gen {
		return c.idx
	}
	idx := r.buildNames()
	r.indexed.Store(&cachedIndex{gen, idx})
	return idx
}

func (r *Results) buildNames() *nameIndex {
	idx := newNameIndex()
	Walk(r, WalkLtr, func(n *Results) WalkerFlags {
		if n != r {
			if n.bindings != nil {
				idx.merge(n.bindings)
			}
			if n.kind == GroupKind {
				return WalkerSkipChildren
			}
		}
		if n.kind == NamedKind {
			v, bound := namedValue(n)
			if bound {
				idx.bind(n.name, n.modal, v)
			}
		}
		return 0
	})
	if r.bindings != nil {
		idx.merge(r.bindings)
	}
	return idx
}

// Get returns the value bound to name or nil.
// Modal names return the last bound value, cumulative names return []any of all values.
func (r *Results) Get(name string) any {
	return r.names().get(name)
}

// GetOr returns the value bound to name or def.
func (r *Results) GetOr(name string, def any) any {
	idx := r.names()
	if idx.items[name] == nil {
		return def
	}
	return idx.get(name)
}

func (r *Results) Has(name string) bool {
	return r.names().items[name] != nil
}

// Names returns bound names in binding order.
func (r *Results) Names() []string {
	return append([]string(nil), r.names().order...)
}

// Set binds value to name on the receiver, replacing any previous value.
func (r *Results) Set(name string, value any) *Results {
	if r.bindings == nil {
		r.bindings = newNameIndex()
	}
	r.bindings.bind(name, true, value)
	changed()
	return r
}

func (r *Results) ownAtoms() []*Results {
	if r.overlay == nil {
		r.overlay = append([]*Results{}, r.atoms()...)
	}
	return r.overlay
}

func (r *Results) valueAtoms(v any) []*Results {
	return fromValue(v, r.end, r.end).appendAtoms(nil)
}

// Append adds values to the end of the token list.
func (r *Results) Append(values ...any) *Results {
	atoms := r.ownAtoms()
	for _, v := range values {
		atoms = append(atoms, r.valueAtoms(v)...)
	}
	r.overlay = atoms
	changed()
	return r
}

// Insert inserts value before i-th token, negative i counts from the end.
// Indexes out of range are clamped.
func (r *Results) Insert(i int, value any) *Results {
	atoms := r.ownAtoms()
	if i < 0 {
		i += len(atoms)
	}
	if i < 0 {
		i = 0
	} else if i > len(atoms) {
		i = len(atoms)
	}
	inserted := r.valueAtoms(value)
	result := make([]*Results, 0, len(atoms)+len(inserted))
	result = append(result, atoms[:i]...)
	result = append(result, inserted...)
	result = append(result, atoms[i:]...)
	r.overlay = result
	changed()
	return r
}

// Pop removes and returns i-th token value, negative i counts from the end.
func (r *Results) Pop(i int) (any, bool) {
	atoms := r.ownAtoms()
	if i < 0 {
		i += len(atoms)
	}
	if i < 0 || i >= len(atoms) {
		return nil, false
	}
	v := atomValue(atoms[i])
	r.overlay = append(atoms[:i:i], atoms[i+1:]...)
	changed()
	return v, true
}

func sortedNames(idx *nameIndex) []string {
	result := append([]string(nil), idx.order...)
	sort.Strings(result)
	return result
}
