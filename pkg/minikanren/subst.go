package minikanren

import (
	"fmt"
	"sort"
	"strings"
)

// Binding records a single variable-to-term binding added during
// unification. Unification reports the extension it produced (only the new
// bindings, not the whole substitution) so that dependent stores can react
// to exactly what changed.
type Binding struct {
	Var  *Var
	Term Term
}

// Substitution maps logic variables to terms. It is extended as unification
// succeeds and never destructively rewritten: states sharing a substitution
// copy it the first time a branch writes (copy-on-write).
//
// Invariant: no key ever transitively maps back to itself. The occurs-check
// at every binding site enforces this, which in turn guarantees that Walk
// always terminates.
type Substitution struct {
	bindings map[int64]Term
	shared   bool // when true, the map is aliased by another state and must be copied before writing
}

// NewSubstitution creates an empty substitution.
func NewSubstitution() *Substitution {
	return &Substitution{bindings: make(map[int64]Term)}
}

// clone returns a substitution sharing the receiver's bindings. Both copies
// are flagged shared; whichever writes first copies the map.
func (s *Substitution) clone() *Substitution {
	s.shared = true
	return &Substitution{bindings: s.bindings, shared: true}
}

// mutable copies the shared map if needed and returns a substitution safe to
// write through.
func (s *Substitution) mutable() *Substitution {
	if !s.shared {
		return s
	}
	fresh := make(map[int64]Term, len(s.bindings)+1)
	for k, v := range s.bindings {
		fresh[k] = v
	}
	return &Substitution{bindings: fresh}
}

// Size returns the number of bindings in the substitution.
func (s *Substitution) Size() int { return len(s.bindings) }

// Lookup returns the term bound to a variable, or nil if unbound.
func (s *Substitution) Lookup(v *Var) Term {
	return s.bindings[v.id]
}

// Walk follows variable bindings until it reaches a non-variable term or an
// unbound variable. Termination is guaranteed by the occurs-check invariant.
func (s *Substitution) Walk(t Term) Term {
	for {
		v, ok := t.(*Var)
		if !ok {
			return t
		}
		bound, present := s.bindings[v.id]
		if !present {
			return t
		}
		t = bound
	}
}

// WalkStar resolves a term deeply: the term is walked, and if the result is
// a pair its car and cdr are resolved recursively, producing a tree whose
// leaves are each individually walked.
func (s *Substitution) WalkStar(t Term) Term {
	t = s.Walk(t)
	if p, ok := t.(*Pair); ok {
		return NewPair(s.WalkStar(p.car), s.WalkStar(p.cdr))
	}
	return t
}

// occurs reports whether variable v occurs within term t, following
// bindings. Binding v to a term containing v would create an infinite term,
// so unification must refuse it.
func (s *Substitution) occurs(v *Var, t Term) bool {
	t = s.Walk(t)
	switch w := t.(type) {
	case *Var:
		return w.id == v.id
	case *Pair:
		return s.occurs(v, w.car) || s.occurs(v, w.cdr)
	default:
		return false
	}
}

// String renders the substitution as {x.1=2, y.3=(a b)} with keys in ID
// order for stable output.
func (s *Substitution) String() string {
	if len(s.bindings) == 0 {
		return "{}"
	}
	ids := make([]int64, 0, len(s.bindings))
	for id := range s.bindings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var b strings.Builder
	b.WriteString("{")
	for i, id := range ids {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "_%d=%s", id, s.bindings[id].String())
	}
	b.WriteString("}")
	return b.String()
}
