// Package minikanren implements a relational (miniKanren-style) logic
// programming engine. Given a program expressed as goals over symbolic terms,
// it lazily enumerates every substitution of free variables that satisfies the
// goals, including constraint goals over finite integer domains and
// tree-structural disequality.
//
// The engine provides the classic miniKanren operator set:
//   - Unification (Eq): constrains two terms to be equal
//   - Fresh variables: introduces new logic variables
//   - Disjunction (Conde): represents choice points with fair interleaving
//   - Conjunction (Conj): combines goals that must all succeed
//   - Disequality (Neq): constrains two terms to never become equal
//   - Finite domains (Infd, Plusfd, Timesfd, ...): integer constraint solving
//   - Run / NewQuery: executes a goal and reifies solutions on demand
//
// Evaluation is single-threaded, cooperative and pull-based: goals produce
// lazy streams of search states, and the driver forces suspended stream nodes
// one step at a time. Search states share their components structurally and
// copy them only when a branch writes, so cloning a state at a choice point
// is cheap.
//
// Logical failure (a unification mismatch, a violated constraint, an emptied
// domain) is a normal, pervasive outcome of search and is represented as an
// empty stream, never as an error or panic. Panics are reserved for
// programming-contract violations such as hashing an unresolved Projection or
// applying a finite-domain constraint to a non-numeric operand.
package minikanren

import (
	"fmt"
	"hash/maphash"
	"sync/atomic"
)

// WildcardName is the display name reserved for "don't care" variables.
// Every occurrence of a wildcard denotes a distinct variable; the name may
// never be used for a named query variable.
const WildcardName = "_"

// Term represents any value in the miniKanren universe. The built-in term
// kinds are closed: *Var, *Atom, *Pair, Nil and the transient *Projection.
// User-defined terms plug in through the UserTerm interface.
type Term interface {
	// String returns a human-readable representation of the term.
	String() string

	// Equal checks if this term is structurally equal to another term.
	// This is strict equality, not unification: two distinct unbound
	// variables are never Equal even though they unify.
	Equal(other Term) bool
}

// UserTerm is the extension point for opaque user-defined term kinds.
// A UserTerm participates in unification through its UnifyWith hook, which
// may recursively unify components via State.Unify and thereby extend the
// substitution.
type UserTerm interface {
	Term

	// Hash returns a stable hash of the term, consistent with Equal.
	Hash() uint64

	// UnifyWith attempts to unify the receiver with other under the given
	// state. Both sides have already been walked. On success it returns the
	// substitution extension it added; on mismatch it returns false.
	UnifyWith(other Term, st *State) ([]Binding, bool)
}

// Variable counter for generating unique variable IDs.
var varCounter int64

// Var represents a logic variable. Variables are bound to values through
// unification. Each variable carries a globally unique identifier; equality
// compares identifiers, never display names.
type Var struct {
	id   int64
	name string
}

// Fresh creates a new logic variable with an optional name for display.
// Each call generates a variable with a globally unique ID, so two variables
// created with the same name are still distinct.
//
// Example:
//
//	x := Fresh("x") // a variable displayed as x.<id>
//	y := Fresh("")  // an anonymous variable
func Fresh(name string) *Var {
	id := atomic.AddInt64(&varCounter, 1)
	return &Var{id: id, name: name}
}

// Wildcard creates a fresh "don't care" variable. Each call yields a
// distinct variable, so a term may contain several wildcards that bind
// independently.
func Wildcard() *Var {
	return Fresh(WildcardName)
}

// ID returns the variable's unique identifier.
func (v *Var) ID() int64 { return v.id }

// Name returns the variable's display name. May be empty.
func (v *Var) Name() string { return v.name }

// String returns the variable rendered as name.id, or _.id when anonymous.
func (v *Var) String() string {
	if v.name == "" {
		return fmt.Sprintf("_.%d", v.id)
	}
	return fmt.Sprintf("%s.%d", v.name, v.id)
}

// Equal reports whether other is the same variable (same unique ID).
func (v *Var) Equal(other Term) bool {
	if ov, ok := other.(*Var); ok {
		return v.id == ov.id
	}
	return false
}

// Atom represents an atomic literal value: a bool, an int, a rune or a
// string. Atoms are immutable and represent themselves.
type Atom struct {
	value interface{}
}

// NewAtom creates a new atom from a literal value. Finite-domain constraints
// require int atoms; other goals accept any comparable value.
func NewAtom(value interface{}) *Atom {
	return &Atom{value: value}
}

// Value returns the underlying literal.
func (a *Atom) Value() interface{} { return a.value }

// String renders the literal in its native notation: strings quoted, runes
// in single quotes, numbers and booleans as written.
func (a *Atom) String() string {
	switch v := a.value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case rune:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", a.value)
	}
}

// Equal reports whether other is an atom holding an equal value.
func (a *Atom) Equal(other Term) bool {
	if oa, ok := other.(*Atom); ok {
		return a.value == oa.value
	}
	return false
}

// Pair represents a cons cell. Pairs build lists and other compound
// structures. A proper list is a chain of pairs terminated by Nil.
type Pair struct {
	car Term
	cdr Term
}

// NewPair creates a new pair with the given car and cdr.
func NewPair(car, cdr Term) *Pair {
	return &Pair{car: car, cdr: cdr}
}

// Car returns the first element of the pair.
func (p *Pair) Car() Term { return p.car }

// Cdr returns the rest of the pair.
func (p *Pair) Cdr() Term { return p.cdr }

// String renders proper lists as (a b c) and improper tails as (a . b).
func (p *Pair) String() string {
	s := "(" + p.car.String()
	rest := p.cdr
	for {
		switch r := rest.(type) {
		case *Pair:
			s += " " + r.car.String()
			rest = r.cdr
		case emptyList:
			return s + ")"
		default:
			return s + " . " + rest.String() + ")"
		}
	}
}

// Equal reports whether other is a pair with Equal car and cdr.
func (p *Pair) Equal(other Term) bool {
	if op, ok := other.(*Pair); ok {
		return p.car.Equal(op.car) && p.cdr.Equal(op.cdr)
	}
	return false
}

// emptyList is the empty list terminator. There is a single canonical value,
// exposed as Nil.
type emptyList struct{}

// Nil is the empty list.
var Nil Term = emptyList{}

func (emptyList) String() string { return "()" }

func (emptyList) Equal(other Term) bool {
	_, ok := other.(emptyList)
	return ok
}

// Projection is a transient marker standing in for the eventual value of a
// variable inside non-relational host code. A Projection must be resolved
// (via State.Resolve or the Project goal) before it is compared or hashed;
// doing either on an unresolved Projection is a programming error and
// panics, since silently treating the marker as a value would corrupt
// results.
type Projection struct {
	v *Var
}

// NewProjection creates a projection marker for the given variable.
func NewProjection(v *Var) *Projection {
	return &Projection{v: v}
}

// Variable returns the variable the projection stands for.
func (p *Projection) Variable() *Var { return p.v }

// String identifies the marker without resolving it.
func (p *Projection) String() string {
	return fmt.Sprintf("<projection %s>", p.v.String())
}

// Equal panics: an unresolved Projection has no value to compare.
func (p *Projection) Equal(other Term) bool {
	panic(fmt.Sprintf("minikanren: compared unresolved projection of %s", p.v.String()))
}

// Hash panics: an unresolved Projection has no value to hash.
func (p *Projection) Hash() uint64 {
	panic(fmt.Sprintf("minikanren: hashed unresolved projection of %s", p.v.String()))
}

// hashSeed is shared by all HashTerm calls so hashes are comparable within
// a process.
var hashSeed = maphash.MakeSeed()

// HashTerm computes a structural hash of a term, consistent with Equal.
// Variables hash by unique ID. Hashing an unresolved Projection panics.
func HashTerm(t Term) uint64 {
	var h maphash.Hash
	h.SetSeed(hashSeed)
	hashInto(&h, t)
	return h.Sum64()
}

func hashInto(h *maphash.Hash, t Term) {
	switch v := t.(type) {
	case *Var:
		h.WriteByte(1)
		fmt.Fprintf(h, "%d", v.id)
	case *Atom:
		h.WriteByte(2)
		fmt.Fprintf(h, "%T%v", v.value, v.value)
	case *Pair:
		h.WriteByte(3)
		hashInto(h, v.car)
		hashInto(h, v.cdr)
	case emptyList:
		h.WriteByte(4)
	case *Projection:
		v.Hash() // panics
	case UserTerm:
		h.WriteByte(5)
		fmt.Fprintf(h, "%d", v.Hash())
	default:
		panic(fmt.Sprintf("minikanren: cannot hash term of type %T", t))
	}
}

// List creates a proper list (a chain of pairs terminated by Nil) from the
// given terms.
//
// Example:
//
//	lst := List(NewAtom(1), NewAtom(2), NewAtom(3))
//	// (1 2 3)
func List(terms ...Term) Term {
	result := Nil
	for i := len(terms) - 1; i >= 0; i-- {
		result = NewPair(terms[i], result)
	}
	return result
}

// Atoms builds a proper list of atoms from literal values. Convenience for
// tests and examples.
func Atoms(values ...interface{}) Term {
	terms := make([]Term, len(values))
	for i, v := range values {
		terms[i] = NewAtom(v)
	}
	return List(terms...)
}

// listSlice converts a walked proper list into a slice of its elements.
// Returns false if the term is not a proper list.
func listSlice(t Term) ([]Term, bool) {
	var out []Term
	for {
		switch v := t.(type) {
		case emptyList:
			return out, true
		case *Pair:
			out = append(out, v.car)
			t = v.cdr
		default:
			return nil, false
		}
	}
}
