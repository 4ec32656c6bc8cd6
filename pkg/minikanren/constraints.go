package minikanren

import (
	"fmt"
	"strings"
)

// RunResult is the outcome of running a constraint against a state.
// A constraint is either fully discharged (ok with keep == nil), re-added
// unchanged or narrowed (ok with keep != nil), or violated (ok == false,
// aborting the branch). A constraint is never left in a state that
// contradicts the current substitution.
type RunResult struct {
	ok   bool
	keep Constraint
}

func runFailed() RunResult          { return RunResult{} }
func runDischarged() RunResult      { return RunResult{ok: true} }
func runKeep(c Constraint) RunResult { return RunResult{ok: true, keep: c} }

// Constraint is a pending condition that must remain satisfiable as the
// substitution grows. The store re-runs every active constraint whenever
// the substitution is extended or a domain narrows.
type Constraint interface {
	// Operands returns the terms the constraint ranges over, used for
	// relevance filtering when displaying residual constraints.
	Operands() []Term

	// Run re-evaluates the constraint against the state. It may narrow
	// domains or promote singleton domains to bindings through the state.
	Run(st *State) RunResult

	// String renders the constraint for residual-constraint display.
	String() string
}

// constraintSet is the set of active constraints, shared copy-on-write
// between branches. Constraint values themselves are immutable, so sharing
// the backing slice is safe until a branch adds or drops one.
type constraintSet struct {
	items  []Constraint
	shared bool
}

func newConstraintSet() *constraintSet {
	return &constraintSet{}
}

func (cs *constraintSet) clone() *constraintSet {
	cs.shared = true
	return &constraintSet{items: cs.items, shared: true}
}

// replaced swaps in a freshly built item slice, dropping any sharing.
func (cs *constraintSet) replaced(items []Constraint) *constraintSet {
	return &constraintSet{items: items}
}

func (cs *constraintSet) withAdded(c Constraint) *constraintSet {
	items := make([]Constraint, 0, len(cs.items)+1)
	items = append(items, cs.items...)
	items = append(items, c)
	return &constraintSet{items: items}
}

// relevant returns the constraints whose operands mention a free variable of
// any of the given terms. With no terms, every constraint is returned.
func (cs *constraintSet) relevant(st *State, terms []Term) []Constraint {
	if len(terms) == 0 {
		out := make([]Constraint, len(cs.items))
		copy(out, cs.items)
		return out
	}
	interest := make(map[int64]bool)
	for _, t := range terms {
		collectFreeVars(st, t, interest)
	}
	var out []Constraint
	for _, c := range cs.items {
		mentioned := make(map[int64]bool)
		for _, op := range c.Operands() {
			collectFreeVars(st, op, mentioned)
		}
		for id := range mentioned {
			if interest[id] {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// collectFreeVars walks t deeply under st and records the IDs of every
// unbound variable it contains.
func collectFreeVars(st *State, t Term, into map[int64]bool) {
	switch w := st.Walk(t).(type) {
	case *Var:
		into[w.id] = true
	case *Pair:
		collectFreeVars(st, w.car, into)
		collectFreeVars(st, w.cdr, into)
	}
}

// addConstraint runs a freshly constructed constraint once against the
// state and, if it remains pending, stores it (with subsumption filtering
// for disequalities). Propagation then runs to a fixpoint, since the first
// run may already have narrowed domains. Returns false if the constraint is
// violated.
func (st *State) addConstraint(c Constraint) bool {
	res := c.Run(st)
	if !res.ok {
		return false
	}
	if res.keep != nil {
		keep := res.keep
		if d, ok := keep.(*DisequalityConstraint); ok {
			keep = st.cons.insertDisequality(st, d)
		}
		if keep != nil {
			st.cons = st.cons.withAdded(keep)
		}
	}
	return st.runConstraints()
}

// insertDisequality applies subsumption in both directions: the new
// constraint is dropped when an existing one with a subset of its bindings
// already dominates it, and existing constraints dominated by the new one
// are removed. This bounds store growth under recursive programs that keep
// reasserting the same disequalities. Returns the constraint to store, or
// nil when it is redundant. The receiver is updated in place via the state.
func (cs *constraintSet) insertDisequality(st *State, d *DisequalityConstraint) Constraint {
	kept := make([]Constraint, 0, len(cs.items))
	redundant := false
	for _, c := range cs.items {
		e, ok := c.(*DisequalityConstraint)
		if !ok {
			kept = append(kept, c)
			continue
		}
		if e.subsumes(d) {
			redundant = true
		}
		if !redundant && d.subsumes(e) {
			continue // dominated by the new constraint
		}
		kept = append(kept, c)
	}
	st.cons = cs.replaced(kept)
	if redundant {
		return nil
	}
	return d
}

// DisequalityConstraint asserts that two terms never become equal. It
// stores the bindings a trial unification of its operands would need: if
// all of them ever hold simultaneously the terms have become equal and the
// branch fails. The stored set shrinks as the substitution grows.
type DisequalityConstraint struct {
	u, v  Term
	pairs []Binding
}

// NewDisequalityConstraint creates the constraint u =/= v. The pending
// binding set is computed on its first Run.
func NewDisequalityConstraint(u, v Term) *DisequalityConstraint {
	return &DisequalityConstraint{u: u, v: v}
}

// Operands returns the two constrained terms.
func (d *DisequalityConstraint) Operands() []Term { return []Term{d.u, d.v} }

// Pairs returns the bindings that must never all hold simultaneously.
func (d *DisequalityConstraint) Pairs() []Binding { return d.pairs }

// Run trial-unifies the operands against a scratch copy of the state. If
// unification fails the terms can never be equal and the constraint is
// discharged. If it succeeds without extending the substitution the terms
// are already equal and the branch fails. Otherwise the trial extension
// becomes the new pending binding set.
func (d *DisequalityConstraint) Run(st *State) RunResult {
	scratch := &State{
		sub:  st.sub.clone(),
		cons: newConstraintSet(),
		doms: newDomainStore(),
	}
	ext, ok := scratch.Unify(d.u, d.v)
	if !ok {
		return runDischarged()
	}
	if len(ext) == 0 {
		return runFailed()
	}
	return runKeep(&DisequalityConstraint{u: d.u, v: d.v, pairs: ext})
}

// subsumes reports whether d dominates other: every pending binding of d
// appears in other's pending set, so other can only fire when d already
// has. The constraint with the smaller binding set is the stronger one.
func (d *DisequalityConstraint) subsumes(other *DisequalityConstraint) bool {
	if len(d.pairs) == 0 || len(d.pairs) > len(other.pairs) {
		return false
	}
	for _, p := range d.pairs {
		found := false
		for _, q := range other.pairs {
			if p.Var.id == q.Var.id && p.Term.Equal(q.Term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// String renders the pending bindings, e.g. "x.1 != 2" or
// "(x.1, y.2) != (2, 1)" when the constraint spans several variables.
func (d *DisequalityConstraint) String() string {
	if len(d.pairs) == 1 {
		return fmt.Sprintf("%s != %s", d.pairs[0].Var.String(), d.pairs[0].Term.String())
	}
	var lhs, rhs strings.Builder
	for i, p := range d.pairs {
		if i > 0 {
			lhs.WriteString(", ")
			rhs.WriteString(", ")
		}
		lhs.WriteString(p.Var.String())
		rhs.WriteString(p.Term.String())
	}
	if len(d.pairs) == 0 {
		return fmt.Sprintf("%s != %s", d.u.String(), d.v.String())
	}
	return fmt.Sprintf("(%s) != (%s)", lhs.String(), rhs.String())
}
