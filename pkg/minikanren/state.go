package minikanren

import (
	"fmt"
	"sort"
)

// Extension is the hook interface for user-supplied state data carried
// alongside the substitution, constraint store and domain store. All hooks
// are optional in spirit: an extension that does not care about a phase
// returns its receiver unchanged.
type Extension interface {
	// Clone is called when the state is cloned at a branch point.
	Clone() Extension

	// Propagate is called after every substitution extension with the new
	// bindings. Returning false fails the branch.
	Propagate(st *State, ext []Binding) (Extension, bool)

	// Finalize is called once per solved state before reification.
	// Returning false discards the solution.
	Finalize(st *State) (Extension, bool)

	// Reify post-processes a reified term.
	Reify(t Term, st *State) Term
}

// domainStore maps variable IDs to their finite domains with copy-on-write
// sharing between branches.
type domainStore struct {
	m      map[int64]Domain
	shared bool
}

func newDomainStore() *domainStore {
	return &domainStore{m: make(map[int64]Domain)}
}

func (d *domainStore) clone() *domainStore {
	d.shared = true
	return &domainStore{m: d.m, shared: true}
}

func (d *domainStore) mutable() *domainStore {
	if !d.shared {
		return d
	}
	fresh := make(map[int64]Domain, len(d.m))
	for k, v := range d.m {
		fresh[k] = v
	}
	return &domainStore{m: fresh}
}

func (d *domainStore) get(id int64) Domain { return d.m[id] }

// ids returns all constrained variable IDs in ascending order, giving the
// solver a deterministic enumeration order.
func (d *domainStore) ids() []int64 {
	out := make([]int64, 0, len(d.m))
	for id := range d.m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// State aggregates everything a search branch knows: the substitution, the
// active constraints, the finite domains and optional user extension data.
// A state is conceptually owned by the goal that receives it. Branching
// clones the state cheaply; the four components are shared until a branch
// writes one, at which point just that component is copied.
type State struct {
	sub  *Substitution
	cons *constraintSet
	doms *domainStore
	ext  Extension

	// dfs selects depth-first stream composition for the whole search.
	// Set once by the solver before the initial goal application and
	// inherited by every clone.
	dfs bool

	// dirty is set by writes performed during constraint propagation and
	// drives the run-to-fixpoint loop.
	dirty bool
}

// NewState creates a state with empty components, as used at the start of a
// query.
func NewState() *State {
	return &State{
		sub:  NewSubstitution(),
		cons: newConstraintSet(),
		doms: newDomainStore(),
	}
}

// WithExtension returns a copy of the state carrying the given extension
// data.
func (st *State) WithExtension(ext Extension) *State {
	c := st.Clone()
	c.ext = ext
	return c
}

// Extension returns the user extension data, or nil.
func (st *State) Extension() Extension { return st.ext }

// Clone returns a copy of the state sharing all four components. The copy
// and the original each copy a component the first time they write it.
func (st *State) Clone() *State {
	c := &State{
		sub:  st.sub.clone(),
		cons: st.cons.clone(),
		doms: st.doms.clone(),
		dfs:  st.dfs,
	}
	if st.ext != nil {
		c.ext = st.ext.Clone()
	}
	return c
}

// Subst exposes the current substitution for read-only use (walking terms,
// inspecting bindings).
func (st *State) Subst() *Substitution { return st.sub }

// Walk follows variable bindings one level deep; see Substitution.Walk.
func (st *State) Walk(t Term) Term { return st.sub.Walk(t) }

// WalkStar resolves a term deeply; see Substitution.WalkStar.
func (st *State) WalkStar(t Term) Term { return st.sub.WalkStar(t) }

// Domain returns the finite domain currently attached to v after walking,
// or nil if v is unconstrained or already bound.
func (st *State) Domain(v *Var) Domain {
	w, ok := st.sub.Walk(v).(*Var)
	if !ok {
		return nil
	}
	return st.doms.get(w.id)
}

// Constraints returns the active constraints mentioning any of the given
// terms (or all constraints when no terms are given).
func (st *State) Constraints(terms ...Term) []Constraint {
	return st.cons.relevant(st, terms)
}

// bind records v -> t in the substitution after the occurs-check, returning
// the one-binding extension. Fails (logically) if v occurs in t.
func (st *State) bind(v *Var, t Term) ([]Binding, bool) {
	if st.sub.occurs(v, t) {
		return nil, false
	}
	st.sub = st.sub.mutable()
	st.sub.bindings[v.id] = t
	return []Binding{{Var: v, Term: t}}, true
}

// Unify computes the minimal substitution extension making u and v equal,
// mutating the receiver's substitution. It returns only the new bindings so
// dependent stores can react to exactly what changed. On mismatch it
// returns false; the receiver must then be discarded, as a partial
// extension may have been recorded.
//
// Unify does not run constraint propagation; goals call update with the
// returned extension afterwards. UserTerm operands are delegated to their
// custom hook.
func (st *State) Unify(u, v Term) ([]Binding, bool) {
	u = st.sub.Walk(u)
	v = st.sub.Walk(v)

	if uv, ok := u.(*Var); ok {
		if vv, ok := v.(*Var); ok && uv.id == vv.id {
			return nil, true
		}
		return st.bind(uv, v)
	}
	if vv, ok := v.(*Var); ok {
		return st.bind(vv, u)
	}

	if ut, ok := u.(UserTerm); ok {
		return ut.UnifyWith(v, st)
	}
	if vt, ok := v.(UserTerm); ok {
		return vt.UnifyWith(u, st)
	}

	switch a := u.(type) {
	case *Atom:
		if b, ok := v.(*Atom); ok && a.value == b.value {
			return nil, true
		}
		return nil, false
	case emptyList:
		if _, ok := v.(emptyList); ok {
			return nil, true
		}
		return nil, false
	case *Pair:
		b, ok := v.(*Pair)
		if !ok {
			return nil, false
		}
		carExt, ok := st.Unify(a.car, b.car)
		if !ok {
			return nil, false
		}
		cdrExt, ok := st.Unify(a.cdr, b.cdr)
		if !ok {
			return nil, false
		}
		return append(carExt, cdrExt...), true
	case *Projection:
		a.Equal(v) // panics: projections must be resolved before unification
		return nil, false
	default:
		return nil, false
	}
}

// update reconciles the domain store with a fresh substitution extension,
// invokes the user extension hook, and then runs all constraints to a
// fixpoint. Returns false if any step fails, aborting the branch.
func (st *State) update(ext []Binding) bool {
	queue := ext
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		more, ok := st.reconcileDomain(b)
		if !ok {
			return false
		}
		queue = append(queue, more...)
	}

	if st.ext != nil {
		next, ok := st.ext.Propagate(st, ext)
		if !ok {
			return false
		}
		st.ext = next
	}

	return st.runConstraints()
}

// reconcileDomain handles the domain bookkeeping for one new binding: a
// bound variable gives up its domain, which must admit the value it was
// bound to (or be intersected into the variable it was aliased to).
// Promotions performed here surface as additional bindings.
func (st *State) reconcileDomain(b Binding) ([]Binding, bool) {
	d := st.doms.get(b.Var.id)
	if d == nil {
		return nil, true
	}
	st.doms = st.doms.mutable()
	delete(st.doms.m, b.Var.id)
	st.dirty = true

	switch w := st.sub.Walk(b.Term).(type) {
	case *Var:
		// Aliased onto another variable: the domain travels with it.
		other := st.doms.get(w.id)
		if other != nil {
			d = other.Intersect(d)
		}
		return st.setDomainWalked(w, d)
	case *Atom:
		n, ok := w.value.(int)
		if !ok {
			return nil, false
		}
		if !d.Has(n) {
			return nil, false
		}
		return nil, true
	default:
		// A structured value can never take an integer domain.
		return nil, false
	}
}

// setDomain attaches (or narrows to) domain d on term t, which must walk to
// a variable or an int atom. A nil domain fails the branch. Singleton
// domains are promoted to substitution bindings immediately.
func (st *State) setDomain(t Term, d Domain) bool {
	if d == nil {
		return false
	}
	switch w := st.sub.Walk(t).(type) {
	case *Var:
		existing := st.doms.get(w.id)
		if existing != nil {
			d = existing.Intersect(d)
			if d == nil {
				return false
			}
		}
		ext, ok := st.setDomainWalked(w, d)
		if !ok {
			return false
		}
		for len(ext) > 0 {
			b := ext[0]
			ext = ext[1:]
			more, ok := st.reconcileDomain(b)
			if !ok {
				return false
			}
			ext = append(ext, more...)
		}
		return true
	case *Atom:
		n, ok := w.value.(int)
		if !ok {
			panic(fmt.Sprintf("minikanren: finite-domain constraint on non-integer term %s", w.String()))
		}
		return d.Has(n)
	default:
		panic(fmt.Sprintf("minikanren: finite-domain constraint on non-variable term %s", w.String()))
	}
}

// setDomainWalked stores d for the already-walked unbound variable w,
// promoting singletons to bindings. Returns any bindings produced.
func (st *State) setDomainWalked(w *Var, d Domain) ([]Binding, bool) {
	if d == nil {
		return nil, false
	}
	if d.IsSingleton() {
		st.doms = st.doms.mutable()
		delete(st.doms.m, w.id)
		ext, ok := st.bind(w, NewAtom(d.SingletonValue()))
		if !ok {
			return nil, false
		}
		st.dirty = true
		return ext, true
	}
	existing := st.doms.get(w.id)
	if existing != nil && existing.Equal(d) {
		return nil, true
	}
	st.doms = st.doms.mutable()
	st.doms.m[w.id] = d
	st.dirty = true
	return nil, true
}

// runConstraints re-evaluates every active constraint until no run changes
// the state. Each constraint either discharges (is dropped), fails the
// branch, or re-adds itself (possibly narrowed). Promotions and domain
// writes set the dirty flag, forcing another pass, so propagation reaches a
// fixpoint before the state is handed onward.
func (st *State) runConstraints() bool {
	for {
		st.dirty = false
		active := st.cons.items
		kept := make([]Constraint, 0, len(active))
		failed := false
		for _, c := range active {
			res := c.Run(st)
			if !res.ok {
				failed = true
				break
			}
			if res.keep != nil {
				kept = append(kept, res.keep)
			}
		}
		if failed {
			return false
		}
		st.cons = st.cons.replaced(kept)
		if !st.dirty {
			return true
		}
	}
}

// Resolve deeply walks a term, substituting every Projection marker with
// the resolved value of its variable. It fails (ok == false) if the term
// still contains an unbound variable under a Projection, or if the whole
// term walks to an unbound variable.
func (st *State) Resolve(t Term) (Term, bool) {
	t = st.sub.Walk(t)
	switch w := t.(type) {
	case *Var:
		return w, false
	case *Projection:
		r := st.sub.WalkStar(w.v)
		if _, unbound := r.(*Var); unbound {
			return r, false
		}
		return r, true
	case *Pair:
		car, ok := st.Resolve(w.car)
		if !ok {
			return t, false
		}
		cdr, ok := st.Resolve(w.cdr)
		if !ok {
			return t, false
		}
		return NewPair(car, cdr), true
	default:
		return t, true
	}
}

// String summarizes the state for debugging.
func (st *State) String() string {
	return fmt.Sprintf("state{sub=%s, constraints=%d, domains=%d}",
		st.sub.String(), len(st.cons.items), len(st.doms.m))
}
