package minikanren

import (
	"fmt"
	"sort"
	"strings"
)

// Solution is one reified answer to a query: a value per query variable,
// plus the residual constraints still restricting those values. Unbound
// variables are renamed to canonical reified variables _.0, _.1, ... in
// first-occurrence order, so structurally identical answers render
// identically regardless of internal variable numbering.
type Solution struct {
	names    []string
	values   map[string]Term
	residual []string
}

// Value returns the reified value of the named query variable. Panics if
// the name was not part of the query.
func (s *Solution) Value(name string) Term {
	v, ok := s.values[name]
	if !ok {
		panic(fmt.Sprintf("minikanren: unknown query variable %q", name))
	}
	return v
}

// Residual returns the rendered residual constraints, sorted for
// deterministic display. Empty for fully determined answers.
func (s *Solution) Residual() []string {
	out := make([]string, len(s.residual))
	copy(out, s.residual)
	return out
}

// String renders the answer, e.g.
//
//	q = (1 _.0 3) where { _.0 != 2 }
func (s *Solution) String() string {
	var b strings.Builder
	for i, name := range s.names {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s = %s", name, s.values[name].String())
	}
	if len(s.residual) > 0 {
		b.WriteString(" where { ")
		b.WriteString(strings.Join(s.residual, ", "))
		b.WriteString(" }")
	}
	return b.String()
}

// domainFanout grounds the domain-carrying variables of one solved state by
// enumerating their remaining values, one ground completion per Next call.
// The walk is depth-first, lowest variable id first, values ascending, with
// constraint propagation re-run after each choice; branches whose choice
// violates a constraint are silently dropped. Nothing beyond the current
// branch is computed ahead of demand, so a state with large residual
// domains streams its completions instead of materializing the cross
// product.
type domainFanout struct {
	stack []*fanoutFrame
}

// fanoutFrame is one partially ground state: the variable being enumerated
// and the values not yet tried. A frame without values is a ground leaf.
type fanoutFrame struct {
	st     *State
	id     int64
	values []int
	next   int
}

func newDomainFanout(st *State) *domainFanout {
	return &domainFanout{stack: []*fanoutFrame{newFanoutFrame(st)}}
}

func newFanoutFrame(st *State) *fanoutFrame {
	ids := st.doms.ids()
	if len(ids) == 0 {
		return &fanoutFrame{st: st}
	}
	return &fanoutFrame{st: st, id: ids[0], values: st.doms.get(ids[0]).Values()}
}

// Next returns the next ground state, or false when the fan-out is spent.
// Domains are finite, so the walk terminates.
func (f *domainFanout) Next() (*State, bool) {
	for len(f.stack) > 0 {
		top := f.stack[len(f.stack)-1]
		if top.values == nil {
			f.stack = f.stack[:len(f.stack)-1]
			return top.st, true
		}
		if top.next >= len(top.values) {
			f.stack = f.stack[:len(f.stack)-1]
			continue
		}
		val := top.values[top.next]
		top.next++
		c := top.st.Clone()
		if !c.setDomain(&Var{id: top.id}, NewSetDomain(val)) {
			continue
		}
		if !c.runConstraints() {
			continue
		}
		f.stack = append(f.stack, newFanoutFrame(c))
	}
	return nil, false
}

// finalizeState runs the extension's Finalize hook on a ground state and
// reifies the answer. Returns false when the hook discards the solution.
func finalizeState(st *State, q *Query) (*Solution, bool) {
	if st.ext != nil {
		next, ok := st.ext.Finalize(st)
		if !ok {
			return nil, false
		}
		st.ext = next
	}
	return reifyState(st, q), true
}

// reifier renames the unbound variables of one answer to canonical reified
// variables, consistently across all query variables and residual
// constraints of that answer.
type reifier struct {
	st      *State
	counter int64
	seen    map[int64]*Var
}

func newReifier(st *State) *reifier {
	return &reifier{st: st, seen: make(map[int64]*Var)}
}

// rename replaces every variable in an already deeply walked term with its
// canonical reified stand-in, allocating _.n names in first-occurrence
// order.
func (r *reifier) rename(t Term) Term {
	switch w := t.(type) {
	case *Var:
		if rv, ok := r.seen[w.id]; ok {
			return rv
		}
		rv := &Var{id: r.counter}
		r.counter++
		r.seen[w.id] = rv
		return rv
	case *Pair:
		return NewPair(r.rename(w.car), r.rename(w.cdr))
	default:
		return t
	}
}

// reifyState produces the answer record for a grounded state.
func reifyState(st *State, q *Query) *Solution {
	r := newReifier(st)
	values := make(map[string]Term, len(q.vars))
	for i, v := range q.vars {
		value := r.rename(st.WalkStar(v))
		if st.ext != nil {
			value = st.ext.Reify(value, st)
		}
		values[q.names[i]] = value
	}
	return &Solution{
		names:    q.names,
		values:   values,
		residual: r.residuals(q.vars),
	}
}

// residuals renders the constraints that still restrict the answer. Only
// constraints whose every free variable occurs in the reified answer are
// kept: a constraint touching a hidden variable is unobservable from the
// answer's point of view.
func (r *reifier) residuals(vars []*Var) []string {
	terms := make([]Term, len(vars))
	for i, v := range vars {
		terms[i] = v
	}
	var out []string
	for _, c := range r.st.cons.relevant(r.st, terms) {
		if d, ok := c.(*DisequalityConstraint); ok {
			if s, ok := r.renderDisequality(d); ok {
				out = append(out, s)
			}
			continue
		}
		if r.allVarsReified(c.Operands()) {
			out = append(out, c.String())
		}
	}
	sort.Strings(out)
	return out
}

// renderDisequality renders a disequality with reified variable names,
// dropping it when it mentions a variable absent from the answer.
func (r *reifier) renderDisequality(d *DisequalityConstraint) (string, bool) {
	pairs := make([]Binding, len(d.pairs))
	for i, p := range d.pairs {
		w, ok := r.st.Walk(p.Var).(*Var)
		if !ok {
			// The pair variable got bound after the constraint last ran;
			// the store will refresh it on the next propagation.
			return "", false
		}
		if !r.varReified(w) || !r.allVarsReified([]Term{p.Term}) {
			return "", false
		}
		pairs[i] = Binding{Var: r.rename(w).(*Var), Term: r.rename(r.st.WalkStar(p.Term))}
	}
	renamed := &DisequalityConstraint{u: d.u, v: d.v, pairs: pairs}
	return renamed.String(), true
}

// varReified reports whether the unbound variable occurs in the reified
// answer.
func (r *reifier) varReified(v *Var) bool {
	_, ok := r.seen[v.id]
	return ok
}

// allVarsReified reports whether every free variable of the terms occurs in
// the reified answer.
func (r *reifier) allVarsReified(terms []Term) bool {
	free := make(map[int64]bool)
	for _, t := range terms {
		collectFreeVars(r.st, t, free)
	}
	for id := range free {
		if _, ok := r.seen[id]; !ok {
			return false
		}
	}
	return true
}
