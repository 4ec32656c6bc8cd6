package minikanren

import (
	"fmt"
	"strings"
)

// Finite-domain constraints relate two or three terms over finite integer
// domains. Each Run inspects the current domain (or ground value) of every
// operand, evaluates arithmetically when everything is ground, and narrows
// the remaining domains otherwise. Narrowing a domain to a singleton
// promotes the value to a substitution binding; the store's fixpoint loop
// then re-runs every constraint until nothing changes.
//
// Applying a finite-domain constraint to an operand that is neither a
// variable nor an int atom is a programming error and panics.

// fdOperand is the resolved view of one constraint operand.
type fdOperand struct {
	v      *Var   // non-nil when the operand walks to an unbound variable
	dom    Domain // the variable's domain, or nil when none is attached yet
	val    int    // the ground value when ground
	ground bool
}

// fdResolve walks an operand and classifies it. Panics on a non-variable,
// non-integer operand: that is a contract violation, not a logical failure.
func (st *State) fdResolve(t Term) fdOperand {
	switch w := st.Walk(t).(type) {
	case *Var:
		return fdOperand{v: w, dom: st.doms.get(w.id)}
	case *Atom:
		if n, ok := w.value.(int); ok {
			return fdOperand{val: n, ground: true}
		}
		panic(fmt.Sprintf("minikanren: finite-domain constraint on non-integer atom %s", w.String()))
	default:
		panic(fmt.Sprintf("minikanren: finite-domain constraint on non-numeric term %s", w.String()))
	}
}

// bounds returns the operand's [min, max] interval and whether it is known.
func (o fdOperand) bounds() (lo, hi int, known bool) {
	if o.ground {
		return o.val, o.val, true
	}
	if o.dom != nil {
		return o.dom.Min(), o.dom.Max(), true
	}
	return 0, 0, false
}

// values returns the operand's possible values and whether they are known.
func (o fdOperand) values() ([]int, bool) {
	if o.ground {
		return []int{o.val}, true
	}
	if o.dom != nil {
		return o.dom.Values(), true
	}
	return nil, false
}

// narrowBounds restricts an operand to [lo, hi]. Ground operands are
// checked; domain-less variables are left alone (the constraint stays
// pending). Returns false when the restriction empties the domain or
// excludes the ground value.
func (st *State) narrowBounds(o fdOperand, lo, hi int) bool {
	if o.ground {
		return o.val >= lo && o.val <= hi
	}
	if o.dom == nil {
		return true
	}
	d := o.dom.RemoveBelow(lo)
	if d != nil {
		d = d.RemoveAbove(hi)
	}
	if d == nil {
		return false
	}
	return st.setDomain(o.v, d)
}

// narrowValues restricts a variable operand to the given sorted value set.
func (st *State) narrowValues(o fdOperand, values []int) bool {
	if o.v == nil || o.dom == nil {
		return true
	}
	return st.setDomain(o.v, domainFromValues(values))
}

// neqFdConstraint asserts u != v over finite domains.
type neqFdConstraint struct {
	u, v Term
}

func (c *neqFdConstraint) Operands() []Term { return []Term{c.u, c.v} }

func (c *neqFdConstraint) String() string {
	return fmt.Sprintf("%s =/= %s", c.u.String(), c.v.String())
}

func (c *neqFdConstraint) Run(st *State) RunResult {
	a := st.fdResolve(c.u)
	b := st.fdResolve(c.v)

	switch {
	case a.ground && b.ground:
		if a.val == b.val {
			return runFailed()
		}
		return runDischarged()
	case a.ground && b.dom != nil:
		return st.excludeValue(b, a.val)
	case b.ground && a.dom != nil:
		return st.excludeValue(a, b.val)
	case a.v != nil && b.v != nil && a.v.id == b.v.id:
		return runFailed()
	case a.dom != nil && b.dom != nil && a.dom.Disjoint(b.dom):
		return runDischarged()
	default:
		return runKeep(c)
	}
}

// excludeValue removes a ground value from a variable's domain. Once the
// value is gone the two operands can never be equal, so the constraint
// discharges.
func (st *State) excludeValue(o fdOperand, val int) RunResult {
	if !o.dom.Has(val) {
		return runDischarged()
	}
	d := o.dom.Remove(val)
	if d == nil {
		return runFailed()
	}
	if !st.setDomain(o.v, d) {
		return runFailed()
	}
	return runDischarged()
}

// distinctFdConstraint asserts that all operands take pairwise distinct
// values.
type distinctFdConstraint struct {
	terms []Term
}

func (c *distinctFdConstraint) Operands() []Term { return c.terms }

func (c *distinctFdConstraint) String() string {
	parts := make([]string, len(c.terms))
	for i, t := range c.terms {
		parts[i] = t.String()
	}
	return "distinct(" + strings.Join(parts, ", ") + ")"
}

func (c *distinctFdConstraint) Run(st *State) RunResult {
	ops := make([]fdOperand, len(c.terms))
	seen := make(map[int]bool)
	allGround := true
	for i, t := range c.terms {
		ops[i] = st.fdResolve(t)
		if ops[i].ground {
			if seen[ops[i].val] {
				return runFailed()
			}
			seen[ops[i].val] = true
		} else {
			allGround = false
		}
	}
	if allGround {
		return runDischarged()
	}

	// Subtract every ground value from every remaining domain.
	for _, o := range ops {
		if o.ground || o.dom == nil {
			continue
		}
		d := o.dom
		for val := range seen {
			if d.Has(val) {
				d = d.Remove(val)
				if d == nil {
					return runFailed()
				}
			}
		}
		if !st.setDomain(o.v, d) {
			return runFailed()
		}
	}
	return runKeep(c)
}

// lteqFdConstraint asserts u <= v.
type lteqFdConstraint struct {
	u, v Term
}

func (c *lteqFdConstraint) Operands() []Term { return []Term{c.u, c.v} }

func (c *lteqFdConstraint) String() string {
	return fmt.Sprintf("%s <= %s", c.u.String(), c.v.String())
}

func (c *lteqFdConstraint) Run(st *State) RunResult {
	a := st.fdResolve(c.u)
	b := st.fdResolve(c.v)

	aLo, aHi, aKnown := a.bounds()
	bLo, bHi, bKnown := b.bounds()

	if aKnown && bKnown {
		if aHi <= bLo {
			return runDischarged()
		}
		if aLo > bHi {
			return runFailed()
		}
	}
	// Interval narrowing: u can be at most max(v), v at least min(u).
	if bKnown && !st.narrowBounds(a, minInt, bHi) {
		return runFailed()
	}
	if aKnown && !st.narrowBounds(b, aLo, maxInt) {
		return runFailed()
	}
	return runKeep(c)
}

const (
	maxInt = int(^uint(0) >> 1)
	minInt = -maxInt - 1
)

// plusFdConstraint asserts u + v = w.
type plusFdConstraint struct {
	u, v, w Term
}

func (c *plusFdConstraint) Operands() []Term { return []Term{c.u, c.v, c.w} }

func (c *plusFdConstraint) String() string {
	return fmt.Sprintf("%s + %s = %s", c.u.String(), c.v.String(), c.w.String())
}

func (c *plusFdConstraint) Run(st *State) RunResult {
	a := st.fdResolve(c.u)
	b := st.fdResolve(c.v)
	s := st.fdResolve(c.w)

	if a.ground && b.ground && s.ground {
		if a.val+b.val == s.val {
			return runDischarged()
		}
		return runFailed()
	}

	aLo, aHi, aKnown := a.bounds()
	bLo, bHi, bKnown := b.bounds()
	sLo, sHi, sKnown := s.bounds()

	// Interval arithmetic in all three directions.
	if aKnown && bKnown && !st.narrowBounds(s, aLo+bLo, aHi+bHi) {
		return runFailed()
	}
	if sKnown && bKnown && !st.narrowBounds(a, sLo-bHi, sHi-bLo) {
		return runFailed()
	}
	if sKnown && aKnown && !st.narrowBounds(b, sLo-aHi, sHi-aLo) {
		return runFailed()
	}
	return runKeep(c)
}

// timesFdConstraint asserts u * v = w.
type timesFdConstraint struct {
	u, v, w Term
}

func (c *timesFdConstraint) Operands() []Term { return []Term{c.u, c.v, c.w} }

func (c *timesFdConstraint) String() string {
	return fmt.Sprintf("%s * %s = %s", c.u.String(), c.v.String(), c.w.String())
}

// Run narrows each operand to the values that still have support in the
// other two: a stays in u's domain only if some b, c with a*b = c remain.
// Support filtering is exact on sparse domains, where plain interval
// multiplication loses factor structure (for example x*y = 6 with x, y in
// 0..6 must keep exactly the factor pairs).
func (c *timesFdConstraint) Run(st *State) RunResult {
	a := st.fdResolve(c.u)
	b := st.fdResolve(c.v)
	p := st.fdResolve(c.w)

	if a.ground && b.ground && p.ground {
		if a.val*b.val == p.val {
			return runDischarged()
		}
		return runFailed()
	}

	aVals, aKnown := a.values()
	bVals, bKnown := b.values()
	pVals, pKnown := p.values()

	if aKnown && bKnown && pKnown {
		keepA := supportFilter(aVals, func(x int) bool {
			return anyPair(bVals, pVals, func(y, z int) bool { return x*y == z })
		})
		keepB := supportFilter(bVals, func(y int) bool {
			return anyPair(aVals, pVals, func(x, z int) bool { return x*y == z })
		})
		keepP := supportFilter(pVals, func(z int) bool {
			return anyPair(aVals, bVals, func(x, y int) bool { return x*y == z })
		})
		if len(keepA) == 0 || len(keepB) == 0 || len(keepP) == 0 {
			return runFailed()
		}
		if !st.narrowValues(a, keepA) || !st.narrowValues(b, keepB) || !st.narrowValues(p, keepP) {
			return runFailed()
		}
	}
	return runKeep(c)
}

// supportFilter keeps the values for which the support predicate holds.
func supportFilter(values []int, supported func(int) bool) []int {
	kept := make([]int, 0, len(values))
	for _, v := range values {
		if supported(v) {
			kept = append(kept, v)
		}
	}
	return kept
}

// anyPair reports whether some pair drawn from the two value sets satisfies
// the predicate.
func anyPair(xs, ys []int, pred func(x, y int) bool) bool {
	for _, x := range xs {
		for _, y := range ys {
			if pred(x, y) {
				return true
			}
		}
	}
	return false
}

// fdConstraintGoal adds a finite-domain constraint to the state, running
// propagation to a fixpoint.
func fdConstraintGoal(c Constraint) Goal {
	return func(st *State) *Stream {
		next := st.Clone()
		if !next.addConstraint(c) {
			return emptyStream()
		}
		return unitStream(next)
	}
}

// Infd restricts a term to a finite set of integer values. If the term is
// already bound it must be an integer in the set. Panics when called with
// no values: an empty domain is a programming error, not a failing goal.
//
// Example:
//
//	x := Fresh("x")
//	Infd(x, 2, 3, 5, 7)
func Infd(t Term, values ...int) Goal {
	d := NewSetDomain(values...)
	return domainGoal(t, d)
}

// InfdRange restricts a term to the closed interval [lo, hi]. Panics if
// lo > hi.
//
// Example:
//
//	InfdRange(x, 1, 9)
func InfdRange(t Term, lo, hi int) Goal {
	d := NewRangeDomain(lo, hi)
	return domainGoal(t, d)
}

// Domfd restricts every given term to the same domain. Convenient for
// puzzle setups where many variables range over one value set.
//
// Example:
//
//	Domfd(NewRangeDomain(1, 5), a, b, c, d)
func Domfd(d Domain, terms ...Term) Goal {
	goals := make([]Goal, len(terms))
	for i, t := range terms {
		goals[i] = domainGoal(t, d)
	}
	return Conj(goals...)
}

func domainGoal(t Term, d Domain) Goal {
	return func(st *State) *Stream {
		next := st.Clone()
		if !next.setDomain(t, d) {
			return emptyStream()
		}
		if !next.runConstraints() {
			return emptyStream()
		}
		return unitStream(next)
	}
}

// Neqfd asserts that two finite-domain terms take different values.
func Neqfd(u, v Term) Goal {
	return fdConstraintGoal(&neqFdConstraint{u: u, v: v})
}

// Lteqfd asserts u <= v over finite domains, narrowing both domains by
// interval reasoning as soon as either side has bounds.
func Lteqfd(u, v Term) Goal {
	return fdConstraintGoal(&lteqFdConstraint{u: u, v: v})
}

// Plusfd asserts u + v = w over finite domains.
//
// Example:
//
//	Conj(InfdRange(x, 0, 9), InfdRange(y, 0, 9), Plusfd(x, y, NewAtom(10)))
func Plusfd(u, v, w Term) Goal {
	return fdConstraintGoal(&plusFdConstraint{u: u, v: v, w: w})
}

// Timesfd asserts u * v = w over finite domains. Domains are narrowed to
// the values that still participate in some factorization, so enumerating
// after Timesfd(x, y, NewAtom(6)) yields exactly the factor pairs.
func Timesfd(u, v, w Term) Goal {
	return fdConstraintGoal(&timesFdConstraint{u: u, v: v, w: w})
}

// Distinctfd asserts that all given terms take pairwise distinct values.
// With fewer than two terms it is trivially Success.
//
// Example:
//
//	Distinctfd(a, b, c)
func Distinctfd(terms ...Term) Goal {
	if len(terms) < 2 {
		return Success
	}
	ts := make([]Term, len(terms))
	copy(ts, terms)
	return fdConstraintGoal(&distinctFdConstraint{terms: ts})
}
