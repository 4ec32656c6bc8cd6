package minikanren

import (
	"fmt"
	"sort"
	"strings"
)

// Domain represents the finite set of integer values a variable may still
// take. Domains are immutable: every operation returns a new domain rather
// than modifying in place, enabling structural sharing between search
// branches.
//
// A stored domain is never empty. Operations that would produce an empty
// domain return nil instead, and the caller fails the enclosing unification
// or constraint run. Two concrete representations exist: a closed interval
// (NewRangeDomain) and an explicit sorted sparse set (NewSetDomain).
type Domain interface {
	// Count returns the number of values in the domain.
	Count() int

	// Has reports whether the domain contains the given value.
	Has(value int) bool

	// Min returns the smallest value in the domain.
	Min() int

	// Max returns the largest value in the domain.
	Max() int

	// IsSingleton reports whether the domain contains exactly one value.
	// Singleton domains are promoted to substitution bindings by the
	// constraint store.
	IsSingleton() bool

	// SingletonValue returns the single value of a singleton domain.
	// Panics if the domain is not a singleton.
	SingletonValue() int

	// IterateValues calls f for each value in ascending order.
	IterateValues(f func(value int))

	// Intersect returns the values present in both domains, or nil if the
	// intersection is empty.
	Intersect(other Domain) Domain

	// Remove returns the domain without the given value, or nil if that
	// value was the only one. Returns the receiver unchanged if the value
	// is not present.
	Remove(value int) Domain

	// RemoveAbove returns the domain restricted to values <= bound, or nil.
	RemoveAbove(bound int) Domain

	// RemoveBelow returns the domain restricted to values >= bound, or nil.
	RemoveBelow(bound int) Domain

	// Disjoint reports whether the two domains share no value.
	Disjoint(other Domain) bool

	// Equal reports whether both domains contain exactly the same values.
	Equal(other Domain) bool

	// Values returns all values as a sorted slice.
	Values() []int

	// String returns a human-readable rendering such as {1..9} or {2,3,5}.
	String() string
}

// RangeDomain is a closed integer interval [lo, hi].
type RangeDomain struct {
	lo, hi int
}

// NewRangeDomain creates the interval domain [lo, hi]. Panics if lo > hi,
// since a domain may never be empty.
func NewRangeDomain(lo, hi int) *RangeDomain {
	if lo > hi {
		panic(fmt.Sprintf("minikanren: empty range domain [%d, %d]", lo, hi))
	}
	return &RangeDomain{lo: lo, hi: hi}
}

func (d *RangeDomain) Count() int      { return d.hi - d.lo + 1 }
func (d *RangeDomain) Has(v int) bool  { return v >= d.lo && v <= d.hi }
func (d *RangeDomain) Min() int        { return d.lo }
func (d *RangeDomain) Max() int        { return d.hi }
func (d *RangeDomain) IsSingleton() bool { return d.lo == d.hi }

func (d *RangeDomain) SingletonValue() int {
	if d.lo != d.hi {
		panic("minikanren: SingletonValue on non-singleton domain " + d.String())
	}
	return d.lo
}

func (d *RangeDomain) IterateValues(f func(int)) {
	for v := d.lo; v <= d.hi; v++ {
		f(v)
	}
}

func (d *RangeDomain) Intersect(other Domain) Domain {
	if o, ok := other.(*RangeDomain); ok {
		lo, hi := d.lo, d.hi
		if o.lo > lo {
			lo = o.lo
		}
		if o.hi < hi {
			hi = o.hi
		}
		if lo > hi {
			return nil
		}
		if lo == d.lo && hi == d.hi {
			return d
		}
		return &RangeDomain{lo: lo, hi: hi}
	}
	return other.Intersect(d)
}

func (d *RangeDomain) Remove(v int) Domain {
	switch {
	case v < d.lo || v > d.hi:
		return d
	case d.lo == d.hi:
		return nil
	case v == d.lo:
		return &RangeDomain{lo: d.lo + 1, hi: d.hi}
	case v == d.hi:
		return &RangeDomain{lo: d.lo, hi: d.hi - 1}
	default:
		// A hole in the middle forces the sparse representation.
		values := make([]int, 0, d.Count()-1)
		for i := d.lo; i <= d.hi; i++ {
			if i != v {
				values = append(values, i)
			}
		}
		return &SetDomain{values: values}
	}
}

func (d *RangeDomain) RemoveAbove(bound int) Domain {
	if bound >= d.hi {
		return d
	}
	if bound < d.lo {
		return nil
	}
	return &RangeDomain{lo: d.lo, hi: bound}
}

func (d *RangeDomain) RemoveBelow(bound int) Domain {
	if bound <= d.lo {
		return d
	}
	if bound > d.hi {
		return nil
	}
	return &RangeDomain{lo: bound, hi: d.hi}
}

func (d *RangeDomain) Disjoint(other Domain) bool {
	return other.Max() < d.lo || other.Min() > d.hi || d.Intersect(other) == nil
}

func (d *RangeDomain) Equal(other Domain) bool {
	if o, ok := other.(*RangeDomain); ok {
		return d.lo == o.lo && d.hi == o.hi
	}
	return domainsEqual(d, other)
}

func (d *RangeDomain) Values() []int {
	values := make([]int, 0, d.Count())
	d.IterateValues(func(v int) { values = append(values, v) })
	return values
}

func (d *RangeDomain) String() string {
	if d.lo == d.hi {
		return fmt.Sprintf("{%d}", d.lo)
	}
	return fmt.Sprintf("{%d..%d}", d.lo, d.hi)
}

// SetDomain is an explicit, sorted, duplicate-free set of integers.
type SetDomain struct {
	values []int
}

// NewSetDomain creates a sparse domain from the given values, sorting and
// deduplicating them. Panics if no values are given.
func NewSetDomain(values ...int) *SetDomain {
	if len(values) == 0 {
		panic("minikanren: empty set domain")
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)
	dedup := sorted[:1]
	for _, v := range sorted[1:] {
		if v != dedup[len(dedup)-1] {
			dedup = append(dedup, v)
		}
	}
	return &SetDomain{values: dedup}
}

// domainFromValues builds the tightest representation for a sorted,
// duplicate-free value slice: nil when empty, a RangeDomain when contiguous,
// a SetDomain otherwise.
func domainFromValues(values []int) Domain {
	if len(values) == 0 {
		return nil
	}
	if values[len(values)-1]-values[0] == len(values)-1 {
		return &RangeDomain{lo: values[0], hi: values[len(values)-1]}
	}
	return &SetDomain{values: values}
}

func (d *SetDomain) Count() int { return len(d.values) }

func (d *SetDomain) Has(v int) bool {
	i := sort.SearchInts(d.values, v)
	return i < len(d.values) && d.values[i] == v
}

func (d *SetDomain) Min() int          { return d.values[0] }
func (d *SetDomain) Max() int          { return d.values[len(d.values)-1] }
func (d *SetDomain) IsSingleton() bool { return len(d.values) == 1 }

func (d *SetDomain) SingletonValue() int {
	if len(d.values) != 1 {
		panic("minikanren: SingletonValue on non-singleton domain " + d.String())
	}
	return d.values[0]
}

func (d *SetDomain) IterateValues(f func(int)) {
	for _, v := range d.values {
		f(v)
	}
}

func (d *SetDomain) Intersect(other Domain) Domain {
	kept := make([]int, 0, len(d.values))
	for _, v := range d.values {
		if other.Has(v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(d.values) {
		return d
	}
	return domainFromValues(kept)
}

func (d *SetDomain) Remove(v int) Domain {
	if !d.Has(v) {
		return d
	}
	if len(d.values) == 1 {
		return nil
	}
	kept := make([]int, 0, len(d.values)-1)
	for _, w := range d.values {
		if w != v {
			kept = append(kept, w)
		}
	}
	return domainFromValues(kept)
}

func (d *SetDomain) RemoveAbove(bound int) Domain {
	i := sort.SearchInts(d.values, bound+1)
	if i == len(d.values) {
		return d
	}
	return domainFromValues(d.values[:i])
}

func (d *SetDomain) RemoveBelow(bound int) Domain {
	i := sort.SearchInts(d.values, bound)
	if i == 0 {
		return d
	}
	return domainFromValues(d.values[i:])
}

func (d *SetDomain) Disjoint(other Domain) bool {
	for _, v := range d.values {
		if other.Has(v) {
			return false
		}
	}
	return true
}

func (d *SetDomain) Equal(other Domain) bool {
	return domainsEqual(d, other)
}

func (d *SetDomain) Values() []int {
	values := make([]int, len(d.values))
	copy(values, d.values)
	return values
}

func (d *SetDomain) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, v := range d.values {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "%d", v)
	}
	b.WriteString("}")
	return b.String()
}

// domainsEqual compares two domains value by value.
func domainsEqual(a, b Domain) bool {
	if a.Count() != b.Count() || a.Min() != b.Min() || a.Max() != b.Max() {
		return false
	}
	equal := true
	a.IterateValues(func(v int) {
		if !b.Has(v) {
			equal = false
		}
	})
	return equal
}
