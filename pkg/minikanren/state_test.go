package minikanren

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStateDomains tests domain bookkeeping through the state.
func TestStateDomains(t *testing.T) {
	t.Run("Domain reports the attached domain", func(t *testing.T) {
		st := NewState()
		x := Fresh("x")
		require.True(t, st.setDomain(x, NewRangeDomain(1, 9)))
		d := st.Domain(x)
		require.NotNil(t, d)
		assert.Equal(t, 9, d.Count())
	})

	t.Run("bound variables carry no domain", func(t *testing.T) {
		st := NewState()
		x := Fresh("x")
		_, ok := st.Unify(x, NewAtom(5))
		require.True(t, ok)
		assert.Nil(t, st.Domain(x))
	})

	t.Run("singleton domains promote to bindings", func(t *testing.T) {
		st := NewState()
		x := Fresh("x")
		require.True(t, st.setDomain(x, NewRangeDomain(4, 4)))
		assert.Nil(t, st.Domain(x))
		assert.Equal(t, "4", st.WalkStar(x).String())
	})

	t.Run("narrowing intersects with the existing domain", func(t *testing.T) {
		st := NewState()
		x := Fresh("x")
		require.True(t, st.setDomain(x, NewRangeDomain(1, 9)))
		require.True(t, st.setDomain(x, NewRangeDomain(5, 20)))
		assert.Equal(t, "{5..9}", st.Domain(x).String())
	})

	t.Run("disjoint narrowing fails the branch", func(t *testing.T) {
		st := NewState()
		x := Fresh("x")
		require.True(t, st.setDomain(x, NewRangeDomain(1, 3)))
		assert.False(t, st.setDomain(x, NewRangeDomain(7, 9)))
	})

	t.Run("binding a domain variable checks the value", func(t *testing.T) {
		st := NewState()
		x := Fresh("x")
		require.True(t, st.setDomain(x, NewRangeDomain(1, 3)))
		ext, ok := st.Unify(x, NewAtom(2))
		require.True(t, ok)
		assert.True(t, st.update(ext))

		st2 := NewState()
		y := Fresh("y")
		require.True(t, st2.setDomain(y, NewRangeDomain(1, 3)))
		ext, ok = st2.Unify(y, NewAtom(8))
		require.True(t, ok)
		assert.False(t, st2.update(ext))
	})

	t.Run("aliasing merges the two domains", func(t *testing.T) {
		st := NewState()
		x, y := Fresh("x"), Fresh("y")
		require.True(t, st.setDomain(x, NewRangeDomain(1, 5)))
		require.True(t, st.setDomain(y, NewRangeDomain(3, 9)))
		ext, ok := st.Unify(x, y)
		require.True(t, ok)
		require.True(t, st.update(ext))
		assert.Equal(t, "{3..5}", st.Domain(y).String())
	})

	t.Run("a structured value cannot take a domain", func(t *testing.T) {
		st := NewState()
		x := Fresh("x")
		require.True(t, st.setDomain(x, NewRangeDomain(1, 3)))
		ext, ok := st.Unify(x, Atoms(1, 2))
		require.True(t, ok)
		assert.False(t, st.update(ext))
	})
}

// vec is a two-component user-defined term exercising the custom
// unification hook.
type vec struct {
	x, y Term
}

func (v *vec) String() string { return fmt.Sprintf("#vec(%s %s)", v.x, v.y) }

func (v *vec) Equal(other Term) bool {
	o, ok := other.(*vec)
	return ok && v.x.Equal(o.x) && v.y.Equal(o.y)
}

func (v *vec) Hash() uint64 { return HashTerm(v.x) ^ HashTerm(v.y) }

func (v *vec) UnifyWith(other Term, st *State) ([]Binding, bool) {
	o, ok := other.(*vec)
	if !ok {
		return nil, false
	}
	xExt, ok := st.Unify(v.x, o.x)
	if !ok {
		return nil, false
	}
	yExt, ok := st.Unify(v.y, o.y)
	if !ok {
		return nil, false
	}
	return append(xExt, yExt...), true
}

// TestUserTermUnify tests that unification delegates to the UnifyWith hook
// of user-defined terms.
func TestUserTermUnify(t *testing.T) {
	ctx := context.Background()

	t.Run("the hook extends the substitution", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			y := Fresh("y")
			return Conj(
				Eq(&vec{x: NewAtom(1), y: q}, &vec{x: NewAtom(1), y: y}),
				Eq(y, NewAtom(5)),
			)
		})
		assert.Equal(t, []int{5}, atomInts(t, results))
	})

	t.Run("a component mismatch fails the goal", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			return Eq(&vec{x: NewAtom(1), y: q}, &vec{x: NewAtom(2), y: NewAtom(3)})
		})
		assert.Empty(t, results)
	})

	t.Run("a different term kind fails the goal", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			return Conj(
				Eq(&vec{x: NewAtom(1), y: NewAtom(2)}, NewAtom(1)),
				Eq(q, NewAtom(1)),
			)
		})
		assert.Empty(t, results)
	})

	t.Run("a variable binds to the whole term", func(t *testing.T) {
		q := NewQuery("p")
		sol, ok := q.Solutions(ctx, Eq(q.Var("p"), &vec{x: NewAtom(1), y: NewAtom(2)})).Next()
		require.True(t, ok)
		assert.Equal(t, "#vec(1 2)", sol.Value("p").String())
	})
}

// TestResolve tests projection resolution.
func TestResolve(t *testing.T) {
	t.Run("resolves a bound projection", func(t *testing.T) {
		st := NewState()
		x := Fresh("x")
		_, ok := st.Unify(x, NewAtom(5))
		require.True(t, ok)

		r, ok := st.Resolve(NewProjection(x))
		require.True(t, ok)
		assert.Equal(t, "5", r.String())
	})

	t.Run("fails on an unbound projection", func(t *testing.T) {
		st := NewState()
		_, ok := st.Resolve(NewProjection(Fresh("x")))
		assert.False(t, ok)
	})

	t.Run("resolves projections nested in pairs", func(t *testing.T) {
		st := NewState()
		x := Fresh("x")
		_, ok := st.Unify(x, NewAtom(1))
		require.True(t, ok)

		r, ok := st.Resolve(List(NewProjection(x), NewAtom(2)))
		require.True(t, ok)
		assert.Equal(t, "(1 2)", r.String())
	})

	t.Run("fails when the term walks to a variable", func(t *testing.T) {
		st := NewState()
		_, ok := st.Resolve(Fresh("x"))
		assert.False(t, ok)
	})
}

// TestStateString smoke-tests the debug rendering.
func TestStateString(t *testing.T) {
	st := NewState()
	assert.Contains(t, st.String(), "state{")
}
