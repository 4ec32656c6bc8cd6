package minikanren

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInfd tests domain declaration goals.
func TestInfd(t *testing.T) {
	ctx := context.Background()

	t.Run("enumerates the declared values in order", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			return Infd(q, 5, 2, 3)
		})
		assert.Equal(t, []int{2, 3, 5}, atomInts(t, results))
	})

	t.Run("a range domain enumerates ascending", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			return InfdRange(q, 1, 4)
		})
		assert.Equal(t, []int{1, 2, 3, 4}, atomInts(t, results))
	})

	t.Run("a singleton domain binds immediately", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			return Infd(q, 7)
		})
		assert.Equal(t, []int{7}, atomInts(t, results))
	})

	t.Run("checks an already bound value", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			return Conj(Eq(q, NewAtom(5)), Infd(q, 2, 5))
		})
		assert.Equal(t, []int{5}, atomInts(t, results))

		results = RunStar(ctx, func(q *Var) Goal {
			return Conj(Eq(q, NewAtom(5)), Infd(q, 2, 3))
		})
		assert.Empty(t, results)
	})

	t.Run("an empty domain panics", func(t *testing.T) {
		assert.Panics(t, func() { Infd(Fresh("x")) })
		assert.Panics(t, func() { InfdRange(Fresh("x"), 3, 1) })
	})

	t.Run("Domfd declares several variables at once", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			x, y := Fresh("x"), Fresh("y")
			return Conj(
				Eq(q, List(x, y)),
				Domfd(NewRangeDomain(1, 2), x, y),
			)
		})
		assert.Equal(t, []string{"(1 1)", "(1 2)", "(2 1)", "(2 2)"}, termStrings(results))
	})

	t.Run("a non-integer operand panics", func(t *testing.T) {
		assert.Panics(t, func() {
			RunStar(ctx, func(q *Var) Goal {
				return Conj(Eq(q, NewAtom("five")), InfdRange(q, 1, 9))
			})
		})
	})
}

// TestNeqfd tests finite-domain disequality.
func TestNeqfd(t *testing.T) {
	ctx := context.Background()

	t.Run("excludes equal assignments", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			x, y := Fresh("x"), Fresh("y")
			return Conj(
				Eq(q, List(x, y)),
				InfdRange(x, 1, 2),
				InfdRange(y, 1, 2),
				Neqfd(x, y),
			)
		})
		assert.Equal(t, []string{"(1 2)", "(2 1)"}, termStrings(results))
	})

	t.Run("a ground side prunes the other domain", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			return Conj(InfdRange(q, 1, 3), Neqfd(q, NewAtom(2)))
		})
		assert.Equal(t, []int{1, 3}, atomInts(t, results))
	})

	t.Run("the same variable on both sides fails", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			return Conj(InfdRange(q, 1, 3), Neqfd(q, q))
		})
		assert.Empty(t, results)
	})
}

// TestLteqfd tests ordering constraints with interval narrowing.
func TestLteqfd(t *testing.T) {
	ctx := context.Background()

	t.Run("enumerates ordered pairs", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			x, y := Fresh("x"), Fresh("y")
			return Conj(
				Eq(q, List(x, y)),
				InfdRange(x, 1, 5),
				InfdRange(y, 1, 3),
				Lteqfd(x, y),
			)
		})
		assert.Equal(t, []string{"(1 1)", "(1 2)", "(1 3)", "(2 2)", "(2 3)", "(3 3)"},
			termStrings(results))
	})

	t.Run("narrows the upper bound eagerly", func(t *testing.T) {
		st := NewState()
		x := Fresh("x")
		require.True(t, st.setDomain(x, NewRangeDomain(1, 9)))
		require.True(t, st.addConstraint(&lteqFdConstraint{u: x, v: NewAtom(4)}))
		assert.Equal(t, "{1..4}", st.Domain(x).String())
	})

	t.Run("an impossible ordering fails", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			return Conj(InfdRange(q, 7, 9), Lteqfd(q, NewAtom(3)))
		})
		assert.Empty(t, results)
	})
}

// TestPlusfd tests additive constraints.
func TestPlusfd(t *testing.T) {
	ctx := context.Background()

	t.Run("enumerates the sums to a ground total", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			x, y := Fresh("x"), Fresh("y")
			return Conj(
				Eq(q, List(x, y)),
				InfdRange(x, 0, 9),
				InfdRange(y, 0, 9),
				Plusfd(x, y, NewAtom(10)),
			)
		})
		require.Len(t, results, 9)
		assert.Equal(t, "(1 9)", results[0].String())
		assert.Equal(t, "(9 1)", results[8].String())
	})

	t.Run("computes a forward sum", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			return Conj(
				InfdRange(q, 0, 100),
				Plusfd(NewAtom(3), NewAtom(4), q),
			)
		})
		assert.Equal(t, []int{7}, atomInts(t, results))
	})

	t.Run("rejects a violated ground sum", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			return Conj(Eq(q, NewAtom(0)), Plusfd(NewAtom(2), NewAtom(2), NewAtom(5)))
		})
		assert.Empty(t, results)
	})
}

// TestTimesfd tests multiplicative constraints, whose narrowing keeps exact
// factor structure rather than plain interval bounds.
func TestTimesfd(t *testing.T) {
	ctx := context.Background()

	t.Run("enumerates exactly the factor pairs", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			x, y := Fresh("x"), Fresh("y")
			return Conj(
				Eq(q, List(x, y)),
				InfdRange(x, 0, 6),
				InfdRange(y, 0, 6),
				Timesfd(x, y, NewAtom(6)),
			)
		})
		assert.Equal(t, []string{"(1 6)", "(2 3)", "(3 2)", "(6 1)"}, termStrings(results))
	})

	t.Run("computes a forward product", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			return Conj(
				InfdRange(q, 0, 100),
				Timesfd(NewAtom(6), NewAtom(7), q),
			)
		})
		assert.Equal(t, []int{42}, atomInts(t, results))
	})
}

// TestDistinctfd tests the all-different constraint.
func TestDistinctfd(t *testing.T) {
	ctx := context.Background()

	t.Run("enumerates permutations", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			x, y, z := Fresh("x"), Fresh("y"), Fresh("z")
			return Conj(
				Eq(q, List(x, y, z)),
				Domfd(NewRangeDomain(1, 3), x, y, z),
				Distinctfd(x, y, z),
			)
		})
		require.Len(t, results, 6)
		assert.Equal(t, "(1 2 3)", results[0].String())
		assert.Equal(t, "(3 2 1)", results[5].String())
	})

	t.Run("ground duplicates fail", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			return Conj(Eq(q, NewAtom(1)), Distinctfd(q, NewAtom(1), NewAtom(2)))
		})
		assert.Empty(t, results)
	})

	t.Run("fewer than two terms is trivially satisfied", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			return Conj(Eq(q, NewAtom(1)), Distinctfd(q))
		})
		assert.Equal(t, []int{1}, atomInts(t, results))
	})
}

// TestNeqWithDomains tests that tree disequality and finite domains compose:
// enumeration re-checks stored disequalities per assignment.
func TestNeqWithDomains(t *testing.T) {
	ctx := context.Background()

	results := RunStar(ctx, func(q *Var) Goal {
		return Conj(InfdRange(q, 1, 3), Neq(q, NewAtom(2)))
	})
	assert.Equal(t, []int{1, 3}, atomInts(t, results))
}
