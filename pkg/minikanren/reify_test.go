package minikanren

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReifiedNaming tests canonical renaming of unbound variables.
func TestReifiedNaming(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh variables number in first-occurrence order", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			x, y := Fresh("x"), Fresh("y")
			return Eq(q, List(x, NewAtom(2), x, y))
		})
		assert.Equal(t, []string{"(_.0 2 _.0 _.1)"}, termStrings(results))
	})

	t.Run("wildcards reify as distinct variables", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			return Eq(q, List(Wildcard(), Wildcard()))
		})
		assert.Equal(t, []string{"(_.0 _.1)"}, termStrings(results))
	})

	t.Run("numbering restarts per answer", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			return Conde(
				Eq(q, List(Fresh(""), NewAtom("a"))),
				Eq(q, List(Fresh(""), NewAtom("b"))),
			)
		})
		assert.Equal(t, []string{`(_.0 "a")`, `(_.0 "b")`}, termStrings(results))
	})

	t.Run("renaming is shared across query variables", func(t *testing.T) {
		q := NewQuery("a", "b")
		x := Fresh("x")
		goal := Conj(Eq(q.Var("a"), x), Eq(q.Var("b"), x))
		sol, ok := q.Solutions(ctx, goal).Next()
		require.True(t, ok)
		assert.Equal(t, "_.0", sol.Value("a").String())
		assert.Equal(t, "_.0", sol.Value("b").String())
	})
}

// TestResidualConstraints tests which constraints surface on answers and how
// they render.
func TestResidualConstraints(t *testing.T) {
	ctx := context.Background()

	t.Run("a pending disequality surfaces", func(t *testing.T) {
		q := NewQuery("q")
		sol, ok := q.Solutions(ctx, Neq(q.Var("q"), NewAtom(1))).Next()
		require.True(t, ok)
		assert.Equal(t, "_.0", sol.Value("q").String())
		assert.Equal(t, []string{"_.0 != 1"}, sol.Residual())
		assert.Equal(t, "q = _.0 where { _.0 != 1 }", sol.String())
	})

	t.Run("constraints inside structures surface", func(t *testing.T) {
		q := NewQuery("q")
		x := Fresh("x")
		goal := Conj(
			Eq(q.Var("q"), List(NewAtom(1), x, NewAtom(3))),
			Neq(x, NewAtom(2)),
		)
		sol, ok := q.Solutions(ctx, goal).Next()
		require.True(t, ok)
		assert.Equal(t, "(1 _.0 3)", sol.Value("q").String())
		assert.Equal(t, "q = (1 _.0 3) where { _.0 != 2 }", sol.String())
	})

	t.Run("constraints on hidden variables stay hidden", func(t *testing.T) {
		q := NewQuery("q")
		x := Fresh("x")
		goal := Conj(Neq(x, NewAtom(1)), Eq(q.Var("q"), NewAtom(5)))
		sol, ok := q.Solutions(ctx, goal).Next()
		require.True(t, ok)
		assert.Empty(t, sol.Residual())
		assert.Equal(t, "q = 5", sol.String())
	})

	t.Run("a disequality spanning a hidden variable is not shown", func(t *testing.T) {
		q := NewQuery("q")
		hidden := Fresh("h")
		goal := Conj(
			Neq(List(q.Var("q"), hidden), Atoms(1, 2)),
		)
		sol, ok := q.Solutions(ctx, goal).Next()
		require.True(t, ok)
		assert.Empty(t, sol.Residual())
	})

	t.Run("discharged constraints leave no residue", func(t *testing.T) {
		q := NewQuery("q")
		goal := Conj(Neq(q.Var("q"), NewAtom(1)), Eq(q.Var("q"), NewAtom(2)))
		sol, ok := q.Solutions(ctx, goal).Next()
		require.True(t, ok)
		assert.Empty(t, sol.Residual())
	})

	t.Run("residuals are sorted", func(t *testing.T) {
		q := NewQuery("q")
		goal := Conj(
			Neq(q.Var("q"), NewAtom(9)),
			Neq(q.Var("q"), NewAtom(1)),
		)
		sol, ok := q.Solutions(ctx, goal).Next()
		require.True(t, ok)
		assert.Equal(t, []string{"_.0 != 1", "_.0 != 9"}, sol.Residual())
	})
}

// TestReificationIdempotence tests that reifying an already-reified answer
// reproduces it unchanged.
func TestReificationIdempotence(t *testing.T) {
	ctx := context.Background()

	t.Run("a reified value replays to the same record", func(t *testing.T) {
		q := NewQuery("q")
		x, y := Fresh("x"), Fresh("y")
		sol, ok := q.Solutions(ctx, Eq(q.Var("q"), List(x, NewAtom(2), x, y))).Next()
		require.True(t, ok)
		require.Equal(t, "(_.0 2 _.0 _.1)", sol.Value("q").String())

		again := NewQuery("q")
		replayed, ok := again.Solutions(ctx, Eq(again.Var("q"), sol.Value("q"))).Next()
		require.True(t, ok)
		assert.Equal(t, sol.String(), replayed.String())
	})

	t.Run("residuals replay identically", func(t *testing.T) {
		q := NewQuery("q")
		x := Fresh("x")
		goal := Conj(
			Eq(q.Var("q"), List(NewAtom(1), x, NewAtom(3))),
			Neq(x, NewAtom(2)),
		)
		sol, ok := q.Solutions(ctx, goal).Next()
		require.True(t, ok)
		require.Equal(t, "q = (1 _.0 3) where { _.0 != 2 }", sol.String())

		// The variable inside the reified answer is an ordinary unbound
		// variable, so the answer and its residual can be asserted again
		// verbatim against a fresh query.
		inner := sol.Value("q").(*Pair).Cdr().(*Pair).Car().(*Var)
		again := NewQuery("q")
		replay := Conj(
			Eq(again.Var("q"), sol.Value("q")),
			Neq(inner, NewAtom(2)),
		)
		replayed, ok := again.Solutions(ctx, replay).Next()
		require.True(t, ok)
		assert.Equal(t, sol.String(), replayed.String())
		assert.Equal(t, sol.Residual(), replayed.Residual())
	})
}

// countingExt counts propagations and can veto chosen values, exercising
// every Extension hook.
type countingExt struct {
	propagations int
	veto         int  // binding value that fails the branch, 0 for none
	rejectAll    bool // Finalize discards every solution
	tag          bool // Reify wraps the value
}

func (e *countingExt) Clone() Extension {
	c := *e
	return &c
}

func (e *countingExt) Propagate(st *State, ext []Binding) (Extension, bool) {
	c := e.Clone().(*countingExt)
	c.propagations++
	if e.veto != 0 {
		for _, b := range ext {
			if a, ok := b.Term.(*Atom); ok && a.Value() == e.veto {
				return c, false
			}
		}
	}
	return c, true
}

func (e *countingExt) Finalize(st *State) (Extension, bool) {
	return e, !e.rejectAll
}

func (e *countingExt) Reify(t Term, st *State) Term {
	if e.tag {
		return NewPair(NewAtom("tagged"), t)
	}
	return t
}

// TestStateExtension tests the user extension hooks end to end.
func TestStateExtension(t *testing.T) {
	ctx := context.Background()

	t.Run("Propagate can veto bindings", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			return Membero(q, Atoms(1, 2, 3))
		}, WithStateExtension(&countingExt{veto: 2}))
		assert.Equal(t, []int{1, 3}, atomInts(t, results))
	})

	t.Run("Finalize can discard solutions", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			return Eq(q, NewAtom(1))
		}, WithStateExtension(&countingExt{rejectAll: true}))
		assert.Empty(t, results)
	})

	t.Run("Reify post-processes answers", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			return Eq(q, NewAtom(1))
		}, WithStateExtension(&countingExt{tag: true}))
		assert.Equal(t, []string{`("tagged" . 1)`}, termStrings(results))
	})

	t.Run("WithExtension attaches to a single state", func(t *testing.T) {
		st := NewState()
		assert.Nil(t, st.Extension())
		st2 := st.WithExtension(&countingExt{})
		assert.NotNil(t, st2.Extension())
		assert.Nil(t, st.Extension())
	})
}
