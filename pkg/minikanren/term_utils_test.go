package minikanren

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCopyTerm tests template instantiation with fresh variables.
func TestCopyTerm(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces unbound variables, preserving sharing", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			x := Fresh("x")
			template := List(x, NewAtom("hello"), x)
			return CopyTerm(template, q)
		})
		assert.Equal(t, []string{`(_.0 "hello" _.0)`}, termStrings(results))
	})

	t.Run("distinct variables stay distinct", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			x, y := Fresh("x"), Fresh("y")
			return CopyTerm(List(x, y), q)
		})
		assert.Equal(t, []string{"(_.0 _.1)"}, termStrings(results))
	})

	t.Run("bound parts copy as their values", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			x, y := Fresh("x"), Fresh("y")
			return Conj(
				Eq(x, NewAtom(1)),
				CopyTerm(List(x, y), q),
			)
		})
		assert.Equal(t, []string{"(1 _.0)"}, termStrings(results))
	})

	t.Run("the copy is independent of the original", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			x := Fresh("x")
			return Conj(
				CopyTerm(List(x), q),
				// Binding the original afterwards must not touch the copy.
				Eq(x, NewAtom(42)),
			)
		})
		assert.Equal(t, []string{"(_.0)"}, termStrings(results))
	})

	t.Run("ground terms copy verbatim", func(t *testing.T) {
		results := RunStar(ctx, func(q *Var) Goal {
			return CopyTerm(Atoms(1, 2, 3), q)
		})
		assert.Equal(t, []string{"(1 2 3)"}, termStrings(results))
	})
}
