package main

import (
	"context"
	"fmt"

	mk "github.com/relogic/gokanren/pkg/minikanren"
)

// factorPairs enumerates every (x, y) with x * y = n through a single
// finite-domain product constraint.
func factorPairs(ctx context.Context, n int) ([][2]int, error) {
	q := mk.NewQuery("x", "y")
	goal := mk.Conj(
		mk.InfdRange(q.Var("x"), 1, n),
		mk.InfdRange(q.Var("y"), 1, n),
		mk.Timesfd(q.Var("x"), q.Var("y"), mk.NewAtom(n)),
	)

	var pairs [][2]int
	it := q.Solutions(ctx, goal)
	for {
		sol, ok := it.Next()
		if !ok {
			break
		}
		pairs = append(pairs, [2]int{
			sol.Value("x").(*mk.Atom).Value().(int),
			sol.Value("y").(*mk.Atom).Value().(int),
		})
	}
	return pairs, ctx.Err()
}

// queensBoards solves n-queens over finite domains and returns the first
// board (columns per row) plus the total number of solutions.
func queensBoards(ctx context.Context, n int) ([]int, int, error) {
	q := mk.NewQuery("board")
	cols := make([]mk.Term, n)
	for i := range cols {
		cols[i] = mk.Fresh(fmt.Sprintf("row%d", i))
	}

	goals := []mk.Goal{
		mk.Eq(q.Var("board"), mk.List(cols...)),
		mk.Domfd(mk.NewRangeDomain(1, n), cols...),
		mk.Distinctfd(cols...),
	}
	rising := make([]mk.Term, n)
	falling := make([]mk.Term, n)
	for i, col := range cols {
		rising[i] = mk.Fresh(fmt.Sprintf("rise%d", i))
		falling[i] = mk.Fresh(fmt.Sprintf("fall%d", i))
		goals = append(goals,
			mk.InfdRange(rising[i], 1+i, n+i),
			mk.Plusfd(col, mk.NewAtom(i), rising[i]),
			mk.InfdRange(falling[i], 1-i, n-i),
			mk.Plusfd(falling[i], mk.NewAtom(i), col),
		)
	}
	goals = append(goals, mk.Distinctfd(rising...), mk.Distinctfd(falling...))

	it := q.Solutions(ctx, mk.Conj(goals...))
	var first []int
	total := 0
	for {
		sol, ok := it.Next()
		if !ok {
			break
		}
		total++
		if first == nil {
			rest := sol.Value("board")
			for {
				pair, isPair := rest.(*mk.Pair)
				if !isPair {
					break
				}
				first = append(first, pair.Car().(*mk.Atom).Value().(int))
				rest = pair.Cdr()
			}
		}
	}
	return first, total, ctx.Err()
}

// familyTree exercises the fact database: ancestry over stored parent
// facts, queried through ordinary goals.
func familyTree(ctx context.Context) ([]string, error) {
	parent, err := mk.DbRel("parent", 2, 0)
	if err != nil {
		return nil, err
	}

	db := mk.NewDatabase()
	for _, pair := range [][2]string{
		{"alice", "bob"},
		{"alice", "beth"},
		{"bob", "carol"},
		{"beth", "dan"},
		{"carol", "eve"},
	} {
		db, err = db.AddFact(parent, mk.NewAtom(pair[0]), mk.NewAtom(pair[1]))
		if err != nil {
			return nil, err
		}
	}

	q := mk.NewQuery("ancestor", "descendant")
	goal := grandparent(db, parent, q.Var("ancestor"), q.Var("descendant"))

	var lines []string
	for _, sol := range q.Solutions(ctx, goal).Collect(0) {
		lines = append(lines, fmt.Sprintf("%v is a grandparent of %v",
			sol.Value("ancestor").(*mk.Atom).Value(),
			sol.Value("descendant").(*mk.Atom).Value()))
	}
	return lines, ctx.Err()
}

func grandparent(db *mk.Database, parent *mk.Relation, gp, gc mk.Term) mk.Goal {
	mid := mk.Fresh("mid")
	return mk.Conj(
		db.Query(parent, gp, mid),
		db.Query(parent, mid, gc),
	)
}

// interleaveOrders contrasts fair and depth-first search on the same
// three-way disjunction.
func interleaveOrders(ctx context.Context) (fair, depthFirst []int, err error) {
	goal := func(q *mk.Var) mk.Goal {
		return mk.Conde(
			mk.Membero(q, mk.Atoms(1, 2, 3)),
			mk.Membero(q, mk.Atoms(4, 5, 6)),
			mk.Membero(q, mk.Atoms(7, 8, 9)),
		)
	}
	for _, t := range mk.RunStar(ctx, goal) {
		fair = append(fair, t.(*mk.Atom).Value().(int))
	}
	for _, t := range mk.RunStar(ctx, goal, mk.WithDepthFirst()) {
		depthFirst = append(depthFirst, t.(*mk.Atom).Value().(int))
	}
	return fair, depthFirst, ctx.Err()
}
