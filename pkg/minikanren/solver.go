package minikanren

import (
	"context"
	"fmt"
)

// solveConfig holds per-query search settings.
type solveConfig struct {
	dfs      bool
	maxSteps int
	ext      Extension
}

// SolveOption configures a query before the search starts.
type SolveOption func(*solveConfig)

// WithDepthFirst switches the whole search to depth-first stream
// composition: disjuncts are drained left to right instead of round-robin.
// Faster for finite searches, but an infinite disjunct starves its
// siblings.
func WithDepthFirst() SolveOption {
	return func(c *solveConfig) { c.dfs = true }
}

// WithMaxSteps bounds the number of stream forcing steps the driver may
// take. Once the budget is spent the iterator reports no more solutions.
// Use it to make queries over infinite relations terminate.
func WithMaxSteps(n int) SolveOption {
	return func(c *solveConfig) { c.maxSteps = n }
}

// WithStateExtension installs user extension data on the initial state.
// The extension's hooks run on every clone, propagation and solution.
func WithStateExtension(ext Extension) SolveOption {
	return func(c *solveConfig) { c.ext = ext }
}

// Query names the variables whose values a search should report.
//
// Example:
//
//	q := NewQuery("x", "y")
//	goal := Conj(Eq(q.Var("x"), NewAtom(1)), Eq(q.Var("y"), q.Var("x")))
//	for sol, ok := q.Solutions(ctx, goal).Next(); ok; sol, ok = ... {
type Query struct {
	names []string
	vars  []*Var
}

// NewQuery creates a query over freshly created variables with the given
// names. Panics on an empty name list, a duplicate name, or the reserved
// wildcard name "_": those are programming errors, not failing queries.
func NewQuery(names ...string) *Query {
	if len(names) == 0 {
		panic("minikanren: query with no variables")
	}
	seen := make(map[string]bool, len(names))
	vars := make([]*Var, len(names))
	for i, name := range names {
		if name == WildcardName {
			panic("minikanren: query variable may not be named \"_\"")
		}
		if seen[name] {
			panic(fmt.Sprintf("minikanren: duplicate query variable %q", name))
		}
		seen[name] = true
		vars[i] = Fresh(name)
	}
	return &Query{names: names, vars: vars}
}

// Var returns the query variable with the given name. Panics if the name
// was not declared in NewQuery.
func (q *Query) Var(name string) *Var {
	for i, n := range q.names {
		if n == name {
			return q.vars[i]
		}
	}
	panic(fmt.Sprintf("minikanren: unknown query variable %q", name))
}

// Vars returns the query variables in declaration order.
func (q *Query) Vars() []*Var {
	out := make([]*Var, len(q.vars))
	copy(out, q.vars)
	return out
}

// Solutions starts the search for the goal and returns a resumable
// iterator over its solutions. No work happens until Next is called; the
// iterator can be abandoned at any point, leaving the remaining search
// unevaluated.
func (q *Query) Solutions(ctx context.Context, g Goal, opts ...SolveOption) *Solutions {
	var cfg solveConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	st := NewState()
	st.dfs = cfg.dfs
	st.ext = cfg.ext
	return &Solutions{
		ctx:    ctx,
		query:  q,
		cfg:    cfg,
		stream: suspendGoal(g, st),
	}
}

// Solutions walks a solution stream one answer at a time. The underlying
// search is forced lazily: states between two Next calls are not computed
// ahead of time.
type Solutions struct {
	ctx    context.Context
	query  *Query
	cfg    solveConfig
	stream *Stream
	fan    *domainFanout
	steps  int
}

// Steps returns the number of stream forcing steps taken so far.
func (it *Solutions) Steps() int { return it.steps }

// Next forces the search until the next solution or exhaustion. It returns
// false when the stream is exhausted, the step budget is spent, or the
// context is cancelled.
func (it *Solutions) Next() (*Solution, bool) {
	for {
		for it.fan != nil {
			ground, ok := it.fan.Next()
			if !ok {
				it.fan = nil
				break
			}
			if sol, ok := finalizeState(ground, it.query); ok {
				return sol, true
			}
		}
		if it.ctx != nil && it.ctx.Err() != nil {
			return nil, false
		}
		switch it.stream.kind {
		case sEmpty:
			return nil, false
		case sUnit:
			it.fan = newDomainFanout(it.stream.head)
			it.stream = emptyStream()
		case sCons:
			it.fan = newDomainFanout(it.stream.head)
			it.stream = it.stream.rest
		default:
			if it.cfg.maxSteps > 0 && it.steps >= it.cfg.maxSteps {
				return nil, false
			}
			it.stream.step()
			it.steps++
		}
	}
}

// Collect drains up to n solutions (all of them when n <= 0).
func (it *Solutions) Collect(n int) []*Solution {
	var out []*Solution
	for n <= 0 || len(out) < n {
		sol, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, sol)
	}
	return out
}

// Run executes a single-variable query and returns up to n reified values
// for it (all values when n <= 0). This is the everyday entry point:
//
//	results := Run(ctx, 3, func(q *Var) Goal {
//		return Membero(q, Atoms(1, 2, 3, 4, 5))
//	})
//	// results: 1, 2, 3
func Run(ctx context.Context, n int, f func(q *Var) Goal, opts ...SolveOption) []Term {
	q := NewQuery("q")
	it := q.Solutions(ctx, f(q.Var("q")), opts...)
	var out []Term
	for n <= 0 || len(out) < n {
		sol, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, sol.Value("q"))
	}
	return out
}

// RunStar executes a single-variable query and returns all of its reified
// values. Diverges if the solution stream is infinite; combine with
// WithMaxSteps to bound it.
func RunStar(ctx context.Context, f func(q *Var) Goal, opts ...SolveOption) []Term {
	return Run(ctx, 0, f, opts...)
}
