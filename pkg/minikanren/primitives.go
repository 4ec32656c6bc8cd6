package minikanren

import "fmt"

// Goal is a relational program fragment: a function from a search state to
// a lazy stream of extended states. Goals never mutate their argument
// beyond copy-on-write cloning, so one state may feed many disjuncts.
//
// Example:
//
//	x := Fresh("x")
//	goal := Eq(x, NewAtom(42))
//	stream := goal(NewState())
type Goal func(st *State) *Stream

// Success is the goal that always succeeds, yielding its input state
// unchanged.
var Success Goal = func(st *State) *Stream {
	return unitStream(st)
}

// Failure is the goal that always fails, yielding no states.
var Failure Goal = func(st *State) *Stream {
	return emptyStream()
}

// Eq creates a goal that unifies two terms. The goal succeeds with the
// minimally extended state when unification succeeds and every constraint
// remains satisfiable, and fails otherwise.
//
// Example:
//
//	x := Fresh("x")
//	Eq(x, NewAtom(1)) // binds x to 1
func Eq(u, v Term) Goal {
	return func(st *State) *Stream {
		next := st.Clone()
		ext, ok := next.Unify(u, v)
		if !ok {
			return emptyStream()
		}
		if !next.update(ext) {
			return emptyStream()
		}
		return unitStream(next)
	}
}

// Neq creates a goal asserting that two terms never become equal, now or
// after any future binding. If the terms are already equal the goal fails
// immediately; if they can never be equal it succeeds without recording
// anything; otherwise a disequality constraint is stored and re-checked on
// every substitution extension.
//
// Example:
//
//	x := Fresh("x")
//	Conj(Neq(x, NewAtom(1)), Membero(x, Atoms(1, 2, 3))) // x is 2 or 3
func Neq(u, v Term) Goal {
	return func(st *State) *Stream {
		next := st.Clone()
		if !next.addConstraint(NewDisequalityConstraint(u, v)) {
			return emptyStream()
		}
		return unitStream(next)
	}
}

// Conj creates the conjunction of the given goals, succeeding once per way
// of satisfying all of them in order. Each goal runs in the states produced
// by the previous one. Conj of no goals is Success.
//
// Example:
//
//	x, y := Fresh("x"), Fresh("y")
//	Conj(Eq(x, NewAtom(1)), Eq(y, x)) // x = 1, y = 1
func Conj(goals ...Goal) Goal {
	if len(goals) == 0 {
		return Success
	}
	if len(goals) == 1 {
		return goals[0]
	}
	return func(st *State) *Stream {
		s := goals[0](st)
		for _, g := range goals[1:] {
			s = bind(s, g, st.dfs)
		}
		return s
	}
}

// Conde creates the disjunction of the given goals. Each disjunct runs
// against its own copy of the incoming state and the resulting streams are
// merged with round-robin interleaving, so an unproductive or infinite
// disjunct cannot starve the others. Conde of no goals is Failure.
//
// Disjunct bodies are suspended, not applied eagerly, which is what makes
// recursive relations safe to write without explicit delays:
//
//	Conde(
//		Eq(x, NewAtom(1)),
//		func(st *State) *Stream { return someRecursiveRelation(x)(st) },
//	)
func Conde(goals ...Goal) Goal {
	return func(st *State) *Stream {
		if len(goals) == 0 {
			return emptyStream()
		}
		s := suspendGoal(goals[len(goals)-1], st.Clone())
		for i := len(goals) - 2; i >= 0; i-- {
			s = suspendMerge(suspendGoal(goals[i], st.Clone()), s, st.dfs)
		}
		return s
	}
}

// Disj is a binary alias for Conde, kept for symmetry with Conj in code
// that builds goal trees programmatically.
func Disj(g1, g2 Goal) Goal {
	return Conde(g1, g2)
}

// Conda implements committed choice over guarded clauses. Each clause is a
// non-empty goal sequence; the first goal is the guard. Clauses are tried
// in order, and the first clause whose guard succeeds commits: the
// remaining clauses are discarded, the guard keeps all of its solutions,
// and the rest of the clause runs in each of them. With no clause guard
// succeeding, the goal fails.
//
// Forcing a guard may not terminate if the guard's stream is infinite and
// unproductive.
//
// Example:
//
//	Conda(
//		[]Goal{Eq(x, NewAtom(1)), Eq(y, NewAtom("one"))},
//		[]Goal{Success, Eq(y, NewAtom("other"))},
//	)
func Conda(clauses ...[]Goal) Goal {
	return committedChoice(clauses, false)
}

// Condu is Conda with a stronger commit: the first succeeding guard is
// additionally truncated to its first solution, so the clause body runs at
// most once per Condu.
func Condu(clauses ...[]Goal) Goal {
	return committedChoice(clauses, true)
}

func committedChoice(clauses [][]Goal, once bool) Goal {
	for i, clause := range clauses {
		if len(clause) == 0 {
			panic(fmt.Sprintf("minikanren: empty clause %d in committed choice", i))
		}
	}
	return func(st *State) *Stream {
		for _, clause := range clauses {
			guard := peek(clause[0](st.Clone()))
			if guard.kind == sEmpty {
				continue
			}
			if once {
				guard = trunc(guard)
			}
			return bind(guard, Conj(clause[1:]...), st.dfs)
		}
		return emptyStream()
	}
}

// Onceo succeeds at most once: it yields the first solution of the given
// goal and discards the rest.
func Onceo(g Goal) Goal {
	return func(st *State) *Stream {
		return suspendGoal(func(inner *State) *Stream {
			return trunc(g(inner))
		}, st.Clone())
	}
}

// Delay wraps a goal constructor so that the goal is built only when the
// stream is forced. Use it when a relation must refer to itself in its own
// definition and a clause closure is inconvenient.
//
// Example:
//
//	func Nats(x Term, n int) Goal {
//		return Delay(func() Goal {
//			return Conde(Eq(x, NewAtom(n)), Nats(x, n+1))
//		})
//	}
func Delay(build func() Goal) Goal {
	return func(st *State) *Stream {
		return suspendGoal(func(inner *State) *Stream {
			return build()(inner)
		}, st)
	}
}

// Anyo succeeds any number of times: once per solution of g, forever. The
// fair merge in Conde guarantees other disjuncts still get scheduled.
func Anyo(g Goal) Goal {
	return Conde(
		g,
		func(st *State) *Stream { return Anyo(g)(st) },
	)
}

// Alwayso succeeds an unbounded number of times without binding anything.
// Useful for exercising fairness and as a generator in tests.
func Alwayso() Goal {
	return Anyo(Success)
}

// Nevero never produces a solution but never finishes searching either.
// Under fair interleaving a Conde sibling of Nevero still yields all of
// its solutions.
func Nevero() Goal {
	return Anyo(Failure)
}

// Project resolves the current values of the given terms and passes them to
// a goal constructor, allowing non-relational escape hatches such as
// arithmetic on already-ground values. The goal fails if any projected term
// still contains an unbound variable.
//
// Example:
//
//	Project([]Term{x}, func(vals []Term) Goal {
//		n := vals[0].(*Atom).Value().(int)
//		return Eq(y, NewAtom(n*n))
//	})
func Project(terms []Term, build func(values []Term) Goal) Goal {
	return func(st *State) *Stream {
		values := make([]Term, len(terms))
		for i, t := range terms {
			v := st.WalkStar(t)
			if hasUnboundVar(v) {
				return emptyStream()
			}
			values[i] = v
		}
		return build(values)(st)
	}
}

// hasUnboundVar reports whether a deeply walked term still contains a
// variable.
func hasUnboundVar(t Term) bool {
	switch w := t.(type) {
	case *Var:
		return true
	case *Pair:
		return hasUnboundVar(w.car) || hasUnboundVar(w.cdr)
	default:
		return false
	}
}
