package minikanren

// Ifte is soft-cut: if the condition has any solution, run the consequent
// in every one of them; otherwise run the alternative in the original
// state. Unlike Conde the alternative is unreachable once the condition
// succeeds, which makes Ifte non-relational: reordering conjuncts around
// it can change the answer set.
//
// Example:
//
//	Ifte(Eq(x, NewAtom(1)), Eq(y, NewAtom("yes")), Eq(y, NewAtom("no")))
func Ifte(cond, then, alt Goal) Goal {
	return func(st *State) *Stream {
		s := peek(cond(st.Clone()))
		if s.kind == sEmpty {
			return alt(st.Clone())
		}
		return bind(s, then, st.dfs)
	}
}

// Ifu is Ifte with a committed condition: only the first solution of the
// condition survives, mirroring the Conda/Condu distinction.
func Ifu(cond, then, alt Goal) Goal {
	return func(st *State) *Stream {
		s := trunc(cond(st.Clone()))
		if s.kind == sEmpty {
			return alt(st.Clone())
		}
		return bind(s, then, st.dfs)
	}
}
