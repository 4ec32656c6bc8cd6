package minikanren

// CopyTerm creates a goal that unifies copy with a structurally identical
// version of original in which every unbound variable is replaced by a
// fresh one. Sharing is preserved: a variable occurring twice in the
// original maps to the same fresh variable in the copy. Useful for
// meta-programming, where a template term must be instantiated repeatedly
// without its instantiations interfering.
//
// Example:
//
//	x := Fresh("x")
//	template := List(x, NewAtom("hello"), x)
//	CopyTerm(template, out) // out = (_a "hello" _a) with fresh _a
func CopyTerm(original, copy Term) Goal {
	return func(st *State) *Stream {
		walked := st.WalkStar(original)
		fresh := make(map[int64]*Var)
		return Eq(copy, renameFresh(walked, fresh))(st)
	}
}

// renameFresh rebuilds a deeply walked term with fresh variables in place
// of the remaining unbound ones, reusing the map to preserve sharing.
func renameFresh(t Term, fresh map[int64]*Var) Term {
	switch w := t.(type) {
	case *Var:
		if v, ok := fresh[w.id]; ok {
			return v
		}
		v := Fresh(w.name)
		fresh[w.id] = v
		return v
	case *Pair:
		return NewPair(renameFresh(w.car, fresh), renameFresh(w.cdr, fresh))
	default:
		return t
	}
}
