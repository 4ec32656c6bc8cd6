package minikanren

// Conso creates a goal relating a head, a tail and the list they form.
// This is the fundamental list constructor as a relation and works in all
// modes: decompose a known list, build one from known parts, or leave any
// position fresh.
//
// Example:
//
//	Conso(NewAtom(1), List(NewAtom(2), NewAtom(3)), out) // out = (1 2 3)
func Conso(head, tail, list Term) Goal {
	return Eq(list, NewPair(head, tail))
}

// Caro creates a goal stating that head is the first element of list.
func Caro(list, head Term) Goal {
	return func(st *State) *Stream {
		tail := Fresh("tail")
		return Eq(list, NewPair(head, tail))(st)
	}
}

// Cdro creates a goal stating that tail is the rest of list.
func Cdro(list, tail Term) Goal {
	return func(st *State) *Stream {
		head := Fresh("head")
		return Eq(list, NewPair(head, tail))(st)
	}
}

// Nullo creates a goal that succeeds when the term is the empty list.
func Nullo(t Term) Goal {
	return Eq(t, Nil)
}

// Pairo creates a goal that succeeds when the term is a non-empty list
// (a cons pair).
func Pairo(t Term) Goal {
	return func(st *State) *Stream {
		head := Fresh("head")
		tail := Fresh("tail")
		return Eq(t, NewPair(head, tail))(st)
	}
}

// Membero creates a goal that succeeds once for each position at which
// element occurs in list. Works bidirectionally: with a fresh element it
// enumerates the list; with a fresh list it generates ever longer lists
// containing the element.
//
// Example:
//
//	Membero(x, Atoms(1, 2, 3)) // x = 1, then 2, then 3
func Membero(element, list Term) Goal {
	return Conde(
		// Base case: element is the head.
		func(st *State) *Stream {
			tail := Fresh("tail")
			return Eq(list, NewPair(element, tail))(st)
		},

		// Recursive case: element occurs in the tail.
		func(st *State) *Stream {
			head := Fresh("head")
			tail := Fresh("tail")
			return Conj(
				Eq(list, NewPair(head, tail)),
				Membero(element, tail),
			)(st)
		},
	)
}

// Appendo creates a goal stating that appending front and back yields
// whole. All modes work: appending two known lists, splitting a known list
// into every front/back pair, or completing one missing side.
//
// Example:
//
//	Appendo(front, back, Atoms(1, 2, 3)) // 4 ways to split (1 2 3)
func Appendo(front, back, whole Term) Goal {
	return Conde(
		// Base case: empty front, back is the whole.
		Conj(
			Eq(front, Nil),
			Eq(back, whole),
		),

		// Recursive case: move the head of front onto the whole.
		func(st *State) *Stream {
			head := Fresh("head")
			frontTail := Fresh("frontTail")
			wholeTail := Fresh("wholeTail")
			return Conj(
				Eq(front, NewPair(head, frontTail)),
				Eq(whole, NewPair(head, wholeTail)),
				Appendo(frontTail, back, wholeTail),
			)(st)
		},
	)
}

// Rembero creates a goal relating an element to input and output lists,
// where the output list is the input list with the first occurrence of the
// element removed. Works bidirectionally: it can compute the output,
// reconstruct possible inputs, or determine which element was removed.
//
// Example:
//
//	Rembero(NewAtom(2), Atoms(1, 2, 3), out) // out = (1 3)
func Rembero(element, inputList, outputList Term) Goal {
	return Conde(
		// Base case: input is (element . rest), output is rest.
		func(st *State) *Stream {
			rest := Fresh("rest")
			return Conj(
				Eq(inputList, NewPair(element, rest)),
				Eq(outputList, rest),
			)(st)
		},

		// Recursive case: keep the head, remove from the tail. The head
		// must differ from the element or the first clause has already
		// covered this list.
		func(st *State) *Stream {
			head := Fresh("head")
			tail := Fresh("tail")
			rest := Fresh("rest")
			return Conj(
				Eq(inputList, NewPair(head, tail)),
				Neq(head, element),
				Eq(outputList, NewPair(head, rest)),
				Rembero(element, tail, rest),
			)(st)
		},
	)
}

// SameLengtho creates a goal that succeeds when two lists have the same
// length, regardless of their elements. Used to constrain search and
// prevent divergence in relations like Reverso where Appendo could
// otherwise generate arbitrarily long candidates.
func SameLengtho(xs, ys Term) Goal {
	return Conde(
		// Base case: both empty.
		Conj(
			Eq(xs, Nil),
			Eq(ys, Nil),
		),

		// Recursive case: both non-empty with same-length tails.
		func(st *State) *Stream {
			x := Fresh("x")
			xsTail := Fresh("xs'")
			y := Fresh("y")
			ysTail := Fresh("ys'")
			return Conj(
				Eq(xs, NewPair(x, xsTail)),
				Eq(ys, NewPair(y, ysTail)),
				SameLengtho(xsTail, ysTail),
			)(st)
		},
	)
}

// reversoCore implements the reversal logic without length constraints.
// Separated so Reverso can impose length equality first.
func reversoCore(list, reversed Term) Goal {
	return Conde(
		// Base case: empty reverses to empty.
		Conj(
			Eq(list, Nil),
			Eq(reversed, Nil),
		),

		// Recursive case: reverse the tail, then append the head as a
		// singleton at the end.
		func(st *State) *Stream {
			head := Fresh("head")
			tail := Fresh("tail")
			revTail := Fresh("revTail")
			return Conj(
				Eq(list, NewPair(head, tail)),
				reversoCore(tail, revTail),
				Appendo(revTail, NewPair(head, Nil), reversed),
			)(st)
		},
	)
}

// Reverso creates a goal relating a list to its reverse. Terminates in all
// modes by first constraining both lists to the same length.
//
// Example:
//
//	Reverso(Atoms(1, 2, 3), out) // out = (3 2 1)
func Reverso(list, reversed Term) Goal {
	return Conj(
		SameLengtho(list, reversed),
		reversoCore(list, reversed),
	)
}

// Permuteo creates a goal relating a list to one of its permutations. It
// generates all n! permutations when permutation is fresh, or verifies a
// given one. Use with caution beyond eight to ten elements.
//
// Example:
//
//	Permuteo(Atoms(1, 2, 3), perm) // 6 permutations
func Permuteo(list, permutation Term) Goal {
	return Conde(
		// Base case: the empty list has only the empty permutation.
		Conj(
			Eq(list, Nil),
			Eq(permutation, Nil),
		),

		// Recursive case: the permutation starts with some element of the
		// list, followed by a permutation of the remainder.
		func(st *State) *Stream {
			element := Fresh("element")
			restList := Fresh("restList")
			restPerm := Fresh("restPerm")
			return Conj(
				Eq(permutation, NewPair(element, restPerm)),
				Rembero(element, list, restList),
				Permuteo(restList, restPerm),
			)(st)
		},
	)
}

// Subseto creates a goal relating two lists where the first is a
// subsequence of the second (elements in order, each used at most once).
// Generates 2^n subsequences of an n-element list when subset is fresh.
func Subseto(subset, superset Term) Goal {
	return Conde(
		// Base case: the empty superset admits only the empty subset.
		Conj(
			Eq(superset, Nil),
			Eq(subset, Nil),
		),

		// Recursive case: each superset element is either kept or skipped.
		func(st *State) *Stream {
			head := Fresh("head")
			tail := Fresh("tail")
			subsetTail := Fresh("subsetTail")
			return Conj(
				Eq(superset, NewPair(head, tail)),
				Conde(
					Conj(
						Eq(subset, NewPair(head, subsetTail)),
						Subseto(subsetTail, tail),
					),
					Subseto(subset, tail),
				),
			)(st)
		},
	)
}

// Lengtho creates a goal relating a list to its length as a Peano number:
// nil for zero, (s . n) for the successor of n. Works bidirectionally,
// including generating lists of a given length with fresh elements. For
// integer lengths use LengthoInt.
func Lengtho(list, length Term) Goal {
	return Conde(
		// Base case: the empty list has length zero.
		Conj(
			Eq(list, Nil),
			Eq(length, Nil),
		),

		// Recursive case: one element adds one successor.
		func(st *State) *Stream {
			head := Fresh("head")
			tail := Fresh("tail")
			restLength := Fresh("restLength")
			return Conj(
				Eq(list, NewPair(head, tail)),
				Eq(length, NewPair(NewAtom("s"), restLength)),
				Lengtho(tail, restLength),
			)(st)
		},
	)
}

// LengthoInt creates a goal relating a list to its length as an integer
// atom. A ground integer length is translated to Peano form up front so
// list generation stays bounded.
//
// Example:
//
//	LengthoInt(Atoms(1, 2, 3), n) // n = 3
func LengthoInt(list, length Term) Goal {
	return func(st *State) *Stream {
		if atom, ok := st.Walk(length).(*Atom); ok {
			if n, ok := atom.value.(int); ok {
				return Lengtho(list, intToPeano(n))(st)
			}
		}

		peanoLength := Fresh("peanoLength")
		return Conj(
			Lengtho(list, peanoLength),
			Project([]Term{peanoLength}, func(values []Term) Goal {
				return Eq(length, NewAtom(peanoToInt(values[0])))
			}),
		)(st)
	}
}

// intToPeano converts a non-negative integer to a Peano number.
func intToPeano(n int) Term {
	if n <= 0 {
		return Nil
	}
	return NewPair(NewAtom("s"), intToPeano(n-1))
}

// peanoToInt converts a Peano number back to an integer. Malformed input
// counts as zero.
func peanoToInt(t Term) int {
	if pair, ok := t.(*Pair); ok {
		if atom, ok := pair.car.(*Atom); ok {
			if s, ok := atom.value.(string); ok && s == "s" {
				return 1 + peanoToInt(pair.cdr)
			}
		}
	}
	return 0
}

// Flatteno creates a goal relating a nested list structure to its
// flattened form. Atoms become singleton elements of the result.
//
// Example:
//
//	nested := List(Atoms(1, 2), List(NewAtom(3), Atoms(4, 5)))
//	Flatteno(nested, flat) // flat = (1 2 3 4 5)
func Flatteno(nested, flat Term) Goal {
	return func(st *State) *Stream {
		switch walked := st.Walk(nested).(type) {
		case emptyList:
			return Eq(flat, Nil)(st)
		case *Pair:
			flatHead := Fresh("flatHead")
			flatTail := Fresh("flatTail")
			return Conj(
				Flatteno(walked.car, flatHead),
				Flatteno(walked.cdr, flatTail),
				Appendo(flatHead, flatTail, flat),
			)(st)
		default:
			return Eq(flat, NewPair(nested, Nil))(st)
		}
	}
}

// Distincto creates a goal that succeeds when all elements of a list are
// pairwise different, recorded as disequality constraints. Unlike the
// finite-domain Distinctfd it works over arbitrary terms and stays
// correct when elements are bound later.
func Distincto(list Term) Goal {
	return Conde(
		// Base case: the empty list is trivially distinct.
		Eq(list, Nil),

		// Recursive case: the head differs from every tail element.
		func(st *State) *Stream {
			head := Fresh("head")
			tail := Fresh("tail")
			return Conj(
				Eq(list, NewPair(head, tail)),
				notMembero(head, tail),
				Distincto(tail),
			)(st)
		},
	)
}

// notMembero asserts element is different from every member of a list that
// must walk to a proper list spine. The spine may still contain fresh
// elements; each gets a disequality against element.
func notMembero(element, list Term) Goal {
	return func(st *State) *Stream {
		switch walked := st.Walk(list).(type) {
		case emptyList:
			return Success(st)
		case *Pair:
			return Conj(
				Neq(element, walked.car),
				notMembero(element, walked.cdr),
			)(st)
		default:
			// An unbound spine: nothing to compare against yet.
			return Success(st)
		}
	}
}
