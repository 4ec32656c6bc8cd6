package minikanren

// Stream is a lazy, possibly infinite sequence of search states. A stream
// is in one of six shapes: empty, a single state, a state followed by a
// suspended rest, or one of three suspended computations (a stored
// goal+state application, a deferred fair merge, a deferred bind).
//
// Suspended nodes are the engine's only suspension points: recursion in a
// relational program manifests as repeated forcing of suspended nodes by
// the driver loop, not as native call-stack recursion, so search depth is
// unbounded by the Go stack. Forcing evaluates exactly one step of the
// represented computation and replaces the node in place, so a node shared
// between consumers is never evaluated twice.
type Stream struct {
	kind streamKind

	// head/rest for unit and cons shapes.
	head *State
	rest *Stream

	// goal+st for pending applications; goal+src for pending binds.
	goal Goal
	st   *State
	src  *Stream

	// left/right for pending merges.
	left  *Stream
	right *Stream

	// dfs disables the operand swap in mplus/bind, trading round-robin
	// fairness for strict left-to-right (depth-first) ordering.
	dfs bool
}

type streamKind uint8

const (
	sEmpty streamKind = iota
	sUnit
	sCons
	sPendingGoal
	sPendingMerge
	sPendingBind
)

func emptyStream() *Stream { return &Stream{kind: sEmpty} }

func unitStream(st *State) *Stream { return &Stream{kind: sUnit, head: st} }

func consStream(head *State, rest *Stream) *Stream {
	return &Stream{kind: sCons, head: head, rest: rest}
}

// suspendGoal defers applying a goal to a state. This is the recursion
// closure of the goal algebra: building the node is cheap and the goal body
// runs only when the driver forces it.
func suspendGoal(g Goal, st *State) *Stream {
	return &Stream{kind: sPendingGoal, goal: g, st: st}
}

func suspendMerge(left, right *Stream, dfs bool) *Stream {
	return &Stream{kind: sPendingMerge, left: left, right: right, dfs: dfs}
}

func suspendBind(src *Stream, g Goal, dfs bool) *Stream {
	return &Stream{kind: sPendingBind, src: src, goal: g, dfs: dfs}
}

func (s *Stream) isSuspended() bool { return s.kind >= sPendingGoal }

// mplus merges two streams. The shape of the first operand decides:
//
//   - Empty: the merge is just the other stream.
//   - Unit: its one state goes first, the other stream follows.
//   - Cons: the head is emitted and, in fair mode, the OPERANDS ARE
//     SWAPPED for the rest. The swap is what yields round-robin
//     interleaving: an infinite first stream cannot starve the second.
//   - Suspended: the merge itself is deferred.
//
// In dfs mode no swap happens, so the left stream is drained first.
func mplus(a, b *Stream, dfs bool) *Stream {
	switch a.kind {
	case sEmpty:
		return b
	case sUnit:
		return consStream(a.head, b)
	case sCons:
		if dfs {
			return consStream(a.head, suspendMerge(a.rest, b, true))
		}
		return consStream(a.head, suspendMerge(b, a.rest, false))
	default:
		return suspendMerge(a, b, dfs)
	}
}

// bind feeds every state of a stream through a goal, merging the resulting
// streams. Like mplus it interleaves rather than appends in fair mode.
func bind(s *Stream, g Goal, dfs bool) *Stream {
	switch s.kind {
	case sEmpty:
		return emptyStream()
	case sUnit:
		return g(s.head)
	case sCons:
		return mplus(g(s.head), suspendBind(s.rest, g, dfs), dfs)
	default:
		return suspendBind(s, g, dfs)
	}
}

// step forces one step of a suspended node, replacing it in place. Panics
// on a non-suspended stream: that is a driver bug, not a logical failure.
func (s *Stream) step() {
	switch s.kind {
	case sPendingGoal:
		g, st := s.goal, s.st
		s.become(g(st))
	case sPendingMerge:
		if s.left.isSuspended() {
			s.left.step()
			// Rotate after every unit of work so an unproductive left
			// operand cannot starve the right one.
			if !s.dfs {
				s.left, s.right = s.right, s.left
			}
			return
		}
		s.become(mplus(s.left, s.right, s.dfs))
	case sPendingBind:
		if s.src.isSuspended() {
			s.src.step()
			return
		}
		s.become(bind(s.src, s.goal, s.dfs))
	default:
		panic("minikanren: step on a non-suspended stream")
	}
}

// become overwrites the node with another stream's contents. The suspended
// computation is consumed exactly once; every holder of the pointer sees
// the result.
func (s *Stream) become(o *Stream) { *s = *o }

// peek forces suspended nodes until the stream exposes a head state or
// becomes empty, without consuming the head. Used by committed-choice
// guards. May not terminate if the stream is infinite and unproductive.
func peek(s *Stream) *Stream {
	for s.isSuspended() {
		s.step()
	}
	return s
}

// trunc is peek followed by collapsing the stream to at most its head,
// discarding any further solutions. Used by Condu's commit semantics.
func trunc(s *Stream) *Stream {
	s = peek(s)
	if s.kind == sEmpty {
		return s
	}
	return unitStream(s.head)
}
