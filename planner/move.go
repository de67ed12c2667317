package planner

// Move is the planner's input/queue entity (spec §3). Immutable inputs are
// set once by Add; the remaining fields are mutable planner state filled
// in by the combiner, the backward/forward passes, and the trapezoid
// builder. Moves live in Queue's arena and are addressed by index so that
// AccelGroup.StartAccel back-pointers stay stable across growth
// (spec §9).
type Move struct {
	// Inputs (set by Add). The backward smoothed pass may later lower
	// MaxCruiseV2 and JunctionMaxV2; the rest are not changed after Add.
	D               float64
	MaxCruiseV2     float64
	JunctionMaxV2   float64
	BaseAccel       float64
	SmoothedAccel   float64
	Jerk            float64
	MinJerkLimitT   float64
	Order           AccelOrder
	AccelComp       float64

	// Mutable planner fields.
	AccelGroup    AccelGroup
	DecelGroup    AccelGroup
	DefaultAccel  AccelGroup
	FallbackDecel *AccelGroup
	SafeDecel     *AccelGroup
	CruiseV       float64
	SmoothDeltaV2 float64
	MaxSmoothedV2 float64

	// junction is the junction point embedded in this move (spec §3:
	// "no separate allocation; their list membership is reset whenever
	// the combiner resets").
	junction JunctionPoint

	// idx is this move's own index in the owning queue's arena.
	idx int

	// prev/next link this move into whichever list currently owns it:
	// the main pending queue, the backward-smoothed-pass delayed list, or
	// the forward-pass trapezoid staging list. A move is a member of
	// exactly one such list at a time, mirroring the original's single
	// reused intrusive list_node (spec §9).
	prev, next int
}

// JunctionPoint is a candidate "from where acceleration could begin"
// (spec §3). It lives embedded in the move that originated it and is
// linked into the combiner's ordered list via prev/next arena indices.
type JunctionPoint struct {
	// StartGroup is this junction point's transient, self-referencing
	// accel group: its StartAccel conceptually points back at itself, so
	// its Calc* methods are always called with StartGroup.MaxStartV/
	// MaxStartV2 passed explicitly rather than resolved through a
	// groupRef (accelcombine.c: init_junction_point sets
	// jp->accel.start_accel = &jp->accel).
	StartGroup     AccelGroup
	MinStartTime   float64
	MinEndTime     float64
	MaxCruiseEndV2 float64

	// prev/next are indices into the owning queue's move arena, forming
	// the combiner's FIFO list. inList is false when this point is not
	// currently linked.
	prev, next int
	inList     bool
	move       int

	// moveAG identifies which of the originating move's embedded groups
	// (AccelGroup, DecelGroup, or DefaultAccel) this junction point was
	// derived from, so that once chosen as the best candidate its group
	// becomes the StartAccel of the next accel group in the chain
	// (accelcombine.c: process_next_accel: ag->start_accel =
	// best_jp->move_ag).
	moveAG groupRef
}
