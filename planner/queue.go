package planner

import (
	"math"

	"github.com/pkg/errors"
)

// Queue is the look-ahead move-queue planner (spec §6; moveq.c). Moves
// are appended with Add, planned in batches with Plan, and consumed
// front-to-back with GetMove once Plan has committed their timing.
type Queue struct {
	a *arena
	c *combiner

	moves moveList

	prevEndV2         float64
	smoothedPassLimit int
	prevMoveEndV      float64
}

// New returns an empty planner queue.
func New() *Queue {
	a := newArena()
	q := &Queue{a: a, c: newCombiner(a)}
	q.moves = newMoveList(a)
	q.smoothedPassLimit = noIndex
	return q
}

// Reset discards every queued move and all planner state (moveq.c:
// moveq_reset).
func (q *Queue) Reset() {
	for idx := q.moves.first(); !atEnd(idx); {
		next := q.moves.next(idx)
		q.a.release(idx)
		idx = next
	}
	q.moves = newMoveList(q.a)
	q.c.resetCombiner()
	q.prevEndV2 = 0
	q.smoothedPassLimit = noIndex
	q.prevMoveEndV = 0
}

// Add appends a new move to the back of the queue (spec §6; moveq.c:
// moveq_add). velocity is the move's requested cruise speed;
// junctionMaxV2 is the caller-computed upper bound on the speed^2 at the
// junction into this move from the one before it.
func (q *Queue) Add(moveD, junctionMaxV2, velocity float64, order AccelOrder, accel, smoothedAccel, jerk, minJerkLimitT, accelComp float64) error {
	maxCruiseV2 := velocity * velocity
	if moveD <= 0 || accel <= 0 || jerk <= 0 || junctionMaxV2 < 0 || junctionMaxV2 > maxCruiseV2 {
		return errors.Wrapf(ErrInvalidMove, "move_d=%.6g junction_max_v2=%.6g velocity=%.6g accel=%.6g jerk=%.6g", moveD, junctionMaxV2, velocity, accel, jerk)
	}

	idx := q.a.alloc()
	m := q.a.at(idx)
	m.AccelComp = accelComp
	m.D = moveD
	m.Order = order
	m.BaseAccel = accel
	m.SmoothedAccel = smoothedAccel
	m.Jerk = jerk
	m.MinJerkLimitT = minJerkLimitT
	m.DefaultAccel.Fill(order, accel, jerk, minJerkLimitT, idx, kindDefault)
	m.MaxCruiseV2 = maxCruiseV2
	m.JunctionMaxV2 = junctionMaxV2
	m.SmoothDeltaV2 = 2. * smoothedAccel * moveD

	if !q.moves.empty() {
		prev := q.a.at(q.moves.last())
		maxSmoothedV2 := prev.MaxSmoothedV2 + prev.SmoothDeltaV2
		maxSmoothedV2 = math.Min(maxSmoothedV2, junctionMaxV2)
		maxSmoothedV2 = math.Min(maxSmoothedV2, math.Min(m.MaxCruiseV2, prev.MaxCruiseV2))
		m.MaxSmoothedV2 = maxSmoothedV2
	}
	q.moves.pushTail(idx)
	return nil
}

// backwardSmoothedPass walks the queue from its tail to its head,
// assuming the robot stops after the last move, and determines how far
// back it is safe to start a full look-ahead pass (spec §6; moveq.c:
// backward_smoothed_pass). It returns the move up to which the smoothed
// peak has stabilized (flushLimit), or noIndex if nothing is ready yet.
func (q *Queue) backwardSmoothedPass(lazy bool) (int, error) {
	updateFlushLimit := lazy
	delayed := newMoveList(q.a)
	nextSmoothedV2 := 0.
	peakCruiseV2 := 0.
	q.c.resetJunctions(0)
	flushLimit := noIndex

	move := q.moves.last()
	for !atEnd(move) {
		pm := q.moves.prev(move)
		m := q.a.at(move)
		reachableSmoothedV2 := nextSmoothedV2 + m.SmoothDeltaV2
		smoothedV2 := math.Min(m.MaxSmoothedV2, reachableSmoothedV2)
		if smoothedV2 < reachableSmoothedV2 {
			if smoothedV2+m.SmoothDeltaV2 > nextSmoothedV2 || !delayed.empty() {
				if updateFlushLimit && peakCruiseV2 != 0 {
					flushLimit = move
					updateFlushLimit = false
				}
				peakCruiseV2 = (smoothedV2 + reachableSmoothedV2) * .5
				peakCruiseV2 = math.Min(m.MaxCruiseV2, peakCruiseV2)
			}
			if !updateFlushLimit && move != flushLimit {
				m.MaxCruiseV2 = math.Min(m.MaxCruiseV2, peakCruiseV2)
				m.JunctionMaxV2 = math.Min(m.JunctionMaxV2, peakCruiseV2)
				for d := delayed.first(); !atEnd(d); d = delayed.next(d) {
					dm := q.a.at(d)
					dm.MaxCruiseV2 = math.Min(dm.MaxCruiseV2, peakCruiseV2)
					dm.JunctionMaxV2 = math.Min(dm.JunctionMaxV2, peakCruiseV2)
				}
				nextIdx := q.moves.next(move)
				if lazy && atEnd(nextIdx) {
					return noIndex, ErrTrapezoidAtQueueEnd
				}
				if !atEnd(nextIdx) {
					nm := q.a.at(nextIdx)
					nm.JunctionMaxV2 = math.Min(nm.JunctionMaxV2, peakCruiseV2)
				}
			}
			// Put delayed moves back into their places in q.moves.
			qm := move
			for d := delayed.first(); !atEnd(d); {
				dnext := delayed.next(d)
				delayed.remove(d)
				q.moves.insertAfter(qm, d)
				qm = d
				d = dnext
			}
		} else {
			// Delay calculating this move until peakCruiseV2 is known.
			q.moves.remove(move)
			delayed.pushHead(move)
		}
		if q.smoothedPassLimit == move {
			break
		}
		nextSmoothedV2 = smoothedV2
		move = pm
	}
	if !delayed.empty() {
		return noIndex, ErrDelayedNotEmpty
	}
	q.smoothedPassLimit = flushLimit
	if updateFlushLimit {
		return noIndex, nil
	}
	return flushLimit, nil
}

// backwardPass rebuilds every move's accel and decel groups from scratch
// and runs the combiner over them in reverse queue order to find the
// fastest-finishing fully-combined deceleration chain (spec §6; moveq.c:
// backward_pass).
func (q *Queue) backwardPass() {
	junctionMaxV2 := 0.
	for idx := q.moves.last(); !atEnd(idx); idx = q.moves.prev(idx) {
		m := q.a.at(idx)
		m.DecelGroup = m.DefaultAccel
		m.AccelGroup = m.DefaultAccel
		q.c.processNextAccel(idx, &m.DecelGroup, kindDecel, junctionMaxV2)
		junctionMaxV2 = m.JunctionMaxV2
	}
}

// computeSafeFlushLimit only applies in lazy mode: it walks backward
// from flushLimit checking each move's deceleration chain for a junction
// point far enough away to be trusted regardless of moves added to the
// queue later, caching the result in Move.SafeDecel (spec §6; moveq.c:
// compute_safe_flush_limit).
func (q *Queue) computeSafeFlushLimit(lazy bool, flushLimit int) int {
	if !lazy {
		return flushLimit
	}
	for move := flushLimit; !atEnd(move); move = q.moves.prev(move) {
		mv := q.a.at(move)
		safeDecel := mv.DecelGroup
		safeDecel.CombinedD = 0

		m := move
		for !atEnd(m) {
			decel := &q.a.at(m).DecelGroup
			safeDecel.CombinedD += decel.CombinedD
			safeDecel.LimitAccel(decel.MaxAccel, decel.MaxJerk)
			minSafeDist := safeDecel.CalcMinSafeDist(safeDecel.MaxEndV2)
			startDecel := q.a.group(decel.StartAccel)
			nm := q.moves.next(startDecel.Move)
			if safeDecel.CombinedD > minSafeDist+geomEpsilon && !atEnd(nm) && q.a.at(nm).JunctionMaxV2 <= startDecel.MaxStartV2 {
				sd := safeDecel
				sd.Move = move
				sd.StartAccel = decel.StartAccel
				mv.SafeDecel = &sd
				break
			}
			m = nm
		}
		if atEnd(m) {
			flushLimit = move
		}
	}
	return flushLimit
}

// forwardPass walks the queue from its head up to (but not including)
// end, chaining accelerations going forward, staging moves into a vtrap,
// and flushing completed trapezoids as soon as a full accel-then-decel
// run is known (spec §6; moveq.c: forward_pass). It returns the index of
// the last move whose timing was committed, or noIndex if none was.
func (q *Queue) forwardPass(end int, lazy bool) (int, error) {
	move := q.moves.first()
	startV2 := q.prevEndV2
	first := q.a.at(move)
	maxEndV2 := first.DecelGroup.MaxEndV2
	if maxEndV2+geomEpsilon < startV2 {
		if first.SafeDecel == nil {
			return noIndex, ErrUnreachableStart
		}
		decel := &first.DecelGroup
		startDecelRef := first.SafeDecel.StartAccel
		startDecel := q.a.group(startDecelRef)
		decelStartV2 := startDecel.MaxStartV2
		*decel = *first.SafeDecel
		decel.MaxEndV2 = startV2
		startDecel.SetMaxStartV2(math.Min(startV2, decelStartV2))
	}

	vt := newVtrap(q.a)
	q.c.resetJunctions(startV2)
	prevCruiseV2 := startV2
	lastFlushed := noIndex
	var nextMove int

	for !atEnd(move) && move != end {
		nextMove = q.moves.next(move)
		m := q.a.at(move)
		accel := &m.AccelGroup
		decel := &m.DecelGroup

		q.c.processNextAccel(move, accel, kindAccel, math.Min(m.JunctionMaxV2, prevCruiseV2))

		canAccelerate := decel.MaxEndV2 > accel.MaxStartV2+geomEpsilon
		if canAccelerate {
			if vt.decelHead != noIndex {
				lastFlushed = vt.flush(&q.moves, move)
			}
			vt.addAsAccel(&q.moves, move)
		}
		mustDecelerate := accel.MaxEndV2+geomEpsilon > decel.MaxStartV2
		if mustDecelerate || !canAccelerate {
			anchorMove := q.a.group(decel.StartAccel).Move
			for move != end {
				vt.addAsDecel(&q.moves, move)
				if move == anchorMove {
					break
				}
				move = nextMove
				nextMove = q.moves.next(move)
			}
			if move == end {
				break
			}
			q.c.resetJunctions(q.a.group(decel.StartAccel).MaxStartV2)
		}
		prevCruiseV2 = q.a.at(move).MaxCruiseV2
		move = nextMove
	}
	if !lazy {
		if vt.decelHead != noIndex {
			lastFlushed = vt.flush(&q.moves, noIndex)
		}
	} else {
		vt.clear(&q.moves, end)
	}
	return lastFlushed, nil
}

// Plan runs the full two-pass look-ahead planner over the queued moves
// and commits the timing of however many moves it can (spec §6; moveq.c:
// moveq_plan). In lazy mode it only commits moves it can prove are
// final; otherwise it commits the entire queue, assuming it ends at
// rest. It returns how many moves are now ready for GetMove.
func (q *Queue) Plan(lazy bool) (int, error) {
	if q.moves.empty() {
		return 0, nil
	}
	flushLimit, err := q.backwardSmoothedPass(lazy)
	if err != nil {
		return 0, err
	}
	if lazy && atEnd(flushLimit) {
		return 0, nil
	}
	q.backwardPass()
	flushLimit = q.computeSafeFlushLimit(lazy, flushLimit)
	lastFlushed, err := q.forwardPass(flushLimit, lazy)
	if err != nil {
		return 0, err
	}
	if atEnd(lastFlushed) {
		return 0, nil
	}
	q.prevEndV2 = q.a.at(lastFlushed).DecelGroup.MaxStartV2

	count := 0
	for idx := q.moves.first(); ; idx = q.moves.next(idx) {
		count++
		if idx == lastFlushed {
			break
		}
	}
	return count, nil
}

// AccelDecel is the committed timing of one move, ready to be rendered
// into an S-curve trajectory by the output stage (spec §6; moveq.c:
// struct trap_accel_decel). The pressure-advance compensation fields the
// original also tracks (uncomp_accel_t/uncomp_accel_offset_t and their
// decel counterparts) are out of scope here: nothing downstream of this
// package consumes them, and AccelComp is already threaded through for a
// future filter stage to recompute them from (see DESIGN.md, queue.go).
type AccelDecel struct {
	AccelOrder  AccelOrder
	AccelComp   float64
	StartAccelV float64
	CruiseV     float64

	EffectiveAccel float64
	EffectiveDecel float64

	AccelT, AccelOffsetT, TotalAccelT float64
	DecelT, DecelOffsetT, TotalDecelT float64
	CruiseT                           float64
}

// GetMove dequeues and returns the timing of the move at the front of
// the queue (spec §6; moveq.c: moveq_getmove). The move must already
// have been committed by Plan; calling GetMove on an uncommitted move
// produces undefined timing.
func (q *Queue) GetMove() (AccelDecel, error) {
	var out AccelDecel
	if q.moves.empty() {
		return out, ErrEmptyQueue
	}
	idx := q.moves.first()
	m := q.a.at(idx)
	accel := &m.AccelGroup
	decel := &m.DecelGroup

	out.AccelOrder = accel.Order
	out.AccelComp = m.AccelComp
	out.StartAccelV = accel.StartAccelV
	out.CruiseV = m.CruiseV
	out.EffectiveAccel = accel.EffectiveAccel
	out.EffectiveDecel = decel.EffectiveAccel
	out.AccelT = accel.AccelT
	out.AccelOffsetT = accel.AccelOffsetT
	out.TotalAccelT = accel.TotalAccelT
	out.DecelT = decel.AccelT
	out.DecelOffsetT = decel.AccelOffsetT
	out.TotalDecelT = decel.TotalAccelT

	cruiseD := m.D - accel.AccelD - decel.AccelD
	out.CruiseT = cruiseD / m.CruiseV

	var startV, endV float64
	if out.AccelT != 0 {
		startV = out.StartAccelV + out.EffectiveAccel*out.AccelOffsetT
	} else {
		startV = m.CruiseV - out.EffectiveDecel*out.DecelOffsetT
	}
	if out.DecelT != 0 || out.CruiseT != 0 {
		endV = m.CruiseV - out.EffectiveDecel*(out.DecelOffsetT+out.DecelT)
	} else {
		endV = startV + out.EffectiveAccel*out.AccelT
	}

	if out.CruiseT < -geomEpsilon {
		return AccelDecel{}, errors.Wrapf(ErrNegativeCruiseTime, "cruise_t=%.6g", out.CruiseT)
	}
	out.CruiseT = math.Max(0, out.CruiseT)
	if math.Abs(q.prevMoveEndV-startV) > velEpsilon {
		return AccelDecel{}, errors.Wrapf(ErrVelocityContinuity, "prev_end_v=%.6g start_v=%.6g", q.prevMoveEndV, startV)
	}

	q.moves.remove(idx)
	q.a.release(idx)
	q.prevMoveEndV = endV
	return out, nil
}
