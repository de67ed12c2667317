package planner

import "math"

// combiner picks, move by move, which earlier junction point an
// accelerating phase should chain back to so the whole chain finishes
// moving fastest (spec §4.C, "acceleration combiner"). It is grounded
// directly on accelcombine.c; its junction list is a FIFO of moves in
// the order they were pushed, linked by arena index rather than by heap
// pointers, walked through each move's own embedded JunctionPoint
// (spec §9).
type combiner struct {
	a *arena

	// headMove/tailMove are move-arena indices bounding the junction
	// list, or noIndex when empty. List links live in each move's
	// junction.prev/next (the combiner reuses the same link fields the
	// queue itself will reuse for other lists once a move leaves this
	// one, per spec §9).
	headMove, tailMove int

	junctStartV2 float64

	// prevBestJP is the move index of the junction point chosen as best
	// on the previous call to processNextAccel, or noIndex before the
	// first call and after every reset (accelcombine.c: ac->prev_best_jp).
	prevBestJP int
}

func newCombiner(a *arena) *combiner {
	c := &combiner{a: a, headMove: noIndex, tailMove: noIndex, prevBestJP: noIndex}
	return c
}

func (c *combiner) empty() bool { return c.headMove == noIndex }

func (c *combiner) pushTail(moveIdx int) {
	jp := &c.a.at(moveIdx).junction
	jp.prev = c.tailMove
	jp.next = noIndex
	jp.inList = true
	jp.move = moveIdx
	if c.tailMove == noIndex {
		c.headMove = moveIdx
	} else {
		c.a.at(c.tailMove).junction.next = moveIdx
	}
	c.tailMove = moveIdx
}

func (c *combiner) removeLast() {
	if c.tailMove == noIndex {
		return
	}
	old := c.tailMove
	jp := &c.a.at(old).junction
	jp.inList = false
	c.tailMove = jp.prev
	if c.tailMove == noIndex {
		c.headMove = noIndex
	} else {
		c.a.at(c.tailMove).junction.next = noIndex
	}
}

// resetJunctions drops every junction point and re-seeds the list's
// starting speed^2 (accelcombine.c: reset_junctions).
func (c *combiner) resetJunctions(startV2 float64) {
	for idx := c.headMove; idx != noIndex; {
		next := c.a.at(idx).junction.next
		c.a.at(idx).junction.inList = false
		idx = next
	}
	c.headMove = noIndex
	c.tailMove = noIndex
	c.junctStartV2 = startV2
	c.prevBestJP = noIndex
}

// initJunctionPoint seeds moveIdx's embedded junction point from ag, the
// newly-filled accel group for this move's upcoming accel/decel phase
// (accelcombine.c: init_junction_point). The returned point's StartGroup
// is its own transient chain anchor: its Calc* methods must always be
// called with StartGroup.MaxStartV/MaxStartV2 passed explicitly, never
// resolved through a groupRef, mirroring the original's self-referencing
// new_jp->accel.start_accel = &new_jp->accel.
func (c *combiner) initJunctionPoint(moveIdx int, ag *AccelGroup, kind groupKind, junctionMaxV2 float64) *JunctionPoint {
	jp := &c.a.at(moveIdx).junction
	*jp = JunctionPoint{}
	jp.StartGroup = *ag
	jp.moveAG = groupRef{move: moveIdx, kind: kind}

	var startV2 float64
	if c.prevBestJP != noIndex {
		prev := &c.a.at(c.prevBestJP).junction
		prevEndV2 := math.Min(prev.StartGroup.MaxEndV2, prev.MaxCruiseEndV2)
		startV2 = math.Min(junctionMaxV2, prevEndV2)
		jp.MinStartTime = prev.MinEndTime
	} else {
		startV2 = math.Min(junctionMaxV2, c.junctStartV2)
	}
	jp.StartGroup.SetMaxStartV2(startV2)
	return jp
}

// checkCanCombine reports whether the last junction point currently in
// the list is compatible with chaining onto next: only groups of the
// same (non-order-2) accel order and the same filter compensation time
// can be folded into a single combined phase (accelcombine.c:
// check_can_combine).
func (c *combiner) checkCanCombine(next *AccelGroup) bool {
	if c.empty() {
		return false
	}
	prev := &c.a.at(c.tailMove).junction.StartGroup
	return next.Order != Order2 &&
		prev.Order == next.Order &&
		c.a.at(prev.Move).AccelComp == c.a.at(next.Move).AccelComp
}

// dropDeceleratingJPs discards junction points from the tail of the list
// whose start speed^2 would require decelerating below accelLimitV2
// (accelcombine.c: drop_decelerating_jps).
func (c *combiner) dropDeceleratingJPs(accelLimitV2 float64) {
	for !c.empty() {
		last := &c.a.at(c.tailMove).junction
		if last.StartGroup.MaxStartV2 < accelLimitV2+geomEpsilon {
			return
		}
		c.removeLast()
	}
}

// dropNonacceleratingJPs additionally drops the point that exactly
// matches accelLimitV2, leaving only points that would strictly
// accelerate (accelcombine.c: drop_nonaccelerating_jps).
func (c *combiner) dropNonacceleratingJPs(accelLimitV2 float64) {
	c.dropDeceleratingJPs(accelLimitV2 - 2.*geomEpsilon)
}

// limitAccelJPs re-tightens every junction point's kinematic limits so
// that accelerating along it never overshoots junctionMaxV2, then
// further clamps to ag's own limits (accelcombine.c: limit_accel_jps).
func (c *combiner) limitAccelJPs(ag *AccelGroup, junctionMaxV2 float64) {
	for idx := c.headMove; idx != noIndex; idx = c.a.at(idx).junction.next {
		jp := &c.a.at(idx).junction
		junctionAccelLimit := 0.5 * (junctionMaxV2 - jp.StartGroup.MaxStartV2) / jp.StartGroup.CombinedD
		limit := math.Min(junctionAccelLimit, ag.MaxAccel)
		jp.StartGroup.LimitAccel(limit, ag.MaxJerk)
	}
}

// calcMinAccelEndTime returns the earliest time this junction point's
// chain could finish moving at cruiseV2 (accelcombine.c:
// calc_min_accel_end_time).
func calcMinAccelEndTime(jp *JunctionPoint, cruiseV2 float64) float64 {
	cruiseV := math.Sqrt(math.Max(cruiseV2, 0))
	return jp.MinStartTime + jp.StartGroup.CalcMinAccelGroupTime(jp.StartGroup.MaxStartV, cruiseV)
}

// calcBestJP extends every junction point currently in the list by
// move's distance, recomputes each one's reachable end speed and finish
// time, and returns the move index of whichever finishes soonest
// (accelcombine.c: calc_best_jp).
func (c *combiner) calcBestJP(moveIdx int) int {
	m := c.a.at(moveIdx)
	maxCruiseV2 := m.MaxCruiseV2
	best := noIndex
	var bestEndTime float64
	for idx := c.headMove; idx != noIndex; idx = c.a.at(idx).junction.next {
		jp := &c.a.at(idx).junction
		jp.StartGroup.CombinedD += m.D
		jp.StartGroup.MaxEndV2 = jp.StartGroup.CalcMaxV2(jp.StartGroup.MaxStartV, jp.StartGroup.MaxStartV2)
		jp.MaxCruiseEndV2 = maxCruiseV2
		endV2 := jp.StartGroup.MaxEndV2
		if maxCruiseV2 < endV2 {
			endV2 = maxCruiseV2
		}
		jp.MinEndTime = calcMinAccelEndTime(jp, endV2)
		if best == noIndex || bestEndTime > jp.MinEndTime+geomEpsilon {
			best = idx
			bestEndTime = jp.MinEndTime
		}
	}
	return best
}

// processNextAccel is the combiner's main entry point: given the move
// about to acquire an accel (or decel) phase described by ag, it decides
// whether ag should chain onto an existing combined phase or start a new
// one, and mutates ag in place to reflect the choice (accelcombine.c:
// process_next_accel).
func (c *combiner) processNextAccel(moveIdx int, ag *AccelGroup, kind groupKind, junctionMaxV2 float64) {
	newJP := c.initJunctionPoint(moveIdx, ag, kind, junctionMaxV2)
	startV2 := newJP.StartGroup.MaxStartV2
	if !c.checkCanCombine(ag) {
		// moveIdx's own point isn't linked yet (pushTail happens below),
		// so clearing the list here only drops earlier, incompatible
		// chains.
		c.resetJunctions(startV2)
	}

	limit := math.Min(startV2, junctionMaxV2)
	c.dropNonacceleratingJPs(limit)
	c.limitAccelJPs(ag, junctionMaxV2)

	c.pushTail(moveIdx)
	best := c.calcBestJP(moveIdx)
	c.prevBestJP = best
	bestJP := &c.a.at(best).junction

	ag.LimitAccel(bestJP.StartGroup.MaxAccel, bestJP.StartGroup.MaxJerk)
	ag.SetMaxStartV2(startV2)
	ag.MaxEndV2 = bestJP.StartGroup.MaxEndV2
	ag.CombinedD = bestJP.StartGroup.CombinedD
	// Chain ag onto the real, persisted group the winning junction point
	// was derived from, rather than its transient StartGroup copy.
	ag.StartAccel = bestJP.moveAG
}

// maybeAddNewFallbackDecelJP adds a synthetic junction point representing
// "decelerate from this move's own deceleration group", used as a safety
// net when no combined accel chain can reach nextJunctionMaxV2
// (accelcombine.c: maybe_add_new_fallback_decel_jp).
func (c *combiner) maybeAddNewFallbackDecelJP(moveIdx int, nextJunctionMaxV2 float64) {
	m := c.a.at(moveIdx)
	startV2 := m.DecelGroup.MaxStartV2
	if nextJunctionMaxV2 > startV2+geomEpsilon {
		return
	}
	if !c.empty() {
		last := &c.a.at(c.tailMove).junction
		if nextJunctionMaxV2 < last.StartGroup.MaxStartV2+geomEpsilon {
			return
		}
	}
	jp := &m.junction
	*jp = JunctionPoint{}
	jp.StartGroup = m.DefaultAccel
	jp.moveAG = groupRef{move: moveIdx, kind: kindDecel}
	jp.StartGroup.SetMaxStartV2(nextJunctionMaxV2)
	c.pushTail(moveIdx)
}

// findFallbackDecel walks the junction list from the tail backward,
// extending each by move's distance, and picks the first one whose
// maximum safe end speed^2 can still reach maxEndV2 — the deceleration
// plan that is guaranteed kinematically reachable no matter how the
// later look-ahead pass turns out (accelcombine.c: find_fallback_decel).
func (c *combiner) findFallbackDecel(moveIdx int, maxEndV2 float64) bool {
	m := c.a.at(moveIdx)
	for idx := c.tailMove; idx != noIndex; idx = c.a.at(idx).junction.prev {
		jp := &c.a.at(idx).junction
		jp.StartGroup.CombinedD += m.D
		safeEndV2 := jp.StartGroup.CalcMaxSafeV2(jp.StartGroup.MaxStartV, jp.StartGroup.MaxStartV2)
		if maxEndV2 <= safeEndV2+geomEpsilon {
			fb := jp.StartGroup
			fb.MaxEndV2 = safeEndV2
			fb.SetMaxStartV2(jp.StartGroup.MaxStartV2)
			fb.StartAccel = jp.moveAG
			fb.Move = moveIdx
			m.FallbackDecel = &fb
			return true
		}
	}
	m.FallbackDecel = nil
	return false
}

// processFallbackDecel re-derives the guaranteed-safe fallback
// deceleration plan for moveIdx ahead of the look-ahead pass committing
// anything (accelcombine.c: process_fallback_decel).
func (c *combiner) processFallbackDecel(moveIdx int, nextJunctionMaxV2 float64) bool {
	m := c.a.at(moveIdx)
	if !c.checkCanCombine(&m.DefaultAccel) {
		c.resetCombiner()
	}

	decel := &m.DecelGroup
	startV2 := decel.MaxStartV2
	maxEndV2 := math.Min(decel.MaxEndV2, m.JunctionMaxV2)

	if nextJunctionMaxV2 > geomEpsilon {
		c.dropDeceleratingJPs(math.Min(startV2, nextJunctionMaxV2))
	} else {
		c.resetJunctions(0)
	}
	c.limitAccelJPs(&m.DefaultAccel, nextJunctionMaxV2)
	c.maybeAddNewFallbackDecelJP(moveIdx, nextJunctionMaxV2)

	return c.findFallbackDecel(moveIdx, maxEndV2)
}

// resetCombiner clears the junction list entirely (accelcombine.c:
// reset_combiner / init_combiner).
func (c *combiner) resetCombiner() {
	c.resetJunctions(0)
}
