package planner

import "math"

// vtrap stages a run of moves that will share a single cruise speed
// while the forward pass walks the queue, splitting off as an
// accelerating run, a decelerating run, or both meeting at a peak
// (spec §4.D; trapbuild.c).
type vtrap struct {
	a *arena

	// trapezoid holds the moves currently staged, threaded through the
	// same prev/next fields the main queue uses (spec §9); a move is
	// moved out of the main queue's list and into this one when staged,
	// then moved into the forward pass's "committed" position on flush.
	trapezoid moveList

	// accelHead/decelHead are move indices, or noIndex. accelHead is the
	// single move (if any) currently accelerating into the peak.
	// decelHead is the first move (if any) of the run decelerating away
	// from the peak.
	accelHead, decelHead int
}

func newVtrap(a *arena) *vtrap {
	return &vtrap{a: a, trapezoid: newMoveList(a), accelHead: noIndex, decelHead: noIndex}
}

func (vt *vtrap) init() {
	vt.trapezoid = newMoveList(vt.a)
	vt.accelHead, vt.decelHead = noIndex, noIndex
}

// calcMovePeakV2 finds the highest speed^2 a single move can reach given
// its own accel and decel groups when neither chains onto neighbors
// (trapbuild.c: calc_move_peak_v2).
func calcMovePeakV2(a *arena, moveIdx int) float64 {
	m := a.at(moveIdx)
	accel, decel := &m.AccelGroup, &m.DecelGroup
	if accel.Order == Order2 {
		effectiveAccel := math.Min(accel.MaxAccel, decel.MaxAccel)
		return (accel.MaxStartV2 + decel.MaxStartV2 + 2.*m.D*effectiveAccel) * .5
	}
	accelStartV := a.group(accel.StartAccel).MaxStartV
	decelStartV := a.group(decel.StartAccel).MaxStartV
	totalD := accel.CombinedD + decel.CombinedD - m.D
	highV := math.Sqrt(math.Max(accel.MaxEndV2, decel.MaxEndV2))
	lowV := 0.
	for highV-lowV > geomEpsilon {
		guessV := (highV + lowV) * 0.5
		accelD := accel.CalcMinAccelDist(accelStartV, guessV)
		decelD := decel.CalcMinAccelDist(decelStartV, guessV)
		if accelD <= accel.CombinedD && decelD <= decel.CombinedD && accelD+decelD <= totalD {
			lowV = guessV
		} else {
			highV = guessV
		}
	}
	return lowV * lowV
}

// calcTrapPeakV2 returns the speed^2 the staged accel/decel runs should
// cruise at (trapbuild.c: calc_trap_peak_v2).
func calcTrapPeakV2(a *arena, accelHead, decelHead int) float64 {
	if decelHead != accelHead {
		dh := a.at(decelHead)
		peakV2 := math.Min(dh.DecelGroup.MaxEndV2, dh.JunctionMaxV2)
		if accelHead != noIndex {
			peakV2 = math.Min(peakV2, a.at(accelHead).AccelGroup.MaxEndV2)
		}
		return peakV2
	}
	peakV2 := calcMovePeakV2(a, decelHead)
	return math.Min(peakV2, a.at(decelHead).MaxCruiseV2)
}

// setAccel fills the S-curve and per-move accel bookkeeping for the
// chain anchored at combined (trapbuild.c: set_accel). Combined chains
// are always contiguous runs of the trapezoid's staged moves, so rather
// than a next_accel pointer (never populated by the combiner; see
// accelgroup.go), the chain is walked through the staged moveList's
// adjacency: forward from the anchor when timeOffsetFromStart is true
// (accel chains, built while scanning the queue forward), backward when
// false (decel chains, built while scanning the queue in reverse).
func setAccel(a *arena, trap *moveList, combined *AccelGroup, kind groupKind, cruiseV2 float64, timeOffsetFromStart bool) {
	startGroup := a.group(combined.StartAccel)
	if startGroup.MaxStartV2 > cruiseV2 {
		startGroup.SetMaxStartV2(cruiseV2)
	}
	startAccelV := startGroup.MaxStartV
	cruiseV := math.Sqrt(cruiseV2)
	avgV := (cruiseV + startAccelV) * 0.5
	combinedAccelT := combined.CalcMinAccelTime(startAccelV, cruiseV)
	combinedAccelD := avgV * combinedAccelT
	effectiveAccel := combined.CalcEffectiveAccel(startAccelV, cruiseV)

	var s SCurve
	s.Fill(combined.Order, 0, combinedAccelT, startAccelV, effectiveAccel)

	remainingAccelT := combinedAccelT
	remainingAccelD := combinedAccelD
	idx := combined.StartAccel.move
	for {
		ag := a.group(groupRef{move: idx, kind: kind})
		m := a.at(idx)
		m.CruiseV = cruiseV
		if remainingAccelD > 0 {
			ag.EffectiveAccel = effectiveAccel
			ag.TotalAccelT = combinedAccelT
			ag.AccelD = math.Min(m.D, remainingAccelD)
			ag.StartAccelV = startAccelV
			nextPos := ag.AccelD + combinedAccelD - remainingAccelD
			if timeOffsetFromStart {
				ag.AccelOffsetT = combinedAccelT - remainingAccelT
				ag.AccelT = s.GetTime(nextPos) - ag.AccelOffsetT
			} else {
				ag.AccelOffsetT = combinedAccelT - s.GetTime(nextPos)
				ag.AccelT = remainingAccelT - ag.AccelOffsetT
			}
			remainingAccelT -= ag.AccelT
			remainingAccelD -= m.D
		}
		if idx == combined.Move {
			break
		}
		if timeOffsetFromStart {
			idx = trap.next(idx)
		} else {
			idx = trap.prev(idx)
		}
	}
}

// setTrapDecel fills every decel group in the staged trapezoid, walking
// forward through the list from decelHead (trapbuild.c: set_trap_decel).
func setTrapDecel(a *arena, trap *moveList, decelHead int, cruiseV2 float64) {
	idx := decelHead
	for !atEnd(idx) {
		m := a.at(idx)
		setAccel(a, trap, &m.DecelGroup, kindDecel, cruiseV2, false)
		anchorIdx := m.DecelGroup.StartAccel.move
		cruiseV2 = math.Min(cruiseV2, a.at(anchorIdx).DecelGroup.MaxStartV2)
		idx = trap.next(anchorIdx)
	}
}

// setTrapAccel fills every accel group in the staged trapezoid, walking
// backward from accelHead (trapbuild.c: set_trap_accel).
func setTrapAccel(a *arena, trap *moveList, accelHead int, cruiseV2 float64) {
	idx := accelHead
	for !atEnd(idx) {
		m := a.at(idx)
		setAccel(a, trap, &m.AccelGroup, kindAccel, cruiseV2, true)
		anchorIdx := m.AccelGroup.StartAccel.move
		cruiseV2 = math.Min(cruiseV2, a.at(anchorIdx).AccelGroup.MaxStartV2)
		idx = trap.prev(anchorIdx)
	}
}

// flush commits the staged trapezoid's S-curves, splicing its moves into
// dest immediately before beforeIdx (or at dest's tail if beforeIdx is
// noIndex), and returns the move index that ends up last, or noIndex if
// nothing was staged (trapbuild.c: vtrap_flush + vtrap_clear).
func (vt *vtrap) flush(dest *moveList, beforeIdx int) int {
	peakCruiseV2 := calcTrapPeakV2(vt.a, vt.accelHead, vt.decelHead)
	if vt.decelHead != noIndex {
		setTrapDecel(vt.a, &vt.trapezoid, vt.decelHead, peakCruiseV2)
	}
	if vt.accelHead != noIndex {
		setTrapAccel(vt.a, &vt.trapezoid, vt.accelHead, peakCruiseV2)
	}
	return vt.clear(dest, beforeIdx)
}

// addAsAccel stages moveIdx as (becoming) the sole accelerating move of
// the current trapezoid (trapbuild.c: vtrap_add_as_accel).
func (vt *vtrap) addAsAccel(src *moveList, moveIdx int) {
	src.remove(moveIdx)
	vt.trapezoid.pushTail(moveIdx)
	vt.accelHead = moveIdx
}

// addAsDecel stages moveIdx onto the decelerating run (trapbuild.c:
// vtrap_add_as_decel).
func (vt *vtrap) addAsDecel(src *moveList, moveIdx int) {
	if vt.decelHead == noIndex {
		vt.decelHead = moveIdx
	}
	if vt.accelHead != moveIdx {
		src.remove(moveIdx)
		vt.trapezoid.pushTail(moveIdx)
	}
}

// clear splices every staged move into dest immediately before
// beforeIdx, preserving order, and resets vt (trapbuild.c: vtrap_clear).
func (vt *vtrap) clear(dest *moveList, beforeIdx int) int {
	last := noIndex
	for idx := vt.trapezoid.first(); !atEnd(idx); {
		next := vt.trapezoid.next(idx)
		vt.trapezoid.remove(idx)
		if atEnd(beforeIdx) {
			dest.pushTail(idx)
		} else if p := vt.a.at(beforeIdx).prev; atEnd(p) {
			dest.pushHead(idx)
		} else {
			dest.insertAfter(p, idx)
		}
		last = idx
		idx = next
	}
	vt.accelHead, vt.decelHead = noIndex, noIndex
	return last
}
