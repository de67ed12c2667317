package planner

import "math"

// AccelGroup describes a (possibly combined) acceleration or deceleration
// phase shared by one or more fused moves (spec §3, §4.B).
type AccelGroup struct {
	Order           AccelOrder
	MaxAccel        float64
	MinAccel        float64
	MaxJerk         float64
	MinJerkLimitT   float64
	CombinedD       float64
	MaxStartV       float64
	MaxStartV2      float64
	MaxEndV2        float64

	// Filled in by the trapezoid builder once this group's plan is
	// committed (spec §4.D; accelgroup.h): the actual distance/time this
	// particular move contributes to the shared chain, the position in
	// the chain's virtual curve it starts at, and the effective
	// acceleration/start speed used to fill that curve.
	AccelD        float64
	AccelT        float64
	AccelOffsetT  float64
	TotalAccelT   float64
	StartAccelV   float64
	EffectiveAccel float64

	// StartAccel points at the logical first group of the combined chain:
	// the one whose MaxStartV/MaxStartV2 anchors the kinematics for every
	// Calc* method below. It resolves through a groupRef rather than a
	// bare arena index, since the original's accel_group* can reference
	// any of a move's three embedded groups (AccelGroup, DecelGroup,
	// DefaultAccel), not "the move" as a whole (spec §9: "prefer an arena
	// indexed by small integers... back-pointers become indices"). The
	// trapezoid builder walks a chain's members via queue-list adjacency
	// rather than a next_accel link (see trapbuild.go: setAccel).
	StartAccel groupRef

	// Move is the index of the owning move in the queue's arena.
	Move int
}

const noIndex = -1

// groupKind selects which of a move's three embedded AccelGroup fields a
// groupRef resolves to.
type groupKind uint8

const (
	kindAccel groupKind = iota
	kindDecel
	kindDefault
)

// groupRef stands in for the original's accel_group* pointer. A live
// group's StartAccel is always assigned from some other group's own
// groupRef by the combiner (accelcombine.c: process_next_accel sets
// ag->start_accel = best_jp->move_ag), so every persisted group resolves
// through the owning queue's arena plus groupKind; only a transient
// junction point's self-referencing start group is resolved by the
// combiner passing its own MaxStartV/MaxStartV2 directly instead.
type groupRef struct {
	move int
	kind groupKind
}


// newAccelGroup returns a zeroed group that is its own chain anchor.
func newAccelGroup(moveIdx int, kind groupKind) AccelGroup {
	ref := groupRef{move: moveIdx, kind: kind}
	return AccelGroup{StartAccel: ref, Move: moveIdx}
}

// Fill initializes ag from a move's raw kinematic limits (spec §3):
// min_accel = jerk*min_jerk_limit_time/6, clamped to <= max_accel.
func (ag *AccelGroup) Fill(order AccelOrder, maxAccel, jerk, minJerkLimitT float64, moveIdx int, kind groupKind) {
	ag.Order = order
	ag.MaxAccel = maxAccel
	ag.MaxJerk = jerk
	ag.MinJerkLimitT = minJerkLimitT
	ag.MinAccel = math.Min(jerk*minJerkLimitT/6., maxAccel)
	ag.StartAccel = groupRef{move: moveIdx, kind: kind}
	ag.Move = moveIdx
}

// LimitAccel clamps both MaxAccel and MaxJerk downward and re-tightens
// MinAccel consistently (spec §4.B).
func (ag *AccelGroup) LimitAccel(accel, jerk float64) {
	if accel < ag.MaxAccel {
		ag.MaxAccel = accel
	}
	if jerk < ag.MaxJerk {
		ag.MaxJerk = jerk
	}
	ag.MinAccel = math.Min(ag.MaxJerk*ag.MinJerkLimitT/6., ag.MaxAccel)
}

// SetMaxStartV2 sets both the squared and square-rooted cached start
// speed (spec §4.B). A negative v2 is stored as zero.
func (ag *AccelGroup) SetMaxStartV2(v2 float64) {
	if v2 <= 0 {
		ag.MaxStartV2 = 0
		ag.MaxStartV = 0
		return
	}
	ag.MaxStartV2 = v2
	ag.MaxStartV = math.Sqrt(v2)
}

// CalcMaxV2 computes the reachable max end speed^2 across CombinedD at
// MaxAccel/MaxJerk starting from the chain anchor's start speed (spec
// §4.B, Cardano solve for accel orders > 2). The original always reads
// ag->start_accel->max_start_v/max_start_v2 rather than ag's own field,
// since a combined group's own start speed may be stale once it has been
// folded into a longer chain (accelgroup.c: calc_max_v2); callers resolve
// StartAccel via the owning queue and pass its start speed explicitly.
func (ag *AccelGroup) CalcMaxV2(startV, startV2 float64) float64 {
	dist := ag.CombinedD
	accelOnly := startV2 + 2.*dist*ag.MaxAccel
	if ag.Order == Order2 {
		return accelOnly
	}
	a := (2. / 3.) * startV
	b := a * a * a
	c := dist * dist * ag.MaxJerk / 3.
	var v2 float64
	if 54.*b < c {
		// Near the vertical tangent of the cubic the Cardano solve below
		// loses precision and can even dip below startV2 as startV grows,
		// breaking the combiner's assumption that the reachable speed is
		// monotone non-decreasing in the start speed. Flattening to the
		// jerk-only bound here keeps CalcMaxV2 monotone.
		v := 1.5 * math.Cbrt(c/2.)
		v2 = v * v
	} else {
		d := math.Sqrt(c * (c + 2.*b))
		e := math.Cbrt(b + c + d)
		if e < geomEpsilon {
			// e underflows only when startV, dist and jerk are all ~0, so
			// the discrepancy between returning startV and startV2 here is
			// negligible; kept exactly as accelgroup.c: calc_max_v2 has it.
			return startV
		}
		v := e + a*a/e - startV/3.
		v2 = v * v
	}
	if v2 > accelOnly {
		v2 = accelOnly
	}
	minBound := startV2 + 2.*dist*ag.MinAccel
	if minBound > v2 {
		v2 = minBound
	}
	return v2
}

// CalcEffectiveAccel returns the effective acceleration needed to reach
// cruiseV from the chain anchor's start speed, clamped to [MinAccel,
// MaxAccel] (spec §4.B; accelgroup.c: calc_effective_accel reads
// ag->start_accel->max_start_v).
func (ag *AccelGroup) CalcEffectiveAccel(startV, cruiseV float64) float64 {
	if ag.Order == Order2 {
		return ag.MaxAccel
	}
	dv := cruiseV - startV
	if dv < 0 {
		dv = 0
	}
	a := math.Sqrt(ag.MaxJerk * dv / 6.)
	if a < ag.MinAccel {
		a = ag.MinAccel
	}
	if a > ag.MaxAccel {
		a = ag.MaxAccel
	}
	return a
}

// CalcMinAccelTime returns the minimum time to reach cruiseV from the
// chain anchor's start speed (spec §4.B): the larger of dv/max_accel and
// the jerk-limited time, bounded above by dv/min_accel when min_accel > 0
// (accelgroup.c: calc_min_accel_time reads ag->start_accel->max_start_v).
func (ag *AccelGroup) CalcMinAccelTime(startV, cruiseV float64) float64 {
	dv := cruiseV - startV
	if dv <= 0 {
		return 0
	}
	tAccel := dv / ag.MaxAccel
	best := tAccel
	if ag.Order != Order2 {
		tJerk := math.Sqrt(6. * dv / ag.MaxJerk)
		if tJerk > best {
			best = tJerk
		}
	}
	if ag.MinAccel > 0 {
		tMin := dv / ag.MinAccel
		if tMin < best {
			best = tMin
		}
	}
	return best
}

// CalcMinAccelDist returns the min-accel distance for reaching cruiseV
// from the chain anchor's start speed (spec §4.B): (v_s+v_c)/2 *
// min_accel_time.
func (ag *AccelGroup) CalcMinAccelDist(startV, cruiseV float64) float64 {
	t := ag.CalcMinAccelTime(startV, cruiseV)
	return 0.5 * (startV + cruiseV) * t
}

// CalcMaxSafeV2 returns the largest end speed^2 from which the group can
// decelerate back down using only its own kinematic budget, regardless of
// how low it must eventually go (spec §4.B; accelgroup.c:
// calc_max_safe_v2 reads ag->start_accel->max_start_v2).
func (ag *AccelGroup) CalcMaxSafeV2(startV, startV2 float64) float64 {
	d := ag.CombinedD
	maxV2 := 2.*ag.MaxAccel*d + startV2
	if ag.Order == Order2 {
		return maxV2
	}
	// It is possible to accelerate from any velocity to this one over the
	// accumulated distance; such a minimum v2 is achieved when
	// accelerating from v2/9. If startV2 is already below that, the
	// worst case is accelerating from startV2 itself (accelgroup.c:
	// calc_max_safe_v2).
	v2 := math.Pow((9./16.)*d*d*ag.MaxJerk, 2./3.)
	if startV2*9. < v2 {
		v2 = ag.CalcMaxV2(startV, startV2)
	}
	if v2 < maxV2 {
		maxV2 = v2
	}
	return maxV2
}

// CalcMinSafeDist returns the distance this group is guaranteed to need to
// decelerate from endV2 down to any lower speed, used by the safe-flush-limit
// computation to decide whether a junction point is far enough away to be
// trusted regardless of future moves added to the queue (spec §4.E): the
// larger of the accel-only bound and, for accel orders above 2, the
// jerk-limited bound.
func (ag *AccelGroup) CalcMinSafeDist(endV2 float64) float64 {
	dist := endV2 / (2. * ag.MaxAccel)
	if ag.Order == Order2 {
		return dist
	}
	jerkDist := math.Sqrt((16. / 9.) * math.Pow(endV2, 1.5) / ag.MaxJerk)
	if jerkDist > dist {
		dist = jerkDist
	}
	return dist
}

// CalcMinAccelGroupTime returns the time to accelerate from the chain
// anchor's start speed to cruiseV plus the residual cruise time over
// whatever's left of CombinedD (spec §4.C; accelgroup.c:
// calc_min_accel_group_time). Callers that hold a speed-squared value
// (e.g. min(max_end_v2, max_cruise_v2)) take its square root first, as
// the combiner does at every call site.
func (ag *AccelGroup) CalcMinAccelGroupTime(startV, cruiseV float64) float64 {
	if startV >= cruiseV {
		// No acceleration possible - just cruising.
		return ag.CombinedD / cruiseV
	}
	accelT := ag.CalcMinAccelTime(startV, cruiseV)
	accelD := ag.CalcMinAccelDist(startV, cruiseV)
	cruiseT := (ag.CombinedD - accelD) / cruiseV
	return accelT + cruiseT
}
