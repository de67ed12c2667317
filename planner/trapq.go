package planner

// Coord is a 3-axis position or direction vector (spec §4.F; trapq.h:
// struct coord).
type Coord struct {
	X, Y, Z float64
}

// Axis returns X (0), Y (1), or Z (2) by index, matching the original's
// axis['x'-'x'..] indexing (trapq.c: move_integrate).
func (c Coord) Axis(i int) float64 {
	switch i {
	case 1:
		return c.Y
	case 2:
		return c.Z
	default:
		return c.X
	}
}

// OutputMove is one committed segment of the trapezoid output queue: a
// constant-shape polynomial motion starting at PrintTime and lasting
// MoveT, moving along the direction AxesR from StartPos (spec §4.F;
// trapq.h: struct move). Callers get these from TrapQueue.Append; there
// is no reason to build one directly.
type OutputMove struct {
	PrintTime float64
	MoveT     float64
	StartPos  Coord
	AxesR     Coord
	S         SCurve
}

// Distance returns the distance traveled moveTime into m (trapq.c:
// move_get_distance).
func (m *OutputMove) Distance(moveTime float64) float64 {
	return m.S.Eval(moveTime)
}

// Coord returns the XYZ position moveTime into m (trapq.c:
// move_get_coord).
func (m *OutputMove) Coord(moveTime float64) Coord {
	d := m.Distance(moveTime)
	return Coord{
		X: m.StartPos.X + m.AxesR.X*d,
		Y: m.StartPos.Y + m.AxesR.Y*d,
		Z: m.StartPos.Z + m.AxesR.Z*d,
	}
}

// Integrate returns the definite integral of m's axis-th coordinate over
// [start, end], clamped to m's own span (spec §4's supplemented
// move_integrate operation; trapq.c:104-117). axis is 0 (x), 1 (y), or 2
// (z).
func (m *OutputMove) Integrate(axis int, start, end float64) float64 {
	if start < 0 {
		start = 0
	}
	if end > m.MoveT {
		end = m.MoveT
	}
	base := m.StartPos.Axis(axis) * (end - start)
	integral := m.S.Integrate(start, end)
	return base + integral*m.AxesR.Axis(axis)
}

// TrapQueue is the output ring the planner's committed moves are
// rendered into: a flat, time-ordered sequence of OutputMove segments
// that downstream step-compression/kinematics code samples by print
// time (spec §4.F; trapq.c). It is a plain growable slice rather than
// the original's sentinel-bounded intrusive list (spec §9 Design Notes:
// "prefer an arena indexed by small integers"): Go's slice growth and GC
// already amortize the allocation the original's malloc'd head/tail
// sentinels existed to avoid.
type TrapQueue struct {
	moves []OutputMove
}

// NewTrapQueue returns an empty output ring.
func NewTrapQueue() *TrapQueue {
	return &TrapQueue{}
}

// Moves returns the queue's current segments in print-time order. The
// returned slice aliases the queue's storage and must not be retained
// across a call to FreeMoves.
func (tq *TrapQueue) Moves() []OutputMove {
	return tq.moves
}

// Append renders one planner AccelDecel into up to three OutputMove
// segments (accel, cruise, decel) starting at printTime from startPos,
// moving along the unit direction axesR (trapq.c: trapq_append). Any
// phase with zero duration is skipped, and a zero-length null move is
// inserted first if printTime leaves a gap after the queue's current
// tail.
func (tq *TrapQueue) Append(printTime float64, startPos, axesR Coord, ad AccelDecel) {
	pos := startPos
	pt := printTime
	if ad.AccelT != 0 {
		m := OutputMove{PrintTime: pt, MoveT: ad.AccelT, StartPos: pos, AxesR: axesR}
		m.S.Fill(ad.AccelOrder, ad.AccelOffsetT, ad.TotalAccelT, ad.StartAccelV, ad.EffectiveAccel)
		tq.addMove(m)
		pt += ad.AccelT
		pos = m.Coord(ad.AccelT)
	}
	if ad.CruiseT != 0 {
		m := OutputMove{PrintTime: pt, MoveT: ad.CruiseT, StartPos: pos, AxesR: axesR}
		m.S.Fill(Order2, 0, ad.CruiseT, ad.CruiseV, 0)
		tq.addMove(m)
		pt += ad.CruiseT
		pos = m.Coord(ad.CruiseT)
	}
	if ad.DecelT != 0 {
		m := OutputMove{PrintTime: pt, MoveT: ad.DecelT, StartPos: pos, AxesR: axesR}
		m.S.Fill(ad.AccelOrder, ad.DecelOffsetT, ad.TotalDecelT, ad.CruiseV, -ad.EffectiveDecel)
		tq.addMove(m)
	}
}

// addMove appends m, first inserting a null (zero-direction) move to
// fill any time gap left by the queue's current tail (trapq.c:
// trapq_add_move).
func (tq *TrapQueue) addMove(m OutputMove) {
	if n := len(tq.moves); n > 0 {
		last := &tq.moves[n-1]
		tailEnd := last.PrintTime + last.MoveT
		if tailEnd < m.PrintTime {
			tq.moves = append(tq.moves, OutputMove{
				StartPos:  m.StartPos,
				PrintTime: tailEnd,
				MoveT:     m.PrintTime - tailEnd,
			})
		}
	}
	tq.moves = append(tq.moves, m)
}

// FreeMoves discards every segment that finished at or before printTime
// (trapq.c: trapq_free_moves).
func (tq *TrapQueue) FreeMoves(printTime float64) {
	i := 0
	for i < len(tq.moves) && tq.moves[i].PrintTime+tq.moves[i].MoveT <= printTime {
		i++
	}
	tq.moves = tq.moves[i:]
}

// FindMove returns the segment spanning printTime along with the
// move-local time within it (trapq.c: trapq_find_move). It reports false
// if printTime falls outside every currently held segment.
func (tq *TrapQueue) FindMove(printTime float64) (idx int, moveTime float64, ok bool) {
	lo, hi := 0, len(tq.moves)
	for lo < hi {
		mid := (lo + hi) / 2
		if tq.moves[mid].PrintTime+tq.moves[mid].MoveT <= printTime {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= len(tq.moves) || printTime < tq.moves[lo].PrintTime {
		return 0, 0, false
	}
	return lo, printTime - tq.moves[lo].PrintTime, true
}

// Integrate returns the definite integral of the axis-th coordinate over
// [start, end], measured relative to the segment at idx and spanning
// into neighboring segments as needed (trapq.c: trapq_integrate).
func (tq *TrapQueue) Integrate(idx, axis int, start, end float64) float64 {
	res := tq.moves[idx].Integrate(axis, start, end)
	i, s := idx, start
	for s < 0 {
		i--
		s += tq.moves[i].MoveT
		res += tq.moves[i].Integrate(axis, s, tq.moves[i].MoveT)
	}
	i, e := idx, end
	for e > tq.moves[i].MoveT {
		e -= tq.moves[i].MoveT
		i++
		res += tq.moves[i].Integrate(axis, 0, e)
	}
	return res
}
