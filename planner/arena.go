package planner

// arena is a contiguous growable buffer of moves indexed by small
// integers, replacing the original's intrusive doubly-linked list of
// heap-allocated qmove structs (spec §9 Design Notes: "prefer an arena
// indexed by small integers... this removes pointer-ownership hazards
// while keeping O(1) splice semantics"). AccelGroup.StartAccel and
// JunctionPoint.prev/next are indices into this arena and stay valid
// across arena growth.
type arena struct {
	slots []Move
	free  []int
}

func newArena() *arena {
	return &arena{}
}

// alloc returns the index of a fresh (or recycled) Move slot.
func (a *arena) alloc() int {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[idx] = Move{idx: idx}
		return idx
	}
	idx := len(a.slots)
	a.slots = append(a.slots, Move{idx: idx})
	return idx
}

// release returns idx to the free list. The caller must ensure no live
// index (junction point, accel-group back-pointer) still references it.
func (a *arena) release(idx int) {
	a.free = append(a.free, idx)
}

func (a *arena) at(idx int) *Move {
	return &a.slots[idx]
}

// group resolves a groupRef to the AccelGroup it names, following the
// original's accel_group* semantics: the reference always names one of
// the three groups embedded in a specific move (spec §9). Callers must
// check ref.move >= 0 before calling group.
func (a *arena) group(ref groupRef) *AccelGroup {
	m := &a.slots[ref.move]
	switch ref.kind {
	case kindDecel:
		return &m.DecelGroup
	case kindDefault:
		return &m.DefaultAccel
	default:
		return &m.AccelGroup
	}
}
