package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcMovePeakV2Order2IsAverageOfEndpoints(t *testing.T) {
	a := newArena()
	idx := a.alloc()
	m := a.at(idx)
	m.D = 10
	m.AccelGroup = AccelGroup{Order: Order2, MaxAccel: 100, StartAccel: groupRef{move: idx, kind: kindAccel}, Move: idx}
	m.DecelGroup = AccelGroup{Order: Order2, MaxAccel: 100, StartAccel: groupRef{move: idx, kind: kindDecel}, Move: idx}
	m.AccelGroup.MaxStartV2 = 4
	m.DecelGroup.MaxStartV2 = 16

	got := calcMovePeakV2(a, idx)
	want := (4. + 16. + 2.*10*100) * .5
	assert.InDelta(t, want, got, geomEpsilon)
}

func TestVtrapAddAsAccelMovesOutOfSourceList(t *testing.T) {
	a := newArena()
	src := newMoveList(a)
	idx := a.alloc()
	src.pushTail(idx)

	vt := newVtrap(a)
	vt.addAsAccel(&src, idx)

	assert.True(t, src.empty(), "staging a move must remove it from the source list")
	assert.Equal(t, idx, vt.accelHead)
	assert.Equal(t, idx, vt.trapezoid.first())
}

func TestVtrapClearSplicesBackIntoDestInOrder(t *testing.T) {
	a := newArena()
	src := newMoveList(a)
	dest := newMoveList(a)
	idx1, idx2 := a.alloc(), a.alloc()
	src.pushTail(idx1)
	src.pushTail(idx2)

	vt := newVtrap(a)
	vt.addAsAccel(&src, idx1)
	vt.addAsDecel(&src, idx2)

	last := vt.clear(&dest, noIndex)
	require.Equal(t, idx2, last)
	assert.Equal(t, idx1, dest.first())
	assert.Equal(t, idx2, dest.last())
	assert.Equal(t, noIndex, vt.accelHead)
	assert.Equal(t, noIndex, vt.decelHead)
}
