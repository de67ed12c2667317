package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestMove allocates a move in a and fills its DefaultAccel group,
// mirroring what Queue.Add does for the fields the combiner cares about.
func newTestMove(a *arena, d float64, order AccelOrder, accel, jerk float64) int {
	idx := a.alloc()
	m := a.at(idx)
	m.D = d
	m.Order = order
	m.DefaultAccel.Fill(order, accel, jerk, 0, idx, kindDefault)
	m.MaxCruiseV2 = 1e6
	return idx
}

func TestCombinerEmptyAfterReset(t *testing.T) {
	a := newArena()
	c := newCombiner(a)
	require.True(t, c.empty())

	idx := newTestMove(a, 1, Order4, 1000, 1e5)
	c.pushTail(idx)
	require.False(t, c.empty())

	c.resetJunctions(0)
	assert.True(t, c.empty())
	assert.False(t, a.at(idx).junction.inList)
}

func TestCombinerCheckCanCombineRejectsOrder2(t *testing.T) {
	a := newArena()
	c := newCombiner(a)
	idx := newTestMove(a, 1, Order2, 1000, 1e5)
	c.pushTail(idx)
	a.at(idx).junction.StartGroup = a.at(idx).DefaultAccel

	next := AccelGroup{Order: Order2}
	assert.False(t, c.checkCanCombine(&next), "order-2 groups can never combine")
}

func TestCombinerCheckCanCombineRequiresMatchingOrderAndAccelComp(t *testing.T) {
	a := newArena()
	c := newCombiner(a)
	idx := newTestMove(a, 1, Order4, 1000, 1e5)
	c.pushTail(idx)
	a.at(idx).junction.StartGroup = a.at(idx).DefaultAccel
	a.at(idx).junction.moveAG = groupRef{move: idx, kind: kindDefault}

	same := AccelGroup{Order: Order4, Move: idx}
	assert.True(t, c.checkCanCombine(&same))

	differentOrder := AccelGroup{Order: Order6, Move: idx}
	assert.False(t, c.checkCanCombine(&differentOrder))

	idx2 := newTestMove(a, 1, Order4, 1000, 1e5)
	a.at(idx2).AccelComp = 0.5
	differentComp := AccelGroup{Order: Order4, Move: idx2}
	assert.False(t, c.checkCanCombine(&differentComp), "a different AccelComp must prevent combining")
}

func TestCombinerProcessNextAccelChainsOntoBestJunction(t *testing.T) {
	a := newArena()
	c := newCombiner(a)

	idx1 := newTestMove(a, 1, Order4, 1000, 1e5)
	var ag1 AccelGroup
	ag1.Fill(Order4, 1000, 1e5, 0, idx1, kindAccel)
	c.processNextAccel(idx1, &ag1, kindAccel, 1e6)
	a.at(idx1).AccelGroup = ag1

	require.False(t, c.empty())
	assert.Equal(t, groupRef{move: idx1, kind: kindAccel}, ag1.StartAccel,
		"the first move in a fresh chain must anchor to itself")

	idx2 := newTestMove(a, 1, Order4, 1000, 1e5)
	var ag2 AccelGroup
	ag2.Fill(Order4, 1000, 1e5, 0, idx2, kindAccel)
	c.processNextAccel(idx2, &ag2, kindAccel, 1e6)

	assert.Equal(t, idx1, ag2.StartAccel.move,
		"a compatible follow-on move should chain back onto the earlier anchor")
	assert.Greater(t, ag2.CombinedD, ag1.CombinedD,
		"chaining should accumulate distance across the combined group")
}

func TestCombinerDropDeceleratingJPsRemovesOverLimit(t *testing.T) {
	a := newArena()
	c := newCombiner(a)
	idx := newTestMove(a, 1, Order4, 1000, 1e5)
	c.pushTail(idx)
	a.at(idx).junction.StartGroup.SetMaxStartV2(100)

	c.dropDeceleratingJPs(50)
	assert.True(t, c.empty(), "a junction point whose start speed exceeds the limit must be dropped")
}
