package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrapQueueAppendProducesThreePhases(t *testing.T) {
	tq := NewTrapQueue()
	ad := AccelDecel{
		AccelOrder:     Order4,
		StartAccelV:    0,
		CruiseV:        10,
		EffectiveAccel: 100,
		EffectiveDecel: 100,
		AccelT:         0.1, TotalAccelT: 0.1,
		CruiseT: 0.5,
		DecelT:  0.1, TotalDecelT: 0.1,
	}
	tq.Append(0, Coord{}, Coord{X: 1}, ad)

	moves := tq.Moves()
	require.Len(t, moves, 3)
	assert.InDelta(t, 0.0, moves[0].PrintTime, geomEpsilon)
	assert.InDelta(t, 0.1, moves[1].PrintTime, geomEpsilon)
	assert.InDelta(t, 0.6, moves[2].PrintTime, geomEpsilon)
}

func TestTrapQueueAppendInsertsNullMoveForTimeGap(t *testing.T) {
	tq := NewTrapQueue()
	first := AccelDecel{AccelOrder: Order2, CruiseV: 10, CruiseT: 1}
	tq.Append(0, Coord{}, Coord{X: 1}, first)

	second := AccelDecel{AccelOrder: Order2, CruiseV: 10, CruiseT: 1}
	tq.Append(5, Coord{X: 10}, Coord{X: 1}, second)

	moves := tq.Moves()
	require.Len(t, moves, 3, "a gap between the queue's tail and the new move's start must be filled")
	gap := moves[1]
	assert.InDelta(t, 1.0, gap.PrintTime, geomEpsilon)
	assert.InDelta(t, 4.0, gap.MoveT, geomEpsilon)
}

func TestTrapQueueFreeMovesDropsFinishedSegments(t *testing.T) {
	tq := NewTrapQueue()
	tq.Append(0, Coord{}, Coord{X: 1}, AccelDecel{AccelOrder: Order2, CruiseV: 5, CruiseT: 1})
	tq.Append(1, Coord{X: 5}, Coord{X: 1}, AccelDecel{AccelOrder: Order2, CruiseV: 5, CruiseT: 1})

	tq.FreeMoves(1.0)
	assert.Len(t, tq.Moves(), 1, "only the segment that finished at or before print_time should be dropped")
}

func TestTrapQueueFindMoveLocatesSegment(t *testing.T) {
	tq := NewTrapQueue()
	tq.Append(0, Coord{}, Coord{X: 1}, AccelDecel{AccelOrder: Order2, CruiseV: 5, CruiseT: 2})
	tq.Append(2, Coord{X: 10}, Coord{X: 1}, AccelDecel{AccelOrder: Order2, CruiseV: 5, CruiseT: 2})

	idx, moveTime, ok := tq.FindMove(3)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.InDelta(t, 1.0, moveTime, geomEpsilon)
}

func TestTrapQueueFindMoveOutOfRange(t *testing.T) {
	tq := NewTrapQueue()
	tq.Append(0, Coord{}, Coord{X: 1}, AccelDecel{AccelOrder: Order2, CruiseV: 5, CruiseT: 1})

	_, _, ok := tq.FindMove(10)
	assert.False(t, ok)
}

func TestOutputMoveCoordFollowsDirection(t *testing.T) {
	tq := NewTrapQueue()
	tq.Append(0, Coord{X: 1, Y: 2}, Coord{X: 0, Y: 1}, AccelDecel{AccelOrder: Order2, CruiseV: 10, CruiseT: 1})

	m := &tq.Moves()[0]
	c := m.Coord(0.5)
	assert.InDelta(t, 1.0, c.X, geomEpsilon, "motion along Y only must not move X")
	assert.InDelta(t, 2.0+5.0, c.Y, geomEpsilon)
}

func TestTrapQueueIntegrateSpansNeighboringSegments(t *testing.T) {
	tq := NewTrapQueue()
	tq.Append(0, Coord{}, Coord{X: 1}, AccelDecel{AccelOrder: Order2, CruiseV: 5, CruiseT: 1})
	tq.Append(1, Coord{X: 5}, Coord{X: 1}, AccelDecel{AccelOrder: Order2, CruiseV: 5, CruiseT: 1})

	// Integrating from -0.5 around move 1 must pull in part of move 0 too.
	got := tq.Integrate(1, 0, -0.5, 0.5)
	assert.Greater(t, got, 0.0)
}
