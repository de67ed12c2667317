package planner

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func addStraightMoves(t *testing.T, q *Queue, n int, d, cruiseV, accel, jerk float64) {
	t.Helper()
	for i := 0; i < n; i++ {
		junctionMaxV2 := cruiseV * cruiseV
		if i == n-1 {
			junctionMaxV2 = 0
		}
		err := q.Add(d, junctionMaxV2, cruiseV, Order4, accel, accel, jerk, 0, 0)
		require.NoError(t, err)
	}
}

func TestQueueAddRejectsInvalidMoves(t *testing.T) {
	q := New()
	require.Error(t, q.Add(0, 0, 10, Order4, 100, 100, 1e4, 0, 0), "zero distance must be rejected")
	require.Error(t, q.Add(1, 0, 10, Order4, 0, 100, 1e4, 0, 0), "zero accel must be rejected")
	require.Error(t, q.Add(1, 0, 10, Order4, 100, 100, 0, 0, 0), "zero jerk must be rejected")
	require.Error(t, q.Add(1, 200, 10, Order4, 100, 100, 1e4, 0, 0), "junction_max_v2 above cruise^2 must be rejected")
}

func TestQueuePlanNonLazyFlushesEverythingAndEndsAtRest(t *testing.T) {
	q := New()
	addStraightMoves(t, q, 4, 10, 20, 1000, 1e5)

	ready, err := q.Plan(false)
	require.NoError(t, err)
	require.Equal(t, 4, ready)

	prevEndV := 0.0
	for i := 0; i < ready; i++ {
		ad, err := q.GetMove()
		require.NoError(t, err, "move %d", i)

		require.GreaterOrEqual(t, ad.CruiseT, -geomEpsilon)
		require.GreaterOrEqual(t, ad.AccelT, 0.0)
		require.GreaterOrEqual(t, ad.DecelT, 0.0)

		startV := ad.StartAccelV + ad.EffectiveAccel*ad.AccelOffsetT
		if ad.AccelT == 0 {
			startV = ad.CruiseV - ad.EffectiveDecel*ad.DecelOffsetT
		}
		if !floats.EqualWithinAbs(startV, prevEndV, velEpsilon*10) {
			t.Errorf("move %d: start velocity %v does not continue from previous end velocity %v", i, startV, prevEndV)
		}

		endV := ad.CruiseV - ad.EffectiveDecel*(ad.DecelOffsetT+ad.DecelT)
		if ad.DecelT == 0 && ad.CruiseT == 0 {
			endV = startV + ad.EffectiveAccel*ad.AccelT
		}
		prevEndV = endV
	}

	require.InDelta(t, 0.0, prevEndV, velEpsilon*10, "the queue must come to rest by the last move")
}

func TestQueueResetClearsPendingMoves(t *testing.T) {
	q := New()
	addStraightMoves(t, q, 3, 10, 20, 1000, 1e5)
	q.Reset()

	ready, err := q.Plan(false)
	require.NoError(t, err)
	require.Equal(t, 0, ready, "a reset queue has nothing left to plan")

	_, err = q.GetMove()
	require.ErrorIs(t, err, ErrEmptyQueue)
}

func TestQueuePlanEmptyQueueIsNoop(t *testing.T) {
	q := New()
	ready, err := q.Plan(true)
	require.NoError(t, err)
	require.Equal(t, 0, ready)
}
