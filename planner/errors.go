package planner

import "github.com/pkg/errors"

// Sentinel errors for the planner core. Callers compare against these with
// errors.Cause or errors.Is-style equality; the core never retries or masks
// a failure internally (spec §7 — nothing is retried inside the core).
var (
	// ErrInvalidMove is returned by Queue.Add when a move's inputs violate
	// the add-time preconditions (move_d > 0, 0 <= junction_max_v2 <=
	// cruise_v^2, accel/jerk > 0).
	ErrInvalidMove = errors.New("planner: invalid move parameters")

	// ErrDelayedNotEmpty is an invariant violation: the backward smoothed
	// pass finished with moves still on its delayed list.
	ErrDelayedNotEmpty = errors.New("planner: delayed list non-empty after smoothed pass")

	// ErrUnreachableStart is an invariant violation: the forward pass
	// committed a start speed above what the move's deceleration group
	// can reach, and the move has no SafeDecel plan to substitute.
	ErrUnreachableStart = errors.New("planner: committed start speed unreachable")

	// ErrVelocityContinuity is returned by Queue.GetMove when the emitted
	// move's start velocity disagrees with the previous move's end
	// velocity by more than the 1e-4 tolerance.
	ErrVelocityContinuity = errors.New("planner: velocity continuity violated")

	// ErrNegativeCruiseTime is a numerical-corner failure: cruise_t would
	// be negative by more than epsilon.
	ErrNegativeCruiseTime = errors.New("planner: cruise time is negative")

	// ErrEmptyQueue is returned by Queue.GetMove when there is nothing
	// ready to dequeue.
	ErrEmptyQueue = errors.New("planner: queue is empty")

	// ErrTrapezoidAtQueueEnd is an invariant violation: the backward
	// smoothed pass found a peak velocity trapezoid ending at the very
	// last move in the queue while running in lazy mode, which would
	// require knowledge of moves not yet added.
	ErrTrapezoidAtQueueEnd = errors.New("planner: smoothed peak velocity trapezoid at the end of the move queue")
)

// epsilon tolerances baked into the contracts of spec §9.
const (
	geomEpsilon = 1e-9
	velEpsilon  = 1e-4
)
