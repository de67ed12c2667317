package planner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccelGroupFillDerivesMinAccel(t *testing.T) {
	var ag AccelGroup
	ag.Fill(Order4, 1000, 1e5, 0.02, 3, kindAccel)

	require.Equal(t, Order4, ag.Order)
	require.Equal(t, 1000.0, ag.MaxAccel)
	wantMin := math.Min(1e5*0.02/6., 1000)
	assert.InDelta(t, wantMin, ag.MinAccel, geomEpsilon)
	assert.Equal(t, groupRef{move: 3, kind: kindAccel}, ag.StartAccel)
}

func TestAccelGroupCalcMaxV2Order2IsConstantAccel(t *testing.T) {
	ag := AccelGroup{Order: Order2, MaxAccel: 10, CombinedD: 5}
	got := ag.CalcMaxV2(2, 4)
	want := 4 + 2*5*10
	assert.InDelta(t, want, got, geomEpsilon)
}

func TestAccelGroupCalcMaxV2JerkLimitedNeverExceedsAccelOnly(t *testing.T) {
	ag := AccelGroup{Order: Order4, MaxAccel: 1000, MaxJerk: 1e5, MinAccel: 0, CombinedD: 2}
	got := ag.CalcMaxV2(0, 0)
	accelOnly := 0 + 2*2*1000.
	assert.LessOrEqual(t, got, accelOnly+geomEpsilon)
	assert.GreaterOrEqual(t, got, 0.0)
}

func TestAccelGroupCalcMaxV2ZeroInputsReturnsStartV(t *testing.T) {
	ag := AccelGroup{Order: Order4, MaxAccel: 1000, MaxJerk: 1e5, CombinedD: 0}
	got := ag.CalcMaxV2(0, 0)
	assert.InDelta(t, 0.0, got, geomEpsilon)
}

func TestAccelGroupLimitAccelOnlyTightens(t *testing.T) {
	ag := AccelGroup{MaxAccel: 1000, MaxJerk: 1e5, MinJerkLimitT: 0.02}
	ag.LimitAccel(500, 2e5)
	assert.Equal(t, 500.0, ag.MaxAccel, "LimitAccel must not raise MaxAccel")
	assert.Equal(t, 1e5, ag.MaxJerk, "LimitAccel must not raise MaxJerk above the current value")

	ag.LimitAccel(2000, 50)
	assert.Equal(t, 500.0, ag.MaxAccel, "a looser accel limit must not raise MaxAccel back up")
	assert.Equal(t, 50.0, ag.MaxJerk)
}

func TestAccelGroupSetMaxStartV2ClampsNegativeToZero(t *testing.T) {
	var ag AccelGroup
	ag.SetMaxStartV2(-1)
	assert.Equal(t, 0.0, ag.MaxStartV2)
	assert.Equal(t, 0.0, ag.MaxStartV)

	ag.SetMaxStartV2(16)
	assert.Equal(t, 16.0, ag.MaxStartV2)
	assert.InDelta(t, 4.0, ag.MaxStartV, geomEpsilon)
}

func TestAccelGroupCalcMinAccelTimeZeroWhenNoAccelNeeded(t *testing.T) {
	ag := AccelGroup{Order: Order2, MaxAccel: 10, MinAccel: 1}
	assert.Equal(t, 0.0, ag.CalcMinAccelTime(5, 5))
	assert.Equal(t, 0.0, ag.CalcMinAccelTime(6, 5))
}

func TestAccelGroupCalcMinAccelGroupTimeNoAccelBranch(t *testing.T) {
	ag := AccelGroup{Order: Order2, MaxAccel: 10, CombinedD: 20}
	got := ag.CalcMinAccelGroupTime(5, 5)
	assert.InDelta(t, 20./5., got, geomEpsilon)
}

func TestAccelGroupCalcMaxV2FlattensNearVerticalTangent(t *testing.T) {
	ag := AccelGroup{Order: Order4, MaxAccel: 1e9, MaxJerk: 1e5, CombinedD: 2}
	// startV = 0 puts b = a^3 = 0, so 54*b < c holds for any positive c:
	// the flattened branch must fire rather than the Cardano solve.
	c := ag.CombinedD * ag.CombinedD * ag.MaxJerk / 3.
	want := math.Pow(1.5*math.Cbrt(c/2.), 2)

	got := ag.CalcMaxV2(0, 0)
	assert.InDelta(t, want, got, 1e-6)
}

func TestAccelGroupCalcMaxV2MonotoneNonDecreasingNearTangent(t *testing.T) {
	ag := AccelGroup{Order: Order4, MaxAccel: 1e9, MaxJerk: 1e5, CombinedD: 2}
	prev := 0.0
	for _, v := range []float64{0, 0.5, 1, 2, 5, 10, 20} {
		got := ag.CalcMaxV2(v, v*v)
		assert.GreaterOrEqual(t, got, prev-1e-6,
			"CalcMaxV2 must stay monotone non-decreasing as startV grows (combiner relies on this)")
		prev = got
	}
}

func TestAccelGroupCalcMinSafeDistOrder2IsAccelOnly(t *testing.T) {
	ag := AccelGroup{Order: Order2, MaxAccel: 100}
	got := ag.CalcMinSafeDist(400)
	assert.InDelta(t, 400./(2.*100.), got, geomEpsilon)
}

func TestAccelGroupCalcMinSafeDistTakesLargerOfAccelAndJerkBounds(t *testing.T) {
	ag := AccelGroup{Order: Order4, MaxAccel: 1e9, MaxJerk: 10}
	v2 := 400.0
	got := ag.CalcMinSafeDist(v2)
	accelBound := v2 / (2. * ag.MaxAccel)
	jerkBound := math.Sqrt((16. / 9.) * math.Pow(v2, 1.5) / ag.MaxJerk)
	require.Greater(t, jerkBound, accelBound, "test setup should exercise the jerk branch")
	assert.InDelta(t, jerkBound, got, 1e-6)
}

func TestAccelGroupCalcMaxSafeV2BoundedByAccelOnly(t *testing.T) {
	ag := AccelGroup{Order: Order4, MaxAccel: 1000, MaxJerk: 1e5, CombinedD: 3}
	got := ag.CalcMaxSafeV2(0, 0)
	maxV2 := 2. * 1000 * 3
	assert.LessOrEqual(t, got, maxV2+geomEpsilon)
}
