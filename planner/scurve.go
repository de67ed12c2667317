package planner

// AccelOrder is the polynomial order of an S-curve's acceleration phase.
type AccelOrder int

const (
	Order2 AccelOrder = 2
	Order4 AccelOrder = 4
	Order6 AccelOrder = 6
)

// SCurve is the polynomial-in-time position function
//
//	s(t) = c1*t + c2*t^2 + c3*t^3 + c4*t^4 + c5*t^5 + c6*t^6
//
// parametrized by accel order (spec §4.A). It is the shared primitive
// sampled by the trapezoid builder and, downstream, by pressure-advance
// and input-shaping filters via the smoothing integrators.
type SCurve struct {
	C1, C2, C3, C4, C5, C6 float64
	TotalAccelT            float64
}

// Fill computes the raw polynomial coefficients for the given accel order
// and shifts them by accelOffsetT so evaluation starts at the right point
// along the virtual full curve (spec §4.A).
func (s *SCurve) Fill(order AccelOrder, accelOffsetT, totalAccelT, startAccelV, effectiveAccel float64) {
	*s = SCurve{TotalAccelT: totalAccelT}
	switch order {
	case Order4:
		s.fillOrder4(startAccelV, effectiveAccel, totalAccelT, accelOffsetT)
	case Order6:
		s.fillOrder6(startAccelV, effectiveAccel, totalAccelT, accelOffsetT)
	default:
		s.fillOrder2(startAccelV, effectiveAccel, accelOffsetT)
	}
}

func (s *SCurve) fillOrder2(startAccelV, effectiveAccel, accelOffsetT float64) {
	s.C2 = 0.5 * effectiveAccel
	s.C1 = startAccelV + effectiveAccel*accelOffsetT
}

func (s *SCurve) fillOrder4(startAccelV, effectiveAccel, totalAccelT, accelOffsetT float64) {
	if totalAccelT == 0 {
		return
	}
	invT := 1. / totalAccelT
	aOverT := effectiveAccel * invT
	aOverT2 := aOverT * invT
	s.C4 = -0.5 * aOverT2
	s.C3 = aOverT
	s.C1 = startAccelV
	s.Offset(accelOffsetT)
}

func (s *SCurve) fillOrder6(startAccelV, effectiveAccel, totalAccelT, accelOffsetT float64) {
	if totalAccelT == 0 {
		return
	}
	invT := 1. / totalAccelT
	aOverT2 := effectiveAccel * invT * invT
	aOverT3 := aOverT2 * invT
	aOverT4 := aOverT3 * invT
	s.C6 = aOverT4
	s.C5 = -3. * aOverT3
	s.C4 = 2.5 * aOverT2
	s.C1 = startAccelV
	s.Offset(accelOffsetT)
}

// Offset re-centers the curve's coefficients so that evaluating the
// shifted curve at time t equals evaluating the original curve at
// t+offsetT minus its value at offsetT: the curve has no constant term,
// so the shifted curve still starts at 0 for t=0 (spec §4.A, "the curve
// is shifted by offset_t").
func (s *SCurve) Offset(offsetT float64) {
	s.C1 += ((((6.*s.C6*offsetT+5.*s.C5)*offsetT+4.*s.C4)*offsetT+3.*s.C3)*offsetT + 2.*s.C2) * offsetT
	s.C2 += (((15.*s.C6*offsetT+10.*s.C5)*offsetT+6.*s.C4)*offsetT + 3.*s.C3) * offsetT
	s.C3 += ((20.*s.C6*offsetT+10.*s.C5)*offsetT + 4.*s.C4) * offsetT
	s.C4 += (15.*s.C6*offsetT + 5.*s.C5) * offsetT
	s.C5 += 6. * s.C6 * offsetT
}

// Eval returns s(t) via Horner's method.
func (s *SCurve) Eval(t float64) float64 {
	v := s.C6
	v = s.C5 + v*t
	v = s.C4 + v*t
	v = s.C3 + v*t
	v = s.C2 + v*t
	v = s.C1 + v*t
	return v * t
}

// Velocity returns s'(t).
func (s *SCurve) Velocity(t float64) float64 {
	v := 6. * s.C6
	v = 5.*s.C5 + v*t
	v = 4.*s.C4 + v*t
	v = 3.*s.C3 + v*t
	v = 2.*s.C2 + v*t
	return s.C1 + v*t
}

// Accel returns s''(t).
func (s *SCurve) Accel(t float64) float64 {
	v := 30. * s.C6
	v = 20.*s.C5 + v*t
	v = 12.*s.C4 + v*t
	v = 6.*s.C3 + v*t
	return 2.*s.C2 + v*t
}

// GetTime is the monotone bisection inverse of Eval: it returns the
// unique time in [0, TotalAccelT] at which s(t) == distance, clamped at
// the ends (spec §4.A).
func (s *SCurve) GetTime(distance float64) float64 {
	low, high := 0., s.TotalAccelT
	if s.Eval(high) <= distance {
		return high
	}
	if s.Eval(low) > distance {
		return low
	}
	for high-low > geomEpsilon {
		mid := (high + low) * 0.5
		if s.Eval(mid) > distance {
			high = mid
		} else {
			low = mid
		}
	}
	return (high + low) * 0.5
}

// coeffs returns the coefficients c_1..c_6 of s(t) = sum c_k * t^k,
// k = 1..6, used by TnAntiderivative below.
func (s *SCurve) coeffs() [6]float64 {
	return [6]float64{s.C1, s.C2, s.C3, s.C4, s.C5, s.C6}
}

// TnAntiderivative computes the closed form of integral(t^n * s(t) dt)
// evaluated at t, i.e. an antiderivative of t^n*s(t) with the constant of
// integration chosen so it is zero at t=0 (spec §4.A). Since s is a
// polynomial sum_k c_k*t^k for k=1..6, t^n*s(t) = sum_k c_k*t^(n+k) and
// its antiderivative is sum_k c_k/(n+k+1) * t^(n+k+1).
func (s *SCurve) TnAntiderivative(n int, t float64) float64 {
	c := s.coeffs()
	var res float64
	for i, ck := range c {
		if ck == 0 {
			continue
		}
		k := i + 1
		exp := n + k + 1
		res += ck / float64(exp) * pow(t, exp)
	}
	return res
}

func pow(t float64, n int) float64 {
	if n <= 0 {
		return 1
	}
	v := 1.0
	for i := 0; i < n; i++ {
		v *= t
	}
	return v
}

// Integrate returns integral(s(t) dt, t=start..end), i.e. the 0th
// t-antiderivative evaluated over the range.
func (s *SCurve) Integrate(start, end float64) float64 {
	return s.TnAntiderivative(0, end) - s.TnAntiderivative(0, start)
}

// CopyScaled returns a curve whose coefficients are all scaled by ratio,
// used by downstream filters (e.g. pressure advance) to combine position
// and derivative terms proportionally (spec §4.A).
func (s *SCurve) CopyScaled(ratio float64) SCurve {
	return SCurve{
		C1: s.C1 * ratio, C2: s.C2 * ratio, C3: s.C3 * ratio,
		C4: s.C4 * ratio, C5: s.C5 * ratio, C6: s.C6 * ratio,
		TotalAccelT: s.TotalAccelT,
	}
}

// AddDeriv adds ratio*s'(t)'s coefficients into dst, i.e. dst gains a
// term proportional to the derivative curve of s (spec §4.A). The
// constant (t^0) term of s'(t) has no slot in the t^1..t^6 SCurve shape
// and is dropped; downstream consumers that need it track it separately.
func (s *SCurve) AddDeriv(dst *SCurve, ratio float64) {
	dst.C1 += ratio * s.C2 * 2.
	dst.C2 += ratio * s.C3 * 3.
	dst.C3 += ratio * s.C4 * 4.
	dst.C4 += ratio * s.C5 * 5.
	dst.C5 += ratio * s.C6 * 6.
}

// Add2ndDeriv adds ratio*s''(t)'s coefficients into dst (spec §4.A).
func (s *SCurve) Add2ndDeriv(dst *SCurve, ratio float64) {
	dst.C1 += ratio * s.C3 * 6.
	dst.C2 += ratio * s.C4 * 12.
	dst.C3 += ratio * s.C5 * 20.
	dst.C4 += ratio * s.C6 * 30.
}
