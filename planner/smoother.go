package planner

// Smoother holds the weight function ((t-T)^2 - h^2)^2 used to average
// the committed velocity profile over a window of half-width Hst,
// removing discrete velocity jumps between moves (spec §4's "smoothing
// integrators"; integrate.c/h: struct smoother).
type Smoother struct {
	Hst     float64
	InvNorm float64
	h2, h4  float64
}

// NewSmoother precomputes the weight function's normalization and
// squared/fourth-power window terms for half-width hst (integrate.c:
// alloc_smoother).
func NewSmoother(hst float64) *Smoother {
	h2 := hst * hst
	return &Smoother{
		Hst:     hst,
		InvNorm: 15. / (16. * hst * hst * hst * hst * hst),
		h2:      h2,
		h4:      h2 * h2,
	}
}

// wAntiderivCoeffs[n] gives the 3 coefficients of the closed-form
// antiderivative of t^n*(t^2-h^2)^2 (integrate.c:
// w_antideriv_coeffs), indexed by n = 0..6.
var wAntiderivCoeffs = [7][3]float64{
	{1. / 5., -2. / 3., 1. / 1.},
	{1. / 6., -2. / 4., 1. / 2.},
	{1. / 7., -2. / 5., 1. / 3.},
	{1. / 8., -2. / 6., 1. / 4.},
	{1. / 9., -2. / 7., 1. / 5.},
	{1. / 10., -2. / 8., 1. / 6.},
	{1. / 11., -2. / 9., 1. / 7.},
}

// iwtn returns the antiderivative of t^n*(t^2-h^2)^2 at t (integrate.c:
// iwtn).
func (sm *Smoother) iwtn(n int, t float64) float64 {
	c := wAntiderivCoeffs[n]
	t2 := t * t
	v := (c[0]*t2+c[1]*sm.h2)*t2 + c[2]*sm.h4
	for ; n >= 0; n-- {
		v *= t
	}
	return v
}

// w evaluates the weight function itself at t (integrate.c: w).
func (sm *Smoother) w(t float64) float64 {
	t2 := t * t
	v := t2 - sm.h2
	return v * v
}

// IntegrateWeighted integrates s(t), offset by a constant pos, weighted
// by the smoothing function centered at T = -toff, over [start, end]
// (spec §4's smoothing integrators; integrate.c: integrate_weighted). s
// is taken by value: the original mutates its scurve argument in place
// during the large-|toff| branch, which here only affects this local
// copy, never the caller's curve.
func (sm *Smoother) IntegrateWeighted(pos float64, s SCurve, start, end, toff float64) float64 {
	toff2 := toff * toff
	v := toff2 - sm.h2

	// Expand s(t)*w(t) as powers of either s(t) or w(t): the w(t)
	// expansion is numerically unstable when |toff| >> Hst, the s(t)
	// expansion when |toff| >> total_accel_t. Both cannot hold at once,
	// since |toff| >> Hst implies |toff| ~ move_t (integrate.c:
	// integrate_weighted).
	if toff2 > sm.h2 {
		pos += s.Eval(-toff)
		s.Offset(-toff)

		start += toff
		end += toff
		res := s.C6 * (sm.iwtn(6, end) - sm.iwtn(6, start))
		res += s.C5 * (sm.iwtn(5, end) - sm.iwtn(5, start))
		res += s.C4 * (sm.iwtn(4, end) - sm.iwtn(4, start))
		res += s.C3 * (sm.iwtn(3, end) - sm.iwtn(3, start))
		res += s.C2 * (sm.iwtn(2, end) - sm.iwtn(2, start))
		res += s.C1 * (sm.iwtn(1, end) - sm.iwtn(1, start))
		res += pos * (sm.iwtn(0, end) - sm.iwtn(0, start))
		return res
	}

	res := s.TnAntiderivative(4, end) - s.TnAntiderivative(4, start)
	res += 4. * toff * (s.TnAntiderivative(3, end) - s.TnAntiderivative(3, start))
	res += 2. * (3.*toff2 - sm.h2) * (s.TnAntiderivative(2, end) - s.TnAntiderivative(2, start))
	res += 4. * toff * v * (s.TnAntiderivative(1, end) - s.TnAntiderivative(1, start))
	res += v * v * (s.TnAntiderivative(0, end) - s.TnAntiderivative(0, start))

	start += toff
	end += toff
	res += pos * (sm.iwtn(0, end) - sm.iwtn(0, start))
	return res
}

// IntegrateVelocityJumps integrates the discrete velocity jumps at the
// ends of [start, end] weighted by the smoothing function centered at
// T = -toff (integrate.c: integrate_velocity_jumps). The caller is
// responsible for summing this over the full window [T-Hst, T+Hst],
// across however many moves that spans, so the weight function's value
// at the window's own edges cancels out.
func (sm *Smoother) IntegrateVelocityJumps(s *SCurve, start, end, toff float64) float64 {
	startV := s.Velocity(start)
	endV := s.Velocity(end)
	return startV*sm.w(start+toff) - endV*sm.w(end+toff)
}
