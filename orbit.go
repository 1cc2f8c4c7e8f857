package pysynrad

import "math"

// Orbit drives the ideal reference orbit and the actual (deviated) orbit
// through a Lattice, with boundary-snapped step control (spec.md §4.2).
type Orbit struct {
	lattice   *Lattice
	start     float64
	stop      float64
	nominalDs float64
}

// NewOrbit builds an Orbit stepper bound to lat, stepping from start to
// stop with the given nominal (signed) step size.
func NewOrbit(lat *Lattice, start, stop, nominalDs float64) *Orbit {
	return &Orbit{lattice: lat, start: start, stop: stop, nominalDs: nominalDs}
}

// CreateStep returns the initial Step for this orbit, offset in position
// and angle as configured. The ideal tangent angle starts at pi, so the
// reference orbit runs in the -z direction (spec.md §3).
func (o *Orbit) CreateStep(posOffset, angleOffset float64) *Step {
	return NewStep(o.lattice,
		o.start, o.nominalDs, math.Pi,
		posOffset, 0.0,
		o.nominalDs, -angleOffset, 0.0,
		math.Pi+angleOffset, 0.0)
}

// Valid reports whether the orbit has not yet crossed the stop position.
func (o *Orbit) Valid(step *Step) bool {
	if step.Ds < 0 {
		return step.S0ip >= o.stop
	}
	return step.S0ip <= o.stop
}

// StepIdeal advances the ideal orbit by one step, snapping to the nearest
// region boundary when the nominal step would cross one (spec.md §4.2).
func (o *Orbit) StepIdeal(step *Step) {
	step.Ds = o.nominalDs
	step.OnBoundary = false

	regions := o.lattice.Get(step.S0ip)
	dmin := -1.0
	for _, r := range regions {
		var dist float64
		if step.Ds < 0 {
			dist = math.Abs(step.S0ip - r.Left())
		} else {
			dist = math.Abs(step.S0ip - r.Right())
		}
		if dmin < 0 || dist < dmin {
			dmin = dist
		}
	}

	if dmin > 0 && dmin < math.Abs(step.Ds) {
		if o.nominalDs < 0 {
			step.Ds = -dmin
		} else {
			step.Ds = dmin
		}
		step.OnBoundary = true
	}

	step.S0ip += step.Ds

	next := o.lattice.Get(step.S0ip)
	step.InVacuum = true
	for _, r := range next {
		step.InVacuum = step.InVacuum && r.IsVacuum()
	}
}

// StepActual advances the actual (deviated) orbit by one step, recomputing
// the total curvature from each layer's cached or freshly-evaluated slice
// curvature (spec.md §4.2).
func (o *Orbit) StepActual(step *Step) {
	step.Gh = 0
	step.Gv = 0

	for i, region := range o.lattice.Get(step.S0ip) {
		if region.IsVacuum() {
			continue
		}
		curv := step.Curvature(i)
		idx := region.Index(step.S0ip)

		if curv.region != region || curv.index != idx {
			curv.region = region
			curv.index = idx

			mx := step.X - region.OffsetHorz(idx)
			my := step.Y - region.OffsetVert(idx)
			mx, my = Rotate2D(mx, my, -region.Angle(idx))

			curv.gh = region.K0(idx) + region.K1(idx)*mx - region.SK1(idx)*my
			curv.gv = region.SK0(idx) + region.K1(idx)*my + region.SK1(idx)*mx
		} else {
			curv.gh += step.Dl * (region.K1(idx)*step.Xp - region.SK1(idx)*step.Yp)
			curv.gv += step.Dl * (region.K1(idx)*step.Yp + region.SK1(idx)*step.Xp)
			step.S0ipPrime -= step.Ds * region.K0(idx) * region.Length(idx)
		}

		step.Gh += curv.gh
		step.Gv += curv.gv
	}

	if step.InVacuum {
		step.Dl = step.Ds / math.Cos(step.Xp)
	} else {
		step.Dl = step.Ds * (1 + step.Gh*step.X)
	}

	step.X += step.Dl * step.Xp
	step.Y += step.Dl * step.YipPrime
	step.XipPrime += step.Gh * step.Dl
	step.YipPrime += step.Gv * step.Dl

	if !step.InVacuum {
		step.Xp = step.S0ipPrime - step.XipPrime
		step.Yp = step.YipPrime
	}
}
