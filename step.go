package pysynrad

import "fmt"

// Curvature caches the total horizontal/vertical curvature contributed by
// one layer at the orbit's current slice, so that step_actual_orbit can
// distinguish "first step in a new slice" (recompute from the magnet
// geometry) from "still in the same slice" (evolve in place) per spec.md
// §4.2.
//
// Each layer MUST own a distinct Curvature instance. Allocating a single
// instance and replicating its pointer across layers is a latent bug in
// the reference implementation (spec.md §9) — Step.curvatures below always
// allocates one fresh Curvature per layer.
type Curvature struct {
	region *Region
	index  int
	gh, gv float64
}

// Step is the single mutable per-iteration state the orbit stepper, twiss
// evolver and photon generator all read and update.
type Step struct {
	// Ideal orbit.
	S0ip      float64 // ideal arc-length position
	Ds        float64 // current step (signed)
	S0ipPrime float64 // ideal horizontal tangent angle

	// Actual orbit.
	X, Y               float64 // transverse offsets from the ideal orbit
	Dl                 float64 // actual step length
	Xp, Yp             float64 // slope deviations from the ideal orbit
	XipPrime, YipPrime float64 // absolute slopes

	// Total curvature at this step.
	Gh, Gv float64

	// Status flags.
	InVacuum   bool
	OnBoundary bool

	// One curvature cache per lattice layer.
	curvatures []*Curvature
}

// NewStep allocates a Step with one distinct Curvature cache per layer in
// the given lattice.
func NewStep(lat *Lattice, s0ip, ds, s0ipPrime, x, y, dl, xp, yp, xipPrime, yipPrime float64) *Step {
	curvatures := make([]*Curvature, lat.Count())
	for i := range curvatures {
		curvatures[i] = &Curvature{}
	}
	return &Step{
		S0ip: s0ip, Ds: ds, S0ipPrime: s0ipPrime,
		X: x, Y: y, Dl: dl, Xp: xp, Yp: yp,
		XipPrime: xipPrime, YipPrime: yipPrime,
		InVacuum:   true,
		curvatures: curvatures,
	}
}

// Curvature returns the cache owned by layer i.
func (s *Step) Curvature(i int) *Curvature { return s.curvatures[i] }

// WriteOrbit emits the `orbit_parameters` numeric output record (spec.md §6).
func (s *Step) WriteOrbit(sink Sink) {
	sink.Write(fmt.Sprintf("%f:%e:%e\n", s.S0ip, s.X, s.Y))
}
