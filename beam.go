package pysynrad

import (
	"fmt"
	"math"
)

// Beam carries the Twiss optics state (ζ = sqrt(β), dispersion η and their
// derivatives) plus the emittances and energy spread that together
// determine the beam envelope at a given arc-length position.
type Beam struct {
	Alphah, Alphav   float64
	Zetah, Zetav     float64 // sqrt(beta)
	Zetahp, Zetavp   float64
	Etah, Etav       float64
	Etahp, Etavp     float64
	Emith, Emitv     float64 // emittances
	DeltaE           float64 // energy spread
}

// NewBeam builds the initial Beam state from the configured Twiss block.
// Zetah/Zetav derivatives are seeded from alpha/zeta per the teacher's
// convention (ζ' = α/ζ at s=0), matching original_source/model/beam.py.
func NewBeam(alphah, alphav, betah, betav, etah, etav, etahp, etavp, emith, emitv, deltaE float64) (*Beam, error) {
	if betah <= 0 || betav <= 0 {
		return nil, fmt.Errorf("beam: beta must be positive (got betah=%f betav=%f)", betah, betav)
	}
	zetah := math.Sqrt(betah)
	zetav := math.Sqrt(betav)
	return &Beam{
		Alphah: alphah, Alphav: alphav,
		Zetah: zetah, Zetav: zetav,
		Zetahp: alphah / zetah, Zetavp: alphav / zetav,
		Etah: etah, Etav: etav,
		Etahp: etahp, Etavp: etavp,
		Emith: emith, Emitv: emitv,
		DeltaE: deltaE,
	}, nil
}

// Size returns the horizontal/vertical beam envelope sizes and their
// angular correlation coefficients ch, cv (spec.md §4.3).
func (b *Beam) Size() (hsize, vsize, ch, cv float64, err error) {
	hsizeSq := b.Emith*b.Zetah*b.Zetah + b.Etah*b.Etah*b.DeltaE*b.DeltaE
	vsizeSq := b.Emitv*b.Zetav*b.Zetav + b.Etav*b.Etav*b.DeltaE*b.DeltaE
	if hsizeSq <= 0 || vsizeSq <= 0 {
		return 0, 0, 0, 0, fmt.Errorf("beam: degenerate envelope (hsize^2=%g vsize^2=%g)", hsizeSq, vsizeSq)
	}
	hsize = math.Sqrt(hsizeSq)
	vsize = math.Sqrt(vsizeSq)
	ch = (b.Emith*b.Zetah*b.Zetahp + b.Etah*b.Etahp*b.DeltaE*b.DeltaE) / hsizeSq
	cv = (b.Emitv*b.Zetav*b.Zetavp + b.Etav*b.Etavp*b.DeltaE*b.DeltaE) / vsizeSq
	return
}

// Write emits the `twiss_parameters` numeric output record (spec.md §6),
// where alpha_effective = zeta' * zeta.
func (b *Beam) Write(step *Step, sink Sink) {
	sink.Write(fmt.Sprintf("%f:%e:%e:%e:%e:%e:%e\n",
		step.S0ip,
		b.Zetahp*b.Zetah, b.Zetavp*b.Zetav,
		b.Zetah, b.Zetav,
		b.Etah, b.Etav))
}
