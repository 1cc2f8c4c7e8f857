package pysynrad

// Twiss propagates a Beam's envelope (ζ, η and their derivatives) around
// the reference orbit via a first-order explicit step of the underlying
// second-order ODE (spec.md §4.3).
type Twiss struct {
	lattice *Lattice
}

// NewTwiss binds a Twiss evolver to a lattice.
func NewTwiss(lat *Lattice) *Twiss {
	return &Twiss{lattice: lat}
}

// Evolve advances beam's Twiss state by one step, reading quadrupole
// strengths from the lattice at the step's current position.
func (t *Twiss) Evolve(step *Step, beam *Beam) {
	beam.Zetah += beam.Zetahp * step.Dl
	beam.Zetav += beam.Zetavp * step.Dl
	beam.Etah += beam.Etahp * step.Dl
	beam.Etav += beam.Etavp * step.Dl

	kh, kv := 0.0, 0.0
	for _, region := range t.lattice.Get(step.S0ip) {
		if region.IsVacuum() {
			continue
		}
		idx := region.Index(step.S0ip)
		kh += region.K1(idx)
		kv -= region.K1(idx)
	}
	if !step.InVacuum {
		kh = -kh - step.Gh*step.Gh
		kv = -kv - step.Gv*step.Gv
	} else {
		kh, kv = 0, 0
	}

	zetahpp := kh*beam.Zetah + 1/(beam.Zetah*beam.Zetah*beam.Zetah)
	beam.Zetahp += zetahpp * step.Dl
	zetavpp := kv*beam.Zetav + 1/(beam.Zetav*beam.Zetav*beam.Zetav)
	beam.Zetavp += zetavpp * step.Dl

	etahpp := kh*beam.Etah + step.Gh
	beam.Etahp += etahpp * step.Dl
	etavpp := kv*beam.Etav - step.Gv
	beam.Etavp += etavpp * step.Dl
}
