package pysynrad

import (
	"fmt"
	"math"
)

// RegionFilter restricts photon accumulation and flushing to a single
// arc-length window [Left, Right], when Enabled.
type RegionFilter struct {
	Enabled     bool
	Left, Right float64
}

// TargetZone is a z-axis-aligned hollow cylinder used to pre-filter
// photons by whether their line of flight intersects it (spec.md §4.5).
type TargetZone struct {
	Enabled    bool
	RInner, ROuter float64
	Z0, Z1     float64
}

// PhotonConfig bundles the configuration read from generator.photons
// (spec.md §6).
type PhotonConfig struct {
	Enabled      bool
	FullEvents   bool
	NthStep      int
	Time         float64 // integration time, seconds
	EnergyCutoff float64 // GeV
	SigmaH, SigmaV float64
	StepsH, StepsV int
	Region       RegionFilter
	Zone         TargetZone

	BeamEnergyGeV   float64
	BeamCurrentA    float64
	CrossingAngle   float64 // radians
}

// Photons accumulates magnet path length between flushes, integrates the
// transverse beam profile at each flush, computes the photon-count
// statistics, and emits HepEvt event records (spec.md §4.5).
type Photons struct {
	cfg      PhotonConfig
	spectrum *Spectrum

	dl        float64
	callCount int
	wasInZone bool
}

// NewPhotons builds a Photons generator bound to the given spectrum.
func NewPhotons(cfg PhotonConfig, spectrum *Spectrum) *Photons {
	return &Photons{cfg: cfg, spectrum: spectrum, wasInZone: cfg.Region.Enabled}
}

// Create is the per-iteration entry point: it accumulates path length
// while inside a magnet (optionally gated by the region filter), and
// flushes (integrating the beam profile and emitting events) once the
// flush condition of spec.md §4.5 is met.
func (p *Photons) Create(step *Step, beam *Beam, lat *Lattice, numericOut Sink, events *HepEvt) error {
	if !p.cfg.Enabled {
		return nil
	}

	inZone := !p.cfg.Region.Enabled || (step.S0ip >= p.cfg.Region.Left && step.S0ip <= p.cfg.Region.Right)
	if !step.InVacuum && inZone {
		p.dl += step.Dl
		p.callCount++
	}

	crossedOut := p.cfg.Region.Enabled && p.wasInZone && !inZone
	p.wasInZone = inZone

	flush := p.callCount >= p.cfg.NthStep ||
		(p.callCount > 0 && step.OnBoundary) ||
		(p.cfg.Region.Enabled && p.callCount > 0 && crossedOut)

	if !flush {
		return nil
	}

	dl := math.Abs(p.dl)
	p.dl = 0
	p.callCount = 0
	return p.integrateBeam(dl, step, beam, lat, numericOut, events)
}

func (p *Photons) integrateBeam(dl float64, step *Step, beam *Beam, lat *Lattice, numericOut Sink, events *HepEvt) error {
	type quad struct{ k1, sk1 float64 }
	var quads []quad
	for _, region := range lat.Get(step.S0ip) {
		if region.IsVacuum() {
			continue
		}
		idx := region.Index(step.S0ip)
		quads = append(quads, quad{k1: region.K1(idx), sk1: region.SK1(idx)})
	}

	hsize, vsize, ch, cv, err := beam.Size()
	if err != nil {
		return err
	}

	norm1 := 1 / (math.Sqrt(2*math.Pi) * hsize * vsize)
	norm2 := 1 / (2 * math.Pi * hsize * vsize)
	xstep := 2 * p.cfg.SigmaH * hsize / float64(p.cfg.StepsH)
	ystep := 2 * p.cfg.SigmaV * vsize / float64(p.cfg.StepsV)
	weightFactor := xstep * ystep * hsize * vsize
	sx, cx := math.Sincos(p.cfg.CrossingAngle)

	gamma := p.cfg.BeamEnergyGeV / electronMassGeV
	iParticles := p.cfg.BeamCurrentA * chargesPerAmp
	numPhotonFactor := (5.0 / (2.0 * sqrt3)) * gamma * fineStructure * iParticles * p.cfg.Time

	totalN, totalNCut := 0, 0

	xStart := -p.cfg.SigmaH*hsize + 0.5*xstep
	yStart := -p.cfg.SigmaV*vsize + 0.5*ystep
	xEnd := p.cfg.SigmaH * hsize
	yEnd := p.cfg.SigmaV * vsize

	for xs := xStart; xs < xEnd; xs += xstep {
		for ys := yStart; ys < yEnd; ys += ystep {
			ghLoc := step.Gh
			gvLoc := step.Gv
			for _, q := range quads {
				ghLoc += q.k1*xs - q.sk1*ys
				gvLoc += q.k1*ys + q.sk1*xs
			}
			rhoInv := math.Hypot(ghLoc, gvLoc)

			nh := xs / hsize
			nv := ys / vsize
			var prob float64
			if math.Abs(nv) > 5 && beam.Emitv/beam.Emith < 0.2 {
				prob = norm1 * math.Exp(-0.5*nh*nh) * math.Exp(-7.4-1.2*math.Abs(nv))
			} else {
				prob = norm2 * math.Exp(-0.5*(nh*nh+nv*nv))
			}
			w := prob * weightFactor

			n := int(math.Floor(numPhotonFactor * rhoInv * w * dl))
			if n <= 0 {
				continue
			}
			totalN += n

			ec := 1.5 * speedOfLight * reducedPlanckGeV * gamma * gamma * gamma * rhoInv

			xip, yip, zip := step.X, step.Y, step.S0ip
			vx := cx*(xip+xs) - sx*zip
			vy := -(yip + ys)
			vz := -cx*zip - sx*(xip+xs)

			pxp := (math.Pi - step.XipPrime) + ch*xs
			pyp := -(step.YipPrime + cv*ys)
			pzp := -1.0
			px := cx*pxp + sx*pzp
			py := pyp
			pz := cx*pzp - sx*pxp
			inv := 1 / Norm3(px, py, pz)

			if p.cfg.Zone.Enabled && !p.passesTargetZone(px, py, pz, vx, vy, vz) {
				continue
			}

			if p.cfg.FullEvents {
				energies := p.spectrum.Random(ec, n, p.cfg.EnergyCutoff)
				if len(energies) > 0 {
					ev := events.NewEvent(vx, vy, vz, nil, nil)
					for _, e := range energies {
						ev.Add(px*e*inv, py*e*inv, pz*e*inv)
					}
					ev.Commit()
					totalNCut += len(energies)
				}
			} else {
				ev := events.NewEvent(vx, vy, vz, &n, &ec)
				ev.Add(px*inv, py*inv, pz*inv)
				ev.Commit()
				totalNCut += n
			}
		}
	}

	numericOut.Write(fmt.Sprintf("%f:%d:%d:%e:%e:%e:%e\n",
		step.S0ip, totalN, totalNCut, step.X, step.Y, step.Xp, step.Yp))
	return nil
}

// passesTargetZone reports whether the photon's line of flight (not ray:
// photons move toward the interaction point) intersects the configured
// target-zone annulus (spec.md §4.5 step 8).
func (p *Photons) passesTargetZone(px, py, pz, vx, vy, vz float64) bool {
	var mx, my float64
	if math.Abs(pz) >= 1e-10 {
		mx = px / pz
		my = py / pz
	}
	z0, z1 := p.cfg.Zone.Z0, p.cfg.Zone.Z1
	ri2 := p.cfg.Zone.RInner * p.cfg.Zone.RInner
	ro2 := p.cfg.Zone.ROuter * p.cfg.Zone.ROuter

	r2 := func(z float64) float64 {
		dx := mx*(z-vz) + vx
		dy := my*(z-vz) + vy
		return dx*dx + dy*dy
	}
	r2z0 := r2(z0)
	r2z1 := r2(z1)
	return (r2z0 < ro2 && r2z1 > ri2) || (r2z1 < ro2 && r2z0 > ri2)
}
