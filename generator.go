package pysynrad

import (
	"fmt"
	"os"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

// Generator wires the lattice, orbit, twiss evolver and photon generator
// together and drives the main stepping loop of spec.md §2/§5. It owns
// every output sink and is responsible for opening and closing all of
// them on every exit path, successful or not.
type Generator struct {
	lattice *Lattice
	orbit   *Orbit
	twiss   *Twiss
	photons *Photons
	beam    *Beam
	events  *HepEvt

	orbitOut    *TextSink
	twissOut    *TextSink
	regionsOut  *TextSink
	photonsOut  *TextSink
	spectrumOut *TextSink

	logger kitlog.Logger

	posOffset, angleOffset float64

	stopChan chan bool
}

// genLogInit builds the go-kit logfmt logger used by Generator, following
// the vehicle logger convention of the reference implementation.
func genLogInit() kitlog.Logger {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	return kitlog.With(klog, "ts", kitlog.DefaultTimestampUTC)
}

// NewGenerator builds and validates a Generator from cfg, but does not yet
// open any output file (see Initialize).
func NewGenerator(cfg *Config) (*Generator, error) {
	lat, err := LoadLattice(cfg.Machine.Lattice)
	if err != nil {
		return nil, fmt.Errorf("generator: loading lattice: %w", err)
	}

	t := cfg.Generator.Twiss
	beam, err := NewBeam(
		t.Alpha.Horizontal, t.Alpha.Vertical,
		t.Beta.Horizontal, t.Beta.Vertical,
		t.Eta.Horizontal, t.Eta.Vertical,
		t.EtaDerivative.Horizontal, t.EtaDerivative.Vertical,
		t.Emittance.Horizontal, t.Emittance.Vertical,
		t.DeltaE)
	if err != nil {
		return nil, fmt.Errorf("generator: building beam: %w", err)
	}

	spectrum, err := NewSpectrum(
		cfg.Generator.Photons.Spectrum.Resolution,
		cfg.Generator.Photons.Spectrum.Cutoff,
		cfg.Generator.Photons.Spectrum.Seed,
		cfg.Generator.Photons.Spectrum.Interpolation)
	if err != nil {
		return nil, fmt.Errorf("generator: building spectrum: %w", err)
	}

	p := cfg.Generator.Photons
	photonCfg := PhotonConfig{
		Enabled:       p.Enabled,
		FullEvents:    p.FullEvents,
		NthStep:       p.NthStep,
		Time:          p.Time,
		EnergyCutoff:  p.EnergyCutoff,
		SigmaH:        p.Sigma.H,
		SigmaV:        p.Sigma.V,
		StepsH:        p.Steps.H,
		StepsV:        p.Steps.V,
		BeamEnergyGeV: cfg.Machine.BeamEnergy,
		BeamCurrentA:  cfg.Machine.BeamCurrent,
		CrossingAngle: cfg.Machine.CrossingAngle,
		Region: RegionFilter{
			Enabled: p.Region.Enabled,
			Left:    p.Region.Range[0],
			Right:   p.Region.Range[1],
		},
		Zone: TargetZone{
			Enabled: p.TargetZone.Enabled,
			RInner:  p.TargetZone.Radius[0],
			ROuter:  p.TargetZone.Radius[1],
			Z0:      p.TargetZone.Boundary[0],
			Z1:      p.TargetZone.Boundary[1],
		},
	}

	o := cfg.Generator.Orbit
	out := cfg.Application.Output
	g := &Generator{
		lattice:     lat,
		orbit:       NewOrbit(lat, o.Start, o.Stop, o.StepSize),
		twiss:       NewTwiss(lat),
		photons:     NewPhotons(photonCfg, spectrum),
		beam:        beam,
		events:      NewHepEvt(out.Events.Enabled, out.Events.Filename),
		orbitOut:    sinkFromConfig(out.OrbitParameters),
		twissOut:    sinkFromConfig(out.TwissParameters),
		regionsOut:  sinkFromConfig(out.Regions),
		photonsOut:  sinkFromConfig(out.RadiatedNumberPhotons),
		spectrumOut: sinkFromConfig(out.SpectrumLUT),
		logger:      genLogInit(),
		posOffset:   o.Offset.Position,
		angleOffset: o.Offset.Angle,
		stopChan:    make(chan bool, 1),
	}
	return g, nil
}

// sinkFromConfig builds a TextSink honoring whichever of NthStep/Fraction
// was configured; NthStep takes precedence when both are non-zero.
func sinkFromConfig(c SinkConfig) *TextSink {
	if c.NthStep > 0 {
		return NewTextSink(c.Enabled, c.Filename, c.NthStep)
	}
	return NewTextSinkFraction(c.Enabled, c.Filename, c.Fraction)
}

// Initialize opens every configured output sink. Callers must call
// Terminate, even on error, to release whatever was already opened.
func (g *Generator) Initialize() error {
	sinks := []interface {
		Open() error
	}{g.orbitOut, g.twissOut, g.regionsOut, g.photonsOut, g.spectrumOut, g.events}
	for _, s := range sinks {
		if err := s.Open(); err != nil {
			return fmt.Errorf("generator: %w", err)
		}
	}
	g.lattice.WriteRegions(g.regionsOut)
	g.photons.spectrum.WriteLUT(g.spectrumOut)
	return nil
}

// Terminate flushes and closes every output sink, logging (but not
// failing on) any individual close error.
func (g *Generator) Terminate() {
	closers := []interface {
		Close() error
	}{g.orbitOut, g.twissOut, g.regionsOut, g.photonsOut, g.spectrumOut, g.events}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			g.logger.Log("level", "warning", "subsys", "output", "message", "close failed", "err", err)
		}
	}
}

// StopGeneration requests an early, clean stop of Run.
func (g *Generator) StopGeneration() {
	g.stopChan <- true
}

// Run drives the step → twiss → photon loop from the orbit's configured
// start to stop (spec.md §2), periodically logging progress.
func (g *Generator) Run() error {
	step := g.orbit.CreateStep(g.posOffset, g.angleOffset)

	g.logger.Log("level", "info", "subsys", "generator", "status", "starting", "s0", step.S0ip)

	lastLog := time.Now()
	const logEvery = 10 * time.Second

	for g.orbit.Valid(step) {
		select {
		case <-g.stopChan:
			g.logger.Log("level", "notice", "subsys", "generator", "status", "stopped early", "s0ip", step.S0ip)
			return nil
		default:
		}

		g.orbit.StepIdeal(step)
		g.orbit.StepActual(step)
		g.twiss.Evolve(step, g.beam)

		step.WriteOrbit(g.orbitOut)
		g.beam.Write(step, g.twissOut)

		if err := g.photons.Create(step, g.beam, g.lattice, g.photonsOut, g.events); err != nil {
			return fmt.Errorf("generator: photon generation failed at s0ip=%f: %w", step.S0ip, err)
		}

		if now := time.Now(); now.Sub(lastLog) >= logEvery {
			g.logger.Log("level", "info", "subsys", "generator", "s0ip", step.S0ip)
			lastLog = now
		}
	}

	g.logger.Log("level", "notice", "subsys", "generator", "status", "finished", "s0ip", step.S0ip)
	return nil
}
