package pysynrad

import (
	"math"
	"testing"
)

func TestNewBeamSeedsZetaPrimeFromAlpha(t *testing.T) {
	b, err := NewBeam(1.0, -2.0, 4.0, 9.0, 0, 0, 0, 0, 1e-9, 1e-9, 0.001)
	if err != nil {
		t.Fatalf("NewBeam: %v", err)
	}
	if b.Zetah != 2.0 { // sqrt(4.0)
		t.Fatalf("expected Zetah=2.0, got %f", b.Zetah)
	}
	if b.Zetav != 3.0 { // sqrt(9.0)
		t.Fatalf("expected Zetav=3.0, got %f", b.Zetav)
	}
	if math.Abs(b.Zetahp-0.5) > 1e-12 { // alpha/zeta = 1.0/2.0
		t.Fatalf("expected Zetahp=0.5, got %f", b.Zetahp)
	}
	if math.Abs(b.Zetavp-(-2.0/3.0)) > 1e-12 {
		t.Fatalf("expected Zetavp=-2/3, got %f", b.Zetavp)
	}
}

func TestNewBeamRejectsNonPositiveBeta(t *testing.T) {
	if _, err := NewBeam(0, 0, -1.0, 4.0, 0, 0, 0, 0, 1e-9, 1e-9, 0.001); err == nil {
		t.Fatalf("expected an error for negative beta")
	}
	if _, err := NewBeam(0, 0, 4.0, 0.0, 0, 0, 0, 0, 1e-9, 1e-9, 0.001); err == nil {
		t.Fatalf("expected an error for zero beta")
	}
}

func TestBeamSizeMatchesEnvelopeFormula(t *testing.T) {
	b, err := NewBeam(0, 0, 4.0, 9.0, 0.01, 0.02, 0, 0, 1e-9, 2e-9, 0.001)
	if err != nil {
		t.Fatalf("NewBeam: %v", err)
	}
	hsize, vsize, _, _, err := b.Size()
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	wantH := math.Sqrt(1e-9*4.0 + 0.01*0.01*0.001*0.001)
	wantV := math.Sqrt(2e-9*9.0 + 0.02*0.02*0.001*0.001)
	if math.Abs(hsize-wantH) > 1e-15 {
		t.Fatalf("expected hsize=%g, got %g", wantH, hsize)
	}
	if math.Abs(vsize-wantV) > 1e-15 {
		t.Fatalf("expected vsize=%g, got %g", wantV, vsize)
	}
}

func TestBeamWriteEmitsTwissRecord(t *testing.T) {
	b, err := NewBeam(0, 0, 4.0, 9.0, 0, 0, 0, 0, 1e-9, 1e-9, 0.001)
	if err != nil {
		t.Fatalf("NewBeam: %v", err)
	}
	dir := t.TempDir()
	f1 := writeLatticeFile(t, dir, "a.lat", "BEND 0.0 10.0 0.1 0.0 0.0 0.0 0.0 0.0 0.0\n")
	lat, err := LoadLattice([]string{f1})
	if err != nil {
		t.Fatalf("LoadLattice: %v", err)
	}
	step := NewOrbit(lat, 0, 10, 0.1).CreateStep(0, 0)

	sink := &recordingSink{}
	b.Write(step, sink)
	if len(sink.lines) != 1 {
		t.Fatalf("expected exactly 1 twiss record line, got %d", len(sink.lines))
	}
}
