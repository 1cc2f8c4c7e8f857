package pysynrad

import "testing"

func TestNewStepAllocatesDistinctCurvaturePerLayer(t *testing.T) {
	dir := t.TempDir()
	f1 := writeLatticeFile(t, dir, "a.lat", "Q1 0.0 1.0 0.0 0.1 0.0 0.0 0.0 0.0 0.0\n")
	f2 := writeLatticeFile(t, dir, "b.lat", "Q2 0.0 1.0 0.0 0.2 0.0 0.0 0.0 0.0 0.0\n")
	lat, err := LoadLattice([]string{f1, f2})
	if err != nil {
		t.Fatalf("LoadLattice: %v", err)
	}

	step := NewStep(lat, 0, 0.1, 0, 0, 0, 0.1, 0, 0, 0, 0)
	c0 := step.Curvature(0)
	c1 := step.Curvature(1)
	if c0 == c1 {
		t.Fatalf("expected distinct Curvature instances per layer, got the same pointer")
	}

	c0.gh = 1.0
	if c1.gh == 1.0 {
		t.Fatalf("mutating layer 0's curvature leaked into layer 1 — aliasing bug reintroduced")
	}
}

func TestOrbitStepIdealSnapsToRegionBoundary(t *testing.T) {
	dir := t.TempDir()
	f1 := writeLatticeFile(t, dir, "a.lat", "BEND 0.0 1.0 0.1 0.0 0.0 0.0 0.0 0.0 0.0\n")
	lat, err := LoadLattice([]string{f1})
	if err != nil {
		t.Fatalf("LoadLattice: %v", err)
	}

	// Nominal step of 0.3 from s=0.9 would overshoot the region boundary at
	// s=1.0 by 0.2; StepIdeal must snap to land exactly on it.
	orbit := NewOrbit(lat, 0, 2, 0.3)
	step := orbit.CreateStep(0, 0)
	step.S0ip = 0.9

	orbit.StepIdeal(step)

	if !step.OnBoundary {
		t.Fatalf("expected OnBoundary=true when the nominal step overshoots a region edge")
	}
	if got := step.S0ip; got < 0.999999 || got > 1.000001 {
		t.Fatalf("expected the step to snap to s=1.0, got %f", got)
	}
}

func TestOrbitStepIdealDoesNotSnapWhenClear(t *testing.T) {
	dir := t.TempDir()
	f1 := writeLatticeFile(t, dir, "a.lat", "BEND 0.0 10.0 0.1 0.0 0.0 0.0 0.0 0.0 0.0\n")
	lat, err := LoadLattice([]string{f1})
	if err != nil {
		t.Fatalf("LoadLattice: %v", err)
	}
	orbit := NewOrbit(lat, 0, 10, 0.1)
	step := orbit.CreateStep(0, 0)
	step.S0ip = 2.0

	orbit.StepIdeal(step)

	if step.OnBoundary {
		t.Fatalf("did not expect a boundary snap well inside a region")
	}
	if got := step.S0ip; got < 2.099999 || got > 2.100001 {
		t.Fatalf("expected an unmodified nominal step to s=2.1, got %f", got)
	}
}

func TestOrbitValidRespectsStepDirection(t *testing.T) {
	dir := t.TempDir()
	f1 := writeLatticeFile(t, dir, "a.lat", "BEND 0.0 10.0 0.1 0.0 0.0 0.0 0.0 0.0 0.0\n")
	lat, err := LoadLattice([]string{f1})
	if err != nil {
		t.Fatalf("LoadLattice: %v", err)
	}

	fwd := NewOrbit(lat, 0, 5, 0.1)
	stepFwd := fwd.CreateStep(0, 0)
	stepFwd.S0ip = 4.9
	if !fwd.Valid(stepFwd) {
		t.Fatalf("expected a forward orbit at s=4.9 to still be valid (stop=5)")
	}
	stepFwd.S0ip = 5.1
	if fwd.Valid(stepFwd) {
		t.Fatalf("expected a forward orbit at s=5.1 to be past stop=5")
	}

	rev := NewOrbit(lat, 5, 0, -0.1)
	stepRev := rev.CreateStep(0, 0)
	stepRev.S0ip = 0.1
	if !rev.Valid(stepRev) {
		t.Fatalf("expected a reverse orbit at s=0.1 to still be valid (stop=0)")
	}
	stepRev.S0ip = -0.1
	if rev.Valid(stepRev) {
		t.Fatalf("expected a reverse orbit at s=-0.1 to be past stop=0")
	}
}
