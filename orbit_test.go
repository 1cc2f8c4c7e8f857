package pysynrad

import "testing"

func TestStepActualZeroCurvatureInVacuum(t *testing.T) {
	dir := t.TempDir()
	f1 := writeLatticeFile(t, dir, "a.lat", "BEND 5.0 1.0 0.1 0.0 0.0 0.0 0.0 0.0 0.0\n")
	lat, err := LoadLattice([]string{f1})
	if err != nil {
		t.Fatalf("LoadLattice: %v", err)
	}
	orbit := NewOrbit(lat, 0, 10, 0.1)
	step := orbit.CreateStep(0, 0)
	step.S0ip = 0.0 // well before the magnet at s=5

	orbit.StepActual(step)

	if step.Gh != 0 || step.Gv != 0 {
		t.Fatalf("expected zero curvature in vacuum, got Gh=%f Gv=%f", step.Gh, step.Gv)
	}
}

func TestStepActualCurvatureCacheDoesNotAliasAcrossLayers(t *testing.T) {
	dir := t.TempDir()
	f1 := writeLatticeFile(t, dir, "a.lat", "Q1 0.0 10.0 1.0 0.0 0.0 0.0 0.0 0.0 0.0\n") // K0 = 1.0/10.0 = 0.1
	f2 := writeLatticeFile(t, dir, "b.lat", "Q2 0.0 10.0 3.0 0.0 0.0 0.0 0.0 0.0 0.0\n") // K0 = 3.0/10.0 = 0.3
	lat, err := LoadLattice([]string{f1, f2})
	if err != nil {
		t.Fatalf("LoadLattice: %v", err)
	}
	orbit := NewOrbit(lat, 0, 10, 0.1)
	step := orbit.CreateStep(0, 0)
	step.S0ip = 1.0

	orbit.StepActual(step)

	c0 := step.Curvature(0)
	c1 := step.Curvature(1)
	if c0.gh == c1.gh {
		t.Fatalf("expected distinct per-layer curvature (K0=0.1 vs K0=0.3), both resolved to gh=%f", c0.gh)
	}
	if c0.gh != 0.1 {
		t.Fatalf("expected layer 0 curvature gh=0.1, got %f", c0.gh)
	}
	if c1.gh != 0.3 {
		t.Fatalf("expected layer 1 curvature gh=0.3, got %f", c1.gh)
	}
}

func TestOrbitCreateStepAppliesOffsets(t *testing.T) {
	dir := t.TempDir()
	f1 := writeLatticeFile(t, dir, "a.lat", "BEND 0.0 10.0 0.1 0.0 0.0 0.0 0.0 0.0 0.0\n")
	lat, err := LoadLattice([]string{f1})
	if err != nil {
		t.Fatalf("LoadLattice: %v", err)
	}
	orbit := NewOrbit(lat, 0, 10, 0.1)
	step := orbit.CreateStep(0.002, 0.001)
	if step.X != 0.002 {
		t.Fatalf("expected position offset 0.002, got %f", step.X)
	}
	if step.Xp != -0.001 {
		t.Fatalf("expected angle offset folded into Xp as -0.001, got %f", step.Xp)
	}
}
