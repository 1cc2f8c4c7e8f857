package pysynrad

import (
	"path/filepath"
	"strings"
	"testing"
)

type recordingSink struct {
	lines []string
}

func (s *recordingSink) Write(line string) { s.lines = append(s.lines, line) }
func (s *recordingSink) Close() error      { return nil }

func TestLoadLatticeOrdersLayers(t *testing.T) {
	dir := t.TempDir()
	f1 := writeLatticeFile(t, dir, "a.lat", "Q1 0.0 1.0 0.0 0.1 0.0 0.0 0.0 0.0 0.0\n")
	f2 := writeLatticeFile(t, dir, "b.lat", "Q2 0.0 1.0 0.0 0.2 0.0 0.0 0.0 0.0 0.0\n")

	lat, err := LoadLattice([]string{f1, f2})
	if err != nil {
		t.Fatalf("LoadLattice: %v", err)
	}
	if lat.Count() != 2 {
		t.Fatalf("expected 2 layers, got %d", lat.Count())
	}
	if lat.Layers()[0].Filename() != f1 || lat.Layers()[1].Filename() != f2 {
		t.Fatalf("layers out of load order")
	}
}

func TestLatticeGetReturnsOneRegionPerLayer(t *testing.T) {
	dir := t.TempDir()
	f1 := writeLatticeFile(t, dir, "a.lat", "Q1 0.0 1.0 0.0 0.1 0.0 0.0 0.0 0.0 0.0\n")
	f2 := writeLatticeFile(t, dir, "b.lat", "Q2 0.0 1.0 0.0 0.2 0.0 0.0 0.0 0.0 0.0\n")
	lat, err := LoadLattice([]string{f1, f2})
	if err != nil {
		t.Fatalf("LoadLattice: %v", err)
	}
	regions := lat.Get(0.5)
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions (one per layer), got %d", len(regions))
	}
	idx0 := regions[0].Index(0.5)
	idx1 := regions[1].Index(0.5)
	if regions[0].K1(idx0) != 0.1 || regions[1].K1(idx1) != 0.2 {
		t.Fatalf("unexpected per-layer field values: %f, %f", regions[0].K1(idx0), regions[1].K1(idx1))
	}
}

func TestWriteRegionsFormat(t *testing.T) {
	dir := t.TempDir()
	f1 := writeLatticeFile(t, dir, "a.lat", "Q1 0.0 1.0 0.0 0.1 0.0 0.0 0.0 0.0 0.0\n")
	lat, err := LoadLattice([]string{f1})
	if err != nil {
		t.Fatalf("LoadLattice: %v", err)
	}
	sink := &recordingSink{}
	lat.WriteRegions(sink)
	if len(sink.lines) != 2 {
		t.Fatalf("expected a [filename] header line plus one region line, got %d lines", len(sink.lines))
	}
	if !strings.HasPrefix(sink.lines[0], "[") {
		t.Fatalf("expected header line to start with '[', got %q", sink.lines[0])
	}
	if !strings.HasPrefix(sink.lines[1], "MAG ") {
		t.Fatalf("expected a MAG region line, got %q", sink.lines[1])
	}
}

func TestLoadLatticePropagatesLayerError(t *testing.T) {
	_, err := LoadLattice([]string{filepath.Join(t.TempDir(), "missing.lat")})
	if err == nil {
		t.Fatalf("expected an error for a missing lattice file")
	}
}
