package pysynrad

import "fmt"

// Lattice is an ordered set of layers, each modeling a superposed or
// sequential field source (main magnets, correctors, ...). Get(s) returns
// one region per layer.
type Lattice struct {
	layers []*Layer
}

// LoadLattice loads one layer per filename, in order.
func LoadLattice(filenames []string) (*Lattice, error) {
	lat := &Lattice{}
	for _, fn := range filenames {
		layer, err := LoadLayer(fn)
		if err != nil {
			return nil, fmt.Errorf("lattice: %w", err)
		}
		lat.layers = append(lat.layers, layer)
	}
	return lat, nil
}

// Layers returns the lattice's layers in load order.
func (lat *Lattice) Layers() []*Layer { return lat.layers }

// Count returns the number of layers.
func (lat *Lattice) Count() int { return len(lat.layers) }

// Get returns the covering region of every layer at arc-length s, one
// region per layer, in layer order.
func (lat *Lattice) Get(s float64) []*Region {
	regions := make([]*Region, len(lat.layers))
	for i, layer := range lat.layers {
		regions[i] = layer.Get(s)
	}
	return regions
}

// WriteRegions emits the `regions` numeric output format (spec.md §6): one
// `[filename]` line per layer followed by one `TYPE left right slice_count`
// line per region.
func (lat *Lattice) WriteRegions(sink Sink) {
	for _, layer := range lat.layers {
		sink.Write(fmt.Sprintf("[%s]\n", layer.Filename()))
		for _, r := range layer.Regions() {
			kind := "MAG"
			if r.IsVacuum() {
				kind = "VAC"
			}
			sink.Write(fmt.Sprintf("%s %f %f %d\n", kind, r.Left(), r.Right(), r.Count()))
		}
	}
}
