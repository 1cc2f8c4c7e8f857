package pysynrad

import "sort"

// slice holds one hard-edge magnet element: per-unit-length normal/skew
// dipole and quadrupole strengths, transverse offsets, roll angle and
// physical length. Strengths are stored already divided by length (§4.1).
type slice struct {
	k0, k1   float64
	sk0, sk1 float64
	dh, dv   float64
	angle    float64 // radians
	length   float64
}

// Region is one contiguous stretch of beamline: either a vacuum gap or an
// ordered sequence of hard-edge magnet slices. A Region with no slices is a
// vacuum region and reports all strengths as zero.
type Region struct {
	smin, smax float64
	s          []float64 // slice left edges, strictly increasing
	slices     []slice
}

// NewVacuumRegion returns an empty vacuum region spanning [left, right).
func NewVacuumRegion(left, right float64) *Region {
	return &Region{smin: left, smax: right}
}

// Left returns the region's left arc-length border.
func (r *Region) Left() float64 { return r.smin }

// Right returns the region's right arc-length border.
func (r *Region) Right() float64 { return r.smax }

// IsVacuum reports whether this region carries no magnet slices.
func (r *Region) IsVacuum() bool { return len(r.slices) == 0 }

// Count returns the number of slices in this region.
func (r *Region) Count() int { return len(r.slices) }

// addSlice inserts a slice at arc-length s, keeping r.s sorted, and grows
// the region's envelope to cover it.
func (r *Region) addSlice(s, length, k0, k1, sk0, sk1, angleDeg, dh, dv float64) {
	if len(r.s) == 0 {
		r.smin = s
		r.smax = s + length
	} else {
		if s < r.smin {
			r.smin = s
		}
		if s+length > r.smax {
			r.smax = s + length
		}
	}
	idx := sort.SearchFloat64s(r.s, s)
	r.s = append(r.s, 0)
	copy(r.s[idx+1:], r.s[idx:])
	r.s[idx] = s

	sl := slice{k0: k0, k1: k1, sk0: sk0, sk1: sk1, dh: dh, dv: dv, angle: Deg2rad(angleDeg), length: length}
	r.slices = append(r.slices, slice{})
	copy(r.slices[idx+1:], r.slices[idx:])
	r.slices[idx] = sl
}

// Index returns i such that r.s[i] <= s < r.s[i+1], i.e. the slice active
// at arc-length s. Returns -1 if s precedes every slice or the region has
// none — at which point every accessor below returns its zero default,
// matching a vacuum lookup.
func (r *Region) Index(s float64) int {
	return sort.Search(len(r.s), func(i int) bool { return r.s[i] > s }) - 1
}

func (r *Region) param(index int) (slice, bool) {
	if index < 0 || index >= len(r.slices) {
		return slice{}, false
	}
	return r.slices[index], true
}

// K0 returns the normal dipole strength (1/m) of the slice at index.
func (r *Region) K0(index int) float64 {
	if p, ok := r.param(index); ok {
		return p.k0
	}
	return 0
}

// K1 returns the normal quadrupole strength (1/m^2) of the slice at index.
func (r *Region) K1(index int) float64 {
	if p, ok := r.param(index); ok {
		return p.k1
	}
	return 0
}

// SK0 returns the skew dipole strength of the slice at index.
func (r *Region) SK0(index int) float64 {
	if p, ok := r.param(index); ok {
		return p.sk0
	}
	return 0
}

// SK1 returns the skew quadrupole strength of the slice at index.
func (r *Region) SK1(index int) float64 {
	if p, ok := r.param(index); ok {
		return p.sk1
	}
	return 0
}

// OffsetHorz returns the magnet's horizontal offset (m) at index.
func (r *Region) OffsetHorz(index int) float64 {
	if p, ok := r.param(index); ok {
		return p.dh
	}
	return 0
}

// OffsetVert returns the magnet's vertical offset (m) at index.
func (r *Region) OffsetVert(index int) float64 {
	if p, ok := r.param(index); ok {
		return p.dv
	}
	return 0
}

// Angle returns the magnet's roll about s, in radians, at index.
func (r *Region) Angle(index int) float64 {
	if p, ok := r.param(index); ok {
		return p.angle
	}
	return 0
}

// Length returns the physical length (m) of the slice at index.
func (r *Region) Length(index int) float64 {
	if p, ok := r.param(index); ok {
		return p.length
	}
	return 0
}
