package pysynrad

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// spectrumNorm is the Roy spectrum normalization constant 9*sqrt(3)/(8*pi).
const spectrumNorm = 9.0 * 1.7320508075688772 / (8.0 * math.Pi)

// Spectrum is the tabulated, normalized universal synchrotron-radiation
// power spectrum (G. J. Roy, Nucl. Inst. Meth. A298 (1990) 128-133),
// together with an inverse-CDF lookup table used to sample photon
// energies (spec.md §4.4).
type Spectrum struct {
	resolution  int
	cutoff      float64
	interpolate bool

	x   []float64 // linear grid on [0, cutoff]
	pdf []float64 // normalized PDF, sums to 1

	lutX []float64 // linear grid on [0, 1]
	lutY []float64 // inverse CDF at lutX

	rng *rand.Rand
	u   distuv.Uniform
}

// NewSpectrum builds and tabulates the spectrum at the given resolution and
// cutoff (in units of omega/omega_c), seeded deterministically.
func NewSpectrum(resolution int, cutoff float64, seed int64, interpolate bool) (*Spectrum, error) {
	if resolution < 2 {
		return nil, fmt.Errorf("spectrum: resolution must be >= 2, got %d", resolution)
	}
	if cutoff <= 0 {
		return nil, fmt.Errorf("spectrum: cutoff must be positive, got %f", cutoff)
	}

	s := &Spectrum{resolution: resolution, cutoff: cutoff, interpolate: interpolate}
	s.rng = rand.New(rand.NewSource(seed))
	s.u = distuv.Uniform{Min: 0, Max: 1, Src: s.rng}

	s.x = make([]float64, resolution)
	floats.Span(s.x, 0, cutoff)

	s.pdf = make([]float64, resolution)
	for i, xi := range s.x {
		if xi <= 0 {
			s.pdf[i] = 0
			continue
		}
		s.pdf[i] = spectrumNorm * xi * besselK53TailIntegral(xi)
	}
	total := floats.Sum(s.pdf)
	if total <= 0 {
		return nil, fmt.Errorf("spectrum: integration failed, total probability mass is %g", total)
	}
	floats.Scale(1/total, s.pdf)

	s.lutX = make([]float64, resolution)
	floats.Span(s.lutX, 0, 1)

	cdf := make([]float64, resolution)
	cum := 0.0
	for i, p := range s.pdf {
		cum += p
		cdf[i] = cum
	}
	s.lutY = make([]float64, resolution)
	for i, p := range s.lutX {
		idx := sort.SearchFloat64s(cdf, p)
		if idx >= resolution {
			idx = resolution - 1
		}
		s.lutY[i] = s.x[idx]
	}

	return s, nil
}

// PDF returns the tabulated (x, pdf) pair for diagnostics.
func (s *Spectrum) PDF() ([]float64, []float64) { return s.x, s.pdf }

// Resolution returns the table resolution R.
func (s *Spectrum) Resolution() int { return s.resolution }

// Random draws `number` photon energies (GeV) from the spectrum scaled by
// criticalE, discarding draws whose uniform variate lies below the table
// position of cutoffE/criticalE (spec.md §4.4). That position is the last
// table entry not above the cutoff, so a kept energy can lie below cutoffE
// by up to the gap between the two table entries that bracket it.
func (s *Spectrum) Random(criticalE float64, number int, cutoffE float64) []float64 {
	uCut := s.cutoffFraction(criticalE, cutoffE)
	result := make([]float64, 0, number)
	for n := 0; n < number; n++ {
		u := s.u.Rand()
		if u < uCut {
			continue
		}
		i := int(u * float64(s.resolution))
		if i >= s.resolution {
			i = s.resolution - 1
		}
		if !s.interpolate {
			result = append(result, criticalE*s.lutY[i])
			continue
		}
		r := i + 1
		if r > s.resolution-1 {
			r = s.resolution - 1
		}
		l := r - 1
		if l < 0 {
			l = 0
		}
		var y float64
		if s.lutX[r] == s.lutX[l] {
			y = s.lutY[l]
		} else {
			frac := (u - s.lutX[l]) / (s.lutX[r] - s.lutX[l])
			y = s.lutY[l] + frac*(s.lutY[r]-s.lutY[l])
		}
		result = append(result, criticalE*y)
	}
	return result
}

// cutoffFraction returns the fraction-of-unity below which draws are
// discarded as falling under the configured low-energy cutoff.
func (s *Spectrum) cutoffFraction(criticalE, cutoffE float64) float64 {
	searchValue := cutoffE / criticalE
	j := sort.Search(len(s.lutY), func(i int) bool { return s.lutY[i] > searchValue })
	if j == 0 {
		return s.lutX[0]
	}
	return s.lutX[j-1]
}

// WriteLUT emits the `spectrum_lut` numeric output format (spec.md §6):
// resolution on the first line, then one inverse-CDF value per line.
func (s *Spectrum) WriteLUT(sink Sink) {
	sink.Write(fmt.Sprintf("%d\n", s.resolution))
	for _, y := range s.lutY {
		sink.Write(fmt.Sprintf("%f\n", y))
	}
}
