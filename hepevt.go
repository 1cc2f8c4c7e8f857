package pysynrad

import (
	"bufio"
	"fmt"
	"os"
)

// Photon is one emitted photon's momentum (GeV).
type Photon struct {
	Px, Py, Pz float64
}

// Event is one HepEvt-format event record: a vertex plus an ordered list
// of photons. NumPhotons/CriticalE are non-nil only in compact emission
// mode (spec.md §4.5, §9).
type Event struct {
	Vx, Vy, Vz float64
	Photons    []Photon
	NumPhotons *int
	CriticalE  *float64

	writer *HepEvt
}

// Add appends a photon to the event.
func (e *Event) Add(px, py, pz float64) {
	e.Photons = append(e.Photons, Photon{px, py, pz})
}

// Commit writes the event to its originating HepEvt writer.
func (e *Event) Commit() {
	if e.writer != nil {
		e.writer.write(e)
	}
}

// HepEvt is the text event sink (spec.md §6 HepEvt format). A disabled or
// unopened writer silently discards writes.
type HepEvt struct {
	enabled  bool
	filename string
	f        *os.File
	w        *bufio.Writer
}

// NewHepEvt returns a HepEvt writer for the given configuration.
func NewHepEvt(enabled bool, filename string) *HepEvt {
	return &HepEvt{enabled: enabled, filename: filename}
}

// Open creates the backing file if this sink is enabled.
func (h *HepEvt) Open() error {
	if !h.enabled {
		return nil
	}
	f, err := os.Create(h.filename)
	if err != nil {
		return fmt.Errorf("hepevt: opening %s: %w", h.filename, err)
	}
	h.f = f
	h.w = bufio.NewWriter(f)
	return nil
}

// NewEvent returns a new Event bound to this writer, at vertex (vx,vy,vz)
// in meters. numPhotons/criticalE are included in the header line only
// when non-nil (compact emission mode).
func (h *HepEvt) NewEvent(vx, vy, vz float64, numPhotons *int, criticalE *float64) *Event {
	return &Event{Vx: vx, Vy: vy, Vz: vz, NumPhotons: numPhotons, CriticalE: criticalE, writer: h}
}

func (h *HepEvt) write(e *Event) {
	if h.w == nil {
		return
	}
	extra := ""
	if e.NumPhotons != nil {
		extra += fmt.Sprintf(" %d", *e.NumPhotons)
	}
	if e.CriticalE != nil {
		extra += fmt.Sprintf(" %.6e", *e.CriticalE)
	}
	fmt.Fprintf(h.w, "%d %.6e %.6e %.6e%s\n", len(e.Photons), e.Vx, e.Vy, e.Vz, extra)
	for _, p := range e.Photons {
		fmt.Fprintf(h.w, "%.6e %.6e %.6e\n", p.Px, p.Py, p.Pz)
	}
}

// Close flushes and closes the backing file, if any.
func (h *HepEvt) Close() error {
	if h.f == nil {
		return nil
	}
	if err := h.w.Flush(); err != nil {
		return err
	}
	return h.f.Close()
}
