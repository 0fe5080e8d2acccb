package metrics

import (
	"math"

	"github.com/san-kum/afterimage/internal/dynamo"
)

// KineticEnergy is the mean total kinetic energy of the dynamic bodies.
type KineticEnergy struct {
	name    string
	last    float64
	total   float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(w *dynamo.World) {
	e.last = TotalKineticEnergy(w)
	e.total += e.last
	e.samples++
}

// Last is the energy at the latest observation.
func (e *KineticEnergy) Last() float64 { return e.last }

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.last = 0
	e.total = 0
	e.samples = 0
}

// PeakSpeed is the highest body speed seen.
type PeakSpeed struct {
	name string
	peak float64
}

func NewPeakSpeed() *PeakSpeed {
	return &PeakSpeed{name: "peak_speed"}
}

func (p *PeakSpeed) Name() string { return p.name }

func (p *PeakSpeed) Observe(w *dynamo.World) {
	for _, h := range w.Handles() {
		b := w.Body(h)
		if b.Type != dynamo.Dynamic {
			continue
		}
		p.peak = math.Max(p.peak, b.Speed())
	}
}

func (p *PeakSpeed) Value() float64 { return p.peak }

func (p *PeakSpeed) Reset() { p.peak = 0 }

func TotalKineticEnergy(w *dynamo.World) float64 {
	var sum float64
	for _, h := range w.Handles() {
		sum += w.Body(h).KineticEnergy()
	}
	return sum
}
