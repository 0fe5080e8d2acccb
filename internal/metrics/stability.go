package metrics

import (
	"math"

	"github.com/san-kum/afterimage/internal/dynamo"
)

// Stability is the fraction of observations in which every dynamic body
// stayed within threshold of the origin on the horizontal axes. Bodies
// tunnelling through a wall show up as violations.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(w *dynamo.World) {
	s.samples++
	for _, h := range w.Handles() {
		b := w.Body(h)
		if b.Type != dynamo.Dynamic {
			continue
		}
		if math.Abs(b.Position[0]) > s.threshold || math.Abs(b.Position[2]) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
