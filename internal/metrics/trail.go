package metrics

import (
	"github.com/san-kum/afterimage/internal/dynamo"
	"github.com/san-kum/afterimage/internal/trail"
)

// TrailFill reports the visible fraction of the trail ring at the latest
// observation.
type TrailFill struct {
	name  string
	trail *trail.Trail
	fill  float64
}

func NewTrailFill(t *trail.Trail) *TrailFill {
	return &TrailFill{name: "trail_fill", trail: t}
}

func (f *TrailFill) Name() string { return f.name }

func (f *TrailFill) Observe(*dynamo.World) { f.fill = f.trail.Fill() }

func (f *TrailFill) Value() float64 { return f.fill }

func (f *TrailFill) Reset() { f.fill = 0 }

// DragError is the mean pivot separation of the active constraints, a
// measure of how far dragged bodies lag the pointer.
type DragError struct {
	name    string
	sum     float64
	samples int
}

func NewDragError() *DragError {
	return &DragError{name: "drag_error"}
}

func (d *DragError) Name() string { return d.name }

func (d *DragError) Observe(w *dynamo.World) {
	for _, c := range w.Constraints() {
		p, ok := c.(*dynamo.PointToPoint)
		if !ok {
			continue
		}
		d.sum += p.Separation()
		d.samples++
	}
}

func (d *DragError) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return d.sum / float64(d.samples)
}

func (d *DragError) Reset() {
	d.sum = 0
	d.samples = 0
}

// Standard returns the metrics recorded for every run.
func Standard(t *trail.Trail, halfWidth float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewKineticEnergy(),
		NewPeakSpeed(),
		NewTrailFill(t),
		NewStability(halfWidth),
		NewDragError(),
	}
}
