// Package trail keeps a fixed-capacity ring of sampled body transforms that
// frontends draw as an instanced afterimage.
package trail

import (
	"errors"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/afterimage/internal/dynamo"
)

// DefaultStepsPerObject is used when Options leaves StepsPerObject unset.
const DefaultStepsPerObject = 10

var ErrFrozen = errors.New("trail: tracked set is frozen after build")

// BodySource resolves handles to bodies. *dynamo.World satisfies it.
type BodySource interface {
	Body(h dynamo.Handle) *dynamo.Body
}

type Options struct {
	StepsPerObject int
	Logger         *log.Logger
}

// Instance is one sampled transform.
type Instance struct {
	Position   mgl64.Vec3
	Quaternion mgl64.Quat
}

// Matrix is the model matrix of the instance.
func (in Instance) Matrix() mgl64.Mat4 {
	return mgl64.Translate3D(in.Position[0], in.Position[1], in.Position[2]).Mul4(in.Quaternion.Mat4())
}

type Trail struct {
	source         BodySource
	stepsPerObject int
	logger         *log.Logger

	tracked   []dynamo.Handle
	instances []Instance
	built     bool
	cursor    int
	visible   int
}

func New(source BodySource, opts Options) *Trail {
	if opts.StepsPerObject <= 0 {
		opts.StepsPerObject = DefaultStepsPerObject
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Trail{source: source, stepsPerObject: opts.StepsPerObject, logger: logger}
}

// Track adds a body to the sampled set. It fails with ErrFrozen after BuildMesh.
func (t *Trail) Track(h dynamo.Handle) error {
	if t.built {
		t.logger.Warn("track after build ignored", "handle", h, "tracked", len(t.tracked))
		return ErrFrozen
	}
	t.tracked = append(t.tracked, h)
	return nil
}

// BuildMesh freezes the tracked set and allocates the ring. Calling it again
// reallocates with the same set.
func (t *Trail) BuildMesh() {
	t.instances = make([]Instance, len(t.tracked)*t.stepsPerObject)
	t.built = true
	t.cursor = 0
	t.visible = 0
}

// ResetCounter restarts the ring without releasing storage.
func (t *Trail) ResetCounter() {
	if !t.built {
		return
	}
	t.cursor = 0
	t.visible = 0
}

// PhysicsStepped samples every tracked body into the ring.
func (t *Trail) PhysicsStepped(float64) {
	capacity := len(t.instances)
	if !t.built || capacity == 0 {
		return
	}
	n := len(t.tracked)
	for i, h := range t.tracked {
		var in Instance
		if b := t.source.Body(h); b != nil {
			in = Instance{Position: b.Position, Quaternion: b.Quaternion}
		} else {
			in = Instance{Quaternion: mgl64.QuatIdent()}
		}
		t.instances[(t.cursor+i)%capacity] = in
	}
	t.cursor = (t.cursor + n) % capacity
	t.visible = min(t.visible+n, capacity)
}

// Instances returns a copy of the visible prefix of the ring in storage order.
func (t *Trail) Instances() []Instance {
	return slices.Clone(t.instances[:t.visible])
}

// Ordered returns a copy of the visible instances, oldest step first.
func (t *Trail) Ordered() []Instance {
	out := make([]Instance, 0, t.visible)
	if t.visible < len(t.instances) {
		return append(out, t.instances[:t.visible]...)
	}
	out = append(out, t.instances[t.cursor:]...)
	return append(out, t.instances[:t.cursor]...)
}

func (t *Trail) Tracked() []dynamo.Handle {
	out := make([]dynamo.Handle, len(t.tracked))
	copy(out, t.tracked)
	return out
}

func (t *Trail) Built() bool         { return t.built }
func (t *Trail) Capacity() int       { return len(t.instances) }
func (t *Trail) Cursor() int         { return t.cursor }
func (t *Trail) VisibleCount() int   { return t.visible }
func (t *Trail) StepsPerObject() int { return t.stepsPerObject }

// Fill is the visible fraction of the ring.
func (t *Trail) Fill() float64 {
	if len(t.instances) == 0 {
		return 0
	}
	return float64(t.visible) / float64(len(t.instances))
}
