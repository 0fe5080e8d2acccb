// Package picker turns pointer input into hover focus and drag constraints.
//
// A Picker is Idle until the pointer hovers a pickable object (Hovering).
// Pressing on an object attaches a point-to-point constraint between the
// object's body and a zero-mass joint body (Dragging); moving drags the joint
// across a camera-facing plane, and releasing removes the constraint.
package picker

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/afterimage/internal/camera"
	"github.com/san-kum/afterimage/internal/dynamo"
	"github.com/san-kum/afterimage/internal/input"
	"github.com/san-kum/afterimage/internal/physics"
	"github.com/san-kum/afterimage/internal/vmath"
)

const (
	DefaultPlaneSize   = 100
	DefaultJointRadius = 0.1
)

type State int

const (
	Idle State = iota
	Hovering
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Hovering:
		return "hovering"
	case Dragging:
		return "dragging"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Focusable is implemented by objects that show focus feedback.
type Focusable interface {
	SetFocus()
	ClearFocus()
}

// Pickable is an object the pointer ray can hit and drag.
type Pickable interface {
	Focusable
	Body() dynamo.Handle
	// IntersectRay returns the ray parameter of the nearest hit in world space.
	IntersectRay(r vmath.Ray) (float64, bool)
}

type CursorStyle int

const (
	CursorDefault CursorStyle = iota
	CursorGrab
	CursorGrabbing
)

func (c CursorStyle) String() string {
	switch c {
	case CursorGrab:
		return "grab"
	case CursorGrabbing:
		return "grabbing"
	}
	return "default"
}

// Cursor receives pointer feedback.
type Cursor interface {
	SetCursor(style CursorStyle)
}

// OrbitToggler is the camera control suspended while dragging.
type OrbitToggler interface {
	SetEnabled(enabled bool)
}

type Options struct {
	Objects     []Pickable
	PlaneSize   float64
	JointRadius float64
	MaxForce    float64
	Cursor      Cursor
	Orbit       OrbitToggler
	Logger      *log.Logger
}

// Hit is the nearest intersection of the pointer ray.
type Hit struct {
	Object   Pickable
	Index    int
	Point    mgl64.Vec3
	Distance float64
}

type Picker struct {
	world     *dynamo.World
	camera    *camera.Camera
	objects   []Pickable
	planeSize float64
	maxForce  float64
	cursor    Cursor
	orbit     OrbitToggler
	logger    *log.Logger

	joint      dynamo.Handle
	constraint *dynamo.PointToPoint
	plane      vmath.Quad
	focus      Pickable
	state      State
}

// New creates a picker and adds its joint body to world.
func New(world *dynamo.World, cam *camera.Camera, opts Options) *Picker {
	if opts.PlaneSize <= 0 {
		opts.PlaneSize = DefaultPlaneSize
	}
	if opts.JointRadius <= 0 {
		opts.JointRadius = DefaultJointRadius
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	joint := dynamo.NewBody(0, physics.NewSphere(opts.JointRadius))
	joint.CollisionGroup, joint.CollisionMask = 0, 0

	return &Picker{
		world:     world,
		camera:    cam,
		objects:   opts.Objects,
		planeSize: opts.PlaneSize,
		maxForce:  opts.MaxForce,
		cursor:    opts.Cursor,
		orbit:     opts.Orbit,
		logger:    logger,
		joint:     world.AddBody(joint),
		plane:     vmath.Quad{Orientation: mgl64.QuatIdent(), HalfSize: opts.PlaneSize / 2},
	}
}

func (p *Picker) State() State { return p.state }

func (p *Picker) IsDragging() bool { return p.state == Dragging }

// Focus returns the focused object or nil.
func (p *Picker) Focus() Pickable { return p.focus }

// Constraint returns the active drag constraint or nil.
func (p *Picker) Constraint() *dynamo.PointToPoint { return p.constraint }

func (p *Picker) JointBody() dynamo.Handle { return p.joint }

func (p *Picker) MovementPlane() vmath.Quad { return p.plane }

func (p *Picker) Objects() []Pickable { return p.objects }

// HandlePointer routes a pointer event to the matching transition.
func (p *Picker) HandlePointer(ev input.PointerEvent) {
	switch ev.Kind {
	case input.Down:
		p.PointerDown(ev.Pointer)
	case input.Move:
		p.PointerMove(ev.Pointer)
	case input.Up:
		p.PointerUp(ev.Pointer)
	}
}

// PointerDown starts a drag on the object under the pointer. It does nothing
// once the picker is closed.
func (p *Picker) PointerDown(ptr input.Pointer) {
	if p.joint == dynamo.NoBody {
		return
	}
	if p.state == Dragging {
		p.logger.Debug("pointer down while dragging ignored")
		return
	}
	hit, ok := p.Intersect(ptr, p.objects)
	if !ok {
		return
	}
	body := p.world.Body(hit.Object.Body())
	if body == nil {
		p.logger.Warn("pickable without body", "handle", hit.Object.Body())
		return
	}

	p.setOrbit(true)
	p.setFocus(hit.Object)
	p.setCursor(CursorGrabbing)

	p.plane.Center = hit.Point
	p.plane.Orientation = p.camera.Quaternion()

	if err := p.addJointConstraint(hit.Point, hit.Object.Body(), body); err != nil {
		p.logger.Warn("drag constraint rejected", "err", err)
		p.setOrbit(false)
		p.clearFocus()
		return
	}
	p.setState(Dragging)
}

// PointerMove drags the joint while dragging, otherwise updates hover focus.
func (p *Picker) PointerMove(ptr input.Pointer) {
	if p.joint == dynamo.NoBody {
		return
	}
	if p.state == Dragging {
		if _, point, ok := p.plane.IntersectRay(p.camera.Ray(ptr.X, ptr.Y)); ok {
			p.moveJoint(point)
		}
		return
	}
	if hit, ok := p.Intersect(ptr, p.objects); ok {
		p.setFocus(hit.Object)
	} else {
		p.clearFocus()
	}
}

// PointerUp ends a drag. It does nothing when no drag is active.
func (p *Picker) PointerUp(input.Pointer) {
	if p.state != Dragging {
		return
	}
	p.setOrbit(false)
	p.setState(Idle)
	p.clearFocus()
	p.removeJointConstraint()
}

// Intersect returns the nearest object hit by the pointer ray. Equal
// distances resolve to the earlier object in the list.
func (p *Picker) Intersect(ptr input.Pointer, objects []Pickable) (Hit, bool) {
	r := p.camera.Ray(ptr.X, ptr.Y)
	best := Hit{Index: -1, Distance: math.Inf(1)}
	for i, o := range objects {
		t, ok := o.IntersectRay(r)
		if ok && t < best.Distance {
			best = Hit{Object: o, Index: i, Distance: t}
		}
	}
	if best.Object == nil {
		return Hit{}, false
	}
	best.Point = r.At(best.Distance)
	return best, true
}

func (p *Picker) setFocus(o Pickable) {
	if p.focus == o {
		return
	}
	p.clearFocus()
	p.focus = o
	o.SetFocus()
	p.setCursor(CursorGrab)
	if p.state != Dragging {
		p.setState(Hovering)
	}
}

func (p *Picker) clearFocus() {
	if p.focus == nil {
		return
	}
	p.focus.ClearFocus()
	p.focus = nil
	p.setCursor(CursorDefault)
	if p.state != Dragging {
		p.setState(Idle)
	}
}

func (p *Picker) addJointConstraint(point mgl64.Vec3, h dynamo.Handle, body *dynamo.Body) error {
	pivot := body.Quaternion.Inverse().Rotate(point.Sub(body.Position))
	p.world.Body(p.joint).SetTransform(point, mgl64.QuatIdent())

	c, err := dynamo.NewPointToPoint(p.world, h, pivot, p.joint, mgl64.Vec3{}, p.maxForce)
	if err != nil {
		return err
	}
	if err := p.world.AddConstraint(c); err != nil {
		return err
	}
	p.constraint = c
	return nil
}

func (p *Picker) moveJoint(point mgl64.Vec3) {
	p.world.Body(p.joint).SetTransform(point, mgl64.QuatIdent())
	if p.constraint != nil {
		p.constraint.Update()
	}
}

func (p *Picker) removeJointConstraint() {
	if p.constraint == nil {
		return
	}
	if err := p.world.RemoveConstraint(p.constraint); err != nil {
		p.logger.Warn("drag constraint already gone", "err", err)
	}
	p.constraint = nil
}

func (p *Picker) setState(s State) {
	if p.state == s {
		return
	}
	p.logger.Debug("picker state", "from", p.state, "to", s)
	p.state = s
}

func (p *Picker) setCursor(style CursorStyle) {
	if p.cursor != nil {
		p.cursor.SetCursor(style)
	}
}

// setOrbit suspends the orbit controls while a drag is held.
func (p *Picker) setOrbit(dragging bool) {
	if p.orbit != nil {
		p.orbit.SetEnabled(!dragging)
	}
}

// Close releases any drag and removes the joint body from the world.
func (p *Picker) Close() error {
	if p.state == Dragging {
		p.PointerUp(input.Pointer{})
	}
	p.clearFocus()
	if p.joint == dynamo.NoBody {
		return nil
	}
	err := p.world.RemoveBody(p.joint)
	p.joint = dynamo.NoBody
	return err
}
