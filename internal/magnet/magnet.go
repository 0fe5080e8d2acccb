// Package magnet pulls free bodies toward the point under the pointer.
package magnet

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/afterimage/internal/camera"
	"github.com/san-kum/afterimage/internal/dynamo"
	"github.com/san-kum/afterimage/internal/input"
	"github.com/san-kum/afterimage/internal/physics"
	"github.com/san-kum/afterimage/internal/vmath"
)

// DefaultGain is the spring constant of the pull.
const DefaultGain = 5

type PointerSource interface {
	Pointer() input.Pointer
}

type Options struct {
	Gain float64
	// Probe adds a kinematic marker body that follows the pointer point.
	Probe bool
}

type Magnet struct {
	world   *dynamo.World
	camera  *camera.Camera
	pointer PointerSource
	gain    float64

	mouse3D  mgl64.Vec3
	hasMouse bool
	probe    dynamo.Handle
}

func New(world *dynamo.World, cam *camera.Camera, pointer PointerSource, opts Options) *Magnet {
	if opts.Gain == 0 {
		opts.Gain = DefaultGain
	}
	m := &Magnet{world: world, camera: cam, pointer: pointer, gain: opts.Gain, probe: dynamo.NoBody}
	if opts.Probe {
		b := dynamo.NewBody(0, physics.NewSphere(0.05))
		b.Type = dynamo.Kinematic
		b.CollisionGroup, b.CollisionMask = 0, 0
		m.probe = world.AddBody(b)
	}
	return m
}

// Plane is the surface the pointer is projected on: through the world
// origin, facing the camera position.
func (m *Magnet) Plane() vmath.Plane {
	return vmath.PlaneFromPointNormal(mgl64.Vec3{}, m.camera.Position)
}

// UpdateMouse3D refreshes the cached pointer point. When the pointer ray
// misses the plane the previous point is kept and false is returned.
func (m *Magnet) UpdateMouse3D() bool {
	p := m.pointer.Pointer()
	point, ok := m.camera.ProjectPointer(p.X, p.Y, m.Plane())
	if !ok {
		return false
	}
	m.mouse3D = point
	m.hasMouse = true
	if probe := m.world.Body(m.probe); probe != nil {
		probe.SetTransform(point, mgl64.QuatIdent())
	}
	return true
}

// Mouse3D returns the cached pointer point and whether one was ever resolved.
func (m *Magnet) Mouse3D() (mgl64.Vec3, bool) { return m.mouse3D, m.hasMouse }

func (m *Magnet) Gain() float64 { return m.gain }

func (m *Magnet) Probe() dynamo.Handle { return m.probe }

// ForceAt is the pull felt by a body at pos.
func (m *Magnet) ForceAt(pos mgl64.Vec3) mgl64.Vec3 {
	return pos.Sub(m.mouse3D).Mul(-m.gain)
}

// ApplyForce adds the pull to each body's force accumulator for this step.
func (m *Magnet) ApplyForce(bodies []dynamo.Handle) {
	if len(bodies) == 0 {
		return
	}
	if !m.UpdateMouse3D() {
		return
	}
	for _, h := range bodies {
		b := m.world.Body(h)
		if b == nil {
			continue
		}
		b.ApplyForce(m.ForceAt(b.Position), mgl64.Vec3{})
	}
}

// Close removes the probe body, if any.
func (m *Magnet) Close() error {
	if m.probe == dynamo.NoBody {
		return nil
	}
	err := m.world.RemoveBody(m.probe)
	m.probe = dynamo.NoBody
	return err
}
