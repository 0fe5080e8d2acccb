package dynamo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AllGroups is the default collision mask.
const AllGroups = ^uint32(0)

type Body struct {
	Type  BodyType
	Shape Shape
	Mass  float64

	Position             mgl64.Vec3
	PreviousPosition     mgl64.Vec3
	InterpolatedPosition mgl64.Vec3
	InitPosition         mgl64.Vec3

	Quaternion             mgl64.Quat
	PreviousQuaternion     mgl64.Quat
	InterpolatedQuaternion mgl64.Quat
	InitQuaternion         mgl64.Quat

	Velocity            mgl64.Vec3
	InitVelocity        mgl64.Vec3
	AngularVelocity     mgl64.Vec3
	InitAngularVelocity mgl64.Vec3

	Force  mgl64.Vec3
	Torque mgl64.Vec3

	CollisionGroup uint32
	CollisionMask  uint32

	SleepState     SleepState
	timeLastSleepy float64

	invMass    float64
	invInertia float64
}

// NewBody creates a body of the given mass. Zero mass makes it static.
// Inertia is approximated by a solid sphere of the shape's bounding radius.
func NewBody(mass float64, shape Shape) *Body {
	b := &Body{
		Shape:          shape,
		Mass:           mass,
		CollisionGroup: 1,
		CollisionMask:  AllGroups,
	}
	b.Reset()
	b.SetMass(mass)
	return b
}

// SetMass updates mass and type. Kinematic bodies keep their type.
func (b *Body) SetMass(mass float64) {
	b.Mass = mass
	if mass <= 0 {
		b.Mass = 0
		if b.Type != Kinematic {
			b.Type = Static
		}
	} else {
		b.Type = Dynamic
	}
	b.updateInverse()
}

func (b *Body) updateInverse() {
	b.invMass, b.invInertia = 0, 0
	if b.Type != Dynamic {
		return
	}
	b.invMass = 1 / b.Mass
	r := 0.0
	if b.Shape != nil {
		r = b.Shape.BoundingRadius()
	}
	if inertia := 0.4 * b.Mass * r * r; inertia > 0 && !math.IsInf(inertia, 0) {
		b.invInertia = 1 / inertia
	}
}

// Reset returns the body to the origin at rest, wiping all derived state.
func (b *Body) Reset() {
	var zero mgl64.Vec3
	ident := mgl64.QuatIdent()

	b.Position = zero
	b.PreviousPosition = zero
	b.InterpolatedPosition = zero
	b.InitPosition = zero

	b.Quaternion = ident
	b.PreviousQuaternion = ident
	b.InterpolatedQuaternion = ident
	b.InitQuaternion = ident

	b.Velocity = zero
	b.InitVelocity = zero
	b.AngularVelocity = zero
	b.InitAngularVelocity = zero

	b.Force = zero
	b.Torque = zero

	b.SleepState = Awake
	b.timeLastSleepy = 0
}

// SetTransform teleports the body, keeping the interpolation history consistent.
func (b *Body) SetTransform(pos mgl64.Vec3, q mgl64.Quat) {
	b.Position, b.PreviousPosition, b.InterpolatedPosition = pos, pos, pos
	b.Quaternion, b.PreviousQuaternion, b.InterpolatedQuaternion = q, q, q
}

// ApplyForce adds force at a point relative to the center of mass.
// Only dynamic bodies accept forces; a sleeping body wakes up.
func (b *Body) ApplyForce(force, relativePoint mgl64.Vec3) {
	if b.Type != Dynamic {
		return
	}
	if b.SleepState == Sleeping {
		b.WakeUp()
	}
	b.Force = b.Force.Add(force)
	b.Torque = b.Torque.Add(relativePoint.Cross(force))
}

func (b *Body) applyImpulse(impulse, relativePoint mgl64.Vec3) {
	if b.Type != Dynamic {
		return
	}
	b.Velocity = b.Velocity.Add(impulse.Mul(b.invMass))
	b.AngularVelocity = b.AngularVelocity.Add(relativePoint.Cross(impulse).Mul(b.invInertia))
}

// PointToWorld maps a body-local point to world space.
func (b *Body) PointToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return b.Position.Add(b.Quaternion.Rotate(local))
}

// PointToLocal maps a world point to body-local space.
func (b *Body) PointToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return b.Quaternion.Inverse().Rotate(world.Sub(b.Position))
}

// VelocityAt is the world velocity of a point at offset r from the center.
func (b *Body) VelocityAt(r mgl64.Vec3) mgl64.Vec3 {
	return b.Velocity.Add(b.AngularVelocity.Cross(r))
}

func (b *Body) WakeUp() {
	b.SleepState = Awake
}

func (b *Body) Sleep() {
	b.SleepState = Sleeping
	b.Velocity = mgl64.Vec3{}
	b.AngularVelocity = mgl64.Vec3{}
}

func (b *Body) IsSleeping() bool { return b.SleepState == Sleeping }

func (b *Body) InverseMass() float64 { return b.invMass }

func (b *Body) KineticEnergy() float64 {
	if b.Type != Dynamic {
		return 0
	}
	e := 0.5 * b.Mass * b.Velocity.Dot(b.Velocity)
	if b.invInertia > 0 {
		e += 0.5 / b.invInertia * b.AngularVelocity.Dot(b.AngularVelocity)
	}
	return e
}

func (b *Body) Speed() float64 { return b.Velocity.Len() }

// IsValid reports whether every component of the state is finite.
func (b *Body) IsValid() bool {
	for _, v := range [][3]float64{b.Position, b.Velocity, b.AngularVelocity, b.Quaternion.V} {
		for _, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return false
			}
		}
	}
	return !math.IsNaN(b.Quaternion.W)
}

func (b *Body) collidesWith(o *Body) bool {
	return b.CollisionGroup&o.CollisionMask != 0 && o.CollisionGroup&b.CollisionMask != 0
}

// effectiveMass is the scalar mass seen along direction n at offset r.
func (b *Body) effectiveMass(r, n mgl64.Vec3) float64 {
	rn := r.Cross(n)
	return b.invMass + b.invInertia*rn.Dot(rn)
}
