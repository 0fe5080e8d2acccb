package dynamo

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultMaxForce matches the usual mouse-joint strength.
const DefaultMaxForce = 1e6

// baumgarte is the fraction of positional error corrected per step.
const baumgarte = 0.2

// PointToPoint keeps pivotA on body A and pivotB on body B at the same world point.
type PointToPoint struct {
	handleA, handleB Handle
	bodyA, bodyB     *Body
	PivotA, PivotB   mgl64.Vec3
	MaxForce         float64

	rA, rB  mgl64.Vec3
	impulse mgl64.Vec3
}

// NewPointToPoint links two live bodies of w. Pivots are body-local.
func NewPointToPoint(w *World, a Handle, pivotA mgl64.Vec3, b Handle, pivotB mgl64.Vec3, maxForce float64) (*PointToPoint, error) {
	ba := w.Body(a)
	if ba == nil {
		return nil, fmt.Errorf("point-to-point body A %d: %w", a, ErrUnknownBody)
	}
	bb := w.Body(b)
	if bb == nil {
		return nil, fmt.Errorf("point-to-point body B %d: %w", b, ErrUnknownBody)
	}
	if maxForce <= 0 {
		maxForce = DefaultMaxForce
	}
	c := &PointToPoint{
		handleA:  a,
		handleB:  b,
		bodyA:    ba,
		bodyB:    bb,
		PivotA:   pivotA,
		PivotB:   pivotB,
		MaxForce: maxForce,
	}
	c.Update()
	return c, nil
}

func (c *PointToPoint) Bodies() (Handle, Handle) { return c.handleA, c.handleB }

// Update recomputes the world-space lever arms from the current transforms
// and restarts the impulse budget of the step.
func (c *PointToPoint) Update() {
	c.rA = c.bodyA.Quaternion.Rotate(c.PivotA)
	c.rB = c.bodyB.Quaternion.Rotate(c.PivotB)
	c.impulse = mgl64.Vec3{}
}

// WorldPivots returns the two anchor points in world space.
func (c *PointToPoint) WorldPivots() (mgl64.Vec3, mgl64.Vec3) {
	return c.bodyA.PointToWorld(c.PivotA), c.bodyB.PointToWorld(c.PivotB)
}

// Separation is the distance between the anchors.
func (c *PointToPoint) Separation() float64 {
	pa, pb := c.WorldPivots()
	return pb.Sub(pa).Len()
}

func (c *PointToPoint) Solve(dt float64) {
	a, b := c.bodyA, c.bodyB
	if a.invMass == 0 && b.invMass == 0 {
		return
	}

	pa, pb := c.WorldPivots()
	drift := pb.Sub(pa)
	vrel := b.VelocityAt(c.rB).Sub(a.VelocityAt(c.rA))

	k := armMatrix(a.invMass, a.invInertia, c.rA).Add(armMatrix(b.invMass, b.invInertia, c.rB))
	if k.Det() == 0 {
		return
	}
	impulse := k.Inv().Mul3x1(vrel.Add(drift.Mul(baumgarte / dt)))

	total := c.impulse.Add(impulse)
	if limit := c.MaxForce * dt; total.Len() > limit {
		total = total.Normalize().Mul(limit)
	}
	impulse = total.Sub(c.impulse)
	c.impulse = total

	a.applyImpulse(impulse, c.rA)
	b.applyImpulse(impulse.Mul(-1), c.rB)
}

// armMatrix maps an impulse at lever arm r to the velocity change at that point.
func armMatrix(invMass, invInertia float64, r mgl64.Vec3) mgl64.Mat3 {
	m := mgl64.Ident3().Mul(invMass)
	if invInertia == 0 {
		return m
	}
	rr := r.Dot(r)
	skew := mgl64.Mat3{
		rr - r[0]*r[0], -r[1] * r[0], -r[2] * r[0],
		-r[0] * r[1], rr - r[1]*r[1], -r[2] * r[1],
		-r[0] * r[2], -r[1] * r[2], rr - r[2]*r[2],
	}
	return m.Add(skew.Mul(invInertia))
}
