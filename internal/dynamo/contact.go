package dynamo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// penetrationSlop is the overlap tolerated before positions are corrected.
	penetrationSlop = 0.005
	// correctionRate is the fraction of overlap removed per step.
	correctionRate = 0.8
	// restitutionThreshold keeps resting contacts from bouncing forever.
	restitutionThreshold = 0.05
)

// contact pushes body a away from body b along normal.
type contact struct {
	a, b       *Body
	normal     mgl64.Vec3
	ra, rb     mgl64.Vec3
	depth      float64
	bias       float64
	normalMass float64
	impulse    float64
}

func (w *World) findContacts() {
	w.contacts = w.contacts[:0]
	for i, a := range w.bodies {
		if a == nil || a.Type != Dynamic || a.IsSleeping() {
			continue
		}
		if _, ok := a.Shape.(HalfSpace); ok {
			continue
		}
		for j, b := range w.bodies {
			if j == i || b == nil || !a.collidesWith(b) {
				continue
			}
			if hs, ok := b.Shape.(HalfSpace); ok {
				w.planeContacts(a, b, hs)
				continue
			}
			if b.Type == Dynamic && !b.IsSleeping() && j < i {
				continue
			}
			w.sphereContact(a, b)
		}
	}
}

// contactCandidates returns the world points of a that may touch a plane with normal n.
func contactCandidates(a *Body, n mgl64.Vec3) []mgl64.Vec3 {
	if poly, ok := a.Shape.(Polytope); ok {
		verts := poly.Vertices()
		out := make([]mgl64.Vec3, len(verts))
		for i, v := range verts {
			out[i] = a.PointToWorld(v)
		}
		return out
	}
	local := a.Shape.Support(a.Quaternion.Inverse().Rotate(n.Mul(-1)))
	return []mgl64.Vec3{a.PointToWorld(local)}
}

func halfSpaceNormal(b *Body, hs HalfSpace) mgl64.Vec3 {
	return b.Quaternion.Rotate(hs.LocalNormal())
}

func (w *World) planeContacts(a, b *Body, hs HalfSpace) {
	n := halfSpaceNormal(b, hs)
	if a.Position.Sub(b.Position).Dot(n) > a.Shape.BoundingRadius() {
		return
	}
	for _, p := range contactCandidates(a, n) {
		d := p.Sub(b.Position).Dot(n)
		if d >= 0 {
			continue
		}
		w.contacts = append(w.contacts, contact{
			a:      a,
			b:      b,
			normal: n,
			ra:     p.Sub(a.Position),
			rb:     p.Sub(b.Position),
			depth:  -d,
		})
	}
}

func (w *World) sphereContact(a, b *Body) {
	ra, rb := a.Shape.BoundingRadius(), b.Shape.BoundingRadius()
	delta := a.Position.Sub(b.Position)
	dist := delta.Len()
	overlap := ra + rb - dist
	if overlap <= 0 {
		return
	}
	n := mgl64.Vec3{0, 1, 0}
	if dist > 1e-9 {
		n = delta.Mul(1 / dist)
	}
	if b.IsSleeping() {
		b.WakeUp()
	}
	p := b.Position.Add(n.Mul(rb - overlap/2))
	w.contacts = append(w.contacts, contact{
		a:      a,
		b:      b,
		normal: n,
		ra:     p.Sub(a.Position),
		rb:     p.Sub(b.Position),
		depth:  overlap,
	})
}

func (c *contact) relativeVelocity() mgl64.Vec3 {
	return c.a.VelocityAt(c.ra).Sub(c.b.VelocityAt(c.rb))
}

func (c *contact) prepare(restitution float64) {
	k := c.a.effectiveMass(c.ra, c.normal) + c.b.effectiveMass(c.rb, c.normal)
	c.normalMass = 0
	if k > 0 {
		c.normalMass = 1 / k
	}
	c.impulse = 0
	c.bias = 0
	if vn := c.relativeVelocity().Dot(c.normal); vn < -restitutionThreshold {
		c.bias = -restitution * vn
	}
}

func (c *contact) solve(friction float64) {
	if c.normalMass == 0 {
		return
	}
	vn := c.relativeVelocity().Dot(c.normal)
	total := math.Max(c.impulse+c.normalMass*(c.bias-vn), 0)
	delta := total - c.impulse
	c.impulse = total
	p := c.normal.Mul(delta)
	c.a.applyImpulse(p, c.ra)
	c.b.applyImpulse(p.Mul(-1), c.rb)

	if friction <= 0 || c.impulse == 0 {
		return
	}
	vrel := c.relativeVelocity()
	vt := vrel.Sub(c.normal.Mul(vrel.Dot(c.normal)))
	speed := vt.Len()
	if speed < 1e-9 {
		return
	}
	t := vt.Mul(1 / speed)
	k := c.a.effectiveMass(c.ra, t) + c.b.effectiveMass(c.rb, t)
	if k == 0 {
		return
	}
	limit := friction * c.impulse
	jt := math.Max(-speed/k, -limit)
	c.a.applyImpulse(t.Mul(jt), c.ra)
	c.b.applyImpulse(t.Mul(-jt), c.rb)
}

// correctPositions pushes overlapping bodies apart after integration.
func (w *World) correctPositions() {
	for i, a := range w.bodies {
		if a == nil || a.Type != Dynamic || a.IsSleeping() {
			continue
		}
		if _, ok := a.Shape.(HalfSpace); ok {
			continue
		}
		for j, b := range w.bodies {
			if j == i || b == nil || !a.collidesWith(b) {
				continue
			}
			hs, ok := b.Shape.(HalfSpace)
			if !ok {
				w.separateSpheres(a, b, i, j)
				continue
			}
			n := halfSpaceNormal(b, hs)
			deepest := 0.0
			for _, p := range contactCandidates(a, n) {
				deepest = math.Max(deepest, -p.Sub(b.Position).Dot(n))
			}
			if deepest > penetrationSlop {
				a.Position = a.Position.Add(n.Mul((deepest - penetrationSlop) * correctionRate))
			}
		}
	}
}

func (w *World) separateSpheres(a, b *Body, i, j int) {
	if b.Type == Dynamic && j < i {
		return
	}
	delta := a.Position.Sub(b.Position)
	dist := delta.Len()
	overlap := a.Shape.BoundingRadius() + b.Shape.BoundingRadius() - dist
	if overlap <= penetrationSlop || dist < 1e-9 {
		return
	}
	total := a.invMass + b.invMass
	if total == 0 {
		return
	}
	n := delta.Mul(1 / dist)
	shift := (overlap - penetrationSlop) * correctionRate / total
	a.Position = a.Position.Add(n.Mul(shift * a.invMass))
	if b.Type == Dynamic {
		b.Position = b.Position.Sub(n.Mul(shift * b.invMass))
	}
}
