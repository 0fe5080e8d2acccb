package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the tolerance used for parallel and degenerate tests.
const Epsilon = 1e-9

// Ray is a half-line Origin + t*Direction, t >= 0. Direction is expected to be normalized.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

func NewRay(origin, direction mgl64.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// At returns the point at parameter t.
func (r Ray) At(t float64) mgl64.Vec3 { return r.Origin.Add(r.Direction.Mul(t)) }

// ToLocal maps the ray into the frame where a body at pos with orientation q is the origin.
// Distances along the ray are preserved since the map is rigid.
func (r Ray) ToLocal(pos mgl64.Vec3, q mgl64.Quat) Ray {
	inv := q.Inverse()
	return Ray{
		Origin:    inv.Rotate(r.Origin.Sub(pos)),
		Direction: inv.Rotate(r.Direction),
	}
}

// IntersectPlane returns the ray parameter of the hit with p.
// Rays parallel to the plane or pointing away from it do not hit.
func (r Ray) IntersectPlane(p Plane) (float64, bool) {
	denom := p.Normal.Dot(r.Direction)
	if math.Abs(denom) < Epsilon {
		return 0, false
	}
	t := -(r.Origin.Dot(p.Normal) + p.Constant) / denom
	if t < 0 {
		return 0, false
	}
	return t, true
}

// IntersectSphere returns the nearest non-negative hit with a sphere.
func (r Ray) IntersectSphere(center mgl64.Vec3, radius float64) (float64, bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Direction)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// IntersectBox is the slab test against an axis-aligned box.
func (r Ray) IntersectBox(min, max mgl64.Vec3) (float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	for i := 0; i < 3; i++ {
		o, d := r.Origin[i], r.Direction[i]
		if math.Abs(d) < Epsilon {
			if o < min[i] || o > max[i] {
				return 0, false
			}
			continue
		}
		t1 := (min[i] - o) / d
		t2 := (max[i] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// IntersectTriangle is Möller–Trumbore, double sided.
func (r Ray) IntersectTriangle(a, b, c mgl64.Vec3) (float64, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < Epsilon {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}
