package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Plane is the set of points x with Normal·x + Constant = 0.
type Plane struct {
	Normal   mgl64.Vec3
	Constant float64
}

// PlaneFromPointNormal builds the plane through point with the given normal.
func PlaneFromPointNormal(point, normal mgl64.Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, Constant: -point.Dot(n)}
}

// DistanceTo is the signed distance of p, positive on the normal side.
func (p Plane) DistanceTo(point mgl64.Vec3) float64 {
	return p.Normal.Dot(point) + p.Constant
}

// Quad is a finite square lying in a plane. Its local +Z is the plane normal.
type Quad struct {
	Center      mgl64.Vec3
	Orientation mgl64.Quat
	HalfSize    float64
}

func (q Quad) Normal() mgl64.Vec3 {
	return q.Orientation.Rotate(mgl64.Vec3{0, 0, 1})
}

func (q Quad) Plane() Plane {
	return PlaneFromPointNormal(q.Center, q.Normal())
}

// IntersectRay hits the quad only inside its extent.
func (q Quad) IntersectRay(r Ray) (float64, mgl64.Vec3, bool) {
	t, ok := r.IntersectPlane(q.Plane())
	if !ok {
		return 0, mgl64.Vec3{}, false
	}
	hit := r.At(t)
	local := q.Orientation.Inverse().Rotate(hit.Sub(q.Center))
	if math.Abs(local[0]) > q.HalfSize || math.Abs(local[1]) > q.HalfSize {
		return 0, mgl64.Vec3{}, false
	}
	return t, hit, true
}
