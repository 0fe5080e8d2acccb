package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/afterimage/internal/dynamo"
	"github.com/san-kum/afterimage/internal/vmath"
)

var (
	_ dynamo.Shape     = (*Sphere)(nil)
	_ dynamo.Shape     = (*Box)(nil)
	_ dynamo.Shape     = (*ConvexPolyhedron)(nil)
	_ dynamo.HalfSpace = (*Plane)(nil)
	_ dynamo.Polytope  = (*Box)(nil)
	_ dynamo.Polytope  = (*ConvexPolyhedron)(nil)
)

type Sphere struct {
	Radius float64
}

func NewSphere(radius float64) *Sphere { return &Sphere{Radius: radius} }

func (s *Sphere) BoundingRadius() float64 { return s.Radius }

func (s *Sphere) Support(dir mgl64.Vec3) mgl64.Vec3 {
	if dir.Len() < vmath.Epsilon {
		return mgl64.Vec3{}
	}
	return dir.Normalize().Mul(s.Radius)
}

func (s *Sphere) Volume() float64 { return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius }

func (s *Sphere) IntersectRay(r vmath.Ray) (float64, bool) {
	return r.IntersectSphere(mgl64.Vec3{}, s.Radius)
}

type Box struct {
	HalfExtents mgl64.Vec3
}

func NewBox(halfExtents mgl64.Vec3) *Box { return &Box{HalfExtents: halfExtents} }

func (b *Box) BoundingRadius() float64 { return b.HalfExtents.Len() }

func (b *Box) Support(dir mgl64.Vec3) mgl64.Vec3 {
	var out mgl64.Vec3
	for i := range out {
		out[i] = math.Copysign(b.HalfExtents[i], dir[i])
	}
	return out
}

func (b *Box) Volume() float64 { return 8 * b.HalfExtents[0] * b.HalfExtents[1] * b.HalfExtents[2] }

func (b *Box) Vertices() []mgl64.Vec3 {
	h := b.HalfExtents
	out := make([]mgl64.Vec3, 0, 8)
	for _, x := range []float64{-h[0], h[0]} {
		for _, y := range []float64{-h[1], h[1]} {
			for _, z := range []float64{-h[2], h[2]} {
				out = append(out, mgl64.Vec3{x, y, z})
			}
		}
	}
	return out
}

func (b *Box) IntersectRay(r vmath.Ray) (float64, bool) {
	return r.IntersectBox(b.HalfExtents.Mul(-1), b.HalfExtents)
}

// ConvexPolyhedron is a closed convex hull. Faces list vertex indices of planar polygons.
type ConvexPolyhedron struct {
	Verts []mgl64.Vec3
	Faces [][]int

	radius float64
}

func NewConvexPolyhedron(verts []mgl64.Vec3, faces [][]int) *ConvexPolyhedron {
	p := &ConvexPolyhedron{Verts: verts, Faces: faces}
	for _, v := range verts {
		p.radius = math.Max(p.radius, v.Len())
	}
	return p
}

func (p *ConvexPolyhedron) BoundingRadius() float64 { return p.radius }

func (p *ConvexPolyhedron) Vertices() []mgl64.Vec3 { return p.Verts }

func (p *ConvexPolyhedron) Support(dir mgl64.Vec3) mgl64.Vec3 {
	best, bestDot := mgl64.Vec3{}, math.Inf(-1)
	for _, v := range p.Verts {
		if d := v.Dot(dir); d > bestDot {
			best, bestDot = v, d
		}
	}
	return best
}

// Triangles fans every face into triangles.
func (p *ConvexPolyhedron) Triangles() [][3]mgl64.Vec3 {
	var out [][3]mgl64.Vec3
	for _, f := range p.Faces {
		for i := 1; i+1 < len(f); i++ {
			out = append(out, [3]mgl64.Vec3{p.Verts[f[0]], p.Verts[f[i]], p.Verts[f[i+1]]})
		}
	}
	return out
}

func (p *ConvexPolyhedron) centroid() mgl64.Vec3 {
	var c mgl64.Vec3
	for _, v := range p.Verts {
		c = c.Add(v)
	}
	if len(p.Verts) > 0 {
		c = c.Mul(1 / float64(len(p.Verts)))
	}
	return c
}

func (p *ConvexPolyhedron) Volume() float64 {
	c := p.centroid()
	vol := 0.0
	for _, t := range p.Triangles() {
		a, b, d := t[0].Sub(c), t[1].Sub(c), t[2].Sub(c)
		vol += math.Abs(a.Dot(b.Cross(d))) / 6
	}
	return vol
}

func (p *ConvexPolyhedron) IntersectRay(r vmath.Ray) (float64, bool) {
	best, hit := math.Inf(1), false
	for _, t := range p.Triangles() {
		if d, ok := r.IntersectTriangle(t[0], t[1], t[2]); ok && d < best {
			best, hit = d, true
		}
	}
	return best, hit
}

// Plane is the half-space z <= 0 in body space. Rotate the body to orient it.
type Plane struct{}

func NewPlane() *Plane { return &Plane{} }

func (p *Plane) BoundingRadius() float64 { return math.Inf(1) }

func (p *Plane) Support(mgl64.Vec3) mgl64.Vec3 { return mgl64.Vec3{} }

func (p *Plane) Volume() float64 { return math.Inf(1) }

func (p *Plane) LocalNormal() mgl64.Vec3 { return mgl64.Vec3{0, 0, 1} }

func (p *Plane) IntersectRay(r vmath.Ray) (float64, bool) {
	return r.IntersectPlane(vmath.Plane{Normal: p.LocalNormal()})
}
