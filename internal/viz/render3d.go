package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/afterimage/internal/camera"
)

// ndcLimit drops edges that project far outside the view.
const ndcLimit = 4

type Edge struct {
	Start, End mgl64.Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe { return &Wireframe{Edges: make([]Edge, 0)} }

func (w *Wireframe) AddEdge(s, e mgl64.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) AddPoint(p mgl64.Vec3)   { w.Edges = append(w.Edges, Edge{p, p}) }
func (w *Wireframe) Clear()                  { w.Edges = w.Edges[:0] }

// Transformed returns a copy with every vertex mapped through m.
func (w *Wireframe) Transformed(m mgl64.Mat4) *Wireframe {
	out := &Wireframe{Edges: make([]Edge, len(w.Edges))}
	for i, e := range w.Edges {
		out.Edges[i] = Edge{mgl64.TransformCoordinate(e.Start, m), mgl64.TransformCoordinate(e.End, m)}
	}
	return out
}

// Render3D draws the wireframe through cam. Edges with an endpoint behind
// the camera are skipped.
func Render3D(c *Canvas, w *Wireframe, cam *camera.Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	for _, e := range w.Edges {
		a, ok1 := cam.Project(e.Start)
		b, ok2 := cam.Project(e.End)
		if !ok1 || !ok2 || offscreen(a) || offscreen(b) {
			continue
		}
		x0, y0 := c.ToDots(a[0], a[1])
		if e.Start == e.End {
			c.Set(x0, y0)
			continue
		}
		x1, y1 := c.ToDots(b[0], b[1])
		c.DrawLine(x0, y0, x1, y1)
	}
}

func offscreen(ndc mgl64.Vec3) bool {
	return math.Abs(ndc[0]) > ndcLimit || math.Abs(ndc[1]) > ndcLimit
}

// BoxWireframe is the twelve edges of an axis-aligned box.
func BoxWireframe(min, max mgl64.Vec3) *Wireframe {
	w := NewWireframe()
	v := make([]mgl64.Vec3, 8)
	for i := range v {
		v[i] = mgl64.Vec3{pick(i&1, min[0], max[0]), pick(i&2, min[1], max[1]), pick(i&4, min[2], max[2])}
	}
	for i := 0; i < 8; i++ {
		for _, bit := range []int{1, 2, 4} {
			if i&bit == 0 {
				w.AddEdge(v[i], v[i|bit])
			}
		}
	}
	return w
}

func pick(bit int, lo, hi float64) float64 {
	if bit == 0 {
		return lo
	}
	return hi
}

// ContainerWireframe outlines the playground walls.
func ContainerWireframe(halfWidth, height float64) *Wireframe {
	return BoxWireframe(mgl64.Vec3{-halfWidth, 0, -halfWidth}, mgl64.Vec3{halfWidth, height, halfWidth})
}

// GridWireframe is an n×n floor grid spanning ±halfWidth at y = 0.
func GridWireframe(halfWidth float64, n int) *Wireframe {
	w := NewWireframe()
	if n < 1 {
		return w
	}
	step := 2 * halfWidth / float64(n)
	for i := 0; i <= n; i++ {
		d := -halfWidth + float64(i)*step
		w.AddEdge(mgl64.Vec3{d, 0, -halfWidth}, mgl64.Vec3{d, 0, halfWidth})
		w.AddEdge(mgl64.Vec3{-halfWidth, 0, d}, mgl64.Vec3{halfWidth, 0, d})
	}
	return w
}

// TrianglesWireframe outlines each triangle.
func TrianglesWireframe(tris [][3]mgl64.Vec3) *Wireframe {
	w := NewWireframe()
	for _, t := range tris {
		w.AddEdge(t[0], t[1])
		w.AddEdge(t[1], t[2])
		w.AddEdge(t[2], t[0])
	}
	return w
}

// MarkerWireframe is a three-axis cross of the given size centered at p.
func MarkerWireframe(p mgl64.Vec3, size float64) *Wireframe {
	w := NewWireframe()
	h := size / 2
	for _, axis := range []mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		w.AddEdge(p.Sub(axis.Mul(h)), p.Add(axis.Mul(h)))
	}
	return w
}
