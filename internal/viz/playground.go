package viz

import (
	"github.com/san-kum/afterimage/internal/scene"
)

// DrawOptions toggles the optional layers of DrawPlayground.
type DrawOptions struct {
	Grid      int
	Container bool
	Pointer   bool
}

func DefaultDrawOptions() DrawOptions {
	return DrawOptions{Grid: 6, Container: true, Pointer: true}
}

// DrawPlayground renders one frame of pg onto c: floor grid and container,
// one dot per trail instance, the focused block, the drag anchor and the
// magnet point while pulling.
func DrawPlayground(c *Canvas, pg *scene.Playground, opts DrawOptions) {
	c.Clear()
	cam := pg.Camera
	cfg := pg.Config.Container

	if opts.Grid > 0 {
		Render3D(c, GridWireframe(cfg.HalfWidth, opts.Grid), cam)
	}
	if opts.Container {
		Render3D(c, ContainerWireframe(cfg.HalfWidth, cfg.Height), cam)
	}

	trail := NewWireframe()
	for _, in := range pg.Trail.Instances() {
		trail.AddPoint(in.Position)
	}
	Render3D(c, trail, cam)

	if b := pg.Focused(); b != nil && b.Visible {
		Render3D(c, TrianglesWireframe(b.Primitive.Triangles()).Transformed(b.Matrix()), cam)
	}
	if anchor, ok := pg.Anchor(); ok {
		Render3D(c, MarkerWireframe(anchor, 0.3), cam)
	}
	if opts.Pointer && pg.Tracker.Pointer().IsDragging && !pg.Picker.IsDragging() {
		if p, ok := pg.Magnet.Mouse3D(); ok {
			Render3D(c, MarkerWireframe(p, 0.5), cam)
		}
	}
}
