package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/afterimage/internal/camera"
)

func toVector3(v mgl64.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v[0]), float32(v[1]), float32(v[2]))
}

func toCamera3D(c *camera.Camera) rl.Camera3D {
	return rl.NewCamera3D(
		toVector3(c.Position),
		toVector3(c.Target),
		toVector3(c.Up),
		float32(c.Fov),
		rl.CameraPerspective,
	)
}

func parseColor(hex string, alpha float64) (rl.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return rl.Color{}, fmt.Errorf("color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return rl.NewColor(r, g, b, uint8(mgl64.Clamp(alpha, 0, 1)*255)), nil
}

// transformTriangles appends tris moved by m to dst.
func transformTriangles(dst []rl.Vector3, tris [][3]mgl64.Vec3, m mgl64.Mat4) []rl.Vector3 {
	for _, t := range tris {
		for _, v := range t {
			dst = append(dst, toVector3(mgl64.TransformCoordinate(v, m)))
		}
	}
	return dst
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	rl.BeginMode3D(a.Camera)
	a.drawStatic()
	a.drawTrail()
	a.drawFocus()
	rl.EndMode3D()

	a.DrawHUD()
	rl.EndDrawing()
}

func (a *App) drawStatic() {
	cfg := a.PG.Config.Container
	rl.DrawPlane(rl.NewVector3(0, 0, 0), rl.NewVector2(100, 100), ColFloor)
	a.CustomGrid(12, 0.5)
	rl.DrawCubeWires(rl.NewVector3(0, float32(cfg.Height/2), 0),
		float32(2*cfg.HalfWidth), float32(cfg.Height), float32(2*cfg.HalfWidth), ColGrid)
}

func (a *App) CustomGrid(slices int, spacing float32) {
	halfSize := float32(slices) * spacing / 2
	for i := -slices / 2; i <= slices/2; i++ {
		pos := float32(i) * spacing
		rl.DrawLine3D(rl.NewVector3(pos, 0.001, -halfSize), rl.NewVector3(pos, 0.001, halfSize), ColGrid)
		rl.DrawLine3D(rl.NewVector3(-halfSize, 0.001, pos), rl.NewVector3(halfSize, 0.001, pos), ColGrid)
	}
}

func (a *App) drawTrail() {
	if len(a.PG.Blocks) == 0 {
		return
	}
	tris := a.PG.Blocks[0].Primitive.Triangles()
	verts := make([]rl.Vector3, 0, len(tris)*3)
	for _, in := range a.PG.Trail.Instances() {
		verts = transformTriangles(verts[:0], tris, in.Matrix())
		for i := 0; i+2 < len(verts); i += 3 {
			rl.DrawTriangle3D(verts[i], verts[i+1], verts[i+2], a.trailColor)
		}
	}
}

func (a *App) drawFocus() {
	if b := a.PG.Focused(); b != nil && b.Visible {
		verts := transformTriangles(nil, b.Primitive.Triangles(), b.Matrix())
		for i := 0; i+2 < len(verts); i += 3 {
			rl.DrawTriangle3D(verts[i], verts[i+1], verts[i+2], a.blockColor)
		}
	}
	if p, ok := a.PG.Anchor(); ok {
		rl.DrawSphere(toVector3(p), float32(a.PG.Config.Picker.JointRadius), ColSelect)
	}
}

func (a *App) DrawHUD() {
	a.drawText("afterimage", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.PG.Config.Preset), 180, 34, 16, ColText)

	a.DrawTelemetry()

	status, col := "RUNNING", ColSelect
	if !a.PG.Driver.AnimationActive() {
		status, col = "PAUSED", ColTextDim
	}
	w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
	a.drawText(status, w-130, 30, 16, col)
	a.drawText(a.PG.Picker.State().String(), w-130, 52, 14, ColText)

	a.drawText(fmt.Sprintf("trail %d/%d", a.PG.Trail.VisibleCount(), a.PG.Trail.Capacity()), 30, h-100, 14, ColText)
	a.drawText("[SPACE] PAUSE  [R] RESET  [WHEEL] ZOOM  [Q] QUIT", w-520, h-40, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", rl.GetFPS()), 30, h-40, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

// DrawTelemetry plots recent kinetic energy as a line strip.
func (a *App) DrawTelemetry() {
	points := telemetryPoints(a.Telemetry, 30, float32(rl.GetScreenHeight()-170), 400, 60)
	if points == nil {
		return
	}
	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("E: %.2e", a.Telemetry[len(a.Telemetry)-1]), 440, rl.GetScreenHeight()-120, 14, ColText)
}

func telemetryPoints(data []float64, x, y, width, height float32) []rl.Vector2 {
	if len(data) < 2 {
		return nil
	}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		minVal, maxVal = min(minVal, v), max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(data))
	for i, v := range data {
		px := x + float32(i)/float32(len(data)-1)*width
		norm := (v - minVal) / (maxVal - minVal)
		points[i] = rl.NewVector2(px, y+height-float32(norm)*height)
	}
	return points
}
