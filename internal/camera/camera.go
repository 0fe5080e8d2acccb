// Package camera implements a perspective camera and orbit controls over mgl64.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/afterimage/internal/vmath"
)

type Camera struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3
	Fov      float64 // vertical, degrees
	Aspect   float64
	Near     float64
	Far      float64
}

// New returns the playground camera: 20 units out along (10.99, 5.45, 16.25),
// looking at the middle of the container.
func New(aspect float64) *Camera {
	return &Camera{
		Position: mgl64.Vec3{10.99, 5.45, 16.25}.Normalize().Mul(20),
		Target:   mgl64.Vec3{0, 5, 0},
		Up:       mgl64.Vec3{0, 1, 0},
		Fov:      35,
		Aspect:   aspect,
		Near:     1,
		Far:      40,
	}
}

func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Target, c.Up)
}

func (c *Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.Fov), c.Aspect, c.Near, c.Far)
}

func (c *Camera) ViewProjection() mgl64.Mat4 {
	return c.Projection().Mul4(c.View())
}

// Forward is the unit viewing direction.
func (c *Camera) Forward() mgl64.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

// Quaternion is the camera's world orientation. Its local -Z is Forward.
func (c *Camera) Quaternion() mgl64.Quat {
	f := c.Forward()
	r := f.Cross(c.Up).Normalize()
	u := r.Cross(f)
	m := mgl64.Mat4{
		r[0], r[1], r[2], 0,
		u[0], u[1], u[2], 0,
		-f[0], -f[1], -f[2], 0,
		0, 0, 0, 1,
	}
	return mgl64.Mat4ToQuat(m).Normalize()
}

// Unproject maps a point in normalized device coordinates to world space.
func (c *Camera) Unproject(ndc mgl64.Vec3) mgl64.Vec3 {
	inv := c.ViewProjection().Inv()
	p := inv.Mul4x1(ndc.Vec4(1))
	return p.Vec3().Mul(1 / p[3])
}

// Ray is the world ray through pointer (x, y) in NDC, starting at the camera.
func (c *Camera) Ray(x, y float64) vmath.Ray {
	through := c.Unproject(mgl64.Vec3{x, y, 0.5})
	return vmath.NewRay(c.Position, through.Sub(c.Position))
}

// ProjectPointer intersects the pointer ray with plane.
// It reports false when the ray is parallel to the plane or points away from it.
func (c *Camera) ProjectPointer(x, y float64, plane vmath.Plane) (mgl64.Vec3, bool) {
	r := c.Ray(x, y)
	t, ok := r.IntersectPlane(plane)
	if !ok {
		return mgl64.Vec3{}, false
	}
	return r.At(t), true
}

// Project maps a world point to NDC. Points behind the camera report false.
func (c *Camera) Project(world mgl64.Vec3) (mgl64.Vec3, bool) {
	clip := c.ViewProjection().Mul4x1(world.Vec4(1))
	if clip[3] <= 0 {
		return mgl64.Vec3{}, false
	}
	return clip.Vec3().Mul(1 / clip[3]), true
}

// ToPixels converts NDC x/y to pixel offsets on a width×height surface.
func ToPixels(ndc mgl64.Vec3, width, height float64) (float64, float64) {
	return (ndc[0] + 1) / 2 * width, (1 - ndc[1]) / 2 * height
}

// Distance is the camera's distance to its target.
func (c *Camera) Distance() float64 {
	return c.Position.Sub(c.Target).Len()
}

func (c *Camera) SetAspect(width, height float64) {
	if height > 0 && !math.IsInf(width/height, 0) {
		c.Aspect = width / height
	}
}
