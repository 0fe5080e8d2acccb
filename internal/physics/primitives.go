package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/afterimage/internal/dynamo"
)

// Pyramid builds a four-sided pyramid centered on its half height.
// The square base has side radius·√2 so its corners sit on a circle of the given radius.
func Pyramid(radius, height float64) *ConvexPolyhedron {
	l := radius * math.Sqrt2 / 2
	h := height / 2
	verts := []mgl64.Vec3{
		{-l, -h, -l},
		{+l, -h, -l},
		{0, +h, 0},
		{-l, -h, +l},
		{+l, -h, +l},
	}
	faces := [][]int{
		{0, 3, 2},    // -x
		{0, 1, 4, 3}, // -y
		{0, 2, 1},    // -z
		{1, 4, 2},    // +x
		{3, 4, 2},    // +z
	}
	return NewConvexPolyhedron(verts, faces)
}

// Wall describes one static plane of the container.
type Wall struct {
	Name     string
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// ContainerWalls lists the floor, ceiling and four side walls, all facing inward.
func ContainerWalls(halfWidth, height float64) []Wall {
	x := mgl64.Vec3{1, 0, 0}
	y := mgl64.Vec3{0, 1, 0}
	return []Wall{
		{"floor", mgl64.Vec3{}, mgl64.QuatRotate(-math.Pi/2, x)},
		{"ceiling", mgl64.Vec3{0, height, 0}, mgl64.QuatRotate(math.Pi/2, x)},
		{"x-min", mgl64.Vec3{-halfWidth, 0, 0}, mgl64.QuatRotate(math.Pi/2, y)},
		{"x-max", mgl64.Vec3{halfWidth, 0, 0}, mgl64.QuatRotate(-math.Pi/2, y)},
		{"z-min", mgl64.Vec3{0, 0, -halfWidth}, mgl64.QuatIdent()},
		{"z-max", mgl64.Vec3{0, 0, halfWidth}, mgl64.QuatRotate(math.Pi, y)},
	}
}

// AddContainer adds the container walls to w as static planes.
func AddContainer(w *dynamo.World, halfWidth, height float64) []dynamo.Handle {
	walls := ContainerWalls(halfWidth, height)
	handles := make([]dynamo.Handle, 0, len(walls))
	for _, wall := range walls {
		b := dynamo.NewBody(0, NewPlane())
		b.SetTransform(wall.Position, wall.Rotation)
		handles = append(handles, w.AddBody(b))
	}
	return handles
}
