package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/afterimage/internal/dynamo"
	"github.com/san-kum/afterimage/internal/frame"
	"github.com/san-kum/afterimage/internal/physics"
	"github.com/san-kum/afterimage/internal/vmath"
)

// Primitive pairs the collision shape of a block with its render geometry.
type Primitive struct {
	Shape  *physics.ConvexPolyhedron
	Radius float64
	Height float64
}

// PyramidPrimitive is the block primitive at the given scale: radius scale,
// height four times that.
func PyramidPrimitive(scale float64) Primitive {
	radius, height := scale, 4*scale
	return Primitive{Shape: physics.Pyramid(radius, height), Radius: radius, Height: height}
}

// Triangles returns the render triangles in block-local space.
func (p Primitive) Triangles() [][3]mgl64.Vec3 { return p.Shape.Triangles() }

type Material struct {
	Color   string
	Opacity float64
}

// Block is the render proxy of one dynamic body. It is hidden until focused.
type Block struct {
	Primitive Primitive
	Material  Material

	Position   mgl64.Vec3
	Quaternion mgl64.Quat
	Visible    bool

	world  *dynamo.World
	handle dynamo.Handle
}

// NewBlock adds a unit-mass body for prim to world and subscribes the block
// to driver's physics-stepped notifications.
func NewBlock(world *dynamo.World, driver *frame.Driver, prim Primitive, mat Material, pos mgl64.Vec3) (*Block, error) {
	body := dynamo.NewBody(1, prim.Shape)
	body.SetTransform(pos, mgl64.QuatIdent())

	b := &Block{
		Primitive:  prim,
		Material:   mat,
		Position:   pos,
		Quaternion: mgl64.QuatIdent(),
		world:      world,
		handle:     world.AddBody(body),
	}
	if err := driver.OnPhysicsStepped(b); err != nil {
		world.RemoveBody(b.handle)
		return nil, err
	}
	return b, nil
}

func (b *Block) Body() dynamo.Handle { return b.handle }

// PhysicsStepped copies the body transform into the proxy.
func (b *Block) PhysicsStepped(float64) {
	body := b.world.Body(b.handle)
	if body == nil {
		return
	}
	b.Position = body.Position
	b.Quaternion = body.Quaternion
}

func (b *Block) SetFocus()   { b.Visible = true }
func (b *Block) ClearFocus() { b.Visible = false }

// IntersectRay tests r against the body's current shape and transform.
func (b *Block) IntersectRay(r vmath.Ray) (float64, bool) {
	body := b.world.Body(b.handle)
	if body == nil {
		return 0, false
	}
	return b.Primitive.Shape.IntersectRay(r.ToLocal(body.Position, body.Quaternion))
}

// Matrix is the model matrix of the proxy.
func (b *Block) Matrix() mgl64.Mat4 {
	return mgl64.Translate3D(b.Position[0], b.Position[1], b.Position[2]).Mul4(b.Quaternion.Mat4())
}
