package picker_test

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/afterimage/internal/camera"
	"github.com/san-kum/afterimage/internal/dynamo"
	"github.com/san-kum/afterimage/internal/input"
	"github.com/san-kum/afterimage/internal/physics"
	"github.com/san-kum/afterimage/internal/picker"
	"github.com/san-kum/afterimage/internal/vmath"
)

type ball struct {
	world   *dynamo.World
	handle  dynamo.Handle
	radius  float64
	focused bool
	focuses int
}

func (b *ball) SetFocus()           { b.focused = true; b.focuses++ }
func (b *ball) ClearFocus()         { b.focused = false }
func (b *ball) Body() dynamo.Handle { return b.handle }

func (b *ball) IntersectRay(r vmath.Ray) (float64, bool) {
	return r.IntersectSphere(b.world.Body(b.handle).Position, b.radius)
}

type cursorLog struct{ styles []picker.CursorStyle }

func (c *cursorLog) SetCursor(s picker.CursorStyle) { c.styles = append(c.styles, s) }

func (c *cursorLog) last() picker.CursorStyle {
	if len(c.styles) == 0 {
		return picker.CursorDefault
	}
	return c.styles[len(c.styles)-1]
}

type orbitFlag struct{ enabled bool }

func (o *orbitFlag) SetEnabled(e bool) { o.enabled = e }

var _ = Describe("Picker", func() {
	var (
		world  *dynamo.World
		cam    *camera.Camera
		cursor *cursorLog
		orbit  *orbitFlag
		near   *ball
		far    *ball
		p      *picker.Picker
	)

	addBall := func(pos mgl64.Vec3, r float64) *ball {
		body := dynamo.NewBody(1, physics.NewSphere(r))
		body.SetTransform(pos, mgl64.QuatIdent())
		return &ball{world: world, handle: world.AddBody(body), radius: r}
	}

	aim := func(pos mgl64.Vec3) input.Pointer {
		ndc, ok := cam.Project(pos)
		Expect(ok).To(BeTrue())
		return input.Pointer{X: ndc[0], Y: ndc[1]}
	}

	BeforeEach(func() {
		cfg := dynamo.DefaultConfig()
		cfg.Gravity = mgl64.Vec3{}
		world = dynamo.NewWorld(cfg)
		cam = camera.New(1.5)
		cursor = &cursorLog{}
		orbit = &orbitFlag{enabled: true}

		// far sits behind near on the same camera ray
		toCam := cam.Position.Sub(cam.Target).Normalize()
		near = addBall(cam.Target.Add(toCam.Mul(2)), 0.5)
		far = addBall(cam.Target.Sub(toCam.Mul(2)), 0.5)

		p = picker.New(world, cam, picker.Options{
			Objects: []picker.Pickable{far, near},
			Cursor:  cursor,
			Orbit:   orbit,
			Logger:  log.New(io.Discard),
		})
	})

	It("starts idle with a collision-free joint body", func() {
		Expect(p.State()).To(Equal(picker.Idle))
		Expect(p.IsDragging()).To(BeFalse())

		joint := world.Body(p.JointBody())
		Expect(joint).NotTo(BeNil())
		Expect(joint.Type).To(Equal(dynamo.Static))
		Expect(joint.CollisionGroup).To(BeZero())
		Expect(joint.CollisionMask).To(BeZero())
	})

	Describe("Intersect", func() {
		It("returns the nearest hit regardless of list order", func() {
			ptr := aim(cam.Target)
			hit, ok := p.Intersect(ptr, []picker.Pickable{far, near})
			Expect(ok).To(BeTrue())
			Expect(hit.Object).To(BeIdenticalTo(near))
			Expect(hit.Index).To(Equal(1))

			again, _ := p.Intersect(ptr, []picker.Pickable{far, near})
			Expect(again).To(Equal(hit))
		})

		It("places the hit point on the surface along the ray", func() {
			hit, ok := p.Intersect(aim(near.world.Body(near.handle).Position), []picker.Pickable{near})
			Expect(ok).To(BeTrue())
			center := world.Body(near.handle).Position
			Expect(hit.Point.Sub(center).Len()).To(BeNumerically("~", 0.5, 1e-6))
			Expect(hit.Point.Sub(cam.Position).Len()).To(BeNumerically("~", hit.Distance, 1e-9))
		})

		It("breaks ties by list order", func() {
			twin := &ball{world: world, handle: near.handle, radius: near.radius}
			hit, ok := p.Intersect(aim(cam.Target), []picker.Pickable{twin, near})
			Expect(ok).To(BeTrue())
			Expect(hit.Object).To(BeIdenticalTo(twin))
		})

		It("reports no hit for empty space", func() {
			_, ok := p.Intersect(input.Pointer{X: 0.99, Y: 0.99}, []picker.Pickable{far, near})
			Expect(ok).To(BeFalse())
		})
	})

	Describe("hovering", func() {
		It("focuses the hovered object and clears it when the pointer leaves", func() {
			p.PointerMove(aim(cam.Target))
			Expect(p.State()).To(Equal(picker.Hovering))
			Expect(near.focused).To(BeTrue())
			Expect(p.Focus()).To(BeIdenticalTo(near))
			Expect(cursor.last()).To(Equal(picker.CursorGrab))

			p.PointerMove(aim(cam.Target))
			Expect(near.focuses).To(Equal(1), "refocusing the same object is a no-op")

			p.PointerMove(input.Pointer{X: 0.99, Y: 0.99})
			Expect(p.State()).To(Equal(picker.Idle))
			Expect(near.focused).To(BeFalse())
			Expect(p.Focus()).To(BeNil())
			Expect(cursor.last()).To(Equal(picker.CursorDefault))
		})
	})

	Describe("dragging", func() {
		It("attaches exactly one constraint on pointer down over an object", func() {
			ptr := aim(cam.Target)
			ptr.IsDragging = true
			p.HandlePointer(input.PointerEvent{Kind: input.Down, Pointer: ptr})

			Expect(p.State()).To(Equal(picker.Dragging))
			Expect(p.IsDragging()).To(BeTrue())
			Expect(near.focused).To(BeTrue())
			Expect(world.Constraints()).To(HaveLen(1))
			Expect(orbit.enabled).To(BeFalse())
			Expect(cursor.last()).To(Equal(picker.CursorGrabbing))

			a, b := p.Constraint().Bodies()
			Expect(a).To(Equal(near.handle))
			Expect(b).To(Equal(p.JointBody()))
		})

		It("releases everything on pointer up", func() {
			p.PointerDown(aim(cam.Target))
			p.HandlePointer(input.PointerEvent{Kind: input.Up})

			Expect(p.State()).To(Equal(picker.Idle))
			Expect(world.Constraints()).To(BeEmpty())
			Expect(p.Constraint()).To(BeNil())
			Expect(near.focused).To(BeFalse())
			Expect(p.Focus()).To(BeNil())
			Expect(orbit.enabled).To(BeTrue())
			Expect(cursor.last()).To(Equal(picker.CursorDefault))
		})

		It("ignores pointer down on empty space", func() {
			p.PointerDown(input.Pointer{X: 0.99, Y: 0.99})
			Expect(p.State()).To(Equal(picker.Idle))
			Expect(world.Constraints()).To(BeEmpty())
			Expect(orbit.enabled).To(BeTrue())
		})

		It("treats pointer up without a drag as a no-op", func() {
			p.PointerMove(aim(cam.Target))
			p.PointerUp(input.Pointer{})
			Expect(p.State()).To(Equal(picker.Hovering))
			Expect(near.focused).To(BeTrue())
		})

		It("never creates a second constraint", func() {
			p.PointerDown(aim(cam.Target))
			first := p.Constraint()
			p.PointerDown(aim(cam.Target))
			Expect(world.Constraints()).To(HaveLen(1))
			Expect(p.Constraint()).To(BeIdenticalTo(first))
		})

		It("places the movement plane at the hit, facing the camera", func() {
			p.PointerDown(aim(cam.Target))
			plane := p.MovementPlane()
			hit, _ := p.Intersect(aim(cam.Target), []picker.Pickable{near})

			Expect(vmath.Near(plane.Center, hit.Point, 1e-9)).To(BeTrue())
			Expect(vmath.Near(plane.Normal(), cam.Forward().Mul(-1), 1e-9)).To(BeTrue())
			Expect(plane.HalfSize).To(Equal(picker.DefaultPlaneSize / 2.0))
		})

		It("moves the joint across the plane and keeps it when the ray misses", func() {
			p.PointerDown(aim(cam.Target))
			joint := world.Body(p.JointBody())
			start := joint.Position

			p.PointerMove(input.Pointer{X: 0.1, Y: 0.1, IsDragging: true})
			moved := joint.Position
			Expect(moved).NotTo(Equal(start))
			Expect(p.MovementPlane().Plane().DistanceTo(moved)).To(BeNumerically("~", 0, 1e-9))

			small := picker.New(world, cam, picker.Options{
				Objects:   []picker.Pickable{near},
				PlaneSize: 0.01,
				Logger:    log.New(io.Discard),
			})
			small.PointerDown(aim(world.Body(near.handle).Position))
			smallJoint := world.Body(small.JointBody())
			before := smallJoint.Position
			small.PointerMove(input.Pointer{X: -0.9, Y: -0.9})
			Expect(smallJoint.Position).To(Equal(before))
		})

		It("keeps the body-local pivot fixed while the body turns", func() {
			center := world.Body(near.handle).Position
			grab := aim(center.Add(mgl64.Vec3{0.3, 0.3, 0}))
			p.PointerDown(grab)
			c := p.Constraint()
			Expect(c).NotTo(BeNil())
			pivot := c.PivotA
			startQ := world.Body(near.handle).Quaternion

			p.PointerMove(input.Pointer{X: grab.X + 0.1, Y: grab.Y - 0.05})
			for i := 0; i < 120; i++ {
				_, err := world.Step(1.0/60, 1.0/60, 3)
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(c.PivotA).To(Equal(pivot))
			Expect(world.Body(near.handle).Quaternion).NotTo(Equal(startQ))
			Expect(c.Separation()).To(BeNumerically("<", 0.1))
		})
	})

	It("removes its joint body on Close", func() {
		p.PointerDown(aim(cam.Target))
		joint := p.JointBody()

		Expect(p.Close()).To(Succeed())
		Expect(world.Body(joint)).To(BeNil())
		Expect(world.Constraints()).To(BeEmpty())
		Expect(p.JointBody()).To(Equal(dynamo.NoBody))
		Expect(p.Close()).To(Succeed())
	})

	It("ignores pointer input after Close", func() {
		Expect(p.Close()).To(Succeed())

		ptr := aim(cam.Target)
		Expect(func() {
			p.PointerMove(ptr)
			p.PointerDown(ptr)
			p.HandlePointer(input.PointerEvent{Kind: input.Move, Pointer: ptr})
			p.PointerUp(ptr)
		}).NotTo(Panic())

		Expect(p.State()).To(Equal(picker.Idle))
		Expect(p.Focus()).To(BeNil())
		Expect(near.focused).To(BeFalse())
		Expect(world.Constraints()).To(BeEmpty())
	})
})
