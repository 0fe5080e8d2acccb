package scene_test

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/afterimage/internal/dynamo"
	"github.com/san-kum/afterimage/internal/frame"
	"github.com/san-kum/afterimage/internal/scene"
	"github.com/san-kum/afterimage/internal/vmath"
)

var _ = Describe("Block", func() {
	var (
		world  *dynamo.World
		driver *frame.Driver
		block  *scene.Block
	)

	BeforeEach(func() {
		cfg := dynamo.DefaultConfig()
		cfg.Logger = log.New(io.Discard)
		world = dynamo.NewWorld(cfg)
		driver = frame.New(world, frame.Options{Logger: cfg.Logger})

		var err error
		block, err = scene.NewBlock(world, driver, scene.PyramidPrimitive(0.2), scene.Material{Opacity: 0.7}, mgl64.Vec3{0, 2, 0})
		Expect(err).NotTo(HaveOccurred())
	})

	It("owns exactly one unit-mass body", func() {
		body := world.Body(block.Body())
		Expect(body).NotTo(BeNil())
		Expect(body.Mass).To(Equal(1.0))
		Expect(body.Position).To(Equal(mgl64.Vec3{0, 2, 0}))
		Expect(block.Primitive.Height).To(BeNumerically("~", 0.8, 1e-12))
		Expect(block.Primitive.Triangles()).To(HaveLen(6))
	})

	It("follows its body on physics-stepped", func() {
		driver.Frame(1.0 / 60)
		body := world.Body(block.Body())
		Expect(body.Position[1]).To(BeNumerically("<", 2))
		Expect(block.Position).To(Equal(body.Position))
	})

	It("ignores body moves between steps", func() {
		world.Body(block.Body()).SetTransform(mgl64.Vec3{1, 1, 1}, mgl64.QuatIdent())
		Expect(block.Position).To(Equal(mgl64.Vec3{0, 2, 0}))
	})

	It("shows only while focused", func() {
		Expect(block.Visible).To(BeFalse())
		block.SetFocus()
		Expect(block.Visible).To(BeTrue())
		block.ClearFocus()
		Expect(block.Visible).To(BeFalse())
	})

	It("intersects rays in the body frame", func() {
		body := world.Body(block.Body())
		body.SetTransform(mgl64.Vec3{3, 0, 0}, mgl64.QuatRotate(0.7, mgl64.Vec3{0, 1, 0}))

		t, ok := block.IntersectRay(vmath.NewRay(mgl64.Vec3{3.05, -5, 0}, mgl64.Vec3{0, 1, 0}))
		Expect(ok).To(BeTrue())
		// up through the base
		Expect(t).To(BeNumerically("~", 4.6, 1e-6))

		_, ok = block.IntersectRay(vmath.NewRay(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{0, -1, 0}))
		Expect(ok).To(BeFalse())
	})

	It("builds the proxy matrix from its transform", func() {
		block.Position = mgl64.Vec3{1, 2, 3}
		p := block.Matrix().Mul4x1(mgl64.Vec4{0, 0, 0, 1})
		Expect(p).To(Equal(mgl64.Vec4{1, 2, 3, 1}))
	})
})
