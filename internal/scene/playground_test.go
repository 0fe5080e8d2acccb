package scene_test

import (
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/afterimage/internal/config"
	"github.com/san-kum/afterimage/internal/dynamo"
	"github.com/san-kum/afterimage/internal/frame"
	"github.com/san-kum/afterimage/internal/input"
	"github.com/san-kum/afterimage/internal/scene"
)

const (
	width  = 800.0
	height = 600.0
	dt     = 1.0 / 60
)

var _ = Describe("Playground", func() {
	var pg *scene.Playground

	pixels := func(p mgl64.Vec3) (float64, float64) {
		ndc, ok := pg.Camera.Project(p)
		Expect(ok).To(BeTrue())
		return (ndc[0] + 1) / 2 * width, (1 - ndc[1]) / 2 * height
	}

	BeforeEach(func() {
		var err error
		pg, err = scene.New(config.DefaultConfig(), scene.Options{
			Width:  width,
			Height: height,
			Logger: log.New(io.Discard),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(pg.Close()).To(Succeed())
	})

	Describe("assembly", func() {
		It("builds the container, blocks, joint and trail", func() {
			Expect(pg.Blocks).To(HaveLen(12))
			Expect(pg.Walls).To(HaveLen(6))
			Expect(pg.World.Handles()).To(HaveLen(6 + 12 + 1))
			Expect(pg.Trail.Built()).To(BeTrue())
			Expect(pg.Trail.Capacity()).To(Equal(12 * 240))
			Expect(pg.Trail.Tracked()).To(Equal(pg.Bodies()))
		})

		It("drops the blocks in a heap around the origin", func() {
			for _, b := range pg.Blocks {
				body := pg.World.Body(b.Body())
				Expect(math.Abs(body.Position[0])).To(BeNumerically("<=", 0.5))
				Expect(math.Abs(body.Position[2])).To(BeNumerically("<=", 0.5))
				Expect(body.Position[1]).To(BeNumerically("~", -0.27+0.4, 1e-12))
				Expect(body.Velocity).To(Equal(mgl64.Vec3{}))
				Expect(b.Visible).To(BeFalse())
			}
		})

		It("rejects an invalid config", func() {
			cfg := config.DefaultConfig()
			cfg.Trail.StepsPerObject = 0
			_, err := scene.New(cfg, scene.Options{Logger: log.New(io.Discard)})
			Expect(err).To(MatchError(config.ErrInvalid))
		})
	})

	Describe("transform sync", func() {
		It("copies body transforms into blocks after each step", func() {
			_, err := pg.Frame(dt)
			Expect(err).NotTo(HaveOccurred())

			for _, b := range pg.Blocks {
				body := pg.World.Body(b.Body())
				Expect(b.Position).To(Equal(body.Position))
				Expect(b.Quaternion).To(Equal(body.Quaternion))
			}
			Expect(pg.Trail.VisibleCount()).To(Equal(12))
		})

		It("samples the synced transforms into the trail", func() {
			pg.Frame(dt)
			for i, in := range pg.Trail.Instances() {
				Expect(in.Position).To(Equal(pg.Blocks[i].Position))
			}
		})

		It("leaves proxies and trail alone while paused", func() {
			pg.Driver.SetAnimationActive(false)
			before := pg.Blocks[0].Position
			stats, err := pg.Frame(dt)

			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Stepped).To(BeFalse())
			Expect(pg.Blocks[0].Position).To(Equal(before))
			Expect(pg.Trail.VisibleCount()).To(BeZero())
		})
	})

	Describe("pointer", func() {
		var forces []mgl64.Vec3

		BeforeEach(func() {
			forces = nil
			Expect(pg.Driver.OnTick(frame.TickFunc(func(float64) {
				forces = append(forces, pg.World.Body(pg.Blocks[0].Body()).Force)
			}))).To(Succeed())
		})

		It("drops non-primary events", func() {
			Expect(pg.Pointer(input.Down, 10, 10, false, nil)).To(BeFalse())
			Expect(pg.Driver.Pending()).To(BeZero())
		})

		It("pulls the blocks while the pointer is held on empty space", func() {
			Expect(pg.Pointer(input.Down, 5, 5, true, nil)).To(BeTrue())
			pg.Frame(dt)

			Expect(pg.Picker.IsDragging()).To(BeFalse())
			Expect(forces).To(HaveLen(1))
			Expect(forces[0].Len()).To(BeNumerically(">", 0))
		})

		It("does not pull without a held pointer", func() {
			pg.Pointer(input.Move, 5, 5, true, nil)
			pg.Frame(dt)
			Expect(forces[0]).To(Equal(mgl64.Vec3{}))
		})

		It("grabs a block instead of pulling", func() {
			x, y := pixels(pg.World.Body(pg.Blocks[0].Body()).Position)
			pg.Pointer(input.Down, x, y, true, nil)
			pg.Frame(dt)

			Expect(pg.Picker.IsDragging()).To(BeTrue())
			Expect(pg.Focused()).NotTo(BeNil())
			Expect(pg.Focused().Visible).To(BeTrue())
			Expect(pg.Orbit.Enabled()).To(BeFalse())
			Expect(pg.Orbit.Rotating()).To(BeFalse())
			Expect(forces[0]).To(Equal(mgl64.Vec3{}))

			anchor, ok := pg.Anchor()
			Expect(ok).To(BeTrue())
			Expect(anchor).To(Equal(pg.Picker.MovementPlane().Center))

			pg.Pointer(input.Up, x, y, true, nil)
			pg.Frame(dt)
			Expect(pg.Picker.IsDragging()).To(BeFalse())
			Expect(pg.Focused()).To(BeNil())
			Expect(pg.Orbit.Enabled()).To(BeTrue())
			Expect(pg.World.Constraints()).To(BeEmpty())
		})

		It("orbits the camera when dragging empty space", func() {
			start := pg.Camera.Position
			before := pg.Camera.Distance()
			pg.Pointer(input.Down, 5, 5, true, nil)
			pg.Pointer(input.Move, 200, 5, true, nil)
			pg.Frame(dt)

			Expect(pg.Camera.Position).NotTo(Equal(start))
			Expect(pg.Camera.Distance()).To(BeNumerically("~", before, 1e-9))
		})
	})

	Describe("reset", func() {
		It("is deterministic for a seed", func() {
			other, err := scene.New(config.DefaultConfig(), scene.Options{Logger: log.New(io.Discard)})
			Expect(err).NotTo(HaveOccurred())
			defer other.Close()

			for i := 0; i < 30; i++ {
				pg.Frame(dt)
			}
			pg.Reset(7)
			other.Reset(7)

			for i := range pg.Blocks {
				a := pg.World.Body(pg.Blocks[i].Body())
				b := other.World.Body(other.Blocks[i].Body())
				Expect(a.Position).To(Equal(b.Position))
				Expect(a.Quaternion).To(Equal(b.Quaternion))
				Expect(a.Velocity).To(Equal(mgl64.Vec3{}))
			}
			Expect(pg.Trail.VisibleCount()).To(BeZero())
		})
	})

	Describe("close", func() {
		It("removes the drag joint", func() {
			joint := pg.Picker.JointBody()
			Expect(pg.Close()).To(Succeed())
			Expect(pg.World.Body(joint)).To(BeNil())
			Expect(pg.Picker.JointBody()).To(Equal(dynamo.NoBody))
		})
	})
})
