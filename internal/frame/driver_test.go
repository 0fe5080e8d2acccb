package frame_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/afterimage/internal/frame"
	"github.com/san-kum/afterimage/internal/input"
)

type fakeWorld struct {
	calls  []float64
	log    *[]string
	result error
}

func (w *fakeWorld) Step(fixed, real float64, maxSub int) (int, error) {
	*w.log = append(*w.log, "step")
	w.calls = append(w.calls, real)
	if w.result != nil {
		return 0, w.result
	}
	return 1, nil
}

var _ = Describe("Driver", func() {
	var (
		order  []string
		world  *fakeWorld
		driver *frame.Driver
	)

	BeforeEach(func() {
		order = nil
		world = &fakeWorld{log: &order}
		driver = frame.New(world, frame.DefaultOptions())

		Expect(driver.OnPointer(input.HandlerFunc(func(ev input.PointerEvent) {
			order = append(order, "pointer:"+ev.Kind.String())
		}))).To(Succeed())
		Expect(driver.OnTick(frame.TickFunc(func(float64) { order = append(order, "tick") }))).To(Succeed())
		Expect(driver.OnPhysicsStepped(frame.SteppedFunc(func(float64) { order = append(order, "stepped:a") }))).To(Succeed())
		Expect(driver.OnPhysicsStepped(frame.SteppedFunc(func(float64) { order = append(order, "stepped:b") }))).To(Succeed())
		Expect(driver.OnRender(frame.RenderFunc(func(float64) { order = append(order, "render") }))).To(Succeed())
	})

	It("runs pointer, tick, step, stepped and render in declared order", func() {
		driver.Post(input.PointerEvent{Kind: input.Down})
		driver.Post(input.PointerEvent{Kind: input.Move})

		stats, err := driver.Frame(1.0 / 60)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Events).To(Equal(2))
		Expect(stats.Stepped).To(BeTrue())
		Expect(order).To(Equal([]string{
			"pointer:down", "pointer:move", "tick", "step", "stepped:a", "stepped:b", "render",
		}))
		Expect(driver.Pending()).To(BeZero())
	})

	It("clamps the frame delta", func() {
		stats, err := driver.Frame(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Delta).To(BeNumerically("~", 1.0/30, 1e-12))
		Expect(world.calls).To(ConsistOf(BeNumerically("~", 1.0/30, 1e-12)))
	})

	It("treats negative elapsed time as zero", func() {
		stats, _ := driver.Frame(-5)
		Expect(stats.Delta).To(BeZero())
	})

	It("skips tick, step and stepped while paused but still renders", func() {
		Expect(driver.ToggleAnimation()).To(BeFalse())
		driver.Post(input.PointerEvent{Kind: input.Up})

		_, err := driver.Frame(1.0 / 60)
		Expect(err).NotTo(HaveOccurred())
		Expect(order).To(Equal([]string{"pointer:up", "render"}))

		driver.SetAnimationActive(true)
		Expect(driver.AnimationActive()).To(BeTrue())
	})

	It("rejects registration during dispatch", func() {
		var regErr error
		Expect(driver.OnTick(frame.TickFunc(func(float64) {
			regErr = driver.OnRender(frame.RenderFunc(func(float64) {}))
		}))).To(Succeed())

		_, err := driver.Frame(1.0 / 60)
		Expect(err).NotTo(HaveOccurred())
		Expect(regErr).To(MatchError(frame.ErrDispatching))

		Expect(driver.OnRender(frame.RenderFunc(func(float64) {}))).To(Succeed())
	})

	It("stops the frame when the world fails to step", func() {
		boom := errors.New("boom")
		world.result = boom

		_, err := driver.Frame(1.0 / 60)
		Expect(errors.Is(err, boom)).To(BeTrue())
		Expect(order).NotTo(ContainElement("render"))
	})

	It("never fires physics-stepped without a world", func() {
		d := frame.New(nil, frame.DefaultOptions())
		fired := false
		Expect(d.OnPhysicsStepped(frame.SteppedFunc(func(float64) { fired = true }))).To(Succeed())

		stats, err := d.Frame(1.0 / 60)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Stepped).To(BeFalse())
		Expect(fired).To(BeFalse())
		Expect(d.Frames()).To(Equal(1))
	})
})
