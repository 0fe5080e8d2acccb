// Package frame drives one playground frame: pointer dispatch, tick, world
// step, physics-stepped notification and render, always in that order.
package frame

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/san-kum/afterimage/internal/input"
)

var ErrDispatching = errors.New("frame: cannot register handlers while dispatching")

type TickHandler interface {
	Tick(dt float64)
}

type SteppedHandler interface {
	PhysicsStepped(dt float64)
}

type RenderHandler interface {
	Render(dt float64)
}

type TickFunc func(dt float64)

func (f TickFunc) Tick(dt float64) { f(dt) }

type SteppedFunc func(dt float64)

func (f SteppedFunc) PhysicsStepped(dt float64) { f(dt) }

type RenderFunc func(dt float64)

func (f RenderFunc) Render(dt float64) { f(dt) }

// Stepper advances a physics world. *dynamo.World satisfies it.
type Stepper interface {
	Step(fixedDelta, realDelta float64, maxSubSteps int) (int, error)
}

type Options struct {
	FixedDelta   float64
	MaxDeltaTime float64
	MaxSubSteps  int
	Logger       *log.Logger
}

func DefaultOptions() Options {
	return Options{
		FixedDelta:   1.0 / 60,
		MaxDeltaTime: 1.0 / 30,
		MaxSubSteps:  3,
	}
}

// Stats describes the last frame.
type Stats struct {
	Delta    float64
	SubSteps int
	Events   int
	Stepped  bool
}

type Driver struct {
	opts   Options
	world  Stepper
	logger *log.Logger

	pointer []input.Handler
	tick    []TickHandler
	stepped []SteppedHandler
	render  []RenderHandler

	queue       []input.PointerEvent
	animating   bool
	dispatching bool

	frames  int
	elapsed float64
}

// New creates a driver. world may be nil, in which case no step runs and
// physics-stepped handlers never fire.
func New(world Stepper, opts Options) *Driver {
	def := DefaultOptions()
	if opts.FixedDelta <= 0 {
		opts.FixedDelta = def.FixedDelta
	}
	if opts.MaxDeltaTime <= 0 {
		opts.MaxDeltaTime = def.MaxDeltaTime
	}
	if opts.MaxSubSteps <= 0 {
		opts.MaxSubSteps = def.MaxSubSteps
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{opts: opts, world: world, logger: logger, animating: true}
}

func (d *Driver) Options() Options { return d.opts }

func (d *Driver) OnPointer(h input.Handler) error {
	if d.dispatching {
		return ErrDispatching
	}
	d.pointer = append(d.pointer, h)
	return nil
}

func (d *Driver) OnTick(h TickHandler) error {
	if d.dispatching {
		return ErrDispatching
	}
	d.tick = append(d.tick, h)
	return nil
}

func (d *Driver) OnPhysicsStepped(h SteppedHandler) error {
	if d.dispatching {
		return ErrDispatching
	}
	d.stepped = append(d.stepped, h)
	return nil
}

func (d *Driver) OnRender(h RenderHandler) error {
	if d.dispatching {
		return ErrDispatching
	}
	d.render = append(d.render, h)
	return nil
}

// Post queues a pointer event for the next frame.
func (d *Driver) Post(ev input.PointerEvent) {
	d.queue = append(d.queue, ev)
}

// Pending is the number of queued pointer events.
func (d *Driver) Pending() int { return len(d.queue) }

func (d *Driver) AnimationActive() bool { return d.animating }

func (d *Driver) SetAnimationActive(active bool) { d.animating = active }

// ToggleAnimation flips the animation state and returns the new one.
func (d *Driver) ToggleAnimation() bool {
	d.animating = !d.animating
	return d.animating
}

// Frames is the number of completed frames.
func (d *Driver) Frames() int { return d.frames }

// Elapsed is the clamped time summed over all frames.
func (d *Driver) Elapsed() float64 { return d.elapsed }

// Frame runs one frame for elapsed real seconds, clamped to MaxDeltaTime.
func (d *Driver) Frame(elapsed float64) (Stats, error) {
	dt := math.Min(d.opts.MaxDeltaTime, elapsed)
	if !(dt > 0) {
		dt = 0
	}

	d.dispatching = true
	defer func() { d.dispatching = false }()

	stats := Stats{Delta: dt, Events: len(d.queue)}
	queue := d.queue
	d.queue = nil
	for _, ev := range queue {
		for _, h := range d.pointer {
			h.HandlePointer(ev)
		}
	}

	if d.animating {
		for _, h := range d.tick {
			h.Tick(dt)
		}
		if d.world != nil {
			n, err := d.world.Step(d.opts.FixedDelta, dt, d.opts.MaxSubSteps)
			if err != nil {
				return stats, fmt.Errorf("frame %d: %w", d.frames, err)
			}
			stats.SubSteps = n
			stats.Stepped = true
			for _, h := range d.stepped {
				h.PhysicsStepped(dt)
			}
		}
	}

	for _, h := range d.render {
		h.Render(dt)
	}

	d.frames++
	d.elapsed += dt
	if elapsed > d.opts.MaxDeltaTime {
		d.logger.Debug("frame delta clamped", "elapsed", elapsed, "dt", dt)
	}
	return stats, nil
}
