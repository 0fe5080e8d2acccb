// Package scene assembles the playground: a walled world of pyramid blocks
// that the pointer can drag or pull, sampled into an afterimage trail.
package scene

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/afterimage/internal/camera"
	"github.com/san-kum/afterimage/internal/config"
	"github.com/san-kum/afterimage/internal/dynamo"
	"github.com/san-kum/afterimage/internal/frame"
	"github.com/san-kum/afterimage/internal/input"
	"github.com/san-kum/afterimage/internal/magnet"
	"github.com/san-kum/afterimage/internal/physics"
	"github.com/san-kum/afterimage/internal/picker"
	"github.com/san-kum/afterimage/internal/trail"
)

type Options struct {
	// Width and Height are the pointer surface size in pixels or cells.
	Width  float64
	Height float64
	Cursor picker.Cursor
	Logger *log.Logger
}

type Playground struct {
	Config  *config.Config
	World   *dynamo.World
	Driver  *frame.Driver
	Camera  *camera.Camera
	Orbit   *camera.OrbitControls
	Tracker *input.Tracker
	Picker  *picker.Picker
	Magnet  *magnet.Magnet
	Trail   *trail.Trail
	Blocks  []*Block
	Walls   []dynamo.Handle

	bodies []dynamo.Handle
	rng    *rand.Rand
	logger *log.Logger
}

func New(cfg *config.Config, opts Options) (*Playground, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 720
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	wcfg := cfg.DynamoConfig()
	wcfg.Logger = logger
	world := dynamo.NewWorld(wcfg)

	fopts := cfg.FrameOptions()
	fopts.Logger = logger
	driver := frame.New(world, fopts)

	cam := camera.New(opts.Width / opts.Height)
	cam.Position = cfg.CameraPosition()
	cam.Target = mgl64.Vec3(cfg.Camera.Target)
	cam.Fov = cfg.Camera.Fov
	cam.Near, cam.Far = cfg.Camera.Near, cfg.Camera.Far

	pg := &Playground{
		Config:  cfg,
		World:   world,
		Driver:  driver,
		Camera:  cam,
		Orbit:   camera.NewOrbitControls(cam),
		Tracker: input.NewTracker(opts.Width, opts.Height),
		Walls:   physics.AddContainer(world, cfg.Container.HalfWidth, cfg.Container.Height),
		Trail:   trail.New(world, trail.Options{StepsPerObject: cfg.Trail.StepsPerObject, Logger: logger}),
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		logger:  logger,
	}

	prim := PyramidPrimitive(cfg.Blocks.Scale)
	mat := Material{Color: cfg.Blocks.Color, Opacity: cfg.Blocks.Opacity}
	pickables := make([]picker.Pickable, 0, cfg.Blocks.Count)
	for i := 0; i < cfg.Blocks.Count; i++ {
		b, err := NewBlock(world, driver, prim, mat, mgl64.Vec3{})
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		if err := pg.Trail.Track(b.Body()); err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		pg.Blocks = append(pg.Blocks, b)
		pg.bodies = append(pg.bodies, b.Body())
		pickables = append(pickables, b)
	}
	pg.ResetBlocks(pg.rng)
	pg.Trail.BuildMesh()

	pg.Picker = picker.New(world, cam, picker.Options{
		Objects:     pickables,
		PlaneSize:   cfg.Picker.PlaneSize,
		JointRadius: cfg.Picker.JointRadius,
		MaxForce:    cfg.Picker.MaxForce,
		Cursor:      opts.Cursor,
		Orbit:       pg.Orbit,
		Logger:      logger,
	})
	pg.Magnet = magnet.New(world, cam, pg.Tracker, magnet.Options{Gain: cfg.Magnet.Gain, Probe: cfg.Magnet.Probe})

	err := errors.Join(
		driver.OnPointer(input.HandlerFunc(pg.orbitPointer)),
		driver.OnPointer(pg.Picker),
		driver.OnTick(frame.TickFunc(pg.pull)),
		driver.OnPhysicsStepped(pg.Trail),
		driver.OnRender(frame.RenderFunc(func(float64) { pg.Orbit.Update() })),
	)
	if err != nil {
		return nil, err
	}

	logger.Debug("playground ready", "preset", cfg.Preset, "blocks", len(pg.Blocks), "trail", pg.Trail.Capacity())
	return pg, nil
}

// orbitPointer runs before the picker, so a grab on a block cancels the
// rotation it just started.
func (pg *Playground) orbitPointer(ev input.PointerEvent) {
	switch ev.Kind {
	case input.Down:
		pg.Orbit.Begin(ev.Pointer.X, ev.Pointer.Y)
	case input.Move:
		pg.Orbit.Drag(ev.Pointer.X, ev.Pointer.Y)
	case input.Up:
		pg.Orbit.End()
	}
}

// pull applies the magnet while the pointer is held away from any block.
func (pg *Playground) pull(float64) {
	if pg.Tracker.Pointer().IsDragging && !pg.Picker.IsDragging() {
		pg.Magnet.ApplyForce(pg.bodies)
	}
}

// Pointer converts a surface event and queues it for the next frame.
// Non-primary events are dropped and report false.
func (pg *Playground) Pointer(kind input.Kind, offX, offY float64, primary bool, raw any) bool {
	ev, ok := pg.Tracker.Handle(kind, offX, offY, primary, raw)
	if ok {
		pg.Driver.Post(ev)
	}
	return ok
}

func (pg *Playground) Resize(width, height float64) {
	pg.Tracker.Resize(width, height)
	pg.Camera.SetAspect(width, height)
}

func (pg *Playground) Zoom(steps float64) { pg.Orbit.Zoom(steps) }

func (pg *Playground) Frame(elapsed float64) (frame.Stats, error) {
	return pg.Driver.Frame(elapsed)
}

// Bodies lists the block bodies in block order.
func (pg *Playground) Bodies() []dynamo.Handle {
	return append([]dynamo.Handle(nil), pg.bodies...)
}

// ResetBlocks drops every block back into a small random heap and restarts the trail.
func (pg *Playground) ResetBlocks(rng *rand.Rand) {
	spread := pg.Config.Blocks.Spread
	y := pg.Config.Blocks.Gap + 0.5*pg.Config.Blocks.Height()
	for _, b := range pg.Blocks {
		body := pg.World.Body(b.Body())
		if body == nil {
			continue
		}
		body.Reset()
		pos := mgl64.Vec3{(rng.Float64() - 0.5) * spread, y, (rng.Float64() - 0.5) * spread}
		yaw := mgl64.QuatRotate(math.Pi*rng.Float64(), mgl64.Vec3{0, 1, 0})
		body.SetTransform(pos, yaw)
	}
	pg.Trail.ResetCounter()
}

// Reset reseeds the playground and resets the blocks.
func (pg *Playground) Reset(seed int64) {
	pg.rng = rand.New(rand.NewSource(seed))
	pg.ResetBlocks(pg.rng)
	pg.logger.Debug("playground reset", "seed", seed)
}

// Focused returns the block under focus, or nil.
func (pg *Playground) Focused() *Block {
	if b, ok := pg.Picker.Focus().(*Block); ok {
		return b
	}
	return nil
}

// Anchor returns the drag joint position while dragging.
func (pg *Playground) Anchor() (mgl64.Vec3, bool) {
	if !pg.Picker.IsDragging() {
		return mgl64.Vec3{}, false
	}
	return pg.World.Body(pg.Picker.JointBody()).Position, true
}

// KineticEnergy sums the kinetic energy of the blocks.
func (pg *Playground) KineticEnergy() float64 {
	var e float64
	for _, h := range pg.bodies {
		if b := pg.World.Body(h); b != nil {
			e += b.KineticEnergy()
		}
	}
	return e
}

func (pg *Playground) Close() error {
	return errors.Join(pg.Picker.Close(), pg.Magnet.Close())
}
