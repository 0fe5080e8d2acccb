package dynamo

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultMaxSubSteps is used when Step receives a non-positive cap.
const DefaultMaxSubSteps = 10

// parallelChunk is the smallest body range integrated on its own goroutine.
const parallelChunk = 256

type World struct {
	cfg    Config
	logger *log.Logger

	bodies      []*Body
	constraints []Constraint
	contacts    []contact

	accumulator float64
	time        float64
	steps       int
}

func NewWorld(cfg Config) *World {
	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultConfig().Iterations
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &World{cfg: cfg, logger: logger}
}

func (w *World) Config() Config { return w.cfg }

func (w *World) SetGravity(g mgl64.Vec3) { w.cfg.Gravity = g }

// Time is the simulated time covered by internal steps.
func (w *World) Time() float64 { return w.time }

// StepCount is the number of internal steps taken so far.
func (w *World) StepCount() int { return w.steps }

// Accumulator is the unstepped remainder of real time, always below one fixed step.
func (w *World) Accumulator() float64 { return w.accumulator }

func (w *World) AddBody(b *Body) Handle {
	w.bodies = append(w.bodies, b)
	return Handle(len(w.bodies) - 1)
}

// RemoveBody frees the slot of h and drops constraints that reference it.
func (w *World) RemoveBody(h Handle) error {
	if w.Body(h) == nil {
		return fmt.Errorf("remove body %d: %w", h, ErrUnknownBody)
	}
	kept := w.constraints[:0]
	for _, c := range w.constraints {
		a, b := c.Bodies()
		if a != h && b != h {
			kept = append(kept, c)
		}
	}
	w.constraints = kept
	w.bodies[h] = nil
	return nil
}

// Body returns the body for h, or nil when h is not live.
func (w *World) Body(h Handle) *Body {
	if h < 0 || int(h) >= len(w.bodies) {
		return nil
	}
	return w.bodies[h]
}

// Handles lists live bodies in ascending order.
func (w *World) Handles() []Handle {
	out := make([]Handle, 0, len(w.bodies))
	for i, b := range w.bodies {
		if b != nil {
			out = append(out, Handle(i))
		}
	}
	return out
}

func (w *World) AddConstraint(c Constraint) error {
	for _, existing := range w.constraints {
		if existing == c {
			return ErrConstraintExists
		}
	}
	a, b := c.Bodies()
	for _, h := range []Handle{a, b} {
		body := w.Body(h)
		if body == nil {
			return fmt.Errorf("add constraint: body %d: %w", h, ErrUnknownBody)
		}
		body.WakeUp()
	}
	w.constraints = append(w.constraints, c)
	return nil
}

func (w *World) RemoveConstraint(c Constraint) error {
	for i, existing := range w.constraints {
		if existing == c {
			w.constraints = append(w.constraints[:i], w.constraints[i+1:]...)
			return nil
		}
	}
	return ErrUnknownConstraint
}

func (w *World) Constraints() []Constraint {
	out := make([]Constraint, len(w.constraints))
	copy(out, w.constraints)
	return out
}

// Step advances the world by realDelta using fixed sub-steps of fixedDelta.
// At most maxSubSteps run; time beyond the cap is dropped. Interpolated
// transforms are blended by the remaining fraction of a step.
func (w *World) Step(fixedDelta, realDelta float64, maxSubSteps int) (int, error) {
	if !(fixedDelta > 0) || !(realDelta >= 0) || math.IsInf(realDelta, 0) {
		return 0, fmt.Errorf("step(%v, %v): %w", fixedDelta, realDelta, ErrInvalidStep)
	}
	if maxSubSteps <= 0 {
		maxSubSteps = DefaultMaxSubSteps
	}

	w.accumulator += realDelta
	n := 0
	for w.accumulator >= fixedDelta && n < maxSubSteps {
		if err := w.internalStep(fixedDelta); err != nil {
			return n, err
		}
		w.accumulator -= fixedDelta
		n++
	}
	if w.accumulator >= fixedDelta {
		w.logger.Debug("dropping sub-steps", "pending", int(w.accumulator/fixedDelta), "cap", maxSubSteps)
	}
	w.accumulator = math.Mod(w.accumulator, fixedDelta)

	t := w.accumulator / fixedDelta
	for _, b := range w.bodies {
		if b == nil {
			continue
		}
		b.InterpolatedPosition = b.PreviousPosition.Add(b.Position.Sub(b.PreviousPosition).Mul(t))
		b.InterpolatedQuaternion = mgl64.QuatSlerp(b.PreviousQuaternion, b.Quaternion, t)
	}
	return n, nil
}

func (w *World) internalStep(dt float64) error {
	w.integrateForces(dt)

	w.findContacts()
	for i := range w.contacts {
		w.contacts[i].prepare(w.cfg.Restitution)
	}
	for _, c := range w.constraints {
		c.Update()
	}
	for it := 0; it < w.cfg.Iterations; it++ {
		for i := range w.contacts {
			w.contacts[i].solve(w.cfg.Friction)
		}
		for _, c := range w.constraints {
			c.Solve(dt)
		}
	}

	parallelFor(len(w.bodies), parallelChunk, func(start, end int) {
		for _, b := range w.bodies[start:end] {
			if b != nil {
				integratePosition(b, dt)
			}
		}
	})
	w.correctPositions()

	w.time += dt
	w.steps++

	for i, b := range w.bodies {
		if b == nil {
			continue
		}
		b.Force = mgl64.Vec3{}
		b.Torque = mgl64.Vec3{}
		if w.cfg.AllowSleep {
			w.sleepTick(b)
		}
		if !b.IsValid() {
			return &StepError{Step: w.steps, Time: w.time, Body: Handle(i), Wrapped: ErrInvalidState}
		}
	}
	return nil
}

func (w *World) integrateForces(dt float64) {
	linear := math.Pow(1-w.cfg.LinearDamping, dt)
	angular := math.Pow(1-w.cfg.AngularDamping, dt)
	for _, b := range w.bodies {
		if b == nil || b.Type != Dynamic || b.IsSleeping() {
			continue
		}
		f := b.Force.Add(w.cfg.Gravity.Mul(b.Mass))
		b.Velocity = b.Velocity.Add(f.Mul(b.invMass * dt)).Mul(linear)
		b.AngularVelocity = b.AngularVelocity.Add(b.Torque.Mul(b.invInertia * dt)).Mul(angular)
	}
}

func integratePosition(b *Body, dt float64) {
	b.PreviousPosition = b.Position
	b.PreviousQuaternion = b.Quaternion
	if b.Type == Static || b.IsSleeping() {
		return
	}
	b.Position = b.Position.Add(b.Velocity.Mul(dt))
	spin := mgl64.Quat{W: 0, V: b.AngularVelocity}.Mul(b.Quaternion).Scale(0.5 * dt)
	b.Quaternion = b.Quaternion.Add(spin).Normalize()
}

func (w *World) sleepTick(b *Body) {
	if b.Type != Dynamic {
		return
	}
	speed2 := b.Velocity.Dot(b.Velocity) + b.AngularVelocity.Dot(b.AngularVelocity)
	limit2 := w.cfg.SleepSpeedLimit * w.cfg.SleepSpeedLimit
	switch {
	case b.SleepState == Awake && speed2 < limit2:
		b.SleepState = Sleepy
		b.timeLastSleepy = w.time
	case b.SleepState == Sleepy && speed2 > limit2:
		b.WakeUp()
	case b.SleepState == Sleepy && w.time-b.timeLastSleepy > w.cfg.SleepTimeLimit:
		b.Sleep()
	}
}
