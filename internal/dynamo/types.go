package dynamo

import (
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/afterimage/internal/vmath"
)

// Handle is the stable index of a body in its world. Handles are never reused.
type Handle int

// NoBody is the zero value for "no handle".
const NoBody Handle = -1

type BodyType int

const (
	Dynamic BodyType = iota
	Static
	Kinematic
)

func (t BodyType) String() string {
	switch t {
	case Dynamic:
		return "dynamic"
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	}
	return "unknown"
}

type SleepState int

const (
	Awake SleepState = iota
	Sleepy
	Sleeping
)

// Shape is a collision shape in body-local coordinates.
type Shape interface {
	BoundingRadius() float64
	// Support returns the local point furthest along dir.
	Support(dir mgl64.Vec3) mgl64.Vec3
	Volume() float64
	// IntersectRay intersects a ray given in local coordinates.
	IntersectRay(r vmath.Ray) (float64, bool)
}

// HalfSpace is a shape that bounds everything behind its local normal.
// The bounding plane passes through the body origin.
type HalfSpace interface {
	Shape
	LocalNormal() mgl64.Vec3
}

// Polytope exposes the corner points used as contact candidates.
type Polytope interface {
	Vertices() []mgl64.Vec3
}

// Constraint couples two bodies of a world.
type Constraint interface {
	Bodies() (Handle, Handle)
	// Update recomputes derived anchor data from the current body state.
	Update()
	// Solve applies one iteration of corrective impulses.
	Solve(dt float64)
}

type Metric interface {
	Name() string
	Observe(w *World)
	Value() float64
	Reset()
}

// Config holds world-wide material and solver settings.
type Config struct {
	Gravity         mgl64.Vec3
	Friction        float64
	Restitution     float64
	LinearDamping   float64
	AngularDamping  float64
	Iterations      int
	AllowSleep      bool
	SleepSpeedLimit float64
	SleepTimeLimit  float64
	Logger          *log.Logger
}

func DefaultConfig() Config {
	return Config{
		Gravity:         mgl64.Vec3{0, -1.5, 0},
		Friction:        0.01,
		Restitution:     0.99,
		LinearDamping:   0.01,
		AngularDamping:  0.01,
		Iterations:      10,
		AllowSleep:      false,
		SleepSpeedLimit: 0.1,
		SleepTimeLimit:  1,
	}
}
