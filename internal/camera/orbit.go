package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const polarEpsilon = 1e-6

// OrbitControls rotates and zooms a camera around its target.
type OrbitControls struct {
	Camera *Camera

	RotateSpeed   float64
	ZoomSpeed     float64
	MinDistance   float64
	MaxDistance   float64
	MinPolarAngle float64
	MaxPolarAngle float64
	// DampingFactor in (0, 1] keeps a fraction of the rotation for later updates.
	DampingFactor float64

	enabled  bool
	rotating bool
	last     mgl64.Vec2

	deltaTheta float64
	deltaPhi   float64
	scale      float64
}

func NewOrbitControls(cam *Camera) *OrbitControls {
	return &OrbitControls{
		Camera:        cam,
		RotateSpeed:   math.Pi,
		ZoomSpeed:     0.95,
		MinDistance:   2,
		MaxDistance:   35,
		MinPolarAngle: 0,
		MaxPolarAngle: math.Pi,
		DampingFactor: 0.05,
		enabled:       true,
		scale:         1,
	}
}

func (o *OrbitControls) Enabled() bool { return o.enabled }

// SetEnabled toggles the controls. Disabling cancels an ongoing rotation.
func (o *OrbitControls) SetEnabled(enabled bool) {
	o.enabled = enabled
	if !enabled {
		o.rotating = false
	}
}

// Begin starts a rotation gesture at pointer (x, y) in NDC.
func (o *OrbitControls) Begin(x, y float64) {
	if !o.enabled {
		return
	}
	o.rotating = true
	o.last = mgl64.Vec2{x, y}
}

// Drag accumulates rotation from the pointer delta since the last call.
func (o *OrbitControls) Drag(x, y float64) {
	if !o.enabled || !o.rotating {
		return
	}
	d := mgl64.Vec2{x, y}.Sub(o.last)
	o.last = mgl64.Vec2{x, y}
	o.deltaTheta -= d[0] * o.RotateSpeed
	o.deltaPhi += d[1] * o.RotateSpeed / o.Camera.Aspect
}

func (o *OrbitControls) End() { o.rotating = false }

// Zoom moves toward the target for steps > 0 and away for steps < 0.
func (o *OrbitControls) Zoom(steps float64) {
	if !o.enabled {
		return
	}
	o.scale *= math.Pow(o.ZoomSpeed, steps)
}

// Rotating reports whether a rotation gesture is in progress.
func (o *OrbitControls) Rotating() bool { return o.rotating }

// Update applies pending rotation and zoom to the camera. Call it once per frame.
func (o *OrbitControls) Update() {
	c := o.Camera
	offset := c.Position.Sub(c.Target)
	radius := offset.Len()
	if radius == 0 {
		return
	}
	theta := math.Atan2(offset[0], offset[2])
	phi := math.Acos(mgl64.Clamp(offset[1]/radius, -1, 1))

	damping := 1.0
	if o.DampingFactor > 0 {
		damping = o.DampingFactor
	}
	theta += o.deltaTheta * damping
	phi += o.deltaPhi * damping
	phi = mgl64.Clamp(phi, math.Max(o.MinPolarAngle, polarEpsilon), math.Min(o.MaxPolarAngle, math.Pi-polarEpsilon))
	radius = mgl64.Clamp(radius*o.scale, o.MinDistance, o.MaxDistance)

	sinPhi := math.Sin(phi)
	c.Position = c.Target.Add(mgl64.Vec3{
		radius * sinPhi * math.Sin(theta),
		radius * math.Cos(phi),
		radius * sinPhi * math.Cos(theta),
	})

	if o.DampingFactor > 0 {
		o.deltaTheta *= 1 - o.DampingFactor
		o.deltaPhi *= 1 - o.DampingFactor
	} else {
		o.deltaTheta, o.deltaPhi = 0, 0
	}
	o.scale = 1
}
