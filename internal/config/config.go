package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/afterimage/internal/dynamo"
	"github.com/san-kum/afterimage/internal/frame"
)

const (
	DefaultFixedDelta   = 1.0 / 60
	DefaultMaxDeltaTime = 1.0 / 30
	DefaultMaxSubSteps  = 3
	DefaultBlockCount   = 12
	DefaultBlockScale   = 0.2
	DefaultTrailSteps   = 240
	DefaultMagnetGain   = 5.0
	DefaultBlockColor   = "#B5AC01"
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Preset    string          `yaml:"preset"`
	Seed      int64           `yaml:"seed"`
	World     WorldConfig     `yaml:"world"`
	Frame     FrameConfig     `yaml:"frame"`
	Blocks    BlockConfig     `yaml:"blocks"`
	Container ContainerConfig `yaml:"container"`
	Trail     TrailConfig     `yaml:"trail"`
	Magnet    MagnetConfig    `yaml:"magnet"`
	Picker    PickerConfig    `yaml:"picker"`
	Camera    CameraConfig    `yaml:"camera"`
}

type WorldConfig struct {
	Gravity        [3]float64 `yaml:"gravity"`
	Friction       float64    `yaml:"friction"`
	Restitution    float64    `yaml:"restitution"`
	LinearDamping  float64    `yaml:"linear_damping"`
	AngularDamping float64    `yaml:"angular_damping"`
	Iterations     int        `yaml:"iterations"`
	AllowSleep     bool       `yaml:"allow_sleep"`
}

type FrameConfig struct {
	FixedDelta   float64 `yaml:"fixed_delta"`
	MaxDeltaTime float64 `yaml:"max_delta_time"`
	MaxSubSteps  int     `yaml:"max_sub_steps"`
}

type BlockConfig struct {
	Count   int     `yaml:"count"`
	Scale   float64 `yaml:"scale"`
	Gap     float64 `yaml:"gap"`
	Spread  float64 `yaml:"spread"`
	Color   string  `yaml:"color"`
	Opacity float64 `yaml:"opacity"`
}

// Radius and Height are the pyramid dimensions for the configured scale.
func (b BlockConfig) Radius() float64 { return b.Scale }
func (b BlockConfig) Height() float64 { return 4 * b.Scale }

type ContainerConfig struct {
	HalfWidth float64 `yaml:"half_width"`
	Height    float64 `yaml:"height"`
}

type TrailConfig struct {
	StepsPerObject int `yaml:"steps_per_object"`
}

type MagnetConfig struct {
	Gain  float64 `yaml:"gain"`
	Probe bool    `yaml:"probe"`
}

type PickerConfig struct {
	PlaneSize   float64 `yaml:"plane_size"`
	JointRadius float64 `yaml:"joint_radius"`
	MaxForce    float64 `yaml:"max_force"`
}

type CameraConfig struct {
	Direction [3]float64 `yaml:"direction"`
	Distance  float64    `yaml:"distance"`
	Target    [3]float64 `yaml:"target"`
	Fov       float64    `yaml:"fov"`
	Near      float64    `yaml:"near"`
	Far       float64    `yaml:"far"`
}

func DefaultConfig() *Config {
	return &Config{
		Preset: "default",
		Seed:   1,
		World: WorldConfig{
			Gravity:        [3]float64{0, -1.5, 0},
			Friction:       0.01,
			Restitution:    0.99,
			LinearDamping:  0.01,
			AngularDamping: 0.01,
			Iterations:     10,
		},
		Frame: FrameConfig{
			FixedDelta:   DefaultFixedDelta,
			MaxDeltaTime: DefaultMaxDeltaTime,
			MaxSubSteps:  DefaultMaxSubSteps,
		},
		Blocks: BlockConfig{
			Count:   DefaultBlockCount,
			Scale:   DefaultBlockScale,
			Gap:     -0.27,
			Spread:  1,
			Color:   DefaultBlockColor,
			Opacity: 0.7,
		},
		Container: ContainerConfig{HalfWidth: 3, Height: 10},
		Trail:     TrailConfig{StepsPerObject: DefaultTrailSteps},
		Magnet:    MagnetConfig{Gain: DefaultMagnetGain},
		Picker:    PickerConfig{PlaneSize: 100, JointRadius: 0.1, MaxForce: dynamo.DefaultMaxForce},
		Camera: CameraConfig{
			Direction: [3]float64{10.99, 5.45, 16.25},
			Distance:  20,
			Target:    [3]float64{0, 5, 0},
			Fov:       35,
			Near:      1,
			Far:       40,
		},
	}
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver reads path over base. Keys missing from the file keep base values.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve layers a preset and an optional file. The file wins over the preset.
func Resolve(preset, path string) (*Config, error) {
	base := DefaultConfig()
	if preset != "" {
		p := GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("preset %q: %w", preset, ErrUnknownPreset)
		}
		base = p
	}
	if path == "" {
		return base, base.Validate()
	}
	cfg, err := LoadOver(base, path)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

func (c *Config) Validate() error {
	switch {
	case c.Frame.FixedDelta <= 0:
		return fmt.Errorf("frame.fixed_delta must be positive: %w", ErrInvalid)
	case c.Frame.MaxDeltaTime <= 0:
		return fmt.Errorf("frame.max_delta_time must be positive: %w", ErrInvalid)
	case c.Frame.MaxSubSteps < 1:
		return fmt.Errorf("frame.max_sub_steps must be at least 1: %w", ErrInvalid)
	case c.Blocks.Count < 0:
		return fmt.Errorf("blocks.count must not be negative: %w", ErrInvalid)
	case c.Blocks.Scale <= 0:
		return fmt.Errorf("blocks.scale must be positive: %w", ErrInvalid)
	case c.Blocks.Opacity < 0 || c.Blocks.Opacity > 1:
		return fmt.Errorf("blocks.opacity must be in [0, 1]: %w", ErrInvalid)
	case c.Trail.StepsPerObject < 1:
		return fmt.Errorf("trail.steps_per_object must be at least 1: %w", ErrInvalid)
	case c.Container.HalfWidth <= 0 || c.Container.Height <= 0:
		return fmt.Errorf("container dimensions must be positive: %w", ErrInvalid)
	case c.World.Restitution < 0 || c.World.Friction < 0:
		return fmt.Errorf("world.restitution and world.friction must not be negative: %w", ErrInvalid)
	case c.Camera.Fov <= 0 || c.Camera.Fov >= 180:
		return fmt.Errorf("camera.fov must be in (0, 180): %w", ErrInvalid)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("camera clip range must satisfy 0 < near < far: %w", ErrInvalid)
	case c.Camera.Distance <= 0:
		return fmt.Errorf("camera.distance must be positive: %w", ErrInvalid)
	case mgl64.Vec3(c.Camera.Direction).Len() == 0:
		return fmt.Errorf("camera.direction must be non-zero: %w", ErrInvalid)
	}
	return nil
}

func (c *Config) DynamoConfig() dynamo.Config {
	return dynamo.Config{
		Gravity:         mgl64.Vec3(c.World.Gravity),
		Friction:        c.World.Friction,
		Restitution:     c.World.Restitution,
		LinearDamping:   c.World.LinearDamping,
		AngularDamping:  c.World.AngularDamping,
		Iterations:      c.World.Iterations,
		AllowSleep:      c.World.AllowSleep,
		SleepSpeedLimit: dynamo.DefaultConfig().SleepSpeedLimit,
		SleepTimeLimit:  dynamo.DefaultConfig().SleepTimeLimit,
	}
}

func (c *Config) FrameOptions() frame.Options {
	return frame.Options{
		FixedDelta:   c.Frame.FixedDelta,
		MaxDeltaTime: c.Frame.MaxDeltaTime,
		MaxSubSteps:  c.Frame.MaxSubSteps,
	}
}

// CameraPosition is the eye point: Distance units along Direction.
func (c *Config) CameraPosition() mgl64.Vec3 {
	return mgl64.Vec3(c.Camera.Direction).Normalize().Mul(c.Camera.Distance)
}
