package config

import (
	"errors"
	"sort"
)

var ErrUnknownPreset = errors.New("config: unknown preset")

var Presets = map[string]func() *Config{
	"default": DefaultConfig,
	"calm": func() *Config {
		c := DefaultConfig()
		c.Preset = "calm"
		c.World.Gravity = [3]float64{0, -0.5, 0}
		c.World.Restitution = 0.3
		c.World.LinearDamping = 0.2
		c.Magnet.Gain = 2
		return c
	},
	"storm": func() *Config {
		c := DefaultConfig()
		c.Preset = "storm"
		c.World.Gravity = [3]float64{0, -4, 0}
		c.Blocks.Count = 24
		c.Blocks.Spread = 2
		c.Magnet.Gain = 15
		c.Trail.StepsPerObject = 120
		return c
	},
	"long-trail": func() *Config {
		c := DefaultConfig()
		c.Preset = "long-trail"
		c.Blocks.Count = 6
		c.Trail.StepsPerObject = 600
		return c
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
