package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ColorMode selects how windowed density maps to color. Both modes share
// the same marching, skipping, masking and termination logic.
type ColorMode int

const (
	// ColorModeWL renders windowed density as grayscale.
	ColorModeWL ColorMode = iota
	// ColorModeCTF renders windowed density through a piecewise color ramp.
	ColorModeCTF
)

func (m ColorMode) String() string {
	if m == ColorModeCTF {
		return "ctf"
	}
	return "wl"
}

func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "wl", "":
		return ColorModeWL, nil
	case "ctf":
		return ColorModeCTF, nil
	}
	return ColorModeWL, fmt.Errorf("unknown color mode %q", s)
}

// RenderParams is one complete quality profile for the ray marcher. All
// fields are plain configuration read each frame.
type RenderParams struct {
	StepSize     float32 `yaml:"stepSize"`
	MaxSteps     int     `yaml:"maxSteps"`
	DensityScale float32 `yaml:"densityScale"`

	Ambient   float32 `yaml:"ambient"`
	Diffuse   float32 `yaml:"diffuse"`
	Specular  float32 `yaml:"specular"`
	Shininess float32 `yaml:"shininess"`

	Shading          bool    `yaml:"shading"`
	SurfaceThreshold float32 `yaml:"surfaceThreshold"`
	SurfaceOffset    float32 `yaml:"surfaceOffset"`

	AccumulatedThreshold   float32 `yaml:"accumulatedThreshold"`
	TransmittanceThreshold float32 `yaml:"transmittanceThreshold"`

	ColorModeName string     `yaml:"colorMode"`
	Background    [3]float32 `yaml:"background"`
}

func (p RenderParams) ColorMode() ColorMode {
	m, err := ParseColorMode(p.ColorModeName)
	if err != nil {
		return ColorModeWL
	}
	return m
}

// Profiles bundles the two quality tiers.
type Profiles struct {
	LQ RenderParams `yaml:"lq"`
	HQ RenderParams `yaml:"hq"`
}

// DefaultProfiles returns the built-in LQ/HQ pair. LQ takes larger steps,
// caps marching earlier and skips shading; HQ is the full-quality profile.
func DefaultProfiles() Profiles {
	hq := RenderParams{
		StepSize:               0.004,
		MaxSteps:               1600,
		DensityScale:           0.6,
		Ambient:                0.25,
		Diffuse:                0.7,
		Specular:               0.3,
		Shininess:              24,
		Shading:                true,
		SurfaceThreshold:       0.05,
		SurfaceOffset:          0.012,
		AccumulatedThreshold:   0.98,
		TransmittanceThreshold: 0.02,
		ColorModeName:          "wl",
		Background:             [3]float32{0, 0, 0},
	}
	lq := hq
	lq.StepSize = 0.012
	lq.MaxSteps = 500
	lq.Shading = false
	return Profiles{LQ: lq, HQ: hq}
}

// LoadProfiles reads a YAML profile file. A missing file is not an error:
// the defaults are returned so the viewer can always start.
func LoadProfiles(path string, log Logger) (Profiles, error) {
	defaults := DefaultProfiles()
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Infof("profile file %s not found, using defaults", path)
			return defaults, nil
		}
		return defaults, fmt.Errorf("reading profiles: %w", err)
	}

	profiles := defaults
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return defaults, fmt.Errorf("parsing profiles: %w", err)
	}
	if err := profiles.LQ.validate(); err != nil {
		return defaults, fmt.Errorf("lq profile: %w", err)
	}
	if err := profiles.HQ.validate(); err != nil {
		return defaults, fmt.Errorf("hq profile: %w", err)
	}
	return profiles, nil
}

func (p RenderParams) validate() error {
	if p.StepSize <= 0 {
		return fmt.Errorf("stepSize must be positive, got %g", p.StepSize)
	}
	if p.MaxSteps <= 0 {
		return fmt.Errorf("maxSteps must be positive, got %d", p.MaxSteps)
	}
	if _, err := ParseColorMode(p.ColorModeName); err != nil {
		return err
	}
	return nil
}
