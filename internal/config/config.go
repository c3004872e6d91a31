package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/san-kum/beamsim/internal/detector"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFocalMin       = 1.0
	DefaultFocalMax       = 1000.0
	DefaultFocalPoints    = 1000
	DefaultApertureMin    = 5.0
	DefaultApertureMax    = 20.0
	DefaultAperturePoints = 100
	DefaultQuadratureStep = detector.DefaultQuadratureStep
	DefaultProbePoints    = 200
)

var ErrInvalidConfig = errors.New("config: invalid scenario")

// Config is a complete scenario: the source beam, the element chain, the
// focusing optic and detector, and optionally the measurements to fit.
type Config struct {
	Name       string          `yaml:"name" toml:"name"`
	Wavelength float64         `yaml:"wavelength" toml:"wavelength"`
	Source     SourceConfig    `yaml:"source" toml:"source"`
	Elements   []ElementConfig `yaml:"elements" toml:"elements"`
	Probe      ProbeConfig     `yaml:"probe" toml:"probe"`
	Focusing   FocusingConfig  `yaml:"focusing" toml:"focusing"`
	Detector   DetectorConfig  `yaml:"detector" toml:"detector"`
	Fit        FitConfig       `yaml:"fit" toml:"fit"`
}

type SourceConfig struct {
	Waist    float64 `yaml:"waist" toml:"waist"`
	Position float64 `yaml:"position" toml:"position"`
}

// ElementConfig describes one optical element. Kind selects the
// constructor; which fields are read depends on it.
type ElementConfig struct {
	Kind        string  `yaml:"kind" toml:"kind"`
	Position    float64 `yaml:"position" toml:"position"`
	Diameter    float64 `yaml:"diameter" toml:"diameter"`
	FocalLength float64 `yaml:"focal_length,omitempty" toml:"focal_length,omitempty"`

	// toroidal mirrors, angles in degrees
	TangentialRadius float64 `yaml:"tangential_radius,omitempty" toml:"tangential_radius,omitempty"`
	SagittalRadius   float64 `yaml:"sagittal_radius,omitempty" toml:"sagittal_radius,omitempty"`
	FrontFocal       float64 `yaml:"front_focal_length,omitempty" toml:"front_focal_length,omitempty"`
	BackFocal        float64 `yaml:"back_focal_length,omitempty" toml:"back_focal_length,omitempty"`
	IncidenceAngle   float64 `yaml:"incidence_angle,omitempty" toml:"incidence_angle,omitempty"`
}

// ProbeConfig samples the beam between Start and End, e.g. to trace
// transmission through an aperture of the given diameter over distance.
type ProbeConfig struct {
	Start    float64 `yaml:"start" toml:"start"`
	End      float64 `yaml:"end" toml:"end"`
	Points   int     `yaml:"points" toml:"points"`
	Diameter float64 `yaml:"diameter" toml:"diameter"`
}

type FocusingConfig struct {
	OpticsDiameter float64 `yaml:"optics_diameter" toml:"optics_diameter"`
	FocalMin       float64 `yaml:"focal_min" toml:"focal_min"`
	FocalMax       float64 `yaml:"focal_max" toml:"focal_max"`
	Points         int     `yaml:"points" toml:"points"`
}

type DetectorConfig struct {
	Name            string  `yaml:"name" toml:"name"`
	Aperture        float64 `yaml:"aperture" toml:"aperture"`
	AcceptanceAngle float64 `yaml:"acceptance_angle" toml:"acceptance_angle"`
	QuadratureStep  float64 `yaml:"quadrature_step" toml:"quadrature_step"`
}

type FitConfig struct {
	FocalMin       float64       `yaml:"focal_min" toml:"focal_min"`
	FocalMax       float64       `yaml:"focal_max" toml:"focal_max"`
	ApertureMin    float64       `yaml:"aperture_min" toml:"aperture_min"`
	ApertureMax    float64       `yaml:"aperture_max" toml:"aperture_max"`
	AperturePoints int           `yaml:"aperture_points" toml:"aperture_points"`
	Scale          float64       `yaml:"scale" toml:"scale"`
	Measurements   []Measurement `yaml:"measurements" toml:"measurements"`
}

type Measurement struct {
	FocalLength float64 `yaml:"focal_length" toml:"focal_length"`
	Value       float64 `yaml:"value" toml:"value"`
}

func DefaultConfig() *Config {
	return &Config{
		Probe: ProbeConfig{Points: DefaultProbePoints},
		Focusing: FocusingConfig{
			FocalMin: DefaultFocalMin,
			FocalMax: DefaultFocalMax,
			Points:   DefaultFocalPoints,
		},
		Detector: DetectorConfig{QuadratureStep: DefaultQuadratureStep},
		Fit: FitConfig{
			FocalMin:       DefaultFocalMin,
			FocalMax:       DefaultFocalMax,
			ApertureMin:    DefaultApertureMin,
			ApertureMax:    DefaultApertureMax,
			AperturePoints: DefaultAperturePoints,
			Scale:          1,
		},
	}
}

// Load reads a scenario from a .yaml, .yml or .toml file on top of the
// defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err = toml.Decode(string(data), cfg)
	default:
		return nil, fmt.Errorf("config: unsupported file type %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the parameters every command relies on. Element
// parameters are checked when the chain is built.
func (c *Config) Validate() error {
	var errs []error
	if !(c.Wavelength > 0) {
		errs = append(errs, fmt.Errorf("wavelength must be positive, got %g", c.Wavelength))
	}
	if !(c.Source.Waist > 0) {
		errs = append(errs, fmt.Errorf("source waist must be positive, got %g", c.Source.Waist))
	}
	for i, e := range c.Elements {
		if e.Kind == "" {
			errs = append(errs, fmt.Errorf("element %d: missing kind", i+1))
		}
	}
	if c.Focusing.Points < 0 || c.Fit.AperturePoints < 0 || c.Probe.Points < 0 {
		errs = append(errs, errors.New("point counts must not be negative"))
	}
	if c.Focusing.FocalMin > c.Focusing.FocalMax {
		errs = append(errs, fmt.Errorf("focusing range [%g, %g] is empty", c.Focusing.FocalMin, c.Focusing.FocalMax))
	}
	if c.Fit.ApertureMin > c.Fit.ApertureMax {
		errs = append(errs, fmt.Errorf("aperture range [%g, %g] is empty", c.Fit.ApertureMin, c.Fit.ApertureMax))
	}
	if step := c.Detector.QuadratureStep; step < 0 || (step > 0 && step < detector.MinQuadratureStep) {
		errs = append(errs, fmt.Errorf("quadrature step must be zero or at least %g, got %g", detector.MinQuadratureStep, step))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w %q: %w", ErrInvalidConfig, c.Name, errors.Join(errs...))
	}
	return nil
}

// HasDetector reports whether the focusing optic and detector are described.
func (c *Config) HasDetector() bool {
	return c.Focusing.OpticsDiameter > 0 && c.Detector.AcceptanceAngle > 0
}

// Clone returns a deep copy, so presets can be modified safely.
func (c *Config) Clone() *Config {
	out := *c
	out.Elements = append([]ElementConfig(nil), c.Elements...)
	out.Fit.Measurements = append([]Measurement(nil), c.Fit.Measurements...)
	return &out
}
