package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Focusing.Points != DefaultFocalPoints {
		t.Errorf("expected %d focal points, got %d", DefaultFocalPoints, cfg.Focusing.Points)
	}
	if cfg.Detector.QuadratureStep != DefaultQuadratureStep {
		t.Errorf("expected quadrature step %g, got %g", DefaultQuadratureStep, cfg.Detector.QuadratureStep)
	}
	if cfg.Fit.Scale != 1 {
		t.Errorf("expected scale 1, got %g", cfg.Fit.Scale)
	}
	if cfg.Fit.ApertureMin >= cfg.Fit.ApertureMax {
		t.Error("aperture range should not be empty")
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "relay.yaml", `
wavelength: 3.15
source:
  waist: 8
elements:
  - kind: lens
    focal_length: 1000
    diameter: 600
    position: 1000
  - kind: toroidal_mirror
    front_focal_length: 2000
    back_focal_length: 2000
    incidence_angle: 45
    diameter: 600
    position: 1000000
focusing:
  optics_diameter: 187
detector:
  aperture: 2
  acceptance_angle: 30
fit:
  scale: 0.16
  measurements:
    - {focal_length: 68, value: 2.13}
    - {focal_length: 118, value: 4.0}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Name != "relay" {
		t.Errorf("expected name from file, got %q", cfg.Name)
	}
	if cfg.Wavelength != 3.15 {
		t.Errorf("expected wavelength 3.15, got %g", cfg.Wavelength)
	}
	if len(cfg.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(cfg.Elements))
	}
	if e := cfg.Elements[1]; e.Kind != "toroidal_mirror" || e.IncidenceAngle != 45 {
		t.Errorf("unexpected second element %+v", e)
	}
	if cfg.Focusing.Points != DefaultFocalPoints {
		t.Errorf("defaults should survive partial files, got %d focal points", cfg.Focusing.Points)
	}
	if cfg.Detector.QuadratureStep != DefaultQuadratureStep {
		t.Errorf("expected default quadrature step, got %g", cfg.Detector.QuadratureStep)
	}
	want := []Measurement{{68, 2.13}, {118, 4.0}}
	if !reflect.DeepEqual(cfg.Fit.Measurements, want) {
		t.Errorf("measurements = %v, want %v", cfg.Fit.Measurements, want)
	}
	if !cfg.HasDetector() {
		t.Error("expected detector")
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "link.toml", `
name = "link"
wavelength = 1.0

[source]
waist = 2.0

[[elements]]
kind = "lens"
focal_length = 1000.0
diameter = 600.0
position = 1000.0

[detector]
acceptance_angle = 8.5
quadrature_step = 0.05

[[fit.measurements]]
focal_length = 158.0
value = 6.75
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Name != "link" {
		t.Errorf("expected name link, got %q", cfg.Name)
	}
	if cfg.Source.Waist != 2 {
		t.Errorf("expected waist 2, got %g", cfg.Source.Waist)
	}
	if len(cfg.Elements) != 1 || cfg.Elements[0].FocalLength != 1000 {
		t.Errorf("unexpected elements %+v", cfg.Elements)
	}
	if cfg.Detector.QuadratureStep != 0.05 {
		t.Errorf("expected quadrature step 0.05, got %g", cfg.Detector.QuadratureStep)
	}
	if len(cfg.Fit.Measurements) != 1 {
		t.Errorf("expected 1 measurement, got %d", len(cfg.Fit.Measurements))
	}
	if cfg.HasDetector() {
		t.Error("expected no detector without optics diameter")
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"extension", "x.json", `{}`, "unsupported"},
		{"syntax", "bad.yaml", "wavelength: [1", "parse"},
		{"invalid", "neg.yaml", "wavelength: -1\nsource: {waist: 1}\n", "invalid scenario"},
		{"tiny step", "step.yaml", "wavelength: 1\nsource: {waist: 1}\ndetector: {quadrature_step: 0.0000001}\n", "quadrature step"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "case"
		cfg.Wavelength = 1
		cfg.Source.Waist = 1
		cfg.Elements = []ElementConfig{{Kind: "lens", Position: 10}}
		return cfg
	}

	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"wavelength", func(c *Config) { c.Wavelength = 0 }, "wavelength"},
		{"waist", func(c *Config) { c.Source.Waist = -1 }, "source waist"},
		{"kind", func(c *Config) { c.Elements[0].Kind = "" }, "missing kind"},
		{"points", func(c *Config) { c.Focusing.Points = -1 }, "negative"},
		{"focal range", func(c *Config) { c.Focusing.FocalMin = 2000 }, "focusing range"},
		{"aperture range", func(c *Config) { c.Fit.ApertureMin = 50 }, "aperture range"},
		{"negative step", func(c *Config) { c.Detector.QuadratureStep = -0.01 }, "quadrature step"},
		{"step below minimum", func(c *Config) { c.Detector.QuadratureStep = 1e-15 }, "quadrature step"},
		{"unset step", func(c *Config) { c.Detector.QuadratureStep = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.want == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() error = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare_wg.yaml")
	preset := GetPreset("bare_wg")
	if preset == nil {
		t.Fatal("expected preset, got nil")
	}
	if err := Save(path, preset); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !reflect.DeepEqual(preset, loaded) {
		t.Errorf("round trip changed the scenario:\n got %+v\nwant %+v", loaded, preset)
	}
}

func TestPresets(t *testing.T) {
	names := ListPresets()
	if len(names) == 0 {
		t.Fatal("expected presets")
	}
	if indexOf(names, "v96ghz_1km") > indexOf(names, "v300ghz_100m") {
		t.Errorf("expected natural order, got %v", names)
	}

	for _, name := range names {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("preset %s: got nil", name)
		}
		if cfg.Name != name {
			t.Errorf("preset %s: name %q", name, cfg.Name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}

	want := []string{"alvidas", "bare_wg", "big_cone", "small_cone"}
	if got := DetectorPresets(); !reflect.DeepEqual(got, want) {
		t.Errorf("DetectorPresets() = %v, want %v", got, want)
	}
}

func TestGetPreset_ReturnsCopy(t *testing.T) {
	a := GetPreset("alvidas")
	a.Fit.Measurements[0].Value = -1
	a.Elements[0].Position = -1

	b := GetPreset("alvidas")
	if b.Fit.Measurements[0].Value != 3.18 {
		t.Errorf("expected 3.18, got %g", b.Fit.Measurements[0].Value)
	}
	if b.Elements[0].Position != 350 {
		t.Errorf("expected 350, got %g", b.Elements[0].Position)
	}
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
