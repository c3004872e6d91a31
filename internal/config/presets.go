package config

import (
	"sort"

	"github.com/facette/natsort"
)

// Telecom link constants shared by the focusing and detector presets.
const (
	telecomWavelength = 3.15 // mm, ~96 GHz
	telecomWaist      = 5.6  // mm, photomixer source
	telecomOptics     = 187  // mm, lens clear aperture
)

func telecom(name string, det DetectorConfig, fit FitConfig) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	cfg.Wavelength = telecomWavelength
	cfg.Source = SourceConfig{Waist: telecomWaist}
	cfg.Elements = []ElementConfig{
		{Kind: "lens", FocalLength: 350, Diameter: telecomOptics, Position: 350},
	}
	cfg.Probe = ProbeConfig{Start: 350, End: 1e5, Points: 1000, Diameter: telecomOptics}
	cfg.Focusing.OpticsDiameter = telecomOptics

	det.QuadratureStep = DefaultQuadratureStep
	cfg.Detector = det

	if fit.Measurements != nil {
		fit.ApertureMin = DefaultApertureMin
		fit.ApertureMax = DefaultApertureMax
		fit.AperturePoints = DefaultAperturePoints
		fit.FocalMin = 100
		fit.FocalMax = 400
		cfg.Fit = fit
	}
	return cfg
}

// Presets are the scenarios of the THz link and detector campaigns.
var Presets = map[string]*Config{
	"v96ghz_1km": {
		Name:       "v96ghz_1km",
		Wavelength: 3.15,
		Source:     SourceConfig{Waist: 8},
		Elements: []ElementConfig{
			{Kind: "lens", FocalLength: 1000, Diameter: 600, Position: 1000},
			{Kind: "lens", FocalLength: 1000, Diameter: 600, Position: 1e6},
		},
		Probe: ProbeConfig{Start: 0, End: 1.01e6, Points: 500, Diameter: 600},
	},
	"v300ghz_100m": {
		Name:       "v300ghz_100m",
		Wavelength: 1,
		Source:     SourceConfig{Waist: 2},
		Elements: []ElementConfig{
			{Kind: "lens", FocalLength: 1000, Diameter: 600, Position: 1000},
			{Kind: "lens", FocalLength: 1000, Diameter: 600, Position: 1e5},
		},
		Probe: ProbeConfig{Start: 0, End: 1.01e5, Points: 500, Diameter: 600},
	},
	"mirror_relay": {
		Name:       "mirror_relay",
		Wavelength: 3.15,
		Source:     SourceConfig{Waist: 8},
		Elements: []ElementConfig{
			{Kind: "toroidal_mirror", FrontFocal: 2000, BackFocal: 2000, IncidenceAngle: 45, Diameter: 600, Position: 1000},
			{Kind: "toroidal_mirror", FrontFocal: 2000, BackFocal: 2000, IncidenceAngle: 45, Diameter: 600, Position: 1e6},
		},
		Probe: ProbeConfig{Start: 0, End: 1.01e6, Points: 500, Diameter: 600},
	},
	"telecom_187mm": telecom("telecom_187mm",
		DetectorConfig{Name: "generic", Aperture: 5, AcceptanceAngle: 8.5},
		FitConfig{}),
	"alvidas": telecom("alvidas",
		DetectorConfig{Name: "Alvidas", Aperture: 10, AcceptanceAngle: 8.5},
		FitConfig{Scale: 0.04, Measurements: []Measurement{
			{118, 3.18}, {158, 5.46}, {180, 5.89}, {300, 5.79},
		}}),
	"small_cone": telecom("small_cone",
		DetectorConfig{Name: "smallCone", Aperture: 12, AcceptanceAngle: 7},
		FitConfig{Scale: 0.022, Measurements: []Measurement{
			{158, 6.75}, {180, 8.49}, {300, 13.51}, {466, 4.16},
		}}),
	"big_cone": telecom("big_cone",
		DetectorConfig{Name: "bigCone", Aperture: 12, AcceptanceAngle: 11.5 / 2},
		FitConfig{Scale: 0.02, Measurements: []Measurement{
			{158, 5.47}, {180, 7.18}, {300, 13.41}, {466, 4.55},
		}}),
	"bare_wg": telecom("bare_wg",
		DetectorConfig{Name: "bareWG", Aperture: 2, AcceptanceAngle: 60 / 2},
		FitConfig{Scale: 0.16, Measurements: []Measurement{
			{68, 2.13}, {118, 4.0}, {158, 4.09}, {180, 4},
		}}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names in natural order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return natsort.Compare(names[i], names[j])
	})
	return names
}

// DetectorPresets returns the names of presets carrying measurements.
func DetectorPresets() []string {
	var names []string
	for _, name := range ListPresets() {
		if len(Presets[name].Fit.Measurements) > 0 {
			names = append(names, name)
		}
	}
	return names
}
