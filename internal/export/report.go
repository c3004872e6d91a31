package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/beamsim/internal/coupling"
	"github.com/san-kum/beamsim/internal/experiment"
	"github.com/san-kum/beamsim/internal/optics"
)

// Report is the JSON summary of one command run.
type Report struct {
	ID        string    `json:"id"`
	Scenario  string    `json:"scenario"`
	Command   string    `json:"command"`
	Timestamp time.Time `json:"timestamp"`

	Stages            []StageReport  `json:"stages,omitempty"`
	TotalTransmission float64        `json:"total_transmission,omitempty"`
	Peak              *PeakReport    `json:"peak,omitempty"`
	Fit               *FitReport     `json:"fit,omitempty"`
	Profile           *ProfileReport `json:"profile,omitempty"`
}

type StageReport struct {
	Kind                string  `json:"kind"`
	Position            float64 `json:"position"`
	FocalLength         float64 `json:"focal_length"`
	Diameter            float64 `json:"diameter"`
	IncidentRadius      float64 `json:"incident_radius"`
	Transmission        float64 `json:"transmission"`
	OutputWaist         float64 `json:"output_waist"`
	OutputWaistPosition float64 `json:"output_waist_position"`
}

type PeakReport struct {
	FocalLength  float64 `json:"focal_length"`
	AiryDiameter float64 `json:"airy_diameter"`
	Geometric    float64 `json:"geometric"`
	Angular      float64 `json:"angular"`
	Total        float64 `json:"total"`
}

type FitReport struct {
	Aperture     float64                `json:"aperture"`
	Loss         float64                `json:"loss"`
	Measurements []coupling.Measurement `json:"measurements"`
	Apertures    []float64              `json:"apertures"`
	Losses       []float64              `json:"losses"`
}

// ProfileReport is the beam sampled along the probe range.
type ProfileReport struct {
	ApertureDiameter float64   `json:"aperture_diameter,omitempty"`
	Positions        []float64 `json:"positions"`
	Radii            []float64 `json:"radii"`
	Transmission     []float64 `json:"transmission,omitempty"`
}

func NewReport(scenario, command string) *Report {
	return &Report{
		ID:        uuid.NewString(),
		Scenario:  scenario,
		Command:   command,
		Timestamp: time.Now().UTC(),
	}
}

func (r *Report) AddPath(p *optics.Path) {
	for _, s := range p.Stages {
		r.Stages = append(r.Stages, StageReport{
			Kind:                s.Element.Kind(),
			Position:            s.Element.Position(),
			FocalLength:         s.Element.FocalLength(),
			Diameter:            s.Element.Diameter(),
			IncidentRadius:      s.Incident.Radius(s.Element.Position()),
			Transmission:        s.Transmission,
			OutputWaist:         s.Output.Waist,
			OutputWaistPosition: s.Output.WaistPosition,
		})
	}
	r.TotalTransmission = p.TotalTransmission()
}

func (r *Report) AddPeak(p coupling.Point) {
	r.Peak = &PeakReport{
		FocalLength:  p.FocalLength,
		AiryDiameter: p.AiryDiameter,
		Geometric:    p.Geometric,
		Angular:      p.Angular,
		Total:        p.Total,
	}
}

func (r *Report) AddFit(f *coupling.FitResult) {
	r.Fit = &FitReport{
		Aperture:     f.Aperture,
		Loss:         f.Loss,
		Measurements: f.Used,
		Apertures:    f.Apertures,
		Losses:       f.Losses,
	}
	if peak, ok := f.Curve.Peak(); ok {
		r.AddPeak(peak)
	}
}

func (r *Report) AddProfile(p *experiment.Profile) {
	r.Profile = &ProfileReport{
		ApertureDiameter: p.ApertureDiameter,
		Positions:        p.Positions,
		Radii:            p.Radii,
		Transmission:     p.Transmission,
	}
}

func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
