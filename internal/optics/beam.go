package optics

import (
	"fmt"
	"math"
)

// Beam is one free-space segment of a fundamental-mode Gaussian beam.
type Beam struct {
	Wavelength    float64 // mm
	Waist         float64 // 1/e² intensity radius at the narrowest point, mm
	WaistPosition float64 // axial coordinate of the waist, mm
}

// NewBeam validates the parameters and returns a beam segment.
func NewBeam(wavelength, waist, waistPosition float64) (Beam, error) {
	if !positiveFinite(wavelength) {
		return Beam{}, fmt.Errorf("%w: wavelength %g", ErrInvalidBeam, wavelength)
	}
	if !positiveFinite(waist) {
		return Beam{}, fmt.Errorf("%w: waist %g", ErrInvalidBeam, waist)
	}
	if math.IsNaN(waistPosition) || math.IsInf(waistPosition, 0) {
		return Beam{}, fmt.Errorf("%w: waist position %g", ErrInvalidBeam, waistPosition)
	}
	return Beam{Wavelength: wavelength, Waist: waist, WaistPosition: waistPosition}, nil
}

// RayleighRange is the distance from the waist over which the radius grows by √2.
func (b Beam) RayleighRange() float64 {
	return math.Pi * b.Waist * b.Waist / b.Wavelength
}

// Radius returns the 1/e² beam radius at axial position z.
func (b Beam) Radius(z float64) float64 {
	u := (z - b.WaistPosition) / b.RayleighRange()
	return b.Waist * math.Sqrt(1+u*u)
}

// Divergence returns the far-field half-angle in radians.
func (b Beam) Divergence() float64 {
	return b.Wavelength / (math.Pi * b.Waist)
}

// PowerThroughAperture returns the fraction of beam power passing a centred
// circular aperture of radius r placed at z.
func (b Beam) PowerThroughAperture(r, z float64) float64 {
	w := b.Radius(z)
	return 1 - math.Exp(-2*r*r/(w*w))
}

func (b Beam) RadiusProfile(zs []float64) []float64 {
	out := make([]float64, len(zs))
	for i, z := range zs {
		out[i] = b.Radius(z)
	}
	return out
}

func (b Beam) TransmissionProfile(r float64, zs []float64) []float64 {
	out := make([]float64, len(zs))
	for i, z := range zs {
		out[i] = b.PowerThroughAperture(r, z)
	}
	return out
}

func (b Beam) String() string {
	return fmt.Sprintf("beam(λ=%.4g mm, w0=%.4g mm @ z=%.4g mm)", b.Wavelength, b.Waist, b.WaistPosition)
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
