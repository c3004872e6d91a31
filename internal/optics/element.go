package optics

import (
	"fmt"
	"math"
)

// Element is a thin focusing element on the optical axis. Negative focal
// lengths describe diverging elements.
type Element interface {
	Kind() string
	FocalLength() float64
	Diameter() float64
	Position() float64
}

// Transform images the input beam through e and returns the beam leaving it.
//
// The element must sit strictly downstream of the input waist; otherwise a
// *GeometryError wrapping ErrInvalidGeometry is returned.
func Transform(e Element, in Beam) (Beam, error) {
	d1 := e.Position() - in.WaistPosition
	if d1 <= 0 {
		return Beam{}, &GeometryError{Kind: e.Kind(), Position: e.Position(), WaistPosition: in.WaistPosition}
	}

	f := e.FocalLength()
	zR := in.RayleighRange()
	dx := d1 - f
	den := dx*dx + zR*zR

	w2 := math.Abs(f) * in.Waist / math.Sqrt(den)
	d2 := f + f*f*dx/den

	return Beam{
		Wavelength:    in.Wavelength,
		Waist:         w2,
		WaistPosition: e.Position() + d2,
	}, nil
}

// ApertureTransmission is the fraction of the incident beam passing the
// element's clear aperture.
func ApertureTransmission(e Element, in Beam) float64 {
	return in.PowerThroughAperture(e.Diameter()/2, e.Position())
}

// AiryDiameter is the diffraction-limited spot diameter to the first Airy
// minimum. apertureDiameter must be non-zero.
func AiryDiameter(wavelength, focalLength, apertureDiameter float64) float64 {
	return 2.44 * wavelength * focalLength / apertureDiameter
}

type Lens struct {
	focal    float64
	diameter float64
	position float64
}

func NewLens(focalLength, diameter, position float64) (*Lens, error) {
	if err := checkElement(focalLength, diameter, position); err != nil {
		return nil, err
	}
	return &Lens{focal: focalLength, diameter: diameter, position: position}, nil
}

func (l *Lens) Kind() string         { return "lens" }
func (l *Lens) FocalLength() float64 { return l.focal }
func (l *Lens) Diameter() float64    { return l.diameter }
func (l *Lens) Position() float64    { return l.position }

func (l *Lens) Transform(in Beam) (Beam, error) {
	return Transform(l, in)
}

// ToroidalMirror is an off-axis focusing mirror with tangential radius R and
// sagittal radius r, hit at the given angle of incidence.
type ToroidalMirror struct {
	tangential float64
	sagittal   float64
	incidence  float64
	diameter   float64
	position   float64
}

func NewToroidalMirror(tangential, sagittal, incidence, diameter, position float64) (*ToroidalMirror, error) {
	if math.IsNaN(incidence) || math.Abs(incidence) >= math.Pi/2 {
		return nil, fmt.Errorf("%w: incidence angle %g rad", ErrInvalidElement, incidence)
	}
	m := &ToroidalMirror{
		tangential: tangential,
		sagittal:   sagittal,
		incidence:  incidence,
		diameter:   diameter,
		position:   position,
	}
	if err := checkElement(m.FocalLength(), diameter, position); err != nil {
		return nil, err
	}
	return m, nil
}

// ToroidalMirrorFromFocalLengths derives the mirror radii imaging a front
// focus onto a back focus at the given incidence angle.
func ToroidalMirrorFromFocalLengths(front, back, incidence, diameter, position float64) (*ToroidalMirror, error) {
	s := 1/front + 1/back
	if s == 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return nil, fmt.Errorf("%w: focal lengths %g, %g", ErrInvalidElement, front, back)
	}
	c := math.Cos(incidence)
	return NewToroidalMirror(2/c/s, 2*c/s, incidence, diameter, position)
}

func (m *ToroidalMirror) Kind() string              { return "toroidal_mirror" }
func (m *ToroidalMirror) FocalLength() float64      { return m.sagittal / (2 * math.Cos(m.incidence)) }
func (m *ToroidalMirror) Diameter() float64         { return m.diameter }
func (m *ToroidalMirror) Position() float64         { return m.position }
func (m *ToroidalMirror) TangentialRadius() float64 { return m.tangential }
func (m *ToroidalMirror) SagittalRadius() float64   { return m.sagittal }
func (m *ToroidalMirror) IncidenceAngle() float64   { return m.incidence }

// TangentialFocalLength is the focal length in the plane of incidence.
func (m *ToroidalMirror) TangentialFocalLength() float64 {
	return m.tangential * math.Cos(m.incidence) / 2
}

func (m *ToroidalMirror) Transform(in Beam) (Beam, error) {
	return Transform(m, in)
}

func checkElement(focal, diameter, position float64) error {
	if focal == 0 || math.IsNaN(focal) || math.IsInf(focal, 0) {
		return fmt.Errorf("%w: focal length %g", ErrInvalidElement, focal)
	}
	if !positiveFinite(diameter) {
		return fmt.Errorf("%w: diameter %g", ErrInvalidElement, diameter)
	}
	if math.IsNaN(position) || math.IsInf(position, 0) {
		return fmt.Errorf("%w: position %g", ErrInvalidElement, position)
	}
	return nil
}
