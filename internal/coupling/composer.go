package coupling

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/beamsim/internal/detector"
	"github.com/san-kum/beamsim/internal/optics"
	"github.com/san-kum/beamsim/internal/sweep"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrInvalidComposer = errors.New("coupling: invalid composer parameters")
	ErrNoMeasurements  = errors.New("coupling: no measurements inside the fit range")
	ErrInvalidGrid     = errors.New("coupling: invalid sample grid")
)

// ConvergenceAngle is the full apex angle, in degrees, of the cone of rays
// converging through an optic of the given diameter onto its focus.
func ConvergenceAngle(opticsDiameter, focalLength float64) float64 {
	return 2 * math.Atan(opticsDiameter/(2*focalLength)) * 180 / math.Pi
}

// GeometricOverlap is the fraction of a diffraction-limited spot of the given
// diameter collected by a detector aperture, saturating at 1.
func GeometricOverlap(aperture, spot float64) float64 {
	r := aperture / spot
	return math.Min(1, r*r)
}

type Point struct {
	FocalLength  float64
	AiryDiameter float64
	Convergence  float64
	Geometric    float64
	Angular      float64
	Total        float64
}

// Composer evaluates the coupling efficiency of a fixed optic and detector
// as a function of focal length.
type Composer struct {
	Wavelength     float64
	OpticsDiameter float64
	Aperture       float64
	Response       *detector.AngularResponse

	// Workers bounds the goroutines used by Sweep; zero uses GOMAXPROCS.
	Workers int
}

func (c *Composer) Validate() error {
	switch {
	case !(c.Wavelength > 0):
		return fmt.Errorf("%w: wavelength %g", ErrInvalidComposer, c.Wavelength)
	case !(c.OpticsDiameter > 0):
		return fmt.Errorf("%w: optics diameter %g", ErrInvalidComposer, c.OpticsDiameter)
	case !(c.Aperture > 0):
		return fmt.Errorf("%w: aperture %g", ErrInvalidComposer, c.Aperture)
	case c.Response == nil:
		return fmt.Errorf("%w: missing angular response", ErrInvalidComposer)
	}
	return nil
}

// AngularCoupling is the detector response averaged over the convergence
// cone at focal length f, centred on the response peak.
func (c *Composer) AngularCoupling(f float64) float64 {
	return c.Response.Overlap(c.Response.Mean, ConvergenceAngle(c.OpticsDiameter, f))
}

func (c *Composer) Evaluate(f float64) Point {
	p := Point{
		FocalLength:  f,
		AiryDiameter: optics.AiryDiameter(c.Wavelength, f, c.OpticsDiameter),
		Convergence:  ConvergenceAngle(c.OpticsDiameter, f),
		Angular:      c.AngularCoupling(f),
	}
	p.Geometric = GeometricOverlap(c.Aperture, p.AiryDiameter)
	p.Total = p.Geometric * p.Angular
	return p
}

// Sweep evaluates the composer at every focal length. Focal lengths must be
// positive.
func (c *Composer) Sweep(ctx context.Context, focalLengths []float64) (*Curve, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	for _, f := range focalLengths {
		if !(f > 0) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: focal length %g", ErrInvalidGrid, f)
		}
	}

	points, err := sweep.Map(ctx, len(focalLengths), c.Workers, func(_ context.Context, i int) (Point, error) {
		return c.Evaluate(focalLengths[i]), nil
	})
	if err != nil {
		return nil, err
	}
	return newCurve(points), nil
}

// Curve holds a focal-length sweep column by column.
type Curve struct {
	FocalLengths  []float64
	AiryDiameters []float64
	Convergence   []float64
	Geometric     []float64
	Angular       []float64
	Total         []float64
}

func newCurve(points []Point) *Curve {
	n := len(points)
	c := &Curve{
		FocalLengths:  make([]float64, n),
		AiryDiameters: make([]float64, n),
		Convergence:   make([]float64, n),
		Geometric:     make([]float64, n),
		Angular:       make([]float64, n),
		Total:         make([]float64, n),
	}
	for i, p := range points {
		c.FocalLengths[i] = p.FocalLength
		c.AiryDiameters[i] = p.AiryDiameter
		c.Convergence[i] = p.Convergence
		c.Geometric[i] = p.Geometric
		c.Angular[i] = p.Angular
		c.Total[i] = p.Total
	}
	return c
}

func (c *Curve) Len() int {
	return len(c.FocalLengths)
}

func (c *Curve) Point(i int) Point {
	return Point{
		FocalLength:  c.FocalLengths[i],
		AiryDiameter: c.AiryDiameters[i],
		Convergence:  c.Convergence[i],
		Geometric:    c.Geometric[i],
		Angular:      c.Angular[i],
		Total:        c.Total[i],
	}
}

// Peak returns the sample with the highest total efficiency, the first one
// on ties. ok is false for an empty curve.
func (c *Curve) Peak() (p Point, ok bool) {
	if c.Len() == 0 {
		return Point{}, false
	}
	return c.Point(floats.MaxIdx(c.Total)), true
}

// Linspace returns n evenly spaced values from start to end inclusive.
func Linspace(start, end float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{start}
	}
	return floats.Span(make([]float64, n), start, end)
}
