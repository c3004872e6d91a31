// Package detector models the angular acceptance of a detector as a 1-D
// Gaussian density over the angle of incidence.
package detector

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultQuadratureStep is the largest sample spacing, in degrees, used
	// by Overlap. Results are accurate to roughly this resolution.
	DefaultQuadratureStep = 0.01

	// MinQuadratureStep is the finest sample spacing a response accepts.
	MinQuadratureStep = 1e-6

	// MaxQuadratureSamples caps the samples taken by one Overlap call; wider
	// windows are sampled more coarsely than Step.
	MaxQuadratureSamples = 1 << 16

	// DefaultMean is the nominal centre of an acceptance profile. Only the
	// offset between the profile centre and the evaluated window matters.
	DefaultMean = 15.0

	// AcceptanceSpread converts a half-angle acceptance into the standard
	// deviation of the response.
	AcceptanceSpread = 1.699
)

var ErrInvalidResponse = errors.New("detector: invalid angular response")

// AngularResponse is a normal density over angle, in degrees.
type AngularResponse struct {
	Mean   float64
	StdDev float64
	Step   float64
}

type Option func(*AngularResponse)

// WithQuadratureStep sets the maximum sample spacing used by Overlap.
func WithQuadratureStep(step float64) Option {
	return func(r *AngularResponse) {
		r.Step = step
	}
}

func NewAngularResponse(mean, stddev float64, opts ...Option) (*AngularResponse, error) {
	r := &AngularResponse{Mean: mean, StdDev: stddev, Step: DefaultQuadratureStep}
	for _, opt := range opts {
		opt(r)
	}

	if !(stddev > 0) || math.IsInf(stddev, 0) {
		return nil, fmt.Errorf("%w: stddev %g", ErrInvalidResponse, stddev)
	}
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return nil, fmt.Errorf("%w: mean %g", ErrInvalidResponse, mean)
	}
	if !(r.Step >= MinQuadratureStep) || math.IsInf(r.Step, 0) {
		return nil, fmt.Errorf("%w: quadrature step %g, minimum %g", ErrInvalidResponse, r.Step, MinQuadratureStep)
	}
	return r, nil
}

// FromAcceptanceAngle builds the response of a detector specified by its
// half-angle acceptance, centred on DefaultMean.
func FromAcceptanceAngle(halfAngle float64, opts ...Option) (*AngularResponse, error) {
	return NewAngularResponse(DefaultMean, halfAngle/AcceptanceSpread, opts...)
}

// Value is the probability density at angle x.
func (r *AngularResponse) Value(x float64) float64 {
	u := (x - r.Mean) / r.StdDev
	return math.Exp(-0.5*u*u) / (r.StdDev * math.Sqrt(2*math.Pi))
}

func (r *AngularResponse) Peak() float64 {
	return r.Value(r.Mean)
}

// Overlap is the mean density over the window [angle-width/2, angle+width/2]
// relative to the peak density. The window is sampled at midpoints of
// ceil(width/Step) equal cells, at most MaxQuadratureSamples; a non-positive
// width collapses to the ratio at angle.
func (r *AngularResponse) Overlap(angle, width float64) float64 {
	peak := r.Peak()
	if !(width > 0) {
		return r.Value(angle) / peak
	}

	n := MaxQuadratureSamples
	if c := math.Ceil(width / r.Step); c < float64(n) {
		n = int(c)
	}
	h := width / float64(n)
	lo := angle - width/2

	var (
		buf [256]float64
		sum float64
	)
	for start := 0; start < n; start += len(buf) {
		m := min(len(buf), n-start)
		for i := 0; i < m; i++ {
			buf[i] = r.Value(lo + (float64(start+i)+0.5)*h)
		}
		sum += floats.Sum(buf[:m])
	}

	return sum * h / (peak * width)
}

func (r *AngularResponse) String() string {
	return fmt.Sprintf("N(%.3g°, %.3g°)", r.Mean, r.StdDev)
}
