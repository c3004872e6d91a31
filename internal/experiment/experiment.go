package experiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/beamsim/internal/config"
	"github.com/san-kum/beamsim/internal/coupling"
	"github.com/san-kum/beamsim/internal/detector"
	"github.com/san-kum/beamsim/internal/logging"
	"github.com/san-kum/beamsim/internal/optics"
	"github.com/san-kum/beamsim/internal/sweep"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotSetup   = errors.New("experiment: not set up")
	ErrNoDetector = errors.New("experiment: scenario has no focusing optic or detector")
)

// Experiment runs the computations a scenario describes.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
	log      *logrus.Entry

	source   optics.Beam
	elements []optics.Element
	response *detector.AngularResponse
	ready    bool

	// Workers bounds parallel sweeps; zero uses GOMAXPROCS.
	Workers int
}

func New(cfg *config.Config, registry *Registry) *Experiment {
	return &Experiment{
		cfg:      cfg,
		registry: registry,
		log:      logging.Named("experiment").WithField("scenario", cfg.Name),
	}
}

// Setup validates the scenario and builds the source, the element chain and,
// when described, the detector response.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	src, err := optics.NewBeam(e.cfg.Wavelength, e.cfg.Source.Waist, e.cfg.Source.Position)
	if err != nil {
		return err
	}

	elements, err := e.registry.Elements(e.cfg.Elements)
	if err != nil {
		return err
	}

	var resp *detector.AngularResponse
	if e.cfg.HasDetector() {
		var opts []detector.Option
		if e.cfg.Detector.QuadratureStep > 0 {
			opts = append(opts, detector.WithQuadratureStep(e.cfg.Detector.QuadratureStep))
		}
		resp, err = detector.FromAcceptanceAngle(e.cfg.Detector.AcceptanceAngle, opts...)
		if err != nil {
			return err
		}
	}

	e.source, e.elements, e.response = src, elements, resp
	e.ready = true
	e.log.WithFields(logrus.Fields{
		"source":   src.String(),
		"elements": len(elements),
		"detector": resp != nil,
	}).Debug("setup complete")
	return nil
}

func (e *Experiment) Config() *config.Config {
	return e.cfg
}

func (e *Experiment) Source() optics.Beam {
	return e.source
}

func (e *Experiment) Elements() []optics.Element {
	return e.elements
}

// Propagate sends the source beam through the element chain.
func (e *Experiment) Propagate() (*optics.Path, error) {
	if !e.ready {
		return nil, ErrNotSetup
	}

	path, err := optics.Propagate(e.source, e.elements...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", e.cfg.Name, err)
	}

	for i, s := range path.Stages {
		e.log.WithFields(logrus.Fields{
			"stage":        i + 1,
			"kind":         s.Element.Kind(),
			"transmission": s.Transmission,
			"waist":        s.Output.Waist,
		}).Debug("stage propagated")
	}
	return path, nil
}

// Profile is the beam sampled along the probe range.
type Profile struct {
	Positions    []float64
	Radii        []float64
	Transmission []float64

	// ApertureDiameter is the probe aperture; zero leaves Transmission nil.
	ApertureDiameter float64
}

func (e *Experiment) Profile(ctx context.Context) (*Profile, error) {
	path, err := e.Propagate()
	if err != nil {
		return nil, err
	}

	probe := e.cfg.Probe
	end := probe.End
	if end <= probe.Start {
		end = defaultProbeEnd(path)
	}
	if end <= probe.Start {
		return nil, fmt.Errorf("scenario %s: empty probe range [%g, %g]", e.cfg.Name, probe.Start, end)
	}

	n := probe.Points
	if n <= 0 {
		n = config.DefaultProbePoints
	}

	p := &Profile{
		Positions:        coupling.Linspace(probe.Start, end, n),
		Radii:            make([]float64, n),
		ApertureDiameter: probe.Diameter,
	}
	if probe.Diameter > 0 {
		p.Transmission = make([]float64, n)
	}

	sweep.ParallelFor(n, 256, func(start, stop int) {
		for i := start; i < stop; i++ {
			z := p.Positions[i]
			b := path.BeamAt(z)
			p.Radii[i] = b.Radius(z)
			if p.Transmission != nil {
				p.Transmission[i] = b.PowerThroughAperture(probe.Diameter/2, z)
			}
		}
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// defaultProbeEnd reaches one Rayleigh range past the later of the last
// element and the output waist, which may be virtual and upstream.
func defaultProbeEnd(path *optics.Path) float64 {
	out := path.Output()
	end := out.WaistPosition
	if n := len(path.Stages); n > 0 {
		end = max(end, path.Stages[n-1].Element.Position())
	}
	return end + out.RayleighRange()
}

// Composer returns the efficiency model for the scenario's optic and
// detector with the given aperture.
func (e *Experiment) Composer(aperture float64) (*coupling.Composer, error) {
	if !e.ready {
		return nil, ErrNotSetup
	}
	if e.response == nil {
		return nil, ErrNoDetector
	}
	return &coupling.Composer{
		Wavelength:     e.cfg.Wavelength,
		OpticsDiameter: e.cfg.Focusing.OpticsDiameter,
		Aperture:       aperture,
		Response:       e.response,
		Workers:        e.Workers,
	}, nil
}

func (e *Experiment) FocalLengths() []float64 {
	f := e.cfg.Focusing
	return coupling.Linspace(f.FocalMin, f.FocalMax, f.Points)
}

// Focus sweeps the coupling efficiency over the configured focal lengths
// using the detector's nominal aperture.
func (e *Experiment) Focus(ctx context.Context) (*coupling.Curve, error) {
	c, err := e.Composer(e.cfg.Detector.Aperture)
	if err != nil {
		return nil, err
	}

	curve, err := c.Sweep(ctx, e.FocalLengths())
	if err != nil {
		return nil, err
	}
	if peak, ok := curve.Peak(); ok {
		e.log.WithFields(logrus.Fields{"focal_length": peak.FocalLength, "efficiency": peak.Total}).Debug("focus sweep peak")
	}
	return curve, nil
}

// ImageSweep places a focusing lens of every configured focal length at
// position, after the element chain, and returns the focused beams.
func (e *Experiment) ImageSweep(ctx context.Context, position float64) ([]optics.Beam, error) {
	path, err := e.Propagate()
	if err != nil {
		return nil, err
	}
	in := path.Output()
	fs := e.FocalLengths()
	d := e.cfg.Focusing.OpticsDiameter

	return sweep.Map(ctx, len(fs), e.Workers, func(_ context.Context, i int) (optics.Beam, error) {
		lens, err := optics.NewLens(fs[i], d, position)
		if err != nil {
			return optics.Beam{}, err
		}
		return lens.Transform(in)
	})
}

// Fit grid-searches the detector aperture against the scenario's measurements.
func (e *Experiment) Fit(ctx context.Context) (*coupling.FitResult, error) {
	c, err := e.Composer(e.cfg.Detector.Aperture)
	if err != nil {
		return nil, err
	}

	fit := e.cfg.Fit
	ms := make([]coupling.Measurement, len(fit.Measurements))
	for i, m := range fit.Measurements {
		ms[i] = coupling.Measurement{FocalLength: m.FocalLength, Value: m.Value}
	}

	res, err := coupling.FitAperture(ctx, coupling.FitInput{
		Composer:     *c,
		FocalLengths: e.FocalLengths(),
		Measurements: ms,
		FocalMin:     fit.FocalMin,
		FocalMax:     fit.FocalMax,
		Scale:        fit.Scale,
		Apertures:    coupling.Linspace(fit.ApertureMin, fit.ApertureMax, fit.AperturePoints),
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", e.cfg.Name, err)
	}

	e.log.WithFields(logrus.Fields{"aperture": res.Aperture, "loss": res.Loss}).Debug("aperture fit")
	return res, nil
}
