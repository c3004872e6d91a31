package coupling

import (
	"context"
	"fmt"

	"github.com/san-kum/beamsim/internal/optim"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"
)

type Measurement struct {
	FocalLength float64 `json:"focal_length"`
	Value       float64 `json:"value"`
}

// FitInput describes an aperture fit. Composer.Aperture is ignored.
type FitInput struct {
	Composer Composer

	// FocalLengths is the model grid, strictly increasing.
	FocalLengths []float64

	Measurements []Measurement

	// Only measurements with FocalMin <= f <= FocalMax take part.
	FocalMin, FocalMax float64

	// Scale multiplies the measured values before comparison; zero means 1.
	Scale float64

	// Apertures are the candidates, scanned in the given order.
	Apertures []float64
}

type FitResult struct {
	Aperture  float64
	Loss      float64
	Apertures []float64
	Losses    []float64

	// Used holds the filtered, scaled measurements.
	Used []Measurement

	// Curve is the model sweep at the best aperture.
	Curve *Curve
}

// FitAperture grid-searches the detector aperture minimizing the mean squared
// error between the model, linearly interpolated at the measured focal
// lengths, and the scaled measurements.
func FitAperture(ctx context.Context, in FitInput) (*FitResult, error) {
	if len(in.Apertures) == 0 {
		return nil, fmt.Errorf("%w: no aperture candidates", ErrInvalidGrid)
	}
	if len(in.FocalLengths) < 2 {
		return nil, fmt.Errorf("%w: %d focal lengths", ErrInvalidGrid, len(in.FocalLengths))
	}

	used := filterMeasurements(in.Measurements, in.FocalMin, in.FocalMax, in.Scale)
	if len(used) == 0 {
		return nil, fmt.Errorf("%w: [%g, %g]", ErrNoMeasurements, in.FocalMin, in.FocalMax)
	}

	// airy diameter and angular coupling do not depend on the aperture
	base := in.Composer
	base.Aperture = in.Apertures[0]
	curve, err := base.Sweep(ctx, in.FocalLengths)
	if err != nil {
		return nil, err
	}

	totals := make([]float64, curve.Len())
	sq := make([]float64, len(used))
	loss := func(params map[string]float64) (float64, error) {
		a := params["aperture"]
		for i := range totals {
			totals[i] = GeometricOverlap(a, curve.AiryDiameters[i]) * curve.Angular[i]
		}

		var pl interp.PiecewiseLinear
		if err := pl.Fit(curve.FocalLengths, totals); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidGrid, err)
		}
		for i, m := range used {
			d := pl.Predict(m.FocalLength) - m.Value
			sq[i] = d * d
		}
		return stat.Mean(sq, nil), nil
	}

	gs, err := optim.NewGridSearch([]string{"aperture"}, [][]float64{in.Apertures})
	if err != nil {
		return nil, err
	}
	res, err := gs.Search(ctx, loss)
	if err != nil {
		return nil, err
	}

	best := in.Composer
	best.Aperture = res.Best["aperture"]
	bestCurve, err := best.Sweep(ctx, in.FocalLengths)
	if err != nil {
		return nil, err
	}

	apertures, losses := res.Values("aperture")
	return &FitResult{
		Aperture:  best.Aperture,
		Loss:      res.Value,
		Apertures: apertures,
		Losses:    losses,
		Used:      used,
		Curve:     bestCurve,
	}, nil
}

func filterMeasurements(ms []Measurement, lo, hi, scale float64) []Measurement {
	if scale == 0 {
		scale = 1
	}
	out := make([]Measurement, 0, len(ms))
	for _, m := range ms {
		if m.FocalLength < lo || m.FocalLength > hi {
			continue
		}
		out = append(out, Measurement{FocalLength: m.FocalLength, Value: m.Value * scale})
	}
	return out
}
