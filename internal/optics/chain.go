package optics

import (
	"errors"
	"fmt"
	"sort"
)

// Stage records one element of a propagation chain together with the beam
// arriving at it and the beam leaving it.
type Stage struct {
	Element      Element
	Incident     Beam
	Output       Beam
	Transmission float64
}

// Path is a source beam propagated through an ordered chain of elements.
type Path struct {
	Source Beam
	Stages []Stage
}

// Propagate transforms source through elements in order. Elements must be
// sorted by strictly increasing position and each must lie downstream of the
// waist of the beam reaching it.
func Propagate(source Beam, elements ...Element) (*Path, error) {
	p := &Path{Source: source, Stages: make([]Stage, 0, len(elements))}

	current := source
	for i, e := range elements {
		if i > 0 && e.Position() <= elements[i-1].Position() {
			return nil, fmt.Errorf("%w: stage %d at z=%g follows z=%g",
				ErrElementOrder, i+1, e.Position(), elements[i-1].Position())
		}

		out, err := Transform(e, current)
		if err != nil {
			var ge *GeometryError
			if errors.As(err, &ge) {
				ge.Stage = i + 1
			}
			return nil, err
		}

		p.Stages = append(p.Stages, Stage{
			Element:      e,
			Incident:     current,
			Output:       out,
			Transmission: ApertureTransmission(e, current),
		})
		current = out
	}

	return p, nil
}

// Output is the beam leaving the last element, or the source for an empty chain.
func (p *Path) Output() Beam {
	if len(p.Stages) == 0 {
		return p.Source
	}
	return p.Stages[len(p.Stages)-1].Output
}

// TotalTransmission is the product of the aperture transmissions of all stages.
func (p *Path) TotalTransmission() float64 {
	t := 1.0
	for _, s := range p.Stages {
		t *= s.Transmission
	}
	return t
}

// BeamAt returns the beam segment governing position z.
func (p *Path) BeamAt(z float64) Beam {
	// first stage strictly after z
	i := sort.Search(len(p.Stages), func(i int) bool {
		return p.Stages[i].Element.Position() > z
	})
	if i == 0 {
		return p.Source
	}
	return p.Stages[i-1].Output
}

func (p *Path) Radius(z float64) float64 {
	return p.BeamAt(z).Radius(z)
}

// RadiusProfile samples the piecewise beam radius at zs.
func (p *Path) RadiusProfile(zs []float64) []float64 {
	out := make([]float64, len(zs))
	for i, z := range zs {
		out[i] = p.Radius(z)
	}
	return out
}
