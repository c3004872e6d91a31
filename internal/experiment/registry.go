package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/beamsim/internal/config"
	"github.com/san-kum/beamsim/internal/optics"
)

// ElementBuilder constructs an optical element from its scenario description.
type ElementBuilder func(config.ElementConfig) (optics.Element, error)

type Registry struct {
	elements map[string]ElementBuilder
}

func NewRegistry() *Registry {
	r := &Registry{
		elements: make(map[string]ElementBuilder),
	}

	r.elements["lens"] = func(c config.ElementConfig) (optics.Element, error) {
		l, err := optics.NewLens(c.FocalLength, c.Diameter, c.Position)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
	r.elements["toroidal_mirror"] = func(c config.ElementConfig) (optics.Element, error) {
		var (
			m   *optics.ToroidalMirror
			err error
		)
		theta := c.IncidenceAngle * math.Pi / 180
		if c.FrontFocal != 0 || c.BackFocal != 0 {
			m, err = optics.ToroidalMirrorFromFocalLengths(c.FrontFocal, c.BackFocal, theta, c.Diameter, c.Position)
		} else {
			m, err = optics.NewToroidalMirror(c.TangentialRadius, c.SagittalRadius, theta, c.Diameter, c.Position)
		}
		if err != nil {
			return nil, err
		}
		return m, nil
	}

	return r
}

func (r *Registry) Register(kind string, b ElementBuilder) {
	r.elements[kind] = b
}

func (r *Registry) GetElement(c config.ElementConfig) (optics.Element, error) {
	fn, ok := r.elements[c.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown element kind: %s", c.Kind)
	}
	return fn(c)
}

// Elements builds the whole chain, naming the failing element.
func (r *Registry) Elements(cs []config.ElementConfig) ([]optics.Element, error) {
	out := make([]optics.Element, 0, len(cs))
	for i, c := range cs {
		e, err := r.GetElement(c)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i+1, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *Registry) ListKinds() []string {
	names := make([]string, 0, len(r.elements))
	for name := range r.elements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
