package optics

import (
	"errors"
	"fmt"
)

// Domain errors for beam and element construction and propagation.
var (
	// ErrInvalidGeometry indicates an element positioned at or before the
	// waist of the beam it is asked to transform.
	ErrInvalidGeometry = errors.New("optics: element positioned before the waist of the input beam")

	// ErrInvalidBeam indicates a non-positive or non-finite wavelength or waist.
	ErrInvalidBeam = errors.New("optics: invalid beam parameters")

	// ErrInvalidElement indicates a non-positive diameter or a zero focal length.
	ErrInvalidElement = errors.New("optics: invalid element parameters")

	// ErrElementOrder indicates elements not sorted by strictly increasing position.
	ErrElementOrder = errors.New("optics: elements must be ordered by increasing position")
)

// GeometryError carries the offending positions of a failed transform.
type GeometryError struct {
	Stage         int
	Kind          string
	Position      float64
	WaistPosition float64
}

// Stage is 1-based within a propagation chain and 0 for a standalone transform.
func (e *GeometryError) Error() string {
	where := fmt.Sprintf("%s at z=%.3f mm", e.Kind, e.Position)
	if e.Stage > 0 {
		where = fmt.Sprintf("stage %d, %s", e.Stage, where)
	}
	return fmt.Sprintf("%s (%s, input waist at z=%.3f mm)", ErrInvalidGeometry.Error(), where, e.WaistPosition)
}

func (e *GeometryError) Unwrap() error {
	return ErrInvalidGeometry
}
