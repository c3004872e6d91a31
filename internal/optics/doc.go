// Package optics models axial propagation of scalar Gaussian beams through
// thin focusing elements.
//
// The package defines the beam state and the elements acting on it:
//
//   - [Beam]: waist, waist position and wavelength of one beam segment
//   - [Element]: focusing element interface shared by all variants
//   - [Lens]: thin lens
//   - [ToroidalMirror]: off-axis toroidal mirror
//   - [Path]: result of propagating a source beam through a chain of elements
//
// All lengths are in millimetres, angles of [ToroidalMirror] in radians.
//
// # Example
//
//	src, _ := optics.NewBeam(3.15, 5.6, 0)
//	l1, _ := optics.NewLens(350, 187, 350)
//	l2, _ := optics.NewLens(300, 187, 701)
//	path, err := optics.Propagate(src, l1, l2)
//	if errors.Is(err, optics.ErrInvalidGeometry) {
//	    // element placed before the waist it should image
//	}
//
// Beams and elements are immutable values and safe for concurrent use.
package optics
