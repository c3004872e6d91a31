// Package coupling combines diffraction-limited focusing with a detector's
// angular acceptance into a total coupling efficiency.
//
// For a focusing optic of diameter D and focal length f the detector sees
//
//   - a diffraction-limited spot of [optics.AiryDiameter] d, of which an
//     aperture a collects min(1, (a/d)²), and
//   - a convergence cone of full apex angle 2·atan(D/2f), weighted by the
//     detector's [detector.AngularResponse].
//
// The product of the two factors is the total efficiency. [Composer.Sweep]
// evaluates it over a focal-length grid and [FitAperture] grid-searches the
// detector aperture that best reproduces measured efficiencies.
package coupling
