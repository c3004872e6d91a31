package coupling_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/beamsim/internal/coupling"
	"github.com/san-kum/beamsim/internal/detector"
)

var _ = Describe("FitAperture", func() {
	var (
		composer  coupling.Composer
		focal     []float64
		apertures []float64
	)

	BeforeEach(func() {
		resp, err := detector.FromAcceptanceAngle(8.5)
		Expect(err).NotTo(HaveOccurred())
		composer = coupling.Composer{Wavelength: 3.15, OpticsDiameter: 187, Response: resp}
		focal = coupling.Linspace(1, 1000, 1000)
		apertures = coupling.Linspace(5, 20, 100)
	})

	synthetic := func(a0 float64, fs ...float64) []coupling.Measurement {
		c := composer
		c.Aperture = a0
		ms := make([]coupling.Measurement, len(fs))
		for i, f := range fs {
			ms[i] = coupling.Measurement{FocalLength: f, Value: c.Evaluate(f).Total}
		}
		return ms
	}

	It("recovers the aperture used to generate the data", func() {
		a0 := apertures[33]
		step := apertures[1] - apertures[0]

		res, err := coupling.FitAperture(context.Background(), coupling.FitInput{
			Composer:     composer,
			FocalLengths: focal,
			Measurements: synthetic(a0, 300, 350, 400, 500, 600, 700),
			FocalMin:     250,
			FocalMax:     800,
			Apertures:    apertures,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Aperture).To(BeNumerically("~", a0, step))
		Expect(res.Loss).To(BeNumerically("<", 1e-12))
		Expect(res.Curve.Len()).To(Equal(len(focal)))
		Expect(res.Used).To(HaveLen(6))
	})

	It("applies the fit range and scale", func() {
		ms := []coupling.Measurement{
			{FocalLength: 68, Value: 2.13},
			{FocalLength: 118, Value: 4.0},
			{FocalLength: 158, Value: 4.09},
			{FocalLength: 180, Value: 4},
		}

		res, err := coupling.FitAperture(context.Background(), coupling.FitInput{
			Composer:     composer,
			FocalLengths: focal,
			Measurements: ms,
			FocalMin:     100,
			FocalMax:     400,
			Scale:        0.16,
			Apertures:    apertures,
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Used).To(HaveLen(3))
		Expect(res.Used[0].FocalLength).To(Equal(118.0))
		Expect(res.Used[0].Value).To(BeNumerically("~", 0.64, 1e-12))

		Expect(res.Losses).To(HaveLen(len(apertures)))
		Expect(res.Apertures).To(Equal(apertures))
		for _, l := range res.Losses {
			Expect(res.Loss).To(BeNumerically("<=", l))
		}
		Expect(res.Aperture).To(BeNumerically(">=", 5))
		Expect(res.Aperture).To(BeNumerically("<=", 20))
	})

	It("breaks ties toward the smallest aperture", func() {
		// every candidate is larger than the spot at these focal lengths
		res, err := coupling.FitAperture(context.Background(), coupling.FitInput{
			Composer:     composer,
			FocalLengths: focal,
			Measurements: synthetic(20, 50, 60, 80),
			FocalMin:     0,
			FocalMax:     100,
			Apertures:    apertures,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Aperture).To(Equal(apertures[0]))
	})

	It("fails without measurements in range", func() {
		_, err := coupling.FitAperture(context.Background(), coupling.FitInput{
			Composer:     composer,
			FocalLengths: focal,
			Measurements: synthetic(10, 50),
			FocalMin:     100,
			FocalMax:     400,
			Apertures:    apertures,
		})
		Expect(err).To(MatchError(coupling.ErrNoMeasurements))
	})

	It("fails on an empty aperture grid", func() {
		_, err := coupling.FitAperture(context.Background(), coupling.FitInput{
			Composer:     composer,
			FocalLengths: focal,
			Measurements: synthetic(10, 300),
			FocalMax:     400,
		})
		Expect(err).To(MatchError(coupling.ErrInvalidGrid))
	})
})
