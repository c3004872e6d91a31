package coupling_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/beamsim/internal/coupling"
	"github.com/san-kum/beamsim/internal/detector"
	"github.com/san-kum/beamsim/internal/optics"
)

var _ = Describe("ConvergenceAngle", func() {
	It("is 90 degrees when the focal length is half the diameter", func() {
		Expect(coupling.ConvergenceAngle(187, 93.5)).To(BeNumerically("~", 90, 1e-12))
	})

	It("narrows with focal length", func() {
		Expect(coupling.ConvergenceAngle(187, 1000)).To(BeNumerically("<", coupling.ConvergenceAngle(187, 300)))
	})
})

var _ = Describe("GeometricOverlap", func() {
	DescribeTable("saturates at one",
		func(aperture, spot, want float64) {
			Expect(coupling.GeometricOverlap(aperture, spot)).To(BeNumerically("~", want, 1e-15))
		},
		Entry("aperture larger than spot", 12.0, 6.0, 1.0),
		Entry("aperture equal to spot", 5.0, 5.0, 1.0),
		Entry("half the spot", 5.0, 10.0, 0.25),
		Entry("tenth of the spot", 1.0, 10.0, 0.01),
	)
})

var _ = Describe("Composer", func() {
	var c *coupling.Composer

	BeforeEach(func() {
		resp, err := detector.FromAcceptanceAngle(30)
		Expect(err).NotTo(HaveOccurred())
		c = &coupling.Composer{Wavelength: 3.15, OpticsDiameter: 187, Aperture: 2, Response: resp}
	})

	It("rejects incomplete parameters", func() {
		bad := *c
		bad.Response = nil
		Expect(bad.Validate()).To(MatchError(coupling.ErrInvalidComposer))

		bad = *c
		bad.Aperture = 0
		_, err := bad.Sweep(context.Background(), []float64{100})
		Expect(err).To(MatchError(coupling.ErrInvalidComposer))
	})

	It("rejects non-positive focal lengths", func() {
		_, err := c.Sweep(context.Background(), []float64{100, 0})
		Expect(err).To(MatchError(coupling.ErrInvalidGrid))
	})

	It("evaluates each factor from its definition", func() {
		p := c.Evaluate(300)

		Expect(p.AiryDiameter).To(Equal(optics.AiryDiameter(3.15, 300, 187)))
		Expect(p.Convergence).To(Equal(coupling.ConvergenceAngle(187, 300)))
		Expect(p.Geometric).To(Equal(coupling.GeometricOverlap(2, p.AiryDiameter)))
		Expect(p.Angular).To(Equal(c.Response.Overlap(c.Response.Mean, p.Convergence)))
		Expect(p.Total).To(Equal(p.Geometric * p.Angular))
	})

	It("keeps total efficiency in (0,1] across a sweep", func() {
		curve, err := c.Sweep(context.Background(), coupling.Linspace(1, 1000, 1000))
		Expect(err).NotTo(HaveOccurred())
		Expect(curve.Len()).To(Equal(1000))

		for i := 0; i < curve.Len(); i++ {
			p := curve.Point(i)
			Expect(p.Total).To(BeNumerically(">", 0))
			Expect(p.Total).To(BeNumerically("<=", 1))
			Expect(p.Geometric).To(BeNumerically("<=", 1))
			Expect(p.Angular).To(BeNumerically("<=", 1))
			Expect(p.Total).To(Equal(p.Geometric * p.Angular))
		}
	})

	It("keeps sweep order and matches point evaluation", func() {
		fs := []float64{900, 68, 300, 158}
		curve, err := c.Sweep(context.Background(), fs)
		Expect(err).NotTo(HaveOccurred())
		Expect(curve.FocalLengths).To(Equal(fs))
		for i, f := range fs {
			Expect(curve.Point(i)).To(Equal(c.Evaluate(f)))
		}
	})

	It("finds an interior efficiency peak", func() {
		resp, _ := detector.FromAcceptanceAngle(8.5)
		c.Response = resp
		c.Aperture = 5

		curve, err := c.Sweep(context.Background(), coupling.Linspace(1, 1000, 1000))
		Expect(err).NotTo(HaveOccurred())

		peak, ok := curve.Peak()
		Expect(ok).To(BeTrue())
		Expect(peak.FocalLength).To(BeNumerically(">", 1))
		Expect(peak.FocalLength).To(BeNumerically("<", 1000))
		for _, v := range curve.Total {
			Expect(v).To(BeNumerically("<=", peak.Total))
		}
	})

	It("reports no peak for an empty curve", func() {
		curve, err := c.Sweep(context.Background(), nil)
		Expect(err).NotTo(HaveOccurred())
		_, ok := curve.Peak()
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Linspace", func() {
	It("includes both ends", func() {
		xs := coupling.Linspace(1, 1000, 1000)
		Expect(xs).To(HaveLen(1000))
		Expect(xs[0]).To(Equal(1.0))
		Expect(xs[999]).To(Equal(1000.0))
		Expect(xs[299]).To(BeNumerically("~", 300, 1e-9))
	})

	It("handles degenerate counts", func() {
		Expect(coupling.Linspace(1, 2, 0)).To(BeEmpty())
		Expect(coupling.Linspace(1, 2, 1)).To(Equal([]float64{1}))
		Expect(coupling.Linspace(0, 1, 3)).To(Equal([]float64{0, 0.5, 1}))
	})
})
