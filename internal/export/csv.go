package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/beamsim/internal/coupling"
	"github.com/san-kum/beamsim/internal/experiment"
)

// WriteColumns writes equally long columns as CSV under the given header.
func WriteColumns(w io.Writer, header []string, cols ...[]float64) error {
	if len(header) != len(cols) {
		return fmt.Errorf("export: %d header fields for %d columns", len(header), len(cols))
	}
	n := 0
	if len(cols) > 0 {
		n = len(cols[0])
	}
	for i, c := range cols {
		if len(c) != n {
			return fmt.Errorf("export: column %q has %d rows, want %d", header[i], len(c), n)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(cols))
	for i := 0; i < n; i++ {
		for j, c := range cols {
			row[j] = strconv.FormatFloat(c[i], 'g', 10, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func WriteCurveCSV(w io.Writer, c *coupling.Curve) error {
	return WriteColumns(w,
		[]string{"focal_length", "airy_diameter", "convergence", "geometric", "angular", "total"},
		c.FocalLengths, c.AiryDiameters, c.Convergence, c.Geometric, c.Angular, c.Total)
}

func WriteProfileCSV(w io.Writer, p *experiment.Profile) error {
	if p.Transmission == nil {
		return WriteColumns(w, []string{"position", "radius"}, p.Positions, p.Radii)
	}
	return WriteColumns(w,
		[]string{"position", "radius", "transmission"},
		p.Positions, p.Radii, p.Transmission)
}

func WriteFitCSV(w io.Writer, r *coupling.FitResult) error {
	return WriteColumns(w, []string{"aperture", "loss"}, r.Apertures, r.Losses)
}
