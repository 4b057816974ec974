package reconcile

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// GetFillValue is the three-way sentinel ratio used for histogram fills:
// -1 when both energies are exactly zero (no activity), -2 when hit energy
// exists without truth energy (reconstruction artifact), else the quotient.
func GetFillValue(hitEnergy float64, ideEnergy float64) float64 {
	if ideEnergy == 0 {
		if hitEnergy == 0 {
			return -1.0
		}
		return -2.0
	}
	return hitEnergy / ideEnergy
}

// safeDivide is the final-summary rule: zero on a zero denominator. Distinct
// from the fill sentinel on purpose.
func safeDivide(a float64, b float64) float64 {
	if b != 0 {
		return a / b
	}
	return 0
}

// SummaryRow is one species line of the final reconciliation table.
type SummaryRow struct {
	Species Species
	Overall float64
	Planes  [NPlanes]float64
}

// Summarize produces the fixed-shape 6x4 ratio table: per species, the
// overall hit/truth ratio across planes and the per-plane ratios.
func (t *RunTotals) Summarize() []SummaryRow {
	rows := make([]SummaryRow, 0, NSummarySpecies)
	for sp := SpeciesAll; sp < NSummarySpecies; sp++ {
		totals := t.perSpecies[sp]
		row := SummaryRow{
			Species: sp,
			Overall: safeDivide(floats.Sum(totals.Hit[:]), floats.Sum(totals.Ide[:])),
		}
		for plane := 0; plane < NPlanes; plane++ {
			row.Planes[plane] = safeDivide(totals.Hit[plane], totals.Ide[plane])
		}
		rows = append(rows, row)
	}
	return rows
}

// PrintSummary logs the final table and the per-plane energy totals.
func PrintSummary(totals *RunTotals, log Logger) {
	all := totals.Totals(SpeciesAll)
	for plane := 0; plane < NPlanes; plane++ {
		message := fmt.Sprintf("Plane %d total hit energy over all events: %.3f MeV", plane, all.Hit[plane])
		log.Info(message, "summary")
		message = fmt.Sprintf("Plane %d total IDE energy over all events: %.3f MeV", plane, all.Ide[plane])
		log.Info(message, "summary")
	}
	for _, row := range totals.Summarize() {
		message := fmt.Sprintf("%-8s overall %.4f plane0 %.4f plane1 %.4f plane2 %.4f",
			row.Species, row.Overall, row.Planes[0], row.Planes[1], row.Planes[2])
		log.Info(message, "summary")
	}
}
