package aligner

import (
	"sort"
	"time"

	"ProStatistics/internal/model"
)

// Align joins the GDP and inflation series on year.
// Each series is resolved through its own position-to-year index exactly once,
// so a year sitting at different positions in the two series still joins.
// An empty intersection yields an empty table.
func Align(gdp, inflation *model.Series) *model.AlignedTable {
	return AlignAt(gdp, inflation, time.Time{})
}

// AlignAt is Align with an explicit fetch timestamp stamped on the table.
func AlignAt(gdp, inflation *model.Series, fetchedAt time.Time) *model.AlignedTable {
	gdpByYear := byYear(gdp)
	inflByYear := byYear(inflation)

	common := CommonYears(gdpByYear, inflByYear)
	rows := make([]model.Row, len(common))
	for i, year := range common {
		rows[i] = model.Row{
			Year:      year,
			GDP:       gdpByYear[year],
			Inflation: inflByYear[year],
		}
	}
	return model.NewAlignedTable(rows, fetchedAt)
}

// CommonYears returns the sorted intersection of the two year sets.
func CommonYears(a, b map[string]float64) []string {
	years := make([]string, 0, len(a))
	for y := range a {
		if _, ok := b[y]; ok {
			years = append(years, y)
		}
	}
	sort.Strings(years)
	return years
}

func byYear(s *model.Series) map[string]float64 {
	m := make(map[string]float64)
	if s == nil {
		return m
	}
	for _, p := range s.Points() {
		m[p.Year] = p.Value
	}
	return m
}
