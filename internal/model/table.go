package model

import "time"

// Row is one year of the aligned table.
type Row struct {
	Year      string  `json:"year"`
	GDP       float64 `json:"gdp"`
	Inflation float64 `json:"inflation"`
}

// Get returns the row's value for the given column.
func (r Row) Get(c Column) float64 {
	if c == ColumnInflation {
		return r.Inflation
	}
	return r.GDP
}

// AlignedTable joins the GDP and inflation series on year.
// Rows are in ascending year order and are never modified after construction.
type AlignedTable struct {
	Rows      []Row     `json:"rows"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewAlignedTable copies rows into a new table.
func NewAlignedTable(rows []Row, fetchedAt time.Time) *AlignedTable {
	cp := make([]Row, len(rows))
	copy(cp, rows)
	return &AlignedTable{Rows: cp, FetchedAt: fetchedAt}
}

func (t *AlignedTable) Len() int { return len(t.Rows) }

// Years returns the year labels in row order.
func (t *AlignedTable) Years() []string {
	years := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		years[i] = r.Year
	}
	return years
}

// Column returns the values of c in row order.
func (t *AlignedTable) Column(c Column) []float64 {
	vals := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		vals[i] = r.Get(c)
	}
	return vals
}
