package model

import (
	"errors"
	"fmt"
	"sort"
)

// Column identifies one of the aligned table's value columns.
type Column string

const (
	ColumnGDP       Column = "GDP"
	ColumnInflation Column = "Inflation"
)

// Columns lists the selectable columns in dropdown order.
var Columns = []Column{ColumnGDP, ColumnInflation}

// ErrUnknownColumn is returned when a selection names no table column.
var ErrUnknownColumn = errors.New("unknown column")

// ParseColumn maps a dropdown value to a Column.
func ParseColumn(s string) (Column, error) {
	for _, c := range Columns {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownColumn, s)
}

// Point is a single year/value observation.
type Point struct {
	Year  string
	Value float64
}

// Series is one fetched indicator: a position-to-year index paired with a
// sparse position-to-value mapping.
type Series struct {
	Name   string
	Years  map[int]string
	Values map[int]float64
}

// NewSeries builds a Series with empty maps.
func NewSeries(name string) *Series {
	return &Series{
		Name:   name,
		Years:  make(map[int]string),
		Values: make(map[int]float64),
	}
}

// Points returns the observations whose position has both a year and a
// value, in ascending position order.
func (s *Series) Points() []Point {
	positions := make([]int, 0, len(s.Years))
	for pos := range s.Years {
		if _, ok := s.Values[pos]; ok {
			positions = append(positions, pos)
		}
	}
	sort.Ints(positions)

	points := make([]Point, len(positions))
	for i, pos := range positions {
		points[i] = Point{Year: s.Years[pos], Value: s.Values[pos]}
	}
	return points
}
