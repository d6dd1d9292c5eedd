package model

import (
	"errors"
	"testing"
	"time"
)

func TestParseColumn(t *testing.T) {
	tests := []struct {
		in      string
		want    Column
		wantErr bool
	}{
		{"GDP", ColumnGDP, false},
		{"Inflation", ColumnInflation, false},
		{"gdp", "", true},
		{"", "", true},
		{"Unemployment", "", true},
	}
	for _, tt := range tests {
		got, err := ParseColumn(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownColumn) {
				t.Errorf("ParseColumn(%q): expected ErrUnknownColumn, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseColumn(%q): unexpected error %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseColumn(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestSeriesPoints_SkipsMissingValues(t *testing.T) {
	s := NewSeries("gdp")
	s.Years[0] = "1995"
	s.Years[1] = "1996"
	s.Years[2] = "1997"
	s.Values[0] = 90.5
	s.Values[2] = 101.0
	s.Values[7] = 5 // value without a year

	pts := s.Points()
	if len(pts) != 2 {
		t.Fatalf("expected 2 points, got %d", len(pts))
	}
	if pts[0].Year != "1995" || pts[0].Value != 90.5 {
		t.Errorf("unexpected first point: %+v", pts[0])
	}
	if pts[1].Year != "1997" || pts[1].Value != 101.0 {
		t.Errorf("unexpected second point: %+v", pts[1])
	}
}

func TestAlignedTable_Columns(t *testing.T) {
	rows := []Row{{Year: "2000", GDP: 10, Inflation: 1.5}, {Year: "2001", GDP: 12, Inflation: -0.2}}
	tbl := NewAlignedTable(rows, time.Unix(0, 0))
	rows[0].GDP = 999 // table must hold its own copy

	if tbl.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.Len())
	}
	if got := tbl.Column(ColumnGDP); got[0] != 10 || got[1] != 12 {
		t.Errorf("unexpected GDP column: %v", got)
	}
	if got := tbl.Column(ColumnInflation); got[0] != 1.5 || got[1] != -0.2 {
		t.Errorf("unexpected Inflation column: %v", got)
	}
	if got := tbl.Years(); got[0] != "2000" || got[1] != "2001" {
		t.Errorf("unexpected years: %v", got)
	}
}
