package dashboard

import (
	"fmt"
	"math"

	"ProStatistics/internal/model"
)

// MaxMarkerSize is the diameter, in pixels, of the largest scatter marker.
const MaxMarkerSize = 60

// Kind names a chart type.
type Kind string

const (
	KindBar     Kind = "bar"
	KindScatter Kind = "scatter"
)

// BarSelection holds the dropdown choices driving the bar chart.
type BarSelection struct {
	Y     model.Column `json:"y"`
	Color model.Column `json:"color"`
}

// ScatterSelection holds the dropdown choices driving the scatter chart.
type ScatterSelection struct {
	Y     model.Column `json:"y"`
	Size  model.Column `json:"size"`
	Color model.Column `json:"color"`
}

// DefaultBarSelection and DefaultScatterSelection are the dropdowns' initial values.
var (
	DefaultBarSelection     = BarSelection{Y: model.ColumnGDP, Color: model.ColumnInflation}
	DefaultScatterSelection = ScatterSelection{Y: model.ColumnGDP, Size: model.ColumnInflation, Color: model.ColumnInflation}
)

// FigurePoint is one mark on a chart. X is the year label.
type FigurePoint struct {
	X      string  `json:"x"`
	Y      float64 `json:"y"`
	Color  float64 `json:"color"`
	Size   float64 `json:"size,omitempty"`
	Marker float64 `json:"marker,omitempty"`
}

// Figure is a renderer-independent chart specification.
type Figure struct {
	Kind       Kind          `json:"kind"`
	Title      string        `json:"title"`
	XLabel     string        `json:"x_label"`
	YLabel     string        `json:"y_label"`
	ColorLabel string        `json:"color_label"`
	SizeLabel  string        `json:"size_label,omitempty"`
	Points     []FigurePoint `json:"points"`
}

// Empty reports whether the figure has nothing to draw.
func (f Figure) Empty() bool { return len(f.Points) == 0 }

// ColorRange returns the min and max of the color dimension.
func (f Figure) ColorRange() (lo, hi float64) {
	return extent(f.Points, func(p FigurePoint) float64 { return p.Color })
}

// BarFigure builds the bar chart: one bar per year, height from sel.Y,
// fill from sel.Color.
func BarFigure(t *model.AlignedTable, sel BarSelection) Figure {
	fig := Figure{
		Kind:       KindBar,
		Title:      fmt.Sprintf("%s by year", sel.Y),
		XLabel:     "Year",
		YLabel:     string(sel.Y),
		ColorLabel: string(sel.Color),
		Points:     make([]FigurePoint, 0, t.Len()),
	}
	for _, r := range t.Rows {
		fig.Points = append(fig.Points, FigurePoint{
			X:     r.Year,
			Y:     r.Get(sel.Y),
			Color: r.Get(sel.Color),
		})
	}
	return fig
}

// ScatterFigure builds the scatter chart. Inflation can be negative, so
// when it drives the marker size its absolute value is used.
func ScatterFigure(t *model.AlignedTable, sel ScatterSelection) Figure {
	fig := Figure{
		Kind:       KindScatter,
		Title:      fmt.Sprintf("%s by year, sized by %s", sel.Y, sel.Size),
		XLabel:     "Year",
		YLabel:     string(sel.Y),
		ColorLabel: string(sel.Color),
		SizeLabel:  string(sel.Size),
		Points:     make([]FigurePoint, 0, t.Len()),
	}
	for _, r := range t.Rows {
		fig.Points = append(fig.Points, FigurePoint{
			X:     r.Year,
			Y:     r.Get(sel.Y),
			Color: r.Get(sel.Color),
			Size:  SizeValue(sel.Size, r.Get(sel.Size)),
		})
	}
	scaleMarkers(fig.Points)
	return fig
}

// SizeValue maps a raw column value to a marker size value.
func SizeValue(c model.Column, v float64) float64 {
	if c == model.ColumnInflation {
		return math.Abs(v)
	}
	return v
}

// scaleMarkers sets marker diameters so that marker area is proportional to
// size and the largest marker is MaxMarkerSize wide.
func scaleMarkers(points []FigurePoint) {
	_, hi := extent(points, func(p FigurePoint) float64 { return p.Size })
	for i := range points {
		if hi <= 0 || points[i].Size <= 0 {
			points[i].Marker = 0
			continue
		}
		points[i].Marker = MaxMarkerSize * math.Sqrt(points[i].Size/hi)
	}
}

func extent(points []FigurePoint, get func(FigurePoint) float64) (lo, hi float64) {
	if len(points) == 0 {
		return 0, 0
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range points {
		v := get(p)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
