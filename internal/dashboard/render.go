package dashboard

import (
	"fmt"
	"html"
	"io"
	"math"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth  = 960
	chartHeight = 480
	barSpacing  = 4
)

// Render writes fig as SVG.
func Render(fig Figure, w io.Writer) error {
	if fig.Empty() {
		return renderNoData(fig, w)
	}
	switch fig.Kind {
	case KindBar:
		return renderBar(fig, w)
	case KindScatter:
		return renderScatter(fig, w)
	default:
		return fmt.Errorf("unknown figure kind %q", fig.Kind)
	}
}

func renderBar(fig Figure, w io.Writer) error {
	cLo, cHi := fig.ColorRange()
	bars := make([]chart.Value, len(fig.Points))
	for i, p := range fig.Points {
		col := colorFor(p.Color, cLo, cHi)
		bars[i] = chart.Value{
			Label: p.X,
			Value: p.Y,
			Style: chart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 1},
		}
	}

	yLo, yHi := paddedRange(fig.Points, func(p FigurePoint) float64 { return p.Y }, true)
	bc := chart.BarChart{
		Title:      chartTitle(fig),
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   barWidth(len(bars)),
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.Style{FontSize: 7},
		YAxis: chart.YAxis{
			Name:           fig.YLabel,
			Range:          &chart.ContinuousRange{Min: yLo, Max: yHi},
			ValueFormatter: numberFormatter,
		},
		UseBaseValue: true,
		BaseValue:    0,
		Bars:         bars,
	}
	return bc.Render(chart.SVG, w)
}

func renderScatter(fig Figure, w io.Writer) error {
	xs := make([]float64, len(fig.Points))
	ys := make([]float64, len(fig.Points))
	markers := make([]float64, len(fig.Points))
	colors := make([]float64, len(fig.Points))
	for i, p := range fig.Points {
		x, err := strconv.ParseFloat(p.X, 64)
		if err != nil {
			x = float64(i)
		}
		xs[i], ys[i], markers[i], colors[i] = x, p.Y, p.Marker, p.Color
	}
	cLo, cHi := fig.ColorRange()

	series := chart.ContinuousSeries{
		Name:    fig.YLabel,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidthProvider: func(_, _ chart.Range, index int, _, _ float64) float64 {
				// go-chart dot width is a radius
				return math.Max(2, markers[index]/2)
			},
			DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
				return colorFor(colors[index], cLo, cHi).WithAlpha(200)
			},
		},
	}

	xLo, xHi := floatRange(xs, 1)
	yLo, yHi := paddedRange(fig.Points, func(p FigurePoint) float64 { return p.Y }, false)
	ch := chart.Chart{
		Title:      chartTitle(fig),
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           fig.XLabel,
			Range:          &chart.ContinuousRange{Min: xLo, Max: xHi},
			ValueFormatter: yearFormatter,
		},
		YAxis: chart.YAxis{
			Name:           fig.YLabel,
			Range:          &chart.ContinuousRange{Min: yLo, Max: yHi},
			ValueFormatter: numberFormatter,
		},
		Series: []chart.Series{series},
	}
	return ch.Render(chart.SVG, w)
}

// chartTitle appends the color scale legend, since go-chart draws no colorbar.
func chartTitle(fig Figure) string {
	lo, hi := fig.ColorRange()
	return fmt.Sprintf("%s (color: %s, purple %g to yellow %g)", fig.Title, fig.ColorLabel, lo, hi)
}

func renderNoData(fig Figure, w io.Writer) error {
	_, err := fmt.Fprintf(w,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`+
			`<text x="50%%" y="50%%" text-anchor="middle" font-family="sans-serif">%s: no data</text></svg>`,
		chartWidth, chartHeight, html.EscapeString(fig.Title))
	return err
}

// colorFor maps v onto the viridis scale spanning [lo,hi].
func colorFor(v, lo, hi float64) drawing.Color {
	if hi <= lo {
		return chart.Viridis(0.5, 0, 1)
	}
	return chart.Viridis(v, lo, hi)
}

func barWidth(n int) int {
	if n == 0 {
		return 0
	}
	bw := (chartWidth-120)/n - barSpacing
	if bw < 4 {
		return 4
	}
	if bw > 50 {
		return 50
	}
	return bw
}

// paddedRange widens [min,max] by 10% so marks never sit on the frame.
// With includeZero the range always covers the bar baseline and is not
// padded past it.
func paddedRange(points []FigurePoint, get func(FigurePoint) float64, includeZero bool) (lo, hi float64) {
	lo, hi = extent(points, get)
	if includeZero {
		lo, hi = math.Min(lo, 0), math.Max(hi, 0)
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.1, 1)
	}
	if !includeZero {
		return lo - pad, hi + pad
	}
	if lo < 0 {
		lo -= pad
	}
	if hi > 0 || lo == 0 {
		hi += pad
	}
	return lo, hi
}

func floatRange(vals []float64, minPad float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	pad := math.Max((hi-lo)*0.05, minPad)
	return lo - pad, hi + pad
}

func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(math.Round(f), 'f', 0, 64)
	}
	return fmt.Sprint(v)
}

func numberFormatter(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return fmt.Sprint(v)
	}
	if math.Abs(f) >= 1000 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', 1, 64)
}
