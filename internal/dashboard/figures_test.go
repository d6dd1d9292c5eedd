package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProStatistics/internal/model"
)

func sampleTable() *model.AlignedTable {
	return model.NewAlignedTable([]model.Row{
		{Year: "2012", GDP: 168398, Inflation: 2.8},
		{Year: "2013", GDP: 170492, Inflation: 0.4},
		{Year: "2014", GDP: 173054, Inflation: -0.2},
		{Year: "2015", GDP: 179713, Inflation: 0.5},
	}, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestBarFigure(t *testing.T) {
	fig := BarFigure(sampleTable(), BarSelection{Y: model.ColumnInflation, Color: model.ColumnGDP})

	assert.Equal(t, KindBar, fig.Kind)
	assert.Equal(t, "Inflation", fig.YLabel)
	assert.Equal(t, "GDP", fig.ColorLabel)
	require.Len(t, fig.Points, 4)
	assert.Equal(t, FigurePoint{X: "2014", Y: -0.2, Color: 173054}, fig.Points[2])
}

func TestScatterFigure_AbsoluteInflationSize(t *testing.T) {
	tbl := model.NewAlignedTable([]model.Row{{Year: "2020", GDP: 200519, Inflation: -3.2}}, time.Time{})

	fig := ScatterFigure(tbl, ScatterSelection{Y: model.ColumnGDP, Size: model.ColumnInflation, Color: model.ColumnInflation})

	require.Len(t, fig.Points, 1)
	assert.Equal(t, 3.2, fig.Points[0].Size)
	assert.Equal(t, -3.2, fig.Points[0].Color, "color keeps the signed value")
	assert.Equal(t, float64(MaxMarkerSize), fig.Points[0].Marker)
}

func TestScatterFigure_GDPSizeIsRaw(t *testing.T) {
	fig := ScatterFigure(sampleTable(), ScatterSelection{Y: model.ColumnInflation, Size: model.ColumnGDP, Color: model.ColumnGDP})

	require.Len(t, fig.Points, 4)
	assert.Equal(t, 168398.0, fig.Points[0].Size)
	assert.Equal(t, float64(MaxMarkerSize), fig.Points[3].Marker, "largest GDP gets the largest marker")
	assert.Less(t, fig.Points[0].Marker, fig.Points[3].Marker)
}

func TestScatterFigure_MarkerAreaProportionalToSize(t *testing.T) {
	tbl := model.NewAlignedTable([]model.Row{
		{Year: "2000", Inflation: 4},
		{Year: "2001", Inflation: -1},
		{Year: "2002", Inflation: 0},
	}, time.Time{})

	fig := ScatterFigure(tbl, DefaultScatterSelection)

	assert.InDelta(t, 60, fig.Points[0].Marker, 1e-9)
	assert.InDelta(t, 30, fig.Points[1].Marker, 1e-9)
	assert.Zero(t, fig.Points[2].Marker)
}

func TestFigures_EmptyTable(t *testing.T) {
	empty := model.NewAlignedTable(nil, time.Time{})

	bar := BarFigure(empty, DefaultBarSelection)
	scatter := ScatterFigure(empty, DefaultScatterSelection)

	assert.True(t, bar.Empty())
	assert.True(t, scatter.Empty())
	lo, hi := bar.ColorRange()
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}

func TestSizeValue(t *testing.T) {
	assert.Equal(t, 3.2, SizeValue(model.ColumnInflation, -3.2))
	assert.Equal(t, -3.2, SizeValue(model.ColumnGDP, -3.2))
}
