package collector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ProStatistics/internal/aligner"
	"ProStatistics/internal/model"
	"ProStatistics/internal/recorder"
)

const (
	SeriesGDP       = "gdp"
	SeriesInflation = "inflation"
)

// MockFetcher returns fixed series for development and testing.
type MockFetcher struct {
	Series map[string]*model.Series
	Err    error
	Calls  []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(_ context.Context, name, _ string) (*model.Series, error) {
	m.Calls = append(m.Calls, name)
	if m.Err != nil {
		return nil, m.Err
	}
	if s, ok := m.Series[name]; ok {
		return s, nil
	}
	return model.NewSeries(name), nil
}

// Collector fetches both indicators and aligns them into a table.
type Collector struct {
	Fetcher      Fetcher
	GDPURL       string
	InflationURL string
	Recorder     recorder.Recorder
	Log          *zap.SugaredLogger
	now          func() time.Time
}

// NewCollector creates a new Collector. A nil recorder disables history.
func NewCollector(fetcher Fetcher, gdpURL, inflationURL string, rec recorder.Recorder, log *zap.SugaredLogger) *Collector {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Collector{
		Fetcher:      fetcher,
		GDPURL:       gdpURL,
		InflationURL: inflationURL,
		Recorder:     rec,
		Log:          log,
		now:          time.Now,
	}
}

// Collect fetches GDP then inflation and returns their aligned table.
// The first failing fetch aborts the collection.
func (c *Collector) Collect(ctx context.Context) (*model.AlignedTable, error) {
	gdp, err := c.Fetcher.FetchSeries(ctx, SeriesGDP, c.GDPURL)
	if err != nil {
		return nil, fmt.Errorf("fetch gdp: %w", err)
	}
	gdpPoints := gdp.Points()
	c.Log.Debugw("gdp series", "years", yearsOf(gdpPoints), "points", len(gdpPoints))

	inflation, err := c.Fetcher.FetchSeries(ctx, SeriesInflation, c.InflationURL)
	if err != nil {
		return nil, fmt.Errorf("fetch inflation: %w", err)
	}
	inflPoints := inflation.Points()
	c.Log.Debugw("inflation series", "years", yearsOf(inflPoints), "points", len(inflPoints))

	table := aligner.AlignAt(gdp, inflation, c.now())
	c.Log.Infow("aligned table built", "source", c.Fetcher.Name(), "rows", table.Len(), "common_years", table.Years())
	if table.Len() == 0 {
		c.Log.Warn("gdp and inflation share no year, charts will be empty")
	}

	if err := c.Recorder.RecordSnapshot(&recorder.Snapshot{
		Source:          c.Fetcher.Name(),
		GDPPoints:       len(gdpPoints),
		InflationPoints: len(inflPoints),
		Table:           table,
	}); err != nil {
		c.Log.Errorw("record snapshot", "error", err)
	}
	return table, nil
}

func yearsOf(points []model.Point) []string {
	years := make([]string, len(points))
	for i, p := range points {
		years[i] = p.Year
	}
	return years
}
