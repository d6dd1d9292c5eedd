package collector

import (
	"context"

	"ProStatistics/internal/model"
)

// Fetcher defines the interface for fetching one indicator series.
type Fetcher interface {
	FetchSeries(ctx context.Context, name, url string) (*model.Series, error)
	Name() string
}
