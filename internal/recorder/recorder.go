package recorder

import "ProStatistics/internal/model"

// Snapshot holds one collection's aligned table and fetch statistics.
type Snapshot struct {
	Source          string
	GDPPoints       int
	InflationPoints int
	Table           *model.AlignedTable
}

// Recorder persists collection history for later analysis.
type Recorder interface {
	RecordSnapshot(snap *Snapshot) error
	Close() error
}
