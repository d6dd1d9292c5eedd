package dashboard

import (
	"sync/atomic"

	"ProStatistics/internal/metrics"
	"ProStatistics/internal/model"
)

// Store holds the aligned table being served. Tables are immutable; a
// refresh replaces the whole table rather than editing it.
type Store struct {
	table atomic.Pointer[model.AlignedTable]
}

// NewStore creates a Store serving t.
func NewStore(t *model.AlignedTable) *Store {
	s := &Store{}
	s.Set(t)
	return s
}

// Table returns the current table, never nil.
func (s *Store) Table() *model.AlignedTable {
	if t := s.table.Load(); t != nil {
		return t
	}
	return &model.AlignedTable{}
}

// Set replaces the served table.
func (s *Store) Set(t *model.AlignedTable) {
	if t == nil {
		return
	}
	s.table.Store(t)
	metrics.TableRows.Set(float64(t.Len()))
}
