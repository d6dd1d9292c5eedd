package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ProStatistics/internal/model"
)

// TableCollector produces a fresh aligned table.
type TableCollector interface {
	Collect(ctx context.Context) (*model.AlignedTable, error)
}

// TableSink receives refreshed tables.
type TableSink interface {
	Set(t *model.AlignedTable)
}

// Scheduler re-collects the aligned table on a cron schedule.
type Scheduler struct {
	Cron      *cron.Cron
	Collector TableCollector
	Sink      TableSink
	Ctx       context.Context
	Log       *zap.SugaredLogger

	mu sync.Mutex // serializes refreshes
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col TableCollector, sink TableSink, log *zap.SugaredLogger) *Scheduler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Sink:      sink,
		Ctx:       ctx,
		Log:       log,
	}
}

// RegisterRefresh registers the refresh task. An empty spec disables it.
func (s *Scheduler) RegisterRefresh(spec string) error {
	if spec == "" {
		return nil
	}
	if _, err := s.Cron.AddFunc(spec, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Infow("scheduler started", "tasks", len(s.Cron.Entries()))
}

// Stop stops the cron scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RefreshNow runs a refresh immediately. On failure the previous table
// keeps being served.
func (s *Scheduler) RefreshNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.Collector.Collect(s.Ctx)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	s.Sink.Set(table)
	return nil
}

func (s *Scheduler) refreshTask() {
	s.Log.Info("running refresh task")
	if err := s.RefreshNow(); err != nil {
		s.Log.Errorw("refresh failed, keeping previous table", "error", err)
		return
	}
	s.Log.Info("refresh complete")
}
