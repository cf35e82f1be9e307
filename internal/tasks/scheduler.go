// Package tasks runs the background housekeeping loops: backups,
// savings interest, cache sweeps, job activity enforcement, security
// audits and performance sampling.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/THEREALVANHEL/coalbot/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Task is one periodic job.
type Task struct {
	Name string
	Spec string // cron spec, e.g. "@every 1h"
	Run  func(ctx context.Context) error
}

// Cadences for the standing loops. Interest accrual is additionally
// gated per account, so a faster schedule cannot compound it.
const (
	InterestEvery    = "@every 24h"
	CacheSweepEvery  = "@every 30m"
	AuditEvery       = "@every 1h"
	PerfSampleEvery  = "@every 10m"
	JobSweepEvery    = "@every 2h"
	ExpirySweepEvery = "@every 10m"
)

// Scheduler supervises the periodic tasks. A panicking task is logged
// and retried on its next tick instead of taking the process down.
type Scheduler struct {
	cron *cron.Cron

	mu         sync.Mutex
	heartbeats map[string]time.Time
	failures   map[string]int

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:       cron.New(),
		heartbeats: make(map[string]time.Time),
		failures:   make(map[string]int),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Add registers a task with the scheduler.
func (s *Scheduler) Add(t Task) error {
	_, err := s.cron.AddFunc(t.Spec, func() {
		s.runOnce(t)
	})
	if err != nil {
		return fmt.Errorf("task %s: %w", t.Name, err)
	}
	return nil
}

func (s *Scheduler) runOnce(t Task) {
	defer func() {
		if r := recover(); r != nil {
			s.noteFailure(t.Name)
			logger.Critical(fmt.Sprintf("task %s panicked: %v", t.Name, r), "Tasks")
		}
	}()

	start := time.Now()
	if err := t.Run(s.ctx); err != nil {
		s.noteFailure(t.Name)
		logger.Error(fmt.Sprintf("task %s failed: %v", t.Name, err), "Tasks")
		return
	}

	s.mu.Lock()
	s.heartbeats[t.Name] = time.Now()
	s.failures[t.Name] = 0
	s.mu.Unlock()

	logger.Debug(fmt.Sprintf("task %s finished in %s", t.Name, time.Since(start).Round(time.Millisecond)), "Tasks")
}

func (s *Scheduler) noteFailure(name string) {
	s.mu.Lock()
	s.failures[name]++
	n := s.failures[name]
	s.mu.Unlock()
	if n >= 3 {
		logger.Warn(fmt.Sprintf("task %s has failed %d times in a row", name, n), "Tasks")
	}
}

// Heartbeats returns the last successful run time per task.
func (s *Scheduler) Heartbeats() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Time, len(s.heartbeats))
	for k, v := range s.heartbeats {
		out[k] = v
	}
	return out
}

// Start begins ticking.
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("background task scheduler started", "Tasks")
}

// Stop cancels the task context and waits for running tasks to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(10 * time.Second):
		logger.Warn("task shutdown timed out", "Tasks")
	}
}
