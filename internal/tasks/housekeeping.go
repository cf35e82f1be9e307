package tasks

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/THEREALVANHEL/coalbot/internal/analytics"
	"github.com/THEREALVANHEL/coalbot/internal/backup"
	"github.com/THEREALVANHEL/coalbot/internal/economy"
	"github.com/THEREALVANHEL/coalbot/internal/security"
	"github.com/THEREALVANHEL/coalbot/pkg/database"
	"github.com/THEREALVANHEL/coalbot/pkg/logger"
)

// BackupTask wraps the backup manager as a scheduled task.
type BackupTask struct {
	manager *backup.Manager
}

// NewBackupTask creates the hourly backup task.
func NewBackupTask(m *backup.Manager) *BackupTask {
	return &BackupTask{manager: m}
}

// Run takes one hourly backup.
func (t *BackupTask) Run(ctx context.Context) error {
	_, err := t.manager.Run(ctx, "hourly")
	return err
}

// CacheSweepTask evicts expired user cache entries.
type CacheSweepTask struct {
	cache *database.UserCache
}

// NewCacheSweepTask creates the sweep task.
func NewCacheSweepTask(cache *database.UserCache) *CacheSweepTask {
	return &CacheSweepTask{cache: cache}
}

// Run evicts everything past its TTL.
func (t *CacheSweepTask) Run(_ context.Context) error {
	if removed := t.cache.Sweep(); removed > 0 {
		logger.Debug(fmt.Sprintf("cache sweep evicted %d entries", removed), "Tasks")
	}
	return nil
}

// AuditTask runs the hourly security audit.
type AuditTask struct {
	security *security.Service
}

// NewAuditTask creates the audit task.
func NewAuditTask(sec *security.Service) *AuditTask {
	return &AuditTask{security: sec}
}

// Run ages out trail data and logs sustained offenders.
func (t *AuditTask) Run(_ context.Context) error {
	report := t.security.Audit()
	if len(report.SuspiciousUsers) > 0 {
		logger.Warn(fmt.Sprintf("security audit flagged %d users: %v",
			len(report.SuspiciousUsers), report.SuspiciousUsers), "Tasks")
	}
	return nil
}

// slowCommandThreshold is the mean handler latency above which a
// command is called out by the performance sampler.
const slowCommandThreshold = 3 * time.Second

// PerfTask samples runtime metrics into the analytics collector and
// flags commands whose handlers have become slow.
type PerfTask struct {
	store     database.Store
	collector *analytics.Collector
}

// NewPerfTask creates the performance sampler.
func NewPerfTask(store database.Store, collector *analytics.Collector) *PerfTask {
	return &PerfTask{store: store, collector: collector}
}

// Run captures one sample and warns on slow commands.
func (t *PerfTask) Run(ctx context.Context) error {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	users, err := t.store.CountUsers(ctx)
	if err != nil {
		return err
	}

	t.collector.RecordPerf(analytics.PerfSample{
		At:         time.Now().UTC(),
		Goroutines: runtime.NumGoroutine(),
		HeapBytes:  mem.HeapAlloc,
		Users:      users,
	})

	for _, command := range t.collector.SlowCommands(slowCommandThreshold) {
		logger.Warn(fmt.Sprintf("command %s averages %s per invocation",
			command, t.collector.AverageLatency(command).Round(time.Millisecond)), "Tasks")
	}
	return nil
}

// ExpirySweepTask removes expired temporary purchases and roles across
// all users, paging through the store.
type ExpirySweepTask struct {
	store   database.Store
	economy *economy.Service
}

// NewExpirySweepTask creates the sweep.
func NewExpirySweepTask(store database.Store, eco *economy.Service) *ExpirySweepTask {
	return &ExpirySweepTask{store: store, economy: eco}
}

// Run pages through users and strips expired items.
func (t *ExpirySweepTask) Run(ctx context.Context) error {
	const pageSize = 200
	var skip int64
	expired := 0

	for {
		page, err := t.store.TopUsers(ctx, "coins", skip, pageSize)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			break
		}
		for _, u := range page {
			if len(u.TemporaryPurchases) == 0 && len(u.TemporaryRoles) == 0 {
				continue
			}
			ids, err := t.economy.SweepExpiredPurchases(ctx, u.UserID)
			if err != nil {
				logger.Error(fmt.Sprintf("expiry sweep failed for %d: %v", u.UserID, err), "Tasks")
				continue
			}
			expired += len(ids)
		}
		if int64(len(page)) < pageSize {
			break
		}
		skip += pageSize
	}

	if expired > 0 {
		logger.Info(fmt.Sprintf("expiry sweep removed %d items", expired), "Tasks")
	}
	return nil
}
