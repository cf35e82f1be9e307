// Package analytics keeps in-memory usage, latency and error counters
// with bounded retention, and mirrors per-day command counts into the
// document store.
package analytics

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/THEREALVANHEL/coalbot/internal/clock"
	"github.com/THEREALVANHEL/coalbot/pkg/logger"
)

const (
	maxLatencySamples = 50
	maxErrors         = 1000
	maxPerfSamples    = 10000
	activityWindow    = 7 * 24 * time.Hour
)

// UsageStore persists the per-day command counters.
type UsageStore interface {
	RecordCommandUsage(ctx context.Context, command, date string) error
}

// ErrorRecord is one captured handler error.
type ErrorRecord struct {
	Command string    `json:"command"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// PerfSample is one periodic runtime measurement.
type PerfSample struct {
	At         time.Time `json:"at"`
	Goroutines int       `json:"goroutines"`
	HeapBytes  uint64    `json:"heap_bytes"`
	Users      int64     `json:"users"`
}

// Collector aggregates runtime analytics.
type Collector struct {
	mu    sync.Mutex
	clock clock.Clock
	store UsageStore

	commandCounts map[string]int64
	latencies     map[string][]time.Duration
	errors        []ErrorRecord
	perf          []PerfSample
	activity      map[int64][]time.Time

	startedAt time.Time
}

// NewCollector creates the collector. The store may be nil in tests.
func NewCollector(store UsageStore, clk clock.Clock) *Collector {
	if clk == nil {
		clk = clock.System{}
	}
	return &Collector{
		clock:         clk,
		store:         store,
		commandCounts: make(map[string]int64),
		latencies:     make(map[string][]time.Duration),
		activity:      make(map[int64][]time.Time),
		startedAt:     clk.Now(),
	}
}

// RecordCommand notes one command invocation with its handler latency.
func (c *Collector) RecordCommand(ctx context.Context, command string, userID int64, latency time.Duration) {
	c.mu.Lock()
	c.commandCounts[command]++

	ring := append(c.latencies[command], latency)
	if len(ring) > maxLatencySamples {
		ring = ring[len(ring)-maxLatencySamples:]
	}
	c.latencies[command] = ring

	now := c.clock.Now()
	trail := append(c.activity[userID], now)
	cutoff := now.Add(-activityWindow)
	i := 0
	for i < len(trail) && trail[i].Before(cutoff) {
		i++
	}
	c.activity[userID] = trail[i:]
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.RecordCommandUsage(ctx, command, now.UTC().Format("2006-01-02")); err != nil {
			logger.Warn("command usage write failed: "+err.Error(), "Analytics")
		}
	}
}

// RecordError captures a handler error, keeping the newest entries.
func (c *Collector) RecordError(command string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errors = append(c.errors, ErrorRecord{
		Command: command,
		Message: err.Error(),
		At:      c.clock.Now(),
	})
	if len(c.errors) > maxErrors {
		c.errors = c.errors[len(c.errors)-maxErrors:]
	}
}

// RecordPerf appends one runtime sample.
func (c *Collector) RecordPerf(sample PerfSample) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.perf = append(c.perf, sample)
	if len(c.perf) > maxPerfSamples {
		c.perf = c.perf[len(c.perf)-maxPerfSamples:]
	}
}

// CommandCounts returns a copy of the per-command totals.
func (c *Collector) CommandCounts() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]int64, len(c.commandCounts))
	for k, v := range c.commandCounts {
		out[k] = v
	}
	return out
}

// TopCommands returns the n most used commands, busiest first.
func (c *Collector) TopCommands(n int) []string {
	counts := c.CommandCounts()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if n < len(names) {
		names = names[:n]
	}
	return names
}

// AverageLatency returns the mean handler latency for a command over
// its retained samples.
func (c *Collector) AverageLatency(command string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	ring := c.latencies[command]
	if len(ring) == 0 {
		return 0
	}
	var total time.Duration
	for _, l := range ring {
		total += l
	}
	return total / time.Duration(len(ring))
}

// SlowCommands returns the commands whose mean handler latency exceeds
// the threshold, sorted by name.
func (c *Collector) SlowCommands(threshold time.Duration) []string {
	c.mu.Lock()
	var slow []string
	for command, ring := range c.latencies {
		if len(ring) == 0 {
			continue
		}
		var total time.Duration
		for _, l := range ring {
			total += l
		}
		if total/time.Duration(len(ring)) > threshold {
			slow = append(slow, command)
		}
	}
	c.mu.Unlock()

	sort.Strings(slow)
	return slow
}

// RecentErrors returns up to n newest error records.
func (c *Collector) RecentErrors(n int) []ErrorRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n > len(c.errors) {
		n = len(c.errors)
	}
	out := make([]ErrorRecord, n)
	copy(out, c.errors[len(c.errors)-n:])
	return out
}

// ActiveUsers counts users seen within the window.
func (c *Collector) ActiveUsers(window time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.clock.Now().Add(-window)
	n := 0
	for _, trail := range c.activity {
		if len(trail) > 0 && trail[len(trail)-1].After(cutoff) {
			n++
		}
	}
	return n
}

// Uptime reports how long the collector has been running.
func (c *Collector) Uptime() time.Duration {
	return c.clock.Now().Sub(c.startedAt)
}

// Summary is the stats payload served over the web API.
type Summary struct {
	Uptime        string           `json:"uptime"`
	TotalCommands int64            `json:"total_commands"`
	CommandCounts map[string]int64 `json:"command_counts"`
	ActiveToday   int              `json:"active_today"`
	ErrorCount    int              `json:"error_count"`
}

// Summarize builds the web stats payload.
func (c *Collector) Summarize() Summary {
	counts := c.CommandCounts()
	var total int64
	for _, v := range counts {
		total += v
	}

	c.mu.Lock()
	errCount := len(c.errors)
	c.mu.Unlock()

	return Summary{
		Uptime:        c.Uptime().Round(time.Second).String(),
		TotalCommands: total,
		CommandCounts: counts,
		ActiveToday:   c.ActiveUsers(24 * time.Hour),
		ErrorCount:    errCount,
	}
}
