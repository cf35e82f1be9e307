package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/THEREALVANHEL/coalbot/internal/clock"
	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type usageRecord struct {
	command string
	date    string
}

type fakeUsageStore struct {
	records []usageRecord
}

func (s *fakeUsageStore) RecordCommandUsage(_ context.Context, command, date string) error {
	s.records = append(s.records, usageRecord{command, date})
	return nil
}

func TestRecordCommandCountsAndUsage(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	store := &fakeUsageStore{}
	c := NewCollector(store, clk)
	ctx := context.Background()

	c.RecordCommand(ctx, "work", 1, 5*time.Millisecond)
	c.RecordCommand(ctx, "work", 2, 7*time.Millisecond)
	c.RecordCommand(ctx, "daily", 1, time.Millisecond)

	counts := c.CommandCounts()
	assert.Equal(t, int64(2), counts["work"])
	assert.Equal(t, int64(1), counts["daily"])

	require.Len(t, store.records, 3)
	assert.Equal(t, usageRecord{"work", "2026-05-01"}, store.records[0])
}

func TestLatencyRingKeepsNewest(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	c := NewCollector(nil, clk)
	ctx := context.Background()

	// 60 samples at 1ms, then the ring holds only the last 50 when the
	// next 50 come in at 3ms.
	for i := 0; i < 60; i++ {
		c.RecordCommand(ctx, "ping", 1, time.Millisecond)
	}
	assert.Equal(t, time.Millisecond, c.AverageLatency("ping"))

	for i := 0; i < 50; i++ {
		c.RecordCommand(ctx, "ping", 1, 3*time.Millisecond)
	}
	assert.Equal(t, 3*time.Millisecond, c.AverageLatency("ping"))

	assert.Zero(t, c.AverageLatency("unknown"))
}

func TestTopCommands(t *testing.T) {
	c := NewCollector(nil, clock.NewFake(time.Unix(1_700_000_000, 0)))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		c.RecordCommand(ctx, "work", 1, 0)
	}
	for i := 0; i < 3; i++ {
		c.RecordCommand(ctx, "daily", 1, 0)
	}
	c.RecordCommand(ctx, "balance", 1, 0)
	c.RecordCommand(ctx, "avatar", 1, 0)

	top := c.TopCommands(3)
	assert.Equal(t, []string{"work", "daily", "avatar"}, top, "ties break alphabetically")

	all := c.TopCommands(10)
	assert.Len(t, all, 4)
}

func TestActiveUsersWindow(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	c := NewCollector(nil, clk)
	ctx := context.Background()

	c.RecordCommand(ctx, "work", 1, 0)
	clk.Advance(2 * time.Hour)
	c.RecordCommand(ctx, "work", 2, 0)
	clk.Advance(30 * time.Minute)

	assert.Equal(t, 2, c.ActiveUsers(24*time.Hour))
	assert.Equal(t, 1, c.ActiveUsers(time.Hour))
}

func TestSlowCommands(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	c := NewCollector(nil, clk)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		c.RecordCommand(ctx, "slots", 1, 4*time.Second)
	}
	c.RecordCommand(ctx, "ping", 1, time.Millisecond)
	// Mixed latencies that average under the threshold stay quiet.
	c.RecordCommand(ctx, "work", 1, 5*time.Second)
	c.RecordCommand(ctx, "work", 1, 500*time.Millisecond)

	assert.Equal(t, []string{"slots"}, c.SlowCommands(3*time.Second))
	assert.Empty(t, c.SlowCommands(10*time.Second))
}

func TestRecentErrors(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	c := NewCollector(nil, clk)

	c.RecordError("work", coalerr.InvalidArgument("bad job"))
	clk.Advance(time.Minute)
	c.RecordError("daily", errors.New("boom"))

	recent := c.RecentErrors(1)
	require.Len(t, recent, 1)
	assert.Equal(t, "daily", recent[0].Command)

	assert.Len(t, c.RecentErrors(10), 2)
}

func TestSummarize(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	c := NewCollector(nil, clk)
	ctx := context.Background()

	c.RecordCommand(ctx, "work", 1, time.Millisecond)
	c.RecordCommand(ctx, "daily", 2, time.Millisecond)
	c.RecordError("work", errors.New("boom"))
	clk.Advance(90 * time.Second)

	s := c.Summarize()
	assert.Equal(t, "1m30s", s.Uptime)
	assert.Equal(t, int64(2), s.TotalCommands)
	assert.Equal(t, 2, s.ActiveToday)
	assert.Equal(t, 1, s.ErrorCount)
}

func TestUptime(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	c := NewCollector(nil, clk)

	c.RecordPerf(PerfSample{At: clk.Now(), Goroutines: 12, Users: 3})
	clk.Advance(90 * time.Second)
	assert.Equal(t, 90*time.Second, c.Uptime())
}
