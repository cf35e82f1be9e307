package tasks

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/THEREALVANHEL/coalbot/internal/analytics"
	"github.com/THEREALVANHEL/coalbot/internal/clock"
	"github.com/THEREALVANHEL/coalbot/pkg/database"
	"github.com/THEREALVANHEL/coalbot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerfTaskWarnsOnSlowCommands(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	store := database.NewMemoryStore(100)
	collector := analytics.NewCollector(nil, clk)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		collector.RecordCommand(ctx, "slots", 1, 4*time.Second)
	}
	collector.RecordCommand(ctx, "ping", 1, time.Millisecond)

	var mu sync.Mutex
	var warnings []string
	logger.Get().AddListener(func(level logger.LogLevel, message, prefix string) {
		if level != logger.LevelWarn || prefix != "Tasks" {
			return
		}
		mu.Lock()
		warnings = append(warnings, message)
		mu.Unlock()
	})

	task := NewPerfTask(store, collector)
	require.NoError(t, task.Run(ctx))

	// Listeners run asynchronously.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(warnings) > 0
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, w := range warnings {
		assert.True(t, strings.Contains(w, "slots"), "warning names the slow command: %q", w)
		assert.NotContains(t, w, "ping")
	}
}

func TestPerfTaskQuietWhenHealthy(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	store := database.NewMemoryStore(100)
	collector := analytics.NewCollector(nil, clk)
	ctx := context.Background()

	collector.RecordCommand(ctx, "ping", 1, time.Millisecond)

	assert.Empty(t, collector.SlowCommands(3*time.Second))
	require.NoError(t, NewPerfTask(store, collector).Run(ctx))
}
