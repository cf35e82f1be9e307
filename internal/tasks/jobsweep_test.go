package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/THEREALVANHEL/coalbot/internal/clock"
	"github.com/THEREALVANHEL/coalbot/pkg/database"
	"github.com/THEREALVANHEL/coalbot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	messages map[int64][]string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{messages: make(map[int64][]string)}
}

func (n *fakeNotifier) Notify(_ context.Context, userID int64, message string) error {
	n.messages[userID] = append(n.messages[userID], message)
	return nil
}

func seedWorker(t *testing.T, store *database.MemoryStore, userID int64, tier models.JobTier, lastWork time.Time) {
	t.Helper()
	ctx := context.Background()
	u, err := store.GetUser(ctx, userID)
	require.NoError(t, err)
	u.JobTier = tier
	u.WorkStreak = 5
	u.LastWork = lastWork.Unix()
	require.NoError(t, store.SaveUser(ctx, u))
}

func TestJobSweepDemotesIdleWorkers(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	store := database.NewMemoryStore(100)
	notifier := newFakeNotifier()
	sweep := NewJobSweep(store, notifier, clk)
	ctx := context.Background()

	seedWorker(t, store, 1, models.TierSenior, clk.Now().Add(-25*time.Hour))

	require.NoError(t, sweep.Run(ctx))

	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.TierMid, u.JobTier, "one tier per sweep")
	assert.Equal(t, 0, u.WorkStreak)
	assert.Equal(t, clk.Now().Unix(), u.LastWork, "demotion restarts the idle timer")
	require.Len(t, notifier.messages[1], 1)
	assert.Contains(t, notifier.messages[1][0], "demoted")
}

func TestJobSweepSparesActiveWorkers(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	store := database.NewMemoryStore(100)
	notifier := newFakeNotifier()
	sweep := NewJobSweep(store, notifier, clk)
	ctx := context.Background()

	// A hair under a full day idle is not demoted, only warned.
	seedWorker(t, store, 1, models.TierJunior, clk.Now().Add(-(24*time.Hour - time.Minute)))
	// Well inside the safe zone, nothing happens.
	seedWorker(t, store, 2, models.TierJunior, clk.Now().Add(-2*time.Hour))

	require.NoError(t, sweep.Run(ctx))

	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.TierJunior, u.JobTier)
	assert.Contains(t, notifier.messages[1][0], "demotes in")
	assert.Empty(t, notifier.messages[2])
}

func TestJobSweepSkipsEntryTier(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	store := database.NewMemoryStore(100)
	notifier := newFakeNotifier()
	sweep := NewJobSweep(store, notifier, clk)
	ctx := context.Background()

	seedWorker(t, store, 1, models.TierEntry, clk.Now().Add(-48*time.Hour))

	require.NoError(t, sweep.Run(ctx))

	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.TierEntry, u.JobTier, "entry tier has nowhere to fall")
	assert.Empty(t, notifier.messages[1])
}

func TestJobSweepWarningLeadPerTier(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	store := database.NewMemoryStore(100)
	notifier := newFakeNotifier()
	sweep := NewJobSweep(store, notifier, clk)
	ctx := context.Background()

	// Junior warns from 18h idle, executive already from 12h.
	seedWorker(t, store, 1, models.TierJunior, clk.Now().Add(-19*time.Hour))
	seedWorker(t, store, 2, models.TierExecutive, clk.Now().Add(-11*time.Hour))

	require.NoError(t, sweep.Run(ctx))

	assert.Len(t, notifier.messages[1], 1)
	assert.Empty(t, notifier.messages[2])
}

func TestJobSweepWarningDebounce(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	store := database.NewMemoryStore(100)
	notifier := newFakeNotifier()
	sweep := NewJobSweep(store, notifier, clk)
	ctx := context.Background()

	seedWorker(t, store, 1, models.TierMid, clk.Now().Add(-(16*time.Hour + 30*time.Minute)))

	require.NoError(t, sweep.Run(ctx))
	require.Len(t, notifier.messages[1], 1)

	// Another sweep an hour later stays silent.
	clk.Advance(time.Hour)
	require.NoError(t, sweep.Run(ctx))
	assert.Len(t, notifier.messages[1], 1)

	// Past the debounce the warning repeats.
	clk.Advance(6 * time.Hour)
	require.NoError(t, sweep.Run(ctx))
	assert.Len(t, notifier.messages[1], 2)
}

func TestJobSweepNilNotifier(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	store := database.NewMemoryStore(100)
	sweep := NewJobSweep(store, nil, clk)
	ctx := context.Background()

	seedWorker(t, store, 1, models.TierSenior, clk.Now().Add(-30*time.Hour))
	assert.NoError(t, sweep.Run(ctx))
}
