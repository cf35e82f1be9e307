package security

import (
	"fmt"
	"testing"
	"time"

	"github.com/THEREALVANHEL/coalbot/internal/clock"
	"github.com/THEREALVANHEL/coalbot/internal/ratelimit"
	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	limiter := ratelimit.NewLimiter(ratelimit.DefaultLimits(), clk)
	return NewService(limiter, clk), clk
}

func TestBlockAndExpiry(t *testing.T) {
	svc, clk := newTestService(t)

	assert.NoError(t, svc.CheckBlocked(1))

	svc.Block(1, "manual")
	err := svc.CheckBlocked(1)
	require.Error(t, err)
	assert.Equal(t, coalerr.KindSuspiciousActivity, coalerr.KindOf(err))
	assert.Equal(t, 1, svc.BlockedCount())

	clk.Advance(time.Hour + time.Second)
	assert.NoError(t, svc.CheckBlocked(1), "expired block lifts")
	assert.Equal(t, 0, svc.BlockedCount())
}

func TestUnblock(t *testing.T) {
	svc, _ := newTestService(t)

	svc.Block(1, "manual")
	svc.Unblock(1)
	assert.NoError(t, svc.CheckBlocked(1))
}

func TestBurstUsageTightensLimits(t *testing.T) {
	svc, clk := newTestService(t)

	// 31 commands in an hour crosses the burst threshold. Keep the gaps
	// irregular so the timing check stays quiet.
	for i := 0; i < 31; i++ {
		require.NoError(t, svc.RecordCommand(1, fmt.Sprintf("cmd%d", i%3)))
		clk.Advance(time.Duration(60+(i%7)*13) * time.Second)
	}
	// Score 3 stays under the tighten threshold; no error either way.
	assert.NoError(t, svc.RecordCommand(1, "cmd"))
}

func TestBotLikeTimingBlocks(t *testing.T) {
	svc, clk := newTestService(t)

	// Metronome-regular commands plus a burst and large gains push the
	// score past the block threshold (3 burst + 3 gains + 4 timing).
	svc.RecordGain(1, 30_000)

	var blocked error
	for i := 0; i < 40; i++ {
		if err := svc.RecordCommand(1, "spam"); err != nil {
			blocked = err
			break
		}
		clk.Advance(2 * time.Second)
	}

	require.Error(t, blocked)
	assert.Equal(t, coalerr.KindSuspiciousActivity, coalerr.KindOf(blocked))
	require.Error(t, svc.CheckBlocked(1))
}

func TestLowCommandDiversityTightensLimits(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	limiter := ratelimit.NewLimiter(ratelimit.DefaultLimits(), clk)
	svc := NewService(limiter, clk)

	svc.RecordGain(1, 30_000)

	// Ten commands over two actions, spaced irregularly and slowly so
	// only the diversity check fires alongside the gain score.
	names := []string{"work", "daily"}
	for i := 0; i < 10; i++ {
		require.NoError(t, svc.RecordCommand(1, names[i%2]))
		clk.Advance(time.Duration(65+i*7) * time.Second)
	}

	// Score 7 tightens the limiter without blocking: the slots bucket
	// drops from ten to five.
	assert.NoError(t, svc.CheckBlocked(1))
	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Allow(1, "slots"))
	}
	err := limiter.Allow(1, "slots")
	require.Error(t, err)
	assert.Equal(t, coalerr.KindRateLimited, coalerr.KindOf(err))
}

func TestThreeDistinctCommandsAreNotFlagged(t *testing.T) {
	svc, clk := newTestService(t)

	svc.RecordGain(1, 30_000)
	names := []string{"work", "daily", "balance"}
	for i := 0; i < 12; i++ {
		require.NoError(t, svc.RecordCommand(1, names[i%3]))
		clk.Advance(time.Duration(65+i*7) * time.Second)
	}
	assert.NoError(t, svc.CheckBlocked(1))
}

func TestVerifyTransferLargeAmount(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.VerifyTransfer(1, 2, 50_001)
	require.Error(t, err)
	assert.Equal(t, coalerr.KindSuspiciousActivity, coalerr.KindOf(err))

	assert.NoError(t, svc.VerifyTransfer(1, 2, 50_000))
}

func TestVerifyTransferCapConfigurable(t *testing.T) {
	svc, _ := newTestService(t)

	svc.SetTransferCap(100_000)
	assert.NoError(t, svc.VerifyTransfer(1, 2, 60_000))

	err := svc.VerifyTransfer(1, 3, 100_001)
	require.Error(t, err)
	assert.Equal(t, coalerr.KindSuspiciousActivity, coalerr.KindOf(err))

	// Zero removes the ceiling entirely.
	svc.SetTransferCap(0)
	assert.NoError(t, svc.VerifyTransfer(1, 4, 1_000_000))
}

func TestVerifyTransferRepeatedIdentical(t *testing.T) {
	svc, clk := newTestService(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.VerifyTransfer(1, 2, 500))
		clk.Advance(time.Minute)
	}

	err := svc.VerifyTransfer(1, 2, 500)
	require.Error(t, err)
	assert.Equal(t, coalerr.KindSuspiciousActivity, coalerr.KindOf(err))

	// A different amount or recipient is fine.
	assert.NoError(t, svc.VerifyTransfer(1, 2, 501))
	assert.NoError(t, svc.VerifyTransfer(1, 3, 500))
}

func TestVerifyTransferBackAndForth(t *testing.T) {
	svc, clk := newTestService(t)

	require.NoError(t, svc.VerifyTransfer(2, 1, 20_000))

	// Sending a large amount straight back looks like laundering.
	err := svc.VerifyTransfer(1, 2, 15_000)
	require.Error(t, err)
	assert.Equal(t, coalerr.KindSuspiciousActivity, coalerr.KindOf(err))

	// Small round trips pass.
	assert.NoError(t, svc.VerifyTransfer(1, 2, 5_000))

	// After the five-minute window the return transfer passes.
	clk.Advance(6 * time.Minute)
	assert.NoError(t, svc.VerifyTransfer(1, 2, 15_000))
}

func TestAuditAgesTrailsAndBlocks(t *testing.T) {
	svc, clk := newTestService(t)

	require.NoError(t, svc.RecordCommand(1, "work"))
	svc.RecordGain(2, 100)
	svc.Block(3, "test")

	clk.Advance(25 * time.Hour)
	report := svc.Audit()

	assert.Equal(t, 2, report.TrailsAged)
	assert.Equal(t, 1, report.BlocksExpired)
	assert.Empty(t, report.SuspiciousUsers)
}

func TestAuditFlagsFailureStreaks(t *testing.T) {
	svc, _ := newTestService(t)

	for i := 0; i < 10; i++ {
		svc.RecordFailure(4)
	}
	report := svc.Audit()
	assert.Equal(t, []int64{4}, report.SuspiciousUsers)

	svc.RecordSuccess(4)
	report = svc.Audit()
	assert.Empty(t, report.SuspiciousUsers)
}
