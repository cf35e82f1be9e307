// Package security watches command and transaction activity for abuse:
// burst usage, bot-like timing, implausible balance growth and transfer
// laundering patterns. Suspicious users get tightened limits; repeat
// offenders get blocked for an hour.
package security

import (
	"fmt"
	"sync"
	"time"

	"github.com/THEREALVANHEL/coalbot/internal/clock"
	"github.com/THEREALVANHEL/coalbot/internal/ratelimit"
	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/THEREALVANHEL/coalbot/pkg/logger"
)

const (
	blockDuration = time.Hour
	trailWindow   = 24 * time.Hour

	scoreTighten = 5
	scoreBlock   = 8

	defaultTransferCap = 50_000
)

type commandEvent struct {
	at      time.Time
	command string
}

type transferEvent struct {
	at     time.Time
	peerID int64
	amount int64
	out    bool
}

type userTrail struct {
	commands       []commandEvent
	transfers      []transferEvent
	gains          []gainEvent
	failedAttempts int
	lastFailure    time.Time
}

type gainEvent struct {
	at     time.Time
	amount int64
}

// Service tracks per-user activity and enforces blocks.
type Service struct {
	mu          sync.Mutex
	clock       clock.Clock
	limiter     *ratelimit.Limiter
	blocked     map[int64]time.Time
	trails      map[int64]*userTrail
	transferCap int64
}

// NewService creates the security service wired to the rate limiter it
// tightens on suspicion.
func NewService(limiter *ratelimit.Limiter, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{
		clock:       clk,
		limiter:     limiter,
		blocked:     make(map[int64]time.Time),
		trails:      make(map[int64]*userTrail),
		transferCap: defaultTransferCap,
	}
}

// SetTransferCap overrides the single-transfer ceiling. Amounts above
// it are rejected pending out-of-band verification; zero or negative
// removes the ceiling for deployments that verify elsewhere.
func (s *Service) SetTransferCap(limit int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transferCap = limit
}

// CheckBlocked returns a SuspiciousActivity error while the user is
// blocked. Expired blocks are lifted on the way through.
func (s *Service) CheckBlocked(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.blocked[userID]
	if !ok {
		return nil
	}
	if s.clock.Now().After(until) {
		delete(s.blocked, userID)
		logger.Info(fmt.Sprintf("block expired for user %d", userID), "Security")
		return nil
	}
	return coalerr.Suspicious("user %d blocked until %s", userID, until.Format(time.RFC3339))
}

// Block blocks a user for the standard hour.
func (s *Service) Block(userID int64, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocked[userID] = s.clock.Now().Add(blockDuration)
	logger.Warn(fmt.Sprintf("blocked user %d for %s: %s", userID, blockDuration, reason), "Security")
}

// Unblock lifts a block early.
func (s *Service) Unblock(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blocked, userID)
}

// BlockedCount returns the number of active blocks.
func (s *Service) BlockedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	n := 0
	for _, until := range s.blocked {
		if now.Before(until) {
			n++
		}
	}
	return n
}

func (s *Service) trail(userID int64) *userTrail {
	t, ok := s.trails[userID]
	if !ok {
		t = &userTrail{}
		s.trails[userID] = t
	}
	return t
}

func pruneCommands(events []commandEvent, cutoff time.Time) []commandEvent {
	i := 0
	for i < len(events) && events[i].at.Before(cutoff) {
		i++
	}
	return events[i:]
}

// RecordCommand notes one command use and re-scores the user. The
// returned error, if any, is a block that took effect just now.
func (s *Service) RecordCommand(userID int64, command string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	t := s.trail(userID)
	t.commands = append(t.commands, commandEvent{at: now, command: command})
	t.commands = pruneCommands(t.commands, now.Add(-trailWindow))

	return s.rescore(userID, t, now)
}

// RecordGain notes coins gained in one operation.
func (s *Service) RecordGain(userID, amount int64) {
	if amount <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	t := s.trail(userID)
	t.gains = append(t.gains, gainEvent{at: now, amount: amount})

	cutoff := now.Add(-trailWindow)
	i := 0
	for i < len(t.gains) && t.gains[i].at.Before(cutoff) {
		i++
	}
	t.gains = t.gains[i:]
}

// RecordFailure notes a failed attempt (bad argument, denied action).
func (s *Service) RecordFailure(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	t := s.trail(userID)
	if now.Sub(t.lastFailure) > trailWindow {
		t.failedAttempts = 0
	}
	t.failedAttempts++
	t.lastFailure = now
}

// RecordSuccess clears the consecutive-failure counter.
func (s *Service) RecordSuccess(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.trails[userID]; ok {
		t.failedAttempts = 0
	}
}

// rescore computes the suspicion score and applies consequences. Caller
// holds the mutex.
func (s *Service) rescore(userID int64, t *userTrail, now time.Time) error {
	score := 0

	hourAgo := now.Add(-time.Hour)
	recent := 0
	for _, c := range t.commands {
		if c.at.After(hourAgo) {
			recent++
		}
	}
	if recent > 30 {
		score += 3
	}

	for _, tr := range t.transfers {
		if tr.out && tr.amount > 50_000 && tr.at.After(hourAgo) {
			score += 2
			break
		}
	}

	var gained int64
	for _, g := range t.gains {
		if g.at.After(hourAgo) {
			gained += g.amount
		}
	}
	if gained > 25_000 {
		score += 3
	}

	if t.failedAttempts >= 10 {
		score += 2
	}

	if botLikeTiming(t.commands, now) {
		score += 4
	}

	if lowCommandDiversity(t.commands) {
		score += 4
	}

	switch {
	case score >= scoreBlock:
		s.blocked[userID] = now.Add(blockDuration)
		logger.Warn(fmt.Sprintf("blocked user %d, suspicion score %d", userID, score), "Security")
		return coalerr.Suspicious("suspicion score %d", score)
	case score >= scoreTighten:
		s.limiter.TightenAll(userID)
		logger.Warn(fmt.Sprintf("tightened limits for user %d, suspicion score %d", userID, score), "Security")
	}
	return nil
}

// botLikeTiming reports whether at least 70% of the inter-arrival
// times across the last ten commands are identical, the signature of a
// scripted client. Intervals are bucketed to 100ms so jitter below
// human reaction time still counts as identical.
func botLikeTiming(events []commandEvent, now time.Time) bool {
	const sample = 10
	if len(events) < sample {
		return false
	}
	tail := events[len(events)-sample:]
	if now.Sub(tail[0].at) > 5*time.Minute {
		return false
	}

	buckets := make(map[time.Duration]int, sample-1)
	mode := 0
	for i := 1; i < len(tail); i++ {
		iv := tail[i].at.Sub(tail[i-1].at).Round(100 * time.Millisecond)
		buckets[iv]++
		if buckets[iv] > mode {
			mode = buckets[iv]
		}
	}
	return mode*10 >= (sample-1)*7
}

// lowCommandDiversity reports whether the last ten commands span at
// most two distinct actions. Humans wander; farm scripts hammer the
// same one or two commands.
func lowCommandDiversity(events []commandEvent) bool {
	const sample = 10
	if len(events) < sample {
		return false
	}
	distinct := make(map[string]struct{}, 3)
	for _, e := range events[len(events)-sample:] {
		distinct[e.command] = struct{}{}
		if len(distinct) > 2 {
			return false
		}
	}
	return true
}

// VerifyTransfer vets an outgoing transfer before the economy applies
// it. Large transfers, repeated identical transfers and quick
// back-and-forth flows are rejected as laundering patterns.
func (s *Service) VerifyTransfer(srcID, dstID, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	t := s.trail(srcID)

	cutoff := now.Add(-trailWindow)
	i := 0
	for i < len(t.transfers) && t.transfers[i].at.Before(cutoff) {
		i++
	}
	t.transfers = t.transfers[i:]

	if s.transferCap > 0 && amount > s.transferCap {
		return coalerr.Suspicious("transfer of %d from %d exceeds the unverified limit", amount, srcID)
	}

	hourAgo := now.Add(-time.Hour)
	identical := 0
	for _, tr := range t.transfers {
		if tr.out && tr.peerID == dstID && tr.amount == amount && tr.at.After(hourAgo) {
			identical++
		}
	}
	if identical >= 5 {
		return coalerr.Suspicious("user %d repeated the same transfer %d times", srcID, identical)
	}

	if amount > 10_000 {
		fiveMinAgo := now.Add(-5 * time.Minute)
		for _, tr := range t.transfers {
			if !tr.out && tr.peerID == dstID && tr.at.After(fiveMinAgo) {
				return coalerr.Suspicious("back-and-forth transfers between %d and %d", srcID, dstID)
			}
		}
	}

	t.transfers = append(t.transfers, transferEvent{at: now, peerID: dstID, amount: amount, out: true})
	rt := s.trail(dstID)
	rt.transfers = append(rt.transfers, transferEvent{at: now, peerID: srcID, amount: amount, out: false})
	return nil
}

// AuditReport summarizes one audit sweep.
type AuditReport struct {
	TrailsAged      int
	BlocksExpired   int
	SuspiciousUsers []int64
}

// Audit ages out stale trail data and reports users with sustained
// failure streaks. The audit task runs this hourly.
func (s *Service) Audit() AuditReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	cutoff := now.Add(-trailWindow)
	var report AuditReport

	for id, until := range s.blocked {
		if now.After(until) {
			delete(s.blocked, id)
			report.BlocksExpired++
		}
	}

	for id, t := range s.trails {
		t.commands = pruneCommands(t.commands, cutoff)

		i := 0
		for i < len(t.transfers) && t.transfers[i].at.Before(cutoff) {
			i++
		}
		t.transfers = t.transfers[i:]

		i = 0
		for i < len(t.gains) && t.gains[i].at.Before(cutoff) {
			i++
		}
		t.gains = t.gains[i:]

		if t.failedAttempts >= 10 {
			report.SuspiciousUsers = append(report.SuspiciousUsers, id)
		}

		if len(t.commands) == 0 && len(t.transfers) == 0 && len(t.gains) == 0 && t.failedAttempts == 0 {
			delete(s.trails, id)
			report.TrailsAged++
		}
	}
	return report
}
