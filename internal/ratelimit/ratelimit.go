// Package ratelimit holds the two throttling mechanisms the bot uses:
// an in-memory sliding-window rate limiter and a persistent cooldown
// gate. They are deliberately separate — a rate limit bounds how many
// calls fit in a recent window, a cooldown enforces a minimum gap and
// survives restarts via the user document.
package ratelimit

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/THEREALVANHEL/coalbot/internal/clock"
	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
)

// Limit is the per-action window configuration.
type Limit struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultLimit applies to actions without an override.
var DefaultLimit = Limit{MaxRequests: 10, Window: time.Minute}

// DefaultLimits are the per-action overrides. The daily bucket matches
// the 22h claim window so the limiter never rejects a claim the
// persistent cooldown would allow.
func DefaultLimits() map[string]Limit {
	return map[string]Limit{
		"work":      {MaxRequests: 1, Window: time.Hour},
		"daily":     {MaxRequests: 1, Window: 22 * time.Hour},
		"trivia":    {MaxRequests: 5, Window: time.Minute},
		"slots":     {MaxRequests: 10, Window: time.Minute},
		"transfer":  {MaxRequests: 3, Window: 5 * time.Minute},
		"buy":       {MaxRequests: 5, Window: time.Minute},
		"wordchain": {MaxRequests: 1, Window: 45 * time.Second},
		"rps":       {MaxRequests: 1, Window: 25 * time.Second},
	}
}

type bucketKey struct {
	userID int64
	action string
}

// Limiter is a process-local sliding-window rate limiter keyed by
// (user, action).
type Limiter struct {
	mu        sync.Mutex
	clock     clock.Clock
	limits    map[string]Limit
	overrides map[bucketKey]Limit
	buckets   map[bucketKey][]time.Time
}

// NewLimiter creates a limiter with the given per-action limits.
func NewLimiter(limits map[string]Limit, clk clock.Clock) *Limiter {
	if clk == nil {
		clk = clock.System{}
	}
	if limits == nil {
		limits = DefaultLimits()
	}
	return &Limiter{
		clock:     clk,
		limits:    limits,
		overrides: make(map[bucketKey]Limit),
		buckets:   make(map[bucketKey][]time.Time),
	}
}

func (l *Limiter) limitFor(key bucketKey) Limit {
	if lim, ok := l.overrides[key]; ok {
		return lim
	}
	if lim, ok := l.limits[key.action]; ok {
		return lim
	}
	return DefaultLimit
}

// Allow records an attempt and returns RateLimited with the time left
// when the window is full.
func (l *Limiter) Allow(userID int64, action string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := bucketKey{userID: userID, action: action}
	lim := l.limitFor(key)
	now := l.clock.Now()
	cutoff := now.Add(-lim.Window)

	stamps := l.buckets[key]
	kept := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= lim.MaxRequests {
		timeLeft := lim.Window - now.Sub(kept[0])
		l.buckets[key] = kept
		return coalerr.RateLimited(timeLeft)
	}

	l.buckets[key] = append(kept, now)
	return nil
}

// Tighten halves a user's allowance for an action, flooring at one
// request per window. The security service calls this for suspicious
// users.
func (l *Limiter) Tighten(userID int64, action string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := bucketKey{userID: userID, action: action}
	lim := l.limitFor(key)
	lim.MaxRequests = int(math.Max(1, math.Ceil(float64(lim.MaxRequests)/2)))
	l.overrides[key] = lim
}

// TightenAll halves a user's allowance for every configured action.
func (l *Limiter) TightenAll(userID int64) {
	for action := range l.limits {
		l.Tighten(userID, action)
	}
	l.Tighten(userID, "") // default bucket
}

// Reset drops all window state and overrides for a user.
func (l *Limiter) Reset(userID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key := range l.buckets {
		if key.userID == userID {
			delete(l.buckets, key)
		}
	}
	for key := range l.overrides {
		if key.userID == userID {
			delete(l.overrides, key)
		}
	}
}

// Sweep removes buckets whose entries have all aged out.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	removed := 0
	for key, stamps := range l.buckets {
		lim := l.limitFor(key)
		live := false
		for _, ts := range stamps {
			if ts.After(now.Add(-lim.Window)) {
				live = true
				break
			}
		}
		if !live {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// String describes a limit for diagnostics.
func (lim Limit) String() string {
	return fmt.Sprintf("%d/%s", lim.MaxRequests, lim.Window)
}
