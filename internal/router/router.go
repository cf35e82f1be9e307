// Package router is the front door for every command invocation: it
// checks security blocks, feature flags and rate limits before the
// handler runs, and translates service errors into user-facing replies
// afterwards.
package router

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/THEREALVANHEL/coalbot/internal/analytics"
	"github.com/THEREALVANHEL/coalbot/internal/ratelimit"
	"github.com/THEREALVANHEL/coalbot/internal/security"
	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
)

// Meta describes one command's routing policy.
type Meta struct {
	Name string
	// Feature gates the command behind a named feature flag; empty
	// means always on.
	Feature string
	// Action names the rate-limit bucket, empty for unlimited.
	Action string
}

// Router guards and observes command dispatch.
type Router struct {
	security  *security.Service
	limiter   *ratelimit.Limiter
	collector *analytics.Collector

	mu       sync.RWMutex
	features map[string]bool
	disabled map[string]bool
}

// New creates the router. Features maps flag names to their state.
func New(sec *security.Service, limiter *ratelimit.Limiter, collector *analytics.Collector, features map[string]bool) *Router {
	f := make(map[string]bool, len(features))
	for k, v := range features {
		f[k] = v
	}
	return &Router{
		security:  sec,
		limiter:   limiter,
		collector: collector,
		features:  f,
		disabled:  make(map[string]bool),
	}
}

// SetEnabled toggles a single command at runtime.
func (r *Router) SetEnabled(command string, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disabled[command] = !enabled
}

// Before runs the pre-dispatch checks. A non-nil return means the
// command must not run; translate it with Translate.
func (r *Router) Before(userID int64, meta Meta) error {
	r.mu.RLock()
	off := r.disabled[meta.Name]
	featureOff := meta.Feature != "" && !r.features[meta.Feature]
	r.mu.RUnlock()

	if off || featureOff {
		return coalerr.NotFound("the %s command is not available right now", meta.Name)
	}

	if err := r.security.CheckBlocked(userID); err != nil {
		return err
	}
	if err := r.security.RecordCommand(userID, meta.Name); err != nil {
		return err
	}

	if meta.Action != "" {
		if err := r.limiter.Allow(userID, meta.Action); err != nil {
			r.security.RecordFailure(userID)
			return err
		}
	}
	return nil
}

// After records the outcome of a dispatch.
func (r *Router) After(ctx context.Context, userID int64, meta Meta, latency time.Duration, err error) {
	r.collector.RecordCommand(ctx, meta.Name, userID, latency)
	if err != nil {
		r.collector.RecordError(meta.Name, err)
		if coalerr.KindOf(err) != coalerr.KindInternal {
			r.security.RecordFailure(userID)
		}
		return
	}
	r.security.RecordSuccess(userID)
}

// Translate maps a service error to the reply shown to the user.
// Suspicious-activity details never leak; internals get a generic
// apology.
func Translate(err error) string {
	if err == nil {
		return ""
	}

	switch coalerr.KindOf(err) {
	case coalerr.KindOnCooldown, coalerr.KindRateLimited:
		if retry, ok := coalerr.RetryAfter(err); ok {
			return fmt.Sprintf("Slow down! Try again in %s.", retry.Round(time.Second))
		}
		return "Slow down! Try again in a moment."
	case coalerr.KindInsufficientFunds:
		return "You don't have enough coins for that."
	case coalerr.KindInsufficientShares:
		return "You don't own that many shares."
	case coalerr.KindInsufficientItems:
		return "You're missing the item for that. Check the shop."
	case coalerr.KindInvalidArgument, coalerr.KindNotFound,
		coalerr.KindUnauthorized, coalerr.KindConflict:
		var e *coalerr.Error
		if errors.As(err, &e) && e.Message != "" {
			return upperFirst(e.Message)
		}
		return "That didn't work. Check the command and try again."
	case coalerr.KindSuspiciousActivity:
		return "Something went wrong. Please try again later."
	case coalerr.KindExternalUnavailable:
		return "A backend service is unavailable. Please try again shortly."
	default:
		return "An unexpected error occurred. The team has been notified."
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
