// Package errors provides the typed error taxonomy surfaced by the bot
// services, plus the anti-crash handler for runtime error storms.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a service error for callers and message translation.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidArgument
	KindInsufficientFunds
	KindInsufficientShares
	KindInsufficientItems
	KindOnCooldown
	KindRateLimited
	KindUnauthorized
	KindConflict
	KindNotFound
	KindSuspiciousActivity
	KindExternalUnavailable
)

// String returns the canonical name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindInsufficientFunds:
		return "InsufficientFunds"
	case KindInsufficientShares:
		return "InsufficientShares"
	case KindInsufficientItems:
		return "InsufficientItems"
	case KindOnCooldown:
		return "OnCooldown"
	case KindRateLimited:
		return "RateLimited"
	case KindUnauthorized:
		return "Unauthorized"
	case KindConflict:
		return "Conflict"
	case KindNotFound:
		return "NotFound"
	case KindSuspiciousActivity:
		return "SuspiciousActivity"
	case KindExternalUnavailable:
		return "ExternalUnavailable"
	default:
		return "Internal"
	}
}

// Error is a service error with a kind and, for cooldown and rate-limit
// rejections, the time until the caller may retry.
type Error struct {
	Kind       Kind
	Message    string
	RetryAfter time.Duration
	Wrapped    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Kind.String()
}

// Unwrap exposes the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.Wrapped }

// Is matches errors of the same kind, so sentinel comparisons work with
// the standard errors package.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Wrapped: err}
}

// InvalidArgument creates an InvalidArgument error.
func InvalidArgument(format string, args ...interface{}) *Error {
	return New(KindInvalidArgument, format, args...)
}

// InsufficientFunds creates an InsufficientFunds error.
func InsufficientFunds(have, want int64) *Error {
	return New(KindInsufficientFunds, "have %d coins, need %d", have, want)
}

// InsufficientShares creates an InsufficientShares error.
func InsufficientShares(have, want int64) *Error {
	return New(KindInsufficientShares, "have %d shares, need %d", have, want)
}

// InsufficientItems creates an InsufficientItems error.
func InsufficientItems(format string, args ...interface{}) *Error {
	return New(KindInsufficientItems, format, args...)
}

// OnCooldown creates an OnCooldown error carrying the remaining time.
func OnCooldown(remaining time.Duration) *Error {
	return &Error{
		Kind:       KindOnCooldown,
		Message:    fmt.Sprintf("available again in %s", remaining.Round(time.Second)),
		RetryAfter: remaining,
	}
}

// RateLimited creates a RateLimited error carrying the remaining time.
func RateLimited(remaining time.Duration) *Error {
	return &Error{
		Kind:       KindRateLimited,
		Message:    fmt.Sprintf("rate limit hit, retry in %s", remaining.Round(time.Second)),
		RetryAfter: remaining,
	}
}

// Unauthorized creates an Unauthorized error.
func Unauthorized(format string, args ...interface{}) *Error {
	return New(KindUnauthorized, format, args...)
}

// Conflict creates a Conflict error.
func Conflict(format string, args ...interface{}) *Error {
	return New(KindConflict, format, args...)
}

// NotFound creates a NotFound error.
func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

// Suspicious creates a SuspiciousActivity error. The message is for the
// audit log only and must not be shown publicly.
func Suspicious(format string, args ...interface{}) *Error {
	return New(KindSuspiciousActivity, format, args...)
}

// External wraps a transient store or platform failure.
func External(err error, message string) *Error {
	return Wrap(KindExternalUnavailable, err, message)
}

// KindOf extracts the kind from any error. Unclassified errors map to
// Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// RetryAfter returns the retry-after duration if the error carries one.
func RetryAfter(err error) (time.Duration, bool) {
	var e *Error
	if errors.As(err, &e) && (e.Kind == KindOnCooldown || e.Kind == KindRateLimited) {
		return e.RetryAfter, true
	}
	return 0, false
}
