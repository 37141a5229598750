package services

import (
	"time"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
)

// Backoff selects how retry delay grows with attempt number.
type Backoff string

const (
	BackoffNone        Backoff = "none"
	BackoffLinear      Backoff = "linear"
	BackoffExponential Backoff = "exponential"
)

// RetryStrategy is the policy for one error kind: how many retries it
// allows, the base delay, and the backoff curve.
type RetryStrategy struct {
	MaxRetries int
	BaseDelay  time.Duration
	Backoff    Backoff
}

// retryTable is the fixed per-kind policy. Captcha and authentication
// failures are operator-actionable, not transient; ShouldRetry refuses
// them unconditionally regardless of what this table says.
var retryTable = map[domain.ErrorKind]RetryStrategy{
	domain.ErrorKindNetwork:        {MaxRetries: 3, BaseDelay: 5 * time.Second, Backoff: BackoffExponential},
	domain.ErrorKindTimeout:        {MaxRetries: 2, BaseDelay: 10 * time.Second, Backoff: BackoffLinear},
	domain.ErrorKindSelector:       {MaxRetries: 1, BaseDelay: 2 * time.Second, Backoff: BackoffNone},
	domain.ErrorKindNavigation:     {MaxRetries: 3, BaseDelay: 3 * time.Second, Backoff: BackoffExponential},
	domain.ErrorKindMemory:         {MaxRetries: 1, BaseDelay: 15 * time.Second, Backoff: BackoffNone},
	domain.ErrorKindRateLimit:      {MaxRetries: 5, BaseDelay: 30 * time.Second, Backoff: BackoffExponential},
	domain.ErrorKindCaptcha:        {MaxRetries: 0, BaseDelay: 0, Backoff: BackoffNone},
	domain.ErrorKindAuthentication: {MaxRetries: 1, BaseDelay: 5 * time.Second, Backoff: BackoffNone},
	domain.ErrorKindDefault:        {MaxRetries: 2, BaseDelay: 5 * time.Second, Backoff: BackoffLinear},
}

// StrategyFor returns the retry strategy for an error kind. Unknown
// kinds fall back to the default strategy.
func StrategyFor(kind domain.ErrorKind) RetryStrategy {
	if s, ok := retryTable[kind]; ok {
		return s
	}
	return retryTable[domain.ErrorKindDefault]
}

// DelayFor computes the delay before retrying after the given failed
// attempt (1-based).
func DelayFor(s RetryStrategy, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	switch s.Backoff {
	case BackoffExponential:
		return s.BaseDelay * (1 << (attempt - 1))
	case BackoffLinear:
		return s.BaseDelay * time.Duration(attempt)
	default:
		return s.BaseDelay
	}
}

// ShouldRetry reports whether another attempt is allowed after a failure
// of the given kind on the given attempt number (1-based).
func ShouldRetry(kind domain.ErrorKind, attempt int) bool {
	if kind == domain.ErrorKindCaptcha || kind == domain.ErrorKindAuthentication {
		return false
	}
	return attempt <= StrategyFor(kind).MaxRetries
}
