package tracker

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DelayPolicy enforces a fixed spacing between consecutive scrape calls.
// The wait is a cooperative suspension on the calling goroutine: it holds
// no locks and never blocks unrelated work in the process. A zero delay
// produces a no-op policy.
type DelayPolicy struct {
	limiter *rate.Limiter
	delay   time.Duration
}

// NewDelayPolicy creates a delay policy with the given inter-request
// spacing. A delay of zero or less disables the policy.
func NewDelayPolicy(delay time.Duration) *DelayPolicy {
	if delay <= 0 {
		return &DelayPolicy{}
	}
	// Burst of 1 means the first Wait returns immediately and each
	// subsequent Wait is spaced by the configured delay.
	return &DelayPolicy{
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		delay:   delay,
	}
}

// Enabled reports whether the policy enforces any spacing.
func (p *DelayPolicy) Enabled() bool {
	return p.limiter != nil
}

// Delay returns the configured spacing, zero when disabled.
func (p *DelayPolicy) Delay() time.Duration {
	return p.delay
}

// Wait suspends until the next request is permitted or the context is
// cancelled. Disabled policies return immediately.
func (p *DelayPolicy) Wait(ctx context.Context) error {
	if p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}
