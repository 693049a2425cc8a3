package dispatch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Kensan196948G/fleetmux/pkg/models"
)

// RetryPolicy bounds the reliability layer. The delay is fixed, not
// exponential: targets are typically ready within one interval or not at all.
type RetryPolicy struct {
	// MaxAttempts is the total number of delivery attempts.
	MaxAttempts int
	// Delay is the fixed wait between attempts.
	Delay time.Duration
}

// DefaultRetryPolicy returns the standard bounds: 3 attempts, 2s apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: 2 * time.Second}
}

// Sender wraps a Deliverer with a responsiveness probe and bounded retry.
type Sender struct {
	deliverer *Deliverer
	policy    RetryPolicy
}

// NewSender creates a Sender with the given policy. A zero MaxAttempts
// falls back to the default policy.
func NewSender(deliverer *Deliverer, policy RetryPolicy) *Sender {
	if policy.MaxAttempts < 1 {
		policy = DefaultRetryPolicy()
	}
	return &Sender{deliverer: deliverer, policy: policy}
}

// Deliverer exposes the wrapped protocol for direct probes.
func (s *Sender) Deliverer() *Deliverer { return s.deliverer }

// DeliverWithRetry attempts delivery up to the policy bound, probing target
// readiness before each attempt. It returns the number of retries performed
// (attempts beyond the first). On exhaustion the error wraps
// ErrDeliveryExhausted together with the last failure.
func (s *Sender) DeliverWithRetry(ctx context.Context, addr models.Address, text string, mode models.DeliveryMode) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := s.deliverer.sleep(ctx, s.policy.Delay); err != nil {
				return attempt - 1, err
			}
		}

		if !s.deliverer.ProbeReady(ctx, addr) {
			lastErr = fmt.Errorf("%w: pane %s not ready", ErrTargetUnavailable, addr)
			log.Printf("[dispatch] %s attempt %d/%d: target not ready", addr, attempt, s.policy.MaxAttempts)
			continue
		}

		if err := s.deliverer.Deliver(ctx, addr, text, mode); err != nil {
			if ctx.Err() != nil {
				return attempt - 1, err
			}
			lastErr = err
			log.Printf("[dispatch] %s attempt %d/%d failed: %v", addr, attempt, s.policy.MaxAttempts, err)
			continue
		}
		return attempt - 1, nil
	}
	return s.policy.MaxAttempts - 1, fmt.Errorf("%w after %d attempts: %v", ErrDeliveryExhausted, s.policy.MaxAttempts, lastErr)
}
