package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
)

// callWithDeadline runs fn under a context that expires after timeout. fn
// must return once its context is done. A failure caused by the expiry
// wraps ErrTimeout together with fn's own error. A zero timeout calls fn
// with ctx unchanged.
func callWithDeadline(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeoutCause(ctx, timeout, apperrors.ErrTimeout)
	defer cancel()

	err := fn(attemptCtx)
	if err == nil || ctx.Err() != nil {
		return err
	}
	if errors.Is(context.Cause(attemptCtx), apperrors.ErrTimeout) {
		return fmt.Errorf("%w after %v: %w", apperrors.ErrTimeout, timeout, err)
	}
	return err
}
