package convert

import (
	"context"
	"log/slog"
	"time"

	"docmorph/internal/domain"
)

// RetryPolicy bounds repeated external backend attempts. The whole backend
// sequence is attempted at most Attempts times; Delay doubles after each
// failure.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	Logger   *slog.Logger
}

func NewRetryPolicy(attempts int, delay time.Duration, logger *slog.Logger) RetryPolicy {
	return RetryPolicy{Attempts: attempts, Delay: delay, Logger: logger}
}

// run invokes fn until it succeeds, a permanent failure occurs, the context
// is cancelled, or the attempt budget is exhausted. The last error is
// returned unwrapped so callers can classify it.
func (p RetryPolicy) run(ctx context.Context, op string, fn func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.Delay
	if delay <= 0 {
		delay = time.Second
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if domain.IsPermanent(err) {
			p.logger().Warn("permanent failure, not retrying", "op", op, "error", err)
			return err
		}
		if i == attempts-1 {
			break
		}

		p.logger().Warn("attempt failed, will retry",
			"op", op,
			"attempt", i+1,
			"maxAttempts", attempts,
			"backoff", delay.String(),
			"error", err,
		)

		select {
		case <-time.After(delay):
			delay *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p.logger().Error("all attempts failed", "op", op, "attempts", attempts, "error", lastErr)
	return lastErr
}

func (p RetryPolicy) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
