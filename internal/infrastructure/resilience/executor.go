package resilience

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"payrail-server/internal/infrastructure/config"
	otelinfra "payrail-server/internal/infrastructure/observability/otel"
)

// Options per-call retry settings.
type Options struct {
	// MaxRetries retries after the first attempt; total attempts = MaxRetries + 1
	MaxRetries int
	// BaseDelay initial backoff delay, doubled per attempt up to the cap
	BaseDelay time.Duration
	// UseCircuitBreaker whether failures count toward the named breaker
	UseCircuitBreaker bool
}

// Executor retry + circuit-breaker wrapper around any fallible operation.
// One instance is shared by all callers so breaker state accumulates across
// concurrent payment operations. Breaker state is held in working memory
// only.
type Executor struct {
	breakers *breakerSet
	logger   *otelinfra.Logger
	metrics  *otelinfra.Metrics

	maxInterval         time.Duration
	randomizationFactor float64

	// overridable in tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an Executor with the configured breaker thresholds.
func NewExecutor(cfg *config.ResilienceConfig, logger *otelinfra.Logger, metrics *otelinfra.Metrics) *Executor {
	return &Executor{
		breakers:            newBreakerSet(cfg.FailureThreshold, cfg.FailureWindow, cfg.Cooldown),
		logger:              logger,
		metrics:             metrics,
		maxInterval:         cfg.MaxBackoff,
		randomizationFactor: 0.25,
		now:                 time.Now,
		sleep:               sleepContext,
	}
}

// Execute runs op under the named breaker with exponential backoff. On
// exhaustion it returns a single *ExhaustedError carrying the operation
// name, total attempts, and the last cause. Validation and business failures
// stop the loop on the first attempt; unknown failures are retried at most
// once.
func (e *Executor) Execute(ctx context.Context, operationName string, op func(context.Context) error, opts Options) error {
	bo := &backoff.ExponentialBackOff{
		InitialInterval:     opts.BaseDelay,
		RandomizationFactor: e.randomizationFactor,
		Multiplier:          2,
		MaxInterval:         e.maxInterval,
	}
	bo.Reset()

	var lastErr error
	for attempt := 1; ; attempt++ {
		if opts.UseCircuitBreaker {
			generation, err := e.breakers.allow(operationName, e.now())
			if err != nil {
				e.metrics.RecordCircuitOpen(ctx, operationName)
				e.logger.Warn(ctx, "Circuit breaker rejected call", map[string]interface{}{
					"operation": operationName,
				})
				return fmt.Errorf("operation %s: %w", operationName, err)
			}

			err = op(ctx)
			if err == nil {
				e.breakers.recordSuccess(operationName, generation)
				return nil
			}
			e.breakers.recordFailure(operationName, generation, e.now())
			lastErr = err
		} else {
			err := op(ctx)
			if err == nil {
				return nil
			}
			lastErr = err
		}

		category := Categorize(lastErr)
		retryable := category.Retryable() || (category == CategoryUnknown && attempt == 1)
		if !retryable || attempt >= opts.MaxRetries+1 {
			e.logger.Error(ctx, "Operation failed permanently", lastErr, map[string]interface{}{
				"operation": operationName,
				"attempts":  attempt,
				"category":  string(category),
			})
			e.metrics.RecordError(ctx, "operation_exhausted")
			return &ExhaustedError{Operation: operationName, Attempts: attempt, Err: lastErr}
		}

		delay := bo.NextBackOff()
		e.logger.Warn(ctx, "Operation failed, retrying", map[string]interface{}{
			"operation": operationName,
			"attempt":   attempt,
			"category":  string(category),
			"delay_ms":  delay.Milliseconds(),
		})
		if err := e.sleep(ctx, delay); err != nil {
			return fmt.Errorf("operation %s: %w", operationName, err)
		}
	}
}

// BreakerState returns the named breaker's state for observability.
func (e *Executor) BreakerState(operationName string) string {
	return e.breakers.snapshot(operationName)
}

// ExecuteTyped runs an operation returning a value under the executor.
func ExecuteTyped[T any](ctx context.Context, e *Executor, operationName string, op func(context.Context) (T, error), opts Options) (T, error) {
	var result T
	err := e.Execute(ctx, operationName, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	}, opts)
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// sleepContext suspends for d without blocking past context cancellation.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
