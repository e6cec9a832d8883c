package gateway

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/matchpulse/matchpulse/internal/domain/provider"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
	"github.com/matchpulse/matchpulse/internal/platform/ratelimit"
	"github.com/matchpulse/matchpulse/internal/platform/resilience"
	"github.com/matchpulse/matchpulse/internal/usecase"
)

type Config struct {
	PoolSize       int
	CallTimeout    time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Gateway is the single chokepoint for outbound provider calls. Every call
// passes rate-limit admission, then the provider's circuit breaker, then runs
// on a bounded worker pool under a per-call timeout.
type Gateway struct {
	limiter     *ratelimit.Limiter
	pool        *ants.Pool
	breakers    map[provider.Provider]*resilience.CircuitBreaker
	callTimeout time.Duration
	logger      *logging.Logger
}

func New(limiter *ratelimit.Limiter, cfg Config, logger *logging.Logger) (*Gateway, error) {
	if limiter == nil {
		return nil, fmt.Errorf("rate limiter is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	poolSize := cfg.PoolSize
	if poolSize < 1 {
		poolSize = 16
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("create gateway worker pool: %w", err)
	}

	callTimeout := cfg.CallTimeout
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	breakers := make(map[provider.Provider]*resilience.CircuitBreaker, 4)
	if breakerCfg.Enabled {
		for _, prov := range []provider.Provider{
			provider.FootballData,
			provider.APIFootball,
			provider.TheSportsDB,
			provider.Predictor,
		} {
			breakers[prov] = resilience.NewCircuitBreaker(
				breakerCfg.FailureThreshold,
				breakerCfg.OpenTimeout,
				breakerCfg.HalfOpenMaxReq,
			)
		}
	}

	return &Gateway{
		limiter:     limiter,
		pool:        pool,
		breakers:    breakers,
		callTimeout: callTimeout,
		logger:      logger,
	}, nil
}

// Do admits, executes and accounts one provider call. The token is charged on
// admission and is not refunded on failure; a failed attempt still consumed
// provider goodwill.
func (g *Gateway) Do(ctx context.Context, prov provider.Provider, operation string, call func(context.Context) error) error {
	if call == nil {
		return fmt.Errorf("%w: call is required", usecase.ErrInvalidInput)
	}

	if !g.limiter.Allow(prov) {
		g.logger.WarnContext(ctx, "provider call rejected by rate limiter",
			"provider", prov.String(),
			"operation", operation,
		)
		return fmt.Errorf("%w: provider=%s operation=%s", usecase.ErrRateLimited, prov, operation)
	}

	breaker := g.breakers[prov]
	if breaker != nil {
		if err := breaker.Allow(); err != nil {
			g.logger.WarnContext(ctx, "provider call rejected by circuit breaker",
				"provider", prov.String(),
				"operation", operation,
				"state", breaker.State(),
			)
			return fmt.Errorf("%w: provider=%s operation=%s circuit is open", usecase.ErrProviderUnavailable, prov, operation)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	done := make(chan error, 1)
	if err := g.pool.Submit(func() {
		done <- call(callCtx)
	}); err != nil {
		if breaker != nil {
			breaker.RecordFailure()
		}
		return fmt.Errorf("%w: provider=%s operation=%s outbound pool saturated: %v", usecase.ErrProviderUnavailable, prov, operation, err)
	}

	select {
	case err := <-done:
		if err != nil {
			if breaker != nil {
				breaker.RecordFailure()
			}
			if stderrors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("%w: provider=%s operation=%s after %s", usecase.ErrProviderTimeout, prov, operation, g.callTimeout)
			}
			return fmt.Errorf("%w: provider=%s operation=%s: %v", usecase.ErrProviderUnavailable, prov, operation, err)
		}
		if breaker != nil {
			breaker.RecordSuccess()
		}
		g.limiter.Record(prov)
		return nil
	case <-callCtx.Done():
		if breaker != nil {
			breaker.RecordFailure()
		}
		if stderrors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: provider=%s operation=%s after %s", usecase.ErrProviderTimeout, prov, operation, g.callTimeout)
		}
		return callCtx.Err()
	}
}

// BreakerState exposes the provider's current circuit state for health
// reporting.
func (g *Gateway) BreakerState(prov provider.Provider) resilience.CircuitState {
	breaker := g.breakers[prov]
	if breaker == nil {
		return resilience.CircuitStateClosed
	}
	return breaker.State()
}

// Remaining reports the provider's remaining rate-limit tokens.
func (g *Gateway) Remaining(prov provider.Provider) int {
	return g.limiter.Remaining(prov)
}

func (g *Gateway) Close() {
	g.pool.Release()
}
