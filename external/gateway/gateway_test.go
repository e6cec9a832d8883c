package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matchpulse/matchpulse/internal/domain/provider"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
	"github.com/matchpulse/matchpulse/internal/platform/ratelimit"
	"github.com/matchpulse/matchpulse/internal/platform/resilience"
	"github.com/matchpulse/matchpulse/internal/usecase"
)

func newTestGateway(t *testing.T, limiter *ratelimit.Limiter, cfg Config) *Gateway {
	t.Helper()

	gw, err := New(limiter, cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("create gateway: %v", err)
	}
	t.Cleanup(gw.Close)
	return gw
}

func TestGateway_Do_RateLimitDenial(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewLimiter(map[provider.Provider]ratelimit.BucketConfig{
		provider.FootballData: {Capacity: 1, RefillInterval: time.Hour},
	})
	gw := newTestGateway(t, limiter, Config{})

	if err := gw.Do(t.Context(), provider.FootballData, "fixtures", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("first call within budget: %v", err)
	}

	err := gw.Do(t.Context(), provider.FootballData, "fixtures", func(context.Context) error { return nil })
	if !errors.Is(err, usecase.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestGateway_Do_UnknownProviderFailsOpen(t *testing.T) {
	t.Parallel()

	// No bucket configured for the predictor; calls pass through.
	limiter := ratelimit.NewLimiter(map[provider.Provider]ratelimit.BucketConfig{
		provider.FootballData: {Capacity: 1, RefillInterval: time.Hour},
	})
	gw := newTestGateway(t, limiter, Config{})

	for i := 0; i < 5; i++ {
		if err := gw.Do(t.Context(), provider.Predictor, "predict", func(context.Context) error { return nil }); err != nil {
			t.Fatalf("call %d: unknown provider must fail open: %v", i, err)
		}
	}
}

func TestGateway_Do_ChargeOnAttempt(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewLimiter(map[provider.Provider]ratelimit.BucketConfig{
		provider.FootballData: {Capacity: 3, RefillInterval: time.Hour},
	})
	gw := newTestGateway(t, limiter, Config{})

	// A failed call still consumed its token.
	_ = gw.Do(t.Context(), provider.FootballData, "fixtures", func(context.Context) error {
		return errors.New("boom")
	})

	if remaining := gw.Remaining(provider.FootballData); remaining != 2 {
		t.Fatalf("failed attempt must be charged: remaining=%d want 2", remaining)
	}
}

func TestGateway_Do_CircuitOpensAfterThreshold(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewLimiter(map[provider.Provider]ratelimit.BucketConfig{})
	gw := newTestGateway(t, limiter, Config{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	boom := errors.New("provider down")
	for i := 0; i < 2; i++ {
		err := gw.Do(t.Context(), provider.APIFootball, "live", func(context.Context) error { return boom })
		if !errors.Is(err, usecase.ErrProviderUnavailable) {
			t.Fatalf("failure %d: expected ErrProviderUnavailable, got %v", i, err)
		}
	}

	if state := gw.BreakerState(provider.APIFootball); state != resilience.CircuitStateOpen {
		t.Fatalf("expected open circuit, got %s", state)
	}

	// The breaker now rejects before the call runs.
	called := false
	err := gw.Do(t.Context(), provider.APIFootball, "live", func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, usecase.ErrProviderUnavailable) {
		t.Fatalf("expected fast-fail from open circuit, got %v", err)
	}
	if called {
		t.Fatal("call must not run while the circuit is open")
	}
}

func TestGateway_Do_TimeoutMapsToProviderTimeout(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewLimiter(map[provider.Provider]ratelimit.BucketConfig{})
	gw := newTestGateway(t, limiter, Config{CallTimeout: 20 * time.Millisecond})

	err := gw.Do(t.Context(), provider.TheSportsDB, "assets", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, usecase.ErrProviderTimeout) {
		t.Fatalf("expected ErrProviderTimeout, got %v", err)
	}
}

func TestGateway_Do_PerProviderIsolation(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewLimiter(map[provider.Provider]ratelimit.BucketConfig{})
	gw := newTestGateway(t, limiter, Config{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	_ = gw.Do(t.Context(), provider.APIFootball, "live", func(context.Context) error {
		return errors.New("down")
	})
	if state := gw.BreakerState(provider.APIFootball); state != resilience.CircuitStateOpen {
		t.Fatalf("expected open circuit for failing provider, got %s", state)
	}

	// Another provider's circuit is untouched.
	if err := gw.Do(t.Context(), provider.FootballData, "fixtures", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("healthy provider must be unaffected: %v", err)
	}
	if state := gw.BreakerState(provider.FootballData); state != resilience.CircuitStateClosed {
		t.Fatalf("expected closed circuit for healthy provider, got %s", state)
	}
}
