package config

import (
	"testing"
	"time"

	"github.com/matchpulse/matchpulse/internal/domain/provider"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.AppEnv != EnvDev {
		t.Fatalf("expected default APP_ENV=%s, got %s", EnvDev, cfg.AppEnv)
	}
	if cfg.ServiceName != "matchpulse-api" {
		t.Fatalf("unexpected default service name: %s", cfg.ServiceName)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected default http addr: %s", cfg.HTTPAddr)
	}
	if !cfg.SwaggerEnabled {
		t.Fatalf("expected swagger enabled by default outside prod")
	}
	if cfg.GatewayPoolSize != 16 {
		t.Fatalf("unexpected default gateway pool size: %d", cfg.GatewayPoolSize)
	}
	if cfg.GatewayCallTimeout != 10*time.Second {
		t.Fatalf("unexpected default gateway call timeout: %s", cfg.GatewayCallTimeout)
	}
	if cfg.BroadcastLiveInterval != 30*time.Second {
		t.Fatalf("unexpected default live interval: %s", cfg.BroadcastLiveInterval)
	}
	if cfg.BroadcastPredictionInterval != 60*time.Second {
		t.Fatalf("unexpected default prediction interval: %s", cfg.BroadcastPredictionInterval)
	}
	if cfg.PredictorEnabled {
		t.Fatalf("expected predictor disabled by default")
	}
	if cfg.TheSportsDBAPIKey != "3" {
		t.Fatalf("expected demo media key by default, got %q", cfg.TheSportsDBAPIKey)
	}
}

func TestLoad_RateBuckets(t *testing.T) {
	t.Setenv("FOOTBALLDATA_RATE_CAPACITY", "25")
	t.Setenv("FOOTBALLDATA_RATE_INTERVAL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	buckets := cfg.RateBuckets()
	fd, ok := buckets[provider.FootballData]
	if !ok {
		t.Fatalf("expected a bucket for the fixtures provider")
	}
	if fd.Capacity != 25 || fd.RefillInterval != 30*time.Second {
		t.Fatalf("unexpected fixtures bucket: %+v", fd)
	}
	if _, ok := buckets[provider.Predictor]; ok {
		t.Fatalf("did not expect an admission bucket for the prediction model")
	}

	af := buckets[provider.APIFootball]
	if af.Capacity != 100 || af.RefillInterval != 24*time.Hour {
		t.Fatalf("unexpected live-score bucket defaults: %+v", af)
	}
}

func TestLoad_InvalidAppEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_PredictorRequiresBaseURL(t *testing.T) {
	t.Setenv("PREDICTOR_ENABLED", "true")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when predictor enabled without base url")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("GATEWAY_CALL_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid GATEWAY_CALL_TIMEOUT")
	}
}

func TestLoad_SwaggerDisabledInProd(t *testing.T) {
	t.Setenv("APP_ENV", "prod")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.SwaggerEnabled {
		t.Fatalf("expected swagger disabled by default in prod")
	}
}

func TestParseUptraceDSNFromOTLPHeaders(t *testing.T) {
	raw := "uptrace-dsn=\"https://token@api.uptrace.dev/123\",other=x"
	if got := parseUptraceDSNFromOTLPHeaders(raw); got != "https://token@api.uptrace.dev/123" {
		t.Fatalf("unexpected dsn: %q", got)
	}
	if got := parseUptraceDSNFromOTLPHeaders(""); got != "" {
		t.Fatalf("expected empty dsn, got %q", got)
	}
}
