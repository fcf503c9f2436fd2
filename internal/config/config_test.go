package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PIXELPRESS_API_ADDR",
		"PIXELPRESS_UPLOAD_PATH",
		"PIXELPRESS_MAX_UPLOAD_BYTES",
		"PIXELPRESS_MAX_INPUT_PIXELS",
		"RATE_LIMIT_ENABLED",
		"RATE_LIMIT_WINDOW",
		"OTEL_TRACES_EXPORTER",
		"LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.API.Addr != ":8080" {
		t.Fatalf("expected :8080, got %s", cfg.API.Addr)
	}
	if cfg.API.UploadPath != "/api/upload" {
		t.Fatalf("expected /api/upload, got %s", cfg.API.UploadPath)
	}
	if cfg.Limits.MaxUploadBytes != 20_000_000 {
		t.Fatalf("expected 20000000 byte ceiling, got %d", cfg.Limits.MaxUploadBytes)
	}
	if cfg.Limits.MaxInputPixels != 268402689 {
		t.Fatalf("expected 268402689 pixel ceiling, got %d", cfg.Limits.MaxInputPixels)
	}
	if cfg.RateLimit.Enabled {
		t.Fatal("expected rate limiting to be off by default")
	}
	if cfg.RateLimit.Window != time.Minute {
		t.Fatalf("expected 1m window, got %s", cfg.RateLimit.Window)
	}
	if cfg.Telemetry.Exporter != "none" {
		t.Fatalf("expected tracing exporter none, got %s", cfg.Telemetry.Exporter)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("expected info log level, got %s", cfg.Log.Level)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PIXELPRESS_API_ADDR", ":9090")
	t.Setenv("PIXELPRESS_MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("PIXELPRESS_WRITE_TIMEOUT", "2m")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("RATE_LIMIT_BYTES_PER_TOKEN", "5000000")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("OTEL_TRACES_SAMPLER_RATIO", "0.25")

	cfg := Load()

	if cfg.API.Addr != ":9090" {
		t.Fatalf("expected :9090, got %s", cfg.API.Addr)
	}
	if cfg.Limits.MaxUploadBytes != 1<<20 {
		t.Fatalf("expected 1MiB ceiling, got %d", cfg.Limits.MaxUploadBytes)
	}
	if cfg.API.WriteTimeout != 2*time.Minute {
		t.Fatalf("expected 2m write timeout, got %s", cfg.API.WriteTimeout)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Requests != 5 {
		t.Fatalf("unexpected rate limit config: %+v", cfg.RateLimit)
	}
	if cfg.RateLimit.BytesPerToken != 5_000_000 {
		t.Fatalf("expected 5MB per token, got %d", cfg.RateLimit.BytesPerToken)
	}
	if cfg.Telemetry.SampleRatio != 0.25 {
		t.Fatalf("expected sample ratio 0.25, got %v", cfg.Telemetry.SampleRatio)
	}
	if cfg.Redis.Options().DB != 3 {
		t.Fatalf("expected redis db 3, got %d", cfg.Redis.Options().DB)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("PIXELPRESS_MAX_UPLOAD_BYTES", "lots")
	t.Setenv("RATE_LIMIT_ENABLED", "maybe")
	t.Setenv("RATE_LIMIT_WINDOW", "soon")

	cfg := Load()

	if cfg.Limits.MaxUploadBytes != 20_000_000 {
		t.Fatalf("expected fallback ceiling, got %d", cfg.Limits.MaxUploadBytes)
	}
	if cfg.RateLimit.Enabled {
		t.Fatal("expected fallback enabled=false")
	}
	if cfg.RateLimit.Window != time.Minute {
		t.Fatalf("expected fallback window, got %s", cfg.RateLimit.Window)
	}
}
