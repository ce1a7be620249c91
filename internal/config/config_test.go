package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTP.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr: got %q", cfg.HTTP.Addr())
	}
	if cfg.Quotes.TTL != 5000*time.Millisecond {
		t.Errorf("quote ttl: got %v", cfg.Quotes.TTL)
	}
	if cfg.Quotes.DefaultTicker != "SBER" {
		t.Errorf("default ticker: got %q", cfg.Quotes.DefaultTicker)
	}
	if !cfg.Fallback.Enabled || cfg.Fallback.BasePrice != 190 || cfg.Fallback.PriceJitter != 2 {
		t.Errorf("fallback defaults: %+v", cfg.Fallback)
	}
	if cfg.Invest.HasToken() {
		t.Error("token must default to empty")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("QUOTE_TTL_MS", "250")
	t.Setenv("INVEST_TOKEN", " t-secret ")
	t.Setenv("MOCK_FALLBACK", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("port: got %d", cfg.HTTP.Port)
	}
	if cfg.Quotes.TTL != 250*time.Millisecond {
		t.Errorf("quote ttl: got %v", cfg.Quotes.TTL)
	}
	if cfg.Invest.Token != "t-secret" {
		t.Errorf("token must be trimmed, got %q", cfg.Invest.Token)
	}
	if cfg.Fallback.Enabled {
		t.Error("fallback must be disabled")
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-port")

	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
