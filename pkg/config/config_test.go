package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
clickhouse:
  host: localhost
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Watchlist) != 5 {
		t.Fatalf("expected default watchlist, got %v", cfg.Watchlist)
	}
	if cfg.FMP.RateLimitPerMinute != 5 || cfg.FMP.RateLimitPerDay != 250 {
		t.Fatalf("unexpected fmp quota defaults: %+v", cfg.FMP)
	}
	if cfg.Scoring.AnomalyThreshold != 0.75 {
		t.Fatalf("unexpected threshold %v", cfg.Scoring.AnomalyThreshold)
	}
	if cfg.Scoring.PollInterval != 120*time.Second {
		t.Fatalf("unexpected poll interval %v", cfg.Scoring.PollInterval)
	}
	if cfg.Scoring.RefitHistory != 2000 {
		t.Fatalf("unexpected refit history %v", cfg.Scoring.RefitHistory)
	}
}

func TestLoadNormalizesWatchlist(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
watchlist:
  - " aapl"
  - tsla
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Watchlist[0] != "AAPL" || cfg.Watchlist[1] != "TSLA" {
		t.Fatalf("watchlist not normalized: %v", cfg.Watchlist)
	}
}

func TestValidateRejectsMissingHost(t *testing.T) {
	if _, err := Load(writeConfig(t, "environment: test\n")); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	if _, err := Load(writeConfig(t, minimalConfig+`
scoring:
  anomaly_threshold: 1.5
`)); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("FMP_API_KEY", "env-key")
	t.Setenv("WATCHLIST", "msft, nvda")
	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("ANOMALY_THRESHOLD", "0.85")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.FMP.APIKey != "env-key" {
		t.Fatalf("fmp key not overridden")
	}
	if len(cfg.Watchlist) != 2 || cfg.Watchlist[0] != "MSFT" {
		t.Fatalf("watchlist not overridden: %v", cfg.Watchlist)
	}
	if cfg.Server.Port != 9191 {
		t.Fatalf("server port not overridden: %d", cfg.Server.Port)
	}
	if cfg.Scoring.AnomalyThreshold != 0.85 {
		t.Fatalf("threshold not overridden: %v", cfg.Scoring.AnomalyThreshold)
	}
}
