package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Fatalf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if !cfg.Browser.Headless {
		t.Fatal("Browser.Headless default should be true")
	}
	if cfg.Scraper.MaxAttempts != 2 {
		t.Fatalf("Scraper.MaxAttempts = %d, want 2", cfg.Scraper.MaxAttempts)
	}
	if cfg.Scraper.ConnectionBackoff != 2*time.Second {
		t.Fatalf("Scraper.ConnectionBackoff = %v, want 2s", cfg.Scraper.ConnectionBackoff)
	}
	if cfg.Sweep.Staleness != time.Hour {
		t.Fatalf("Sweep.Staleness = %v, want 1h", cfg.Sweep.Staleness)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Fatalf("Cache.TTL = %v, want 10m", cfg.Cache.TTL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LF_PORT", "9090")
	t.Setenv("LF_HEADLESS", "false")
	t.Setenv("LF_MAX_ATTEMPTS", "5")
	t.Setenv("LF_NAV_TIMEOUT", "45s")
	t.Setenv("LF_SWEEP_RATE", "2.5")

	cfg := Load()

	if cfg.Server.Port != 9090 {
		t.Fatalf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Browser.Headless {
		t.Fatal("Browser.Headless should be overridden to false")
	}
	if cfg.Scraper.MaxAttempts != 5 {
		t.Fatalf("Scraper.MaxAttempts = %d, want 5", cfg.Scraper.MaxAttempts)
	}
	if cfg.Scraper.NavigationTimeout != 45*time.Second {
		t.Fatalf("Scraper.NavigationTimeout = %v, want 45s", cfg.Scraper.NavigationTimeout)
	}
	if cfg.Sweep.ScrapesPerSecond != 2.5 {
		t.Fatalf("Sweep.ScrapesPerSecond = %v, want 2.5", cfg.Sweep.ScrapesPerSecond)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("LF_PORT", "not-a-number")
	t.Setenv("LF_RETRY_BACKOFF", "soon")

	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Fatalf("Server.Port = %d, want default 8080 for malformed value", cfg.Server.Port)
	}
	if cfg.Scraper.RetryBackoff != time.Second {
		t.Fatalf("Scraper.RetryBackoff = %v, want default 1s for malformed value", cfg.Scraper.RetryBackoff)
	}
}
