package config

import (
	"encoding/json"
	"testing"
	"time"
)

func TestServerConfigDefaults(t *testing.T) {
	cfg := &ServerConfig{}

	if cfg.GetAddr() != ":8080" {
		t.Errorf("GetAddr() = %q, want :8080", cfg.GetAddr())
	}
	if cfg.GetSessionTTL() != 30*time.Minute {
		t.Errorf("GetSessionTTL() = %v, want 30m", cfg.GetSessionTTL())
	}
	if cfg.GetMaxSessions() != 1000 {
		t.Errorf("GetMaxSessions() = %d, want 1000", cfg.GetMaxSessions())
	}
	if !cfg.GetEnableDrilldown() {
		t.Error("GetEnableDrilldown() = false, want true")
	}
}

func TestServerConfigOverrides(t *testing.T) {
	testJSON := `{
  "addr": "127.0.0.1:9090",
  "session_ttl_minutes": -1,
  "max_sessions": 5,
  "enable_drilldown": false
}`
	cfg := &ServerConfig{}
	if err := json.Unmarshal([]byte(testJSON), cfg); err != nil {
		t.Fatalf("Failed to parse server config: %v", err)
	}

	if cfg.GetAddr() != "127.0.0.1:9090" {
		t.Errorf("GetAddr() = %q, want 127.0.0.1:9090", cfg.GetAddr())
	}
	if cfg.GetSessionTTL() >= 0 {
		t.Errorf("GetSessionTTL() = %v, want negative (never expire)", cfg.GetSessionTTL())
	}
	if cfg.GetMaxSessions() != 5 {
		t.Errorf("GetMaxSessions() = %d, want 5", cfg.GetMaxSessions())
	}
	if cfg.GetEnableDrilldown() {
		t.Error("GetEnableDrilldown() = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() returned error for valid config: %v", err)
	}
}

func TestServerConfigValidate(t *testing.T) {
	empty := ""
	if err := (&ServerConfig{Addr: &empty}).Validate(); err == nil {
		t.Error("Expected error for empty addr")
	}

	zero := 0
	if err := (&ServerConfig{MaxSessions: &zero}).Validate(); err == nil {
		t.Error("Expected error for max_sessions 0")
	}

	if err := (&ServerConfig{}).Validate(); err != nil {
		t.Errorf("Validate() returned error for empty config: %v", err)
	}
}
