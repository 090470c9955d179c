package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ServerListURL == "" {
		t.Error("ServerListURL should have a default")
	}

	if cfg.ConnectionsDir != "/etc/NetworkManager/system-connections" {
		t.Errorf("ConnectionsDir = %v, want NetworkManager system-connections", cfg.ConnectionsDir)
	}

	if cfg.EchoCount != 3 {
		t.Errorf("EchoCount = %v, want 3", cfg.EchoCount)
	}

	if cfg.ProbeTimeout() != 5*time.Second {
		t.Errorf("ProbeTimeout() = %v, want 5s", cfg.ProbeTimeout())
	}

	if cfg.Port != 1198 {
		t.Errorf("Port = %v, want 1198", cfg.Port)
	}

	if cfg.Cipher != "AES-128-CBC" {
		t.Errorf("Cipher = %v, want AES-128-CBC", cfg.Cipher)
	}

	if len(cfg.DNSServers) != 2 {
		t.Errorf("DNSServers = %v, want two PIA resolvers", cfg.DNSServers)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{
		ServerListURL: "https://example.com/servers",
	}

	cfg.applyDefaults()

	if cfg.ServerListURL != "https://example.com/servers" {
		t.Error("applyDefaults should not overwrite explicit values")
	}

	if cfg.EchoCount != 3 {
		t.Errorf("EchoCount = %v, want default 3", cfg.EchoCount)
	}

	if cfg.ProbeConcurrency <= 0 {
		t.Error("ProbeConcurrency should be defaulted to a positive value")
	}

	if cfg.Cipher == "" {
		t.Error("Cipher should be defaulted")
	}
}

func TestHistoryEnabledBackfill(t *testing.T) {
	// A hand-edited file that omits history_enabled decodes to nil and
	// must backfill to the default, not silently disable recording.
	cfg := &Config{}
	cfg.applyDefaults()

	if !cfg.HistoryRecording() {
		t.Error("omitted history_enabled should default to recording on")
	}
}

func TestHistoryEnabledExplicitFalseSurvivesDefaults(t *testing.T) {
	var yamlData = "history_enabled: false\n"

	var cfg Config
	if err := yaml.Unmarshal([]byte(yamlData), &cfg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	cfg.applyDefaults()

	if cfg.HistoryRecording() {
		t.Error("explicit history_enabled: false must not be overwritten")
	}
}
