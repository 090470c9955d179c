// Package config provides configuration management for piactl.
// It handles loading, saving, and validating tool settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dagrha/piactl/common"
)

// Config represents the tool configuration.
// All settings are persisted to a YAML file in the user's config directory.
type Config struct {
	// ServerListURL is the PIA server information document.
	ServerListURL string `yaml:"server_list_url"`
	// CertURL is the PIA OpenVPN CA certificate.
	CertURL string `yaml:"cert_url"`
	// CertPath is where the CA certificate is installed.
	CertPath string `yaml:"cert_path"`
	// ConnectionsDir is the NetworkManager system-connections directory.
	ConnectionsDir string `yaml:"connections_dir"`

	// EchoCount is the number of echo requests per probe target.
	EchoCount int `yaml:"echo_count"`
	// ProbeTimeoutSec bounds a single latency probe in seconds.
	ProbeTimeoutSec int `yaml:"probe_timeout_sec"`
	// ProbeConcurrency is the maximum number of in-flight probes.
	ProbeConcurrency int `yaml:"probe_concurrency"`

	// Port, Cipher and Auth are the OpenVPN parameters written into
	// generated keyfiles.
	Port   int    `yaml:"port"`
	Cipher string `yaml:"cipher"`
	Auth   string `yaml:"auth"`
	// DNSServers are pushed into generated keyfiles.
	DNSServers []string `yaml:"dns_servers"`

	// HistoryEnabled records probe results in a local SQLite database.
	// A pointer so a config file that omits the key still gets the
	// default instead of a silent false.
	HistoryEnabled *bool `yaml:"history_enabled"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ServerListURL:    "https://privateinternetaccess.com/vpninfo/servers",
		CertURL:          "https://www.privateinternetaccess.com/openvpn/ca.rsa.2048.crt",
		CertPath:         "/etc/openvpn/ca.rsa.2048.crt",
		ConnectionsDir:   "/etc/NetworkManager/system-connections",
		EchoCount:        common.EchoCount,
		ProbeTimeoutSec:  int(common.ProbeTimeout / time.Second),
		ProbeConcurrency: common.ProbeConcurrency,
		Port:             1198,
		Cipher:           "AES-128-CBC",
		Auth:             "SHA1",
		DNSServers:       []string{"209.222.18.222", "209.222.18.218"},
		HistoryEnabled:   boolPtr(true),
	}
}

func boolPtr(b bool) *bool { return &b }

// HistoryRecording reports whether probe runs should be persisted.
func (c *Config) HistoryRecording() bool {
	return c.HistoryEnabled != nil && *c.HistoryEnabled
}

// ProbeTimeout returns the per-probe timeout as a duration.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSec) * time.Second
}

// Load loads the configuration from the config file.
// If the file doesn't exist, it creates one with default values.
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.Save(); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, common.WrapError(common.ErrConfigLoad, err.Error())
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true) // Strict validation: reject unknown fields

	var config Config
	if err := decoder.Decode(&config); err != nil {
		return nil, common.WrapError(common.ErrConfigLoad, err.Error())
	}

	config.applyDefaults()

	return &config, nil
}

// applyDefaults fills in zero values so a partial config file still works.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.ServerListURL == "" {
		c.ServerListURL = def.ServerListURL
	}
	if c.CertURL == "" {
		c.CertURL = def.CertURL
	}
	if c.CertPath == "" {
		c.CertPath = def.CertPath
	}
	if c.ConnectionsDir == "" {
		c.ConnectionsDir = def.ConnectionsDir
	}
	if c.EchoCount <= 0 {
		c.EchoCount = def.EchoCount
	}
	if c.ProbeTimeoutSec <= 0 {
		c.ProbeTimeoutSec = def.ProbeTimeoutSec
	}
	if c.ProbeConcurrency <= 0 {
		c.ProbeConcurrency = def.ProbeConcurrency
	}
	if c.Port <= 0 {
		c.Port = def.Port
	}
	if c.Cipher == "" {
		c.Cipher = def.Cipher
	}
	if c.Auth == "" {
		c.Auth = def.Auth
	}
	if len(c.DNSServers) == 0 {
		c.DNSServers = def.DNSServers
	}
	if c.HistoryEnabled == nil {
		c.HistoryEnabled = def.HistoryEnabled
	}
}

// Save saves the configuration to the file.
func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return common.WrapError(common.ErrConfigSave, err.Error())
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return common.WrapError(common.ErrConfigSave, err.Error())
	}

	return nil
}

func getConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", common.ConfigDirName, common.ConfigFileName), nil
}
