// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bitfsorg/txbuilder-go/tx"
)

// ---------------------------------------------------------------------------
// DefaultConfig tests
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Network", cfg.Network, "mainnet"},
		{"FeePerKB", cfg.FeePerKB, 0.0},
		{"Dust", cfg.Dust, uint64(0)},
		{"DustChangeToFees", cfg.DustChangeToFees, true},
		{"Version", cfg.Version, uint32(1)},
		{"LockTime", cfg.LockTime, uint32(0)},
		{"LogLevel", cfg.LogLevel, "info"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Params tests
// ---------------------------------------------------------------------------

func TestParamsNetworkDefaults(t *testing.T) {
	params, err := DefaultConfig().Params()
	if err != nil {
		t.Fatalf("Params: %v", err)
	}

	if params.FeePerKB != tx.DefaultFeePerKB {
		t.Errorf("FeePerKB = %v, want %v", params.FeePerKB, tx.DefaultFeePerKB)
	}
	if params.Dust != tx.DustLimit {
		t.Errorf("Dust = %d, want %d", params.Dust, tx.DustLimit)
	}
	if !params.Mainnet {
		t.Error("mainnet config should produce mainnet params")
	}
	if !params.DustChangeToFees {
		t.Error("DustChangeToFees should carry over")
	}
}

func TestParamsFeeRateDerivesDust(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FeePerKB = 0.5

	params, err := cfg.Params()
	if err != nil {
		t.Fatalf("Params: %v", err)
	}

	if params.FeePerKB != 0.5 {
		t.Errorf("FeePerKB = %v, want 0.5", params.FeePerKB)
	}
	// 3 * ceil(0.5 * 182 / 1000) = 3
	if params.Dust != 3 {
		t.Errorf("Dust = %d, want 3", params.Dust)
	}
}

func TestParamsExplicitDustWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FeePerKB = 1000
	cfg.Dust = 1

	params, err := cfg.Params()
	if err != nil {
		t.Fatalf("Params: %v", err)
	}
	if params.Dust != 1 {
		t.Errorf("Dust = %d, want 1", params.Dust)
	}
}

func TestParamsTestnetAddresses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Network = "testnet"

	params, err := cfg.Params()
	if err != nil {
		t.Fatalf("Params: %v", err)
	}
	if params.Mainnet {
		t.Error("testnet config should not produce mainnet params")
	}
}

func TestParamsUnknownNetwork(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Network = "devnet"

	_, err := cfg.Params()
	if !errors.Is(err, ErrInvalidNetwork) {
		t.Errorf("Params: got %v, want ErrInvalidNetwork", err)
	}
}

// ---------------------------------------------------------------------------
// SaveConfig / LoadConfig round-trip tests
// ---------------------------------------------------------------------------

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	original := Config{
		Network:          "testnet",
		FeePerKB:         0.5,
		Dust:             600,
		DustChangeToFees: false,
		Version:          2,
		LockTime:         700000,
		LogLevel:         "debug",
	}

	if err := SaveConfig(path, original); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if loaded != original {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", loaded, original)
	}
}

func TestSaveConfigCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config")

	cfg := DefaultConfig()
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig should create parent dirs: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Config file not created: %v", err)
	}
}

// ---------------------------------------------------------------------------
// LoadConfig error tests
// ---------------------------------------------------------------------------

func TestLoadConfigNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig nonexistent: got %v, want ErrConfigNotFound", err)
	}
}

func TestLoadConfigInvalidLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	content := "this-is-not-key-value\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(path)
	if !errors.Is(err, ErrInvalidConfigLine) {
		t.Errorf("LoadConfig bad line: got %v, want ErrInvalidConfigLine", err)
	}
}

func TestLoadConfigInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"fee_not_number", "feeperkb = cheap\n"},
		{"dust_negative", "dust = -1\n"},
		{"bool_garbage", "dustchangetofees = maybe\n"},
		{"version_overflow", "version = 4294967296\n"},
		{"locktime_text", "locktime = soon\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config")
			if err := os.WriteFile(path, []byte(tc.content), 0600); err != nil {
				t.Fatal(err)
			}

			_, err := LoadConfig(path)
			if !errors.Is(err, ErrInvalidConfigValue) {
				t.Errorf("LoadConfig: got %v, want ErrInvalidConfigValue", err)
			}
		})
	}
}

func TestLoadConfigCommentsAndBlanks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	content := `# This is a comment
network = testnet

# Another comment
loglevel = debug
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Network != "testnet" {
		t.Errorf("Network = %q, want %q", cfg.Network, "testnet")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	// Unset fields should retain defaults.
	if cfg.Version != 1 {
		t.Errorf("Version = %d, want default 1", cfg.Version)
	}
	if !cfg.DustChangeToFees {
		t.Error("DustChangeToFees should keep default true")
	}
}

func TestLoadConfigUnknownKeysIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	content := "futurekey = futurevalue\nnetwork = testnet\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig with unknown key: %v", err)
	}
	if cfg.Network != "testnet" {
		t.Errorf("Network = %q, want %q", cfg.Network, "testnet")
	}
}

func TestLoadConfigKeysCaseInsensitive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")

	content := "NETWORK=regtest\nFeePerKB=250\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Network != "regtest" {
		t.Errorf("Network = %q, want %q", cfg.Network, "regtest")
	}
	if cfg.FeePerKB != 250 {
		t.Errorf("FeePerKB = %v, want 250", cfg.FeePerKB)
	}
}

func TestSaveConfigPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")

	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm&0077 != 0 {
		t.Errorf("config file mode = %o, want no group/other access", perm)
	}
}

// ---------------------------------------------------------------------------
// ValidateConfig tests
// ---------------------------------------------------------------------------

func TestValidateConfigDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if err := ValidateConfig(cfg); err != nil {
		t.Errorf("ValidateConfig(DefaultConfig()) = %v, want nil", err)
	}
}

func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:    "bad_network",
			modify:  func(c *Config) { c.Network = "devnet" },
			wantErr: ErrInvalidNetwork,
		},
		{
			name:    "negative_fee",
			modify:  func(c *Config) { c.FeePerKB = -1 },
			wantErr: ErrInvalidFeeRate,
		},
		{
			name:    "nan_fee",
			modify:  func(c *Config) { c.FeePerKB = math.NaN() },
			wantErr: ErrInvalidFeeRate,
		},
		{
			name:    "zero_version",
			modify:  func(c *Config) { c.Version = 0 },
			wantErr: ErrInvalidVersion,
		},
		{
			name:    "bad_loglevel",
			modify:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := ValidateConfig(cfg)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateConfig: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateConfigValidNetworks(t *testing.T) {
	for _, network := range []string{"mainnet", "testnet", "regtest"} {
		cfg := DefaultConfig()
		cfg.Network = network
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("ValidateConfig with network %q: %v", network, err)
		}
	}
}

func TestValidateConfigValidLogLevels(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error", "off"} {
		cfg := DefaultConfig()
		cfg.LogLevel = level
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("ValidateConfig with loglevel %q: %v", level, err)
		}
	}
}

// ---------------------------------------------------------------------------
// Network and logger tests
// ---------------------------------------------------------------------------

func TestGetNetwork(t *testing.T) {
	net, err := GetNetwork("mainnet")
	if err != nil {
		t.Fatalf("GetNetwork: %v", err)
	}
	if !net.Mainnet() {
		t.Error("mainnet should use mainnet addresses")
	}

	if _, err := GetNetwork("nope"); !errors.Is(err, ErrInvalidNetwork) {
		t.Errorf("GetNetwork unknown: got %v, want ErrInvalidNetwork", err)
	}
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.LogLevel = "warn"

	logger := NewLogger(cfg, &buf)
	logger.Infof("hidden")
	logger.Warnf("shown %d", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown 1") || !strings.Contains(out, Subsystem) {
		t.Errorf("warn message missing or untagged: %q", out)
	}
}
