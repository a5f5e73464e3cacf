// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and validates the settings a transaction builder is
// created from.
//
// Config files are read and written with viper in dotenv form: one
// "key=value" pair per line, keys case-insensitive, blank lines and lines
// starting with '#' ignored. Unknown keys are ignored so older binaries can
// read newer files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/bitfsorg/txbuilder-go/tx"
)

// configType is the viper codec for config files: KEY=value lines with '#'
// comments.
const configType = "env"

// Config holds the builder settings.
type Config struct {
	// Network selects the address encoding and the default fee policy.
	Network string

	// FeePerKB overrides the network fee rate in sat/KB. Zero keeps the
	// network default. Setting it derives the dust threshold from it.
	FeePerKB float64

	// Dust overrides the dust threshold in satoshis. Zero keeps the
	// network (or fee-derived) value.
	Dust uint64

	DustChangeToFees bool
	Version          uint32
	LockTime         uint32
	LogLevel         string
}

// DefaultConfig returns the mainnet defaults.
func DefaultConfig() Config {
	return Config{
		Network:          "mainnet",
		DustChangeToFees: true,
		Version:          tx.DefaultVersion,
		LogLevel:         "info",
	}
}

// Params resolves cfg into the explicit parameters a tx.Builder is created
// with.
func (c Config) Params() (tx.Params, error) {
	net, err := GetNetwork(c.Network)
	if err != nil {
		return tx.Params{}, err
	}

	params := tx.Params{
		FeePerKB:         net.FeePerKB,
		Dust:             net.Dust,
		DustChangeToFees: c.DustChangeToFees,
		Version:          c.Version,
		LockTime:         c.LockTime,
		Mainnet:          net.Mainnet(),
	}
	if c.FeePerKB > 0 {
		params.FeePerKB = c.FeePerKB
		params.Dust = tx.DustFromFeeRate(c.FeePerKB)
	}
	if c.Dust > 0 {
		params.Dust = c.Dust
	}
	return params, nil
}

// configKeys lists the keys LoadConfig reads and SaveConfig writes.
var configKeys = []string{
	"network", "feeperkb", "dust", "dustchangetofees", "version", "locktime", "loglevel",
}

// LoadConfig reads the file at path on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: stat %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(configType)
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("%w: %s: %w", ErrInvalidConfigLine, path, err)
	}

	for _, key := range configKeys {
		if !v.IsSet(key) {
			continue
		}
		value := strings.TrimSpace(v.GetString(key))
		if err := cfg.set(key, value); err != nil {
			return cfg, fmt.Errorf("%w: %s: %w", ErrInvalidConfigValue, key, err)
		}
	}

	return cfg, nil
}

// set assigns one parsed key. Unknown keys are ignored.
func (c *Config) set(key, value string) error {
	switch key {
	case "network":
		c.Network = value
	case "feeperkb":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		c.FeePerKB = v
	case "dust":
		v, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		c.Dust = v
	case "dustchangetofees":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		c.DustChangeToFees = v
	case "version":
		v, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return err
		}
		c.Version = uint32(v)
	case "locktime":
		v, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return err
		}
		c.LockTime = uint32(v)
	case "loglevel":
		c.LogLevel = value
	}
	return nil
}

// SaveConfig writes cfg to path, creating parent directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType(configType)
	v.SetConfigPermissions(0600)
	v.Set("network", cfg.Network)
	v.Set("feeperkb", strconv.FormatFloat(cfg.FeePerKB, 'f', -1, 64))
	v.Set("dust", strconv.FormatUint(cfg.Dust, 10))
	v.Set("dustchangetofees", strconv.FormatBool(cfg.DustChangeToFees))
	v.Set("version", strconv.FormatUint(uint64(cfg.Version), 10))
	v.Set("locktime", strconv.FormatUint(uint64(cfg.LockTime), 10))
	v.Set("loglevel", cfg.LogLevel)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
