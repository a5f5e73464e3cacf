// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"math"
	"strings"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
	"off":   true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if _, err := GetNetwork(cfg.Network); err != nil {
		return ErrInvalidNetwork
	}

	if cfg.FeePerKB < 0 || math.IsNaN(cfg.FeePerKB) || math.IsInf(cfg.FeePerKB, 0) {
		return ErrInvalidFeeRate
	}

	if cfg.Version == 0 {
		return ErrInvalidVersion
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	return nil
}
