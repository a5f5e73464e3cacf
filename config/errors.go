// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("config: invalid network (must be \"mainnet\", \"testnet\", or \"regtest\")")

	// ErrInvalidFeeRate indicates the fee rate is negative or not a number.
	ErrInvalidFeeRate = errors.New("config: invalid fee rate (must be a non-negative number of sat/KB)")

	// ErrInvalidVersion indicates the transaction version is zero.
	ErrInvalidVersion = errors.New("config: transaction version must be at least 1")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"trace\", \"debug\", \"info\", \"warn\", \"error\", or \"off\")")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigLine indicates a line in the config file is malformed.
	ErrInvalidConfigLine = errors.New("config: invalid configuration line")

	// ErrInvalidConfigValue indicates a value in the config file cannot be parsed.
	ErrInvalidConfigValue = errors.New("config: invalid configuration value")
)
