// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"io"

	"github.com/btcsuite/btclog"
)

// Subsystem is the log tag used for transaction builder output.
const Subsystem = "TXBD"

// NewLogger creates a logger writing to w at the level named in cfg. Pass
// the result to tx.UseLogger to enable builder logging.
func NewLogger(cfg Config, w io.Writer) btclog.Logger {
	backend := btclog.NewBackend(w)
	logger := backend.Logger(Subsystem)

	level, ok := btclog.LevelFromString(cfg.LogLevel)
	if !ok {
		level = btclog.LevelInfo
	}
	logger.SetLevel(level)

	return logger
}
