// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"

	"github.com/bitfsorg/txbuilder-go/tx"
)

// NetworkConfig holds the transaction builder defaults of a BSV network.
type NetworkConfig struct {
	Name           string  `json:"name"`
	AddressVersion byte    `json:"address_version"`
	FeePerKB       float64 `json:"fee_per_kb"` // sat/KB
	Dust           uint64  `json:"dust"`       // satoshis
}

// Predefined network configurations.
var (
	MainNet = NetworkConfig{
		Name:           "mainnet",
		AddressVersion: 0x00,
		FeePerKB:       tx.DefaultFeePerKB,
		Dust:           tx.DustLimit,
	}

	TestNet = NetworkConfig{
		Name:           "testnet",
		AddressVersion: 0x6f,
		FeePerKB:       tx.DefaultFeePerKB,
		Dust:           tx.DustLimit,
	}

	RegTest = NetworkConfig{
		Name:           "regtest",
		AddressVersion: 0x6f,
		FeePerKB:       tx.DefaultFeePerKB,
		Dust:           tx.DustLimit,
	}
)

// predefined maps network names to their configs.
var predefined = map[string]*NetworkConfig{
	"mainnet": &MainNet,
	"testnet": &TestNet,
	"regtest": &RegTest,
}

// GetNetwork returns a predefined network by name.
func GetNetwork(name string) (*NetworkConfig, error) {
	if net, ok := predefined[name]; ok {
		return net, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, name)
}

// Mainnet reports whether addresses on this network use the mainnet encoding.
func (n *NetworkConfig) Mainnet() bool {
	return n.AddressVersion == MainNet.AddressVersion
}
