// Package wallet derives the signing keys a transaction builder spends with,
// using BIP39 mnemonics and BIP32 key chains.
//
// Key hierarchy: m/44'/236'/{account}'/{chain}/{index}, where chain 0 holds
// receive addresses and chain 1 holds change addresses.
package wallet

import (
	"fmt"

	"github.com/bsv-blockchain/go-sdk/compat/bip39"
)

const (
	// Mnemonic entropy sizes.
	Mnemonic12Words = 128 // 12-word mnemonic
	Mnemonic24Words = 256 // 24-word mnemonic
)

// GenerateMnemonic creates a new BIP39 mnemonic with the specified entropy bits.
// Use Mnemonic12Words (128) for 12 words or Mnemonic24Words (256) for 24 words.
func GenerateMnemonic(entropyBits int) (string, error) {
	if entropyBits != Mnemonic12Words && entropyBits != Mnemonic24Words {
		return "", ErrInvalidEntropy
	}

	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", fmt.Errorf("wallet: failed to generate entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("wallet: failed to generate mnemonic: %w", err)
	}

	return mnemonic, nil
}

// ValidateMnemonic checks if a mnemonic string is valid BIP39.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// SeedFromMnemonic derives the 64-byte BIP39 seed from mnemonic and an
// optional passphrase. An empty passphrase still takes part in derivation.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	if !ValidateMnemonic(mnemonic) {
		return nil, ErrInvalidMnemonic
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("wallet: failed to derive seed: %w", err)
	}

	return seed, nil
}
