package wallet

import "errors"

var (
	// ErrInvalidMnemonic indicates the mnemonic fails BIP39 validation.
	ErrInvalidMnemonic = errors.New("wallet: invalid BIP39 mnemonic")

	// ErrInvalidEntropy indicates entropy bits is not 128 or 256.
	ErrInvalidEntropy = errors.New("wallet: entropy bits must be 128 or 256")

	// ErrInvalidSeed indicates the seed is empty.
	ErrInvalidSeed = errors.New("wallet: invalid seed")

	// ErrIndexOutOfRange indicates an account or address index at or above
	// the BIP32 hardened boundary.
	ErrIndexOutOfRange = errors.New("wallet: index exceeds maximum (2^31-1)")

	// ErrInvalidChain indicates a chain other than external or internal.
	ErrInvalidChain = errors.New("wallet: chain must be 0 (external) or 1 (internal)")

	// ErrDerivationFailed indicates BIP32 key derivation failed.
	ErrDerivationFailed = errors.New("wallet: key derivation failed")
)
