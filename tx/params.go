package tx

import (
	"github.com/bsv-blockchain/go-sdk/transaction"
)

const (
	// DefaultFeePerKB is the default fee rate in sat/KB.
	DefaultFeePerKB = 500.0

	// DustLimit is the default dust threshold in satoshis.
	DustLimit = uint64(546)

	// DefaultVersion is the transaction version used when none is set.
	DefaultVersion = uint32(1)
)

// Params holds the fee and change policy a Builder starts from. It replaces
// any process-wide network default: callers pass it explicitly.
type Params struct {
	// FeePerKB is the fee rate in satoshis per 1000 bytes.
	FeePerKB float64

	// Dust is the threshold below which change is not worth creating.
	Dust uint64

	// DustChangeToFees drops a dust change output and adds its value to
	// the fee instead of failing the build.
	DustChangeToFees bool

	Version  uint32
	LockTime uint32

	// Mainnet selects the address encoding used for derived addresses.
	Mainnet bool
}

// DefaultParams returns the mainnet builder defaults.
func DefaultParams() Params {
	return Params{
		FeePerKB:         DefaultFeePerKB,
		Dust:             DustLimit,
		DustChangeToFees: true,
		Version:          DefaultVersion,
		LockTime:         0,
		Mainnet:          true,
	}
}

// DefaultSequence is the sequence number for inputs that do not use
// relative lock time.
const DefaultSequence = transaction.DefaultSequenceNumber
