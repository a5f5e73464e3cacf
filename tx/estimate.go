package tx

import "math"

const (
	// MaxSigSize is the largest size a signature insertion can add: the
	// pushdata byte, the DER encoding of r and s, and the sighash byte.
	//
	//	1 + 1 + 1 + 1 + 32 + 1 + 1 + 32 + 1 + 1
	MaxSigSize = 72

	// PubKeySize is the size budgeted for a public key insertion: the
	// pushdata byte and a 33-byte compressed key, plus one byte of slack.
	PubKeySize = 35

	// dustOutputSize is the size of a typical P2PKH output plus the input
	// needed to spend it, used to derive the dust threshold from a fee rate.
	dustOutputSize = 182
)

// EstimateFee returns ceil(size / 1000 * feePerKB). Rounding up means the fee
// is never below the rate. The product is taken before dividing so whole
// results are exact.
func EstimateFee(size int, feePerKB float64) uint64 {
	if size <= 0 || feePerKB <= 0 {
		return 0
	}
	return uint64(math.Ceil(float64(size) * feePerKB / 1000))
}

// DustFromFeeRate derives the dust threshold for a fee rate: three times the
// fee of spending a typical output.
func DustFromFeeRate(feePerKB float64) uint64 {
	if feePerKB <= 0 {
		return 0
	}
	return 3 * uint64(math.Ceil(feePerKB*dustOutputSize/1000))
}

// sigOpsSize returns the number of bytes the registered operations will add
// once signatures and public keys are inserted.
func sigOpsSize(ops []SigOperation) int {
	size := 0
	for _, op := range ops {
		switch op.Type {
		case SigOpPublicKey:
			size += PubKeySize
		default:
			size += MaxSigSize
		}
	}
	return size
}
