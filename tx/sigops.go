package tx

import (
	"slices"

	sighash "github.com/bsv-blockchain/go-sdk/transaction/sighash"
)

// SigOpType identifies what gets inserted into an unlocking script chunk.
type SigOpType int

const (
	// SigOpSignature inserts a signature followed by its sighash byte.
	SigOpSignature SigOpType = iota
	// SigOpPublicKey inserts a compressed public key.
	SigOpPublicKey
)

// String returns the name of the operation type.
func (t SigOpType) String() string {
	switch t {
	case SigOpSignature:
		return "sig"
	case SigOpPublicKey:
		return "pubkey"
	default:
		return "unknown"
	}
}

// SigOperation records that the unlocking script of the input spending
// Outpoint needs a signature or public key for Address at ScriptChunk.
type SigOperation struct {
	Outpoint    Outpoint
	ScriptChunk uint32
	Type        SigOpType
	Address     string
	SigHash     sighash.Flag
}

// SigOperations holds the signature operations registered per outpoint, in
// the order they were added.
type SigOperations struct {
	m map[Outpoint][]SigOperation
}

// NewSigOperations creates an empty SigOperations.
func NewSigOperations() *SigOperations {
	return &SigOperations{m: make(map[Outpoint][]SigOperation)}
}

// AddOne appends an operation for op.
func (s *SigOperations) AddOne(op Outpoint, scriptChunk uint32, typ SigOpType, address string, flag sighash.Flag) {
	s.m[op] = append(s.m[op], SigOperation{
		Outpoint:    op,
		ScriptChunk: scriptChunk,
		Type:        typ,
		Address:     address,
		SigHash:     flag,
	})
}

// Get returns the operations registered for op, or nil if there are none.
func (s *SigOperations) Get(op Outpoint) []SigOperation {
	return slices.Clone(s.m[op])
}
