package tx

import (
	"encoding/binary"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
)

const (
	// TxIDLen is the length of a transaction ID.
	TxIDLen = chainhash.HashSize

	// OutpointLen is the serialized size of an outpoint: hash(32) + index(4).
	OutpointLen = TxIDLen + 4
)

// Outpoint identifies a previously received output by the hash of the
// transaction that created it and its position in that transaction's outputs.
// It is comparable and used directly as a map key.
type Outpoint struct {
	TxID chainhash.Hash
	Vout uint32
}

// NewOutpoint creates an Outpoint from a 32-byte transaction hash in wire
// byte order.
func NewOutpoint(txID []byte, vout uint32) (Outpoint, error) {
	if len(txID) != TxIDLen {
		return Outpoint{}, fmt.Errorf("%w: got %d bytes", ErrInvalidTxID, len(txID))
	}
	var op Outpoint
	copy(op.TxID[:], txID)
	op.Vout = vout
	return op, nil
}

// Bytes returns the 36-byte wire encoding: the hash followed by the output
// index in little-endian.
func (o Outpoint) Bytes() []byte {
	buf := make([]byte, OutpointLen)
	copy(buf, o.TxID[:])
	binary.LittleEndian.PutUint32(buf[TxIDLen:], o.Vout)
	return buf
}

// String returns the outpoint as "<txid>:<vout>" with the txid in display
// (reversed) byte order.
func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxID.String(), o.Vout)
}

// hash returns a pointer to a copy of the outpoint's hash, as expected by
// transaction.TransactionInput.
func (o Outpoint) hash() *chainhash.Hash {
	h := o.TxID
	return &h
}
