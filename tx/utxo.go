package tx

import (
	"bytes"
)

// UTXO is the value and locking script of a spendable output.
type UTXO struct {
	Amount       uint64 `json:"amount"`        // satoshis
	ScriptPubKey []byte `json:"script_pubkey"` // locking script bytes
}

// UTXOMap maps outpoints to the outputs they reference. Setting an existing
// outpoint overwrites it.
type UTXOMap struct {
	m map[Outpoint]UTXO
}

// NewUTXOMap creates an empty UTXOMap.
func NewUTXOMap() *UTXOMap {
	return &UTXOMap{m: make(map[Outpoint]UTXO)}
}

// Set stores utxo under op. The locking script is copied.
func (u *UTXOMap) Set(op Outpoint, utxo UTXO) {
	u.m[op] = UTXO{
		Amount:       utxo.Amount,
		ScriptPubKey: bytes.Clone(utxo.ScriptPubKey),
	}
}

// Get returns the UTXO stored under op.
func (u *UTXOMap) Get(op Outpoint) (UTXO, bool) {
	utxo, ok := u.m[op]
	if !ok {
		return UTXO{}, false
	}
	utxo.ScriptPubKey = bytes.Clone(utxo.ScriptPubKey)
	return utxo, true
}

// Len returns the number of stored outpoints.
func (u *UTXOMap) Len() int {
	return len(u.m)
}
