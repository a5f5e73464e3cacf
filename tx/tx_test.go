package tx

import (
	"bytes"
	"testing"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/stretchr/testify/require"
)

func generateTestKeyPair(t *testing.T) (*ec.PrivateKey, *ec.PublicKey) {
	t.Helper()
	privKey, err := ec.NewPrivateKey()
	require.NoError(t, err)
	return privKey, privKey.PubKey()
}

func testOutpoint(t *testing.T, seed byte, vout uint32) Outpoint {
	t.Helper()
	op, err := NewOutpoint(bytes.Repeat([]byte{seed}, TxIDLen), vout)
	require.NoError(t, err)
	return op
}

func testP2PKHScript(t *testing.T, pubKey *ec.PublicKey) *script.Script {
	t.Helper()
	s, err := BuildP2PKHScript(pubKey)
	require.NoError(t, err)
	return s
}

// testP2PKHUTXO returns a UTXO of amount locked to pubKey.
func testP2PKHUTXO(t *testing.T, pubKey *ec.PublicKey, amount uint64) UTXO {
	t.Helper()
	return UTXO{
		Amount:       amount,
		ScriptPubKey: []byte(*testP2PKHScript(t, pubKey)),
	}
}

// newTestBuilder returns a builder at feePerKB with a P2PKH change script
// and no fee-derived surprises: dust is set explicitly.
func newTestBuilder(t *testing.T, feePerKB float64, dust uint64) *Builder {
	t.Helper()
	_, changePub := generateTestKeyPair(t)
	return NewBuilder(DefaultParams()).
		SetFeePerKB(feePerKB).
		SetDust(dust).
		SetChangeScript(testP2PKHScript(t, changePub))
}

// addP2PKHInput declares a P2PKH input of amount owned by priv.
func addP2PKHInput(t *testing.T, b *Builder, priv *ec.PrivateKey, seed byte, amount uint64) Outpoint {
	t.Helper()
	op := testOutpoint(t, seed, 0)
	err := b.InputFromPubKeyHash(op, testP2PKHUTXO(t, priv.PubKey(), amount),
		priv.PubKey(), DefaultSequence, 0x41)
	require.NoError(t, err)
	return op
}

// addP2PKHOutput declares a P2PKH output of amount to a fresh key.
func addP2PKHOutput(t *testing.T, b *Builder, amount uint64) {
	t.Helper()
	_, pub := generateTestKeyPair(t)
	b.OutputToScript(amount, testP2PKHScript(t, pub))
}

func hashFromSeed(seed string) chainhash.Hash {
	return chainhash.DoubleHashH([]byte(seed))
}
