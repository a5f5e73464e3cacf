package tx

import (
	"bytes"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	sighash "github.com/bsv-blockchain/go-sdk/transaction/sighash"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"
)

// SignatureVersion selects how the signature preimage is computed.
type SignatureVersion int

const (
	// SigVersionForkID uses the fork-id preimage, which commits to the
	// value of the spent output.
	SigVersionForkID SignatureVersion = iota
	// SigVersionLegacy uses the pre-fork preimage, which does not.
	SigVersionLegacy
)

// SignRequest carries everything a Signer needs to sign one input.
type SignRequest struct {
	PrivateKey *ec.PrivateKey
	SigHash    sighash.Flag
	InputIndex uint32
	SubScript  *script.Script // locking script of the spent output
	Amount     uint64         // spent value, always set
	Value      uint64         // spent value committed to; zero when not committed
	Version    SignatureVersion
}

// Signer produces a DER signature for one input of tx. The sighash byte is
// appended by the caller.
type Signer interface {
	Sign(tx *transaction.Transaction, req SignRequest) ([]byte, error)
}

// SDKSigner signs with the go-sdk sighash and ECDSA implementations.
type SDKSigner struct{}

// Sign implements Signer.
func (SDKSigner) Sign(tx *transaction.Transaction, req SignRequest) ([]byte, error) {
	if tx == nil {
		return nil, fmt.Errorf("%w: transaction", ErrNilParam)
	}
	if req.PrivateKey == nil {
		return nil, fmt.Errorf("%w: private key", ErrNilParam)
	}
	if int(req.InputIndex) >= len(tx.Inputs) {
		return nil, fmt.Errorf("%w: %d", ErrInputIndexOutOfRange, req.InputIndex)
	}

	// The sighash reads the spent output from the input. Only the fork-id
	// preimage reads its value, and for that Amount equals Value.
	tx.Inputs[req.InputIndex].SetSourceTxOutput(&transaction.TransactionOutput{
		Satoshis:      req.Amount,
		LockingScript: req.SubScript,
	})

	var hash []byte
	switch req.Version {
	case SigVersionLegacy:
		preimage, err := tx.CalcInputPreimageLegacy(req.InputIndex, req.SigHash)
		if err != nil {
			return nil, fmt.Errorf("legacy preimage: %w", err)
		}
		h := chainhash.DoubleHashH(preimage)
		hash = h[:]
	default:
		var err error
		hash, err = tx.CalcInputSignatureHash(req.InputIndex, req.SigHash)
		if err != nil {
			return nil, fmt.Errorf("calc sighash: %w", err)
		}
	}

	sig, err := req.PrivateKey.Sign(hash)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return sig.Serialize(), nil
}

// SignOptions adjusts how SignInput signs. The zero value signs with
// SIGHASH_ALL|FORKID using the registered script chunk.
type SignOptions struct {
	// ScriptChunk forces the chunk the signature is written to.
	ScriptChunk *uint32

	// SigHash overrides the registered sighash flag.
	SigHash sighash.Flag

	Version SignatureVersion

	// SourceOutput overrides the spent output looked up in the UTXO map.
	SourceOutput *UTXO

	// Signer defaults to SDKSigner.
	Signer Signer
}

// SignInput signs input nIn of the built transaction with key and writes the
// signature into its unlocking script. Public key operations registered for
// the key's address on the same input are filled as well. No other input is
// touched.
//
// The chunk to fill is taken from opts, then from the signature operation
// registered for the key's address, then chunk 0 if the unlocking script is a
// P2PKH placeholder. Anything else fails with ErrAmbiguousScriptChunk.
func (b *Builder) SignInput(nIn int, key *ec.PrivateKey, opts *SignOptions) error {
	if b.tx == nil {
		return ErrNotBuilt
	}
	if key == nil {
		return fmt.Errorf("%w: private key", ErrNilParam)
	}
	if nIn < 0 || nIn >= len(b.tx.Inputs) {
		return fmt.Errorf("%w: %d of %d", ErrInputIndexOutOfRange, nIn, len(b.tx.Inputs))
	}
	if opts == nil {
		opts = &SignOptions{}
	}

	in := b.tx.Inputs[nIn]
	op := inputOutpoint(in)
	address, err := AddressFromPubKey(key.PubKey(), b.mainnet)
	if err != nil {
		return err
	}
	ops := b.sigOps.Get(op)
	sigOp, found := findSigOp(ops, SigOpSignature, address)

	var chunk uint32
	switch {
	case opts.ScriptChunk != nil:
		chunk = *opts.ScriptChunk
	case found:
		chunk = sigOp.ScriptChunk
	case isPubKeyHashIn(in.UnlockingScript):
		chunk = 0
	default:
		return fmt.Errorf("%w: input %d (%s)", ErrAmbiguousScriptChunk, nIn, op)
	}

	flag := opts.SigHash
	if flag == 0 && found {
		flag = sigOp.SigHash
	}
	if flag == 0 {
		flag = sighash.AllForkID
	}

	var utxo UTXO
	if opts.SourceOutput != nil {
		utxo = *opts.SourceOutput
	} else {
		var ok bool
		if utxo, ok = b.utxos.Get(op); !ok {
			return fmt.Errorf("%w: %s", ErrMissingUTXO, op)
		}
	}

	signer := opts.Signer
	if signer == nil {
		signer = SDKSigner{}
	}

	if err := b.signChunk(nIn, key, chunk, flag, opts.Version, utxo, signer); err != nil {
		return err
	}

	for _, pkOp := range ops {
		if pkOp.Type != SigOpPublicKey || pkOp.Address != address {
			continue
		}
		if err := b.fillChunk(nIn, pkOp.ScriptChunk, key.PubKey().Compressed()); err != nil {
			return err
		}
	}
	return nil
}

// SignWithKeys signs every registered operation on every input of the built
// transaction, looking up the private key by the operation's address.
func (b *Builder) SignWithKeys(keys map[string]*ec.PrivateKey) error {
	if b.tx == nil {
		return ErrNotBuilt
	}

	for nIn, in := range b.tx.Inputs {
		op := inputOutpoint(in)
		utxo, ok := b.utxos.Get(op)
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingUTXO, op)
		}

		for _, sigOp := range b.sigOps.Get(op) {
			key, ok := keys[sigOp.Address]
			if !ok || key == nil {
				return fmt.Errorf("%w: %s (input %d)", ErrMissingSigningKey, sigOp.Address, nIn)
			}

			var err error
			switch sigOp.Type {
			case SigOpPublicKey:
				err = b.fillChunk(nIn, sigOp.ScriptChunk, key.PubKey().Compressed())
			default:
				flag := sigOp.SigHash
				if flag == 0 {
					flag = sighash.AllForkID
				}
				err = b.signChunk(nIn, key, sigOp.ScriptChunk, flag, SigVersionForkID, utxo, SDKSigner{})
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// signChunk computes the signature for input nIn and writes it, followed by
// the sighash byte, into chunk.
func (b *Builder) signChunk(nIn int, key *ec.PrivateKey, chunk uint32, flag sighash.Flag,
	version SignatureVersion, utxo UTXO, signer Signer) error {

	// The spent value is only part of the fork-id preimage.
	var value uint64
	if flag&sighash.ForkID != 0 && version == SigVersionForkID {
		value = utxo.Amount
	}

	sig, err := signer.Sign(b.tx, SignRequest{
		PrivateKey: key,
		SigHash:    flag,
		InputIndex: uint32(nIn),
		SubScript:  script.NewFromBytes(bytes.Clone(utxo.ScriptPubKey)),
		Amount:     utxo.Amount,
		Value:      value,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("%w: input %d: %w", ErrSigningFailed, nIn, err)
	}

	log.Tracef("Signed input %d chunk %d flag %#x", nIn, chunk, uint32(flag))

	return b.fillChunk(nIn, chunk, append(sig, byte(flag)))
}

// fillChunk replaces chunk chunkIdx of input nIn's unlocking script with a
// push of data.
func (b *Builder) fillChunk(nIn int, chunkIdx uint32, data []byte) error {
	in := b.tx.Inputs[nIn]
	if in.UnlockingScript == nil {
		return fmt.Errorf("%w: input %d has no unlocking script", ErrScriptChunkOutOfRange, nIn)
	}
	chunks, err := in.UnlockingScript.Chunks()
	if err != nil {
		return fmt.Errorf("%w: parse unlocking script: %w", ErrScriptBuild, err)
	}
	if int(chunkIdx) >= len(chunks) {
		return fmt.Errorf("%w: chunk %d of %d on input %d",
			ErrScriptChunkOutOfRange, chunkIdx, len(chunks), nIn)
	}

	chunks[chunkIdx] = &script.ScriptChunk{Op: script.OpPUSHDATA1, Data: data}

	s := &script.Script{}
	for _, c := range chunks {
		if c.Op > script.Op0 && c.Op <= script.OpPUSHDATA4 {
			err = s.AppendPushData(c.Data)
		} else {
			err = s.AppendOpcodes(c.Op)
		}
		if err != nil {
			return fmt.Errorf("%w: rebuild unlocking script: %w", ErrScriptBuild, err)
		}
	}
	in.UnlockingScript = s
	return nil
}

// findSigOp returns the first operation of typ registered for address.
func findSigOp(ops []SigOperation, typ SigOpType, address string) (SigOperation, bool) {
	for _, op := range ops {
		if op.Type == typ && op.Address == address {
			return op, true
		}
	}
	return SigOperation{}, false
}

// isPubKeyHashIn reports whether s looks like a P2PKH unlocking script:
// <sig> <pubkey>, where either may still be an OP_0 placeholder.
func isPubKeyHashIn(s *script.Script) bool {
	if s == nil {
		return false
	}
	chunks, err := s.Chunks()
	if err != nil || len(chunks) != 2 {
		return false
	}
	sig, pub := chunks[0], chunks[1]
	if sig.Op != script.Op0 && len(sig.Data) == 0 {
		return false
	}
	switch {
	case pub.Op == script.Op0:
		return true
	case len(pub.Data) == 33 || len(pub.Data) == 65:
		return true
	default:
		return false
	}
}

// AddressFromPubKey returns the Base58 P2PKH address of pubKey.
func AddressFromPubKey(pubKey *ec.PublicKey, mainnet bool) (string, error) {
	if pubKey == nil {
		return "", fmt.Errorf("%w: public key", ErrNilParam)
	}
	addr, err := script.NewAddressFromPublicKey(pubKey, mainnet)
	if err != nil {
		return "", fmt.Errorf("%w: address from pubkey: %w", ErrScriptBuild, err)
	}
	return addr.AddressString, nil
}

// BuildP2PKHScript creates a P2PKH locking script for the given public key.
func BuildP2PKHScript(pubKey *ec.PublicKey) (*script.Script, error) {
	if pubKey == nil {
		return nil, fmt.Errorf("%w: public key", ErrNilParam)
	}
	addr, err := script.NewAddressFromPublicKey(pubKey, true)
	if err != nil {
		return nil, fmt.Errorf("%w: address from pubkey: %w", ErrScriptBuild, err)
	}
	lockScript, err := p2pkh.Lock(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: P2PKH lock script: %w", ErrScriptBuild, err)
	}
	return lockScript, nil
}
