package tx

import (
	"bytes"
	"fmt"
	"math/bits"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	sighash "github.com/bsv-blockchain/go-sdk/transaction/sighash"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"
)

// pendingInput is an input declared on the Builder. Its unlocking script is
// a placeholder until the input is signed.
type pendingInput struct {
	outpoint Outpoint
	unlock   []byte
	sequence uint32
}

// Builder assembles a transaction from declared inputs and outputs. It picks
// enough inputs, in the order they were declared, to pay for the outputs and
// the fee, and sends what is left to a change output.
//
// A Builder is owned by a single caller and is not safe for concurrent use.
// Setters return the same Builder so calls can be chained.
type Builder struct {
	tx      *transaction.Transaction
	inputs  []pendingInput
	outputs []*transaction.TransactionOutput

	utxos  *UTXOMap
	sigOps *SigOperations

	changeScript []byte
	changeAmount uint64
	feeAmount    uint64

	feePerKB         float64
	dust             uint64
	dustChangeToFees bool
	version          uint32
	lockTime         uint32
	mainnet          bool
}

// NewBuilder creates a Builder starting from params.
func NewBuilder(params Params) *Builder {
	return &Builder{
		utxos:            NewUTXOMap(),
		sigOps:           NewSigOperations(),
		feePerKB:         params.FeePerKB,
		dust:             params.Dust,
		dustChangeToFees: params.DustChangeToFees,
		version:          params.Version,
		lockTime:         params.LockTime,
		mainnet:          params.Mainnet,
	}
}

// SetLockTime sets the transaction lock time.
func (b *Builder) SetLockTime(lockTime uint32) *Builder {
	b.lockTime = lockTime
	return b
}

// SetVersion sets the transaction version.
func (b *Builder) SetVersion(version uint32) *Builder {
	b.version = version
	return b
}

// SetFeePerKB sets the fee rate in sat/KB and derives the dust threshold from
// it. Call SetDust afterwards to override the derived value.
func (b *Builder) SetFeePerKB(feePerKB float64) *Builder {
	b.feePerKB = feePerKB
	b.dust = DustFromFeeRate(feePerKB)
	return b
}

// SetDust overrides the dust threshold.
func (b *Builder) SetDust(dust uint64) *Builder {
	b.dust = dust
	return b
}

// SetDustChangeToFees controls whether change below the dust threshold is
// added to the fee (true) or fails the build (false).
func (b *Builder) SetDustChangeToFees(dustChangeToFees bool) *Builder {
	b.dustChangeToFees = dustChangeToFees
	return b
}

// SetChangeScript sets the locking script of the change output.
func (b *Builder) SetChangeScript(changeScript *script.Script) *Builder {
	if changeScript == nil {
		b.changeScript = nil
		return b
	}
	b.changeScript = bytes.Clone(*changeScript)
	return b
}

// SetChangeAddress sets a P2PKH change output paying to address.
func (b *Builder) SetChangeAddress(address string) error {
	lockScript, err := p2pkhScript(address)
	if err != nil {
		return fmt.Errorf("%w: change address: %w", ErrScriptBuild, err)
	}
	b.SetChangeScript(lockScript)
	return nil
}

// AddInput declares an input spending op with a placeholder unlocking
// script. The spent output must be registered with SetUTXO before Build.
func (b *Builder) AddInput(op Outpoint, unlock *script.Script, sequence uint32) *Builder {
	var unlockBytes []byte
	if unlock != nil {
		unlockBytes = bytes.Clone(*unlock)
	}
	b.inputs = append(b.inputs, pendingInput{
		outpoint: op,
		unlock:   unlockBytes,
		sequence: sequence,
	})
	return b
}

// SetUTXO records the output spent by op.
func (b *Builder) SetUTXO(op Outpoint, utxo UTXO) *Builder {
	b.utxos.Set(op, utxo)
	return b
}

// InputFromScript declares an input spending op with a placeholder unlocking
// script and records utxo as the output being spent.
func (b *Builder) InputFromScript(op Outpoint, utxo UTXO, unlock *script.Script, sequence uint32) *Builder {
	return b.AddInput(op, unlock, sequence).SetUTXO(op, utxo)
}

// InputFromPubKeyHash declares an input spending a P2PKH output owned by
// pubKey. The placeholder unlocking script is OP_0 <pubkey>, and a signature
// operation for chunk 0 is registered for the key's address.
func (b *Builder) InputFromPubKeyHash(op Outpoint, utxo UTXO, pubKey *ec.PublicKey, sequence uint32, flag sighash.Flag) error {
	if pubKey == nil {
		return fmt.Errorf("%w: public key", ErrNilParam)
	}
	address, err := AddressFromPubKey(pubKey, b.mainnet)
	if err != nil {
		return err
	}

	unlock := &script.Script{}
	if err := unlock.AppendOpcodes(script.Op0); err != nil {
		return fmt.Errorf("%w: placeholder: %w", ErrScriptBuild, err)
	}
	if err := unlock.AppendPushData(pubKey.Compressed()); err != nil {
		return fmt.Errorf("%w: placeholder pubkey: %w", ErrScriptBuild, err)
	}

	b.InputFromScript(op, utxo, unlock, sequence)
	b.AddSigOperation(op, 0, SigOpSignature, address, flag)
	return nil
}

// AddSigOperation registers that the input spending op needs a signature or
// public key for address inserted at scriptChunk.
func (b *Builder) AddSigOperation(op Outpoint, scriptChunk uint32, typ SigOpType, address string, flag sighash.Flag) *Builder {
	b.sigOps.AddOne(op, scriptChunk, typ, address, flag)
	return b
}

// OutputToScript declares an output paying value to lockScript. Declared
// outputs are always included, whatever their value.
func (b *Builder) OutputToScript(value uint64, lockScript *script.Script) *Builder {
	var lockBytes []byte
	if lockScript != nil {
		lockBytes = bytes.Clone(*lockScript)
	}
	b.outputs = append(b.outputs, &transaction.TransactionOutput{
		Satoshis:      value,
		LockingScript: script.NewFromBytes(lockBytes),
	})
	return b
}

// OutputToAddress declares a P2PKH output paying value to address.
func (b *Builder) OutputToAddress(value uint64, address string) error {
	lockScript, err := p2pkhScript(address)
	if err != nil {
		return fmt.Errorf("%w: output address: %w", ErrScriptBuild, err)
	}
	b.OutputToScript(value, lockScript)
	return nil
}

// Build selects inputs and computes the fee and change, returning the
// unsigned transaction.
//
// Inputs are consumed in declaration order until they cover the outputs. If
// the change left after the estimated fee would not clear the dust threshold,
// one more input is consumed and the estimate repeated, until every input is
// in use. With useAllInputs every declared input is consumed from the start.
//
// The fee is estimated from the serialized size plus the worst case size of
// every registered signature and public key, so it is never below the fee
// rate once the inputs are signed.
//
// On error the Builder holds no transaction. The returned transaction stays
// owned by the Builder: SignInput fills its unlocking scripts in place.
func (b *Builder) Build(useAllInputs bool) (_ *transaction.Transaction, err error) {
	defer func() {
		if err != nil {
			b.tx = nil
			b.changeAmount = 0
			b.feeAmount = 0
		}
	}()

	b.changeAmount = 0
	b.feeAmount = 0

	if len(b.inputs) == 0 {
		return nil, ErrInvalidNumberOfInputs
	}
	if b.changeScript == nil {
		return nil, ErrMissingChangeOutput
	}

	numInputs := len(b.inputs)
	extraInputsNum := 0
	if useAllInputs {
		extraInputsNum = numInputs - 1
	}

	var inputAmount, outputAmount, minFee uint64
	for ; extraInputsNum < numInputs; extraInputsNum++ {
		b.tx = b.newDraft()
		outputAmount, err = b.buildOutputs()
		if err != nil {
			return nil, err
		}

		// Temporary change output so the estimate accounts for it.
		b.tx.AddOutput(b.changeOutput(0))

		inputAmount, err = b.buildInputs(outputAmount, extraInputsNum)
		if err != nil {
			return nil, err
		}

		if inputAmount < outputAmount {
			// Every input was consumed; another round cannot add more.
			break
		}

		b.changeAmount = inputAmount - outputAmount
		minFee = b.EstimateFee()

		log.Debugf("Build round: extra=%d inputs=%d in=%d out=%d fee=%d change=%d",
			extraInputsNum, len(b.tx.Inputs), inputAmount, outputAmount,
			minFee, b.changeAmount)

		if b.changeAmount >= minFee && b.changeAmount-minFee > b.dust {
			break
		}
	}

	if inputAmount < outputAmount || b.changeAmount < minFee {
		return nil, fmt.Errorf("%w: have %d sat, need %d sat plus fee %d sat",
			ErrInsufficientInputAmount, inputAmount, outputAmount, minFee)
	}

	b.feeAmount = minFee
	b.changeAmount -= minFee

	// Replace the temporary change output with the final amount.
	changeIdx := len(b.tx.Outputs) - 1
	b.tx.Outputs[changeIdx] = b.changeOutput(b.changeAmount)

	if b.changeAmount < b.dust || b.changeAmount == 0 {
		if b.changeAmount != 0 && !b.dustChangeToFees {
			return nil, fmt.Errorf("%w: change %d sat, dust %d sat",
				ErrChangeBelowDust, b.changeAmount, b.dust)
		}
		b.tx.Outputs = b.tx.Outputs[:changeIdx]
		b.feeAmount += b.changeAmount
		b.changeAmount = 0
	}

	b.tx.LockTime = b.lockTime
	b.tx.Version = b.version

	if len(b.tx.Outputs) == 0 {
		return nil, ErrInvalidNumberOfOutputs
	}

	log.Debugf("Built transaction: inputs=%d outputs=%d fee=%d change=%d",
		len(b.tx.Inputs), len(b.tx.Outputs), b.feeAmount, b.changeAmount)

	return b.tx, nil
}

// EstimateSize returns the size the current draft will have once every
// registered signature and public key is inserted.
func (b *Builder) EstimateSize() int {
	if b.tx == nil {
		return 0
	}
	size := len(b.tx.Bytes())
	for _, in := range b.tx.Inputs {
		size += sigOpsSize(b.sigOps.Get(inputOutpoint(in)))
	}
	return size
}

// EstimateFee returns the fee for the current draft at the configured rate.
func (b *Builder) EstimateFee() uint64 {
	return EstimateFee(b.EstimateSize(), b.feePerKB)
}

// Tx returns the transaction produced by the last successful Build, or nil.
func (b *Builder) Tx() *transaction.Transaction {
	return b.tx
}

// Fee returns the fee of the last successful Build, including any dust
// change added to it.
func (b *Builder) Fee() uint64 {
	return b.feeAmount
}

// Change returns the change amount of the last successful Build. Zero means
// the transaction has no change output.
func (b *Builder) Change() uint64 {
	return b.changeAmount
}

// Dust returns the dust threshold in effect.
func (b *Builder) Dust() uint64 {
	return b.dust
}

// FeePerKB returns the fee rate in effect.
func (b *Builder) FeePerKB() float64 {
	return b.feePerKB
}

// Outputs returns copies of the declared outputs, without change.
func (b *Builder) Outputs() []*transaction.TransactionOutput {
	outs := make([]*transaction.TransactionOutput, 0, len(b.outputs))
	for _, out := range b.outputs {
		outs = append(outs, cloneOutput(out))
	}
	return outs
}

// TotalInputAmount returns the value of every declared input found in the
// UTXO map, whether or not Build selected it.
func (b *Builder) TotalInputAmount() uint64 {
	var total uint64
	for _, in := range b.inputs {
		if utxo, ok := b.utxos.Get(in.outpoint); ok {
			total += utxo.Amount
		}
	}
	return total
}

// UTXOs returns the UTXO map backing the declared inputs.
func (b *Builder) UTXOs() *UTXOMap {
	return b.utxos
}

// SigOperations returns the registered signature operations.
func (b *Builder) SigOperations() *SigOperations {
	return b.sigOps
}

func (b *Builder) newDraft() *transaction.Transaction {
	tx := transaction.NewTransaction()
	tx.Version = b.version
	tx.LockTime = b.lockTime
	return tx
}

// buildOutputs adds the declared outputs to the draft and returns their total.
func (b *Builder) buildOutputs() (uint64, error) {
	var total, carry uint64
	for i, out := range b.outputs {
		total, carry = bits.Add64(total, out.Satoshis, 0)
		if carry != 0 {
			return 0, fmt.Errorf("%w: outputs at output %d", ErrAmountOverflow, i)
		}
		b.tx.AddOutput(cloneOutput(out))
	}
	return total, nil
}

// buildInputs adds declared inputs to the draft until their value reaches
// outAmount, then extraInputsNum more, and returns the value added.
func (b *Builder) buildInputs(outAmount uint64, extraInputsNum int) (uint64, error) {
	var total, carry uint64
	for _, in := range b.inputs {
		utxo, ok := b.utxos.Get(in.outpoint)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingUTXO, in.outpoint)
		}
		total, carry = bits.Add64(total, utxo.Amount, 0)
		if carry != 0 {
			return 0, fmt.Errorf("%w: inputs at %s", ErrAmountOverflow, in.outpoint)
		}
		b.tx.AddInput(&transaction.TransactionInput{
			SourceTXID:       in.outpoint.hash(),
			SourceTxOutIndex: in.outpoint.Vout,
			UnlockingScript:  script.NewFromBytes(bytes.Clone(in.unlock)),
			SequenceNumber:   in.sequence,
		})

		if total >= outAmount {
			if extraInputsNum <= 0 {
				break
			}
			extraInputsNum--
		}
	}
	return total, nil
}

func (b *Builder) changeOutput(amount uint64) *transaction.TransactionOutput {
	return &transaction.TransactionOutput{
		Satoshis:      amount,
		LockingScript: script.NewFromBytes(bytes.Clone(b.changeScript)),
	}
}

func cloneOutput(out *transaction.TransactionOutput) *transaction.TransactionOutput {
	var lockBytes []byte
	if out.LockingScript != nil {
		lockBytes = bytes.Clone(*out.LockingScript)
	}
	return &transaction.TransactionOutput{
		Satoshis:      out.Satoshis,
		LockingScript: script.NewFromBytes(lockBytes),
	}
}

func inputOutpoint(in *transaction.TransactionInput) Outpoint {
	op := Outpoint{Vout: in.SourceTxOutIndex}
	if in.SourceTXID != nil {
		op.TxID = *in.SourceTXID
	}
	return op
}

// p2pkhScript returns the P2PKH locking script for a Base58 address.
func p2pkhScript(address string) (*script.Script, error) {
	addr, err := script.NewAddressFromString(address)
	if err != nil {
		return nil, err
	}
	return p2pkh.Lock(addr)
}
