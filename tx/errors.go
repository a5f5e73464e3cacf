package tx

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("tx: required parameter is nil")

	// ErrInvalidTxID indicates an outpoint transaction hash is not 32 bytes.
	ErrInvalidTxID = errors.New("tx: transaction hash must be 32 bytes")

	// ErrInvalidNumberOfInputs indicates Build was called with no declared inputs.
	ErrInvalidNumberOfInputs = errors.New("tx: no inputs declared")

	// ErrMissingChangeOutput indicates no change script was configured.
	ErrMissingChangeOutput = errors.New("tx: change script not set")

	// ErrInvalidNumberOfOutputs indicates the finalized transaction has no outputs.
	ErrInvalidNumberOfOutputs = errors.New("tx: transaction has no outputs")

	// ErrChangeBelowDust indicates the change is below the dust threshold and
	// dust is not allowed to go to fees.
	ErrChangeBelowDust = errors.New("tx: change output below dust")

	// ErrInsufficientInputAmount indicates the declared inputs cannot cover
	// the outputs plus the minimum fee.
	ErrInsufficientInputAmount = errors.New("tx: input amount less than output amount plus fee")

	// ErrAmountOverflow indicates a sum of input or output amounts does not
	// fit in 64 bits.
	ErrAmountOverflow = errors.New("tx: amount sum overflows uint64")

	// ErrMissingUTXO indicates a declared input has no entry in the UTXO map.
	ErrMissingUTXO = errors.New("tx: missing UTXO for input")

	// ErrAmbiguousScriptChunk indicates the script chunk to fill with a
	// signature cannot be determined.
	ErrAmbiguousScriptChunk = errors.New("tx: cannot determine script chunk to sign")

	// ErrScriptChunkOutOfRange indicates a script chunk index past the end of
	// the unlocking script.
	ErrScriptChunkOutOfRange = errors.New("tx: script chunk index out of range")

	// ErrNotBuilt indicates signing was attempted before a successful Build.
	ErrNotBuilt = errors.New("tx: transaction not built")

	// ErrInputIndexOutOfRange indicates an input index past the end of the draft.
	ErrInputIndexOutOfRange = errors.New("tx: input index out of range")

	// ErrMissingSigningKey indicates no private key was supplied for an address
	// that has a registered signature operation.
	ErrMissingSigningKey = errors.New("tx: no signing key for address")

	// ErrSigningFailed indicates transaction signing failed.
	ErrSigningFailed = errors.New("tx: signing failed")

	// ErrScriptBuild indicates script construction failed.
	ErrScriptBuild = errors.New("tx: script build failed")
)
