// Package txplan computes virtual size, selects fees, and lays out the
// output list (including OP_RETURN) for a vanity-txid mining session.
package txplan

import "github.com/zeldminer/vanitytx/internal/nonce"

// TxInput is immutable after creation, read-only input to planning.
type TxInput struct {
	// Txid is the 32-byte identifier in the same big-endian byte order as
	// its 64-hex-char display form (not yet reversed into wire order).
	Txid         [32]byte
	Vout         uint32
	ScriptPubKey []byte
	Amount       int64
	// Sequence defaults to 0xFFFFFFFD (RBF-enabled) when left zero by the
	// caller; use NewTxInput to get that default applied.
	Sequence uint32
}

const DefaultSequence = 0xFFFFFFFD

// NewTxInput builds a TxInput, defaulting Sequence to DefaultSequence.
func NewTxInput(txid [32]byte, vout uint32, scriptPubKey []byte, amount int64, sequence uint32) TxInput {
	if sequence == 0 {
		sequence = DefaultSequence
	}
	return TxInput{
		Txid:         txid,
		Vout:         vout,
		ScriptPubKey: scriptPubKey,
		Amount:       amount,
		Sequence:     sequence,
	}
}

// TxOutput is the caller-facing request for one spendable output. Amount is
// nil only for the change output, whose amount the planner computes.
type TxOutput struct {
	Address  string
	Amount   *int64
	IsChange bool
}

// PlannedOutput is one finalized, ready-to-serialize transaction output.
type PlannedOutput struct {
	ScriptPubKey []byte
	Amount       int64
}

// TransactionPlan is the frozen result of fee planning: the spendable
// outputs in caller order (Outputs does not include the OP_RETURN output,
// which serialization appends last), optional change bookkeeping, and the
// OP_RETURN payload metadata needed to rebuild it with a new nonce.
type TransactionPlan struct {
	Outputs []PlannedOutput
	// ChangeIndex is the caller's position of the change output within the
	// original TxOutput slice, or nil if the computed change was below the
	// dust limit and absorbed into the fee.
	ChangeIndex  *int
	OpReturn     *OpReturnLayout
	Distribution []uint64
	Fee          int64
	VSize        int64
}

// OpReturnScript returns the OP_RETURN output's script with nonce
// substituted, ready for final serialization or PSBT embedding.
func (p *TransactionPlan) OpReturnScript(nonceVal uint64) []byte {
	nonceBytes := nonce.Encode(nonceVal, p.OpReturn.UseCBORNonce)
	script := make([]byte, 0, len(p.OpReturn.HeadBytes)+len(nonceBytes))
	script = append(script, p.OpReturn.HeadBytes...)
	script = append(script, nonceBytes...)
	return script
}
