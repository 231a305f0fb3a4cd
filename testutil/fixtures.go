package testutil

import (
	"math/big"

	"github.com/zeldminer/vanitytx/internal/txplan"
)

// SampleTxInput returns a minimal P2WPKH input for testing: spec scenario
// 1's literal prevout txid/scriptPubKey with a caller-chosen amount.
func SampleTxInput(amount int64) txplan.TxInput {
	txid := HashFromHex("1f81ad6116ac6045b5bc4941afc212456770ab389c05973c088f22063a2aff37")
	scriptPubKey := MustDecodeHexNoTest("0014ea9d20bfb938b2a0d778a5d8d8bc2aaff755c395")
	return txplan.NewTxInput(txid, 0, scriptPubKey, amount, 0)
}

// SampleChangeOutput returns a single change-only output request targeting
// spec scenario 1's literal mainnet P2WPKH change address.
func SampleChangeOutput() []txplan.TxOutput {
	return []txplan.TxOutput{{Address: "bc1qa2wjp0ae8ze2p4mc5hvd30p24lm4tsu479mw0r", IsChange: true}}
}

// SamplePaymentAndChangeOutputs returns a two-output request: a fixed
// payment plus a change output, for fee-planning and dust-absorption tests.
func SamplePaymentAndChangeOutputs(paymentAmount int64) []txplan.TxOutput {
	return []txplan.TxOutput{
		{Address: "bc1qa2wjp0ae8ze2p4mc5hvd30p24lm4tsu479mw0r", Amount: &paymentAmount},
		{Address: "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", IsChange: true},
	}
}

// EasyTarget returns a leading-zero-hex-digit count that every digest
// satisfies (0 digits required).
func EasyTarget() int {
	return 0
}

// HardTarget returns a leading-zero-hex-digit count that essentially no
// digest satisfies by chance within a test's iteration budget.
func HardTarget() int {
	return 12
}

// MaxTargetInt is the largest representable 256-bit value, retained for
// tests that want to reason about target density directly rather than via
// leading-zero-hex-digit counts.
func MaxTargetInt() *big.Int {
	return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
}
