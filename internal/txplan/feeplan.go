package txplan

import (
	"github.com/zeldminer/vanitytx/internal/address"
	"github.com/zeldminer/vanitytx/internal/vtxerr"
	"github.com/zeldminer/vanitytx/pkg/util"
)

const (
	inputBaseSize  = 41 // prevout hash + vout + empty scriptSig len byte + sequence
	outputBaseSize = 9  // amount + scriptPubKey varint length byte (script < 0xfd bytes)
)

// computeVSize applies the standard SegWit weight formula: base weight × 3
// plus witness weight, rounded up divided by 4.
func computeVSize(numInputs int, witnessWeights []int, outputScriptLens []int) int64 {
	base := int64(4) // version
	base += int64(len(util.WriteVarInt(uint64(numInputs))))
	base += int64(numInputs * inputBaseSize)
	base += int64(len(util.WriteVarInt(uint64(len(outputScriptLens)))))
	for _, l := range outputScriptLens {
		base += outputBaseSize + int64(l)
	}
	base += 4 // locktime

	var witnessTotal int64
	for _, w := range witnessWeights {
		witnessTotal += int64(w)
	}

	weight := base*3 + witnessTotal
	return (weight + 3) / 4
}

type resolvedOutput struct {
	script   []byte
	dust     int64
	amount   int64
	isChange bool
}

// Plan resolves outputs against network addresses, computes virtual size and
// fee, decides whether the change output survives the dust check, and
// freezes the OP_RETURN layout for the chosen nonce length and mode.
func Plan(
	inputs []TxInput,
	outputs []TxOutput,
	satsPerVbyte int64,
	nonceLen int,
	useCBORNonce bool,
	distribution []uint64,
	net address.Network,
) (*TransactionPlan, error) {
	if satsPerVbyte <= 0 {
		return nil, vtxerr.New(vtxerr.InvalidInput, "sats_per_vbyte must be positive")
	}
	if len(inputs) == 0 {
		return nil, vtxerr.New(vtxerr.InvalidInput, "at least one input is required")
	}

	changeIdx := -1
	for i, o := range outputs {
		if o.IsChange {
			if changeIdx >= 0 {
				return nil, vtxerr.New(vtxerr.MultipleChangeOutputs, "more than one output flagged as change")
			}
			changeIdx = i
		}
	}
	if distribution != nil && len(distribution) != len(outputs) {
		return nil, vtxerr.New(vtxerr.InvalidInput, "distribution length must equal the non-OP_RETURN output count")
	}

	resolved := make([]resolvedOutput, len(outputs))
	var fixedTotal int64
	for i, o := range outputs {
		spk, err := address.Parse(o.Address, net)
		if err != nil {
			return nil, err
		}
		r := resolvedOutput{script: spk.Script, dust: spk.DustLimit(), isChange: o.IsChange}
		if !o.IsChange {
			if o.Amount == nil || *o.Amount <= 0 {
				return nil, vtxerr.New(vtxerr.InvalidInput, "non-change output must have a positive amount")
			}
			if *o.Amount < r.dust {
				return nil, vtxerr.New(vtxerr.DustOutput, "output amount is below its address class dust limit")
			}
			r.amount = *o.Amount
			fixedTotal += *o.Amount
		}
		resolved[i] = r
	}

	var inputTotal int64
	for _, in := range inputs {
		inputTotal += in.Amount
	}

	witnessWeights := make([]int, len(inputs))
	for i, in := range inputs {
		wv, err := address.ClassifyScript(in.ScriptPubKey)
		if err != nil {
			return nil, err
		}
		witnessWeights[i] = address.WitnessWeight(wv)
	}

	opReturn, err := BuildOpReturnLayout(nonceLen, useCBORNonce, distribution)
	if err != nil {
		return nil, err
	}
	opReturnLen := len(opReturn.HeadBytes) + opReturn.NonceLen

	var nonChangeLens []int
	for _, r := range resolved {
		if !r.isChange {
			nonChangeLens = append(nonChangeLens, len(r.script))
		}
	}

	lensWithChange := append(append([]int{}, nonChangeLens...), opReturnLen)
	if changeIdx >= 0 {
		lensWithChange = append(lensWithChange, len(resolved[changeIdx].script))
	}
	vsize1 := computeVSize(len(inputs), witnessWeights, lensWithChange)
	fee1 := vsize1 * satsPerVbyte

	plan := &TransactionPlan{OpReturn: opReturn, Distribution: distribution}

	if changeIdx < 0 {
		fee := inputTotal - fixedTotal
		if fee < fee1 {
			return nil, vtxerr.New(vtxerr.InsufficientFunds, "inputs do not cover outputs plus the minimum required fee")
		}
		plan.Fee = fee
		plan.VSize = vsize1
		plan.Outputs = finalOutputs(outputs, resolved, -1, 0)
		return plan, nil
	}

	changeAmount := inputTotal - fixedTotal - fee1
	if changeAmount >= resolved[changeIdx].dust {
		idx := changeIdx
		plan.ChangeIndex = &idx
		plan.Fee = fee1
		plan.VSize = vsize1
		plan.Outputs = finalOutputs(outputs, resolved, changeIdx, changeAmount)
		return plan, nil
	}

	// Change falls below dust: drop it and absorb the remainder into the fee.
	lensWithoutChange := append(append([]int{}, nonChangeLens...), opReturnLen)
	vsize2 := computeVSize(len(inputs), witnessWeights, lensWithoutChange)
	fee2 := inputTotal - fixedTotal
	if fee2 < 0 {
		return nil, vtxerr.New(vtxerr.InsufficientFunds, "inputs do not cover outputs even after dropping dust change")
	}
	plan.Fee = fee2
	plan.VSize = vsize2
	plan.Outputs = finalOutputs(outputs, resolved, -1, 0)
	return plan, nil
}

func finalOutputs(outputs []TxOutput, resolved []resolvedOutput, keepChangeIdx int, changeAmount int64) []PlannedOutput {
	var out []PlannedOutput
	for i, o := range outputs {
		if o.IsChange {
			if i != keepChangeIdx {
				continue
			}
			out = append(out, PlannedOutput{ScriptPubKey: resolved[i].script, Amount: changeAmount})
			continue
		}
		out = append(out, PlannedOutput{ScriptPubKey: resolved[i].script, Amount: resolved[i].amount})
	}
	return out
}
