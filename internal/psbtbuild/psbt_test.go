package psbtbuild

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcutil/psbt"

	"github.com/zeldminer/vanitytx/internal/address"
	"github.com/zeldminer/vanitytx/internal/txplan"
	"github.com/zeldminer/vanitytx/testutil"
)

func TestBuildParsesWithReferencePSBTLibrary(t *testing.T) {
	inputs := []txplan.TxInput{testutil.SampleTxInput(6000)}
	scriptPubKey := inputs[0].ScriptPubKey
	outputs := testutil.SampleChangeOutput()

	plan, err := txplan.Plan(inputs, outputs, 5, 3, false, nil, address.Mainnet)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	encoded, err := Build(inputs, plan, 0x7a4420)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	pkt, err := psbt.NewFromRawBytes(bytes.NewReader([]byte(encoded)), true)
	if err != nil {
		t.Fatalf("reference psbt library rejected our PSBT: %v", err)
	}

	if len(pkt.UnsignedTx.TxIn) != 1 {
		t.Fatalf("TxIn count = %d, want 1", len(pkt.UnsignedTx.TxIn))
	}
	if pkt.UnsignedTx.TxIn[0].PreviousOutPoint.Index != 0 {
		t.Errorf("prevout index = %d, want 0", pkt.UnsignedTx.TxIn[0].PreviousOutPoint.Index)
	}
	if len(pkt.UnsignedTx.TxOut) != 2 { // change + OP_RETURN
		t.Fatalf("TxOut count = %d, want 2", len(pkt.UnsignedTx.TxOut))
	}
	if pkt.UnsignedTx.TxOut[0].Value != plan.Outputs[0].Amount {
		t.Errorf("change amount = %d, want %d", pkt.UnsignedTx.TxOut[0].Value, plan.Outputs[0].Amount)
	}
	if pkt.UnsignedTx.TxOut[1].Value != 0 {
		t.Errorf("OP_RETURN amount = %d, want 0", pkt.UnsignedTx.TxOut[1].Value)
	}

	if len(pkt.Inputs) != 1 || pkt.Inputs[0].WitnessUtxo == nil {
		t.Fatalf("expected one input with a populated WitnessUtxo")
	}
	if pkt.Inputs[0].WitnessUtxo.Value != inputs[0].Amount {
		t.Errorf("witness utxo amount = %d, want %d", pkt.Inputs[0].WitnessUtxo.Value, inputs[0].Amount)
	}
	if !bytes.Equal(pkt.Inputs[0].WitnessUtxo.PkScript, scriptPubKey) {
		t.Errorf("witness utxo script = %x, want %x", pkt.Inputs[0].WitnessUtxo.PkScript, scriptPubKey)
	}
}
