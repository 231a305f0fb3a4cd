package txplan

import (
	"testing"

	"github.com/zeldminer/vanitytx/internal/address"
	"github.com/zeldminer/vanitytx/internal/vtxerr"
	"github.com/zeldminer/vanitytx/pkg/util"
)

func mustHash(t *testing.T, hexStr string) [32]byte {
	t.Helper()
	b, err := util.HexToBytes(hexStr)
	if err != nil {
		t.Fatalf("invalid hex: %v", err)
	}
	var h [32]byte
	copy(h[:], b)
	return h
}

func TestPlanScenario1RawModeChangeOnly(t *testing.T) {
	txid := mustHash(t, "1f81ad6116ac6045b5bc4941afc212456770ab389c05973c088f22063a2aff37")
	scriptPubKey, err := util.HexToBytes("0014ea9d20bfb938b2a0d778a5d8d8bc2aaff755c395")
	if err != nil {
		t.Fatalf("hex decode input script: %v", err)
	}

	inputs := []TxInput{NewTxInput(txid, 0, scriptPubKey, 6000, 0)}
	outputs := []TxOutput{{Address: "bc1qa2wjp0ae8ze2p4mc5hvd30p24lm4tsu479mw0r", IsChange: true}}

	plan, err := Plan(inputs, outputs, 5, 3, false, nil, address.Mainnet)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if plan.OpReturn.PayloadSize != 3 {
		t.Errorf("OP_RETURN payload size = %d, want 3", plan.OpReturn.PayloadSize)
	}
	if plan.ChangeIndex == nil || *plan.ChangeIndex != 0 {
		t.Fatalf("expected change index 0, got %v", plan.ChangeIndex)
	}
	if plan.VSize != 99 {
		t.Errorf("VSize = %d, want 99", plan.VSize)
	}
	if plan.Fee != 495 {
		t.Errorf("Fee = %d, want 495", plan.Fee)
	}
	if len(plan.Outputs) != 1 || plan.Outputs[0].Amount != 5505 {
		t.Fatalf("unexpected outputs: %+v", plan.Outputs)
	}
	if inputs[0].Amount != plan.Outputs[0].Amount+plan.Fee {
		t.Errorf("sum(inputs) != sum(outputs)+fee: %d != %d+%d", inputs[0].Amount, plan.Outputs[0].Amount, plan.Fee)
	}
	if plan.Fee < plan.VSize*5 {
		t.Errorf("fee/vsize below requested rate: fee=%d vsize=%d", plan.Fee, plan.VSize)
	}

	script := plan.OpReturnScript(0x7a4420)
	wantScript := []byte{0x6a, 0x03, 0x7a, 0x44, 0x20}
	if len(script) != len(wantScript) {
		t.Fatalf("OpReturnScript = %x, want %x", script, wantScript)
	}
	for i := range wantScript {
		if script[i] != wantScript[i] {
			t.Fatalf("OpReturnScript = %x, want %x", script, wantScript)
		}
	}
}

func TestPlanScenario4DustAbsorption(t *testing.T) {
	txid := mustHash(t, "1f81ad6116ac6045b5bc4941afc212456770ab389c05973c088f22063a2aff37")
	scriptPubKey, _ := util.HexToBytes("0014ea9d20bfb938b2a0d778a5d8d8bc2aaff755c395")

	inputs := []TxInput{NewTxInput(txid, 0, scriptPubKey, 1000, 0)}
	payment := int64(800)
	outputs := []TxOutput{
		{Address: "bc1qa2wjp0ae8ze2p4mc5hvd30p24lm4tsu479mw0r", Amount: &payment},
		{Address: "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", IsChange: true},
	}

	plan, err := Plan(inputs, outputs, 10, 1, false, nil, address.Mainnet)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.ChangeIndex != nil {
		t.Fatalf("expected change to be dropped, got index %v", plan.ChangeIndex)
	}
	if len(plan.Outputs) != 1 {
		t.Fatalf("expected only the payment output to survive, got %+v", plan.Outputs)
	}
	if plan.Fee != 200 {
		t.Errorf("Fee = %d, want 200 (1000-800 absorbed)", plan.Fee)
	}
}

func TestPlanMultipleChangeOutputsRejected(t *testing.T) {
	txid := mustHash(t, "1f81ad6116ac6045b5bc4941afc212456770ab389c05973c088f22063a2aff37")
	scriptPubKey, _ := util.HexToBytes("0014ea9d20bfb938b2a0d778a5d8d8bc2aaff755c395")
	inputs := []TxInput{NewTxInput(txid, 0, scriptPubKey, 6000, 0)}
	outputs := []TxOutput{
		{Address: "bc1qa2wjp0ae8ze2p4mc5hvd30p24lm4tsu479mw0r", IsChange: true},
		{Address: "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", IsChange: true},
	}

	_, err := Plan(inputs, outputs, 5, 3, false, nil, address.Mainnet)
	if err == nil || !vtxerr.Is(err, vtxerr.MultipleChangeOutputs) {
		t.Errorf("expected MultipleChangeOutputs, got %v", err)
	}
}

func TestPlanDustOutputRejected(t *testing.T) {
	txid := mustHash(t, "1f81ad6116ac6045b5bc4941afc212456770ab389c05973c088f22063a2aff37")
	scriptPubKey, _ := util.HexToBytes("0014ea9d20bfb938b2a0d778a5d8d8bc2aaff755c395")
	inputs := []TxInput{NewTxInput(txid, 0, scriptPubKey, 6000, 0)}
	tiny := int64(100)
	outputs := []TxOutput{{Address: "bc1qa2wjp0ae8ze2p4mc5hvd30p24lm4tsu479mw0r", Amount: &tiny}}

	_, err := Plan(inputs, outputs, 5, 3, false, nil, address.Mainnet)
	if err == nil || !vtxerr.Is(err, vtxerr.DustOutput) {
		t.Errorf("expected DustOutput, got %v", err)
	}
}
