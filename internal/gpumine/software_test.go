package gpumine

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/zeldminer/vanitytx/internal/address"
	"github.com/zeldminer/vanitytx/internal/cpuminer"
	"github.com/zeldminer/vanitytx/internal/miningtmpl"
	"github.com/zeldminer/vanitytx/internal/nonce"
	"github.com/zeldminer/vanitytx/internal/txplan"
	"github.com/zeldminer/vanitytx/testutil"
)

func buildPlanAndTemplate(t *testing.T) ([]txplan.TxInput, *miningtmpl.Template) {
	t.Helper()
	inputs := []txplan.TxInput{testutil.SampleTxInput(6000)}
	outputs := testutil.SampleChangeOutput()

	plan, err := txplan.Plan(inputs, outputs, 5, 1, false, nil, address.Mainnet)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	return inputs, miningtmpl.Build(inputs, plan)
}

func TestSoftwareDeviceMatchesCPUMinerOnSameCandidates(t *testing.T) {
	_, tmpl := buildPlanAndTemplate(t)
	segs, err := nonce.Split(0, 512, false)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	seg := segs[0]

	dev := NewSoftwareDevice(CPUAdapter)
	gpuResult, err := dev.Dispatch(tmpl.Prefix, tmpl.Suffix, seg.Start, uint32(seg.Size), seg.NonceLen, tmpl.UseCBORNonce, 0)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if gpuResult.FoundCount == 0 {
		t.Fatal("expected at least one match with target_zeros 0")
	}

	var abort atomic.Bool
	cpuResult, err := cpuminer.SearchSegment(context.Background(), seg, tmpl, 0, &abort, nil)
	if err != nil {
		t.Fatalf("SearchSegment: %v", err)
	}
	if cpuResult == nil {
		t.Fatal("expected CPU miner to find a match too")
	}

	// The GPU dispatch reports every match in the batch, picking the
	// smallest by convention; the CPU miner stops at the first (smallest,
	// since it iterates in order) match. Both must agree on that nonce.
	smallest := gpuResult.Matches[0].Nonce
	for _, m := range gpuResult.Matches {
		if m.Nonce < smallest {
			smallest = m.Nonce
		}
	}
	if smallest != cpuResult.Nonce {
		t.Errorf("GPU smallest nonce %d != CPU nonce %d", smallest, cpuResult.Nonce)
	}

	for _, m := range gpuResult.Matches {
		if m.Nonce == cpuResult.Nonce && m.TxID != cpuResult.TxID {
			t.Errorf("digest mismatch at nonce %d: gpu=%x cpu=%x", m.Nonce, m.TxID, cpuResult.TxID)
		}
	}
}

func TestSoftwareDeviceRejectsCrossLengthClassCandidates(t *testing.T) {
	_, tmpl := buildPlanAndTemplate(t)
	dev := NewSoftwareDevice(CPUAdapter)

	// Candidate 0x100 requires 2 raw bytes; a segment built for length 1
	// must never match it (segment discipline).
	result, err := dev.Dispatch(tmpl.Prefix, tmpl.Suffix, 0x100, 1, 1, false, 0)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.FoundCount != 0 {
		t.Error("expected zero matches: candidate's encoded length does not match nonceLen")
	}
}

func TestProbeReturnsClassDefault(t *testing.T) {
	dev := NewSoftwareDevice(DiscreteGPU)
	batch, err := Probe(dev)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if batch != DefaultBatchSize(DiscreteGPU) {
		t.Errorf("Probe = %d, want %d", batch, DefaultBatchSize(DiscreteGPU))
	}

	if _, err := Probe(nil); err == nil {
		t.Error("expected error probing a nil device")
	}
}
