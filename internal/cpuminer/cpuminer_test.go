package cpuminer

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/zeldminer/vanitytx/internal/address"
	"github.com/zeldminer/vanitytx/internal/miningtmpl"
	"github.com/zeldminer/vanitytx/internal/nonce"
	"github.com/zeldminer/vanitytx/internal/txplan"
	"github.com/zeldminer/vanitytx/pkg/util"
	"github.com/zeldminer/vanitytx/testutil"
)

func buildSegmentAndTemplate(t *testing.T) (nonce.Segment, *miningtmpl.Template) {
	t.Helper()
	inputs := []txplan.TxInput{testutil.SampleTxInput(6000)}
	outputs := testutil.SampleChangeOutput()

	plan, err := txplan.Plan(inputs, outputs, 5, 1, false, nil, address.Mainnet)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	tmpl := miningtmpl.Build(inputs, plan)

	segs, err := nonce.Split(0, 256, false)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	return segs[0], tmpl
}

func TestSearchSegmentFindsMatchWithEasyTarget(t *testing.T) {
	seg, tmpl := buildSegmentAndTemplate(t)
	var abort atomic.Bool

	result, err := SearchSegment(context.Background(), seg, tmpl, 0, &abort, nil)
	if err != nil {
		t.Fatalf("SearchSegment: %v", err)
	}
	if result == nil {
		t.Fatal("expected a match with target 0 (every digest matches)")
	}
	if result.Nonce < seg.Start || result.Nonce >= seg.Start+seg.Size {
		t.Errorf("nonce %d out of segment range [%d, %d)", result.Nonce, seg.Start, seg.Start+seg.Size)
	}
	if !util.HashMeetsTarget(result.TxID, 0) {
		t.Error("returned result does not actually meet target")
	}
}

func TestSearchSegmentExhaustsWithoutMatch(t *testing.T) {
	seg, tmpl := buildSegmentAndTemplate(t)
	var abort atomic.Bool

	result, err := SearchSegment(context.Background(), seg, tmpl, 64, &abort, nil)
	if err != nil {
		t.Fatalf("unexpected error for exhausted range: %v", err)
	}
	if result != nil {
		t.Fatal("target 64 should be unreachable within a 256-value segment")
	}
}

func TestSearchSegmentRespectsAbortFlag(t *testing.T) {
	seg, tmpl := buildSegmentAndTemplate(t)
	var abort atomic.Bool
	abort.Store(true)

	result, err := SearchSegment(context.Background(), seg, tmpl, 64, &abort, nil)
	if result != nil {
		t.Error("expected no result once abort is set")
	}
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSearchSegmentRespectsContextCancellation(t *testing.T) {
	seg, tmpl := buildSegmentAndTemplate(t)
	var abort atomic.Bool
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := SearchSegment(ctx, seg, tmpl, 64, &abort, nil)
	if result != nil {
		t.Error("expected no result once context is cancelled")
	}
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSearchSegmentReportsProgress(t *testing.T) {
	seg, tmpl := buildSegmentAndTemplate(t)
	var abort atomic.Bool
	progressCh := make(chan Progress, 8)

	_, err := SearchSegment(context.Background(), seg, tmpl, 64, &abort, progressCh)
	if err != nil {
		t.Fatalf("SearchSegment: %v", err)
	}
	close(progressCh)

	var total uint64
	for p := range progressCh {
		total += p.HashesChecked
	}
	if total != seg.Size {
		t.Errorf("total hashes reported = %d, want %d", total, seg.Size)
	}
}
