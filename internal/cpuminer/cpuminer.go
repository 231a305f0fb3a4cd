// Package cpuminer runs a vanity-txid search over a nonce range on the CPU,
// following the teacher's context-driven worker-loop idiom
// (internal/work.Generator.pollLoop): a cancellable goroutine per segment,
// progress reported on a throttled cadence, and a shared atomic flag other
// workers can observe to stop early once any one of them finds a match.
package cpuminer

import (
	"context"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/zeldminer/vanitytx/internal/miningtmpl"
	"github.com/zeldminer/vanitytx/internal/nonce"
	"github.com/zeldminer/vanitytx/pkg/util"
)

// progressRate bounds how often a single worker emits a Progress event,
// mirroring the teacher's peer rate limiter shape (internal/p2p/pubsub.go's
// getPeerLimiter) repurposed from per-peer gossip throttling to
// per-worker progress throttling.
const progressRate = rate.Limit(20) // at most 20 progress events/sec
const progressBurst = 1

// Result is sent on a match: the winning nonce, its encoded bytes, and the
// assembled transaction.
type Result struct {
	Nonce         uint64
	NonceBytes    []byte
	SerializedTx  []byte
	TxID          [32]byte
	HashesChecked uint64
}

// Progress is sent periodically so a caller can aggregate throughput across
// workers without polling counters directly.
type Progress struct {
	HashesChecked uint64
}

// SearchSegment iterates every nonce in [seg.Start, seg.Start+seg.Size) using
// tmpl, reporting progress on progressCh and stopping as soon as a digest
// whose reversed hex form has at least targetZeros leading zero digits is
// found, the context is cancelled, or abort is set to true by another
// worker. It returns (result, nil) on a match, (nil, nil) if the range was
// exhausted without a match, (nil, ctx.Err()) if the context was cancelled,
// or (nil, context.Canceled) if abort was set.
func SearchSegment(
	ctx context.Context,
	seg nonce.Segment,
	tmpl *miningtmpl.Template,
	targetZeros int,
	abort *atomic.Bool,
	progressCh chan<- Progress,
) (*Result, error) {
	limiter := rate.NewLimiter(progressRate, progressBurst)

	var checked uint64
	for offset := uint64(0); offset < seg.Size; offset++ {
		if offset%1024 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			if abort.Load() {
				return nil, context.Canceled
			}
		}

		n := seg.Start + offset
		nonceBytes := encodeForSegment(n, seg, tmpl.UseCBORNonce)
		serialized := tmpl.Assemble(nonceBytes)
		digest := util.TxID(serialized)
		checked++

		if util.HashMeetsTarget(digest, targetZeros) {
			return &Result{
				Nonce:         n,
				NonceBytes:    nonceBytes,
				SerializedTx:  serialized,
				TxID:          digest,
				HashesChecked: checked,
			}, nil
		}

		if progressCh != nil && limiter.Allow() {
			select {
			case progressCh <- Progress{HashesChecked: checked}:
			default:
			}
			checked = 0
		}
	}

	if progressCh != nil && checked > 0 {
		select {
		case progressCh <- Progress{HashesChecked: checked}:
		default:
		}
	}

	return nil, nil
}

// encodeForSegment encodes n under the scheme the segment was split for.
// Every value in a length-homogeneous segment naturally encodes to the same
// byte length (that invariant is what nonce.Split guarantees), so the
// result always matches the length the template's prefix/suffix split
// expects.
func encodeForSegment(n uint64, seg nonce.Segment, useCBOR bool) []byte {
	return nonce.Encode(n, useCBOR)
}
