// Package vanitytx is the public facade for vanity-txid mining: it
// validates caller options, plans fees and output layout, builds the
// mining template, runs the coordinator to find a matching nonce, and
// returns the finished PSBT. It follows the teacher's constructor-
// validation idiom (bitcoin.NewRPCClient, work.NewGenerator: a plain
// struct with validated fields, no builder pattern).
package vanitytx

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/zeldminer/vanitytx/internal/address"
	"github.com/zeldminer/vanitytx/internal/coordinator"
	"github.com/zeldminer/vanitytx/internal/gpumine"
	"github.com/zeldminer/vanitytx/internal/psbtbuild"
	"github.com/zeldminer/vanitytx/internal/txplan"
	"github.com/zeldminer/vanitytx/internal/vtxerr"
)

// Options configures a Miner instance; it is fixed for the instance's
// lifetime.
type Options struct {
	Network       address.Network
	BatchSize     uint64
	UseGPU        bool
	WorkerThreads int
	SatsPerVbyte  int64
	// GPUDevice is the backend a real caller wires in when UseGPU is set;
	// leaving it nil causes every GPU session to fall back to CPU with a
	// single warning-level event, per the spec's "fallback only happens
	// when explicitly requested" rule (UseGPU true is the request).
	GPUDevice gpumine.Device
	Logger    *zap.Logger
}

// SessionOptions configures one mining call.
type SessionOptions struct {
	Inputs       []txplan.TxInput
	Outputs      []txplan.TxOutput
	TargetZeros  int
	StartNonce   uint64 // defaults to 0
	BatchSize    uint64 // 0 inherits the instance's Options.BatchSize
	UseCBORNonce bool
	Distribution []uint64 // nil selects legacy OP_RETURN encoding
	// NonceLen is the opening guess for the OP_RETURN payload's nonce
	// byte-width; the coordinator rebuilds the template if the search
	// crosses into a different length class.
	NonceLen int
}

// Result is the successful outcome of a Mine call.
type Result struct {
	Nonce        uint64
	TxID         [32]byte
	SerializedTx []byte
	PSBT         string
}

// Miner runs vanity-txid mining sessions. A single instance permits only
// one concurrent session; a second call made while one is in flight is
// rejected with InvalidInput.
type Miner struct {
	opts    Options
	logger  *zap.Logger
	running atomic.Bool
}

// New validates instance-level options and returns a ready Miner.
func New(opts Options) (*Miner, error) {
	if opts.WorkerThreads <= 0 {
		return nil, vtxerr.New(vtxerr.InvalidInput, "worker_threads must be positive")
	}
	if opts.BatchSize == 0 {
		return nil, vtxerr.New(vtxerr.InvalidInput, "batch_size must be positive")
	}
	if opts.SatsPerVbyte <= 0 {
		return nil, vtxerr.New(vtxerr.InvalidInput, "sats_per_vbyte must be positive")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Miner{opts: opts, logger: logger}, nil
}

// Mine validates session options, plans the transaction, builds the
// mining template, and runs the coordinator to completion, reporting
// progress through onProgress (which may be nil). It blocks until a
// match is found, the session is stopped/aborted via ctx, or a worker
// error terminates the session.
func (m *Miner) Mine(ctx context.Context, sess SessionOptions, onProgress func(coordinator.ProgressEvent)) (*Result, error) {
	if sess.TargetZeros < 1 || sess.TargetZeros > 32 {
		return nil, vtxerr.New(vtxerr.InvalidInput, "target_zeros must be in 1..=32")
	}
	if sess.NonceLen <= 0 {
		return nil, vtxerr.New(vtxerr.InvalidInput, "nonce_len must be positive")
	}

	if !m.running.CompareAndSwap(false, true) {
		return nil, vtxerr.New(vtxerr.InvalidInput, "a mining session is already running on this instance")
	}
	defer m.running.Store(false)

	plan, err := txplan.Plan(sess.Inputs, sess.Outputs, m.opts.SatsPerVbyte, sess.NonceLen, sess.UseCBORNonce, sess.Distribution, m.opts.Network)
	if err != nil {
		return nil, err
	}

	mode := coordinator.CPU
	if m.opts.UseGPU {
		mode = coordinator.GPU
	}

	batchSize := sess.BatchSize
	if batchSize == 0 {
		batchSize = m.opts.BatchSize
	}

	cfg := coordinator.Config{
		Inputs:        sess.Inputs,
		Plan:          plan,
		Mode:          mode,
		WorkerThreads: m.opts.WorkerThreads,
		BatchSize:     batchSize,
		StartNonce:    sess.StartNonce,
		TargetZeros:   sess.TargetZeros,
		GPUDevice:     m.opts.GPUDevice,
		Logger:        m.logger,
	}
	c := coordinator.New(cfg)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		c.Run(runCtx)
		close(done)
	}()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()

	for {
		select {
		case ev, ok := <-c.Progress():
			if ok && onProgress != nil {
				onProgress(ev)
			}
		case ev := <-c.Found():
			<-done
			psbt, err := psbtbuild.Build(sess.Inputs, plan, ev.Nonce)
			if err != nil {
				return nil, err
			}
			return &Result{Nonce: ev.Nonce, TxID: ev.TxID, SerializedTx: ev.SerializedTx, PSBT: psbt}, nil
		case ev := <-c.Errors():
			<-done
			return nil, ev.Err
		case <-c.Stopped():
			<-done
			return nil, vtxerr.New(vtxerr.MiningAborted, "mining session stopped")
		case <-c.Fallback():
			m.logger.Warn("gpu unavailable, falling back to cpu mining")
		}
	}
}
