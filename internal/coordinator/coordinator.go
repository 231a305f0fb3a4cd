// Package coordinator runs the mining state machine: it splits a nonce
// range across CPU workers or a single GPU dispatch pipeline, tracks
// pause/resume/stop, enforces at-most-one delivered result, and falls back
// from GPU to CPU when GPU initialization fails. It follows the teacher's
// event-struct-plus-goroutine shape (internal/node's event types,
// internal/work/generator.go's backoff-then-retry idiom) generalized from a
// block-template poll loop to a nonce-range search loop.
package coordinator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/zeldminer/vanitytx/internal/cpuminer"
	"github.com/zeldminer/vanitytx/internal/gpumine"
	"github.com/zeldminer/vanitytx/internal/metrics"
	"github.com/zeldminer/vanitytx/internal/miningtmpl"
	"github.com/zeldminer/vanitytx/internal/nonce"
	"github.com/zeldminer/vanitytx/internal/txplan"
	"github.com/zeldminer/vanitytx/internal/vtxerr"
)

// Config is the frozen input to one mining session.
type Config struct {
	Inputs        []txplan.TxInput
	Plan          *txplan.TransactionPlan
	Mode          Mode
	WorkerThreads int
	BatchSize     uint64
	StartNonce    uint64
	TargetZeros   int
	GPUDevice     gpumine.Device // nil makes GPU mode fall back to CPU workers
	Logger        *zap.Logger
}

// Coordinator runs one mining session to completion.
type Coordinator struct {
	cfg    Config
	logger *zap.Logger

	mu    sync.Mutex
	state State

	abort  atomic.Bool
	paused atomic.Bool

	templateMu  sync.Mutex
	templates   map[int]*cachedTemplate
	templateSeq uint64

	progressCh chan ProgressEvent
	foundCh    chan FoundEvent
	errorCh    chan ErrorEvent
	stoppedCh  chan StoppedEvent
	fallbackCh chan FallbackEvent

	delivered atomic.Bool // at-most-one-result latch
	outcome   atomic.Int32
}

// cachedTemplate pairs a built template with the sequence number of its
// most recent use, so templateFor can evict the least-recently-used entry
// once the cache grows past maxCachedTemplates.
type cachedTemplate struct {
	tmpl *miningtmpl.Template
	seq  uint64
}

const (
	outcomeNone int32 = iota
	outcomeFound
	outcomeError
	outcomeStopped
)

// maxCachedTemplates bounds the per-nonce_len template cache, mirroring the
// teacher's maxStoredJobs job cache: a session that drifts across a handful
// of segment-length boundaries keeps only its most recently used templates.
const maxCachedTemplates = 4

// maxGPUInitAttempts bounds GPU device acquisition retries before falling
// back to CPU.
const maxGPUInitAttempts = 3

// gpuInitBaseDelay is backoffDuration's attempt-0 value, doubled per attempt
// and capped at gpuInitMaxDelay; resolveDevice's first retry (attempt 1)
// therefore waits twice this.
const gpuInitBaseDelay = 100 * time.Millisecond

// gpuInitMaxDelay caps backoffDuration's growth.
const gpuInitMaxDelay = 5 * time.Second

// backoffDuration computes exponential backoff capped at gpuInitMaxDelay,
// the same shape as the teacher's work.Generator.backoffDuration.
func backoffDuration(attempt int) time.Duration {
	if attempt <= 0 {
		return gpuInitBaseDelay
	}
	d := gpuInitBaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d > gpuInitMaxDelay {
			return gpuInitMaxDelay
		}
	}
	return d
}

// New builds a Coordinator in the Idle state.
func New(cfg Config) *Coordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Coordinator{
		cfg:        cfg,
		logger:     logger,
		state:      Idle,
		templates:  make(map[int]*cachedTemplate),
		progressCh: make(chan ProgressEvent, 32),
		foundCh:    make(chan FoundEvent, 1),
		errorCh:    make(chan ErrorEvent, 1),
		stoppedCh:  make(chan StoppedEvent, 1),
		fallbackCh: make(chan FallbackEvent, 1),
	}
	c.templateSeq++
	c.templates[cfg.Plan.OpReturn.NonceLen] = &cachedTemplate{
		tmpl: miningtmpl.Build(cfg.Inputs, cfg.Plan),
		seq:  c.templateSeq,
	}
	return c
}

func (c *Coordinator) Progress() <-chan ProgressEvent { return c.progressCh }
func (c *Coordinator) Found() <-chan FoundEvent       { return c.foundCh }
func (c *Coordinator) Errors() <-chan ErrorEvent      { return c.errorCh }
func (c *Coordinator) Stopped() <-chan StoppedEvent   { return c.stoppedCh }
func (c *Coordinator) Fallback() <-chan FallbackEvent { return c.fallbackCh }

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// State returns the coordinator's current lifecycle stage.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pause freezes CPU workers' next-nonce without destroying them.
func (c *Coordinator) Pause() {
	c.paused.Store(true)
	c.setState(Paused)
}

// Resume lets CPU workers continue from their stored next-nonce.
func (c *Coordinator) Resume() {
	c.paused.Store(false)
	c.setState(Running)
}

// Stop requests an idempotent abort; at most one StoppedEvent/FoundEvent is
// ever delivered.
func (c *Coordinator) Stop() {
	c.abort.Store(true)
}

// templateFor returns the cached template for nonceLen, building and
// caching a fresh one (same plan, new OP_RETURN layout) on a cache miss.
// The cache is bounded to maxCachedTemplates entries; once full, inserting
// a new one evicts the least-recently-used entry by sequence number.
func (c *Coordinator) templateFor(nonceLen int) (*miningtmpl.Template, error) {
	c.templateMu.Lock()
	defer c.templateMu.Unlock()

	c.templateSeq++

	if entry, ok := c.templates[nonceLen]; ok {
		entry.seq = c.templateSeq
		return entry.tmpl, nil
	}

	layout, err := txplan.BuildOpReturnLayout(nonceLen, c.cfg.Plan.OpReturn.UseCBORNonce, c.cfg.Plan.Distribution)
	if err != nil {
		return nil, vtxerr.Wrap(vtxerr.InvalidInput, "rebuilding op_return layout for new nonce length", err)
	}

	rebuilt := *c.cfg.Plan
	rebuilt.OpReturn = layout
	tmpl := miningtmpl.Build(c.cfg.Inputs, &rebuilt)
	c.templates[nonceLen] = &cachedTemplate{tmpl: tmpl, seq: c.templateSeq}
	metrics.TemplateRebuilds.Inc()

	for len(c.templates) > maxCachedTemplates {
		oldestLen := 0
		oldestSeq := c.templateSeq + 1
		found := false
		for nl, entry := range c.templates {
			if !found || entry.seq < oldestSeq {
				oldestLen, oldestSeq, found = nl, entry.seq, true
			}
		}
		delete(c.templates, oldestLen)
	}

	return tmpl, nil
}

// Run spawns workers and blocks until the session reaches Done: a match was
// found, the session was stopped/aborted, or a worker reported an error.
func (c *Coordinator) Run(ctx context.Context) {
	c.setState(Spawning)

	device, mode, err := c.resolveDevice()
	if err != nil {
		c.emitError(vtxerr.Wrap(vtxerr.WebGpuNotAvailable, "gpu device unavailable", err))
		c.setState(Done)
		return
	}

	c.setState(Running)

	var wg sync.WaitGroup
	workerThreads := c.cfg.WorkerThreads
	if mode == GPU {
		workerThreads = 1
	}
	if workerThreads < 1 {
		workerThreads = 1
	}

	start := time.Now()
	var totalHashes atomic.Uint64

	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()

	for w := 0; w < workerThreads; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			c.runWorker(ctx, worker, workerThreads, mode, device, &totalHashes, start)
		}(w)
	}

	wg.Wait()
	c.setState(Done)

	switch c.outcome.Load() {
	case outcomeFound:
		metrics.SessionResults.WithLabelValues("found").Inc()
	case outcomeError:
		metrics.SessionResults.WithLabelValues("error").Inc()
	case outcomeStopped:
		metrics.SessionsAborted.Inc()
		metrics.SessionResults.WithLabelValues("stopped").Inc()
	}
}

// resolveDevice attempts GPU device acquisition with capped exponential
// backoff (mirroring the teacher's work.Generator retry-on-failure loop)
// before giving up and falling back to CPU with a single warning and
// FallbackEvent.
func (c *Coordinator) resolveDevice() (gpumine.Device, Mode, error) {
	if c.cfg.Mode != GPU {
		return nil, CPU, nil
	}

	var lastErr error
	for attempt := 0; attempt < maxGPUInitAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(backoffDuration(attempt))
		}
		if _, err := gpumine.Probe(c.cfg.GPUDevice); err == nil {
			return c.cfg.GPUDevice, GPU, nil
		} else {
			lastErr = err
			c.logger.Warn("gpu device unavailable, retrying",
				zap.Int("attempt", attempt+1),
				zap.Duration("next_retry", backoffDuration(attempt+1)),
				zap.Error(err),
			)
		}
	}

	c.logger.Warn("gpu init exhausted retries, falling back to cpu", zap.Error(lastErr))
	select {
	case c.fallbackCh <- FallbackEvent{Reason: "no gpu adapter reported by platform"}:
	default:
	}
	metrics.GPUFallbacks.Inc()
	return nil, CPU, nil
}

// runWorker advances worker w's stride: start_nonce + w*batchSize, stepping
// by workerThreads*batchSize each iteration, splitting each iteration at
// length-class boundaries via the nonce segment splitter.
func (c *Coordinator) runWorker(
	ctx context.Context,
	w int,
	workerThreads int,
	mode Mode,
	device gpumine.Device,
	totalHashes *atomic.Uint64,
	start time.Time,
) {
	next := c.cfg.StartNonce + uint64(w)*c.cfg.BatchSize
	stride := uint64(workerThreads) * c.cfg.BatchSize

	for {
		if c.abort.Load() || c.delivered.Load() {
			c.emitStoppedOnce("aborted")
			return
		}
		for c.paused.Load() {
			if c.abort.Load() {
				c.emitStoppedOnce("aborted")
				return
			}
			time.Sleep(10 * time.Millisecond)
		}

		segs, err := nonce.Split(next, c.cfg.BatchSize, c.cfg.Plan.OpReturn.UseCBORNonce)
		if err != nil {
			c.emitError(vtxerr.Wrap(vtxerr.InvalidRange, "splitting worker iteration", err))
			return
		}
		if len(segs) == 0 {
			return // this worker's stride is exhausted; others may still be searching
		}
		seg := segs[0]

		tmpl, err := c.templateFor(seg.NonceLen)
		if err != nil {
			c.emitError(vtxerr.Wrap(vtxerr.WorkerError, "fetching template for segment", err))
			return
		}

		var found *cpuminer.Result
		var hashesThisSeg uint64

		if mode == GPU {
			dr, derr := device.Dispatch(tmpl.Prefix, tmpl.Suffix, seg.Start, uint32(seg.Size), seg.NonceLen, tmpl.UseCBORNonce, c.cfg.TargetZeros)
			if derr != nil {
				c.emitError(vtxerr.Wrap(vtxerr.WorkerError, "gpu dispatch failed", derr))
				return
			}
			hashesThisSeg = seg.Size
			if dr.FoundCount > 0 {
				best := dr.Matches[0]
				for _, m := range dr.Matches {
					if m.Nonce < best.Nonce {
						best = m
					}
				}
				serialized := tmpl.Assemble(nonce.Encode(best.Nonce, tmpl.UseCBORNonce))
				found = &cpuminer.Result{Nonce: best.Nonce, SerializedTx: serialized, TxID: best.TxID}
			}
		} else {
			progressCh := make(chan cpuminer.Progress, 4)
			done := make(chan struct{})
			go func() {
				defer close(done)
				for p := range progressCh {
					totalHashes.Add(p.HashesChecked)
					c.reportProgress(p.HashesChecked, totalHashes.Load(), start)
				}
			}()
			res, serr := cpuminer.SearchSegment(ctx, seg, tmpl, c.cfg.TargetZeros, &c.abort, progressCh)
			close(progressCh)
			<-done
			if serr != nil && serr != context.Canceled {
				c.emitError(vtxerr.Wrap(vtxerr.WorkerError, "cpu search failed", serr))
				return
			}
			found = res
			hashesThisSeg = 0 // already folded into totalHashes via progressCh
		}

		if mode == GPU {
			totalHashes.Add(hashesThisSeg)
			c.reportProgress(hashesThisSeg, totalHashes.Load(), start)
		}

		if found != nil {
			if c.delivered.CompareAndSwap(false, true) {
				c.outcome.Store(outcomeFound)
				metrics.MatchesFound.Inc()
				select {
				case c.foundCh <- FoundEvent{Nonce: found.Nonce, SerializedTx: found.SerializedTx, TxID: found.TxID}:
				default:
				}
			}
			return
		}

		next += stride
	}
}

func (c *Coordinator) reportProgress(delta, total uint64, start time.Time) {
	elapsed := time.Since(start)
	rate := float64(total) / elapsed.Seconds()
	select {
	case c.progressCh <- ProgressEvent{HashesProcessed: total, HashRate: rate, ElapsedMs: elapsed.Milliseconds()}:
	default:
	}
	metrics.HashRate.Set(rate)
	metrics.HashesTotal.Add(float64(delta))
}

func (c *Coordinator) emitError(err *vtxerr.Error) {
	if c.delivered.CompareAndSwap(false, true) {
		c.outcome.Store(outcomeError)
		select {
		case c.errorCh <- ErrorEvent{Err: err}:
		default:
		}
	}
}

func (c *Coordinator) emitStoppedOnce(reason string) {
	if c.delivered.CompareAndSwap(false, true) {
		c.outcome.Store(outcomeStopped)
		select {
		case c.stoppedCh <- StoppedEvent{Reason: reason}:
		default:
		}
	}
}
