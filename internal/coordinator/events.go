package coordinator

import "github.com/zeldminer/vanitytx/internal/vtxerr"

// ProgressEvent reports the hashes processed by all workers since the
// session started, and the average hash rate over that elapsed time.
type ProgressEvent struct {
	HashesProcessed uint64
	HashRate        float64
	ElapsedMs       int64
}

// FoundEvent is delivered at most once per session, on the winning nonce;
// a session that ends by stop or error delivers none.
type FoundEvent struct {
	Nonce        uint64
	SerializedTx []byte
	TxID         [32]byte
}

// ErrorEvent terminates the session with the first observed worker error.
type ErrorEvent struct {
	Err *vtxerr.Error
}

// StoppedEvent is delivered when the session ends via stop/abort without a
// match.
type StoppedEvent struct {
	Reason string
}

// FallbackEvent is the single warning-level notice emitted when GPU mode
// silently falls back to CPU after an initialization failure.
type FallbackEvent struct {
	Reason string
}
