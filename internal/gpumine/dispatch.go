package gpumine

import (
	_ "embed"

	"github.com/zeldminer/vanitytx/internal/vtxerr"
)

// KernelSource is the WGSL compute-shader text describing the kernel's
// bindings and thread model; it calls three helper functions it does not
// define (see the note at its end), and this module never compiles or
// executes it.
//
//go:embed kernel.wgsl
var KernelSource string

// Match is one recorded result from a dispatch, translated back from the
// packed ResultEntry layout into a plain nonce and digest.
type Match struct {
	Nonce uint64
	TxID  [32]byte
}

// DispatchResult is the host-side readback of one Dispatch call.
type DispatchResult struct {
	FoundCount uint32 // total matches found, possibly more than len(Matches)
	Matches    []Match
}

// Device is the host-facing contract a GPU backend (or the software
// fallback) implements. Segment is the caller's guarantee that every
// candidate in [start, start+batchSize) shares one encoded nonce length;
// a device still checks each candidate's length and discards any that
// differs from nonceLen.
type Device interface {
	// Class reports the device's calibration bucket.
	Class() DeviceClass
	// Dispatch runs one compute pass over batchSize candidates starting at
	// startNonce, against the given prefix/suffix buffers.
	Dispatch(prefix, suffix []byte, startNonce uint64, batchSize uint32, nonceLen int, useCBORNonce bool, targetZeros int) (*DispatchResult, error)
}

// Probe returns the default batch size for dev's class, or an error if dev
// is nil. It runs no throughput measurement and queries no adapter limits;
// the result is the class ceiling from DefaultBatchSize.
func Probe(dev Device) (uint64, error) {
	if dev == nil {
		return 0, vtxerr.New(vtxerr.WebGpuNotAvailable, "no device to calibrate")
	}
	return DefaultBatchSize(dev.Class()), nil
}
