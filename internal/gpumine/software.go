package gpumine

import (
	"github.com/zeldminer/vanitytx/internal/nonce"
	"github.com/zeldminer/vanitytx/pkg/util"
)

// SoftwareDevice is a pure-Go Device implementation that performs the exact
// byte-for-byte computation kernel.wgsl describes: per-candidate encoded
// length check, prefix||nonce||suffix assembly, double-SHA256, and the
// leading-zero-hex-digit target test. It stands in for a real WebGPU
// backend in tests (spec's CPU/GPU equivalence property) and serves as the
// CPU-adapter fallback device class when no real adapter is available.
type SoftwareDevice struct {
	class DeviceClass
}

// NewSoftwareDevice returns a SoftwareDevice calibrated to the given class.
// Use CPUAdapter for the actual no-GPU fallback, or DiscreteGPU/
// IntegratedGPU in tests that want to exercise those calibration ceilings
// without a real adapter.
func NewSoftwareDevice(class DeviceClass) *SoftwareDevice {
	return &SoftwareDevice{class: class}
}

func (d *SoftwareDevice) Class() DeviceClass { return d.class }

// Dispatch mirrors the kernel's per-thread loop sequentially: for every
// candidate in the batch, skip it if its minimal encoded length doesn't
// match nonceLen (segment-discipline enforcement, same as the kernel's
// early return), otherwise assemble and hash. Matches beyond ResultCapacity
// are still counted in FoundCount but not appended to Matches, exactly as
// the kernel's atomic-add-then-bounds-check behaves.
func (d *SoftwareDevice) Dispatch(
	prefix, suffix []byte,
	startNonce uint64,
	batchSize uint32,
	nonceLen int,
	useCBORNonce bool,
	targetZeros int,
) (*DispatchResult, error) {
	var buf Results
	for i := uint32(0); i < batchSize; i++ {
		candidate := startNonce + uint64(i)

		if nonce.EncodedLen(candidate, useCBORNonce) != nonceLen {
			continue
		}
		nonceBytes := nonce.Encode(candidate, useCBORNonce)

		msg := make([]byte, 0, len(prefix)+len(nonceBytes)+len(suffix))
		msg = append(msg, prefix...)
		msg = append(msg, nonceBytes...)
		msg = append(msg, suffix...)

		digest := util.TxID(msg)
		if !util.HashMeetsTarget(digest, targetZeros) {
			continue
		}

		slot := buf.FoundCount
		buf.FoundCount++
		if slot < ResultCapacity {
			buf.Entries[slot] = ResultEntry{
				NonceLo: uint32(candidate),
				NonceHi: uint32(candidate >> 32),
				TxID:    packDigest(digest),
			}
		}
	}

	return drainResults(&buf), nil
}

// packDigest lays a 32-byte digest into 8 little-endian 32-bit words, the
// same packing RESULTS.entries[].txid uses.
func packDigest(digest [32]byte) [8]uint32 {
	var words [8]uint32
	for w := 0; w < 8; w++ {
		i := w * 4
		words[w] = uint32(digest[i]) | uint32(digest[i+1])<<8 | uint32(digest[i+2])<<16 | uint32(digest[i+3])<<24
	}
	return words
}

func unpackDigest(words [8]uint32) [32]byte {
	var digest [32]byte
	for w := 0; w < 8; w++ {
		i := w * 4
		digest[i] = byte(words[w])
		digest[i+1] = byte(words[w] >> 8)
		digest[i+2] = byte(words[w] >> 16)
		digest[i+3] = byte(words[w] >> 24)
	}
	return digest
}

// drainResults translates the packed Results buffer into the host-facing
// DispatchResult, the readback step a real backend performs after a
// compute pass completes.
func drainResults(buf *Results) *DispatchResult {
	out := &DispatchResult{FoundCount: buf.FoundCount}
	limit := buf.FoundCount
	if limit > ResultCapacity {
		limit = ResultCapacity
	}
	for i := uint32(0); i < limit; i++ {
		e := buf.Entries[i]
		nonceVal := uint64(e.NonceLo) | uint64(e.NonceHi)<<32
		out.Matches = append(out.Matches, Match{Nonce: nonceVal, TxID: unpackDigest(e.TxID)})
	}
	return out
}
