// Package gpumine implements the host side of a GPU compute dispatch: the
// buffer layouts the bindings expect, a Device interface any real backend
// would implement, and a pure-Go software device that runs the identical
// computation the kernel source describes so it can stand in for a real
// device in tests and as the CPU-adapter fallback class.
package gpumine

const (
	// ResultCapacity is RESULTS' fixed array size; more matches than this in
	// one dispatch are counted but not individually recorded.
	ResultCapacity = 8

	// WorkgroupSize is the compute shader's thread count per dispatch
	// dimension (256 x 1 x 1).
	WorkgroupSize = 256
)

// DeviceClass bounds a device's default calibrated batch size.
type DeviceClass int

const (
	DiscreteGPU DeviceClass = iota
	IntegratedGPU
	CPUAdapter
)

// DefaultBatchSize returns the calibration-probe ceiling for a device class.
func DefaultBatchSize(class DeviceClass) uint64 {
	switch class {
	case DiscreteGPU:
		return 1_000_000
	case IntegratedGPU:
		return 100_000
	default:
		return 25_000
	}
}

// Params mirrors the PARAMS uniform binding: start nonce split into two
// 32-bit halves, the batch size, target zero-digit count, the two buffer
// lengths, the nonce's encoded length, and whether it is CBOR-encoded.
type Params struct {
	StartNonceLo uint32
	StartNonceHi uint32
	BatchSize    uint32
	TargetZeros  uint32
	PrefixLen    uint32
	SuffixLen    uint32
	NonceLen     uint32
	UseCBORNonce uint32
	// Pad keeps the struct's footprint matching the 5 reserved 32-bit
	// uniform slots the binding layout reserves after use_cbor_nonce.
	Pad [5]uint32
}

// ResultEntry mirrors one slot of RESULTS' fixed match array.
type ResultEntry struct {
	NonceLo uint32
	NonceHi uint32
	TxID    [8]uint32 // the 32-byte digest packed into 8 little-endian words
	Pad     [2]uint32
}

// Results mirrors the RESULTS read-write storage binding.
type Results struct {
	FoundCount uint32
	Pad        uint32
	Entries    [ResultCapacity]ResultEntry
}

func newParams(startNonce uint64, batchSize uint32, targetZeros int, prefixLen, suffixLen, nonceLen int, useCBORNonce bool) Params {
	var cbor uint32
	if useCBORNonce {
		cbor = 1
	}
	return Params{
		StartNonceLo: uint32(startNonce),
		StartNonceHi: uint32(startNonce >> 32),
		BatchSize:    batchSize,
		TargetZeros:  uint32(targetZeros),
		PrefixLen:    uint32(prefixLen),
		SuffixLen:    uint32(suffixLen),
		NonceLen:     uint32(nonceLen),
		UseCBORNonce: cbor,
	}
}
