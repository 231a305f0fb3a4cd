package nonce

import "github.com/zeldminer/vanitytx/internal/vtxerr"

// Segment is a contiguous sub-range of the nonce space in which every
// candidate shares the same encoded length.
type Segment struct {
	Start    uint64
	Size     uint64
	NonceLen int
}

// rawBoundaries holds the first nonce of each raw big-endian length class
// after the first (class 1 starts at 0 implicitly).
var rawBoundaries = []uint64{
	1 << 8, 1 << 16, 1 << 24, 1 << 32, 1 << 40, 1 << 48, 1 << 56,
}

// cborBoundaries holds the first nonce of each CBOR length class after the
// first.
var cborBoundaries = []uint64{24, 256, 65536, 1 << 32}

const (
	maxRawSegments  = 8
	maxCBORSegments = 5
)

// Split partitions [start, start+span-1] into length-homogeneous segments.
// It fails with InvalidRange if the range overflows the 64-bit nonce space.
func Split(start, span uint64, useCBOR bool) ([]Segment, error) {
	if span == 0 {
		return nil, nil
	}
	last := start + span - 1
	if last < start { // overflow
		return nil, vtxerr.New(vtxerr.InvalidRange, "start+span-1 overflows uint64")
	}

	boundaries := rawBoundaries
	if useCBOR {
		boundaries = cborBoundaries
	}

	var segments []Segment
	cur := start
	for cur <= last {
		classEnd := last
		for _, b := range boundaries {
			if b > cur && b-1 < classEnd {
				classEnd = b - 1
			}
		}
		size := classEnd - cur + 1
		length := EncodedLen(cur, useCBOR)
		segments = append(segments, Segment{Start: cur, Size: size, NonceLen: length})
		if classEnd == last {
			break
		}
		cur = classEnd + 1
	}

	return segments, nil
}
