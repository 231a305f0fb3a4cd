package txplan

import (
	"github.com/zeldminer/vanitytx/internal/nonce"
	"github.com/zeldminer/vanitytx/internal/vtxerr"
	"github.com/zeldminer/vanitytx/pkg/util"
)

// zeldMagic is the literal ASCII "ZELD" tag that opens a distribution-mode
// OP_RETURN payload.
var zeldMagic = []byte{0x5a, 0x45, 0x4c, 0x44}

// OpReturnLayout is the recipe for the final output's script: everything up
// to the mutable nonce region (HeadBytes, which always starts with the
// OP_RETURN opcode and the push opcode) plus the length and encoding of the
// nonce region itself. Nothing follows the nonce inside the payload.
type OpReturnLayout struct {
	HeadBytes    []byte
	NonceLen     int
	UseCBORNonce bool
	PayloadSize  int
}

// cborArrayHeader returns the CBOR major-type-4 (array) header for an array
// of n elements; the additional-info length table is identical to major
// type 0's.
func cborArrayHeader(n int) []byte {
	const majorArray = 0x80
	v := uint64(n)
	switch {
	case v <= 23:
		return []byte{majorArray | byte(v)}
	case v <= 0xff:
		return []byte{majorArray | 0x18, byte(v)}
	case v <= 0xffff:
		return []byte{majorArray | 0x19, byte(v >> 8), byte(v)}
	default:
		return []byte{majorArray | 0x1a, byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	}
}

// BuildOpReturnLayout computes the fixed head bytes and nonce-region length
// for the chosen OP_RETURN mode. distribution == nil selects legacy mode
// (payload is just the nonce, encoded per useCBORNonce); a non-nil
// distribution selects ZELD mode, where the nonce is always CBOR-encoded as
// the array's final element.
func BuildOpReturnLayout(nonceLen int, useCBORNonce bool, distribution []uint64) (*OpReturnLayout, error) {
	var fixedPayload []byte
	if distribution != nil {
		fixedPayload = append(fixedPayload, zeldMagic...)
		fixedPayload = append(fixedPayload, cborArrayHeader(len(distribution)+1)...)
		for _, d := range distribution {
			fixedPayload = append(fixedPayload, nonce.CBOREncode(d)...)
		}
		useCBORNonce = true
	}

	payloadSize := len(fixedPayload) + nonceLen
	push, err := util.WriteOpReturnPush(payloadSize)
	if err != nil {
		return nil, vtxerr.Wrap(vtxerr.InvalidInput, "op_return payload does not fit a single push opcode", err)
	}

	head := make([]byte, 0, 1+len(push)+len(fixedPayload))
	head = append(head, 0x6a)
	head = append(head, push...)
	head = append(head, fixedPayload...)

	return &OpReturnLayout{
		HeadBytes:    head,
		NonceLen:     nonceLen,
		UseCBORNonce: useCBORNonce,
		PayloadSize:  payloadSize,
	}, nil
}
