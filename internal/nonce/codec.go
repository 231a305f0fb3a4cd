// Package nonce encodes the 64-bit mining nonce in the two byte formats the
// templater and GPU kernel agree on, and splits a nonce range into segments
// that each stay inside one encoded-length class.
package nonce

import (
	"bytes"

	"github.com/fxamacker/cbor/v2"

	"github.com/zeldminer/vanitytx/internal/vtxerr"
)

// RawEncode returns the minimal big-endian encoding of n. Zero encodes as a
// single zero byte; any other value never has a leading zero byte.
func RawEncode(n uint64) []byte {
	if n == 0 {
		return []byte{0x00}
	}
	var buf [8]byte
	for i := 7; i >= 0; i-- {
		buf[i] = byte(n)
		n >>= 8
	}
	start := 0
	for start < 7 && buf[start] == 0 {
		start++
	}
	out := make([]byte, 8-start)
	copy(out, buf[start:])
	return out
}

// RawLen returns the length RawEncode(n) would produce, without allocating.
func RawLen(n uint64) int {
	length := 1
	for n > 0xff {
		n >>= 8
		length++
	}
	return length
}

// CBORLen returns the RFC 8949 major-type-0 encoded length for n.
func CBORLen(n uint64) int {
	switch {
	case n <= 23:
		return 1
	case n <= 0xff:
		return 2
	case n <= 0xffff:
		return 3
	case n <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// CBOREncode returns the RFC 8949 major-type-0 unsigned-integer encoding of
// n, via cbor.Marshal's default shortest-form integer encoding.
func CBOREncode(n uint64) []byte {
	b, err := cbor.Marshal(n)
	if err != nil {
		// cbor.Marshal cannot fail on a bare uint64.
		panic("nonce: cbor.Marshal(uint64) failed: " + err.Error())
	}
	return b
}

// EncodedLen returns the byte length n would occupy under the requested
// encoding.
func EncodedLen(n uint64, useCBOR bool) int {
	if useCBOR {
		return CBORLen(n)
	}
	return RawLen(n)
}

// Encode returns the byte encoding of n under the requested scheme.
func Encode(n uint64, useCBOR bool) []byte {
	if useCBOR {
		return CBOREncode(n)
	}
	return RawEncode(n)
}

// DecodeCBORUint decodes a major-type-0 unsigned integer from the front of
// b, returning the value and the number of bytes consumed. It reads exactly
// one CBOR data item and leaves any trailing bytes (the rest of the
// OP_RETURN payload) untouched, the same sequential-decode discipline CBOR
// sequences (RFC 8742) rely on.
func DecodeCBORUint(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, vtxerr.New(vtxerr.InvalidInput, "empty cbor nonce")
	}
	if b[0]>>5 != 0 {
		return 0, 0, vtxerr.New(vtxerr.InvalidInput, "not a cbor unsigned integer")
	}

	r := bytes.NewReader(b)
	dec := cbor.NewDecoder(r)
	var v uint64
	if err := dec.Decode(&v); err != nil {
		return 0, 0, vtxerr.Wrap(vtxerr.InvalidInput, "invalid cbor nonce", err)
	}
	return v, dec.NumBytesRead(), nil
}

// DecodeRaw decodes a minimal big-endian nonce of exactly len(b) bytes.
func DecodeRaw(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
