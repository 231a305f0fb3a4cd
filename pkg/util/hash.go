package util

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// DoubleSHA256 computes SHA256(SHA256(data)), used extensively in Bitcoin.
func DoubleSHA256(data []byte) [32]byte {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// ReverseBytes returns a new slice with bytes reversed.
func ReverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// HashToHex returns a reversed hex string of a hash (Bitcoin display order).
func HashToHex(hash [32]byte) string {
	return hex.EncodeToString(ReverseBytes(hash[:]))
}

// HexToHash converts a display-order hex string back to a [32]byte hash.
func HexToHash(s string) ([32]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return [32]byte{}, err
	}
	if len(b) != 32 {
		return [32]byte{}, hex.ErrLength
	}
	var h [32]byte
	copy(h[:], ReverseBytes(b))
	return h, nil
}

// Uint32ToBytes converts a uint32 to 4-byte little-endian.
func Uint32ToBytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// Uint64ToBytes converts a uint64 to 8-byte little-endian.
func Uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// LeadingZeroHexDigits counts the leading zero hex digits of b, reading
// byte-by-byte from index 0: a zero byte contributes two hex digits and
// the scan continues; a byte whose high nibble is zero contributes one
// digit and the scan stops; any other byte stops the scan immediately.
func LeadingZeroHexDigits(b []byte) int {
	count := 0
	for _, v := range b {
		if v == 0 {
			count += 2
			continue
		}
		if v&0xf0 == 0 {
			count++
		}
		break
	}
	return count
}

// HashMeetsTarget reports whether digest d, viewed in its byte-reversed
// (txid / display) order, has at least targetZeros leading zero hex
// digits. targetZeros == 0 always succeeds; targetZeros > 64 always
// fails, since a 32-byte digest has only 64 hex digits to give.
func HashMeetsTarget(d [32]byte, targetZeros int) bool {
	if targetZeros <= 0 {
		return true
	}
	if targetZeros > 64 {
		return false
	}
	reversed := ReverseBytes(d[:])
	return LeadingZeroHexDigits(reversed) >= targetZeros
}

// TxID returns the double-SHA256 digest of a serialized legacy transaction
// in internal (unreversed) byte order; HashToHex and HashMeetsTarget apply
// the byte reversal that gives the displayable txid.
func TxID(serializedTx []byte) [32]byte {
	return DoubleSHA256(serializedTx)
}
