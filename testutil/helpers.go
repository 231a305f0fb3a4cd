package testutil

import (
	"encoding/hex"
	"testing"
)

// MustDecodeHex decodes hex or fails the test.
func MustDecodeHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("invalid hex %q: %v", s, err)
	}
	return b
}

// HashFromHex converts a hex string to a [32]byte, zero-padding if needed.
func HashFromHex(s string) [32]byte {
	b, _ := hex.DecodeString(s)
	var h [32]byte
	copy(h[:], b)
	return h
}

// MustDecodeHexNoTest decodes a literal hex string, panicking on malformed
// input. It exists for fixture constructors that build from known-valid
// literal constants outside of a *testing.T-bearing function.
func MustDecodeHexNoTest(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic("testutil: invalid hex literal: " + s)
	}
	return b
}
