package miningtmpl

import (
	"github.com/zeldminer/vanitytx/internal/vtxerr"
	"github.com/zeldminer/vanitytx/pkg/util"
)

// DecodedInput and DecodedOutput mirror the legacy wire fields this core
// emits; they exist for round-trip verification, not for general-purpose
// Bitcoin parsing.
type DecodedInput struct {
	PrevoutHash [32]byte // wire (little-endian) order, unreversed
	Vout        uint32
	Sequence    uint32
}

type DecodedOutput struct {
	Amount       uint64
	ScriptPubKey []byte
}

// DecodedTx is the result of parsing a legacy serialized transaction.
type DecodedTx struct {
	Version  uint32
	Inputs   []DecodedInput
	Outputs  []DecodedOutput
	Locktime uint32
}

// Deserialize parses a legacy serialized transaction produced by
// SerializeLegacy (or Template.Assemble).
func Deserialize(b []byte) (*DecodedTx, error) {
	if len(b) < 4+1+1+4 {
		return nil, vtxerr.New(vtxerr.InvalidInput, "transaction too short")
	}
	pos := 0

	version := leUint32(b[pos : pos+4])
	pos += 4

	numInputs, n, err := util.ReadVarInt(b[pos:])
	if err != nil {
		return nil, vtxerr.Wrap(vtxerr.InvalidInput, "reading input count", err)
	}
	pos += n

	inputs := make([]DecodedInput, numInputs)
	for i := range inputs {
		if len(b) < pos+32+4 {
			return nil, vtxerr.New(vtxerr.InvalidInput, "truncated input prevout")
		}
		var hash [32]byte
		copy(hash[:], b[pos:pos+32])
		pos += 32
		vout := leUint32(b[pos : pos+4])
		pos += 4

		scriptLen, n, err := util.ReadVarInt(b[pos:])
		if err != nil {
			return nil, vtxerr.Wrap(vtxerr.InvalidInput, "reading scriptSig length", err)
		}
		pos += n
		pos += int(scriptLen) // always 0 for this core's inputs

		if len(b) < pos+4 {
			return nil, vtxerr.New(vtxerr.InvalidInput, "truncated input sequence")
		}
		sequence := leUint32(b[pos : pos+4])
		pos += 4

		inputs[i] = DecodedInput{PrevoutHash: hash, Vout: vout, Sequence: sequence}
	}

	numOutputs, n, err := util.ReadVarInt(b[pos:])
	if err != nil {
		return nil, vtxerr.Wrap(vtxerr.InvalidInput, "reading output count", err)
	}
	pos += n

	outputs := make([]DecodedOutput, numOutputs)
	for i := range outputs {
		if len(b) < pos+8 {
			return nil, vtxerr.New(vtxerr.InvalidInput, "truncated output amount")
		}
		amount := leUint64(b[pos : pos+8])
		pos += 8

		scriptLen, n, err := util.ReadVarInt(b[pos:])
		if err != nil {
			return nil, vtxerr.Wrap(vtxerr.InvalidInput, "reading scriptPubKey length", err)
		}
		pos += n
		if len(b) < pos+int(scriptLen) {
			return nil, vtxerr.New(vtxerr.InvalidInput, "truncated scriptPubKey")
		}
		script := make([]byte, scriptLen)
		copy(script, b[pos:pos+int(scriptLen)])
		pos += int(scriptLen)

		outputs[i] = DecodedOutput{Amount: amount, ScriptPubKey: script}
	}

	if len(b) < pos+4 {
		return nil, vtxerr.New(vtxerr.InvalidInput, "truncated locktime")
	}
	locktime := leUint32(b[pos : pos+4])
	pos += 4

	if pos != len(b) {
		return nil, vtxerr.New(vtxerr.InvalidInput, "trailing bytes after locktime")
	}

	return &DecodedTx{Version: version, Inputs: inputs, Outputs: outputs, Locktime: locktime}, nil
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
