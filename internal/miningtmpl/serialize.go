// Package miningtmpl serializes a frozen transaction plan to legacy wire
// bytes and splits the serialization into the prefix/suffix halves that
// straddle the mutable nonce region, following the teacher's
// serialize-once-and-memoize idiom for fixed-layout wire structures.
package miningtmpl

import (
	"github.com/zeldminer/vanitytx/internal/txplan"
	"github.com/zeldminer/vanitytx/pkg/util"
)

// SerializeLegacy writes the legacy (no-witness) wire form of a transaction
// made of inputs and a finalized output list, given the already-built
// OP_RETURN script as the final output. This is the form whose double-SHA256
// is the txid.
func SerializeLegacy(inputs []txplan.TxInput, outputs []txplan.PlannedOutput, opReturnScript []byte) []byte {
	var buf []byte
	buf = append(buf, util.Uint32ToBytes(2)...) // version 2, little-endian: 0x02000000

	buf = append(buf, util.WriteVarInt(uint64(len(inputs)))...)
	for _, in := range inputs {
		buf = append(buf, util.ReverseBytes(in.Txid[:])...)
		buf = append(buf, util.Uint32ToBytes(in.Vout)...)
		buf = append(buf, util.WriteVarInt(0)...) // empty scriptSig
		buf = append(buf, util.Uint32ToBytes(in.Sequence)...)
	}

	buf = append(buf, util.WriteVarInt(uint64(len(outputs)+1))...) // +1 for OP_RETURN
	for _, out := range outputs {
		buf = append(buf, util.Uint64ToBytes(uint64(out.Amount))...)
		buf = append(buf, util.WriteVarInt(uint64(len(out.ScriptPubKey)))...)
		buf = append(buf, out.ScriptPubKey...)
	}
	buf = append(buf, util.Uint64ToBytes(0)...) // OP_RETURN amount is always 0
	buf = append(buf, util.WriteVarInt(uint64(len(opReturnScript)))...)
	buf = append(buf, opReturnScript...)

	buf = append(buf, util.Uint32ToBytes(0)...) // locktime
	return buf
}
