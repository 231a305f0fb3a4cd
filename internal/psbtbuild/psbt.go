// Package psbtbuild assembles a BIP-174 v0 unsigned PSBT around a frozen
// transaction plan, mirroring the teacher's single-purpose wire-format
// builders: it writes exactly the key-value pairs a vanity-txid miner's
// caller needs (the unsigned tx and each input's witness UTXO) and nothing
// from the signing/finalization sections of the PSBT spec this core never
// touches.
package psbtbuild

import (
	"encoding/base64"

	"github.com/zeldminer/vanitytx/internal/miningtmpl"
	"github.com/zeldminer/vanitytx/internal/txplan"
	"github.com/zeldminer/vanitytx/internal/vtxerr"
	"github.com/zeldminer/vanitytx/pkg/util"
)

var psbtMagic = []byte{0x70, 0x73, 0x62, 0x74, 0xff}

const (
	keyGlobalUnsignedTx = 0x00
	keyInWitnessUTXO    = 0x01
	mapTerminator       = 0x00
)

// keyValue writes one PSBT key-value pair: <keylen><key><vallen><val>.
func keyValue(buf []byte, key []byte, value []byte) []byte {
	buf = append(buf, util.WriteVarInt(uint64(len(key)))...)
	buf = append(buf, key...)
	buf = append(buf, util.WriteVarInt(uint64(len(value)))...)
	buf = append(buf, value...)
	return buf
}

// witnessUTXO serializes the BIP-174 PSBT_IN_WITNESS_UTXO value: an 8-byte
// LE amount followed by the CompactSize-prefixed scriptPubKey, the same
// layout as one transaction output.
func witnessUTXO(amount int64, scriptPubKey []byte) []byte {
	var buf []byte
	buf = append(buf, util.Uint64ToBytes(uint64(amount))...)
	buf = append(buf, util.WriteVarInt(uint64(len(scriptPubKey)))...)
	buf = append(buf, scriptPubKey...)
	return buf
}

// Build assembles a base64-encoded unsigned PSBT (BIP-174 v0) for the given
// inputs and a finalized plan, embedding the OP_RETURN output with the given
// nonce value. Each input's WITNESS_UTXO is required for a PSBT consumer to
// compute the transaction's fee and signing-hash inputs without a full node
// round trip, so it is always included: this core only ever spends
// SegWit-encumbered inputs (see internal/address).
func Build(inputs []txplan.TxInput, plan *txplan.TransactionPlan, nonceVal uint64) (string, error) {
	if len(inputs) == 0 {
		return "", vtxerr.New(vtxerr.InvalidInput, "no inputs to build a PSBT from")
	}

	opReturnScript := plan.OpReturnScript(nonceVal)
	unsignedTx := miningtmpl.SerializeLegacy(inputs, plan.Outputs, opReturnScript)

	var buf []byte
	buf = append(buf, psbtMagic...)

	buf = keyValue(buf, []byte{keyGlobalUnsignedTx}, unsignedTx)
	buf = append(buf, mapTerminator)

	for _, in := range inputs {
		buf = keyValue(buf, []byte{keyInWitnessUTXO}, witnessUTXO(in.Amount, in.ScriptPubKey))
		buf = append(buf, mapTerminator)
	}

	for range plan.Outputs {
		buf = append(buf, mapTerminator) // no PSBT_OUT fields needed, unsigned
	}
	buf = append(buf, mapTerminator) // OP_RETURN output's (empty) map

	return base64.StdEncoding.EncodeToString(buf), nil
}
