package miningtmpl

import "github.com/zeldminer/vanitytx/internal/txplan"

// Template is the byte-exact split of a serialized transaction around its
// mutable nonce region: every candidate in one segment shares Prefix and
// Suffix unchanged, varying only the NonceLen-byte region between them.
type Template struct {
	Prefix       []byte
	Suffix       []byte
	NonceLen     int
	UseCBORNonce bool
}

// Build serializes the plan with a zero-filled placeholder nonce of the
// segment's length and splits the bytes at the nonce region. Because the
// OP_RETURN output is always last and nothing in its script follows the
// nonce, the nonce region sits immediately before the fixed 4-byte locktime
// that closes every legacy transaction.
func Build(inputs []txplan.TxInput, plan *txplan.TransactionPlan) *Template {
	nonceLen := plan.OpReturn.NonceLen
	placeholder := make([]byte, nonceLen)

	opReturnScript := make([]byte, 0, len(plan.OpReturn.HeadBytes)+nonceLen)
	opReturnScript = append(opReturnScript, plan.OpReturn.HeadBytes...)
	opReturnScript = append(opReturnScript, placeholder...)

	full := SerializeLegacy(inputs, plan.Outputs, opReturnScript)
	total := len(full)

	suffix := make([]byte, 4)
	copy(suffix, full[total-4:])
	prefix := make([]byte, total-4-nonceLen)
	copy(prefix, full[:total-4-nonceLen])

	return &Template{
		Prefix:       prefix,
		Suffix:       suffix,
		NonceLen:     nonceLen,
		UseCBORNonce: plan.OpReturn.UseCBORNonce,
	}
}

// Assemble concatenates prefix, the encoded nonce, and suffix into a full
// serialized transaction.
func (t *Template) Assemble(nonceBytes []byte) []byte {
	buf := make([]byte, 0, len(t.Prefix)+len(nonceBytes)+len(t.Suffix))
	buf = append(buf, t.Prefix...)
	buf = append(buf, nonceBytes...)
	buf = append(buf, t.Suffix...)
	return buf
}
