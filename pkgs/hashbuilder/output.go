package hashbuilder

import "github.com/study/cardano-hw-signer/pkgs/cbor"

// outputStage is one output's linear sub-state enum (spec.md §4.2's
// OUTPUT_SUBMACHINE).
type outputStage int

const (
	outputInit outputStage = iota
	outputAddress
	outputAmount
	outputAssetGroups
	outputDatum
	outputRefScript
	outputFinished
)

// Babbage-map-form output field keys.
const (
	keyOutputAddress   = 0
	keyOutputValue     = 1
	keyOutputDatum     = 2
	keyOutputScriptRef = 3
)

// OutputBuilder drives one transaction output: an address, then either
// a plain coin amount or a multiasset value whose asset groups and
// tokens self-loop via their declared counts, then — Babbage map form
// only — an optional datum and reference script. Like
// PoolRegistrationBuilder it shares the enclosing TxHashBuilder's
// writer rather than owning its own hash context, since an output is
// one array entry in the already-open outputs array.
type OutputBuilder struct {
	w          *cbor.Writer
	state      outputStage
	babbageMap bool
	assets     multiassetCursor
}

// newOutputBuilder opens the output's envelope: a Babbage map of
// fieldCount entries, or a legacy 2-element array.
func newOutputBuilder(w *cbor.Writer, babbageMap bool, fieldCount uint64) (*OutputBuilder, error) {
	if babbageMap {
		if err := w.WriteMapHeader(fieldCount); err != nil {
			return nil, err
		}
	} else {
		if err := w.WriteArrayHeader(2); err != nil {
			return nil, err
		}
	}
	return &OutputBuilder{w: w, state: outputInit, babbageMap: babbageMap}, nil
}

func (b *OutputBuilder) step(next outputStage) error {
	if next < b.state {
		return ErrIllegalTransition
	}
	b.state = next
	return nil
}

// WriteAddress writes the output address: key 0 in Babbage map form,
// the array's first element in legacy form.
func (b *OutputBuilder) WriteAddress(addr []byte) error {
	if err := b.step(outputAddress); err != nil {
		return err
	}
	if b.babbageMap {
		if err := b.w.WriteUnsigned(keyOutputAddress); err != nil {
			return err
		}
	}
	return b.w.WriteBytes(addr)
}

func (b *OutputBuilder) writeValueKey() error {
	if b.babbageMap {
		return b.w.WriteUnsigned(keyOutputValue)
	}
	return nil
}

// WriteCoinOnly writes a plain-coin value with no multiasset part.
func (b *OutputBuilder) WriteCoinOnly(amount uint64) error {
	if err := b.step(outputAmount); err != nil {
		return err
	}
	if err := b.writeValueKey(); err != nil {
		return err
	}
	return b.w.WriteUnsigned(amount)
}

// BeginMultiasset opens value = [coin, multiasset<positive_coin>],
// readying the builder for groupCount asset groups via WriteAssetGroup
// and WriteToken.
func (b *OutputBuilder) BeginMultiasset(amount, groupCount uint64) error {
	if err := b.step(outputAssetGroups); err != nil {
		return err
	}
	if err := b.writeValueKey(); err != nil {
		return err
	}
	if err := b.w.WriteArrayHeader(2); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(amount); err != nil {
		return err
	}
	if err := b.w.WriteMapHeader(groupCount); err != nil {
		return err
	}
	b.assets.groupsRemaining = groupCount
	return nil
}

// WriteAssetGroup opens one policy_id's nested token map.
func (b *OutputBuilder) WriteAssetGroup(policyID []byte, tokenCount uint64) error {
	if b.state != outputAssetGroups {
		return ErrIllegalTransition
	}
	return b.assets.beginGroup(b.w, policyID, tokenCount)
}

// WriteToken appends one asset_name/amount entry to the current group.
func (b *OutputBuilder) WriteToken(assetName []byte, amount uint64) error {
	if b.state != outputAssetGroups {
		return ErrIllegalTransition
	}
	return b.assets.writeUnsignedToken(b.w, assetName, amount)
}

// WriteDatum writes the Babbage-map-only datum_option field (key 2): an
// already-encoded [0, hash] or [1, inline_datum] pair.
func (b *OutputBuilder) WriteDatum(encoded []byte) error {
	if !b.babbageMap {
		return ErrIllegalTransition
	}
	if err := b.step(outputDatum); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(keyOutputDatum); err != nil {
		return err
	}
	return b.w.Raw(encoded)
}

// WriteRefScript writes the Babbage-map-only reference script field
// (key 3): an already-encoded tag(24)-wrapped script bytes value.
func (b *OutputBuilder) WriteRefScript(encoded []byte) error {
	if !b.babbageMap {
		return ErrIllegalTransition
	}
	if err := b.step(outputRefScript); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(keyOutputScriptRef); err != nil {
		return err
	}
	return b.w.Raw(encoded)
}

// Finish closes this output, requiring every declared asset group and
// token to have been written.
func (b *OutputBuilder) Finish() error {
	if b.state < outputAmount {
		return ErrIllegalTransition
	}
	if !b.assets.done() {
		return ErrSubCountExhausted
	}
	b.state = outputFinished
	return nil
}
