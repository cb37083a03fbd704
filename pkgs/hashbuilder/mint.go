package hashbuilder

import "github.com/study/cardano-hw-signer/pkgs/cbor"

type mintStage int

const (
	mintInit mintStage = iota
	mintAssetGroups
	mintFinished
)

// MintBuilder drives the mint field's nested asset-group/token
// self-loop sub-machine (spec.md §4.2's MINT_SUBMACHINE). It reuses the
// same multiassetCursor bookkeeping as OutputBuilder's multiasset
// value, differing only in that mint amounts are signed (CDDL
// `multiasset<int>`, not the unsigned `coin` an output carries).
type MintBuilder struct {
	w      *cbor.Writer
	state  mintStage
	assets multiassetCursor
}

// newMintBuilder writes the mint map header (groupCount policy
// entries) and arms the self-loop counter.
func newMintBuilder(w *cbor.Writer, groupCount uint64) (*MintBuilder, error) {
	if err := w.WriteMapHeader(groupCount); err != nil {
		return nil, err
	}
	return &MintBuilder{w: w, state: mintAssetGroups, assets: multiassetCursor{groupsRemaining: groupCount}}, nil
}

// WriteAssetGroup opens one policy_id's nested token map.
func (b *MintBuilder) WriteAssetGroup(policyID []byte, tokenCount uint64) error {
	if b.state != mintAssetGroups {
		return ErrIllegalTransition
	}
	return b.assets.beginGroup(b.w, policyID, tokenCount)
}

// WriteToken appends one asset_name/signed-amount entry to the current
// group.
func (b *MintBuilder) WriteToken(assetName []byte, amount int64) error {
	if b.state != mintAssetGroups {
		return ErrIllegalTransition
	}
	return b.assets.writeSignedToken(b.w, assetName, amount)
}

// Finish closes the mint field, requiring every declared asset group
// and token to have been written.
func (b *MintBuilder) Finish() error {
	if b.state != mintAssetGroups {
		return ErrIllegalTransition
	}
	if !b.assets.done() {
		return ErrSubCountExhausted
	}
	b.state = mintFinished
	return nil
}
