package hashbuilder

import "github.com/study/cardano-hw-signer/pkgs/cbor"

// multiassetCursor tracks the remaining asset-group/token counts for a
// nested { policy_id => { asset_name => amount } } map. Both an
// output's multiasset value and the mint field share this exact shape
// (spec.md §4.2's OUTPUT_SUBMACHINE and MINT_SUBMACHINE self-loops);
// only the token amount's sign differs, so the two builders share this
// cursor instead of duplicating its bookkeeping.
type multiassetCursor struct {
	groupsRemaining uint64
	tokensRemaining uint64
}

// beginGroup writes one policy_id plus its token-count map header and
// arms tokensRemaining for the WriteToken calls that follow.
func (c *multiassetCursor) beginGroup(w *cbor.Writer, policyID []byte, numTokens uint64) error {
	if c.groupsRemaining == 0 {
		return ErrSubCountExhausted
	}
	if c.tokensRemaining != 0 {
		return ErrIllegalTransition
	}
	c.groupsRemaining--
	if err := w.WriteBytes(policyID); err != nil {
		return err
	}
	if err := w.WriteMapHeader(numTokens); err != nil {
		return err
	}
	c.tokensRemaining = numTokens
	return nil
}

func (c *multiassetCursor) writeUnsignedToken(w *cbor.Writer, assetName []byte, amount uint64) error {
	if c.tokensRemaining == 0 {
		return ErrSubCountExhausted
	}
	c.tokensRemaining--
	if err := w.WriteBytes(assetName); err != nil {
		return err
	}
	return w.WriteUnsigned(amount)
}

func (c *multiassetCursor) writeSignedToken(w *cbor.Writer, assetName []byte, amount int64) error {
	if c.tokensRemaining == 0 {
		return ErrSubCountExhausted
	}
	c.tokensRemaining--
	if err := w.WriteBytes(assetName); err != nil {
		return err
	}
	return w.WriteInt(amount)
}

func (c *multiassetCursor) done() bool {
	return c.groupsRemaining == 0 && c.tokensRemaining == 0
}
