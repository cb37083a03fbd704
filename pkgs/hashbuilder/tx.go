package hashbuilder

import (
	"github.com/study/cardano-hw-signer/pkgs/blakehash"
	"github.com/study/cardano-hw-signer/pkgs/cbor"
)

// txStage is the tx hash builder's linear state enum (spec.md §4.2).
// Ordinals are monotonically increasing in stage order; a handful of
// stages (outputs, certificates, mint, collateral output) accept
// repeated calls at the same ordinal before advancing, modeling the
// "{...}*" self-loops in the state diagram.
type txStage int

const (
	txInit txStage = iota
	txInInputs
	txInOutputs
	txInFee
	txInTTL
	txInCertificates
	txInWithdrawals
	txInAuxData
	txInValidityIntervalStart
	txInMint
	txInScriptDataHash
	txInCollateralInputs
	txInRequiredSigners
	txInCollateralOutput
	txInTotalCollateral
	txInReferenceInputs
	txInVotingProcedures
	txInTreasury
	txInDonation
	txFinished
)

// Transaction-body map keys (Shelley/Babbage/Conway CDDL).
const (
	keyInputs                  = 0
	keyOutputs                 = 1
	keyFee                     = 2
	keyTTL                     = 3
	keyCertificates            = 4
	keyWithdrawals             = 5
	keyAuxDataHash             = 7
	keyValidityIntervalStart   = 8
	keyMint                    = 9
	keyScriptDataHash          = 11
	keyCollateralInputs        = 13
	keyRequiredSigners         = 14
	keyCollateralReturn        = 16
	keyTotalCollateral         = 17
	keyReferenceInputs         = 18
	keyVotingProcedures        = 19
	keyCurrentTreasuryValue    = 21
	keyDonation                = 22
)

// TxHashBuilder streams a transaction body's canonical CBOR encoding
// directly into a BLAKE2b-256 context (spec.md §4.2). Most body item
// values are supplied by the caller as an already-canonically-encoded
// CBOR fragment, with the builder enforcing stage ordering and emitting
// the envelope (the top-level map, each item's integer key, and
// container headers for repeatable groups). Outputs, pool registration
// certificates, and mint are the exception: each opens its own
// sub-builder (OutputBuilder, PoolRegistrationBuilder, MintBuilder) that
// is driven field by field, since spec.md §4.2 gives these three their
// own nested state diagrams rather than treating them as opaque values.
type TxHashBuilder struct {
	hash  *blakehash.Context
	w     *cbor.Writer
	state txStage
}

// NewTxHashBuilder opens the transaction body's top-level CBOR map with
// bodyItemCount entries (the count of body items enabled for this
// transaction, computed by the INIT stage of the signing session) and
// returns a builder ready to receive them in order.
func NewTxHashBuilder(bodyItemCount uint64) (*TxHashBuilder, error) {
	ctx, err := blakehash.New256()
	if err != nil {
		return nil, err
	}
	w := cbor.NewWriter(ctx)
	if err := w.WriteMapHeader(bodyItemCount); err != nil {
		return nil, err
	}
	return &TxHashBuilder{hash: ctx, w: w, state: txInit}, nil
}

// step advances the state machine to next, rejecting any backward move.
// Forward jumps are legal (an absent optional stage is simply skipped);
// same-state repeats are legal (the stage's own self-loop).
func (b *TxHashBuilder) step(next txStage) error {
	if next < b.state {
		return ErrIllegalTransition
	}
	b.state = next
	return nil
}

func (b *TxHashBuilder) writeKeyedRaw(key uint64, raw []byte) error {
	if err := b.w.WriteUnsigned(key); err != nil {
		return err
	}
	return b.w.Raw(raw)
}

// WriteInputs emits the inputs entry: key 0, then encodedSet verbatim
// (already a canonical CBOR array of transaction inputs).
func (b *TxHashBuilder) WriteInputs(encodedSet []byte) error {
	if err := b.step(txInInputs); err != nil {
		return err
	}
	return b.writeKeyedRaw(keyInputs, encodedSet)
}

// WriteOutputsHeader opens the outputs array (key 1, array header of n
// outputs); each output is then opened with BeginOutputBabbage or
// BeginOutputLegacy and driven field by field through OutputBuilder.
func (b *TxHashBuilder) WriteOutputsHeader(n uint64) error {
	if err := b.step(txInOutputs); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(keyOutputs); err != nil {
		return err
	}
	return b.w.WriteArrayHeader(n)
}

// BeginOutputBabbage opens one Babbage-map-form output (fieldCount is
// the number of map entries this particular output carries: 2 for a
// bare address+value, up to 4 once datum and reference script are
// included) and returns an OutputBuilder to drive it field by field.
func (b *TxHashBuilder) BeginOutputBabbage(fieldCount uint64) (*OutputBuilder, error) {
	if b.state != txInOutputs {
		return nil, ErrIllegalTransition
	}
	return newOutputBuilder(b.w, true, fieldCount)
}

// BeginOutputLegacy opens one legacy (pre-Babbage) [address, amount]
// output; the legacy form carries no datum or reference script.
func (b *TxHashBuilder) BeginOutputLegacy() (*OutputBuilder, error) {
	if b.state != txInOutputs {
		return nil, ErrIllegalTransition
	}
	return newOutputBuilder(b.w, false, 2)
}

// WriteFee emits key 2.
func (b *TxHashBuilder) WriteFee(fee uint64) error {
	if err := b.step(txInFee); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(keyFee); err != nil {
		return err
	}
	return b.w.WriteUnsigned(fee)
}

// WriteTTL emits key 3.
func (b *TxHashBuilder) WriteTTL(ttl uint64) error {
	if err := b.step(txInTTL); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(keyTTL); err != nil {
		return err
	}
	return b.w.WriteUnsigned(ttl)
}

// WriteCertificatesHeader opens the certificates array (key 4). Pool
// registration certificates drive their own nested field-by-field
// sub-machine through BeginPoolRegistration; every other certificate
// type is simple enough to append whole via WriteCertificate.
func (b *TxHashBuilder) WriteCertificatesHeader(n uint64) error {
	if err := b.step(txInCertificates); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(keyCertificates); err != nil {
		return err
	}
	return b.w.WriteArrayHeader(n)
}

// WriteCertificate appends one already-encoded non-pool-registration
// certificate (stake registration/deregistration, delegation, pool
// retirement, ...). Repeatable while the builder is in the
// certificates stage.
func (b *TxHashBuilder) WriteCertificate(encoded []byte) error {
	if b.state != txInCertificates {
		return ErrIllegalTransition
	}
	return b.w.Raw(encoded)
}

// BeginPoolRegistration opens a pool registration certificate
// (cert_type 3) within the certificates array and returns a
// PoolRegistrationBuilder to drive its nested POOL_KEY -> POOL_VRF ->
// POOL_FINANCIALS -> POOL_REWARD_ACCOUNT -> POOL_OWNERS -> POOL_RELAYS
// -> POOL_METADATA sub-machine, with numOwners/numRelays arming the
// OWNERS/RELAYS self-loops.
func (b *TxHashBuilder) BeginPoolRegistration(numOwners, numRelays uint64) (*PoolRegistrationBuilder, error) {
	if b.state != txInCertificates {
		return nil, ErrIllegalTransition
	}
	return newPoolRegistrationBuilder(b.w, numOwners, numRelays)
}

// WriteWithdrawals emits key 5, a map of reward account to amount.
func (b *TxHashBuilder) WriteWithdrawals(encodedMap []byte) error {
	if err := b.step(txInWithdrawals); err != nil {
		return err
	}
	return b.writeKeyedRaw(keyWithdrawals, encodedMap)
}

// WriteAuxDataHash emits key 7, the 32-byte auxiliary data hash computed
// by AuxDataHashBuilder.
func (b *TxHashBuilder) WriteAuxDataHash(hash [32]byte) error {
	if err := b.step(txInAuxData); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(keyAuxDataHash); err != nil {
		return err
	}
	return b.w.WriteBytes(hash[:])
}

// WriteValidityIntervalStart emits key 8.
func (b *TxHashBuilder) WriteValidityIntervalStart(slot uint64) error {
	if err := b.step(txInValidityIntervalStart); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(keyValidityIntervalStart); err != nil {
		return err
	}
	return b.w.WriteUnsigned(slot)
}

// BeginMint opens the mint field (key 9, map of policy id to asset map)
// and returns a MintBuilder to drive its nested asset-group/token
// self-loop sub-machine field by field.
func (b *TxHashBuilder) BeginMint(policyCount uint64) (*MintBuilder, error) {
	if err := b.step(txInMint); err != nil {
		return nil, err
	}
	if err := b.w.WriteUnsigned(keyMint); err != nil {
		return nil, err
	}
	return newMintBuilder(b.w, policyCount)
}

// WriteScriptDataHash emits key 11.
func (b *TxHashBuilder) WriteScriptDataHash(hash [32]byte) error {
	if err := b.step(txInScriptDataHash); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(keyScriptDataHash); err != nil {
		return err
	}
	return b.w.WriteBytes(hash[:])
}

// WriteCollateralInputs emits key 13.
func (b *TxHashBuilder) WriteCollateralInputs(encodedSet []byte) error {
	if err := b.step(txInCollateralInputs); err != nil {
		return err
	}
	return b.writeKeyedRaw(keyCollateralInputs, encodedSet)
}

// WriteRequiredSigners emits key 14.
func (b *TxHashBuilder) WriteRequiredSigners(encodedSet []byte) error {
	if err := b.step(txInRequiredSigners); err != nil {
		return err
	}
	return b.writeKeyedRaw(keyRequiredSigners, encodedSet)
}

// WriteCollateralOutput emits key 16, the Babbage-map-form collateral
// return output.
func (b *TxHashBuilder) WriteCollateralOutput(encoded []byte) error {
	if err := b.step(txInCollateralOutput); err != nil {
		return err
	}
	return b.writeKeyedRaw(keyCollateralReturn, encoded)
}

// WriteTotalCollateral emits key 17.
func (b *TxHashBuilder) WriteTotalCollateral(amount uint64) error {
	if err := b.step(txInTotalCollateral); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(keyTotalCollateral); err != nil {
		return err
	}
	return b.w.WriteUnsigned(amount)
}

// WriteReferenceInputs emits key 18.
func (b *TxHashBuilder) WriteReferenceInputs(encodedSet []byte) error {
	if err := b.step(txInReferenceInputs); err != nil {
		return err
	}
	return b.writeKeyedRaw(keyReferenceInputs, encodedSet)
}

// WriteVotingProcedures emits key 19, a map of voter to {gov_action_id:
// vote}, appending the caller's already-encoded map verbatim.
func (b *TxHashBuilder) WriteVotingProcedures(encodedMap []byte) error {
	if err := b.step(txInVotingProcedures); err != nil {
		return err
	}
	return b.writeKeyedRaw(keyVotingProcedures, encodedMap)
}

// WriteTreasury emits key 21.
func (b *TxHashBuilder) WriteTreasury(amount uint64) error {
	if err := b.step(txInTreasury); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(keyCurrentTreasuryValue); err != nil {
		return err
	}
	return b.w.WriteUnsigned(amount)
}

// WriteDonation emits key 22.
func (b *TxHashBuilder) WriteDonation(amount uint64) error {
	if err := b.step(txInDonation); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(keyDonation); err != nil {
		return err
	}
	return b.w.WriteUnsigned(amount)
}

// Finalize closes the builder and returns the 32-byte transaction body
// hash. The builder must have progressed at least to IN_FEE (every
// transaction has inputs, outputs and a fee); callers enforce which
// later stages were mandatory for this particular transaction shape.
func (b *TxHashBuilder) Finalize() ([32]byte, error) {
	var out [32]byte
	if b.state < txInFee {
		return out, ErrIllegalTransition
	}
	b.state = txFinished
	copy(out[:], b.hash.Sum())
	return out, nil
}
