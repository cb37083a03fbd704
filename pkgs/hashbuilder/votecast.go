package hashbuilder

import (
	"github.com/study/cardano-hw-signer/pkgs/blakehash"
	"github.com/study/cardano-hw-signer/pkgs/cbor"
)

// VotecastHashBuilder hashes one voting-procedures entry: a fixed-shape
// [voter, gov_action_id, vote] payload, witnessed the same way the other
// three builders are (single BLAKE2b-256 context, linear state, no
// re-buffering). It is named in spec.md's component diagram but, unlike
// the tx/aux-data/native-script builders, never detailed in §4 — this
// builder supplements that gap for the VOTING_PROCEDURES signing stage.
type VotecastHashBuilder struct {
	hash  *blakehash.Context
	w     *cbor.Writer
	state int // 0=init, 1=voter written, 2=gov action written, 3=vote written
}

// NewVotecastHashBuilder starts the context and opens the fixed 3-element
// array.
func NewVotecastHashBuilder() (*VotecastHashBuilder, error) {
	ctx, err := blakehash.New256()
	if err != nil {
		return nil, err
	}
	w := cbor.NewWriter(ctx)
	if err := w.WriteArrayHeader(3); err != nil {
		return nil, err
	}
	return &VotecastHashBuilder{hash: ctx, w: w}, nil
}

// WriteVoter appends the already-encoded voter credential (a
// CIP-1694 voter: constitutional committee/DRep/stake-pool role tag plus
// a key or script hash).
func (b *VotecastHashBuilder) WriteVoter(encoded []byte) error {
	if b.state != 0 {
		return ErrIllegalTransition
	}
	b.state = 1
	return b.w.Raw(encoded)
}

// WriteGovActionID appends the already-encoded governance action id
// (transaction hash + index pair).
func (b *VotecastHashBuilder) WriteGovActionID(encoded []byte) error {
	if b.state != 1 {
		return ErrIllegalTransition
	}
	b.state = 2
	return b.w.Raw(encoded)
}

// WriteVote appends the already-encoded vote (YES/NO/ABSTAIN, plus an
// optional anchor).
func (b *VotecastHashBuilder) WriteVote(encoded []byte) error {
	if b.state != 2 {
		return ErrIllegalTransition
	}
	b.state = 3
	return b.w.Raw(encoded)
}

// Finalize requires all three fields written and returns the 32-byte hash.
func (b *VotecastHashBuilder) Finalize() ([32]byte, error) {
	var out [32]byte
	if b.state != 3 {
		return out, ErrIllegalTransition
	}
	copy(out[:], b.hash.Sum())
	return out, nil
}
