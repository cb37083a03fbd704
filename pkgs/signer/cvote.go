package signer

import (
	"github.com/study/cardano-hw-signer/pkgs/apdu"
	"github.com/study/cardano-hw-signer/pkgs/cardanokey"
	"github.com/study/cardano-hw-signer/pkgs/hashbuilder"
	"github.com/study/cardano-hw-signer/pkgs/policy"
)

// handleSignCVote drives SIGN_CVOTE's streamed votecast sub-machine: the
// host sends the voter, governance action id, and vote fragments in
// that order (P1 selects which), then a final witness frame carrying
// the signing path. Each of the first three frames forwards its
// already-CBOR-encoded fragment straight into a VotecastHashBuilder,
// mirroring the pre-encoded-fragment discipline SIGN_TX uses for its
// own body items.
func (s *Session) handleSignCVote(f apdu.Frame) (apdu.Response, error) {
	switch f.P1 {
	case apdu.P1CVoteVoter:
		b, err := hashbuilder.NewVotecastHashBuilder()
		if err != nil {
			return apdu.Fail(err), err
		}
		if err := b.WriteVoter(f.Payload); err != nil {
			return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
		}
		s.cvote = b
		s.cvoteConfirmed = false
		return apdu.Success(nil), nil

	case apdu.P1CVoteGovAction:
		if s.cvote == nil {
			return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
		}
		if err := s.cvote.WriteGovActionID(f.Payload); err != nil {
			return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
		}
		return apdu.Success(nil), nil

	case apdu.P1CVoteVote:
		if s.cvote == nil {
			return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
		}
		if err := s.cvote.WriteVote(f.Payload); err != nil {
			return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
		}
		hash, err := s.cvote.Finalize()
		if err != nil {
			return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
		}
		s.cvoteHash = hash
		s.cvoteConfirmed = true
		return apdu.Success(nil), nil

	case apdu.P1CVoteWitness:
		if !s.cvoteConfirmed {
			return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
		}
		p, key, err := s.derivePath(f.Payload)
		if err != nil {
			return apdu.Fail(err), err
		}
		if guardDecision := s.guard.Check(p); guardDecision == policy.Deny {
			return apdu.Fail(apdu.ErrRejectedByPolicy), apdu.ErrRejectedByPolicy
		}
		sig, err := cardanokey.Sign(key, s.cvoteHash[:])
		if err != nil {
			return apdu.Fail(err), err
		}
		s.cvote = nil
		s.cvoteConfirmed = false
		return apdu.Success(sig), nil

	default:
		return apdu.Fail(apdu.ErrInvalidRequestParameters), apdu.ErrInvalidRequestParameters
	}
}
