// Package signer implements the top-level signing-session state
// machine: the sequence of APDU frames a host sends to sign a
// transaction, an operational certificate, a CIP-36 vote cast, or a
// CIP-8 message (spec.md §4.1).
package signer

import (
	"github.com/study/cardano-hw-signer/pkgs/apdu"
	"github.com/study/cardano-hw-signer/pkgs/bufview"
	"github.com/study/cardano-hw-signer/pkgs/cardanokey"
	"github.com/study/cardano-hw-signer/pkgs/hashbuilder"
	"github.com/study/cardano-hw-signer/pkgs/path"
	"github.com/study/cardano-hw-signer/pkgs/policy"
)

// Stage is the signing session's linear state, spanning every APDU
// instruction type the device accepts (spec.md §4.1's stage ordering,
// widened to also cover the non-SIGN_TX instructions: idle, address
// derivation, native script hashing, operational certificate, vote
// cast and message signing each get their own stage so HandleAPDU has
// one place to check "is this instruction legal right now").
type Stage int

const (
	StageIdle Stage = iota
	StageInit
	StageAuxData
	StageInputs
	StageOutputs
	StageFee
	StageTTL
	StageCertificates
	StageWithdrawals
	StageValidityIntervalStart
	StageMint
	StageScriptDataHash
	StageCollateralInputs
	StageRequiredSigners
	StageCollateralOutput
	StageTotalCollateral
	StageReferenceInputs
	StageVotingProcedures
	StageTreasury
	StageDonation
	StageConfirm
	StageWitnesses
)

// Session holds all state for one signing conversation: the current
// stage, the chosen signing mode, the open hash builders, and the
// single-account guard. One Session handles exactly one request from
// INIT through its terminal WITNESSES (or the equivalent single-shot
// flow for SIGN_OP_CERT/SIGN_CVOTE/SIGN_MSG).
type Session struct {
	stage Stage
	mode  policy.SigningMode

	networkID     byte
	protocolMagic uint32

	root *cardanokey.ExtendedKey

	tx    *hashbuilder.TxHashBuilder
	guard policy.SingleAccountGuard

	// Sub-builders for the three body items whose encoding is driven
	// field by field across several SIGN_TX frames rather than handed
	// over as one opaque blob: the output currently being assembled, the
	// pool registration certificate currently being assembled, and the
	// mint field currently being assembled. Each is non-nil only while
	// its stage's sub-machine is mid-flight.
	outputBuilder *hashbuilder.OutputBuilder
	poolReg       *hashbuilder.PoolRegistrationBuilder
	mintBuilder   *hashbuilder.MintBuilder

	mintPresent      bool
	collateralInputs bool
	scriptDataHash   bool

	txHash    [32]byte
	confirmed bool

	nativeScript *hashbuilder.NativeScriptHashBuilder

	cvote          *hashbuilder.VotecastHashBuilder
	cvoteHash      [32]byte
	cvoteConfirmed bool

	// UserDecision stands in for the device's confirm/reject UI: called
	// with a human-readable prompt whenever a policy decision requires
	// explicit confirmation, it reports whether the user approved. A nil
	// value auto-approves, matching a headless harness driving the
	// session directly rather than through physical buttons.
	UserDecision func(prompt string) bool
}

// Reset clears all per-conversation state, returning to idle bound to
// the same root key. HandleAPDU calls this whenever a handler returns an
// error (including a policy or user reject), and SIGN_TX's INIT calls it
// before populating a new conversation, so no partially-built hash or
// guard state from a failed conversation survives into the next
// instruction sequence. A conversation that ends in success keeps its
// state until the next INIT or error.
func (s *Session) Reset() {
	*s = Session{root: s.root, stage: StageIdle, UserDecision: s.UserDecision}
}

// authorize turns a policy Decision into an error, soliciting the user
// through UserDecision when the decision demands explicit confirmation.
// Only Deny and a user rejection stop the session; ShowBeforeResponse and
// AllowWithoutPrompt never block.
func (s *Session) authorize(decision policy.Decision, prompt string) error {
	if decision == policy.Deny {
		return apdu.ErrRejectedByPolicy
	}
	needsConfirm := decision == policy.PromptBeforeResponse || decision == policy.PromptWarnUnusual
	if needsConfirm && s.UserDecision != nil && !s.UserDecision(prompt) {
		return apdu.ErrRejectedByUser
	}
	return nil
}

// NewSession starts an idle session bound to a root extended key (the
// device's unlocked seed-derived key, supplied by the host's key store
// at boot — never persisted by this package).
func NewSession(root *cardanokey.ExtendedKey) *Session {
	return &Session{stage: StageIdle, root: root}
}

// HandleAPDU dispatches one request frame and returns the response to
// send back, or an error that the caller (the device's main loop) is
// expected to translate with apdu.ToStatusWord if it doesn't already
// carry an apdu.Response. Any error return also resets the session.
func (s *Session) HandleAPDU(f apdu.Frame) (resp apdu.Response, err error) {
	defer func() {
		if err != nil {
			s.Reset()
		}
	}()
	switch f.Ins {
	case apdu.InsGetVersion:
		return apdu.Success([]byte{1, 0, 0, 0}), nil
	case apdu.InsGetSerial:
		return apdu.Success(make([]byte, 7)), nil
	case apdu.InsGetPublicKeys:
		return s.handleGetPublicKeys(f)
	case apdu.InsDeriveAddress:
		return s.handleDeriveAddress(f)
	case apdu.InsDeriveNativeScriptHash:
		return s.handleDeriveNativeScriptHash(f)
	case apdu.InsSignTx:
		return s.handleSignTx(f)
	case apdu.InsSignOpCert:
		return s.handleSignOpCert(f)
	case apdu.InsSignCVote:
		return s.handleSignCVote(f)
	case apdu.InsSignMsg:
		return s.handleSignMsg(f)
	case apdu.InsRunTests:
		return apdu.Fail(apdu.ErrNotImplemented), apdu.ErrNotImplemented
	default:
		return apdu.Fail(apdu.ErrUnknownInstruction), apdu.ErrUnknownInstruction
	}
}

// derivePath reads a wire-format path from payload and derives its key.
func (s *Session) derivePath(payload []byte) (path.Path, *cardanokey.ExtendedKey, error) {
	v := bufview.New(payload)
	p, err := path.Parse(v)
	if err != nil {
		return nil, nil, apdu.ErrInvalidPath
	}
	key, err := cardanokey.DerivePath(s.root, p)
	if err != nil {
		return nil, nil, err
	}
	return p, key, nil
}

func (s *Session) handleGetPublicKeys(f apdu.Frame) (apdu.Response, error) {
	p, key, err := s.derivePath(f.Payload)
	if err != nil {
		return apdu.Fail(err), err
	}
	if guardDecision := s.guard.Check(p); guardDecision == policy.Deny {
		return apdu.Fail(apdu.ErrRejectedByPolicy), apdu.ErrRejectedByPolicy
	}
	pub, err := cardanokey.PublicKeyBytes(key)
	if err != nil {
		return apdu.Fail(err), err
	}
	out := make([]byte, 0, len(pub)+len(key.ChainCode))
	out = append(out, pub...)
	out = append(out, key.ChainCode[:]...)
	return apdu.Success(out), nil
}
