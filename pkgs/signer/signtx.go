package signer

import (
	"github.com/study/cardano-hw-signer/pkgs/apdu"
	"github.com/study/cardano-hw-signer/pkgs/bufview"
	"github.com/study/cardano-hw-signer/pkgs/cardanokey"
	"github.com/study/cardano-hw-signer/pkgs/hashbuilder"
	"github.com/study/cardano-hw-signer/pkgs/policy"
)

// SIGN_TX sub-operations selected by P1 within a stage whose tx hash
// builder method is repeatable (outputs, certificates, mint). Each
// OUTPUT_SUBMACHINE / POOL_REGISTRATION sub-machine / MINT_SUBMACHINE
// field gets its own P1 so the host can stream one field per APDU
// frame instead of assembling the item off-device (spec.md §4.2).
const (
	p1Header byte = 0x01
	p1Item   byte = 0x02
	p1Single byte = 0x03

	// OUTPUTS stage.
	p1OutputBegin           byte = 0x10
	p1OutputAmount          byte = 0x11
	p1OutputAssetGroupBegin byte = 0x12
	p1OutputAssetGroup      byte = 0x13
	p1OutputToken           byte = 0x14
	p1OutputDatum           byte = 0x15
	p1OutputRefScript       byte = 0x16
	p1OutputFinish          byte = 0x17

	// CERTIFICATES stage: p1Header/p1Item still cover every certificate
	// type except pool registration, which drives its own sub-machine.
	p1PoolBegin         byte = 0x20
	p1PoolKey           byte = 0x21
	p1PoolVRF           byte = 0x22
	p1PoolFinancials    byte = 0x23
	p1PoolRewardAccount byte = 0x24
	p1PoolOwnersBegin   byte = 0x25
	p1PoolOwner         byte = 0x26
	p1PoolRelaysBegin   byte = 0x27
	p1PoolRelay         byte = 0x28
	p1PoolMetadata      byte = 0x29
	p1PoolFinish        byte = 0x2A

	// MINT stage.
	p1MintAssetGroup byte = 0x30
	p1MintToken      byte = 0x31
	p1MintFinish     byte = 0x32
)

// outputFormat values for p1OutputBegin's first payload byte.
const (
	outputFormatLegacy  byte = 0
	outputFormatBabbage byte = 1
)

func fail(err error) (apdu.Response, error) { return apdu.Fail(err), err }

func failBadState() (apdu.Response, error) { return fail(apdu.ErrBadState) }

func failInvalidData() (apdu.Response, error) { return fail(apdu.ErrInvalidData) }

// readLenPrefixed reads a one-byte length followed by that many bytes,
// the wire shape used for variable-length asset names and pool
// metadata URLs.
func readLenPrefixed(v *bufview.View) ([]byte, error) {
	n, err := v.ReadU8()
	if err != nil {
		return nil, err
	}
	return v.ReadBytes(int(n))
}

// stageForP2 maps a SIGN_TX frame's P2 byte to the Stage it drives;
// the host sends one frame per stage (one or more for repeatable
// stages), advancing P2 in the same order as the Stage enum.
func stageForP2(p2 byte) Stage {
	return Stage(int(StageInit) + int(p2))
}

// handleSignTx is the SIGN_TX entry point: P2 selects which stage of
// spec.md §4.1's state machine this frame belongs to, and the session
// enforces that stages only move forward (TxHashBuilder.step already
// enforces the same ordering on its own state; this additional check
// catches backward moves before any host data reaches the builder so a
// malformed host gets BAD_STATE rather than a builder-level error).
func (s *Session) handleSignTx(f apdu.Frame) (apdu.Response, error) {
	stage := stageForP2(f.P2)
	if stage < s.stage {
		return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
	}

	switch stage {
	case StageInit:
		return s.handleInit(f)
	case StageAuxData:
		return s.handleAuxDataHash(f)
	case StageInputs:
		return s.handleInputs(f)
	case StageOutputs:
		return s.handleOutputs(f)
	case StageFee:
		return s.handleFee(f)
	case StageTTL:
		return s.handleTTL(f)
	case StageCertificates:
		return s.handleCertificates(f)
	case StageWithdrawals:
		return s.handleWithdrawals(f)
	case StageValidityIntervalStart:
		return s.handleValidityIntervalStart(f)
	case StageMint:
		return s.handleMint(f)
	case StageScriptDataHash:
		return s.handleScriptDataHash(f)
	case StageCollateralInputs:
		return s.handleCollateralInputs(f)
	case StageRequiredSigners:
		return s.handleRequiredSigners(f)
	case StageCollateralOutput:
		return s.handleCollateralOutput(f)
	case StageTotalCollateral:
		return s.handleTotalCollateral(f)
	case StageReferenceInputs:
		return s.handleReferenceInputs(f)
	case StageVotingProcedures:
		return s.handleVotingProcedures(f)
	case StageTreasury:
		return s.handleTreasury(f)
	case StageDonation:
		return s.handleDonation(f)
	case StageConfirm:
		return s.handleConfirm(f)
	case StageWitnesses:
		return s.handleWitness(f)
	default:
		return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
	}
}

func (s *Session) handleInit(f apdu.Frame) (apdu.Response, error) {
	v := bufview.New(f.Payload)
	networkID, err := v.ReadU8()
	if err != nil {
		return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
	}
	protocolMagic, err := v.ReadU32BE()
	if err != nil {
		return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
	}
	modeByte, err := v.ReadU8()
	if err != nil {
		return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
	}
	bodyItemCount, err := v.ReadU8()
	if err != nil {
		return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
	}
	mintPresent, err := v.ReadU8()
	if err != nil {
		return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
	}
	collateralInputs, err := v.ReadU8()
	if err != nil {
		return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
	}
	scriptDataHash, err := v.ReadU8()
	if err != nil {
		return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
	}

	mode := policy.SigningMode(modeByte)
	decision := policy.ForSignTxInit(policy.InitParams{
		NetworkID:        networkID,
		ProtocolMagic:    protocolMagic,
		Mode:             mode,
		MintPresent:      mintPresent != 0,
		CollateralInputs: collateralInputs != 0,
		ScriptDataHash:   scriptDataHash != 0,
	})
	if err := s.authorize(decision, "sign this transaction?"); err != nil {
		return apdu.Fail(err), err
	}

	tx, err := hashbuilder.NewTxHashBuilder(uint64(bodyItemCount))
	if err != nil {
		return apdu.Fail(err), err
	}

	// INIT always starts a fresh conversation: clear any state left over
	// from a prior SIGN_TX, SIGN_CVOTE, or DERIVE_NATIVE_SCRIPT_HASH
	// conversation before populating this one.
	s.Reset()
	s.mode = mode
	s.networkID = networkID
	s.protocolMagic = protocolMagic
	s.mintPresent = mintPresent != 0
	s.collateralInputs = collateralInputs != 0
	s.scriptDataHash = scriptDataHash != 0
	s.tx = tx
	s.stage = StageInit

	return apdu.Success(nil), nil
}

func (s *Session) requireTx() error {
	if s.tx == nil {
		return apdu.ErrBadState
	}
	return nil
}

func (s *Session) handleAuxDataHash(f apdu.Frame) (apdu.Response, error) {
	if err := s.requireTx(); err != nil {
		return apdu.Fail(err), err
	}
	var hash [32]byte
	if len(f.Payload) != 32 {
		return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
	}
	copy(hash[:], f.Payload)
	if err := s.tx.WriteAuxDataHash(hash); err != nil {
		return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
	}
	s.stage = StageAuxData
	return apdu.Success(nil), nil
}

func (s *Session) handleInputs(f apdu.Frame) (apdu.Response, error) {
	if err := s.requireTx(); err != nil {
		return apdu.Fail(err), err
	}
	if err := s.tx.WriteInputs(f.Payload); err != nil {
		return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
	}
	s.stage = StageInputs
	return apdu.Success(nil), nil
}

// handleOutputs drives OUTPUT_SUBMACHINE: the host opens one output
// with p1OutputBegin, streams its amount (plain or multiasset, with
// asset groups/tokens self-looping), then an optional datum and
// reference script, and closes it with p1OutputFinish before the next
// p1OutputBegin or the stage's terminal frame.
func (s *Session) handleOutputs(f apdu.Frame) (apdu.Response, error) {
	if err := s.requireTx(); err != nil {
		return apdu.Fail(err), err
	}
	v := bufview.New(f.Payload)
	switch f.P1 {
	case p1Header:
		n, err := v.ReadU64BE()
		if err != nil {
			return failInvalidData()
		}
		if err := s.tx.WriteOutputsHeader(n); err != nil {
			return failBadState()
		}

	case p1OutputBegin:
		format, err := v.ReadU8()
		if err != nil {
			return failInvalidData()
		}
		var ob *hashbuilder.OutputBuilder
		switch format {
		case outputFormatLegacy:
			ob, err = s.tx.BeginOutputLegacy()
		case outputFormatBabbage:
			var fieldCount uint8
			fieldCount, err = v.ReadU8()
			if err == nil {
				ob, err = s.tx.BeginOutputBabbage(uint64(fieldCount))
			}
		default:
			return failInvalidData()
		}
		if err != nil {
			return failBadState()
		}
		address := v.ReadAll()
		if err := ob.WriteAddress(address); err != nil {
			return failBadState()
		}
		s.outputBuilder = ob

	case p1OutputAmount:
		if s.outputBuilder == nil {
			return failBadState()
		}
		amount, err := v.ReadU64BE()
		if err != nil {
			return failInvalidData()
		}
		if err := s.outputBuilder.WriteCoinOnly(amount); err != nil {
			return failBadState()
		}

	case p1OutputAssetGroupBegin:
		if s.outputBuilder == nil {
			return failBadState()
		}
		amount, err := v.ReadU64BE()
		if err != nil {
			return failInvalidData()
		}
		groupCount, err := v.ReadU64BE()
		if err != nil {
			return failInvalidData()
		}
		if err := s.outputBuilder.BeginMultiasset(amount, groupCount); err != nil {
			return failBadState()
		}

	case p1OutputAssetGroup:
		if s.outputBuilder == nil {
			return failBadState()
		}
		policyID, err := v.ReadBytes(28)
		if err != nil {
			return failInvalidData()
		}
		tokenCount, err := v.ReadU64BE()
		if err != nil {
			return failInvalidData()
		}
		if err := s.outputBuilder.WriteAssetGroup(policyID, tokenCount); err != nil {
			return failBadState()
		}

	case p1OutputToken:
		if s.outputBuilder == nil {
			return failBadState()
		}
		name, err := readLenPrefixed(v)
		if err != nil {
			return failInvalidData()
		}
		amount, err := v.ReadU64BE()
		if err != nil {
			return failInvalidData()
		}
		if err := s.outputBuilder.WriteToken(name, amount); err != nil {
			return failBadState()
		}

	case p1OutputDatum:
		if s.outputBuilder == nil {
			return failBadState()
		}
		if err := s.outputBuilder.WriteDatum(f.Payload); err != nil {
			return failBadState()
		}

	case p1OutputRefScript:
		if s.outputBuilder == nil {
			return failBadState()
		}
		if err := s.outputBuilder.WriteRefScript(f.Payload); err != nil {
			return failBadState()
		}

	case p1OutputFinish:
		if s.outputBuilder == nil {
			return failBadState()
		}
		if err := s.outputBuilder.Finish(); err != nil {
			return failBadState()
		}
		s.outputBuilder = nil

	default:
		return apdu.Fail(apdu.ErrInvalidRequestParameters), apdu.ErrInvalidRequestParameters
	}
	s.stage = StageOutputs
	return apdu.Success(nil), nil
}

func (s *Session) handleFee(f apdu.Frame) (apdu.Response, error) {
	if err := s.requireTx(); err != nil {
		return apdu.Fail(err), err
	}
	v := bufview.New(f.Payload)
	fee, err := v.ReadU64BE()
	if err != nil {
		return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
	}
	if err := s.tx.WriteFee(fee); err != nil {
		return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
	}
	s.stage = StageFee
	return apdu.Success(nil), nil
}

func (s *Session) handleTTL(f apdu.Frame) (apdu.Response, error) {
	if err := s.requireTx(); err != nil {
		return apdu.Fail(err), err
	}
	v := bufview.New(f.Payload)
	ttl, err := v.ReadU64BE()
	if err != nil {
		return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
	}
	if err := s.tx.WriteTTL(ttl); err != nil {
		return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
	}
	s.stage = StageTTL
	return apdu.Success(nil), nil
}

// handleCertificates drives the certificates array. Every certificate
// type except pool registration arrives as one opaque p1Item blob;
// pool registration instead opens its own nested
// POOL_KEY->POOL_VRF->POOL_FINANCIALS->POOL_REWARD_ACCOUNT->
// POOL_OWNERS->POOL_RELAYS->POOL_METADATA sub-machine, with owners and
// relays self-looping until their declared counts are exhausted.
func (s *Session) handleCertificates(f apdu.Frame) (apdu.Response, error) {
	if err := s.requireTx(); err != nil {
		return apdu.Fail(err), err
	}
	v := bufview.New(f.Payload)
	switch f.P1 {
	case p1Header:
		n, err := v.ReadU64BE()
		if err != nil {
			return failInvalidData()
		}
		if err := s.tx.WriteCertificatesHeader(n); err != nil {
			return failBadState()
		}

	case p1Item:
		if err := s.tx.WriteCertificate(f.Payload); err != nil {
			return failBadState()
		}

	case p1PoolBegin:
		numOwners, err := v.ReadU64BE()
		if err != nil {
			return failInvalidData()
		}
		numRelays, err := v.ReadU64BE()
		if err != nil {
			return failInvalidData()
		}
		pr, err := s.tx.BeginPoolRegistration(numOwners, numRelays)
		if err != nil {
			return failBadState()
		}
		s.poolReg = pr

	case p1PoolKey:
		if s.poolReg == nil {
			return failBadState()
		}
		keyHash, err := v.ReadBytes(28)
		if err != nil {
			return failInvalidData()
		}
		var h [28]byte
		copy(h[:], keyHash)
		if err := s.poolReg.WriteKey(h); err != nil {
			return failBadState()
		}

	case p1PoolVRF:
		if s.poolReg == nil {
			return failBadState()
		}
		vrfHash, err := v.ReadBytes(32)
		if err != nil {
			return failInvalidData()
		}
		var h [32]byte
		copy(h[:], vrfHash)
		if err := s.poolReg.WriteVRF(h); err != nil {
			return failBadState()
		}

	case p1PoolFinancials:
		if s.poolReg == nil {
			return failBadState()
		}
		pledge, err := v.ReadU64BE()
		if err != nil {
			return failInvalidData()
		}
		cost, err := v.ReadU64BE()
		if err != nil {
			return failInvalidData()
		}
		marginNum, err := v.ReadU64BE()
		if err != nil {
			return failInvalidData()
		}
		marginDenom, err := v.ReadU64BE()
		if err != nil {
			return failInvalidData()
		}
		if err := s.poolReg.WriteFinancials(pledge, cost, marginNum, marginDenom); err != nil {
			return failBadState()
		}

	case p1PoolRewardAccount:
		if s.poolReg == nil {
			return failBadState()
		}
		if err := s.poolReg.WriteRewardAccount(f.Payload); err != nil {
			return failBadState()
		}

	case p1PoolOwnersBegin:
		if s.poolReg == nil {
			return failBadState()
		}
		if err := s.poolReg.BeginOwners(); err != nil {
			return failBadState()
		}

	case p1PoolOwner:
		if s.poolReg == nil {
			return failBadState()
		}
		ownerHash, err := v.ReadBytes(28)
		if err != nil {
			return failInvalidData()
		}
		var h [28]byte
		copy(h[:], ownerHash)
		if err := s.poolReg.WriteOwner(h); err != nil {
			return failBadState()
		}

	case p1PoolRelaysBegin:
		if s.poolReg == nil {
			return failBadState()
		}
		if err := s.poolReg.BeginRelays(); err != nil {
			return failBadState()
		}

	case p1PoolRelay:
		if s.poolReg == nil {
			return failBadState()
		}
		if err := s.poolReg.WriteRelay(f.Payload); err != nil {
			return failBadState()
		}

	case p1PoolMetadata:
		if s.poolReg == nil {
			return failBadState()
		}
		hasMetadata, err := v.ReadU8()
		if err != nil {
			return failInvalidData()
		}
		if hasMetadata == 0 {
			if err := s.poolReg.WriteNoMetadata(); err != nil {
				return failBadState()
			}
			break
		}
		url, err := readLenPrefixed(v)
		if err != nil {
			return failInvalidData()
		}
		metadataHash, err := v.ReadBytes(32)
		if err != nil {
			return failInvalidData()
		}
		if err := s.poolReg.WriteMetadata(string(url), metadataHash); err != nil {
			return failBadState()
		}

	case p1PoolFinish:
		if s.poolReg == nil {
			return failBadState()
		}
		if err := s.poolReg.Finish(); err != nil {
			return failBadState()
		}
		s.poolReg = nil

	default:
		return apdu.Fail(apdu.ErrInvalidRequestParameters), apdu.ErrInvalidRequestParameters
	}
	s.stage = StageCertificates
	return apdu.Success(nil), nil
}

func (s *Session) handleWithdrawals(f apdu.Frame) (apdu.Response, error) {
	if err := s.requireTx(); err != nil {
		return apdu.Fail(err), err
	}
	if err := s.tx.WriteWithdrawals(f.Payload); err != nil {
		return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
	}
	s.stage = StageWithdrawals
	return apdu.Success(nil), nil
}

func (s *Session) handleValidityIntervalStart(f apdu.Frame) (apdu.Response, error) {
	if err := s.requireTx(); err != nil {
		return apdu.Fail(err), err
	}
	v := bufview.New(f.Payload)
	slot, err := v.ReadU64BE()
	if err != nil {
		return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
	}
	if err := s.tx.WriteValidityIntervalStart(slot); err != nil {
		return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
	}
	s.stage = StageValidityIntervalStart
	return apdu.Success(nil), nil
}

// handleMint drives MINT_SUBMACHINE: p1Header opens the mint map and
// arms the MintBuilder, then p1MintAssetGroup/p1MintToken self-loop
// over each policy's asset groups and signed token amounts until
// p1MintFinish closes the field.
func (s *Session) handleMint(f apdu.Frame) (apdu.Response, error) {
	if err := s.requireTx(); err != nil {
		return apdu.Fail(err), err
	}
	v := bufview.New(f.Payload)
	switch f.P1 {
	case p1Header:
		n, err := v.ReadU64BE()
		if err != nil {
			return failInvalidData()
		}
		mb, err := s.tx.BeginMint(n)
		if err != nil {
			return failBadState()
		}
		s.mintBuilder = mb

	case p1MintAssetGroup:
		if s.mintBuilder == nil {
			return failBadState()
		}
		policyID, err := v.ReadBytes(28)
		if err != nil {
			return failInvalidData()
		}
		tokenCount, err := v.ReadU64BE()
		if err != nil {
			return failInvalidData()
		}
		if err := s.mintBuilder.WriteAssetGroup(policyID, tokenCount); err != nil {
			return failBadState()
		}

	case p1MintToken:
		if s.mintBuilder == nil {
			return failBadState()
		}
		name, err := readLenPrefixed(v)
		if err != nil {
			return failInvalidData()
		}
		rawAmount, err := v.ReadU64BE()
		if err != nil {
			return failInvalidData()
		}
		if err := s.mintBuilder.WriteToken(name, int64(rawAmount)); err != nil {
			return failBadState()
		}

	case p1MintFinish:
		if s.mintBuilder == nil {
			return failBadState()
		}
		if err := s.mintBuilder.Finish(); err != nil {
			return failBadState()
		}
		s.mintBuilder = nil

	default:
		return apdu.Fail(apdu.ErrInvalidRequestParameters), apdu.ErrInvalidRequestParameters
	}
	s.stage = StageMint
	return apdu.Success(nil), nil
}

func (s *Session) handleScriptDataHash(f apdu.Frame) (apdu.Response, error) {
	if err := s.requireTx(); err != nil {
		return apdu.Fail(err), err
	}
	var hash [32]byte
	if len(f.Payload) != 32 {
		return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
	}
	copy(hash[:], f.Payload)
	if err := s.tx.WriteScriptDataHash(hash); err != nil {
		return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
	}
	s.stage = StageScriptDataHash
	return apdu.Success(nil), nil
}

func (s *Session) handleCollateralInputs(f apdu.Frame) (apdu.Response, error) {
	if err := s.requireTx(); err != nil {
		return apdu.Fail(err), err
	}
	if err := s.tx.WriteCollateralInputs(f.Payload); err != nil {
		return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
	}
	s.stage = StageCollateralInputs
	return apdu.Success(nil), nil
}

func (s *Session) handleRequiredSigners(f apdu.Frame) (apdu.Response, error) {
	if err := s.requireTx(); err != nil {
		return apdu.Fail(err), err
	}
	if err := s.tx.WriteRequiredSigners(f.Payload); err != nil {
		return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
	}
	s.stage = StageRequiredSigners
	return apdu.Success(nil), nil
}

func (s *Session) handleCollateralOutput(f apdu.Frame) (apdu.Response, error) {
	if err := s.requireTx(); err != nil {
		return apdu.Fail(err), err
	}
	if err := s.tx.WriteCollateralOutput(f.Payload); err != nil {
		return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
	}
	s.stage = StageCollateralOutput
	return apdu.Success(nil), nil
}

func (s *Session) handleTotalCollateral(f apdu.Frame) (apdu.Response, error) {
	if err := s.requireTx(); err != nil {
		return apdu.Fail(err), err
	}
	v := bufview.New(f.Payload)
	amount, err := v.ReadU64BE()
	if err != nil {
		return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
	}
	if err := s.tx.WriteTotalCollateral(amount); err != nil {
		return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
	}
	s.stage = StageTotalCollateral
	return apdu.Success(nil), nil
}

func (s *Session) handleReferenceInputs(f apdu.Frame) (apdu.Response, error) {
	if err := s.requireTx(); err != nil {
		return apdu.Fail(err), err
	}
	if err := s.tx.WriteReferenceInputs(f.Payload); err != nil {
		return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
	}
	s.stage = StageReferenceInputs
	return apdu.Success(nil), nil
}

func (s *Session) handleVotingProcedures(f apdu.Frame) (apdu.Response, error) {
	if err := s.requireTx(); err != nil {
		return apdu.Fail(err), err
	}
	if err := s.tx.WriteVotingProcedures(f.Payload); err != nil {
		return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
	}
	s.stage = StageVotingProcedures
	return apdu.Success(nil), nil
}

func (s *Session) handleTreasury(f apdu.Frame) (apdu.Response, error) {
	if err := s.requireTx(); err != nil {
		return apdu.Fail(err), err
	}
	v := bufview.New(f.Payload)
	amount, err := v.ReadU64BE()
	if err != nil {
		return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
	}
	if err := s.tx.WriteTreasury(amount); err != nil {
		return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
	}
	s.stage = StageTreasury
	return apdu.Success(nil), nil
}

func (s *Session) handleDonation(f apdu.Frame) (apdu.Response, error) {
	if err := s.requireTx(); err != nil {
		return apdu.Fail(err), err
	}
	v := bufview.New(f.Payload)
	amount, err := v.ReadU64BE()
	if err != nil {
		return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
	}
	if err := s.tx.WriteDonation(amount); err != nil {
		return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
	}
	s.stage = StageDonation
	return apdu.Success(nil), nil
}

// handleConfirm finalizes the transaction body hash. From here only
// WITNESSES frames are legal; any earlier-stage frame now fails the
// forward-only P2 check in handleSignTx.
func (s *Session) handleConfirm(f apdu.Frame) (apdu.Response, error) {
	if err := s.requireTx(); err != nil {
		return apdu.Fail(err), err
	}
	hash, err := s.tx.Finalize()
	if err != nil {
		return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
	}
	s.txHash = hash
	s.confirmed = true
	s.stage = StageConfirm
	return apdu.Success(hash[:]), nil
}

// handleWitness derives the key named by the path in the payload,
// checks it against the single-account guard and ForWitness, and
// returns an extended-key EdDSA signature over the finalized body
// hash. hashOnlyStakeCredential is carried as the payload's final byte:
// the host sets it when the witness request targets a bare stake
// credential hash rather than a derivable path.
func (s *Session) handleWitness(f apdu.Frame) (apdu.Response, error) {
	if !s.confirmed {
		return apdu.Fail(apdu.ErrBadState), apdu.ErrBadState
	}
	if len(f.Payload) == 0 {
		return apdu.Fail(apdu.ErrInvalidData), apdu.ErrInvalidData
	}
	hashOnlyStakeCredential := f.Payload[len(f.Payload)-1] != 0
	p, key, err := s.derivePath(f.Payload[:len(f.Payload)-1])
	if err != nil {
		return apdu.Fail(err), err
	}

	if guardDecision := s.guard.Check(p); guardDecision == policy.Deny {
		return apdu.Fail(apdu.ErrRejectedByPolicy), apdu.ErrRejectedByPolicy
	}
	decision := policy.ForWitness(s.mode, p, s.mintPresent, hashOnlyStakeCredential)
	if err := s.authorize(decision, "witness with "+p.String()+"?"); err != nil {
		return apdu.Fail(err), err
	}

	sig, err := cardanokey.Sign(key, s.txHash[:])
	if err != nil {
		return apdu.Fail(err), err
	}
	s.stage = StageWitnesses
	return apdu.Success(sig), nil
}
