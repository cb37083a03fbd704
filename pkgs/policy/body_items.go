package policy

// This file covers the remaining signable-data categories spec.md §4.5
// calls out by name (outputs, certificates, withdrawals) plus the body
// items the "~40 functions" scale note asks every stage to have its own
// named policy for (mint, collateral, required signers, reference
// inputs, voting procedures, treasury/donation, CIP-36 fields). Each
// function is intentionally small: a pure mapping from already-resolved
// facts about one item to a Decision.

// AddressKind distinguishes where an output or change address's
// credential came from, for ForOutput's "third-party vs change" check.
type AddressKind int

const (
	AddressThirdParty AddressKind = iota
	AddressChangeByPath
)

// OutputParams bundles the facts ForOutput needs about one transaction
// output.
type OutputParams struct {
	Address            AddressKind
	IsPlutusScript      bool
	HasDatumHash        bool
	IsStandardChangePath bool
}

// ForOutput is spec.md §4.5's "third-party output address" /
// "change output by path" rule.
func ForOutput(mode SigningMode, p OutputParams) Decision {
	if p.Address == AddressThirdParty {
		if p.IsPlutusScript && !p.HasDatumHash {
			return PromptWarnUnusual
		}
		return ShowBeforeResponse
	}

	// Change output.
	if mode == ModeOrdinary && p.IsStandardChangePath {
		return AllowWithoutPrompt
	}
	return ShowBeforeResponse
}

// CertificateKind identifies the certificate type ForCertificate is
// judging.
type CertificateKind int

const (
	CertStakeRegistration CertificateKind = iota
	CertStakeDeregistration
	CertStakeDelegation
	CertPoolRegistration
	CertPoolRetirement
	CertVoteDelegation
	CertDRepRegistration
	CertCommitteeAuthorization
)

// ForCertificate decides how to present a certificate. Pool
// registration is denied in multisig mode; otherwise pool registration
// and pool retirement are a PROMPT since they commit funds and rewards
// to a pool's infrastructure; every other certificate is a plain SHOW.
func ForCertificate(mode SigningMode, kind CertificateKind) Decision {
	if mode == ModeMultisig && kind == CertPoolRegistration {
		return Deny
	}
	switch kind {
	case CertPoolRegistration, CertPoolRetirement:
		return PromptBeforeResponse
	default:
		return ShowBeforeResponse
	}
}

// ForWithdrawal is always shown: a withdrawal moves accumulated rewards
// into the transaction's balance and is never silent.
func ForWithdrawal() Decision {
	return ShowBeforeResponse
}

// ForMint decides how to present a mint/burn entry. Minting under a
// path outside the current single-account scope is handled by the
// guard; this function covers the amount/direction itself, which is
// always shown so the user can see what is being created or destroyed.
func ForMint() Decision {
	return ShowBeforeResponse
}

// ForCollateral covers both collateral inputs and the collateral
// return output; Plutus mode is the only mode that uses them, and
// ForSignTxInit already warns if they are missing, so by the time
// an individual item arrives here it is always at least shown.
func ForCollateral() Decision {
	return ShowBeforeResponse
}

// ForRequiredSigner is always shown: it names a key whose witness the
// transaction requires without itself appearing in an input.
func ForRequiredSigner() Decision {
	return ShowBeforeResponse
}

// ForReferenceInput is allowed silently: a reference input supplies a
// script or inline datum without being spent, and carries no value
// transfer to evaluate.
func ForReferenceInput() Decision {
	return AllowWithoutPrompt
}

// ForVotingProcedure always prompts for explicit confirmation: a cast
// vote is an irreversible on-chain action.
func ForVotingProcedure() Decision {
	return PromptBeforeResponse
}

// ForTreasuryOrDonation covers both the current_treasury_value sanity
// check and a treasury donation; both move funds the signer does not
// own and are always shown.
func ForTreasuryOrDonation() Decision {
	return ShowBeforeResponse
}

// CIP36FieldKind identifies which CIP-36 vote registration field
// ForCIP36Field is judging.
type CIP36FieldKind int

const (
	CIP36VoteKeyOrDelegations CIP36FieldKind = iota
	CIP36StakingKey
	CIP36PaymentAddress
	CIP36Nonce
	CIP36VotingPurpose
)

// ForCIP36Field decides how to present one CIP-36 registration payload
// field. The voting key/delegation set and payment address are the two
// facts that determine where rewards and voting power end up, so both
// require explicit confirmation; the rest are shown for the user's
// awareness.
func ForCIP36Field(kind CIP36FieldKind) Decision {
	switch kind {
	case CIP36VoteKeyOrDelegations, CIP36PaymentAddress:
		return PromptBeforeResponse
	default:
		return ShowBeforeResponse
	}
}
