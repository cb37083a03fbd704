package policy

import "github.com/study/cardano-hw-signer/pkgs/path"

// ForWitness decides whether to sign with the witness key at p under
// the given mode, without prompting, with a plain display, or denied
// outright (spec.md §4.5's "witness" rule). mintPresent marks whether
// the transaction being signed declares a mint body item, which forces
// mint-key witnesses to be shown even in otherwise-silent paths.
// hashOnlyStakeCredential marks a witness request made against a bare
// stake credential hash rather than a derivable path; ordinary mode
// requires the latter.
func ForWitness(mode SigningMode, p path.Path, mintPresent, hashOnlyStakeCredential bool) Decision {
	kind := path.Classify(p)
	if kind == path.KindInvalid {
		return Deny
	}

	if mode == ModePlutus {
		return PromptBeforeResponse
	}

	switch mode {
	case ModeOrdinary:
		switch kind {
		case path.KindMultisigAccount, path.KindMultisigPayment, path.KindMultisigStaking:
			return Deny
		}
		if kind == path.KindOrdinaryStaking && hashOnlyStakeCredential {
			return Deny
		}
	case ModeMultisig:
		switch kind {
		case path.KindOrdinaryAccount, path.KindOrdinaryPayment, path.KindOrdinaryStaking,
			path.KindPoolCold, path.KindDRepKey, path.KindCommitteeCold, path.KindCommitteeHot:
			return Deny
		}
	}

	if kind == path.KindMintKey && mintPresent {
		return ShowBeforeResponse
	}
	if !path.IsReasonable(p) {
		return PromptWarnUnusual
	}
	return AllowWithoutPrompt
}
