package policy

import "github.com/study/cardano-hw-signer/pkgs/path"

// accountCategory groups derivation-path kinds that the single-account
// guard treats as belonging to the same family: two paths in the same
// category and account number are consistent, anything else is not.
type accountCategory int

const (
	categoryOther accountCategory = iota
	categoryOrdinary
	categoryMultisig
	categoryByron
)

func categorize(kind path.Kind) accountCategory {
	switch kind {
	case path.KindOrdinaryAccount, path.KindOrdinaryPayment, path.KindOrdinaryStaking,
		path.KindDRepKey, path.KindCommitteeCold, path.KindCommitteeHot:
		return categoryOrdinary
	case path.KindMultisigAccount, path.KindMultisigPayment, path.KindMultisigStaking:
		return categoryMultisig
	case path.KindByronAccount, path.KindByronPayment:
		return categoryByron
	default:
		return categoryOther
	}
}

// accountOf extracts the unhardened account number at path component 2,
// the field every account-scoped Kind shares.
func accountOf(p path.Path) (uint32, bool) {
	if len(p) < 3 {
		return 0, false
	}
	return p[2] - path.HardenedOffset, true
}

// SingleAccountGuard enforces spec.md §4.5's single-account-consistency
// invariant: the first path seen in a session fixes the account and
// category every subsequent path must match.
type SingleAccountGuard struct {
	seen     bool
	account  uint32
	category accountCategory
}

// Check records p if this is the first path seen, or validates it
// against the recorded account/category otherwise. Returns Deny on a
// mismatch, AllowWithoutPrompt otherwise (the guard itself never
// prompts; it only vetoes).
func (g *SingleAccountGuard) Check(p path.Path) Decision {
	kind := path.Classify(p)
	if kind == path.KindInvalid {
		return Deny
	}
	category := categorize(kind)
	if category == categoryOther {
		// Pool-cold, mint, and CIP-36 vote keys are not account-scoped in
		// the sense this guard enforces.
		return AllowWithoutPrompt
	}
	account, ok := accountOf(p)
	if !ok {
		return Deny
	}

	if !g.seen {
		g.seen = true
		g.account = account
		g.category = category
		return AllowWithoutPrompt
	}
	if account != g.account || category != g.category {
		return Deny
	}
	return AllowWithoutPrompt
}
