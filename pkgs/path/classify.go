package path

// Kind identifies the purpose a derivation path was built for, per
// spec.md §3.1's classification table.
type Kind int

const (
	KindInvalid Kind = iota
	KindByronAccount
	KindByronPayment
	KindOrdinaryAccount
	KindOrdinaryPayment
	KindOrdinaryStaking
	KindMultisigAccount
	KindMultisigPayment
	KindMultisigStaking
	KindDRepKey
	KindCommitteeCold
	KindCommitteeHot
	KindMintKey
	KindPoolCold
	KindCIP36VoteAccount
	KindCIP36VoteKey
)

// String names a Kind for diagnostics and UI text.
func (k Kind) String() string {
	switch k {
	case KindByronAccount:
		return "Byron account"
	case KindByronPayment:
		return "Byron payment"
	case KindOrdinaryAccount:
		return "ordinary account"
	case KindOrdinaryPayment:
		return "ordinary payment"
	case KindOrdinaryStaking:
		return "ordinary staking"
	case KindMultisigAccount:
		return "multisig account"
	case KindMultisigPayment:
		return "multisig payment"
	case KindMultisigStaking:
		return "multisig staking"
	case KindDRepKey:
		return "DRep key"
	case KindCommitteeCold:
		return "committee cold key"
	case KindCommitteeHot:
		return "committee hot key"
	case KindMintKey:
		return "mint key"
	case KindPoolCold:
		return "pool cold key"
	case KindCIP36VoteAccount:
		return "CIP-36 vote account"
	case KindCIP36VoteKey:
		return "CIP-36 vote key"
	default:
		return "invalid"
	}
}

const (
	purposeByron   = 44
	purposeShelley = 1852
	purposeMultisig = 1854
	purposeMint    = 1855
	purposePoolCold = 1853
	purposeCVote   = 1694

	coinTypeADA = 1815

	roleExternal = 0
	roleInternal = 1
	roleStaking  = 2
	roleDRep     = 3
	roleCCCold   = 4
	roleCCHot    = 5
)

// Classify determines the Kind of p from its purpose/coin-type prefix and
// component count. Classification is a pure function of the indices and
// is stable under re-parsing (P5).
func Classify(p Path) Kind {
	if len(p) < 3 {
		return KindInvalid
	}
	purpose, _ := p.at(0)
	coin, _ := p.at(1)
	account, _ := p.at(2)

	if !IsHardened(purpose) || !IsHardened(coin) || !IsHardened(account) {
		return KindInvalid
	}
	if unhardened(coin) != coinTypeADA {
		return KindInvalid
	}

	switch unhardened(purpose) {
	case purposeByron:
		return classifyByron(p)
	case purposeShelley:
		return classifyShelley(p)
	case purposeMultisig:
		return classifyMultisig(p)
	case purposeMint:
		return classifyMint(p)
	case purposePoolCold:
		return classifyPoolCold(p)
	case purposeCVote:
		return classifyCVote(p)
	default:
		return KindInvalid
	}
}

func classifyByron(p Path) Kind {
	if len(p) == 3 {
		return KindByronAccount
	}
	if len(p) == 5 && !IsHardened(p[3]) && !IsHardened(p[4]) {
		return KindByronPayment
	}
	return KindInvalid
}

func classifyShelley(p Path) Kind {
	if len(p) == 3 {
		return KindOrdinaryAccount
	}
	if len(p) != 5 {
		return KindInvalid
	}
	role, index := p[3], p[4]
	if IsHardened(role) || IsHardened(index) {
		return KindInvalid
	}
	switch role {
	case roleExternal, roleInternal:
		return KindOrdinaryPayment
	case roleStaking:
		if index == 0 {
			return KindOrdinaryStaking
		}
		return KindInvalid
	case roleDRep:
		return KindDRepKey
	case roleCCCold:
		return KindCommitteeCold
	case roleCCHot:
		return KindCommitteeHot
	default:
		return KindInvalid
	}
}

func classifyMultisig(p Path) Kind {
	if len(p) == 3 {
		return KindMultisigAccount
	}
	if len(p) != 5 {
		return KindInvalid
	}
	role, index := p[3], p[4]
	if IsHardened(role) || IsHardened(index) {
		return KindInvalid
	}
	switch role {
	case roleExternal, roleInternal:
		return KindMultisigPayment
	case roleStaking:
		return KindMultisigStaking
	default:
		return KindInvalid
	}
}

func classifyMint(p Path) Kind {
	if len(p) != 3 {
		return KindInvalid
	}
	if !IsHardened(p[2]) {
		return KindInvalid
	}
	return KindMintKey
}

func classifyPoolCold(p Path) Kind {
	if len(p) != 4 {
		return KindInvalid
	}
	if unhardened(p[2]) != 0 || !IsHardened(p[3]) {
		return KindInvalid
	}
	return KindPoolCold
}

func classifyCVote(p Path) Kind {
	if len(p) == 3 {
		return KindCIP36VoteAccount
	}
	if len(p) != 5 {
		return KindInvalid
	}
	role, index := p[3], p[4]
	if IsHardened(role) || IsHardened(index) {
		return KindInvalid
	}
	switch role {
	case 0, 1, 2:
		return KindCIP36VoteKey
	default:
		return KindInvalid
	}
}

// Reasonable domain limits (spec.md §3.1): account <= 100, address index
// <= 1,000,000, pool cold key index <= 100. Paths outside these limits are
// not rejected outright but require an explicit user warning
// (PROMPT_WARN_UNUSUAL) from the policy engine.
const (
	MaxReasonableAccount    = 100
	MaxReasonableIndex      = 1000000
	MaxReasonablePoolColdIx = 100
)

// IsReasonable reports whether every hardened index's unhardened value is
// within the fixed domain limit for its position, and whether any
// non-hardened address index is within range.
func IsReasonable(p Path) bool {
	kind := Classify(p)
	if kind == KindInvalid {
		return false
	}

	if len(p) >= 3 && IsHardened(p[2]) {
		if unhardened(p[2]) > MaxReasonableAccount && kind != KindPoolCold {
			return false
		}
	}

	if kind == KindPoolCold {
		if unhardened(p[3]) > MaxReasonablePoolColdIx {
			return false
		}
	}

	if len(p) == 5 {
		if p[4] > MaxReasonableIndex {
			return false
		}
	}

	return true
}
