package policy

// Known network identifiers and the protocol magic mainnet must carry.
const (
	NetworkIDMainnet        byte   = 1
	MainnetProtocolMagic    uint32 = 764824073
	PreviewProtocolMagic    uint32 = 2
	PreprodProtocolMagic    uint32 = 1
)

// InitParams bundles everything ForSignTxInit needs: the network
// identity the transaction declares, the signing mode, and the flags
// the INIT stage collects about which body items are present.
type InitParams struct {
	NetworkID       byte
	ProtocolMagic   uint32
	Mode            SigningMode
	MintPresent     bool
	CollateralInputs bool
	ScriptDataHash  bool
}

// knownTestnetMagic reports whether magic is one of the protocol magics
// this device recognizes for a non-mainnet network id.
func knownTestnetMagic(magic uint32) bool {
	return magic == PreviewProtocolMagic || magic == PreprodProtocolMagic
}

// ForSignTxInit validates the (network id, protocol magic, signing mode,
// item-presence flags) combination the INIT stage receives (spec.md
// §4.5's "init" rule).
func ForSignTxInit(p InitParams) Decision {
	if p.NetworkID == NetworkIDMainnet && p.ProtocolMagic != MainnetProtocolMagic {
		return Deny
	}
	if p.Mode == ModePoolRegistrationOwner && p.MintPresent {
		return Deny
	}

	decision := PromptBeforeResponse

	if p.NetworkID != NetworkIDMainnet && !knownTestnetMagic(p.ProtocolMagic) {
		decision = combine(decision, PromptWarnUnusual)
	}
	if p.Mode == ModePlutus && (!p.CollateralInputs || !p.ScriptDataHash) {
		decision = combine(decision, PromptWarnUnusual)
	}

	return decision
}
