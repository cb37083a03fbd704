package address

import "github.com/study/cardano-hw-signer/pkgs/bufview"

// AddressType is the 4-bit address-type nibble occupying the upper bits
// of a Shelley address header byte (spec.md §3.3).
type AddressType byte

const (
	BasePaymentKeyStakeKey       AddressType = 0x0
	BasePaymentScriptStakeKey    AddressType = 0x1
	BasePaymentKeyStakeScript    AddressType = 0x2
	BasePaymentScriptStakeScript AddressType = 0x3
	PointerKey                   AddressType = 0x4
	PointerScript                AddressType = 0x5
	EnterpriseKey                AddressType = 0x6
	EnterpriseScript             AddressType = 0x7
	Byron                        AddressType = 0x8
	RewardKey                    AddressType = 0xE
	RewardScript                 AddressType = 0xF
)

// NetworkID values (lower 4 bits of the header byte).
const (
	NetworkTestnet byte = 0x00
	NetworkMainnet byte = 0x01
)

// StakingDataSource identifies where a base address's staking credential
// comes from. Per the newer of the two Shelley layouts the teacher's pack
// carries (spec.md §9's design notes), StakingScriptHash keeps its
// original 0x55 constant; the others are small sequential tags.
type StakingDataSource byte

const (
	NoStaking         StakingDataSource = 0
	StakingKeyPath    StakingDataSource = 1
	StakingKeyHash    StakingDataSource = 2
	BlockchainPointer StakingDataSource = 3
	StakingScriptHash StakingDataSource = 0x55
)

// Pointer is a certificate pointer (slot, transaction index, certificate
// index within the transaction), used by POINTER_* addresses.
type Pointer struct {
	Slot       uint64
	TxIndex    uint64
	CertIndex  uint64
}

// header builds the address header byte from a type nibble and network id.
func header(t AddressType, network byte) byte {
	return byte(t)<<4 | (network & 0x0f)
}

// BaseAddress builds a base address: payment credential || stake
// credential. stakeSource must be StakingKeyHash or StakingScriptHash;
// its kind must match stakeCred.Kind, and payment.Kind/stakeCred.Kind
// together select the correct header nibble.
func BaseAddress(network byte, payment Credential, stakeSource StakingDataSource, stakeCred Credential) ([]byte, error) {
	switch stakeSource {
	case StakingKeyHash:
		if stakeCred.Kind != CredentialKeyHash {
			return nil, ErrStakingInconsistent
		}
	case StakingScriptHash:
		if stakeCred.Kind != CredentialScriptHash {
			return nil, ErrStakingInconsistent
		}
	default:
		return nil, ErrStakingInconsistent
	}

	t := BasePaymentKeyStakeKey
	switch {
	case payment.Kind == CredentialKeyHash && stakeCred.Kind == CredentialKeyHash:
		t = BasePaymentKeyStakeKey
	case payment.Kind == CredentialScriptHash && stakeCred.Kind == CredentialKeyHash:
		t = BasePaymentScriptStakeKey
	case payment.Kind == CredentialKeyHash && stakeCred.Kind == CredentialScriptHash:
		t = BasePaymentKeyStakeScript
	case payment.Kind == CredentialScriptHash && stakeCred.Kind == CredentialScriptHash:
		t = BasePaymentScriptStakeScript
	}

	out := make([]byte, 0, 1+2*HashSize)
	out = append(out, header(t, network))
	out = append(out, payment.Hash[:]...)
	out = append(out, stakeCred.Hash[:]...)
	return out, nil
}

// PointerAddress builds a pointer address: payment credential || varlen
// pointer (slot, tx index, cert index).
func PointerAddress(network byte, payment Credential, ptr Pointer) ([]byte, error) {
	t := PointerKey
	if payment.Kind == CredentialScriptHash {
		t = PointerScript
	}

	out := make([]byte, 0, 1+HashSize+12)
	out = append(out, header(t, network))
	out = append(out, payment.Hash[:]...)
	out = bufview.AppendVarLenUint(out, ptr.Slot)
	out = bufview.AppendVarLenUint(out, ptr.TxIndex)
	out = bufview.AppendVarLenUint(out, ptr.CertIndex)
	return out, nil
}

// EnterpriseAddress builds an enterprise address: payment credential only,
// no staking capability.
func EnterpriseAddress(network byte, payment Credential) ([]byte, error) {
	t := EnterpriseKey
	if payment.Kind == CredentialScriptHash {
		t = EnterpriseScript
	}
	out := make([]byte, 0, 1+HashSize)
	out = append(out, header(t, network))
	out = append(out, payment.Hash[:]...)
	return out, nil
}

// RewardAddress builds a reward/stake address: the stake credential
// alone. Each of the two possible credential kinds is handled with its
// own explicit case (the source's deriveAddress_reward had two
// script-hash fallthrough branches that never actually returned an
// address; this constructor has no fallthrough to replicate that bug).
func RewardAddress(network byte, stake Credential) ([]byte, error) {
	var t AddressType
	switch stake.Kind {
	case CredentialKeyHash:
		t = RewardKey
	case CredentialScriptHash:
		t = RewardScript
	default:
		return nil, ErrUnsupportedAddressType
	}
	out := make([]byte, 0, 1+HashSize)
	out = append(out, header(t, network))
	out = append(out, stake.Hash[:]...)
	return out, nil
}

// Bech32HRP returns the human-readable prefix for a Shelley address type
// on the given network (spec.md §3.3).
func Bech32HRP(t AddressType, network byte) string {
	mainnet := network == NetworkMainnet
	switch t {
	case RewardKey, RewardScript:
		if mainnet {
			return "stake"
		}
		return "stake_test"
	default:
		if mainnet {
			return "addr"
		}
		return "addr_test"
	}
}

// HumanReadable renders a Shelley address (not Byron) as bech32, deriving
// the HRP from the header byte embedded in addr.
func HumanReadable(addr []byte) (string, error) {
	if len(addr) == 0 {
		return "", ErrInvalidAddress
	}
	t := AddressType(addr[0] >> 4)
	network := addr[0] & 0x0f
	hrp := Bech32HRP(t, network)
	return Bech32Encode(hrp, addr)
}
