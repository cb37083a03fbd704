package address

import (
	"bytes"
	"testing"

	"github.com/study/cardano-hw-signer/pkgs/path"
)

func mustCredential(kind CredentialKind, fill byte) Credential {
	var c Credential
	c.Kind = kind
	for i := range c.Hash {
		c.Hash[i] = fill
	}
	return c
}

func TestBech32RoundTrip(t *testing.T) {
	payment := mustCredential(CredentialKeyHash, 0xAA)
	stake := mustCredential(CredentialKeyHash, 0xBB)
	addr, err := BaseAddress(NetworkMainnet, payment, StakingKeyHash, stake)
	if err != nil {
		t.Fatalf("BaseAddress: %v", err)
	}

	bech, err := HumanReadable(addr)
	if err != nil {
		t.Fatalf("HumanReadable: %v", err)
	}
	if bech[:4] != "addr" {
		t.Errorf("hrp = %q, want addr prefix", bech)
	}

	hrp, data, err := Bech32Decode(bech)
	if err != nil {
		t.Fatalf("Bech32Decode: %v", err)
	}
	if hrp != "addr" {
		t.Errorf("decoded hrp = %q, want addr", hrp)
	}
	if !bytes.Equal(data, addr) {
		t.Errorf("decoded payload = %x, want %x", data, addr)
	}
}

func TestBaseAddressHeaderNibbles(t *testing.T) {
	keyCred := mustCredential(CredentialKeyHash, 0x01)
	scriptCred := mustCredential(CredentialScriptHash, 0x02)

	cases := []struct {
		payment, stake Credential
		source         StakingDataSource
		wantType       AddressType
	}{
		{keyCred, keyCred, StakingKeyHash, BasePaymentKeyStakeKey},
		{scriptCred, keyCred, StakingKeyHash, BasePaymentScriptStakeKey},
		{keyCred, scriptCred, StakingScriptHash, BasePaymentKeyStakeScript},
		{scriptCred, scriptCred, StakingScriptHash, BasePaymentScriptStakeScript},
	}
	for _, c := range cases {
		addr, err := BaseAddress(NetworkMainnet, c.payment, c.source, c.stake)
		if err != nil {
			t.Fatalf("BaseAddress(%v): %v", c.wantType, err)
		}
		got := AddressType(addr[0] >> 4)
		if got != c.wantType {
			t.Errorf("header nibble = %x, want %x", got, c.wantType)
		}
		if network := addr[0] & 0x0f; network != NetworkMainnet {
			t.Errorf("network nibble = %x, want mainnet", network)
		}
		if len(addr) != 1+2*HashSize {
			t.Errorf("base address length = %d, want %d", len(addr), 1+2*HashSize)
		}
	}
}

// TestStakingInconsistency checks the invariant that a base address's
// declared staking source must match the kind of staking credential
// actually supplied.
func TestStakingInconsistency(t *testing.T) {
	keyCred := mustCredential(CredentialKeyHash, 0x01)
	scriptCred := mustCredential(CredentialScriptHash, 0x02)

	if _, err := BaseAddress(NetworkMainnet, keyCred, StakingKeyHash, scriptCred); err != ErrStakingInconsistent {
		t.Errorf("StakingKeyHash source with script credential: err = %v, want ErrStakingInconsistent", err)
	}
	if _, err := BaseAddress(NetworkMainnet, keyCred, StakingScriptHash, keyCred); err != ErrStakingInconsistent {
		t.Errorf("StakingScriptHash source with key credential: err = %v, want ErrStakingInconsistent", err)
	}
	if _, err := BaseAddress(NetworkMainnet, keyCred, NoStaking, keyCred); err != ErrStakingInconsistent {
		t.Errorf("NoStaking source for a base address: err = %v, want ErrStakingInconsistent", err)
	}
	if _, err := BaseAddress(NetworkMainnet, keyCred, BlockchainPointer, keyCred); err != ErrStakingInconsistent {
		t.Errorf("BlockchainPointer source for a base address: err = %v, want ErrStakingInconsistent", err)
	}
}

func TestEnterpriseAndRewardAddresses(t *testing.T) {
	keyCred := mustCredential(CredentialKeyHash, 0x03)
	scriptCred := mustCredential(CredentialScriptHash, 0x04)

	ent, err := EnterpriseAddress(NetworkTestnet, keyCred)
	if err != nil {
		t.Fatalf("EnterpriseAddress: %v", err)
	}
	if len(ent) != 1+HashSize {
		t.Errorf("enterprise address length = %d, want %d", len(ent), 1+HashSize)
	}
	if AddressType(ent[0]>>4) != EnterpriseKey {
		t.Errorf("enterprise header = %x, want EnterpriseKey", ent[0]>>4)
	}

	reward, err := RewardAddress(NetworkMainnet, scriptCred)
	if err != nil {
		t.Fatalf("RewardAddress: %v", err)
	}
	if AddressType(reward[0]>>4) != RewardScript {
		t.Errorf("reward header = %x, want RewardScript", reward[0]>>4)
	}
	hrp, _, err := Bech32Decode(mustBech32(t, reward))
	if err != nil {
		t.Fatalf("Bech32Decode: %v", err)
	}
	if hrp != "stake" {
		t.Errorf("reward hrp = %q, want stake", hrp)
	}
}

func mustBech32(t *testing.T, addr []byte) string {
	t.Helper()
	s, err := HumanReadable(addr)
	if err != nil {
		t.Fatalf("HumanReadable: %v", err)
	}
	return s
}

func TestPointerAddressVarLenEncoding(t *testing.T) {
	keyCred := mustCredential(CredentialKeyHash, 0x05)
	addr, err := PointerAddress(NetworkMainnet, keyCred, Pointer{Slot: 2498243, TxIndex: 27, CertIndex: 3})
	if err != nil {
		t.Fatalf("PointerAddress: %v", err)
	}
	if AddressType(addr[0]>>4) != PointerKey {
		t.Errorf("pointer header = %x, want PointerKey", addr[0]>>4)
	}
	if len(addr) <= 1+HashSize {
		t.Errorf("pointer address length = %d, too short to carry a pointer", len(addr))
	}
}

func TestBase58RoundTrip(t *testing.T) {
	data := []byte{0x00, 0x00, 0x01, 0x02, 0x03, 0xff, 0xfe}
	encoded := Base58Encode(data)
	decoded, err := Base58Decode(encoded)
	if err != nil {
		t.Fatalf("Base58Decode: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Errorf("round trip = %x, want %x", decoded, data)
	}
}

func TestByronAddressDecodesAsBase58CBOR(t *testing.T) {
	pubKey := bytes.Repeat([]byte{0x11}, 32)
	p := path.Path{path.Hardened(44), path.Hardened(1815), path.Hardened(0), 0, 55}
	xpub := bytes.Repeat([]byte{0x22}, 64)

	addr, err := ByronAddress(pubKey, &p, xpub)
	if err != nil {
		t.Fatalf("ByronAddress: %v", err)
	}
	if addr == "" {
		t.Fatal("ByronAddress returned empty string")
	}

	raw, err := Base58Decode(addr)
	if err != nil {
		t.Fatalf("Base58Decode(%q): %v", addr, err)
	}
	// A base58-decoded Byron address is the CBOR array [tag(24, bytes),
	// crc32]; its first byte must be a definite-length-2 array head.
	if len(raw) == 0 || raw[0] != 0x82 {
		t.Errorf("decoded Byron address head = %x, want array(2) head 0x82", raw)
	}
}

func TestByronAddressWithoutHDPayload(t *testing.T) {
	pubKey := bytes.Repeat([]byte{0x33}, 32)
	addr, err := ByronAddress(pubKey, nil, nil)
	if err != nil {
		t.Fatalf("ByronAddress: %v", err)
	}
	if addr == "" {
		t.Fatal("ByronAddress returned empty string")
	}
}

func TestCRC32Deterministic(t *testing.T) {
	data := []byte("cardano")
	if CRC32(data) != CRC32(data) {
		t.Error("CRC32 is not deterministic")
	}
	if CRC32(data) == CRC32([]byte("Cardano")) {
		t.Error("CRC32 collided on a single-bit-different input")
	}
}
