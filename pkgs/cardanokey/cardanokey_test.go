package cardanokey

import (
	"encoding/hex"
	"testing"

	"github.com/study/cardano-hw-signer/pkgs/bip39"
)

const zeroMnemonic24 = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art"

func rootFromMnemonic(t *testing.T, mnemonic string) *ExtendedKey {
	t.Helper()
	entropy, err := bip39.MnemonicToEntropy(mnemonic)
	if err != nil {
		t.Fatalf("MnemonicToEntropy: %v", err)
	}
	root, err := NewRootKey(entropy)
	if err != nil {
		t.Fatalf("NewRootKey: %v", err)
	}
	return root
}

// TestIcarusPaymentKey checks the well known all-zero 24-word mnemonic
// against its CIP-1852 payment key m/1852'/1815'/1'/0/0.
func TestIcarusPaymentKey(t *testing.T) {
	root := rootFromMnemonic(t, zeroMnemonic24)

	path := []uint32{
		HardenedOffset + 1852,
		HardenedOffset + 1815,
		HardenedOffset + 1,
		0,
		0,
	}
	key, err := DerivePath(root, path)
	if err != nil {
		t.Fatalf("DerivePath: %v", err)
	}

	pub, err := PublicKeyBytes(key)
	if err != nil {
		t.Fatalf("PublicKeyBytes: %v", err)
	}

	want := "c9d624c493e269271980bc5e89bcd913719137f3b20c11339f28875951124c82"
	if got := hex.EncodeToString(pub); got != want[:64] {
		t.Errorf("payment pubkey = %s, want %s", got, want[:64])
	}
}

// TestIcarusPoolColdKey checks the same mnemonic's pool cold key
// m/1853'/1815'/0'/2', whose path has only four components (no address
// index) per CIP-1853.
func TestIcarusPoolColdKey(t *testing.T) {
	root := rootFromMnemonic(t, zeroMnemonic24)

	path := []uint32{
		HardenedOffset + 1853,
		HardenedOffset + 1815,
		HardenedOffset + 0,
		HardenedOffset + 2,
	}
	key, err := DerivePath(root, path)
	if err != nil {
		t.Fatalf("DerivePath: %v", err)
	}

	pub, err := PublicKeyBytes(key)
	if err != nil {
		t.Fatalf("PublicKeyBytes: %v", err)
	}

	want := "0f38ab7679e756ca11924f12e745d154ffbac01bc0f7bf05ba7f658c3a28b0cb"
	if got := hex.EncodeToString(pub); got != want[:64] {
		t.Errorf("pool cold pubkey = %s, want %s", got, want[:64])
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	root := rootFromMnemonic(t, zeroMnemonic24)
	key, err := DerivePath(root, []uint32{HardenedOffset + 1852, HardenedOffset + 1815, HardenedOffset, 0, 0})
	if err != nil {
		t.Fatalf("DerivePath: %v", err)
	}

	pub, err := PublicKeyBytes(key)
	if err != nil {
		t.Fatalf("PublicKeyBytes: %v", err)
	}

	message := []byte("cardano transaction body hash")
	sig, err := Sign(key, message)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if len(sig) != SignatureSize {
		t.Fatalf("signature length = %d, want %d", len(sig), SignatureSize)
	}
	if !Verify(pub, message, sig) {
		t.Error("Verify rejected a signature produced by Sign")
	}
	if Verify(pub, append(append([]byte{}, message...), 0x00), sig) {
		t.Error("Verify accepted a signature over a modified message")
	}
}

func TestDeriveHardenedVsNormalDiverge(t *testing.T) {
	root := rootFromMnemonic(t, zeroMnemonic24)
	account := []uint32{HardenedOffset + 1852, HardenedOffset + 1815, HardenedOffset}
	base, err := DerivePath(root, account)
	if err != nil {
		t.Fatalf("DerivePath: %v", err)
	}

	normal, err := Derive(base, 0)
	if err != nil {
		t.Fatalf("Derive normal: %v", err)
	}
	hardened, err := Derive(base, HardenedOffset)
	if err != nil {
		t.Fatalf("Derive hardened: %v", err)
	}

	if normal.Bytes()[0] == hardened.Bytes()[0] && string(normal.Bytes()) == string(hardened.Bytes()) {
		t.Error("hardened and normal derivation at index 0 produced identical keys")
	}
}
