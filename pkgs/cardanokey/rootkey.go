package cardanokey

import (
	"crypto/sha512"

	"golang.org/x/crypto/pbkdf2"
)

// ExtendedKeySize is the length of an Icarus extended private key:
// 32 bytes kL, 32 bytes kR, 32 bytes chain code.
const ExtendedKeySize = 96

// ExtendedKey is a BIP32-Ed25519 extended private key: a 64-byte expanded
// Ed25519 scalar pair (kL, kR) plus a 32-byte chain code used to derive
// children. Unlike a standard Ed25519 private key, kL is not the SHA-512
// digest of a seed; it is itself the scalar used directly in signing.
type ExtendedKey struct {
	KL        [32]byte
	KR        [32]byte
	ChainCode [32]byte
}

// Bytes returns the 96-byte kL||kR||chainCode encoding used by CIP-3/CIP-1852
// test vectors and the Ledger-style export format.
func (k *ExtendedKey) Bytes() []byte {
	out := make([]byte, 0, ExtendedKeySize)
	out = append(out, k.KL[:]...)
	out = append(out, k.KR[:]...)
	out = append(out, k.ChainCode[:]...)
	return out
}

// ExtendedKeyFromBytes parses the 96-byte kL||kR||chainCode layout produced
// by Bytes.
func ExtendedKeyFromBytes(b []byte) (*ExtendedKey, error) {
	if len(b) != ExtendedKeySize {
		return nil, ErrShortExtendedKey
	}
	var k ExtendedKey
	copy(k.KL[:], b[0:32])
	copy(k.KR[:], b[32:64])
	copy(k.ChainCode[:], b[64:96])
	return &k, nil
}

// validEntropyLen mirrors bip39.ValidEntropyBits in byte units; CIP-3 root
// key generation takes the same entropy the mnemonic was built from, not
// the BIP-39 PBKDF2 seed.
func validEntropyLen(n int) bool {
	switch n {
	case 16, 20, 24, 28, 32:
		return true
	default:
		return false
	}
}

// NewRootKey derives the Icarus master extended key from raw BIP-39 entropy
// (NOT the BIP-39 seed: CIP-3 stretches the entropy bytes directly).
// It runs PBKDF2-HMAC-SHA512 with an empty password, the entropy as salt,
// 4096 iterations and a 96-byte output, then clamps the low 32 bytes into
// a valid Ed25519-style scalar:
//
//	kL[0]  &= 0b1111_1000
//	kL[31] &= 0b0111_1111
//	kL[31] |= 0b0100_0000
//
// kR and the chain code are carried through unmodified.
func NewRootKey(entropy []byte) (*ExtendedKey, error) {
	if !validEntropyLen(len(entropy)) {
		return nil, ErrInvalidEntropy
	}

	stretched := pbkdf2.Key(nil, entropy, 4096, ExtendedKeySize, sha512.New)

	var k ExtendedKey
	copy(k.KL[:], stretched[0:32])
	copy(k.KR[:], stretched[32:64])
	copy(k.ChainCode[:], stretched[64:96])

	k.KL[0] &= 0b11111000
	k.KL[31] &= 0b01111111
	k.KL[31] |= 0b01000000

	return &k, nil
}
