// Package cardanokey implements Cardano's BIP32-Ed25519 ("Icarus") key
// derivation scheme: CIP-3 root key generation from mnemonic entropy and
// the CIP-1852 hardened/normal child derivation used to walk an
// account/role/index path down to a signing key.
//
// This is deliberately not a reimplementation of the teacher's
// pkgs/bip32 (secp256k1, non-hardened-only) or pkgs/crypto/ed25519
// (SLIP-10) packages: Cardano's scheme differs from both in the root
// key derivation, the child tweak construction and the final signature
// math, so it is grounded instead on the BIP32-Ed25519 paper (Khovratovich
// & Law) and on filippo.io/edwards25519, the scalar/point arithmetic
// library also present in the Cardano-adjacent repos under
// other_examples/manifests/.
package cardanokey

import "errors"

var (
	// ErrInvalidEntropy is returned when root key derivation receives
	// entropy of a size CIP-3 does not define (Icarus uses 16-32 bytes,
	// in 4-byte steps, mirroring the BIP-39 entropy sizes).
	ErrInvalidEntropy = errors.New("cardanokey: entropy must be 16, 20, 24, 28 or 32 bytes")

	// ErrHardenedIndex is returned when a caller requests non-hardened
	// derivation from an index that is already in the hardened range, or
	// vice versa, for an operation that requires one or the other.
	ErrHardenedIndex = errors.New("cardanokey: index/hardening mismatch")

	// ErrShortExtendedKey is returned when an extended private key does
	// not carry the expected 96-byte kL||kR||chainCode layout.
	ErrShortExtendedKey = errors.New("cardanokey: extended key must be 96 bytes (kL||kR||chainCode)")
)
