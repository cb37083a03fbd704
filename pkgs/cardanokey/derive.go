package cardanokey

import (
	"encoding/binary"
	"math/big"

	"github.com/study/cardano-hw-signer/pkgs/crypto/hash"
)

// HardenedOffset marks the start of the hardened index range (2^31), per
// CIP-1852/BIP-44: index = HardenedOffset + n denotes the hardened n'.
const HardenedOffset = uint32(1) << 31

// IsHardened reports whether index falls in the hardened range.
func IsHardened(index uint32) bool {
	return index >= HardenedOffset
}

// two32 is 2^256 expressed as a big.Int, used to reduce childKR mod 2^256
// (equivalently: truncate the carry out of a 32-byte little-endian add).
var two32 = new(big.Int).Lsh(big.NewInt(1), 256)

// Derive walks one step of CIP-1852 child derivation from parent, using
// hardened derivation when index >= HardenedOffset and normal (public-key
// based) derivation otherwise. This is the Khovratovich-Law BIP32-Ed25519
// construction, not the secp256k1 BIP-32 scheme the teacher's pkgs/bip32
// implements nor the SLIP-10 scheme in the teacher's
// pkgs/crypto/ed25519 package.
func Derive(parent *ExtendedKey, index uint32) (*ExtendedKey, error) {
	var indexBuf [4]byte
	binary.LittleEndian.PutUint32(indexBuf[:], index)

	var zInput, ccInput []byte
	if IsHardened(index) {
		zInput = concat([]byte{0x00}, parent.KL[:], parent.KR[:], indexBuf[:])
		ccInput = concat([]byte{0x01}, parent.KL[:], parent.KR[:], indexBuf[:])
	} else {
		pub, err := PublicKeyBytes(parent)
		if err != nil {
			return nil, err
		}
		zInput = concat([]byte{0x02}, pub, indexBuf[:])
		ccInput = concat([]byte{0x03}, pub, indexBuf[:])
	}

	z := hash.HMACSHA512(parent.ChainCode[:], zInput)
	ccDigest := hash.HMACSHA512(parent.ChainCode[:], ccInput)

	zl := z[0:28]
	zr := z[32:64]

	childKL := addKL(parent.KL[:], zl)
	childKR := addMod2to256(parent.KR[:], zr)

	var child ExtendedKey
	copy(child.KL[:], childKL)
	copy(child.KR[:], childKR)
	copy(child.ChainCode[:], ccDigest[32:64])

	return &child, nil
}

// DerivePath walks Derive repeatedly across a full index sequence, e.g. the
// five components of a CIP-1852 path (purpose, coin type, account, role,
// index) below the root key.
func DerivePath(root *ExtendedKey, path []uint32) (*ExtendedKey, error) {
	key := root
	for _, idx := range path {
		var err error
		key, err = Derive(key, idx)
		if err != nil {
			return nil, err
		}
	}
	return key, nil
}

// addKL computes kL + 8*ZL as a 256-bit little-endian integer. ZL is 28
// bytes (224 bits); multiplying by 8 never overflows into a 33rd byte
// given ZL's range, and adding to kL is truncated to 32 bytes, matching
// the reference construction (the low 3 bits of both operands are zero so
// no information is lost by a same-width add).
func addKL(kl, zl []byte) []byte {
	zlInt := leBytesToInt(zl)
	zlInt.Lsh(zlInt, 3) // * 8

	klInt := leBytesToInt(kl)
	sum := new(big.Int).Add(klInt, zlInt)
	sum.Mod(sum, two32)

	return intToLEBytes(sum, 32)
}

// addMod2to256 computes (a + b) mod 2^256 for two 32-byte little-endian
// integers, used for both the kR update and is reused nowhere else.
func addMod2to256(a, b []byte) []byte {
	sum := new(big.Int).Add(leBytesToInt(a), leBytesToInt(b))
	sum.Mod(sum, two32)
	return intToLEBytes(sum, 32)
}

func concat(parts ...[]byte) []byte {
	var total int
	for _, p := range parts {
		total += len(p)
	}
	out := make([]byte, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func leBytesToInt(b []byte) *big.Int {
	rev := make([]byte, len(b))
	for i, v := range b {
		rev[len(b)-1-i] = v
	}
	return new(big.Int).SetBytes(rev)
}

func intToLEBytes(v *big.Int, size int) []byte {
	be := v.Bytes()
	out := make([]byte, size)
	for i, b := range be {
		out[size-len(be)+i] = b
	}
	// reverse into little-endian
	for i, j := 0, size-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
