package cardanokey

import (
	"crypto/sha512"

	"filippo.io/edwards25519"
)

// SignatureSize is the length of an extended-key Ed25519 signature (R || S).
const SignatureSize = 64

// Sign produces an extended-key EdDSA signature over message using k.
//
// Standard Ed25519 derives both the signing scalar a and the nonce prefix
// from SHA-512(seed); here both already exist directly as kL (the scalar
// a) and kR (the nonce key), so signing skips the seed-hash step entirely:
//
//	r = SHA512(kR || message)            (reduced mod L)
//	R = r*B
//	k = SHA512(R || A || message)         (reduced mod L)
//	S = r + k*a                          (mod L)
//	signature = R || S
//
// This is the variant every hardware wallet and CIP-3 compatible signer
// uses once keys are BIP32-Ed25519 derived, since the derived kL is no
// longer the SHA-512 digest of any recoverable seed.
func Sign(k *ExtendedKey, message []byte) ([]byte, error) {
	a, err := clampedScalar(k.KL[:])
	if err != nil {
		return nil, err
	}

	pub := new(edwards25519.Point).ScalarBaseMult(a)
	pubBytes := pub.Bytes()

	rHash := sha512.New()
	rHash.Write(k.KR[:])
	rHash.Write(message)
	r, err := new(edwards25519.Scalar).SetUniformBytes(rHash.Sum(nil))
	if err != nil {
		return nil, err
	}

	R := new(edwards25519.Point).ScalarBaseMult(r)
	rBytes := R.Bytes()

	kHash := sha512.New()
	kHash.Write(rBytes)
	kHash.Write(pubBytes)
	kHash.Write(message)
	kScalar, err := new(edwards25519.Scalar).SetUniformBytes(kHash.Sum(nil))
	if err != nil {
		return nil, err
	}

	ka := new(edwards25519.Scalar).Multiply(kScalar, a)
	s := new(edwards25519.Scalar).Add(r, ka)

	sig := make([]byte, 0, SignatureSize)
	sig = append(sig, rBytes...)
	sig = append(sig, s.Bytes()...)
	return sig, nil
}

// Verify checks an extended-key EdDSA signature against the standard
// Ed25519 verification equation [S]B = R + [k]A, where A is the public
// key point decoded from pubKey.
func Verify(pubKey, message, signature []byte) bool {
	if len(signature) != SignatureSize || len(pubKey) != 32 {
		return false
	}

	A, err := new(edwards25519.Point).SetBytes(pubKey)
	if err != nil {
		return false
	}

	rBytes := signature[:32]
	R, err := new(edwards25519.Point).SetBytes(rBytes)
	if err != nil {
		return false
	}

	s, err := new(edwards25519.Scalar).SetCanonicalBytes(signature[32:])
	if err != nil {
		return false
	}

	kHash := sha512.New()
	kHash.Write(rBytes)
	kHash.Write(pubKey)
	kHash.Write(message)
	k, err := new(edwards25519.Scalar).SetUniformBytes(kHash.Sum(nil))
	if err != nil {
		return false
	}

	// Check [S]B - [k]A - R == identity.
	sB := new(edwards25519.Point).ScalarBaseMult(s)
	kA := new(edwards25519.Point).ScalarMult(k, A)
	rhs := new(edwards25519.Point).Add(R, kA)

	return sB.Equal(rhs) == 1
}
