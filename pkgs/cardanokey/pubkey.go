package cardanokey

import "filippo.io/edwards25519"

// PublicKeyBytes computes the 32-byte Ed25519 public key for an extended
// key: k.KL is already a clamped scalar (see NewRootKey and Derive), so
// the public key is simply the encoding of kL * B, the scalar multiplied
// by the Ed25519 base point.
func PublicKeyBytes(k *ExtendedKey) ([]byte, error) {
	scalar, err := clampedScalar(k.KL[:])
	if err != nil {
		return nil, err
	}
	point := new(edwards25519.Point).ScalarBaseMult(scalar)
	return point.Bytes(), nil
}

// clampedScalar loads a 32-byte Icarus kL as an edwards25519.Scalar. The
// bytes are already clamped (low 3 bits of byte 0 clear, high bit of byte
// 31 clear, second-highest bit set) by NewRootKey/Derive, so
// SetBytesWithClamping is a safe, idempotent re-clamp rather than a
// correctness-changing transform.
func clampedScalar(kl []byte) (*edwards25519.Scalar, error) {
	var buf [32]byte
	copy(buf[:], kl)
	return new(edwards25519.Scalar).SetBytesWithClamping(buf[:])
}
