// Package hash provides the cryptographic hash primitive used for
// BIP32-Ed25519 child key derivation.
package hash

import (
	"crypto/hmac"
	"crypto/sha512"
)

// HMACSHA512 computes HMAC-SHA512 with the given key and data.
func HMACSHA512(key, data []byte) []byte {
	h := hmac.New(sha512.New, key)
	h.Write(data)
	return h.Sum(nil)
}
