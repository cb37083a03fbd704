// Package blakehash provides the two BLAKE2b digest widths the Cardano
// signing core needs as thin, named wrappers over golang.org/x/crypto/blake2b
// streaming contexts, the same dependency the teacher's
// pkgs/address/cardano.go already used for key hashing.
package blakehash

import "golang.org/x/crypto/blake2b"

// New224 returns a fresh BLAKE2b-224 Context, used for credential/script
// hashing (28-byte digests).
func New224() (*Context, error) {
	h, err := blake2b.New(28, nil)
	if err != nil {
		return nil, err
	}
	return &Context{h: h}, nil
}

// New256 returns a fresh BLAKE2b-256 Context, used for transaction and
// auxiliary-data hashing (32-byte digests).
func New256() (*Context, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	return &Context{h: h}, nil
}

// Context wraps a live BLAKE2b hash.Hash so the hash builders can implement
// io.Writer (for cbor.Writer) without importing golang.org/x/crypto directly.
type Context struct {
	h interface {
		Write([]byte) (int, error)
		Sum([]byte) []byte
		Reset()
	}
}

// Write appends data to the running digest.
func (c *Context) Write(data []byte) (int, error) {
	return c.h.Write(data)
}

// Sum finalizes and returns the digest without resetting the context.
func (c *Context) Sum() []byte {
	return c.h.Sum(nil)
}

// Hash224 computes a standalone BLAKE2b-224 digest, used for address
// credential hashing of a public key.
func Hash224(data []byte) []byte {
	h, err := blake2b.New(28, nil)
	if err != nil {
		panic(err) // only fails for an invalid size/key, both fixed here
	}
	h.Write(data)
	return h.Sum(nil)
}

// Hash256 computes a standalone BLAKE2b-256 digest.
func Hash256(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:]
}
