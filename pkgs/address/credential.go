package address

import "github.com/study/cardano-hw-signer/pkgs/blakehash"

// CredentialKind distinguishes a key-hash credential from a script-hash
// one (spec.md §3.2).
type CredentialKind int

const (
	CredentialKeyHash CredentialKind = iota
	CredentialScriptHash
)

// HashSize is the length of a Cardano key or script hash (BLAKE2b-224).
const HashSize = 28

// Credential is a tagged union of {key hash, script hash}. Extended
// credentials (key derivation path) are resolved to a Credential by the
// caller before construction, since address derivation itself never
// touches raw key material outside pkgs/cardanokey.
type Credential struct {
	Kind CredentialKind
	Hash [HashSize]byte
}

// KeyCredential hashes a 32-byte Ed25519 public key into a key-hash
// credential.
func KeyCredential(pubKey []byte) Credential {
	var c Credential
	c.Kind = CredentialKeyHash
	copy(c.Hash[:], blakehash.Hash224(pubKey))
	return c
}

// ScriptCredential wraps an already-computed 28-byte native script hash
// (see pkgs/hashbuilder.NativeScriptHashBuilder) into a credential.
func ScriptCredential(scriptHash [HashSize]byte) Credential {
	return Credential{Kind: CredentialScriptHash, Hash: scriptHash}
}
