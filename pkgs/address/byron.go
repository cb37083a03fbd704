package address

import (
	"bytes"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/sha3"

	"github.com/study/cardano-hw-signer/pkgs/blakehash"
	"github.com/study/cardano-hw-signer/pkgs/cbor"
	"github.com/study/cardano-hw-signer/pkgs/path"
)

// byronSpendingDataTag is the only spending-data constructor Cardano's
// legacy address scheme ever used: a plain Ed25519 public key.
const byronSpendingDataTag = 0

// byronHDPayloadKey is the attrs map key carrying the encrypted
// derivation path, when present.
const byronHDPayloadKey = 1

// hdPassphraseNonce is the fixed ChaCha20Poly1305 nonce the legacy
// Byron scheme uses to encrypt the HD payload; there is exactly one
// payload ever encrypted under a given passphrase, so a fixed nonce
// does not reuse a (key, nonce) pair.
var hdPassphraseNonce = []byte("serokellfore")

// deriveHDPassphrase derives the 32-byte key used to encrypt a Byron
// address's HD payload from the extended public key (pubkey || chain
// code), per the legacy Cardano address scheme's KDF parameters.
func deriveHDPassphrase(xpub []byte) []byte {
	return pbkdf2.Key(xpub, []byte("address-hashing"), 500, 32, sha3.New512)
}

// encryptHDPayload CBOR-encodes p as an array of its raw path
// components and encrypts it with ChaCha20Poly1305 under the HD
// passphrase derived from xpub, with no associated data.
func encryptHDPayload(p path.Path, xpub []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := cbor.NewWriter(&buf)
	if err := w.WriteArrayHeader(uint64(len(p))); err != nil {
		return nil, err
	}
	for _, c := range p {
		if err := w.WriteUnsigned(uint64(c)); err != nil {
			return nil, err
		}
	}

	aead, err := chacha20poly1305.New(deriveHDPassphrase(xpub))
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, hdPassphraseNonce, buf.Bytes(), nil), nil
}

// writeAttrs emits the Byron address attributes map: empty, or a
// single entry {1: encrypted HD payload} when hdPayload is non-nil.
func writeAttrs(w *cbor.Writer, hdPayload []byte) error {
	if hdPayload == nil {
		return w.WriteMapHeader(0)
	}
	if err := w.WriteMapHeader(1); err != nil {
		return err
	}
	if err := w.WriteUnsigned(byronHDPayloadKey); err != nil {
		return err
	}
	return w.WriteBytes(hdPayload)
}

// addressRoot computes Blake2b224(SHA3-256(CBOR([addrType, spendingData,
// attrs]))), the legacy Byron address's identity hash.
func addressRoot(pubKey, hdPayload []byte) ([HashSize]byte, error) {
	var out [HashSize]byte

	var buf bytes.Buffer
	w := cbor.NewWriter(&buf)
	if err := w.WriteArrayHeader(3); err != nil {
		return out, err
	}
	if err := w.WriteUnsigned(byronSpendingDataTag); err != nil {
		return out, err
	}
	// spendingData = [0, pubKey]
	if err := w.WriteArrayHeader(2); err != nil {
		return out, err
	}
	if err := w.WriteUnsigned(byronSpendingDataTag); err != nil {
		return out, err
	}
	if err := w.WriteBytes(pubKey); err != nil {
		return out, err
	}
	if err := writeAttrs(w, hdPayload); err != nil {
		return out, err
	}

	sha := sha3.Sum256(buf.Bytes())
	copy(out[:], blakehash.Hash224(sha[:]))
	return out, nil
}

// ByronAddress builds a legacy CBOR+CRC32 address for pubKey (32-byte
// Ed25519 public key). When derivationPath is non-nil it is encrypted
// into the address's HD payload attribute, under a key derived from the
// caller-supplied extended public key xpub (64 bytes: public key || chain
// code; both callers in this module pass the address key's own xpub);
// xpub is ignored when derivationPath is nil.
func ByronAddress(pubKey []byte, derivationPath *path.Path, xpub []byte) (string, error) {
	var hdPayload []byte
	if derivationPath != nil {
		var err error
		hdPayload, err = encryptHDPayload(*derivationPath, xpub)
		if err != nil {
			return "", err
		}
	}

	root, err := addressRoot(pubKey, hdPayload)
	if err != nil {
		return "", err
	}

	var inner bytes.Buffer
	iw := cbor.NewWriter(&inner)
	if err := iw.WriteArrayHeader(3); err != nil {
		return "", err
	}
	if err := iw.WriteBytes(root[:]); err != nil {
		return "", err
	}
	if err := writeAttrs(iw, hdPayload); err != nil {
		return "", err
	}
	if err := iw.WriteUnsigned(byronSpendingDataTag); err != nil {
		return "", err
	}

	var outer bytes.Buffer
	ow := cbor.NewWriter(&outer)
	if err := ow.WriteArrayHeader(2); err != nil {
		return "", err
	}
	if err := ow.WriteTag(24); err != nil {
		return "", err
	}
	if err := ow.WriteBytes(inner.Bytes()); err != nil {
		return "", err
	}
	if err := ow.WriteUnsigned(uint64(CRC32(inner.Bytes()))); err != nil {
		return "", err
	}

	return Base58Encode(outer.Bytes()), nil
}
