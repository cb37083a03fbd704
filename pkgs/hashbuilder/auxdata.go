package hashbuilder

import (
	"github.com/study/cardano-hw-signer/pkgs/blakehash"
	"github.com/study/cardano-hw-signer/pkgs/cbor"
)

// auxStage is the auxiliary-data builder's linear state enum (spec.md §4.3).
type auxStage int

const (
	auxInit auxStage = iota
	auxRegInit
	auxPayloadInit
	auxDelegationsOrVoteKey
	auxStakingKey
	auxPaymentAddress
	auxNonce
	auxVotingPurpose
	auxConfirm
	auxAuxiliaryScripts
	auxFinished
)

// CIP-36 vote registration payload map keys (61284 is the registration
// metadatum label, 61285 its signature envelope; keys below are the
// payload map's own integer keys per CIP-36 §registration).
const (
	regKeyVoteKeyOrDelegations = 1
	regKeyStakingKey           = 2
	regKeyPaymentAddress       = 3
	regKeyNonce                = 4
	regKeyVotingPurpose        = 5
)

// registrationMetadataLabel and signatureEnvelopeLabel are the two
// top-level auxiliary-data metadata label keys CIP-36 reserves.
const (
	registrationMetadataLabel = 61284
	signatureEnvelopeLabel    = 61285
)

// AuxDataHashBuilder maintains two concurrent BLAKE2b-256 contexts: one
// over the full auxiliary-data structure, and one over just the
// registration metadatum {61284: payload map} (the bytes the staking key
// actually signs).
// CIP-15 (legacy) rejects delegations and voting purpose; CIP-36 permits
// both — the caller selects which via allowCIP36.
type AuxDataHashBuilder struct {
	full     *blakehash.Context
	payload  *blakehash.Context
	fullW    *cbor.Writer
	payloadW *cbor.Writer
	state    auxStage
	allowCIP36 bool
}

// NewAuxDataHashBuilder starts both hash contexts and opens the
// auxiliary-data array(2) [metadata map, auxiliary scripts] and its
// metadata map (always two entries: the registration metadata label
// and, once CONFIRM computes the signature, the signature envelope
// label).
func NewAuxDataHashBuilder(allowCIP36 bool) (*AuxDataHashBuilder, error) {
	full, err := blakehash.New256()
	if err != nil {
		return nil, err
	}
	payload, err := blakehash.New256()
	if err != nil {
		return nil, err
	}
	b := &AuxDataHashBuilder{
		full:       full,
		payload:    payload,
		fullW:      cbor.NewWriter(full),
		payloadW:   cbor.NewWriter(payload),
		state:      auxInit,
		allowCIP36: allowCIP36,
	}
	if err := b.fullW.WriteArrayHeader(2); err != nil {
		return nil, err
	}
	if err := b.fullW.WriteMapHeader(2); err != nil {
		return nil, err
	}
	if err := b.fullW.WriteUnsigned(registrationMetadataLabel); err != nil {
		return nil, err
	}
	b.state = auxRegInit
	return b, nil
}

func (b *AuxDataHashBuilder) step(next auxStage) error {
	if next < b.state {
		return ErrIllegalTransition
	}
	b.state = next
	return nil
}

// BeginPayload opens the registration payload map (in the payload
// context, inside a one-entry map under label 61284), counting entries:
// one each for the vote-key-or-delegations/staking-key/payment-address/
// nonce fields, plus voting purpose when CIP-36 permits it.
func (b *AuxDataHashBuilder) BeginPayload() error {
	if err := b.step(auxPayloadInit); err != nil {
		return err
	}
	n := uint64(4)
	if b.allowCIP36 {
		n++
	}
	if err := b.fullW.WriteMapHeader(n); err != nil {
		return err
	}
	if err := b.payloadW.WriteMapHeader(1); err != nil {
		return err
	}
	if err := b.payloadW.WriteUnsigned(registrationMetadataLabel); err != nil {
		return err
	}
	return b.payloadW.WriteMapHeader(n)
}

func (b *AuxDataHashBuilder) writeBoth(f func(w *cbor.Writer) error) error {
	if err := f(b.fullW); err != nil {
		return err
	}
	return f(b.payloadW)
}

// WriteVoteKey writes the single-delegate form: key 1, the 32-byte
// CIP-36 voting public key.
func (b *AuxDataHashBuilder) WriteVoteKey(votePubKey []byte) error {
	if err := b.step(auxDelegationsOrVoteKey); err != nil {
		return err
	}
	return b.writeBoth(func(w *cbor.Writer) error {
		if err := w.WriteUnsigned(regKeyVoteKeyOrDelegations); err != nil {
			return err
		}
		return w.WriteBytes(votePubKey)
	})
}

// WriteDelegations writes the multi-delegate form: key 1, an array of
// already-encoded [vote_pub_key, weight] pairs. CIP-15 rejects this
// form outright.
func (b *AuxDataHashBuilder) WriteDelegations(encodedPairs []byte, count uint64) error {
	if !b.allowCIP36 {
		return ErrIllegalTransition
	}
	if err := b.step(auxDelegationsOrVoteKey); err != nil {
		return err
	}
	return b.writeBoth(func(w *cbor.Writer) error {
		if err := w.WriteUnsigned(regKeyVoteKeyOrDelegations); err != nil {
			return err
		}
		if err := w.WriteArrayHeader(count); err != nil {
			return err
		}
		return w.Raw(encodedPairs)
	})
}

// WriteStakingKey writes key 2, the 32-byte staking public key whose
// corresponding private key signs the payload hash.
func (b *AuxDataHashBuilder) WriteStakingKey(stakingPubKey []byte) error {
	if err := b.step(auxStakingKey); err != nil {
		return err
	}
	return b.writeBoth(func(w *cbor.Writer) error {
		if err := w.WriteUnsigned(regKeyStakingKey); err != nil {
			return err
		}
		return w.WriteBytes(stakingPubKey)
	})
}

// WritePaymentAddress writes key 3, the raw reward-destination address
// bytes.
func (b *AuxDataHashBuilder) WritePaymentAddress(addr []byte) error {
	if err := b.step(auxPaymentAddress); err != nil {
		return err
	}
	return b.writeBoth(func(w *cbor.Writer) error {
		if err := w.WriteUnsigned(regKeyPaymentAddress); err != nil {
			return err
		}
		return w.WriteBytes(addr)
	})
}

// WriteNonce writes key 4.
func (b *AuxDataHashBuilder) WriteNonce(nonce uint64) error {
	if err := b.step(auxNonce); err != nil {
		return err
	}
	return b.writeBoth(func(w *cbor.Writer) error {
		if err := w.WriteUnsigned(regKeyNonce); err != nil {
			return err
		}
		return w.WriteUnsigned(nonce)
	})
}

// WriteVotingPurpose writes key 5. CIP-15 rejects this field.
func (b *AuxDataHashBuilder) WriteVotingPurpose(purpose uint64) error {
	if !b.allowCIP36 {
		return ErrIllegalTransition
	}
	if err := b.step(auxVotingPurpose); err != nil {
		return err
	}
	return b.writeBoth(func(w *cbor.Writer) error {
		if err := w.WriteUnsigned(regKeyVotingPurpose); err != nil {
			return err
		}
		return w.WriteUnsigned(purpose)
	})
}

// PayloadHash finalizes (without closing) the payload-only context and
// returns its 32-byte digest, the value the staking key signs.
func (b *AuxDataHashBuilder) PayloadHash() [32]byte {
	var out [32]byte
	copy(out[:], b.payload.Sum())
	return out
}

// Confirm appends the signature envelope (label 61285: the 64-byte
// Ed25519 signature of PayloadHash under the staking key) to the full
// context only; the payload context plays no further part.
func (b *AuxDataHashBuilder) Confirm(signature []byte) error {
	if err := b.step(auxConfirm); err != nil {
		return err
	}
	if err := b.fullW.WriteUnsigned(signatureEnvelopeLabel); err != nil {
		return err
	}
	if err := b.fullW.WriteMapHeader(1); err != nil {
		return err
	}
	if err := b.fullW.WriteUnsigned(1); err != nil {
		return err
	}
	return b.fullW.WriteBytes(signature)
}

// WriteAuxiliaryScripts appends an already-encoded native-script array
// as the second element of the auxiliary-data array (an empty array,
// 0x80, when there are no scripts).
func (b *AuxDataHashBuilder) WriteAuxiliaryScripts(encoded []byte) error {
	if err := b.step(auxAuxiliaryScripts); err != nil {
		return err
	}
	return b.fullW.Raw(encoded)
}

// Finalize returns the 32-byte hash of the complete auxiliary-data
// structure (the value stored in the tx body's auxiliary_data_hash
// field). It accepts a builder on which WriteAuxiliaryScripts was never
// called; the hashed array then lacks its second element.
func (b *AuxDataHashBuilder) Finalize() ([32]byte, error) {
	var out [32]byte
	if b.state < auxConfirm {
		return out, ErrIllegalTransition
	}
	b.state = auxFinished
	copy(out[:], b.full.Sum())
	return out, nil
}
