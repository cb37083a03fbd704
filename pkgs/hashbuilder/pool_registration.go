package hashbuilder

import "github.com/study/cardano-hw-signer/pkgs/cbor"

// poolStage is the pool registration certificate's linear sub-state
// enum (spec.md §4.2): INIT -> POOL_KEY -> POOL_VRF -> POOL_FINANCIALS
// -> POOL_REWARD_ACCOUNT -> POOL_OWNERS -> POOL_RELAYS -> POOL_METADATA.
// OWNERS and RELAYS self-loop until their declared counts reach zero.
type poolStage int

const (
	poolInit poolStage = iota
	poolKey
	poolVRF
	poolFinancials
	poolRewardAccount
	poolOwners
	poolRelays
	poolMetadata
	poolFinished
)

const (
	certTypePoolRegistration = 3
	poolMarginTag            = 30
)

// PoolRegistrationBuilder drives pool_params' field-by-field CBOR
// encoding: Array(10)[3, operator, vrf_keyhash, pledge, cost, margin,
// reward_account, pool_owners, relays, pool_metadata]. Unlike
// AuxDataHashBuilder it owns no hash context of its own — a pool
// registration certificate is just one entry streamed into the
// enclosing transaction body hash, so it shares TxHashBuilder's writer
// directly instead of opening a second BLAKE2b context.
type PoolRegistrationBuilder struct {
	w     *cbor.Writer
	state poolStage

	ownersRemaining uint64
	relaysRemaining uint64
}

// newPoolRegistrationBuilder writes the array(10) header and the
// cert_type discriminator (3), and arms the owner/relay self-loop
// counters from the certificate's declared sizes (spec.md §4.2 assigns
// these counts in the certificate's INIT frame, before any field
// arrives).
func newPoolRegistrationBuilder(w *cbor.Writer, numOwners, numRelays uint64) (*PoolRegistrationBuilder, error) {
	if err := w.WriteArrayHeader(10); err != nil {
		return nil, err
	}
	if err := w.WriteUnsigned(certTypePoolRegistration); err != nil {
		return nil, err
	}
	return &PoolRegistrationBuilder{
		w:               w,
		state:           poolInit,
		ownersRemaining: numOwners,
		relaysRemaining: numRelays,
	}, nil
}

func (b *PoolRegistrationBuilder) step(next poolStage) error {
	if next < b.state {
		return ErrIllegalTransition
	}
	b.state = next
	return nil
}

// WriteKey writes the pool's 28-byte operator key hash.
func (b *PoolRegistrationBuilder) WriteKey(poolKeyHash [28]byte) error {
	if err := b.step(poolKey); err != nil {
		return err
	}
	return b.w.WriteBytes(poolKeyHash[:])
}

// WriteVRF writes the 32-byte VRF key hash.
func (b *PoolRegistrationBuilder) WriteVRF(vrfKeyHash [32]byte) error {
	if err := b.step(poolVRF); err != nil {
		return err
	}
	return b.w.WriteBytes(vrfKeyHash[:])
}

// WriteFinancials writes pledge, cost, and the margin unit_interval as
// tag(30)[numerator, denominator].
func (b *PoolRegistrationBuilder) WriteFinancials(pledge, cost, marginNumerator, marginDenominator uint64) error {
	if err := b.step(poolFinancials); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(pledge); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(cost); err != nil {
		return err
	}
	if err := b.w.WriteTag(poolMarginTag); err != nil {
		return err
	}
	if err := b.w.WriteArrayHeader(2); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(marginNumerator); err != nil {
		return err
	}
	return b.w.WriteUnsigned(marginDenominator)
}

// WriteRewardAccount writes the reward account bytes.
func (b *PoolRegistrationBuilder) WriteRewardAccount(rewardAccount []byte) error {
	if err := b.step(poolRewardAccount); err != nil {
		return err
	}
	return b.w.WriteBytes(rewardAccount)
}

// enterOwners opens pool_owners at its declared size.
func (b *PoolRegistrationBuilder) enterOwners() error {
	if err := b.step(poolOwners); err != nil {
		return err
	}
	return b.w.WriteArrayHeader(b.ownersRemaining)
}

// BeginOwners opens the pool_owners array.
func (b *PoolRegistrationBuilder) BeginOwners() error {
	return b.enterOwners()
}

// WriteOwner appends one 28-byte staking key hash to pool_owners.
func (b *PoolRegistrationBuilder) WriteOwner(stakingKeyHash [28]byte) error {
	if b.state != poolOwners {
		return ErrIllegalTransition
	}
	if b.ownersRemaining == 0 {
		return ErrSubCountExhausted
	}
	b.ownersRemaining--
	return b.w.WriteBytes(stakingKeyHash[:])
}

// enterRelays opens relays at its declared size, auto-opening an empty
// pool_owners array first if the caller skipped straight from
// POOL_REWARD_ACCOUNT (legal only when the certificate declared zero
// owners).
func (b *PoolRegistrationBuilder) enterRelays() error {
	if b.state == poolRewardAccount {
		if b.ownersRemaining != 0 {
			return ErrSubCountExhausted
		}
		if err := b.enterOwners(); err != nil {
			return err
		}
	}
	if b.state != poolOwners || b.ownersRemaining != 0 {
		return ErrIllegalTransition
	}
	b.state = poolRelays
	return b.w.WriteArrayHeader(b.relaysRemaining)
}

// BeginRelays opens the relays array.
func (b *PoolRegistrationBuilder) BeginRelays() error {
	return b.enterRelays()
}

// WriteRelay appends one already-encoded relay (the caller picks the
// CDDL alternative — single_host_addr, single_host_name, or
// multi_host_name — and CBOR-encodes it, the same pre-encoded-fragment
// discipline WriteDelegations uses in AuxDataHashBuilder).
func (b *PoolRegistrationBuilder) WriteRelay(encoded []byte) error {
	if b.state != poolRelays {
		return ErrIllegalTransition
	}
	if b.relaysRemaining == 0 {
		return ErrSubCountExhausted
	}
	b.relaysRemaining--
	return b.w.Raw(encoded)
}

// enterMetadata transitions into POOL_METADATA, auto-closing owners and
// relays with zero remaining if the caller never opened them (a pool
// with no owners and no relays may jump straight from
// POOL_REWARD_ACCOUNT to POOL_METADATA).
func (b *PoolRegistrationBuilder) enterMetadata() error {
	switch b.state {
	case poolRewardAccount:
		if b.ownersRemaining != 0 {
			return ErrSubCountExhausted
		}
		if err := b.enterOwners(); err != nil {
			return err
		}
		fallthrough
	case poolOwners:
		if b.relaysRemaining != 0 {
			return ErrSubCountExhausted
		}
		if err := b.enterRelays(); err != nil {
			return err
		}
		fallthrough
	case poolRelays:
		if b.relaysRemaining != 0 || b.ownersRemaining != 0 {
			return ErrSubCountExhausted
		}
	default:
		return ErrIllegalTransition
	}
	b.state = poolMetadata
	return nil
}

// WriteMetadata writes pool_metadata = [url, metadata_hash].
func (b *PoolRegistrationBuilder) WriteMetadata(url string, metadataHash []byte) error {
	if err := b.enterMetadata(); err != nil {
		return err
	}
	if err := b.w.WriteArrayHeader(2); err != nil {
		return err
	}
	if err := b.w.WriteText(url); err != nil {
		return err
	}
	return b.w.WriteBytes(metadataHash)
}

// WriteNoMetadata writes pool_metadata = null.
func (b *PoolRegistrationBuilder) WriteNoMetadata() error {
	if err := b.enterMetadata(); err != nil {
		return err
	}
	return b.w.WriteNull()
}

// Finish closes the certificate, requiring every declared owner and
// relay to have been written.
func (b *PoolRegistrationBuilder) Finish() error {
	if b.state != poolMetadata {
		return ErrIllegalTransition
	}
	if b.ownersRemaining != 0 || b.relaysRemaining != 0 {
		return ErrSubCountExhausted
	}
	b.state = poolFinished
	return nil
}
