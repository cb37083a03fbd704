// Package address builds and renders Cardano addresses: Shelley
// base/pointer/enterprise/reward addresses over key or script credentials,
// legacy Byron CBOR+CRC32 addresses, and their bech32/base58 human-readable
// forms. It is grounded on the teacher's pkgs/address package (bech32.go,
// base58.go, cardano.go) but narrows the teacher's generic 25-chain
// implementation to Cardano's specific rules: bech32 here enforces BIP-173's
// HRP<=16/data<=150B limits the teacher's multi-chain version left
// unenforced, and the Shelley header-byte/credential layout replaces the
// teacher's simplified base/enterprise/reward-only address set with the
// full ten-type nibble scheme.
package address

import "errors"

var (
	// ErrInvalidChecksum is returned when a bech32 or CRC32 checksum does
	// not verify.
	ErrInvalidChecksum = errors.New("address: invalid checksum")

	// ErrHRPTooLong is returned when a bech32 human-readable part exceeds
	// 16 characters (BIP-173).
	ErrHRPTooLong = errors.New("address: bech32 hrp exceeds 16 characters")

	// ErrDataTooLong is returned when a bech32 payload exceeds 150 bytes
	// (BIP-173).
	ErrDataTooLong = errors.New("address: bech32 data exceeds 150 bytes")

	// ErrInvalidAddress is returned when an address cannot be parsed or
	// does not match any known Shelley/Byron layout.
	ErrInvalidAddress = errors.New("address: invalid address")

	// ErrUnsupportedAddressType is returned for a header nibble this
	// device does not implement.
	ErrUnsupportedAddressType = errors.New("address: unsupported address type")

	// ErrStakingInconsistent is returned when a parsed address-params
	// bundle's staking source does not match its address type (spec.md's
	// staking-info-consistency invariant).
	ErrStakingInconsistent = errors.New("address: staking source inconsistent with address type")
)
