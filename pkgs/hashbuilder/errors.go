// Package hashbuilder streams canonical CBOR transaction-body tokens
// directly into BLAKE2b-256/224 hash contexts, never buffering the full
// structure being hashed. Four linear state machines live here: the
// transaction-body hash, the auxiliary-data/CIP-36 vote-registration
// hash, the native-script hash, and the vote-cast hash.
package hashbuilder

import "errors"

// ErrIllegalTransition is returned when a builder method is called out
// of the order its linear state enum requires.
var ErrIllegalTransition = errors.New("hashbuilder: illegal state transition")

// ErrStackNotEmpty is returned by Finalize when a native-script builder
// still has open compound scripts awaiting their remaining children.
var ErrStackNotEmpty = errors.New("hashbuilder: native script stack not empty at finalize")

// ErrMaxDepthExceeded is returned when a compound native script would
// nest deeper than MaxDepth.
var ErrMaxDepthExceeded = errors.New("hashbuilder: native script exceeds max nesting depth")

// ErrSubCountExhausted is returned when a builder receives more items
// than its declared sub-count for the current level (e.g. more pool
// owners, or more script siblings, than announced).
var ErrSubCountExhausted = errors.New("hashbuilder: sub-count exhausted for current level")
