package hashbuilder

import (
	"github.com/study/cardano-hw-signer/pkgs/blakehash"
	"github.com/study/cardano-hw-signer/pkgs/cbor"
)

// MaxDepth is the deepest a compound native script may nest (10 nested
// levels plus the implicit top level), per spec.md §4.4.
const MaxDepth = 11

// Native script CBOR array tags (Shelley multisig + timelock CDDL).
const (
	scriptTagPubkey          = 0
	scriptTagAll             = 1
	scriptTagAny             = 2
	scriptTagNOfK            = 3
	scriptTagInvalidBefore   = 4
	scriptTagInvalidHereafter = 5
)

// level tracks one nesting level of an open compound script: how many
// sibling children are still expected before the level closes.
type level struct {
	remaining int
}

// NativeScriptHashBuilder computes the 28-byte BLAKE2b-224 hash of a
// native (multisig/timelock) script via explicit recursive descent: an
// explicit stack of levels, each counting down the siblings it still
// expects, instead of recursion through Go's call stack (spec.md §4.4).
// The CBOR stream is prefixed with a single 0x00 byte identifying the
// "native script" script-language tag.
type NativeScriptHashBuilder struct {
	hash  *blakehash.Context
	w     *cbor.Writer
	stack []level
}

// NewNativeScriptHashBuilder starts the builder and writes the leading
// 0x00 language-tag byte.
func NewNativeScriptHashBuilder() (*NativeScriptHashBuilder, error) {
	ctx, err := blakehash.New224()
	if err != nil {
		return nil, err
	}
	if _, err := ctx.Write([]byte{0x00}); err != nil {
		return nil, err
	}
	return &NativeScriptHashBuilder{hash: ctx, w: cbor.NewWriter(ctx)}, nil
}

// closeCompleted pops any levels whose remaining count has just reached
// zero, cascading upward (closing a level decrements its parent's own
// remaining count).
func (b *NativeScriptHashBuilder) closeCompleted() {
	for len(b.stack) > 0 && b.stack[len(b.stack)-1].remaining == 0 {
		b.stack = b.stack[:len(b.stack)-1]
		if len(b.stack) > 0 {
			b.stack[len(b.stack)-1].remaining--
		}
	}
}

func (b *NativeScriptHashBuilder) consumeOneChild() {
	if len(b.stack) > 0 {
		b.stack[len(b.stack)-1].remaining--
	}
	b.closeCompleted()
}

// OpenAll pushes an ALL[n] compound script level and emits its CBOR
// header: array(2) [tag=1, array(n) of children].
func (b *NativeScriptHashBuilder) OpenAll(n int) error { return b.openCompound(scriptTagAll, n) }

// OpenAny pushes an ANY[n] compound script level.
func (b *NativeScriptHashBuilder) OpenAny(n int) error { return b.openCompound(scriptTagAny, n) }

// OpenNOfK pushes an N_OF_K(n, k) compound script level: array(3)
// [tag=3, n, array(k) of children].
func (b *NativeScriptHashBuilder) OpenNOfK(n, k int) error {
	if len(b.stack)+1 > MaxDepth {
		return ErrMaxDepthExceeded
	}
	if err := b.w.WriteArrayHeader(3); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(scriptTagNOfK); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(uint64(n)); err != nil {
		return err
	}
	if err := b.w.WriteArrayHeader(uint64(k)); err != nil {
		return err
	}
	b.stack = append(b.stack, level{remaining: k})
	b.closeCompleted()
	return nil
}

func (b *NativeScriptHashBuilder) openCompound(tag int, n int) error {
	if len(b.stack)+1 > MaxDepth {
		return ErrMaxDepthExceeded
	}
	if err := b.w.WriteArrayHeader(2); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(uint64(tag)); err != nil {
		return err
	}
	if err := b.w.WriteArrayHeader(uint64(n)); err != nil {
		return err
	}
	b.stack = append(b.stack, level{remaining: n})
	b.closeCompleted()
	return nil
}

// AddPubkey supplies a pubkey(hash28) leaf script: array(2) [tag=0,
// bytes(28)].
func (b *NativeScriptHashBuilder) AddPubkey(keyHash [28]byte) error {
	if err := b.w.WriteArrayHeader(2); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(scriptTagPubkey); err != nil {
		return err
	}
	if err := b.w.WriteBytes(keyHash[:]); err != nil {
		return err
	}
	b.consumeOneChild()
	return nil
}

// AddInvalidBefore supplies an invalid_before(u64) leaf script.
func (b *NativeScriptHashBuilder) AddInvalidBefore(slot uint64) error {
	return b.addTimelock(scriptTagInvalidBefore, slot)
}

// AddInvalidHereafter supplies an invalid_hereafter(u64) leaf script.
func (b *NativeScriptHashBuilder) AddInvalidHereafter(slot uint64) error {
	return b.addTimelock(scriptTagInvalidHereafter, slot)
}

func (b *NativeScriptHashBuilder) addTimelock(tag int, slot uint64) error {
	if err := b.w.WriteArrayHeader(2); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(uint64(tag)); err != nil {
		return err
	}
	if err := b.w.WriteUnsigned(slot); err != nil {
		return err
	}
	b.consumeOneChild()
	return nil
}

// Finalize requires the stack be empty (every opened compound script
// received all its declared children) and returns the 28-byte hash.
func (b *NativeScriptHashBuilder) Finalize() ([28]byte, error) {
	var out [28]byte
	if len(b.stack) != 0 {
		return out, ErrStackNotEmpty
	}
	copy(out[:], b.hash.Sum())
	return out, nil
}
