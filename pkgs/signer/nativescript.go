package signer

import (
	"github.com/study/cardano-hw-signer/pkgs/apdu"
	"github.com/study/cardano-hw-signer/pkgs/bufview"
	"github.com/study/cardano-hw-signer/pkgs/hashbuilder"
)

// Compound/simple native script sub-tags carried in DERIVE_NATIVE_SCRIPT_HASH
// payloads (distinct from the CBOR-level script tags hashbuilder emits;
// these only select which NativeScriptHashBuilder method this frame drives).
const (
	compoundAll   byte = 0
	compoundAny   byte = 1
	compoundNOfK  byte = 2
	simplePubkey  byte = 0
	simpleBefore  byte = 1
	simpleAfter   byte = 2
)

func newNativeScriptBuilder() (*hashbuilder.NativeScriptHashBuilder, error) {
	return hashbuilder.NewNativeScriptHashBuilder()
}

func (s *Session) driveCompoundOpen(v *bufview.View) error {
	tag, err := v.ReadU8()
	if err != nil {
		return apdu.ErrInvalidData
	}
	switch tag {
	case compoundAll:
		n, err := v.ReadU32BE()
		if err != nil {
			return apdu.ErrInvalidData
		}
		return s.nativeScript.OpenAll(int(n))
	case compoundAny:
		n, err := v.ReadU32BE()
		if err != nil {
			return apdu.ErrInvalidData
		}
		return s.nativeScript.OpenAny(int(n))
	case compoundNOfK:
		n, err := v.ReadU32BE()
		if err != nil {
			return apdu.ErrInvalidData
		}
		k, err := v.ReadU32BE()
		if err != nil {
			return apdu.ErrInvalidData
		}
		return s.nativeScript.OpenNOfK(int(n), int(k))
	default:
		return apdu.ErrInvalidRequestParameters
	}
}

func (s *Session) driveSimpleScript(v *bufview.View) error {
	kind, err := v.ReadU8()
	if err != nil {
		return apdu.ErrInvalidData
	}
	switch kind {
	case simplePubkey:
		hash, err := v.ReadBytes(28)
		if err != nil {
			return apdu.ErrInvalidData
		}
		var h [28]byte
		copy(h[:], hash)
		return s.nativeScript.AddPubkey(h)
	case simpleBefore:
		slot, err := v.ReadU64BE()
		if err != nil {
			return apdu.ErrInvalidData
		}
		return s.nativeScript.AddInvalidBefore(slot)
	case simpleAfter:
		slot, err := v.ReadU64BE()
		if err != nil {
			return apdu.ErrInvalidData
		}
		return s.nativeScript.AddInvalidHereafter(slot)
	default:
		return apdu.ErrInvalidRequestParameters
	}
}
