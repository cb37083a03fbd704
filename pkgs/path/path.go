// Package path implements Cardano derivation-path parsing, wire encoding,
// classification and the "reasonable path" domain-limit check. It
// generalizes the teacher's pkgs/bip32 (generic hardened/non-hardened
// path string parsing, `DerivationPath []uint32`) and pkgs/bip44
// (structured purpose/coin/account/change/index breakdown, `ParsePath`)
// to Cardano's own purpose-number classification table instead of
// BIP-44's single fixed 5-field shape.
package path

import (
	"strconv"
	"strings"

	"github.com/study/cardano-hw-signer/pkgs/bufview"
)

// HardenedOffset marks the start of the hardened index range (2^31), the
// same constant the teacher's pkgs/bip32 calls HardenedKeyStart.
const HardenedOffset = uint32(1) << 31

// MaxComponents is the longest path this device accepts (purpose, coin
// type, account, role, index).
const MaxComponents = 5

// IsHardened reports whether idx is in the hardened range.
func IsHardened(idx uint32) bool {
	return idx >= HardenedOffset
}

// Hardened returns idx with the hardened bit set.
func Hardened(idx uint32) uint32 {
	return idx + HardenedOffset
}

// unhardened returns idx with the hardened bit cleared.
func unhardened(idx uint32) uint32 {
	return idx - HardenedOffset
}

// Path is an ordered sequence of up to MaxComponents BIP-32 indices.
type Path []uint32

// Parse reads the wire form of a path from an APDU payload: one length
// byte followed by length big-endian u32 indices.
func Parse(v *bufview.View) (Path, error) {
	n, err := v.ReadU8()
	if err != nil {
		return nil, err
	}
	if int(n) > MaxComponents {
		return nil, ErrInvalidPath
	}

	p := make(Path, n)
	for i := range p {
		idx, err := v.ReadU32BE()
		if err != nil {
			return nil, err
		}
		p[i] = idx
	}
	return p, nil
}

// AppendWire appends the wire-format encoding of p (length byte + BE u32
// indices) to buf.
func (p Path) AppendWire(buf []byte) []byte {
	buf = append(buf, byte(len(p)))
	for _, idx := range p {
		buf = append(buf, byte(idx>>24), byte(idx>>16), byte(idx>>8), byte(idx))
	}
	return buf
}

// String renders p in the conventional m/44'/1815'/0'/0/0 form, matching
// the teacher's DerivationPath.String.
func (p Path) String() string {
	if len(p) == 0 {
		return "m"
	}
	parts := make([]string, 0, len(p)+1)
	parts = append(parts, "m")
	for _, idx := range p {
		if IsHardened(idx) {
			parts = append(parts, strconv.FormatUint(uint64(unhardened(idx)), 10)+"'")
		} else {
			parts = append(parts, strconv.FormatUint(uint64(idx), 10))
		}
	}
	return strings.Join(parts, "/")
}

// at returns component i of p, or 0 with ok=false if p is too short.
func (p Path) at(i int) (uint32, bool) {
	if i >= len(p) {
		return 0, false
	}
	return p[i], true
}
