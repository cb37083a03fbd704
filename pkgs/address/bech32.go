package address

import (
	"fmt"
	"strings"
)

// bech32Charset is the BIP-173 32-character alphabet.
const bech32Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

var bech32CharsetMap = func() map[byte]int {
	m := make(map[byte]int, len(bech32Charset))
	for i, c := range []byte(bech32Charset) {
		m[c] = i
	}
	return m
}()

// MaxHRPLength and MaxDataLength are the BIP-173 limits Cardano's bech32
// encoding enforces (the teacher's generic multi-chain bech32 left these
// unenforced since some of its other chains don't need them).
const (
	MaxHRPLength  = 16
	MaxDataLength = 150
)

func bech32Polymod(values []int) int {
	generator := []int{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}
	chk := 1
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ v
		for i := 0; i < 5; i++ {
			if (top>>uint(i))&1 == 1 {
				chk ^= generator[i]
			}
		}
	}
	return chk
}

func bech32HRPExpand(hrp string) []int {
	result := make([]int, len(hrp)*2+1)
	for i, c := range hrp {
		result[i] = int(c) >> 5
		result[i+len(hrp)+1] = int(c) & 31
	}
	result[len(hrp)] = 0
	return result
}

func bech32VerifyChecksum(hrp string, data []int) bool {
	values := append(bech32HRPExpand(hrp), data...)
	return bech32Polymod(values) == 1
}

func bech32CreateChecksum(hrp string, data []int) []int {
	values := append(bech32HRPExpand(hrp), data...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	polymod := bech32Polymod(values) ^ 1
	checksum := make([]int, 6)
	for i := 0; i < 6; i++ {
		checksum[i] = (polymod >> uint(5*(5-i))) & 31
	}
	return checksum
}

// Bech32Encode encodes data under hrp using standard (BIP-173, not
// bech32m) bech32, the only variant Cardano uses. hrp must be at most
// MaxHRPLength characters and data at most MaxDataLength bytes.
func Bech32Encode(hrp string, data []byte) (string, error) {
	if len(hrp) > MaxHRPLength {
		return "", ErrHRPTooLong
	}
	if len(data) > MaxDataLength {
		return "", ErrDataTooLong
	}

	intData := make([]int, len(data))
	for i, b := range data {
		intData[i] = int(b)
	}
	converted, err := convertBits(intData, 8, 5, true)
	if err != nil {
		return "", err
	}

	checksum := bech32CreateChecksum(hrp, converted)

	var result strings.Builder
	result.WriteString(strings.ToLower(hrp))
	result.WriteByte('1')
	for _, d := range converted {
		result.WriteByte(bech32Charset[d])
	}
	for _, c := range checksum {
		result.WriteByte(bech32Charset[c])
	}
	return result.String(), nil
}

// Bech32Decode decodes a bech32 string back into its human-readable part
// and payload, verifying the checksum and the BIP-173 length limits.
func Bech32Decode(s string) (hrp string, data []byte, err error) {
	lower := strings.ToLower(s)
	upper := strings.ToUpper(s)
	if s != lower && s != upper {
		return "", nil, fmt.Errorf("%w: mixed case", ErrInvalidAddress)
	}
	s = lower

	pos := strings.LastIndex(s, "1")
	if pos < 1 || pos+7 > len(s) {
		return "", nil, fmt.Errorf("%w: missing separator", ErrInvalidAddress)
	}

	hrp = s[:pos]
	if len(hrp) > MaxHRPLength {
		return "", nil, ErrHRPTooLong
	}
	dataStr := s[pos+1:]

	intData := make([]int, len(dataStr))
	for i, c := range []byte(dataStr) {
		idx, ok := bech32CharsetMap[c]
		if !ok {
			return "", nil, fmt.Errorf("%w: invalid character %q", ErrInvalidAddress, c)
		}
		intData[i] = idx
	}

	if !bech32VerifyChecksum(hrp, intData) {
		return "", nil, ErrInvalidChecksum
	}

	converted, err := convertBits(intData[:len(intData)-6], 5, 8, false)
	if err != nil {
		return "", nil, err
	}
	if len(converted) > MaxDataLength {
		return "", nil, ErrDataTooLong
	}

	data = make([]byte, len(converted))
	for i, v := range converted {
		data[i] = byte(v)
	}
	return hrp, data, nil
}

// convertBits regroups data from fromBits-wide to toBits-wide values.
func convertBits(data []int, fromBits, toBits int, pad bool) ([]int, error) {
	acc := 0
	bits := 0
	maxv := (1 << toBits) - 1
	var result []int

	for _, value := range data {
		if value < 0 || value>>fromBits != 0 {
			return nil, fmt.Errorf("%w: invalid value %d", ErrInvalidAddress, value)
		}
		acc = (acc << fromBits) | value
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			result = append(result, (acc>>bits)&maxv)
		}
	}

	if pad {
		if bits > 0 {
			result = append(result, (acc<<(toBits-bits))&maxv)
		}
	} else if bits >= fromBits || ((acc<<(toBits-bits))&maxv) != 0 {
		return nil, fmt.Errorf("%w: invalid padding", ErrInvalidAddress)
	}

	return result, nil
}
