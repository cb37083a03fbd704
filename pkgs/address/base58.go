package address

import "math/big"

// base58Alphabet is the Bitcoin alphabet, used for Byron legacy addresses.
// The teacher's pkgs/address/base58.go carries a generic, multi-alphabet
// Base58Encoder (Bitcoin/Ripple/Flickr); Cardano needs only the Bitcoin
// one, so the generic encoder type is not carried over.
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var base58AlphabetMap = func() map[byte]int {
	m := make(map[byte]int, len(base58Alphabet))
	for i := 0; i < len(base58Alphabet); i++ {
		m[base58Alphabet[i]] = i
	}
	return m
}()

// Base58Encode encodes data using the Bitcoin base58 alphabet.
func Base58Encode(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	leadingZeros := 0
	for _, b := range data {
		if b != 0 {
			break
		}
		leadingZeros++
	}

	num := new(big.Int).SetBytes(data)
	base := big.NewInt(58)
	zero := big.NewInt(0)
	mod := new(big.Int)

	var result []byte
	for num.Cmp(zero) > 0 {
		num.DivMod(num, base, mod)
		result = append(result, base58Alphabet[mod.Int64()])
	}
	for i := 0; i < leadingZeros; i++ {
		result = append(result, base58Alphabet[0])
	}
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return string(result)
}

// Base58Decode decodes a base58 string using the Bitcoin alphabet.
func Base58Decode(s string) ([]byte, error) {
	if len(s) == 0 {
		return nil, nil
	}

	leadingZeros := 0
	for _, c := range s {
		if byte(c) != base58Alphabet[0] {
			break
		}
		leadingZeros++
	}

	num := big.NewInt(0)
	base := big.NewInt(58)
	for _, c := range s {
		idx, ok := base58AlphabetMap[byte(c)]
		if !ok {
			return nil, ErrInvalidAddress
		}
		num.Mul(num, base)
		num.Add(num, big.NewInt(int64(idx)))
	}

	decoded := num.Bytes()
	result := make([]byte, leadingZeros+len(decoded))
	copy(result[leadingZeros:], decoded)
	return result, nil
}
