package hash

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestHMACSHA512(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		data     string
		expected string
	}{
		{
			name:     "Bitcoin seed",
			key:      "Bitcoin seed",
			data:     "000102030405060708090a0b0c0d0e0f",
			expected: "e8f32e723decf4051aefac8e2c93c9c5b214313817cdb01a1494b917c8436b35873dff81c02f525623fd1fe5167eac3a55a049de3d314bb42ee227ffed37d508",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, _ := hex.DecodeString(tt.data)
			result := HMACSHA512([]byte(tt.key), data)
			expected, _ := hex.DecodeString(tt.expected)

			if !bytes.Equal(result, expected) {
				t.Errorf("HMACSHA512() = %x, want %s", result, tt.expected)
			}

			if len(result) != 64 {
				t.Errorf("HMACSHA512() length = %d, want 64", len(result))
			}
		})
	}
}
