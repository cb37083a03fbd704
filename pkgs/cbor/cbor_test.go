package cbor

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// TestWriteUnsignedLengths checks the minimum-length rule from spec.md
// §4.7 (P1): values below each size threshold must use exactly the
// number of bytes the table prescribes.
func TestWriteUnsignedLengths(t *testing.T) {
	cases := []struct {
		v    uint64
		want string
	}{
		{0, "00"},
		{23, "17"},
		{24, "1818"},
		{255, "18ff"},
		{256, "190100"},
		{65535, "19ffff"},
		{65536, "1a00010000"},
		{4294967295, "1affffffff"},
		{4294967296, "1b0000000100000000"},
		{18446744073709551615, "1bffffffffffffffff"},
	}

	for _, c := range cases {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		if err := w.WriteUnsigned(c.v); err != nil {
			t.Fatalf("WriteUnsigned(%d): %v", c.v, err)
		}
		if got := hex.EncodeToString(buf.Bytes()); got != c.want {
			t.Errorf("WriteUnsigned(%d) = %s, want %s", c.v, got, c.want)
		}
	}
}

func TestWriteNegative(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	// n = -1 => v = 0
	if err := w.WriteInt(-1); err != nil {
		t.Fatal(err)
	}
	if got := hex.EncodeToString(buf.Bytes()); got != "20" {
		t.Errorf("WriteInt(-1) = %s, want 20", got)
	}

	buf.Reset()
	// n = -256 => v = 255
	if err := w.WriteInt(-256); err != nil {
		t.Fatal(err)
	}
	if got := hex.EncodeToString(buf.Bytes()); got != "38ff" {
		t.Errorf("WriteInt(-256) = %s, want 38ff", got)
	}
}

func TestWriteBytesAndText(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteBytes([]byte{0xde, 0xad}); err != nil {
		t.Fatal(err)
	}
	if got := hex.EncodeToString(buf.Bytes()); got != "42dead" {
		t.Errorf("WriteBytes = %s, want 42dead", got)
	}

	buf.Reset()
	if err := w.WriteText("IETF"); err != nil {
		t.Fatal(err)
	}
	if got := hex.EncodeToString(buf.Bytes()); got != "6449455446" {
		t.Errorf("WriteText = %s, want 6449455446", got)
	}
}

func TestMapKeyFulfillsCanonicalOrdering(t *testing.T) {
	cases := []struct {
		prev, next []byte
		want       bool
	}{
		{[]byte{0x01}, []byte{0x02}, true},
		{[]byte{0x02}, []byte{0x01}, false},
		{[]byte{0x01}, []byte{0x01}, false}, // equal keys rejected
		{[]byte{0x01}, []byte{0x00, 0x00}, true},
		{[]byte{0x00, 0x00}, []byte{0x01}, false},
	}
	for _, c := range cases {
		if got := MapKeyFulfillsCanonicalOrdering(c.prev, c.next); got != c.want {
			t.Errorf("MapKeyFulfillsCanonicalOrdering(%x, %x) = %v, want %v", c.prev, c.next, got, c.want)
		}
	}
}

func TestIndefiniteArray(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteIndefiniteArrayHeader(); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteUnsigned(1); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteBreak(); err != nil {
		t.Fatal(err)
	}
	if got := hex.EncodeToString(buf.Bytes()); got != "9f01ff" {
		t.Errorf("indefinite array = %s, want 9f01ff", got)
	}
}
