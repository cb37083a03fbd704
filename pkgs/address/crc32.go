package address

import "hash/crc32"

// CRC32 computes the IEEE 802.3 CRC-32 checksum used inside Byron address
// CBOR. The teacher's 25-chain address package never needed this (none of
// its other chains use CBOR+CRC32 addressing), so it is added here
// straight from the stdlib rather than adapted from any teacher source.
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}
