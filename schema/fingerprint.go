package schema

import (
	"crypto/md5"
	"crypto/sha256"
	"hash/crc64"
)

// rabinEmpty is the Avro spec's fixed starting value and generator constant
// for the 64-bit Rabin fingerprint, a CRC-64 variant distinct from the
// standard CRC-64-ISO/ECMA polynomials.
const rabinEmpty uint64 = 0xc15d213aa4d7a795

// rabinTable is built with the standard library's own table constructor,
// which accepts any 64-bit polynomial rather than just the ISO/ECMA ones.
var rabinTable = crc64.MakeTable(rabinEmpty)

// rabinFingerprint computes the Avro 64-bit Rabin fingerprint of buf, little
// endian as the spec defines it, returned as 8 bytes least-significant byte
// first (matching how CRC-64-AVRO is encoded into schema meta/sync values).
//
// This can't be crc64.New/Write/Sum64: that digest's internal convention
// complements the accumulator at the start and end of every Write, which is
// the ISO/ECMA CRC-64 convention and not the Avro spec's, whose fold starts
// at rabinEmpty (not all-ones) and never complements. Only the table
// construction is shared with the stdlib algorithm; the fold stays explicit.
func rabinFingerprint(buf []byte) [8]byte {
	fp := rabinEmpty
	for _, b := range buf {
		fp = (fp >> 8) ^ rabinTable[(fp^uint64(b))&0xff]
	}
	var out [8]byte
	for i := 0; i < 8; i++ {
		out[i] = byte(fp >> (8 * uint(i)))
	}
	return out
}

func md5Fingerprint(buf []byte) [16]byte {
	return md5.Sum(buf)
}

func sha256Fingerprint(buf []byte) [32]byte {
	return sha256.Sum256(buf)
}
