package avroval

import "github.com/blockleaf/avro/avroerr"

// zigzagEncode maps a signed integer to an unsigned one so that small
// magnitude values (positive or negative) both produce small varints.
func zigzagEncode(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

func zigzagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// appendVarint appends the unsigned little-endian base-128 varint encoding
// of u to buf, returning the extended slice.
func appendVarint(buf []byte, u uint64) []byte {
	for u >= 0x80 {
		buf = append(buf, byte(u)|0x80)
		u >>= 7
	}
	return append(buf, byte(u))
}

// readVarint reads a varint from buf starting at off, returning the decoded
// unsigned value, the number of bytes consumed, and an error. Avro longs
// encode to at most 10 bytes; an 11th continuation byte is an overflow.
func readVarint(buf []byte, off int) (uint64, int, error) {
	var result uint64
	var shift uint
	for i := 0; ; i++ {
		if i == 10 {
			return 0, 0, avroerr.ErrVarintOverflow
		}
		if off+i >= len(buf) {
			return 0, 0, avroerr.ErrTruncated
		}
		b := buf[off+i]
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
	}
}
