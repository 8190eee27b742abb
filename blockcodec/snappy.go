package blockcodec

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/golang/snappy"

	"github.com/blockleaf/avro/avroerr"
)

// snappyCodec implements Avro's "snappy" codec. This is deliberately not
// Google's standard Snappy framing format: Avro snappy-compresses the block
// with the bare block API (not the streaming frame format) and appends a
// trailing 4-byte big-endian CRC-32 (IEEE) of the *uncompressed* block
// bytes, so the reader can validate decompression without re-reading the
// whole file.
type snappyCodec struct{}

func (snappyCodec) Name() string { return "snappy" }

func (snappyCodec) Compress(block []byte) ([]byte, error) {
	compressed := snappy.Encode(nil, block)
	checksum := crc32.ChecksumIEEE(block)
	out := make([]byte, len(compressed)+4)
	copy(out, compressed)
	binary.BigEndian.PutUint32(out[len(compressed):], checksum)
	return out, nil
}

func (snappyCodec) Decompress(compressed []byte) ([]byte, error) {
	if len(compressed) < 4 {
		return nil, fmt.Errorf("%w: snappy: block shorter than trailing checksum", avroerr.ErrCodec)
	}
	body, trailer := compressed[:len(compressed)-4], compressed[len(compressed)-4:]
	out, err := snappy.Decode(nil, body)
	if err != nil {
		return nil, fmt.Errorf("%w: snappy: %v", avroerr.ErrCodec, err)
	}
	want := binary.BigEndian.Uint32(trailer)
	if got := crc32.ChecksumIEEE(out); got != want {
		return nil, fmt.Errorf("%w: snappy: checksum mismatch (got %08x, want %08x)", avroerr.ErrCodec, got, want)
	}
	return out, nil
}
