package blockcodec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/blockleaf/avro/avroerr"
)

// zstdCodec implements Avro's "zstandard" codec via klauspost/compress/zstd,
// the pure-Go zstd implementation the rest of the codec stack already
// depends on for deflate.
type zstdCodec struct{}

func (zstdCodec) Name() string { return "zstandard" }

func (zstdCodec) Compress(block []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", avroerr.ErrCodec, err)
	}
	defer enc.Close()
	return enc.EncodeAll(block, nil), nil
}

func (zstdCodec) Decompress(compressed []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", avroerr.ErrCodec, err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", avroerr.ErrCodec, err)
	}
	return out, nil
}
