package blockcodec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"

	"github.com/blockleaf/avro/avroerr"
)

// bzip2Codec implements Avro's "bzip2" codec. The standard library only
// ships a bzip2 decompressor, so both directions go through dsnet/compress,
// the one pure-Go bzip2 implementation in the ecosystem that also writes.
type bzip2Codec struct{}

func (bzip2Codec) Name() string { return "bzip2" }

func (bzip2Codec) Compress(block []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := bzip2.NewWriter(&buf, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: bzip2: %v", avroerr.ErrCodec, err)
	}
	if _, err := w.Write(block); err != nil {
		return nil, fmt.Errorf("%w: bzip2: %v", avroerr.ErrCodec, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: bzip2: %v", avroerr.ErrCodec, err)
	}
	return buf.Bytes(), nil
}

func (bzip2Codec) Decompress(compressed []byte) ([]byte, error) {
	r, err := bzip2.NewReader(bytes.NewReader(compressed), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: bzip2: %v", avroerr.ErrCodec, err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: bzip2: %v", avroerr.ErrCodec, err)
	}
	return out, nil
}
