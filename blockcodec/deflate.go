package blockcodec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/blockleaf/avro/avroerr"
)

// deflateCodec implements Avro's "deflate" codec: raw DEFLATE, with no zlib
// or gzip wrapper.
type deflateCodec struct{}

func (deflateCodec) Name() string { return "deflate" }

func (deflateCodec) Compress(block []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("%w: deflate: %v", avroerr.ErrCodec, err)
	}
	if _, err := w.Write(block); err != nil {
		return nil, fmt.Errorf("%w: deflate: %v", avroerr.ErrCodec, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: deflate: %v", avroerr.ErrCodec, err)
	}
	return buf.Bytes(), nil
}

func (deflateCodec) Decompress(compressed []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: deflate: %v", avroerr.ErrCodec, err)
	}
	return out, nil
}
