package blockcodec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"

	"github.com/blockleaf/avro/avroerr"
)

// xzCodec implements Avro's "xz" codec using ulikunitz/xz, the standard
// pure-Go xz implementation; the standard library has no xz support at all.
type xzCodec struct{}

func (xzCodec) Name() string { return "xz" }

func (xzCodec) Compress(block []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("%w: xz: %v", avroerr.ErrCodec, err)
	}
	if _, err := w.Write(block); err != nil {
		return nil, fmt.Errorf("%w: xz: %v", avroerr.ErrCodec, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: xz: %v", avroerr.ErrCodec, err)
	}
	return buf.Bytes(), nil
}

func (xzCodec) Decompress(compressed []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: xz: %v", avroerr.ErrCodec, err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: xz: %v", avroerr.ErrCodec, err)
	}
	return out, nil
}
