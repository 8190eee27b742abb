// Package blockcodec implements the Avro data-file block compressors,
// registered by their Avro codec name and selected at writer construction
// or reader block decode time.
package blockcodec

import (
	"fmt"

	"github.com/blockleaf/avro/avroerr"
)

// Codec compresses and decompresses one data-file block's payload. Both
// methods are pure transforms: no state survives past a single call, so a
// Codec value may be reused across blocks and shared across readers/writers.
type Codec interface {
	// Name is the Avro codec identifier written into the avro.codec
	// metadata entry (e.g. "deflate").
	Name() string
	Compress(block []byte) ([]byte, error)
	Decompress(compressed []byte) ([]byte, error)
}

var registry = make(map[string]Codec)

// Register adds a codec to the package-level registry, keyed by its Name.
// Built-in codecs register themselves from init functions in this package;
// callers may register additional codecs before constructing a writer or
// reader that needs them.
func Register(c Codec) {
	registry[c.Name()] = c
}

// Lookup returns the codec registered under name, or an error identifying
// it as unknown or not compiled in.
func Lookup(name string) (Codec, error) {
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", avroerr.ErrUnknownCodec, name)
	}
	return c, nil
}

func init() {
	Register(nullCodec{})
	Register(deflateCodec{})
	Register(snappyCodec{})
	Register(bzip2Codec{})
	Register(xzCodec{})
	Register(zstdCodec{})
}
