// Package avro is the public facade over this module's schema, value,
// resolution, block-codec and data-file container packages. Most callers
// only need this package; the subpackages exist for callers who want finer
// control (a custom block codec, a resolver reused across many readers,
// direct schema inspection).
package avro

import (
	"io"

	"github.com/blockleaf/avro/avroval"
	"github.com/blockleaf/avro/datafile"
	"github.com/blockleaf/avro/schema"
)

// Schema is a parsed Avro schema. See the schema package for its full
// interface (Type, String, Fingerprint, FingerprintUsing).
type Schema = schema.Schema

// Value is a schema-typed Avro value tree. See the avroval package for its
// constructors and accessors.
type Value = avroval.Value

// Parse parses an Avro schema document (JSON text, or a bare type name such
// as "long") into a Schema.
func Parse(doc string) (Schema, error) {
	return schema.Parse(doc)
}

// Fingerprint returns s's 64-bit Rabin (CRC-64-AVRO) fingerprint over its
// Parsing Canonical Form, the identifier schema registries key on by
// default.
func Fingerprint(s Schema) [8]byte {
	return s.Fingerprint()
}

// FingerprintUsing computes s's fingerprint with an explicitly named
// algorithm (schema.MD5 or schema.SHA256; schema.CRC64Avro is equivalent
// to Fingerprint but returned as a slice instead of a fixed array).
func FingerprintUsing(s Schema, typ schema.FingerprintType) ([]byte, error) {
	return s.FingerprintUsing(typ)
}

// Writer writes values into an Avro object container file. See the
// datafile package for configuration options (codec, flush threshold,
// metadata, sync marker, logger).
type Writer = datafile.Writer

// Reader streams values out of an Avro object container file.
type Reader = datafile.Reader

// WriterOption configures NewWriter.
type WriterOption = datafile.WriterOption

// ReaderOption configures NewReader.
type ReaderOption = datafile.ReaderOption

// WithCodec selects the container file's block codec by its Avro
// identifier (e.g. "deflate", "snappy", "bzip2", "xz", "zstandard").
func WithCodec(name string) WriterOption { return datafile.WithCodec(name) }

// WithFlushThreshold sets the in-memory block size, in uncompressed bytes,
// at which the writer automatically emits a block.
func WithFlushThreshold(n int) WriterOption { return datafile.WithFlushThreshold(n) }

// WithMetadata adds a user metadata entry to the container header.
func WithMetadata(key string, value []byte) WriterOption { return datafile.WithMetadata(key, value) }

// WithReaderSchema supplies a reader schema distinct from the embedded
// writer schema, enabling schema resolution as values are read back.
func WithReaderSchema(s Schema) ReaderOption { return datafile.WithReaderSchema(s) }

// NewWriter opens an Avro object container file for writing against s,
// immediately emitting the header to sink.
func NewWriter(s Schema, sink io.Writer, opts ...WriterOption) (*Writer, error) {
	return datafile.NewWriter(s, sink, opts...)
}

// NewReader opens an Avro object container file for reading, parsing its
// header (embedded writer schema, codec, sync marker) from src.
func NewReader(src io.Reader, opts ...ReaderOption) (*Reader, error) {
	return datafile.NewReader(src, opts...)
}
