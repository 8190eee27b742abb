// Package datafile implements the Avro object container file format: header
// emission with embedded writer schema and sync marker, block framing with
// codec compression, flush-threshold buffering on the write side, and
// streaming block iteration with optional schema resolution on the read
// side.
package datafile

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/blockleaf/avro/avroerr"
	"github.com/blockleaf/avro/avroval"
	"github.com/blockleaf/avro/blockcodec"
	"github.com/blockleaf/avro/schema"
)

// magic is the 4-byte Avro object container file signature.
var magic = [4]byte{0x4F, 0x62, 0x6A, 0x01}

const defaultFlushThreshold = 64 * 1024

const metadataSchemaKey = "avro.schema"
const metadataCodecKey = "avro.codec"
const reservedMetaPrefix = "avro."

var metadataMapSchema = schema.NewMapSchema(schema.NewPrimitiveSchema(schema.Bytes))

type writerConfig struct {
	codec          string
	flushThreshold int
	metadata       map[string][]byte
	logger         hclog.Logger
	sync           *[16]byte
}

// WriterOption configures NewWriter. The recognized set is exactly codec,
// flush threshold, user metadata entries, a logger and a pinned sync
// marker; there is no
// catch-all escape hatch, matching the closed configuration surface the
// object container format supports.
type WriterOption func(*writerConfig)

// WithCodec selects the block codec by its Avro identifier (e.g.
// "deflate"). Defaults to "null". The codec must be registered in
// blockcodec or NewWriter fails.
func WithCodec(name string) WriterOption {
	return func(c *writerConfig) { c.codec = name }
}

// WithFlushThreshold sets the in-memory block size, in uncompressed bytes,
// at which the writer automatically emits a block. Defaults to 64 KiB.
func WithFlushThreshold(n int) WriterOption {
	return func(c *writerConfig) { c.flushThreshold = n }
}

// WithMetadata adds a user metadata entry to the header. key must not begin
// with "avro.", the namespace reserved for this format's own entries.
func WithMetadata(key string, value []byte) WriterOption {
	return func(c *writerConfig) {
		if c.metadata == nil {
			c.metadata = make(map[string][]byte)
		}
		c.metadata[key] = value
	}
}

// WithLogger attaches an hclog.Logger the writer uses for low-volume
// diagnostic logging (block flush sizes, codec selection). Defaults to a
// discarding logger.
func WithLogger(l hclog.Logger) WriterOption {
	return func(c *writerConfig) { c.logger = l }
}

// WithSync pins the 16-byte sync marker instead of generating one randomly.
// Exists for reproducible tests and golden files; production callers should
// leave it unset.
func WithSync(sync [16]byte) WriterOption {
	return func(c *writerConfig) { c.sync = &sync }
}

// Writer buffers encoded Avro values in memory and frames them into blocks
// on an underlying sink as the object container format requires. A Writer
// is single-threaded: callers must not call its methods from more than one
// goroutine at a time.
type Writer struct {
	schema schema.Schema
	sink   io.Writer
	codec  blockcodec.Codec
	sync   [16]byte

	flushThreshold int
	buf            []byte
	count          int
	closed         bool

	logger hclog.Logger
}

// NewWriter constructs a Writer, immediately emitting the container header
// (magic, metadata map with the embedded writer schema and codec name, and
// sync marker) to sink.
func NewWriter(s schema.Schema, sink io.Writer, opts ...WriterOption) (*Writer, error) {
	cfg := writerConfig{codec: "null", flushThreshold: defaultFlushThreshold}
	for _, opt := range opts {
		opt(&cfg)
	}
	for k := range cfg.metadata {
		if strings.HasPrefix(k, reservedMetaPrefix) {
			return nil, fmt.Errorf("%w: user metadata key %q uses reserved %q prefix", avroerr.ErrMalformedHeader, k, reservedMetaPrefix)
		}
	}
	codec, err := blockcodec.Lookup(cfg.codec)
	if err != nil {
		return nil, err
	}
	logger := cfg.logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	w := &Writer{
		schema:         s,
		sink:           sink,
		codec:          codec,
		flushThreshold: cfg.flushThreshold,
		logger:         logger.Named("avro.datafile.writer"),
	}
	if cfg.sync != nil {
		w.sync = *cfg.sync
	} else if _, err := rand.Read(w.sync[:]); err != nil {
		return nil, fmt.Errorf("%w: generating sync marker: %v", avroerr.ErrIO, err)
	}
	if err := w.writeHeader(s, cfg); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader(s schema.Schema, cfg writerConfig) error {
	entries := make([]avroval.MapEntry, 0, len(cfg.metadata)+2)
	entries = append(entries,
		avroval.MapEntry{Key: metadataSchemaKey, Value: avroval.Bytes([]byte(schemaJSON(s)))},
		avroval.MapEntry{Key: metadataCodecKey, Value: avroval.Bytes([]byte(cfg.codec))},
	)
	for k, v := range cfg.metadata {
		entries = append(entries, avroval.MapEntry{Key: k, Value: avroval.Bytes(v)})
	}

	var out []byte
	out = append(out, magic[:]...)
	var err error
	out, err = avroval.Encode(out, avroval.Map(entries), metadataMapSchema)
	if err != nil {
		return fmt.Errorf("%w: %v", avroerr.ErrMalformedHeader, err)
	}
	out = append(out, w.sync[:]...)
	if _, err := w.sink.Write(out); err != nil {
		return fmt.Errorf("%w: %v", avroerr.ErrIO, err)
	}
	w.logger.Debug("wrote container header", "codec", cfg.codec, "sync", fmt.Sprintf("%x", w.sync))
	return nil
}

// Write encodes v against the writer schema and appends it to the current
// in-memory block, flushing automatically once the block reaches the
// configured flush threshold.
func (w *Writer) Write(v avroval.Value) error {
	if w.closed {
		return fmt.Errorf("%w: write after close", avroerr.ErrIO)
	}
	next, err := avroval.Encode(w.buf, v, w.schema)
	if err != nil {
		return err
	}
	w.buf = next
	w.count++
	if len(w.buf) >= w.flushThreshold {
		return w.Flush()
	}
	return nil
}

// Flush compresses and emits the current block, if any, and resets the
// in-memory buffer. Flushing an empty block is a no-op: the format never
// emits zero-item blocks.
func (w *Writer) Flush() error {
	if w.count == 0 {
		return nil
	}
	compressed, err := w.codec.Compress(w.buf)
	if err != nil {
		return err
	}
	var frame []byte
	frame, err = avroval.Encode(frame, avroval.Long(int64(w.count)), schema.NewPrimitiveSchema(schema.Long))
	if err != nil {
		return err
	}
	frame, err = avroval.Encode(frame, avroval.Long(int64(len(compressed))), schema.NewPrimitiveSchema(schema.Long))
	if err != nil {
		return err
	}
	frame = append(frame, compressed...)
	frame = append(frame, w.sync[:]...)
	if _, err := w.sink.Write(frame); err != nil {
		return fmt.Errorf("%w: %v", avroerr.ErrIO, err)
	}
	w.logger.Debug("flushed block", "items", w.count, "uncompressed_bytes", len(w.buf), "compressed_bytes", len(compressed))
	w.buf = w.buf[:0]
	w.count = 0
	return nil
}

// Close flushes any pending block. Dropping a Writer without calling Close
// or Flush may lose the trailing unflushed block; previously written
// blocks are never affected.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.Flush()
}

func schemaJSON(s schema.Schema) string {
	// The canonical form is valid, round-trippable schema JSON (it's a
	// strict subset of what the parser accepts back in), and is the same
	// text the schema package hashes for fingerprinting.
	return s.String()
}
