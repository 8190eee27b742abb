package datafile

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/blockleaf/avro/avroerr"
	"github.com/blockleaf/avro/avroval"
	"github.com/blockleaf/avro/blockcodec"
	"github.com/blockleaf/avro/resolve"
	"github.com/blockleaf/avro/schema"
)

type readerConfig struct {
	readerSchema schema.Schema
	logger       hclog.Logger
}

// ReaderOption configures NewReader.
type ReaderOption func(*readerConfig)

// WithReaderSchema supplies a reader schema distinct from the embedded
// writer schema. If omitted, the reader yields values shaped by the writer
// schema unchanged.
func WithReaderSchema(s schema.Schema) ReaderOption {
	return func(c *readerConfig) { c.readerSchema = s }
}

// WithReaderLogger attaches an hclog.Logger for block-level diagnostics.
func WithReaderLogger(l hclog.Logger) ReaderOption {
	return func(c *readerConfig) { c.logger = l }
}

// Reader streams values out of an Avro object container file. Once
// construction parses the header, Next is the only per-value operation;
// block decompression and sync verification happen transparently as each
// block is exhausted. A Reader is single-threaded, like Writer.
type Reader struct {
	src          *bufio.Reader
	writerSchema schema.Schema
	readerSchema schema.Schema
	metadata     map[string][]byte
	codec        blockcodec.Codec
	sync         [16]byte

	block     []byte
	off       int
	remaining int64

	resolver *resolve.Resolver
	logger   hclog.Logger
}

// NewReader parses the container header from src: magic, metadata map
// (extracting avro.schema and avro.codec), and sync marker. It positions at
// the first block.
func NewReader(src io.Reader, opts ...ReaderOption) (*Reader, error) {
	cfg := readerConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	r := &Reader{
		src:    bufio.NewReader(src),
		logger: logger.Named("avro.datafile.reader"),
	}

	var gotMagic [4]byte
	if _, err := io.ReadFull(r.src, gotMagic[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", avroerr.ErrBadMagic, err)
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("%w: got % x", avroerr.ErrBadMagic, gotMagic)
	}

	metadata, err := readMetadataMap(r.src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", avroerr.ErrMalformedHeader, err)
	}
	r.metadata = metadata

	schemaBytes, ok := metadata[metadataSchemaKey]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q entry", avroerr.ErrMalformedHeader, metadataSchemaKey)
	}
	writerSchema, err := schema.Parse(string(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: embedded writer schema: %v", avroerr.ErrMalformedHeader, err)
	}
	r.writerSchema = writerSchema

	codecName := "null"
	if b, ok := metadata[metadataCodecKey]; ok {
		codecName = string(b)
	}
	codec, err := blockcodec.Lookup(codecName)
	if err != nil {
		return nil, err
	}
	r.codec = codec

	if _, err := io.ReadFull(r.src, r.sync[:]); err != nil {
		return nil, fmt.Errorf("%w: reading sync marker: %v", avroerr.ErrMalformedHeader, err)
	}

	if cfg.readerSchema != nil {
		r.readerSchema = cfg.readerSchema
		r.resolver = resolve.New()
	}

	return r, nil
}

// WriterSchema returns the schema embedded in the file header.
func (r *Reader) WriterSchema() schema.Schema { return r.writerSchema }

// Metadata returns the header's full metadata map, including the reserved
// avro.schema and avro.codec entries.
func (r *Reader) Metadata() map[string][]byte { return r.metadata }

// Next decodes and returns the next value in the stream. It returns io.EOF,
// and no other error, exactly when the stream ends cleanly after the last
// block's sync marker. Any other error is fatal: the stream must not be
// read further.
func (r *Reader) Next() (avroval.Value, error) {
	if r.remaining == 0 {
		if err := r.loadBlock(); err != nil {
			return avroval.Value{}, err
		}
	}
	var (
		v    avroval.Value
		next int
		err  error
	)
	if r.readerSchema != nil {
		v, next, err = r.resolver.Resolve(r.block, r.off, r.writerSchema, r.readerSchema)
	} else {
		v, next, err = avroval.Decode(r.block, r.off, r.writerSchema)
	}
	if err != nil {
		return avroval.Value{}, err
	}
	r.off = next
	r.remaining--
	return v, nil
}

// loadBlock reads and decompresses the next block, or returns io.EOF if the
// stream ends cleanly at this boundary.
func (r *Reader) loadBlock() error {
	count, err := readVarintStream(r.src)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return err
	}
	byteLen, err := readVarintStream(r.src)
	if err != nil {
		return fmt.Errorf("%w: reading block byte-length: %v", avroerr.ErrMalformedHeader, err)
	}
	if byteLen < 0 {
		return fmt.Errorf("%w: negative block byte-length", avroerr.ErrNegativeLength)
	}
	payload := make([]byte, byteLen)
	if _, err := io.ReadFull(r.src, payload); err != nil {
		return fmt.Errorf("%w: reading block payload: %v", avroerr.ErrTruncated, err)
	}
	var gotSync [16]byte
	if _, err := io.ReadFull(r.src, gotSync[:]); err != nil {
		return fmt.Errorf("%w: reading block sync marker: %v", avroerr.ErrTruncated, err)
	}
	if gotSync != r.sync {
		return fmt.Errorf("%w: got % x, want % x", avroerr.ErrSyncMismatch, gotSync, r.sync)
	}
	decompressed, err := r.codec.Decompress(payload)
	if err != nil {
		return err
	}
	r.block = decompressed
	r.off = 0
	r.remaining = count
	r.logger.Debug("loaded block", "items", count, "compressed_bytes", byteLen, "uncompressed_bytes", len(decompressed))
	return nil
}

// readMetadataMap reads the header's map-of-bytes metadata value directly
// off the stream, since at this point there is no decompressed block
// buffer yet to hand to avroval.Decode.
func readMetadataMap(src *bufio.Reader) (map[string][]byte, error) {
	out := make(map[string][]byte)
	for {
		count, err := readVarintStream(src)
		if err != nil {
			return nil, err
		}
		if count < 0 {
			count = -count
			if _, err := readVarintStream(src); err != nil {
				return nil, err
			}
		}
		if count == 0 {
			return out, nil
		}
		for i := int64(0); i < count; i++ {
			key, err := readLengthPrefixedStream(src)
			if err != nil {
				return nil, err
			}
			value, err := readLengthPrefixedStream(src)
			if err != nil {
				return nil, err
			}
			out[string(key)] = value
		}
	}
}

func readLengthPrefixedStream(src *bufio.Reader) ([]byte, error) {
	n, err := readVarintStream(src)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, avroerr.ErrNegativeLength
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(src, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", avroerr.ErrTruncated, err)
	}
	return buf, nil
}

// readVarintStream reads one zig-zag varint directly off a bufio.Reader. A
// clean io.EOF on the very first byte propagates as io.EOF (the only place
// callers distinguish "stream ended here" from "stream is corrupt"); any
// later short read is a truncation.
func readVarintStream(src *bufio.Reader) (int64, error) {
	var result uint64
	var shift uint
	for i := 0; ; i++ {
		if i == 10 {
			return 0, avroerr.ErrVarintOverflow
		}
		b, err := src.ReadByte()
		if err != nil {
			if err != io.EOF {
				return 0, fmt.Errorf("%w: %v", avroerr.ErrIO, err)
			}
			if i == 0 {
				return 0, io.EOF
			}
			return 0, fmt.Errorf("%w: %v", avroerr.ErrTruncated, err)
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return int64(result>>1) ^ -int64(result&1), nil
		}
		shift += 7
	}
}
