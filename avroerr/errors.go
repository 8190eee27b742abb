// Package avroerr holds the sentinel error kinds shared across the schema,
// avroval, resolve, blockcodec and datafile packages. Callers match on these
// with errors.Is; call sites wrap them with fmt.Errorf("...: %w", ...) to add
// whatever context they hold, such as a record field name, a schema fullname
// or an out-of-range index. No byte offset or JSON path is attached to any
// of these errors.
package avroerr

import "errors"

// Schema parsing.
var (
	ErrMalformedJSON     = errors.New("avro: malformed schema JSON")
	ErrUnknownPrimitive  = errors.New("avro: unknown primitive type name")
	ErrMissingAttribute  = errors.New("avro: missing required schema attribute")
	ErrInvalidName       = errors.New("avro: invalid name or symbol")
	ErrDuplicateName     = errors.New("avro: duplicate fullname or alias")
	ErrUnresolvedRef     = errors.New("avro: unresolved schema reference")
	ErrInvalidDefault    = errors.New("avro: default value does not match declared type")
	ErrIllegalUnion      = errors.New("avro: illegal union composition")
)

// Value encoding.
var (
	ErrValueMismatch    = errors.New("avro: value does not match schema")
	ErrUnionBranch      = errors.New("avro: no matching union branch")
	ErrFixedSize        = errors.New("avro: fixed value size mismatch")
	ErrUnknownSymbol    = errors.New("avro: enum symbol not in schema")
)

// Binary decoding.
var (
	ErrTruncated      = errors.New("avro: truncated input")
	ErrVarintOverflow = errors.New("avro: varint overflow")
	ErrInvalidUTF8    = errors.New("avro: invalid UTF-8 in string")
	ErrIndexRange     = errors.New("avro: union or enum index out of range")
	ErrNegativeLength = errors.New("avro: negative length")
)

// Schema resolution.
var (
	ErrUnresolvable  = errors.New("avro: writer and reader schemas are not resolvable")
	ErrMissingDefault = errors.New("avro: reader field absent from writer and has no default")
)

// Container format.
var (
	ErrBadMagic        = errors.New("avro: bad container magic bytes")
	ErrMalformedHeader = errors.New("avro: malformed container metadata")
	ErrSyncMismatch    = errors.New("avro: sync marker mismatch")
	ErrUnknownCodec    = errors.New("avro: unknown or not-compiled-in block codec")
)

// Block codec.
var ErrCodec = errors.New("avro: block codec failure")

// Underlying byte sink/source.
var ErrIO = errors.New("avro: underlying sink or source failure")
