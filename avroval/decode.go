package avroval

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/blockleaf/avro/avroerr"
	"github.com/blockleaf/avro/schema"
)

// Decode reads one schema-directed value from buf starting at off, and
// returns the value, the offset just past it, and an error. Decoding never
// infers shape from the bytes: every branch is dictated by s.
func Decode(buf []byte, off int, s schema.Schema) (Value, int, error) {
	if r, ok := s.(*schema.RefSchema); ok {
		return Decode(buf, off, r.Resolved())
	}
	switch s.Type() {
	case schema.Null:
		return Null(), off, nil
	case schema.Boolean:
		if off >= len(buf) {
			return Value{}, off, avroerr.ErrTruncated
		}
		return Boolean(buf[off] != 0), off + 1, nil
	case schema.Int:
		u, n, err := readVarint(buf, off)
		if err != nil {
			return Value{}, off, err
		}
		return Int(int32(zigzagDecode(u))), off + n, nil
	case schema.Long:
		u, n, err := readVarint(buf, off)
		if err != nil {
			return Value{}, off, err
		}
		return Long(zigzagDecode(u)), off + n, nil
	case schema.Float:
		if off+4 > len(buf) {
			return Value{}, off, avroerr.ErrTruncated
		}
		bits := binary.LittleEndian.Uint32(buf[off : off+4])
		return Float(math.Float32frombits(bits)), off + 4, nil
	case schema.Double:
		if off+8 > len(buf) {
			return Value{}, off, avroerr.ErrTruncated
		}
		bits := binary.LittleEndian.Uint64(buf[off : off+8])
		return Double(math.Float64frombits(bits)), off + 8, nil
	case schema.Bytes:
		b, n, err := decodeLengthPrefixed(buf, off)
		if err != nil {
			return Value{}, off, err
		}
		return Bytes(b), n, nil
	case schema.String:
		b, n, err := decodeLengthPrefixed(buf, off)
		if err != nil {
			return Value{}, off, err
		}
		if !utf8.Valid(b) {
			return Value{}, off, avroerr.ErrInvalidUTF8
		}
		return String(string(b)), n, nil
	case schema.Fixed:
		fx := s.(*schema.FixedSchema)
		if off+fx.Size() > len(buf) {
			return Value{}, off, avroerr.ErrTruncated
		}
		out := make([]byte, fx.Size())
		copy(out, buf[off:off+fx.Size()])
		return Fixed(out), off + fx.Size(), nil
	case schema.Enum:
		en := s.(*schema.EnumSchema)
		u, n, err := readVarint(buf, off)
		if err != nil {
			return Value{}, off, err
		}
		idx := int(zigzagDecode(u))
		symbols := en.Symbols()
		if idx < 0 || idx >= len(symbols) {
			return Value{}, off, fmt.Errorf("%w: enum index %d", avroerr.ErrIndexRange, idx)
		}
		return Enum(idx, symbols[idx]), off + n, nil
	case schema.Array:
		return decodeArray(buf, off, s.(*schema.ArraySchema))
	case schema.Map:
		return decodeMap(buf, off, s.(*schema.MapSchema))
	case schema.Record:
		return decodeRecord(buf, off, s.(*schema.RecordSchema))
	case schema.Union:
		return decodeUnion(buf, off, s.(*schema.UnionSchema))
	default:
		return Value{}, off, fmt.Errorf("%w: unsupported schema type %s", avroerr.ErrValueMismatch, s.Type())
	}
}

func decodeLengthPrefixed(buf []byte, off int) ([]byte, int, error) {
	u, n, err := readVarint(buf, off)
	if err != nil {
		return nil, off, err
	}
	length := zigzagDecode(u)
	if length < 0 {
		return nil, off, avroerr.ErrNegativeLength
	}
	off += n
	if off+int(length) > len(buf) {
		return nil, off, avroerr.ErrTruncated
	}
	out := make([]byte, length)
	copy(out, buf[off:off+int(length)])
	return out, off + int(length), nil
}

// readBlockCount reads one array/map block header: a long count. A negative
// count is followed by an explicit long byte-length of the block (used by
// writers to make blocks skippable); this decoder always reads every item,
// so it consumes and ignores that byte-length.
func readBlockCount(buf []byte, off int) (count int64, next int, err error) {
	u, n, err := readVarint(buf, off)
	if err != nil {
		return 0, off, err
	}
	off += n
	count = zigzagDecode(u)
	if count < 0 {
		count = -count
		_, n, err := readVarint(buf, off)
		if err != nil {
			return 0, off, err
		}
		off += n
	}
	return count, off, nil
}

func decodeArray(buf []byte, off int, a *schema.ArraySchema) (Value, int, error) {
	var items []Value
	for {
		count, next, err := readBlockCount(buf, off)
		if err != nil {
			return Value{}, off, err
		}
		off = next
		if count == 0 {
			break
		}
		for i := int64(0); i < count; i++ {
			var v Value
			v, off, err = Decode(buf, off, a.Items())
			if err != nil {
				return Value{}, off, err
			}
			items = append(items, v)
		}
	}
	return Array(items), off, nil
}

func decodeMap(buf []byte, off int, m *schema.MapSchema) (Value, int, error) {
	var entries []MapEntry
	for {
		count, next, err := readBlockCount(buf, off)
		if err != nil {
			return Value{}, off, err
		}
		off = next
		if count == 0 {
			break
		}
		for i := int64(0); i < count; i++ {
			key, n, err := decodeLengthPrefixed(buf, off)
			if err != nil {
				return Value{}, off, err
			}
			off = n
			var v Value
			v, off, err = Decode(buf, off, m.Values())
			if err != nil {
				return Value{}, off, err
			}
			entries = append(entries, MapEntry{Key: string(key), Value: v})
		}
	}
	return Map(entries), off, nil
}

func decodeRecord(buf []byte, off int, r *schema.RecordSchema) (Value, int, error) {
	fields := make([]RecordField, 0, len(r.Fields()))
	for _, f := range r.Fields() {
		v, next, err := Decode(buf, off, f.Type())
		if err != nil {
			return Value{}, off, fmt.Errorf("field %q: %w", f.Name(), err)
		}
		off = next
		fields = append(fields, RecordField{Name: f.Name(), Value: v})
	}
	return Record(fields), off, nil
}

func decodeUnion(buf []byte, off int, u *schema.UnionSchema) (Value, int, error) {
	uidx, n, err := readVarint(buf, off)
	if err != nil {
		return Value{}, off, err
	}
	idx := int(zigzagDecode(uidx))
	branches := u.Branches()
	if idx < 0 || idx >= len(branches) {
		return Value{}, off, fmt.Errorf("%w: union index %d", avroerr.ErrIndexRange, idx)
	}
	off += n
	inner, next, err := Decode(buf, off, branches[idx])
	if err != nil {
		return Value{}, off, err
	}
	return Union(idx, inner), next, nil
}
