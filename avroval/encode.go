package avroval

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/blockleaf/avro/avroerr"
	"github.com/blockleaf/avro/schema"
)

// Encode appends the schema-directed binary encoding of v to buf and
// returns the extended slice. No bytes are written for fields the schema
// doesn't carry on the wire (there are none in Avro's binary encoding:
// every field position is implied by the schema alone).
func Encode(buf []byte, v Value, s schema.Schema) ([]byte, error) {
	if r, ok := s.(*schema.RefSchema); ok {
		return Encode(buf, v, r.Resolved())
	}
	switch s.Type() {
	case schema.Null:
		if v.Kind() != schema.Null {
			return nil, fmt.Errorf("%w: expected null, got %s", avroerr.ErrValueMismatch, v.Kind())
		}
		return buf, nil
	case schema.Boolean:
		if v.Kind() != schema.Boolean {
			return nil, fmt.Errorf("%w: expected boolean, got %s", avroerr.ErrValueMismatch, v.Kind())
		}
		if v.Bool() {
			return append(buf, 1), nil
		}
		return append(buf, 0), nil
	case schema.Int:
		if v.Kind() != schema.Int {
			return nil, fmt.Errorf("%w: expected int, got %s", avroerr.ErrValueMismatch, v.Kind())
		}
		return appendVarint(buf, zigzagEncode(int64(v.Int32()))), nil
	case schema.Long:
		if v.Kind() != schema.Long {
			return nil, fmt.Errorf("%w: expected long, got %s", avroerr.ErrValueMismatch, v.Kind())
		}
		return appendVarint(buf, zigzagEncode(v.Int64())), nil
	case schema.Float:
		if v.Kind() != schema.Float {
			return nil, fmt.Errorf("%w: expected float, got %s", avroerr.ErrValueMismatch, v.Kind())
		}
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(v.Float32()))
		return append(buf, tmp[:]...), nil
	case schema.Double:
		if v.Kind() != schema.Double {
			return nil, fmt.Errorf("%w: expected double, got %s", avroerr.ErrValueMismatch, v.Kind())
		}
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v.Float64()))
		return append(buf, tmp[:]...), nil
	case schema.Bytes:
		if v.Kind() != schema.Bytes {
			return nil, fmt.Errorf("%w: expected bytes, got %s", avroerr.ErrValueMismatch, v.Kind())
		}
		return encodeLengthPrefixed(buf, v.Bytes()), nil
	case schema.String:
		if v.Kind() != schema.String {
			return nil, fmt.Errorf("%w: expected string, got %s", avroerr.ErrValueMismatch, v.Kind())
		}
		return encodeLengthPrefixed(buf, v.Bytes()), nil
	case schema.Fixed:
		fx := s.(*schema.FixedSchema)
		if len(v.Bytes()) != fx.Size() {
			return nil, fmt.Errorf("%w: %s wants %d bytes, got %d", avroerr.ErrFixedSize, fx.FullName(), fx.Size(), len(v.Bytes()))
		}
		return append(buf, v.Bytes()...), nil
	case schema.Enum:
		en := s.(*schema.EnumSchema)
		idx, ok := en.IndexOf(v.EnumSymbol())
		if !ok {
			return nil, fmt.Errorf("%w: %q not in %s", avroerr.ErrUnknownSymbol, v.EnumSymbol(), en.FullName())
		}
		return appendVarint(buf, zigzagEncode(int64(idx))), nil
	case schema.Array:
		if v.Kind() != schema.Array {
			return nil, fmt.Errorf("%w: expected array, got %s", avroerr.ErrValueMismatch, v.Kind())
		}
		return encodeArray(buf, v, s.(*schema.ArraySchema))
	case schema.Map:
		if v.Kind() != schema.Map {
			return nil, fmt.Errorf("%w: expected map, got %s", avroerr.ErrValueMismatch, v.Kind())
		}
		return encodeMap(buf, v, s.(*schema.MapSchema))
	case schema.Record:
		return encodeRecord(buf, v, s.(*schema.RecordSchema))
	case schema.Union:
		return encodeUnion(buf, v, s.(*schema.UnionSchema))
	default:
		return nil, fmt.Errorf("%w: unsupported schema type %s", avroerr.ErrValueMismatch, s.Type())
	}
}

func encodeLengthPrefixed(buf []byte, b []byte) []byte {
	buf = appendVarint(buf, zigzagEncode(int64(len(b))))
	return append(buf, b...)
}

func encodeArray(buf []byte, v Value, a *schema.ArraySchema) ([]byte, error) {
	items := v.Items()
	if len(items) > 0 {
		buf = appendVarint(buf, zigzagEncode(int64(len(items))))
		var err error
		for _, item := range items {
			buf, err = Encode(buf, item, a.Items())
			if err != nil {
				return nil, err
			}
		}
	}
	return appendVarint(buf, 0), nil
}

func encodeMap(buf []byte, v Value, m *schema.MapSchema) ([]byte, error) {
	entries := v.Entries()
	if len(entries) > 0 {
		buf = appendVarint(buf, zigzagEncode(int64(len(entries))))
		var err error
		for _, e := range entries {
			buf = encodeLengthPrefixed(buf, []byte(e.Key))
			buf, err = Encode(buf, e.Value, m.Values())
			if err != nil {
				return nil, err
			}
		}
	}
	return appendVarint(buf, 0), nil
}

func encodeRecord(buf []byte, v Value, r *schema.RecordSchema) ([]byte, error) {
	var err error
	for _, f := range r.Fields() {
		fv, ok := v.FieldByName(f.Name())
		if !ok {
			return nil, fmt.Errorf("%w: record %s missing field %q", avroerr.ErrValueMismatch, r.FullName(), f.Name())
		}
		buf, err = Encode(buf, fv, f.Type())
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name(), err)
		}
	}
	return buf, nil
}

func encodeUnion(buf []byte, v Value, u *schema.UnionSchema) ([]byte, error) {
	branch, inner := 0, v
	if v.Kind() == schema.Union {
		branch, inner = v.UnionBranch(), v.UnionValue()
		if branch < 0 || branch >= len(u.Branches()) {
			return nil, fmt.Errorf("%w: branch %d out of range", avroerr.ErrIndexRange, branch)
		}
	} else {
		idx, ok := matchUnionBranch(v, u)
		if !ok {
			return nil, fmt.Errorf("%w: no branch in union matches value of kind %s", avroerr.ErrUnionBranch, v.Kind())
		}
		branch = idx
	}
	buf = appendVarint(buf, zigzagEncode(int64(branch)))
	return Encode(buf, inner, u.Branches()[branch])
}

// matchUnionBranch finds the first union branch whose variant matches v's
// kind, per the §4.5 union value matching rule.
func matchUnionBranch(v Value, u *schema.UnionSchema) (int, bool) {
	for i, b := range u.Branches() {
		actual := b
		if r, ok := actual.(*schema.RefSchema); ok {
			actual = r.Resolved()
		}
		if actual.Type() == v.Kind() {
			return i, true
		}
	}
	return 0, false
}
