package resolve

import (
	"fmt"
	"unicode/utf8"

	"github.com/blockleaf/avro/avroerr"
	"github.com/blockleaf/avro/avroval"
	"github.com/blockleaf/avro/schema"
)

// resolveExactOrPromote handles every writer type that isn't itself a
// container, enum, record or union: null/boolean/fixed need an exact type
// (and, for fixed, name+size) match; the numeric and string/bytes types
// additionally accept the promotions in §4.5.
func (rv *Resolver) resolveExactOrPromote(buf []byte, off int, writer, reader schema.Schema) (avroval.Value, int, error) {
	if reader.Type() == schema.Union {
		return rv.resolveIntoReaderUnion(buf, off, writer, reader.(*schema.UnionSchema))
	}

	switch writer.Type() {
	case schema.Null:
		if reader.Type() != schema.Null {
			return avroval.Value{}, off, fmt.Errorf("%w: null writer, %s reader", avroerr.ErrUnresolvable, reader.Type())
		}
		return avroval.Null(), off, nil
	case schema.Boolean:
		if reader.Type() != schema.Boolean {
			return avroval.Value{}, off, fmt.Errorf("%w: boolean writer, %s reader", avroerr.ErrUnresolvable, reader.Type())
		}
		return avroval.Decode(buf, off, writer)
	case schema.Fixed:
		wf, rOK := writer.(*schema.FixedSchema)
		rf, ok := reader.(*schema.FixedSchema)
		if !rOK || !ok || !sameOrAlias(wf.FullName(), rf) || wf.Size() != rf.Size() {
			return avroval.Value{}, off, fmt.Errorf("%w: fixed %s incompatible with reader %s", avroerr.ErrUnresolvable, wf.FullName(), reader.Type())
		}
		return avroval.Decode(buf, off, writer)
	case schema.Int:
		v, next, err := avroval.Decode(buf, off, writer)
		if err != nil {
			return avroval.Value{}, off, err
		}
		out, perr := promoteFromInt(v.Int32(), reader)
		return out, next, perr
	case schema.Long:
		v, next, err := avroval.Decode(buf, off, writer)
		if err != nil {
			return avroval.Value{}, off, err
		}
		out, perr := promoteFromLong(v.Int64(), reader)
		return out, next, perr
	case schema.Float:
		v, next, err := avroval.Decode(buf, off, writer)
		if err != nil {
			return avroval.Value{}, off, err
		}
		out, perr := promoteFromFloat(v.Float32(), reader)
		return out, next, perr
	case schema.Double:
		if reader.Type() != schema.Double {
			return avroval.Value{}, off, fmt.Errorf("%w: double writer, %s reader", avroerr.ErrUnresolvable, reader.Type())
		}
		return avroval.Decode(buf, off, writer)
	case schema.String:
		if reader.Type() != schema.String && reader.Type() != schema.Bytes {
			return avroval.Value{}, off, fmt.Errorf("%w: string writer, %s reader", avroerr.ErrUnresolvable, reader.Type())
		}
		v, next, err := avroval.Decode(buf, off, schema.NewPrimitiveSchema(schema.String))
		if err != nil {
			return avroval.Value{}, off, err
		}
		if reader.Type() == schema.Bytes {
			return avroval.Bytes([]byte(v.String())), next, nil
		}
		return v, next, nil
	case schema.Bytes:
		if reader.Type() != schema.Bytes && reader.Type() != schema.String {
			return avroval.Value{}, off, fmt.Errorf("%w: bytes writer, %s reader", avroerr.ErrUnresolvable, reader.Type())
		}
		v, next, err := avroval.Decode(buf, off, schema.NewPrimitiveSchema(schema.Bytes))
		if err != nil {
			return avroval.Value{}, off, err
		}
		if reader.Type() == schema.String {
			if !utf8.Valid(v.Bytes()) {
				return avroval.Value{}, off, avroerr.ErrInvalidUTF8
			}
			return avroval.String(string(v.Bytes())), next, nil
		}
		return v, next, nil
	}
	return avroval.Value{}, off, fmt.Errorf("%w: unexpected writer primitive %s", avroerr.ErrUnresolvable, writer.Type())
}

func promoteFromInt(i int32, reader schema.Schema) (avroval.Value, error) {
	switch reader.Type() {
	case schema.Int:
		return avroval.Int(i), nil
	case schema.Long:
		return avroval.Long(int64(i)), nil
	case schema.Float:
		return avroval.Float(float32(i)), nil
	case schema.Double:
		return avroval.Double(float64(i)), nil
	}
	return avroval.Value{}, fmt.Errorf("%w: int writer, %s reader", avroerr.ErrUnresolvable, reader.Type())
}

func promoteFromLong(l int64, reader schema.Schema) (avroval.Value, error) {
	switch reader.Type() {
	case schema.Long:
		return avroval.Long(l), nil
	case schema.Float:
		return avroval.Float(float32(l)), nil
	case schema.Double:
		return avroval.Double(float64(l)), nil
	}
	return avroval.Value{}, fmt.Errorf("%w: long writer, %s reader", avroerr.ErrUnresolvable, reader.Type())
}

func promoteFromFloat(f float32, reader schema.Schema) (avroval.Value, error) {
	switch reader.Type() {
	case schema.Float:
		return avroval.Float(f), nil
	case schema.Double:
		return avroval.Double(float64(f)), nil
	}
	return avroval.Value{}, fmt.Errorf("%w: float writer, %s reader", avroerr.ErrUnresolvable, reader.Type())
}

// resolveIntoReaderUnion handles a non-union writer paired with a union
// reader: pick the first reader branch compatible with the writer type.
func (rv *Resolver) resolveIntoReaderUnion(buf []byte, off int, writer schema.Schema, ru *schema.UnionSchema) (avroval.Value, int, error) {
	for i, rb := range ru.Branches() {
		if compatible(writer, deref(rb)) {
			v, next, err := rv.Resolve(buf, off, writer, rb)
			if err != nil {
				return avroval.Value{}, off, err
			}
			return avroval.Union(i, v), next, nil
		}
	}
	return avroval.Value{}, off, fmt.Errorf("%w: no reader union branch accepts writer type %s", avroerr.ErrUnresolvable, writer.Type())
}
