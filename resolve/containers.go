package resolve

import (
	"fmt"

	"github.com/blockleaf/avro/avroerr"
	"github.com/blockleaf/avro/avroval"
	"github.com/blockleaf/avro/schema"
)

func (rv *Resolver) resolveArray(buf []byte, off int, writer *schema.ArraySchema, reader schema.Schema) (avroval.Value, int, error) {
	if reader.Type() == schema.Union {
		return rv.resolveIntoReaderUnion(buf, off, writer, reader.(*schema.UnionSchema))
	}
	ra, ok := reader.(*schema.ArraySchema)
	if !ok {
		return avroval.Value{}, off, fmt.Errorf("%w: array writer, %s reader", avroerr.ErrUnresolvable, reader.Type())
	}
	var items []avroval.Value
	for {
		count, next, err := readBlockCount(buf, off)
		if err != nil {
			return avroval.Value{}, off, err
		}
		off = next
		if count == 0 {
			break
		}
		for i := int64(0); i < count; i++ {
			var v avroval.Value
			v, off, err = rv.Resolve(buf, off, writer.Items(), ra.Items())
			if err != nil {
				return avroval.Value{}, off, err
			}
			items = append(items, v)
		}
	}
	return avroval.Array(items), off, nil
}

func (rv *Resolver) resolveMap(buf []byte, off int, writer *schema.MapSchema, reader schema.Schema) (avroval.Value, int, error) {
	if reader.Type() == schema.Union {
		return rv.resolveIntoReaderUnion(buf, off, writer, reader.(*schema.UnionSchema))
	}
	rm, ok := reader.(*schema.MapSchema)
	if !ok {
		return avroval.Value{}, off, fmt.Errorf("%w: map writer, %s reader", avroerr.ErrUnresolvable, reader.Type())
	}
	var entries []avroval.MapEntry
	for {
		count, next, err := readBlockCount(buf, off)
		if err != nil {
			return avroval.Value{}, off, err
		}
		off = next
		if count == 0 {
			break
		}
		for i := int64(0); i < count; i++ {
			key, n, err := decodeMapKey(buf, off)
			if err != nil {
				return avroval.Value{}, off, err
			}
			off = n
			var v avroval.Value
			v, off, err = rv.Resolve(buf, off, writer.Values(), rm.Values())
			if err != nil {
				return avroval.Value{}, off, err
			}
			entries = append(entries, avroval.MapEntry{Key: key, Value: v})
		}
	}
	return avroval.Map(entries), off, nil
}

// readBlockCount mirrors avroval's internal block-header reader: a long
// count, negative meaning an explicit byte-length (which resolution, like
// plain decoding, always reads through rather than skipping) precedes the
// items.
func readBlockCount(buf []byte, off int) (int64, int, error) {
	v, next, err := avroval.Decode(buf, off, schema.NewPrimitiveSchema(schema.Long))
	if err != nil {
		return 0, off, err
	}
	count := v.Int64()
	if count < 0 {
		count = -count
		lenV, n2, err := avroval.Decode(buf, next, schema.NewPrimitiveSchema(schema.Long))
		if err != nil {
			return 0, off, err
		}
		_ = lenV
		next = n2
	}
	return count, next, nil
}

func decodeMapKey(buf []byte, off int) (string, int, error) {
	v, next, err := avroval.Decode(buf, off, schema.NewPrimitiveSchema(schema.String))
	if err != nil {
		return "", off, err
	}
	return v.String(), next, nil
}
