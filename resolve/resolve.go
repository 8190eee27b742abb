// Package resolve adapts values decoded under a writer schema to a reader
// schema that differs from it, per the Avro schema resolution rules:
// numeric promotion, string/bytes conversion, record field matching by name
// or alias with default-filling, enum matching with reader-default
// fallback, array/map recursion, and union reshaping.
package resolve

import (
	"fmt"

	"github.com/blockleaf/avro/avroerr"
	"github.com/blockleaf/avro/avroval"
	"github.com/blockleaf/avro/schema"
)

// Resolver caches resolution plans for record and enum pairs so that
// resolving the same (writer, reader) pair repeatedly — the common case
// for a data-file reader iterating many values of the same schema, and the
// necessary case for a recursive schema — does the field/symbol matching
// work only once.
type Resolver struct {
	records map[recordKey]*recordPlan
	enums   map[enumKey]*enumPlan
}

// New constructs a Resolver. A Resolver is not safe for concurrent use by
// multiple goroutines, matching the single-threaded data-file reader it
// backs.
func New() *Resolver {
	return &Resolver{
		records: make(map[recordKey]*recordPlan),
		enums:   make(map[enumKey]*enumPlan),
	}
}

// Resolve reads one value from buf at off, encoded per writer, and adapts it
// to conform to reader. It returns the adapted value and the offset just
// past the writer's encoding (the wire bytes are always exactly as many as
// the writer schema implies; the reader schema only changes the produced
// shape).
func (rv *Resolver) Resolve(buf []byte, off int, writer, reader schema.Schema) (avroval.Value, int, error) {
	writer = deref(writer)
	reader = deref(reader)

	// A reader-side-only union: the writer isn't a union, so pick the
	// first reader branch compatible with the writer type and resolve
	// into it, wrapping the result as that branch's union value.
	if reader.Type() == schema.Union && writer.Type() != schema.Union {
		ru := reader.(*schema.UnionSchema)
		for i, rb := range ru.Branches() {
			if compatible(writer, deref(rb)) {
				v, next, err := rv.Resolve(buf, off, writer, rb)
				if err != nil {
					continue
				}
				return avroval.Union(i, v), next, nil
			}
		}
		return avroval.Value{}, off, fmt.Errorf("%w: no reader union branch accepts writer type %s", avroerr.ErrUnresolvable, writer.Type())
	}

	if writer.Type() == schema.Union {
		return rv.resolveUnion(buf, off, writer.(*schema.UnionSchema), reader)
	}

	switch writer.Type() {
	case schema.Null, schema.Boolean, schema.Fixed:
		return rv.resolveExactOrPromote(buf, off, writer, reader)
	case schema.Int, schema.Long, schema.Float, schema.Double, schema.String, schema.Bytes:
		return rv.resolveExactOrPromote(buf, off, writer, reader)
	case schema.Array:
		return rv.resolveArray(buf, off, writer.(*schema.ArraySchema), reader)
	case schema.Map:
		return rv.resolveMap(buf, off, writer.(*schema.MapSchema), reader)
	case schema.Enum:
		return rv.resolveEnum(buf, off, writer.(*schema.EnumSchema), reader)
	case schema.Record:
		return rv.resolveRecord(buf, off, writer.(*schema.RecordSchema), reader)
	default:
		return avroval.Value{}, off, fmt.Errorf("%w: unsupported writer type %s", avroerr.ErrUnresolvable, writer.Type())
	}
}

func deref(s schema.Schema) schema.Schema {
	if r, ok := s.(*schema.RefSchema); ok {
		return r.Resolved()
	}
	return s
}

// compatible reports whether a value that resolve would decode under
// writer could be adapted into reader, without doing the adaptation.
func compatible(writer, reader schema.Schema) bool {
	if writer.Type() == reader.Type() {
		switch writer.Type() {
		case schema.Record, schema.Enum, schema.Fixed:
			wn, rn := writer.(schema.NamedSchema), reader.(schema.NamedSchema)
			return sameOrAlias(wn.FullName(), rn)
		}
		return true
	}
	switch writer.Type() {
	case schema.Int:
		return reader.Type() == schema.Long || reader.Type() == schema.Float || reader.Type() == schema.Double
	case schema.Long:
		return reader.Type() == schema.Float || reader.Type() == schema.Double
	case schema.Float:
		return reader.Type() == schema.Double
	case schema.String:
		return reader.Type() == schema.Bytes
	case schema.Bytes:
		return reader.Type() == schema.String
	}
	return false
}

func sameOrAlias(writerFullName string, reader schema.NamedSchema) bool {
	if writerFullName == reader.FullName() {
		return true
	}
	for _, a := range reader.Aliases() {
		if a == writerFullName {
			return true
		}
	}
	return false
}
