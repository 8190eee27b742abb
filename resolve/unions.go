package resolve

import (
	"fmt"

	"github.com/blockleaf/avro/avroerr"
	"github.com/blockleaf/avro/avroval"
	"github.com/blockleaf/avro/schema"
)

// resolveUnion handles a union-typed writer: read the branch index off the
// wire, then resolve the chosen writer branch against the reader schema
// (which may itself be a union, in which case the first compatible reader
// branch wins).
func (rv *Resolver) resolveUnion(buf []byte, off int, writer *schema.UnionSchema, reader schema.Schema) (avroval.Value, int, error) {
	idxV, next, err := avroval.Decode(buf, off, schema.NewPrimitiveSchema(schema.Long))
	if err != nil {
		return avroval.Value{}, off, err
	}
	idx := int(idxV.Int64())
	branches := writer.Branches()
	if idx < 0 || idx >= len(branches) {
		return avroval.Value{}, off, fmt.Errorf("%w: union index %d", avroerr.ErrIndexRange, idx)
	}
	chosen := deref(branches[idx])

	if ru, ok := reader.(*schema.UnionSchema); ok {
		for i, rb := range ru.Branches() {
			if compatible(chosen, deref(rb)) {
				v, end, err := rv.Resolve(buf, next, chosen, rb)
				if err != nil {
					return avroval.Value{}, off, err
				}
				return avroval.Union(i, v), end, nil
			}
		}
		return avroval.Value{}, off, fmt.Errorf("%w: no reader union branch accepts writer branch %s", avroerr.ErrUnresolvable, chosen.Type())
	}

	return rv.Resolve(buf, next, chosen, reader)
}
