package resolve

import (
	"fmt"

	"github.com/blockleaf/avro/avroerr"
	"github.com/blockleaf/avro/avroval"
	"github.com/blockleaf/avro/schema"
)

type recordKey struct {
	w *schema.RecordSchema
	r *schema.RecordSchema
}

// recordPlan describes, once per (writer, reader) record pair, how to turn
// a writer-order field stream into a reader-shaped record: which writer
// fields feed which reader field (by index), which writer fields are
// decoded and discarded, and which reader fields are absent from the
// writer and need their declared default.
type recordPlan struct {
	steps   []fieldStep // parallel to writer.Fields(), in writer order
	missing []missingField
}

type fieldStep struct {
	writerType  schema.Schema
	readerIndex int // -1 means decode and discard
	readerType  schema.Schema
}

type missingField struct {
	index int
	name  string
	typ   schema.Schema
	def   interface{}
}

func fieldMatches(w, r *schema.Field) bool {
	if w.Name() == r.Name() {
		return true
	}
	for _, a := range r.Aliases() {
		if a == w.Name() {
			return true
		}
	}
	for _, a := range w.Aliases() {
		if a == r.Name() {
			return true
		}
	}
	return false
}

func buildRecordPlan(w, r *schema.RecordSchema) (*recordPlan, error) {
	matched := make([]bool, len(r.Fields()))
	steps := make([]fieldStep, len(w.Fields()))
	for i, wf := range w.Fields() {
		step := fieldStep{writerType: wf.Type(), readerIndex: -1}
		for j, rf := range r.Fields() {
			if matched[j] {
				continue
			}
			if fieldMatches(wf, rf) {
				matched[j] = true
				step.readerIndex = j
				step.readerType = rf.Type()
				break
			}
		}
		steps[i] = step
	}
	var missing []missingField
	for j, rf := range r.Fields() {
		if matched[j] {
			continue
		}
		if !rf.HasDefault() {
			return nil, fmt.Errorf("%w: reader field %q absent from writer %s and has no default", avroerr.ErrMissingDefault, rf.Name(), w.FullName())
		}
		missing = append(missing, missingField{index: j, name: rf.Name(), typ: rf.Type(), def: rf.Default()})
	}
	return &recordPlan{steps: steps, missing: missing}, nil
}

func (rv *Resolver) resolveRecord(buf []byte, off int, writer *schema.RecordSchema, reader schema.Schema) (avroval.Value, int, error) {
	if reader.Type() == schema.Union {
		return rv.resolveIntoReaderUnion(buf, off, writer, reader.(*schema.UnionSchema))
	}
	rr, ok := reader.(*schema.RecordSchema)
	if !ok || !sameOrAlias(writer.FullName(), rr) {
		return avroval.Value{}, off, fmt.Errorf("%w: record %s incompatible with reader %s", avroerr.ErrUnresolvable, writer.FullName(), reader.Type())
	}
	key := recordKey{w: writer, r: rr}
	plan, ok := rv.records[key]
	if !ok {
		var err error
		plan, err = buildRecordPlan(writer, rr)
		if err != nil {
			return avroval.Value{}, off, err
		}
		rv.records[key] = plan
	}

	fields := make([]avroval.RecordField, len(rr.Fields()))
	for _, m := range plan.missing {
		fields[m.index] = avroval.RecordField{Name: m.name, Value: defaultToValue(m.def, m.typ)}
	}
	for i, step := range plan.steps {
		if step.readerIndex < 0 {
			_, next, err := avroval.Decode(buf, off, step.writerType)
			if err != nil {
				return avroval.Value{}, off, fmt.Errorf("field %d (discarded): %w", i, err)
			}
			off = next
			continue
		}
		v, next, err := rv.Resolve(buf, off, step.writerType, step.readerType)
		if err != nil {
			return avroval.Value{}, off, err
		}
		off = next
		fields[step.readerIndex] = avroval.RecordField{Name: rr.Fields()[step.readerIndex].Name(), Value: v}
	}
	return avroval.Record(fields), off, nil
}

// defaultToValue converts a parsed JSON default (already type-coerced by
// the schema parser for the numeric types) into a Value of the declared
// field type.
func defaultToValue(def interface{}, typ schema.Schema) avroval.Value {
	actual := typ
	if r, ok := actual.(*schema.RefSchema); ok {
		actual = r.Resolved()
	}
	if actual.Type() == schema.Union {
		u := actual.(*schema.UnionSchema)
		if len(u.Branches()) == 0 {
			return avroval.Value{}
		}
		return avroval.Union(0, defaultToValue(def, u.Branches()[0]))
	}
	switch v := def.(type) {
	case nil:
		return avroval.Null()
	case bool:
		return avroval.Boolean(v)
	case int32:
		return avroval.Int(v)
	case int64:
		return avroval.Long(v)
	case float32:
		return avroval.Float(v)
	case float64:
		if actual.Type() == schema.Float {
			return avroval.Float(float32(v))
		}
		return avroval.Double(v)
	case string:
		switch actual.Type() {
		case schema.Bytes:
			return avroval.Bytes([]byte(v))
		case schema.Enum:
			en := actual.(*schema.EnumSchema)
			idx, _ := en.IndexOf(v)
			return avroval.Enum(idx, v)
		case schema.Fixed:
			return avroval.Fixed([]byte(v))
		default:
			return avroval.String(v)
		}
	case []interface{}:
		arr := actual.(*schema.ArraySchema)
		items := make([]avroval.Value, len(v))
		for i, e := range v {
			items[i] = defaultToValue(e, arr.Items())
		}
		return avroval.Array(items)
	case map[string]interface{}:
		switch actual.Type() {
		case schema.Map:
			m := actual.(*schema.MapSchema)
			entries := make([]avroval.MapEntry, 0, len(v))
			for k, e := range v {
				entries = append(entries, avroval.MapEntry{Key: k, Value: defaultToValue(e, m.Values())})
			}
			return avroval.Map(entries)
		case schema.Record:
			rs := actual.(*schema.RecordSchema)
			fields := make([]avroval.RecordField, 0, len(rs.Fields()))
			for _, f := range rs.Fields() {
				fv, has := v[f.Name()]
				if !has {
					fv = f.Default()
				}
				fields = append(fields, avroval.RecordField{Name: f.Name(), Value: defaultToValue(fv, f.Type())})
			}
			return avroval.Record(fields)
		}
	}
	return avroval.Value{}
}
