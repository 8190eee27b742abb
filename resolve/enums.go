package resolve

import (
	"fmt"

	"github.com/blockleaf/avro/avroerr"
	"github.com/blockleaf/avro/avroval"
	"github.com/blockleaf/avro/schema"
)

type enumKey struct {
	w *schema.EnumSchema
	r *schema.EnumSchema
}

// enumPlan maps each writer symbol to the reader symbol of the same name;
// writer symbols absent from the reader fall back to the reader's declared
// default, if it has one.
type enumPlan struct {
	bySymbol map[string]string // writer symbol -> reader symbol
	fallback string
	hasFallback bool
}

func buildEnumPlan(w, r *schema.EnumSchema) *enumPlan {
	readerSymbols := make(map[string]bool, len(r.Symbols()))
	for _, s := range r.Symbols() {
		readerSymbols[s] = true
	}
	plan := &enumPlan{bySymbol: make(map[string]string, len(w.Symbols()))}
	if def, ok := r.Default(); ok {
		plan.fallback, plan.hasFallback = def, true
	}
	for _, ws := range w.Symbols() {
		if readerSymbols[ws] {
			plan.bySymbol[ws] = ws
			continue
		}
		// The writer symbol may match one of the reader's aliases; Avro
		// enums don't carry per-symbol aliases, only whole-schema
		// aliases, so fall straight through to the reader default.
	}
	return plan
}

func (rv *Resolver) resolveEnum(buf []byte, off int, writer *schema.EnumSchema, reader schema.Schema) (avroval.Value, int, error) {
	if reader.Type() == schema.Union {
		return rv.resolveIntoReaderUnion(buf, off, writer, reader.(*schema.UnionSchema))
	}
	re, ok := reader.(*schema.EnumSchema)
	if !ok || !sameOrAlias(writer.FullName(), re) {
		return avroval.Value{}, off, fmt.Errorf("%w: enum %s incompatible with reader %s", avroerr.ErrUnresolvable, writer.FullName(), reader.Type())
	}
	v, next, err := avroval.Decode(buf, off, writer)
	if err != nil {
		return avroval.Value{}, off, err
	}
	key := enumKey{w: writer, r: re}
	plan, ok := rv.enums[key]
	if !ok {
		plan = buildEnumPlan(writer, re)
		rv.enums[key] = plan
	}
	sym := v.EnumSymbol()
	if mapped, ok := plan.bySymbol[sym]; ok {
		idx, _ := re.IndexOf(mapped)
		return avroval.Enum(idx, mapped), next, nil
	}
	if plan.hasFallback {
		idx, _ := re.IndexOf(plan.fallback)
		return avroval.Enum(idx, plan.fallback), next, nil
	}
	return avroval.Value{}, off, fmt.Errorf("%w: writer symbol %q not in reader %s and no reader default", avroerr.ErrUnresolvable, sym, re.FullName())
}
