// Package avroval implements the Avro value model: a tagged in-memory value
// tree parallel to the schema package's tagged schema tree, plus the
// schema-directed binary codec that encodes and decodes values with no
// per-field tags on the wire.
package avroval

import "github.com/blockleaf/avro/schema"

// Value is a tagged variant holding exactly one Avro value shape. The zero
// Value is a null.
type Value struct {
	kind schema.Type

	b  bool
	i  int32
	l  int64
	f  float32
	d  float64
	bs []byte // bytes, string (UTF-8 bytes) and fixed payload

	fields []RecordField // record, in schema field order
	symbol string        // enum
	index  int           // enum symbol index, or union branch index
	items  []Value       // array
	entries []MapEntry   // map
	inner  *Value        // union's resolved branch value
}

// RecordField pairs a record field's name with its value, in declaration
// order.
type RecordField struct {
	Name  string
	Value Value
}

// MapEntry is one key/value pair of a map value. Avro map keys are always
// strings.
type MapEntry struct {
	Key   string
	Value Value
}

func Null() Value                 { return Value{kind: schema.Null} }
func Boolean(b bool) Value        { return Value{kind: schema.Boolean, b: b} }
func Int(i int32) Value           { return Value{kind: schema.Int, i: i} }
func Long(l int64) Value          { return Value{kind: schema.Long, l: l} }
func Float(f float32) Value       { return Value{kind: schema.Float, f: f} }
func Double(d float64) Value      { return Value{kind: schema.Double, d: d} }
func Bytes(b []byte) Value        { return Value{kind: schema.Bytes, bs: b} }
func String(s string) Value       { return Value{kind: schema.String, bs: []byte(s)} }
func Fixed(b []byte) Value        { return Value{kind: schema.Fixed, bs: b} }

// Enum constructs an enum value from its symbol index and name.
func Enum(index int, symbol string) Value {
	return Value{kind: schema.Enum, index: index, symbol: symbol}
}

// Record constructs a record value from its fields in declaration order.
func Record(fields []RecordField) Value {
	return Value{kind: schema.Record, fields: fields}
}

// Array constructs an array value.
func Array(items []Value) Value {
	return Value{kind: schema.Array, items: items}
}

// Map constructs a map value.
func Map(entries []MapEntry) Value {
	return Value{kind: schema.Map, entries: entries}
}

// Union constructs a union value: branch is the index into the union
// schema's branch list that inner was encoded (or should be encoded)
// against.
func Union(branch int, inner Value) Value {
	return Value{kind: schema.Union, index: branch, inner: &inner}
}

func (v Value) Kind() schema.Type {
	if v.kind == "" {
		return schema.Null
	}
	return v.kind
}
func (v Value) Bool() bool        { return v.b }
func (v Value) Int32() int32      { return v.i }
func (v Value) Int64() int64      { return v.l }
func (v Value) Float32() float32  { return v.f }
func (v Value) Float64() float64  { return v.d }
func (v Value) Bytes() []byte     { return v.bs }
func (v Value) String() string    { return string(v.bs) }
func (v Value) Fields() []RecordField { return v.fields }
func (v Value) EnumIndex() int    { return v.index }
func (v Value) EnumSymbol() string { return v.symbol }
func (v Value) Items() []Value    { return v.items }
func (v Value) Entries() []MapEntry { return v.entries }
func (v Value) UnionBranch() int  { return v.index }
func (v Value) UnionValue() Value { return *v.inner }

// FieldByName returns the named field's value from a record value.
func (v Value) FieldByName(name string) (Value, bool) {
	for _, f := range v.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}
