// Package schema implements the Avro schema model: parsing schema JSON into
// a typed, pointer-based schema graph, Parsing Canonical Form, and the three
// schema fingerprint algorithms defined by the Avro spec.
package schema

import (
	"fmt"
	"sync"

	"github.com/blockleaf/avro/avroerr"
)

// Type identifies the kind of an Avro schema node.
type Type string

const (
	Null    Type = "null"
	Boolean Type = "boolean"
	Int     Type = "int"
	Long    Type = "long"
	Float   Type = "float"
	Double  Type = "double"
	Bytes   Type = "bytes"
	String  Type = "string"
	Record  Type = "record"
	Enum    Type = "enum"
	Array   Type = "array"
	Map     Type = "map"
	Union   Type = "union"
	Fixed   Type = "fixed"
	Ref     Type = "ref"
)

// Order is a record field's sort order annotation.
type Order string

const (
	Ascending  Order = "ascending"
	Descending Order = "descending"
	Ignore     Order = "ignore"
)

// FingerprintType selects which fingerprint algorithm to compute.
type FingerprintType string

const (
	CRC64Avro FingerprintType = "crc64-avro"
	MD5       FingerprintType = "md5"
	SHA256    FingerprintType = "sha256"
)

// Schema is the common interface implemented by every schema node in the
// graph, from primitives up through records and unions.
type Schema interface {
	Type() Type
	// String renders the schema's Parsing Canonical Form.
	String() string
	// Fingerprint returns the Rabin (CRC-64-AVRO) fingerprint, the
	// fingerprint algorithm the Avro spec calls the default.
	Fingerprint() [8]byte
	// FingerprintUsing computes a fingerprint with an explicit algorithm.
	FingerprintUsing(typ FingerprintType) ([]byte, error)
}

// NamedSchema is implemented by the schema kinds that carry a name and
// namespace: record, enum and fixed.
type NamedSchema interface {
	Schema
	Name() string
	Namespace() string
	FullName() string
	Aliases() []string
	// Prop returns a custom, non-reserved JSON property declared alongside
	// this schema's name/type/etc attributes, and whether it was present.
	Prop(key string) (interface{}, bool)
}

// name holds the parsed name/namespace/aliases shared by every named schema,
// plus any custom (non-reserved) JSON properties the parser found alongside
// them.
type name struct {
	name      string
	namespace string
	full      string
	aliases   []string
	props     map[string]interface{}
}

func newName(n, enclosingNamespace string, aliases []string) (name, error) {
	if n == "" {
		return name{}, fmt.Errorf("%w: name is required", avroerr.ErrMissingAttribute)
	}
	ns := enclosingNamespace
	nm := n
	if idx := lastDot(n); idx >= 0 {
		ns = n[:idx]
		nm = n[idx+1:]
	}
	if err := validateName(nm); err != nil {
		return name{}, err
	}
	full := nm
	if ns != "" {
		full = ns + "." + nm
	}
	resolvedAliases := make([]string, 0, len(aliases))
	for _, a := range aliases {
		if lastDot(a) < 0 && ns != "" {
			a = ns + "." + a
		}
		resolvedAliases = append(resolvedAliases, a)
	}
	return name{name: nm, namespace: ns, full: full, aliases: resolvedAliases}, nil
}

func (n name) Name() string        { return n.name }
func (n name) Namespace() string   { return n.namespace }
func (n name) FullName() string    { return n.full }
func (n name) Aliases() []string   { return n.aliases }

func (n name) Prop(key string) (interface{}, bool) {
	v, ok := n.props[key]
	return v, ok
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

// fingerprints caches the three fingerprint forms for a schema node, keyed
// off its canonical form, so repeated calls (e.g. once per datafile header
// write) don't recompute hashes of large recursive graphs.
type fingerprints struct {
	once   sync.Once
	rabin  [8]byte
	md5    [16]byte
	sha256 [32]byte
	err    error
}

func (f *fingerprints) compute(s Schema) {
	f.once.Do(func() {
		pcf := s.String()
		f.rabin = rabinFingerprint([]byte(pcf))
		f.md5 = md5Fingerprint([]byte(pcf))
		f.sha256 = sha256Fingerprint([]byte(pcf))
	})
}

func (f *fingerprints) fingerprint(s Schema) [8]byte {
	f.compute(s)
	return f.rabin
}

func (f *fingerprints) fingerprintUsing(s Schema, typ FingerprintType) ([]byte, error) {
	f.compute(s)
	switch typ {
	case CRC64Avro:
		out := make([]byte, 8)
		copy(out, f.rabin[:])
		return out, nil
	case MD5:
		out := make([]byte, 16)
		copy(out, f.md5[:])
		return out, nil
	case SHA256:
		out := make([]byte, 32)
		copy(out, f.sha256[:])
		return out, nil
	default:
		return nil, fmt.Errorf("avro: unknown fingerprint type %q", typ)
	}
}

// PrimitiveSchema represents null, boolean, int, long, float, double, bytes
// and string: the eight Avro types with no name and no nested schema.
type PrimitiveSchema struct {
	typ Type
	fp  fingerprints
}

// NewPrimitiveSchema constructs a primitive schema node. t must be one of
// the eight primitive Type constants.
func NewPrimitiveSchema(t Type) *PrimitiveSchema {
	return &PrimitiveSchema{typ: t}
}

func (s *PrimitiveSchema) Type() Type { return s.typ }

func (s *PrimitiveSchema) String() string { return `"` + string(s.typ) + `"` }

func (s *PrimitiveSchema) Fingerprint() [8]byte { return s.fp.fingerprint(s) }

func (s *PrimitiveSchema) FingerprintUsing(typ FingerprintType) ([]byte, error) {
	return s.fp.fingerprintUsing(s, typ)
}

// Field is one field of a record schema.
type Field struct {
	name       string
	aliases    []string
	typ        Schema
	hasDefault bool
	def        interface{}
	order      Order
	doc        string
	props      map[string]interface{}
}

// NewField constructs a record field. def/hasDefault should come from the
// parser, which validates the default against typ before calling this.
func NewField(fieldName string, typ Schema, aliases []string, hasDefault bool, def interface{}, order Order) (*Field, error) {
	if err := validateName(fieldName); err != nil {
		return nil, err
	}
	if order == "" {
		order = Ascending
	}
	return &Field{name: fieldName, aliases: aliases, typ: typ, hasDefault: hasDefault, def: def, order: order}, nil
}

func (f *Field) Name() string          { return f.name }
func (f *Field) Aliases() []string     { return f.aliases }
func (f *Field) Type() Schema          { return f.typ }
func (f *Field) HasDefault() bool      { return f.hasDefault }
func (f *Field) Default() interface{}  { return f.def }
func (f *Field) Order() Order          { return f.order }
func (f *Field) Doc() string           { return f.doc }
func (f *Field) SetDoc(doc string)     { f.doc = doc }

func (f *Field) Prop(key string) (interface{}, bool) {
	v, ok := f.props[key]
	return v, ok
}

// RecordSchema represents a record or error schema. Fields is a pointer
// slice header populated after construction so that self-referential field
// types (via RefSchema) resolve to the same, fully populated instance once
// parsing of the whole record completes.
type RecordSchema struct {
	name
	fields  []*Field
	doc     string
	isError bool
	fp      fingerprints
}

// NewRecordSchema constructs a record schema with no fields yet; call
// SetFields once the parser has finished resolving the field list, which is
// what allows a field to reference the record being defined.
func NewRecordSchema(n, namespace string, aliases []string, isError bool) (*RecordSchema, error) {
	nm, err := newName(n, namespace, aliases)
	if err != nil {
		return nil, err
	}
	return &RecordSchema{name: nm, isError: isError}, nil
}

// SetFields installs the field list. Called once, after NewRefSchema calls
// referencing this record (from within its own field types) have already
// captured the pointer.
func (s *RecordSchema) SetFields(fields []*Field) { s.fields = fields }

func (s *RecordSchema) Type() Type {
	return Record
}

func (s *RecordSchema) IsError() bool    { return s.isError }
func (s *RecordSchema) Fields() []*Field { return s.fields }
func (s *RecordSchema) Doc() string      { return s.doc }
func (s *RecordSchema) SetDoc(doc string) { s.doc = doc }

func (s *RecordSchema) FieldByName(n string) (*Field, bool) {
	for _, f := range s.fields {
		if f.name == n {
			return f, true
		}
	}
	return nil, false
}

func (s *RecordSchema) Fingerprint() [8]byte { return s.fp.fingerprint(s) }

func (s *RecordSchema) FingerprintUsing(typ FingerprintType) ([]byte, error) {
	return s.fp.fingerprintUsing(s, typ)
}

// EnumSchema represents an enum schema.
type EnumSchema struct {
	name
	symbols []string
	def     string
	hasDef  bool
	doc     string
	fp      fingerprints
}

func NewEnumSchema(n, namespace string, aliases, symbols []string, def string, hasDef bool) (*EnumSchema, error) {
	nm, err := newName(n, namespace, aliases)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		if err := validateName(sym); err != nil {
			return nil, fmt.Errorf("%w: enum symbol %q", avroerr.ErrInvalidName, sym)
		}
		if seen[sym] {
			return nil, fmt.Errorf("%w: duplicate enum symbol %q", avroerr.ErrDuplicateName, sym)
		}
		seen[sym] = true
	}
	if hasDef && !seen[def] {
		return nil, fmt.Errorf("%w: enum default %q is not a declared symbol", avroerr.ErrInvalidDefault, def)
	}
	return &EnumSchema{name: nm, symbols: symbols, def: def, hasDef: hasDef}, nil
}

func (s *EnumSchema) Type() Type           { return Enum }
func (s *EnumSchema) Symbols() []string    { return s.symbols }
func (s *EnumSchema) Default() (string, bool) { return s.def, s.hasDef }
func (s *EnumSchema) Doc() string          { return s.doc }
func (s *EnumSchema) SetDoc(doc string)    { s.doc = doc }

func (s *EnumSchema) IndexOf(sym string) (int, bool) {
	for i, v := range s.symbols {
		if v == sym {
			return i, true
		}
	}
	return 0, false
}

func (s *EnumSchema) Fingerprint() [8]byte { return s.fp.fingerprint(s) }

func (s *EnumSchema) FingerprintUsing(typ FingerprintType) ([]byte, error) {
	return s.fp.fingerprintUsing(s, typ)
}

// ArraySchema represents an array schema; Items is the element type.
type ArraySchema struct {
	items Schema
	fp    fingerprints
}

func NewArraySchema(items Schema) *ArraySchema { return &ArraySchema{items: items} }

func (s *ArraySchema) Type() Type    { return Array }
func (s *ArraySchema) Items() Schema { return s.items }

func (s *ArraySchema) Fingerprint() [8]byte { return s.fp.fingerprint(s) }

func (s *ArraySchema) FingerprintUsing(typ FingerprintType) ([]byte, error) {
	return s.fp.fingerprintUsing(s, typ)
}

// MapSchema represents a map schema; Values is the value type (keys are
// always strings, per the Avro spec).
type MapSchema struct {
	values Schema
	fp     fingerprints
}

func NewMapSchema(values Schema) *MapSchema { return &MapSchema{values: values} }

func (s *MapSchema) Type() Type     { return Map }
func (s *MapSchema) Values() Schema { return s.values }

func (s *MapSchema) Fingerprint() [8]byte { return s.fp.fingerprint(s) }

func (s *MapSchema) FingerprintUsing(typ FingerprintType) ([]byte, error) {
	return s.fp.fingerprintUsing(s, typ)
}

// UnionSchema represents a union schema: an ordered list of branch types.
type UnionSchema struct {
	branches []Schema
	fp       fingerprints
}

// NewUnionSchema validates the union invariant (no two branches of the same
// unnamed type, no two named branches of the same full name, no nested
// unions) before constructing the schema.
func NewUnionSchema(branches []Schema) (*UnionSchema, error) {
	seenPrimitive := make(map[Type]bool)
	seenNamed := make(map[string]bool)
	for _, b := range branches {
		actual := b
		if r, ok := b.(*RefSchema); ok {
			actual = r.Resolved()
		}
		if actual.Type() == Union {
			return nil, fmt.Errorf("%w: union may not contain a union branch directly", avroerr.ErrIllegalUnion)
		}
		if ns, ok := actual.(NamedSchema); ok {
			if seenNamed[ns.FullName()] {
				return nil, fmt.Errorf("%w: duplicate named branch %q", avroerr.ErrIllegalUnion, ns.FullName())
			}
			seenNamed[ns.FullName()] = true
			continue
		}
		if seenPrimitive[actual.Type()] {
			return nil, fmt.Errorf("%w: duplicate unnamed branch type %q", avroerr.ErrIllegalUnion, actual.Type())
		}
		seenPrimitive[actual.Type()] = true
	}
	return &UnionSchema{branches: branches}, nil
}

func (s *UnionSchema) Type() Type        { return Union }
func (s *UnionSchema) Branches() []Schema { return s.branches }

// Nullable reports whether this is a [null, T] or [T, null] style union.
func (s *UnionSchema) Nullable() bool {
	return len(s.branches) == 2 && (s.branches[0].Type() == Null || s.branches[1].Type() == Null)
}

func (s *UnionSchema) Fingerprint() [8]byte { return s.fp.fingerprint(s) }

func (s *UnionSchema) FingerprintUsing(typ FingerprintType) ([]byte, error) {
	return s.fp.fingerprintUsing(s, typ)
}

// FixedSchema represents a fixed schema: a named type of a fixed byte size.
type FixedSchema struct {
	name
	size int
	fp   fingerprints
}

func NewFixedSchema(n, namespace string, aliases []string, size int) (*FixedSchema, error) {
	nm, err := newName(n, namespace, aliases)
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: fixed size must be non-negative, got %d", avroerr.ErrMissingAttribute, size)
	}
	return &FixedSchema{name: nm, size: size}, nil
}

func (s *FixedSchema) Type() Type { return Fixed }
func (s *FixedSchema) Size() int  { return s.size }

func (s *FixedSchema) Fingerprint() [8]byte { return s.fp.fingerprint(s) }

func (s *FixedSchema) FingerprintUsing(typ FingerprintType) ([]byte, error) {
	return s.fp.fingerprintUsing(s, typ)
}

// RefSchema is a reference to a previously defined named schema, used both
// for self/mutually recursive definitions and for reusing a named type by
// fullname elsewhere in the same schema document. It wraps the actual
// NamedSchema pointer rather than duplicating it, so once the referenced
// schema's body is fully populated (e.g. RecordSchema.SetFields), every
// RefSchema pointing at it observes the complete definition.
type RefSchema struct {
	actual NamedSchema
}

func NewRefSchema(actual NamedSchema) *RefSchema { return &RefSchema{actual: actual} }

func (s *RefSchema) Type() Type { return Ref }

// Resolved returns the schema this reference points to.
func (s *RefSchema) Resolved() Schema { return s.actual }

func (s *RefSchema) String() string { return `"` + s.actual.FullName() + `"` }

func (s *RefSchema) Fingerprint() [8]byte { return s.actual.Fingerprint() }

func (s *RefSchema) FingerprintUsing(typ FingerprintType) ([]byte, error) {
	return s.actual.FingerprintUsing(typ)
}
