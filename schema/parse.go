package schema

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/blockleaf/avro/avroerr"
)

var parseJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// reservedSchemaKeys names the JSON object keys record/enum/fixed schemas
// use for their own attributes; anything else is a custom property exposed
// through Prop.
var reservedSchemaKeys = map[string]bool{
	"type": true, "name": true, "namespace": true, "aliases": true,
	"doc": true, "fields": true, "symbols": true, "size": true,
	"items": true, "values": true, "default": true,
}

// reservedFieldKeys is reservedSchemaKeys' counterpart for record fields.
var reservedFieldKeys = map[string]bool{
	"name": true, "type": true, "doc": true, "default": true,
	"order": true, "aliases": true,
}

// extractProps copies v's keys that aren't in reserved into a property bag,
// so custom metadata attached to a schema or field survives parsing.
func extractProps(v map[string]interface{}, reserved map[string]bool) map[string]interface{} {
	if len(v) == 0 {
		return nil
	}
	props := make(map[string]interface{})
	for k, val := range v {
		if !reserved[k] {
			props[k] = val
		}
	}
	if len(props) == 0 {
		return nil
	}
	return props
}

// symbolTable tracks named schemas by fullname, and by alias, as they are
// parsed, so a later reference (self, mutual or simple reuse, by either
// fullname or alias) resolves to the same pointer instead of re-parsing the
// definition. Aliases are legal names in their own right: they must not
// collide with any declared fullname or with any other schema's alias.
type symbolTable struct {
	byFullName map[string]NamedSchema
	byAlias    map[string]NamedSchema
}

func newSymbolTable() *symbolTable {
	return &symbolTable{
		byFullName: make(map[string]NamedSchema),
		byAlias:    make(map[string]NamedSchema),
	}
}

func (t *symbolTable) add(s NamedSchema) error {
	full := s.FullName()
	if _, exists := t.byFullName[full]; exists {
		return fmt.Errorf("%w: %q", avroerr.ErrDuplicateName, full)
	}
	if _, exists := t.byAlias[full]; exists {
		return fmt.Errorf("%w: %q collides with a previously declared alias", avroerr.ErrDuplicateName, full)
	}
	for _, a := range s.Aliases() {
		if _, exists := t.byFullName[a]; exists {
			return fmt.Errorf("%w: alias %q collides with a declared fullname", avroerr.ErrDuplicateName, a)
		}
		if _, exists := t.byAlias[a]; exists {
			return fmt.Errorf("%w: alias %q collides with another declared alias", avroerr.ErrDuplicateName, a)
		}
	}
	t.byFullName[full] = s
	for _, a := range s.Aliases() {
		t.byAlias[a] = s
	}
	return nil
}

// lookup resolves name against declared fullnames first, then aliases, the
// same precedence a reference node's own fullname-or-bare-name search uses.
func (t *symbolTable) lookup(name string) (NamedSchema, bool) {
	if s, ok := t.byFullName[name]; ok {
		return s, true
	}
	s, ok := t.byAlias[name]
	return s, ok
}

// Parse parses an Avro schema document (JSON text, or a single bare type
// name like "string") into a Schema graph.
func Parse(rawSchema string) (Schema, error) {
	return ParseWithTable(rawSchema, newSymbolTable())
}

// ParseWithTable parses a schema document using a caller-supplied symbol
// table, so multiple related schema documents (e.g. a schema registry's
// successive registrations) can share named-type definitions across calls.
func ParseWithTable(rawSchema string, table *symbolTable) (Schema, error) {
	var parsed interface{}
	if err := parseJSON.Unmarshal([]byte(rawSchema), &parsed); err != nil {
		// Bare type names like `string` are not valid JSON; fall back to
		// treating the raw text itself as a primitive type name.
		parsed = rawSchema
	}
	return parseNode(parsed, table, "")
}

// NewSymbolTable constructs an empty, independent symbol table for callers
// that want to parse several related schema documents against the same
// named-type namespace (e.g. a schema registry wrapper).
func NewSymbolTable() *symbolTable { return newSymbolTable() }

func parseNode(v interface{}, table *symbolTable, namespace string) (Schema, error) {
	switch val := v.(type) {
	case string:
		return parseNamedOrPrimitive(val, table, namespace)
	case []interface{}:
		return parseUnion(val, table, namespace)
	case map[string]interface{}:
		return parseObject(val, table, namespace)
	default:
		return nil, fmt.Errorf("%w: unexpected schema node %T", avroerr.ErrMalformedJSON, v)
	}
}

func parseNamedOrPrimitive(name string, table *symbolTable, namespace string) (Schema, error) {
	switch Type(name) {
	case Null, Boolean, Int, Long, Float, Double, Bytes, String:
		return NewPrimitiveSchema(Type(name)), nil
	}
	fullName := name
	if !containsDot(name) && namespace != "" {
		fullName = namespace + "." + name
	}
	resolved, ok := table.lookup(fullName)
	if !ok {
		// also try the bare name, in case it was declared at top level
		resolved, ok = table.lookup(name)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", avroerr.ErrUnresolvedRef, name)
	}
	return NewRefSchema(resolved), nil
}

func containsDot(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return true
		}
	}
	return false
}

func parseUnion(items []interface{}, table *symbolTable, namespace string) (Schema, error) {
	branches := make([]Schema, len(items))
	for i, item := range items {
		b, err := parseNode(item, table, namespace)
		if err != nil {
			return nil, err
		}
		branches[i] = b
	}
	return NewUnionSchema(branches)
}

func parseObject(v map[string]interface{}, table *symbolTable, namespace string) (Schema, error) {
	typ, _ := v["type"].(string)
	if typ == "" {
		return nil, fmt.Errorf("%w: object schema missing %q", avroerr.ErrMissingAttribute, "type")
	}
	if ns, ok := v["namespace"].(string); ok {
		namespace = ns
	}
	switch Type(typ) {
	case Null, Boolean, Int, Float, Double, String:
		return NewPrimitiveSchema(Type(typ)), nil
	case Long:
		return NewPrimitiveSchema(Long), nil
	case Bytes:
		return NewPrimitiveSchema(Bytes), nil
	case Array:
		itemsV, ok := v["items"]
		if !ok {
			return nil, fmt.Errorf("%w: array missing %q", avroerr.ErrMissingAttribute, "items")
		}
		items, err := parseNode(itemsV, table, namespace)
		if err != nil {
			return nil, err
		}
		return NewArraySchema(items), nil
	case Map:
		valuesV, ok := v["values"]
		if !ok {
			return nil, fmt.Errorf("%w: map missing %q", avroerr.ErrMissingAttribute, "values")
		}
		values, err := parseNode(valuesV, table, namespace)
		if err != nil {
			return nil, err
		}
		return NewMapSchema(values), nil
	case Enum:
		return parseEnum(v, table, namespace)
	case Fixed:
		return parseFixed(v, table, namespace)
	case Record:
		return parseRecord(v, table, namespace, false)
	case "error":
		return parseRecord(v, table, namespace, true)
	default:
		// {"type": "someOtherSchema"} recurses through the string/named path.
		return parseNode(typ, table, namespace)
	}
}

func parseEnum(v map[string]interface{}, table *symbolTable, namespace string) (Schema, error) {
	n, _ := v["name"].(string)
	aliases := stringList(v["aliases"])
	symbolsRaw, _ := v["symbols"].([]interface{})
	symbols := make([]string, len(symbolsRaw))
	for i, s := range symbolsRaw {
		symbols[i], _ = s.(string)
	}
	def, hasDef := v["default"].(string)
	es, err := NewEnumSchema(n, namespace, aliases, symbols, def, hasDef)
	if err != nil {
		return nil, err
	}
	if doc, ok := v["doc"].(string); ok {
		es.SetDoc(doc)
	}
	es.props = extractProps(v, reservedSchemaKeys)
	if err := table.add(es); err != nil {
		return nil, err
	}
	return es, nil
}

func parseFixed(v map[string]interface{}, table *symbolTable, namespace string) (Schema, error) {
	n, _ := v["name"].(string)
	aliases := stringList(v["aliases"])
	sizeF, ok := v["size"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: fixed missing numeric %q", avroerr.ErrMissingAttribute, "size")
	}
	fs, err := NewFixedSchema(n, namespace, aliases, int(sizeF))
	if err != nil {
		return nil, err
	}
	fs.props = extractProps(v, reservedSchemaKeys)
	if err := table.add(fs); err != nil {
		return nil, err
	}
	return fs, nil
}

func parseRecord(v map[string]interface{}, table *symbolTable, namespace string, isError bool) (Schema, error) {
	n, _ := v["name"].(string)
	aliases := stringList(v["aliases"])
	rs, err := NewRecordSchema(n, namespace, aliases, isError)
	if err != nil {
		return nil, err
	}
	if doc, ok := v["doc"].(string); ok {
		rs.SetDoc(doc)
	}
	rs.props = extractProps(v, reservedSchemaKeys)
	// Register before parsing fields so a field referencing this record's
	// fullname (direct self-reference, or mutual reference via another
	// named type defined in between) resolves to this same pointer.
	if err := table.add(rs); err != nil {
		return nil, err
	}
	fieldsRaw, _ := v["fields"].([]interface{})
	fields := make([]*Field, len(fieldsRaw))
	for i, fv := range fieldsRaw {
		f, err := parseField(fv, table, rs.FullName(), namespace)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	rs.SetFields(fields)
	return rs, nil
}

func parseField(v interface{}, table *symbolTable, recordFullName, namespace string) (*Field, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: record field must be an object", avroerr.ErrMalformedJSON)
	}
	fname, ok := m["name"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: field missing %q", avroerr.ErrMissingAttribute, "name")
	}
	typV, ok := m["type"]
	if !ok {
		return nil, fmt.Errorf("%w: field %q missing %q", avroerr.ErrMissingAttribute, fname, "type")
	}
	typ, err := parseNode(typV, table, namespace)
	if err != nil {
		return nil, err
	}
	aliases := stringList(m["aliases"])
	order := Order(stringOr(m["order"], string(Ascending)))
	def, hasDefault := m["default"]
	if hasDefault {
		def, err = coerceDefault(fname, typ, def)
		if err != nil {
			return nil, err
		}
	}
	f, err := NewField(fname, typ, aliases, hasDefault, def, order)
	if err != nil {
		return nil, err
	}
	if doc, ok := m["doc"].(string); ok {
		f.SetDoc(doc)
	}
	f.props = extractProps(m, reservedFieldKeys)
	return f, nil
}

// coerceDefault converts a JSON-decoded default value (every JSON number
// arrives as float64) into the Go type the value codec expects for the
// field's declared schema, validating def's JSON shape against the
// declared type along the way (spec-required parse-time failure mode: a
// default that doesn't match its field's type). Checks against a union's
// first branch as the spec requires.
func coerceDefault(fieldName string, typ Schema, def interface{}) (interface{}, error) {
	actual := typ
	if r, ok := actual.(*RefSchema); ok {
		actual = r.Resolved()
	}
	switch actual.Type() {
	case Union:
		u := actual.(*UnionSchema)
		if len(u.Branches()) == 0 {
			return nil, fmt.Errorf("%w: field %q has empty union", avroerr.ErrInvalidDefault, fieldName)
		}
		return coerceDefault(fieldName, u.Branches()[0], def)
	case Null:
		if def != nil {
			return nil, fmt.Errorf("%w: field %q default must be null", avroerr.ErrInvalidDefault, fieldName)
		}
		return nil, nil
	case Boolean:
		b, ok := def.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: field %q default must be a boolean", avroerr.ErrInvalidDefault, fieldName)
		}
		return b, nil
	case Int:
		f, ok := def.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: field %q default must be a number", avroerr.ErrInvalidDefault, fieldName)
		}
		return int32(f), nil
	case Long:
		f, ok := def.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: field %q default must be a number", avroerr.ErrInvalidDefault, fieldName)
		}
		return int64(f), nil
	case Float:
		f, ok := def.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: field %q default must be a number", avroerr.ErrInvalidDefault, fieldName)
		}
		return float32(f), nil
	case Double:
		f, ok := def.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: field %q default must be a number", avroerr.ErrInvalidDefault, fieldName)
		}
		return f, nil
	case Bytes, Fixed, String:
		s, ok := def.(string)
		if !ok {
			return nil, fmt.Errorf("%w: field %q default must be a string", avroerr.ErrInvalidDefault, fieldName)
		}
		return s, nil
	case Enum:
		s, ok := def.(string)
		if !ok {
			return nil, fmt.Errorf("%w: field %q default must be a string", avroerr.ErrInvalidDefault, fieldName)
		}
		es := actual.(*EnumSchema)
		if _, ok := es.IndexOf(s); !ok {
			return nil, fmt.Errorf("%w: field %q default %q is not a declared symbol of %s", avroerr.ErrInvalidDefault, fieldName, s, es.FullName())
		}
		return s, nil
	case Array:
		arr, ok := def.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: field %q default must be an array", avroerr.ErrInvalidDefault, fieldName)
		}
		as := actual.(*ArraySchema)
		out := make([]interface{}, len(arr))
		for i, item := range arr {
			coerced, err := coerceDefault(fieldName, as.Items(), item)
			if err != nil {
				return nil, err
			}
			out[i] = coerced
		}
		return out, nil
	case Map:
		m, ok := def.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: field %q default must be an object", avroerr.ErrInvalidDefault, fieldName)
		}
		ms := actual.(*MapSchema)
		out := make(map[string]interface{}, len(m))
		for k, mv := range m {
			coerced, err := coerceDefault(fieldName, ms.Values(), mv)
			if err != nil {
				return nil, err
			}
			out[k] = coerced
		}
		return out, nil
	case Record:
		m, ok := def.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: field %q default must be an object", avroerr.ErrInvalidDefault, fieldName)
		}
		rs := actual.(*RecordSchema)
		out := make(map[string]interface{}, len(rs.Fields()))
		for _, rf := range rs.Fields() {
			rv, present := m[rf.Name()]
			if !present {
				continue
			}
			coerced, err := coerceDefault(rf.Name(), rf.Type(), rv)
			if err != nil {
				return nil, err
			}
			out[rf.Name()] = coerced
		}
		return out, nil
	default:
		return def, nil
	}
}

func stringList(v interface{}) []string {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func stringOr(v interface{}, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}
