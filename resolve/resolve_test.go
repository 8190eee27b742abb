package resolve

import (
	"testing"

	"github.com/blockleaf/avro/avroval"
	"github.com/blockleaf/avro/schema"
)

func parse(t *testing.T, raw string) schema.Schema {
	t.Helper()
	s, err := schema.Parse(raw)
	if err != nil {
		t.Fatalf("Parse(%s): %v", raw, err)
	}
	return s
}

func TestIdentityResolution(t *testing.T) {
	s := parse(t, `{"type":"record","name":"R","fields":[{"name":"a","type":"int"},{"name":"b","type":"string"}]}`)
	v := avroval.Record([]avroval.RecordField{
		{Name: "a", Value: avroval.Int(7)},
		{Name: "b", Value: avroval.String("hi")},
	})
	buf, err := avroval.Encode(nil, v, s)
	if err != nil {
		t.Fatal(err)
	}
	rv := New()
	out, n, err := rv.Resolve(buf, 0, s, s)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d of %d", n, len(buf))
	}
	a, _ := out.FieldByName("a")
	if a.Int32() != 7 {
		t.Fatalf("a = %d, want 7", a.Int32())
	}
}

func TestPromotionIntToLong(t *testing.T) {
	writer := parse(t, `"int"`)
	reader := parse(t, `"long"`)
	buf, err := avroval.Encode(nil, avroval.Int(7), writer)
	if err != nil {
		t.Fatal(err)
	}
	rv := New()
	out, _, err := rv.Resolve(buf, 0, writer, reader)
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind() != schema.Long || out.Int64() != 7 {
		t.Fatalf("got %+v, want long 7", out)
	}
}

func TestPromotionLongToDoubleExact(t *testing.T) {
	writer := parse(t, `"long"`)
	reader := parse(t, `"double"`)
	buf, _ := avroval.Encode(nil, avroval.Long(1<<50), writer)
	rv := New()
	out, _, err := rv.Resolve(buf, 0, writer, reader)
	if err != nil {
		t.Fatal(err)
	}
	if out.Float64() != float64(int64(1)<<50) {
		t.Fatalf("got %v", out.Float64())
	}
}

func TestAliasResolutionScenario(t *testing.T) {
	writer := parse(t, `{"type":"record","name":"Foo","fields":[{"name":"x","type":"int"}]}`)
	reader := parse(t, `{"type":"record","name":"Bar","aliases":["Foo"],"fields":[{"name":"x","type":"long"}]}`)
	v := avroval.Record([]avroval.RecordField{{Name: "x", Value: avroval.Int(42)}})
	buf, err := avroval.Encode(nil, v, writer)
	if err != nil {
		t.Fatal(err)
	}
	rv := New()
	out, _, err := rv.Resolve(buf, 0, writer, reader)
	if err != nil {
		t.Fatal(err)
	}
	x, ok := out.FieldByName("x")
	if !ok || x.Kind() != schema.Long || x.Int64() != 42 {
		t.Fatalf("got %+v", x)
	}
}

func TestRecordFieldDiscardedWhenAbsentFromReader(t *testing.T) {
	writer := parse(t, `{"type":"record","name":"R","fields":[{"name":"a","type":"int"},{"name":"b","type":"string"}]}`)
	reader := parse(t, `{"type":"record","name":"R","fields":[{"name":"a","type":"int"}]}`)
	v := avroval.Record([]avroval.RecordField{
		{Name: "a", Value: avroval.Int(1)},
		{Name: "b", Value: avroval.String("discard me")},
	})
	buf, err := avroval.Encode(nil, v, writer)
	if err != nil {
		t.Fatal(err)
	}
	rv := New()
	out, n, err := rv.Resolve(buf, 0, writer, reader)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(buf) {
		t.Fatalf("did not consume discarded field bytes: %d of %d", n, len(buf))
	}
	if len(out.Fields()) != 1 {
		t.Fatalf("got %d fields, want 1", len(out.Fields()))
	}
}

func TestRecordFieldDefaultFilledWhenAbsentFromWriter(t *testing.T) {
	writer := parse(t, `{"type":"record","name":"R","fields":[{"name":"a","type":"int"}]}`)
	reader := parse(t, `{"type":"record","name":"R","fields":[{"name":"a","type":"int"},{"name":"b","type":"string","default":"fallback"}]}`)
	v := avroval.Record([]avroval.RecordField{{Name: "a", Value: avroval.Int(1)}})
	buf, err := avroval.Encode(nil, v, writer)
	if err != nil {
		t.Fatal(err)
	}
	rv := New()
	out, _, err := rv.Resolve(buf, 0, writer, reader)
	if err != nil {
		t.Fatal(err)
	}
	b, ok := out.FieldByName("b")
	if !ok || b.String() != "fallback" {
		t.Fatalf("got %+v", b)
	}
}

func TestMissingReaderDefaultIsError(t *testing.T) {
	writer := parse(t, `{"type":"record","name":"R","fields":[{"name":"a","type":"int"}]}`)
	reader := parse(t, `{"type":"record","name":"R","fields":[{"name":"a","type":"int"},{"name":"b","type":"string"}]}`)
	v := avroval.Record([]avroval.RecordField{{Name: "a", Value: avroval.Int(1)}})
	buf, _ := avroval.Encode(nil, v, writer)
	rv := New()
	_, _, err := rv.Resolve(buf, 0, writer, reader)
	if err == nil {
		t.Fatal("expected error for missing reader default")
	}
}

func TestRecursiveSchemaResolutionSelf(t *testing.T) {
	raw := `{
		"type": "record",
		"name": "LongList",
		"fields": [
			{"name": "value", "type": "long"},
			{"name": "next", "type": ["null", "LongList"], "default": null}
		]
	}`
	s := parse(t, raw)
	tail := avroval.Record([]avroval.RecordField{
		{Name: "value", Value: avroval.Long(2)},
		{Name: "next", Value: avroval.Union(0, avroval.Null())},
	})
	head := avroval.Record([]avroval.RecordField{
		{Name: "value", Value: avroval.Long(1)},
		{Name: "next", Value: avroval.Union(1, tail)},
	})
	buf, err := avroval.Encode(nil, head, s)
	if err != nil {
		t.Fatal(err)
	}
	rv := New()
	out, n, err := rv.Resolve(buf, 0, s, s)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d of %d", n, len(buf))
	}
	v, _ := out.FieldByName("value")
	if v.Int64() != 1 {
		t.Fatalf("head value = %d", v.Int64())
	}
}
