package avroval

import (
	"bytes"
	"testing"

	"github.com/blockleaf/avro/schema"
)

func mustParse(t *testing.T, raw string) schema.Schema {
	t.Helper()
	s, err := schema.Parse(raw)
	if err != nil {
		t.Fatalf("Parse(%s): %v", raw, err)
	}
	return s
}

func TestEncodeStringScenario(t *testing.T) {
	s := mustParse(t, `"string"`)
	buf, err := Encode(nil, String("Hey"), s)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x06, 0x48, 0x65, 0x79}
	if !bytes.Equal(buf, want) {
		t.Fatalf("encode = % x, want % x", buf, want)
	}
	v, n, err := Decode(buf, 0, s)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d bytes, want %d", n, len(buf))
	}
	if v.String() != "Hey" {
		t.Fatalf("decoded %q, want Hey", v.String())
	}
}

func TestEncodeMapOfIntsScenario(t *testing.T) {
	s := mustParse(t, `{"type":"map","values":"int"}`)
	v := Map([]MapEntry{
		{Key: "a", Value: Int(1)},
		{Key: "b", Value: Int(2)},
	})
	buf, err := Encode(nil, v, s)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x04, 0x02, 0x61, 0x02, 0x02, 0x62, 0x04, 0x00}
	if !bytes.Equal(buf, want) {
		t.Fatalf("encode = % x, want % x", buf, want)
	}
	decoded, n, err := Decode(buf, 0, s)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d, want %d", n, len(buf))
	}
	if len(decoded.Entries()) != 2 {
		t.Fatalf("got %d entries, want 2", len(decoded.Entries()))
	}
}

func TestRoundTripRecursiveLongList(t *testing.T) {
	raw := `{
		"type": "record",
		"name": "LongList",
		"fields": [
			{"name": "value", "type": "long"},
			{"name": "next", "type": ["null", "LongList"], "default": null}
		]
	}`
	s := mustParse(t, raw)

	node := func(value int64, next *Value) Value {
		var nextVal Value
		if next == nil {
			nextVal = Union(0, Null())
		} else {
			nextVal = Union(1, *next)
		}
		return Record([]RecordField{
			{Name: "value", Value: Long(value)},
			{Name: "next", Value: nextVal},
		})
	}
	five := node(5, nil)
	four := node(4, &five)
	three := node(3, &four)
	two := node(2, &three)
	one := node(1, &two)

	buf, err := Encode(nil, one, s)
	if err != nil {
		t.Fatal(err)
	}
	decoded, n, err := Decode(buf, 0, s)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d of %d bytes", n, len(buf))
	}
	cur := decoded
	for i := int64(1); i <= 5; i++ {
		val, ok := cur.FieldByName("value")
		if !ok || val.Int64() != i {
			t.Fatalf("node %d: value = %+v", i, val)
		}
		next, _ := cur.FieldByName("next")
		if i == 5 {
			if next.UnionBranch() != 0 {
				t.Fatalf("expected terminating null, got branch %d", next.UnionBranch())
			}
			break
		}
		if next.UnionBranch() != 1 {
			t.Fatalf("node %d: expected branch 1, got %d", i, next.UnionBranch())
		}
		cur = next.UnionValue()
	}
}

func TestDecodeTruncatedInput(t *testing.T) {
	s := mustParse(t, `"long"`)
	_, _, err := Decode([]byte{0x80}, 0, s)
	if err == nil {
		t.Fatal("expected truncated error")
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	s := mustParse(t, `"string"`)
	buf := []byte{0x02, 0xff}
	_, _, err := Decode(buf, 0, s)
	if err == nil {
		t.Fatal("expected invalid UTF-8 error")
	}
}

func TestDecodeNegativeBlockCountArray(t *testing.T) {
	s := mustParse(t, `{"type":"array","items":"int"}`)
	// block of 2 ints [1, 2] encoded with the negative-count + byte-length
	// skippable framing, followed by the terminating zero block.
	var payload []byte
	payload, _ = Encode(payload, Int(1), mustParse(t, `"int"`))
	payload, _ = Encode(payload, Int(2), mustParse(t, `"int"`))
	var buf []byte
	buf = appendVarint(buf, zigzagEncode(-2))
	buf = appendVarint(buf, zigzagEncode(int64(len(payload))))
	buf = append(buf, payload...)
	buf = appendVarint(buf, 0)

	v, n, err := Decode(buf, 0, s)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d of %d", n, len(buf))
	}
	items := v.Items()
	if len(items) != 2 || items[0].Int32() != 1 || items[1].Int32() != 2 {
		t.Fatalf("decoded items = %+v", items)
	}
}

func TestUnionImplicitBranchMatch(t *testing.T) {
	s := mustParse(t, `["null", "string"]`)
	buf, err := Encode(nil, String("hi"), s)
	if err != nil {
		t.Fatal(err)
	}
	v, _, err := Decode(buf, 0, s)
	if err != nil {
		t.Fatal(err)
	}
	if v.UnionBranch() != 1 || v.UnionValue().String() != "hi" {
		t.Fatalf("got branch %d value %+v", v.UnionBranch(), v.UnionValue())
	}
}

func TestEncodeValueKindMismatch(t *testing.T) {
	cases := []struct {
		name string
		s    string
		v    Value
	}{
		{"null against int", `"int"`, Null()},
		{"int against boolean", `"boolean"`, Int(1)},
		{"boolean against long", `"long"`, Boolean(true)},
		{"string against float", `"float"`, String("x")},
		{"float against double", `"double"`, Float(1)},
		{"double against bytes", `"bytes"`, Double(1)},
		{"bytes against string", `"string"`, Bytes([]byte("x"))},
		{"record against array", `{"type":"array","items":"int"}`, Record(nil)},
		{"array against map", `{"type":"map","values":"int"}`, Array(nil)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := mustParse(t, c.s)
			if _, err := Encode(nil, c.v, s); err == nil {
				t.Fatalf("%s: expected ErrValueMismatch, got nil", c.name)
			}
		})
	}
}
