package datafile

import (
	"bytes"
	"io"
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

func TestNullCodecThreeValuesRoundTrip(t *testing.T) {
	s := parse(t, `"long"`)

	want := [8]byte{0xb7, 0x1d, 0xf4, 0x93, 0x44, 0xe1, 0x54, 0xd0}
	if got := s.Fingerprint(); got != want {
		t.Fatalf("long fingerprint = %x, want %x", got, want)
	}

	var buf bytes.Buffer
	w, err := NewWriter(s, &buf, WithCodec("null"))
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range []int64{1, 2, 3} {
		if err := w.Write(avroval.Long(n)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	var got []int64
	for {
		v, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, v.Int64())
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("got %v, want [1 2 3]", got)
	}
}

func TestDeflateCodecRoundTrip(t *testing.T) {
	s := parse(t, `"string"`)
	var buf bytes.Buffer
	w, err := NewWriter(s, &buf, WithCodec("deflate"))
	if err != nil {
		t.Fatal(err)
	}
	for _, str := range []string{"alpha", "beta", "gamma"} {
		if err := w.Write(avroval.String(str)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if r.Metadata()[metadataCodecKey] == nil || string(r.Metadata()[metadataCodecKey]) != "deflate" {
		t.Fatalf("codec metadata = %q", r.Metadata()[metadataCodecKey])
	}
	var got []string
	for {
		v, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, v.String())
	}
	want := []string{"alpha", "beta", "gamma"}
	for i, s := range want {
		if got[i] != s {
			t.Fatalf("got[%d] = %q, want %q", i, got[i], s)
		}
	}
}

func TestRecursiveLongListRoundTrip(t *testing.T) {
	raw := `{
		"type": "record",
		"name": "LongList",
		"fields": [
			{"name": "value", "type": "long"},
			{"name": "next", "type": ["null", "LongList"], "default": null}
		]
	}`
	s := parse(t, raw)

	node := func(value int64, next *avroval.Value) avroval.Value {
		var nextVal avroval.Value
		if next == nil {
			nextVal = avroval.Union(0, avroval.Null())
		} else {
			nextVal = avroval.Union(1, *next)
		}
		return avroval.Record([]avroval.RecordField{
			{Name: "value", Value: avroval.Long(value)},
			{Name: "next", Value: nextVal},
		})
	}
	three := node(3, nil)
	two := node(2, &three)
	one := node(1, &two)

	var buf bytes.Buffer
	w, err := NewWriter(s, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(one); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	v, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	cur := v
	for i := int64(1); i <= 3; i++ {
		val, ok := cur.FieldByName("value")
		if !ok || val.Int64() != i {
			t.Fatalf("node %d: value = %+v", i, val)
		}
		next, _ := cur.FieldByName("next")
		if i == 3 {
			if next.UnionBranch() != 0 {
				t.Fatalf("expected terminator, got branch %d", next.UnionBranch())
			}
			break
		}
		cur = next.UnionValue()
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF after single value, got %v", err)
	}
}

func TestMapOfIntsByteSequence(t *testing.T) {
	s := parse(t, `{"type":"map","values":"int"}`)
	v := avroval.Map([]avroval.MapEntry{
		{Key: "a", Value: avroval.Int(1)},
		{Key: "b", Value: avroval.Int(2)},
	})

	var buf bytes.Buffer
	sync := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	w, err := NewWriter(s, &buf, WithSync(sync))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(v); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	wantTail := []byte{0x04, 0x02, 0x61, 0x02, 0x02, 0x62, 0x04, 0x00}
	all := buf.Bytes()
	blockStart := len(all) - len(wantTail) - 16
	got := all[blockStart : blockStart+len(wantTail)]
	if !bytes.Equal(got, wantTail) {
		t.Fatalf("block payload = % x, want % x", got, wantTail)
	}
}

func TestPromotionScenarioIntToLong(t *testing.T) {
	writerSchema := parse(t, `"int"`)
	readerSchema := parse(t, `"long"`)

	var buf bytes.Buffer
	w, err := NewWriter(writerSchema, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(avroval.Int(7)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(bytes.NewReader(buf.Bytes()), WithReaderSchema(readerSchema))
	if err != nil {
		t.Fatal(err)
	}
	v, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind() != schema.Long || v.Int64() != 7 {
		t.Fatalf("got %+v, want long 7", v)
	}
}

func TestAliasResolutionScenarioAtDatafileLevel(t *testing.T) {
	writerSchema := parse(t, `{"type":"record","name":"Foo","fields":[{"name":"x","type":"int"}]}`)
	readerSchema := parse(t, `{"type":"record","name":"Bar","aliases":["Foo"],"fields":[{"name":"x","type":"long"}]}`)

	v := avroval.Record([]avroval.RecordField{{Name: "x", Value: avroval.Int(42)}})

	var buf bytes.Buffer
	w, err := NewWriter(writerSchema, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(v); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(bytes.NewReader(buf.Bytes()), WithReaderSchema(readerSchema))
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	x, ok := out.FieldByName("x")
	if !ok || x.Kind() != schema.Long || x.Int64() != 42 {
		t.Fatalf("got %+v", x)
	}
}

// TestBlockTransparency checks that the decoded value sequence does not
// depend on how many blocks the writer split the stream into.
func TestBlockTransparency(t *testing.T) {
	s := parse(t, `"int"`)
	values := make([]int32, 0, 100)
	for i := int32(0); i < 100; i++ {
		values = append(values, i)
	}

	decode := func(threshold int) []int32 {
		var buf bytes.Buffer
		w, err := NewWriter(s, &buf, WithFlushThreshold(threshold))
		if err != nil {
			t.Fatal(err)
		}
		for _, n := range values {
			if err := w.Write(avroval.Int(n)); err != nil {
				t.Fatal(err)
			}
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
		r, err := NewReader(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatal(err)
		}
		var out []int32
		for {
			v, err := r.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatal(err)
			}
			out = append(out, v.Int32())
		}
		return out
	}

	big := decode(1 << 20)
	small := decode(4)
	if len(big) != len(small) {
		t.Fatalf("len mismatch: %d vs %d", len(big), len(small))
	}
	for i := range big {
		if big[i] != small[i] {
			t.Fatalf("value %d differs: %d vs %d", i, big[i], small[i])
		}
	}
}

func TestCodecTransparencyAtDatafileLevel(t *testing.T) {
	s := parse(t, `"string"`)
	values := []string{"one", "two", "three", "four"}

	decode := func(codec string) []string {
		var buf bytes.Buffer
		w, err := NewWriter(s, &buf, WithCodec(codec))
		if err != nil {
			t.Fatal(err)
		}
		for _, v := range values {
			if err := w.Write(avroval.String(v)); err != nil {
				t.Fatal(err)
			}
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
		r, err := NewReader(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatal(err)
		}
		var out []string
		for {
			v, err := r.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatal(err)
			}
			out = append(out, v.String())
		}
		return out
	}

	baseline := decode("null")
	for _, codec := range []string{"deflate", "snappy", "bzip2", "xz", "zstandard"} {
		got := decode(codec)
		if len(got) != len(baseline) {
			t.Fatalf("%s: len mismatch", codec)
		}
		for i := range got {
			if got[i] != baseline[i] {
				t.Fatalf("%s: value %d differs: %q vs %q", codec, i, got[i], baseline[i])
			}
		}
	}
}

func TestSyncMismatchIsFatal(t *testing.T) {
	s := parse(t, `"int"`)
	var buf bytes.Buffer
	w, err := NewWriter(s, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(avroval.Int(1)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	corrupted := append([]byte{}, buf.Bytes()...)
	// Flip a byte inside the trailing sync marker.
	corrupted[len(corrupted)-1] ^= 0xff

	r, err := NewReader(bytes.NewReader(corrupted))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Next(); err == nil {
		t.Fatal("expected sync mismatch error")
	}
}

func TestReservedMetadataPrefixRejected(t *testing.T) {
	s := parse(t, `"int"`)
	var buf bytes.Buffer
	_, err := NewWriter(s, &buf, WithMetadata("avro.custom", []byte("x")))
	if err == nil {
		t.Fatal("expected error for reserved metadata prefix")
	}
}
