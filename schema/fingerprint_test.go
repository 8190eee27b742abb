package schema

import "testing"

// These are the published Avro spec CRC-64-AVRO (Rabin) fingerprints for the
// eight primitive schemas, used across the Avro ecosystem's own conformance
// suites as a fixed cross-implementation check.
func TestRabinFingerprintKnownConstants(t *testing.T) {
	cases := []struct {
		schema string
		want   uint64
	}{
		{`"null"`, 7195948357588979594},
		{`"boolean"`, 11476012395585140580},
		{`"int"`, 8247732601305521295},
		{`"long"`, 15011871142588980663},
		{`"float"`, 5583340709985441680},
		{`"double"`, 10265170025261012350},
		{`"bytes"`, 5746618253357095269},
		{`"string"`, 10304597078529344455},
	}
	for _, c := range cases {
		s, err := Parse(c.schema)
		if err != nil {
			t.Fatalf("Parse(%s): %v", c.schema, err)
		}
		got := s.Fingerprint()
		var want [8]byte
		for i := 0; i < 8; i++ {
			want[i] = byte(c.want >> (8 * uint(i)))
		}
		if got != want {
			t.Errorf("Fingerprint(%s) = %x, want %x", c.schema, got, want)
		}
	}
}

func TestFingerprintUsingAllAlgorithms(t *testing.T) {
	s, err := Parse(`"string"`)
	if err != nil {
		t.Fatal(err)
	}
	for _, typ := range []FingerprintType{CRC64Avro, MD5, SHA256} {
		fp, err := s.FingerprintUsing(typ)
		if err != nil {
			t.Fatalf("FingerprintUsing(%v): %v", typ, err)
		}
		if len(fp) == 0 {
			t.Fatalf("FingerprintUsing(%v) returned empty slice", typ)
		}
	}
	if _, err := s.FingerprintUsing("bogus"); err == nil {
		t.Fatal("expected error for unknown fingerprint type")
	}
}

func TestFingerprintIsDeterministic(t *testing.T) {
	raw := `{"type":"record","name":"R","fields":[{"name":"a","type":"int"},{"name":"b","type":"string"}]}`
	a, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("identical schemas produced different fingerprints")
	}
}
