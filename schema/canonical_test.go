package schema

import "testing"

func TestCanonicalFormStripsDocAliasesAndDefault(t *testing.T) {
	raw := `{
		"type": "record",
		"name": "User",
		"namespace": "com.example",
		"doc": "a user record",
		"aliases": ["OldUser"],
		"fields": [
			{"name": "name", "type": "string", "doc": "field doc", "default": "anon"}
		]
	}`
	s, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"name":"com.example.User","type":"record","fields":[{"name":"name","type":"string"}]}`
	if got := s.String(); got != want {
		t.Fatalf("canonical form =\n%s\nwant\n%s", got, want)
	}
}

func TestCanonicalFormUnion(t *testing.T) {
	s, err := Parse(`["null", "int"]`)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := s.String(), `["null","int"]`; got != want {
		t.Fatalf("canonical form = %q, want %q", got, want)
	}
}

func TestCanonicalFormArrayAndMap(t *testing.T) {
	a, err := Parse(`{"type":"array","items":"long"}`)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := a.String(), `{"type":"array","items":"long"}`; got != want {
		t.Fatalf("array canonical form = %q, want %q", got, want)
	}
	m, err := Parse(`{"type":"map","values":"boolean"}`)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := m.String(), `{"type":"map","values":"boolean"}`; got != want {
		t.Fatalf("map canonical form = %q, want %q", got, want)
	}
}

func TestCanonicalFormFixed(t *testing.T) {
	s, err := Parse(`{"type":"fixed","name":"md5","namespace":"ex","size":16}`)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := s.String(), `{"name":"ex.md5","type":"fixed","size":16}`; got != want {
		t.Fatalf("fixed canonical form = %q, want %q", got, want)
	}
}
