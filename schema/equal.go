package schema

// Equal reports whether two schemas have the same Parsing Canonical Form,
// which the Avro spec treats as the definition of schema equality.
func Equal(a, b Schema) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}

// assignable reports whether a value written with writer could, in
// principle, be read back with reader without a field-by-field resolution
// pass: same canonical form, or one of the promotable primitive pairs. It
// backs quick compatibility checks; the resolve package does the full
// writer/reader resolution that datafile reading actually needs.
func assignable(writer, reader Schema) bool {
	if Equal(writer, reader) {
		return true
	}
	w, r := writer.Type(), reader.Type()
	if w == Ref {
		w = writer.(*RefSchema).Resolved().Type()
	}
	if r == Ref {
		r = reader.(*RefSchema).Resolved().Type()
	}
	switch w {
	case Int:
		return r == Long || r == Float || r == Double
	case Long:
		return r == Float || r == Double
	case Float:
		return r == Double
	case String:
		return r == Bytes
	case Bytes:
		return r == String
	}
	return false
}
